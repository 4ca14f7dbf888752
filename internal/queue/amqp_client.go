package queue

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/streadway/amqp"

	"lbs-connect/internal/shared/telemetry"
)

const DefaultAMQPQueue = "lbs-connect-jobs"

// AMQPClient publishes and consumes jobs on a durable RabbitMQ queue.
type AMQPClient struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string
	mu    sync.Mutex
}

// NewAMQPClient dials url and declares the durable queue.
func NewAMQPClient(url, queue string) (*AMQPClient, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, fmt.Errorf("AMQP_URL is required")
	}
	if strings.TrimSpace(queue) == "" {
		queue = DefaultAMQPQueue
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open rabbitmq channel: %w", err)
	}
	if _, err := ch.QueueDeclare(
		queue,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare queue %s: %w", queue, err)
	}
	return &AMQPClient{conn: conn, ch: ch, queue: queue}, nil
}

// Send publishes msg as a persistent JSON message.
func (c *AMQPClient) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg = Stamp(msg)
	payload, err := EncodeMessage(msg)
	if err != nil {
		return fmt.Errorf("encode amqp message: %w", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	err = c.ch.Publish("", c.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    msg.RequestID,
		Body:         payload,
	})
	if err != nil {
		return fmt.Errorf("amqp publish: %w", err)
	}
	return nil
}

// Handler processes one message body. A returned error leaves the message
// for redelivery.
type Handler func(ctx context.Context, body []byte) error

// Consume delivers messages to handle on concurrency goroutines until ctx
// is done, then waits for in-flight messages.
func (c *AMQPClient) Consume(ctx context.Context, concurrency int, handle Handler) error {
	if concurrency < 1 {
		concurrency = 1
	}
	c.mu.Lock()
	if err := c.ch.Qos(concurrency, 0, false); err != nil {
		c.mu.Unlock()
		return fmt.Errorf("set prefetch: %w", err)
	}
	deliveries, err := c.ch.Consume(c.queue, "", false, false, false, false, nil)
	c.mu.Unlock()
	if err != nil {
		return fmt.Errorf("consume %s: %w", c.queue, err)
	}
	telemetry.Info("queue.amqp.consuming", map[string]any{"queue": c.queue, "concurrency": concurrency})
	processDeliveries(ctx, deliveries, concurrency, handle)
	return nil
}

func processDeliveries(ctx context.Context, deliveries <-chan amqp.Delivery, concurrency int, handle Handler) {
	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case d, ok := <-deliveries:
					if !ok {
						return
					}
					settle(d, handle(ctx, d.Body))
				}
			}
		}()
	}
	wg.Wait()
}

// settle acks handled messages and requeues a failed one once.
func settle(d amqp.Delivery, err error) {
	var ackErr error
	if err == nil {
		ackErr = d.Ack(false)
	} else {
		ackErr = d.Nack(false, !d.Redelivered)
	}
	if ackErr != nil {
		telemetry.Warn("queue.amqp.settle_failed", map[string]any{"err": ackErr, "delivery_tag": d.DeliveryTag})
	}
}

func (c *AMQPClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ch != nil {
		c.ch.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

var _ Client = (*AMQPClient)(nil)
