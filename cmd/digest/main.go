package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"lbs-connect/internal/bootstrap"
	"lbs-connect/internal/queue"
	"lbs-connect/internal/shared/config"
)

// digest sends the weekly match digest. With -enqueue it hands the run to
// the worker instead of running it in-process.
func main() {
	enqueue := flag.Bool("enqueue", false, "enqueue a match_digest job instead of running it here")
	flag.Parse()

	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.Build(cfg)
	if err != nil {
		log.Fatalf("bootstrap build: %v", err)
	}
	defer app.Close()

	if *enqueue {
		if app.Queue == nil {
			log.Fatal("no queue configured; run without -enqueue")
		}
		msg := queue.Stamp(queue.Message{Kind: queue.KindMatchDigest})
		if err := app.Queue.Send(ctx, msg); err != nil {
			log.Fatalf("enqueue digest: %v", err)
		}
		log.Printf("digest job enqueued request_id=%s", msg.RequestID)
		return
	}

	rep, err := app.Digest.Run(ctx)
	out, _ := json.Marshal(rep)
	if err != nil {
		log.Fatalf("digest failed: %v report=%s", err, out)
	}
	log.Printf("digest complete report=%s", out)
}
