package metrics

import (
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "lbs_connect"

// Registry holds every collector exported by the service.
var Registry = prometheus.NewRegistry()

var (
	factory = promauto.With(Registry)

	httpRequestsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	httpRequestDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	llmCallsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "llm",
		Name:      "calls_total",
		Help:      "LLM completions by operation and outcome.",
	}, []string{"provider", "operation", "outcome"})

	llmCallDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "llm",
		Name:      "call_duration_seconds",
		Help:      "LLM completion latency.",
		Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 60},
	}, []string{"provider", "operation"})

	cvExtractionsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "cv",
		Name:      "extractions_total",
		Help:      "CV field extractions by outcome.",
	}, []string{"outcome"})

	recommendationsTotal = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "matches",
		Name:      "recommendations_total",
		Help:      "Recommendations persisted as pending matches.",
	})

	emailsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "email",
		Name:      "sent_total",
		Help:      "Notification emails by type and outcome.",
	}, []string{"type", "outcome"})

	jobsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "worker",
		Name:      "jobs_total",
		Help:      "Background jobs by kind and outcome.",
	}, []string{"kind", "outcome"})

	jobDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "worker",
		Name:      "job_duration_seconds",
		Help:      "Background job latency.",
		Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300},
	}, []string{"kind"})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// ObserveHTTPRequest records one served request. route is the gin route
// template, not the raw path.
func ObserveHTTPRequest(method, route string, status int, d time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// ObserveLLMCall records one completion call.
func ObserveLLMCall(provider, operation string, err error, d time.Duration) {
	llmCallsTotal.WithLabelValues(provider, operation, outcome(err)).Inc()
	llmCallDuration.WithLabelValues(provider, operation).Observe(d.Seconds())
}

// IncCVExtraction counts a CV extraction attempt.
func IncCVExtraction(err error) {
	cvExtractionsTotal.WithLabelValues(outcome(err)).Inc()
}

// AddRecommendations counts persisted recommendations.
func AddRecommendations(n int) {
	if n > 0 {
		recommendationsTotal.Add(float64(n))
	}
}

// IncEmail counts a notification email attempt.
func IncEmail(emailType string, err error) {
	emailsTotal.WithLabelValues(emailType, outcome(err)).Inc()
}

// ObserveJob records one processed background job.
func ObserveJob(kind string, err error, d time.Duration) {
	jobsTotal.WithLabelValues(kind, outcome(err)).Inc()
	jobDuration.WithLabelValues(kind).Observe(d.Seconds())
}

// RegisterDBPool exports pool statistics for pool. Registering a second pool
// is ignored; only the first one is exported.
func RegisterDBPool(pool *sql.DB) {
	err := Registry.Register(collectors.NewDBStatsCollector(pool, "postgres"))
	var already prometheus.AlreadyRegisteredError
	if err != nil && !errors.As(err, &already) {
		panic(err)
	}
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(Registry, promhttp.HandlerOpts{}))
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
