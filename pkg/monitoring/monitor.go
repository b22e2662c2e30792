package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	// ScoreComputations counts per-triple recomputations by outcome
	// (ok, empty, error, locked).
	ScoreComputations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scoring_computations_total",
			Help: "Score recomputations per (project, user, questionnaire) triple",
		},
		[]string{"result"},
	)

	ScoreComputeDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scoring_compute_duration_seconds",
			Help:    "Duration of one ComputeScores call",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5},
		},
	)

	NormalizationFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scoring_normalization_failures_total",
			Help: "Answers rejected by the normalizer",
		},
		[]string{"answer_type"},
	)

	TensionVotes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tension_votes_total",
			Help: "Votes cast on tensions",
		},
		[]string{"vote_type"},
	)

	ReportsArchived = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "report_metrics_archived_total",
			Help: "ReportMetrics snapshots written to object storage",
		},
	)
)

func Init() {
	prometheus.MustRegister(RequestCounter)
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(ScoreComputations)
	prometheus.MustRegister(ScoreComputeDuration)
	prometheus.MustRegister(NormalizationFailures)
	prometheus.MustRegister(TensionVotes)
	prometheus.MustRegister(ReportsArchived)
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
