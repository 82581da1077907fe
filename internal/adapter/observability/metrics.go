package observability

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"route", "method"},
	)

	AIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_requests_total",
			Help: "Total number of AI requests by provider and operation",
		},
		[]string{"provider", "operation"},
	)
	AIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ai_request_duration_seconds",
			Help:    "AI request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
		[]string{"provider", "operation"},
	)

	RerankOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rerank_outcomes_total",
			Help: "Total number of per-weakness rerank outcomes",
		},
		[]string{"outcome"},
	)

	MetaCacheLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meta_cache_lookups_total",
			Help: "Total number of metadata cache lookups by result",
		},
		[]string{"result"},
	)

	// Recommendation score distribution
	RecommendationScoreHistogram = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommendation_score",
			Help:    "Distribution of final recommendation scores",
			Buckets: []float64{0, 0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0},
		},
	)
)

func InitMetrics() {
	prometheus.MustRegister(HTTPRequestsTotal)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(AIRequestsTotal)
	prometheus.MustRegister(AIRequestDuration)
	prometheus.MustRegister(RerankOutcomesTotal)
	prometheus.MustRegister(MetaCacheLookupsTotal)
	prometheus.MustRegister(RecommendationScoreHistogram)
}

// HTTPMetricsMiddleware records Prometheus metrics for each request.
func HTTPMetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		dur := time.Since(start).Seconds()
		// Route pattern may be unavailable outside chi router; guard nil
		var route string
		if rc := chi.RouteContext(r.Context()); rc != nil {
			route = rc.RoutePattern()
		}
		if route == "" {
			route = r.URL.Path
		}
		method := r.Method
		status := ww.Status()
		HTTPRequestsTotal.WithLabelValues(route, method, http.StatusText(status)).Inc()
		HTTPRequestDuration.WithLabelValues(route, method).Observe(dur)
	})
}

// ObserveRerankOutcome records one per-weakness rerank outcome.
func ObserveRerankOutcome(outcome string) {
	RerankOutcomesTotal.WithLabelValues(outcome).Inc()
}

// ObserveMetaCacheLookup records a metadata cache hit or miss.
func ObserveMetaCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	MetaCacheLookupsTotal.WithLabelValues(result).Inc()
}

// ObserveRecommendationScores records the final scores returned to a caller.
func ObserveRecommendationScores(scores []float64) {
	for _, s := range scores {
		if s >= 0 && s <= 1 {
			RecommendationScoreHistogram.Observe(s)
		}
	}
}
