// metrics.go — Prometheus HTTP метрики QuickFolio API.
// Регистрирует метрики: qf_http_requests_total, qf_http_request_duration_seconds.
package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// httpRequestsTotal — общее количество HTTP-запросов.
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qf_http_requests_total",
			Help: "Общее количество HTTP-запросов к QuickFolio API",
		},
		[]string{"method", "path", "status"},
	)

	// httpRequestDuration — гистограмма длительности HTTP-запросов.
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "qf_http_request_duration_seconds",
			Help:    "Длительность HTTP-запросов к QuickFolio API в секундах",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// MetricsMiddleware возвращает HTTP middleware для сбора Prometheus метрик.
func MetricsMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			path := normalizePath(r.URL.Path)

			rec := newStatusRecorder(w)
			next.ServeHTTP(rec, r)

			httpRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(rec.status)).Inc()
			httpRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
		})
	}
}

// normalizePath сводит неизвестные пути к "other", чтобы не раздувать кардинальность.
// Идентификаторы передаются в query (?id=), поэтому известные пути статичны.
func normalizePath(path string) string {
	switch path {
	case "/api/files", "/api/folios", "/api/openapi.yaml",
		"/health/live", "/health/ready", "/metrics":
		return path
	}
	return "other"
}
