// health.go — пробы готовности и метрики.
//
//	/health/live  — процесс жив
//	/health/ready — PostgreSQL отвечает; недоступные некритичные зависимости дают degraded
//	/metrics      — Prometheus
package handlers

import (
	"maps"
	"net/http"
	"slices"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bigkaa/quickfolio/internal/config"
)

const serviceName = "quickfolio-api"

// Статусы проверок.
const (
	statusOK       = "ok"
	statusDegraded = "degraded"
	statusFail     = "fail"
)

// ReadinessChecker — проверка готовности критичной зависимости.
type ReadinessChecker interface {
	// CheckReady возвращает статус ("ok", "degraded", "fail") и сообщение.
	CheckReady() (status string, message string)
}

// DependencyHealth — состояние зависимостей из topologymetrics (имя → доступна).
type DependencyHealth interface {
	Health() map[string]bool
}

// HealthHandler — обработчик health endpoints.
type HealthHandler struct {
	postgres    ReadinessChecker
	deps        DependencyHealth
	promHandler http.Handler
}

// NewHealthHandler создаёт обработчик. postgres == nil — readiness всегда fail.
func NewHealthHandler(postgres ReadinessChecker) *HealthHandler {
	return &HealthHandler{postgres: postgres, promHandler: promhttp.Handler()}
}

// SetDependencies подключает состояние некритичных зависимостей к readiness.
func (h *HealthHandler) SetDependencies(deps DependencyHealth) {
	h.deps = deps
}

type checkResult struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type healthResponse struct {
	Status    string                 `json:"status"`
	Timestamp string                 `json:"timestamp"`
	Version   string                 `json:"version"`
	Service   string                 `json:"service"`
	Checks    map[string]checkResult `json:"checks,omitempty"`
}

func newHealthResponse(status string) healthResponse {
	return healthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   config.Version,
		Service:   serviceName,
	}
}

// HealthLive всегда отвечает 200.
func (h *HealthHandler) HealthLive(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, newHealthResponse(statusOK))
}

// HealthReady отвечает 200 (ok/degraded) или 503 (fail).
func (h *HealthHandler) HealthReady(w http.ResponseWriter, _ *http.Request) {
	checks := map[string]checkResult{}

	if h.postgres == nil {
		checks["postgresql"] = checkResult{Status: statusFail, Message: "не инициализирован"}
	} else {
		status, msg := h.postgres.CheckReady()
		checks["postgresql"] = checkResult{Status: status, Message: msg}
	}

	if h.deps != nil {
		health := h.deps.Health()
		for _, name := range slices.Sorted(maps.Keys(health)) {
			if _, done := checks[name]; done {
				continue
			}
			if health[name] {
				checks[name] = checkResult{Status: statusOK}
			} else {
				checks[name] = checkResult{Status: statusDegraded, Message: "зависимость недоступна"}
			}
		}
	}

	resp := newHealthResponse(statusOK)
	resp.Checks = checks
	for _, c := range checks {
		resp.Status = worse(resp.Status, c.Status)
	}

	code := http.StatusOK
	if resp.Status == statusFail {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, resp)
}

// GetMetrics отдаёт Prometheus метрики.
func (h *HealthHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	h.promHandler.ServeHTTP(w, r)
}

// worse возвращает худший из двух статусов: fail > degraded > ok.
func worse(a, b string) string {
	rank := func(s string) int {
		switch s {
		case statusFail:
			return 2
		case statusDegraded:
			return 1
		default:
			return 0
		}
	}
	if rank(b) > rank(a) {
		return b
	}
	return a
}
