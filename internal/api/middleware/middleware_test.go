package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCORS_HeadersOnEveryResponse(t *testing.T) {
	handler := CORS("*")(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/files?id=x", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("статус = %d, ожидается 404", rec.Code)
	}
	want := map[string]string{
		"Access-Control-Allow-Origin":  "*",
		"Access-Control-Allow-Methods": "GET, POST, PUT, DELETE, OPTIONS",
		"Access-Control-Allow-Headers": "Content-Type, Authorization",
	}
	for k, v := range want {
		if got := rec.Header().Get(k); got != v {
			t.Errorf("%s = %q, ожидается %q", k, got, v)
		}
	}
}

func TestCORS_Preflight(t *testing.T) {
	handler := CORS("")(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Error("обработчик не должен вызываться для OPTIONS")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/folios", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("статус = %d, ожидается 200", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("пустой origin должен заменяться на *")
	}
}

func TestRecoverer(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))

	handler := Recoverer(logger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/files", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("статус = %d, ожидается 500", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("тело не JSON: %v", err)
	}
	if body["error"] != "Internal server error" {
		t.Errorf("error = %v", body["error"])
	}
	if !strings.Contains(logs.String(), "boom") {
		t.Error("паника не залогирована")
	}
}

func TestRequestLogger_LevelByStatus(t *testing.T) {
	tests := []struct {
		status int
		level  string
	}{
		{http.StatusOK, "INFO"},
		{http.StatusNotFound, "WARN"},
		{http.StatusInternalServerError, "ERROR"},
	}
	for _, tt := range tests {
		var logs bytes.Buffer
		logger := slog.New(slog.NewJSONHandler(&logs, nil))
		handler := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(tt.status)
			_, _ = w.Write([]byte("x"))
		}))
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/folios", nil))

		var entry map[string]any
		if err := json.Unmarshal(logs.Bytes(), &entry); err != nil {
			t.Fatalf("лог не JSON: %v", err)
		}
		if entry["level"] != tt.level {
			t.Errorf("status %d: level = %v, ожидается %s", tt.status, entry["level"], tt.level)
		}
		if entry["bytes"] != float64(1) {
			t.Errorf("bytes = %v, ожидается 1", entry["bytes"])
		}
	}
}

func TestRequestLogger_EntityAttrs(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	handler := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/files?id=f-1", nil))

	var entry map[string]any
	if err := json.Unmarshal(logs.Bytes(), &entry); err != nil {
		t.Fatalf("лог не JSON: %v", err)
	}
	if entry["entity"] != "files" || entry["id"] != "f-1" || entry["component"] != "http" {
		t.Errorf("атрибуты = %v", entry)
	}
}

func TestRequestLevel_Probes(t *testing.T) {
	if got := requestLevel("/health/live", http.StatusOK); got != slog.LevelDebug {
		t.Errorf("проба: level = %v, ожидается DEBUG", got)
	}
	if got := requestLevel("/health/ready", http.StatusServiceUnavailable); got != slog.LevelError {
		t.Errorf("проба 503: level = %v, ожидается ERROR", got)
	}
}

func TestNormalizePath(t *testing.T) {
	tests := map[string]string{
		"/api/files":      "/api/files",
		"/api/folios":     "/api/folios",
		"/health/ready":   "/health/ready",
		"/api/files/123":  "other",
		"/wp-admin/login": "other",
	}
	for in, want := range tests {
		if got := normalizePath(in); got != want {
			t.Errorf("normalizePath(%q) = %q, ожидается %q", in, got, want)
		}
	}
}
