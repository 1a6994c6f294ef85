package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"/", "/"},
		{"/vehicles", "/vehicles"},
		{"/vehicles/12", "/vehicles/{id}"},
		{"/vehicles/12/archive", "/vehicles/{id}/archive"},
		{"/reservations/7/cancel", "/reservations/{id}/cancel"},
		{"/admin/users/3/role", "/admin/users/{id}/role"},
		{"/static/css/app.css", "/static"},
		{"/health/ready", "/health/ready"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := normalizePath(tt.input); got != tt.expected {
				t.Errorf("normalizePath(%q) = %q, ожидается %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestMetricsMiddleware_PassesStatus(t *testing.T) {
	h := MetricsMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/vehicles/5", nil))

	if rec.Code != http.StatusTeapot {
		t.Errorf("код ответа %d, ожидается %d", rec.Code, http.StatusTeapot)
	}
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	h := chimiddleware.RequestID(RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusFound)
	})))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/calendar", nil))
	out := buf.String()
	for _, want := range []string{`"path":"/calendar"`, `"status":302`, `"request_id":"`, `"component":"http"`} {
		if !strings.Contains(out, want) {
			t.Errorf("запись журнала не содержит %s: %s", want, out)
		}
	}

	buf.Reset()
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health/live", nil))
	if buf.Len() != 0 {
		t.Errorf("health-проба не должна логироваться на уровне Info: %s", buf.String())
	}
}
