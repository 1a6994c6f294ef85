package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

type staticChecker struct {
	status  string
	message string
}

func (c staticChecker) CheckReady() (string, string) { return c.status, c.message }

func TestHealthLive(t *testing.T) {
	h := NewHealthHandler(nil, nil)
	rec := httptest.NewRecorder()
	h.HealthLive(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("код ответа %d", rec.Code)
	}
	var resp healthLiveResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "ok" || resp.Service != serviceName {
		t.Errorf("неожиданный ответ: %+v", resp)
	}
}

func TestHealthReady(t *testing.T) {
	tests := []struct {
		name       string
		backend    ReadinessChecker
		store      ReadinessChecker
		wantCode   int
		wantStatus string
		wantStore  bool
	}{
		{"всё доступно", staticChecker{status: "ok"}, nil, http.StatusOK, "ok", false},
		{"мониторинг не запущен", nil, nil, http.StatusOK, "degraded", false},
		{"backend недоступен", staticChecker{status: "fail", message: "timeout"}, nil, http.StatusServiceUnavailable, "fail", false},
		{"redis недоступен", staticChecker{status: "ok"}, staticChecker{status: "fail"}, http.StatusServiceUnavailable, "fail", true},
		{"redis доступен", staticChecker{status: "ok"}, staticChecker{status: "ok"}, http.StatusOK, "ok", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(tt.backend, tt.store)
			rec := httptest.NewRecorder()
			h.HealthReady(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

			if rec.Code != tt.wantCode {
				t.Errorf("код ответа %d, ожидается %d", rec.Code, tt.wantCode)
			}
			var resp healthReadyResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatal(err)
			}
			if resp.Status != tt.wantStatus {
				t.Errorf("статус %q, ожидается %q", resp.Status, tt.wantStatus)
			}
			if (resp.Checks.SessionStore != nil) != tt.wantStore {
				t.Errorf("проверка хранилища присутствует = %v", resp.Checks.SessionStore != nil)
			}
		})
	}
}
