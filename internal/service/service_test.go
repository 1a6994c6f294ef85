package service

import (
	"context"
	"errors"
	"testing"
)

func TestReadinessFromHealth(t *testing.T) {
	tests := []struct {
		name       string
		health     map[string]bool
		wantStatus string
	}{
		{"нет данных", map[string]bool{}, "degraded"},
		{"nil", nil, "degraded"},
		{"backend доступен", map[string]bool{BackendDependency: true}, "ok"},
		{"backend с endpoint", map[string]bool{BackendDependency + ":localhost:5000": true}, "ok"},
		{"backend недоступен", map[string]bool{BackendDependency + ":localhost:5000": false}, "fail"},
		{"чужая зависимость", map[string]bool{"reservation-backend-old": false}, "degraded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got, _ := readinessFromHealth(tt.health, BackendDependency); got != tt.wantStatus {
				t.Errorf("readinessFromHealth() = %q, ожидается %q", got, tt.wantStatus)
			}
		})
	}
}

func TestDephealthService_NilIsDegraded(t *testing.T) {
	var ds *DephealthService
	if status, _ := ds.CheckReady(); status != "degraded" {
		t.Errorf("CheckReady() = %q, ожидается degraded", status)
	}
}

func TestBackendHealthPath(t *testing.T) {
	tests := map[string]string{
		"http://localhost:5000":          "/",
		"http://localhost:5000/":         "/",
		"https://fleet.example.com/cars": "/cars",
	}
	for in, want := range tests {
		if got := backendHealthPath(in); got != want {
			t.Errorf("backendHealthPath(%q) = %q, ожидается %q", in, got, want)
		}
	}
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

func TestStoreChecker(t *testing.T) {
	if status, _ := NewStoreChecker(fakePinger{}).CheckReady(); status != "ok" {
		t.Errorf("CheckReady() = %q, ожидается ok", status)
	}
	status, msg := NewStoreChecker(fakePinger{err: errors.New("connection refused")}).CheckReady()
	if status != "fail" || msg != "connection refused" {
		t.Errorf("CheckReady() = %q, %q", status, msg)
	}
}
