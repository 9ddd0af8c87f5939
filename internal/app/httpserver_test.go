package app

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) PingContext(ctx context.Context) error { return f(ctx) }

func TestHealthz(t *testing.T) {
	tests := []struct {
		name string
		db   Pinger
		code int
	}{
		{"memory store", nil, http.StatusOK},
		{"db ok", pingFunc(func(context.Context) error { return nil }), http.StatusOK},
		{"db down", pingFunc(func(context.Context) error { return errors.New("connection refused") }), http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			newMux(tt.db, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
			if rec.Code != tt.code {
				t.Fatalf("code = %d, want %d (%s)", rec.Code, tt.code, rec.Body.String())
			}
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	rec := httptest.NewRecorder()
	newMux(nil, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "mycsd_bot_updates_total") {
		t.Fatal("workflow collectors are not exported")
	}
}

func TestLogLevelEndpoint(t *testing.T) {
	lvl := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	mux := newMux(nil, lvl)

	req := httptest.NewRequest(http.MethodPut, "/loglevel", strings.NewReader(`{"level":"debug"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d (%s)", rec.Code, rec.Body.String())
	}
	if lvl.Level() != zapcore.DebugLevel {
		t.Fatalf("level = %s", lvl.Level())
	}
}
