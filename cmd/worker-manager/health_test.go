package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-advisor/internal/common/config"
)

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		checks     map[string]func(context.Context) error
		wantStatus int
		wantBody   string
	}{
		{"health", "/health", nil, http.StatusOK, "healthy"},
		{"ready", "/ready", map[string]func(context.Context) error{
			"zeebe": func(context.Context) error { return nil },
		}, http.StatusOK, "ready"},
		{"not ready", "/ready", map[string]func(context.Context) error{
			"zeebe":    func(context.Context) error { return nil },
			"postgres": func(context.Context) error { return errors.New("connection refused") },
		}, http.StatusServiceUnavailable, "not_ready"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			healthHandler(tt.checks).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantBody, body["status"])
		})
	}
}

func TestHealthHandler_ReportsFailedCheck(t *testing.T) {
	rec := httptest.NewRecorder()
	healthHandler(map[string]func(context.Context) error{
		"redis": func(context.Context) error { return errors.New("dial tcp: timeout") },
	}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

	var body struct {
		Failed map[string]string `json:"failed"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "dial tcp: timeout", body.Failed["redis"])
}

func TestWorkerTimeout(t *testing.T) {
	cfg := &config.Config{Workers: map[string]config.WorkerConfig{
		"advisor-analyze-demand": {Enabled: true, Timeout: 45000},
		"advisor-rank-feed":      {Enabled: true},
	}}

	assert.Equal(t, 45*time.Second, workerTimeout(cfg, "advisor-analyze-demand", time.Minute))
	assert.Equal(t, 30*time.Second, workerTimeout(cfg, "advisor-rank-feed", 30*time.Second))
	assert.Equal(t, 2*time.Minute, workerTimeout(cfg, "advisor-build-solution", 2*time.Minute))
}
