package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/goalie-roster-api/internal/models"
	"github.com/noah-isme/goalie-roster-api/internal/service"
)

func TestMetricsHandlerReady(t *testing.T) {
	healthy := PingFunc(func(context.Context) error { return nil })
	down := PingFunc(func(context.Context) error { return errors.New("connection refused") })

	h := NewMetricsHandler(nil, map[string]Pinger{"postgres": healthy})
	c, w := newRequestContext(httptest.NewRequest(http.MethodGet, "/ready", nil))
	h.Ready(c)
	assert.Equal(t, http.StatusOK, w.Code)

	h = NewMetricsHandler(nil, map[string]Pinger{"postgres": healthy, "redis": down})
	c, w = newRequestContext(httptest.NewRequest(http.MethodGet, "/ready", nil))
	h.Ready(c)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "connection refused")
}

func TestMetricsHandlerSummaryAndPrometheus(t *testing.T) {
	metrics := service.NewMetricsService()
	metrics.ObserveImport(models.ImportSummary{RowsParsed: 3}, nil, 0)
	h := NewMetricsHandler(metrics, nil)

	c, w := newRequestContext(httptest.NewRequest(http.MethodGet, "/metrics/summary", nil))
	h.Summary(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"rows_parsed":3`)

	c, w = newRequestContext(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	h.Prometheus(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "roster_import_runs_total")

	c, w = newRequestContext(httptest.NewRequest(http.MethodGet, "/health", nil))
	h.Health(c)
	assert.Equal(t, http.StatusOK, w.Code)
}
