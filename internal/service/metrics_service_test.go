package service

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/goalie-roster-api/internal/importer"
	"github.com/noah-isme/goalie-roster-api/internal/models"
)

func TestMetricsServiceImportCounters(t *testing.T) {
	m := NewMetricsService()

	m.ObserveImport(models.ImportSummary{RowsParsed: 10, RowsDiscarded: 2, DiscardReasons: map[string]int{"placeholder": 2}, AthletesCreated: 3, SessionRowsWritten: 8}, nil, time.Second)
	m.ObserveImport(models.ImportSummary{RowsParsed: 4, Partial: true}, errors.New("insert"), time.Second)
	m.ObserveImport(models.ImportSummary{}, errors.New("empty"), time.Millisecond)
	m.ObserveImportStep(importer.StepEvent{Phase: importer.PhaseSessionInsert, Duration: time.Millisecond})
	m.ObserveHTTPRequest(http.MethodPost, "/api/v1/imports", http.StatusCreated, time.Millisecond)

	snap := m.Snapshot()
	assert.Equal(t, uint64(3), snap.ImportsTotal)
	assert.Equal(t, uint64(1), snap.ImportsPartial)
	assert.Equal(t, uint64(1), snap.ImportsFailed)
	assert.Equal(t, uint64(14), snap.RowsParsed)
	assert.Equal(t, uint64(2), snap.RowsDiscarded)
	assert.Equal(t, uint64(8), snap.SessionRowsWritten)
	assert.Equal(t, uint64(1), snap.RequestsTotal)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `roster_import_runs_total{outcome="partial"} 1`)
	assert.Contains(t, w.Body.String(), `roster_import_rows_discarded_total{reason="placeholder"} 2`)
}

func TestMetricsServiceNilSafe(t *testing.T) {
	var m *MetricsService
	m.ObserveImport(models.ImportSummary{}, nil, 0)
	m.RecordCacheOperation(true)
	assert.Zero(t, m.Snapshot().ImportsTotal)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
