package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/goalie-roster-api/internal/importer"
	"github.com/noah-isme/goalie-roster-api/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation and provides lightweight snapshots for API consumption.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	importRuns      *prometheus.CounterVec
	importDuration  prometheus.Histogram
	rowsDiscarded   *prometheus.CounterVec
	athletesWritten *prometheus.CounterVec
	sessionRows     prometheus.Counter
	stepDuration    *prometheus.HistogramVec

	requestCount       uint64
	cacheHitCount      uint64
	cacheMissCount     uint64
	importCount        uint64
	importFailures     uint64
	importPartials     uint64
	rowsParsedCount    uint64
	rowsDiscardedCount uint64
	sessionRowCount    uint64
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	importRuns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "roster_import_runs_total",
		Help: "Import runs by outcome",
	}, []string{"outcome"})

	importDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "roster_import_duration_seconds",
		Help:    "Wall time of a full import run",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	})

	rowsDiscarded := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "roster_import_rows_discarded_total",
		Help: "Rows discarded during normalisation by reason",
	}, []string{"reason"})

	athletesWritten := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "roster_import_athletes_total",
		Help: "Athletes written by the importer",
	}, []string{"kind"})

	sessionRows := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "roster_import_session_rows_total",
		Help: "Session log rows inserted by the importer",
	})

	stepDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "roster_import_step_duration_seconds",
		Help:    "Duration of individual store calls issued by the import writer",
		Buckets: prometheus.DefBuckets,
	}, []string{"phase", "outcome"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheHits, cacheMisses, importRuns, importDuration,
		rowsDiscarded, athletesWritten, sessionRows, stepDuration, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:        registry,
		handler:         handler,
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
		importRuns:      importRuns,
		importDuration:  importDuration,
		rowsDiscarded:   rowsDiscarded,
		athletesWritten: athletesWritten,
		sessionRows:     sessionRows,
		stepDuration:    stepDuration,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
}

// RecordCacheOperation records a cache hit or miss.
func (m *MetricsService) RecordCacheOperation(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.cacheHits.Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
		return
	}
	m.cacheMisses.Inc()
	atomic.AddUint64(&m.cacheMissCount, 1)
}

// ObserveImport records the outcome of one import run.
func (m *MetricsService) ObserveImport(summary models.ImportSummary, err error, duration time.Duration) {
	if m == nil {
		return
	}
	outcome := "succeeded"
	switch {
	case summary.Partial:
		outcome = "partial"
		atomic.AddUint64(&m.importPartials, 1)
	case err != nil:
		outcome = "failed"
		atomic.AddUint64(&m.importFailures, 1)
	}
	m.importRuns.WithLabelValues(outcome).Inc()
	m.importDuration.Observe(duration.Seconds())
	atomic.AddUint64(&m.importCount, 1)

	for reason, n := range summary.DiscardReasons {
		m.rowsDiscarded.WithLabelValues(reason).Add(float64(n))
	}
	if summary.AthletesCreated > 0 {
		m.athletesWritten.WithLabelValues("created").Add(float64(summary.AthletesCreated))
	}
	if summary.AthletesUpdated > 0 {
		m.athletesWritten.WithLabelValues("updated").Add(float64(summary.AthletesUpdated))
	}
	m.sessionRows.Add(float64(summary.SessionRowsWritten))
	atomic.AddUint64(&m.rowsParsedCount, uint64(summary.RowsParsed))
	atomic.AddUint64(&m.rowsDiscardedCount, uint64(summary.RowsDiscarded))
	atomic.AddUint64(&m.sessionRowCount, uint64(summary.SessionRowsWritten))
}

// ObserveImportStep records one writer store call. It satisfies importer.StepObserver.
func (m *MetricsService) ObserveImportStep(event importer.StepEvent) {
	if m == nil {
		return
	}
	outcome := "ok"
	if event.Err != nil {
		outcome = "error"
	}
	m.stepDuration.WithLabelValues(string(event.Phase), outcome).Observe(event.Duration.Seconds())
}

// Snapshot returns aggregated import metrics for the summary endpoint.
func (m *MetricsService) Snapshot() models.ImportMetricsSnapshot {
	if m == nil {
		return models.ImportMetricsSnapshot{}
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)

	var cacheRatio float64
	if total := hits + misses; total > 0 {
		cacheRatio = float64(hits) / float64(total)
	}

	return models.ImportMetricsSnapshot{
		ImportsTotal:       atomic.LoadUint64(&m.importCount),
		ImportsFailed:      atomic.LoadUint64(&m.importFailures),
		ImportsPartial:     atomic.LoadUint64(&m.importPartials),
		RowsParsed:         atomic.LoadUint64(&m.rowsParsedCount),
		RowsDiscarded:      atomic.LoadUint64(&m.rowsDiscardedCount),
		SessionRowsWritten: atomic.LoadUint64(&m.sessionRowCount),
		RequestsTotal:      atomic.LoadUint64(&m.requestCount),
		CacheHitRatio:      cacheRatio,
		Goroutines:         runtime.NumGoroutine(),
		GeneratedAt:        time.Now().UTC(),
	}
}
