package models

import "time"

// ImportJobStatus tracks the lifecycle of an asynchronous import.
type ImportJobStatus string

// Import job states.
const (
	ImportJobQueued    ImportJobStatus = "QUEUED"
	ImportJobRunning   ImportJobStatus = "RUNNING"
	ImportJobSucceeded ImportJobStatus = "SUCCEEDED"
	ImportJobPartial   ImportJobStatus = "PARTIAL"
	ImportJobFailed    ImportJobStatus = "FAILED"
)

// ImportSummary reports the outcome of one import run.
type ImportSummary struct {
	RowsParsed         int            `json:"rows_parsed"`
	RowsDiscarded      int            `json:"rows_discarded"`
	DiscardReasons     map[string]int `json:"discard_reasons,omitempty"`
	AthletesAffected   int            `json:"athletes_affected"`
	AthletesCreated    int            `json:"athletes_created"`
	AthletesUpdated    int            `json:"athletes_updated"`
	SessionRowsWritten int            `json:"session_rows_written"`
	SessionsSkipped    bool           `json:"sessions_skipped"`
	Partial            bool           `json:"partial"`
	Warnings           []string       `json:"warnings,omitempty"`
}

// ImportJob is the cached state of a queued import.
type ImportJob struct {
	ID              string          `json:"id"`
	Status          ImportJobStatus `json:"status"`
	TargetAthleteID string          `json:"target_athlete_id,omitempty"`
	RequestedBy     string          `json:"requested_by,omitempty"`
	Summary         *ImportSummary  `json:"summary,omitempty"`
	Error           string          `json:"error,omitempty"`
	EnqueuedAt      time.Time       `json:"enqueued_at"`
	FinishedAt      *time.Time      `json:"finished_at,omitempty"`
}

// ImportMetricsSnapshot aggregates process-local import counters.
type ImportMetricsSnapshot struct {
	ImportsTotal       uint64    `json:"imports_total"`
	ImportsFailed      uint64    `json:"imports_failed"`
	ImportsPartial     uint64    `json:"imports_partial"`
	RowsParsed         uint64    `json:"rows_parsed"`
	RowsDiscarded      uint64    `json:"rows_discarded"`
	SessionRowsWritten uint64    `json:"session_rows_written"`
	RequestsTotal      uint64    `json:"requests_total"`
	CacheHitRatio      float64   `json:"cache_hit_ratio"`
	Goroutines         int       `json:"goroutines"`
	GeneratedAt        time.Time `json:"generated_at"`
}
