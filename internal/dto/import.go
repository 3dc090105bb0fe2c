package dto

import "github.com/noah-isme/goalie-roster-api/internal/models"

// CreateImportRequest contains options submitted alongside an import file.
type CreateImportRequest struct {
	TargetAthleteID string `form:"targetAthleteId" validate:"omitempty,startswith=GC-"`
	Async           bool   `form:"async"`
	DryRun          bool   `form:"dryRun"`
	KeepHistory     bool   `form:"keepHistory"`
}

// ImportResponse is returned by a synchronous import.
type ImportResponse struct {
	Summary models.ImportSummary `json:"summary"`
}

// ImportJobAccepted is returned when an import was queued.
type ImportJobAccepted struct {
	JobID  string                 `json:"job_id"`
	Status models.ImportJobStatus `json:"status"`
}
