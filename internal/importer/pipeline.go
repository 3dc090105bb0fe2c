package importer

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/noah-isme/goalie-roster-api/internal/models"
	appErrors "github.com/noah-isme/goalie-roster-api/pkg/errors"
)

// ErrNoValidRows is returned when every data row was discarded.
var ErrNoValidRows = appErrors.New("NO_VALID_ROWS", http.StatusUnprocessableEntity, "no valid rows")

// RunOptions tunes a single pipeline run.
type RunOptions struct {
	// Target scopes every row to one pre-selected athlete.
	Target *models.Athlete
	// DryRun stops after reconciliation without touching the stores.
	DryRun bool
	// KeepHistory leaves session history alone when the file has no date
	// column. By default every touched athlete's sessions are replaced by the
	// rows of this file, which for a roster-only file means none.
	KeepHistory bool
}

// Pipeline runs tokenize → map → normalize → reconcile → write for one file.
type Pipeline struct {
	writer *Writer
}

// NewPipeline builds a pipeline around a writer.
func NewPipeline(writer *Writer) *Pipeline {
	return &Pipeline{writer: writer}
}

// Run imports raw CSV text against the snapshot. On a partial session
// rebuild the returned summary is populated and the error is a *SagaError.
func (p *Pipeline) Run(ctx context.Context, raw string, snapshot *Snapshot, opts RunOptions) (models.ImportSummary, error) {
	summary := models.ImportSummary{DiscardReasons: map[string]int{}}

	rows := Tokenize(raw)
	if len(rows) == 0 {
		return summary, ErrEmptyFile
	}
	columns, err := MapColumns(rows, opts.Target != nil)
	if err != nil {
		return summary, err
	}

	normalizer := NewNormalizer(columns, opts.Target)
	candidates := make([]Candidate, 0, len(rows))
	for i := columns.HeaderRow() + 1; i < len(rows); i++ {
		summary.RowsParsed++
		candidate, reason := normalizer.Normalize(rows[i])
		if reason != DiscardNone {
			summary.RowsDiscarded++
			summary.DiscardReasons[string(reason)]++
			continue
		}
		candidate.Index = len(candidates)
		candidates = append(candidates, candidate)
	}

	reconciled, dropped := NewReconciler(snapshot).Reconcile(candidates)
	if dropped > 0 {
		summary.RowsDiscarded += dropped
		summary.DiscardReasons[string(DiscardUnmatchedName)] += dropped
	}
	if len(reconciled) == 0 {
		return summary, ErrNoValidRows
	}

	if opts.DryRun {
		athletes, created := Dedupe(reconciled)
		summary.AthletesAffected = len(athletes)
		summary.AthletesCreated = created
		summary.AthletesUpdated = len(athletes) - created
		summary.SessionsSkipped = true
		return summary, nil
	}

	hasDates := columns.Has(FieldDate)
	result, err := p.writer.Write(ctx, reconciled, hasDates || !opts.KeepHistory)
	summary.AthletesAffected = result.Athletes
	summary.AthletesCreated = result.Created
	summary.AthletesUpdated = result.Updated
	summary.SessionRowsWritten = result.SessionRows
	summary.SessionsSkipped = result.SessionsSkipped
	switch {
	case hasDates:
	case opts.KeepHistory:
		summary.Warnings = append(summary.Warnings, "no date column found; session history left unchanged")
	default:
		summary.Warnings = append(summary.Warnings, "no date column found; session history cleared for imported athletes")
	}

	var sagaErr *SagaError
	if errors.As(err, &sagaErr) && sagaErr.Partial() {
		summary.Partial = true
		summary.Warnings = append(summary.Warnings,
			fmt.Sprintf("roster saved but %s stopped after %d of %d chunks; rerun the import to finish", sagaErr.Phase, sagaErr.CommittedChunks, sagaErr.TotalChunks))
	}
	return summary, err
}
