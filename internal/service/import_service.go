package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/noah-isme/goalie-roster-api/internal/importer"
	"github.com/noah-isme/goalie-roster-api/internal/models"
	appErrors "github.com/noah-isme/goalie-roster-api/pkg/errors"
	"github.com/noah-isme/goalie-roster-api/pkg/jobs"
)

// ImportJobType labels queued roster imports.
const ImportJobType = "roster_import"

type rosterStore interface {
	importer.RosterStore
	ListAll(ctx context.Context) ([]models.Athlete, error)
}

type claimedEmailReader interface {
	ListClaimedEmails(ctx context.Context) ([]string, error)
}

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
}

// ImportRequest describes one import run.
type ImportRequest struct {
	Content         string `json:"-"`
	TargetAthleteID string `json:"target_athlete_id,omitempty"`
	DryRun          bool   `json:"dry_run,omitempty"`
	KeepHistory     bool   `json:"keep_history,omitempty"`
	RequestedBy     string `json:"requested_by,omitempty"`
}

// ImportServiceConfig tunes the writer and job bookkeeping.
type ImportServiceConfig struct {
	ChunkSize       int
	ChunksPerSecond float64
	JobTTL          time.Duration
}

// ImportService runs roster imports and tracks asynchronous jobs.
type ImportService struct {
	roster   rosterStore
	sessions importer.SessionStore
	users    claimedEmailReader
	cache    *CacheService
	queue    jobDispatcher
	metrics  *MetricsService
	logger   *zap.Logger
	cfg      ImportServiceConfig
	now      func() time.Time
}

// NewImportService constructs the import service.
func NewImportService(roster rosterStore, sessions importer.SessionStore, users claimedEmailReader, cache *CacheService, metrics *MetricsService, logger *zap.Logger, cfg ImportServiceConfig) *ImportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = importer.DefaultChunkSize
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 24 * time.Hour
	}
	return &ImportService{
		roster:   roster,
		sessions: sessions,
		users:    users,
		cache:    cache,
		metrics:  metrics,
		logger:   logger,
		cfg:      cfg,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// UseQueue enables asynchronous imports through the given dispatcher.
func (s *ImportService) UseQueue(queue jobDispatcher) {
	s.queue = queue
}

// AsyncEnabled reports whether Enqueue can accept jobs.
func (s *ImportService) AsyncEnabled() bool {
	return s.queue != nil && s.cache.Enabled()
}

// Import runs the pipeline synchronously. On a partial session rebuild the
// summary is returned together with a SESSION_REBUILD_PARTIAL error.
func (s *ImportService) Import(ctx context.Context, req ImportRequest) (*models.ImportSummary, error) {
	start := time.Now()
	logger := s.logger.With(zap.String("requested_by", req.RequestedBy), zap.String("target", req.TargetAthleteID), zap.Bool("dry_run", req.DryRun))

	snapshot, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	logger.Debug("roster snapshot loaded", zap.Int("athletes", snapshot.Size()))

	opts := importer.RunOptions{DryRun: req.DryRun, KeepHistory: req.KeepHistory}
	if id := strings.TrimSpace(req.TargetAthleteID); id != "" {
		target, ok := snapshot.FindByID(id)
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrTargetNotFound, fmt.Sprintf("athlete %s not found", id))
		}
		opts.Target = &target
	}

	writer := importer.NewWriter(s.roster, s.sessions, s.cfg.ChunkSize, s.observeStep(logger))
	if s.cfg.ChunksPerSecond > 0 {
		writer.WithLimiter(rate.NewLimiter(rate.Limit(s.cfg.ChunksPerSecond), 1))
	}

	summary, runErr := importer.NewPipeline(writer).Run(ctx, req.Content, snapshot, opts)
	s.metrics.ObserveImport(summary, runErr, time.Since(start))

	if !req.DryRun && (runErr == nil || summary.Partial) {
		_ = s.cache.Invalidate(ctx, athleteCachePattern)
	}

	if runErr != nil {
		mapped := mapImportError(runErr)
		fields := []zap.Field{zap.String("code", mapped.Code), zap.Int("rows_parsed", summary.RowsParsed), zap.Error(runErr)}
		if summary.Partial {
			logger.Warn("roster import partially applied", fields...)
			return &summary, mapped
		}
		if mapped.Status >= 500 {
			logger.Error("roster import failed", fields...)
		} else {
			logger.Info("roster import rejected", fields...)
		}
		return nil, mapped
	}

	logger.Info("roster import completed",
		zap.Int("rows_parsed", summary.RowsParsed),
		zap.Int("rows_discarded", summary.RowsDiscarded),
		zap.Int("athletes_created", summary.AthletesCreated),
		zap.Int("athletes_updated", summary.AthletesUpdated),
		zap.Int("session_rows", summary.SessionRowsWritten),
		zap.Duration("duration", time.Since(start)),
	)
	return &summary, nil
}

func (s *ImportService) snapshot(ctx context.Context) (*importer.Snapshot, error) {
	athletes, err := s.roster.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}
	claimed, err := s.users.ListClaimedEmails(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load claimed accounts")
	}
	return importer.NewSnapshot(athletes, claimed), nil
}

func (s *ImportService) observeStep(logger *zap.Logger) importer.StepObserver {
	return func(e importer.StepEvent) {
		s.metrics.ObserveImportStep(e)
		if e.Err != nil {
			logger.Warn("import step failed", zap.String("phase", string(e.Phase)), zap.Int("chunk", e.Chunk), zap.Int("chunks", e.Chunks), zap.Error(e.Err))
			return
		}
		logger.Debug("import step committed", zap.String("phase", string(e.Phase)), zap.Int("chunk", e.Chunk), zap.Int("chunks", e.Chunks), zap.Int("rows", e.Rows), zap.Duration("duration", e.Duration))
	}
}

// mapImportError keeps structural errors as they are and wraps store failures
// so the store message stays visible.
func mapImportError(err error) *appErrors.Error {
	var sagaErr *importer.SagaError
	if errors.As(err, &sagaErr) {
		if sagaErr.Partial() {
			return appErrors.Wrap(sagaErr, appErrors.ErrSessionRebuildPartial.Code, appErrors.ErrSessionRebuildPartial.Status, appErrors.ErrSessionRebuildPartial.Message)
		}
		return appErrors.Wrap(sagaErr.Err, appErrors.ErrRosterUpsertFailed.Code, appErrors.ErrRosterUpsertFailed.Status, appErrors.ErrRosterUpsertFailed.Message)
	}
	return appErrors.FromError(err)
}

// Enqueue records a queued job and hands it to the worker queue.
func (s *ImportService) Enqueue(ctx context.Context, req ImportRequest) (*models.ImportJob, error) {
	if !s.AsyncEnabled() {
		return nil, appErrors.Clone(appErrors.ErrUnavailable, "asynchronous imports are disabled")
	}
	job := &models.ImportJob{
		ID:              uuid.NewString(),
		Status:          models.ImportJobQueued,
		TargetAthleteID: req.TargetAthleteID,
		RequestedBy:     req.RequestedBy,
		EnqueuedAt:      s.now(),
	}
	if err := s.saveJob(ctx, job); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record import job")
	}
	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: ImportJobType, Payload: req, Enqueued: job.EnqueuedAt}); err != nil {
		s.finishJob(ctx, job, nil, err)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue import job")
	}
	s.logger.Info("roster import queued", zap.String("job_id", job.ID), zap.String("requested_by", req.RequestedBy))
	return job, nil
}

// HandleJob runs a queued import. Only store failures are returned so the
// queue retries them; a rerun is idempotent.
func (s *ImportService) HandleJob(ctx context.Context, qj jobs.Job) error {
	req, ok := qj.Payload.(ImportRequest)
	if !ok {
		s.logger.Error("unexpected import job payload", zap.String("job_id", qj.ID), zap.String("type", fmt.Sprintf("%T", qj.Payload)))
		return nil
	}
	job := &models.ImportJob{
		ID:              qj.ID,
		Status:          models.ImportJobRunning,
		TargetAthleteID: req.TargetAthleteID,
		RequestedBy:     req.RequestedBy,
		EnqueuedAt:      qj.Enqueued,
	}
	if err := s.saveJob(ctx, job); err != nil {
		s.logger.Warn("failed to mark import job running", zap.String("job_id", job.ID), zap.Error(err))
	}

	summary, err := s.Import(ctx, req)
	s.finishJob(ctx, job, summary, err)

	appErr := appErrors.FromError(err)
	if appErr != nil && (appErr.Code == appErrors.ErrRosterUpsertFailed.Code || appErr.Code == appErrors.ErrSessionRebuildPartial.Code) {
		return err
	}
	return nil
}

// GetJob returns the cached state of an asynchronous import.
func (s *ImportService) GetJob(ctx context.Context, id string) (*models.ImportJob, error) {
	var job models.ImportJob
	hit, err := s.cache.Get(ctx, importJobKey(id), &job)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load import job")
	}
	if !hit {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "import job not found")
	}
	return &job, nil
}

func (s *ImportService) finishJob(ctx context.Context, job *models.ImportJob, summary *models.ImportSummary, err error) {
	finished := s.now()
	job.FinishedAt = &finished
	job.Summary = summary
	switch {
	case err == nil:
		job.Status = models.ImportJobSucceeded
		job.Error = ""
	case summary != nil && summary.Partial:
		job.Status = models.ImportJobPartial
		job.Error = err.Error()
	default:
		job.Status = models.ImportJobFailed
		job.Error = err.Error()
	}
	if saveErr := s.saveJob(ctx, job); saveErr != nil {
		s.logger.Warn("failed to record import job result", zap.String("job_id", job.ID), zap.Error(saveErr))
	}
}

func (s *ImportService) saveJob(ctx context.Context, job *models.ImportJob) error {
	return s.cache.Set(ctx, importJobKey(job.ID), job, s.cfg.JobTTL)
}
