package importer

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/noah-isme/goalie-roster-api/internal/models"
)

// DefaultChunkSize bounds the number of rows sent to the store per call.
const DefaultChunkSize = 100

// Phase identifies a step of the write saga.
type Phase string

// Saga steps in execution order.
const (
	PhaseRosterUpsert  Phase = "roster_upsert"
	PhaseSessionLookup Phase = "session_lookup"
	PhaseSessionDelete Phase = "session_delete"
	PhaseSessionInsert Phase = "session_insert"
)

// RosterStore persists athletes.
type RosterStore interface {
	// UpsertAll writes every athlete keyed on email atomically and returns the stored keys.
	UpsertAll(ctx context.Context, athletes []models.Athlete) ([]models.AthleteKey, error)
	// IDsByEmails maps lower-cased email to the stored identifier.
	IDsByEmails(ctx context.Context, emails []string) (map[string]string, error)
}

// SessionStore persists session log rows.
type SessionStore interface {
	DeleteByAthletes(ctx context.Context, athleteIDs []string) (int64, error)
	InsertBatch(ctx context.Context, entries []models.SessionLogEntry) error
}

// StepEvent describes one completed or failed store call.
type StepEvent struct {
	Phase    Phase
	Chunk    int
	Chunks   int
	Rows     int
	Duration time.Duration
	Err      error
}

// StepObserver receives saga progress.
type StepObserver func(StepEvent)

// SagaError reports which step failed and how much of it was committed.
// Failures after the roster upsert leave earlier chunks in place.
type SagaError struct {
	Phase           Phase
	CommittedChunks int
	TotalChunks     int
	Err             error
}

func (e *SagaError) Error() string {
	if e.Phase == PhaseRosterUpsert {
		return e.Err.Error()
	}
	if e.Phase == PhaseSessionLookup {
		return fmt.Sprintf("%s failed: %v", e.Phase, e.Err)
	}
	return fmt.Sprintf("%s failed after %d/%d chunks: %v", e.Phase, e.CommittedChunks, e.TotalChunks, e.Err)
}

func (e *SagaError) Unwrap() error {
	return e.Err
}

// Partial reports whether the roster was already written when the failure happened.
func (e *SagaError) Partial() bool {
	return e.Phase != PhaseRosterUpsert
}

// WriteResult summarises a completed saga.
type WriteResult struct {
	Athletes        int
	Created         int
	Updated         int
	SessionRows     int
	SessionsSkipped bool
}

// Writer runs the two-step roster/session saga.
type Writer struct {
	roster    RosterStore
	sessions  SessionStore
	chunkSize int
	observer  StepObserver
	limiter   *rate.Limiter
	now       func() time.Time
}

// NewWriter builds a writer. A chunk size <= 0 uses DefaultChunkSize.
func NewWriter(roster RosterStore, sessions SessionStore, chunkSize int, observer StepObserver) *Writer {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if observer == nil {
		observer = func(StepEvent) {}
	}
	return &Writer{
		roster:    roster,
		sessions:  sessions,
		chunkSize: chunkSize,
		observer:  observer,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WithLimiter paces session store calls. A nil limiter disables pacing.
func (w *Writer) WithLimiter(limiter *rate.Limiter) *Writer {
	w.limiter = limiter
	return w
}

// wait blocks until the next chunk may run or ctx is done.
func (w *Writer) wait(ctx context.Context) error {
	if w.limiter == nil {
		return ctx.Err()
	}
	return w.limiter.Wait(ctx)
}

// Write upserts the roster and then rebuilds session history for every touched
// athlete. With rebuildSessions false the session store is left untouched.
func (w *Writer) Write(ctx context.Context, candidates []Candidate, rebuildSessions bool) (WriteResult, error) {
	athletes, created := Dedupe(candidates)
	result := WriteResult{Athletes: len(athletes), Created: created, Updated: len(athletes) - created}

	start := time.Now()
	keys, err := w.roster.UpsertAll(ctx, athletes)
	w.observer(StepEvent{Phase: PhaseRosterUpsert, Chunk: 1, Chunks: 1, Rows: len(athletes), Duration: time.Since(start), Err: err})
	if err != nil {
		return result, &SagaError{Phase: PhaseRosterUpsert, TotalChunks: 1, Err: err}
	}

	if !rebuildSessions {
		result.SessionsSkipped = true
		return result, nil
	}

	emails := make([]string, 0, len(keys))
	for _, k := range keys {
		emails = append(emails, emailKey(k.Email))
	}
	start = time.Now()
	ids, err := w.roster.IDsByEmails(ctx, emails)
	w.observer(StepEvent{Phase: PhaseSessionLookup, Chunk: 1, Chunks: 1, Rows: len(emails), Duration: time.Since(start), Err: err})
	if err != nil {
		return result, &SagaError{Phase: PhaseSessionLookup, TotalChunks: 1, Err: err}
	}

	entries := w.sessionRows(candidates, ids)
	owners := touchedIDs(ids)

	if err := w.deleteSessions(ctx, owners); err != nil {
		return result, err
	}
	written, err := w.insertSessions(ctx, entries)
	result.SessionRows = written
	if err != nil {
		return result, err
	}
	return result, nil
}

// Dedupe collapses candidates to one athlete per email; the last occurrence
// wins. It returns the athletes in first-seen order and how many are new.
func Dedupe(candidates []Candidate) ([]models.Athlete, int) {
	order := make([]string, 0, len(candidates))
	latest := make(map[string]Candidate, len(candidates))
	for _, c := range candidates {
		key := emailKey(c.Email)
		if _, seen := latest[key]; !seen {
			order = append(order, key)
		}
		latest[key] = c
	}
	athletes := make([]models.Athlete, 0, len(order))
	created := 0
	for _, key := range order {
		c := latest[key]
		if c.IsNew {
			created++
		}
		athletes = append(athletes, c.Athlete)
	}
	return athletes, created
}

func (w *Writer) sessionRows(candidates []Candidate, ids map[string]string) []models.SessionLogEntry {
	now := w.now()
	entries := make([]models.SessionLogEntry, 0, len(candidates))
	for _, c := range candidates {
		if c.Session == nil {
			continue
		}
		id, ok := ids[emailKey(c.Email)]
		if !ok || id == "" {
			continue
		}
		entry := *c.Session
		entry.ID = uuid.NewString()
		entry.AthleteID = id
		entry.CreatedAt = now
		entries = append(entries, entry)
	}
	return entries
}

func touchedIDs(ids map[string]string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok || id == "" {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (w *Writer) deleteSessions(ctx context.Context, owners []string) error {
	chunks := chunkCount(len(owners), w.chunkSize)
	for i := 0; i < chunks; i++ {
		if err := w.wait(ctx); err != nil {
			return &SagaError{Phase: PhaseSessionDelete, CommittedChunks: i, TotalChunks: chunks, Err: err}
		}
		batch := owners[i*w.chunkSize : min(len(owners), (i+1)*w.chunkSize)]
		start := time.Now()
		_, err := w.sessions.DeleteByAthletes(ctx, batch)
		w.observer(StepEvent{Phase: PhaseSessionDelete, Chunk: i + 1, Chunks: chunks, Rows: len(batch), Duration: time.Since(start), Err: err})
		if err != nil {
			return &SagaError{Phase: PhaseSessionDelete, CommittedChunks: i, TotalChunks: chunks, Err: err}
		}
	}
	return nil
}

func (w *Writer) insertSessions(ctx context.Context, entries []models.SessionLogEntry) (int, error) {
	chunks := chunkCount(len(entries), w.chunkSize)
	written := 0
	for i := 0; i < chunks; i++ {
		if err := w.wait(ctx); err != nil {
			return written, &SagaError{Phase: PhaseSessionInsert, CommittedChunks: i, TotalChunks: chunks, Err: err}
		}
		batch := entries[i*w.chunkSize : min(len(entries), (i+1)*w.chunkSize)]
		start := time.Now()
		err := w.sessions.InsertBatch(ctx, batch)
		w.observer(StepEvent{Phase: PhaseSessionInsert, Chunk: i + 1, Chunks: chunks, Rows: len(batch), Duration: time.Since(start), Err: err})
		if err != nil {
			return written, &SagaError{Phase: PhaseSessionInsert, CommittedChunks: i, TotalChunks: chunks, Err: err}
		}
		written += len(batch)
	}
	return written, nil
}

func chunkCount(n, size int) int {
	if n == 0 {
		return 0
	}
	return (n + size - 1) / size
}
