package importer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/noah-isme/goalie-roster-api/internal/models"
)

func writerCandidates() []Candidate {
	return []Candidate{
		{Email: "a@x.com", IsNew: true, Athlete: models.Athlete{ID: "GC-8000", Email: "a@x.com", FullName: "A One"}, Session: &models.SessionLogEntry{Notes: "first"}},
		{Email: "b@x.com", IsNew: true, Athlete: models.Athlete{ID: "GC-8001", Email: "b@x.com", FullName: "B Two"}, Session: &models.SessionLogEntry{Notes: "second"}},
		{Email: "a@x.com", IsNew: true, Athlete: models.Athlete{ID: "GC-8000", Email: "a@x.com", FullName: "A Renamed"}, Session: &models.SessionLogEntry{Notes: "third"}},
	}
}

func TestDedupeLastOccurrenceWins(t *testing.T) {
	athletes, created := Dedupe(writerCandidates())

	require.Len(t, athletes, 2)
	assert.Equal(t, 2, created)
	assert.Equal(t, "A Renamed", athletes[0].FullName)
	assert.Equal(t, "B Two", athletes[1].FullName)
}

func TestWriterRebuildsSessions(t *testing.T) {
	store := newMemoryStore()
	var events []StepEvent
	w := NewWriter(store, store, 1, func(e StepEvent) { events = append(events, e) })

	result, err := w.Write(context.Background(), writerCandidates(), true)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Athletes)
	assert.Equal(t, 3, result.SessionRows)
	assert.Equal(t, 2, store.sessionCount("GC-8000"))
	assert.Equal(t, 1, store.sessionCount("GC-8001"))
	assert.Equal(t, 2, store.deleteCalls)
	assert.Equal(t, 3, store.insertCalls)
	require.Len(t, events, 7)
	assert.Equal(t, PhaseRosterUpsert, events[0].Phase)
	assert.Equal(t, PhaseSessionLookup, events[1].Phase)
	assert.Equal(t, 2, events[1].Rows)

	_, err = w.Write(context.Background(), writerCandidates(), true)
	require.NoError(t, err)
	assert.Equal(t, 3, store.totalSessions())
}

func TestWriterRosterOnlySkipsSessions(t *testing.T) {
	store := newMemoryStore()
	w := NewWriter(store, store, 0, nil)

	result, err := w.Write(context.Background(), writerCandidates(), false)
	require.NoError(t, err)
	assert.True(t, result.SessionsSkipped)
	assert.Zero(t, store.deleteCalls)
	assert.Zero(t, store.insertCalls)
}

func TestWriterRosterFailureStopsSaga(t *testing.T) {
	store := newMemoryStore()
	store.failUpsert = errors.New("db down")
	w := NewWriter(store, store, 1, nil)

	_, err := w.Write(context.Background(), writerCandidates(), true)
	var sagaErr *SagaError
	require.ErrorAs(t, err, &sagaErr)
	assert.Equal(t, PhaseRosterUpsert, sagaErr.Phase)
	assert.False(t, sagaErr.Partial())
	assert.Equal(t, "db down", err.Error())
	assert.Zero(t, store.deleteCalls)
	assert.Zero(t, store.insertCalls)
}

func TestWriterLookupFailureNamesPhase(t *testing.T) {
	store := newMemoryStore()
	store.failIDs = errors.New("connection reset")
	w := NewWriter(store, store, 1, nil)

	_, err := w.Write(context.Background(), writerCandidates(), true)
	var sagaErr *SagaError
	require.ErrorAs(t, err, &sagaErr)
	assert.Equal(t, PhaseSessionLookup, sagaErr.Phase)
	assert.True(t, sagaErr.Partial())
	assert.Equal(t, "session_lookup failed: connection reset", err.Error())
	assert.Len(t, store.roster(), 2)
	assert.Zero(t, store.deleteCalls)
}

func TestWriterInsertFailureIsPartial(t *testing.T) {
	store := newMemoryStore()
	store.failInsertAt = 2
	w := NewWriter(store, store, 1, nil)

	result, err := w.Write(context.Background(), writerCandidates(), true)
	var sagaErr *SagaError
	require.ErrorAs(t, err, &sagaErr)
	assert.Equal(t, PhaseSessionInsert, sagaErr.Phase)
	assert.True(t, sagaErr.Partial())
	assert.Equal(t, 1, sagaErr.CommittedChunks)
	assert.Equal(t, 3, sagaErr.TotalChunks)
	assert.Equal(t, 1, result.SessionRows)
	assert.Len(t, store.roster(), 2)
}

func TestWriterCancelledContext(t *testing.T) {
	store := newMemoryStore()
	w := NewWriter(store, store, 1, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := w.Write(ctx, writerCandidates(), true)
	var sagaErr *SagaError
	require.ErrorAs(t, err, &sagaErr)
	assert.Equal(t, PhaseSessionDelete, sagaErr.Phase)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWriterLimiterHonoursCancellation(t *testing.T) {
	store := newMemoryStore()
	w := NewWriter(store, store, 1, nil).WithLimiter(rate.NewLimiter(rate.Every(time.Hour), 1))
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := w.Write(ctx, writerCandidates(), true)
	var sagaErr *SagaError
	require.ErrorAs(t, err, &sagaErr)
	assert.Equal(t, PhaseSessionDelete, sagaErr.Phase)
	assert.Equal(t, 1, sagaErr.CommittedChunks)
	assert.Equal(t, 1, store.deleteCalls)
}
