package importer

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/noah-isme/goalie-roster-api/internal/models"
)

// memoryStore keeps the roster and session log in maps so pipeline runs can be
// inspected without a database.
type memoryStore struct {
	mu sync.Mutex

	athletes map[string]models.Athlete
	sessions map[string][]models.SessionLogEntry

	upsertCalls int
	deleteCalls int
	insertCalls int

	failUpsert   error
	failIDs      error
	failDeleteAt int
	failInsertAt int
}

func newMemoryStore(existing ...models.Athlete) *memoryStore {
	s := &memoryStore{
		athletes: make(map[string]models.Athlete),
		sessions: make(map[string][]models.SessionLogEntry),
	}
	for _, a := range existing {
		s.athletes[strings.ToLower(a.Email)] = a
	}
	return s
}

func (s *memoryStore) UpsertAll(_ context.Context, athletes []models.Athlete) ([]models.AthleteKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upsertCalls++
	if s.failUpsert != nil {
		return nil, s.failUpsert
	}
	keys := make([]models.AthleteKey, 0, len(athletes))
	for _, a := range athletes {
		key := strings.ToLower(a.Email)
		if prev, ok := s.athletes[key]; ok {
			a.ID = prev.ID
			a.Claimed = prev.Claimed || a.Claimed
		}
		s.athletes[key] = a
		keys = append(keys, models.AthleteKey{ID: a.ID, Email: key})
	}
	return keys, nil
}

func (s *memoryStore) IDsByEmails(_ context.Context, emails []string) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failIDs != nil {
		return nil, s.failIDs
	}
	out := make(map[string]string, len(emails))
	for _, e := range emails {
		if a, ok := s.athletes[strings.ToLower(e)]; ok {
			out[strings.ToLower(e)] = a.ID
		}
	}
	return out, nil
}

func (s *memoryStore) DeleteByAthletes(_ context.Context, ids []string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteCalls++
	if s.failDeleteAt == s.deleteCalls {
		return 0, errors.New("delete failed")
	}
	var n int64
	for _, id := range ids {
		n += int64(len(s.sessions[id]))
		delete(s.sessions, id)
	}
	return n, nil
}

func (s *memoryStore) InsertBatch(_ context.Context, entries []models.SessionLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insertCalls++
	if s.failInsertAt == s.insertCalls {
		return errors.New("insert failed")
	}
	for _, e := range entries {
		s.sessions[e.AthleteID] = append(s.sessions[e.AthleteID], e)
	}
	return nil
}

func (s *memoryStore) roster() []models.Athlete {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Athlete, 0, len(s.athletes))
	for _, a := range s.athletes {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *memoryStore) athlete(email string) (models.Athlete, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.athletes[strings.ToLower(email)]
	return a, ok
}

func (s *memoryStore) sessionCount(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions[id])
}

func (s *memoryStore) totalSessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, rows := range s.sessions {
		total += len(rows)
	}
	return total
}

func (s *memoryStore) snapshot(claimed ...string) *Snapshot {
	return NewSnapshot(s.roster(), claimed)
}
