package importer

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/noah-isme/goalie-roster-api/internal/models"
)

// Snapshot is a point-in-time view of the roster and the identity store taken
// before an import run. It is never refreshed during the run.
type Snapshot struct {
	byEmail map[string]models.Athlete
	byName  map[string]models.Athlete
	byID    map[string]models.Athlete
	ids     []string
	maxID   int
	claimed map[string]struct{}
}

// NewSnapshot indexes existing athletes by email, name and identifier.
func NewSnapshot(athletes []models.Athlete, claimedEmails []string) *Snapshot {
	s := &Snapshot{
		byEmail: make(map[string]models.Athlete, len(athletes)),
		byName:  make(map[string]models.Athlete, len(athletes)),
		byID:    make(map[string]models.Athlete, len(athletes)),
		ids:     make([]string, 0, len(athletes)),
		claimed: make(map[string]struct{}, len(claimedEmails)),
	}
	for _, a := range athletes {
		if key := emailKey(a.Email); key != "" {
			s.byEmail[key] = a
		}
		if key := nameKey(a.FullName); key != "" {
			s.byName[key] = a
		}
		s.byID[a.ID] = a
		s.ids = append(s.ids, a.ID)
	}
	s.maxID = MaxIdentifier(s.ids)
	for _, email := range claimedEmails {
		if key := emailKey(email); key != "" {
			s.claimed[key] = struct{}{}
		}
	}
	return s
}

// FindByID returns the athlete with the given identifier.
func (s *Snapshot) FindByID(id string) (models.Athlete, bool) {
	a, ok := s.byID[strings.TrimSpace(id)]
	return a, ok
}

// Size is the number of athletes in the snapshot.
func (s *Snapshot) Size() int {
	return len(s.ids)
}

// IsClaimed reports whether a user account exists for the email.
func (s *Snapshot) IsClaimed(email string) bool {
	_, ok := s.claimed[emailKey(email)]
	return ok
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func nameKey(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(norm.NFC.String(name))), " ")
}

// Reconciler assigns identities to candidates against a snapshot.
type Reconciler struct {
	snapshot *Snapshot
}

// NewReconciler builds a reconciler for one run.
func NewReconciler(snapshot *Snapshot) *Reconciler {
	return &Reconciler{snapshot: snapshot}
}

// Reconcile resolves every candidate to an existing or new identifier. Repeated
// new emails share the identifier of their first occurrence. Name-only
// candidates without a roster match are returned as dropped.
func (r *Reconciler) Reconcile(candidates []Candidate) (accepted []Candidate, dropped int) {
	accepted = make([]Candidate, 0, len(candidates))
	assigned := make(map[string]string)
	for _, c := range candidates {
		existing, found := r.match(&c)
		if c.Email == "" {
			dropped++
			continue
		}
		if found {
			c.Athlete.ID = existing.ID
			c.IsNew = false
		} else {
			key := emailKey(c.Email)
			id, ok := assigned[key]
			if !ok {
				id = nextFrom(r.snapshot.maxID, c.Index)
				assigned[key] = id
			}
			c.Athlete.ID = id
			c.IsNew = true
		}
		c.Athlete.Email = c.Email
		c.Athlete.Claimed = r.snapshot.IsClaimed(c.Email)
		accepted = append(accepted, c)
	}
	return accepted, dropped
}

func (r *Reconciler) match(c *Candidate) (models.Athlete, bool) {
	if c.Email != "" {
		a, ok := r.snapshot.byEmail[emailKey(c.Email)]
		return a, ok
	}
	if key := nameKey(c.Athlete.FullName); key != "" {
		if a, ok := r.snapshot.byName[key]; ok {
			c.Email = emailKey(a.Email)
			return a, true
		}
	}
	return models.Athlete{}, false
}
