package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/goalie-roster-api/internal/models"
)

func TestReconcileAssignsIdentifiers(t *testing.T) {
	snapshot := NewSnapshot([]models.Athlete{
		{ID: "GC-8002", Email: "Old@X.com", FullName: "Old Timer"},
	}, []string{"new2@x.com"})

	candidates := []Candidate{
		{Index: 0, Email: "old@x.com", Athlete: models.Athlete{FullName: "Old Timer"}},
		{Index: 1, Email: "new1@x.com", Athlete: models.Athlete{FullName: "New One"}},
		{Index: 2, Email: "new2@x.com", Athlete: models.Athlete{FullName: "New Two"}},
	}

	out, dropped := NewReconciler(snapshot).Reconcile(candidates)
	require.Len(t, out, 3)
	assert.Zero(t, dropped)

	assert.Equal(t, "GC-8002", out[0].Athlete.ID)
	assert.False(t, out[0].IsNew)
	assert.Equal(t, "GC-8004", out[1].Athlete.ID)
	assert.True(t, out[1].IsNew)
	assert.Equal(t, "GC-8005", out[2].Athlete.ID)
	assert.True(t, out[2].Athlete.Claimed)
	assert.False(t, out[1].Athlete.Claimed)
}

func TestReconcileNameFallback(t *testing.T) {
	snapshot := NewSnapshot([]models.Athlete{
		{ID: "GC-8003", Email: "sam@x.com", FullName: "Sam Stone"},
	}, nil)

	candidates := []Candidate{
		{Index: 0, Athlete: models.Athlete{FullName: "  sam   STONE "}},
		{Index: 1, Athlete: models.Athlete{FullName: "Nobody Known"}},
	}

	out, dropped := NewReconciler(snapshot).Reconcile(candidates)
	require.Len(t, out, 1)
	assert.Equal(t, 1, dropped)
	assert.Equal(t, "sam@x.com", out[0].Email)
	assert.Equal(t, "sam@x.com", out[0].Athlete.Email)
	assert.Equal(t, "GC-8003", out[0].Athlete.ID)
}

func TestSnapshotFindByID(t *testing.T) {
	snapshot := NewSnapshot([]models.Athlete{{ID: "GC-8001", Email: "a@x.com"}}, nil)

	a, ok := snapshot.FindByID("GC-8001")
	assert.True(t, ok)
	assert.Equal(t, "a@x.com", a.Email)
	_, ok = snapshot.FindByID("GC-9999")
	assert.False(t, ok)
	assert.Equal(t, 1, snapshot.Size())
}

func TestReconcileRepeatedNewEmailSharesIdentifier(t *testing.T) {
	candidates := []Candidate{
		{Index: 0, Email: "jane@x.com"},
		{Index: 1, Email: "JANE@x.com"},
		{Index: 2, Email: "sam@x.com"},
	}

	out, _ := NewReconciler(NewSnapshot(nil, nil)).Reconcile(candidates)
	require.Len(t, out, 3)
	assert.Equal(t, "GC-8000", out[0].Athlete.ID)
	assert.Equal(t, "GC-8000", out[1].Athlete.ID)
	assert.Equal(t, "GC-8002", out[2].Athlete.ID)
}
