package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/goalie-roster-api/internal/models"
)

func TestSessionLogRepositoryDeleteByAthletes(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSessionLogRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM session_logs WHERE athlete_id = ANY($1)")).
		WithArgs(pq.Array([]string{"GC-8000", "GC-8001"})).
		WillReturnResult(sqlmock.NewResult(0, 5))

	n, err := repo.DeleteByAthletes(context.Background(), []string{"GC-8000", "GC-8001"})
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionLogRepositoryDeleteNothing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSessionLogRepository(db)

	n, err := repo.DeleteByAthletes(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionLogRepositoryInsertBatch(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSessionLogRepository(db)

	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	now := time.Now().UTC()
	entries := []models.SessionLogEntry{
		{ID: "s1", AthleteID: "GC-8000", EventDate: date, Location: "Rink A", Coach: "Staff Coach", SessionNumber: 1, Active: true, CreatedAt: now},
		{ID: "s2", AthleteID: "GC-8000", EventDate: date, Location: "Rink A", Coach: "Staff Coach", SessionNumber: 2, Active: true, CreatedAt: now},
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO session_logs ("+sessionLogColumns+") VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12), ($13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24)")).
		WithArgs("s1", "GC-8000", date, "", "", "Rink A", "", "Staff Coach", 1, 0, true, now,
			"s2", "GC-8000", date, "", "", "Rink A", "", "Staff Coach", 2, 0, true, now).
		WillReturnResult(sqlmock.NewResult(0, 2))

	require.NoError(t, repo.InsertBatch(context.Background(), entries))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionLogRepositoryListByAthlete(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSessionLogRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + sessionLogColumns + " FROM session_logs WHERE athlete_id = $1 ORDER BY event_date DESC, session_number DESC")).
		WithArgs("GC-8000").
		WillReturnRows(sqlmock.NewRows([]string{"id", "athlete_id", "event_date", "start_time", "end_time", "location", "notes", "coach", "session_number", "lesson_number", "active", "created_at"}).
			AddRow("s1", "GC-8000", now, "5:00 PM", "6:00 PM", "Rink A", "angles", "Staff Coach", 1, 0, true, now))

	entries, err := repo.ListByAthlete(context.Background(), "GC-8000")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "angles", entries[0].Notes)
}
