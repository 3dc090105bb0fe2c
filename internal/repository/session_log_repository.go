package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/goalie-roster-api/internal/models"
)

const sessionLogColumns = "id, athlete_id, event_date, start_time, end_time, location, notes, coach, session_number, lesson_number, active, created_at"

// SessionLogRepository manages athlete session history rows.
type SessionLogRepository struct {
	db *sqlx.DB
}

// NewSessionLogRepository constructs a SessionLogRepository.
func NewSessionLogRepository(db *sqlx.DB) *SessionLogRepository {
	return &SessionLogRepository{db: db}
}

// ListByAthlete returns the session history of one athlete, newest first.
func (r *SessionLogRepository) ListByAthlete(ctx context.Context, athleteID string) ([]models.SessionLogEntry, error) {
	query := fmt.Sprintf("SELECT %s FROM session_logs WHERE athlete_id = $1 ORDER BY event_date DESC, session_number DESC", sessionLogColumns)
	var entries []models.SessionLogEntry
	if err := r.db.SelectContext(ctx, &entries, query, athleteID); err != nil {
		return nil, fmt.Errorf("list session logs: %w", err)
	}
	return entries, nil
}

// DeleteByAthletes removes every session row owned by the given athletes.
func (r *SessionLogRepository) DeleteByAthletes(ctx context.Context, athleteIDs []string) (int64, error) {
	if len(athleteIDs) == 0 {
		return 0, nil
	}
	res, err := r.db.ExecContext(ctx, "DELETE FROM session_logs WHERE athlete_id = ANY($1)", pq.Array(athleteIDs))
	if err != nil {
		return 0, fmt.Errorf("delete session logs: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("session logs rows affected: %w", err)
	}
	return affected, nil
}

// InsertBatch inserts entries with a single multi-row statement.
func (r *SessionLogRepository) InsertBatch(ctx context.Context, entries []models.SessionLogEntry) error {
	if len(entries) == 0 {
		return nil
	}
	const perRow = 12
	values := make([]string, 0, len(entries))
	args := make([]interface{}, 0, len(entries)*perRow)
	for i, e := range entries {
		marks := make([]string, perRow)
		for j := range marks {
			marks[j] = fmt.Sprintf("$%d", i*perRow+j+1)
		}
		values = append(values, "("+strings.Join(marks, ", ")+")")
		args = append(args, e.ID, e.AthleteID, e.EventDate, e.StartTime, e.EndTime, e.Location, e.Notes,
			e.Coach, e.SessionNumber, e.LessonNumber, e.Active, e.CreatedAt)
	}
	query := fmt.Sprintf("INSERT INTO session_logs (%s) VALUES %s", sessionLogColumns, strings.Join(values, ", "))
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert session logs: %w", err)
	}
	return nil
}
