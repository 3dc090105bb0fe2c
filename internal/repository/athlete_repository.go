package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/goalie-roster-api/internal/models"
)

const athleteColumns = "id, email, full_name, first_name, last_name, parent_name, phone, grad_year, team, coach, raw_attributes, claimed, created_at, updated_at"

// athleteUpsertChunk bounds the rows per INSERT statement so the positional
// argument count stays well below the Postgres limit of 65535.
const athleteUpsertChunk = 500

// AthleteRepository manages persistence for roster records.
type AthleteRepository struct {
	db *sqlx.DB
}

// NewAthleteRepository constructs an AthleteRepository.
func NewAthleteRepository(db *sqlx.DB) *AthleteRepository {
	return &AthleteRepository{db: db}
}

// ListAll returns every athlete ordered by identifier.
func (r *AthleteRepository) ListAll(ctx context.Context) ([]models.Athlete, error) {
	query := fmt.Sprintf("SELECT %s FROM athletes ORDER BY id", athleteColumns)
	var athletes []models.Athlete
	if err := r.db.SelectContext(ctx, &athletes, query); err != nil {
		return nil, fmt.Errorf("list all athletes: %w", err)
	}
	return athletes, nil
}

// List returns athletes matching the provided filters with the total count.
func (r *AthleteRepository) List(ctx context.Context, filter models.AthleteFilter) ([]models.Athlete, int, error) {
	conditions := []string{"1=1"}
	var args []interface{}

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(full_name) LIKE $%d OR LOWER(email) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}
	if filter.Team != "" {
		conditions = append(conditions, fmt.Sprintf("team = $%d", len(args)+1))
		args = append(args, filter.Team)
	}
	if filter.GradYear > 0 {
		conditions = append(conditions, fmt.Sprintf("grad_year = $%d", len(args)+1))
		args = append(args, filter.GradYear)
	}
	if filter.Claimed != nil {
		conditions = append(conditions, fmt.Sprintf("claimed = $%d", len(args)+1))
		args = append(args, *filter.Claimed)
	}
	base := fmt.Sprintf("FROM athletes WHERE %s", strings.Join(conditions, " AND "))

	allowedSorts := map[string]string{
		"id":         "id",
		"full_name":  "full_name",
		"email":      "email",
		"grad_year":  "grad_year",
		"created_at": "created_at",
		"updated_at": "updated_at",
	}
	column, ok := allowedSorts[filter.SortBy]
	if !ok {
		column = "id"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", athleteColumns, base, column, order, size, offset)
	var athletes []models.Athlete
	if err := r.db.SelectContext(ctx, &athletes, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list athletes: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count athletes: %w", err)
	}
	return athletes, total, nil
}

// FindByID fetches an athlete by identifier.
func (r *AthleteRepository) FindByID(ctx context.Context, id string) (*models.Athlete, error) {
	query := fmt.Sprintf("SELECT %s FROM athletes WHERE id = $1", athleteColumns)
	var athlete models.Athlete
	if err := r.db.GetContext(ctx, &athlete, query, id); err != nil {
		return nil, err
	}
	return &athlete, nil
}

// UpsertAll inserts or updates athletes keyed on email inside one transaction.
// Stored identifiers are never overwritten and claimed never reverts to false.
func (r *AthleteRepository) UpsertAll(ctx context.Context, athletes []models.Athlete) ([]models.AthleteKey, error) {
	if len(athletes) == 0 {
		return nil, nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin athlete upsert tx: %w", err)
	}

	now := time.Now().UTC()
	keys := make([]models.AthleteKey, 0, len(athletes))
	for start := 0; start < len(athletes); start += athleteUpsertChunk {
		end := min(len(athletes), start+athleteUpsertChunk)
		query, args := buildAthleteUpsert(athletes[start:end], now)

		var chunk []models.AthleteKey
		if err := tx.SelectContext(ctx, &chunk, query, args...); err != nil {
			_ = tx.Rollback()
			return nil, fmt.Errorf("upsert athletes: %w", err)
		}
		keys = append(keys, chunk...)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit athlete upsert tx: %w", err)
	}
	return keys, nil
}

func buildAthleteUpsert(athletes []models.Athlete, now time.Time) (string, []interface{}) {
	const perRow = 14
	values := make([]string, 0, len(athletes))
	args := make([]interface{}, 0, len(athletes)*perRow)
	for i, a := range athletes {
		marks := make([]string, perRow)
		for j := range marks {
			marks[j] = fmt.Sprintf("$%d", i*perRow+j+1)
		}
		values = append(values, "("+strings.Join(marks, ", ")+")")
		args = append(args,
			a.ID, strings.ToLower(strings.TrimSpace(a.Email)), a.FullName, a.FirstName, a.LastName,
			a.ParentName, a.Phone, a.GradYear, a.Team, a.Coach, a.RawAttributes, a.Claimed, now, now)
	}
	query := fmt.Sprintf(`INSERT INTO athletes (%s) VALUES %s
ON CONFLICT (email) DO UPDATE SET full_name = EXCLUDED.full_name, first_name = EXCLUDED.first_name, last_name = EXCLUDED.last_name,
    parent_name = EXCLUDED.parent_name, phone = EXCLUDED.phone, grad_year = EXCLUDED.grad_year, team = EXCLUDED.team,
    coach = EXCLUDED.coach, raw_attributes = EXCLUDED.raw_attributes, claimed = athletes.claimed OR EXCLUDED.claimed,
    updated_at = EXCLUDED.updated_at
RETURNING id, email`, athleteColumns, strings.Join(values, ", "))
	return query, args
}

// IDsByEmails maps lower-cased email to the stored identifier.
func (r *AthleteRepository) IDsByEmails(ctx context.Context, emails []string) (map[string]string, error) {
	result := make(map[string]string, len(emails))
	if len(emails) == 0 {
		return result, nil
	}
	lowered := make([]string, len(emails))
	for i, e := range emails {
		lowered[i] = strings.ToLower(strings.TrimSpace(e))
	}
	var keys []models.AthleteKey
	if err := r.db.SelectContext(ctx, &keys, "SELECT id, email FROM athletes WHERE email = ANY($1)", pq.Array(lowered)); err != nil {
		return nil, fmt.Errorf("lookup athlete ids: %w", err)
	}
	for _, k := range keys {
		result[strings.ToLower(k.Email)] = k.ID
	}
	return result, nil
}
