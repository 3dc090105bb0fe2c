package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// UserRepository reads the identity store that owns athlete logins.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// ListClaimedEmails returns the lower-cased email of every active user account.
// An athlete whose email appears here has claimed their roster record.
func (r *UserRepository) ListClaimedEmails(ctx context.Context) ([]string, error) {
	const query = `SELECT DISTINCT LOWER(email) FROM users WHERE active = TRUE`
	var emails []string
	if err := r.db.SelectContext(ctx, &emails, query); err != nil {
		return nil, fmt.Errorf("list claimed emails: %w", err)
	}
	return emails, nil
}
