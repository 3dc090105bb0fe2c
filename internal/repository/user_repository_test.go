package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepositoryListClaimedEmails(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT DISTINCT LOWER(email) FROM users WHERE active = TRUE")).
		WillReturnRows(sqlmock.NewRows([]string{"lower"}).AddRow("jane@x.com").AddRow("sam@x.com"))

	emails, err := repo.ListClaimedEmails(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"jane@x.com", "sam@x.com"}, emails)
	assert.NoError(t, mock.ExpectationsWereMet())
}
