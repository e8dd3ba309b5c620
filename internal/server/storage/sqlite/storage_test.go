package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/pronostico/internal/models"
	"github.com/iudanet/pronostico/internal/server/storage"
)

// setupTestStorage creates a migrated database in a temp dir
func setupTestStorage(t *testing.T) (*Storage, func()) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := New(context.Background(), dbPath)
	require.NoError(t, err)

	return s, func() {
		_ = s.Close()
	}
}

// createTestUser inserts a user and returns its ID
func createTestUser(t *testing.T, ctx context.Context, s *Storage, username string) int64 {
	t.Helper()

	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		FullName:     "Test " + username,
		PasswordHash: "hash",
		Active:       true,
	}
	require.NoError(t, s.CreateUser(ctx, user))
	require.NotZero(t, user.ID)

	return user.ID
}

func TestNew_RunsMigrations(t *testing.T) {
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	for _, table := range []string{"users", "revoked_tokens", "weather_queries"} {
		var name string
		err := s.DB().QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
		assert.Equal(t, table, name)
	}

	require.NoError(t, s.Ping(context.Background()))
}

func TestNew_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "twice.db")

	s1, err := New(ctx, dbPath)
	require.NoError(t, err)
	createTestUser(t, ctx, s1, "persisted")
	require.NoError(t, s1.Close())

	s2, err := New(ctx, dbPath)
	require.NoError(t, err)
	defer func() { _ = s2.Close() }()

	user, err := s2.GetUserByUsername(ctx, "persisted")
	require.NoError(t, err)
	assert.Equal(t, "persisted@example.com", user.Email)
}

func TestUserConflict(t *testing.T) {
	tests := []struct {
		err  error
		want error
		name string
	}{
		{
			name: "username",
			err:  errors.New("constraint failed: UNIQUE constraint failed: users.username (2067)"),
			want: storage.ErrUsernameTaken,
		},
		{
			name: "email",
			err:  errors.New("constraint failed: UNIQUE constraint failed: users.email (2067)"),
			want: storage.ErrEmailTaken,
		},
		{
			name: "other unique column",
			err:  errors.New("UNIQUE constraint failed: users.id"),
			want: storage.ErrUserAlreadyExists,
		},
		{
			name: "not a uniqueness violation",
			err:  errors.New("disk I/O error"),
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := userConflict(tt.err)
			if tt.want == nil {
				assert.NoError(t, got)
				return
			}
			assert.ErrorIs(t, got, tt.want)
		})
	}
}

func TestStorage_DriverFailures(t *testing.T) {
	ctx := context.Background()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	s := NewWithDB(db)
	driverErr := errors.New("connection reset")

	mock.ExpectExec("INSERT INTO users").WillReturnError(driverErr)
	err = s.CreateUser(ctx, &models.User{Username: "u", Email: "u@example.com", PasswordHash: "h"})
	require.Error(t, err)
	assert.ErrorIs(t, err, driverErr)
	assert.NotErrorIs(t, err, storage.ErrUserAlreadyExists)

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(errors.New("UNIQUE constraint failed: users.email"))
	err = s.CreateUser(ctx, &models.User{Username: "u", Email: "u@example.com", PasswordHash: "h"})
	assert.ErrorIs(t, err, storage.ErrEmailTaken)

	mock.ExpectExec("DELETE FROM users").WithArgs(int64(7)).WillReturnResult(sqlmock.NewResult(0, 0))
	err = s.DeleteUser(ctx, 7)
	assert.ErrorIs(t, err, storage.ErrUserNotFound)

	mock.ExpectQuery("SELECT EXISTS").WithArgs("tok").WillReturnError(driverErr)
	_, err = s.IsTokenRevoked(ctx, "tok")
	assert.ErrorIs(t, err, driverErr)

	mock.ExpectQuery("FROM users ORDER BY id").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	_, err = s.ListUsers(ctx, 0, 10)
	assert.Error(t, err, "scan with missing columns must fail")

	require.NoError(t, mock.ExpectationsWereMet())
}
