package sqlite

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/pronostico/internal/models"
	"github.com/iudanet/pronostico/internal/server/storage"
)

func TestUserStorage_CreateUser(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	tests := []struct {
		user *models.User
		name string
	}{
		{
			name: "create active user",
			user: &models.User{
				Username:     "carlos",
				Email:        "c@x.com",
				FullName:     "Carlos Gomez",
				PasswordHash: "hash123",
				Active:       true,
			},
		},
		{
			name: "create user without full name",
			user: &models.User{
				Username:     "ana",
				Email:        "ana@x.com",
				PasswordHash: "hash456",
				Active:       true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.CreateUser(ctx, tt.user)
			require.NoError(t, err)
			require.NotZero(t, tt.user.ID)

			// Verify user was created
			retrieved, err := s.GetUserByID(ctx, tt.user.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.user.Username, retrieved.Username)
			assert.Equal(t, tt.user.Email, retrieved.Email)
			assert.Equal(t, tt.user.FullName, retrieved.FullName)
			assert.Equal(t, tt.user.PasswordHash, retrieved.PasswordHash)
			assert.True(t, retrieved.Active)
			assert.False(t, retrieved.CreatedAt.IsZero())
		})
	}
}

func TestUserStorage_CreateUser_Duplicates(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	first := &models.User{Username: "duplicate", Email: "dup@x.com", PasswordHash: "h1", Active: true}
	require.NoError(t, s.CreateUser(ctx, first))

	tests := []struct {
		user    *models.User
		wantErr error
		name    string
	}{
		{
			name:    "same username",
			user:    &models.User{Username: "duplicate", Email: "other@x.com", PasswordHash: "h2"},
			wantErr: storage.ErrUsernameTaken,
		},
		{
			name:    "same email",
			user:    &models.User{Username: "other", Email: "dup@x.com", PasswordHash: "h3"},
			wantErr: storage.ErrEmailTaken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.CreateUser(ctx, tt.user)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, storage.ErrUserAlreadyExists)
		})
	}

	// No partial record is persisted
	users, err := s.ListUsers(ctx, 0, 100)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestUserStorage_GetUser(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	id := createTestUser(t, ctx, s, "lookup")

	byName, err := s.GetUserByUsername(ctx, "lookup")
	require.NoError(t, err)
	assert.Equal(t, id, byName.ID)

	byEmail, err := s.GetUserByEmail(ctx, "lookup@example.com")
	require.NoError(t, err)
	assert.Equal(t, id, byEmail.ID)

	_, err = s.GetUserByUsername(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrUserNotFound)

	_, err = s.GetUserByEmail(ctx, "missing@example.com")
	assert.ErrorIs(t, err, storage.ErrUserNotFound)

	_, err = s.GetUserByID(ctx, id+100)
	assert.ErrorIs(t, err, storage.ErrUserNotFound)
}

func TestUserStorage_ListUsers(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	var ids []int64
	for i := 0; i < 5; i++ {
		ids = append(ids, createTestUser(t, ctx, s, fmt.Sprintf("user%d", i)))
	}

	tests := []struct {
		name    string
		wantIDs []int64
		offset  int
		limit   int
	}{
		{name: "all", offset: 0, limit: 100, wantIDs: ids},
		{name: "first page", offset: 0, limit: 2, wantIDs: ids[:2]},
		{name: "second page", offset: 2, limit: 2, wantIDs: ids[2:4]},
		{name: "past the end", offset: 10, limit: 2, wantIDs: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users, err := s.ListUsers(ctx, tt.offset, tt.limit)
			require.NoError(t, err)
			require.Len(t, users, len(tt.wantIDs))
			for i, u := range users {
				assert.Equal(t, tt.wantIDs[i], u.ID)
			}
		})
	}
}

func TestUserStorage_UpdateUser(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	id := createTestUser(t, ctx, s, "updatable")
	createTestUser(t, ctx, s, "taken")

	user, err := s.GetUserByID(ctx, id)
	require.NoError(t, err)

	user.FullName = "New Name"
	user.Active = false
	require.NoError(t, s.UpdateUser(ctx, user))

	updated, err := s.GetUserByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "New Name", updated.FullName)
	assert.False(t, updated.Active)
	assert.Equal(t, user.Email, updated.Email)

	t.Run("email collision", func(t *testing.T) {
		clash := updated.Clone()
		clash.Email = "taken@example.com"
		assert.ErrorIs(t, s.UpdateUser(ctx, clash), storage.ErrEmailTaken)
	})

	t.Run("missing user", func(t *testing.T) {
		ghost := &models.User{ID: id + 100, Email: "ghost@example.com"}
		assert.ErrorIs(t, s.UpdateUser(ctx, ghost), storage.ErrUserNotFound)
	})
}

func TestUserStorage_DeleteUser(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	id := createTestUser(t, ctx, s, "doomed")
	require.NoError(t, s.SaveQuery(ctx, &models.WeatherQuery{UserID: id, City: "Lima", Temperature: 20}))

	require.NoError(t, s.DeleteUser(ctx, id))

	_, err := s.GetUserByID(ctx, id)
	assert.ErrorIs(t, err, storage.ErrUserNotFound)

	// История запросов удаляется каскадно
	queries, err := s.ListUserQueries(ctx, id, 0, 10)
	require.NoError(t, err)
	assert.Empty(t, queries)

	assert.ErrorIs(t, s.DeleteUser(ctx, id), storage.ErrUserNotFound)
}
