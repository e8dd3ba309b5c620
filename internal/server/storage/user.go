package storage

import (
	"context"

	"github.com/iudanet/pronostico/internal/models"
)

// UserStorage defines interface for user data persistence
type UserStorage interface {
	// CreateUser inserts a new user and sets user.ID
	// Returns ErrUsernameTaken or ErrEmailTaken on a uniqueness violation
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByUsername retrieves user by username
	// Returns ErrUserNotFound if user doesn't exist
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)

	// GetUserByEmail retrieves user by email
	// Returns ErrUserNotFound if user doesn't exist
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID retrieves user by ID
	// Returns ErrUserNotFound if user doesn't exist
	GetUserByID(ctx context.Context, userID int64) (*models.User, error)

	// ListUsers returns users ordered by primary key
	ListUsers(ctx context.Context, offset, limit int) ([]*models.User, error)

	// UpdateUser updates email, full name, password hash and active flag
	// Returns ErrUserNotFound if user doesn't exist, ErrEmailTaken on email collision
	UpdateUser(ctx context.Context, user *models.User) error

	// DeleteUser deletes user by ID
	// Returns ErrUserNotFound if user doesn't exist
	DeleteUser(ctx context.Context, userID int64) error
}
