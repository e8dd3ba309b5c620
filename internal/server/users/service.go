// Package users implements the account lifecycle: registration, login,
// partial updates, deactivation (soft delete) and hard delete.
//
// States: Active -> Deactivated (soft delete); Active|Deactivated -> Deleted
// (row removed). There is no way back from Deleted, and no reactivation.
package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/iudanet/pronostico/internal/models"
	"github.com/iudanet/pronostico/internal/server/storage"
	"github.com/iudanet/pronostico/pkg/api"
)

// DefaultListLimit is used when the caller passes a non-positive limit
const DefaultListLimit = 100

var (
	// ErrNotFound: user does not exist (or was hard-deleted)
	ErrNotFound = errors.New("user not found")

	// ErrConflict: username or email already used by another user
	ErrConflict = errors.New("user conflict")

	// ErrUsernameTaken is a Conflict on username
	ErrUsernameTaken = fmt.Errorf("%w: username already registered", ErrConflict)

	// ErrEmailTaken is a Conflict on email
	ErrEmailTaken = fmt.Errorf("%w: email already registered", ErrConflict)

	// ErrInvalidCredentials: unknown username or wrong password
	ErrInvalidCredentials = errors.New("incorrect username or password")

	// ErrAlreadyInactive: deactivation requested for an inactive user, nothing changed
	ErrAlreadyInactive = errors.New("user already deactivated")

	// ErrInvalidInput: update payload cannot be applied (e.g. null email)
	ErrInvalidInput = errors.New("invalid input")
)

// PasswordHasher hashes and verifies passwords
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// CreateInput holds registration data
type CreateInput struct {
	Username string
	Email    string
	FullName string
	Password string
}

// UpdateInput holds a partial update. Only fields with Set == true are applied.
type UpdateInput struct {
	Email    api.Optional[string]
	FullName api.Optional[string]
	Password api.Optional[string]
}

// IsEmpty reports whether no field is present
func (in UpdateInput) IsEmpty() bool {
	return !in.Email.Set && !in.FullName.Set && !in.Password.Set
}

// Service is the user lifecycle manager
type Service struct {
	store  storage.UserStorage
	hasher PasswordHasher
	logger *slog.Logger
}

// NewService creates a lifecycle manager over the given store
func NewService(store storage.UserStorage, hasher PasswordHasher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:  store,
		hasher: hasher,
		logger: logger,
	}
}

// Create registers a new active user.
// The pre-checks give the precise conflict; the store's unique constraints
// still decide when two registrations race.
func (s *Service) Create(ctx context.Context, in CreateInput) (*models.User, error) {
	if _, err := s.store.GetUserByUsername(ctx, in.Username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, storage.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}

	if _, err := s.store.GetUserByEmail(ctx, in.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, storage.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     in.Username,
		Email:        in.Email,
		FullName:     in.FullName,
		PasswordHash: hash,
		Active:       true,
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, mapStoreError(err)
	}

	s.logger.InfoContext(ctx, "user created",
		slog.Int64("user_id", user.ID),
		slog.String("username", user.Username))

	return user, nil
}

// Authenticate returns the user when username exists and password matches.
// The active flag is not consulted: deactivated users can still log in.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// Update applies only the present fields of in. Password is rehashed.
func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (*models.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.IsEmpty() {
		return user, nil
	}

	if in.Email.Set {
		if in.Email.Null || in.Email.Value == "" {
			return nil, fmt.Errorf("%w: email cannot be empty", ErrInvalidInput)
		}
		user.Email = in.Email.Value
	}

	if in.FullName.Set {
		// null clears the name
		user.FullName = in.FullName.Value
	}

	if in.Password.Set {
		if in.Password.Null {
			return nil, fmt.Errorf("%w: password cannot be empty", ErrInvalidInput)
		}
		hash, err := s.hasher.Hash(in.Password.Value)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		user.PasswordHash = hash
	}

	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, mapStoreError(err)
	}

	s.logger.InfoContext(ctx, "user updated",
		slog.Int64("user_id", user.ID),
		slog.Bool("email_changed", in.Email.Set),
		slog.Bool("full_name_changed", in.FullName.Set),
		slog.Bool("password_changed", in.Password.Set))

	return user, nil
}

// Deactivate performs a soft delete. For an already inactive user it returns
// the unchanged user together with ErrAlreadyInactive and writes nothing.
func (s *Service) Deactivate(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if !user.IsActive() {
		return user, ErrAlreadyInactive
	}

	user.Active = false
	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, mapStoreError(err)
	}

	s.logger.InfoContext(ctx, "user deactivated", slog.Int64("user_id", user.ID))

	return user, nil
}

// HardDelete removes the user permanently and returns the pre-deletion snapshot
func (s *Service) HardDelete(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.store.DeleteUser(ctx, id); err != nil {
		return nil, mapStoreError(err)
	}

	s.logger.InfoContext(ctx, "user deleted",
		slog.Int64("user_id", user.ID),
		slog.String("username", user.Username))

	return user, nil
}

// Get returns the user with the given id
func (s *Service) Get(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.store.GetUserByID(ctx, id)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return user, nil
}

// GetByUsername returns the user with the given username
func (s *Service) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return user, nil
}

// List returns users in primary-key order. The limit is trusted as given;
// only non-positive values are replaced by DefaultListLimit.
func (s *Service) List(ctx context.Context, offset, limit int) ([]*models.User, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}

	users, err := s.store.ListUsers(ctx, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func mapStoreError(err error) error {
	switch {
	case errors.Is(err, storage.ErrUserNotFound):
		return ErrNotFound
	case errors.Is(err, storage.ErrUsernameTaken):
		return ErrUsernameTaken
	case errors.Is(err, storage.ErrEmailTaken):
		return ErrEmailTaken
	case errors.Is(err, storage.ErrUserAlreadyExists):
		return ErrConflict
	default:
		return err
	}
}
