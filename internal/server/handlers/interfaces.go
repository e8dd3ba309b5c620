package handlers

import (
	"context"
	"time"

	"github.com/iudanet/pronostico/internal/models"
	"github.com/iudanet/pronostico/internal/server/users"
)

// UserService is the subset of the user lifecycle manager used by handlers
type UserService interface {
	Create(ctx context.Context, in users.CreateInput) (*models.User, error)
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
	Update(ctx context.Context, id int64, in users.UpdateInput) (*models.User, error)
	Deactivate(ctx context.Context, id int64) (*models.User, error)
	HardDelete(ctx context.Context, id int64) (*models.User, error)
	Get(ctx context.Context, id int64) (*models.User, error)
	List(ctx context.Context, offset, limit int) ([]*models.User, error)
}

// TokenIssuer issues and revokes bearer tokens
type TokenIssuer interface {
	IssueAccessToken(subject string) (string, time.Time, error)
	AccessTokenTTL() time.Duration
	Revoke(ctx context.Context, token string) error
}
