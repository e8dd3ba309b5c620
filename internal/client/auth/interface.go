package auth

import (
	"context"

	"github.com/iudanet/pronostico/pkg/api"
)

// APIClient is the part of the HTTP client the auth service needs
type APIClient interface {
	BaseURL() string
	Register(ctx context.Context, req api.CreateUserRequest) (*api.User, error)
	Login(ctx context.Context, username, password string) (*api.TokenResponse, error)
	Logout(ctx context.Context, token string) error
}
