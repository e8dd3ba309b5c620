package handlers

import (
	"context"

	"github.com/iudanet/pronostico/internal/models"
)

// contextKey тип для ключей контекста
type contextKey string

const (
	// UserKey ключ для аутентифицированного пользователя в контексте
	UserKey contextKey = "user"
	// TokenKey ключ для bearer токена текущего запроса
	TokenKey contextKey = "token"
)

// WithUser возвращает копию ctx с аутентифицированным пользователем
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, UserKey, user)
}

// GetUser извлекает пользователя из контекста
func GetUser(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(UserKey).(*models.User)
	return user, ok && user != nil
}

// WithToken возвращает копию ctx с исходным bearer токеном
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, TokenKey, token)
}

// GetToken извлекает bearer токен из контекста
func GetToken(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(TokenKey).(string)
	return token, ok && token != ""
}
