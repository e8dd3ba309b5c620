package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/iudanet/pronostico/internal/models"
	"github.com/iudanet/pronostico/internal/server/handlers"
	"github.com/iudanet/pronostico/internal/server/jwt"
	"github.com/iudanet/pronostico/internal/server/users"
)

// MsgInvalidCredentials сообщение для любого отказа в аутентификации
const MsgInvalidCredentials = "Could not validate credentials"

// TokenVerifier проверяет bearer токен
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*jwt.Claims, error)
}

// UserResolver находит пользователя по subject токена
type UserResolver interface {
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// AuthMiddleware создает middleware для проверки JWT токена
// Subject токена должен соответствовать существующему пользователю
func AuthMiddleware(logger *slog.Logger, verifier TokenVerifier, resolver UserResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			tokenString, ok := bearerToken(r)
			if !ok {
				logger.WarnContext(ctx, "missing or malformed Authorization header")
				handlers.SendUnauthorized(logger, w, "Not authenticated")
				return
			}

			// Валидируем токен
			claims, err := verifier.Verify(ctx, tokenString)
			if err != nil {
				if errors.Is(err, jwt.ErrUnauthorized) {
					logger.WarnContext(ctx, "access token rejected", slog.Any("error", err))
					handlers.SendUnauthorized(logger, w, MsgInvalidCredentials)
					return
				}
				logger.ErrorContext(ctx, "failed to verify access token", slog.Any("error", err))
				handlers.SendInternalError(logger, w)
				return
			}

			user, err := resolver.GetByUsername(ctx, claims.Subject)
			if err != nil {
				if errors.Is(err, users.ErrNotFound) {
					logger.WarnContext(ctx, "token subject no longer exists", slog.String("username", claims.Subject))
					handlers.SendUnauthorized(logger, w, MsgInvalidCredentials)
					return
				}
				logger.ErrorContext(ctx, "failed to resolve token subject", slog.Any("error", err))
				handlers.SendInternalError(logger, w)
				return
			}

			// Добавляем данные из токена в контекст
			ctx = handlers.WithUser(ctx, user)
			ctx = handlers.WithToken(ctx, tokenString)

			logger.DebugContext(ctx, "user authenticated", slog.Int64("user_id", user.ID), slog.String("username", user.Username))

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken извлекает токен из заголовка "Authorization: Bearer <token>"
func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}

	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
