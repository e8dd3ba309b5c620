package handlers

import (
	"errors"
	"log/slog"
	"mime"
	"net/http"

	"github.com/iudanet/pronostico/internal/server/jwt"
	"github.com/iudanet/pronostico/internal/server/metrics"
	"github.com/iudanet/pronostico/internal/server/users"
	"github.com/iudanet/pronostico/internal/validation"
	"github.com/iudanet/pronostico/pkg/api"
)

// MsgIncorrectCredentials возвращается POST /token при неудачном входе
const MsgIncorrectCredentials = "Incorrect username or password"

// AuthHandler обрабатывает запросы авторизации
type AuthHandler struct {
	logger  *slog.Logger
	users   UserService
	tokens  TokenIssuer
	metrics *metrics.Metrics
}

// NewAuthHandler создает новый handler для авторизации
func NewAuthHandler(logger *slog.Logger, userService UserService, tokens TokenIssuer, m *metrics.Metrics) *AuthHandler {
	return &AuthHandler{
		logger:  logger,
		users:   userService,
		tokens:  tokens,
		metrics: m,
	}
}

// Token обрабатывает POST /token
// OAuth2 password grant: принимает form-urlencoded или JSON
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, err := parseTokenRequest(r)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to parse token request", slog.Any("error", err))
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := validation.ValidateTokenRequest(req); err != nil {
		sendError(h.logger, w, err.Error(), http.StatusBadRequest)
		return
	}

	user, err := h.users.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, users.ErrInvalidCredentials) {
			h.logger.WarnContext(ctx, "login failed", slog.String("username", req.Username))
			w.Header().Set("WWW-Authenticate", "Bearer")
			sendError(h.logger, w, MsgIncorrectCredentials, http.StatusBadRequest)
			return
		}
		h.logger.ErrorContext(ctx, "failed to authenticate user", slog.Any("error", err))
		SendInternalError(h.logger, w)
		return
	}

	accessToken, _, err := h.tokens.IssueAccessToken(user.Username)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to generate access token", slog.Any("error", err))
		SendInternalError(h.logger, w)
		return
	}
	h.metrics.TokenIssued()

	h.logger.InfoContext(ctx, "user logged in successfully",
		slog.String("username", user.Username),
		slog.Int64("user_id", user.ID),
		slog.Bool("active", user.Active))

	resp := api.TokenResponse{
		AccessToken: accessToken,
		TokenType:   jwt.TokenType,
		ExpiresIn:   int64(h.tokens.AccessTokenTTL().Seconds()),
	}

	w.Header().Set("Cache-Control", "no-store")
	sendJSON(h.logger, w, resp, http.StatusOK)
}

// Logout обрабатывает POST /logout
// Отзывает только токен текущего запроса, остальные токены пользователя остаются валидными
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	token, ok := GetToken(ctx)
	if !ok {
		SendUnauthorized(h.logger, w, "Not authenticated")
		return
	}

	if err := h.tokens.Revoke(ctx, token); err != nil {
		h.logger.ErrorContext(ctx, "failed to revoke token", slog.Any("error", err))
		SendInternalError(h.logger, w)
		return
	}
	h.metrics.TokenRevoked()

	if user, ok := GetUser(ctx); ok {
		h.logger.InfoContext(ctx, "user logged out", slog.Int64("user_id", user.ID))
	}

	w.WriteHeader(http.StatusNoContent)
}

func parseTokenRequest(r *http.Request) (api.TokenRequest, error) {
	var req api.TokenRequest

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		r.Body = http.MaxBytesReader(nil, r.Body, maxBodySize)
		var err error
		if mediaType == "multipart/form-data" {
			err = r.ParseMultipartForm(maxBodySize)
		} else {
			err = r.ParseForm()
		}
		if err != nil {
			return req, err
		}
		req.Username = r.PostFormValue("username")
		req.Password = r.PostFormValue("password")
		return req, nil
	default:
		err := decodeJSON(r, &req)
		return req, err
	}
}
