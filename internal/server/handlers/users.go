package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/iudanet/pronostico/internal/server/metrics"
	"github.com/iudanet/pronostico/internal/server/users"
	"github.com/iudanet/pronostico/internal/validation"
	"github.com/iudanet/pronostico/pkg/api"
)

// Сообщения об ошибках, которые видит клиент
const (
	MsgUserNotFound       = "User not found"
	MsgUsernameRegistered = "Username already registered"
	MsgEmailRegistered    = "Email already registered"
	MsgAlreadyDeactivated = "User already deactivated"
)

// UsersHandler обрабатывает CRUD запросы пользователей
type UsersHandler struct {
	logger  *slog.Logger
	users   UserService
	metrics *metrics.Metrics
}

// NewUsersHandler создает новый handler для пользователей
func NewUsersHandler(logger *slog.Logger, userService UserService, m *metrics.Metrics) *UsersHandler {
	return &UsersHandler{
		logger:  logger,
		users:   userService,
		metrics: m,
	}
}

// Create обрабатывает POST /users/
func (h *UsersHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.CreateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode create user request", slog.Any("error", err))
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := validation.ValidateCreateUser(req); err != nil {
		h.logger.WarnContext(ctx, "invalid create user request",
			slog.String("username", req.Username), slog.Any("error", err))
		sendError(h.logger, w, err.Error(), http.StatusBadRequest)
		return
	}

	user, err := h.users.Create(ctx, users.CreateInput{
		Username: req.Username,
		Email:    req.Email,
		FullName: req.FullName,
		Password: req.Password,
	})
	if err != nil {
		h.handleError(w, r, err, "failed to create user")
		return
	}
	h.metrics.UserCreated()

	sendJSON(h.logger, w, toAPIUser(user), http.StatusOK)
}

// List обрабатывает GET /users/?skip=0&limit=100
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	skip, limit, ok := parsePagination(r, users.DefaultListLimit)
	if !ok {
		sendError(h.logger, w, "skip and limit must be non-negative integers", http.StatusBadRequest)
		return
	}

	list, err := h.users.List(r.Context(), skip, limit)
	if err != nil {
		h.handleError(w, r, err, "failed to list users")
		return
	}

	resp := make([]api.User, 0, len(list))
	for _, u := range list {
		resp = append(resp, toAPIUser(u))
	}

	sendJSON(h.logger, w, resp, http.StatusOK)
}

// Get обрабатывает GET /users/{id}
func (h *UsersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		sendError(h.logger, w, "invalid user id", http.StatusBadRequest)
		return
	}

	user, err := h.users.Get(r.Context(), id)
	if err != nil {
		h.handleError(w, r, err, "failed to get user")
		return
	}

	sendJSON(h.logger, w, toAPIUser(user), http.StatusOK)
}

// Update обрабатывает PATCH /users/{id}
// Применяются только поля, присутствующие в теле запроса
func (h *UsersHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := parseID(r)
	if !ok {
		sendError(h.logger, w, "invalid user id", http.StatusBadRequest)
		return
	}

	var req api.UpdateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode update request", slog.Any("error", err))
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := validation.ValidateUpdateUser(req); err != nil {
		sendError(h.logger, w, err.Error(), http.StatusBadRequest)
		return
	}

	user, err := h.users.Update(ctx, id, users.UpdateInput{
		Email:    req.Email,
		FullName: req.FullName,
		Password: req.Password,
	})
	if err != nil {
		h.handleError(w, r, err, "failed to update user")
		return
	}

	sendJSON(h.logger, w, toAPIUser(user), http.StatusOK)
}

// Delete обрабатывает DELETE /users/{id} (hard delete)
func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		sendError(h.logger, w, "invalid user id", http.StatusBadRequest)
		return
	}

	user, err := h.users.HardDelete(r.Context(), id)
	if err != nil {
		h.handleError(w, r, err, "failed to delete user")
		return
	}

	sendJSON(h.logger, w, toAPIUser(user), http.StatusOK)
}

// Deactivate обрабатывает DELETE /users/soft/{id}
func (h *UsersHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		sendError(h.logger, w, "invalid user id", http.StatusBadRequest)
		return
	}

	user, err := h.users.Deactivate(r.Context(), id)
	if err != nil {
		h.handleError(w, r, err, "failed to deactivate user")
		return
	}

	sendJSON(h.logger, w, toAPIUser(user), http.StatusOK)
}

// handleError переводит ошибки users.Service в HTTP статусы
func (h *UsersHandler) handleError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	ctx := r.Context()

	switch {
	case errors.Is(err, users.ErrNotFound):
		sendError(h.logger, w, MsgUserNotFound, http.StatusNotFound)
	case errors.Is(err, users.ErrUsernameTaken):
		h.logger.WarnContext(ctx, "username already registered")
		sendError(h.logger, w, MsgUsernameRegistered, http.StatusBadRequest)
	case errors.Is(err, users.ErrEmailTaken):
		h.logger.WarnContext(ctx, "email already registered")
		sendError(h.logger, w, MsgEmailRegistered, http.StatusBadRequest)
	case errors.Is(err, users.ErrConflict):
		sendError(h.logger, w, "User already registered", http.StatusBadRequest)
	case errors.Is(err, users.ErrAlreadyInactive):
		sendError(h.logger, w, MsgAlreadyDeactivated, http.StatusBadRequest)
	case errors.Is(err, users.ErrInvalidInput):
		sendError(h.logger, w, err.Error(), http.StatusBadRequest)
	default:
		h.logger.ErrorContext(ctx, msg, slog.Any("error", err))
		SendInternalError(h.logger, w)
	}
}
