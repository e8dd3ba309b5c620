package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/iudanet/pronostico/internal/models"
	"github.com/iudanet/pronostico/pkg/api"
)

// maxBodySize ограничивает размер тела запроса
const maxBodySize = 1 << 20

// sendJSON отправляет JSON ответ
func sendJSON(logger *slog.Logger, w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode JSON response", slog.Any("error", err))
	}
}

// sendError отправляет JSON ответ с ошибкой
func sendError(logger *slog.Logger, w http.ResponseWriter, message string, statusCode int) {
	resp := api.ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
	}
	sendJSON(logger, w, resp, statusCode)
}

// SendUnauthorized отвечает 401 с заголовком WWW-Authenticate: Bearer
func SendUnauthorized(logger *slog.Logger, w http.ResponseWriter, message string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	sendError(logger, w, message, http.StatusUnauthorized)
}

// SendInternalError отвечает 500 без деталей
func SendInternalError(logger *slog.Logger, w http.ResponseWriter) {
	sendError(logger, w, "internal server error", http.StatusInternalServerError)
}

func decodeJSON(r *http.Request, dst any) error {
	return json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodySize)).Decode(dst)
}

// parsePagination читает query параметры skip/limit.
// Без параметров: 0 и defaultLimit; отрицательные и нечисловые значения отклоняются.
func parsePagination(r *http.Request, defaultLimit int) (skip, limit int, ok bool) {
	skip, limit = 0, defaultLimit
	q := r.URL.Query()

	if v := q.Get("skip"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return 0, 0, false
		}
		skip = n
	}

	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return 0, 0, false
		}
		limit = n
	}

	return skip, limit, true
}

func parseID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func toAPIUser(u *models.User) api.User {
	return api.User{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		FullName: u.FullName,
		Active:   u.Active,
	}
}
