package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/iudanet/pronostico/internal/models"
	"github.com/iudanet/pronostico/internal/server/forecast"
	"github.com/iudanet/pronostico/internal/server/metrics"
	"github.com/iudanet/pronostico/internal/server/storage"
	"github.com/iudanet/pronostico/pkg/api"
)

// DefaultHistoryLimit количество записей истории по умолчанию
const DefaultHistoryLimit = 100

// ForecastHandler обрабатывает запросы прогноза погоды
type ForecastHandler struct {
	logger   *slog.Logger
	provider forecast.Provider
	queries  storage.QueryStorage
	metrics  *metrics.Metrics
}

// NewForecastHandler создает новый handler прогноза
func NewForecastHandler(logger *slog.Logger, provider forecast.Provider, queries storage.QueryStorage, m *metrics.Metrics) *ForecastHandler {
	return &ForecastHandler{
		logger:   logger,
		provider: provider,
		queries:  queries,
		metrics:  m,
	}
}

// Forecast обрабатывает GET /pronostico/{city}
// Получает прогноз и сохраняет запрос в историю пользователя
func (h *ForecastHandler) Forecast(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := GetUser(ctx)
	if !ok {
		SendUnauthorized(h.logger, w, "Not authenticated")
		return
	}

	result, err := h.provider.Forecast(ctx, r.PathValue("city"))
	if err != nil {
		switch {
		case errors.Is(err, forecast.ErrInvalidCity):
			sendError(h.logger, w, "city is required", http.StatusBadRequest)
		case errors.Is(err, forecast.ErrUpstreamTimeout):
			h.logger.WarnContext(ctx, "forecast upstream timeout", slog.Any("error", err))
			sendError(h.logger, w, "Weather service timed out", http.StatusGatewayTimeout)
		case errors.Is(err, forecast.ErrUpstream):
			h.logger.WarnContext(ctx, "forecast upstream failure", slog.Any("error", err))
			sendError(h.logger, w, "Weather service unavailable", http.StatusBadGateway)
		default:
			h.logger.ErrorContext(ctx, "failed to get forecast", slog.Any("error", err))
			SendInternalError(h.logger, w)
		}
		return
	}

	query := &models.WeatherQuery{
		UserID:      user.ID,
		City:        result.City,
		Temperature: result.Temperature,
	}
	if err := h.queries.SaveQuery(ctx, query); err != nil {
		h.logger.ErrorContext(ctx, "failed to save weather query", slog.Any("error", err))
		SendInternalError(h.logger, w)
		return
	}
	h.metrics.WeatherQueryRecorded()

	h.logger.DebugContext(ctx, "forecast served",
		slog.Int64("user_id", user.ID),
		slog.String("city", result.City))

	resp := api.ForecastResponse{
		City:        result.City,
		Forecast:    result.Summary,
		Temperature: result.Temperature,
	}

	sendJSON(h.logger, w, resp, http.StatusOK)
}

// History обрабатывает GET /pronostico/
// Возвращает историю запросов текущего пользователя, новые первыми
func (h *ForecastHandler) History(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, ok := GetUser(ctx)
	if !ok {
		SendUnauthorized(h.logger, w, "Not authenticated")
		return
	}

	skip, limit, ok := parsePagination(r, DefaultHistoryLimit)
	if !ok {
		sendError(h.logger, w, "skip and limit must be non-negative integers", http.StatusBadRequest)
		return
	}
	if limit == 0 {
		limit = DefaultHistoryLimit
	}

	queries, err := h.queries.ListUserQueries(ctx, user.ID, skip, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list weather queries", slog.Any("error", err))
		SendInternalError(h.logger, w)
		return
	}

	resp := make([]api.WeatherQuery, 0, len(queries))
	for _, q := range queries {
		resp = append(resp, api.WeatherQuery{
			ID:          q.ID,
			UserID:      q.UserID,
			City:        q.City,
			Temperature: q.Temperature,
			QueryTime:   q.QueryTime,
		})
	}

	sendJSON(h.logger, w, resp, http.StatusOK)
}
