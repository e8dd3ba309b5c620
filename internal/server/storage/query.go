package storage

import (
	"context"

	"github.com/iudanet/pronostico/internal/models"
)

// QueryStorage defines interface for weather query history persistence
type QueryStorage interface {
	// SaveQuery stores a new query and sets query.ID and query.QueryTime
	SaveQuery(ctx context.Context, query *models.WeatherQuery) error

	// ListUserQueries returns queries of a user, newest first
	// Returns empty slice if no queries found
	ListUserQueries(ctx context.Context, userID int64, offset, limit int) ([]*models.WeatherQuery, error)
}
