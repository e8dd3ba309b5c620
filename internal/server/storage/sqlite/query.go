package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/iudanet/pronostico/internal/models"
)

// SaveQuery stores a weather query of a user
func (s *Storage) SaveQuery(ctx context.Context, q *models.WeatherQuery) error {
	query := `
		INSERT INTO weather_queries (user_id, city, temperature, query_time)
		VALUES (?, ?, ?, ?)
	`

	if q.QueryTime.IsZero() {
		q.QueryTime = time.Now().UTC()
	}

	result, err := s.db.ExecContext(ctx, query, q.UserID, q.City, q.Temperature, q.QueryTime)
	if err != nil {
		return fmt.Errorf("failed to insert weather query: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get inserted query id: %w", err)
	}
	q.ID = id

	return nil
}

// ListUserQueries retrieves query history of a user, newest first
func (s *Storage) ListUserQueries(ctx context.Context, userID int64, offset, limit int) ([]*models.WeatherQuery, error) {
	query := `
		SELECT id, user_id, city, temperature, query_time
		FROM weather_queries
		WHERE user_id = ?
		ORDER BY query_time DESC, id DESC
		LIMIT ? OFFSET ?
	`

	rows, err := s.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query weather history: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	queries := make([]*models.WeatherQuery, 0)
	for rows.Next() {
		q := &models.WeatherQuery{}
		if err := rows.Scan(&q.ID, &q.UserID, &q.City, &q.Temperature, &q.QueryTime); err != nil {
			return nil, fmt.Errorf("failed to scan weather query: %w", err)
		}
		queries = append(queries, q)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return queries, nil
}
