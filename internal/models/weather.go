package models

import "time"

// WeatherQuery is a single forecast lookup recorded for a user.
// Records are immutable once stored.
type WeatherQuery struct {
	QueryTime   time.Time `json:"query_time"`
	City        string    `json:"city"`
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Temperature float64   `json:"temperature"`
}
