package api

import "time"

// ForecastResponse is the body of GET /pronostico/{city}
type ForecastResponse struct {
	City        string  `json:"city"`
	Forecast    string  `json:"forecast"`
	Temperature float64 `json:"temperature"`
}

// WeatherQuery is one entry of the caller's lookup history
type WeatherQuery struct {
	QueryTime   time.Time `json:"query_time"`
	City        string    `json:"city"`
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Temperature float64   `json:"temperature"`
}
