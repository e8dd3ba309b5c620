// Package forecast возвращает прогноз погоды для города: из локального
// mock или из внешнего API прогнозов.
package forecast

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrUpstream - родитель всех ошибок внешнего API
	ErrUpstream = errors.New("forecast upstream failure")

	// ErrBadGateway: upstream недоступен, ответил не 2xx или ответ не читается
	ErrBadGateway = fmt.Errorf("%w: bad gateway", ErrUpstream)

	// ErrUpstreamTimeout: upstream не ответил вовремя
	ErrUpstreamTimeout = fmt.Errorf("%w: timeout", ErrUpstream)

	// ErrInvalidCity: пустое название города
	ErrInvalidCity = errors.New("invalid city")
)

// Forecast - результат запроса прогноза
type Forecast struct {
	City        string
	Summary     string
	Temperature float64
}

// Provider возвращает прогноз для города
type Provider interface {
	Forecast(ctx context.Context, city string) (*Forecast, error)
}

// Config описывает источник прогноза
type Config struct {
	// BaseURL внешнего API; пустое значение включает mock
	BaseURL string
	Timeout time.Duration
}

// DefaultTimeout для запросов к внешнему API
const DefaultTimeout = 5 * time.Second

// New возвращает HTTPProvider, если задан cfg.BaseURL, иначе MockProvider
func New(cfg Config, opts ...HTTPOption) Provider {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return NewMockProvider(nil)
	}
	return NewHTTPProvider(cfg.BaseURL, cfg.Timeout, opts...)
}

func normalizeCity(city string) (string, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return "", ErrInvalidCity
	}
	return city, nil
}
