package forecast

import (
	"context"
	"math"
	"math/rand/v2"
	"sync"
)

// Summaries - тексты прогноза, которые может вернуть mock
var Summaries = []string{
	"Soleado",
	"Parcialmente nublado",
	"Nublado",
	"Lluvias ligeras",
	"Tormentas",
	"Despejado",
}

const (
	MinTemperature = 15.0
	MaxTemperature = 35.0
)

// MockProvider генерирует случайный прогноз без внешних вызовов
type MockProvider struct {
	rnd *rand.Rand
	mu  sync.Mutex
}

// NewMockProvider создает mock provider. При src == nil используется PCG со случайным seed.
func NewMockProvider(src rand.Source) *MockProvider {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &MockProvider{rnd: rand.New(src)}
}

// Forecast равномерно выбирает текст и температуру в [15.0, 35.0] с точностью 0.1
func (p *MockProvider) Forecast(ctx context.Context, city string) (*Forecast, error) {
	city, err := normalizeCity(city)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	summary := Summaries[p.rnd.IntN(len(Summaries))]
	raw := MinTemperature + p.rnd.Float64()*(MaxTemperature-MinTemperature)
	p.mu.Unlock()

	return &Forecast{
		City:        city,
		Summary:     summary,
		Temperature: math.Round(raw*10) / 10,
	}, nil
}
