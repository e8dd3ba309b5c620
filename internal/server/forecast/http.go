package forecast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/iudanet/pronostico/internal/server/metrics"
)

// maxResponseSize ограничивает размер ответа внешнего API
const maxResponseSize = 1 << 20

// HTTPProvider проксирует запросы в GET {base}/forecast/{city}
type HTTPProvider struct {
	httpClient *http.Client
	metrics    *metrics.Metrics
	baseURL    string
}

// HTTPOption настраивает HTTPProvider
type HTTPOption func(*HTTPProvider)

// WithHTTPClient подменяет http.Client
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(p *HTTPProvider) {
		if c != nil {
			p.httpClient = c
		}
	}
}

// WithMetrics включает метрики результатов и задержки upstream
func WithMetrics(m *metrics.Metrics) HTTPOption {
	return func(p *HTTPProvider) {
		p.metrics = m
	}
}

// upstreamResponse - ответ внешнего API прогнозов
type upstreamResponse struct {
	Temperature *float64 `json:"temperature"`
	Forecast    string   `json:"forecast"`
}

// NewHTTPProvider создает provider для API по адресу baseURL.
// Неположительный timeout заменяется на DefaultTimeout.
func NewHTTPProvider(baseURL string, timeout time.Duration, opts ...HTTPOption) *HTTPProvider {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	p := &HTTPProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Forecast обращается к внешнему API.
// При ошибке возвращает ErrUpstreamTimeout или ErrBadGateway (оба оборачивают ErrUpstream).
func (p *HTTPProvider) Forecast(ctx context.Context, city string) (*Forecast, error) {
	city, err := normalizeCity(city)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	result, err := p.fetch(ctx, city)
	p.observe(time.Since(start), err)
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (p *HTTPProvider) fetch(ctx context.Context, city string) (*Forecast, error) {
	endpoint := p.baseURL + "/forecast/" + url.PathEscape(city)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrBadGateway, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError(ctx, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Вычитываем тело, чтобы соединение вернулось в пул
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseSize))
		return nil, fmt.Errorf("%w: upstream returned status %d", ErrBadGateway, resp.StatusCode)
	}

	var body upstreamResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(&body); err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("%w: %v", ErrUpstreamTimeout, err)
		}
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrBadGateway, err)
	}

	if body.Forecast == "" || body.Temperature == nil {
		return nil, fmt.Errorf("%w: incomplete response", ErrBadGateway)
	}

	return &Forecast{
		City:        city,
		Summary:     body.Forecast,
		Temperature: *body.Temperature,
	}, nil
}

func classifyTransportError(ctx context.Context, err error) error {
	// Клиент ушел сам: это не ошибка upstream
	if errors.Is(ctx.Err(), context.Canceled) {
		return fmt.Errorf("forecast request canceled: %w", ctx.Err())
	}
	if isTimeout(err) {
		return fmt.Errorf("%w: %v", ErrUpstreamTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrBadGateway, err)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func (p *HTTPProvider) observe(d time.Duration, err error) {
	if p.metrics == nil {
		return
	}

	outcome := "ok"
	switch {
	case errors.Is(err, ErrUpstreamTimeout):
		outcome = "timeout"
	case errors.Is(err, ErrBadGateway):
		outcome = "bad_gateway"
	case err != nil:
		outcome = "canceled"
	}

	p.metrics.UpstreamRequestsTotal.WithLabelValues(outcome).Inc()
	p.metrics.UpstreamRequestDuration.Observe(d.Seconds())
}
