package middleware

import (
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/iudanet/pronostico/pkg/api"
)

// RateLimiter хранит отдельный token bucket (rate.Limiter) на каждый ключ
type RateLimiter struct {
	visitors map[string]*visitor
	cleanupC chan struct{}
	now      func() time.Time
	limit    rate.Limit
	burst    int
	idleTTL  time.Duration
	mu       sync.Mutex
	stopOnce sync.Once
}

// visitor представляет limiter для конкретного IP/ключа
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter создает новый rate limiter
// requests - количество запросов, восполняемое за window
// burst - максимальный всплеск (если <= 0, равен requests)
func NewRateLimiter(requests int, window time.Duration, burst int) *RateLimiter {
	if burst <= 0 {
		burst = requests
	}

	rl := &RateLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Limit(float64(requests) / window.Seconds()),
		burst:    burst,
		idleTTL:  window * 2,
		now:      time.Now,
		cleanupC: make(chan struct{}),
	}

	// Запускаем периодическую очистку неактивных limiters
	go rl.cleanup()

	return rl
}

// cleanup периодически удаляет неактивные limiters для экономии памяти
func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(rl.idleTTL)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanupIdle()
		case <-rl.cleanupC:
			return
		}
	}
}

// cleanupIdle удаляет limiters, которые не использовались дольше idleTTL
func (rl *RateLimiter) cleanupIdle() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for key, v := range rl.visitors {
		if now.Sub(v.lastSeen) > rl.idleTTL {
			delete(rl.visitors, key)
		}
	}
}

// Stop останавливает cleanup goroutine
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() {
		close(rl.cleanupC)
	})
}

// Allow проверяет, разрешен ли запрос для данного ключа (обычно IP адрес)
func (rl *RateLimiter) Allow(key string) bool {
	now := rl.now()

	rl.mu.Lock()
	v, exists := rl.visitors[key]
	if !exists {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[key] = v
	}
	v.lastSeen = now
	rl.mu.Unlock()

	return v.limiter.AllowN(now, 1)
}

// PathRateLimit описывает отдельный лимит для метода и пути
type PathRateLimit struct {
	Method   string
	Path     string
	Requests int
	Burst    int
	Window   time.Duration
}

// PathRateLimiter применяет разные лимиты для разных путей
type PathRateLimiter struct {
	limiters       map[string]*RateLimiter
	fallback       *RateLimiter
	logger         *slog.Logger
	trustedProxies []netip.Prefix
}

// PathRateLimiterOption настраивает PathRateLimiter
type PathRateLimiterOption func(*PathRateLimiter)

// WithTrustedProxies разрешает читать X-Forwarded-For и X-Real-IP,
// но только когда соединение пришло с одного из этих адресов
func WithTrustedProxies(prefixes []netip.Prefix) PathRateLimiterOption {
	return func(p *PathRateLimiter) {
		p.trustedProxies = prefixes
	}
}

// NewPathRateLimiter создает limiters для каждого пути и дефолтный для остальных.
// fallback может быть nil, тогда остальные пути не ограничиваются.
func NewPathRateLimiter(limits []PathRateLimit, fallback *RateLimiter, logger *slog.Logger, opts ...PathRateLimiterOption) *PathRateLimiter {
	p := &PathRateLimiter{
		limiters: make(map[string]*RateLimiter, len(limits)),
		fallback: fallback,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	for _, l := range limits {
		p.limiters[pathKey(l.Method, l.Path)] = NewRateLimiter(l.Requests, l.Window, l.Burst)
	}
	return p
}

// Stop останавливает все limiters
func (p *PathRateLimiter) Stop() {
	for _, l := range p.limiters {
		l.Stop()
	}
	if p.fallback != nil {
		p.fallback.Stop()
	}
}

// Middleware возвращает http middleware
func (p *PathRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limiter, exists := p.limiters[pathKey(r.Method, r.URL.Path)]
		if !exists {
			limiter = p.fallback
		}

		if limiter != nil {
			key := getClientIP(r, p.trustedProxies)
			if !limiter.Allow(key) {
				rejectRateLimited(p.logger, w, r, key)
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

func pathKey(method, path string) string {
	return method + " " + path
}

func rejectRateLimited(logger *slog.Logger, w http.ResponseWriter, r *http.Request, key string) {
	logger.WarnContext(r.Context(), "Rate limit exceeded",
		slog.String("ip", key),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Retry-After", "1")
	w.WriteHeader(http.StatusTooManyRequests)
	_ = json.NewEncoder(w).Encode(api.ErrorResponse{
		Error:   http.StatusText(http.StatusTooManyRequests),
		Message: "rate limit exceeded, please try again later",
	})
}

// getClientIP извлекает IP адрес клиента из запроса.
// Заголовки прокси учитываются только если RemoteAddr входит в trusted,
// иначе клиент мог бы подставлять новый адрес в каждом запросе.
func getClientIP(r *http.Request, trusted []netip.Prefix) string {
	host := remoteHost(r)
	if !isTrustedProxy(host, trusted) {
		return host
	}

	// X-Forwarded-For читаем справа налево: первый недоверенный адрес и есть клиент
	if xff := r.Header.Values("X-Forwarded-For"); len(xff) > 0 {
		hops := strings.Split(strings.Join(xff, ","), ",")
		client := ""
		for i := len(hops) - 1; i >= 0; i-- {
			hop := strings.TrimSpace(hops[i])
			if hop == "" {
				continue
			}
			client = hop
			if !isTrustedProxy(hop, trusted) {
				break
			}
		}
		if client != "" {
			return client
		}
	}

	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}

	return host
}

// remoteHost возвращает RemoteAddr без порта: у каждого соединения свой порт
func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func isTrustedProxy(ip string, trusted []netip.Prefix) bool {
	if len(trusted) == 0 {
		return false
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, prefix := range trusted {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}
