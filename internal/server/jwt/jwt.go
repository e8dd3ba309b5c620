package jwt

import (
	"context"
	"errors"
	"fmt"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/iudanet/pronostico/internal/server/storage"
)

// DefaultAccessTokenTTL время жизни access token по умолчанию
const DefaultAccessTokenTTL = 30 * time.Minute

// TokenType - тип токена OAuth2, который отдается клиенту
const TokenType = "bearer"

var (
	// ErrUnauthorized - общий родитель всех отказов по токену
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidToken: токен поврежден, неверная подпись или чужой алгоритм
	ErrInvalidToken = fmt.Errorf("%w: invalid token", ErrUnauthorized)

	// ErrTokenExpired: подпись верна, но exp уже в прошлом
	ErrTokenExpired = fmt.Errorf("%w: token expired", ErrUnauthorized)

	// ErrTokenRevoked: токен валиден, но есть в списке отозванных
	ErrTokenRevoked = fmt.Errorf("%w: token revoked", ErrUnauthorized)
)

// Claims представляет claims JWT токена
type Claims struct {
	gojwt.RegisteredClaims
}

// Config содержит конфигурацию для JWT
type Config struct {
	Issuer         string
	Secret         []byte
	AccessTokenTTL time.Duration
}

// Service выпускает, проверяет и отзывает JWT токены
type Service struct {
	revocations storage.TokenStorage
	now         func() time.Time
	cfg         Config
}

// Option настраивает Service
type Option func(*Service)

// WithClock подменяет источник времени (для тестов)
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService создает новый JWT сервис
// cfg.Secret должен быть криптографически случайной строкой
func NewService(cfg Config, revocations storage.TokenStorage, opts ...Option) *Service {
	if cfg.AccessTokenTTL <= 0 {
		cfg.AccessTokenTTL = DefaultAccessTokenTTL
	}

	s := &Service{
		cfg:         cfg,
		revocations: revocations,
		now:         time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// AccessTokenTTL возвращает время жизни токена по умолчанию
func (s *Service) AccessTokenTTL() time.Duration {
	return s.cfg.AccessTokenTTL
}

// IssueAccessToken выпускает токен для subject с TTL из конфигурации
func (s *Service) IssueAccessToken(subject string) (string, time.Time, error) {
	return s.Issue(subject, s.cfg.AccessTokenTTL)
}

// Issue создает подписанный токен для subject, истекающий через ttl.
// У каждого токена случайный jti: два токена одного subject, выпущенные
// в одну секунду, все равно различаются.
// Возвращаемое время совпадает с exp в токене (точность до секунды).
func (s *Service) Issue(subject string, ttl time.Duration) (string, time.Time, error) {
	if subject == "" {
		return "", time.Time{}, fmt.Errorf("subject cannot be empty")
	}

	now := s.now()
	expiresAt := gojwt.NewNumericDate(now.Add(ttl))

	claims := Claims{
		RegisteredClaims: gojwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			Issuer:    s.cfg.Issuer,
			IssuedAt:  gojwt.NewNumericDate(now),
			ExpiresAt: expiresAt,
		},
	}

	token := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.cfg.Secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, expiresAt.Time, nil
}

// Verify проверяет подпись, срок действия и отзыв, именно в таком порядке.
// При отказе возвращает ErrInvalidToken, ErrTokenExpired или ErrTokenRevoked.
func (s *Service) Verify(ctx context.Context, tokenString string) (*Claims, error) {
	claims, err := s.parse(tokenString)
	if err != nil {
		return nil, err
	}

	revoked, err := s.revocations.IsTokenRevoked(ctx, tokenString)
	if err != nil {
		return nil, fmt.Errorf("failed to check revocation list: %w", err)
	}
	if revoked {
		return nil, ErrTokenRevoked
	}

	return claims, nil
}

// Revoke добавляет строку токена в список отозванных.
// Остальные токены того же subject остаются валидными.
func (s *Service) Revoke(ctx context.Context, tokenString string) error {
	if tokenString == "" {
		return ErrInvalidToken
	}
	if err := s.revocations.RevokeToken(ctx, tokenString); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

func (s *Service) parse(tokenString string) (*Claims, error) {
	parserOptions := []gojwt.ParserOption{
		gojwt.WithTimeFunc(s.now),
		gojwt.WithExpirationRequired(),
		gojwt.WithValidMethods([]string{gojwt.SigningMethodHS256.Alg()}),
	}
	if s.cfg.Issuer != "" {
		parserOptions = append(parserOptions, gojwt.WithIssuer(s.cfg.Issuer))
	}

	token, err := gojwt.ParseWithClaims(tokenString, &Claims{}, func(token *gojwt.Token) (any, error) {
		// Проверяем что используется правильный алгоритм подписи
		if _, ok := token.Method.(*gojwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.cfg.Secret, nil
	}, parserOptions...)

	if err != nil {
		if errors.Is(err, gojwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
