// Package config собирает настройки сервера из флагов, переменных окружения,
// .env файла и значений по умолчанию (в порядке убывания приоритета).
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/netip"
	"os"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"github.com/iudanet/pronostico/internal/crypto"
)

// Значения по умолчанию
const (
	DefaultAddr              = ":8000"
	DefaultDBPath            = "pronostico.db"
	DefaultIssuer            = "pronostico"
	DefaultAccessTokenTTL    = 30 * time.Minute
	DefaultForecastTimeout   = 5 * time.Second
	DefaultRateLimitRequests = 10
	DefaultRateLimitWindow   = time.Minute
	DefaultRateLimitBurst    = 5
	DefaultShutdownTimeout   = 10 * time.Second
	DefaultLogLevel          = "info"
	DefaultLogFormat         = "text"
	DefaultEnvFile           = ".env"
)

// ErrMissingSecret возвращается, если секрет JWT не задан вне dev режима
var ErrMissingSecret = errors.New("SECRET_KEY is required outside dev mode")

// Config содержит настройки сервера
type Config struct {
	Addr      string
	DBPath    string
	JWTSecret string
	JWTIssuer string

	ForecastURL string

	LogLevel  string
	LogFormat string

	// TrustedProxies: прокси, чьим X-Forwarded-For можно верить при rate limiting
	TrustedProxies []netip.Prefix

	AccessTokenTTL  time.Duration
	ForecastTimeout time.Duration
	RateLimitWindow time.Duration
	ShutdownTimeout time.Duration

	BcryptCost        int
	RateLimitRequests int
	RateLimitBurst    int

	Dev         bool
	ShowVersion bool

	// SecretGenerated = true, если секрет сгенерирован при старте
	SecretGenerated bool
}

// Load разбирает args (без имени программы) поверх окружения.
// Сначала читается .env файл из ENV_FILE (по умолчанию ".env");
// переменные, уже заданные в окружении, имеют приоритет над ним.
func Load(args []string) (*Config, error) {
	envFile := getEnvAsString("ENV_FILE", DefaultEnvFile)
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	cfg := &Config{}
	flags := flag.NewFlagSet("pronostico", flag.ContinueOnError)
	flags.SetOutput(io.Discard)

	flags.StringVar(&cfg.Addr, "addr", getEnvAsString("SERVER_ADDRESS", DefaultAddr), "HTTP listen address")
	flags.StringVar(&cfg.DBPath, "db", getEnvAsString("DATABASE_PATH", DefaultDBPath), "SQLite database file")
	flags.StringVar(&cfg.JWTSecret, "secret", getEnvAsString("SECRET_KEY", ""), "HMAC secret for access tokens")
	flags.StringVar(&cfg.JWTIssuer, "issuer", getEnvAsString("TOKEN_ISSUER", DefaultIssuer), "access token issuer")
	flags.DurationVar(&cfg.AccessTokenTTL, "token-ttl",
		getEnvAsMinutes("ACCESS_TOKEN_EXPIRE_MINUTES", DefaultAccessTokenTTL), "access token lifetime")
	flags.IntVar(&cfg.BcryptCost, "bcrypt-cost", getEnvAsInt("BCRYPT_COST", bcrypt.DefaultCost), "bcrypt work factor")
	flags.StringVar(&cfg.ForecastURL, "forecast-url", getEnvAsString("FORECAST_API_URL", ""),
		"external forecast API base URL, empty for mock forecasts")
	flags.DurationVar(&cfg.ForecastTimeout, "forecast-timeout",
		getEnvAsDuration("FORECAST_TIMEOUT", DefaultForecastTimeout), "external forecast API timeout")
	flags.IntVar(&cfg.RateLimitRequests, "rate-limit", getEnvAsInt("RATE_LIMIT_REQUESTS", DefaultRateLimitRequests),
		"requests per window for /token and POST /users/")
	flags.DurationVar(&cfg.RateLimitWindow, "rate-window", getEnvAsDuration("RATE_LIMIT_WINDOW", DefaultRateLimitWindow),
		"rate limit window")
	flags.IntVar(&cfg.RateLimitBurst, "rate-burst", getEnvAsInt("RATE_LIMIT_BURST", DefaultRateLimitBurst), "rate limit burst")
	flags.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout",
		getEnvAsDuration("SHUTDOWN_TIMEOUT", DefaultShutdownTimeout), "graceful shutdown timeout")
	flags.StringVar(&cfg.LogLevel, "log-level", getEnvAsString("LOG_LEVEL", DefaultLogLevel), "debug, info, warn or error")
	flags.StringVar(&cfg.LogFormat, "log-format", getEnvAsString("LOG_FORMAT", DefaultLogFormat), "text or json")
	trustedProxies := flags.String("trusted-proxies", getEnvAsString("TRUSTED_PROXIES", ""),
		"comma-separated IPs or CIDRs of reverse proxies allowed to set X-Forwarded-For")
	flags.BoolVar(&cfg.Dev, "dev", getEnvAsBool("DEV_MODE", false), "development mode")
	flags.BoolVar(&cfg.ShowVersion, "version", false, "show version information")

	if err := flags.Parse(args); err != nil {
		return nil, fmt.Errorf("failed to parse flags: %w", err)
	}

	if cfg.ShowVersion {
		return cfg, nil
	}

	proxies, err := parseTrustedProxies(*trustedProxies)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	cfg.TrustedProxies = proxies

	if cfg.JWTSecret == "" {
		if !cfg.Dev {
			return nil, ErrMissingSecret
		}
		secret, err := crypto.GenerateSecret(crypto.SecretSize)
		if err != nil {
			return nil, err
		}
		cfg.JWTSecret = secret
		cfg.SecretGenerated = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate проверяет значения конфигурации
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Addr, validation.Required),
		validation.Field(&c.DBPath, validation.Required),
		validation.Field(&c.JWTSecret, validation.Required),
		validation.Field(&c.JWTIssuer, validation.Required),
		validation.Field(&c.ForecastURL, is.URL),
		validation.Field(&c.BcryptCost, validation.Min(bcrypt.MinCost), validation.Max(bcrypt.MaxCost)),
		validation.Field(&c.RateLimitRequests, validation.Min(1)),
		validation.Field(&c.RateLimitBurst, validation.Min(1)),
		validation.Field(&c.LogLevel, validation.In("debug", "info", "warn", "error")),
		validation.Field(&c.LogFormat, validation.In("text", "json")),
	); err != nil {
		return err
	}

	durations := []struct {
		name  string
		value time.Duration
	}{
		{"token-ttl", c.AccessTokenTTL},
		{"forecast-timeout", c.ForecastTimeout},
		{"rate-window", c.RateLimitWindow},
		{"shutdown-timeout", c.ShutdownTimeout},
	}
	for _, d := range durations {
		if d.value <= 0 {
			return fmt.Errorf("%s must be positive", d.name)
		}
	}

	return nil
}

// parseTrustedProxies разбирает список адресов через запятую.
// Одиночный IP превращается в префикс из одного адреса.
func parseTrustedProxies(value string) ([]netip.Prefix, error) {
	var prefixes []netip.Prefix
	for _, item := range strings.Split(value, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if strings.Contains(item, "/") {
			prefix, err := netip.ParsePrefix(item)
			if err != nil {
				return nil, fmt.Errorf("trusted-proxies: %w", err)
			}
			prefixes = append(prefixes, prefix.Masked())
			continue
		}
		addr, err := netip.ParseAddr(item)
		if err != nil {
			return nil, fmt.Errorf("trusted-proxies: %w", err)
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}

// Level возвращает уровень slog для LogLevel
func (c *Config) Level() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(c.LogLevel))); err != nil {
		return slog.LevelInfo
	}
	return level
}

// NewLogger создает slog логгер согласно LogLevel и LogFormat
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stdout
	}
	opts := &slog.HandlerOptions{Level: c.Level()}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
