package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	clientapi "github.com/iudanet/pronostico/internal/client/api"
	"github.com/iudanet/pronostico/internal/client/auth"
	"github.com/iudanet/pronostico/internal/client/iocli"
	"github.com/iudanet/pronostico/internal/client/storage"
	"github.com/iudanet/pronostico/pkg/api"
)

// ErrUnknownCommand возвращается для неизвестной команды
var ErrUnknownCommand = errors.New("unknown command")

// AuthService управляет сессией для команд
type AuthService interface {
	Register(ctx context.Context, in auth.RegisterInput) (*api.User, error)
	Login(ctx context.Context, username, password string) (*storage.AuthData, error)
	Logout(ctx context.Context) error
	Session(ctx context.Context) (*storage.AuthData, error)
	Status(ctx context.Context) (*storage.AuthData, error)
}

// ForecastClient - часть API клиента для команд прогноза
type ForecastClient interface {
	Forecast(ctx context.Context, token, city string) (*api.ForecastResponse, error)
	History(ctx context.Context, token string, skip, limit int) ([]api.WeatherQuery, error)
}

type Cli struct {
	io       iocli.IO
	auth     AuthService
	forecast ForecastClient
	now      func() time.Time
}

func New(io iocli.IO, authService AuthService, forecastClient ForecastClient) *Cli {
	return &Cli{
		io:       io,
		auth:     authService,
		forecast: forecastClient,
		now:      time.Now,
	}
}

// Run выполняет команду
func (c *Cli) Run(ctx context.Context, command string, args []string) error {
	switch command {
	case "register":
		return c.runRegister(ctx)
	case "login":
		return c.runLogin(ctx)
	case "logout":
		return c.runLogout(ctx)
	case "status":
		return c.runStatus(ctx)
	case "forecast":
		return c.runForecast(ctx, args)
	case "history":
		return c.runHistory(ctx, args)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownCommand, command)
	}
}

// session возвращает токен текущей сессии или понятную пользователю ошибку
func (c *Cli) session(ctx context.Context) (*storage.AuthData, error) {
	authData, err := c.auth.Session(ctx)
	if err != nil {
		if errors.Is(err, auth.ErrNotAuthenticated) {
			return nil, fmt.Errorf("%w. Please run 'pronostico login' first", err)
		}
		return nil, err
	}
	return authData, nil
}

// explainUnauthorized переписывает 401 сервера в подсказку для пользователя
func explainUnauthorized(err error) error {
	if errors.Is(err, clientapi.ErrUnauthorized) {
		return fmt.Errorf("session is no longer valid (revoked or user deleted). Please run 'pronostico login' again: %w", err)
	}
	return err
}

func PrintUsage(io iocli.IO) {
	io.Println("Pronostico Client")
	io.Println()
	io.Println("Usage:")
	io.Println("  pronostico [OPTIONS] COMMAND")
	io.Println()
	io.Println("Options:")
	io.Println("  --version                    Show version information")
	io.Println("  --server URL                 Server URL (default: http://localhost:8000)")
	io.Println("  --db PATH                    Path to local session database (default: pronostico-client.db)")
	io.Println()
	io.Println("Commands:")
	io.Println("  register                Register new user")
	io.Println("  login                   Login to server")
	io.Println("  logout                  Revoke the token and delete the local session")
	io.Println("  status                  Show authentication status")
	io.Println("  forecast <city>         Show the forecast for a city")
	io.Println("  history [-limit N] [-skip N]")
	io.Println("                          Show your previous forecast lookups")
	io.Println()
	io.Println("Examples:")
	io.Println("  pronostico register")
	io.Println("  pronostico login")
	io.Println("  pronostico forecast Madrid")
	io.Println("  pronostico forecast \"San José\"")
	io.Println("  pronostico history -limit 5")
	io.Println("  pronostico --server https://example.com login")
}
