// Package auth управляет сессией CLI клиента: регистрация, вход и выход.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	clientapi "github.com/iudanet/pronostico/internal/client/api"
	"github.com/iudanet/pronostico/internal/client/storage"
	"github.com/iudanet/pronostico/internal/validation"
	"github.com/iudanet/pronostico/pkg/api"
)

// ErrNotAuthenticated возвращается, если сессии нет или токен истек
var ErrNotAuthenticated = errors.New("not authenticated")

// Service предоставляет функции авторизации
type Service struct {
	apiClient APIClient
	store     storage.AuthStorage
	now       func() time.Time
}

// NewService создает новый сервис авторизации
func NewService(apiClient APIClient, store storage.AuthStorage) *Service {
	return &Service{
		apiClient: apiClient,
		store:     store,
		now:       time.Now,
	}
}

// RegisterInput содержит данные регистрации
type RegisterInput struct {
	Username string
	Email    string
	FullName string
	Password string
}

// Register регистрирует нового пользователя
func (s *Service) Register(ctx context.Context, in RegisterInput) (*api.User, error) {
	req := api.CreateUserRequest{
		Username: in.Username,
		Email:    in.Email,
		FullName: in.FullName,
		Password: in.Password,
	}

	// Валидация до обращения к серверу
	if err := validation.ValidateCreateUser(req); err != nil {
		return nil, fmt.Errorf("invalid registration data: %w", err)
	}

	user, err := s.apiClient.Register(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("registration failed: %w", err)
	}

	return user, nil
}

// Login выполняет аутентификацию и сохраняет сессию локально
func (s *Service) Login(ctx context.Context, username, password string) (*storage.AuthData, error) {
	if username == "" || password == "" {
		return nil, fmt.Errorf("username and password are required")
	}

	resp, err := s.apiClient.Login(ctx, username, password)
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}

	authData := &storage.AuthData{
		Username:    username,
		ServerURL:   s.apiClient.BaseURL(),
		AccessToken: resp.AccessToken,
		ExpiresAt:   s.now().Unix() + resp.ExpiresIn,
	}

	if err := s.store.SaveAuth(ctx, authData); err != nil {
		return nil, fmt.Errorf("failed to save auth data: %w", err)
	}

	return authData, nil
}

// Session возвращает текущую действующую сессию
func (s *Service) Session(ctx context.Context) (*storage.AuthData, error) {
	authData, err := s.store.GetAuth(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrAuthNotFound) {
			return nil, ErrNotAuthenticated
		}
		return nil, fmt.Errorf("failed to get auth data: %w", err)
	}

	if authData.Expired(s.now()) {
		return nil, fmt.Errorf("%w: access token expired", ErrNotAuthenticated)
	}

	return authData, nil
}

// Status возвращает сохраненную сессию даже если токен истек
func (s *Service) Status(ctx context.Context) (*storage.AuthData, error) {
	authData, err := s.store.GetAuth(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrAuthNotFound) {
			return nil, ErrNotAuthenticated
		}
		return nil, fmt.Errorf("failed to get auth data: %w", err)
	}
	return authData, nil
}

// Logout отзывает токен на сервере и удаляет локальную сессию.
// Если сервер уже не принимает токен (401), локальная сессия все равно удаляется.
func (s *Service) Logout(ctx context.Context) error {
	authData, err := s.store.GetAuth(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrAuthNotFound) {
			return ErrNotAuthenticated
		}
		return fmt.Errorf("failed to get auth data: %w", err)
	}

	if !authData.Expired(s.now()) {
		if err := s.apiClient.Logout(ctx, authData.AccessToken); err != nil && !errors.Is(err, clientapi.ErrUnauthorized) {
			return fmt.Errorf("server logout failed: %w", err)
		}
	}

	if err := s.store.DeleteAuth(ctx); err != nil && !errors.Is(err, storage.ErrAuthNotFound) {
		return fmt.Errorf("failed to delete auth data: %w", err)
	}

	return nil
}
