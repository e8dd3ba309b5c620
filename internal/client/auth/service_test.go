package auth

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	clientapi "github.com/iudanet/pronostico/internal/client/api"
	"github.com/iudanet/pronostico/internal/client/storage"
	"github.com/iudanet/pronostico/pkg/api"
)

// mockAuthStorage implements storage.AuthStorage for testing
type mockAuthStorage struct {
	data      *storage.AuthData
	saveErr   error
	getErr    error
	deleteErr error
}

func (m *mockAuthStorage) SaveAuth(ctx context.Context, auth *storage.AuthData) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	c := *auth
	m.data = &c
	return nil
}

func (m *mockAuthStorage) GetAuth(ctx context.Context) (*storage.AuthData, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if m.data == nil {
		return nil, storage.ErrAuthNotFound
	}
	c := *m.data
	return &c, nil
}

func (m *mockAuthStorage) DeleteAuth(ctx context.Context) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if m.data == nil {
		return storage.ErrAuthNotFound
	}
	m.data = nil
	return nil
}

func (m *mockAuthStorage) IsAuthenticated(ctx context.Context) (bool, error) {
	return m.data != nil, nil
}

// mockAPIClient records calls and returns preset results
type mockAPIClient struct {
	registerErr   error
	loginErr      error
	logoutErr     error
	registered    []api.CreateUserRequest
	loggedOut     []string
	tokenTTL      int64
	registerCalls int
}

func (m *mockAPIClient) BaseURL() string { return "http://localhost:8000" }

func (m *mockAPIClient) Register(ctx context.Context, req api.CreateUserRequest) (*api.User, error) {
	m.registerCalls++
	if m.registerErr != nil {
		return nil, m.registerErr
	}
	m.registered = append(m.registered, req)
	return &api.User{ID: 1, Username: req.Username, Email: req.Email, Active: true}, nil
}

func (m *mockAPIClient) Login(ctx context.Context, username, password string) (*api.TokenResponse, error) {
	if m.loginErr != nil {
		return nil, m.loginErr
	}
	return &api.TokenResponse{AccessToken: "token-" + username, TokenType: "bearer", ExpiresIn: m.tokenTTL}, nil
}

func (m *mockAPIClient) Logout(ctx context.Context, token string) error {
	if m.logoutErr != nil {
		return m.logoutErr
	}
	m.loggedOut = append(m.loggedOut, token)
	return nil
}

func newTestService(now time.Time) (*Service, *mockAPIClient, *mockAuthStorage) {
	client := &mockAPIClient{tokenTTL: 1800}
	store := &mockAuthStorage{}
	s := NewService(client, store)
	s.now = func() time.Time { return now }
	return s, client, store
}

func TestService_Register(t *testing.T) {
	ctx := context.Background()
	s, client, _ := newTestService(time.Now())

	user, err := s.Register(ctx, RegisterInput{Username: "carlos", Email: "c@x.com", Password: "pw1234"})
	require.NoError(t, err)
	assert.Equal(t, "carlos", user.Username)
	require.Len(t, client.registered, 1)
	assert.Equal(t, "c@x.com", client.registered[0].Email)

	// Невалидные данные не уходят на сервер
	_, err = s.Register(ctx, RegisterInput{Username: "carlos", Email: "not-an-email", Password: "pw1234"})
	require.Error(t, err)
	assert.Equal(t, 1, client.registerCalls)

	client.registerErr = &clientapi.StatusError{StatusCode: 400, Message: "Username already registered"}
	_, err = s.Register(ctx, RegisterInput{Username: "carlos", Email: "c@x.com", Password: "pw1234"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Username already registered")
}

func TestService_LoginAndSession(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	s, _, store := newTestService(now)

	_, err := s.Session(ctx)
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	authData, err := s.Login(ctx, "carlos", "pw1234")
	require.NoError(t, err)
	assert.Equal(t, "token-carlos", authData.AccessToken)
	assert.Equal(t, now.Add(30*time.Minute).Unix(), authData.ExpiresAt)
	assert.Equal(t, "http://localhost:8000", authData.ServerURL)
	assert.Equal(t, authData, store.data)

	session, err := s.Session(ctx)
	require.NoError(t, err)
	assert.Equal(t, "carlos", session.Username)

	// Через 31 минуту токен истек
	s.now = func() time.Time { return now.Add(31 * time.Minute) }
	_, err = s.Session(ctx)
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	status, err := s.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, "carlos", status.Username)
}

func TestService_Login_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("empty credentials", func(t *testing.T) {
		s, _, _ := newTestService(time.Now())
		_, err := s.Login(ctx, "", "pw1234")
		assert.Error(t, err)
	})

	t.Run("rejected by server", func(t *testing.T) {
		s, client, store := newTestService(time.Now())
		client.loginErr = &clientapi.StatusError{StatusCode: 400, Message: "Incorrect username or password"}

		_, err := s.Login(ctx, "carlos", "wrong")
		require.Error(t, err)
		assert.Nil(t, store.data)
	})

	t.Run("store failure", func(t *testing.T) {
		s, _, store := newTestService(time.Now())
		store.saveErr = errors.New("disk full")

		_, err := s.Login(ctx, "carlos", "pw1234")
		assert.ErrorContains(t, err, "disk full")
	})
}

func TestService_Logout(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	t.Run("revokes and deletes", func(t *testing.T) {
		s, client, store := newTestService(now)
		_, err := s.Login(ctx, "carlos", "pw1234")
		require.NoError(t, err)

		require.NoError(t, s.Logout(ctx))
		assert.Equal(t, []string{"token-carlos"}, client.loggedOut)
		assert.Nil(t, store.data)
	})

	t.Run("not logged in", func(t *testing.T) {
		s, _, _ := newTestService(now)
		assert.ErrorIs(t, s.Logout(ctx), ErrNotAuthenticated)
	})

	t.Run("token already rejected by server", func(t *testing.T) {
		s, client, store := newTestService(now)
		_, err := s.Login(ctx, "carlos", "pw1234")
		require.NoError(t, err)
		client.logoutErr = fmt.Errorf("logout request failed: %w", &clientapi.StatusError{StatusCode: 401})

		require.NoError(t, s.Logout(ctx))
		assert.Nil(t, store.data)
	})

	t.Run("expired session skips server", func(t *testing.T) {
		s, client, store := newTestService(now)
		_, err := s.Login(ctx, "carlos", "pw1234")
		require.NoError(t, err)
		s.now = func() time.Time { return now.Add(time.Hour) }

		require.NoError(t, s.Logout(ctx))
		assert.Empty(t, client.loggedOut)
		assert.Nil(t, store.data)
	})

	t.Run("server down keeps session", func(t *testing.T) {
		s, client, store := newTestService(now)
		_, err := s.Login(ctx, "carlos", "pw1234")
		require.NoError(t, err)
		client.logoutErr = errors.New("connection refused")

		require.Error(t, s.Logout(ctx))
		assert.NotNil(t, store.data)
	})
}
