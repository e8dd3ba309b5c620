package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iudanet/pronostico/internal/crypto"
	"github.com/iudanet/pronostico/internal/models"
	"github.com/iudanet/pronostico/internal/server/jwt"
	"github.com/iudanet/pronostico/internal/server/storage/sqlite"
	"github.com/iudanet/pronostico/internal/server/users"
)

// setupTestLogger creates a logger for testing
func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testEnv wires real services over a temporary SQLite database
type testEnv struct {
	store  *sqlite.Storage
	users  *users.Service
	tokens *jwt.Service
	logger *slog.Logger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store, err := sqlite.New(context.Background(), filepath.Join(t.TempDir(), "handlers.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	logger := setupTestLogger()
	return &testEnv{
		store:  store,
		logger: logger,
		users:  users.NewService(store, crypto.NewPasswordHasher(bcrypt.MinCost), logger),
		tokens: jwt.NewService(jwt.Config{
			Secret:         []byte("handlers-test-secret"),
			AccessTokenTTL: 30 * time.Minute,
			Issuer:         "pronostico",
		}, store),
	}
}

func (e *testEnv) createUser(t *testing.T, username string) *models.User {
	t.Helper()
	user, err := e.users.Create(context.Background(), users.CreateInput{
		Username: username,
		Email:    username + "@x.com",
		FullName: "Test " + username,
		Password: "pw1234",
	})
	require.NoError(t, err)
	return user
}

// authenticated puts the user and its token into the request context,
// as the bearer middleware does
func authenticated(r *http.Request, user *models.User, token string) *http.Request {
	ctx := WithUser(r.Context(), user)
	ctx = WithToken(ctx, token)
	return r.WithContext(ctx)
}

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(w.Body).Decode(&v))
	return v
}
