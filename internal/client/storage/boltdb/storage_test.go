package boltdb

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.etcd.io/bbolt"
)

func TestNew_Success(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "testdb.db")

	store, err := New(context.Background(), dbPath)
	require.NoError(t, err)
	require.NotNil(t, store)
	defer func() {
		require.NoError(t, store.Close())
	}()

	// Проверяем что файл БД действительно создан
	info, err := os.Stat(dbPath)
	require.NoError(t, err)
	assert.False(t, info.IsDir())
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	err = store.db.View(func(tx *bbolt.Tx) error {
		if tx.Bucket(bucketAuth) == nil {
			return os.ErrNotExist
		}
		return nil
	})
	require.NoError(t, err)
}

func TestNew_InvalidPath(t *testing.T) {
	store, err := New(context.Background(), filepath.Join(t.TempDir(), "missing", "dir", "db"))
	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestNew_LockedByAnotherProcess(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "locked.db")

	first, err := New(context.Background(), dbPath)
	require.NoError(t, err)
	defer func() { _ = first.Close() }()

	start := time.Now()
	second, err := New(context.Background(), dbPath)
	assert.Error(t, err)
	assert.Nil(t, second)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestClose(t *testing.T) {
	store, err := New(context.Background(), filepath.Join(t.TempDir(), "testdb.db"))
	require.NoError(t, err)

	assert.NoError(t, store.Close())
	assert.Nil(t, store.db)

	// Второй вызов Close ничего не делает
	assert.NoError(t, store.Close())
}

func TestReopen_KeepsSession(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "testdb.db")

	store, err := New(ctx, dbPath)
	require.NoError(t, err)
	require.NoError(t, store.SaveAuth(ctx, sampleAuth()))
	require.NoError(t, store.Close())

	store, err = New(ctx, dbPath)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	got, err := store.GetAuth(ctx)
	require.NoError(t, err)
	assert.Equal(t, "carlos", got.Username)
}
