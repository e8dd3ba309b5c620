package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/pressly/goose/v3"
	"modernc.org/sqlite" // драйвер SQLite
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/iudanet/pronostico/internal/server/storage"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// Storage - реализация хранилища на SQLite
// Реализует storage.UserStorage, storage.TokenStorage и storage.QueryStorage
type Storage struct {
	db *sql.DB
}

var (
	_ storage.UserStorage  = (*Storage)(nil)
	_ storage.TokenStorage = (*Storage)(nil)
	_ storage.QueryStorage = (*Storage)(nil)
)

// New открывает хранилище SQLite и применяет миграции
// dbPath - путь к файлу базы SQLite
func New(ctx context.Context, dbPath string) (*Storage, error) {
	// Открываем соединение с БД
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Проверяем соединение
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// SQLite допускает только одного писателя, уникальность и FK проверяет сама БД
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA synchronous = NORMAL;",
		"PRAGMA foreign_keys = ON;",
		"PRAGMA busy_timeout = 5000;",
	}

	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	s := &Storage{db: db}

	// Запускаем миграции
	if err := s.runMigrations(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return s, nil
}

// NewWithDB оборачивает уже открытое соединение без миграций
func NewWithDB(db *sql.DB) *Storage {
	return &Storage{db: db}
}

// Close закрывает соединение с БД
func (s *Storage) Close() error {
	return s.db.Close()
}

// Ping проверяет доступность БД
func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// runMigrations выполняет миграции из embedded FS
func (s *Storage) runMigrations(ctx context.Context) error {
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.UpContext(ctx, s.db, "migrations"); err != nil {
		return fmt.Errorf("goose up failed: %w", err)
	}

	return nil
}

// DB возвращает соединение с БД (для тестов)
func (s *Storage) DB() *sql.DB {
	return s.db
}

// userConflict превращает нарушение уникальности в таблице users в
// соответствующую ошибку storage. Для остальных ошибок возвращает nil.
func userConflict(err error) error {
	msg := err.Error()

	unique := strings.Contains(msg, "UNIQUE constraint failed")
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		unique = sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	if !unique {
		return nil
	}

	switch {
	case strings.Contains(msg, "users.username"):
		return storage.ErrUsernameTaken
	case strings.Contains(msg, "users.email"):
		return storage.ErrEmailTaken
	default:
		return storage.ErrUserAlreadyExists
	}
}
