package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/MrSnakeDoc/stamp/internal/domain"
	"github.com/MrSnakeDoc/stamp/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS kv (
	key        TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	updated_at INTEGER NOT NULL
);`

var pragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA busy_timeout = 10000",
	"PRAGMA synchronous = NORMAL",
}

// Store persists snapshots and settings in a single SQLite key-value table,
// using the same keys as the Redis backend.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

var _ store.Gateway = (*Store)(nil)

// Open opens (creating if needed) the database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One writer keeps the WAL simple and write order deterministic.
	db.SetMaxOpenConns(1)

	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply %q: %w", p, err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) put(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, s.now().UnixMilli(),
	)
	return err
}

func (s *Store) get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, "SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return value, err
}

// SaveSnapshot stores the entries and order of a resource
func (s *Store) SaveSnapshot(ctx context.Context, resourceID string, snap domain.Snapshot) error {
	data, err := store.EncodeSnapshot(snap)
	if err != nil {
		return err
	}
	if err := s.put(ctx, store.MarksKey(resourceID), data); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// GetSnapshot retrieves the stored snapshot of a resource
func (s *Store) GetSnapshot(ctx context.Context, resourceID string) (*domain.Snapshot, error) {
	data, err := s.get(ctx, store.MarksKey(resourceID))
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}
	if data == nil {
		return nil, nil
	}
	return store.DecodeSnapshot(data)
}

// ListResources returns the IDs of every resource with a stored snapshot
func (s *Store) ListResources(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT key FROM kv WHERE key LIKE ? ORDER BY key",
		store.KeyPrefixMarks+"%",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list resources: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scan resource key: %w", err)
		}
		id, err := store.ExtractResourceID(key)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// SaveSettings stores the global settings document
func (s *Store) SaveSettings(ctx context.Context, settings domain.Settings) error {
	data, err := store.EncodeSettings(settings)
	if err != nil {
		return err
	}
	if err := s.put(ctx, store.KeySettings, data); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

// GetSettings retrieves the global settings document
func (s *Store) GetSettings(ctx context.Context) (*domain.SettingsPatch, error) {
	data, err := s.get(ctx, store.KeySettings)
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	if data == nil {
		return nil, nil
	}
	return store.DecodeSettings(data)
}

// Ping checks the database connection
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}
