package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/HerbHall/cinelens/internal/store"
)

// StateEntry is one key/value document of user state.
type StateEntry struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StateRepository stores opaque documents by key.
type StateRepository interface {
	// Get returns a single entry by key.
	Get(ctx context.Context, key string) (*StateEntry, error)

	// GetAll returns all entries ordered by key.
	GetAll(ctx context.Context) ([]StateEntry, error)

	// Set creates or replaces an entry.
	Set(ctx context.Context, key, value string) error

	// Delete removes an entry by key.
	Delete(ctx context.Context, key string) error
}

// Compile-time interface guard.
var _ StateRepository = (*SQLiteStateRepository)(nil)

// SQLiteStateRepository implements StateRepository using SQLite.
type SQLiteStateRepository struct {
	db *sql.DB
}

// NewSQLiteStateRepository creates a StateRepository and runs the app_state
// migration.
func NewSQLiteStateRepository(ctx context.Context, s Store) (*SQLiteStateRepository, error) {
	if err := s.Migrate(ctx, "state", stateMigrations); err != nil {
		return nil, fmt.Errorf("state migrations: %w", err)
	}
	return &SQLiteStateRepository{db: s.DB()}, nil
}

func (r *SQLiteStateRepository) Get(ctx context.Context, key string) (*StateEntry, error) {
	var e StateEntry
	err := r.db.QueryRowContext(ctx,
		`SELECT key, value, updated_at FROM app_state WHERE key = ?`, key,
	).Scan(&e.Key, &e.Value, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get state %q: %w", key, err)
	}
	return &e, nil
}

func (r *SQLiteStateRepository) GetAll(ctx context.Context) ([]StateEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT key, value, updated_at FROM app_state ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list state: %w", err)
	}
	defer rows.Close()

	var entries []StateEntry
	for rows.Next() {
		var e StateEntry
		if err := rows.Scan(&e.Key, &e.Value, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan state row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *SQLiteStateRepository) Set(ctx context.Context, key, value string) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO app_state (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, now,
	)
	if err != nil {
		return fmt.Errorf("set state %q: %w", key, err)
	}
	return nil
}

func (r *SQLiteStateRepository) Delete(ctx context.Context, key string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM app_state WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("delete state %q: %w", key, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

var stateMigrations = []store.Migration{
	{
		Version:     1,
		Description: "create app_state table",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
				CREATE TABLE app_state (
					key        TEXT PRIMARY KEY,
					value      TEXT NOT NULL,
					updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
				)`)
			return err
		},
	},
}
