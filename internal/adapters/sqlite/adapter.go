// Package sqlite provides a SQLite-backed implementation of the settings store port.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3" // Import the driver anonymously

	"github.com/ewilliams-labs/notetune/internal/core/domain"
	"github.com/ewilliams-labs/notetune/internal/core/ports"
)

// KeyAccessToken is the settings key holding the media API access token.
const KeyAccessToken = "access_token"

// ErrKeyNotFound is returned by Get for keys that were never set.
var ErrKeyNotFound = errors.New("sqlite: key not found")

// Adapter implements the settings store port for SQLite
type Adapter struct {
	db *sql.DB
}

var _ ports.SettingsStore = (*Adapter)(nil)

// NewAdapter creates a connection and runs the schema migration
func NewAdapter(storagePath string) (*Adapter, error) {
	db, err := sql.Open("sqlite3", storagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping sqlite db: %w", err)
	}

	adapter := &Adapter{db: db}
	if err := adapter.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return adapter, nil
}

// Close ensures the DB connection is closed gracefully
func (a *Adapter) Close() error {
	return a.db.Close()
}

// Get returns the raw value stored under key.
func (a *Adapter) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := a.db.QueryRowContext(ctx, "SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrKeyNotFound
		}
		return "", fmt.Errorf("failed to load setting %s: %w", key, err)
	}
	return value, nil
}

// Load merges stored values over domain.DefaultSettings.
func (a *Adapter) Load(ctx context.Context) (domain.Settings, error) {
	settings := domain.DefaultSettings()

	token, err := a.Get(ctx, KeyAccessToken)
	switch {
	case err == nil:
		settings.AccessToken = token
	case errors.Is(err, ErrKeyNotFound):
	default:
		return domain.Settings{}, err
	}

	return settings, nil
}

// Save rewrites every settings key in one transaction.
func (a *Adapter) Save(ctx context.Context, s domain.Settings) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // no-op after commit

	stmt, err := tx.PrepareContext(ctx, upsertSetting)
	if err != nil {
		return fmt.Errorf("failed to prepare settings upsert: %w", err)
	}
	defer stmt.Close()

	values := map[string]string{
		KeyAccessToken: s.AccessToken,
	}
	for key, value := range values {
		if _, err := stmt.ExecContext(ctx, key, value); err != nil {
			return fmt.Errorf("failed to save setting %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("transaction commit failed: %w", err)
	}

	return nil
}

const upsertSetting = `
	INSERT INTO settings (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
	ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at;
`

func (a *Adapter) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	_, err := a.db.Exec(query)
	return err
}
