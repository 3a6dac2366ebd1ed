package storage

import (
	"database/sql"
	"fmt"

	"dashboard-sync/src/logger"
	"dashboard-sync/src/models"

	_ "modernc.org/sqlite"
)

// -----------------------------------------------------------------------------
// SQLite-backed key-value store. Holds the small amount of client-side
// state that must survive restarts: last-acknowledged order id per panel,
// last committed settings document.
// -----------------------------------------------------------------------------

type SQLiteKVStore struct {
	Config *models.MConfig
	DB     *sql.DB
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewSQLiteKVStore(cfg *models.MConfig, log *logger.Logger) (*SQLiteKVStore, error) {
	return &SQLiteKVStore{
		Config: cfg,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteKVStore) Initialize() error {
	dsn := d.Config.Storage.DBPath

	// Open DB
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return err
	}

	if err := db.Ping(); err != nil {
		return err
	}

	d.DB = db

	// PRAGMA optimizations
	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		d.Logger.Warning("Failed to set WAL mode: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL;"); err != nil {
		d.Logger.Warning("Failed to set synchronous mode: %v", err)
	}

	query := `
		CREATE TABLE IF NOT EXISTS kv_state (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create kv_state: %w", err)
	}

	d.Logger.Info("SQLiteKVStore initialized (%s)", dsn)
	return nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteKVStore) Get(key string) (string, bool, error) {
	var value string
	err := d.DB.QueryRow("SELECT value FROM kv_state WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read key %q: %w", key, err)
	}
	return value, true, nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteKVStore) Set(key, value string) error {
	query := `
		INSERT INTO kv_state (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`
	if _, err := d.DB.Exec(query, key, value); err != nil {
		return fmt.Errorf("failed to write key %q: %w", key, err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteKVStore) Delete(key string) error {
	if _, err := d.DB.Exec("DELETE FROM kv_state WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to delete key %q: %w", key, err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteKVStore) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
