package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"dashboard-sync/src/logger"
	"dashboard-sync/src/models"

	_ "github.com/lib/pq"
)

// -----------------------------------------------------------------------------
// Postgres-backed key-value store. Same contract as the SQLite store; used
// when several dashboard instances share one database. Each binary gets its
// own schema, named after the executable.
// -----------------------------------------------------------------------------

type PostgresKVStore struct {
	Config *models.MConfig
	DB     *sql.DB
	Schema string
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewPostgresKVStore(cfg *models.MConfig, log *logger.Logger) (*PostgresKVStore, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable name: %w", err)
	}
	name := filepath.Base(exe)
	name = strings.TrimSuffix(name, filepath.Ext(name))

	return &PostgresKVStore{
		Config: cfg,
		Schema: name,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *PostgresKVStore) Initialize() error {
	dsn := d.Config.Storage.DBConnectionString
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return err
	}

	if err := db.Ping(); err != nil {
		return err
	}

	d.DB = db

	if _, err := d.DB.Exec(fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS "%s"`, d.Schema)); err != nil {
		return fmt.Errorf("failed to create schema %s: %w", d.Schema, err)
	}

	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS "%s"."kv_state" (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`, d.Schema)
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create kv_state: %w", err)
	}

	d.Logger.Info("PostgresKVStore initialized successfully (Schema: %s)", d.Schema)
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresKVStore) Get(key string) (string, bool, error) {
	var value string
	query := fmt.Sprintf(`SELECT value FROM "%s"."kv_state" WHERE key = $1`, d.Schema)
	err := d.DB.QueryRow(query, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read key %q: %w", key, err)
	}
	return value, true, nil
}

// -----------------------------------------------------------------------------

func (d *PostgresKVStore) Set(key, value string) error {
	query := fmt.Sprintf(`
		INSERT INTO "%s"."kv_state" (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, d.Schema)
	if _, err := d.DB.Exec(query, key, value); err != nil {
		return fmt.Errorf("failed to write key %q: %w", key, err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresKVStore) Delete(key string) error {
	query := fmt.Sprintf(`DELETE FROM "%s"."kv_state" WHERE key = $1`, d.Schema)
	if _, err := d.DB.Exec(query, key); err != nil {
		return fmt.Errorf("failed to delete key %q: %w", key, err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresKVStore) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
