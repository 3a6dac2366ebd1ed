package storage

import (
	"fmt"

	"dashboard-sync/src/interfaces"
	"dashboard-sync/src/logger"
	"dashboard-sync/src/models"
)

// -----------------------------------------------------------------------------

// NewKeyValueStore selects the store backend from the config.
func NewKeyValueStore(cfg *models.MConfig, log *logger.Logger) (interfaces.IKeyValueStore, error) {
	switch cfg.Storage.DBType {
	case "sqlite":
		return NewSQLiteKVStore(cfg, log)
	case "postgres":
		return NewPostgresKVStore(cfg, log)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", cfg.Storage.DBType)
	}
}
