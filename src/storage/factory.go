package storage

import (
	"fmt"

	"trading-dashboard/src/helpers"
	"trading-dashboard/src/interfaces"
	"trading-dashboard/src/logger"
	"trading-dashboard/src/models"
)

// NewDatabase opens and initializes the backend selected by storage.db_type.
func NewDatabase(cfg *models.MConfig, log *logger.Logger) (interfaces.IDatabase, error) {
	var db interfaces.IDatabase
	var err error

	switch cfg.Storage.DBType {
	case "postgres":
		db, err = NewPostgresDB(cfg, log.Named("PostgresDB"))
	case "memory":
		db = NewMemoryDB(cfg.Storage.RetentionDays)
	default:
		db, err = NewSQLiteDB(cfg, log.Named("SQLiteDB"))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to init db: %w", err)
	}

	if err := db.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to migrate db: %w", err)
	}
	return db, nil
}

// preferenceError marks a failed key/value access as a storage failure.
func preferenceError(op, key string, err error) error {
	return &helpers.StorageError{DashboardError: helpers.DashboardError{
		Message: fmt.Sprintf("%s preference %q", op, key),
		Cause:   err,
	}}
}
