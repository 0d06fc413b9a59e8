package interfaces

import (
	"time"

	"trading-dashboard/src/models"
)

// -----------------------------------------------------------------------------
// IDatabase defines the contract for storage operations.
// -----------------------------------------------------------------------------

type IDatabase interface {
	IKeyValueStore

	// -----------------------------------------------------------------------------

	// Initialize sets up the database schema and tables.
	Initialize() error

	// -----------------------------------------------------------------------------

	// SaveBarsBulk inserts a batch of raw bars, ignoring duplicates.
	SaveBarsBulk(bars []models.MPriceBar) error

	// -----------------------------------------------------------------------------

	// LoadBars returns the bars of symbol at or after since, oldest first.
	LoadBars(symbol string, since time.Time) ([]models.MPriceBar, error)

	// -----------------------------------------------------------------------------

	// CleanupOldData removes data older than the retention policy.
	CleanupOldData() error

	// -----------------------------------------------------------------------------

	// Close the database connection
	Close() error
}

// -----------------------------------------------------------------------------
// IKeyValueStore is a persistent string store (user preferences).
// -----------------------------------------------------------------------------

type IKeyValueStore interface {
	// Get returns ok=false when key has never been set.
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
}
