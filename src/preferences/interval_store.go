package preferences

import (
	"fmt"

	"trading-dashboard/src/interfaces"
	"trading-dashboard/src/logger"
	"trading-dashboard/src/models"
)

// IntervalStore persists each chart's interval selection in a key/value
// store, one key per chart.
type IntervalStore struct {
	store interfaces.IKeyValueStore
	log   *logger.Logger
}

func NewIntervalStore(store interfaces.IKeyValueStore, log *logger.Logger) *IntervalStore {
	return &IntervalStore{store: store, log: log}
}

// Current returns the stored interval for key. A missing, unreadable or
// unknown value yields the default.
func (s *IntervalStore) Current(key string) models.MInterval {
	raw, ok, err := s.store.Get(key)
	if err != nil {
		s.log.Warning("reading %s: %v", key, err)
		return models.DefaultInterval
	}
	if !ok {
		return models.DefaultInterval
	}
	iv, err := models.ParseInterval(raw)
	if err != nil {
		s.log.Warning("ignoring stored %s: %v", key, err)
		return models.DefaultInterval
	}
	return iv
}

// Select persists interval under key.
func (s *IntervalStore) Select(key string, interval models.MInterval) error {
	if _, err := models.ParseInterval(string(interval)); err != nil {
		return err
	}
	if err := s.store.Set(key, string(interval)); err != nil {
		return fmt.Errorf("saving %s: %w", key, err)
	}
	return nil
}
