package storage

import (
	"sort"
	"sync"
	"time"

	"trading-dashboard/src/models"
)

// MemoryDB keeps everything in process. Used for db_type "memory" and tests.
type MemoryDB struct {
	mu            sync.RWMutex
	bars          map[string]map[int64]models.MPriceBar
	values        map[string]string
	retentionDays int
}

func NewMemoryDB(retentionDays int) *MemoryDB {
	return &MemoryDB{
		bars:          make(map[string]map[int64]models.MPriceBar),
		values:        make(map[string]string),
		retentionDays: retentionDays,
	}
}

func (m *MemoryDB) Initialize() error { return nil }

func (m *MemoryDB) SaveBarsBulk(bars []models.MPriceBar) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range bars {
		bySymbol, ok := m.bars[b.Symbol]
		if !ok {
			bySymbol = make(map[int64]models.MPriceBar)
			m.bars[b.Symbol] = bySymbol
		}
		ts := b.Timestamp.UTC().Unix()
		if _, dup := bySymbol[ts]; !dup {
			bySymbol[ts] = b
		}
	}
	return nil
}

func (m *MemoryDB) LoadBars(symbol string, since time.Time) ([]models.MPriceBar, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.MPriceBar
	for ts, b := range m.bars[symbol] {
		if ts >= since.UTC().Unix() {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

func (m *MemoryDB) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemoryDB) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemoryDB) CleanupOldData() error {
	if m.retentionDays <= 0 {
		return nil
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -m.retentionDays).Unix()
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, bySymbol := range m.bars {
		for ts := range bySymbol {
			if ts < cutoff {
				delete(bySymbol, ts)
			}
		}
	}
	return nil
}

func (m *MemoryDB) Close() error { return nil }
