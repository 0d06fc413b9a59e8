package preferences

import (
	"errors"
	"io"
	"testing"

	"trading-dashboard/src/logger"
	"trading-dashboard/src/models"
	"trading-dashboard/src/storage"
)

type brokenStore struct{}

func (brokenStore) Get(string) (string, bool, error) { return "", false, errors.New("disk gone") }
func (brokenStore) Set(string, string) error         { return errors.New("disk gone") }

func quietLogger() *logger.Logger {
	return logger.NewLoggerTo(io.Discard, "ERROR", "preferences-test")
}

func TestCurrentDefaultsToFifteen(t *testing.T) {
	s := NewIntervalStore(storage.NewMemoryDB(0), quietLogger())
	if got := s.Current("priceInterval"); got != models.IntervalFifteen {
		t.Errorf("Current = %s, want fifteen", got)
	}
}

func TestSelectPersists(t *testing.T) {
	kv := storage.NewMemoryDB(0)
	s := NewIntervalStore(kv, quietLogger())

	if err := s.Select("portfolioInterval", models.IntervalHour); err != nil {
		t.Fatal(err)
	}
	if got := s.Current("portfolioInterval"); got != models.IntervalHour {
		t.Errorf("Current = %s, want hour", got)
	}
	if got := s.Current("priceInterval"); got != models.IntervalFifteen {
		t.Errorf("other key = %s, want fifteen", got)
	}
	if raw, _, _ := kv.Get("portfolioInterval"); raw != "hour" {
		t.Errorf("stored %q", raw)
	}
}

func TestSelectRejectsUnknownInterval(t *testing.T) {
	s := NewIntervalStore(storage.NewMemoryDB(0), quietLogger())
	if err := s.Select("priceInterval", models.MInterval("week")); err == nil {
		t.Error("expected an error for an unknown interval")
	}
}

func TestCurrentFallsBack(t *testing.T) {
	kv := storage.NewMemoryDB(0)
	_ = kv.Set("priceInterval", "fortnight")
	if got := NewIntervalStore(kv, quietLogger()).Current("priceInterval"); got != models.DefaultInterval {
		t.Errorf("garbage value: Current = %s", got)
	}
	if got := NewIntervalStore(brokenStore{}, quietLogger()).Current("priceInterval"); got != models.DefaultInterval {
		t.Errorf("broken store: Current = %s", got)
	}
}
