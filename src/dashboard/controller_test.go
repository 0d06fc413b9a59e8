package dashboard

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"trading-dashboard/src/helpers"
	"trading-dashboard/src/interfaces"
	"trading-dashboard/src/logger"
	"trading-dashboard/src/models"
	"trading-dashboard/src/preferences"
	"trading-dashboard/src/series"
	"trading-dashboard/src/storage"
)

// -----------------------------------------------------------------------------

type nopChart struct{}

func (nopChart) Release() error { return nil }

type nopFactory struct{}

func (nopFactory) Build(string, models.MChartSpec, *models.MChartSeries) (interfaces.IChart, error) {
	return nopChart{}, nil
}

type staticFetcher struct{}

func (staticFetcher) Get(context.Context, string) ([]byte, error) {
	return []byte(`{"one":[],"fifteen":[],"hour":[],"day":[]}`), nil
}

// idleHandle delivers nothing until closed.
type idleHandle struct {
	closed chan struct{}
	once   sync.Once
}

func (h *idleHandle) Next() ([]byte, error) {
	<-h.closed
	return nil, &helpers.TransportError{Operation: "read", Reason: helpers.ReasonClosed}
}

func (h *idleHandle) Close() error {
	h.once.Do(func() { close(h.closed) })
	return nil
}

type recordingSubscriber struct {
	mu      sync.Mutex
	handles map[string][]*idleHandle
	opened  chan string
}

func newRecordingSubscriber() *recordingSubscriber {
	return &recordingSubscriber{handles: make(map[string][]*idleHandle), opened: make(chan string, 16)}
}

func (s *recordingSubscriber) Subscribe(_ context.Context, path string) (interfaces.IStreamHandle, error) {
	h := &idleHandle{closed: make(chan struct{})}
	s.mu.Lock()
	s.handles[path] = append(s.handles[path], h)
	s.mu.Unlock()
	select {
	case s.opened <- path:
	default:
	}
	return h, nil
}

func (s *recordingSubscriber) waitOpened(t *testing.T, n int) []string {
	t.Helper()
	var paths []string
	for len(paths) < n {
		select {
		case p := <-s.opened:
			paths = append(paths, p)
		case <-time.After(2 * time.Second):
			t.Fatalf("only %d of %d subscriptions opened", len(paths), n)
		}
	}
	return paths
}

func (s *recordingSubscriber) isClosed(path string, i int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	select {
	case <-s.handles[path][i].closed:
		return true
	default:
		return false
	}
}

// -----------------------------------------------------------------------------

func newTestController(kv interfaces.IKeyValueStore, sub *recordingSubscriber) *Controller {
	log := logger.NewLoggerTo(io.Discard, "ERROR", "dashboard-test")
	return NewController(
		staticFetcher{},
		sub,
		preferences.NewIntervalStore(kv, log),
		series.NewTransformer(time.UTC),
		nopFactory{},
		nil,
		log,
	)
}

func TestStartUsesStoredIntervals(t *testing.T) {
	kv := storage.NewMemoryDB(0)
	_ = kv.Set(series.PortfolioIntervalKey, "day")
	sub := newRecordingSubscriber()
	c := newTestController(kv, sub)

	if err := c.Start(context.Background(), "@every 1h"); err != nil {
		t.Fatal(err)
	}
	defer c.Stop()
	sub.waitOpened(t, 2)

	want := map[string]models.MInterval{"price": models.IntervalFifteen, "portfolio": models.IntervalDay}
	for _, st := range c.Charts() {
		if st.Interval != want[st.Name] {
			t.Errorf("%s interval = %s, want %s", st.Name, st.Interval, want[st.Name])
		}
		if !st.Running {
			t.Errorf("%s not running", st.Name)
		}
	}
}

func TestSetIntervalRestartsOnlyThatChart(t *testing.T) {
	kv := storage.NewMemoryDB(0)
	sub := newRecordingSubscriber()
	c := newTestController(kv, sub)

	if err := c.Start(context.Background(), "@every 1h"); err != nil {
		t.Fatal(err)
	}
	defer c.Stop()
	sub.waitOpened(t, 2)

	if err := c.SetInterval("price", models.IntervalHour); err != nil {
		t.Fatal(err)
	}
	if got := sub.waitOpened(t, 1); got[0] != "/ws/prices" {
		t.Errorf("resubscribed %s", got[0])
	}
	if !sub.isClosed("/ws/prices", 0) {
		t.Error("previous price stream still open")
	}
	if sub.isClosed("/ws/portfolio", 0) {
		t.Error("portfolio stream was closed")
	}
	if raw, _, _ := kv.Get(series.PriceIntervalKey); raw != "hour" {
		t.Errorf("stored %q, want hour", raw)
	}
	if iv, _ := c.Interval("price"); iv != models.IntervalHour {
		t.Errorf("Interval = %s", iv)
	}

	for _, st := range c.Charts() {
		if st.Name == "price" && st.Last == nil {
			t.Error("replaced loop has no completion")
		}
		if st.Name == "price" && st.Last != nil && st.Last.Reason != helpers.ReasonClosed {
			t.Errorf("replaced loop ended with %s", st.Last.Reason)
		}
	}
}

func TestSetIntervalValidates(t *testing.T) {
	c := newTestController(storage.NewMemoryDB(0), newRecordingSubscriber())

	if err := c.SetInterval("volume", models.IntervalHour); !helpers.IsValidation(err) {
		t.Errorf("unknown chart: %v", err)
	}
	if err := c.SetInterval("price", models.MInterval("week")); !helpers.IsValidation(err) {
		t.Errorf("unknown interval: %v", err)
	}
	if _, err := c.Interval("volume"); err == nil {
		t.Error("Interval accepted an unknown chart")
	}
}

func TestConcurrentSwitchesKeepStoreAndLoopInStep(t *testing.T) {
	sub := newRecordingSubscriber()
	c := newTestController(storage.NewMemoryDB(0), sub)

	if err := c.Start(context.Background(), "@every 1h"); err != nil {
		t.Fatal(err)
	}
	defer c.Stop()
	sub.waitOpened(t, 2)

	choices := []models.MInterval{models.IntervalHour, models.IntervalDay, models.IntervalOne}
	for round := 0; round < 50; round++ {
		var wg sync.WaitGroup
		for _, iv := range choices {
			wg.Add(1)
			go func(iv models.MInterval) {
				defer wg.Done()
				if err := c.SetInterval("price", iv); err != nil {
					t.Errorf("SetInterval(%s): %v", iv, err)
				}
			}(iv)
		}
		wg.Wait()

		stored, _ := c.Interval("price")
		for _, st := range c.Charts() {
			if st.Name != "price" {
				continue
			}
			if st.Interval != stored || !st.Running {
				t.Fatalf("round %d: stored=%s running=%s (%v)", round, stored, st.Interval, st.Running)
			}
		}
	}
}

func TestSetIntervalBeforeStartOnlyPersists(t *testing.T) {
	kv := storage.NewMemoryDB(0)
	sub := newRecordingSubscriber()
	c := newTestController(kv, sub)

	if err := c.SetInterval("portfolio", models.IntervalOne); err != nil {
		t.Fatal(err)
	}
	select {
	case p := <-sub.opened:
		t.Fatalf("subscribed to %s before Start", p)
	default:
	}
	if iv, _ := c.Interval("portfolio"); iv != models.IntervalOne {
		t.Errorf("Interval = %s", iv)
	}
}

func TestStopClosesStreams(t *testing.T) {
	sub := newRecordingSubscriber()
	c := newTestController(storage.NewMemoryDB(0), sub)

	if err := c.Start(context.Background(), "@every 1h"); err != nil {
		t.Fatal(err)
	}
	sub.waitOpened(t, 2)
	c.Stop()

	if !sub.isClosed("/ws/prices", 0) || !sub.isClosed("/ws/portfolio", 0) {
		t.Error("streams left open after Stop")
	}
	for _, st := range c.Charts() {
		if st.Running {
			t.Errorf("%s still running", st.Name)
		}
	}
}
