package refresh

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"trading-dashboard/src/helpers"
	"trading-dashboard/src/interfaces"
	"trading-dashboard/src/logger"
	"trading-dashboard/src/models"
	"trading-dashboard/src/series"
)

// -----------------------------------------------------------------------------

type fakeChart struct {
	factory  *fakeFactory
	series   *models.MChartSeries
	released bool
}

func (c *fakeChart) Release() error {
	c.factory.mu.Lock()
	defer c.factory.mu.Unlock()
	if c.released {
		return errors.New("double release")
	}
	c.released = true
	c.factory.live--
	return nil
}

type fakeFactory struct {
	mu      sync.Mutex
	built   []*fakeChart
	live    int
	maxLive int
}

func (f *fakeFactory) Build(target string, spec models.MChartSpec, s *models.MChartSeries) (interfaces.IChart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := &fakeChart{factory: f, series: s}
	f.built = append(f.built, c)
	f.live++
	if f.live > f.maxLive {
		f.maxLive = f.live
	}
	return c, nil
}

func (f *fakeFactory) labels() [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]string, len(f.built))
	for i, c := range f.built {
		out[i] = c.series.Labels
	}
	return out
}

// -----------------------------------------------------------------------------

// scriptedStream replays messages, then ends with end (nil means wait for Close).
type scriptedStream struct {
	messages chan []byte
	end      error
	closed   chan struct{}
	once     sync.Once
}

func newScriptedStream(end error, messages ...string) *scriptedStream {
	s := &scriptedStream{messages: make(chan []byte, len(messages)), end: end, closed: make(chan struct{})}
	for _, m := range messages {
		s.messages <- []byte(m)
	}
	close(s.messages)
	return s
}

func (s *scriptedStream) Next() ([]byte, error) {
	if msg, ok := <-s.messages; ok {
		return msg, nil
	}
	if s.end != nil {
		return nil, s.end
	}
	<-s.closed
	return nil, &helpers.TransportError{Operation: "stream", Reason: helpers.ReasonClosed}
}

func (s *scriptedStream) Close() error {
	s.once.Do(func() { close(s.closed) })
	return nil
}

// -----------------------------------------------------------------------------

func testLogger() *logger.Logger {
	return logger.NewLoggerTo(io.Discard, "DEBUG", "refresh-test")
}

func newTestLoop(factory *fakeFactory) *Loop {
	surface := NewSurface("portfolioChart", factory)
	return NewLoop(series.PortfolioChartSpec(), models.IntervalFifteen, series.NewTransformer(time.UTC), surface, testLogger())
}

func fetchOf(body string) InitialFetch {
	return func(context.Context) ([]byte, error) { return []byte(body), nil }
}

func subscribeTo(h interfaces.IStreamHandle) Subscribe {
	return func(context.Context) (interfaces.IStreamHandle, error) { return h, nil }
}

const (
	batchA = `{"fifteen": [{"timestamp": "2025-09-01T09:00:00Z", "equity": 1}]}`
	batchB = `{"fifteen": [{"timestamp": "2025-09-01T09:00:00Z", "equity": 1}, {"timestamp": "2025-09-01T09:15:00Z", "equity": 2}]}`
	batchC = `[{"timestamp": "2025-09-01T10:00:00Z", "equity": 3}]`
)

// -----------------------------------------------------------------------------

func TestRunRedrawsByReplacement(t *testing.T) {
	factory := &fakeFactory{}
	stream := newScriptedStream(io.EOF, batchB, batchC)

	done := newTestLoop(factory).Run(context.Background(), fetchOf(batchA), subscribeTo(stream))

	if done.Reason != helpers.ReasonClosed || done.Err != nil {
		t.Fatalf("completion = %+v, want closed", done)
	}
	got := factory.labels()
	if len(got) != 3 || len(got[0]) != 1 || len(got[1]) != 2 || got[2][0] != "10:00" {
		t.Fatalf("renders = %v", got)
	}
	if factory.maxLive != 1 {
		t.Errorf("max live charts = %d, want 1", factory.maxLive)
	}
	for i, c := range factory.built[:2] {
		if !c.released {
			t.Errorf("chart %d not released before replacement", i)
		}
	}
}

func TestRunDropsInvalidStreamMessage(t *testing.T) {
	factory := &fakeFactory{}
	stream := newScriptedStream(io.EOF, `[{"timestamp": "2025-09-01T09:00:00Z"}]`, `not json`, batchC)

	done := newTestLoop(factory).Run(context.Background(), fetchOf(batchA), subscribeTo(stream))

	if done.Reason != helpers.ReasonClosed {
		t.Fatalf("completion = %+v, want closed", done)
	}
	if n := len(factory.labels()); n != 2 {
		t.Errorf("renders = %d, want 2 (initial + valid message)", n)
	}
}

func TestRunStreamErrorCompletesWithError(t *testing.T) {
	factory := &fakeFactory{}
	boom := &helpers.TransportError{Operation: "stream", Reason: helpers.ReasonError, Cause: errors.New("reset by peer")}
	stream := newScriptedStream(boom, batchB)

	done := newTestLoop(factory).Run(context.Background(), fetchOf(batchA), subscribeTo(stream))

	if done.Reason != helpers.ReasonError || !errors.Is(done.Err, boom) {
		t.Fatalf("completion = %+v, want error carrying the transport failure", done)
	}
}

func TestRunFetchFailureDoesNotSubscribe(t *testing.T) {
	factory := &fakeFactory{}
	subscribed := false
	fetchErr := &helpers.TransportError{Operation: "fetch", Reason: helpers.ReasonError, Cause: errors.New("503")}

	done := newTestLoop(factory).Run(context.Background(),
		func(context.Context) ([]byte, error) { return nil, fetchErr },
		func(context.Context) (interfaces.IStreamHandle, error) {
			subscribed = true
			return newScriptedStream(io.EOF), nil
		})

	if done.Reason != helpers.ReasonError || !helpers.IsTransport(done.Err) {
		t.Fatalf("completion = %+v", done)
	}
	if subscribed {
		t.Error("loop subscribed after a failed fetch")
	}
	if len(factory.built) != 0 {
		t.Errorf("rendered %d charts", len(factory.built))
	}
}

func TestRunInvalidInitialBatchStillSubscribes(t *testing.T) {
	factory := &fakeFactory{}
	stream := newScriptedStream(io.EOF, batchC)

	done := newTestLoop(factory).Run(context.Background(), fetchOf(`[{"equity": 1}]`), subscribeTo(stream))

	if done.Reason != helpers.ReasonClosed {
		t.Fatalf("completion = %+v", done)
	}
	if got := factory.labels(); len(got) != 1 || got[0][0] != "10:00" {
		t.Errorf("renders = %v, want only the streamed batch", got)
	}
}

func TestRunCancelClosesStream(t *testing.T) {
	factory := &fakeFactory{}
	stream := newScriptedStream(nil, batchB)
	ctx, cancel := context.WithCancel(context.Background())

	result := make(chan Completion, 1)
	go func() {
		result <- newTestLoop(factory).Run(ctx, fetchOf(batchA), subscribeTo(stream))
	}()

	cancel()
	select {
	case done := <-result:
		if done.Reason != helpers.ReasonClosed {
			t.Errorf("completion = %+v, want closed", done)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not end after cancel")
	}
}

func TestNewLoopReleasesPreviousChart(t *testing.T) {
	factory := &fakeFactory{}
	surface := NewSurface("priceChart", factory)
	transformer := series.NewTransformer(time.UTC)

	first := NewLoop(series.PortfolioChartSpec(), models.IntervalFifteen, transformer, surface, testLogger())
	first.Run(context.Background(), fetchOf(batchA), subscribeTo(newScriptedStream(io.EOF)))

	second := NewLoop(series.PortfolioChartSpec(), models.IntervalHour, transformer, surface, testLogger())
	second.Run(context.Background(), fetchOf(`{"hour": []}`), subscribeTo(newScriptedStream(io.EOF)))

	if factory.maxLive != 1 {
		t.Errorf("max live charts = %d, want 1", factory.maxLive)
	}
	if len(factory.built) != 2 || !factory.built[0].released {
		t.Errorf("first loop's chart was not released")
	}
}

func TestStaleOwnerCannotDraw(t *testing.T) {
	factory := &fakeFactory{}
	surface := NewSurface("priceChart", factory)

	old, _ := surface.Claim()
	if _, err := surface.Claim(); err != nil {
		t.Fatal(err)
	}
	err := surface.Replace(old, series.PortfolioChartSpec(), &models.MChartSeries{})
	if !errors.Is(err, ErrNotOwner) {
		t.Errorf("err = %v, want ErrNotOwner", err)
	}
}
