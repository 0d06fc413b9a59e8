package dashboard

import (
	"context"
	"fmt"
	"sync"

	"trading-dashboard/src/helpers"
	"trading-dashboard/src/interfaces"
	"trading-dashboard/src/logger"
	"trading-dashboard/src/models"
	"trading-dashboard/src/preferences"
	"trading-dashboard/src/refresh"
	"trading-dashboard/src/series"
	"trading-dashboard/src/validation"
	"trading-dashboard/src/widgets"

	"github.com/robfig/cron/v3"
)

// ChartStatus describes one chart for the control API.
type ChartStatus struct {
	Name     string
	Interval models.MInterval
	Running  bool
	Last     *refresh.Completion
}

// runner is the active loop of one chart.
type runner struct {
	interval models.MInterval
	cancel   context.CancelFunc
	done     chan struct{}
}

// -----------------------------------------------------------------------------

// Controller runs one refresh loop per chart and the widget poller. An
// interval change persists the choice, closes the chart's stream and starts
// a fresh loop on the same surface.
type Controller struct {
	Logger *logger.Logger

	fetcher     interfaces.IFetcher
	subscriber  interfaces.ISubscriber
	prefs       *preferences.IntervalStore
	transformer *series.Transformer
	board       *widgets.Board
	cron        *cron.Cron
	specs       []models.MChartSpec
	surfaces    map[string]*refresh.Surface

	// switching serializes interval changes so the stored choice and the
	// running loop always agree. Taken before mu.
	switching sync.Mutex

	mu      sync.Mutex
	ctx     context.Context
	runners map[string]*runner
	last    map[string]*refresh.Completion
}

// -----------------------------------------------------------------------------

func NewController(
	fetcher interfaces.IFetcher,
	subscriber interfaces.ISubscriber,
	prefs *preferences.IntervalStore,
	transformer *series.Transformer,
	factory interfaces.IChartFactory,
	board *widgets.Board,
	log *logger.Logger,
) *Controller {
	c := &Controller{
		Logger:      log,
		fetcher:     fetcher,
		subscriber:  subscriber,
		prefs:       prefs,
		transformer: transformer,
		board:       board,
		cron:        cron.New(),
		specs:       series.ChartSpecs(),
		surfaces:    make(map[string]*refresh.Surface),
		runners:     make(map[string]*runner),
		last:        make(map[string]*refresh.Completion),
	}
	for _, spec := range c.specs {
		c.surfaces[spec.Name] = refresh.NewSurface(spec.Name+"-chart", factory)
	}
	return c
}

// -----------------------------------------------------------------------------

// Start loads the widgets, schedules their polling and starts every chart
// at its stored interval. The loops live until ctx ends or Stop is called.
func (c *Controller) Start(ctx context.Context, pollSchedule string) error {
	if c.board != nil {
		if _, err := c.cron.AddFunc(pollSchedule, func() { c.pollWidgets(ctx) }); err != nil {
			return fmt.Errorf("register widget poll %q: %w", pollSchedule, err)
		}
		if err := c.board.RefreshAll(ctx); err != nil {
			c.Logger.Warning("Initial widget load incomplete: %v", err)
		}
		c.cron.Start()
	}

	c.switching.Lock()
	defer c.switching.Unlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.ctx = ctx
	for _, spec := range c.specs {
		c.startLocked(spec, c.prefs.Current(spec.PreferenceKey))
	}
	return nil
}

// -----------------------------------------------------------------------------

// pollWidgets refreshes the account and positions widgets. Settings only
// change with a backend restart and are loaded once.
func (c *Controller) pollWidgets(ctx context.Context) {
	for _, name := range []string{widgets.Account, widgets.Positions} {
		_ = c.board.Refresh(ctx, name)
	}
}

// -----------------------------------------------------------------------------

// SetInterval persists interval for chart and restarts its loop.
func (c *Controller) SetInterval(chart string, interval models.MInterval) error {
	spec, ok := series.ChartSpecByName(chart)
	if !ok {
		return &helpers.ValidationError{Index: -1, Field: "chart", Reason: fmt.Sprintf("unknown chart %q", chart)}
	}
	if _, err := validation.ValidateInterval(string(interval)); err != nil {
		return err
	}

	c.switching.Lock()
	defer c.switching.Unlock()

	if err := c.prefs.Select(spec.PreferenceKey, interval); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ctx == nil {
		return nil // picked up by Start
	}
	c.stopLocked(chart)
	c.startLocked(spec, interval)
	c.Logger.Info("Chart %s switched to %s", chart, interval)
	return nil
}

// -----------------------------------------------------------------------------

// Interval returns the chart's persisted interval.
func (c *Controller) Interval(chart string) (models.MInterval, error) {
	spec, ok := series.ChartSpecByName(chart)
	if !ok {
		return "", &helpers.ValidationError{Index: -1, Field: "chart", Reason: fmt.Sprintf("unknown chart %q", chart)}
	}
	return c.prefs.Current(spec.PreferenceKey), nil
}

// -----------------------------------------------------------------------------

// Charts reports every chart with its interval and loop state.
func (c *Controller) Charts() []ChartStatus {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]ChartStatus, 0, len(c.specs))
	for _, spec := range c.specs {
		st := ChartStatus{Name: spec.Name, Interval: c.prefs.Current(spec.PreferenceKey), Last: c.last[spec.Name]}
		if r, ok := c.runners[spec.Name]; ok {
			select {
			case <-r.done:
			default:
				st.Running = true
			}
			st.Interval = r.interval
		}
		out = append(out, st)
	}
	return out
}

// -----------------------------------------------------------------------------

// Stop ends every loop, the poller, and releases the charts.
func (c *Controller) Stop() {
	<-c.cron.Stop().Done()

	c.switching.Lock()
	defer c.switching.Unlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	names := make([]string, 0, len(c.runners))
	for name := range c.runners {
		names = append(names, name)
	}
	for _, name := range names {
		c.stopLocked(name)
	}
	for name, s := range c.surfaces {
		if err := s.Release(); err != nil {
			c.Logger.Warning("Releasing %s: %v", name, err)
		}
	}
	c.ctx = nil
}

// -----------------------------------------------------------------------------

func (c *Controller) startLocked(spec models.MChartSpec, interval models.MInterval) {
	ctx, cancel := context.WithCancel(c.ctx)
	r := &runner{interval: interval, cancel: cancel, done: make(chan struct{})}
	c.runners[spec.Name] = r

	loop := refresh.NewLoop(spec, interval, c.transformer, c.surfaces[spec.Name], c.Logger.Named("Loop-"+spec.Name))
	fetch := func(ctx context.Context) ([]byte, error) { return c.fetcher.Get(ctx, spec.FetchPath) }
	subscribe := func(ctx context.Context) (interfaces.IStreamHandle, error) {
		return c.subscriber.Subscribe(ctx, spec.StreamPath)
	}

	go func() {
		defer close(r.done)
		done := loop.Run(ctx, fetch, subscribe)

		c.mu.Lock()
		c.last[spec.Name] = &done
		c.mu.Unlock()
	}()
}

// stopLocked cancels the chart's loop and waits for it. The loop's own
// bookkeeping takes c.mu, so the wait happens with the lock released.
func (c *Controller) stopLocked(chart string) {
	r, ok := c.runners[chart]
	if !ok {
		return
	}
	delete(c.runners, chart)
	r.cancel()

	c.mu.Unlock()
	<-r.done
	c.mu.Lock()
}
