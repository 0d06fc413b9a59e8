package refresh

import (
	"errors"
	"fmt"
	"sync"

	"trading-dashboard/src/interfaces"
	"trading-dashboard/src/metrics"
	"trading-dashboard/src/models"
)

// ErrNotOwner is returned when a loop that lost its claim tries to draw.
var ErrNotOwner = errors.New("surface claimed by another loop")

// -----------------------------------------------------------------------------

// Surface is one drawing target. At most one chart is live on it, and only
// the loop holding the latest claim may replace that chart.
type Surface struct {
	target  string
	factory interfaces.IChartFactory

	mu      sync.Mutex
	current interfaces.IChart
	owner   uint64
}

func NewSurface(target string, factory interfaces.IChartFactory) *Surface {
	return &Surface{target: target, factory: factory}
}

func (s *Surface) Target() string {
	return s.target
}

// -----------------------------------------------------------------------------

// Claim hands the surface to a new owner. The chart drawn by the previous
// owner is released first.
func (s *Surface) Claim() (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.releaseLocked()
	s.owner++
	return s.owner, err
}

// -----------------------------------------------------------------------------

// Replace releases the live chart and builds a new one from series.
func (s *Surface) Replace(owner uint64, spec models.MChartSpec, series *models.MChartSeries) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if owner != s.owner {
		return ErrNotOwner
	}
	if err := s.releaseLocked(); err != nil {
		return err
	}

	chart, err := s.factory.Build(s.target, spec, series)
	if err != nil {
		return fmt.Errorf("build %s chart on %s: %w", spec.Name, s.target, err)
	}
	s.current = chart
	metrics.Redraws.WithLabelValues(spec.Name).Inc()
	return nil
}

// -----------------------------------------------------------------------------

// Release frees the live chart, if any.
func (s *Surface) Release() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.releaseLocked()
}

func (s *Surface) releaseLocked() error {
	if s.current == nil {
		return nil
	}
	err := s.current.Release()
	s.current = nil
	if err != nil {
		return fmt.Errorf("release chart on %s: %w", s.target, err)
	}
	return nil
}
