package refresh

import (
	"context"
	"errors"
	"io"

	"trading-dashboard/src/helpers"
	"trading-dashboard/src/interfaces"
	"trading-dashboard/src/logger"
	"trading-dashboard/src/metrics"
	"trading-dashboard/src/models"
	"trading-dashboard/src/series"
)

// InitialFetch returns the first raw batch of a chart.
type InitialFetch func(ctx context.Context) ([]byte, error)

// Subscribe opens the live update stream of a chart.
type Subscribe func(ctx context.Context) (interfaces.IStreamHandle, error)

// Completion tells why a loop ended. Err is nil for a normal close.
type Completion struct {
	Reason helpers.TransportReason
	Err    error
}

// -----------------------------------------------------------------------------

// Loop drives one chart for one interval: fetch once, draw, then redraw on
// every streamed batch until the stream ends.
type Loop struct {
	spec        models.MChartSpec
	interval    models.MInterval
	transformer *series.Transformer
	surface     *Surface
	log         *logger.Logger
}

func NewLoop(spec models.MChartSpec, interval models.MInterval, transformer *series.Transformer, surface *Surface, log *logger.Logger) *Loop {
	return &Loop{
		spec:        spec,
		interval:    interval,
		transformer: transformer,
		surface:     surface,
		log:         log,
	}
}

// -----------------------------------------------------------------------------

// Run blocks until the subscription ends. Cancelling ctx closes the stream,
// which completes the loop with the closed reason.
//
// A batch that fails validation is logged and skipped, whether it came from
// the initial fetch or the stream. A failed initial fetch completes the loop
// with the error reason without subscribing.
func (l *Loop) Run(ctx context.Context, fetch InitialFetch, subscribe Subscribe) Completion {
	owner, err := l.surface.Claim()
	if err != nil {
		l.log.Warning("%s: releasing previous chart: %v", l.spec.Name, err)
	}

	payload, err := fetch(ctx)
	if err != nil {
		return l.complete(helpers.ReasonError, err)
	}
	l.draw(owner, payload, "initial fetch")

	handle, err := subscribe(ctx)
	if err != nil {
		return l.complete(helpers.ReasonError, err)
	}
	stop := context.AfterFunc(ctx, func() { _ = handle.Close() })
	defer stop()
	defer handle.Close()

	for {
		msg, err := handle.Next()
		if err != nil {
			reason, cause := classify(err)
			return l.complete(reason, cause)
		}
		l.draw(owner, msg, "stream")
	}
}

// -----------------------------------------------------------------------------

func (l *Loop) draw(owner uint64, payload []byte, source string) {
	normalized, err := l.transformer.Normalize(payload, l.interval, l.spec)
	if err != nil {
		metrics.DroppedMessages.WithLabelValues(l.spec.Name).Inc()
		l.log.Warning("%s/%s: dropping %s batch: %v", l.spec.Name, l.interval, source, err)
		return
	}

	if err := l.surface.Replace(owner, l.spec, normalized); err != nil {
		l.log.Error("%s/%s: redraw failed: %v", l.spec.Name, l.interval, err)
		return
	}
	l.log.Debug("%s/%s: drew %d points from %s", l.spec.Name, l.interval, normalized.Len(), source)
}

// -----------------------------------------------------------------------------

func (l *Loop) complete(reason helpers.TransportReason, err error) Completion {
	metrics.LoopCompletions.WithLabelValues(l.spec.Name, string(reason)).Inc()
	if reason == helpers.ReasonError {
		l.log.Error("%s/%s: refresh loop ended: %v", l.spec.Name, l.interval, err)
	} else {
		l.log.Info("%s/%s: refresh loop closed", l.spec.Name, l.interval)
	}
	return Completion{Reason: reason, Err: err}
}

func classify(err error) (helpers.TransportReason, error) {
	var te *helpers.TransportError
	switch {
	case errors.As(err, &te) && te.Reason == helpers.ReasonClosed:
		return helpers.ReasonClosed, nil
	case errors.Is(err, io.EOF):
		return helpers.ReasonClosed, nil
	default:
		return helpers.ReasonError, err
	}
}
