package widgets

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"trading-dashboard/src/logger"
	"trading-dashboard/src/metrics"
	"trading-dashboard/src/models"

	"github.com/charmbracelet/lipgloss"
)

// JSONGetter fetches path and decodes the JSON body into out.
type JSONGetter interface {
	GetJSON(ctx context.Context, path string, out interface{}) error
}

// Widget names, in display order.
const (
	Account   = "account"
	Positions = "positions"
	Settings  = "settings"
)

var order = []string{Account, Positions, Settings}

// -----------------------------------------------------------------------------

// Board holds the last rendering of every widget and refreshes them from
// the backend.
type Board struct {
	getter JSONGetter
	output string
	Logger *logger.Logger

	mu    sync.RWMutex
	views map[string]string
}

// NewBoard returns a board. When outputPath is not empty every refresh also
// rewrites that file with the full board.
func NewBoard(getter JSONGetter, outputPath string, log *logger.Logger) *Board {
	return &Board{
		getter: getter,
		output: outputPath,
		Logger: log,
		views:  make(map[string]string),
	}
}

// -----------------------------------------------------------------------------

// Refresh reloads one widget. A failed fetch leaves the widget showing
// ErrorText; the error is returned for logging only.
func (b *Board) Refresh(ctx context.Context, name string) error {
	view, err := b.load(ctx, name)
	if err != nil {
		metrics.WidgetFailures.WithLabelValues(name).Inc()
		b.Logger.Warning("Widget %s: %v", name, err)
		view = ErrorPanel(title(name))
	}

	b.mu.Lock()
	b.views[name] = view
	b.mu.Unlock()
	b.flush()
	return err
}

// RefreshAll reloads every widget and returns the first error seen.
func (b *Board) RefreshAll(ctx context.Context) error {
	var first error
	for _, name := range order {
		if err := b.Refresh(ctx, name); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// -----------------------------------------------------------------------------

func (b *Board) load(ctx context.Context, name string) (string, error) {
	switch name {
	case Account:
		var a models.MAccountInfo
		if err := b.getter.GetJSON(ctx, "/account", &a); err != nil {
			return "", err
		}
		return RenderAccount(a), nil
	case Positions:
		var p []models.MPosition
		if err := b.getter.GetJSON(ctx, "/positions", &p); err != nil {
			return "", err
		}
		return RenderPositions(p), nil
	case Settings:
		var s models.MSettings
		if err := b.getter.GetJSON(ctx, "/settings", &s); err != nil {
			return "", err
		}
		return RenderSettings(s), nil
	}
	return "", fmt.Errorf("unknown widget %q", name)
}

// -----------------------------------------------------------------------------

// View returns one widget's last rendering, empty before its first refresh.
func (b *Board) View(name string) string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.views[name]
}

// Render lays every loaded widget out side by side.
func (b *Board) Render() string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var parts []string
	for _, name := range order {
		if v, ok := b.views[name]; ok {
			parts = append(parts, v)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

// -----------------------------------------------------------------------------

func (b *Board) flush() {
	if b.output == "" {
		return
	}
	if err := os.MkdirAll(filepath.Dir(b.output), 0o755); err != nil {
		b.Logger.Error("Widget output dir: %v", err)
		return
	}
	if err := os.WriteFile(b.output, []byte(b.Render()+"\n"), 0o644); err != nil {
		b.Logger.Error("Writing %s: %v", b.output, err)
	}
}

func title(name string) string {
	switch name {
	case Account:
		return "Account"
	case Positions:
		return "Positions"
	case Settings:
		return "Settings"
	}
	return name
}
