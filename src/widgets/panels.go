package widgets

import (
	"fmt"
	"strconv"
	"strings"

	"trading-dashboard/src/analysis/core"
	"trading-dashboard/src/models"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// ErrorText replaces a widget's body when its data cannot be loaded.
const ErrorText = "Error loading data"

var (
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1)
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	gainStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	lossStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	errorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
)

// -----------------------------------------------------------------------------

func panel(title, body string) string {
	return panelStyle.Render(titleStyle.Render(title) + "\n" + body)
}

// ErrorPanel is what a failed widget shows.
func ErrorPanel(title string) string {
	return panel(title, errorStyle.Render(ErrorText))
}

func rows(pairs [][2]string) string {
	width := 0
	for _, p := range pairs {
		if len(p[0]) > width {
			width = len(p[0])
		}
	}
	lines := make([]string, 0, len(pairs))
	for _, p := range pairs {
		lines = append(lines, labelStyle.Render(fmt.Sprintf("%-*s", width, p[0]))+"  "+valueStyle.Render(p[1]))
	}
	return strings.Join(lines, "\n")
}

// -----------------------------------------------------------------------------

// Money formats v as dollars with thousands separators.
func Money(v float64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	whole := strconv.FormatFloat(v, 'f', 2, 64)
	intPart, frac := whole[:len(whole)-3], whole[len(whole)-3:]

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + "$" + b.String() + frac
}

// -----------------------------------------------------------------------------

func RenderAccount(a models.MAccountInfo) string {
	return panel("Account", rows([][2]string{
		{"Portfolio value", Money(a.PortfolioValue)},
		{"Cash", Money(a.Cash)},
		{"Buying power", Money(a.BuyingPower)},
		{"Long market value", Money(a.LongMarketValue)},
		{"Short market value", Money(a.ShortMarketValue)},
	}))
}

// -----------------------------------------------------------------------------

func RenderPositions(positions []models.MPosition) string {
	if len(positions) == 0 {
		return panel("Positions", labelStyle.Render("No open positions"))
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(labelStyle).
		Headers("Symbol", "Qty", "Market value", "Cost", "Unrealized P/L").
		StyleFunc(func(row, col int) lipgloss.Style {
			return lipgloss.NewStyle().Padding(0, 1)
		})

	for _, p := range positions {
		change := core.CalculateChangePercent(p.MarketValue, p.OriginalCost)
		pl := fmt.Sprintf("%s (%+.2f%%)", Money(p.UnrealizedProfitLoss), change*100)
		if p.UnrealizedProfitLoss < 0 {
			pl = lossStyle.Render(pl)
		} else {
			pl = gainStyle.Render(pl)
		}
		t.Row(
			p.Symbol,
			strconv.FormatFloat(p.Quantity, 'f', -1, 64),
			Money(p.MarketValue),
			Money(p.OriginalCost),
			pl,
		)
	}
	return panel("Positions", t.Render())
}

// -----------------------------------------------------------------------------

func RenderSettings(s models.MSettings) string {
	advisor := "enabled"
	if s.DisabledGrok {
		advisor = "disabled"
	}
	mode := "live"
	if s.Paper {
		mode = "paper"
	}
	return panel("Settings", rows([][2]string{
		{"Model", s.Model},
		{"Advisor", advisor},
		{"Interval", fmt.Sprintf("%d min", s.Interval)},
		{"Trading", mode},
	}))
}
