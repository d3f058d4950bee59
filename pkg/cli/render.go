package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"balance_insight/pkg/core/ratio"
)

// Theme colors
var (
	ColorBorder    = lipgloss.Color("#282726")
	ColorTextDim   = lipgloss.Color("#575653")
	ColorTextMuted = lipgloss.Color("#6F6E69")
	ColorText      = lipgloss.Color("#FFFCF0")
	ColorAccent    = lipgloss.Color("#3AA99F")
	ColorGreen     = lipgloss.Color("#879A39")
	ColorRed       = lipgloss.Color("#D14D41")
	ColorOrange    = lipgloss.Color("#DA702C")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText).
			Align(lipgloss.Center)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().
			Foreground(ColorText).
			Padding(0, 1)

	mutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	upStyle   = cellStyle.Foreground(ColorGreen)
	downStyle = cellStyle.Foreground(ColorRed)
	warnStyle = lipgloss.NewStyle().Foreground(ColorOrange)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 2).
			Width(26)
)

// RenderTitle renders a centered title bar in a bordered box.
func RenderTitle(title string) string {
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Width(60).
		Align(lipgloss.Center).
		Padding(0, 1)
	return border.Render(titleStyle.Render(title))
}

// RenderTable renders the enriched table. Growth is coloured by sign.
func RenderTable(t ratio.Table) string {
	rows := make([][]string, len(t))
	for i, r := range t {
		rows[i] = []string{
			r.Label,
			FormatAmount(r.Prior),
			FormatAmount(r.Current),
			FormatPercent(r.GrowthPercent),
			FormatPercent(r.PriorSharePercent),
			FormatPercent(r.CurrentSharePercent),
		}
	}

	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(ColorTextDim)).
		Headers("Line item", "Prior year", "Current year", "Growth", "Prior share", "Current share").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			style := cellStyle
			if col == 3 && row >= 0 && row < len(t) {
				switch g := t[row].GrowthPercent; {
				case g > 0:
					style = upStyle
				case g < 0:
					style = downStyle
				}
			}
			if col > 0 {
				style = style.Align(lipgloss.Right)
			}
			return style
		})
	return tbl.String()
}

// RenderKPIs renders the headline cards side by side.
func RenderKPIs(k ratio.KPISet) string {
	health := upStyle.Render("good")
	if !k.Healthy() {
		health = warnStyle.Render("needs improvement")
	}
	cards := []string{
		card("Total assets", FormatAmount(k.TotalAssetsCurrent), FormatPercent(k.TotalAssetsGrowth)+" vs prior"),
		card("Short-term assets growth", FormatKPI(k.ShortTermGrowth, true), ""),
		card("Current ratio", FormatKPI(k.CurrentRatio, false), health),
		card("Average growth", FormatPercent(k.AverageGrowth), "all line items"),
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

func card(label, value, note string) string {
	var b strings.Builder
	b.WriteString(mutedStyle.Render(label))
	b.WriteString("\n")
	b.WriteString(titleStyle.Render(value))
	if note != "" {
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render(note))
	}
	return cardStyle.Render(b.String())
}
