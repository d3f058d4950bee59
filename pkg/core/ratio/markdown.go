package ratio

import (
	"strconv"
	"strings"
)

var markdownHeaders = []string{
	"Line item",
	"Prior year",
	"Current year",
	"Growth (%)",
	"Prior share (%)",
	"Current share (%)",
}

// Markdown renders the table as a GitHub pipe table, the form sent to the
// text-generation model as context.
func (t Table) Markdown() string {
	var b strings.Builder
	writeMarkdownRow(&b, markdownHeaders)
	sep := make([]string, len(markdownHeaders))
	for i := range sep {
		if i == 0 {
			sep[i] = ":--"
		} else {
			sep[i] = "--:"
		}
	}
	writeMarkdownRow(&b, sep)
	for _, r := range t {
		writeMarkdownRow(&b, []string{
			escapeCell(r.Label),
			formatNumber(r.Prior),
			formatNumber(r.Current),
			formatNumber(r.GrowthPercent),
			formatNumber(r.PriorSharePercent),
			formatNumber(r.CurrentSharePercent),
		})
	}
	return b.String()
}

// MarkdownPairs renders a two-column label/value pipe table.
func MarkdownPairs(header [2]string, rows [][2]string) string {
	var b strings.Builder
	writeMarkdownRow(&b, header[:])
	writeMarkdownRow(&b, []string{":--", ":--"})
	for _, r := range rows {
		writeMarkdownRow(&b, []string{escapeCell(r[0]), escapeCell(r[1])})
	}
	return b.String()
}

func writeMarkdownRow(b *strings.Builder, cells []string) {
	b.WriteString("| ")
	b.WriteString(strings.Join(cells, " | "))
	b.WriteString(" |\n")
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", "<br>")
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
