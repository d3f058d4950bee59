package ingest

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Coerce converts a cell to a number. Anything that does not parse becomes 0.
//
// Accepted forms: "1234.5", "1,234.5", "1 234", "(1,234)" for negatives,
// and European "1.234,5" when the comma is the last separator.
func Coerce(raw string) float64 {
	s := strings.TrimSpace(raw)
	if s == "" || s == "-" {
		return 0
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	s = strings.NewReplacer(" ", "", "\u00a0", "", "'", "").Replace(s)
	s = normalizeSeparators(s)

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0
	}
	if negative {
		d = d.Neg()
	}
	f, _ := d.Float64()
	return f
}

// normalizeSeparators removes thousands separators and makes '.' the decimal point.
func normalizeSeparators(s string) string {
	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")

	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			return strings.Replace(s, ",", ".", 1)
		}
		return strings.ReplaceAll(s, ",", "")
	case lastComma >= 0:
		// "1,234,567" is grouping; a single ",5" style tail is a decimal.
		if strings.Count(s, ",") == 1 && !groupTail(s, lastComma) {
			return strings.Replace(s, ",", ".", 1)
		}
		return strings.ReplaceAll(s, ",", "")
	case strings.Count(s, ".") > 1:
		return strings.ReplaceAll(s, ".", "")
	case lastDot >= 0 && groupTail(s, lastDot):
		// Vietnamese statements group thousands with '.': "150.000".
		return strings.Replace(s, ".", "", 1)
	}
	return s
}

// groupTail reports whether the separator at i looks like a thousands
// separator: exactly three digits follow and the leading group is not "0".
func groupTail(s string, i int) bool {
	if len(s)-i-1 != 3 {
		return false
	}
	lead := strings.TrimPrefix(s[:i], "-")
	return lead != "" && lead != "0"
}

// coerceRaw parses machine-formatted numbers such as raw spreadsheet cell
// values, where '.' is always the decimal point.
func coerceRaw(raw string) float64 {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return Coerce(raw)
	}
	f, _ := d.Float64()
	return f
}
