// Package export writes the enriched table as an Excel workbook.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"balance_insight/pkg/core/ratio"
)

// SheetName is the worksheet holding the table.
const SheetName = "Analysis"

// ContentType is the MIME type of the workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Headers are the column captions, in column order.
var Headers = []string{"Line item", "Prior year", "Current year", "Growth (%)", "Prior share (%)", "Current share (%)"}

// WriteTable writes t to w as an .xlsx workbook. Values use a thousands
// format, percentages two decimals, and growth cells are green when positive
// and red when negative.
func WriteTable(w io.Writer, t ratio.Table) error {
	f, err := Workbook(t)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

// Workbook builds the workbook for t. The caller closes it.
func Workbook(t ratio.Table) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		f.Close()
		return nil, err
	}

	styles, err := newStyles(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("creating styles: %w", err)
	}

	if err := fill(f, t, styles); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

// fill writes the header and rows of t and applies styles. The first
// failing call aborts the workbook.
func fill(f *excelize.File, t ratio.Table, styles styleSet) error {
	header := make([]interface{}, len(Headers))
	for i, h := range Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(Headers), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetName, "A1", last, styles.header); err != nil {
		return fmt.Errorf("styling header: %w", err)
	}

	for i, r := range t {
		row := i + 2
		values := []interface{}{r.Label, r.Prior, r.Current, r.GrowthPercent, r.PriorSharePercent, r.CurrentSharePercent}
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("writing row %d: %w", row, err)
		}

		growth := styles.percent
		switch {
		case r.GrowthPercent > 0:
			growth = styles.up
		case r.GrowthPercent < 0:
			growth = styles.down
		}
		for _, span := range []struct {
			from, to string
			style    int
		}{
			{"B", "C", styles.number},
			{"D", "D", growth},
			{"E", "F", styles.percent},
		} {
			if err := f.SetCellStyle(SheetName, fmt.Sprintf("%s%d", span.from, row), fmt.Sprintf("%s%d", span.to, row), span.style); err != nil {
				return fmt.Errorf("styling row %d: %w", row, err)
			}
		}
	}

	if err := f.SetColWidth(SheetName, "A", "A", 48); err != nil {
		return fmt.Errorf("setting column width: %w", err)
	}
	if err := f.SetColWidth(SheetName, "B", "F", 18); err != nil {
		return fmt.Errorf("setting column width: %w", err)
	}
	if err := f.SetPanes(SheetName, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return fmt.Errorf("freezing header: %w", err)
	}
	return nil
}

type styleSet struct {
	header, number, percent, up, down int
}

func newStyles(f *excelize.File) (styleSet, error) {
	var s styleSet
	var err error
	numFmt := "#,##0"
	pctFmt := `0.00"%"`

	if s.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#1E88E5"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	}); err != nil {
		return s, err
	}
	if s.number, err = f.NewStyle(&excelize.Style{CustomNumFmt: &numFmt}); err != nil {
		return s, err
	}
	if s.percent, err = f.NewStyle(&excelize.Style{CustomNumFmt: &pctFmt}); err != nil {
		return s, err
	}
	if s.up, err = f.NewStyle(&excelize.Style{
		CustomNumFmt: &pctFmt,
		Font:         &excelize.Font{Color: "#2E7D32"},
		Fill:         excelize.Fill{Type: "pattern", Color: []string{"#E8F5E9"}, Pattern: 1},
	}); err != nil {
		return s, err
	}
	s.down, err = f.NewStyle(&excelize.Style{
		CustomNumFmt: &pctFmt,
		Font:         &excelize.Font{Color: "#C62828"},
		Fill:         excelize.Fill{Type: "pattern", Color: []string{"#FFEBEE"}, Pattern: 1},
	})
	return s, err
}
