package export

import (
	"bytes"
	"strconv"
	"testing"

	"github.com/xuri/excelize/v2"

	"balance_insight/pkg/core/ratio"
)

func TestWriteTable(t *testing.T) {
	table, err := ratio.Process([]ratio.LineItem{
		{Label: "Hàng tồn kho", Prior: 100, Current: 150},
		{Label: "Tiền", Prior: 200, Current: 100},
		{Label: "TỔNG CỘNG TÀI SẢN", Prior: 1000, Current: 1000},
	}, ratio.DefaultMarkers())
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := WriteTable(&buf, table); err != nil {
		t.Fatalf("WriteTable failed: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("output is not a workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(SheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		t.Fatalf("GetRows failed: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected header + 3 rows, got %d", len(rows))
	}
	if rows[0][0] != "Line item" || rows[0][5] != "Current share (%)" {
		t.Errorf("unexpected header %v", rows[0])
	}
	if rows[1][0] != "Hàng tồn kho" {
		t.Errorf("row order not preserved: %v", rows[1])
	}
	growth, err := strconv.ParseFloat(rows[1][3], 64)
	if err != nil || growth != 50 {
		t.Errorf("expected growth 50, got %q", rows[1][3])
	}

	up, _ := f.GetCellStyle(SheetName, "D2")
	down, _ := f.GetCellStyle(SheetName, "D3")
	flat, _ := f.GetCellStyle(SheetName, "D4")
	if up == down || up == flat || down == flat {
		t.Errorf("expected distinct growth styles, got up=%d down=%d flat=%d", up, down, flat)
	}
}

func TestWriteTable_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTable(&buf, nil); err != nil {
		t.Fatalf("WriteTable failed: %v", err)
	}
	if buf.Len() == 0 {
		t.Errorf("expected a workbook with only a header")
	}
}

func TestFill_StyleFailureIsReturned(t *testing.T) {
	table, err := ratio.Process([]ratio.LineItem{{Label: "TỔNG CỘNG TÀI SẢN", Prior: 1, Current: 2}}, ratio.DefaultMarkers())
	if err != nil {
		t.Fatal(err)
	}

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		t.Fatal(err)
	}
	styles, err := newStyles(f)
	if err != nil {
		t.Fatal(err)
	}
	styles.number = 9999
	if err := fill(f, table, styles); err == nil {
		t.Errorf("expected an error for an unknown style id")
	}
}

func TestFill_MissingSheet(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	if err := fill(f, nil, styleSet{}); err == nil {
		t.Errorf("expected an error when the %s sheet does not exist", SheetName)
	}
}
