package ingest

import (
	"errors"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestCoerce(t *testing.T) {
	cases := map[string]float64{
		"1234.5":     1234.5,
		"1,234,567":  1234567,
		"1.234.567":  1234567,
		"1.234,5":    1234.5,
		"1,5":        1.5,
		"(2,000)":    -2000,
		"  42 ":      42,
		"1 234":      1234,
		"1\u00a0000": 1000,
		"-15.25":     -15.25,
		"150.000":    150000,
		"2.000":      2000,
		"-2.500":     -2500,
		"0.125":      0.125,
		"1,234":      1234,
		"12.5":       12.5,
		"":           0,
		"-":          0,
		"n/a":        0,
		"12abc":      0,
	}
	for in, want := range cases {
		if got := Coerce(in); got != want {
			t.Errorf("Coerce(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestDetectFormat(t *testing.T) {
	if f, _ := DetectFormat("Report.XLSX"); f != FormatXLSX {
		t.Errorf("expected xlsx, got %s", f)
	}
	if f, _ := DetectFormat("export.xls"); f != FormatHTML {
		t.Errorf("expected legacy xls to read as html, got %s", f)
	}
	if _, err := DetectFormat("notes.pdf"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestParseCSV(t *testing.T) {
	input := "Chỉ tiêu,Năm trước,Năm sau\n" +
		"TÀI SẢN NGẮN HẠN,\"1,000\",\"1,200\"\n" +
		",,\n" +
		"TỔNG CỘNG TÀI SẢN,2000,abc\n" +
		"Short row,5\n"
	items, err := Parse("bs.csv", strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	if items[0].Prior != 1000 || items[0].Current != 1200 {
		t.Errorf("unexpected first row: %+v", items[0])
	}
	if items[1].Current != 0 {
		t.Errorf("non-numeric value should coerce to 0, got %v", items[1].Current)
	}
	if items[2].Label != "Short row" || items[2].Prior != 5 || items[2].Current != 0 {
		t.Errorf("short row should be padded, got %+v", items[2])
	}
}

func TestParseCSV_Semicolon(t *testing.T) {
	input := "Item;Prior;Current\nTotal assets;1.000,5;2.000\n"
	items, err := Parse("bs.csv", strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(items) != 1 || items[0].Prior != 1000.5 || items[0].Current != 2000 {
		t.Errorf("unexpected items: %+v", items)
	}
}

func TestParseHTML(t *testing.T) {
	input := `<html><body><p>Bảng cân đối</p><table>
<tr><th>Chỉ tiêu</th><th>Năm trước</th><th>Năm sau</th></tr>
<tr><td>  TỔNG CỘNG
 TÀI SẢN </td><td>1.500.000</td><td>1.800.000</td></tr>
</table></body></html>`
	items, err := Parse("portal-export.xls", strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if items[0].Label != "TỔNG CỘNG TÀI SẢN" {
		t.Errorf("expected collapsed whitespace, got %q", items[0].Label)
	}
	if items[0].Prior != 1500000 || items[0].Current != 1800000 {
		t.Errorf("unexpected values: %+v", items[0])
	}
}

func TestParseHTML_NoTable(t *testing.T) {
	if _, err := Parse("x.html", strings.NewReader("<p>nothing</p>")); err == nil {
		t.Errorf("expected error for document without table")
	}
}

func TestParseXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]interface{}{
		{"Header A", "Header B", "Header C"},
		{"TỔNG CỘNG TÀI SẢN", 800.0, 1000.0},
		{"Tiền", 100, "250"},
		{"Tỷ lệ", 0.125, 1234.567},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatal(err)
		}
		r := row
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			t.Fatal(err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}

	items, err := Parse("bctc.xlsx", buf)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	if items[0].Prior != 800 || items[0].Current != 1000 {
		t.Errorf("unexpected total row: %+v", items[0])
	}
	if items[1].Prior != 100 || items[1].Current != 250 {
		t.Errorf("unexpected cash row: %+v", items[1])
	}
	if items[2].Prior != 0.125 || items[2].Current != 1234.567 {
		t.Errorf("raw cell values must keep their decimals, got %+v", items[2])
	}
}
