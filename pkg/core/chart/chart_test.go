package chart

import (
	"bytes"
	"errors"
	"testing"

	"balance_insight/pkg/core/ratio"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func sampleTable(t *testing.T) ratio.Table {
	t.Helper()
	table, err := ratio.Process([]ratio.LineItem{
		{Label: "Tiền và các khoản tương đương tiền", Prior: 120, Current: 90},
		{Label: "TÀI SẢN NGẮN HẠN", Prior: 400, Current: 500},
		{Label: "Hàng tồn kho", Prior: 150, Current: 210},
		{Label: "TÀI SẢN DÀI HẠN", Prior: 400, Current: 500},
		{Label: "TỔNG CỘNG TÀI SẢN", Prior: 800, Current: 1000},
	}, ratio.DefaultMarkers())
	if err != nil {
		t.Fatal(err)
	}
	return table
}

func TestRender_AllKindsProducePNG(t *testing.T) {
	table := sampleTable(t)
	for _, kind := range Kinds {
		var buf bytes.Buffer
		if err := Render(&buf, table, kind); err != nil {
			t.Errorf("%s: render failed: %v", kind, err)
			continue
		}
		if !bytes.HasPrefix(buf.Bytes(), pngMagic) {
			t.Errorf("%s: output is not a PNG", kind)
		}
	}
}

func TestRender_EmptySelections(t *testing.T) {
	var buf bytes.Buffer
	if err := ComparisonPNG(&buf, ratio.BarChartData{}); !errors.Is(err, ErrNoData) {
		t.Errorf("expected ErrNoData, got %v", err)
	}
	if err := GrowthPNG(&buf, ratio.BarChartData{Categories: []string{"a"}, Series: []ratio.Series{{Values: []float64{0}}}}); !errors.Is(err, ErrNoData) {
		t.Errorf("expected ErrNoData for all-zero growth, got %v", err)
	}
	if err := CompositionPNG(&buf, ratio.PieChartData{Labels: []string{"a"}, Values: []float64{-5}}); !errors.Is(err, ErrNoData) {
		t.Errorf("expected ErrNoData for non-positive pie, got %v", err)
	}
}

func TestParseKind(t *testing.T) {
	if k, err := ParseKind(" Growth "); err != nil || k != Growth {
		t.Errorf("expected growth, got %q, %v", k, err)
	}
	if _, err := ParseKind("radar"); err == nil {
		t.Errorf("expected error for unknown kind")
	}
}

func TestData_Shapes(t *testing.T) {
	table := sampleTable(t)
	d, err := Data(table, Composition)
	if err != nil {
		t.Fatal(err)
	}
	pie, ok := d.(ratio.PieChartData)
	if !ok || len(pie.Labels) != 5 {
		t.Errorf("expected 5 pie slices, got %#v", d)
	}
	d, _ = Data(table, Growth)
	bar := d.(ratio.BarChartData)
	if bar.Categories[0] != "Hàng tồn kho" || !bar.Positive[0] {
		t.Errorf("expected inventory as fastest growing, got %#v", bar)
	}
}

func TestCompact(t *testing.T) {
	cases := map[float64]string{
		0:         "0",
		950:       "950",
		1500:      "1.5k",
		-2500000:  "-2.5M",
		123456789: "123.46M",
		1.004:     "1",
		2.346:     "2.35",
		999996:    "1M",
		-1234:     "-1.23k",
	}
	for in, want := range cases {
		if got := compact(in); got != want {
			t.Errorf("compact(%v) = %q, want %q", in, got, want)
		}
	}
}
