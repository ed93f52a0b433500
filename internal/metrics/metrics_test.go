package metrics

import (
	"testing"

	"github.com/onokazu777/edinet-viewer/internal/store"
)

func fp(v float64) *float64 { return &v }

func TestScaleToOku(t *testing.T) {
	if got := ScaleToOku(fp(250_000_000)); got == nil || *got != 2.5 {
		t.Errorf("expected 2.5, got %v", got)
	}
	if got := ScaleToOku(nil); got != nil {
		t.Errorf("expected nil for nil input, got %v", got)
	}
	if got := ScaleToOku(fp(-100_000_000)); got == nil || *got != -1 {
		t.Errorf("expected -1, got %v", got)
	}
}

func TestRound1(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{1.24, 1.2},
		{1.25, 1.3},
		{-1.25, -1.3},
		{0, 0},
	}
	for _, c := range cases {
		if got := Round1(c.in); got != c.want {
			t.Errorf("Round1(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestRatio(t *testing.T) {
	if got := Ratio(fp(30), fp(120)); got == nil || *got != 25.0 {
		t.Errorf("expected 25.0, got %v", got)
	}
	if got := Ratio(fp(1), fp(0)); got != nil {
		t.Errorf("expected nil for zero denominator, got %v", got)
	}
	if got := Ratio(nil, fp(10)); got != nil {
		t.Errorf("expected nil for nil numerator, got %v", got)
	}
	if got := Ratio(fp(10), nil); got != nil {
		t.Errorf("expected nil for nil denominator, got %v", got)
	}
}

func TestNormalize(t *testing.T) {
	k := store.KeyFinancial{
		SecCode:         "7203",
		FilerName:       "トヨタ自動車株式会社",
		PeriodEnd:       "2024-03-31",
		IsConsolidated:  1,
		Sales:           fp(45_000_000_000_000),
		OperatingIncome: fp(5_350_000_000_000),
		TotalAssets:     fp(90_000_000_000_000),
		NetAssets:       fp(33_750_000_000_000),
	}
	r := Normalize(k)

	if r.Sales == nil || *r.Sales != 450_000 {
		t.Errorf("sales: expected 450000 oku, got %v", r.Sales)
	}
	if r.EquityRatio == nil || *r.EquityRatio != 37.5 {
		t.Errorf("equity ratio: expected 37.5, got %v", r.EquityRatio)
	}
	// operating margin = 5350/45000*100 = 11.888... rounds to 11.9
	if r.OperatingMargin == nil || *r.OperatingMargin != 11.9 {
		t.Errorf("operating margin: expected 11.9, got %v", r.OperatingMargin)
	}
	if r.NetIncome != nil {
		t.Errorf("net income: expected nil for undisclosed figure, got %v", r.NetIncome)
	}
}

func TestRowValue(t *testing.T) {
	r := Row{Sales: fp(100), EquityRatio: fp(40)}
	if got := r.Value(MetricSales); got == nil || *got != 100 {
		t.Errorf("sales value: got %v", got)
	}
	if got := r.Value(MetricEquityRatio); got == nil || *got != 40 {
		t.Errorf("equity ratio value: got %v", got)
	}
	if got := r.Value(MetricNetIncome); got != nil {
		t.Errorf("net income value: expected nil, got %v", got)
	}
	if got := r.Value(Metric("bogus")); got != nil {
		t.Errorf("unknown metric: expected nil, got %v", got)
	}
}

func TestFormat(t *testing.T) {
	cases := []struct {
		in   *float64
		want string
	}{
		{nil, "-"},
		{fp(0), "0.0"},
		{fp(1234.5), "1,234.5"},
		{fp(1234567.89), "1,234,567.9"},
		{fp(-1234.5), "-1,234.5"},
		{fp(999), "999.0"},
		{fp(-0.04), "-0.0"},
	}
	for _, c := range cases {
		if got := Format(c.in); got != c.want {
			t.Errorf("Format(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestDocTypeName(t *testing.T) {
	if got := DocTypeName("120"); got != "有価証券報告書" {
		t.Errorf("expected annual report label, got %q", got)
	}
	if got := DocTypeName("999"); got != "999" {
		t.Errorf("unknown code should pass through, got %q", got)
	}
}
