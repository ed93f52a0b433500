// Package metrics derives display-ready figures from raw key financial
// rows: oku-yen scaling, financial ratios, and the label maps shared by
// the table, CSV and XLSX views.
package metrics

import (
	"math"
	"strconv"
	"strings"

	"github.com/onokazu777/edinet-viewer/internal/store"
)

// Oku is the display unit divisor: 1 oku-yen = 100,000,000 yen.
const Oku = 1e8

// Metric identifies one of the key financial figures.
type Metric string

const (
	MetricSales           Metric = "sales"
	MetricOperatingIncome Metric = "operating_income"
	MetricOrdinaryIncome  Metric = "ordinary_income"
	MetricNetIncome       Metric = "net_income"
	MetricTotalAssets     Metric = "total_assets"
	MetricNetAssets       Metric = "net_assets"
	MetricOperatingCF     Metric = "operating_cf"
	MetricInvestingCF     Metric = "investing_cf"
	MetricFinancingCF     Metric = "financing_cf"
	MetricEquityRatio     Metric = "equity_ratio"
	MetricOperatingMargin Metric = "op_margin"
)

// MonetaryMetrics lists the yen-denominated metrics in display order.
var MonetaryMetrics = []Metric{
	MetricSales, MetricOperatingIncome, MetricOrdinaryIncome, MetricNetIncome,
	MetricTotalAssets, MetricNetAssets,
	MetricOperatingCF, MetricInvestingCF, MetricFinancingCF,
}

// Labels maps metrics to the human display names used in every view.
var Labels = map[Metric]string{
	MetricSales:           "売上高(億円)",
	MetricOperatingIncome: "営業利益(億円)",
	MetricOrdinaryIncome:  "経常利益(億円)",
	MetricNetIncome:       "純利益(億円)",
	MetricTotalAssets:     "総資産(億円)",
	MetricNetAssets:       "純資産(億円)",
	MetricOperatingCF:     "営業CF(億円)",
	MetricInvestingCF:     "投資CF(億円)",
	MetricFinancingCF:     "財務CF(億円)",
	MetricEquityRatio:     "自己資本比率(%)",
	MetricOperatingMargin: "営業利益率(%)",
}

// docTypeNames maps EDINET document type codes to their labels.
var docTypeNames = map[string]string{
	"120": "有価証券報告書",
	"130": "訂正有価証券報告書",
	"140": "四半期報告書",
	"150": "訂正四半期報告書",
	"160": "半期報告書",
	"170": "訂正半期報告書",
	"060": "大量保有報告書",
	"070": "訂正大量保有報告書",
}

// DocTypeName returns the human label for an EDINET document type code,
// or the code itself when unknown.
func DocTypeName(code string) string {
	if name, ok := docTypeNames[code]; ok {
		return name
	}
	return code
}

// ScaleToOku converts a yen amount to oku-yen. A nil input stays nil; a
// missing figure is never coerced to zero.
func ScaleToOku(v *float64) *float64 {
	if v == nil {
		return nil
	}
	scaled := *v / Oku
	return &scaled
}

// Round1 rounds to one decimal place, half away from zero.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Ratio computes num/den*100 rounded to one decimal. It returns nil when
// either operand is missing or the denominator is zero; it never panics.
func Ratio(num, den *float64) *float64 {
	if num == nil || den == nil || *den == 0 {
		return nil
	}
	r := Round1(*num / *den * 100)
	return &r
}

// EquityRatio is net assets over total assets, in percent.
func EquityRatio(k store.KeyFinancial) *float64 {
	return Ratio(k.NetAssets, k.TotalAssets)
}

// OperatingMargin is operating income over sales, in percent.
func OperatingMargin(k store.KeyFinancial) *float64 {
	return Ratio(k.OperatingIncome, k.Sales)
}

// Row is one key financial row normalized for display: monetary fields
// in oku-yen plus the derived ratios. Nil still means "not disclosed".
type Row struct {
	SecCode        string `json:"sec_code"`
	FilerName      string `json:"filer_name"`
	PeriodStart    string `json:"period_start"`
	PeriodEnd      string `json:"period_end"`
	IsConsolidated int    `json:"is_consolidated"`

	Sales           *float64 `json:"sales"`
	OperatingIncome *float64 `json:"operating_income"`
	OrdinaryIncome  *float64 `json:"ordinary_income"`
	NetIncome       *float64 `json:"net_income"`
	TotalAssets     *float64 `json:"total_assets"`
	NetAssets       *float64 `json:"net_assets"`
	OperatingCF     *float64 `json:"operating_cf"`
	InvestingCF     *float64 `json:"investing_cf"`
	FinancingCF     *float64 `json:"financing_cf"`
	EquityRatio     *float64 `json:"equity_ratio"`
	OperatingMargin *float64 `json:"op_margin"`
}

// Normalize converts a raw yen-denominated row into display units and
// attaches the derived ratios.
func Normalize(k store.KeyFinancial) Row {
	return Row{
		SecCode:         k.SecCode,
		FilerName:       k.FilerName,
		PeriodStart:     k.PeriodStart,
		PeriodEnd:       k.PeriodEnd,
		IsConsolidated:  k.IsConsolidated,
		Sales:           ScaleToOku(k.Sales),
		OperatingIncome: ScaleToOku(k.OperatingIncome),
		OrdinaryIncome:  ScaleToOku(k.OrdinaryIncome),
		NetIncome:       ScaleToOku(k.NetIncome),
		TotalAssets:     ScaleToOku(k.TotalAssets),
		NetAssets:       ScaleToOku(k.NetAssets),
		OperatingCF:     ScaleToOku(k.OperatingCF),
		InvestingCF:     ScaleToOku(k.InvestingCF),
		FinancingCF:     ScaleToOku(k.FinancingCF),
		EquityRatio:     EquityRatio(k),
		OperatingMargin: OperatingMargin(k),
	}
}

// NormalizeAll maps Normalize over a batch.
func NormalizeAll(ks []store.KeyFinancial) []Row {
	out := make([]Row, len(ks))
	for i, k := range ks {
		out[i] = Normalize(k)
	}
	return out
}

// Value returns the named metric from a normalized row, nil when absent.
func (r Row) Value(m Metric) *float64 {
	switch m {
	case MetricSales:
		return r.Sales
	case MetricOperatingIncome:
		return r.OperatingIncome
	case MetricOrdinaryIncome:
		return r.OrdinaryIncome
	case MetricNetIncome:
		return r.NetIncome
	case MetricTotalAssets:
		return r.TotalAssets
	case MetricNetAssets:
		return r.NetAssets
	case MetricOperatingCF:
		return r.OperatingCF
	case MetricInvestingCF:
		return r.InvestingCF
	case MetricFinancingCF:
		return r.FinancingCF
	case MetricEquityRatio:
		return r.EquityRatio
	case MetricOperatingMargin:
		return r.OperatingMargin
	}
	return nil
}

// Format renders a display-unit value as shown on screen and in CSV:
// one decimal place with thousands separators, "-" when missing. The
// same function backs every view so exports round-trip exactly.
func Format(v *float64) string {
	if v == nil {
		return "-"
	}
	s := strconv.FormatFloat(Round1(*v), 'f', 1, 64)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	dot := strings.IndexByte(s, '.')
	intPart, frac := s[:dot], s[dot:]
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, d := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	b.WriteString(frac)
	return b.String()
}
