// Package comparison builds the side-by-side views for a small set of
// selected companies: a transposed latest-period table, a normalized
// radar profile, and per-metric time-series overlays.
package comparison

import (
	"math"
	"sort"

	"github.com/onokazu777/edinet-viewer/internal/metrics"
	"github.com/onokazu777/edinet-viewer/internal/store"
)

// MaxCompanies caps a comparison selection.
const MaxCompanies = 5

// MinRadarCompanies is the smallest selection the radar view accepts.
const MinRadarCompanies = 2

// RadarMetrics are the six fixed axes of the radar profile.
var RadarMetrics = []metrics.Metric{
	metrics.MetricSales,
	metrics.MetricOperatingIncome,
	metrics.MetricNetIncome,
	metrics.MetricTotalAssets,
	metrics.MetricNetAssets,
	metrics.MetricOperatingCF,
}

// TableRow is one metric row of the transposed comparison table.
type TableRow struct {
	Label  string   `json:"label"`
	Values []string `json:"values"`
}

// Table is the latest-period comparison: one column per company, one row
// per metric, values formatted for display ("-" when missing).
type Table struct {
	Columns []string   `json:"columns"`
	Rows    []TableRow `json:"rows"`
}

// RadarSeries is one company's profile across the six radar axes, each
// value normalized into [0, 1].
type RadarSeries struct {
	SecCode string    `json:"sec_code"`
	Label   string    `json:"label"`
	Values  []float64 `json:"values"`
}

// Radar is the normalized multi-axis profile of the selection.
type Radar struct {
	Axes   []string      `json:"axes"`
	Series []RadarSeries `json:"series"`
}

// SeriesPoint is one period's value in a time-series overlay, scaled to
// oku-yen.
type SeriesPoint struct {
	PeriodEnd string   `json:"period_end"`
	Value     *float64 `json:"value"`
}

// CompanySeries is one company's history for a single metric, periods
// ascending.
type CompanySeries struct {
	SecCode   string        `json:"sec_code"`
	FilerName string        `json:"filer_name"`
	Points    []SeriesPoint `json:"points"`
}

// Result bundles every comparison view for the selection.
type Result struct {
	Codes []string `json:"codes"`
	Table Table    `json:"table"`
	// Radar is nil when fewer than two selected companies have data;
	// Insufficient reports that state so the caller can show a notice
	// instead of an error.
	Radar        *Radar `json:"radar,omitempty"`
	Insufficient bool   `json:"insufficient_selection,omitempty"`
}

// Dedup removes duplicate security codes preserving first-seen order and
// caps the selection at MaxCompanies.
func Dedup(codes []string) []string {
	seen := make(map[string]bool, len(codes))
	var out []string
	for _, c := range codes {
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
		if len(out) == MaxCompanies {
			break
		}
	}
	return out
}

// latestPerCompany picks each selected company's newest row, preferring
// consolidated figures when the company reports both bases. Returned in
// selection order; companies without any row are skipped.
func latestPerCompany(rows []store.KeyFinancial, codes []string) []store.KeyFinancial {
	byCode := make(map[string][]store.KeyFinancial)
	for _, r := range rows {
		byCode[r.SecCode] = append(byCode[r.SecCode], r)
	}

	var out []store.KeyFinancial
	for _, code := range codes {
		candidates := byCode[code]
		if len(candidates) == 0 {
			continue
		}
		if consolidated := filterConsolidated(candidates); len(consolidated) > 0 {
			candidates = consolidated
		}
		best := candidates[0]
		for _, c := range candidates[1:] {
			if c.PeriodEnd > best.PeriodEnd {
				best = c
			}
		}
		out = append(out, best)
	}
	return out
}

func filterConsolidated(rows []store.KeyFinancial) []store.KeyFinancial {
	var out []store.KeyFinancial
	for _, r := range rows {
		if r.IsConsolidated == 1 {
			out = append(out, r)
		}
	}
	return out
}

// Compare builds the transposed table and radar profile for the given
// selection. rows is the multi-company fetch for exactly those codes; an
// empty selection yields an empty result.
func Compare(rows []store.KeyFinancial, codes []string) Result {
	codes = Dedup(codes)
	if len(codes) == 0 {
		return Result{Insufficient: true}
	}

	latest := latestPerCompany(rows, codes)
	res := Result{Codes: codes, Table: buildTable(latest)}
	if len(latest) < MinRadarCompanies {
		res.Insufficient = true
		return res
	}
	res.Radar = buildRadar(latest)
	return res
}

func buildTable(latest []store.KeyFinancial) Table {
	t := Table{}
	for _, k := range latest {
		t.Columns = append(t.Columns, k.FilerName)
	}

	nameRow := TableRow{Label: "企業名"}
	periodRow := TableRow{Label: "期末"}
	for _, k := range latest {
		nameRow.Values = append(nameRow.Values, k.FilerName)
		periodRow.Values = append(periodRow.Values, k.PeriodEnd)
	}
	t.Rows = append(t.Rows, nameRow, periodRow)

	normalized := metrics.NormalizeAll(latest)
	for _, m := range metrics.MonetaryMetrics {
		row := TableRow{Label: metrics.Labels[m]}
		for _, r := range normalized {
			row.Values = append(row.Values, metrics.Format(r.Value(m)))
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// buildRadar normalizes every axis by the maximum absolute value across
// the selection; when all values on an axis are zero or missing, the
// denominator is 1. Negative values clip to 0 in this view only.
func buildRadar(latest []store.KeyFinancial) *Radar {
	radar := &Radar{}
	for _, m := range RadarMetrics {
		radar.Axes = append(radar.Axes, metrics.Labels[m])
	}

	maxAbs := make([]float64, len(RadarMetrics))
	for i, m := range RadarMetrics {
		for _, k := range latest {
			if v := rawValue(k, m); v != nil && math.Abs(*v) > maxAbs[i] {
				maxAbs[i] = math.Abs(*v)
			}
		}
		if maxAbs[i] == 0 {
			maxAbs[i] = 1
		}
	}

	for _, k := range latest {
		series := RadarSeries{
			SecCode: k.SecCode,
			Label:   k.SecCode + " " + k.FilerName,
		}
		for i, m := range RadarMetrics {
			var val float64
			if v := rawValue(k, m); v != nil {
				val = *v / maxAbs[i]
			}
			if val < 0 {
				val = 0
			}
			series.Values = append(series.Values, val)
		}
		radar.Series = append(radar.Series, series)
	}
	return radar
}

func rawValue(k store.KeyFinancial, m metrics.Metric) *float64 {
	switch m {
	case metrics.MetricSales:
		return k.Sales
	case metrics.MetricOperatingIncome:
		return k.OperatingIncome
	case metrics.MetricOrdinaryIncome:
		return k.OrdinaryIncome
	case metrics.MetricNetIncome:
		return k.NetIncome
	case metrics.MetricTotalAssets:
		return k.TotalAssets
	case metrics.MetricNetAssets:
		return k.NetAssets
	case metrics.MetricOperatingCF:
		return k.OperatingCF
	case metrics.MetricInvestingCF:
		return k.InvestingCF
	case metrics.MetricFinancingCF:
		return k.FinancingCF
	}
	return nil
}

// Series builds the per-company history overlay for one metric across
// all available periods, ascending, preferring consolidated rows when a
// company reports both bases.
func Series(rows []store.KeyFinancial, codes []string, m metrics.Metric) []CompanySeries {
	codes = Dedup(codes)
	byCode := make(map[string][]store.KeyFinancial)
	for _, r := range rows {
		byCode[r.SecCode] = append(byCode[r.SecCode], r)
	}

	var out []CompanySeries
	for _, code := range codes {
		history := byCode[code]
		if len(history) == 0 {
			continue
		}
		if consolidated := filterConsolidated(history); len(consolidated) > 0 {
			history = consolidated
		}
		cs := CompanySeries{SecCode: code, FilerName: history[0].FilerName}
		for _, h := range history {
			cs.Points = append(cs.Points, SeriesPoint{
				PeriodEnd: h.PeriodEnd,
				Value:     metrics.ScaleToOku(rawValue(h, m)),
			})
		}
		sort.Slice(cs.Points, func(i, j int) bool {
			return cs.Points[i].PeriodEnd < cs.Points[j].PeriodEnd
		})
		out = append(out, cs)
	}
	return out
}
