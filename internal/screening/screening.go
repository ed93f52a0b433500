// Package screening filters the latest-period-per-company snapshot by
// inclusive financial ranges and ranks the survivors.
package screening

import (
	"sort"

	"github.com/onokazu777/edinet-viewer/internal/metrics"
	"github.com/onokazu777/edinet-viewer/internal/store"
)

// Range is one inclusive bound pair in display units. Nil bounds impose
// no constraint.
type Range struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

func (r Range) matches(v *float64) bool {
	if r.Min == nil && r.Max == nil {
		return true
	}
	if v == nil {
		return false
	}
	if r.Min != nil && *v < *r.Min {
		return false
	}
	if r.Max != nil && *v > *r.Max {
		return false
	}
	return true
}

// Filter is the conjunction of range predicates applied to the snapshot.
// Monetary ranges are in oku-yen; ratio ranges are in percent.
type Filter struct {
	Sales           Range `json:"sales"`
	OperatingIncome Range `json:"operating_income"`
	NetIncome       Range `json:"net_income"`
	TotalAssets     Range `json:"total_assets"`
	NetAssets       Range `json:"net_assets"`
	OperatingCF     Range `json:"operating_cf"`
	EquityRatio     Range `json:"equity_ratio"`
	OperatingMargin Range `json:"op_margin"`
}

func (f Filter) matches(r metrics.Row) bool {
	return f.Sales.matches(r.Sales) &&
		f.OperatingIncome.matches(r.OperatingIncome) &&
		f.NetIncome.matches(r.NetIncome) &&
		f.TotalAssets.matches(r.TotalAssets) &&
		f.NetAssets.matches(r.NetAssets) &&
		f.OperatingCF.matches(r.OperatingCF) &&
		f.EquityRatio.matches(r.EquityRatio) &&
		f.OperatingMargin.matches(r.OperatingMargin)
}

// DefaultSortMetric orders results when the caller does not choose one.
const DefaultSortMetric = metrics.MetricSales

// Run normalizes the snapshot, drops companies with no reported sales,
// applies the filter conjunction, and sorts descending by sortBy with
// missing values last. Ties break by security code so repeated identical
// queries produce identical ordering.
func Run(snapshot []store.KeyFinancial, f Filter, sortBy metrics.Metric) []metrics.Row {
	if sortBy == "" {
		sortBy = DefaultSortMetric
	}

	var out []metrics.Row
	for _, k := range snapshot {
		row := metrics.Normalize(k)
		// Companies without a parsed sales figure carry no usable
		// snapshot and are excluded regardless of filter settings.
		if row.Sales == nil {
			continue
		}
		if f.matches(row) {
			out = append(out, row)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Value(sortBy), out[j].Value(sortBy)
		switch {
		case a == nil && b == nil:
			return out[i].SecCode < out[j].SecCode
		case a == nil:
			return false
		case b == nil:
			return true
		case *a != *b:
			return *a > *b
		}
		return out[i].SecCode < out[j].SecCode
	})
	return out
}
