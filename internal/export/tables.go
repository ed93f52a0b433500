package export

import (
	"strconv"

	"github.com/onokazu777/edinet-viewer/internal/comparison"
	"github.com/onokazu777/edinet-viewer/internal/metrics"
	"github.com/onokazu777/edinet-viewer/internal/store"
)

// FinancialsTable renders a company's per-period key financials in the
// layout of the financial data tab.
func FinancialsTable(rows []metrics.Row) Table {
	t := Table{Headers: []string{
		"期末",
		metrics.Labels[metrics.MetricSales],
		metrics.Labels[metrics.MetricOperatingIncome],
		metrics.Labels[metrics.MetricOrdinaryIncome],
		metrics.Labels[metrics.MetricNetIncome],
		metrics.Labels[metrics.MetricTotalAssets],
		metrics.Labels[metrics.MetricNetAssets],
		metrics.Labels[metrics.MetricOperatingCF],
		metrics.Labels[metrics.MetricInvestingCF],
		metrics.Labels[metrics.MetricFinancingCF],
	}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{
			r.PeriodEnd,
			metrics.Format(r.Sales),
			metrics.Format(r.OperatingIncome),
			metrics.Format(r.OrdinaryIncome),
			metrics.Format(r.NetIncome),
			metrics.Format(r.TotalAssets),
			metrics.Format(r.NetAssets),
			metrics.Format(r.OperatingCF),
			metrics.Format(r.InvestingCF),
			metrics.Format(r.FinancingCF),
		})
	}
	return t
}

// ScreeningTable renders the screening result in its on-screen layout.
func ScreeningTable(rows []metrics.Row) Table {
	t := Table{Headers: []string{
		"コード",
		"企業名",
		"期末",
		metrics.Labels[metrics.MetricSales],
		metrics.Labels[metrics.MetricOperatingIncome],
		metrics.Labels[metrics.MetricNetIncome],
		metrics.Labels[metrics.MetricTotalAssets],
		metrics.Labels[metrics.MetricNetAssets],
		metrics.Labels[metrics.MetricEquityRatio],
		metrics.Labels[metrics.MetricOperatingMargin],
	}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{
			r.SecCode,
			r.FilerName,
			r.PeriodEnd,
			metrics.Format(r.Sales),
			metrics.Format(r.OperatingIncome),
			metrics.Format(r.NetIncome),
			metrics.Format(r.TotalAssets),
			metrics.Format(r.NetAssets),
			metrics.Format(r.EquityRatio),
			metrics.Format(r.OperatingMargin),
		})
	}
	return t
}

// ComparisonTable flattens the transposed comparison view.
func ComparisonTable(c comparison.Table) Table {
	t := Table{Headers: append([]string{"指標"}, c.Columns...)}
	for _, row := range c.Rows {
		t.Rows = append(t.Rows, append([]string{row.Label}, row.Values...))
	}
	return t
}

// TextBlocksTable renders search results with the full text content;
// exports are never truncated.
func TextBlocksTable(blocks []store.TextBlock) Table {
	t := Table{Headers: []string{
		"証券コード", "企業名", "期首", "期末", "セクション", "テキスト",
	}}
	for _, b := range blocks {
		t.Rows = append(t.Rows, []string{
			b.SecCode, b.FilerName, b.PeriodStart, b.PeriodEnd,
			b.SectionLabel, b.TextContent,
		})
	}
	return t
}

// CompaniesTable renders a company search result.
func CompaniesTable(companies []store.Company) Table {
	t := Table{Headers: []string{"証券コード", "企業名", "書類数", "最終提出日"}}
	for _, c := range companies {
		t.Rows = append(t.Rows, []string{
			c.SecCode, c.FilerName, strconv.FormatInt(c.DocCount, 10), c.LatestDate,
		})
	}
	return t
}

// DocumentsTable renders a filing list with resolved document type names.
func DocumentsTable(docs []store.Document) Table {
	t := Table{Headers: []string{"提出日", "コード", "企業名", "書類種別", "概要", "期末"}}
	for _, d := range docs {
		t.Rows = append(t.Rows, []string{
			d.FileDate, d.SecCode, d.FilerName,
			metrics.DocTypeName(d.DocTypeCode), d.DocDescription, d.PeriodEnd,
		})
	}
	return t
}
