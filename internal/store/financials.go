package store

import (
	"context"
	"database/sql"
	"fmt"
)

const keyFinancialColumns = `sec_code, filer_name, period_start, period_end, is_consolidated,
	sales, operating_income, ordinary_income, net_income,
	total_assets, net_assets, operating_cf, investing_cf, financing_cf`

// KeyFinancials returns every v_key_financials row for one company,
// newest period first. An absent view degrades to an empty result.
func (s *Store) KeyFinancials(ctx context.Context, secCode string) ([]KeyFinancial, error) {
	if !s.caps.HasKeyFinancialsView {
		return nil, nil
	}
	return s.scanKeyFinancials(ctx, `SELECT `+keyFinancialColumns+`
		FROM v_key_financials
		WHERE sec_code = ?
		ORDER BY period_end DESC, is_consolidated DESC`, secCode)
}

// MultiCompanyFinancials returns v_key_financials rows for every listed
// security code. An empty code list returns an empty result without
// touching storage.
func (s *Store) MultiCompanyFinancials(ctx context.Context, secCodes []string) ([]KeyFinancial, error) {
	if len(secCodes) == 0 || !s.caps.HasKeyFinancialsView {
		return nil, nil
	}
	args := make([]any, len(secCodes))
	for i, c := range secCodes {
		args[i] = c
	}
	return s.scanKeyFinancials(ctx, `SELECT `+keyFinancialColumns+`
		FROM v_key_financials
		WHERE sec_code IN (`+inPlaceholders(len(secCodes))+`)
		ORDER BY sec_code, period_end DESC, is_consolidated DESC`, args...)
}

// ScreeningSnapshot returns, for every company, the single consolidated
// row with the greatest period_end. Ties on period_end are broken by the
// (sec_code, period_end, is_consolidated) uniqueness of the view itself;
// output order is by security code so identical queries are byte-stable.
func (s *Store) ScreeningSnapshot(ctx context.Context) ([]KeyFinancial, error) {
	if !s.caps.HasKeyFinancialsView {
		return nil, nil
	}
	return s.scanKeyFinancials(ctx, `WITH latest AS (
			SELECT sec_code, MAX(period_end) AS max_period
			FROM v_key_financials
			WHERE is_consolidated = 1
			GROUP BY sec_code
		)
		SELECT v.`+keyFinancialColumns+`
		FROM v_key_financials v
		INNER JOIN latest l
			ON v.sec_code = l.sec_code
			AND v.period_end = l.max_period
		WHERE v.is_consolidated = 1
		ORDER BY v.sec_code`)
}

func (s *Store) scanKeyFinancials(ctx context.Context, query string, args ...any) ([]KeyFinancial, error) {
	rows, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing key financials: %w", err)
	}
	defer rows.Close()

	var out []KeyFinancial
	for rows.Next() {
		var (
			k            KeyFinancial
			filer        sql.NullString
			pStart, pEnd sql.NullString
			vals         [9]sql.NullFloat64
		)
		if err := rows.Scan(&k.SecCode, &filer, &pStart, &pEnd, &k.IsConsolidated,
			&vals[0], &vals[1], &vals[2], &vals[3], &vals[4],
			&vals[5], &vals[6], &vals[7], &vals[8]); err != nil {
			return nil, fmt.Errorf("scanning key financial: %w", err)
		}
		k.FilerName = filer.String
		k.PeriodStart = pStart.String
		k.PeriodEnd = pEnd.String
		k.Sales = nullableFloat(vals[0])
		k.OperatingIncome = nullableFloat(vals[1])
		k.OrdinaryIncome = nullableFloat(vals[2])
		k.NetIncome = nullableFloat(vals[3])
		k.TotalAssets = nullableFloat(vals[4])
		k.NetAssets = nullableFloat(vals[5])
		k.OperatingCF = nullableFloat(vals[6])
		k.InvestingCF = nullableFloat(vals[7])
		k.FinancingCF = nullableFloat(vals[8])
		out = append(out, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating key financials: %w", err)
	}
	return out, nil
}

// FinancialDetails returns line-item rows from the optional financials
// table. Databases built without line-item parsing return an empty
// result, not an error.
func (s *Store) FinancialDetails(ctx context.Context, secCode string, isConsolidated int) ([]FinancialDetail, error) {
	if !s.caps.HasFinancials {
		return nil, nil
	}
	rows, err := s.query(ctx, `SELECT
			f.doc_id, f.period_start, f.period_end,
			f.account_element, f.account_label,
			f.context, f.unit, f.value,
			f.is_consolidated, f.statement_type
		FROM financials f
		WHERE f.sec_code = ? AND f.is_consolidated = ?
		ORDER BY f.period_end DESC, f.statement_type, f.account_element`,
		secCode, isConsolidated)
	if err != nil {
		return nil, fmt.Errorf("listing financial details: %w", err)
	}
	defer rows.Close()

	var out []FinancialDetail
	for rows.Next() {
		var (
			d                               FinancialDetail
			pStart, pEnd, label, fctx, unit sql.NullString
			stype                           sql.NullString
			value                           sql.NullFloat64
		)
		if err := rows.Scan(&d.DocID, &pStart, &pEnd, &d.AccountElement, &label,
			&fctx, &unit, &value, &d.IsConsolidated, &stype); err != nil {
			return nil, fmt.Errorf("scanning financial detail: %w", err)
		}
		d.PeriodStart = pStart.String
		d.PeriodEnd = pEnd.String
		d.AccountLabel = label.String
		d.Context = fctx.String
		d.Unit = unit.String
		d.Value = nullableFloat(value)
		d.StatementType = stype.String
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating financial details: %w", err)
	}
	return out, nil
}
