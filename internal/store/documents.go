package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/onokazu777/edinet-viewer/internal/cache"
)

// Cache windows for whole-database aggregates. Values may be stale by up
// to the window; the dashboard treats that as acceptable.
const (
	statsTTL  = time.Hour
	listTTL   = time.Hour
	recentTTL = 10 * time.Minute
)

// Stats returns whole-database aggregates for the dashboard front page.
// Counts over optional tables are zero when the table is absent.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	return cache.Do(s.memo, "stats", statsTTL, func() (Stats, error) {
		return s.stats(ctx)
	})
}

func (s *Store) stats(ctx context.Context) (Stats, error) {
	var st Stats

	if err := s.queryRow(ctx, `SELECT COUNT(*) FROM documents`).Scan(&st.TotalDocs); err != nil {
		return Stats{}, fmt.Errorf("counting documents: %w", err)
	}
	if err := s.queryRow(ctx, `SELECT COUNT(DISTINCT sec_code) FROM documents
		WHERE sec_code IS NOT NULL AND sec_code != ''`).Scan(&st.TotalCompanies); err != nil {
		return Stats{}, fmt.Errorf("counting companies: %w", err)
	}
	if err := s.queryRow(ctx, `SELECT COUNT(*) FROM documents WHERE parse_status = 1`).Scan(&st.ParsedDocs); err != nil {
		return Stats{}, fmt.Errorf("counting parsed documents: %w", err)
	}
	if err := s.queryRow(ctx, `SELECT COUNT(*) FROM documents WHERE dl_status > 0`).Scan(&st.DownloadedDocs); err != nil {
		return Stats{}, fmt.Errorf("counting downloaded documents: %w", err)
	}

	// Financial record count prefers the key_financials table, falling
	// back to line-item financials; both are optional in minimal builds.
	switch {
	case s.caps.HasKeyFinancials:
		if err := s.queryRow(ctx, `SELECT COUNT(*) FROM key_financials`).Scan(&st.FinancialRecords); err != nil {
			return Stats{}, fmt.Errorf("counting key financials: %w", err)
		}
	case s.caps.HasFinancials:
		if err := s.queryRow(ctx, `SELECT COUNT(*) FROM financials`).Scan(&st.FinancialRecords); err != nil {
			return Stats{}, fmt.Errorf("counting financials: %w", err)
		}
	}
	if s.caps.HasTextBlocks {
		if err := s.queryRow(ctx, `SELECT COUNT(*) FROM text_blocks`).Scan(&st.TextBlocks); err != nil {
			return Stats{}, fmt.Errorf("counting text blocks: %w", err)
		}
	}

	var from, to sql.NullString
	if err := s.queryRow(ctx, `SELECT MIN(file_date), MAX(file_date) FROM documents`).Scan(&from, &to); err != nil {
		return Stats{}, fmt.Errorf("reading date range: %w", err)
	}
	st.DateFrom = from.String
	st.DateTo = to.String

	rows, err := s.query(ctx, `SELECT doc_type_code, COUNT(*) AS cnt FROM documents
		GROUP BY doc_type_code ORDER BY cnt DESC, doc_type_code`)
	if err != nil {
		return Stats{}, fmt.Errorf("counting document types: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			code sql.NullString
			c    DocTypeCount
		)
		if err := rows.Scan(&code, &c.Count); err != nil {
			return Stats{}, fmt.Errorf("scanning document type count: %w", err)
		}
		c.Code = code.String
		st.DocTypeCounts = append(st.DocTypeCounts, c)
	}
	if err := rows.Err(); err != nil {
		return Stats{}, fmt.Errorf("iterating document type counts: %w", err)
	}
	return st, nil
}

const companySelect = `SELECT
		sec_code,
		filer_name,
		COUNT(*) AS doc_count,
		MAX(file_date) AS latest_date
	FROM documents
	WHERE sec_code IS NOT NULL AND sec_code != ''`

// CompanyList returns every distinct (sec_code, filer_name) pair with its
// filing count and latest submission date, ordered by security code.
func (s *Store) CompanyList(ctx context.Context) ([]Company, error) {
	return cache.Do(s.memo, "company_list", listTTL, func() ([]Company, error) {
		return s.scanCompanies(ctx, companySelect+`
			GROUP BY sec_code, filer_name
			ORDER BY sec_code`)
	})
}

// SearchCompanies matches the keyword as a substring of the security code
// or the filer name. A blank keyword returns no rows without querying.
func (s *Store) SearchCompanies(ctx context.Context, keyword string) ([]Company, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, nil
	}
	like := "%" + keyword + "%"
	return s.scanCompanies(ctx, companySelect+`
		AND (sec_code LIKE ? OR filer_name LIKE ?)
		GROUP BY sec_code, filer_name
		ORDER BY sec_code`, like, like)
}

func (s *Store) scanCompanies(ctx context.Context, query string, args ...any) ([]Company, error) {
	rows, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing companies: %w", err)
	}
	defer rows.Close()

	var out []Company
	for rows.Next() {
		var (
			c      Company
			latest sql.NullString
		)
		if err := rows.Scan(&c.SecCode, &c.FilerName, &c.DocCount, &latest); err != nil {
			return nil, fmt.Errorf("scanning company: %w", err)
		}
		c.LatestDate = latest.String
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating companies: %w", err)
	}
	return out, nil
}

// CompanyInfo returns the header summary for one security code, or
// ErrNotFound when the code has no filings.
func (s *Store) CompanyInfo(ctx context.Context, secCode string) (CompanyInfo, error) {
	var (
		info  CompanyInfo
		first sql.NullString
		last  sql.NullString
	)
	err := s.queryRow(ctx, `SELECT
			sec_code,
			filer_name,
			COUNT(*) AS doc_count,
			MIN(file_date) AS first_date,
			MAX(file_date) AS latest_date
		FROM documents
		WHERE sec_code = ?
		GROUP BY sec_code, filer_name
		ORDER BY doc_count DESC
		LIMIT 1`, secCode).
		Scan(&info.SecCode, &info.FilerName, &info.DocCount, &first, &last)
	if errors.Is(err, sql.ErrNoRows) {
		return CompanyInfo{}, fmt.Errorf("company %s: %w", secCode, ErrNotFound)
	}
	if err != nil {
		return CompanyInfo{}, fmt.Errorf("reading company info: %w", err)
	}
	info.FirstDate = first.String
	info.LatestDate = last.String
	return info, nil
}

// CompanyDocuments returns all filings for one company, newest first.
func (s *Store) CompanyDocuments(ctx context.Context, secCode string) ([]Document, error) {
	return s.scanDocuments(ctx, `SELECT
			doc_id, sec_code, filer_name, doc_type_code, doc_description,
			period_start, period_end, submit_date, file_date
		FROM documents
		WHERE sec_code = ?
		ORDER BY file_date DESC, doc_id`, secCode)
}

// RecentDocuments returns the most recently filed documents across all
// companies, bounded by limit.
func (s *Store) RecentDocuments(ctx context.Context, limit int) ([]Document, error) {
	if limit <= 0 {
		limit = 30
	}
	key := "recent_documents:" + strconv.Itoa(limit)
	return cache.Do(s.memo, key, recentTTL, func() ([]Document, error) {
		return s.scanDocuments(ctx, `SELECT
				doc_id, sec_code, filer_name, doc_type_code, doc_description,
				period_start, period_end, submit_date, file_date
			FROM documents
			WHERE sec_code IS NOT NULL AND sec_code != ''
			ORDER BY file_date DESC, submit_date DESC
			LIMIT ?`, limit)
	})
}

func (s *Store) scanDocuments(ctx context.Context, query string, args ...any) ([]Document, error) {
	rows, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		var (
			d                            Document
			secCode, desc                sql.NullString
			pStart, pEnd, submit, fileDt sql.NullString
		)
		if err := rows.Scan(&d.DocID, &secCode, &d.FilerName, &d.DocTypeCode, &desc,
			&pStart, &pEnd, &submit, &fileDt); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		d.SecCode = secCode.String
		d.DocDescription = desc.String
		d.PeriodStart = pStart.String
		d.PeriodEnd = pEnd.String
		d.SubmitDate = submit.String
		d.FileDate = fileDt.String
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}
	return out, nil
}
