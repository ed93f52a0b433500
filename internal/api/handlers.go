package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/onokazu777/edinet-viewer/internal/comparison"
	"github.com/onokazu777/edinet-viewer/internal/export"
	"github.com/onokazu777/edinet-viewer/internal/metrics"
	"github.com/onokazu777/edinet-viewer/internal/screening"
	"github.com/onokazu777/edinet-viewer/internal/store"
	"github.com/onokazu777/edinet-viewer/internal/textsearch"
)

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.store.Stats(r.Context())
	if err != nil {
		storeError(w, err)
		return
	}
	resp := StatsResponse{
		TotalDocs:        st.TotalDocs,
		TotalCompanies:   st.TotalCompanies,
		ParsedDocs:       st.ParsedDocs,
		DownloadedDocs:   st.DownloadedDocs,
		FinancialRecords: st.FinancialRecords,
		TextBlocks:       st.TextBlocks,
		DateFrom:         st.DateFrom,
		DateTo:           st.DateTo,
	}
	for _, c := range st.DocTypeCounts {
		resp.DocTypeCounts = append(resp.DocTypeCounts, DocTypeCountResponse{
			Code:  c.Code,
			Name:  metrics.DocTypeName(c.Code),
			Count: c.Count,
		})
	}
	jsonResponse(w, http.StatusOK, resp)
}

func (s *Server) handleCapabilities(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, s.store.Capabilities())
}

func (s *Server) handleCompanyList(w http.ResponseWriter, r *http.Request) {
	companies, err := s.store.CompanyList(r.Context())
	if err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, CompanyListResponse{Count: len(companies), Companies: companies})
}

func (s *Server) handleCompanySearch(w http.ResponseWriter, r *http.Request) {
	keyword := r.URL.Query().Get("q")
	companies, err := s.store.SearchCompanies(r.Context(), keyword)
	if err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, CompanyListResponse{Count: len(companies), Companies: companies})
}

func (s *Server) handleCompanyInfo(w http.ResponseWriter, r *http.Request) {
	info, err := s.store.CompanyInfo(r.Context(), r.PathValue("code"))
	if err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, info)
}

func (s *Server) handleCompanyDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.store.CompanyDocuments(r.Context(), r.PathValue("code"))
	if err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, documentList(docs))
}

func (s *Server) handleRecentDocuments(w http.ResponseWriter, r *http.Request) {
	limit := 30
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			errorResponse(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	docs, err := s.store.RecentDocuments(r.Context(), limit)
	if err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, documentList(docs))
}

func documentList(docs []store.Document) DocumentListResponse {
	resp := DocumentListResponse{Count: len(docs)}
	for _, d := range docs {
		resp.Documents = append(resp.Documents, DocumentResponse{
			Document:    d,
			DocTypeName: metrics.DocTypeName(d.DocTypeCode),
		})
	}
	return resp
}

// companyFinancialRows fetches one company's key financials and applies
// the optional consolidated filter from the query string.
func (s *Server) companyFinancialRows(r *http.Request) (string, []store.KeyFinancial, error) {
	code := r.PathValue("code")
	rows, err := s.store.KeyFinancials(r.Context(), code)
	if err != nil {
		return code, nil, err
	}
	if v := r.URL.Query().Get("consolidated"); v != "" {
		want, err := strconv.Atoi(v)
		if err != nil || (want != 0 && want != 1) {
			return code, nil, fmt.Errorf("consolidated must be 0 or 1: %w", errBadParam)
		}
		var filtered []store.KeyFinancial
		for _, row := range rows {
			if row.IsConsolidated == want {
				filtered = append(filtered, row)
			}
		}
		rows = filtered
	}
	return code, rows, nil
}

var errBadParam = errors.New("invalid parameter")

func (s *Server) handleCompanyFinancials(w http.ResponseWriter, r *http.Request) {
	code, rows, err := s.companyFinancialRows(r)
	if err != nil {
		s.paramOrStoreError(w, err)
		return
	}
	normalized := metrics.NormalizeAll(rows)
	jsonResponse(w, http.StatusOK, FinancialsResponse{SecCode: code, Count: len(normalized), Rows: normalized})
}

func (s *Server) handleCompanyFinancialsCSV(w http.ResponseWriter, r *http.Request) {
	code, rows, err := s.companyFinancialRows(r)
	if err != nil {
		s.paramOrStoreError(w, err)
		return
	}
	table := export.FinancialsTable(metrics.NormalizeAll(rows))
	s.writeCSV(w, code+"_financials.csv", table)
}

func (s *Server) handleCompanyFinancialsXLSX(w http.ResponseWriter, r *http.Request) {
	code, rows, err := s.companyFinancialRows(r)
	if err != nil {
		s.paramOrStoreError(w, err)
		return
	}
	table := export.FinancialsTable(metrics.NormalizeAll(rows))
	s.writeXLSX(w, code+"_financials.xlsx", "financials", table)
}

func (s *Server) handleFinancialDetails(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")
	consolidated := 1
	if v := r.URL.Query().Get("consolidated"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || (n != 0 && n != 1) {
			errorResponse(w, http.StatusBadRequest, "consolidated must be 0 or 1")
			return
		}
		consolidated = n
	}
	rows, err := s.store.FinancialDetails(r.Context(), code, consolidated)
	if err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, FinancialDetailsResponse{SecCode: code, Count: len(rows), Rows: rows})
}

func (s *Server) handleCompanyTextBlocks(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")
	blocks, err := s.store.CompanyTextBlocks(r.Context(), code)
	if err != nil {
		storeError(w, err)
		return
	}
	if period := r.URL.Query().Get("period_end"); period != "" {
		var filtered []store.TextBlock
		for _, b := range blocks {
			if b.PeriodEnd == period {
				filtered = append(filtered, b)
			}
		}
		blocks = filtered
	}
	jsonResponse(w, http.StatusOK, textSearchResponse(blocks, "", 10000))
}

// parseScreeningFilter reads the range parameters of a screening query.
// Monetary bounds are in oku-yen, ratio bounds in percent; absent
// parameters impose no constraint.
func parseScreeningFilter(r *http.Request) (screening.Filter, error) {
	var f screening.Filter
	var err error
	set := func(dst *screening.Range, name string) {
		if err != nil {
			return
		}
		dst.Min, err = floatParam(r, name+"_min", err)
		dst.Max, err = floatParam(r, name+"_max", err)
	}
	set(&f.Sales, "sales")
	set(&f.OperatingIncome, "operating_income")
	set(&f.NetIncome, "net_income")
	set(&f.TotalAssets, "total_assets")
	set(&f.NetAssets, "net_assets")
	set(&f.OperatingCF, "operating_cf")
	set(&f.EquityRatio, "equity_ratio")
	set(&f.OperatingMargin, "op_margin")
	return f, err
}

func floatParam(r *http.Request, name string, prev error) (*float64, error) {
	if prev != nil {
		return nil, prev
	}
	v := r.URL.Query().Get(name)
	if v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, fmt.Errorf("%s must be numeric: %w", name, errBadParam)
	}
	return &f, nil
}

func sortMetric(r *http.Request) (metrics.Metric, error) {
	v := r.URL.Query().Get("sort")
	if v == "" {
		return screening.DefaultSortMetric, nil
	}
	m := metrics.Metric(v)
	if _, ok := metrics.Labels[m]; !ok {
		return "", fmt.Errorf("unknown sort metric %q: %w", v, errBadParam)
	}
	return m, nil
}

func (s *Server) runScreening(r *http.Request) (ScreeningResponse, error) {
	filter, err := parseScreeningFilter(r)
	if err != nil {
		return ScreeningResponse{}, err
	}
	sortBy, err := sortMetric(r)
	if err != nil {
		return ScreeningResponse{}, err
	}
	snapshot, err := s.store.ScreeningSnapshot(r.Context())
	if err != nil {
		return ScreeningResponse{}, err
	}
	rows := screening.Run(snapshot, filter, sortBy)
	return ScreeningResponse{Universe: len(snapshot), Count: len(rows), Rows: rows}, nil
}

func (s *Server) handleScreening(w http.ResponseWriter, r *http.Request) {
	resp, err := s.runScreening(r)
	if err != nil {
		s.paramOrStoreError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, resp)
}

func (s *Server) handleScreeningCSV(w http.ResponseWriter, r *http.Request) {
	resp, err := s.runScreening(r)
	if err != nil {
		s.paramOrStoreError(w, err)
		return
	}
	s.writeCSV(w, "screening_result.csv", export.ScreeningTable(resp.Rows))
}

func (s *Server) handleScreeningXLSX(w http.ResponseWriter, r *http.Request) {
	resp, err := s.runScreening(r)
	if err != nil {
		s.paramOrStoreError(w, err)
		return
	}
	s.writeXLSX(w, "screening_result.xlsx", "screening", export.ScreeningTable(resp.Rows))
}

// compareCodes extracts the comma-separated company selection; this is
// the deep-linking parameter shared with the company views.
func compareCodes(r *http.Request) []string {
	raw := r.URL.Query().Get("codes")
	if raw == "" {
		return nil
	}
	var codes []string
	for _, c := range strings.Split(raw, ",") {
		if c = strings.TrimSpace(c); c != "" {
			codes = append(codes, c)
		}
	}
	return codes
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	codes := comparison.Dedup(compareCodes(r))
	rows, err := s.store.MultiCompanyFinancials(r.Context(), codes)
	if err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, comparison.Compare(rows, codes))
}

func (s *Server) handleCompareCSV(w http.ResponseWriter, r *http.Request) {
	codes := comparison.Dedup(compareCodes(r))
	rows, err := s.store.MultiCompanyFinancials(r.Context(), codes)
	if err != nil {
		storeError(w, err)
		return
	}
	result := comparison.Compare(rows, codes)
	s.writeCSV(w, "comparison.csv", export.ComparisonTable(result.Table))
}

func (s *Server) handleCompareSeries(w http.ResponseWriter, r *http.Request) {
	metric := metrics.Metric(r.URL.Query().Get("metric"))
	if metric == "" {
		metric = metrics.MetricSales
	}
	if _, ok := metrics.Labels[metric]; !ok {
		errorResponse(w, http.StatusBadRequest, fmt.Sprintf("unknown metric %q", string(metric)))
		return
	}
	codes := comparison.Dedup(compareCodes(r))
	rows, err := s.store.MultiCompanyFinancials(r.Context(), codes)
	if err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, SeriesResponse{
		Metric: string(metric),
		Series: comparison.Series(rows, codes, metric),
	})
}

func (s *Server) handleTextBlockSections(w http.ResponseWriter, r *http.Request) {
	sections, err := s.store.TextBlockSections(r.Context())
	if err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, SectionsResponse{Sections: sections})
}

func (s *Server) handleTextBlockSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := 0
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errorResponse(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		limit = n
	}
	query := store.TextBlockQuery{
		SecCode:      q.Get("sec_code"),
		SectionLabel: q.Get("section"),
		Keyword:      strings.TrimSpace(q.Get("keyword")),
		PeriodEnd:    q.Get("period_end"),
		Limit:        limit,
	}
	blocks, err := s.store.SearchTextBlocks(r.Context(), query)
	if err != nil {
		storeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, textSearchResponse(blocks, query.Keyword, textsearch.PreviewBudget))
}

func (s *Server) handleTextBlockSearchCSV(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := 0
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errorResponse(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		limit = n
	}
	query := store.TextBlockQuery{
		SecCode:      q.Get("sec_code"),
		SectionLabel: q.Get("section"),
		Keyword:      strings.TrimSpace(q.Get("keyword")),
		PeriodEnd:    q.Get("period_end"),
		Limit:        limit,
	}
	blocks, err := s.store.SearchTextBlocks(r.Context(), query)
	if err != nil {
		storeError(w, err)
		return
	}
	s.writeCSV(w, "text_blocks_search_result.csv", export.TextBlocksTable(blocks))
}

func (s *Server) handleTextBlockExport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	docID, element := q.Get("doc_id"), q.Get("element")
	if docID == "" || element == "" {
		errorResponse(w, http.StatusBadRequest, "doc_id and element are required")
		return
	}
	block, err := s.store.TextBlockByID(r.Context(), docID, element)
	if err != nil {
		storeError(w, err)
		return
	}
	section := block.SectionLabel
	if section == "" {
		section = block.ElementName
	}
	filename := fmt.Sprintf("%s_%s_%s.txt", block.SecCode, block.PeriodEnd, section)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	// Export is verbatim; only on-screen previews truncate.
	w.Write([]byte(block.TextContent))
}

func textSearchResponse(blocks []store.TextBlock, keyword string, budget int) TextSearchResponse {
	resp := TextSearchResponse{Count: len(blocks)}
	for _, b := range blocks {
		preview := textsearch.Truncate(b.TextContent, budget)
		text := preview.Text
		if keyword != "" {
			text = textsearch.Highlight(text, keyword)
		}
		resp.Results = append(resp.Results, TextBlockResult{
			DocID:        b.DocID,
			SecCode:      b.SecCode,
			FilerName:    b.FilerName,
			PeriodStart:  b.PeriodStart,
			PeriodEnd:    b.PeriodEnd,
			ElementName:  b.ElementName,
			SectionLabel: b.SectionLabel,
			Preview:      text,
			Length:       preview.Length,
			Truncated:    preview.Truncated,
		})
	}
	return resp
}

func (s *Server) paramOrStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, errBadParam) {
		errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	storeError(w, err)
}

func (s *Server) writeCSV(w http.ResponseWriter, filename string, table export.Table) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	if err := export.WriteCSV(w, table); err != nil {
		s.logger.Error("writing csv export", "file", filename, "error", err)
	}
}

func (s *Server) writeXLSX(w http.ResponseWriter, filename, sheet string, table export.Table) {
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	if err := export.WriteXLSX(w, sheet, table); err != nil {
		s.logger.Error("writing xlsx export", "file", filename, "error", err)
	}
}
