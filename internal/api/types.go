package api

import (
	"github.com/onokazu777/edinet-viewer/internal/comparison"
	"github.com/onokazu777/edinet-viewer/internal/metrics"
	"github.com/onokazu777/edinet-viewer/internal/store"
)

// DocTypeCountResponse is one entry of the document type breakdown with
// its resolved display name.
type DocTypeCountResponse struct {
	Code  string `json:"code"`
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// StatsResponse is the API response for whole-database statistics.
type StatsResponse struct {
	TotalDocs        int64                  `json:"total_docs"`
	TotalCompanies   int64                  `json:"total_companies"`
	ParsedDocs       int64                  `json:"parsed_docs"`
	DownloadedDocs   int64                  `json:"downloaded_docs"`
	FinancialRecords int64                  `json:"financial_records"`
	TextBlocks       int64                  `json:"text_blocks"`
	DateFrom         string                 `json:"date_from"`
	DateTo           string                 `json:"date_to"`
	DocTypeCounts    []DocTypeCountResponse `json:"doc_type_counts"`
}

// CompanyListResponse is the API response for company listings.
type CompanyListResponse struct {
	Count     int             `json:"count"`
	Companies []store.Company `json:"companies"`
}

// DocumentResponse is one filing with its resolved type name.
type DocumentResponse struct {
	store.Document
	DocTypeName string `json:"doc_type_name"`
}

// DocumentListResponse is the API response for filing listings.
type DocumentListResponse struct {
	Count     int                `json:"count"`
	Documents []DocumentResponse `json:"documents"`
}

// FinancialsResponse is the API response for a company's key financials,
// in display units.
type FinancialsResponse struct {
	SecCode string        `json:"sec_code"`
	Count   int           `json:"count"`
	Rows    []metrics.Row `json:"rows"`
}

// FinancialDetailsResponse is the API response for line-item financials.
type FinancialDetailsResponse struct {
	SecCode string                  `json:"sec_code"`
	Count   int                     `json:"count"`
	Rows    []store.FinancialDetail `json:"rows"`
}

// ScreeningResponse is the API response for a screening query.
type ScreeningResponse struct {
	Universe int           `json:"universe"`
	Count    int           `json:"count"`
	Rows     []metrics.Row `json:"rows"`
}

// SeriesResponse is the API response for comparison time series.
type SeriesResponse struct {
	Metric string                     `json:"metric"`
	Series []comparison.CompanySeries `json:"series"`
}

// TextBlockResult is one text search hit with its display preview. The
// preview is truncated and keyword-highlighted; Length reports the full
// text length so the view can note the cut.
type TextBlockResult struct {
	DocID        string `json:"doc_id"`
	SecCode      string `json:"sec_code"`
	FilerName    string `json:"filer_name"`
	PeriodStart  string `json:"period_start"`
	PeriodEnd    string `json:"period_end"`
	ElementName  string `json:"element_name"`
	SectionLabel string `json:"section_label"`
	Preview      string `json:"preview"`
	Length       int    `json:"length"`
	Truncated    bool   `json:"truncated"`
}

// TextSearchResponse is the API response for text block searches.
type TextSearchResponse struct {
	Count   int               `json:"count"`
	Results []TextBlockResult `json:"results"`
}

// SectionsResponse is the API response for the section label list.
type SectionsResponse struct {
	Sections []string `json:"sections"`
}
