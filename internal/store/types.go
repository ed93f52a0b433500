package store

// Document is one filing as registered by the ingestion pipeline.
type Document struct {
	DocID          string `json:"doc_id"`
	SecCode        string `json:"sec_code"`
	FilerName      string `json:"filer_name"`
	DocTypeCode    string `json:"doc_type_code"`
	DocDescription string `json:"doc_description"`
	PeriodStart    string `json:"period_start"`
	PeriodEnd      string `json:"period_end"`
	SubmitDate     string `json:"submit_date"`
	FileDate       string `json:"file_date"`
}

// Company is a distinct (sec_code, filer_name) pair observed across filings.
type Company struct {
	SecCode    string `json:"sec_code"`
	FilerName  string `json:"filer_name"`
	DocCount   int64  `json:"doc_count"`
	LatestDate string `json:"latest_date"`
}

// CompanyInfo is the header summary for a single company.
type CompanyInfo struct {
	SecCode    string `json:"sec_code"`
	FilerName  string `json:"filer_name"`
	DocCount   int64  `json:"doc_count"`
	FirstDate  string `json:"first_date"`
	LatestDate string `json:"latest_date"`
}

// KeyFinancial is one row of the v_key_financials view: the headline
// figures for one company, one fiscal period, consolidated or not.
// Monetary fields are in yen and nullable; a nil pointer means the
// figure was not disclosed or not parsed, never zero.
type KeyFinancial struct {
	SecCode         string   `json:"sec_code"`
	FilerName       string   `json:"filer_name"`
	PeriodStart     string   `json:"period_start"`
	PeriodEnd       string   `json:"period_end"`
	IsConsolidated  int      `json:"is_consolidated"`
	Sales           *float64 `json:"sales"`
	OperatingIncome *float64 `json:"operating_income"`
	OrdinaryIncome  *float64 `json:"ordinary_income"`
	NetIncome       *float64 `json:"net_income"`
	TotalAssets     *float64 `json:"total_assets"`
	NetAssets       *float64 `json:"net_assets"`
	OperatingCF     *float64 `json:"operating_cf"`
	InvestingCF     *float64 `json:"investing_cf"`
	FinancingCF     *float64 `json:"financing_cf"`
}

// FinancialDetail is a line-item row from the optional financials table.
type FinancialDetail struct {
	DocID          string   `json:"doc_id"`
	PeriodStart    string   `json:"period_start"`
	PeriodEnd      string   `json:"period_end"`
	AccountElement string   `json:"account_element"`
	AccountLabel   string   `json:"account_label"`
	Context        string   `json:"context"`
	Unit           string   `json:"unit"`
	Value          *float64 `json:"value"`
	IsConsolidated int      `json:"is_consolidated"`
	StatementType  string   `json:"statement_type"`
}

// TextBlock is one free-text disclosure section of a filing.
type TextBlock struct {
	DocID        string `json:"doc_id"`
	SecCode      string `json:"sec_code"`
	FilerName    string `json:"filer_name"`
	PeriodStart  string `json:"period_start"`
	PeriodEnd    string `json:"period_end"`
	ElementName  string `json:"element_name"`
	SectionLabel string `json:"section_label"`
	TextContent  string `json:"text_content"`
}

// DocTypeCount is one entry of the per-document-type breakdown.
type DocTypeCount struct {
	Code  string `json:"code"`
	Count int64  `json:"count"`
}

// Stats holds whole-database aggregates for the dashboard front page.
type Stats struct {
	TotalDocs        int64          `json:"total_docs"`
	TotalCompanies   int64          `json:"total_companies"`
	ParsedDocs       int64          `json:"parsed_docs"`
	DownloadedDocs   int64          `json:"downloaded_docs"`
	FinancialRecords int64          `json:"financial_records"`
	TextBlocks       int64          `json:"text_blocks"`
	DateFrom         string         `json:"date_from"`
	DateTo           string         `json:"date_to"`
	DocTypeCounts    []DocTypeCount `json:"doc_type_counts"`
}

// TextBlockQuery is the filter set for SearchTextBlocks. Zero-value
// fields impose no constraint; all provided filters are ANDed.
type TextBlockQuery struct {
	SecCode      string
	SectionLabel string
	Keyword      string
	PeriodEnd    string
	Limit        int
}
