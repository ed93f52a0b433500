package store

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

const testSchema = `
CREATE TABLE documents (
	doc_id          TEXT PRIMARY KEY,
	sec_code        TEXT,
	filer_name      TEXT NOT NULL,
	doc_type_code   TEXT NOT NULL,
	doc_description TEXT,
	period_start    TEXT,
	period_end      TEXT,
	submit_date     TEXT,
	file_date       TEXT,
	parse_status    INTEGER NOT NULL DEFAULT 0,
	dl_status       INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE key_financials (
	sec_code         TEXT NOT NULL,
	filer_name       TEXT,
	period_start     TEXT,
	period_end       TEXT,
	is_consolidated  INTEGER NOT NULL DEFAULT 0,
	sales            REAL,
	operating_income REAL,
	ordinary_income  REAL,
	net_income       REAL,
	total_assets     REAL,
	net_assets       REAL,
	operating_cf     REAL,
	investing_cf     REAL,
	financing_cf     REAL
);

CREATE VIEW v_key_financials AS SELECT * FROM key_financials;

CREATE TABLE text_blocks (
	doc_id        TEXT NOT NULL,
	sec_code      TEXT,
	filer_name    TEXT,
	period_start  TEXT,
	period_end    TEXT,
	element_name  TEXT NOT NULL,
	section_label TEXT,
	text_content  TEXT
);
`

const testSeed = `
INSERT INTO documents VALUES
	('D001', '7203', 'トヨタ自動車', '120', '有価証券報告書-第120期', '2023-04-01', '2024-03-31', '2024-06-20', '2024-06-20', 1, 1),
	('D002', '7203', 'トヨタ自動車', '120', '有価証券報告書-第119期', '2022-04-01', '2023-03-31', '2023-06-21', '2023-06-21', 1, 1),
	('D003', '7267', '本田技研工業', '120', '有価証券報告書', '2023-04-01', '2024-03-31', '2024-06-19', '2024-06-19', 1, 1),
	('D004', '7267', '本田技研工業', '140', '四半期報告書', '2024-04-01', '2024-06-30', '2024-08-09', '2024-08-09', 0, 1),
	('D005', NULL, '提出者不明', '120', NULL, NULL, NULL, '2024-01-01', '2024-01-01', 0, 0);

INSERT INTO key_financials VALUES
	('7203', 'トヨタ自動車', '2023-04-01', '2024-03-31', 1, 45000000000000, 5350000000000, 6965000000000, 4940000000000, 90000000000000, 33750000000000, 4500000000000, -4700000000000, 300000000000),
	('7203', 'トヨタ自動車', '2023-04-01', '2024-03-31', 0, 17000000000000, NULL, NULL, NULL, NULL, NULL, NULL, NULL, NULL),
	('7203', 'トヨタ自動車', '2022-04-01', '2023-03-31', 1, 37000000000000, 2700000000000, NULL, 2450000000000, 74000000000000, 28000000000000, 2900000000000, NULL, NULL),
	('7267', '本田技研工業', '2023-04-01', '2024-03-31', 1, 20000000000000, 1380000000000, NULL, 1100000000000, 30000000000000, 12000000000000, 747000000000, NULL, NULL);

INSERT INTO text_blocks VALUES
	('D001', '7203', 'トヨタ自動車', '2023-04-01', '2024-03-31', 'RiskTextBlock', '事業等のリスク', '為替変動リスクが存在する。'),
	('D001', '7203', 'トヨタ自動車', '2023-04-01', '2024-03-31', 'MDATextBlock', '経営者による分析', '営業利益は増加した。'),
	('D003', '7267', '本田技研工業', '2023-04-01', '2024-03-31', 'RiskTextBlock', '事業等のリスク', '部品供給のリスクがある。');
`

// newTestStore seeds a throwaway SQLite database and opens it read-only.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	path := seedTestDB(t, testSchema+testSeed)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	s, err := Open(context.Background(), Options{Dialect: DialectSQLite, Path: path}, logger)
	if err != nil {
		t.Fatalf("opening test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func seedTestDB(t *testing.T, ddl string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "edinet_test.sqlite3")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("creating test database: %v", err)
	}
	defer db.Close()
	if _, err := db.Exec(ddl); err != nil {
		t.Fatalf("seeding test database: %v", err)
	}
	return path
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(context.Background(), Options{
		Dialect: DialectSQLite,
		Path:    filepath.Join(t.TempDir(), "nope.sqlite3"),
	}, nil)
	if !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
}

func TestOpenMissingDocumentsTable(t *testing.T) {
	path := seedTestDB(t, `CREATE TABLE other (id INTEGER);`)
	_, err := Open(context.Background(), Options{Dialect: DialectSQLite, Path: path}, nil)
	if !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
}

func TestCapabilities(t *testing.T) {
	s := newTestStore(t)
	caps := s.Capabilities()
	if !caps.HasDocuments || !caps.HasKeyFinancials || !caps.HasKeyFinancialsView || !caps.HasTextBlocks {
		t.Errorf("unexpected capabilities: %+v", caps)
	}
	if caps.HasFinancials {
		t.Error("fixture has no financials table")
	}
}

func TestStats(t *testing.T) {
	s := newTestStore(t)
	st, err := s.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st.TotalDocs != 5 {
		t.Errorf("total docs: expected 5, got %d", st.TotalDocs)
	}
	if st.TotalCompanies != 2 {
		t.Errorf("companies: expected 2 (null codes excluded), got %d", st.TotalCompanies)
	}
	if st.ParsedDocs != 3 {
		t.Errorf("parsed: expected 3, got %d", st.ParsedDocs)
	}
	if st.DownloadedDocs != 4 {
		t.Errorf("downloaded: expected 4, got %d", st.DownloadedDocs)
	}
	if st.FinancialRecords != 4 {
		t.Errorf("financial records: expected 4, got %d", st.FinancialRecords)
	}
	if st.TextBlocks != 3 {
		t.Errorf("text blocks: expected 3, got %d", st.TextBlocks)
	}
	if st.DateFrom != "2023-06-21" || st.DateTo != "2024-08-09" {
		t.Errorf("date range: got %s to %s", st.DateFrom, st.DateTo)
	}
	if len(st.DocTypeCounts) != 2 {
		t.Fatalf("doc type counts: expected 2 types, got %d", len(st.DocTypeCounts))
	}
	if st.DocTypeCounts[0].Code != "120" || st.DocTypeCounts[0].Count != 4 {
		t.Errorf("most common type: got %+v", st.DocTypeCounts[0])
	}
}

func TestCompanyList(t *testing.T) {
	s := newTestStore(t)
	companies, err := s.CompanyList(context.Background())
	if err != nil {
		t.Fatalf("CompanyList: %v", err)
	}
	if len(companies) != 2 {
		t.Fatalf("expected 2 companies, got %d", len(companies))
	}
	if companies[0].SecCode != "7203" {
		t.Errorf("expected code order, got %s first", companies[0].SecCode)
	}
	if companies[0].DocCount != 2 {
		t.Errorf("doc count: expected 2, got %d", companies[0].DocCount)
	}
	if companies[0].LatestDate != "2024-06-20" {
		t.Errorf("latest date: got %s", companies[0].LatestDate)
	}
}

func TestSearchCompanies(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	byCode, err := s.SearchCompanies(ctx, "7203")
	if err != nil {
		t.Fatalf("SearchCompanies: %v", err)
	}
	if len(byCode) != 1 || byCode[0].FilerName != "トヨタ自動車" {
		t.Errorf("code search: got %+v", byCode)
	}

	byName, err := s.SearchCompanies(ctx, "本田")
	if err != nil {
		t.Fatalf("SearchCompanies: %v", err)
	}
	if len(byName) != 1 || byName[0].SecCode != "7267" {
		t.Errorf("name search: got %+v", byName)
	}

	blank, err := s.SearchCompanies(ctx, "   ")
	if err != nil {
		t.Fatalf("SearchCompanies: %v", err)
	}
	if blank != nil {
		t.Errorf("blank keyword should return nothing, got %+v", blank)
	}
}

func TestCompanyInfo(t *testing.T) {
	s := newTestStore(t)
	info, err := s.CompanyInfo(context.Background(), "7267")
	if err != nil {
		t.Fatalf("CompanyInfo: %v", err)
	}
	if info.FilerName != "本田技研工業" || info.DocCount != 2 {
		t.Errorf("unexpected info: %+v", info)
	}
	if info.FirstDate != "2024-06-19" || info.LatestDate != "2024-08-09" {
		t.Errorf("date range: %s to %s", info.FirstDate, info.LatestDate)
	}

	if _, err := s.CompanyInfo(context.Background(), "0000"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCompanyDocuments(t *testing.T) {
	s := newTestStore(t)
	docs, err := s.CompanyDocuments(context.Background(), "7203")
	if err != nil {
		t.Fatalf("CompanyDocuments: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}
	if docs[0].DocID != "D001" {
		t.Errorf("newest filing should come first, got %s", docs[0].DocID)
	}
}

func TestRecentDocuments(t *testing.T) {
	s := newTestStore(t)
	docs, err := s.RecentDocuments(context.Background(), 2)
	if err != nil {
		t.Fatalf("RecentDocuments: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected limit of 2, got %d", len(docs))
	}
	if docs[0].DocID != "D004" {
		t.Errorf("expected most recent filing first, got %s", docs[0].DocID)
	}
	for _, d := range docs {
		if d.SecCode == "" {
			t.Error("documents without a security code should be excluded")
		}
	}
}

func TestKeyFinancials(t *testing.T) {
	s := newTestStore(t)
	rows, err := s.KeyFinancials(context.Background(), "7203")
	if err != nil {
		t.Fatalf("KeyFinancials: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	// Newest period first, consolidated before non-consolidated.
	if rows[0].PeriodEnd != "2024-03-31" || rows[0].IsConsolidated != 1 {
		t.Errorf("unexpected first row: %+v", rows[0])
	}
	if rows[1].IsConsolidated != 0 {
		t.Errorf("expected non-consolidated second, got %+v", rows[1])
	}
	if rows[0].Sales == nil || *rows[0].Sales != 45_000_000_000_000 {
		t.Errorf("sales: got %v", rows[0].Sales)
	}
	if rows[1].OperatingIncome != nil {
		t.Errorf("null figure should scan as nil, got %v", rows[1].OperatingIncome)
	}
}

func TestMultiCompanyFinancials(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rows, err := s.MultiCompanyFinancials(ctx, []string{"7203", "7267"})
	if err != nil {
		t.Fatalf("MultiCompanyFinancials: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(rows))
	}

	empty, err := s.MultiCompanyFinancials(ctx, nil)
	if err != nil {
		t.Fatalf("MultiCompanyFinancials: %v", err)
	}
	if empty != nil {
		t.Errorf("empty selection should not touch storage, got %+v", empty)
	}
}

func TestScreeningSnapshot(t *testing.T) {
	s := newTestStore(t)
	rows, err := s.ScreeningSnapshot(context.Background())
	if err != nil {
		t.Fatalf("ScreeningSnapshot: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected one row per company, got %d", len(rows))
	}
	for _, r := range rows {
		if r.IsConsolidated != 1 {
			t.Errorf("snapshot must be consolidated only: %+v", r)
		}
		if r.PeriodEnd != "2024-03-31" {
			t.Errorf("expected latest period, got %s", r.PeriodEnd)
		}
	}
	if rows[0].SecCode != "7203" || rows[1].SecCode != "7267" {
		t.Errorf("expected code-ordered output: %s, %s", rows[0].SecCode, rows[1].SecCode)
	}
}

func TestFinancialDetailsAbsentTable(t *testing.T) {
	s := newTestStore(t)
	details, err := s.FinancialDetails(context.Background(), "7203", 1)
	if err != nil {
		t.Fatalf("FinancialDetails: %v", err)
	}
	if details != nil {
		t.Errorf("absent table should degrade to empty, got %+v", details)
	}
}

func TestTextBlockSections(t *testing.T) {
	s := newTestStore(t)
	sections, err := s.TextBlockSections(context.Background())
	if err != nil {
		t.Fatalf("TextBlockSections: %v", err)
	}
	if len(sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(sections))
	}
	if sections[0] != "事業等のリスク" && sections[1] != "事業等のリスク" {
		t.Errorf("missing expected section: %v", sections)
	}
}

func TestSearchTextBlocks(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	byKeyword, err := s.SearchTextBlocks(ctx, TextBlockQuery{Keyword: "リスク"})
	if err != nil {
		t.Fatalf("SearchTextBlocks: %v", err)
	}
	if len(byKeyword) != 2 {
		t.Fatalf("keyword search: expected 2 hits, got %d", len(byKeyword))
	}

	combined, err := s.SearchTextBlocks(ctx, TextBlockQuery{
		Keyword:      "リスク",
		SecCode:      "7203",
		SectionLabel: "事業等のリスク",
		PeriodEnd:    "2024-03-31",
	})
	if err != nil {
		t.Fatalf("SearchTextBlocks: %v", err)
	}
	if len(combined) != 1 || combined[0].DocID != "D001" {
		t.Errorf("combined filters: got %+v", combined)
	}

	all, err := s.SearchTextBlocks(ctx, TextBlockQuery{})
	if err != nil {
		t.Fatalf("SearchTextBlocks: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("empty filter should browse all within the limit, got %d", len(all))
	}
}

func TestCompanyTextBlocks(t *testing.T) {
	s := newTestStore(t)
	blocks, err := s.CompanyTextBlocks(context.Background(), "7203")
	if err != nil {
		t.Fatalf("CompanyTextBlocks: %v", err)
	}
	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(blocks))
	}
}

func TestTextBlockByID(t *testing.T) {
	s := newTestStore(t)
	block, err := s.TextBlockByID(context.Background(), "D001", "RiskTextBlock")
	if err != nil {
		t.Fatalf("TextBlockByID: %v", err)
	}
	if block.SectionLabel != "事業等のリスク" {
		t.Errorf("unexpected block: %+v", block)
	}

	if _, err := s.TextBlockByID(context.Background(), "D999", "Nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestClampLimit(t *testing.T) {
	cases := []struct {
		in   int
		want int
	}{
		{0, DefaultSearchLimit},
		{5, MinSearchLimit},
		{50, 50},
		{1000, MaxSearchLimit},
	}
	for _, c := range cases {
		if got := clampLimit(c.in); got != c.want {
			t.Errorf("clampLimit(%d) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestRebind(t *testing.T) {
	sqlite := &Store{dialect: DialectSQLite}
	if got := sqlite.rebind("SELECT ? AND ?"); got != "SELECT ? AND ?" {
		t.Errorf("sqlite queries must pass through, got %q", got)
	}

	pg := &Store{dialect: DialectPostgres}
	if got := pg.rebind("SELECT ? AND ?"); got != "SELECT $1 AND $2" {
		t.Errorf("postgres placeholders: got %q", got)
	}
}

func TestInPlaceholders(t *testing.T) {
	if got := inPlaceholders(3); got != "?,?,?" {
		t.Errorf("inPlaceholders(3) = %q", got)
	}
	if got := inPlaceholders(1); got != "?" {
		t.Errorf("inPlaceholders(1) = %q", got)
	}
}
