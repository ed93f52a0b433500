package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/onokazu777/edinet-viewer/internal/metrics"
	"github.com/onokazu777/edinet-viewer/internal/store"
)

// view identifies which screen the browser is showing.
type view int

const (
	viewList view = iota
	viewDetail
)

// detailMsg carries a company's financials and filing history loaded in
// the background.
type detailMsg struct {
	secCode    string
	financials []store.KeyFinancial
	documents  []store.Document
	err        error
}

// Model is the bubbletea model for the interactive company browser.
type Model struct {
	ctx context.Context
	st  *store.Store

	companies   []store.Company
	visibleIdxs []int
	cursor      int
	filter      string
	filtering   bool

	view    view
	detail  detailMsg
	loading bool
	spin    spinner.Model

	width  int
	height int
}

// NewModel creates the browser over a preloaded company list.
func NewModel(ctx context.Context, st *store.Store, companies []store.Company) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = highlightStyle

	m := Model{
		ctx:       ctx,
		st:        st,
		companies: companies,
		spin:      sp,
		width:     100,
		height:    24,
	}
	m.applyFilter()
	return m
}

func (m Model) Init() tea.Cmd {
	return m.spin.Tick
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case detailMsg:
		m.loading = false
		m.detail = msg
		m.view = viewDetail
		return m, nil

	case tea.KeyMsg:
		if m.view == viewDetail {
			return m.updateDetail(msg)
		}
		if m.filtering {
			return m.updateFilter(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit

	case "up", "k":
		m.moveCursor(-1)

	case "down", "j":
		m.moveCursor(1)

	case "home":
		if len(m.visibleIdxs) > 0 {
			m.cursor = 0
		}

	case "end":
		if len(m.visibleIdxs) > 0 {
			m.cursor = len(m.visibleIdxs) - 1
		}

	case "/":
		m.filtering = true
		m.filter = ""
		m.applyFilter()
		return m, nil

	case "enter":
		if m.cursor < 0 || m.cursor >= len(m.visibleIdxs) {
			return m, nil
		}
		c := m.companies[m.visibleIdxs[m.cursor]]
		m.loading = true
		return m, m.loadDetail(c.SecCode)
	}

	return m, nil
}

func (m Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.filtering = false
		m.filter = ""
		m.applyFilter()
		return m, nil

	case "enter":
		m.filtering = false
		return m, nil

	case "backspace":
		if len(m.filter) > 0 {
			m.filter = m.filter[:len(m.filter)-1]
			m.applyFilter()
		}
		return m, nil

	default:
		if len(msg.String()) == 1 {
			m.filter += msg.String()
			m.applyFilter()
		}
		return m, nil
	}
}

func (m Model) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc", "backspace", "enter":
		m.view = viewList
		return m, nil
	}
	return m, nil
}

// loadDetail fetches financials and filing history off the update loop.
func (m Model) loadDetail(secCode string) tea.Cmd {
	ctx, st := m.ctx, m.st
	return func() tea.Msg {
		fins, err := st.KeyFinancials(ctx, secCode)
		if err != nil {
			return detailMsg{secCode: secCode, err: err}
		}
		docs, err := st.CompanyDocuments(ctx, secCode)
		if err != nil {
			return detailMsg{secCode: secCode, err: err}
		}
		return detailMsg{secCode: secCode, financials: fins, documents: docs}
	}
}

func (m Model) View() string {
	if m.view == viewDetail {
		return m.viewDetail()
	}
	return m.viewList()
}

func (m Model) viewList() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Companies") + "\n\n")

	if m.filtering {
		b.WriteString(highlightStyle.Render("  Filter: ") + m.filter + "█\n\n")
	} else if m.filter != "" {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  Filter: %s (/ to change, esc in filter to clear)", m.filter)) + "\n\n")
	}

	header := fmt.Sprintf("  %-6s %-36s %6s %12s", "Code", "Name", "Docs", "Latest")
	b.WriteString(dimStyle.Render(header) + "\n")
	b.WriteString(dimStyle.Render("  "+strings.Repeat("─", min(m.width-4, 64))) + "\n")

	listHeight := m.height - 10
	if listHeight < 5 {
		listHeight = 5
	}

	start := 0
	if m.cursor >= listHeight {
		start = m.cursor - listHeight + 1
	}
	end := start + listHeight
	if end > len(m.visibleIdxs) {
		end = len(m.visibleIdxs)
	}

	if len(m.visibleIdxs) == 0 {
		b.WriteString(dimStyle.Render("  No companies match the filter\n"))
	}

	for vi := start; vi < end; vi++ {
		c := m.companies[m.visibleIdxs[vi]]

		cursor := "  "
		nameStyle := lipgloss.NewStyle()
		if vi == m.cursor {
			cursor = highlightStyle.Render("> ")
			nameStyle = nameStyle.Bold(true)
		}

		line := fmt.Sprintf("%s%-6s %-36s %6d %12s",
			cursor, c.SecCode, nameStyle.Render(truncate(c.FilerName, 36)), c.DocCount, c.LatestDate)
		b.WriteString(line + "\n")
	}

	if len(m.visibleIdxs) > listHeight {
		b.WriteString(dimStyle.Render(fmt.Sprintf("\n  Showing %d-%d of %d", start+1, end, len(m.visibleIdxs))) + "\n")
	}

	b.WriteString("\n")
	if m.loading {
		b.WriteString("  " + m.spin.View() + " loading...\n")
	}
	b.WriteString(dimStyle.Render("  enter open • / filter • q quit") + "\n")

	return b.String()
}

func (m Model) viewDetail() string {
	var b strings.Builder

	d := m.detail
	name := d.secCode
	if len(d.financials) > 0 {
		name = fmt.Sprintf("%s %s", d.secCode, d.financials[0].FilerName)
	} else if len(d.documents) > 0 {
		name = fmt.Sprintf("%s %s", d.secCode, d.documents[0].FilerName)
	}
	b.WriteString(titleStyle.Render(name) + "\n\n")

	if d.err != nil {
		b.WriteString(errStyle.Render(fmt.Sprintf("  error: %v", d.err)) + "\n\n")
		b.WriteString(dimStyle.Render("  esc back • q quit") + "\n")
		return b.String()
	}

	b.WriteString(highlightStyle.Render("  Key financials (oku-yen)") + "\n")
	if len(d.financials) == 0 {
		b.WriteString(dimStyle.Render("  no financial data\n"))
	} else {
		header := fmt.Sprintf("  %-12s %-4s %12s %12s %12s %8s %8s", "Period", "Cons", "Sales", "Op income", "Net income", "Equity%", "Margin%")
		b.WriteString(dimStyle.Render(header) + "\n")
		rows := d.financials
		if len(rows) > 10 {
			rows = rows[:10]
		}
		for _, k := range rows {
			r := metrics.Normalize(k)
			cons := ""
			if k.IsConsolidated == 1 {
				cons = "連結"
			}
			b.WriteString(fmt.Sprintf("  %-12s %-4s %12s %12s %12s %8s %8s\n",
				k.PeriodEnd, cons,
				metrics.Format(r.Sales), metrics.Format(r.OperatingIncome),
				metrics.Format(r.NetIncome), metrics.Format(r.EquityRatio),
				metrics.Format(r.OperatingMargin)))
		}
	}

	b.WriteString("\n" + highlightStyle.Render("  Filing history") + "\n")
	if len(d.documents) == 0 {
		b.WriteString(dimStyle.Render("  no filings\n"))
	} else {
		docs := d.documents
		if len(docs) > 10 {
			docs = docs[:10]
		}
		for _, doc := range docs {
			b.WriteString(fmt.Sprintf("  %-12s %-16s %s\n",
				doc.SubmitDate, metrics.DocTypeName(doc.DocTypeCode), truncate(doc.DocDescription, 48)))
		}
		if len(d.documents) > 10 {
			b.WriteString(dimStyle.Render(fmt.Sprintf("  ...and %d more\n", len(d.documents)-10)))
		}
	}

	b.WriteString("\n" + dimStyle.Render("  esc back • q quit") + "\n")
	return b.String()
}

func (m *Model) moveCursor(delta int) {
	if len(m.visibleIdxs) == 0 {
		return
	}
	m.cursor += delta
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor >= len(m.visibleIdxs) {
		m.cursor = len(m.visibleIdxs) - 1
	}
}

func (m *Model) applyFilter() {
	lower := strings.ToLower(m.filter)
	m.visibleIdxs = m.visibleIdxs[:0]
	for i, c := range m.companies {
		if m.filter == "" ||
			strings.Contains(strings.ToLower(c.FilerName), lower) ||
			strings.Contains(c.SecCode, m.filter) {
			m.visibleIdxs = append(m.visibleIdxs, i)
		}
	}
	if m.cursor >= len(m.visibleIdxs) {
		m.cursor = max(0, len(m.visibleIdxs)-1)
	}
}

// Browse loads the company list and runs the interactive browser until
// the user quits.
func Browse(ctx context.Context, st *store.Store) error {
	companies, err := st.CompanyList(ctx)
	if err != nil {
		return fmt.Errorf("loading company list: %w", err)
	}

	m := NewModel(ctx, st, companies)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running browser: %w", err)
	}
	return nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-1]) + "…"
}

// styles
var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99")).BorderStyle(lipgloss.DoubleBorder()).BorderBottom(true).Padding(0, 1)
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)
