package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/onokazu777/edinet-viewer/internal/export"
	"github.com/onokazu777/edinet-viewer/internal/metrics"
	"github.com/onokazu777/edinet-viewer/internal/screening"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export data as CSV or XLSX",
	Long: `Export financials, screening results, the company list, filing
history or a single text block. Output format follows the --out file
extension; without --out, CSV goes to stdout.`,
}

var exportFinancialsCmd = &cobra.Command{
	Use:   "financials <code>",
	Short: "Export a company's key financials",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close()

		rows, err := st.KeyFinancials(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("loading financials: %w", err)
		}
		return writeExport(export.FinancialsTable(metrics.NormalizeAll(rows)), "financials")
	},
}

var exportScreeningCmd = &cobra.Command{
	Use:   "screening",
	Short: "Export the full screening snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close()

		snapshot, err := st.ScreeningSnapshot(cmd.Context())
		if err != nil {
			return fmt.Errorf("loading screening snapshot: %w", err)
		}
		rows := screening.Run(snapshot, screening.Filter{}, screening.DefaultSortMetric)
		return writeExport(export.ScreeningTable(rows), "screening")
	},
}

var exportCompaniesCmd = &cobra.Command{
	Use:   "companies",
	Short: "Export the company list",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close()

		companies, err := st.CompanyList(cmd.Context())
		if err != nil {
			return fmt.Errorf("loading company list: %w", err)
		}
		return writeExport(export.CompaniesTable(companies), "companies")
	},
}

var exportDocumentsCmd = &cobra.Command{
	Use:   "documents <code>",
	Short: "Export a company's filing history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close()

		docs, err := st.CompanyDocuments(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("loading documents: %w", err)
		}
		return writeExport(export.DocumentsTable(docs), "documents")
	},
}

var exportTextBlockCmd = &cobra.Command{
	Use:   "textblock <doc_id> <element_name>",
	Short: "Export one text block verbatim",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close()

		block, err := st.TextBlockByID(cmd.Context(), args[0], args[1])
		if err != nil {
			return fmt.Errorf("loading text block: %w", err)
		}
		w, closeFn, err := exportWriter()
		if err != nil {
			return err
		}
		defer closeFn()
		_, err = io.WriteString(w, block.TextContent)
		return err
	},
}

// writeExport renders a table as XLSX when --out ends in .xlsx, CSV
// otherwise.
func writeExport(t export.Table, sheet string) error {
	w, closeFn, err := exportWriter()
	if err != nil {
		return err
	}
	defer closeFn()

	if strings.EqualFold(filepath.Ext(exportOut), ".xlsx") {
		return export.WriteXLSX(w, sheet, t)
	}
	return export.WriteCSV(w, t)
}

func exportWriter() (io.Writer, func(), error) {
	if exportOut == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(exportOut)
	if err != nil {
		return nil, nil, fmt.Errorf("creating %s: %w", exportOut, err)
	}
	return f, func() { f.Close() }, nil
}

func init() {
	exportCmd.PersistentFlags().StringVar(&exportOut, "out", "", "output file (.csv or .xlsx); stdout when empty")
	exportCmd.AddCommand(exportFinancialsCmd)
	exportCmd.AddCommand(exportScreeningCmd)
	exportCmd.AddCommand(exportCompaniesCmd)
	exportCmd.AddCommand(exportDocumentsCmd)
	exportCmd.AddCommand(exportTextBlockCmd)
	rootCmd.AddCommand(exportCmd)
}
