package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/onokazu777/edinet-viewer/internal/comparison"
	"github.com/onokazu777/edinet-viewer/internal/export"
)

var compareCSV bool

var compareCmd = &cobra.Command{
	Use:   "compare <code> <code> [code...]",
	Short: "Compare companies side by side",
	Long: `Compare the latest consolidated period of up to five companies
side by side, one column per company. Duplicate codes are dropped.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		codes := comparison.Dedup(args)

		st, _, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close()

		rows, err := st.MultiCompanyFinancials(cmd.Context(), codes)
		if err != nil {
			return fmt.Errorf("loading financials: %w", err)
		}
		result := comparison.Compare(rows, codes)

		if compareCSV {
			return export.WriteCSV(os.Stdout, export.ComparisonTable(result.Table))
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		header := "METRIC"
		for _, col := range result.Table.Columns {
			header += "\t" + col
		}
		fmt.Fprintln(w, header)
		for _, row := range result.Table.Rows {
			line := row.Label
			for _, v := range row.Values {
				line += "\t" + v
			}
			fmt.Fprintln(w, line)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		if result.Insufficient {
			fmt.Fprintln(os.Stderr, "fewer than two companies have financial data")
		}
		return nil
	},
}

func init() {
	compareCmd.Flags().BoolVar(&compareCSV, "csv", false, "print CSV instead of a table")
	rootCmd.AddCommand(compareCmd)
}
