package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/onokazu777/edinet-viewer/internal/metrics"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print whole-database statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close()

		stats, err := st.Stats(cmd.Context())
		if err != nil {
			return fmt.Errorf("loading stats: %w", err)
		}

		fmt.Printf("Documents:         %d\n", stats.TotalDocs)
		fmt.Printf("Companies:         %d\n", stats.TotalCompanies)
		fmt.Printf("Parsed:            %d\n", stats.ParsedDocs)
		fmt.Printf("Downloaded:        %d\n", stats.DownloadedDocs)
		fmt.Printf("Financial records: %d\n", stats.FinancialRecords)
		fmt.Printf("Text blocks:       %d\n", stats.TextBlocks)
		if stats.DateFrom != "" || stats.DateTo != "" {
			fmt.Printf("Submission dates:  %s to %s\n", stats.DateFrom, stats.DateTo)
		}

		if len(stats.DocTypeCounts) > 0 {
			fmt.Println()
			fmt.Println("By document type:")
			for _, dt := range stats.DocTypeCounts {
				fmt.Printf("  %-24s %d\n", metrics.DocTypeName(dt.Code), dt.Count)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
