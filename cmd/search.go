package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/onokazu777/edinet-viewer/internal/store"
	"github.com/onokazu777/edinet-viewer/internal/textsearch"
)

var searchText bool
var searchSection string
var searchLimit int

var searchCmd = &cobra.Command{
	Use:   "search <keyword>",
	Short: "Search companies by code or name",
	Long: `Search companies by security code or filer name. With --text the
keyword is matched against disclosure text blocks instead, printing a
short preview of each hit.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close()

		keyword := args[0]
		if searchText {
			return runTextSearch(cmd, st, keyword)
		}

		companies, err := st.SearchCompanies(cmd.Context(), keyword)
		if err != nil {
			return fmt.Errorf("searching companies: %w", err)
		}
		if len(companies) == 0 {
			fmt.Println("No companies matched.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "CODE\tNAME\tDOCS\tLATEST")
		for _, c := range companies {
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", c.SecCode, c.FilerName, c.DocCount, c.LatestDate)
		}
		return w.Flush()
	},
}

func runTextSearch(cmd *cobra.Command, st *store.Store, keyword string) error {
	blocks, err := st.SearchTextBlocks(cmd.Context(), store.TextBlockQuery{
		Keyword:      keyword,
		SectionLabel: searchSection,
		Limit:        searchLimit,
	})
	if err != nil {
		return fmt.Errorf("searching text blocks: %w", err)
	}
	if len(blocks) == 0 {
		fmt.Println("No text blocks matched.")
		return nil
	}

	for _, b := range blocks {
		fmt.Printf("%s %s  %s  (%s)\n", b.SecCode, b.FilerName, b.SectionLabel, b.PeriodEnd)
		preview := textsearch.Truncate(b.TextContent, 200)
		line := strings.ReplaceAll(preview.Text, "\n", " ")
		if preview.Truncated {
			line += "..."
		}
		fmt.Printf("  %s\n\n", line)
	}
	return nil
}

func init() {
	searchCmd.Flags().BoolVar(&searchText, "text", false, "search disclosure text blocks instead of companies")
	searchCmd.Flags().StringVar(&searchSection, "section", "", "restrict text search to one section label")
	searchCmd.Flags().IntVar(&searchLimit, "limit", store.DefaultSearchLimit, "maximum text search results")
	rootCmd.AddCommand(searchCmd)
}
