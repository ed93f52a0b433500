package cmd

import (
	"github.com/spf13/cobra"

	"github.com/onokazu777/edinet-viewer/internal/tui"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse companies interactively",
	Long:  `Open the interactive terminal browser: a filterable company list with per-company financials and filing history.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close()
		return tui.Browse(cmd.Context(), st)
	},
}

func init() {
	rootCmd.AddCommand(browseCmd)
}
