package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/onokazu777/edinet-viewer/internal/export"
	"github.com/onokazu777/edinet-viewer/internal/metrics"
	"github.com/onokazu777/edinet-viewer/internal/screening"
)

var screenSort string
var screenCSV bool

var screenFlagMetrics = []struct {
	flag  string
	label string
}{
	{"sales", "sales in oku-yen"},
	{"operating-income", "operating income in oku-yen"},
	{"net-income", "net income in oku-yen"},
	{"total-assets", "total assets in oku-yen"},
	{"net-assets", "net assets in oku-yen"},
	{"operating-cf", "operating cash flow in oku-yen"},
	{"equity-ratio", "equity ratio in percent"},
	{"op-margin", "operating margin in percent"},
}

var screenCmd = &cobra.Command{
	Use:   "screen",
	Short: "Screen companies by financial criteria",
	Long: `Screen the latest consolidated period of every company against
range criteria. Monetary bounds are in oku-yen, ratio bounds in percent.
Only flags you set become bounds.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := screeningFilterFromFlags(cmd)
		if err != nil {
			return err
		}
		sortBy := metrics.Metric(screenSort)
		if _, ok := metrics.Labels[sortBy]; !ok {
			return fmt.Errorf("unknown sort metric %q", screenSort)
		}

		st, _, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close()

		snapshot, err := st.ScreeningSnapshot(cmd.Context())
		if err != nil {
			return fmt.Errorf("loading screening snapshot: %w", err)
		}
		rows := screening.Run(snapshot, f, sortBy)

		if screenCSV {
			return export.WriteCSV(os.Stdout, export.ScreeningTable(rows))
		}

		fmt.Printf("%d companies matched\n\n", len(rows))
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "CODE\tNAME\tPERIOD\tSALES\tOP INCOME\tNET INCOME\tEQUITY%\tMARGIN%")
		for _, r := range rows {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				r.SecCode, r.FilerName, r.PeriodEnd,
				metrics.Format(r.Sales), metrics.Format(r.OperatingIncome),
				metrics.Format(r.NetIncome), metrics.Format(r.EquityRatio),
				metrics.Format(r.OperatingMargin))
		}
		return w.Flush()
	},
}

// screeningFilterFromFlags builds the filter from whichever range flags
// were set on the command line.
func screeningFilterFromFlags(cmd *cobra.Command) (screening.Filter, error) {
	var f screening.Filter
	fields := map[string]*screening.Range{
		"sales":            &f.Sales,
		"operating-income": &f.OperatingIncome,
		"net-income":       &f.NetIncome,
		"total-assets":     &f.TotalAssets,
		"net-assets":       &f.NetAssets,
		"operating-cf":     &f.OperatingCF,
		"equity-ratio":     &f.EquityRatio,
		"op-margin":        &f.OperatingMargin,
	}
	for name, r := range fields {
		for _, bound := range []string{"min", "max"} {
			flag := name + "-" + bound
			if !cmd.Flags().Changed(flag) {
				continue
			}
			v, err := cmd.Flags().GetFloat64(flag)
			if err != nil {
				return f, fmt.Errorf("reading --%s: %w", flag, err)
			}
			if bound == "min" {
				r.Min = &v
			} else {
				r.Max = &v
			}
		}
	}
	return f, nil
}

func init() {
	for _, m := range screenFlagMetrics {
		screenCmd.Flags().Float64(m.flag+"-min", 0, "minimum "+m.label)
		screenCmd.Flags().Float64(m.flag+"-max", 0, "maximum "+m.label)
	}
	screenCmd.Flags().StringVar(&screenSort, "sort", string(screening.DefaultSortMetric), "metric to sort by, descending")
	screenCmd.Flags().BoolVar(&screenCSV, "csv", false, "print CSV instead of a table")
	rootCmd.AddCommand(screenCmd)
}
