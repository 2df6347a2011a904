package stats

import (
	"fmt"
	"text/tabwriter"

	"github.com/reformlab/reformer/pkg/client"
	"github.com/spf13/cobra"
)

const (
	usage   = "stats"
	short   = "Show aggregate convergence and yield statistics"
	example = "reformer stats"
)

var server string

// Cmd is the stats command.
var Cmd = &cobra.Command{
	Use:        usage,
	Short:      short,
	SuggestFor: []string{"summary", "report"},
	Example:    example,
	RunE:       stats,
}

func init() {
	Cmd.Flags().StringVar(&server, "server", "", "Reformer server base URL (default: local instance)")
}

func stats(cmd *cobra.Command, args []string) error {
	resp, err := client.New(server).Stats(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	s := resp.Simulations

	fmt.Fprintf(out, "Runs:        %d total (%d converged, %d warning, %d failed)\n",
		s.Total, s.Converged, s.Warning, s.Failed)
	fmt.Fprintf(out, "Convergence: %.1f %%\n", s.ConvergenceRate*100)
	fmt.Fprintf(out, "Avg yield:   %.3f kg H2\n", s.AvgH2YieldKg)
	fmt.Fprintf(out, "Avg mass err: %.3f %%\n", s.AvgMassErrorPct)
	fmt.Fprintf(out, "Last 24h:    %d runs\n", s.Recent24h)
	fmt.Fprintf(out, "Batches:     %d total (%d running, %d completed, %d failed)\n",
		resp.Batches.Total, resp.Batches.Running, resp.Batches.Completed, resp.Batches.Failed)

	if len(resp.BestYields) > 0 {
		fmt.Fprintln(out, "\nBest yields:")
		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "RUN\tOIL\tYIELD KG\tT C\tP BAR\tS/C")
		for _, y := range resp.BestYields {
			fmt.Fprintf(w, "%d\t%d\t%.3f\t%.0f\t%.1f\t%.1f\n",
				y.SimulationID, y.BiooilID, y.H2YieldKg,
				y.TemperatureC, y.PressureBar, y.SteamToCarbon)
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}

	return nil
}
