package runs

import (
	"fmt"
	"text/tabwriter"

	"github.com/reformlab/reformer/pkg/client"
	"github.com/spf13/cobra"
)

const (
	usage   = "runs"
	short   = "Inspect simulation runs and batch passes on a live instance"
	example = "reformer runs list --status failed"
)

// Cmd is the runs parent command.
var Cmd = &cobra.Command{
	Use:        usage,
	Short:      short,
	Aliases:    []string{"r"},
	SuggestFor: []string{"simulations", "results"},
	Example:    example,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Usage()
	},
}

var server string

func init() {
	Cmd.PersistentFlags().StringVar(&server, "server", "", "Reformer server base URL (default: local instance)")
	Cmd.AddCommand(newListCommand())
	Cmd.AddCommand(newGetCommand())
	Cmd.AddCommand(newBatchesCommand())
}

func newListCommand() *cobra.Command {
	var (
		status   string
		biooilID int64
		limit    int
	)

	cmd := &cobra.Command{
		Use:     "list",
		Short:   "List simulation runs",
		Aliases: []string{"ls"},
		RunE: func(cmd *cobra.Command, args []string) error {
			sims, err := client.New(server).Simulations(cmd.Context(), client.SimulationQuery{
				Status:   status,
				BiooilID: biooilID,
				Limit:    limit,
			})
			if err != nil {
				return err
			}
			if len(sims) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No runs found.")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "RUN\tOIL\tSTATUS\tMASS ERR %\tDATE")
			for _, sim := range sims {
				fmt.Fprintf(w, "%d\t%d\t%s\t%.3f\t%s\n",
					sim.ID, sim.BiooilID, sim.ConvergenceStatus,
					sim.MassBalanceErrorPercent,
					sim.SimulationDate.Format("2006-01-02 15:04"))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "filter by convergence status")
	cmd.Flags().Int64Var(&biooilID, "biooil", 0, "filter by bio-oil id")
	cmd.Flags().IntVarP(&limit, "limit", "l", 50, "maximum rows")

	return cmd
}

func newGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one simulation run with its results",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var id int64
			if _, err := fmt.Sscanf(args[0], "%d", &id); err != nil {
				return fmt.Errorf("invalid run id %q", args[0])
			}

			sim, err := client.New(server).Simulation(cmd.Context(), id)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Run:        %d\n", sim.ID)
			fmt.Fprintf(out, "Bio-oil:    %d\n", sim.BiooilID)
			fmt.Fprintf(out, "Status:     %s (%d iterations)\n", sim.ConvergenceStatus, sim.ConvergenceIterations)
			fmt.Fprintf(out, "Mass err:   %.3f %%\n", sim.MassBalanceErrorPercent)
			fmt.Fprintf(out, "Energy err: %.3f %%\n", sim.EnergyBalanceErrorPercent)
			if sim.Conditions != nil {
				fmt.Fprintf(out, "Conditions: %.0f C, %.1f bar, S/C %.1f\n",
					sim.Conditions.ReformerTemperatureC,
					sim.Conditions.ReformerPressureBar,
					sim.Conditions.SteamToCarbonRatio)
			}
			if sim.Product != nil {
				fmt.Fprintf(out, "H2 yield:   %.3f kg (%.2f %% purity)\n",
					sim.Product.H2YieldKg, sim.Product.H2PurityPercent)
			}
			if sim.Warnings != "" {
				fmt.Fprintf(out, "Warnings:   %s\n", sim.Warnings)
			}
			return nil
		},
	}
}

func newBatchesCommand() *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "batches",
		Short: "List batch passes",
		RunE: func(cmd *cobra.Command, args []string) error {
			batches, err := client.New(server).Batches(cmd.Context(), status)
			if err != nil {
				return err
			}
			if len(batches) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No batch passes found.")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tMODEL\tSTATUS\tPROGRESS\tSTARTED")
			for _, b := range batches {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d/%d\t%s\n",
					b.ID, b.Model, b.Status, b.Completed+b.Skipped, b.Total,
					b.StartedAt.Format("2006-01-02 15:04"))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "filter by batch status")

	return cmd
}
