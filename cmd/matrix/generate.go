package matrix

import (
	"fmt"

	"github.com/reformlab/reformer/internal/biooil"
	"github.com/reformlab/reformer/internal/matrix"
	"github.com/reformlab/reformer/pkg/db"
	"github.com/reformlab/reformer/pkg/env"
	"github.com/spf13/cobra"
)

func newGenerateCommand() *cobra.Command {
	var (
		output   string
		limit    int
		feedRate float64
	)

	cmd := &cobra.Command{
		Use:     "generate",
		Short:   "Cross eligible bio-oils with the condition grid into a case matrix CSV",
		Aliases: []string{"gen", "g"},
		Example: "reformer matrix generate --output matrix.csv --limit 30",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := db.Migrate(); err != nil {
				return err
			}

			vars := env.Variables()
			if limit <= 0 {
				limit = vars.MaxBiooils
			}
			if feedRate <= 0 {
				feedRate = vars.FeedRate
			}

			oils, err := biooil.Service(cmd.Context()).Select(&biooil.SelectRequest{Limit: limit})
			if err != nil {
				return err
			}

			rows, err := matrix.Build(&matrix.BuildRequest{Oils: oils, FeedRateKgh: feedRate})
			if err != nil {
				return err
			}

			if err := matrix.WriteFile(output, rows); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d cases (%d bio-oils x %d conditions) to %s\n",
				len(rows), len(oils), matrix.Size(), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "matrix.csv", "destination CSV path")
	cmd.Flags().IntVarP(&limit, "limit", "l", 0, "maximum bio-oils to include (default from environment)")
	cmd.Flags().Float64Var(&feedRate, "feed-rate", 0, "bio-oil feed rate in kg/h (default from environment)")

	return cmd
}
