package matrix

import (
	"fmt"

	"github.com/reformlab/reformer/internal/matrix"
	"github.com/spf13/cobra"
)

func newValidateCommand() *cobra.Command {
	var input string

	cmd := &cobra.Command{
		Use:     "validate",
		Short:   "Check a case matrix CSV for structural defects",
		Aliases: []string{"lint", "v"},
		Example: "reformer matrix validate --input matrix.csv",
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := matrix.ReadFile(input)
			if err != nil {
				return err
			}

			if err := matrix.Validate(rows); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d cases, %d bio-oils, fingerprint %s\n",
				input, len(rows), len(rows)/matrix.Size(), matrix.Fingerprint(rows))
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "case matrix CSV to validate (required)")
	cobra.CheckErr(cmd.MarkFlagRequired("input"))

	return cmd
}
