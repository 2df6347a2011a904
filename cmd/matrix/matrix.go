package matrix

import (
	"github.com/spf13/cobra"
)

const (
	usage   = "matrix"
	short   = "Generate and validate case matrices"
	example = "reformer matrix generate --output matrix.csv"
)

// Cmd is the matrix parent command.
var Cmd = &cobra.Command{
	Use:        usage,
	Short:      short,
	Aliases:    []string{"m"},
	SuggestFor: []string{"grid", "doe", "cases"},
	Example:    example,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Usage()
	},
}

func init() {
	Cmd.AddCommand(newGenerateCommand())
	Cmd.AddCommand(newValidateCommand())
}
