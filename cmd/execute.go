package cmd

import (
	"github.com/reformlab/reformer/cmd/batch"
	"github.com/reformlab/reformer/cmd/console"
	"github.com/reformlab/reformer/cmd/matrix"
	"github.com/reformlab/reformer/cmd/model"
	"github.com/reformlab/reformer/cmd/runs"
	"github.com/reformlab/reformer/cmd/start"
	"github.com/reformlab/reformer/cmd/stats"
	"github.com/spf13/cobra"
)

var cmds = []*cobra.Command{
	start.Cmd,
	batch.Cmd,
	matrix.Cmd,
	model.Cmd,
	runs.Cmd,
	stats.Cmd,
	console.Cmd,
}

// Execute builds the command tree and executes commands.
func Execute() error {
	command := &cobra.Command{
		Use: "reformer",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Usage()
		},
	}

	for _, c := range cmds {
		command.AddCommand(c)
	}

	return command.Execute()
}
