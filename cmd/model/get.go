package model

import (
	"fmt"

	"github.com/reformlab/reformer/internal/flowsheet"
	"github.com/reformlab/reformer/pkg/db"
	"github.com/spf13/cobra"
)

var getSource bool

var getCmd = &cobra.Command{
	Use:     "get <name>",
	Short:   "Show one registered flowsheet model",
	Aliases: []string{"show"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := db.Migrate(); err != nil {
			return err
		}

		importer := flowsheet.NewImporter(db.Connection())
		def, record, err := importer.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if getSource {
			fmt.Fprint(out, record.Source)
			return nil
		}

		writeLine(cmd, out, "Name:     %s\n", record.Name)
		writeLine(cmd, out, "Engine:   %s\n", record.Engine)
		writeLine(cmd, out, "Version:  %s\n", record.Version)
		writeLine(cmd, out, "Checksum: %s\n", record.Checksum)
		writeLine(cmd, out, "Streams:  %d\n", len(def.Streams))
		if record.Repo != "" {
			writeLine(cmd, out, "Origin:   %s@%s (%s)\n", record.Repo, record.Ref, record.Commit)
		}
		return nil
	},
}

func init() {
	getCmd.Flags().BoolVar(&getSource, "source", false, "Print the raw YAML definition instead of the summary")
	Cmd.AddCommand(getCmd)
}
