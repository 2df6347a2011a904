package model

import (
	"fmt"
	"text/tabwriter"

	"github.com/reformlab/reformer/internal/flowsheet"
	"github.com/reformlab/reformer/pkg/db"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Short:   "List registered flowsheet models",
	Aliases: []string{"ls"},
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := db.Migrate(); err != nil {
			return err
		}

		importer := flowsheet.NewImporter(db.Connection())
		defs, err := importer.List(cmd.Context())
		if err != nil {
			return err
		}
		if len(defs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No models registered.")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tENGINE\tVERSION\tSOURCE\tUPDATED")
		for _, def := range defs {
			source := def.SourceID
			if source == "" {
				source = "file"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				def.Name, def.Engine, def.Version, source,
				def.UpdatedAt.Format("2006-01-02 15:04"))
		}
		return w.Flush()
	},
}

func init() {
	Cmd.AddCommand(listCmd)
}
