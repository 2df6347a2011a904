package model

import (
	"sort"
	"strings"

	modeldiff "github.com/reformlab/reformer/internal/flowsheet/diff"
	"github.com/reformlab/reformer/pkg/db"
	"github.com/spf13/cobra"
)

var diffPaths []string

var diffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Show changes between flowsheet definitions and the registry",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := db.Migrate(); err != nil {
			return err
		}

		desired, err := modeldiff.LoadDefinitions(diffPaths)
		if err != nil {
			return err
		}

		specs, err := modeldiff.LoadDatabaseSpecs(cmd.Context(), db.Connection())
		if err != nil {
			return err
		}

		printDiff(cmd, modeldiff.Compare(desired, specs))
		return nil
	},
}

func init() {
	diffCmd.Flags().StringSliceVarP(&diffPaths, "path", "p", nil, "Paths to flowsheet definition files or directories")
	Cmd.AddCommand(diffCmd)
}

func printDiff(cmd *cobra.Command, diff modeldiff.Diff) {
	out := cmd.OutOrStdout()

	if diff.Empty() {
		writeLine(cmd, out, "No changes detected.\n")
		return
	}

	if len(diff.Creates) > 0 {
		writeLine(cmd, out, "Creates:\n")
		sort.Slice(diff.Creates, func(i, j int) bool { return diff.Creates[i].Name < diff.Creates[j].Name })
		for _, spec := range diff.Creates {
			writeLine(cmd, out, "  - %s\n", spec.Name)
		}
		writeLine(cmd, out, "\n")
	}

	if len(diff.Updates) > 0 {
		writeLine(cmd, out, "Updates:\n")
		sort.Slice(diff.Updates, func(i, j int) bool { return diff.Updates[i].Name < diff.Updates[j].Name })
		for _, upd := range diff.Updates {
			writeLine(cmd, out, "  - %s\n", upd.Name)
			writeLine(cmd, out, "%s\n", indent(upd.Diff, "    "))
		}
		writeLine(cmd, out, "\n")
	}

	if len(diff.Deletes) > 0 {
		writeLine(cmd, out, "Deletes:\n")
		sort.Slice(diff.Deletes, func(i, j int) bool { return diff.Deletes[i].Name < diff.Deletes[j].Name })
		for _, spec := range diff.Deletes {
			writeLine(cmd, out, "  - %s\n", spec.Name)
		}
	}
}

func indent(s, prefix string) string {
	lines := strings.Split(strings.TrimSuffix(s, "\n"), "\n")
	for i := range lines {
		lines[i] = prefix + lines[i]
	}
	return strings.Join(lines, "\n")
}
