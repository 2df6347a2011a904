package model

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/reformlab/reformer/internal/flowsheet"
	"github.com/reformlab/reformer/pkg/db"
	"github.com/spf13/cobra"
)

var applyPaths []string

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Register flowsheet definitions in the model registry",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := db.Migrate(); err != nil {
			return err
		}

		files, err := collectFiles(applyPaths)
		if err != nil {
			return err
		}
		if len(files) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No flowsheet definitions found.")
			return nil
		}

		importer := flowsheet.NewImporter(db.Connection())
		applied := 0
		for _, path := range files {
			results, err := importer.ApplyFile(cmd.Context(), path, &flowsheet.ApplyOptions{
				Source:     "file",
				Provenance: &flowsheet.Provenance{Path: path},
			})
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			for _, res := range results {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s (version %s)\n",
					res.Model.Name, res.Action, res.Model.Version)
				applied++
			}
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Applied %d model definition(s)\n", applied)
		return nil
	},
}

func init() {
	applyCmd.Flags().StringSliceVarP(&applyPaths, "path", "p", nil, "Paths to flowsheet definition files or directories (default: current directory)")
	Cmd.AddCommand(applyCmd)
}

// collectFiles expands paths into the YAML files beneath them, in walk
// order, so ApplyFile sees whole files and multi-document sources intact.
func collectFiles(paths []string) ([]string, error) {
	if len(paths) == 0 {
		paths = []string{"."}
	}

	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			if err := filepath.WalkDir(p, func(path string, d os.DirEntry, walkErr error) error {
				if walkErr != nil {
					return walkErr
				}
				if d.IsDir() || !isYAML(path) {
					return nil
				}
				files = append(files, path)
				return nil
			}); err != nil {
				return nil, err
			}
		} else {
			if !isYAML(p) {
				return nil, fmt.Errorf("%s is not a YAML file", p)
			}
			files = append(files, p)
		}
	}
	return files, nil
}
