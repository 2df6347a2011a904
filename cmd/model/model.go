package model

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/reformlab/reformer/pkg/flowsheet"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const (
	usage   = "model"
	short   = "Manage flowsheet model definitions"
	example = "reformer model apply --path models/"
)

// Cmd is the model parent command.
var Cmd = &cobra.Command{
	Use:        usage,
	Short:      short,
	Aliases:    []string{"mdl"},
	SuggestFor: []string{"flowsheet", "registry"},
	Example:    example,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Usage()
	},
}

// collectDefinitions walks paths gathering every YAML document that parses
// as a flowsheet definition. Blank documents between separators are skipped.
func collectDefinitions(paths []string) ([]*flowsheet.Definition, error) {
	if len(paths) == 0 {
		paths = []string{"."}
	}

	var defs []*flowsheet.Definition
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
				if d.IsDir() {
					return nil
				}
				if !isYAML(path) {
					return nil
				}
				return appendDefinitions(path, &defs)
			}); err != nil {
				return nil, err
			}
		} else {
			if !isYAML(p) {
				return nil, fmt.Errorf("%s is not a YAML file", p)
			}
			if err := appendDefinitions(p, &defs); err != nil {
				return nil, err
			}
		}
	}
	return defs, nil
}

func appendDefinitions(path string, defs *[]*flowsheet.Definition) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	for {
		var def flowsheet.Definition
		if err := dec.Decode(&def); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return fmt.Errorf("%s: %w", path, err)
		}
		if isBlankDefinition(&def) {
			continue
		}
		*defs = append(*defs, &def)
	}

	return nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

func isBlankDefinition(def *flowsheet.Definition) bool {
	if def == nil {
		return true
	}
	if strings.TrimSpace(def.Metadata.Name) != "" {
		return false
	}
	if def.APIVersion != "" || def.Kind != "" || def.Engine != "" {
		return false
	}
	if len(def.Components) > 0 || len(def.Streams) > 0 {
		return false
	}
	return true
}

func writeLine(cmd *cobra.Command, w io.Writer, format string, args ...any) {
	if _, err := fmt.Fprintf(w, format, args...); err != nil {
		cmd.PrintErrf("write output: %v\n", err)
	}
}
