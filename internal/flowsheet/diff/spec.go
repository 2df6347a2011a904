// Package diff compares flowsheet definitions on disk against the model
// registry, so operators can inspect drift before applying.
package diff

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/reformlab/reformer/internal/models"
	"github.com/reformlab/reformer/pkg/flowsheet"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// ModelSpec captures the fields that participate in diffing: everything
// semantic in a definition, nothing positional.
type ModelSpec struct {
	Name       string
	Engine     string
	Version    string
	Labels     map[string]string
	Components []string
	Inputs     flowsheet.Inputs
	Outputs    flowsheet.Outputs
	Streams    []flowsheet.Stream
}

// FromDefinition normalises a flowsheet definition into a ModelSpec.
func FromDefinition(def *flowsheet.Definition) ModelSpec {
	return ModelSpec{
		Name:       def.Metadata.Name,
		Engine:     def.Engine,
		Version:    def.Version,
		Labels:     cloneStringMap(def.Metadata.Labels),
		Components: append([]string(nil), def.Components...),
		Inputs:     cloneInputs(def.Inputs),
		Outputs:    cloneOutputs(def.Outputs),
		Streams:    append([]flowsheet.Stream(nil), def.Streams...),
	}
}

// LoadDefinitions walks the provided paths collecting model definitions.
func LoadDefinitions(paths []string) (map[string]ModelSpec, error) {
	if len(paths) == 0 {
		paths = []string{"."}
	}
	specs := make(map[string]ModelSpec)
	for _, p := range paths {
		if err := collectPath(p, func(def *flowsheet.Definition) error {
			name := def.Metadata.Name
			if _, exists := specs[name]; exists {
				return fmt.Errorf("duplicate model name %q", name)
			}
			specs[name] = FromDefinition(def)
			return nil
		}); err != nil {
			return nil, err
		}
	}
	return specs, nil
}

// LoadDatabaseSpecs loads every registered model into specs keyed by name.
func LoadDatabaseSpecs(ctx context.Context, db *gorm.DB) (map[string]ModelSpec, error) {
	var registered []models.ModelDefinition
	if err := db.WithContext(ctx).Find(&registered).Error; err != nil {
		return nil, err
	}

	specs := make(map[string]ModelSpec, len(registered))
	for i := range registered {
		model := &registered[i]
		def, err := flowsheet.Parse([]byte(model.Source))
		if err != nil {
			return nil, fmt.Errorf("model %s stored source: %w", model.Name, err)
		}
		specs[model.Name] = FromDefinition(def)
	}
	return specs, nil
}

func collectPath(path string, fn func(*flowsheet.Definition) error) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return filepath.WalkDir(path, func(p string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if d.IsDir() {
				return nil
			}
			if !isYAML(p) {
				return nil
			}
			return decodeDefinitions(p, fn)
		})
	}
	if !isYAML(path) {
		return fmt.Errorf("%s is not a YAML file", path)
	}
	return decodeDefinitions(path, fn)
}

func decodeDefinitions(path string, fn func(*flowsheet.Definition) error) error {
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
		if err := def.Validate(); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if err := fn(&def); err != nil {
			return err
		}
	}
	return nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

func cloneStringMap(in map[string]string) map[string]string {
	if len(in) == 0 {
		return map[string]string{}
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func cloneInputs(in flowsheet.Inputs) flowsheet.Inputs {
	in.Fractions = cloneStringMap(in.Fractions)
	in.Setpoints = cloneStringMap(in.Setpoints)
	return in
}

func cloneOutputs(out flowsheet.Outputs) flowsheet.Outputs {
	out.Product = cloneStringMap(out.Product)
	out.Energy = cloneStringMap(out.Energy)
	return out
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
	return len(def.Streams) == 0
}
