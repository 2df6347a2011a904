// Package flowsheet maintains the model registry: parsed, validated
// flowsheet definitions stored with their source text so every batch can
// name the exact model it ran against.
package flowsheet

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/reformlab/reformer/internal/metrics"
	"github.com/reformlab/reformer/internal/models"
	"github.com/reformlab/reformer/pkg/flowsheet"
	"github.com/reformlab/reformer/pkg/jsonmap"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// ErrModelNotFound is returned when a name matches neither the registry
// nor the builtin model.
var ErrModelNotFound = errors.New("flowsheet model not found")

// Action describes what Apply did with a definition.
type Action string

const (
	ActionCreated   Action = "created"
	ActionUpdated   Action = "updated"
	ActionUnchanged Action = "unchanged"
)

// Importer coordinates persistence of flowsheet model definitions.
type Importer struct {
	db *gorm.DB
}

// NewImporter creates a new importer. The provided db connection must be
// non-nil.
func NewImporter(dbConn *gorm.DB) *Importer {
	if dbConn == nil {
		panic("flowsheet importer requires a database connection")
	}
	return &Importer{db: dbConn}
}

// Provenance captures metadata describing the origin of a definition.
type Provenance struct {
	SourceID string
	Repo     string
	Ref      string
	Commit   string
	Path     string
}

// ApplyOptions control optional behaviors for ApplyWithOptions.
type ApplyOptions struct {
	// Source labels where the apply came from: file, git, or api.
	Source     string
	Provenance *Provenance
}

// ApplyResult reports the registry record and what happened to it.
type ApplyResult struct {
	Model  *models.ModelDefinition
	Def    *flowsheet.Definition
	Action Action
}

// Apply registers the raw YAML definition under its metadata name.
func (i *Importer) Apply(ctx context.Context, raw []byte) (*ApplyResult, error) {
	return i.ApplyWithOptions(ctx, raw, nil)
}

// ApplyWithOptions validates and upserts one definition. Re-applying
// identical source is a no-op, so git sync can apply every file on every
// pass; a changed checksum updates the stored model in place.
func (i *Importer) ApplyWithOptions(ctx context.Context, raw []byte, opts *ApplyOptions) (*ApplyResult, error) {
	def, err := flowsheet.Parse(raw)
	if err != nil {
		return nil, err
	}

	checksum := Checksum(raw)
	result := &ApplyResult{Def: def}

	err = i.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.ModelDefinition
		findErr := tx.Where("name = ?", def.Metadata.Name).First(&existing).Error

		switch {
		case errors.Is(findErr, gorm.ErrRecordNotFound):
			model := &models.ModelDefinition{
				ID:       uuid.NewString(),
				Name:     def.Metadata.Name,
				Engine:   def.Engine,
				Version:  def.Version,
				Source:   string(raw),
				Checksum: checksum,
				Labels:   jsonmap.FromStringMap(def.Metadata.Labels),
			}
			applyProvenance(model, opts)
			if err := tx.Create(model).Error; err != nil {
				return err
			}
			result.Model = model
			result.Action = ActionCreated
			return nil

		case findErr != nil:
			return findErr

		case existing.Checksum == checksum:
			result.Model = &existing
			result.Action = ActionUnchanged
			return nil

		default:
			existing.Engine = def.Engine
			existing.Version = def.Version
			existing.Source = string(raw)
			existing.Checksum = checksum
			existing.Labels = jsonmap.FromStringMap(def.Metadata.Labels)
			applyProvenance(&existing, opts)
			if err := tx.Save(&existing).Error; err != nil {
				return err
			}
			result.Model = &existing
			result.Action = ActionUpdated
			return nil
		}
	})
	if err != nil {
		return nil, err
	}

	if result.Action != ActionUnchanged {
		metrics.ModelAppliesTotal.WithLabelValues(applySource(opts)).Inc()
	}
	return result, nil
}

// ApplyFile applies every YAML document in the file.
func (i *Importer) ApplyFile(ctx context.Context, path string, opts *ApplyOptions) ([]*ApplyResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return i.applyDocuments(ctx, data, opts)
}

func (i *Importer) applyDocuments(ctx context.Context, data []byte, opts *ApplyOptions) ([]*ApplyResult, error) {
	var results []*ApplyResult
	for _, doc := range splitDocuments(data) {
		result, err := i.ApplyWithOptions(ctx, doc, opts)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, nil
}

// Get loads one registered model by name and parses its stored source.
func (i *Importer) Get(ctx context.Context, name string) (*flowsheet.Definition, *models.ModelDefinition, error) {
	var model models.ModelDefinition
	err := i.db.WithContext(ctx).Where("name = ?", name).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, ErrModelNotFound
	}
	if err != nil {
		return nil, nil, err
	}

	def, err := flowsheet.Parse([]byte(model.Source))
	if err != nil {
		return nil, nil, err
	}
	return def, &model, nil
}

// List returns every registered model ordered by name.
func (i *Importer) List(ctx context.Context) ([]models.ModelDefinition, error) {
	var list []models.ModelDefinition
	err := i.db.WithContext(ctx).Order("name").Find(&list).Error
	return list, err
}

// Resolve turns a CLI model reference into a definition: a path to a YAML
// file on disk, a registered model name, or the builtin default when the
// reference is empty or names it.
func (i *Importer) Resolve(ctx context.Context, ref string) (*flowsheet.Definition, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" || ref == flowsheet.DefaultName {
		return flowsheet.Default(), nil
	}

	if _, err := os.Stat(ref); err == nil {
		data, err := os.ReadFile(ref)
		if err != nil {
			return nil, err
		}
		return flowsheet.Parse(data)
	}

	def, _, err := i.Get(ctx, ref)
	return def, err
}

// Checksum returns the registry digest of raw definition bytes.
func Checksum(raw []byte) string {
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

// splitDocuments breaks multi-document YAML into raw chunks so each
// registry row stores its own document verbatim.
func splitDocuments(data []byte) [][]byte {
	var docs [][]byte
	for _, chunk := range strings.Split(string(data), "\n---") {
		if strings.TrimSpace(chunk) == "" {
			continue
		}
		// Skip comment-only fragments between separators.
		var probe map[string]any
		if err := yaml.Unmarshal([]byte(chunk), &probe); err == nil && len(probe) == 0 {
			continue
		}
		docs = append(docs, []byte(chunk))
	}
	return docs
}

func applyProvenance(model *models.ModelDefinition, opts *ApplyOptions) {
	if opts == nil || opts.Provenance == nil {
		return
	}
	prov := opts.Provenance
	model.SourceID = strings.TrimSpace(prov.SourceID)
	model.Repo = strings.TrimSpace(prov.Repo)
	model.Ref = strings.TrimSpace(prov.Ref)
	model.Commit = strings.TrimSpace(prov.Commit)
	model.Path = strings.TrimSpace(prov.Path)
}

func applySource(opts *ApplyOptions) string {
	if opts == nil || strings.TrimSpace(opts.Source) == "" {
		return "file"
	}
	return opts.Source
}
