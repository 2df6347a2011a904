package diff

import (
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// Diff captures the comparison between desired and registered models.
type Diff struct {
	Creates []ModelSpec
	Updates []Update
	Deletes []ModelSpec
}

// Update captures the differences for an existing model.
type Update struct {
	Name string
	Diff string
}

// Empty reports whether the diff contains no changes.
func (d Diff) Empty() bool {
	return len(d.Creates) == 0 && len(d.Updates) == 0 && len(d.Deletes) == 0
}

// Compare generates a diff between desired and registered model specs.
func Compare(desired, actual map[string]ModelSpec) Diff {
	result := Diff{}
	opts := []cmp.Option{
		cmpopts.EquateEmpty(),
	}

	remaining := make(map[string]ModelSpec, len(actual))
	for k, v := range actual {
		remaining[k] = v
	}

	for name, spec := range desired {
		if _, ok := remaining[name]; !ok {
			result.Creates = append(result.Creates, spec)
			continue
		}

		if diff := cmp.Diff(remaining[name], spec, opts...); diff != "" {
			result.Updates = append(result.Updates, Update{Name: name, Diff: diff})
		}
		delete(remaining, name)
	}

	for _, spec := range remaining {
		result.Deletes = append(result.Deletes, spec)
	}

	return result
}
