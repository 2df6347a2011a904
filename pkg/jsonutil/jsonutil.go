package jsonutil

import "encoding/json"

// MarshalString marshals the provided value to a JSON string.
func MarshalString[T any](value T) (string, error) {
	buf, err := json.Marshal(value)
	if err != nil {
		return "", err
	}
	return string(buf), nil
}

// MarshalSliceString marshals a slice to a JSON string, substituting an empty slice when nil.
func MarshalSliceString[T any](values []T) (string, error) {
	if values == nil {
		values = []T{}
	}
	return MarshalString(values)
}

// UnmarshalSliceString decodes a JSON array string, treating the empty
// string as an empty slice.
func UnmarshalSliceString[T any](value string) ([]T, error) {
	if value == "" {
		return []T{}, nil
	}
	var out []T
	if err := json.Unmarshal([]byte(value), &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}
