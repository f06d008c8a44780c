package ingest

import (
	"encoding/json"
	"fmt"
	"os"
)

// ReadLayout reads the circuit layout GeoJSON at path. The document is only
// checked for JSON well-formedness and otherwise passed through untouched.
// An empty path yields no layout.
func ReadLayout(path string) (json.RawMessage, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: layout %s: %w", ErrReadTable, path, err)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidLayout, path)
	}
	return json.RawMessage(data), nil
}
