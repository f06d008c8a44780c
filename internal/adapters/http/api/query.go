package api

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/okian/paddock/internal/adapters/export"
	"github.com/okian/paddock/internal/domain/types"
)

// parseBounds reads the optional integer from and to parameters.
func parseBounds(q url.Values) (types.Bounds, error) {
	var b types.Bounds
	var err error
	if b.From, err = optionalInt(q, "from"); err != nil {
		return types.Bounds{}, err
	}
	if b.To, err = optionalInt(q, "to"); err != nil {
		return types.Bounds{}, err
	}
	return b, nil
}

func optionalInt(q url.Values, key string) (*int, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be an integer, got %q", ErrBadRequest, key, raw)
	}
	return &v, nil
}

// parseDrivers returns the non-empty repeated driver parameters.
func parseDrivers(q url.Values) []string {
	var out []string
	for _, d := range q["driver"] {
		if d = strings.TrimSpace(d); d != "" {
			out = append(out, d)
		}
	}
	return out
}

// parseFormat reads the format parameter; JSON when absent.
func parseFormat(q url.Values) (export.Format, error) {
	return export.ParseFormat(q.Get("format"))
}
