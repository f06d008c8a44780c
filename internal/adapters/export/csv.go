package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/okian/paddock/internal/domain/aggregate"
)

// WriteCSV writes t as a header line followed by one line per row.
func WriteCSV(w io.Writer, t aggregate.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return fmt.Errorf("%w: csv header: %w", ErrWrite, err)
	}
	record := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for i := range record {
			record[i] = ""
			if i < len(row) {
				record[i] = cellString(row[i])
			}
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("%w: csv row: %w", ErrWrite, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("%w: csv flush: %w", ErrWrite, err)
	}
	return nil
}

func cellString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprint(x)
	}
}
