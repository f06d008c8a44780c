package export

import (
	"bytes"
	"fmt"
	"io"

	"github.com/okian/paddock/internal/domain/aggregate"
	"github.com/okian/paddock/pkg/metrics"
)

// Write renders t in the given file format. JSON is not a table format and
// yields ErrUnsupportedFormat.
func Write(w io.Writer, format Format, t aggregate.Table) error {
	var buf bytes.Buffer
	var err error
	switch format {
	case FormatCSV:
		err = WriteCSV(&buf, t)
	case FormatXLSX:
		err = WriteXLSX(&buf, t)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return err
	}
	n, err := buf.WriteTo(w)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	metrics.RecordExportBytes(string(format), int(n))
	return nil
}
