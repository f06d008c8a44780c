package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/okian/paddock/internal/domain/aggregate"
)

// maxSheetName is the longest sheet name a workbook accepts.
const maxSheetName = 31

// WriteXLSX writes t as a single-sheet workbook named after the table, with
// a bold frozen header row.
func WriteXLSX(w io.Writer, t aggregate.Table) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := SheetName(t.Name)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("%w: sheet name: %w", ErrWrite, err)
	}

	header := make([]any, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("%w: header: %w", ErrWrite, err)
	}
	for i, row := range t.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("%w: row %d: %w", ErrWrite, i, err)
		}
		values := row
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("%w: row %d: %w", ErrWrite, i, err)
		}
	}

	if len(t.Columns) > 0 {
		bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		if err != nil {
			return fmt.Errorf("%w: style: %w", ErrWrite, err)
		}
		last, err := excelize.CoordinatesToCellName(len(t.Columns), 1)
		if err != nil {
			return fmt.Errorf("%w: style range: %w", ErrWrite, err)
		}
		if err := f.SetCellStyle(sheet, "A1", last, bold); err != nil {
			return fmt.Errorf("%w: style: %w", ErrWrite, err)
		}
		if err := f.SetPanes(sheet, &excelize.Panes{
			Freeze:      true,
			YSplit:      1,
			TopLeftCell: "A2",
			ActivePane:  "bottomLeft",
		}); err != nil {
			return fmt.Errorf("%w: panes: %w", ErrWrite, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("%w: workbook: %w", ErrWrite, err)
	}
	return nil
}

// SheetName turns a table name into a valid sheet name.
func SheetName(table string) string {
	if table == "" {
		return "Sheet1"
	}
	if len(table) > maxSheetName {
		return table[:maxSheetName]
	}
	return table
}
