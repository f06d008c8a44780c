package ingest

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/okian/paddock/internal/domain/derive"
	"github.com/okian/paddock/internal/domain/model"
)

// Column headers of the fatality table.
const (
	ColumnDriver         = "Driver"
	ColumnEvent          = "Event"
	ColumnDateOfAccident = "Date of accident"
)

// HTMLTable is a table extracted from an HTML document: header cells from
// its first row and the text of every cell of the remaining rows.
type HTMLTable struct {
	Header []string
	Rows   [][]string
}

// ParseHTMLTables returns every <table> in r in document order.
func ParseHTMLTables(r io.Reader) ([]HTMLTable, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: parse html: %w", ErrReadTable, err)
	}

	var tables []HTMLTable
	walk(doc, func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.DataAtom == atom.Table {
			tables = append(tables, extractTable(n))
		}
		return true
	})
	return tables, nil
}

// extractTable reads the rows of t, descending into thead/tbody/tfoot but
// not into nested tables.
func extractTable(t *html.Node) HTMLTable {
	var rows []*html.Node
	walk(t, func(n *html.Node) bool {
		if n != t && n.DataAtom == atom.Table {
			return false
		}
		if n.DataAtom == atom.Tr {
			rows = append(rows, n)
			return false
		}
		return true
	})

	var out HTMLTable
	for i, tr := range rows {
		if i == 0 {
			for c := tr.FirstChild; c != nil; c = c.NextSibling {
				if c.DataAtom == atom.Th {
					out.Header = append(out.Header, cellText(c))
				}
			}
			continue
		}
		var cells []string
		for c := tr.FirstChild; c != nil; c = c.NextSibling {
			if c.DataAtom == atom.Td || c.DataAtom == atom.Th {
				cells = append(cells, cellText(c))
			}
		}
		out.Rows = append(out.Rows, cells)
	}
	return out
}

// cellText returns the text under n with whitespace collapsed, leaving out
// footnote markers and inline styles.
func cellText(n *html.Node) string {
	var b strings.Builder
	walk(n, func(c *html.Node) bool {
		switch c.DataAtom {
		case atom.Sup, atom.Style, atom.Script:
			return false
		}
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
		return true
	})
	return strings.Join(strings.Fields(b.String()), " ")
}

// walk visits n and its descendants depth first; visit returning false
// prunes the subtree below the visited node.
func walk(n *html.Node, visit func(*html.Node) bool) {
	if !visit(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, visit)
	}
}

// ReadFatalities extracts fatality records from the table at index of the
// HTML document in r. Rows whose cell count differs from the header are
// skipped, as are rows whose accident date cannot be parsed.
func ReadFatalities(r io.Reader, index int) ([]model.FatalityRecord, model.TableReport, error) {
	report := model.TableReport{Table: TableFatalities}

	tables, err := ParseHTMLTables(r)
	if err != nil {
		return nil, report, err
	}
	if index < 0 || index >= len(tables) {
		return nil, report, fmt.Errorf("%w: index %d of %d tables", ErrTableNotFound, index, len(tables))
	}
	t := tables[index]

	dateCol := -1
	for i, h := range t.Header {
		if h == ColumnDateOfAccident {
			dateCol = i
		}
	}
	if dateCol < 0 {
		return nil, report, fmt.Errorf("%w: %s.%s", ErrMissingColumn, TableFatalities, ColumnDateOfAccident)
	}

	var out []model.FatalityRecord
	for _, cells := range t.Rows {
		report.Read++
		if len(cells) != len(t.Header) {
			report.Skip(ReasonColumnCount)
			continue
		}
		fields := make(map[string]string, len(cells))
		for i, h := range t.Header {
			fields[h] = cells[i]
		}
		date, ok := derive.ParseAccidentDate(cells[dateCol])
		if !ok {
			report.Skip(ReasonBadDate)
			continue
		}
		out = append(out, model.FatalityRecord{
			Driver:         fields[ColumnDriver],
			Event:          fields[ColumnEvent],
			DateOfAccident: cells[dateCol],
			Date:           date,
			Year:           date.Year(),
			Decade:         derive.Decade(date.Year()),
			Fields:         fields,
		})
		report.Loaded++
	}
	return out, report, nil
}
