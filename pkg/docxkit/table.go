package docxkit

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"time"

	"github.com/benjaminschreck/go-docxkit/pkg/docxkit/render"
	"github.com/benjaminschreck/go-docxkit/pkg/docxkit/xml"
)

// Table is tabular data rendered by the table helper.
type Table struct {
	Columns []string
	Rows    [][]any
}

// NewTable returns an empty table with the given columns.
func NewTable(columns ...string) *Table {
	return &Table{Columns: columns}
}

// AddRow appends a row. Missing trailing cells render empty.
func (t *Table) AddRow(cells ...any) *Table {
	t.Rows = append(t.Rows, cells)
	return t
}

// toTable accepts a *Table, rows of maps or rows of slices with a header row.
func toTable(arg any) (*Table, error) {
	switch v := arg.(type) {
	case *Table:
		return v, nil
	case Table:
		return &v, nil
	case []map[string]any:
		rows := make([]any, len(v))
		for i, m := range v {
			rows[i] = m
		}
		return tableFromRows(rows)
	case [][]any:
		rows := make([]any, len(v))
		for i, r := range v {
			rows[i] = r
		}
		return tableFromRows(rows)
	case [][]string:
		rows := make([]any, len(v))
		for i, r := range v {
			cells := make([]any, len(r))
			for j, c := range r {
				cells[j] = c
			}
			rows[i] = cells
		}
		return tableFromRows(rows)
	case []any:
		return tableFromRows(v)
	}
	return nil, fmt.Errorf("cannot render %T as a table", arg)
}

// tableFromRows builds a table from maps (columns are the sorted union of
// keys) or from slices (the first row is the header).
func tableFromRows(rows []any) (*Table, error) {
	if len(rows) == 0 {
		return &Table{}, nil
	}
	switch rows[0].(type) {
	case map[string]any, TemplateData:
		seen := make(map[string]bool)
		maps := make([]map[string]any, len(rows))
		for i, r := range rows {
			m, ok := asMap(r)
			if !ok {
				return nil, fmt.Errorf("row %d: expected a map, got %T", i, r)
			}
			maps[i] = m
			for k := range m {
				seen[k] = true
			}
		}
		t := &Table{}
		for k := range seen {
			t.Columns = append(t.Columns, k)
		}
		slices.Sort(t.Columns)
		for _, m := range maps {
			cells := make([]any, len(t.Columns))
			for j, c := range t.Columns {
				cells[j] = m[c]
			}
			t.Rows = append(t.Rows, cells)
		}
		return t, nil
	case []any:
		t := &Table{}
		for i, r := range rows {
			cells, ok := r.([]any)
			if !ok {
				return nil, fmt.Errorf("row %d: expected a list, got %T", i, r)
			}
			if i == 0 {
				for _, c := range cells {
					t.Columns = append(t.Columns, formatCell(c))
				}
				continue
			}
			t.Rows = append(t.Rows, cells)
		}
		return t, nil
	}
	return nil, fmt.Errorf("cannot render rows of %T as a table", rows[0])
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case TemplateData:
		return m, true
	}
	return nil, false
}

// formatCell renders a table cell value.
func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		if x {
			return "Yes"
		}
		return "No"
	case int:
		return strconv.Itoa(x)
	case int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", x)
	case float32:
		return formatReal(float64(x))
	case float64:
		return formatReal(x)
	case time.Time:
		return x.Format(time.DateTime)
	case *time.Time:
		if x == nil {
			return ""
		}
		return x.Format(time.DateTime)
	case []byte:
		return string(x)
	}
	return fmt.Sprint(v)
}

// formatReal prints whole numbers (as decoded from JSON or SQL) as integers
// and everything else with three decimals.
func formatReal(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatFloat(f, 'f', 0, 64)
	}
	return strconv.FormatFloat(f, 'f', 3, 64)
}

func tableHelper(hc *HelperContext, arg any) (render.Value, error) {
	t, err := toTable(arg)
	if err != nil {
		return nil, NewHelperError("table", "%v", err)
	}
	if len(t.Columns) == 0 {
		return nil, NewHelperError("table", "table has no columns")
	}
	return render.Subtree{Nodes: []*xml.Node{buildTable(hc.Schema, hc.Page, t)}}, nil
}

// buildTable renders t as a w:tbl with a bold repeating header row. Columns
// share the page content width equally.
func buildTable(s xml.Schema, page PageGeometry, t *Table) *xml.Node {
	cols := len(t.Columns)
	width := strconv.Itoa(page.ContentWidth() / cols)

	tbl := s.Elem("tbl").Append(
		s.Elem("tblPr").Append(
			s.Val("tblStyle", "TableGrid"),
			s.Elem("tblW", "w", "0", "type", "auto"),
			s.Elem("tblLook", "val", "04A0", "firstRow", "1", "lastRow", "0",
				"firstColumn", "1", "lastColumn", "0", "noHBand", "0", "noVBand", "1"),
		),
	)
	grid := s.Elem("tblGrid")
	for range cols {
		grid.Append(s.Elem("gridCol", "w", width))
	}
	tbl.Append(grid)

	header := s.Elem("tr").Append(s.Elem("trPr").Append(s.Elem("tblHeader")))
	for _, c := range t.Columns {
		header.Append(tableCell(s, width, c, runStyle{Bold: true}))
	}
	tbl.Append(header)

	for _, row := range t.Rows {
		tr := s.Elem("tr")
		for j := range cols {
			var v any
			if j < len(row) {
				v = row[j]
			}
			tr.Append(tableCell(s, width, formatCell(v), runStyle{}))
		}
		tbl.Append(tr)
	}
	return tbl
}

func tableCell(s xml.Schema, width, text string, st runStyle) *xml.Node {
	p := paragraph(s, nil)
	if text != "" {
		p.Append(textRun(s, st, text))
	}
	return s.Elem("tc").Append(
		s.Elem("tcPr").Append(s.Elem("tcW", "w", width, "type", "dxa")),
		p,
	)
}
