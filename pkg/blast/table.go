package blast

import (
	"encoding/csv"
	"fmt"
	"io"
)

// Blank is the placeholder written for empty cells, matching the report
// convention of the rest of the toolchain.
const Blank = "-"

// Table is an ordered tabular result set with a fixed column schema. Rows
// keep their insertion order, which for parse results means file order, then
// database order, then cluster emission order.
type Table struct {
	columns []string
	rows    [][]string
}

func NewTable(columns []string) *Table {
	return &Table{columns: columns}
}

func (t *Table) Columns() []string { return t.columns }
func (t *Table) Len() int          { return len(t.rows) }
func (t *Table) Rows() [][]string  { return t.rows }

// Append adds one row. The row must match the column schema exactly.
func (t *Table) Append(row []string) error {
	if len(row) != len(t.columns) {
		return fmt.Errorf("row has %d fields, table %q expects %d", len(row), t.columns[0], len(t.columns))
	}
	for i, v := range row {
		if v == "" {
			row[i] = Blank
		}
	}
	t.rows = append(t.rows, row)
	return nil
}

// ColumnIndex returns the position of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.columns {
		if c == name {
			return i
		}
	}
	return -1
}

// WriteTSV renders the table as tab-separated text with a header line.
func (t *Table) WriteTSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'

	if err := cw.Write(t.columns); err != nil {
		return err
	}
	for _, row := range t.rows {
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
