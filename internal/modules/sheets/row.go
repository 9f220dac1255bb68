package sheets

import (
	"strconv"
	"strings"
)

// Row is a bounds-checked accessor over one spreadsheet row. Cells beyond
// the row's actual width read as empty, matching how the sheet export trims
// trailing blanks.
type Row struct {
	cells []string
}

// NewRow wraps a slice of cell values.
func NewRow(cells []string) Row {
	return Row{cells: cells}
}

// Text returns the trimmed cell value at the given column, or "" when the
// column is out of range.
func (r Row) Text(col int) string {
	if col < 0 || col >= len(r.cells) {
		return ""
	}
	return strings.TrimSpace(r.cells[col])
}

// Number parses the cell at the given column as a currency or percentage
// value: "$", "%" and thousands separators are stripped first. Blank or
// unparseable cells read as 0 so one sloppy cell never sinks a row.
func (r Row) Number(col int) float64 {
	raw := r.Text(col)
	if raw == "" {
		return 0
	}

	cleaned := strings.NewReplacer("$", "", "%", "", ",", "").Replace(raw)
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return 0
	}

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return v
}

// Int is Number truncated to an integer, the storage type of bounds and
// discounts.
func (r Row) Int(col int) int64 {
	return int64(r.Number(col))
}
