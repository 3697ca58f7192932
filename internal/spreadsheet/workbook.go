// Package spreadsheet reads the single-sheet .xlsx workbooks used for bulk
// ingestion into a header-mapped row table.
package spreadsheet

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// factorHeaderPrefix marks the dynamically named factor value columns
// ("Factor 8" ... "Factor 37").
const factorHeaderPrefix = "Factor "

// allowedContentTypes is the set of client-declared MIME types accepted for
// workbook uploads.
var allowedContentTypes = map[string]bool{
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true,
	"application/octet-stream":                                          true,
}

// ValidateUpload checks the uploaded file's name and client-declared
// content type before any parsing happens.
func ValidateUpload(filename, contentType string) error {
	if !strings.HasSuffix(strings.ToLower(filename), ".xlsx") {
		return fmt.Errorf("file '%s' is not an .xlsx workbook", filename)
	}
	mediaType := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	if mediaType != "" && !allowedContentTypes[mediaType] {
		return fmt.Errorf("content type '%s' is not allowed for workbook upload", contentType)
	}
	return nil
}

// Table is the parsed workbook: a trimmed header row plus data rows.
type Table struct {
	headers   []string
	headerIdx map[string]int
	rows      [][]string
}

// Parse reads the first sheet of an .xlsx workbook. The first row is taken
// as the header row; header cells are whitespace-trimmed.
func Parse(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet '%s': %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("workbook sheet '%s' is empty", sheets[0])
	}

	return NewTable(rows[0], rows[1:]), nil
}

// NewTable builds a Table from an already materialized header and row set.
func NewTable(headers []string, rows [][]string) *Table {
	trimmed := make([]string, len(headers))
	headerIdx := make(map[string]int, len(headers))
	for i, h := range headers {
		trimmed[i] = strings.TrimSpace(h)
		if trimmed[i] != "" {
			headerIdx[trimmed[i]] = i
		}
	}
	return &Table{headers: trimmed, headerIdx: headerIdx, rows: rows}
}

// HasColumn reports whether the header row contains the named column.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.headerIdx[name]
	return ok
}

// FactorColumns returns the declaration-column numbers of all "Factor N"
// headers, mapped to their header name. Headers whose suffix is not an
// integer are ignored.
func (t *Table) FactorColumns() map[int]string {
	cols := make(map[int]string)
	for _, h := range t.headers {
		if !strings.HasPrefix(h, factorHeaderPrefix) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(h, factorHeaderPrefix)))
		if err != nil {
			continue
		}
		cols[n] = h
	}
	return cols
}

// Rows returns the data rows. Line numbers start at 2: row 1 is the header,
// matching what a user sees in their spreadsheet program.
func (t *Table) Rows() []Row {
	out := make([]Row, len(t.rows))
	for i, cells := range t.rows {
		out[i] = Row{Line: i + 2, table: t, cells: cells}
	}
	return out
}

// Row is one data row of the table.
type Row struct {
	// Line is the 1-based spreadsheet row number (header is line 1).
	Line int

	table *Table
	cells []string
}

// Get returns the trimmed cell value under the named column, or "" when the
// column is absent or the row is short.
func (r Row) Get(name string) string {
	idx, ok := r.table.headerIdx[name]
	if !ok || idx >= len(r.cells) {
		return ""
	}
	return strings.TrimSpace(r.cells[idx])
}

// IsEmpty reports whether every cell of the row is blank.
func (r Row) IsEmpty() bool {
	for _, c := range r.cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// Int parses the named cell as an integer.
func (r Row) Int(name string) (int, error) {
	raw := r.Get(name)
	if raw == "" {
		return 0, fmt.Errorf("la columna '%s' esta vacia", name)
	}
	// Spreadsheets frequently render integers as "5.0"
	if d, err := decimal.NewFromString(raw); err == nil && d.IsInteger() {
		return int(d.IntPart()), nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("la columna '%s' no contiene un numero entero ('%s')", name, raw)
	}
	return n, nil
}

// Decimal parses the named cell as a decimal value. The second return is
// false when the cell is blank or absent.
func (r Row) Decimal(name string) (decimal.Decimal, bool, error) {
	raw := r.Get(name)
	if raw == "" {
		return decimal.Zero, false, nil
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(raw, ",", "."))
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("la columna '%s' no contiene un valor numerico ('%s')", name, raw)
	}
	return d, true, nil
}

// dateLayouts covers the renderings excelize produces for date cells plus
// the ISO form used in hand-built files.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"02-01-2006",
	"02/01/2006",
	"1-2-06",
	"1/2/06",
}

// Date parses the named cell as a calendar date.
func (r Row) Date(name string) (time.Time, error) {
	raw := r.Get(name)
	if raw == "" {
		return time.Time{}, fmt.Errorf("la columna '%s' esta vacia", name)
	}
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("la columna '%s' no contiene una fecha reconocible ('%s')", name, raw)
}
