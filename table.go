package certgen

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// utf8BOM is written by spreadsheet exports at the start of CSV files.
const utf8BOM = "\ufeff"

var newline = []byte{'\n'}

// TableOptions selects where names are read from.
type TableOptions struct {
	Sheet  string // spreadsheet sheet name; "" = first sheet
	Column string // header of the name column; "" = first column
}

// Table holds the header row and data rows of a name table.
type Table struct {
	Header []string
	Rows   [][]string
}

// ReadNames reads the raw name column from a .xlsx/.xlsm or .csv file.
// The first row is the header and is not returned. Missing cells in the
// name column are returned as "" so row positions are preserved.
func ReadNames(path string, opts TableOptions) ([]string, error) {
	tbl, err := ReadTable(path, opts.Sheet)
	if err != nil {
		return nil, err
	}
	return tbl.Column(opts.Column)
}

// ReadTable reads every row of the table at path.
func ReadTable(path, sheet string) (*Table, error) {
	var (
		rows [][]string
		err  error
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		rows, err = readSpreadsheet(path, sheet)
	case ".csv":
		rows, err = readCSV(path)
	default:
		return nil, fmt.Errorf("%w: %q (use .xlsx or .csv)", ErrUnsupportedTable, filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return &Table{}, nil
	}
	return &Table{Header: rows[0], Rows: rows[1:]}, nil
}

// Column returns the values of the column with the given header.
// Header matching ignores case and surrounding whitespace.
// An empty header selects the first column.
func (t *Table) Column(header string) ([]string, error) {
	idx := 0
	if header != "" {
		idx = t.columnIndex(header)
		if idx < 0 {
			return nil, fmt.Errorf("%w: %q (available: %s)", ErrColumnNotFound, header, strings.Join(t.Header, ", "))
		}
	}

	values := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		if idx < len(row) {
			values[i] = row[idx]
		}
	}
	return values, nil
}

func (t *Table) columnIndex(header string) int {
	want := strings.TrimSpace(header)
	for i, h := range t.Header {
		if strings.EqualFold(strings.TrimSpace(h), want) {
			return i
		}
	}
	return -1
}

func readSpreadsheet(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadTable, err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("%w: %s has no sheets", ErrSheetNotFound, path)
		}
		sheet = sheets[0]
	} else if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, fmt.Errorf("%w: %q (available: %s)", ErrSheetNotFound, sheet, strings.Join(f.GetSheetList(), ", "))
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadTable, err)
	}
	return rows, nil
}

// readCSV reads every record of a CSV file. encoding/csv skips blank lines,
// so each skipped line after the header is restored as a row with one empty
// field; a blank line is an empty name, not a missing row.
func readCSV(path string) ([][]string, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- table path is user-provided
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadTable, err)
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1

	var (
		rows     [][]string
		consumed int   // newlines up to offset
		offset   int64 // input offset after the last record
	)
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrReadTable, err)
		}

		line, _ := r.FieldPos(0)
		if len(rows) > 0 {
			for range line - 1 - consumed {
				rows = append(rows, []string{""})
			}
		}
		rows = append(rows, rec)

		next := r.InputOffset()
		consumed += bytes.Count(data[offset:next], newline)
		offset = next
	}

	if len(rows) > 0 {
		for range bytes.Count(data[offset:], newline) {
			rows = append(rows, []string{""})
		}
		if len(rows[0]) > 0 {
			rows[0][0] = strings.TrimPrefix(rows[0][0], utf8BOM)
		}
	}
	return rows, nil
}
