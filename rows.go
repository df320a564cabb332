package xltemplate

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ReadCSV reads rows from CSV data whose first record is the header.
// Values are kept as strings. Columns missing from a short record read as "".
func ReadCSV(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) < 1 {
		return nil, nil
	}
	return recordsToRows(records, func(_, _ int, v string) any { return v }), nil
}

// ReadSheetRows reads rows from a sheet of the workbook at path whose first
// row is the header. Numeric cells are returned as float64, everything else
// as text; trailing empty cells read as "".
func ReadSheetRows(path, sheet string) ([]Row, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrLoad, path, err)
	}
	defer f.Close()

	if idx, _ := f.GetSheetIndex(sheet); idx < 0 {
		return nil, sheetError("read rows", sheet, ErrNotFound)
	}
	records, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, sheetError("read rows", sheet, err)
	}
	if len(records) < 1 {
		return nil, nil
	}

	var convErr error
	rows := recordsToRows(records, func(row, col int, v string) any {
		if v == "" || convErr != nil {
			return v
		}
		// header is record 0; data rows start at sheet row 2
		t, err := f.GetCellType(sheet, NewCellRef(sheet, row+2, col+1).CellName())
		if err != nil {
			convErr = err
			return v
		}
		if cellType(t, v, "") == CellNumber {
			if n, err := strconv.ParseFloat(v, 64); err == nil {
				return n
			}
		}
		return v
	})
	if convErr != nil {
		return nil, sheetError("read rows", sheet, convErr)
	}
	return rows, nil
}

func recordsToRows(records [][]string, value func(row, col int, v string) any) []Row {
	header := records[0]
	rows := make([]Row, 0, len(records)-1)
	for i, record := range records[1:] {
		row := make(Row, len(header))
		for j, col := range header {
			col = strings.TrimSpace(col)
			if col == "" {
				continue
			}
			if j < len(record) {
				row[col] = value(i, j, record[j])
			} else {
				row[col] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows
}
