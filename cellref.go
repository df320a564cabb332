package xltemplate

import (
	"fmt"
	"strconv"
	"strings"
)

// Sheet limits of the xlsx format.
const (
	MaxRows    = 1048576
	MaxColumns = 16384
)

// CellRef represents a single cell position. Row and Col are 1-based,
// matching excelize coordinates.
type CellRef struct {
	Sheet string // sheet name (empty = current sheet)
	Row   int
	Col   int
}

// NewCellRef creates a CellRef with explicit sheet, row, col.
func NewCellRef(sheet string, row, col int) CellRef {
	return CellRef{Sheet: sheet, Row: row, Col: col}
}

// ParseCellRef parses a cell reference string like "A1", "Sheet1!B5", or "$A$1".
func ParseCellRef(s string) (CellRef, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return CellRef{}, fmt.Errorf("empty cell reference")
	}

	var sheet string
	cellPart := s

	if idx := strings.LastIndex(s, "!"); idx >= 0 {
		sheet = strings.ReplaceAll(strings.Trim(s[:idx], "'"), "''", "'")
		cellPart = s[idx+1:]
	}

	cellPart = strings.ReplaceAll(cellPart, "$", "")
	col, row, err := parseCellName(cellPart)
	if err != nil {
		return CellRef{}, fmt.Errorf("invalid cell reference %q: %w", s, err)
	}

	return CellRef{Sheet: sheet, Row: row, Col: col}, nil
}

// parseCellName parses "A1" into col=1, row=1.
func parseCellName(name string) (col, row int, err error) {
	if len(name) == 0 {
		return 0, 0, fmt.Errorf("empty cell name")
	}

	i := 0
	for i < len(name) && isAlpha(name[i]) {
		i++
	}
	if i == 0 || i == len(name) {
		return 0, 0, fmt.Errorf("invalid cell name: %q", name)
	}

	col, err = NameToCol(name[:i])
	if err != nil {
		return 0, 0, err
	}

	row, err = strconv.Atoi(name[i:])
	if err != nil || row < 1 || row > MaxRows {
		return 0, 0, fmt.Errorf("invalid row in cell name: %q", name)
	}
	return col, row, nil
}

func isAlpha(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// String formats the CellRef as "Sheet1!A1" or "A1" if no sheet.
func (c CellRef) String() string {
	name := c.CellName()
	if c.Sheet != "" {
		return c.Sheet + "!" + name
	}
	return name
}

// CellName returns just the cell part like "A1" without sheet name.
func (c CellRef) CellName() string {
	return ColToName(c.Col) + strconv.Itoa(c.Row)
}

// Offset returns the reference moved by the given number of rows and columns.
func (c CellRef) Offset(rows, cols int) CellRef {
	return CellRef{Sheet: c.Sheet, Row: c.Row + rows, Col: c.Col + cols}
}

// ColToName converts a 1-based column index to a column name.
// 1→"A", 26→"Z", 27→"AA", 703→"AAA"
func ColToName(col int) string {
	var buf [4]byte
	i := len(buf)
	for col > 0 && i > 0 {
		col--
		i--
		buf[i] = byte('A' + col%26)
		col /= 26
	}
	return string(buf[i:])
}

// NameToCol converts a column name to a 1-based column index.
// "A"→1, "Z"→26, "AA"→27
func NameToCol(name string) (int, error) {
	if name == "" {
		return 0, fmt.Errorf("empty column name")
	}
	if len(name) > 3 {
		return 0, fmt.Errorf("invalid column name: %q", name)
	}
	col := 0
	for _, ch := range strings.ToUpper(name) {
		if ch < 'A' || ch > 'Z' {
			return 0, fmt.Errorf("invalid column name: %q", name)
		}
		col = col*26 + int(ch-'A') + 1
	}
	if col > MaxColumns {
		return 0, fmt.Errorf("column %q out of range", name)
	}
	return col, nil
}

// AreaRef represents a rectangular area defined by two cell references.
type AreaRef struct {
	First CellRef
	Last  CellRef
}

// ParseAreaRef parses an area reference string like "A1:C5" or "Sheet1!A1:C5".
// A single cell ("B2") yields a one-cell area.
func ParseAreaRef(s string) (AreaRef, error) {
	s = strings.TrimSpace(s)
	parts := strings.SplitN(s, ":", 2)
	first, err := ParseCellRef(parts[0])
	if err != nil {
		return AreaRef{}, fmt.Errorf("invalid area reference %q: %w", s, err)
	}
	if len(parts) == 1 {
		return AreaRef{First: first, Last: first}, nil
	}

	last, err := ParseCellRef(parts[1])
	if err != nil {
		return AreaRef{}, fmt.Errorf("invalid area reference %q: %w", s, err)
	}
	if last.Sheet == "" && first.Sheet != "" {
		last.Sheet = first.Sheet
	}
	return AreaRef{First: first, Last: last}, nil
}

// String formats the AreaRef as "Sheet1!A1:C5" or "A1:C5".
func (a AreaRef) String() string {
	if a.First.Sheet != "" && a.First.Sheet == a.Last.Sheet {
		return a.First.Sheet + "!" + a.First.CellName() + ":" + a.Last.CellName()
	}
	return a.First.String() + ":" + a.Last.String()
}

// Size returns the dimensions of the area.
func (a AreaRef) Size() Size {
	return Size{
		Rows: a.Last.Row - a.First.Row + 1,
		Cols: a.Last.Col - a.First.Col + 1,
	}
}

// Offset returns the area moved by the given number of rows and columns.
func (a AreaRef) Offset(rows, cols int) AreaRef {
	return AreaRef{First: a.First.Offset(rows, cols), Last: a.Last.Offset(rows, cols)}
}

// Size is a row/column count pair, used for extents, pitches and grid shapes.
type Size struct {
	Rows int
	Cols int
}

// String formats the Size as "(RxC)".
func (s Size) String() string {
	return fmt.Sprintf("(%dx%d)", s.Rows, s.Cols)
}
