package xltemplate

import (
	"errors"
	"fmt"
)

// Workbook errors
var (
	// ErrLoad indicates the template file is missing, unreadable, or not a workbook.
	ErrLoad = errors.New("load workbook")

	// ErrWrite indicates the workbook could not be written.
	ErrWrite = errors.New("write workbook")
)

// Sheet errors
var (
	// ErrNotFound indicates an unknown sheet (or, for mappings, an unknown column).
	ErrNotFound = errors.New("not found")

	// ErrDuplicateName indicates a sheet copy target that already exists.
	ErrDuplicateName = errors.New("duplicate sheet name")
)

// Tile and fill errors
var (
	// ErrState indicates an operation not allowed in the sheet's current state,
	// such as tiling a sheet twice.
	ErrState = errors.New("invalid sheet state")

	// ErrRange indicates a grid position or tile argument out of range.
	ErrRange = errors.New("out of range")
)

// SheetError reports a failed operation on a named sheet.
type SheetError struct {
	Sheet string
	Op    string // "copy", "tile", "fill", ...
	Err   error
}

func (e *SheetError) Error() string {
	return fmt.Sprintf("%s sheet %q: %v", e.Op, e.Sheet, e.Err)
}

func (e *SheetError) Unwrap() error {
	return e.Err
}

func sheetError(op, sheet string, err error) *SheetError {
	return &SheetError{Sheet: sheet, Op: op, Err: err}
}
