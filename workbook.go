// Package xltemplate repeats a block of an Excel template across a sheet and
// fills the copies with data keyed by the labels in the template.
package xltemplate

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/xuri/excelize/v2"
)

// Workbook is an open template. It holds two copies of the same document:
// edit keeps formulas and is the one written on save; values is read only for
// label text, where excelize returns the cached result of formula cells.
//
// Both copies are loaded from the same bytes and are never re-synchronised,
// so changes made to one outside this package leave the pair undefined.
// A Workbook must not be used from more than one goroutine at a time.
type Workbook struct {
	edit   *excelize.File
	values *excelize.File
	sheets map[string]*SheetState
	source string
	opts   *Options
	log    *slog.Logger
}

// Open loads the template at path.
func Open(path string, opts ...Option) (*Workbook, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrLoad, path, err)
	}
	return openBytes(b, path, opts)
}

// OpenReader loads a template from r.
func OpenReader(r io.Reader, opts ...Option) (*Workbook, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	return openBytes(b, "<reader>", opts)
}

func openBytes(b []byte, source string, opts []Option) (*Workbook, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	edit, err := excelize.OpenReader(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrLoad, source, err)
	}
	values, err := excelize.OpenReader(bytes.NewReader(b))
	if err != nil {
		edit.Close()
		return nil, fmt.Errorf("%w %q: %w", ErrLoad, source, err)
	}

	wb := &Workbook{
		edit:   edit,
		values: values,
		sheets: make(map[string]*SheetState),
		source: source,
		opts:   o,
		log:    o.logger,
	}

	for _, sheet := range edit.GetSheetList() {
		ext, err := sheetExtent(edit, sheet)
		if err != nil {
			wb.Close()
			return nil, fmt.Errorf("%w %q: sheet %q: %w", ErrLoad, source, sheet, err)
		}
		wb.sheets[sheet] = newSheetState(ext)
		wb.log.Debug("loaded sheet", "sheet", sheet, "extent", ext.String())
	}

	if o.recalculateOnOpen {
		fullCalc := true
		if err := edit.SetCalcProps(&excelize.CalcPropsOptions{FullCalcOnLoad: &fullCalc}); err != nil {
			wb.Close()
			return nil, fmt.Errorf("%w %q: set calc props: %w", ErrLoad, source, err)
		}
	}
	return wb, nil
}

// SheetNames returns the sheet names in workbook order.
func (wb *Workbook) SheetNames() []string {
	return wb.edit.GetSheetList()
}

// State returns a copy of the bookkeeping for sheet.
func (wb *Workbook) State(sheet string) (SheetState, error) {
	st, err := wb.state("state", sheet)
	if err != nil {
		return SheetState{}, err
	}
	return *st, nil
}

func (wb *Workbook) state(op, sheet string) (*SheetState, error) {
	st, ok := wb.sheets[sheet]
	if !ok {
		return nil, sheetError(op, sheet, ErrNotFound)
	}
	return st, nil
}

// CopySheet duplicates source under the name target in both copies of the
// document, along with its tile bookkeeping. The new sheet behaves like source
// for later Tile and Fill calls.
//
// The target is rebuilt cell by cell, so it gets its own comments and
// hyperlinks: later changes to either sheet do not show up in the other.
func (wb *Workbook) CopySheet(source, target string) error {
	st, err := wb.state("copy", source)
	if err != nil {
		return err
	}
	if _, ok := wb.sheets[target]; ok {
		return sheetError("copy", target, ErrDuplicateName)
	}
	if idx, _ := wb.edit.GetSheetIndex(target); idx >= 0 {
		return sheetError("copy", target, ErrDuplicateName)
	}

	area := st.Footprint()
	if err := copySheet(wb.edit, source, target, area, false); err != nil {
		return sheetError("copy", source, err)
	}
	if err := copySheet(wb.values, source, target, area, true); err != nil {
		if delErr := wb.edit.DeleteSheet(target); delErr != nil {
			err = errors.Join(err, delErr)
		}
		return sheetError("copy", source, err)
	}

	dup := *st
	wb.sheets[target] = &dup
	wb.log.Debug("copied sheet", "source", source, "target", target, "area", area.String())
	return nil
}

// copySheet creates target and replays the cells, merges, sizes, view and
// panes of source into it. area is the part of source known to hold content;
// it is widened to whatever the sheet itself reports. With cachedValues set,
// formula cells are written as their stored result, which keeps label text
// readable in the values copy.
func copySheet(f *excelize.File, source, target string, area Size, cachedValues bool) error {
	if idx, _ := f.GetSheetIndex(target); idx >= 0 {
		return ErrDuplicateName
	}
	ext, err := sheetExtent(f, source)
	if err != nil {
		return err
	}
	area.Rows = max(area.Rows, ext.Rows)
	area.Cols = max(area.Cols, ext.Cols)

	if _, err := f.NewSheet(target); err != nil {
		return fmt.Errorf("create sheet %q: %w", target, err)
	}

	comments, err := readComments(f, source)
	if err != nil {
		return err
	}
	for row := 1; row <= area.Rows; row++ {
		for col := 1; col <= area.Cols; col++ {
			cd, err := readCellData(f, NewCellRef(source, row, col), comments)
			if err != nil {
				return err
			}
			if cd.IsEmpty() {
				continue
			}
			if cachedValues && cd.IsFormulaCell() {
				cd.Type, cd.Formula = cd.ValueType, ""
			}
			if err := writeCellData(f, NewCellRef(target, row, col), cd, cd.Formula); err != nil {
				return err
			}
		}
	}

	merges, err := mergedRanges(f, source)
	if err != nil {
		return err
	}
	for _, m := range merges {
		if err := f.MergeCell(target, m.First.CellName(), m.Last.CellName()); err != nil {
			return fmt.Errorf("merge %s: %w", m, err)
		}
	}

	sizes, err := customSizes(f, source, area)
	if err != nil {
		return err
	}
	if err := sizes.apply(f, target, 0, 0); err != nil {
		return err
	}

	view, err := f.GetSheetView(source, 0)
	if err != nil {
		return fmt.Errorf("read sheet view: %w", err)
	}
	if err := f.SetSheetView(target, 0, &view); err != nil {
		return fmt.Errorf("sheet view: %w", err)
	}
	panes, err := f.GetPanes(source)
	if err != nil {
		return fmt.Errorf("read panes: %w", err)
	}
	if panes.Freeze || panes.Split {
		if err := f.SetPanes(target, &panes); err != nil {
			return fmt.Errorf("panes: %w", err)
		}
	}
	return nil
}

// Save writes the edited document to path.
// A failed save leaves the file at path in an undefined state.
func (wb *Workbook) Save(path string) error {
	if err := wb.edit.SaveAs(path); err != nil {
		return fmt.Errorf("%w %q: %w", ErrWrite, path, err)
	}
	wb.log.Debug("saved workbook", "path", path)
	return nil
}

// Write writes the edited document to w.
func (wb *Workbook) Write(w io.Writer) error {
	if err := wb.edit.Write(w); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return nil
}

// Close releases both copies of the document.
func (wb *Workbook) Close() error {
	return errors.Join(wb.edit.Close(), wb.values.Close())
}

// File returns the editable excelize file for operations not covered here.
func (wb *Workbook) File() *excelize.File {
	return wb.edit
}
