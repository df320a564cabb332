package xltemplate

import "fmt"

// template is a frozen copy of a sheet's original footprint. Tiling reads only
// from it, so the cells and merges it adds are never read back.
type template struct {
	cells  []*CellData
	merges []AreaRef
	sizes  *sheetSizes
}

// Tile repeats the original footprint of sheet into a rows×cols grid.
// Tile (1,1) is left as it is. Each other tile gets the template's cells,
// styles, hyperlinks, comments and merged ranges, with formulas translated to
// their new position. Row heights and column widths that differ from the sheet
// defaults are repeated for every row and column band.
//
// A sheet can be tiled once; a second call fails with ErrState before any
// cell is written.
func (wb *Workbook) Tile(sheet string, rows, cols int, opts ...TileOption) error {
	o := defaultTileOptions()
	for _, opt := range opts {
		opt(o)
	}

	st, err := wb.state("tile", sheet)
	if err != nil {
		return err
	}
	if st.Tiled {
		return sheetError("tile", sheet, fmt.Errorf("%w: sheet can only be tiled once", ErrState))
	}
	if rows < 1 || cols < 1 {
		return sheetError("tile", sheet, fmt.Errorf("%w: grid %dx%d", ErrRange, rows, cols))
	}
	if o.rowSpacing < 0 || o.colSpacing < 0 {
		return sheetError("tile", sheet, fmt.Errorf("%w: negative spacing %d, %d", ErrRange, o.rowSpacing, o.colSpacing))
	}

	pitch := Size{Rows: st.Extent.Rows + o.rowSpacing, Cols: st.Extent.Cols + o.colSpacing}
	if (rows-1)*pitch.Rows+st.Extent.Rows > MaxRows || (cols-1)*pitch.Cols+st.Extent.Cols > MaxColumns {
		return sheetError("tile", sheet, fmt.Errorf("%w: grid %dx%d does not fit on the sheet", ErrRange, rows, cols))
	}

	tmpl, err := wb.snapshot(sheet, st.Extent)
	if err != nil {
		return sheetError("tile", sheet, err)
	}

	// From here on the sheet counts as tiled even if a write fails part way.
	st.markTiled(pitch, Size{Rows: rows, Cols: cols})

	for j := 0; j < cols; j++ {
		for i := 0; i < rows; i++ {
			if i == 0 && j == 0 {
				continue
			}
			if err := wb.placeTile(sheet, tmpl, i*pitch.Rows, j*pitch.Cols); err != nil {
				return sheetError("tile", sheet, err)
			}
		}
	}

	rowBands := &sheetSizes{rowHeights: tmpl.sizes.rowHeights}
	for i := 1; i < rows; i++ {
		if err := rowBands.apply(wb.edit, sheet, i*pitch.Rows, 0); err != nil {
			return sheetError("tile", sheet, err)
		}
	}
	colBands := &sheetSizes{colWidths: tmpl.sizes.colWidths}
	for j := 1; j < cols; j++ {
		if err := colBands.apply(wb.edit, sheet, 0, j*pitch.Cols); err != nil {
			return sheetError("tile", sheet, err)
		}
	}

	wb.log.Debug("tiled sheet", "sheet", sheet, "grid", st.Grid.String(), "pitch", pitch.String(),
		"cells", len(tmpl.cells), "merges", len(tmpl.merges))
	return nil
}

// snapshot reads the original footprint of sheet.
func (wb *Workbook) snapshot(sheet string, extent Size) (*template, error) {
	comments, err := readComments(wb.edit, sheet)
	if err != nil {
		return nil, err
	}
	merges, err := mergedRanges(wb.edit, sheet)
	if err != nil {
		return nil, err
	}

	sizes, err := customSizes(wb.edit, sheet, extent)
	if err != nil {
		return nil, err
	}
	tmpl := &template{merges: merges, sizes: sizes}

	for row := 1; row <= extent.Rows; row++ {
		for col := 1; col <= extent.Cols; col++ {
			cd, err := readCellData(wb.edit, NewCellRef(sheet, row, col), comments)
			if err != nil {
				return nil, err
			}
			if !cd.IsEmpty() {
				tmpl.cells = append(tmpl.cells, cd)
			}
		}
	}
	return tmpl, nil
}

// placeTile writes one copy of the template moved by the given offset.
func (wb *Workbook) placeTile(sheet string, tmpl *template, rowOffset, colOffset int) error {
	for _, cd := range tmpl.cells {
		target := cd.Ref.Offset(rowOffset, colOffset)
		var formula string
		if cd.IsFormulaCell() {
			formula = TranslateFormula(cd.Formula, cd.Ref, target)
		}
		if err := writeCellData(wb.edit, target, cd, formula); err != nil {
			return err
		}
	}

	for _, m := range tmpl.merges {
		area := m.Offset(rowOffset, colOffset)
		if err := wb.edit.MergeCell(sheet, area.First.CellName(), area.Last.CellName()); err != nil {
			return fmt.Errorf("merge %s: %w", area, err)
		}
	}
	return nil
}
