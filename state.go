package xltemplate

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// SheetState is the per-sheet bookkeeping that lets Fill address a tile by
// grid position without knowing absolute coordinates.
type SheetState struct {
	Extent Size // footprint of one tile, as loaded
	Pitch  Size // distance between the top-left corners of adjacent tiles; zero until tiled
	Grid   Size // number of tiles in each direction; (1x1) until tiled
	Tiled  bool
}

func newSheetState(extent Size) *SheetState {
	return &SheetState{Extent: extent, Grid: Size{Rows: 1, Cols: 1}}
}

// TilePitch returns the pitch used to address tiles. It falls back to the
// original extent for sheets that were never tiled.
func (s SheetState) TilePitch() Size {
	if !s.Tiled {
		return s.Extent
	}
	return s.Pitch
}

// TileOffset returns the row and column offset of the tile at the given
// 1-based grid position.
func (s SheetState) TileOffset(gridRow, gridCol int) (Size, error) {
	if gridRow < 1 || gridRow > s.Grid.Rows || gridCol < 1 || gridCol > s.Grid.Cols {
		return Size{}, fmt.Errorf("%w: grid position (%d, %d) outside grid %s",
			ErrRange, gridRow, gridCol, s.Grid)
	}
	p := s.TilePitch()
	return Size{Rows: (gridRow - 1) * p.Rows, Cols: (gridCol - 1) * p.Cols}, nil
}

// Footprint returns the area covered by all tiles, from A1 to the far corner
// of the last tile.
func (s SheetState) Footprint() Size {
	p := s.TilePitch()
	return Size{
		Rows: (s.Grid.Rows-1)*p.Rows + s.Extent.Rows,
		Cols: (s.Grid.Cols-1)*p.Cols + s.Extent.Cols,
	}
}

func (s *SheetState) markTiled(pitch, grid Size) {
	s.Pitch = pitch
	s.Grid = grid
	s.Tiled = true
}

// sheetExtent measures the footprint of a sheet as loaded: the largest of the
// last row/column holding a value, the recorded sheet dimension, and the far
// corner of every merged range.
func sheetExtent(f *excelize.File, sheet string) (Size, error) {
	var ext Size

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return ext, fmt.Errorf("read rows: %w", err)
	}
	ext.Rows = len(rows)
	for _, row := range rows {
		ext.Cols = max(ext.Cols, len(row))
	}

	if dim, err := f.GetSheetDimension(sheet); err == nil && dim != "" {
		if area, err := ParseAreaRef(dim); err == nil {
			ext.Rows = max(ext.Rows, area.Last.Row)
			ext.Cols = max(ext.Cols, area.Last.Col)
		}
	}

	merges, err := mergedRanges(f, sheet)
	if err != nil {
		return ext, err
	}
	for _, m := range merges {
		ext.Rows = max(ext.Rows, m.Last.Row)
		ext.Cols = max(ext.Cols, m.Last.Col)
	}
	return ext, nil
}

// mergedRanges returns a snapshot of the merged ranges on a sheet.
func mergedRanges(f *excelize.File, sheet string) ([]AreaRef, error) {
	merges, err := f.GetMergeCells(sheet)
	if err != nil {
		return nil, fmt.Errorf("read merged cells: %w", err)
	}
	areas := make([]AreaRef, 0, len(merges))
	for _, m := range merges {
		area, err := ParseAreaRef(m.GetStartAxis() + ":" + m.GetEndAxis())
		if err != nil {
			return nil, fmt.Errorf("parse merged range: %w", err)
		}
		areas = append(areas, area)
	}
	return areas, nil
}

// sheetSizes holds the row heights and column widths of an area that differ
// from the sheet defaults, keyed by 1-based row and column number.
type sheetSizes struct {
	rowHeights map[int]float64
	colWidths  map[int]float64
}

// customSizes reads the non-default row heights and column widths within
// area. excelize reports the sheet default for rows and columns without their
// own size, so the last row and column of the sheet serve as the reference.
func customSizes(f *excelize.File, sheet string, area Size) (*sheetSizes, error) {
	defaultHeight, err := f.GetRowHeight(sheet, MaxRows)
	if err != nil {
		return nil, fmt.Errorf("read default row height: %w", err)
	}
	defaultWidth, err := f.GetColWidth(sheet, ColToName(MaxColumns))
	if err != nil {
		return nil, fmt.Errorf("read default column width: %w", err)
	}

	sizes := &sheetSizes{rowHeights: make(map[int]float64), colWidths: make(map[int]float64)}
	for row := 1; row <= area.Rows; row++ {
		h, err := f.GetRowHeight(sheet, row)
		if err != nil {
			return nil, fmt.Errorf("read row height %d: %w", row, err)
		}
		if h != defaultHeight {
			sizes.rowHeights[row] = h
		}
	}
	for col := 1; col <= area.Cols; col++ {
		w, err := f.GetColWidth(sheet, ColToName(col))
		if err != nil {
			return nil, fmt.Errorf("read column width %s: %w", ColToName(col), err)
		}
		if w != defaultWidth {
			sizes.colWidths[col] = w
		}
	}
	return sizes, nil
}

// apply sets the sizes on sheet, shifted by the given number of rows and columns.
func (s *sheetSizes) apply(f *excelize.File, sheet string, rowOffset, colOffset int) error {
	for row, h := range s.rowHeights {
		if err := f.SetRowHeight(sheet, row+rowOffset, h); err != nil {
			return fmt.Errorf("row height: %w", err)
		}
	}
	for col, w := range s.colWidths {
		name := ColToName(col + colOffset)
		if err := f.SetColWidth(sheet, name, name, w); err != nil {
			return fmt.Errorf("column width: %w", err)
		}
	}
	return nil
}
