package xltemplate

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Fill writes values from data into the tile of sheet selected with AtGrid.
//
// Every cell of the sheet's original footprint is a candidate label. Its text
// is read from the values copy of the document, so a cell holding a formula
// contributes its last computed result, and numbers and booleans are compared
// as text. Labels that start with the WithPrefix prefix are looked up in data
// with the prefix removed; the value is written into the same cell of the
// selected tile. Labels missing from data get the WithDefault value, or are
// left untouched when no default is set. Blank cells are never labels.
//
// Writes are not transactional: if one fails, earlier writes stay.
func (wb *Workbook) Fill(sheet string, data map[string]any, opts ...FillOption) error {
	o := defaultFillOptions()
	for _, opt := range opts {
		opt(o)
	}

	st, err := wb.state("fill", sheet)
	if err != nil {
		return err
	}
	offset, err := st.TileOffset(o.gridRow, o.gridCol)
	if err != nil {
		return sheetError("fill", sheet, err)
	}

	filled := 0
	for row := 1; row <= st.Extent.Rows; row++ {
		for col := 1; col <= st.Extent.Cols; col++ {
			label, err := wb.label(NewCellRef(sheet, row, col))
			if err != nil {
				return sheetError("fill", sheet, err)
			}
			key, ok := strings.CutPrefix(label, o.prefix)
			if label == "" || !ok {
				continue
			}

			value, ok := data[key]
			if !ok {
				if !o.hasDefault {
					continue
				}
				value = o.defaultValue
			}

			target := NewCellRef(sheet, row+offset.Rows, col+offset.Cols)
			if err := wb.setValue(target, value); err != nil {
				return sheetError("fill", sheet, err)
			}
			filled++
		}
	}

	wb.log.Debug("filled sheet", "sheet", sheet, "grid_row", o.gridRow, "grid_col", o.gridCol,
		"prefix", o.prefix, "cells", filled)
	return nil
}

// label reads the text of a cell from the values copy. Booleans read as
// TRUE/FALSE, everything else as stored.
func (wb *Workbook) label(ref CellRef) (string, error) {
	sheet, cell := ref.Sheet, ref.CellName()
	t, err := wb.values.GetCellType(sheet, cell)
	if err != nil {
		return "", fmt.Errorf("read label %s: %w", ref, err)
	}
	raw := t != excelize.CellTypeBool
	v, err := wb.values.GetCellValue(sheet, cell, excelize.Options{RawCellValue: raw})
	if err != nil {
		return "", fmt.Errorf("read label %s: %w", ref, err)
	}
	return v, nil
}

// setValue writes value into the editable copy, keeping the cell's style.
func (wb *Workbook) setValue(ref CellRef, value any) error {
	sheet, cell := ref.Sheet, ref.CellName()

	styleID, err := wb.edit.GetCellStyle(sheet, cell)
	if err != nil {
		return fmt.Errorf("read style %s: %w", ref, err)
	}

	switch v := value.(type) {
	case HyperlinkValue:
		display := v.String()
		if err := wb.edit.SetCellValue(sheet, cell, display); err != nil {
			return fmt.Errorf("write %s: %w", ref, err)
		}
		link, linkType := v.target()
		if err := wb.edit.SetCellHyperLink(sheet, cell, link, linkType,
			excelize.HyperlinkOpts{Display: &display}); err != nil {
			return fmt.Errorf("hyperlink %s: %w", ref, err)
		}
	default:
		if err := wb.edit.SetCellValue(sheet, cell, value); err != nil {
			return fmt.Errorf("write %s: %w", ref, err)
		}
	}

	if styleID > 0 {
		if err := wb.edit.SetCellStyle(sheet, cell, cell, styleID); err != nil {
			return fmt.Errorf("style %s: %w", ref, err)
		}
	}
	return nil
}
