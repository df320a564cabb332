package xltemplate

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// CellType represents the type of data in a cell.
type CellType int

const (
	CellBlank CellType = iota
	CellString
	CellNumber
	CellBoolean
	CellDate
	CellFormula
	CellError
)

// String returns a human-readable name for the CellType.
func (ct CellType) String() string {
	switch ct {
	case CellBlank:
		return "Blank"
	case CellString:
		return "String"
	case CellNumber:
		return "Number"
	case CellBoolean:
		return "Boolean"
	case CellDate:
		return "Date"
	case CellFormula:
		return "Formula"
	case CellError:
		return "Error"
	default:
		return "Unknown"
	}
}

// Hyperlink types accepted by excelize.
const (
	linkExternal = "External"
	linkLocation = "Location"
)

// CellData is a snapshot of one template cell.
type CellData struct {
	Ref           CellRef
	Type          CellType
	ValueType     CellType // type of the stored value, ignoring any formula
	Value         string   // stored value, unformatted
	Formula       string   // formula without leading =
	StyleID       int
	Hyperlink     string
	HyperlinkType string // "External" or "Location"
	Comment       *excelize.Comment
}

// IsFormulaCell returns true if this cell contains a formula.
func (cd *CellData) IsFormulaCell() bool {
	return cd.Type == CellFormula || cd.Formula != ""
}

// IsEmpty returns true if there is nothing to copy from this cell.
func (cd *CellData) IsEmpty() bool {
	return cd.Type == CellBlank && cd.StyleID == 0 && cd.Hyperlink == "" && cd.Comment == nil
}

// cellType maps the excelize storage type of a cell onto CellType.
// Numbers are usually stored without a type attribute, so an unset type with a
// numeric value is a number.
func cellType(t excelize.CellType, value, formula string) CellType {
	if formula != "" {
		return CellFormula
	}
	switch t {
	case excelize.CellTypeBool:
		return CellBoolean
	case excelize.CellTypeDate:
		return CellDate
	case excelize.CellTypeError:
		return CellError
	case excelize.CellTypeNumber:
		return CellNumber
	}
	if value == "" {
		return CellBlank
	}
	if t == excelize.CellTypeUnset {
		if _, err := strconv.ParseFloat(value, 64); err == nil {
			return CellNumber
		}
	}
	return CellString
}

// hyperlinkType guesses the excelize link type from a hyperlink target.
// excelize reports both kinds through the same getter.
func hyperlinkType(target string) string {
	if strings.Contains(target, "!") && !strings.Contains(target, "://") {
		return linkLocation
	}
	return linkExternal
}

// readCellData reads one cell. comments maps cell names to the sheet's comments.
func readCellData(f *excelize.File, ref CellRef, comments map[string]excelize.Comment) (*CellData, error) {
	sheet, cell := ref.Sheet, ref.CellName()

	value, err := f.GetCellValue(sheet, cell, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read value %s: %w", ref, err)
	}
	formula, err := f.GetCellFormula(sheet, cell)
	if err != nil {
		return nil, fmt.Errorf("read formula %s: %w", ref, err)
	}
	t, err := f.GetCellType(sheet, cell)
	if err != nil {
		return nil, fmt.Errorf("read type %s: %w", ref, err)
	}
	styleID, err := f.GetCellStyle(sheet, cell)
	if err != nil {
		return nil, fmt.Errorf("read style %s: %w", ref, err)
	}

	cd := &CellData{
		Ref:       ref,
		Type:      cellType(t, value, formula),
		ValueType: cellType(t, value, ""),
		Value:     value,
		Formula:   formula,
		StyleID:   styleID,
	}

	ok, link, err := f.GetCellHyperLink(sheet, cell)
	if err != nil {
		return nil, fmt.Errorf("read hyperlink %s: %w", ref, err)
	}
	if ok && link != "" {
		cd.Hyperlink = link
		cd.HyperlinkType = hyperlinkType(link)
	}

	if c, ok := comments[cell]; ok {
		cd.Comment = &c
	}
	return cd, nil
}

// readComments indexes a sheet's comments by cell name.
func readComments(f *excelize.File, sheet string) (map[string]excelize.Comment, error) {
	comments, err := f.GetComments(sheet)
	if err != nil {
		return nil, fmt.Errorf("read comments: %w", err)
	}
	m := make(map[string]excelize.Comment, len(comments))
	for _, c := range comments {
		m[strings.ReplaceAll(c.Cell, "$", "")] = c
	}
	return m, nil
}

// writeCellData writes a snapshot to target. formula replaces the snapshot's
// formula for formula cells, so callers pass the already translated text.
func writeCellData(f *excelize.File, target CellRef, cd *CellData, formula string) error {
	sheet, cell := target.Sheet, target.CellName()

	var err error
	switch cd.Type {
	case CellFormula:
		err = f.SetCellFormula(sheet, cell, formula)
	case CellNumber:
		err = f.SetCellDefault(sheet, cell, cd.Value)
	case CellBoolean:
		err = f.SetCellBool(sheet, cell, cd.Value == "1" || strings.EqualFold(cd.Value, "true"))
	case CellDate:
		if t, ok := parseDate(cd.Value); ok {
			err = f.SetCellValue(sheet, cell, t)
		} else {
			err = f.SetCellStr(sheet, cell, cd.Value)
		}
	case CellString, CellError:
		// excelize has no setter for error literals; they are written as text
		err = f.SetCellStr(sheet, cell, cd.Value)
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", target, err)
	}

	if cd.StyleID != 0 {
		if err := f.SetCellStyle(sheet, cell, cell, cd.StyleID); err != nil {
			return fmt.Errorf("style %s: %w", target, err)
		}
	}

	if cd.Hyperlink != "" {
		if err := f.SetCellHyperLink(sheet, cell, cd.Hyperlink, cd.HyperlinkType); err != nil {
			return fmt.Errorf("hyperlink %s: %w", target, err)
		}
	}

	if cd.Comment != nil {
		c := *cd.Comment
		c.Cell = cell
		if err := f.AddComment(sheet, c); err != nil {
			return fmt.Errorf("comment %s: %w", target, err)
		}
	}
	return nil
}

// dateLayouts are the ISO 8601 forms used by date-typed (t="d") cells.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// parseDate reads the stored value of a date-typed cell. The result is written
// back as a date serial number.
func parseDate(v string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
