package xltemplate

import (
	"fmt"
	"strings"
)

// Describe opens a template and returns a human-readable summary of its
// sheets. Useful for checking extents and formulas before tiling.
func Describe(templatePath string, opts ...Option) (string, error) {
	wb, err := Open(templatePath, opts...)
	if err != nil {
		return "", err
	}
	defer wb.Close()
	return wb.Describe()
}

// Describe returns a tree of sheets with their extent, tile grid, merged
// ranges and the formulas of the original footprint with their references.
func (wb *Workbook) Describe() (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Workbook: %s\n", wb.source)

	for _, sheet := range wb.SheetNames() {
		st, ok := wb.sheets[sheet]
		if !ok {
			continue
		}
		if err := wb.describeSheet(&b, sheet, st); err != nil {
			return "", err
		}
	}
	return b.String(), nil
}

func (wb *Workbook) describeSheet(b *strings.Builder, sheet string, st *SheetState) error {
	fmt.Fprintf(b, "  %s extent %s", sheet, st.Extent)
	if st.Tiled {
		fmt.Fprintf(b, " grid %s pitch %s", st.Grid, st.Pitch)
	}
	b.WriteByte('\n')

	merges, err := mergedRanges(wb.edit, sheet)
	if err != nil {
		return sheetError("describe", sheet, err)
	}
	if len(merges) > 0 {
		names := make([]string, len(merges))
		for i, m := range merges {
			names[i] = m.First.CellName() + ":" + m.Last.CellName()
		}
		fmt.Fprintf(b, "    Merges: %s\n", strings.Join(names, ", "))
	}

	var formulas []string
	for row := 1; row <= st.Extent.Rows; row++ {
		for col := 1; col <= st.Extent.Cols; col++ {
			ref := NewCellRef(sheet, row, col)
			formula, err := wb.edit.GetCellFormula(sheet, ref.CellName())
			if err != nil {
				return sheetError("describe", sheet, err)
			}
			if formula == "" {
				continue
			}
			line := fmt.Sprintf("      %s: =%s", ref.CellName(), strings.TrimPrefix(formula, "="))
			if refs := FormulaReferences(formula); len(refs) > 0 {
				line += " [" + strings.Join(refs, " ") + "]"
			}
			formulas = append(formulas, line)
		}
	}
	if len(formulas) > 0 {
		b.WriteString("    Formulas:\n")
		for _, f := range formulas {
			b.WriteString(f)
			b.WriteByte('\n')
		}
	}
	return nil
}
