package xltemplate

import (
	"fmt"
	"sort"
	"strings"
)

// Severity indicates the severity of a validation issue.
type Severity int

const (
	SeverityError   Severity = iota // Output will be broken
	SeverityWarning                 // Output may not be what was intended
)

// ValidationIssue represents a single problem found by Check.
type ValidationIssue struct {
	Severity Severity
	CellRef  CellRef
	Message  string
}

// String formats the issue as "[ERROR] Sheet1!A2: message" or "[WARN] ...".
func (v ValidationIssue) String() string {
	sev := "ERROR"
	if v.Severity == SeverityWarning {
		sev = "WARN"
	}
	if v.CellRef.Row == 0 {
		return fmt.Sprintf("[%s] %s: %s", sev, v.CellRef.Sheet, v.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", sev, v.CellRef, v.Message)
}

// Check compares the labels of sheet with data before filling. It reports
// labels with no data and data keys with no label as warnings, and formulas
// in the footprint that already hold a broken reference as errors. Issues are
// ordered by cell; key issues come last, sorted by key.
func (wb *Workbook) Check(sheet string, data map[string]any, prefix string) ([]ValidationIssue, error) {
	st, err := wb.state("check", sheet)
	if err != nil {
		return nil, err
	}

	var issues []ValidationIssue
	used := make(map[string]bool, len(data))

	for row := 1; row <= st.Extent.Rows; row++ {
		for col := 1; col <= st.Extent.Cols; col++ {
			ref := NewCellRef(sheet, row, col)

			formula, err := wb.edit.GetCellFormula(sheet, ref.CellName())
			if err != nil {
				return nil, sheetError("check", sheet, err)
			}
			if strings.Contains(formula, refError) {
				issues = append(issues, ValidationIssue{
					Severity: SeverityError,
					CellRef:  ref,
					Message:  fmt.Sprintf("formula %q has a broken reference", formula),
				})
			}

			label, err := wb.label(ref)
			if err != nil {
				return nil, sheetError("check", sheet, err)
			}
			key, ok := strings.CutPrefix(label, prefix)
			if label == "" || !ok {
				continue
			}
			if _, found := data[key]; found {
				used[key] = true
				continue
			}
			// with an empty prefix every text cell is a candidate label, so
			// missing data is only reported when a prefix marks the labels
			if prefix != "" {
				issues = append(issues, ValidationIssue{
					Severity: SeverityWarning,
					CellRef:  ref,
					Message:  fmt.Sprintf("label %q has no data", key),
				})
			}
		}
	}

	var unused []string
	for key := range data {
		if !used[key] {
			unused = append(unused, key)
		}
	}
	sort.Strings(unused)
	for _, key := range unused {
		issues = append(issues, ValidationIssue{
			Severity: SeverityWarning,
			CellRef:  CellRef{Sheet: sheet},
			Message:  fmt.Sprintf("data key %q has no label", key),
		})
	}
	return issues, nil
}
