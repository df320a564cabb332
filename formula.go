package xltemplate

import (
	"strconv"
	"strings"

	"github.com/xuri/efp"
)

// refError is what a reference becomes when it is moved off the sheet.
const refError = "#REF!"

// FormulaReferences returns the reference operands of a formula (cells,
// ranges, whole rows/columns and defined names) as written.
func FormulaReferences(formula string) []string {
	ps := efp.ExcelParser()
	var refs []string
	for _, token := range ps.Parse(strings.TrimPrefix(formula, "=")) {
		if token.TType == efp.TokenTypeOperand && token.TSubType == efp.TokenSubTypeRange {
			refs = append(refs, token.TValue)
		}
	}
	return refs
}

// TranslateFormula rewrites a formula written at origin so that it refers to
// the same relative cells when placed at target. Relative row and column parts
// move by the distance between the two cells; parts anchored with $ stay.
// String literals and sheet names are left alone, and a reference moved off
// the sheet becomes #REF!. A leading "=" is kept if present.
func TranslateFormula(formula string, origin, target CellRef) string {
	return shiftFormula(formula, target.Row-origin.Row, target.Col-origin.Col)
}

func shiftFormula(formula string, rows, cols int) string {
	if rows == 0 && cols == 0 {
		return formula
	}
	if len(FormulaReferences(formula)) == 0 {
		return formula
	}

	var b strings.Builder
	b.Grow(len(formula) + 8)

	n := len(formula)
	for i := 0; i < n; {
		ch := formula[i]
		switch {
		case ch == '"' || ch == '\'':
			j := skipQuoted(formula, i)
			b.WriteString(formula[i:j])
			i = j
		case ch == '[':
			// external workbook index or structured reference
			j := strings.IndexByte(formula[i:], ']')
			if j < 0 {
				b.WriteString(formula[i:])
				return b.String()
			}
			b.WriteString(formula[i : i+j+1])
			i += j + 1
		case ch == '$' || isAlpha(ch) || isDigit(ch):
			if out, width, ok := shiftReference(formula[i:], rows, cols); ok {
				b.WriteString(out)
				i += width
				continue
			}
			j := i + 1
			for j < n && isIdent(formula[j]) {
				j++
			}
			b.WriteString(formula[i:j])
			i = j
		default:
			b.WriteByte(ch)
			i++
		}
	}
	return b.String()
}

// skipQuoted returns the index just past the quoted run starting at i.
// A doubled quote inside the run is an escaped quote.
func skipQuoted(s string, i int) int {
	q := s[i]
	j := i + 1
	for j < len(s) {
		if s[j] == q {
			if j+1 < len(s) && s[j+1] == q {
				j += 2
				continue
			}
			return j + 1
		}
		j++
	}
	return len(s)
}

func isIdent(b byte) bool {
	return isAlpha(b) || isDigit(b) || b == '_' || b == '.' || b == '\\' || b == '$'
}

// refPart is one side of a reference: a column, a row, or both.
type refPart struct {
	colAbs, rowAbs bool
	col, row       int
	width          int
}

// scanRefPart scans [$]letters[$]digits at the start of s. Either half may be
// missing; width is zero when nothing matched.
func scanRefPart(s string) refPart {
	var p refPart
	i := 0
	if i < len(s) && s[i] == '$' {
		i++
	}
	start := i
	for i < len(s) && isAlpha(s[i]) && i-start < 4 {
		i++
	}
	if i > start {
		col, err := NameToCol(s[start:i])
		if err != nil {
			return refPart{}
		}
		p.colAbs = start > 0
		p.col = col
		p.width = i
	} else {
		i = 0
	}

	j := i
	if j < len(s) && s[j] == '$' {
		j++
	}
	digits := j
	for j < len(s) && isDigit(s[j]) {
		j++
	}
	if j > digits {
		row, err := strconv.Atoi(s[digits:j])
		if err != nil || row < 1 || row > MaxRows {
			return refPart{}
		}
		p.rowAbs = digits > i
		p.row = row
		p.width = j
	}
	return p
}

// shiftReference tries to read a cell reference, a whole-column range (A:C) or
// a whole-row range (1:3) at the start of s and returns it moved.
func shiftReference(s string, rows, cols int) (string, int, bool) {
	p := scanRefPart(s)
	switch {
	case p.width == 0:
		return "", 0, false
	case p.col > 0 && p.row > 0:
		if !refEnds(s, p.width) {
			return "", 0, false
		}
		return p.shift(rows, cols), p.width, true
	}

	// whole columns or whole rows need the other end of the range
	if p.width >= len(s) || s[p.width] != ':' {
		return "", 0, false
	}
	q := scanRefPart(s[p.width+1:])
	width := p.width + 1 + q.width
	if q.width == 0 || !refEnds(s, width) {
		return "", 0, false
	}
	if (p.col > 0) != (q.col > 0) || (p.row > 0) != (q.row > 0) {
		return "", 0, false
	}
	first, last := p.shift(rows, cols), q.shift(rows, cols)
	if first == refError || last == refError {
		return refError, width, true
	}
	return first + ":" + last, width, true
}

// refEnds reports whether a reference of the given width ends cleanly: not
// followed by more of a name, a function call, or a sheet separator.
func refEnds(s string, width int) bool {
	if width >= len(s) {
		return true
	}
	next := s[width]
	return !isIdent(next) && next != '(' && next != '!'
}

func (p refPart) shift(rows, cols int) string {
	var b strings.Builder
	if p.col > 0 {
		col := p.col
		if !p.colAbs {
			col += cols
		}
		if col < 1 || col > MaxColumns {
			return refError
		}
		if p.colAbs {
			b.WriteByte('$')
		}
		b.WriteString(ColToName(col))
	}
	if p.row > 0 {
		row := p.row
		if !p.rowAbs {
			row += rows
		}
		if row < 1 || row > MaxRows {
			return refError
		}
		if p.rowAbs {
			b.WriteByte('$')
		}
		b.WriteString(strconv.Itoa(row))
	}
	return b.String()
}
