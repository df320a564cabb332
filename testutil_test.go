package xltemplate

import (
	"archive/zip"
	"bytes"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// testdataDir returns a per-test directory for templates and output files.
func testdataDir(t *testing.T) string {
	t.Helper()
	return t.TempDir()
}

// saveTemplate saves f under name in the test directory and closes it.
func saveTemplate(t *testing.T, f *excelize.File, name string) string {
	t.Helper()
	path := filepath.Join(testdataDir(t), name)
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())
	return path
}

// openTemplate saves f and opens it as a Workbook.
func openTemplate(t *testing.T, f *excelize.File, opts ...Option) *Workbook {
	t.Helper()
	wb, err := Open(saveTemplate(t, f, "template.xlsx"), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { wb.Close() })
	return wb
}

// reopen writes wb and reads the result back with excelize.
func reopen(t *testing.T, wb *Workbook) *excelize.File {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, wb.Write(&buf))
	out, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	t.Cleanup(func() { out.Close() })
	return out
}

// worksheetXML writes wb and returns the raw XML of the named worksheet part,
// such as "xl/worksheets/sheet1.xml".
func worksheetXML(t *testing.T, wb *Workbook, part string) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, wb.Write(&buf))
	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	for _, zf := range zr.File {
		if zf.Name != part {
			continue
		}
		rc, err := zf.Open()
		require.NoError(t, err)
		defer rc.Close()
		b, err := io.ReadAll(rc)
		require.NoError(t, err)
		return string(b)
	}
	t.Fatalf("part %s not found", part)
	return ""
}

// cellValue reads a cell value, failing the test on error.
func cellValue(t *testing.T, f *excelize.File, sheet, cell string) string {
	t.Helper()
	v, err := f.GetCellValue(sheet, cell)
	require.NoError(t, err)
	return v
}

// mergeNames lists the merged ranges of a sheet as "A1:B2".
func mergeNames(t *testing.T, f *excelize.File, sheet string) []string {
	t.Helper()
	merges, err := f.GetMergeCells(sheet)
	require.NoError(t, err)
	names := make([]string, len(merges))
	for i, m := range merges {
		names[i] = m.GetStartAxis() + ":" + m.GetEndAxis()
	}
	return names
}

// createLabelTemplate creates a 2x2 labelled template.
// Layout:
//
//	A1: "Name" (bold)    B1: "NAME"
//	A2: "Qty"            B2: "$QTY"
func createLabelTemplate(t *testing.T) *excelize.File {
	t.Helper()
	f := excelize.NewFile()
	sheet := "Sheet1"

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	require.NoError(t, err)

	require.NoError(t, f.SetCellValue(sheet, "A1", "Name"))
	require.NoError(t, f.SetCellValue(sheet, "B1", "NAME"))
	require.NoError(t, f.SetCellValue(sheet, "A2", "Qty"))
	require.NoError(t, f.SetCellValue(sheet, "B2", "$QTY"))
	require.NoError(t, f.SetCellStyle(sheet, "A1", "A1", bold))
	return f
}
