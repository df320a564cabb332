package xltemplate

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestOpen_MissingFile(t *testing.T) {
	_, err := Open(filepath.Join(testdataDir(t), "missing.xlsx"))
	assert.ErrorIs(t, err, ErrLoad)
}

func TestOpen_NotAWorkbook(t *testing.T) {
	path := filepath.Join(testdataDir(t), "notes.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("plain text"), 0o644))

	_, err := Open(path)
	assert.ErrorIs(t, err, ErrLoad)

	_, err = OpenReader(strings.NewReader("plain text"))
	assert.ErrorIs(t, err, ErrLoad)
}

func TestOpen_MeasuresExtent(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetCellValue("Sheet1", "B3", "x"))
	require.NoError(t, f.MergeCell("Sheet1", "C1", "D2"))
	_, err := f.NewSheet("Empty")
	require.NoError(t, err)

	wb := openTemplate(t, f)
	assert.Equal(t, []string{"Sheet1", "Empty"}, wb.SheetNames())

	st, err := wb.State("Sheet1")
	require.NoError(t, err)
	assert.Equal(t, Size{Rows: 3, Cols: 4}, st.Extent)
	assert.Equal(t, Size{Rows: 1, Cols: 1}, st.Grid)
	assert.False(t, st.Tiled)
	assert.Equal(t, st.Extent, st.TilePitch())

	_, err = wb.State("Nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOpenReader(t *testing.T) {
	f := createLabelTemplate(t)
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	require.NoError(t, f.Close())

	wb, err := OpenReader(&buf)
	require.NoError(t, err)
	defer wb.Close()

	st, err := wb.State("Sheet1")
	require.NoError(t, err)
	assert.Equal(t, Size{Rows: 2, Cols: 2}, st.Extent)
}

func TestOpen_WithLogger(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	wb := openTemplate(t, createLabelTemplate(t), WithLogger(logger))
	require.NoError(t, wb.Tile("Sheet1", 1, 2))

	assert.Contains(t, logs.String(), "loaded sheet")
	assert.Contains(t, logs.String(), "tiled sheet")
}

func TestOpen_RecalculateOnOpen(t *testing.T) {
	wb := openTemplate(t, createLabelTemplate(t), WithRecalculateOnOpen(true))

	out := reopen(t, wb)
	props, err := out.GetCalcProps()
	require.NoError(t, err)
	require.NotNil(t, props.FullCalcOnLoad)
	assert.True(t, *props.FullCalcOnLoad)
}

func TestCopySheet(t *testing.T) {
	wb := openTemplate(t, createLabelTemplate(t))

	require.NoError(t, wb.CopySheet("Sheet1", "Report"))
	assert.Equal(t, []string{"Sheet1", "Report"}, wb.SheetNames())

	st, err := wb.State("Report")
	require.NoError(t, err)
	assert.Equal(t, Size{Rows: 2, Cols: 2}, st.Extent)

	out := reopen(t, wb)
	assert.Equal(t, "NAME", cellValue(t, out, "Report", "B1"))
	assert.Equal(t, "$QTY", cellValue(t, out, "Report", "B2"))
}

func TestCopySheet_Errors(t *testing.T) {
	wb := openTemplate(t, createLabelTemplate(t))

	err := wb.CopySheet("Missing", "Report")
	assert.ErrorIs(t, err, ErrNotFound)

	err = wb.CopySheet("Sheet1", "Sheet1")
	assert.ErrorIs(t, err, ErrDuplicateName)

	require.NoError(t, wb.CopySheet("Sheet1", "Report"))
	err = wb.CopySheet("Sheet1", "Report")
	assert.ErrorIs(t, err, ErrDuplicateName)

	var sheetErr *SheetError
	require.ErrorAs(t, err, &sheetErr)
	assert.Equal(t, "Report", sheetErr.Sheet)
}

func TestCopySheet_CarriesTileState(t *testing.T) {
	wb := openTemplate(t, createLabelTemplate(t))
	require.NoError(t, wb.Tile("Sheet1", 2, 3))
	require.NoError(t, wb.CopySheet("Sheet1", "Copy"))

	src, err := wb.State("Sheet1")
	require.NoError(t, err)
	dup, err := wb.State("Copy")
	require.NoError(t, err)
	assert.Equal(t, src, dup)

	assert.ErrorIs(t, wb.Tile("Copy", 2, 2), ErrState)
}

func TestCopySheet_StatesAreIndependent(t *testing.T) {
	wb := openTemplate(t, createLabelTemplate(t))
	require.NoError(t, wb.CopySheet("Sheet1", "Copy"))
	require.NoError(t, wb.Tile("Copy", 2, 2))

	st, err := wb.State("Sheet1")
	require.NoError(t, err)
	assert.False(t, st.Tiled)
	require.NoError(t, wb.Tile("Sheet1", 1, 3))
}

func TestSave(t *testing.T) {
	wb := openTemplate(t, createLabelTemplate(t))
	require.NoError(t, wb.Fill("Sheet1", map[string]any{"NAME": "Alice"}))

	path := filepath.Join(testdataDir(t), "out.xlsx")
	require.NoError(t, wb.Save(path))

	out, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer out.Close()
	assert.Equal(t, "Alice", cellValue(t, out, "Sheet1", "B1"))
}

func TestSave_WriteError(t *testing.T) {
	wb := openTemplate(t, createLabelTemplate(t))

	err := wb.Save(filepath.Join(testdataDir(t), "no", "such", "dir", "out.xlsx"))
	assert.ErrorIs(t, err, ErrWrite)
}

// createLinkedTemplate creates a one-cell template with a comment and an
// external hyperlink on A1, and a frozen first row and column.
func createLinkedTemplate(t *testing.T) *excelize.File {
	t.Helper()
	f := excelize.NewFile()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "Docs"))
	require.NoError(t, f.SetCellHyperLink("Sheet1", "A1", "https://example.com", "External"))
	require.NoError(t, f.AddComment("Sheet1", excelize.Comment{Cell: "A1", Author: "ops", Text: "see docs"}))
	require.NoError(t, f.SetPanes("Sheet1", &excelize.Panes{
		Freeze:      true,
		XSplit:      1,
		YSplit:      1,
		TopLeftCell: "B2",
		ActivePane:  "bottomRight",
	}))
	return f
}

func commentCells(t *testing.T, f *excelize.File, sheet string) []string {
	t.Helper()
	comments, err := f.GetComments(sheet)
	require.NoError(t, err)
	cells := make([]string, len(comments))
	for i, c := range comments {
		cells[i] = c.Cell
	}
	return cells
}

func hyperlink(t *testing.T, f *excelize.File, sheet, cell string) string {
	t.Helper()
	ok, link, err := f.GetCellHyperLink(sheet, cell)
	require.NoError(t, err)
	if !ok {
		return ""
	}
	return link
}

func TestCopySheet_ThenTileCopy(t *testing.T) {
	wb := openTemplate(t, createLinkedTemplate(t))
	require.NoError(t, wb.CopySheet("Sheet1", "Copy"))
	require.NoError(t, wb.Tile("Copy", 1, 2))

	out := reopen(t, wb)

	// the source is untouched by tiling the copy
	assert.ElementsMatch(t, []string{"A1"}, commentCells(t, out, "Sheet1"))
	assert.Equal(t, "https://example.com", hyperlink(t, out, "Sheet1", "A1"))
	assert.Empty(t, hyperlink(t, out, "Sheet1", "C1"))
	assert.Empty(t, cellValue(t, out, "Sheet1", "C1"))

	assert.ElementsMatch(t, []string{"A1", "C1"}, commentCells(t, out, "Copy"))
	assert.Equal(t, "https://example.com", hyperlink(t, out, "Copy", "A1"))
	assert.Equal(t, "https://example.com", hyperlink(t, out, "Copy", "C1"))
	assert.Equal(t, "Docs", cellValue(t, out, "Copy", "C1"))
}

func TestCopySheet_AfterTile(t *testing.T) {
	wb := openTemplate(t, createLinkedTemplate(t))
	require.NoError(t, wb.Tile("Sheet1", 1, 2))
	require.NoError(t, wb.CopySheet("Sheet1", "Copy"))

	out := reopen(t, wb)
	for _, sheet := range []string{"Sheet1", "Copy"} {
		assert.ElementsMatch(t, []string{"A1", "C1"}, commentCells(t, out, sheet), sheet)
		assert.Equal(t, "https://example.com", hyperlink(t, out, sheet, "A1"), sheet)
		assert.Equal(t, "https://example.com", hyperlink(t, out, sheet, "C1"), sheet)
		assert.Equal(t, "Docs", cellValue(t, out, sheet, "C1"), sheet)
	}
}

func TestCopySheet_AfterTileAndFill(t *testing.T) {
	wb := openTemplate(t, createLabelTemplate(t))
	require.NoError(t, wb.Tile("Sheet1", 1, 2))
	require.NoError(t, wb.Fill("Sheet1", map[string]any{
		"NAME": Hyperlink("https://example.com/alice", "Alice"),
	}, AtGrid(1, 2)))
	require.NoError(t, wb.CopySheet("Sheet1", "Copy"))

	out := reopen(t, wb)
	assert.Equal(t, "Alice", cellValue(t, out, "Copy", "E1"))
	assert.Equal(t, "https://example.com/alice", hyperlink(t, out, "Copy", "E1"))
	assert.Equal(t, "NAME", cellValue(t, out, "Copy", "B1"))
	assert.Equal(t, "$QTY", cellValue(t, out, "Copy", "E2"))
}

func TestCopySheet_KeepsPanesMergesAndSizes(t *testing.T) {
	f := createLinkedTemplate(t)
	require.NoError(t, f.SetCellValue("Sheet1", "B3", "wide"))
	require.NoError(t, f.MergeCell("Sheet1", "B3", "C3"))
	require.NoError(t, f.SetRowHeight("Sheet1", 3, 28))
	require.NoError(t, f.SetColWidth("Sheet1", "B", "B", 24))

	wb := openTemplate(t, f)
	require.NoError(t, wb.CopySheet("Sheet1", "Copy"))

	out := reopen(t, wb)
	panes, err := out.GetPanes("Copy")
	require.NoError(t, err)
	assert.True(t, panes.Freeze)
	assert.Equal(t, 1, panes.XSplit)
	assert.Equal(t, 1, panes.YSplit)
	assert.Equal(t, "B2", panes.TopLeftCell)

	assert.Equal(t, []string{"B3:C3"}, mergeNames(t, out, "Copy"))

	h, err := out.GetRowHeight("Copy", 3)
	require.NoError(t, err)
	assert.Equal(t, 28.0, h)
	w, err := out.GetColWidth("Copy", "B")
	require.NoError(t, err)
	assert.Equal(t, 24.0, w)
}

func TestCopySheet_FailedCopyLeavesNoSheet(t *testing.T) {
	wb := openTemplate(t, createLabelTemplate(t))
	// only the values copy already has the target name
	_, err := wb.values.NewSheet("Report")
	require.NoError(t, err)

	err = wb.CopySheet("Sheet1", "Report")
	require.ErrorIs(t, err, ErrDuplicateName)

	idx, err := wb.edit.GetSheetIndex("Report")
	require.NoError(t, err)
	assert.Equal(t, -1, idx)
	_, err = wb.State("Report")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, []string{"Sheet1"}, wb.SheetNames())
}
