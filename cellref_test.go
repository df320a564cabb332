package xltemplate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCellRef(t *testing.T) {
	tests := []struct {
		input string
		want  CellRef
	}{
		{"A1", CellRef{Row: 1, Col: 1}},
		{"$C$7", CellRef{Row: 7, Col: 3}},
		{"Sheet1!B5", CellRef{Sheet: "Sheet1", Row: 5, Col: 2}},
		{"'My Sheet'!AA10", CellRef{Sheet: "My Sheet", Row: 10, Col: 27}},
		{"xfd1048576", CellRef{Row: MaxRows, Col: MaxColumns}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseCellRef(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCellRef_Invalid(t *testing.T) {
	for _, input := range []string{"", "A", "1", "A0", "XFE1", "A1048577", "1A"} {
		_, err := ParseCellRef(input)
		assert.Error(t, err, input)
	}
}

func TestColToName_RoundTrip(t *testing.T) {
	cases := map[int]string{1: "A", 26: "Z", 27: "AA", 52: "AZ", 703: "AAA", MaxColumns: "XFD"}
	for col, name := range cases {
		assert.Equal(t, name, ColToName(col))
		got, err := NameToCol(name)
		require.NoError(t, err)
		assert.Equal(t, col, got)
	}
}

func TestParseAreaRef(t *testing.T) {
	area, err := ParseAreaRef("Sheet1!B2:D5")
	require.NoError(t, err)
	assert.Equal(t, "Sheet1", area.Last.Sheet)
	assert.Equal(t, Size{Rows: 4, Cols: 3}, area.Size())
	assert.Equal(t, "Sheet1!B2:D5", area.String())

	single, err := ParseAreaRef("C3")
	require.NoError(t, err)
	assert.Equal(t, single.First, single.Last)
}

func TestAreaRef_Offset(t *testing.T) {
	area, err := ParseAreaRef("A1:B2")
	require.NoError(t, err)
	moved := area.Offset(3, 3)
	assert.Equal(t, "D4", moved.First.CellName())
	assert.Equal(t, "E5", moved.Last.CellName())
}
