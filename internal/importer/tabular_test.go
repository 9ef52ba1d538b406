package importer

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestCleanCell(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"  hello  world  ", "hello world"},
		{"plain", "plain"},
		{"", ""},
		{"   ", ""},
		{"null", ""},
		{"NULL", ""},
		{"n/a", ""},
		{"N/A", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CleanCell(tt.input), "input %q", tt.input)
	}
}

func TestReadDelimited(t *testing.T) {
	data := []byte("ref,title,owner\n\nWI-001,First item,J Smith\nWI-002,  Second   item ,null\n\n")

	grid, warnings, err := ReadDelimited(data)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.Len(t, grid, 3)

	assert.Equal(t, []string{"ref", "title", "owner"}, grid[0])
	assert.Equal(t, []string{"WI-001", "First item", "J Smith"}, grid[1])
	assert.Equal(t, []string{"WI-002", "Second item", ""}, grid[2])
}

func TestReadDelimitedUniformWidth(t *testing.T) {
	// Short rows pad, long rows truncate to the header width.
	data := []byte("a;b;c\n1;2\n1;2;3;4")

	grid, _, err := ReadDelimited(data)
	require.NoError(t, err)
	for _, row := range grid {
		assert.Len(t, row, 3)
	}
}

func TestReadDelimitedEmpty(t *testing.T) {
	_, _, err := ReadDelimited([]byte("\n\n  \n"))
	assert.Error(t, err)
}

func TestReadWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetCellValue(sheet, "A1", "reference"))
	require.NoError(t, f.SetCellValue(sheet, "B1", "title"))
	require.NoError(t, f.SetCellValue(sheet, "A2", "WI-001"))
	require.NoError(t, f.SetCellValue(sheet, "B2", "First"))
	// Data past the header width is a phantom column and must be cut off.
	require.NoError(t, f.SetCellValue(sheet, "C2", "stray"))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	grid, err := ReadWorkbook(path)
	require.NoError(t, err)
	require.Len(t, grid, 2)
	assert.Equal(t, []string{"reference", "title"}, grid[0])
	assert.Equal(t, []string{"WI-001", "First"}, grid[1])
}

func TestReadWorkbookSkipsBlankDataRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blanks.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetCellValue(sheet, "A1", "reference"))
	require.NoError(t, f.SetCellValue(sheet, "A2", ""))
	require.NoError(t, f.SetCellValue(sheet, "A3", "WI-001"))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	grid, err := ReadWorkbook(path)
	require.NoError(t, err)
	require.Len(t, grid, 2)
	assert.Equal(t, "WI-001", grid[1][0])
}

func TestHeaderWidth(t *testing.T) {
	assert.Equal(t, 3, headerWidth([]string{"a", "b", "c"}))
	assert.Equal(t, 2, headerWidth([]string{"a", "b", "", ""}))
	assert.Equal(t, 3, headerWidth([]string{"a", "", "c"}))
	assert.Equal(t, 0, headerWidth([]string{"", ""}))
}
