package importer

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Cell values treated as an explicit empty value, case-insensitively.
var nullTokens = map[string]bool{
	"null": true,
	"n/a":  true,
}

// CleanCell trims a cell, collapses internal whitespace runs and canonicalizes
// null markers to the empty string.
func CleanCell(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if nullTokens[strings.ToLower(s)] {
		return ""
	}
	return s
}

// ReadDelimited turns raw delimited-text bytes into a rectangular grid. The
// header is always row 0 and every row shares the header's width. Fully blank
// lines are skipped.
func ReadDelimited(data []byte) ([][]string, []string, error) {
	text, warnings, err := DecodeToUTF8(data)
	if err != nil {
		return nil, nil, err
	}

	delimiter := DetectDelimiter(text)

	var grid [][]string
	width := 0
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}

		cells := strings.Split(line, string(delimiter))
		row := make([]string, len(cells))
		blank := true
		for i, cell := range cells {
			row[i] = FixMojibake(CleanCell(cell))
			if row[i] != "" {
				blank = false
			}
		}
		if blank {
			continue
		}

		if width == 0 {
			width = len(row)
		}
		grid = append(grid, fitWidth(row, width))
	}

	if len(grid) == 0 {
		return nil, nil, fmt.Errorf("file contains no data")
	}
	return grid, warnings, nil
}

// ReadWorkbook reads the first sheet of a spreadsheet workbook into a grid
// bounded to the real populated header width. Some writers report phantom
// trailing columns past the actual data; scanning the header for its last
// non-empty cell excludes them, and every row is truncated to that exact
// width.
func ReadWorkbook(filePath string) ([][]string, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets found in workbook")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("workbook contains no data")
	}

	width := headerWidth(rows[0])
	if width == 0 {
		return nil, fmt.Errorf("workbook header row is empty")
	}

	var grid [][]string
	for i, raw := range rows {
		row := make([]string, width)
		blank := true
		for j := 0; j < width; j++ {
			if j < len(raw) {
				row[j] = FixMojibake(CleanCell(raw[j]))
			}
			if row[j] != "" {
				blank = false
			}
		}
		// The header always survives; blank data rows do not.
		if blank && i > 0 {
			continue
		}
		grid = append(grid, row)
	}

	return grid, nil
}

// headerWidth finds the populated width of the header row by excluding
// trailing phantom columns.
func headerWidth(header []string) int {
	width := 0
	for i, cell := range header {
		if CleanCell(cell) != "" {
			width = i + 1
		}
	}
	return width
}

func fitWidth(row []string, width int) []string {
	if len(row) == width {
		return row
	}
	if len(row) > width {
		return row[:width]
	}
	padded := make([]string, width)
	copy(padded, row)
	return padded
}
