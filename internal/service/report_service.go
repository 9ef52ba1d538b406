package service

import (
	"fmt"
	"os"
	"path/filepath"

	"registry-web/internal/models"

	"github.com/xuri/excelize/v2"
)

// ReportService writes downloadable error reports for finished imports.
type ReportService struct {
	outputDir string
}

func NewReportService(outputDir string) *ReportService {
	return &ReportService{outputDir: outputDir}
}

// WriteErrorReport renders an import's row errors into a workbook and returns
// the file's path. Callers only invoke it when the result carries errors.
func (s *ReportService) WriteErrorReport(sessionCode string, result *models.ImportResult) (string, error) {
	if err := os.MkdirAll(s.outputDir, 0o755); err != nil {
		return "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Errors"
	f.SetSheetName(f.GetSheetName(0), sheet)

	f.SetCellValue(sheet, "A1", "Summary")
	f.SetCellValue(sheet, "A2", "Total rows")
	f.SetCellValue(sheet, "B2", result.Total)
	f.SetCellValue(sheet, "A3", "Created")
	f.SetCellValue(sheet, "B3", result.Created)
	f.SetCellValue(sheet, "A4", "Updated")
	f.SetCellValue(sheet, "B4", result.Updated)
	f.SetCellValue(sheet, "A5", "Skipped")
	f.SetCellValue(sheet, "B5", result.Skipped)
	f.SetCellValue(sheet, "A6", "Not attempted")
	f.SetCellValue(sheet, "B6", result.NotAttempted)

	f.SetCellValue(sheet, "A8", "Errors")
	for i, msg := range result.Errors {
		cell, _ := excelize.CoordinatesToCellName(1, 9+i)
		f.SetCellValue(sheet, cell, msg)
	}

	path := filepath.Join(s.outputDir, fmt.Sprintf("import-errors-%s.xlsx", sessionCode))
	if err := f.SaveAs(path); err != nil {
		return "", err
	}
	return path, nil
}
