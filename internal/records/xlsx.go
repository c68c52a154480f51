package records

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/zapissues/zapissues/internal/types"
)

// SheetName is the worksheet holding the findings
const SheetName = "Vulnerabilities"

// Headers are the column titles shared by the workbook and the terminal table
var Headers = []string{"Name", "Severity", "Instances", "URLs", "Solution"}

// ExportXLSX writes records to a workbook at path, one finding per row
func ExportXLSX(path string, records []types.VulnerabilityRecord) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("error creating directory %s, %w", dir, err)
		}
	}

	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("renaming sheet: %w", err)
	}
	for i, header := range Headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := file.SetCellValue(SheetName, cell, header); err != nil {
			return fmt.Errorf("writing header %s: %w", cell, err)
		}
	}

	for i, r := range records {
		row := []interface{}{
			r.Name,
			string(r.Severity),
			instancesText(r.InstanceCount),
			strings.Join(r.URLs, "\n"),
			r.Solution,
		}
		cell := fmt.Sprintf("A%d", i+2) // 1-indexed, skip header
		if err := file.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	if err := file.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save excel to %s, %w", path, err)
	}
	return nil
}

func instancesText(n *int) string {
	if n == nil {
		return ""
	}
	return fmt.Sprintf("%d", *n)
}
