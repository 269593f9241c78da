package output

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

type ExcelWriter struct{}

func (w *ExcelWriter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func (w *ExcelWriter) Extension() string {
	return "xlsx"
}

// Write renders the title in the first row, headers in the second and data
// rows below. The header row is frozen.
func (w *ExcelWriter) Write(out io.Writer, table Table) error {
	file := excelize.NewFile()
	defer file.Close()

	sheet := file.GetSheetName(0)

	if err := file.SetCellValue(sheet, "A1", table.Title); err != nil {
		return fmt.Errorf("set excel title: %w", err)
	}

	bold, err := file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create excel header style: %w", err)
	}

	for col, header := range table.Headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 2)
		if err := file.SetCellValue(sheet, cell, header); err != nil {
			return fmt.Errorf("set excel header %s: %w", cell, err)
		}
	}
	if len(table.Headers) > 0 {
		last, _ := excelize.CoordinatesToCellName(len(table.Headers), 2)
		if err := file.SetCellStyle(sheet, "A2", last, bold); err != nil {
			return fmt.Errorf("set excel header style: %w", err)
		}
	}

	for i, row := range table.Rows {
		rowNumber := i + 3
		for col, value := range row {
			cell, _ := excelize.CoordinatesToCellName(col+1, rowNumber)
			if err := file.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("set excel value %s: %w", cell, err)
			}
		}
	}

	if err := file.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      2,
		TopLeftCell: "A3",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freeze excel header: %w", err)
	}

	if _, err := file.WriteTo(out); err != nil {
		return fmt.Errorf("write excel output: %w", err)
	}

	return nil
}
