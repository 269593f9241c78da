package importer

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ExcelReader reads the first sheet. The first row holds the headers.
type ExcelReader struct{}

func (r *ExcelReader) Read(path string) ([]Record, error) {
	file, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open excel file %s: %w", path, err)
	}
	defer file.Close()

	sheetName := file.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("excel file has no sheets: %s", path)
	}

	rows, err := file.Rows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("read rows from sheet %s: %w", sheetName, err)
	}
	defer rows.Close()

	var headers []string
	records := make([]Record, 0, 128)
	rowNumber := 0
	for rows.Next() {
		rowNumber++
		columns, err := rows.Columns()
		if err != nil {
			return nil, fmt.Errorf("read sheet %s row %d: %w", sheetName, rowNumber, err)
		}
		if headers == nil {
			headers = normalizeHeaders(columns)
			continue
		}

		record := newRecord(rowNumber, headers, columns)
		if record.blank() {
			continue
		}
		records = append(records, record)
	}
	if err := rows.Error(); err != nil {
		return nil, fmt.Errorf("iterate sheet %s: %w", sheetName, err)
	}
	if headers == nil {
		return nil, fmt.Errorf("sheet %s is empty", sheetName)
	}

	return records, nil
}
