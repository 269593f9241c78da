package importer

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// CSVReader reads comma or semicolon separated files. The separator is taken
// from the header line.
type CSVReader struct{}

func (r *CSVReader) Read(path string) ([]Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv file %s: %w", path, err)
	}
	defer file.Close()

	buffered := bufio.NewReader(file)
	reader := csv.NewReader(buffered)
	reader.FieldsPerRecord = -1
	reader.Comma = sniffDelimiter(buffered)

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	normalizedHeaders := normalizeHeaders(headers)

	records := make([]Record, 0, 128)
	rowNumber := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		rowNumber++
		if err != nil {
			return nil, fmt.Errorf("read csv row %d: %w", rowNumber, err)
		}

		records = append(records, newRecord(rowNumber, normalizedHeaders, row))
	}

	return records, nil
}

func sniffDelimiter(reader *bufio.Reader) rune {
	peek, _ := reader.Peek(4096)
	header, _, _ := strings.Cut(string(peek), "\n")
	if strings.Count(header, ";") > strings.Count(header, ",") {
		return ';'
	}
	return ','
}
