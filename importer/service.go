package importer

import (
	"fmt"
	"path/filepath"
	"time"

	"sitehours/report"
)

type Result struct {
	FilesProcessed int
	RowsRead       int
	RowsMapped     int
	RowsSkipped    int
	Records        []report.Record
}

type RunOptions struct {
	Location *time.Location
}

func Run(paths []string, format string, mapper Mapper, options RunOptions) (*Result, error) {
	result := &Result{Records: make([]report.Record, 0, 256)}
	for _, path := range paths {
		sourceFormat, err := inferFormat(path, format)
		if err != nil {
			return nil, err
		}
		reader, err := ReaderForFormat(sourceFormat)
		if err != nil {
			return nil, err
		}

		records, err := reader.Read(path)
		if err != nil {
			return nil, err
		}

		mapOptions := MapOptions{Location: options.Location}

		result.FilesProcessed++
		result.RowsRead += len(records)
		for _, record := range records {
			rec, ok, mapErr := mapper.Map(record, mapOptions)
			if mapErr != nil {
				return nil, fmt.Errorf("%s: %w", filepath.Base(path), mapErr)
			}
			if !ok || rec == nil {
				result.RowsSkipped++
				continue
			}

			result.RowsMapped++
			result.Records = append(result.Records, *rec)
		}
	}

	return result, nil
}
