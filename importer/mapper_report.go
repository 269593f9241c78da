package importer

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"sitehours/report"
)

// reportNamespace seeds derived report IDs so re-importing the same file
// yields the same IDs and the store ignores the duplicates.
var reportNamespace = uuid.MustParse("5b0c5e0e-8f3e-4d1e-9a55-3c3f7f1f7a21")

type reportRow struct {
	ID          string          `validate:"max=128"`
	Timestamp   time.Time       `validate:"required"`
	SiteID      string          `validate:"required,max=128"`
	Description string          `validate:"max=4000"`
	Hours       float64         `validate:"gte=0,lte=24"`
	Workers     []report.Worker `validate:"dive"`
}

type ReportMapper struct {
	validate *validator.Validate
}

func NewReportMapper() *ReportMapper {
	validate := validator.New()
	validate.RegisterStructValidation(func(sl validator.StructLevel) {
		worker := sl.Current().Interface().(report.Worker)
		if strings.TrimSpace(worker.ID) == "" {
			sl.ReportError(worker.ID, "ID", "ID", "required", "")
		}
	}, report.Worker{})
	return &ReportMapper{validate: validate}
}

func (m *ReportMapper) Name() string {
	return "report"
}

func (m *ReportMapper) Map(record Record, options MapOptions) (*report.Record, bool, error) {
	siteID := record.Get("siteid", "site", "objectid", "object")
	description := record.Get("description", "task", "work")
	rawHours := record.Get("hours", "duration")
	if siteID == "" && description == "" && rawHours == "" {
		return nil, false, nil
	}

	timestamp, err := m.timestamp(record, options.location())
	if err != nil {
		return nil, false, fmt.Errorf("row %d: parse timestamp: %w", record.RowNumber, err)
	}

	hours, err := parseHours(rawHours)
	if err != nil {
		return nil, false, fmt.Errorf("row %d: parse hours: %w", record.RowNumber, err)
	}

	workers, err := parseWorkers(record.Get("workers", "worker", "employees"))
	if err != nil {
		return nil, false, fmt.Errorf("row %d: parse workers: %w", record.RowNumber, err)
	}

	row := reportRow{
		ID:          record.Get("id", "reportid"),
		Timestamp:   timestamp,
		SiteID:      siteID,
		Description: description,
		Hours:       hours,
		Workers:     workers,
	}
	if err := m.validate.Struct(row); err != nil {
		return nil, false, fmt.Errorf("row %d: %w", record.RowNumber, err)
	}

	id := row.ID
	if id == "" {
		id = derivedReportID(row)
	}

	return &report.Record{
		ID:          id,
		Timestamp:   row.Timestamp,
		SiteID:      row.SiteID,
		SiteName:    record.Get("sitename", "objectname"),
		Description: row.Description,
		Workers:     row.Workers,
		Hours:       row.Hours,
		MediaRef:    record.Get("media", "mediaref", "photo"),
		Transcript:  record.Get("transcript", "voice"),
		Comment:     record.Get("comment", "note"),
	}, true, nil
}

func (m *ReportMapper) timestamp(record Record, loc *time.Location) (time.Time, error) {
	if value := record.Get("timestamp", "datetime"); value != "" {
		return parseDateTime(value, loc)
	}
	return parseDateAndTime(record.Get("date"), record.Get("time"), loc)
}

func derivedReportID(row reportRow) string {
	var key strings.Builder
	key.WriteString(row.SiteID)
	key.WriteByte('|')
	key.WriteString(row.Timestamp.UTC().Format(time.RFC3339Nano))
	key.WriteByte('|')
	key.WriteString(row.Description)
	key.WriteByte('|')
	key.WriteString(strconv.FormatFloat(row.Hours, 'f', -1, 64))
	for _, worker := range row.Workers {
		key.WriteByte('|')
		key.WriteString(worker.ID)
	}
	return uuid.NewSHA1(reportNamespace, []byte(key.String())).String()
}
