package importer

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"sitehours/report"
)

// parseHours accepts "7.5", "7,5" and "1.234,5" style values.
func parseHours(raw string) (float64, error) {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return 0, fmt.Errorf("empty hours")
	}
	if strings.Contains(cleaned, ",") {
		if strings.Contains(cleaned, ".") {
			cleaned = strings.ReplaceAll(cleaned, ".", "")
		}
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	}

	hours, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("parse hours %q: %w", raw, err)
	}
	if hours < 0 {
		return 0, fmt.Errorf("hours must not be negative")
	}
	return hours, nil
}

func parseDateTime(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty datetime")
	}

	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed, nil
	}

	layouts := []string{
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
		"2006-01-02T15:04:05",
		"2006-01-02T15:04",
		"02.01.2006 15:04:05",
		"02.01.2006 15:04",
		"02.01.2006 03:04 PM",
	}

	for _, layout := range layouts {
		if parsed, err := time.ParseInLocation(layout, value, loc); err == nil {
			return parsed, nil
		}
	}

	return time.Time{}, fmt.Errorf("unsupported datetime format: %q", value)
}

func parseDateAndTime(dateValue, timeValue string, loc *time.Location) (time.Time, error) {
	dateValue = strings.TrimSpace(dateValue)
	timeValue = strings.TrimSpace(timeValue)
	if dateValue == "" || timeValue == "" {
		return time.Time{}, fmt.Errorf("missing date or time")
	}
	return parseDateTime(dateValue+" "+timeValue, loc)
}

// parseWorkers reads a worker list such as "w1:Ivan Petrov; w2:Oleg".
// Entries without a name use the ID as display name. Repeated IDs keep their
// first occurrence.
func parseWorkers(raw string) ([]report.Worker, error) {
	workers := make([]report.Worker, 0, 4)
	seen := make(map[string]bool)

	for _, part := range strings.FieldsFunc(raw, func(r rune) bool { return r == ';' || r == '|' || r == '\n' }) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		id, name, _ := strings.Cut(part, ":")
		id = strings.TrimSpace(id)
		name = strings.TrimSpace(name)
		if id == "" {
			return nil, fmt.Errorf("worker entry %q has no id", part)
		}
		if name == "" {
			name = id
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		workers = append(workers, report.Worker{ID: id, Name: name})
	}

	return workers, nil
}
