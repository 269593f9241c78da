// Package period turns inclusive calendar-date ranges into ordered day keys.
package period

import (
	"fmt"
	"iter"
	"strings"
	"time"
)

const isoDateLayout = "2006-01-02"

// Date is a calendar day without time-of-day. It is comparable and is the
// grouping key for all per-day aggregation.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf truncates value to its calendar day in loc.
func DateOf(value time.Time, loc *time.Location) Date {
	if loc != nil {
		value = value.In(loc)
	}
	return Date{Year: value.Year(), Month: value.Month(), Day: value.Day()}
}

// Valid reports whether d names a real calendar day.
func (d Date) Valid() bool {
	if d.Month < time.January || d.Month > time.December || d.Day < 1 {
		return false
	}
	normalized := time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
	return normalized.Year() == d.Year && normalized.Month() == d.Month && normalized.Day() == d.Day
}

// Before reports whether d is strictly earlier than other.
func (d Date) Before(other Date) bool {
	return d.Compare(other) < 0
}

// Compare returns -1, 0 or +1.
func (d Date) Compare(other Date) int {
	switch {
	case d.Year != other.Year:
		return sign(d.Year - other.Year)
	case d.Month != other.Month:
		return sign(int(d.Month) - int(other.Month))
	default:
		return sign(d.Day - other.Day)
	}
}

// AddDays steps in whole calendar days. The arithmetic runs in UTC, so no
// daylight-saving transition can skip or repeat a day.
func (d Date) AddDays(n int) Date {
	return DateOf(time.Date(d.Year, d.Month, d.Day+n, 0, 0, 0, 0, time.UTC), nil)
}

// In returns midnight of d in loc.
func (d Date) In(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// Label is the display form "dd.MM" used by report headers.
func (d Date) Label() string {
	return fmt.Sprintf("%02d.%02d", d.Day, int(d.Month))
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// ParseDate accepts an ISO-8601 date or datetime. Datetimes are converted to
// loc before truncation.
func ParseDate(raw string, loc *time.Location) (Date, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return Date{}, &InvalidRangeError{Value: raw, Reason: "date is empty"}
	}
	if loc == nil {
		loc = time.Local
	}

	if parsed, err := time.Parse(isoDateLayout, value); err == nil {
		return DateOf(parsed, nil), nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if parsed, err := time.Parse(layout, value); err == nil {
			return DateOf(parsed, loc), nil
		}
	}
	for _, layout := range []string{"2006-01-02T15:04:05", "2006-01-02T15:04"} {
		if parsed, err := time.ParseInLocation(layout, value, loc); err == nil {
			return DateOf(parsed, loc), nil
		}
	}

	return Date{}, &InvalidRangeError{Value: raw, Reason: "not an ISO-8601 date or datetime"}
}

// Range is an inclusive span of calendar days with Start <= End.
type Range struct {
	Start Date
	End   Date
}

// NewRange validates start and end and returns the inclusive range.
func NewRange(start, end Date) (Range, error) {
	if !start.Valid() {
		return Range{}, &InvalidRangeError{Field: "start", Value: start.String(), Reason: "not a calendar date"}
	}
	if !end.Valid() {
		return Range{}, &InvalidRangeError{Field: "end", Value: end.String(), Reason: "not a calendar date"}
	}
	if end.Before(start) {
		return Range{}, &InvalidRangeError{
			Field:  "end",
			Value:  end.String(),
			Reason: fmt.Sprintf("end is before start %s", start),
		}
	}
	return Range{Start: start, End: end}, nil
}

// ParseRange parses both bounds and validates their order.
func ParseRange(startRaw, endRaw string, loc *time.Location) (Range, error) {
	start, err := ParseDate(startRaw, loc)
	if err != nil {
		return Range{}, withField(err, "start")
	}
	end, err := ParseDate(endRaw, loc)
	if err != nil {
		return Range{}, withField(err, "end")
	}
	return NewRange(start, end)
}

// Days yields every day of r in order. The sequence can be ranged over any
// number of times with identical output.
func (r Range) Days() iter.Seq[Date] {
	return func(yield func(Date) bool) {
		if r.End.Before(r.Start) {
			return
		}
		for day := r.Start; !r.End.Before(day); day = day.AddDays(1) {
			if !yield(day) {
				return
			}
		}
	}
}

// Expand materializes Days.
func (r Range) Expand() []Date {
	days := make([]Date, 0, r.Len())
	for day := range r.Days() {
		days = append(days, day)
	}
	return days
}

// Len is the number of days in r, both endpoints included.
func (r Range) Len() int {
	if r.End.Before(r.Start) {
		return 0
	}
	start := time.Date(r.Start.Year, r.Start.Month, r.Start.Day, 0, 0, 0, 0, time.UTC)
	end := time.Date(r.End.Year, r.End.Month, r.End.Day, 0, 0, 0, 0, time.UTC)
	return int(end.Sub(start).Hours()/24) + 1
}

// Contains reports whether day falls inside r.
func (r Range) Contains(day Date) bool {
	return !day.Before(r.Start) && !r.End.Before(day)
}

// Bounds returns the half-open instant interval [Start 00:00, End+1 00:00)
// in loc, suitable for timestamp queries.
func (r Range) Bounds(loc *time.Location) (time.Time, time.Time) {
	return r.Start.In(loc), r.End.AddDays(1).In(loc)
}

// Labels returns the display label of each day in r.
func (r Range) Labels() []string {
	labels := make([]string, 0, r.Len())
	for day := range r.Days() {
		labels = append(labels, day.Label())
	}
	return labels
}

func sign(value int) int {
	switch {
	case value < 0:
		return -1
	case value > 0:
		return 1
	default:
		return 0
	}
}
