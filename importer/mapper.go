package importer

import (
	"time"

	"sitehours/report"
)

// Mapper turns one source row into a report. ok is false for rows that carry
// no report and should be counted as skipped.
type Mapper interface {
	Name() string
	Map(record Record, options MapOptions) (rec *report.Record, ok bool, err error)
}

type MapOptions struct {
	// Location applies to timestamps without an explicit offset.
	Location *time.Location
}

func (o MapOptions) location() *time.Location {
	if o.Location == nil {
		return time.Local
	}
	return o.Location
}
