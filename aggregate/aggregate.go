// Package aggregate builds per-worker and per-site period reports from stored
// report records.
package aggregate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sitehours/period"
	"sitehours/report"
)

// UnspecifiedPosition is used for workers missing from the directory.
const UnspecifiedPosition = "unspecified position"

// ErrNotFound matches every *NotFoundError.
var ErrNotFound = errors.New("no reports found")

// NotFoundError means the identifier and range were well-formed but no report
// matched.
type NotFoundError struct {
	Kind   string
	ID     string
	Period period.Range
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no reports for %s %q between %s and %s", e.Kind, e.ID, e.Period.Start, e.Period.End)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// WorkerReportFinder returns a worker's records with timestamps in [from, to),
// sorted ascending by timestamp.
type WorkerReportFinder interface {
	FindByWorkerAndRange(ctx context.Context, workerID string, from, to time.Time) ([]report.Record, error)
}

// SiteReportFinder returns a site's records with timestamps in [from, to),
// sorted ascending by timestamp.
type SiteReportFinder interface {
	FindBySiteAndRange(ctx context.Context, siteID string, from, to time.Time) ([]report.Record, error)
}

// WorkerDirectory resolves worker profiles in one batch. Unknown IDs are
// absent from the returned map.
type WorkerDirectory interface {
	LookupWorkers(ctx context.Context, ids []string) (map[string]report.Profile, error)
}

// Options configure both aggregators.
type Options struct {
	// Location decides which calendar day a timestamp belongs to.
	Location            *time.Location
	UnspecifiedPosition string
}

func (o Options) location() *time.Location {
	if o.Location == nil {
		return time.Local
	}
	return o.Location
}

func (o Options) unspecifiedPosition() string {
	if o.UnspecifiedPosition == "" {
		return UnspecifiedPosition
	}
	return o.UnspecifiedPosition
}
