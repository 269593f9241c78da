package aggregate

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"sitehours/period"
	"sitehours/report"
)

type SiteReport struct {
	SiteID     string
	SiteName   string
	Period     period.Range
	Days       []period.Date
	Employees  []Employee
	TotalHours float64
	TotalCost  float64
}

// Employee is one row of the site matrix. DailyHours is aligned to Days of
// the enclosing SiteReport.
type Employee struct {
	WorkerID   string
	Name       string
	Position   string
	HourlyRate float64
	DailyHours []float64
	TotalHours float64
	TotalCost  float64
	Comment    string
}

type SiteAggregator struct {
	store     SiteReportFinder
	directory WorkerDirectory
	options   Options
}

func NewSiteAggregator(store SiteReportFinder, directory WorkerDirectory, options Options) *SiteAggregator {
	return &SiteAggregator{store: store, directory: directory, options: options}
}

// Aggregate builds the employee matrix for siteID between start and end. Every
// worker listed on a report is credited with the report's full hours.
func (a *SiteAggregator) Aggregate(ctx context.Context, siteID string, start, end period.Date) (SiteReport, error) {
	r, err := period.NewRange(start, end)
	if err != nil {
		return SiteReport{}, err
	}

	logger := zerolog.Ctx(ctx)
	loc := a.options.location()
	from, to := r.Bounds(loc)
	records, err := a.store.FindBySiteAndRange(ctx, siteID, from, to)
	if err != nil {
		return SiteReport{}, fmt.Errorf("find reports for site %s: %w", siteID, err)
	}
	if err := ctx.Err(); err != nil {
		return SiteReport{}, err
	}
	if len(records) == 0 {
		return SiteReport{}, &NotFoundError{Kind: "site", ID: siteID, Period: r}
	}

	employees := newEmployeeIndex()
	for _, record := range records {
		if len(record.Workers) == 0 {
			logger.Debug().
				Str("report_id", record.ID).
				Str("site_id", siteID).
				Msg("skipping report without workers")
			continue
		}
		day := period.DateOf(record.Timestamp, loc)
		for _, worker := range record.Workers {
			employees.get(worker).add(day, record.Hours)
		}
	}

	profiles := map[string]report.Profile{}
	if ids := employees.ids(); len(ids) > 0 {
		profiles, err = a.directory.LookupWorkers(ctx, ids)
		if err != nil {
			return SiteReport{}, fmt.Errorf("lookup workers for site %s: %w", siteID, err)
		}
	}

	days := r.Expand()
	out := SiteReport{
		SiteID:    siteID,
		SiteName:  siteNameOf(records, siteID),
		Period:    r,
		Days:      days,
		Employees: make([]Employee, 0, len(employees.order)),
	}
	for _, id := range employees.order {
		acc := employees.byID[id]
		profile, found := profiles[id]
		if !found {
			logger.Debug().Str("worker_id", id).Msg("worker missing from directory")
			profile = report.Profile{WorkerID: id, Position: a.options.unspecifiedPosition()}
		}
		employee, dropped := acc.finalize(days, r, profile)
		if dropped != 0 {
			logger.Warn().
				Str("worker_id", id).
				Float64("dropped_hours", dropped).
				Msg("hours bucketed outside requested range")
		}
		out.Employees = append(out.Employees, employee)
	}

	for _, employee := range out.Employees {
		out.TotalHours += employee.TotalHours
		out.TotalCost += employee.TotalCost
	}

	return out, nil
}

func siteNameOf(records []report.Record, fallback string) string {
	for _, record := range records {
		if record.SiteName != "" {
			return record.SiteName
		}
	}
	return fallback
}

// employeeIndex keeps accumulators in order of first appearance.
type employeeIndex struct {
	order []string
	byID  map[string]*employeeAccumulator
}

func newEmployeeIndex() *employeeIndex {
	return &employeeIndex{byID: make(map[string]*employeeAccumulator)}
}

func (idx *employeeIndex) get(worker report.Worker) *employeeAccumulator {
	if acc, ok := idx.byID[worker.ID]; ok {
		return acc
	}
	acc := &employeeAccumulator{
		workerID: worker.ID,
		name:     worker.Name,
		daily:    make(map[period.Date]float64),
	}
	idx.byID[worker.ID] = acc
	idx.order = append(idx.order, worker.ID)
	return acc
}

func (idx *employeeIndex) ids() []string {
	return append([]string(nil), idx.order...)
}

type employeeAccumulator struct {
	workerID string
	name     string
	daily    map[period.Date]float64
	total    float64
}

func (acc *employeeAccumulator) add(day period.Date, hours float64) {
	acc.daily[day] += hours
	acc.total += hours
}

// finalize projects the sparse buckets onto days and returns the hours of
// buckets that fell outside r. TotalHours is summed from the dense row so it
// always equals the sum of DailyHours.
func (acc *employeeAccumulator) finalize(days []period.Date, r period.Range, profile report.Profile) (Employee, float64) {
	dense := make([]float64, len(days))
	total := 0.0
	for i, day := range days {
		dense[i] = acc.daily[day]
		total += dense[i]
	}

	dropped := 0.0
	for day, hours := range acc.daily {
		if !r.Contains(day) {
			dropped += hours
		}
	}

	name := acc.name
	if name == "" {
		name = profile.Name
	}
	if name == "" {
		name = acc.workerID
	}

	return Employee{
		WorkerID:   acc.workerID,
		Name:       name,
		Position:   profile.Position,
		HourlyRate: profile.HourlyRate,
		DailyHours: dense,
		TotalHours: total,
		TotalCost:  total * profile.HourlyRate,
	}, dropped
}
