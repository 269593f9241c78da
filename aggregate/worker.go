package aggregate

import (
	"context"
	"fmt"
	"sort"

	"sitehours/period"
	"sitehours/report"
)

type WorkerPeriod struct {
	WorkerID   string
	WorkerName string
	Period     period.Range
	Days       []WorkerDay
	TotalHours float64
}

// WorkerDay holds one calendar day's reports in store order.
type WorkerDay struct {
	Date       period.Date
	Reports    []report.Record
	TotalHours float64
}

// WorkerReportRow is one report flattened with the subtotal of its day.
type WorkerReportRow struct {
	Record      report.Record
	Day         period.Date
	DayTotal    float64
	FirstOfDay  bool
	PeriodTotal float64
}

// Count is the number of reports across all days.
func (p WorkerPeriod) Count() int {
	count := 0
	for _, day := range p.Days {
		count += len(day.Reports)
	}
	return count
}

// Rows flattens Days, attaching the day subtotal to every row and marking the
// row where the day changes.
func (p WorkerPeriod) Rows() []WorkerReportRow {
	rows := make([]WorkerReportRow, 0, p.Count())
	for _, day := range p.Days {
		for i, record := range day.Reports {
			rows = append(rows, WorkerReportRow{
				Record:      record,
				Day:         day.Date,
				DayTotal:    day.TotalHours,
				FirstOfDay:  i == 0,
				PeriodTotal: p.TotalHours,
			})
		}
	}
	return rows
}

type WorkerAggregator struct {
	store   WorkerReportFinder
	options Options
}

func NewWorkerAggregator(store WorkerReportFinder, options Options) *WorkerAggregator {
	return &WorkerAggregator{store: store, options: options}
}

// Aggregate returns workerID's reports between start and end, grouped by day.
func (a *WorkerAggregator) Aggregate(ctx context.Context, workerID string, start, end period.Date) (WorkerPeriod, error) {
	r, err := period.NewRange(start, end)
	if err != nil {
		return WorkerPeriod{}, err
	}

	loc := a.options.location()
	from, to := r.Bounds(loc)
	records, err := a.store.FindByWorkerAndRange(ctx, workerID, from, to)
	if err != nil {
		return WorkerPeriod{}, fmt.Errorf("find reports for worker %s: %w", workerID, err)
	}
	if err := ctx.Err(); err != nil {
		return WorkerPeriod{}, err
	}
	if len(records) == 0 {
		return WorkerPeriod{}, &NotFoundError{Kind: "worker", ID: workerID, Period: r}
	}

	out := WorkerPeriod{
		WorkerID:   workerID,
		WorkerName: workerID,
		Period:     r,
	}
	if name, ok := records[0].WorkerName(workerID); ok && name != "" {
		out.WorkerName = name
	}

	index := make(map[period.Date]int)
	for _, record := range records {
		day := period.DateOf(record.Timestamp, loc)
		pos, ok := index[day]
		if !ok {
			pos = len(out.Days)
			index[day] = pos
			out.Days = append(out.Days, WorkerDay{Date: day})
		}
		out.Days[pos].Reports = append(out.Days[pos].Reports, record)
		out.Days[pos].TotalHours += record.Hours
	}

	sort.SliceStable(out.Days, func(i, j int) bool {
		return out.Days[i].Date.Before(out.Days[j].Date)
	})
	for _, day := range out.Days {
		out.TotalHours += day.TotalHours
	}

	return out, nil
}
