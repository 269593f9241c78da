package output

import (
	"fmt"
	"strconv"
	"time"

	"sitehours/aggregate"
)

// Table is the spreadsheet-shaped projection shared by the CSV and Excel
// writers. Numeric cells stay float64 so Excel keeps them as numbers.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]any
}

// SiteTable lays out the employee matrix: one row per employee with one
// column per day of the period, followed by a totals row.
func SiteTable(site aggregate.SiteReport) Table {
	headers := []string{"#", "Worker", "Position", "Rate"}
	for _, day := range site.Days {
		headers = append(headers, day.Label())
	}
	headers = append(headers, "Total hours", "Total cost", "Comment")

	rows := make([][]any, 0, len(site.Employees)+1)
	dayTotals := make([]float64, len(site.Days))
	for i, employee := range site.Employees {
		row := []any{i + 1, employee.Name, employee.Position, employee.HourlyRate}
		for col, hours := range employee.DailyHours {
			row = append(row, hours)
			if col < len(dayTotals) {
				dayTotals[col] += hours
			}
		}
		row = append(row, employee.TotalHours, employee.TotalCost, employee.Comment)
		rows = append(rows, row)
	}

	totals := []any{"", "Total", "", ""}
	for _, hours := range dayTotals {
		totals = append(totals, hours)
	}
	totals = append(totals, site.TotalHours, site.TotalCost, "")
	rows = append(rows, totals)

	return Table{
		Title:   fmt.Sprintf("%s %s - %s", site.SiteName, site.Period.Start, site.Period.End),
		Headers: headers,
		Rows:    rows,
	}
}

// WorkerTable lists a worker's reports chronologically. The date and the day
// subtotal are printed only on the first row of each day.
func WorkerTable(p aggregate.WorkerPeriod, loc *time.Location) Table {
	if loc == nil {
		loc = time.Local
	}
	headers := []string{"Date", "Time", "Site", "Task", "Hours", "Day total", "Comment"}

	rows := make([][]any, 0, p.Count()+1)
	for _, row := range p.Rows() {
		date, dayTotal := "", any("")
		if row.FirstOfDay {
			date = row.Day.Label()
			dayTotal = row.DayTotal
		}
		rows = append(rows, []any{
			date,
			row.Record.Timestamp.In(loc).Format("15:04"),
			row.Record.SiteName,
			row.Record.Description,
			row.Record.Hours,
			dayTotal,
			row.Record.Comment,
		})
	}
	rows = append(rows, []any{"Total", "", "", "", p.TotalHours, "", ""})

	return Table{
		Title:   fmt.Sprintf("%s %s - %s", p.WorkerName, p.Period.Start, p.Period.End),
		Headers: headers,
		Rows:    rows,
	}
}

func formatCell(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}
