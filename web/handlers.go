package web

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"sitehours/aggregate"
	"sitehours/output"
	"sitehours/period"
)

type periodView struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type workerReportView struct {
	ID         string  `json:"id"`
	Date       string  `json:"date"`
	Day        string  `json:"day"`
	Task       string  `json:"task"`
	SiteName   string  `json:"siteName"`
	Hours      float64 `json:"hours"`
	DayTotal   float64 `json:"dayTotal"`
	FirstOfDay bool    `json:"firstOfDay"`
	MediaRef   string  `json:"mediaRef,omitempty"`
	Transcript string  `json:"transcript,omitempty"`
	Comment    string  `json:"comment,omitempty"`
}

type workerPeriodView struct {
	WorkerName string             `json:"workerName"`
	Period     periodView         `json:"period"`
	Reports    []workerReportView `json:"reports"`
	TotalHours float64            `json:"totalHours"`
}

type workerPeriodResponse struct {
	Success bool             `json:"success"`
	Count   int              `json:"count"`
	Data    workerPeriodView `json:"data"`
}

type employeeView struct {
	ID         string    `json:"id"`
	Position   string    `json:"position"`
	WorkerName string    `json:"workerName"`
	Rate       float64   `json:"rate"`
	TotalHours float64   `json:"totalHours"`
	TotalCost  float64   `json:"totalCost"`
	DailyHours []float64 `json:"dailyHours"`
	Comment    string    `json:"comment"`
}

type sitePeriodView struct {
	ObjectName string         `json:"objectName"`
	Period     periodView     `json:"period"`
	Days       []string       `json:"days"`
	Employees  []employeeView `json:"employees"`
	TotalHours float64        `json:"totalHours"`
	TotalCost  float64        `json:"totalCost"`
}

type sitePeriodResponse struct {
	Success bool           `json:"success"`
	Data    sitePeriodView `json:"data"`
}

func (s *Server) handleWorkerPeriod(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	workerID := chi.URLParam(r, "workerID")

	result, ok := s.aggregateWorker(w, r, workerID)
	if !ok {
		return
	}

	zerolog.Ctx(ctx).Debug().
		Str("worker_id", workerID).
		Int("reports", result.Count()).
		Msg("worker period aggregated")

	writeJSON(ctx, w, http.StatusOK, workerPeriodResponse{
		Success: true,
		Count:   result.Count(),
		Data:    newWorkerPeriodView(result, s.location),
	})
}

func (s *Server) handleSitePeriod(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	siteID := chi.URLParam(r, "siteID")

	result, ok := s.aggregateSite(w, r, siteID)
	if !ok {
		return
	}

	zerolog.Ctx(ctx).Debug().
		Str("site_id", siteID).
		Int("employees", len(result.Employees)).
		Msg("site period aggregated")

	writeJSON(ctx, w, http.StatusOK, sitePeriodResponse{
		Success: true,
		Data:    newSitePeriodView(result),
	})
}

func (s *Server) handleWorkerPeriodExport(w http.ResponseWriter, r *http.Request) {
	writer, ok := s.exportWriter(w, r)
	if !ok {
		return
	}
	workerID := chi.URLParam(r, "workerID")

	result, ok := s.aggregateWorker(w, r, workerID)
	if !ok {
		return
	}

	filename := fmt.Sprintf("worker-%s-%s-%s.%s", workerID, result.Period.Start, result.Period.End, writer.Extension())
	writeTable(w, r, writer, filename, output.WorkerTable(result, s.location))
}

func (s *Server) handleSitePeriodExport(w http.ResponseWriter, r *http.Request) {
	writer, ok := s.exportWriter(w, r)
	if !ok {
		return
	}
	siteID := chi.URLParam(r, "siteID")

	result, ok := s.aggregateSite(w, r, siteID)
	if !ok {
		return
	}

	filename := fmt.Sprintf("object-%s-%s-%s.%s", siteID, result.Period.Start, result.Period.End, writer.Extension())
	writeTable(w, r, writer, filename, output.SiteTable(result))
}

func (s *Server) aggregateWorker(w http.ResponseWriter, r *http.Request, workerID string) (aggregate.WorkerPeriod, bool) {
	rng, err := s.parseRange(r)
	if err != nil {
		writeError(r.Context(), w, err)
		return aggregate.WorkerPeriod{}, false
	}

	result, err := s.workers.Aggregate(r.Context(), workerID, rng.Start, rng.End)
	if err != nil {
		writeError(r.Context(), w, err)
		return aggregate.WorkerPeriod{}, false
	}
	return result, true
}

func (s *Server) aggregateSite(w http.ResponseWriter, r *http.Request, siteID string) (aggregate.SiteReport, bool) {
	rng, err := s.parseRange(r)
	if err != nil {
		writeError(r.Context(), w, err)
		return aggregate.SiteReport{}, false
	}

	result, err := s.sites.Aggregate(r.Context(), siteID, rng.Start, rng.End)
	if err != nil {
		writeError(r.Context(), w, err)
		return aggregate.SiteReport{}, false
	}
	return result, true
}

func (s *Server) parseRange(r *http.Request) (period.Range, error) {
	query := r.URL.Query()
	return period.ParseRange(query.Get("start"), query.Get("end"), s.location)
}

func (s *Server) exportWriter(w http.ResponseWriter, r *http.Request) (output.Writer, bool) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "xlsx"
	}
	writer, err := output.WriterForFormat(format)
	if err != nil {
		writeJSON(r.Context(), w, http.StatusBadRequest, errorResponse{
			Success:    false,
			Error:      err.Error(),
			Suggestion: "Use format=xlsx or format=csv.",
		})
		return nil, false
	}
	return writer, true
}

func newWorkerPeriodView(p aggregate.WorkerPeriod, loc *time.Location) workerPeriodView {
	reports := make([]workerReportView, 0, p.Count())
	for _, row := range p.Rows() {
		reports = append(reports, workerReportView{
			ID:         row.Record.ID,
			Date:       row.Record.Timestamp.In(loc).Format(time.RFC3339),
			Day:        row.Day.Label(),
			Task:       row.Record.Description,
			SiteName:   row.Record.SiteName,
			Hours:      row.Record.Hours,
			DayTotal:   row.DayTotal,
			FirstOfDay: row.FirstOfDay,
			MediaRef:   row.Record.MediaRef,
			Transcript: row.Record.Transcript,
			Comment:    row.Record.Comment,
		})
	}

	return workerPeriodView{
		WorkerName: p.WorkerName,
		Period:     newPeriodView(p.Period),
		Reports:    reports,
		TotalHours: p.TotalHours,
	}
}

func newSitePeriodView(site aggregate.SiteReport) sitePeriodView {
	days := make([]string, 0, len(site.Days))
	for _, day := range site.Days {
		days = append(days, day.Label())
	}

	employees := make([]employeeView, 0, len(site.Employees))
	for _, employee := range site.Employees {
		employees = append(employees, employeeView{
			ID:         employee.WorkerID,
			Position:   employee.Position,
			WorkerName: employee.Name,
			Rate:       employee.HourlyRate,
			TotalHours: employee.TotalHours,
			TotalCost:  employee.TotalCost,
			DailyHours: employee.DailyHours,
			Comment:    employee.Comment,
		})
	}

	return sitePeriodView{
		ObjectName: site.SiteName,
		Period:     newPeriodView(site.Period),
		Days:       days,
		Employees:  employees,
		TotalHours: site.TotalHours,
		TotalCost:  site.TotalCost,
	}
}

func newPeriodView(r period.Range) periodView {
	return periodView{Start: r.Start.String(), End: r.End.String()}
}
