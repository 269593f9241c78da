package web

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"sitehours/aggregate"
	"sitehours/period"
	"sitehours/report"
	"sitehours/storage"
)

type mockWorkers struct {
	mock.Mock
}

func (m *mockWorkers) Aggregate(ctx context.Context, workerID string, start, end period.Date) (aggregate.WorkerPeriod, error) {
	args := m.Called(ctx, workerID, start, end)
	return args.Get(0).(aggregate.WorkerPeriod), args.Error(1)
}

type mockSites struct {
	mock.Mock
}

func (m *mockSites) Aggregate(ctx context.Context, siteID string, start, end period.Date) (aggregate.SiteReport, error) {
	args := m.Called(ctx, siteID, start, end)
	return args.Get(0).(aggregate.SiteReport), args.Error(1)
}

func newTestServer(workers WorkerPeriodService, sites SitePeriodService) *httptest.Server {
	return httptest.NewServer(NewServer(zerolog.Nop(), Dependencies{
		Workers:  workers,
		Sites:    sites,
		Location: time.UTC,
	}))
}

func march(day int) period.Date {
	return period.Date{Year: 2024, Month: time.March, Day: day}
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestSitePeriod_ReturnsMatrix(t *testing.T) {
	sites := new(mockSites)
	rng, err := period.NewRange(march(1), march(3))
	require.NoError(t, err)

	sites.On("Aggregate", mock.Anything, "riverside", march(1), march(3)).Return(aggregate.SiteReport{
		SiteID:   "riverside",
		SiteName: "Riverside",
		Period:   rng,
		Days:     rng.Expand(),
		Employees: []aggregate.Employee{
			{WorkerID: "w1", Name: "Ivan", Position: "mason", HourlyRate: 10, DailyHours: []float64{6, 0, 0}, TotalHours: 6, TotalCost: 60},
			{WorkerID: "w2", Name: "Oleg", Position: "helper", HourlyRate: 12.5, DailyHours: []float64{2, 0, 0}, TotalHours: 2, TotalCost: 25},
		},
		TotalHours: 8,
		TotalCost:  85,
	}, nil)

	ts := newTestServer(new(mockWorkers), sites)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/objects/riverside/period?start=2024-03-01&end=2024-03-03")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, true, body["success"])

	data := body["data"].(map[string]any)
	assert.Equal(t, "Riverside", data["objectName"])
	assert.Equal(t, []any{"01.03", "02.03", "03.03"}, data["days"])
	assert.Equal(t, 8.0, data["totalHours"])
	assert.Equal(t, 85.0, data["totalCost"])

	employees := data["employees"].([]any)
	require.Len(t, employees, 2)
	first := employees[0].(map[string]any)
	assert.Equal(t, "w1", first["id"])
	assert.Equal(t, []any{6.0, 0.0, 0.0}, first["dailyHours"])

	sites.AssertExpectations(t)
}

func TestWorkerPeriod_ReturnsGroupedReports(t *testing.T) {
	workers := new(mockWorkers)
	rng, err := period.NewRange(march(1), march(2))
	require.NoError(t, err)

	workers.On("Aggregate", mock.Anything, "w1", march(1), march(2)).Return(aggregate.WorkerPeriod{
		WorkerID:   "w1",
		WorkerName: "Ivan",
		Period:     rng,
		Days: []aggregate.WorkerDay{
			{
				Date: march(1),
				Reports: []report.Record{
					{ID: "r1", Timestamp: time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC), Description: "formwork", Hours: 4},
					{ID: "r2", Timestamp: time.Date(2024, 3, 1, 15, 0, 0, 0, time.UTC), Description: "rebar", Hours: 2},
				},
				TotalHours: 6,
			},
		},
		TotalHours: 6,
	}, nil)

	ts := newTestServer(workers, new(mockSites))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/workers/w1/period?start=2024-03-01&end=2024-03-02")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, 2.0, body["count"])

	data := body["data"].(map[string]any)
	assert.Equal(t, "Ivan", data["workerName"])
	reports := data["reports"].([]any)
	require.Len(t, reports, 2)
	first := reports[0].(map[string]any)
	second := reports[1].(map[string]any)
	assert.Equal(t, true, first["firstOfDay"])
	assert.Equal(t, false, second["firstOfDay"])
	assert.Equal(t, 6.0, second["dayTotal"])
	assert.Equal(t, "01.03", first["day"])
}

func TestPeriodEndpoints_ErrorMapping(t *testing.T) {
	tests := []struct {
		name           string
		url            string
		setupMock      func(*mockSites)
		expectedStatus int
	}{
		{
			name:           "inverted range",
			url:            "/api/objects/riverside/period?start=2024-03-05&end=2024-03-01",
			setupMock:      func(*mockSites) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "unparseable date",
			url:            "/api/objects/riverside/period?start=yesterday&end=2024-03-01",
			setupMock:      func(*mockSites) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "no reports",
			url:  "/api/objects/empty/period?start=2024-03-01&end=2024-03-02",
			setupMock: func(m *mockSites) {
				m.On("Aggregate", mock.Anything, "empty", march(1), march(2)).
					Return(aggregate.SiteReport{}, &aggregate.NotFoundError{Kind: "site", ID: "empty"})
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name: "store failure",
			url:  "/api/objects/riverside/period?start=2024-03-01&end=2024-03-02",
			setupMock: func(m *mockSites) {
				m.On("Aggregate", mock.Anything, "riverside", march(1), march(2)).
					Return(aggregate.SiteReport{}, errors.New("database is locked"))
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sites := new(mockSites)
			tt.setupMock(sites)

			ts := newTestServer(new(mockWorkers), sites)
			defer ts.Close()

			resp, err := http.Get(ts.URL + tt.url)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
			body := decodeBody(t, resp)
			assert.Equal(t, false, body["success"])
			assert.NotEmpty(t, body["error"])
			if tt.expectedStatus == http.StatusInternalServerError {
				assert.NotContains(t, body["error"], "database is locked")
			}

			sites.AssertExpectations(t)
		})
	}
}

func TestSitePeriodExport_RejectsUnknownFormat(t *testing.T) {
	sites := new(mockSites)
	ts := newTestServer(new(mockWorkers), sites)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/objects/riverside/period/export?start=2024-03-01&end=2024-03-02&format=pdf")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	sites.AssertNotCalled(t, "Aggregate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSitePeriodExport_CSVFromSQLiteStore(t *testing.T) {
	store, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "web_test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()
	_, err = store.InsertReports(ctx, []report.Record{
		{
			ID:          "r1",
			Timestamp:   time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC),
			SiteID:      "riverside",
			SiteName:    "Riverside",
			Description: "formwork",
			Hours:       4,
			Workers:     []report.Worker{{ID: "w1", Name: "Ivan"}, {ID: "w2", Name: "Oleg"}},
		},
		{
			ID:          "r2",
			Timestamp:   time.Date(2024, 3, 1, 14, 0, 0, 0, time.UTC),
			SiteID:      "riverside",
			SiteName:    "Riverside",
			Description: "rebar",
			Hours:       2,
			Workers:     []report.Worker{{ID: "w1", Name: "Ivan"}},
		},
	})
	require.NoError(t, err)
	require.NoError(t, store.UpsertWorker(ctx, report.Profile{WorkerID: "w1", Name: "Ivan", Position: "mason", HourlyRate: 10}))

	options := aggregate.Options{Location: time.UTC}
	ts := newTestServer(
		aggregate.NewWorkerAggregator(store, options),
		aggregate.NewSiteAggregator(store, store, options),
	)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/objects/riverside/period/export?start=2024-03-01&end=2024-03-02&format=csv")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/csv")
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "object-riverside-2024-03-01-2024-03-02.csv")

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "1,Ivan,mason,10,6,0,6,60,", strings.TrimSpace(lines[1]))
	assert.Equal(t, "2,Oleg,"+aggregate.UnspecifiedPosition+",0,4,0,4,0,", strings.TrimSpace(lines[2]))
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(new(mockWorkers), new(mockSites))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
