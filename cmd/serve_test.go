package cmd

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"sitehours/config"
	"sitehours/report"
	"sitehours/storage"
)

func TestNewLogger(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	logger, err := newLogger("warn", &out)
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	logger.Info().Msg("hidden")
	logger.Warn().Msg("visible")

	text := out.String()
	if strings.Contains(text, "hidden") || !strings.Contains(text, "visible") {
		t.Fatalf("unexpected log output: %s", text)
	}

	if _, err := newLogger("loud", &out); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestNewAPIHandler_ServesSitePeriodFromStore(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "serve.db")
	store, err := storage.OpenSQLite(dbPath)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	_, err = store.InsertReports(context.Background(), []report.Record{{
		ID:          "r1",
		Timestamp:   time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC),
		SiteID:      "riverside",
		SiteName:    "Riverside",
		Description: "formwork",
		Hours:       4,
		Workers:     []report.Worker{{ID: "w1", Name: "Ivan"}},
	}})
	if err != nil {
		t.Fatalf("insert reports: %v", err)
	}

	cfg := &config.Config{
		Database: config.DatabaseConfig{Path: dbPath},
		Report:   config.ReportConfig{Timezone: "UTC", UnspecifiedPosition: "n/a"},
	}
	handler, err := newAPIHandler(zerolog.Nop(), cfg, store)
	if err != nil {
		t.Fatalf("new api handler: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/objects/riverside/period?start=2024-03-01&end=2024-03-01", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	if !strings.Contains(res.Body.String(), `"position":"n/a"`) {
		t.Fatalf("expected configured sentinel position in body: %s", res.Body.String())
	}
}
