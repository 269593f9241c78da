package config

import (
	"strings"
	"testing"
	"time"
)

func TestValidateYAMLContent_AcceptsExampleTemplate(t *testing.T) {
	t.Parallel()

	cfg, err := ValidateYAMLContent([]byte(ExampleYAML()))
	if err != nil {
		t.Fatalf("expected example config to validate: %v", err)
	}
	if cfg.Database.Path != "./sitehours.db" {
		t.Fatalf("unexpected database path %q", cfg.Database.Path)
	}
	if cfg.Server.ShutdownTimeout != 10*time.Second {
		t.Fatalf("unexpected shutdown timeout %v", cfg.Server.ShutdownTimeout)
	}
}

func TestValidateYAMLContent_AppliesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := ValidateYAMLContent([]byte("database:\n  path: \"/tmp/x.db\"\n"))
	if err != nil {
		t.Fatalf("expected config to validate: %v", err)
	}
	if cfg.Server.Addr != "localhost:8080" {
		t.Fatalf("expected default addr, got %q", cfg.Server.Addr)
	}
	if cfg.Report.UnspecifiedPosition != "unspecified position" {
		t.Fatalf("expected default sentinel position, got %q", cfg.Report.UnspecifiedPosition)
	}
}

func TestValidateYAMLContent_RejectsUnknownTimezone(t *testing.T) {
	t.Parallel()

	content := []byte(`database:
  path: "./sitehours.db"
report:
  timezone: "Mars/Olympus_Mons"
`)

	_, err := ValidateYAMLContent(content)
	if err == nil {
		t.Fatalf("expected validation error for unknown timezone")
	}
	if !strings.Contains(err.Error(), "report.timezone") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateYAMLContent_RejectsInvalidServerAddr(t *testing.T) {
	t.Parallel()

	content := []byte(`database:
  path: "./sitehours.db"
server:
  addr: "not an address"
`)

	if _, err := ValidateYAMLContent(content); err == nil {
		t.Fatalf("expected validation error for server.addr")
	}
}

func TestValidateYAMLContent_RejectsUnknownLogLevel(t *testing.T) {
	t.Parallel()

	content := []byte(`database:
  path: "./sitehours.db"
log:
  level: "verbose"
`)

	if _, err := ValidateYAMLContent(content); err == nil {
		t.Fatalf("expected validation error for log.level")
	}
}

func TestConfigLocation_EmptyMeansLocal(t *testing.T) {
	t.Parallel()

	loc, err := Config{}.Location()
	if err != nil {
		t.Fatalf("location: %v", err)
	}
	if loc != time.Local {
		t.Fatalf("expected time.Local, got %v", loc)
	}
}
