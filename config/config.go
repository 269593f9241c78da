package config

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	KeyDatabasePath          = "database.path"
	KeyServerAddr            = "server.addr"
	KeyServerShutdownTimeout = "server.shutdown_timeout"
	KeyReportTimezone        = "report.timezone"
	KeyReportUnspecified     = "report.unspecified_position"
	KeyLogLevel              = "log.level"
)

type Config struct {
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Report   ReportConfig   `mapstructure:"report"`
	Log      LogConfig      `mapstructure:"log"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr" validate:"required,hostname_port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gte=0"`
}

type ReportConfig struct {
	// Timezone is an IANA name; timestamps are assigned to calendar days in it.
	Timezone            string `mapstructure:"timezone"`
	UnspecifiedPosition string `mapstructure:"unspecified_position"`
}

type LogConfig struct {
	Level string `mapstructure:"level" validate:"omitempty,oneof=trace debug info warn error disabled"`
}

// Location resolves Report.Timezone. An empty value means the local zone.
func (c Config) Location() (*time.Location, error) {
	name := strings.TrimSpace(c.Report.Timezone)
	if name == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", name, err)
	}
	return loc, nil
}

// SetDefaults sets default values if not provided
func SetDefaults() {
	setDefaults(viper.GetViper())
}

// LoadAndValidate loads config from Viper and validates it
func LoadAndValidate() (*Config, error) {
	return loadAndValidateFromViper(viper.GetViper())
}

// ValidateYAMLContent validates configuration from raw YAML content.
func ValidateYAMLContent(content []byte) (*Config, error) {
	local := viper.New()
	setDefaults(local)
	local.SetConfigType("yaml")
	if err := local.ReadConfig(bytes.NewReader(content)); err != nil {
		return nil, fmt.Errorf("read config content: %w", err)
	}
	return loadAndValidateFromViper(local)
}

// ExampleYAML returns the default configuration template.
func ExampleYAML() string {
	return `# sitehours configuration
database:
  path: "./sitehours.db"

server:
  addr: "localhost:8080"
  shutdown_timeout: "10s"

report:
  # IANA timezone used to assign report timestamps to calendar days.
  timezone: "Local"
  unspecified_position: "unspecified position"

log:
  level: "info"
`
}

func loadAndValidateFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if _, err := cfg.Location(); err != nil {
		return nil, fmt.Errorf("validation failed: report.timezone: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyDatabasePath, "./sitehours.db")
	v.SetDefault(KeyServerAddr, "localhost:8080")
	v.SetDefault(KeyServerShutdownTimeout, "10s")
	v.SetDefault(KeyReportTimezone, "Local")
	v.SetDefault(KeyReportUnspecified, "unspecified position")
	v.SetDefault(KeyLogLevel, "info")
}
