package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"sitehours/aggregate"
	"sitehours/config"
	"sitehours/storage"
)

// openStore opens the SQLite database named by the --db flag, falling back
// to database.path from the configuration.
func openStore(cfg *config.Config, dbFlag string) (*storage.SQLiteStore, error) {
	path := strings.TrimSpace(dbFlag)
	if path == "" {
		path = cfg.Database.Path
	}
	return storage.OpenSQLite(path)
}

func aggregateOptions(cfg *config.Config) (aggregate.Options, error) {
	loc, err := cfg.Location()
	if err != nil {
		return aggregate.Options{}, err
	}
	return aggregate.Options{
		Location:            loc,
		UnspecifiedPosition: cfg.Report.UnspecifiedPosition,
	}, nil
}

func newLogger(level string, out io.Writer) (zerolog.Logger, error) {
	if strings.TrimSpace(level) == "" {
		level = "info"
	}
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Logger{}, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return zerolog.New(out).Level(parsed).With().Timestamp().Logger(), nil
}
