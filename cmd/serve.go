package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"sitehours/aggregate"
	"sitehours/config"
	"sitehours/storage"
	"sitehours/web"
)

var (
	serveAddr   string
	serveDBPath string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve worker and site period aggregations over HTTP",
	Long: `Start the JSON API backed by the local SQLite database.

Endpoints:
- GET /api/workers/{workerID}/period?start=YYYY-MM-DD&end=YYYY-MM-DD
- GET /api/objects/{siteID}/period?start=YYYY-MM-DD&end=YYYY-MM-DD
- GET .../period/export?format=xlsx|csv for spreadsheet downloads
- GET /healthz

The server stops gracefully on SIGINT/SIGTERM within server.shutdown_timeout.`,
	Example: `
  # Start with configured address and database
  sitehours serve

  # Override address and database
  sitehours serve --addr :9090 --db ./sitehours.db
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}
		if serveAddr != "" {
			cfg.Server.Addr = serveAddr
		}

		logger, err := newLogger(cfg.Log.Level, os.Stderr)
		if err != nil {
			return err
		}

		store, err := openStore(cfg, serveDBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		handler, err := newAPIHandler(logger, cfg, store)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return web.Run(ctx, logger, cfg.Server.Addr, cfg.Server.ShutdownTimeout, handler)
	},
}

func newAPIHandler(logger zerolog.Logger, cfg *config.Config, store *storage.SQLiteStore) (*web.Server, error) {
	options, err := aggregateOptions(cfg)
	if err != nil {
		return nil, err
	}

	return web.NewServer(logger, web.Dependencies{
		Workers:  aggregate.NewWorkerAggregator(store, options),
		Sites:    aggregate.NewSiteAggregator(store, store, options),
		Location: options.Location,
	}), nil
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides server.addr)")
	serveCmd.Flags().StringVar(&serveDBPath, "db", "", "Path to SQLite database (overrides database.path)")
}
