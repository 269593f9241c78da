package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"sitehours/aggregate"
	"sitehours/config"
	"sitehours/output"
	"sitehours/period"
	"sitehours/storage"
)

var (
	exportSite   string
	exportWorker string
	exportFrom   string
	exportTo     string
	exportFormat string
	exportOutput string
	exportDBPath string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a site matrix or a worker period to CSV/Excel",
	Long: `Aggregate reports for one site or one worker over an inclusive date range and
write the result as a spreadsheet.

Modes:
- --site: one row per employee with daily hours, totals, rate and cost
- --worker: the worker's reports in chronological order with per-day subtotals

Output format can be selected explicitly via --format or inferred from --output extension.`,
	Example: `
  # Site matrix to Excel
  sitehours export --site riverside --from 2024-03-01 --to 2024-03-31 -o ./riverside.xlsx

  # Worker period to CSV
  sitehours export --worker w1 --from 2024-03-01 --to 2024-03-15 -o ./ivan.csv
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if (exportSite == "") == (exportWorker == "") {
			return fmt.Errorf("exactly one of --site or --worker is required")
		}

		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}

		format := exportFormat
		if strings.TrimSpace(format) == "" {
			format = output.DetectFormat(exportOutput)
		}

		store, err := openStore(cfg, exportDBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		table, err := buildExportTable(cmd.Context(), cfg, store, exportSite, exportWorker, exportFrom, exportTo)
		if err != nil {
			return err
		}

		if err := output.WriteFile(exportOutput, format, table); err != nil {
			return err
		}
		fmt.Printf("Export completed. Rows: %d, Format: %s, File: %s\n", len(table.Rows), format, exportOutput)
		return nil
	},
}

func buildExportTable(ctx context.Context, cfg *config.Config, store *storage.SQLiteStore, siteID, workerID, from, to string) (output.Table, error) {
	options, err := aggregateOptions(cfg)
	if err != nil {
		return output.Table{}, err
	}

	r, err := period.ParseRange(from, to, options.Location)
	if err != nil {
		return output.Table{}, err
	}

	if siteID != "" {
		site, err := aggregate.NewSiteAggregator(store, store, options).Aggregate(ctx, siteID, r.Start, r.End)
		if err != nil {
			return output.Table{}, err
		}
		return output.SiteTable(site), nil
	}

	worker, err := aggregate.NewWorkerAggregator(store, options).Aggregate(ctx, workerID, r.Start, r.End)
	if err != nil {
		return output.Table{}, err
	}
	return output.WorkerTable(worker, options.Location), nil
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportSite, "site", "", "Site (object) ID to export as employee matrix")
	exportCmd.Flags().StringVar(&exportWorker, "worker", "", "Worker ID to export as chronological report list")
	exportCmd.Flags().StringVar(&exportFrom, "from", "", "First day of the range, format YYYY-MM-DD")
	exportCmd.Flags().StringVar(&exportTo, "to", "", "Last day of the range (inclusive), format YYYY-MM-DD")
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "", "Output format: csv|excel (optional, inferred from output extension)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file path")
	exportCmd.Flags().StringVar(&exportDBPath, "db", "", "Path to SQLite database (overrides database.path)")

	_ = exportCmd.MarkFlagRequired("from")
	_ = exportCmd.MarkFlagRequired("to")
	_ = exportCmd.MarkFlagRequired("output")
}
