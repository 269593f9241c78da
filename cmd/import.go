package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"sitehours/config"
	"sitehours/importer"
)

var (
	importInputs []string
	importFormat string
	importDBPath string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import CSV/Excel report rows into the SQLite database",
	Long: `Read source files, map each row to a site report and persist the reports in SQLite.

Recognized columns (header names are case and separator insensitive):
- id (optional, derived from the row content when empty)
- timestamp, or date + time
- site_id / object, site_name / object_name
- description / task, hours
- workers as "id:Name;id:Name"
- media, transcript, comment

Timestamps without an offset are read in report.timezone. Reports whose ID
already exists are skipped, so re-importing a file is safe.
When --format is omitted, format is inferred from each input file extension.`,
	Example: `
  # Import one CSV file
  sitehours import -i ./reports-2024-03.csv

  # Import several Excel files into a specific database
  sitehours import -i ./march.xlsx -i ./april.xlsx --db ./sitehours.db
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}
		loc, err := cfg.Location()
		if err != nil {
			return err
		}

		result, err := importer.Run(importInputs, importFormat, importer.NewReportMapper(), importer.RunOptions{Location: loc})
		if err != nil {
			return err
		}

		store, err := openStore(cfg, importDBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		inserted, err := store.InsertReports(cmd.Context(), result.Records)
		if err != nil {
			return err
		}

		fmt.Printf("Import completed. Files: %d, Rows read: %d, Rows mapped: %d, Rows skipped: %d, Rows persisted: %d\n",
			result.FilesProcessed,
			result.RowsRead,
			result.RowsMapped,
			result.RowsSkipped,
			inserted,
		)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringArrayVarP(&importInputs, "input", "i", nil, "Input file path (repeatable)")
	importCmd.Flags().StringVarP(&importFormat, "format", "f", "", "Input format: csv|excel (optional, inferred from extension when omitted)")
	importCmd.Flags().StringVar(&importDBPath, "db", "", "Path to SQLite database (overrides database.path)")

	_ = importCmd.MarkFlagRequired("input")
}
