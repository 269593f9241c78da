package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"sitehours/config"
	"sitehours/report"
)

var (
	workerDBPath   string
	workerID       string
	workerName     string
	workerPosition string
	workerRate     float64
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Maintain the worker directory (positions and hourly rates).",
	Long: `Manage the worker directory used to enrich site reports.

Workers missing from the directory still appear in site reports, with the
configured report.unspecified_position and an hourly rate of 0.`,
	Example: `
  # Add or update a worker
  sitehours worker set --id w1 --name "Ivan Petrov" --position mason --rate 10

  # List all workers
  sitehours worker list
`,
}

var workerSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Create or update one worker.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}

		store, err := openStore(cfg, workerDBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		profile := report.Profile{
			WorkerID:   strings.TrimSpace(workerID),
			Name:       strings.TrimSpace(workerName),
			Position:   strings.TrimSpace(workerPosition),
			HourlyRate: workerRate,
		}
		if err := store.UpsertWorker(cmd.Context(), profile); err != nil {
			return err
		}

		fmt.Printf("Worker saved: %s (%s, %s, rate %.2f)\n", profile.WorkerID, profile.Name, profile.Position, profile.HourlyRate)
		return nil
	},
}

var workerListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all workers.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}

		store, err := openStore(cfg, workerDBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		profiles, err := store.ListWorkers(cmd.Context())
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tPOSITION\tRATE")
		for _, profile := range profiles {
			fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\n", profile.WorkerID, profile.Name, profile.Position, profile.HourlyRate)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
	workerCmd.AddCommand(workerSetCmd)
	workerCmd.AddCommand(workerListCmd)

	workerCmd.PersistentFlags().StringVar(&workerDBPath, "db", "", "Path to SQLite database (overrides database.path)")

	workerSetCmd.Flags().StringVar(&workerID, "id", "", "Worker ID as used in reports")
	workerSetCmd.Flags().StringVar(&workerName, "name", "", "Display name")
	workerSetCmd.Flags().StringVar(&workerPosition, "position", "", "Position (job title)")
	workerSetCmd.Flags().Float64Var(&workerRate, "rate", 0, "Hourly rate")

	_ = workerSetCmd.MarkFlagRequired("id")
}
