package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"sitehours/config"
	"sitehours/storage"
)

var (
	deleteDBPath   string
	deleteReportID string
	deleteAll      bool
)

var (
	deletePromptInput  io.Reader = os.Stdin
	deletePromptOutput io.Writer = os.Stdout
)

var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete one report or all reports from the SQLite database",
	Long: `Destructive report cleanup command.

Use --id to delete one report with its worker links, or --all to delete every
report. Deleting all reports requires typing exactly "Y" at the prompt.
The worker directory and site names are kept.`,
	Example: `
  # Delete one report
  sitehours delete --id 3f1c2a7e-0d1b-5c8e-9b0a-2f4d6e8a1c3b

  # Delete all reports (requires interactive confirmation)
  sitehours delete --all --db ./sitehours.db
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if (deleteReportID == "") == !deleteAll {
			return fmt.Errorf("exactly one of --id or --all is required")
		}

		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}

		store, err := openStore(cfg, deleteDBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		if deleteReportID != "" {
			if err := store.DeleteReport(cmd.Context(), deleteReportID); err != nil {
				if errors.Is(err, storage.ErrReportNotFound) {
					return fmt.Errorf("report not found: %s", deleteReportID)
				}
				return err
			}
			fmt.Printf("Deleted report: %s\n", deleteReportID)
			return nil
		}

		confirmed, err := confirmDeletePrompt(deletePromptInput, deletePromptOutput, "Delete all reports?")
		if err != nil {
			return err
		}
		if !confirmed {
			return fmt.Errorf("delete aborted: confirmation was not 'Y'")
		}

		deleted, err := store.DeleteAllReports(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("Deleted reports: %d\n", deleted)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)

	deleteCmd.Flags().StringVar(&deleteDBPath, "db", "", "Path to SQLite database (overrides database.path)")
	deleteCmd.Flags().StringVar(&deleteReportID, "id", "", "Report ID to delete")
	deleteCmd.Flags().BoolVar(&deleteAll, "all", false, "Delete all reports")
}

func confirmDeletePrompt(input io.Reader, output io.Writer, question string) (bool, error) {
	if input == nil {
		return false, fmt.Errorf("delete confirmation input is not available")
	}

	if output == nil {
		output = io.Discard
	}

	if _, err := fmt.Fprintf(output, "%s Type Y to confirm: ", question); err != nil {
		return false, fmt.Errorf("write delete confirmation prompt: %w", err)
	}

	line, err := bufio.NewReader(input).ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			line = strings.TrimSpace(line)
			return line == "Y", nil
		}
		return false, fmt.Errorf("read delete confirmation: %w", err)
	}
	return strings.TrimSpace(line) == "Y", nil
}
