package cmd

import "github.com/spf13/cobra"

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage sitehours configuration file values.",
	Long: `Create, edit, display, and delete the sitehours configuration file.

The configuration stores application-wide values:
- database.path
- server.addr / server.shutdown_timeout
- report.timezone / report.unspecified_position
- log.level

Every key can be overridden with a SITEHOURS_ environment variable, for example
SITEHOURS_SERVER_ADDR. Variables from a .env file in the working directory are
loaded first.`,
	Example: `
  # Create default config in $HOME/.sitehours.yaml
  sitehours config create

  # Show active config and source file
  sitehours config show

  # Open active config in editor (creates example if missing)
  sitehours config edit

  # Delete active config file
  sitehours config delete
`,
}

func init() {
	rootCmd.AddCommand(configCmd)
}
