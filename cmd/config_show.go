package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"sitehours/config"
)

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show active configuration values.",
	Long: `Display the currently loaded configuration and the resolved config file path.

This command validates the configuration before printing values.`,
	Example: `
  # Show active configuration
  sitehours config show
`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			fmt.Println("Invalid config:", err)
			return
		}

		if configPath := viper.ConfigFileUsed(); configPath != "" {
			fmt.Println("Config file loaded from:", configPath)
		} else {
			fmt.Println("No config file loaded, showing defaults and environment overrides.")
		}
		fmt.Println("Configuration:")
		fmt.Printf("%s: %s\n", config.KeyDatabasePath, cfg.Database.Path)
		fmt.Printf("%s: %s\n", config.KeyServerAddr, cfg.Server.Addr)
		fmt.Printf("%s: %s\n", config.KeyServerShutdownTimeout, cfg.Server.ShutdownTimeout)
		fmt.Printf("%s: %s\n", config.KeyReportTimezone, cfg.Report.Timezone)
		fmt.Printf("%s: %s\n", config.KeyReportUnspecified, cfg.Report.UnspecifiedPosition)
		fmt.Printf("%s: %s\n", config.KeyLogLevel, cfg.Log.Level)
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
}
