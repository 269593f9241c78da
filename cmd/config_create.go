package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"sitehours/config"
)

var configCreateStdout bool

var configCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a configuration file from the example template.",
	Long: `Create a new configuration file from the same example template used by "config edit".

If a configuration file is already in use, no new file is written.
With --stdout the template is printed instead, for example to seed a
container image or a .env-driven deployment.`,
	Example: `
  # Create default config at $HOME/.sitehours.yaml
  sitehours config create

  # Print the template
  sitehours config create --stdout > ./sitehours.yaml
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if configCreateStdout {
			return printConfigTemplate(cmd.OutOrStdout())
		}
		return saveDefaultConfig()
	},
}

func saveDefaultConfig() error {
	configPath, err := resolveConfigEditPath(cfgFile, viper.ConfigFileUsed())
	if err != nil {
		return err
	}

	created, err := ensureConfigFileWithTemplate(configPath)
	if err != nil {
		return err
	}

	if created {
		fmt.Printf("New config file created at: %s\n", configPath)
		return nil
	}

	fmt.Printf("Config file already exists at: %s\n", configPath)
	return nil
}

func printConfigTemplate(out io.Writer) error {
	if out == nil {
		out = os.Stdout
	}
	if _, err := io.WriteString(out, config.ExampleYAML()); err != nil {
		return fmt.Errorf("write config template: %w", err)
	}
	return nil
}

func init() {
	configCmd.AddCommand(configCreateCmd)

	configCreateCmd.Flags().BoolVar(&configCreateStdout, "stdout", false, "Print the template instead of writing a file")
}
