package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/mcpm/internal/config"
	"github.com/thoreinstein/mcpm/internal/errors"
	"github.com/thoreinstein/mcpm/internal/paths"
)

func init() {
	configCmd.AddCommand(configShowCmd, configPathCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect mcpm configuration",
	Long: `Inspect the configuration mcpm itself runs with.

Without a subcommand, shows the effective configuration.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as YAML",
	Long: `Print the configuration after defaults, the config file and MCPM_*
environment variables have been merged.`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file in use",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		used := config.FileUsed()
		if used == "" {
			fmt.Fprintf(cmd.OutOrStdout(), "%s (not present, using defaults)\n", paths.AppConfigFile())
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), used)
		return nil
	},
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	data, err := yaml.Marshal(loadedConfig)
	if err != nil {
		return errors.Wrap(err, "encoding config")
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}
