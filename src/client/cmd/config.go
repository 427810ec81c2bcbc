package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/fl1ckyexe/ftp-admin/src/client/paths"
)

var errTokenKey = errors.New("admin tokens are never written to the config file; use --token or " + tokenEnv)

const defaultConfig = `# ftp-admin CLI configuration
server:
  address: http://127.0.0.1:9090
  # request timeout in seconds, 0 = none
  timeout: 0

probe:
  interval: 2s

output:
  format: plain
  color: auto

logging:
  level: warn
  max_size: 10
  max_files: 5
`

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage CLI configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := yaml.Marshal(viper.AllSettings())
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), paths.ResolveConfigPath(cfgFile))
		return err
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := strings.ToLower(args[0]), args[1]
		if strings.Contains(key, "token") {
			return errTokenKey
		}

		viper.Set(key, value)
		configPath := paths.ResolveConfigPath(cfgFile)
		if err := paths.EnsureParent(configPath); err != nil {
			return err
		}
		if err := viper.WriteConfigAs(configPath); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, value)
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		value := viper.Get(args[0])
		if value == nil {
			return fmt.Errorf("key not found: %s", args[0])
		}
		fmt.Fprintln(cmd.OutOrStdout(), value)
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create default configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath := paths.ResolveConfigPath(cfgFile)
		if _, err := os.Stat(configPath); err == nil {
			return fmt.Errorf("config already exists: %s", configPath)
		}
		if err := paths.EnsureParent(configPath); err != nil {
			return err
		}
		if err := os.WriteFile(configPath, []byte(defaultConfig), 0600); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Created config file: %s\n", configPath)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd, configPathCmd, configSetCmd, configGetCmd, configInitCmd)
}
