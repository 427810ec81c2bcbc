// Package cmd implements the ftp-admin CLI commands
package cmd

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fl1ckyexe/ftp-admin/src/client/api"
	"github.com/fl1ckyexe/ftp-admin/src/client/paths"
)

// tokenEnv pre-supplies the first token prompt answer
const tokenEnv = "FTP_ADMIN_TOKEN"

var (
	// Build info - set via -ldflags at build time
	ProjectName = "ftp-admin"
	Version     = "dev"
	CommitID    = "unknown"
	BuildDate   = "unknown"

	cfgFile string
	server  string
	token   string
	output  string
	noColor bool
	timeout int
	debug   bool

	logInit func(debug bool) error
)

var rootCmd = &cobra.Command{
	Use:   getBinaryName(),
	Short: "Admin CLI for the ftp-server",
	Long: `ftp-admin-cli manages an ftp-server through its admin HTTP API.

The admin token is asked for on every run and kept in memory only. Pass it with
--token or ` + tokenEnv + ` to skip the prompt.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		api.ProjectName = ProjectName
		api.Version = Version
		if logInit != nil {
			return logInit(debug)
		}
		return nil
	},
}

// SetLogInit registers the logger setup run before every command
func SetLogInit(fn func(debug bool) error) {
	logInit = fn
}

// Execute runs the root command; an interrupt cancels the command context
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().StringVarP(&server, "server", "s", "", "admin API address (default http://127.0.0.1:9090)")
	rootCmd.PersistentFlags().StringVarP(&token, "token", "t", "", "admin token (env "+tokenEnv+")")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "", "output format: json, yaml, plain")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().IntVar(&timeout, "timeout", 0, "request timeout in seconds (0 = none)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "debug logging, mirrored to stderr")

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(tuiCmd)
}

func initConfig() {
	viper.SetConfigFile(paths.ResolveConfigPath(cfgFile))
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("FTP_ADMIN")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	setDefaults()
	viper.ReadInConfig()
}

func setDefaults() {
	viper.SetDefault("server.address", "http://127.0.0.1:9090")
	viper.SetDefault("server.timeout", 0)
	viper.SetDefault("probe.interval", "2s")
	viper.SetDefault("output.format", "plain")
	viper.SetDefault("output.color", "auto")
	viper.SetDefault("logging.level", "warn")
	viper.SetDefault("logging.max_size", 10)
	viper.SetDefault("logging.max_files", 5)
}

func getBinaryName() string {
	return filepath.Base(os.Args[0])
}

func getOutputFormat() string {
	if output != "" {
		return output
	}
	return viper.GetString("output.format")
}

func serverAddress() string {
	if server != "" {
		return server
	}
	return viper.GetString("server.address")
}

func requestTimeout() time.Duration {
	secs := viper.GetInt("server.timeout")
	if timeout > 0 {
		secs = timeout
	}
	return time.Duration(secs) * time.Second
}

func probeInterval() time.Duration {
	return viper.GetDuration("probe.interval")
}

func presetToken() string {
	if token != "" {
		return token
	}
	return os.Getenv(tokenEnv)
}

func colorEnabled() bool {
	if noColor || os.Getenv("NO_COLOR") != "" {
		return false
	}
	return viper.GetString("output.color") != "never"
}
