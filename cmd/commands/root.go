package commands

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/qiqi-070707/council-ai/internal/config"
	"github.com/qiqi-070707/council-ai/internal/logging"
	"github.com/qiqi-070707/council-ai/internal/printer"
)

var (
	version string
	commit  string
	date    string

	configFile string
)

var rootCmd = &cobra.Command{
	Use:   "council",
	Short: "Council AI - multi-agent product design workshop",
	Long: `Council AI runs a simulated product design workshop. A board of five
specialists debates your idea, and the debate is replayed as a live
conversation before two design solutions are presented with scores.

Run "council serve" for the browser studio or "council replay" to watch a
workshop in the terminal.`,
	Version: version,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
	FParseErrWhitelist: cobra.FParseErrWhitelist{},
}

// Execute runs the root command. It is called once by main.main().
func Execute() error {
	// cobra stays quiet; errors are printed by the printer package
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
	return rootCmd.Execute()
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", v, c, d)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Config file (default ./council.yaml when present)")
}

// loadConfig reads configuration and builds the process logger from it.
func loadConfig() (*config.Config, *slog.Logger, func() error, error) {
	v, err := config.New(configFile)
	if err != nil {
		return nil, nil, nil, printer.Error("Failed to read configuration", err.Error(), []string{
			"Check the file passed with --config",
		})
	}
	cfg, err := config.Load(v)
	if err != nil {
		return nil, nil, nil, printer.Error("Invalid configuration", err.Error(), nil)
	}
	logger, closeLog, err := logging.New(logging.Options{Level: cfg.Logging.Level, File: cfg.Logging.File})
	if err != nil {
		return nil, nil, nil, printer.Error("Failed to set up logging", err.Error(), []string{
			"Check that logging.file points to a writable location",
		})
	}
	return cfg, logger, closeLog, nil
}
