// Package commands implements the CLI commands for mcpm.
package commands

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpm/cmd"
	"github.com/thoreinstein/mcpm/internal/backup"
	"github.com/thoreinstein/mcpm/internal/config"
	"github.com/thoreinstein/mcpm/internal/errors"
	"github.com/thoreinstein/mcpm/internal/logging"
	"github.com/thoreinstein/mcpm/internal/probe"
)

// verbosity holds the count of -v flags.
var verbosity int

// quiet holds the value of the -q/--quiet flag.
var quiet bool

// logFormat holds the value of the --log-format flag.
var logFormat string

// logFile holds the path to the log file.
var logFile string

// configFile holds the value of the --config flag.
var configFile string

// loadedConfig is the configuration of the running command.
var loadedConfig *config.Config

func init() {
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v",
		"increase verbosity level (e.g., -v, -vv)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false,
		"suppress non-error output")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text",
		"log format: text, json")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "",
		"write logs to file in JSON format")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"config file (default: ./config.yaml or <config home>/mcpm/config.yaml, or $MCPM_CONFIG)")

	rootCmd.Version = cmd.Version
	rootCmd.SetVersionTemplate("mcpm version {{.Version}}\n")

	// Silence errors and usage so we can control error output
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	backup.Version = cmd.Version
	probe.ClientVersion = cmd.Version
}

var rootCmd = &cobra.Command{
	Use:   "mcpm",
	Short: "Manage MCP server configurations across editors",
	Long: `mcpm manages Model Context Protocol (MCP) server definitions in the
configuration files of Cursor, Windsurf and VS Code.

It reads every editor's servers into one view, validates definitions before
anything is written, protects important servers from accidental removal,
and probes servers to check they actually start or answer.

Every write is preceded by a backup of the file being changed.`,
	Example: `  # List servers from every editor
  mcpm list

  # Add a stdio server to Cursor
  mcpm add github --editor cursor -- npx -y @modelcontextprotocol/server-github

  # Add an HTTP server to the VS Code user settings
  mcpm add context7 --editor vscode --scope user --url https://mcp.context7.com/mcp --transport http

  # Probe a server interactively
  mcpm test

  See Also: mcpm validate, mcpm status`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := setupLogging(cmd); err != nil {
			return err
		}
		// help and version never need a config.
		if cmd.Name() == "help" || cmd.Name() == "version" {
			return nil
		}
		return loadConfig()
	},
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// loadConfig reads the config named by --config, $MCPM_CONFIG or the
// default search path.
func loadConfig() error {
	path := configFile
	if path == "" {
		path = os.Getenv("MCPM_CONFIG")
	}

	config.Init()
	cfg, err := config.Load(path)
	if err != nil {
		return errors.NewConfigError(err)
	}
	if used := config.FileUsed(); used != "" {
		slog.Debug("config loaded", "path", used)
	}
	loadedConfig = cfg
	return nil
}

// setupLogging configures the default logger based on verbosity flags.
func setupLogging(cmd *cobra.Command) error {
	if quiet && verbosity > 0 {
		return errors.NewUserError(errors.New("cannot use --quiet and --verbose together"), "")
	}

	var level slog.Level
	if quiet {
		level = slog.LevelError
	} else {
		v := verbosity

		// CLI flags take precedence, but if not set, check env var
		if v == 0 {
			if val, ok := os.LookupEnv("MCPM_DEBUG"); ok {
				switch val {
				case "1", "true":
					v = 2 // Debug
				case "2":
					v = 3 // Trace
				}
			}
		}
		level = logging.LevelFromVerbosity(v)
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var primaryHandler slog.Handler
	switch logging.Format(logFormat) {
	case logging.FormatJSON:
		primaryHandler = slog.NewJSONHandler(cmd.ErrOrStderr(), opts)
	case logging.FormatText, "":
		primaryHandler = logging.NewHandler(cmd.ErrOrStderr(), opts)
	default:
		return errors.NewUserError(errors.Newf("invalid --log-format %q", logFormat), "Use text or json")
	}

	handlers := []slog.Handler{primaryHandler}

	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return errors.NewUserError(err, "Check that the --log-file directory exists and is writable")
		}
		// File output uses JSON format
		handlers = append(handlers, slog.NewJSONHandler(f, &slog.HandlerOptions{
			Level: level,
		}))
	}

	var handler slog.Handler
	if len(handlers) > 1 {
		handler = logging.NewMultiHandler(handlers...)
	} else {
		handler = handlers[0]
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logging.NewContext(ctx, logger))

	return nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
