package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/statline/statline/internal/config"
)

var (
	// version is set at build time via -ldflags.
	version = "dev"

	// Persistent flags shared by all subcommands.
	configPath string
	dbPath     string
	logLevel   string
	logFile    string
)

// rootCmd is the base command; it prints help when called without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "statline",
	Short: "Host metrics collection and retention engine",
	Long: `Statline samples host-level metrics (CPU, memory, disk, network, TCP
connections, own-process usage, uptime) on a fixed schedule and retains
them in a local SQLite database.

Use 'statline serve' to run the collection loop with the HTTP API,
'statline collect' for a one-shot snapshot, and 'statline prune' to
delete expired records.`,
	Version: version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to configuration file (default: search standard locations)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "",
		"Path to the metrics database (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Log level: debug, info, warn, error (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "",
		"Log file path for structured JSON output (overrides config)")
}

// loadConfig builds the effective configuration from the layered sources,
// with flag values on top.
func loadConfig() (*config.Config, error) {
	cli := config.CLIOverrides{
		ListenAddr: listenAddr,
		DBPath:     dbPath,
		LogLevel:   logLevel,
		LogFile:    logFile,
	}

	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadLayered(cli, embeddedConfig, configPath)
	} else {
		cfg, err = config.LoadLayered(cli, embeddedConfig)
	}
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// initLogger creates a zap logger based on the configuration.
// It outputs to both console (human-readable) and optionally a JSON log file.
func initLogger(cfg *config.Config) *zap.Logger {
	var level zapcore.Level
	switch cfg.Logging.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "time"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	// Console output (human-readable)
	consoleCore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(os.Stdout),
		level,
	)

	cores := []zapcore.Core{consoleCore}

	// File output (structured JSON, if configured)
	if cfg.Logging.File != "" {
		file, err := os.OpenFile(cfg.Logging.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0640)
		if err == nil {
			fileCore := zapcore.NewCore(
				zapcore.NewJSONEncoder(encoderConfig),
				zapcore.AddSync(file),
				level,
			)
			cores = append(cores, fileCore)
		}
	}

	return zap.New(zapcore.NewTee(cores...))
}
