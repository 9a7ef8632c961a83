// Package main provides the entry point for the résumé analyzer CLI and HTTP API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jonathan/resume-analyzer/internal/config"
	"github.com/jonathan/resume-analyzer/internal/logger"
)

var (
	configPath string
	logLevel   string
	logFormat  string

	// cfg is the effective configuration, loaded before any subcommand runs.
	cfg config.Config
)

var rootCmd = &cobra.Command{
	Use:   "resume_analyzer",
	Short: "Résumé analyzer: contact extraction, ATS scoring and skill matching",
	Long: "Resume Analyzer extracts candidate details from résumé text, scores it for ATS " +
		"readiness, matches it against required skills and rates overall compatibility. " +
		"It runs as a CLI, an HTTP API server, or a queue worker.",
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to JSON config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides LOG_LEVEL)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format: json or pretty (overrides LOG_FORMAT)")
}

func loadConfig(_ *cobra.Command, _ []string) error {
	loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if logLevel != "" {
		loaded.LogLevel = logLevel
	}
	if logFormat != "" {
		loaded.LogFormat = logFormat
	}
	if err := loaded.Validate(); err != nil {
		return err
	}

	// Logs go to stderr so command output on stdout stays machine-readable.
	logger.Init(logger.Config{
		Level:  loaded.LogLevel,
		Format: loaded.LogFormat,
		Output: os.Stderr,
	})
	cfg = loaded
	return nil
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
