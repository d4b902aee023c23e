// Package main implements the intelcore binary: the personal
// communication intelligence daemon and its one-shot mode.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/intelcore/intelcore/internal/app"
	"github.com/intelcore/intelcore/internal/config"
)

var (
	version = "dev"
	commit  = "unknown"
)

var (
	configFile string
	dataDir    string
	dryRun     bool
	logLevel   string
)

func main() {
	// A missing .env file is fine; real env vars still apply.
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "intelcore",
		Short: "Personal communication intelligence core",
		Long: "intelcore collects communications from external sources, classifies them\n" +
			"into life domains, and synthesizes a daily briefing delivered over WhatsApp.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(logLevel)
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to configuration file (YAML or JSON)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "base directory for all data files")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "print briefings instead of delivering them")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")

	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(onceCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the collection and synthesis daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}

			ctx := context.Background()
			if err := a.Start(ctx); err != nil {
				a.Close()
				return err
			}
			return a.WaitForShutdown(ctx)
		},
	}
}

func onceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "once",
		Short: "Run a single collect-then-synthesize cycle and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}
			return a.RunOnce(context.Background())
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("intelcore version %s (commit: %s)\n", version, commit)
		},
	}
}

func buildApp() (*app.App, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return app.New(cfg)
}

func loadConfig() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.LoadFromFile(configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	config.LoadFromEnv(cfg)

	// Flags override both file and environment.
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if dryRun {
		cfg.DryRun = true
	}

	return cfg, nil
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
