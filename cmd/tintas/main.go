package main

import (
	"fmt"
	"os"
	"tintas-bot/internal/config"
	"tintas-bot/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// ENTRY POINT

var (
	// Global flags
	logLevel string

	cfg       *config.Config
	zapLogger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "tintas",
	Short: "Paint and flooring quantity calculator",
	Long: `tintas computes how much paint or flooring a surface needs and which
packages to buy. It runs as an HTTP API and Telegram bot (serve), or
locally from the command line (calc).

Configuration is read from the environment, e.g. DB_HOST, REDIS_ADDR,
TELEGRAM_TOKEN, PRICING_DEFAULT_COVERAGE.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		if logLevel != "" {
			cfg.Log.Level = logLevel
		}

		zapLogger, err = logger.New(cfg.Log.Level, cfg.Log.Format)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if zapLogger != nil {
			_ = zapLogger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override LOG_LEVEL (debug, info, warn, error)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(calcCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(usersCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
