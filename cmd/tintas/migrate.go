package main

import (
	"context"
	"fmt"
	"tintas-bot/internal/storage"
	"tintas-bot/pkg/redis"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the database schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStorage(cmd, func(ctx context.Context, s *storage.PostgresStorage) error {
			return storage.RunMigrations(ctx, s.DB(), zapLogger)
		})
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the latest migration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStorage(cmd, func(ctx context.Context, s *storage.PostgresStorage) error {
			return storage.RollbackMigration(ctx, s.DB(), zapLogger)
		})
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show applied and pending migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStorage(cmd, func(ctx context.Context, s *storage.PostgresStorage) error {
			return storage.Status(ctx, s.DB(), zapLogger)
		})
	},
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)
	migrateCmd.AddCommand(migrateStatusCmd)
}

// withStorage connects to Redis and PostgreSQL for the duration of fn.
func withStorage(cmd *cobra.Command, fn func(context.Context, *storage.PostgresStorage) error) error {
	ctx := commandContext(cmd)

	redisClient := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.TTL)
	defer redisClient.Close()

	pgStorage, err := storage.NewPostgresStorage(ctx, cfg.Database, redisClient, zapLogger)
	if err != nil {
		return fmt.Errorf("failed to init PostgreSQL storage: %w", err)
	}
	defer pgStorage.Close()

	return fn(ctx, pgStorage)
}
