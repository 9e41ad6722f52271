package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"tintas-bot/internal/bot"
	"tintas-bot/internal/bot/state_manager"
	"tintas-bot/internal/server"
	"tintas-bot/internal/storage"
	statestore "tintas-bot/internal/storage/redis"
	"tintas-bot/pkg/redis"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	serveNoBot   bool
	serveMigrate bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and, when TELEGRAM_TOKEN is set, the Telegram bot",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&serveNoBot, "no-bot", false, "Do not start the Telegram bot")
	serveCmd.Flags().BoolVar(&serveMigrate, "migrate", true, "Apply database migrations on start")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	redisClient := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.TTL)
	defer redisClient.Close()

	if err := redisClient.Ping(ctx); err != nil {
		// Rate limits fail open and caches are skipped while Redis is down.
		zapLogger.Warn("Redis is not reachable", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
	}

	pgStorage, err := storage.NewPostgresStorage(ctx, cfg.Database, redisClient, zapLogger)
	if err != nil {
		return fmt.Errorf("failed to init PostgreSQL storage: %w", err)
	}
	defer pgStorage.Close()

	if serveMigrate {
		if err := storage.RunMigrations(ctx, pgStorage.DB(), zapLogger); err != nil {
			return err
		}
	}

	gin.SetMode(gin.ReleaseMode)
	srv := server.New(cfg.HTTP, cfg.Pricing, pgStorage, zapLogger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(gctx)
	})

	if cfg.Telegram.Token != "" && !serveNoBot {
		botAPI, err := bot.NewAPI(cfg.Telegram, zapLogger)
		if err != nil {
			cancel()
			_ = g.Wait()
			return err
		}

		states := state_manager.New(statestore.New(redisClient.Raw(), cfg.Redis.TTL))
		tgBot := bot.New(botAPI, states, pgStorage, zapLogger, cfg)
		g.Go(func() error {
			return tgBot.Start(gctx)
		})
	} else {
		zapLogger.Info("Telegram bot disabled")
	}

	if err := g.Wait(); err != nil {
		return err
	}

	zapLogger.Info("Shutdown complete")
	return nil
}
