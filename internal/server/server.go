// Package server exposes the calculators over a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
	"tintas-bot/internal/calculators"
	"tintas-bot/internal/config"
	"tintas-bot/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Store is what the handlers need from the storage layer.
type Store interface {
	ListProducts(ctx context.Context, activeOnly bool) ([]storage.Product, error)
	GetProductByID(ctx context.Context, productID string) (*storage.Product, error)
	SaveCalculation(ctx context.Context, calc storage.Calculation) (string, error)
	CheckRateLimit(ctx context.Context, subject, action string, limit int64, window time.Duration) (bool, error)
	DeleteUserData(ctx context.Context, userRef string) (storage.UserDataDeletion, error)
}

var _ Store = (*storage.PostgresStorage)(nil)

type Server struct {
	cfg     config.HTTPConfig
	pricing config.PricingConfig
	rates   calculators.QuoteRates
	floors  *calculators.FloorCalculator
	store   Store
	logger  *zap.Logger
	router  *gin.Engine
}

func New(cfg config.HTTPConfig, pricing config.PricingConfig, store Store, logger *zap.Logger) *Server {
	s := &Server{
		cfg:     cfg,
		pricing: pricing,
		rates: calculators.QuoteRates{
			AuxiliaryRate: decimal.NewFromFloat(pricing.AuxiliaryRate),
			LaborPerM2:    decimal.NewFromFloat(pricing.LaborPerM2),
		},
		floors: calculators.NewFloorCalculator(),
		store:  store,
		logger: logger,
	}
	s.router = s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/healthz", s.healthz)

	api := r.Group("/api")
	api.GET("/products", s.listProducts)
	api.GET("/products/:id", s.getProduct)

	calc := api.Group("")
	calc.Use(s.rateLimit("calculate"))
	{
		calc.POST("/calculate-paint", s.calculatePaint)
		calc.POST("/calculate-floor", s.calculateFloor)
		calc.POST("/quote", s.quote)
	}

	admin := api.Group("/admin")
	admin.Use(s.adminOnly())
	{
		admin.DELETE("/users/:ref", s.deleteUserData)
	}

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		s.logger.Info("HTTP server listening", zap.String("addr", s.cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	return nil
}

func (s *Server) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
