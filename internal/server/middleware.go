package server

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"
	"tintas-bot/pkg/api"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		s.logger.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}

// rateLimit counts requests per client IP. Limiter failures let the request through.
func (s *Server) rateLimit(action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.cfg.RateLimit <= 0 {
			c.Next()
			return
		}

		exceeded, err := s.store.CheckRateLimit(c.Request.Context(), c.ClientIP(), action, s.cfg.RateLimit, s.cfg.RateWindow)
		if err != nil {
			s.logger.Warn("Rate limit check failed", zap.String("action", action), zap.Error(err))
			c.Next()
			return
		}
		if exceeded {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, api.ErrorResponse{Error: "too many requests"})
			return
		}

		c.Next()
	}
}

// adminOnly lets through requests bearing the configured admin token.
func (s *Server) adminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.cfg.AdminToken == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, api.ErrorResponse{Error: "admin API is disabled"})
			return
		}

		token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(s.cfg.AdminToken)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
			return
		}

		c.Next()
	}
}
