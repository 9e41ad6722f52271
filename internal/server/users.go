package server

import (
	"net/http"
	"strings"
	"tintas-bot/pkg/api"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// deleteUserData erases the calculations and consents recorded for a user
// reference such as "tg:42" or a client IP.
func (s *Server) deleteUserData(c *gin.Context) {
	ref := strings.TrimSpace(c.Param("ref"))
	if ref == "" {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "user reference is required"})
		return
	}

	deleted, err := s.store.DeleteUserData(c.Request.Context(), ref)
	if err != nil {
		s.internalError(c, "Failed to delete user data", err)
		return
	}

	s.logger.Info("User data deleted via API",
		zap.String("user_ref", ref),
		zap.String("client_ip", c.ClientIP()))

	c.JSON(http.StatusOK, api.DeleteUserDataResponse{
		UserRef:      ref,
		Calculations: deleted.Calculations,
		Consents:     deleted.Consents,
	})
}
