package server

import (
	"errors"
	"net/http"
	"tintas-bot/internal/storage"
	"tintas-bot/pkg/api"

	"github.com/gin-gonic/gin"
)

func (s *Server) listProducts(c *gin.Context) {
	activeOnly := c.DefaultQuery("all", "false") != "true"

	products, err := s.store.ListProducts(c.Request.Context(), activeOnly)
	if err != nil {
		s.internalError(c, "Failed to list products", err)
		return
	}
	if products == nil {
		products = []storage.Product{}
	}

	c.JSON(http.StatusOK, api.ProductsResponse{Products: products})
}

func (s *Server) getProduct(c *gin.Context) {
	product, err := s.store.GetProductByID(c.Request.Context(), c.Param("id"))
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "product not found"})
		return
	}
	if err != nil {
		s.internalError(c, "Failed to load product", err)
		return
	}

	c.JSON(http.StatusOK, product)
}
