package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"tintas-bot/internal/calculators"
	"tintas-bot/internal/storage"
	"tintas-bot/pkg/api"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"
)

func (s *Server) calculatePaint(c *gin.Context) {
	var req api.PaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, fmt.Errorf("invalid request body: %w", err))
		return
	}

	resp, result, err := ComputePaint(s.pricing, req)
	if err != nil {
		s.calculationError(c, err)
		return
	}

	resp.ID = s.record(c, storage.Calculation{
		Kind:      storage.KindPaint,
		TotalArea: result.TotalArea,
		Required:  result.Required,
		Unit:      string(result.Unit),
		Summary:   resp.SuggestedPackage,
	}, req)

	c.JSON(http.StatusOK, resp)
}

func (s *Server) calculateFloor(c *gin.Context) {
	var req api.FloorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, fmt.Errorf("invalid request body: %w", err))
		return
	}

	resp, result, err := ComputeFloor(s.floors, s.pricing, req)
	if err != nil {
		s.calculationError(c, err)
		return
	}

	resp.ID = s.record(c, storage.Calculation{
		Kind:      storage.KindFloor,
		TotalArea: result.TotalArea,
		Required:  result.Required,
		Unit:      string(result.Unit),
		Summary:   FloorSummary(result),
	}, req)

	c.JSON(http.StatusOK, resp)
}

func (s *Server) quote(c *gin.Context) {
	var req api.QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if req.ProductID == "" {
		s.badRequest(c, fmt.Errorf("%w: product_id is required", calculators.ErrInvalidInput))
		return
	}
	if req.Area <= 0 {
		s.badRequest(c, fmt.Errorf("%w: area must be positive, got %v", calculators.ErrInvalidInput, req.Area))
		return
	}

	product, err := s.store.GetProductByID(c.Request.Context(), req.ProductID)
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "product not found"})
		return
	}
	if err != nil {
		s.internalError(c, "Failed to load product", err)
		return
	}

	coverage := product.Coverage
	if coverage <= 0 {
		coverage = s.pricing.DefaultCoverage
	}

	options := make([]calculators.PackageOption, 0, len(product.Packages))
	for _, pkg := range product.Packages {
		options = append(options, calculators.PackageOption{
			Label: pkg.Label,
			Size:  pkg.Size,
			Price: pkg.Price,
		})
	}

	q, err := calculators.BuildQuote(calculators.QuoteInput{
		Area:          req.Area,
		Coverage:      coverage,
		Coats:         valueOr(req.Coats, s.pricing.DefaultCoats),
		WasteFraction: s.pricing.DefaultWaste,
		Packages:      options,
		LaborIncluded: req.LaborIncluded,
	}, s.rates)
	if errors.Is(err, calculators.ErrNoPackages) {
		c.JSON(http.StatusUnprocessableEntity, api.ErrorResponse{Error: err.Error()})
		return
	}
	if err != nil {
		s.calculationError(c, err)
		return
	}

	s.record(c, storage.Calculation{
		Kind:      storage.KindQuote,
		TotalArea: q.Area,
		Required:  q.LitersNeeded,
		Unit:      string(calculators.UnitLiters),
		Summary:   fmt.Sprintf("%s: %s = R$ %s", product.Name, q.Packaging.Summary(), q.Total.StringFixed(2)),
	}, req)

	c.JSON(http.StatusOK, api.QuoteResponse{
		Quote: q,
		Product: api.ProductSummary{
			ID:    product.ID,
			Name:  product.Name,
			Brand: product.Brand,
		},
	})
}

// record writes the calculation log entry and returns its ID, or "" when it could not be saved.
func (s *Server) record(c *gin.Context, calc storage.Calculation, params any) string {
	calc.Source = storage.SourceAPI
	calc.UserRef = c.ClientIP()
	if data, err := json.Marshal(params); err == nil {
		calc.Params = types.JSONText(data)
	}

	id, err := s.store.SaveCalculation(c.Request.Context(), calc)
	if err != nil {
		s.logger.Warn("Failed to log calculation", zap.String("kind", calc.Kind), zap.Error(err))
		return ""
	}
	return id
}

func (s *Server) calculationError(c *gin.Context, err error) {
	if errors.Is(err, calculators.ErrInvalidInput) {
		s.badRequest(c, err)
		return
	}
	s.internalError(c, "Calculation failed", err)
}

func (s *Server) badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
}

func (s *Server) internalError(c *gin.Context, msg string, err error) {
	s.logger.Error(msg, zap.String("path", c.Request.URL.Path), zap.Error(err))
	c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "internal error"})
}
