package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"mintworks.backend/internal/domain/entities"
	domainerrors "mintworks.backend/internal/domain/errors"
	"mintworks.backend/internal/interfaces/http/response"
)

type PricingService interface {
	Quote(ctx context.Context, collectibleID int64) (*entities.PriceQuote, error)
}

// PricingHandler handles price quote endpoints
type PricingHandler struct {
	pricingUsecase PricingService
}

// NewPricingHandler creates a new pricing handler
func NewPricingHandler(pricingUsecase PricingService) *PricingHandler {
	return &PricingHandler{pricingUsecase: pricingUsecase}
}

// GetQuote returns the current cost of a collectible. Quotes are advisory;
// the price is re-resolved at purchase time.
// GET /api/v1/collectibles/:id/quote
func (h *PricingHandler) GetQuote(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, domainerrors.BadRequest("Invalid collectible ID"))
		return
	}

	quote, err := h.pricingUsecase.Quote(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"quote": quote})
}
