package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"mintworks.backend/internal/domain/entities"
	domainerrors "mintworks.backend/internal/domain/errors"
	"mintworks.backend/internal/interfaces/http/middleware"
	"mintworks.backend/internal/interfaces/http/response"
)

type PurchaseService interface {
	Purchase(ctx context.Context, userID uuid.UUID, input *entities.PurchaseInput) (*entities.PurchaseResponse, error)
	GetPurchase(ctx context.Context, id uuid.UUID) (*entities.Purchase, error)
	GetPurchasesByUser(ctx context.Context, userID uuid.UUID, page, limit int) ([]*entities.Purchase, int, error)
}

// PurchaseHandler handles purchase endpoints
type PurchaseHandler struct {
	purchaseUsecase PurchaseService
}

// NewPurchaseHandler creates a new purchase handler
func NewPurchaseHandler(purchaseUsecase PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{purchaseUsecase: purchaseUsecase}
}

// CreatePurchase runs the purchase settlement for the current user
// POST /api/v1/purchases
func (h *PurchaseHandler) CreatePurchase(c *gin.Context) {
	var input entities.PurchaseInput

	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("User not authenticated"))
		return
	}

	purchaseResponse, err := h.purchaseUsecase.Purchase(c.Request.Context(), userID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, purchaseResponse)
}

// GetPurchase gets a purchase by ID
// GET /api/v1/purchases/:id
func (h *PurchaseHandler) GetPurchase(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid purchase ID"))
		return
	}

	purchase, err := h.purchaseUsecase.GetPurchase(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"purchase": purchase})
}

// ListPurchases lists purchases for the current user
// GET /api/v1/purchases
func (h *PurchaseHandler) ListPurchases(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("User not authenticated"))
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	purchases, total, err := h.purchaseUsecase.GetPurchasesByUser(c.Request.Context(), userID, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	totalPages := (total + limit - 1) / limit

	response.Success(c, http.StatusOK, gin.H{
		"purchases": purchases,
		"pagination": gin.H{
			"page":       page,
			"limit":      limit,
			"total":      total,
			"totalPages": totalPages,
		},
	})
}
