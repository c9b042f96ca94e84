package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	domainerrors "mintworks.backend/internal/domain/errors"
	"mintworks.backend/internal/domain/repositories"
	"mintworks.backend/internal/interfaces/http/middleware"
	"mintworks.backend/internal/interfaces/http/response"
	"mintworks.backend/pkg/utils"
)

// BalanceHandler exposes the internal balance and its ledger
type BalanceHandler struct {
	balanceRepo repositories.BalanceRepository
}

// NewBalanceHandler creates a new balance handler
func NewBalanceHandler(balanceRepo repositories.BalanceRepository) *BalanceHandler {
	return &BalanceHandler{balanceRepo: balanceRepo}
}

// GetBalance returns the current user's spendable balance
// GET /api/v1/balance
func (h *BalanceHandler) GetBalance(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("User not authenticated"))
		return
	}

	balance, err := h.balanceRepo.Get(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"balance": balance})
}

// ListLedgerEntries lists the current user's ledger entries, newest first
// GET /api/v1/balance/ledger
func (h *BalanceHandler) ListLedgerEntries(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("User not authenticated"))
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit < 1 || limit > 100 {
		limit = 20
	}
	params := utils.NewPageRequest(page, limit)

	entries, total, err := h.balanceRepo.GetEntries(c.Request.Context(), userID, params.Limit, params.Offset())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"entries":    entries,
		"pagination": params.Meta(int64(total)),
	})
}
