package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"mintworks.backend/internal/domain/entities"
	domainerrors "mintworks.backend/internal/domain/errors"
	"mintworks.backend/internal/interfaces/http/middleware"
	"mintworks.backend/internal/interfaces/http/response"
)

type WalletService interface {
	ConnectExternal(ctx context.Context, userID uuid.UUID, address string) (*entities.Wallet, error)
	CreateCustodial(ctx context.Context, userID uuid.UUID) (*entities.Wallet, string, error)
	ResolveAddress(ctx context.Context, userID uuid.UUID) (string, error)
	ListWallets(ctx context.Context, userID uuid.UUID) ([]*entities.Wallet, error)
}

// WalletHandler handles wallet endpoints
type WalletHandler struct {
	walletUsecase WalletService
}

// NewWalletHandler creates a new wallet handler
func NewWalletHandler(walletUsecase WalletService) *WalletHandler {
	return &WalletHandler{walletUsecase: walletUsecase}
}

type connectWalletInput struct {
	Address string `json:"address" binding:"required"`
}

// ConnectWallet links an externally controlled address to the current user
// POST /api/v1/wallets/connect
func (h *WalletHandler) ConnectWallet(c *gin.Context) {
	var input connectWalletInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("User not authenticated"))
		return
	}

	wallet, err := h.walletUsecase.ConnectExternal(c.Request.Context(), userID, input.Address)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"wallet": wallet})
}

// CreateCustodialWallet provisions a custodial wallet for the current user
// POST /api/v1/wallets/custodial
func (h *WalletHandler) CreateCustodialWallet(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("User not authenticated"))
		return
	}

	wallet, address, err := h.walletUsecase.CreateCustodial(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"wallet":  wallet,
		"address": address,
	})
}

// GetActiveAddress resolves the address purchases will settle to
// GET /api/v1/wallets/address
func (h *WalletHandler) GetActiveAddress(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("User not authenticated"))
		return
	}

	address, err := h.walletUsecase.ResolveAddress(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"address": address})
}

// ListWallets lists the current user's wallets
// GET /api/v1/wallets
func (h *WalletHandler) ListWallets(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("User not authenticated"))
		return
	}

	wallets, err := h.walletUsecase.ListWallets(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"wallets": wallets})
}
