package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	domainerrors "mintworks.backend/internal/domain/errors"
)

// Success sends a success response
func Success(c *gin.Context, status int, data interface{}) {
	c.JSON(status, data)
}

// Error sends an error response, mapping domain errors to HTTP statuses
func Error(c *gin.Context, err error) {
	var appErr *domainerrors.AppError
	if !errors.As(err, &appErr) {
		appErr = fromSentinel(err)
	}

	c.JSON(appErr.Code, gin.H{
		"success":       false,
		"error_message": appErr.Message,
	})
}

// fromSentinel classifies bare domain errors that were never wrapped into
// an AppError by the usecase layer.
func fromSentinel(err error) *domainerrors.AppError {
	switch {
	case errors.Is(err, domainerrors.ErrInsufficientBalance):
		return domainerrors.PaymentRequired("insufficient balance")
	case errors.Is(err, domainerrors.ErrWalletNotFound):
		return domainerrors.NotFound("no wallet on record")
	case errors.Is(err, domainerrors.ErrNotFound):
		return domainerrors.NotFound(err.Error())
	case errors.Is(err, domainerrors.ErrInvalidInput), errors.Is(err, domainerrors.ErrBadRequest):
		return domainerrors.BadRequest(err.Error())
	case errors.Is(err, domainerrors.ErrUnauthorized):
		return domainerrors.Unauthorized(err.Error())
	case errors.Is(err, domainerrors.ErrRateLimited):
		return domainerrors.NewAppError(http.StatusTooManyRequests, "submission rate limit exceeded", err)
	case errors.Is(err, domainerrors.ErrOperatingCapital):
		return domainerrors.NewAppError(http.StatusServiceUnavailable, "settlement temporarily unavailable", err)
	case errors.Is(err, domainerrors.ErrReverted):
		return domainerrors.NewAppError(http.StatusConflict, "onchain execution reverted, balance restored", err)
	case errors.Is(err, domainerrors.ErrTimedOut):
		return domainerrors.NewAppError(http.StatusGatewayTimeout, "onchain confirmation timed out, balance restored", err)
	default:
		return domainerrors.InternalError(err)
	}
}
