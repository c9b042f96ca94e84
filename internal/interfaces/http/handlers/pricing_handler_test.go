package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"mintworks.backend/internal/domain/entities"
	domainerrors "mintworks.backend/internal/domain/errors"
)

type fakePricingService struct {
	quote *entities.PriceQuote
	err   error
}

func (f *fakePricingService) Quote(_ context.Context, collectibleID int64) (*entities.PriceQuote, error) {
	if f.err != nil {
		return nil, f.err
	}
	q := *f.quote
	q.CollectibleID = collectibleID
	return &q, nil
}

func newPricingRouter(svc PricingService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewPricingHandler(svc)

	router := gin.New()
	router.GET("/collectibles/:id/quote", handler.GetQuote)
	return router
}

func TestGetQuote(t *testing.T) {
	svc := &fakePricingService{quote: &entities.PriceQuote{
		Reserve:     7_500_000,
		CreatorFee:  375_000,
		PlatformFee: 375_000,
		Total:       8_250_000,
		Exists:      true,
	}}
	router := newPricingRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/collectibles/42/quote", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Quote entities.PriceQuote `json:"quote"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.EqualValues(t, 42, resp.Quote.CollectibleID)
	require.EqualValues(t, 8_250_000, resp.Quote.Total)
	require.True(t, resp.Quote.Exists)
}

func TestGetQuoteInvalidID(t *testing.T) {
	router := newPricingRouter(&fakePricingService{})

	for _, id := range []string{"abc", "0", "-3"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/collectibles/"+id+"/quote", nil)
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusBadRequest, w.Code, "id %q", id)
	}
}

func TestGetQuoteRegistryFailure(t *testing.T) {
	router := newPricingRouter(&fakePricingService{err: domainerrors.ErrPricing})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/collectibles/42/quote", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusInternalServerError, w.Code)
}
