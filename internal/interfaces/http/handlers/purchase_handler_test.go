package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"mintworks.backend/internal/domain/entities"
	domainerrors "mintworks.backend/internal/domain/errors"
	"mintworks.backend/internal/interfaces/http/middleware"
)

type fakePurchaseService struct {
	response  *entities.PurchaseResponse
	purchase  *entities.Purchase
	purchases []*entities.Purchase
	total     int
	err       error

	gotUserID uuid.UUID
	gotInput  *entities.PurchaseInput
}

func (f *fakePurchaseService) Purchase(_ context.Context, userID uuid.UUID, input *entities.PurchaseInput) (*entities.PurchaseResponse, error) {
	f.gotUserID = userID
	f.gotInput = input
	if f.err != nil {
		return nil, f.err
	}
	return f.response, nil
}

func (f *fakePurchaseService) GetPurchase(context.Context, uuid.UUID) (*entities.Purchase, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.purchase, nil
}

func (f *fakePurchaseService) GetPurchasesByUser(context.Context, uuid.UUID, int, int) ([]*entities.Purchase, int, error) {
	if f.err != nil {
		return nil, 0, f.err
	}
	return f.purchases, f.total, nil
}

func newPurchaseRouter(svc PurchaseService, userID uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewPurchaseHandler(svc)

	router := gin.New()
	authed := router.Group("", func(c *gin.Context) {
		if userID != uuid.Nil {
			c.Set(middleware.UserIDKey, userID)
		}
		c.Next()
	})
	authed.POST("/purchases", handler.CreatePurchase)
	authed.GET("/purchases/:id", handler.GetPurchase)
	authed.GET("/purchases", handler.ListPurchases)
	return router
}

func TestCreatePurchaseSuccess(t *testing.T) {
	userID := uuid.New()
	svc := &fakePurchaseService{response: &entities.PurchaseResponse{
		Success:       true,
		TxHash:        "0xabc",
		TotalDeducted: 8_250_000,
		NewBalance:    1_832_500,
	}}
	router := newPurchaseRouter(svc, userID)

	body, _ := json.Marshal(entities.PurchaseInput{CollectibleID: 42})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/purchases", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	require.Equal(t, userID, svc.gotUserID)
	require.EqualValues(t, 42, svc.gotInput.CollectibleID)

	var resp entities.PurchaseResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.Equal(t, "0xabc", resp.TxHash)
}

func TestCreatePurchaseMalformedBody(t *testing.T) {
	router := newPurchaseRouter(&fakePurchaseService{}, uuid.New())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/purchases", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreatePurchaseUnauthenticated(t *testing.T) {
	router := newPurchaseRouter(&fakePurchaseService{}, uuid.Nil)

	body, _ := json.Marshal(entities.PurchaseInput{CollectibleID: 42})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/purchases", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreatePurchaseMapsDomainErrors(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{domainerrors.ErrInsufficientBalance, http.StatusPaymentRequired},
		{domainerrors.ErrWalletNotFound, http.StatusNotFound},
		{fmt.Errorf("%w: 0xdead", domainerrors.ErrReverted), http.StatusConflict},
		{fmt.Errorf("%w: no receipt", domainerrors.ErrTimedOut), http.StatusGatewayTimeout},
		{domainerrors.ErrOperatingCapital, http.StatusServiceUnavailable},
		{domainerrors.ErrRateLimited, http.StatusTooManyRequests},
	}

	for _, tc := range cases {
		router := newPurchaseRouter(&fakePurchaseService{err: tc.err}, uuid.New())

		body, _ := json.Marshal(entities.PurchaseInput{CollectibleID: 42})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/purchases", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)

		require.Equal(t, tc.status, w.Code, "error %v", tc.err)

		var resp map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Equal(t, false, resp["success"])
		require.NotEmpty(t, resp["error_message"])
	}
}

func TestGetPurchaseInvalidID(t *testing.T) {
	router := newPurchaseRouter(&fakePurchaseService{}, uuid.New())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/purchases/not-a-uuid", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetPurchaseNotFound(t *testing.T) {
	router := newPurchaseRouter(&fakePurchaseService{err: domainerrors.ErrNotFound}, uuid.New())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/purchases/"+uuid.NewString(), nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestListPurchasesPagination(t *testing.T) {
	svc := &fakePurchaseService{
		purchases: []*entities.Purchase{{ID: uuid.New()}, {ID: uuid.New()}},
		total:     12,
	}
	router := newPurchaseRouter(svc, uuid.New())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/purchases?page=2&limit=5", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Purchases  []json.RawMessage `json:"purchases"`
		Pagination struct {
			Page       int `json:"page"`
			Limit      int `json:"limit"`
			Total      int `json:"total"`
			TotalPages int `json:"totalPages"`
		} `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Purchases, 2)
	require.Equal(t, 2, resp.Pagination.Page)
	require.Equal(t, 5, resp.Pagination.Limit)
	require.Equal(t, 12, resp.Pagination.Total)
	require.Equal(t, 3, resp.Pagination.TotalPages)
}

func TestListPurchasesClampsBadParams(t *testing.T) {
	svc := &fakePurchaseService{}
	router := newPurchaseRouter(svc, uuid.New())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/purchases?page=-1&limit=9999", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Pagination struct {
			Page  int `json:"page"`
			Limit int `json:"limit"`
		} `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Pagination.Page)
	require.Equal(t, 10, resp.Pagination.Limit)
}
