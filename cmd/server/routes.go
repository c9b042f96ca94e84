package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"mintworks.backend/internal/interfaces/http/handlers"
	"mintworks.backend/internal/interfaces/http/middleware"
)

type routeDeps struct {
	purchaseHandler *handlers.PurchaseHandler
	balanceHandler  *handlers.BalanceHandler
	walletHandler   *handlers.WalletHandler
	pricingHandler  *handlers.PricingHandler
	authMiddleware  gin.HandlerFunc
}

func registerAPIV1Routes(r *gin.Engine, d routeDeps) {
	v1 := r.Group("/api/v1")
	{
		// Quote route (public, advisory)
		v1.GET("/collectibles/:id/quote", d.pricingHandler.GetQuote)

		// Purchase routes (protected)
		purchases := v1.Group("/purchases")
		purchases.Use(d.authMiddleware)
		{
			purchases.POST("", middleware.IdempotencyMiddleware(), d.purchaseHandler.CreatePurchase)
			purchases.GET("/:id", d.purchaseHandler.GetPurchase)
			purchases.GET("", d.purchaseHandler.ListPurchases)
		}

		// Balance routes (protected)
		balance := v1.Group("/balance")
		balance.Use(d.authMiddleware)
		{
			balance.GET("", d.balanceHandler.GetBalance)
			balance.GET("/ledger", d.balanceHandler.ListLedgerEntries)
		}

		// Wallet routes (protected)
		wallets := v1.Group("/wallets")
		wallets.Use(d.authMiddleware)
		{
			wallets.POST("/connect", d.walletHandler.ConnectWallet)
			wallets.POST("/custodial", d.walletHandler.CreateCustodialWallet)
			wallets.GET("/address", d.walletHandler.GetActiveAddress)
			wallets.GET("", d.walletHandler.ListWallets)
		}
	}
}

func registerHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "mintworks-backend",
			"version": "0.1.0",
		})
	})
}

func registerMetricsRoute(r *gin.Engine) {
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

func applyCORSMiddleware(r *gin.Engine) {
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, Idempotency-Key, X-Request-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})
}
