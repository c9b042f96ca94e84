package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"mintworks.backend/internal/config"
	"mintworks.backend/internal/infrastructure/blockchain"
	"mintworks.backend/internal/infrastructure/jobs"
	"mintworks.backend/internal/infrastructure/repositories"
	"mintworks.backend/internal/interfaces/http/handlers"
	"mintworks.backend/internal/interfaces/http/middleware"
	"mintworks.backend/internal/usecases"
	"mintworks.backend/pkg/jwt"
	"mintworks.backend/pkg/keycrypt"
	"mintworks.backend/pkg/logger"
	"mintworks.backend/pkg/redis"
)

var (
	loadDotenv = godotenv.Load
	loadCfg    = config.Load
	initLog    = logger.Init
	initRedis  = redis.Init
	openDB     = func(dsn string) (*gorm.DB, error) {
		return gorm.Open(postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), &gorm.Config{
			PrepareStmt:    false,
			TranslateError: true,
		})
	}
	dialRegistry = blockchain.NewRegistryClient
	runServer    = func(r *gin.Engine, port string) error { return r.Run(":" + port) }
	getStdDB     = func(db *gorm.DB) (*sql.DB, error) { return db.DB() }
)

func main() {
	if err := runMainProcess(); err != nil {
		log.Fatal(err)
	}
}

func runMainProcess() error {
	// Load .env file
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg := loadCfg()

	// Initialize Logger
	initLog(cfg.Server.Env)
	logger.Info(context.Background(), "Logger initialized", zap.String("env", cfg.Server.Env))

	// Initialize Redis
	if err := initRedis(cfg.Redis.URL, cfg.Redis.PASSWORD); err != nil {
		logger.Error(context.Background(), "Failed to initialize Redis", zap.Error(err))
		return fmt.Errorf("failed to initialize redis: %w", err)
	}
	logger.Info(context.Background(), "Redis initialized")

	// Set Gin mode
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database using GORM
	dsn := cfg.Database.URL()
	db, err := openDB(dsn)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := getStdDB(db)
	if err != nil {
		return fmt.Errorf("failed to get generic database object: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		log.Printf("⚠️ Database not available: %v (endpoints will return errors)", err)
	} else {
		log.Println("✅ Connected to PostgreSQL via GORM")
	}

	// Initialize JWT service
	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.Expiry)

	// Initialize wallet key cipher
	cipher, err := keycrypt.NewCipher(cfg.Security.WalletEncryptionKey)
	if err != nil {
		return fmt.Errorf("failed to initialize wallet cipher: %w", err)
	}

	// Initialize repositories
	balanceRepo := repositories.NewBalanceRepository(db)
	purchaseRepo := repositories.NewPurchaseRepository(db)
	collectibleRepo := repositories.NewCollectibleRepository(db)
	walletRepo := repositories.NewWalletRepository(db)
	uow := repositories.NewUnitOfWork(db)

	// Connect to the registry node
	registryClient, err := dialRegistry(cfg.Chain.RPCURL)
	if err != nil {
		return fmt.Errorf("failed to connect to registry node: %w", err)
	}
	relayClient := blockchain.NewRelayClient(cfg.Chain.RelayURL)

	// Operating account submission rate limit, shared across replicas via Redis
	submitLimiter := redis.NewRateLimiter(redis.GetClient(), "submissions", cfg.Pipeline.SubmitPerMinute, time.Minute)

	// Initialize usecases
	pricingUsecase := usecases.NewPricingUsecase(registryClient, cfg.Chain.RegistryAddress, cfg.Pipeline)
	walletUsecase := usecases.NewWalletUsecase(walletRepo, cipher)
	txBuilder := usecases.NewTxBuilder(cfg.Pipeline, cfg.Chain.RegistryAddress, cfg.Chain.PaymentToken, cfg.Chain.BatchExecutor)
	submitter, err := usecases.NewSubmitter(registryClient, relayClient, submitLimiter, cfg.Pipeline, cfg.Chain.OperatorPrivateKey)
	if err != nil {
		return fmt.Errorf("failed to initialize submitter: %w", err)
	}
	purchaseUsecase := usecases.NewPurchaseUsecase(
		balanceRepo, purchaseRepo, collectibleRepo, uow,
		pricingUsecase, walletUsecase, txBuilder, submitter, registryClient,
		cfg.Pipeline, cfg.Chain,
	)

	// Initialize handlers
	purchaseHandler := handlers.NewPurchaseHandler(purchaseUsecase)
	balanceHandler := handlers.NewBalanceHandler(balanceRepo)
	walletHandler := handlers.NewWalletHandler(walletUsecase)
	pricingHandler := handlers.NewPricingHandler(pricingUsecase)

	authMiddleware := middleware.AuthMiddleware(jwtService)

	// Start background jobs
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sweepJob := jobs.NewSettlementSweepJob(purchaseRepo, registryClient)
	go sweepJob.Start(ctx)

	// Initialize router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.MetricsMiddleware())

	applyCORSMiddleware(r)
	registerHealthRoute(r)
	registerMetricsRoute(r)
	registerAPIV1Routes(r, routeDeps{
		purchaseHandler: purchaseHandler,
		balanceHandler:  balanceHandler,
		walletHandler:   walletHandler,
		pricingHandler:  pricingHandler,
		authMiddleware:  authMiddleware,
	})

	// Print all registered routes for debugging
	log.Println("📋 Registered Routes:")
	for _, route := range r.Routes() {
		log.Printf("   %s %s", route.Method, route.Path)
	}

	// Graceful shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("🛑 Shutting down server...")
		sweepJob.Stop()
		cancel()
	}()

	// Start server
	log.Printf("🚀 Mintworks Backend starting on port %s", cfg.Server.Port)
	log.Printf("📚 API: http://localhost:%s/api/v1", cfg.Server.Port)
	log.Printf("❤️ Health: http://localhost:%s/health", cfg.Server.Port)

	if err := runServer(r, cfg.Server.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}
