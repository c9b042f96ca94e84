package main

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"mintworks.backend/internal/config"
	"mintworks.backend/internal/infrastructure/blockchain"
	plog "mintworks.backend/pkg/logger"
)

func withMainHooks(t *testing.T) {
	t.Helper()
	origLoadDotenv := loadDotenv
	origLoadCfg := loadCfg
	origInitLog := initLog
	origInitRedis := initRedis
	origOpenDB := openDB
	origDialRegistry := dialRegistry
	origRunServer := runServer

	t.Cleanup(func() {
		loadDotenv = origLoadDotenv
		loadCfg = origLoadCfg
		initLog = origInitLog
		initRedis = origInitRedis
		openDB = origOpenDB
		dialRegistry = origDialRegistry
		runServer = origRunServer
	})
}

// stubNode satisfies the registry client's backend so startup can proceed
// without an RPC socket.
type stubNode struct{}

func (stubNode) ChainID(context.Context) (*big.Int, error) { return big.NewInt(84532), nil }
func (stubNode) CallContract(context.Context, ethereum.CallMsg, *big.Int) ([]byte, error) {
	return nil, nil
}
func (stubNode) EstimateGas(context.Context, ethereum.CallMsg) (uint64, error) { return 21000, nil }
func (stubNode) SuggestGasTipCap(context.Context) (*big.Int, error) {
	return big.NewInt(1_000_000_000), nil
}
func (stubNode) SuggestGasPrice(context.Context) (*big.Int, error) {
	return big.NewInt(2_000_000_000), nil
}
func (stubNode) PendingNonceAt(context.Context, common.Address) (uint64, error) { return 0, nil }
func (stubNode) SendTransaction(context.Context, *types.Transaction) error     { return nil }
func (stubNode) TransactionReceipt(context.Context, common.Hash) (*types.Receipt, error) {
	return nil, ethereum.NotFound
}
func (stubNode) BlockNumber(context.Context) (uint64, error) { return 100, nil }

func baseTestConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port: "18080",
			Env:  "development",
		},
		Database: config.DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "postgres",
			Password: "postgres",
			DBName:   "mintworks",
			SSLMode:  "disable",
		},
		Redis: config.RedisConfig{
			URL:      "redis://localhost:6379",
			PASSWORD: "",
		},
		JWT: config.JWTConfig{
			Secret: "secret",
			Expiry: 24 * time.Hour,
		},
		Chain: config.ChainConfig{
			RPCURL:             "http://localhost:8545",
			RegistryAddress:    "0x1000000000000000000000000000000000000001",
			PaymentToken:       "0x2000000000000000000000000000000000000002",
			BatchExecutor:      "0x3000000000000000000000000000000000000003",
			OperatorPrivateKey: "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318",
		},
		Pipeline: config.PipelineConfig{
			FeeFloorWei:      1_000_000_000,
			FeeMultiplierBps: 11000,
			SlippageBps:      1000,
			PollInterval:     time.Second,
			PollAttempts:     3,
			DefaultBasePrice: 1_000_000,
			CurveCoefficient: 16000,
			CreatorFeeBps:    500,
			PlatformFeeBps:   500,
			BonusBps:         100,
			SubmitPerMinute:  30,
		},
		Security: config.SecurityConfig{
			WalletEncryptionKey: "0000000000000000000000000000000000000000000000000000000000000000",
		},
	}
}

func TestRunMainProcess_RedisInitError(t *testing.T) {
	withMainHooks(t)

	loadDotenv = func(...string) error { return nil }
	loadCfg = baseTestConfig
	initLog = plog.Init
	initRedis = func(string, string) error { return errors.New("redis down") }

	err := runMainProcess()
	if err == nil {
		t.Fatal("expected redis init error")
	}
}

func TestRunMainProcess_DBOpenError(t *testing.T) {
	withMainHooks(t)

	loadDotenv = func(...string) error { return nil }
	loadCfg = baseTestConfig
	initLog = plog.Init
	initRedis = func(string, string) error { return nil }
	openDB = func(string) (*gorm.DB, error) { return nil, errors.New("db open failed") }

	err := runMainProcess()
	if err == nil {
		t.Fatal("expected db open error")
	}
}

func TestRunMainProcess_BadWalletKey(t *testing.T) {
	withMainHooks(t)

	loadDotenv = func(...string) error { return nil }
	loadCfg = func() *config.Config {
		cfg := baseTestConfig()
		cfg.Security.WalletEncryptionKey = "not-hex"
		return cfg
	}
	initLog = plog.Init
	initRedis = func(string, string) error { return nil }
	openDB = func(string) (*gorm.DB, error) {
		return gorm.Open(sqlite.Open("file:main_badkey?mode=memory&cache=shared"), &gorm.Config{})
	}

	err := runMainProcess()
	if err == nil {
		t.Fatal("expected wallet cipher error")
	}
}

func TestRunMainProcess_RegistryDialError(t *testing.T) {
	withMainHooks(t)

	loadDotenv = func(...string) error { return nil }
	loadCfg = baseTestConfig
	initLog = plog.Init
	initRedis = func(string, string) error { return nil }
	openDB = func(string) (*gorm.DB, error) {
		return gorm.Open(sqlite.Open("file:main_dial_err?mode=memory&cache=shared"), &gorm.Config{})
	}
	dialRegistry = func(string) (*blockchain.RegistryClient, error) {
		return nil, errors.New("node unreachable")
	}

	err := runMainProcess()
	if err == nil {
		t.Fatal("expected registry dial error")
	}
}

func TestRunMainProcess_BadOperatorKey(t *testing.T) {
	withMainHooks(t)

	loadDotenv = func(...string) error { return nil }
	loadCfg = func() *config.Config {
		cfg := baseTestConfig()
		cfg.Chain.OperatorPrivateKey = "zz"
		return cfg
	}
	initLog = plog.Init
	initRedis = func(string, string) error { return nil }
	openDB = func(string) (*gorm.DB, error) {
		return gorm.Open(sqlite.Open("file:main_opkey?mode=memory&cache=shared"), &gorm.Config{})
	}
	dialRegistry = func(string) (*blockchain.RegistryClient, error) {
		return blockchain.NewRegistryClientWithBackend(big.NewInt(84532), stubNode{}), nil
	}

	err := runMainProcess()
	if err == nil {
		t.Fatal("expected submitter init error")
	}
}

func TestRunMainProcess_ServerRunError(t *testing.T) {
	withMainHooks(t)

	loadDotenv = func(...string) error { return nil }
	loadCfg = baseTestConfig
	initLog = plog.Init
	initRedis = func(string, string) error { return nil }
	openDB = func(string) (*gorm.DB, error) {
		return gorm.Open(sqlite.Open("file:main_server_err?mode=memory&cache=shared"), &gorm.Config{})
	}
	dialRegistry = func(string) (*blockchain.RegistryClient, error) {
		return blockchain.NewRegistryClientWithBackend(big.NewInt(84532), stubNode{}), nil
	}
	runServer = func(*gin.Engine, string) error { return errors.New("listen failed") }

	err := runMainProcess()
	if err == nil {
		t.Fatal("expected server run error")
	}
}

func TestRunMainProcess_SuccessPath(t *testing.T) {
	withMainHooks(t)

	loadDotenv = func(...string) error { return nil }
	loadCfg = baseTestConfig
	initLog = plog.Init
	initRedis = func(string, string) error { return nil }
	openDB = func(string) (*gorm.DB, error) {
		return gorm.Open(sqlite.Open("file:main_success?mode=memory&cache=shared"), &gorm.Config{})
	}
	dialRegistry = func(string) (*blockchain.RegistryClient, error) {
		return blockchain.NewRegistryClientWithBackend(big.NewInt(84532), stubNode{}), nil
	}
	runServer = func(*gin.Engine, string) error { return nil }

	if err := runMainProcess(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
