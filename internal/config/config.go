package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration values
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Chain    ChainConfig
	Pipeline PipelineConfig
	Security SecurityConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
	Env  string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// URL returns the database connection URL
func (c DatabaseConfig) URL() string {
	return "postgres://" + c.User + ":" + c.Password + "@" + c.Host + ":" + strconv.Itoa(c.Port) + "/" + c.DBName + "?sslmode=" + c.SSLMode + "&prepare_threshold=0"
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	URL      string
	PASSWORD string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret string
	Expiry time.Duration
}

// ChainConfig holds external ledger connectivity
type ChainConfig struct {
	RPCURL             string
	RegistryAddress    string
	PaymentToken       string
	BatchExecutor      string
	RelayURL           string
	OperatorPrivateKey string
}

// PipelineConfig holds the purchase pipeline tuning knobs. It is built once
// at startup and injected; nothing in the pipeline reads environment state
// after that.
type PipelineConfig struct {
	FeeFloorWei       int64         // minimum gas fee cap, wei
	FeeMultiplierBps  int64         // applied above the node's suggestion, basis points (11000 = 1.1x)
	SlippageBps       int64         // max cost tolerance above the quote
	PollInterval      time.Duration // receipt polling cadence
	PollAttempts      int           // bounded polling budget
	ConfirmationDepth uint64        // extra blocks before a receipt is trusted
	DefaultBasePrice  int64         // bootstrap unit price for unregistered collectibles, token base units
	CurveCoefficient  int64         // bootstrap bonding curve coefficient
	CreatorFeeBps     int64
	PlatformFeeBps    int64
	BonusBps          int64 // loyalty bonus as share of total paid
	SubmitPerMinute   int64 // operating account submission rate limit
}

// SecurityConfig holds security encryption keys
type SecurityConfig struct {
	WalletEncryptionKey string
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Env:  getEnv("SERVER_ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "mintworks"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", "redis://localhost:6379"),
			PASSWORD: getEnv("REDIS_PASSWORD", ""),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "change-this-in-production"),
			Expiry: getEnvAsDuration("JWT_EXPIRY", 24*time.Hour),
		},
		Chain: ChainConfig{
			RPCURL:             getEnv("CHAIN_RPC_URL", "https://sepolia.base.org"),
			RegistryAddress:    getEnv("REGISTRY_ADDRESS", ""),
			PaymentToken:       getEnv("PAYMENT_TOKEN_ADDRESS", ""),
			BatchExecutor:      getEnv("BATCH_EXECUTOR_ADDRESS", ""),
			RelayURL:           getEnv("FEE_RELAY_URL", ""),
			OperatorPrivateKey: getEnv("OPERATOR_PRIVATE_KEY", ""),
		},
		Pipeline: PipelineConfig{
			FeeFloorWei:       getEnvAsInt64("FEE_FLOOR_WEI", 1_000_000_000), // 1 gwei
			FeeMultiplierBps:  getEnvAsInt64("FEE_MULTIPLIER_BPS", 11000),
			SlippageBps:       getEnvAsInt64("SLIPPAGE_BPS", 1000),
			PollInterval:      getEnvAsDuration("RECEIPT_POLL_INTERVAL", 2*time.Second),
			PollAttempts:      getEnvAsInt("RECEIPT_POLL_ATTEMPTS", 30),
			ConfirmationDepth: uint64(getEnvAsInt("CONFIRMATION_DEPTH", 1)),
			DefaultBasePrice:  getEnvAsInt64("DEFAULT_BASE_PRICE", 1_000_000), // 1.00 token unit, 6 decimals
			CurveCoefficient:  getEnvAsInt64("CURVE_COEFFICIENT", 16000),
			CreatorFeeBps:     getEnvAsInt64("CREATOR_FEE_BPS", 500),
			PlatformFeeBps:    getEnvAsInt64("PLATFORM_FEE_BPS", 500),
			BonusBps:          getEnvAsInt64("LOYALTY_BONUS_BPS", 100),
			SubmitPerMinute:   getEnvAsInt64("SUBMIT_RATE_PER_MINUTE", 30),
		},
		Security: SecurityConfig{
			WalletEncryptionKey: getEnv("WALLET_ENCRYPTION_KEY", "0000000000000000000000000000000000000000000000000000000000000000"), // 32-bytes hex string
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
