package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Store drivers
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// Lock drivers
const (
	LockMemory = "memory"
	LockRedis  = "redis"
)

// Config holds all configuration for the WalletFlow service
type Config struct {
	Environment  string
	LogLevel     string
	GRPCPort     string
	APIToken     string
	StoreDriver  string
	AuditLogPath string
	SeedDemo     bool
	Database     DatabaseConfig
	Lock         LockConfig
	RabbitMQ     RabbitMQConfig
}

// DatabaseConfig holds PostgreSQL connection configuration
type DatabaseConfig struct {
	ConnString string
	Host       string
	Port       string
	User       string
	Password   string
	Name       string
}

// DSN returns the explicit connection string, or one built from the individual settings
func (c DatabaseConfig) DSN() string {
	if c.ConnString != "" {
		return c.ConnString
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Host, c.Port, c.User, c.Password, c.Name)
}

// LockConfig holds wallet lock configuration
type LockConfig struct {
	Driver     string
	RedisAddr  string
	Expiry     time.Duration
	Tries      int
	RetryDelay time.Duration
}

// RabbitMQConfig holds RabbitMQ publisher configuration.
// An empty URL disables event publishing.
type RabbitMQConfig struct {
	URL        string
	Exchange   string
	RoutingKey string
}

// Load loads configuration from environment variables with default values
func Load() (*Config, error) {
	cfg := &Config{
		Environment:  getEnv("APP_ENV", "local"),
		LogLevel:     getEnv("LOG_LEVEL", ""),
		GRPCPort:     getEnv("GRPC_PORT", "8080"),
		APIToken:     getEnv("API_TOKEN", "dev-token"),
		StoreDriver:  getEnv("STORE_DRIVER", StoreMemory),
		AuditLogPath: getEnv("AUDIT_LOG_PATH", "wallet_balances.txt"),
		Database: DatabaseConfig{
			ConnString: getEnv("DB_CONN_STR", ""),
			Host:       getEnv("DB_HOST", "localhost"),
			Port:       getEnv("DB_PORT", "5432"),
			User:       getEnv("DB_USER", "postgres"),
			Password:   getEnv("DB_PASSWORD", "postgres"),
			Name:       getEnv("DB_NAME", "walletflow"),
		},
		Lock: LockConfig{
			Driver:    getEnv("LOCK_DRIVER", LockMemory),
			RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),
		},
		RabbitMQ: RabbitMQConfig{
			URL:        getEnv("RABBITMQ_URL", ""),
			Exchange:   getEnv("RABBITMQ_EXCHANGE", "wallet.operations"),
			RoutingKey: getEnv("RABBITMQ_ROUTING_KEY", "wallet.operations.transfer.completed"),
		},
	}

	var err error
	if cfg.SeedDemo, err = getBool("SEED_DEMO", true); err != nil {
		return nil, err
	}
	if cfg.Lock.Expiry, err = getDuration("LOCK_EXPIRY", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.Lock.Tries, err = getInt("LOCK_TRIES", 32); err != nil {
		return nil, err
	}
	if cfg.Lock.RetryDelay, err = getDuration("LOCK_RETRY_DELAY", 100*time.Millisecond); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.StoreDriver != StoreMemory && c.StoreDriver != StorePostgres {
		return fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", StoreMemory, StorePostgres, c.StoreDriver)
	}
	if c.Lock.Driver != LockMemory && c.Lock.Driver != LockRedis {
		return fmt.Errorf("LOCK_DRIVER must be %q or %q, got %q", LockMemory, LockRedis, c.Lock.Driver)
	}
	if c.AuditLogPath == "" {
		return fmt.Errorf("AUDIT_LOG_PATH cannot be empty")
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value if not set
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func getInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
