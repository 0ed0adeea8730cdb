package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm/logger"
)

// DBConfig holds database configuration
type DBConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	LogLevel        logger.LogLevel
}

// GetDSN returns the PostgreSQL connection string
func (c *DBConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
	Env  string
}

// StoreConfig selects the registry backend
type StoreConfig struct {
	// Driver is either "memory" or "postgres"
	Driver string
	// Seed loads the demo registry into an empty store
	Seed bool
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	SigningKey      string
	ExpirationHours int
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string
}

// ManagerConfig holds the fixed management credentials
type ManagerConfig struct {
	Username string
	Password string
}

// ReputationConfig holds settings for the external reputation text generator
type ReputationConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Timeout     time.Duration
	MaxAttempts int
	CacheTTL    time.Duration
	// SessionTTL is how long a settled lookup session is kept
	SessionTTL time.Duration
	// MaxSessions caps the number of tracked lookup sessions
	MaxSessions int
}

// RedisConfig holds the report cache connection settings
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// Disabled returns a copy of the settings with the cache turned off
func (r RedisConfig) Disabled() RedisConfig {
	r.Enabled = false
	return r
}

// Config holds all configuration
type Config struct {
	ServiceName string
	Server      ServerConfig
	Store       StoreConfig
	DB          DBConfig
	JWT         JWTConfig
	Log         LogConfig
	Manager     ManagerConfig
	Reputation  ReputationConfig
	Redis       RedisConfig
}

// Load loads configuration from .env file and environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		// Not returning error as .env file is optional
		fmt.Printf("Warning: .env file not found, using environment variables\n")
	}

	config := &Config{
		ServiceName: getEnv("SERVICE_NAME", "supplier-portal"),
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Env:  getEnv("APP_ENV", "development"),
		},
		Store: StoreConfig{
			Driver: strings.ToLower(getEnv("STORE_DRIVER", "memory")),
			Seed:   getEnvAsBool("STORE_SEED", true),
		},
		DB: DBConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "password"),
			DBName:          getEnv("DB_NAME", "supplier_portal"),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 100),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 1*time.Hour),
			LogLevel:        getEnvAsLogLevel("DB_LOG_LEVEL", logger.Warn),
		},
		JWT: JWTConfig{
			SigningKey:      getEnv("JWT_SIGNING_KEY", "defaultsecretkey"),
			ExpirationHours: getEnvAsInt("JWT_EXPIRATION_HOURS", 8),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Manager: ManagerConfig{
			Username: getEnv("MANAGER_USERNAME", "gestor"),
			Password: getEnv("MANAGER_PASSWORD", "1234"),
		},
		Reputation: ReputationConfig{
			APIKey:      getEnv("REPUTATION_API_KEY", ""),
			BaseURL:     getEnv("REPUTATION_BASE_URL", "https://generativelanguage.googleapis.com/"),
			Model:       getEnv("REPUTATION_MODEL", "gemini-2.0-flash"),
			Timeout:     getEnvAsDuration("REPUTATION_TIMEOUT", 30*time.Second),
			MaxAttempts: getEnvAsInt("REPUTATION_MAX_ATTEMPTS", 1),
			CacheTTL:    getEnvAsDuration("REPUTATION_CACHE_TTL", 6*time.Hour),
			SessionTTL:  getEnvAsDuration("REPUTATION_SESSION_TTL", 30*time.Minute),
			MaxSessions: getEnvAsInt("REPUTATION_MAX_SESSIONS", 10000),
		},
		Redis: RedisConfig{
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
	}

	if config.Store.Driver != "memory" && config.Store.Driver != "postgres" {
		return nil, fmt.Errorf("unsupported STORE_DRIVER %q", config.Store.Driver)
	}
	if config.Reputation.MaxAttempts < 1 {
		config.Reputation.MaxAttempts = 1
	}

	return config, nil
}

// LogConfig returns the configuration as a zap logger-friendly format
func (c *Config) LogConfig() []zap.Field {
	return []zap.Field{
		zap.String("service", c.ServiceName),
		zap.String("environment", c.Server.Env),
		zap.String("store_driver", c.Store.Driver),
		zap.String("server_port", c.Server.Port),
	}
}

// Helper function to get environment variables with defaults
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// Helper function to get environment variables as integers
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// Helper function to get environment variables as booleans
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// Helper function to get environment variables as durations
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// Helper function to get environment variables as log levels
func getEnvAsLogLevel(key string, defaultValue logger.LogLevel) logger.LogLevel {
	valueStr := getEnv(key, "")
	switch valueStr {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "warn":
		return logger.Warn
	case "info":
		return logger.Info
	default:
		return defaultValue
	}
}
