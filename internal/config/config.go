package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Logger    LoggerConfig
	Auth      AuthConfig
	Catalog   CatalogConfig
	Database  DatabaseConfig
	Payment   PaymentConfig
	Messaging MessagingConfig
	Retrieval RetrievalConfig
	LLM       LLMConfig
	Pricing   PricingConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Host string
	Port int
}

// LoggerConfig holds logger-related configuration.
type LoggerConfig struct {
	Level  string
	Format string // "json" or "console"
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	APIKey string
}

// CatalogConfig controls the optional Postgres dish catalogue. When disabled
// the service prices every order with the flat unit price.
type CatalogConfig struct {
	Enabled bool
}

// DatabaseConfig holds database-related configuration. Only consulted when
// the catalogue is enabled.
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	MaxConnections  int
	MinConnections  int
	MaxConnLifetime int // seconds
}

// PaymentConfig holds payment gateway configuration.
type PaymentConfig struct {
	SecretKey   string
	BaseURL     string
	CallbackURL string
	Currency    string
}

// MessagingConfig holds the operator-notification messaging configuration.
type MessagingConfig struct {
	AccountSID string
	AuthToken  string
	BaseURL    string
	From       string
	OperatorTo string
}

// RetrievalConfig holds the hosted vector index configuration.
type RetrievalConfig struct {
	BaseURL      string
	APIKey       string
	IndexName    string
	TopK         int
	CacheTTLSecs int
}

// LLMConfig holds the hosted language model configuration.
type LLMConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
}

// PricingConfig holds the flat pricing policy configuration. UnitPrice is
// also the fallback price for dishes missing from the catalogue.
type PricingConfig struct {
	UnitPrice float64
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 8080),
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Auth: AuthConfig{
			APIKey: getEnv("API_KEY", ""),
		},
		Catalog: CatalogConfig{
			Enabled: getEnvAsBool("CATALOG_ENABLED", false),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvAsInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", ""),
			Database:        getEnv("DB_NAME", "dishdash"),
			MaxConnections:  getEnvAsInt("DB_MAX_CONNECTIONS", 25),
			MinConnections:  getEnvAsInt("DB_MIN_CONNECTIONS", 5),
			MaxConnLifetime: getEnvAsInt("DB_MAX_CONN_LIFETIME", 300),
		},
		Payment: PaymentConfig{
			SecretKey:   getEnv("PAYMENT_SECRET_KEY", ""),
			BaseURL:     getEnv("PAYMENT_BASE_URL", "https://api.paystack.co"),
			CallbackURL: getEnv("PAYMENT_CALLBACK_URL", ""),
			Currency:    getEnv("PAYMENT_CURRENCY", "NGN"),
		},
		Messaging: MessagingConfig{
			AccountSID: getEnv("MESSAGING_ACCOUNT_SID", ""),
			AuthToken:  getEnv("MESSAGING_AUTH_TOKEN", ""),
			BaseURL:    getEnv("MESSAGING_BASE_URL", "https://api.twilio.com"),
			From:       getEnv("MESSAGING_FROM", ""),
			OperatorTo: getEnv("MESSAGING_OPERATOR_TO", ""),
		},
		Retrieval: RetrievalConfig{
			BaseURL:      getEnv("RETRIEVAL_BASE_URL", ""),
			APIKey:       getEnv("RETRIEVAL_API_KEY", ""),
			IndexName:    getEnv("RETRIEVAL_INDEX_NAME", "dashdishorderbot"),
			TopK:         getEnvAsInt("RETRIEVAL_TOP_K", 3),
			CacheTTLSecs: getEnvAsInt("RETRIEVAL_CACHE_TTL", 300),
		},
		LLM: LLMConfig{
			BaseURL:     getEnv("LLM_BASE_URL", ""),
			APIKey:      getEnv("LLM_API_KEY", ""),
			Model:       getEnv("LLM_MODEL", "llama-3.1-70b-versatile"),
			Temperature: getEnvAsFloat("LLM_TEMPERATURE", 0.4),
		},
		Pricing: PricingConfig{
			UnitPrice: getEnvAsFloat("PRICING_UNIT_PRICE", 1500),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration. Missing provider credentials are
// fatal: the service must not start without its external collaborators.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Auth.APIKey == "" {
		return fmt.Errorf("API key is required")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLogLevels[c.Logger.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Logger.Format != "json" && c.Logger.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", c.Logger.Format)
	}

	if c.Payment.SecretKey == "" {
		return fmt.Errorf("payment secret key is required")
	}

	if c.Payment.BaseURL == "" {
		return fmt.Errorf("payment base URL is required")
	}

	if c.Messaging.AccountSID == "" || c.Messaging.AuthToken == "" {
		return fmt.Errorf("messaging credentials are required")
	}

	if c.Messaging.From == "" || c.Messaging.OperatorTo == "" {
		return fmt.Errorf("messaging from and operator numbers are required")
	}

	if c.Retrieval.BaseURL == "" {
		return fmt.Errorf("retrieval base URL is required")
	}

	if c.Retrieval.APIKey == "" {
		return fmt.Errorf("retrieval API key is required")
	}

	if c.Retrieval.TopK < 1 {
		return fmt.Errorf("retrieval top-k must be at least 1")
	}

	if c.LLM.BaseURL == "" {
		return fmt.Errorf("LLM base URL is required")
	}

	if c.LLM.APIKey == "" {
		return fmt.Errorf("LLM API key is required")
	}

	if c.LLM.Model == "" {
		return fmt.Errorf("LLM model is required")
	}

	if c.Pricing.UnitPrice <= 0 {
		return fmt.Errorf("unit price must be positive")
	}

	if c.Catalog.Enabled {
		if c.Database.Host == "" {
			return fmt.Errorf("database host is required when the catalogue is enabled")
		}

		if c.Database.Port < 1 || c.Database.Port > 65535 {
			return fmt.Errorf("invalid database port: %d", c.Database.Port)
		}

		if c.Database.User == "" {
			return fmt.Errorf("database user is required when the catalogue is enabled")
		}

		if c.Database.Database == "" {
			return fmt.Errorf("database name is required when the catalogue is enabled")
		}

		if c.Database.MaxConnections < 1 {
			return fmt.Errorf("database max connections must be at least 1")
		}

		if c.Database.MinConnections < 1 {
			return fmt.Errorf("database min connections must be at least 1")
		}

		if c.Database.MinConnections > c.Database.MaxConnections {
			return fmt.Errorf("database min connections cannot exceed max connections")
		}
	}

	return nil
}

// ConnectionString returns the PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

// Address returns the server address.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value.
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value.
func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvAsFloat retrieves an environment variable as a float or returns a default value.
func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
