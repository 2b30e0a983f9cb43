package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	domainconfig "famtree-backend/domain/config"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string
	Environment   string

	// AWS configuration
	AWSRegion     string
	DynamoDBTable string
	TreeIndexName string // GSI1 - tree lookups by tree id
	EventBusName  string

	// Lambda configuration
	IsLambda bool

	// Sync tuning
	SyncBatchSize    int
	SyncBatchTimeout time.Duration
	MaxNodesPerTree  int

	// Logging
	LogLevel string

	// Authentication
	JWTSecret string
	JWTIssuer string

	// Feature flags
	EnableCORS bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerAddress: getEnv("SERVER_ADDRESS", ":8080"),
		Environment:   getEnv("ENVIRONMENT", "development"),
		AWSRegion:     getEnv("AWS_REGION", "us-west-2"),
		DynamoDBTable: getEnv("TABLE_NAME", getEnv("DYNAMODB_TABLE", "famtree")),
		TreeIndexName: getEnv("TREE_INDEX_NAME", "TreeIndex"),
		EventBusName:  getEnv("EVENT_BUS_NAME", "famtree-events"),

		IsLambda: getEnvBool("IS_LAMBDA", false),

		SyncBatchSize:    getEnvInt("SYNC_BATCH_SIZE", 5),
		SyncBatchTimeout: time.Duration(getEnvInt("SYNC_BATCH_TIMEOUT_MS", 5000)) * time.Millisecond,
		MaxNodesPerTree:  getEnvInt("MAX_NODES_PER_TREE", 2000),

		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTIssuer: getEnv("JWT_ISSUER", "famtree-backend"),

		LogLevel:   getEnv("LOG_LEVEL", "info"),
		EnableCORS: getEnvBool("ENABLE_CORS", true),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Load is an alias for LoadConfig
func Load() (*Config, error) {
	return LoadConfig()
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	if c.SyncBatchSize < 1 {
		return fmt.Errorf("SYNC_BATCH_SIZE must be at least 1")
	}
	if c.SyncBatchTimeout <= 0 {
		return fmt.Errorf("SYNC_BATCH_TIMEOUT_MS must be positive")
	}

	if c.Environment == "production" {
		if c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required in production")
		}
		if c.DynamoDBTable == "" {
			return fmt.Errorf("DYNAMODB_TABLE is required")
		}
		if c.EventBusName == "" {
			return fmt.Errorf("EVENT_BUS_NAME is required")
		}
	}

	return nil
}

// DomainConfig projects the sync tuning knobs into the domain layer's
// configuration type
func (c *Config) DomainConfig() *domainconfig.DomainConfig {
	dc := domainconfig.DefaultDomainConfig()
	dc.SyncBatchSize = c.SyncBatchSize
	dc.BatchTimeout = c.SyncBatchTimeout
	dc.MaxNodesPerTree = c.MaxNodesPerTree
	return dc
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
