package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageDynamoDB = "dynamodb"
	StorageMemory   = "memory"

	RelevanceHeuristic = "heuristic"
	RelevanceLLM       = "llm"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress  string
	Environment    string
	CORSOrigins    []string
	MaxUploadBytes int64
	UploadDir      string

	// Storage
	StorageBackend   string
	AWSRegion        string
	DynamoDBTable    string
	DynamoDBEndpoint string
	EventBusName     string

	// AI integrations
	GeminiAPIKey      string
	GeminiModel       string
	RibbonAPIKey      string
	RibbonBaseURL     string
	AITimeout         time.Duration
	RelevanceStrategy string

	// Authentication
	JWTSecret     string
	JWTPublicKey  string
	JWTIssuer     string
	JWTAudience   []string
	IPRateLimit   int
	UserRateLimit int

	// Logging
	LogLevel string
	LogFile  string

	// Feature flags
	EnableMetrics bool
	EnableTracing bool
}

// LoadConfig reads a .env file if one exists and then the environment.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		ServerAddress:  getEnv("SERVER_ADDRESS", ":8000"),
		Environment:    getEnv("ENVIRONMENT", "development"),
		CORSOrigins:    getEnvList("CORS_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
		MaxUploadBytes: int64(getEnvInt("MAX_UPLOAD_BYTES", 10<<20)),
		UploadDir:      getEnv("UPLOAD_DIR", "uploads"),

		StorageBackend:   getEnv("STORAGE_BACKEND", StorageDynamoDB),
		AWSRegion:        getEnv("AWS_REGION", "us-east-1"),
		DynamoDBTable:    getEnv("TABLE_NAME", "mindbloom"),
		DynamoDBEndpoint: getEnv("DYNAMODB_ENDPOINT", ""),
		EventBusName:     getEnv("EVENT_BUS_NAME", ""),

		GeminiAPIKey:      getEnv("GEMINI_API_KEY", ""),
		GeminiModel:       getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		RibbonAPIKey:      getEnv("RIBBON_API_KEY", ""),
		RibbonBaseURL:     getEnv("RIBBON_BASE_URL", "https://api.ribbon.ai"),
		AITimeout:         getEnvDuration("AI_TIMEOUT", 30*time.Second),
		RelevanceStrategy: getEnv("RELEVANCE_STRATEGY", RelevanceHeuristic),

		JWTSecret:     getEnv("JWT_SECRET", ""),
		JWTPublicKey:  getEnv("JWT_PUBLIC_KEY", ""),
		JWTIssuer:     getEnv("JWT_ISSUER", ""),
		JWTAudience:   getEnvList("JWT_AUDIENCE", nil),
		IPRateLimit:   getEnvInt("RATE_LIMIT_IP", 100),
		UserRateLimit: getEnvInt("RATE_LIMIT_USER", 200),

		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFile:       getEnv("LOG_FILE", ""),
		EnableMetrics: getEnvBool("ENABLE_METRICS", false),
		EnableTracing: getEnvBool("ENABLE_TRACING", false),
	}

	if cfg.IsDevelopment() && cfg.JWTSecret == "" && cfg.JWTPublicKey == "" {
		cfg.JWTSecret = "development-secret-change-in-production"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	switch c.StorageBackend {
	case StorageDynamoDB, StorageMemory:
	default:
		return fmt.Errorf("STORAGE_BACKEND must be %q or %q, got %q", StorageDynamoDB, StorageMemory, c.StorageBackend)
	}
	switch c.RelevanceStrategy {
	case RelevanceHeuristic, RelevanceLLM:
	default:
		return fmt.Errorf("RELEVANCE_STRATEGY must be %q or %q, got %q", RelevanceHeuristic, RelevanceLLM, c.RelevanceStrategy)
	}
	if c.JWTSecret == "" && c.JWTPublicKey == "" {
		return fmt.Errorf("JWT_SECRET or JWT_PUBLIC_KEY is required")
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}

	if c.IsProduction() {
		if c.StorageBackend == StorageMemory {
			return fmt.Errorf("in-memory storage is not allowed in production")
		}
		if c.DynamoDBTable == "" {
			return fmt.Errorf("TABLE_NAME is required")
		}
	}

	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// GeminiEnabled reports whether a Gemini API key is configured.
func (c *Config) GeminiEnabled() bool {
	return c.GeminiAPIKey != ""
}

// RibbonEnabled reports whether a Ribbon API key is configured.
func (c *Config) RibbonEnabled() bool {
	return c.RibbonAPIKey != ""
}

// JWTSigningMethod picks RS256 when a public key is configured.
func (c *Config) JWTSigningMethod() string {
	if c.JWTPublicKey != "" {
		return "RS256"
	}
	return "HS256"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
