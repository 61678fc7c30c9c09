package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("STORAGE_BACKEND", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ":8000", cfg.ServerAddress)
	assert.Equal(t, StorageDynamoDB, cfg.StorageBackend)
	assert.Equal(t, "gemini-2.5-flash", cfg.GeminiModel)
	assert.Equal(t, "https://api.ribbon.ai", cfg.RibbonBaseURL)
	assert.Equal(t, int64(10<<20), cfg.MaxUploadBytes)
	assert.Equal(t, 30*time.Second, cfg.AITimeout)
	assert.NotEmpty(t, cfg.JWTSecret, "development falls back to a local secret")
	assert.Equal(t, "HS256", cfg.JWTSigningMethod())
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("ENVIRONMENT", "staging")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("STORAGE_BACKEND", "memory")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("AI_TIMEOUT", "5s")
	t.Setenv("RELEVANCE_STRATEGY", "llm")
	t.Setenv("GEMINI_API_KEY", "key")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, 5*time.Second, cfg.AITimeout)
	assert.Equal(t, RelevanceLLM, cfg.RelevanceStrategy)
	assert.True(t, cfg.GeminiEnabled())
	assert.False(t, cfg.RibbonEnabled())
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Environment:       "production",
			StorageBackend:    StorageDynamoDB,
			RelevanceStrategy: RelevanceHeuristic,
			DynamoDBTable:     "mindbloom",
			JWTSecret:         "x",
			MaxUploadBytes:    1,
		}
	}

	assert.NoError(t, base().Validate())

	c := base()
	c.StorageBackend = StorageMemory
	assert.Error(t, c.Validate())

	c = base()
	c.JWTSecret = ""
	assert.Error(t, c.Validate())

	c = base()
	c.RelevanceStrategy = "magic"
	assert.Error(t, c.Validate())

	c = base()
	c.StorageBackend = "postgres"
	assert.Error(t, c.Validate())
}
