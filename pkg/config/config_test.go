package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, 5000, cfg.Port)
	assert.Equal(t, "/api", cfg.APIPrefix)
	assert.Equal(t, ProviderGroq, cfg.LLM.Provider)
	assert.Equal(t, "llama3-8b-8192", cfg.LLM.Model)
	assert.Equal(t, 4000, cfg.LLM.MaxTokens)
	assert.InDelta(t, 0.7, cfg.LLM.Temperature, 0.0001)
	assert.Equal(t, 60*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 30*time.Second, cfg.Search.Timeout)
	assert.Equal(t, 5, cfg.Search.MaxResults)
	assert.Equal(t, StoreMemory, cfg.StoreBackend())
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("GROQ_API_KEY", "groq-key")
	t.Setenv("TAVILY_API_KEY", "tavily-key")
	t.Setenv("LLM_TIMEOUT", "5s")
	t.Setenv("ALLOWED_ORIGINS", "http://localhost:3000, https://plans.example.org ,")
	t.Setenv("DATABASE_URL", "postgres://localhost/iep")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "groq-key", cfg.LLM.APIKey)
	assert.Equal(t, "tavily-key", cfg.Search.APIKey)
	assert.Equal(t, 5*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, []string{"http://localhost:3000", "https://plans.example.org"}, cfg.CORS.AllowedOrigins)
	assert.True(t, cfg.LLMConfigured())
	assert.Equal(t, StoreSQL, cfg.StoreBackend())
}

func TestStoreBackendResolution(t *testing.T) {
	cfg := &Config{}
	cfg.DocumentStore = DocumentStoreConfig{APIKey: "k", CollectionID: "c"}
	cfg.Database.DSN = "postgres://localhost/iep"
	assert.Equal(t, StoreDocument, cfg.StoreBackend())

	cfg.Store.Backend = StoreSQL
	assert.Equal(t, StoreSQL, cfg.StoreBackend())

	cfg.UseMockData = true
	assert.Equal(t, StoreMemory, cfg.StoreBackend())
}

func TestParseDurationFallback(t *testing.T) {
	assert.Equal(t, time.Minute, parseDuration("", time.Minute))
	assert.Equal(t, time.Minute, parseDuration("soon", time.Minute))
	assert.Equal(t, 2*time.Second, parseDuration("2s", time.Minute))
}
