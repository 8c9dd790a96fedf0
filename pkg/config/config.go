package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Store backends selectable through STORE_BACKEND.
const (
	StoreAuto     = "auto"
	StoreDocument = "document"
	StoreSQL      = "sql"
	StoreMemory   = "memory"
)

// LLM providers selectable through LLM_PROVIDER.
const (
	ProviderGroq   = "groq"
	ProviderGemini = "gemini"
)

type Config struct {
	Env              string
	Port             int
	PortScanAttempts int
	APIPrefix        string
	ShutdownTimeout  time.Duration
	UseMockData      bool

	LLM           LLMConfig
	Search        SearchConfig
	DocumentStore DocumentStoreConfig
	Database      DatabaseConfig
	Redis         RedisConfig
	Store         StoreConfig
	Share         ShareConfig
	CORS          CORSConfig
	Log           LogConfig
	Metrics       MetricsConfig
}

// LLMConfig describes the chat-completion provider.
type LLMConfig struct {
	Provider          string
	APIKey            string
	BaseURL           string
	Model             string
	Temperature       float64
	MaxTokens         int
	Timeout           time.Duration
	RequestsPerMinute int
}

// SearchConfig describes the web search API used for resources and strategies.
type SearchConfig struct {
	APIKey     string
	URL        string
	MaxResults int
	Timeout    time.Duration
	CacheTTL   time.Duration
}

// DocumentStoreConfig describes the hosted document API for profiles.
type DocumentStoreConfig struct {
	APIKey       string
	BaseURL      string
	CollectionID string
	Timeout      time.Duration
}

type DatabaseConfig struct {
	Driver       string
	DSN          string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// StoreConfig selects the profile persistence backend.
type StoreConfig struct {
	Backend string
}

// ShareConfig configures signed read-only plan links.
type ShareConfig struct {
	Secret     string
	Issuer     string
	DefaultTTL time.Duration
	MaxTTL     time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

type MetricsConfig struct {
	Enabled bool
	Path    string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.PortScanAttempts = v.GetInt("PORT_SCAN_ATTEMPTS")
	cfg.APIPrefix = v.GetString("API_PREFIX")
	cfg.ShutdownTimeout = parseDuration(v.GetString("SHUTDOWN_TIMEOUT"), 10*time.Second)
	cfg.UseMockData = v.GetBool("USE_MOCK_DATA")

	cfg.LLM = LLMConfig{
		Provider:          strings.ToLower(v.GetString("LLM_PROVIDER")),
		APIKey:            v.GetString("LLM_API_KEY"),
		BaseURL:           strings.TrimRight(v.GetString("LLM_BASE_URL"), "/"),
		Model:             v.GetString("LLM_MODEL"),
		Temperature:       v.GetFloat64("LLM_TEMPERATURE"),
		MaxTokens:         v.GetInt("LLM_MAX_TOKENS"),
		Timeout:           parseDuration(v.GetString("LLM_TIMEOUT"), 60*time.Second),
		RequestsPerMinute: v.GetInt("LLM_REQUESTS_PER_MINUTE"),
	}
	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = v.GetString("GROQ_API_KEY")
	}

	cfg.Search = SearchConfig{
		APIKey:     v.GetString("SEARCH_API_KEY"),
		URL:        v.GetString("SEARCH_API_URL"),
		MaxResults: v.GetInt("SEARCH_MAX_RESULTS"),
		Timeout:    parseDuration(v.GetString("SEARCH_TIMEOUT"), 30*time.Second),
		CacheTTL:   parseDuration(v.GetString("SEARCH_CACHE_TTL"), 6*time.Hour),
	}
	if cfg.Search.APIKey == "" {
		cfg.Search.APIKey = v.GetString("TAVILY_API_KEY")
	}

	cfg.DocumentStore = DocumentStoreConfig{
		APIKey:       v.GetString("DOCSTORE_API_KEY"),
		BaseURL:      strings.TrimRight(v.GetString("DOCSTORE_BASE_URL"), "/"),
		CollectionID: v.GetString("DOCSTORE_COLLECTION_ID"),
		Timeout:      parseDuration(v.GetString("DOCSTORE_TIMEOUT"), 30*time.Second),
	}

	cfg.Database = DatabaseConfig{
		Driver:       strings.ToLower(v.GetString("DB_DRIVER")),
		DSN:          v.GetString("DATABASE_URL"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Enabled:  v.GetBool("REDIS_ENABLED"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Store = StoreConfig{Backend: strings.ToLower(v.GetString("STORE_BACKEND"))}

	cfg.Share = ShareConfig{
		Secret:     v.GetString("SHARE_TOKEN_SECRET"),
		Issuer:     v.GetString("SHARE_TOKEN_ISSUER"),
		DefaultTTL: parseDuration(v.GetString("SHARE_TOKEN_TTL"), 72*time.Hour),
		MaxTTL:     parseDuration(v.GetString("SHARE_TOKEN_MAX_TTL"), 30*24*time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Metrics = MetricsConfig{
		Enabled: v.GetBool("ENABLE_METRICS"),
		Path:    v.GetString("METRICS_PATH"),
	}

	return cfg, nil
}

// IsDevelopment reports whether the service runs with development defaults.
func (c *Config) IsDevelopment() bool {
	return c.Env != EnvProduction
}

// LLMConfigured reports whether a completion provider can be called.
func (c *Config) LLMConfigured() bool {
	return c.LLM.APIKey != ""
}

// SearchConfigured reports whether the search API can be called.
func (c *Config) SearchConfigured() bool {
	return c.Search.APIKey != ""
}

// DocumentStoreConfigured reports whether the hosted document API is usable.
func (c *Config) DocumentStoreConfigured() bool {
	return c.DocumentStore.APIKey != "" && c.DocumentStore.CollectionID != ""
}

// StoreBackend resolves the effective profile store backend.
func (c *Config) StoreBackend() string {
	if c.UseMockData {
		return StoreMemory
	}
	switch c.Store.Backend {
	case StoreDocument, StoreSQL, StoreMemory:
		return c.Store.Backend
	}
	switch {
	case c.DocumentStoreConfigured():
		return StoreDocument
	case c.Database.DSN != "":
		return StoreSQL
	default:
		return StoreMemory
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 5000)
	v.SetDefault("PORT_SCAN_ATTEMPTS", 10)
	v.SetDefault("API_PREFIX", "/api")
	v.SetDefault("SHUTDOWN_TIMEOUT", "10s")
	v.SetDefault("USE_MOCK_DATA", false)

	v.SetDefault("LLM_PROVIDER", ProviderGroq)
	v.SetDefault("LLM_API_KEY", "")
	v.SetDefault("GROQ_API_KEY", "")
	v.SetDefault("LLM_BASE_URL", "https://api.groq.com/openai/v1")
	v.SetDefault("LLM_MODEL", "llama3-8b-8192")
	v.SetDefault("LLM_TEMPERATURE", 0.7)
	v.SetDefault("LLM_MAX_TOKENS", 4000)
	v.SetDefault("LLM_TIMEOUT", "60s")
	v.SetDefault("LLM_REQUESTS_PER_MINUTE", 30)

	v.SetDefault("SEARCH_API_KEY", "")
	v.SetDefault("TAVILY_API_KEY", "")
	v.SetDefault("SEARCH_API_URL", "https://api.tavily.com/search")
	v.SetDefault("SEARCH_MAX_RESULTS", 5)
	v.SetDefault("SEARCH_TIMEOUT", "30s")
	v.SetDefault("SEARCH_CACHE_TTL", "6h")

	v.SetDefault("DOCSTORE_API_KEY", "")
	v.SetDefault("DOCSTORE_BASE_URL", "https://api.mem0.ai/v1")
	v.SetDefault("DOCSTORE_COLLECTION_ID", "")
	v.SetDefault("DOCSTORE_TIMEOUT", "30s")

	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("STORE_BACKEND", StoreAuto)

	v.SetDefault("SHARE_TOKEN_SECRET", "dev_share_secret")
	v.SetDefault("SHARE_TOKEN_ISSUER", "iep-planner-api")
	v.SetDefault("SHARE_TOKEN_TTL", "72h")
	v.SetDefault("SHARE_TOKEN_MAX_TTL", "720h")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENABLE_METRICS", true)
	v.SetDefault("METRICS_PATH", "/metrics")
}

// viper reports a plain fs error rather than ConfigFileNotFoundError when SetConfigFile is used.
func isMissingFile(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
