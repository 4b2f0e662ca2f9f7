// Package config provides centralized configuration loaded from environment
// variables. Shared by both cmd/api and cmd/career.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// --------------------------------------------------------------------------
// Source table names, as emitted by the save parser
// --------------------------------------------------------------------------

const (
	GenericNamesTable = "dcplayernames"
	EditedNamesTable  = "editedplayernames"
	IdentityTable     = "players"
	AttributesTable   = "career_playergrowthuserseason"
)

// --------------------------------------------------------------------------
// Persisted table names, matching the migrations
// --------------------------------------------------------------------------

const (
	PlayersTable    = "players"
	ImportRunsTable = "import_runs"
)

// LLM provider identifiers.
const (
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

// --------------------------------------------------------------------------
// Config struct, populated from environment variables
// --------------------------------------------------------------------------

type Config struct {
	// Database. DatabaseURL selects Postgres; otherwise SQLitePath is used.
	DatabaseURL    string
	SQLitePath     string
	DBPoolMinConns int
	DBPoolMaxConns int
	DBPoolMaxLife  time.Duration

	// Save parser
	SavePath      string
	ParserCommand string
	ParserDir     string
	ParserScript  string
	ParserOutput  string
	ParserTimeout time.Duration

	// Generative backend
	LLMProvider          string
	AnthropicAPIKey      string
	GeminiAPIKey         string
	LLMModel             string
	LLMMaxOutputTokens   int
	LLMTemperature       float64
	LLMTimeout           time.Duration
	LLMRequestsPerMinute int
	ContextMaxTokens     int

	// API server
	APIHost     string
	APIPort     int
	Environment string // development, staging, production

	// CORS
	CORSAllowOrigins []string

	// Rate limiting
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Cache
	CacheEnabled bool

	// Logging
	LogLevel  string
	LogFormat string // text, tint, json
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:    envOr("DATABASE_URL", ""),
		SQLitePath:     envOr("CAREER_DB_PATH", "data/fc26_career.db"),
		DBPoolMinConns: envInt("DB_POOL_MIN_CONNS", 1),
		DBPoolMaxConns: envInt("DB_POOL_MAX_CONNS", 4),
		DBPoolMaxLife:  time.Duration(envInt("DB_POOL_MAX_LIFE_MINUTES", 30)) * time.Minute,

		SavePath:      envOr("FC26_SAVE_PATH", ""),
		ParserCommand: envOr("PARSER_COMMAND", "node"),
		ParserDir:     envOr("PARSER_DIR", "parser"),
		ParserScript:  envOr("PARSER_SCRIPT", "parse_save.js"),
		ParserOutput:  envOr("PARSER_OUTPUT", "output/test_parse.json"),
		ParserTimeout: envSeconds("PARSER_TIMEOUT_SECONDS", 60),

		LLMProvider:          strings.ToLower(envOr("LLM_PROVIDER", ProviderAnthropic)),
		AnthropicAPIKey:      envOr("ANTHROPIC_API_KEY", ""),
		GeminiAPIKey:         envOr("GEMINI_API_KEY", ""),
		LLMModel:             envOr("LLM_MODEL", ""),
		LLMMaxOutputTokens:   envInt("LLM_MAX_OUTPUT_TOKENS", 2000),
		LLMTemperature:       envFloat("LLM_TEMPERATURE", 0.7),
		LLMTimeout:           envSeconds("LLM_TIMEOUT_SECONDS", 30),
		LLMRequestsPerMinute: envInt("LLM_REQUESTS_PER_MINUTE", 30),
		ContextMaxTokens:     envInt("CONTEXT_MAX_TOKENS", 4000),

		APIHost:     envOr("API_HOST", "0.0.0.0"),
		APIPort:     envInt("API_PORT", envInt("PORT", 8000)),
		Environment: envOr("ENVIRONMENT", "development"),

		CORSAllowOrigins: envList("CORS_ALLOW_ORIGINS", []string{
			"http://localhost:3000",
			"http://localhost:5173",
		}),

		RateLimitEnabled:  envBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequests: envInt("RATE_LIMIT_REQUESTS", 60),
		RateLimitWindow:   envSeconds("RATE_LIMIT_WINDOW", 60),

		CacheEnabled: envBool("CACHE_ENABLED", true),

		LogLevel:  strings.ToLower(envOr("LOG_LEVEL", "info")),
		LogFormat: strings.ToLower(envOr("LOG_FORMAT", "text")),
	}

	switch cfg.LLMProvider {
	case ProviderAnthropic, ProviderGemini:
	default:
		return nil, fmt.Errorf("LLM_PROVIDER must be %q or %q, got %q", ProviderAnthropic, ProviderGemini, cfg.LLMProvider)
	}
	if cfg.ParserTimeout <= 0 {
		return nil, fmt.Errorf("PARSER_TIMEOUT_SECONDS must be positive")
	}
	return cfg, nil
}

// UsesPostgres reports whether the Postgres gateway is configured.
func (c *Config) UsesPostgres() bool {
	return c.DatabaseURL != ""
}

// LLMAPIKey returns the credential for the configured provider.
func (c *Config) LLMAPIKey() string {
	if c.LLMProvider == ProviderGemini {
		return c.GeminiAPIKey
	}
	return c.AnthropicAPIKey
}

// LLMAPIKeyName returns the environment variable holding the provider credential.
func (c *Config) LLMAPIKeyName() string {
	if c.LLMProvider == ProviderGemini {
		return "GEMINI_API_KEY"
	}
	return "ANTHROPIC_API_KEY"
}

// IsProduction returns true if running in production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// --------------------------------------------------------------------------
// Env helpers
// --------------------------------------------------------------------------

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envSeconds(key string, fallback int) time.Duration {
	return time.Duration(envInt(key, fallback)) * time.Second
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}
