// Package config manages application configuration from environment
// variables plus an optional YAML selector-profile file.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// LLM provider identifiers.
const (
	ProviderOllama    = "ollama"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Config holds all configuration values.
type Config struct {
	// Server
	Port     string
	LogFile  string
	LogLevel slog.Level

	// SurrealDB connection
	SurrealDBURL       string
	SurrealDBNamespace string
	SurrealDBDatabase  string
	SurrealDBUser      string
	SurrealDBPass      string
	SurrealDBAuthLevel string

	// LLM
	LLMProvider     string
	LLMModel        string
	OllamaHost      string
	OpenAIAPIKey    string
	AnthropicAPIKey string

	// Search
	TavilyAPIKey     string
	SearchMaxResults int
	SearchDepth      string
	SearchTimeout    time.Duration

	// Generation
	GenerateTimeout time.Duration

	// Scraping
	ScrapeTimeout        time.Duration
	UserAgent            string
	Headless             bool
	SelectorProfilesFile string

	// Engine
	MaxConcurrentItems int
}

// Load reads configuration from environment variables.
func Load() Config {
	return Config{
		Port:     getEnv("CONTENTD_PORT", "8464"),
		LogFile:  getEnv("CONTENTD_LOG_FILE", "/tmp/contentd.log"),
		LogLevel: parseLogLevel(getEnv("CONTENTD_LOG_LEVEL", "INFO")),

		SurrealDBURL:       getEnv("SURREALDB_URL", "ws://localhost:8000/rpc"),
		SurrealDBNamespace: getEnv("SURREALDB_NAMESPACE", "contentd"),
		SurrealDBDatabase:  getEnv("SURREALDB_DATABASE", "content"),
		SurrealDBUser:      getEnv("SURREALDB_USER", "root"),
		SurrealDBPass:      getEnv("SURREALDB_PASS", "root"),
		SurrealDBAuthLevel: getEnv("SURREALDB_AUTH_LEVEL", "root"),

		LLMProvider:     getEnv("CONTENTD_LLM_PROVIDER", ProviderOllama),
		LLMModel:        getEnv("CONTENTD_LLM_MODEL", "llama3"),
		OllamaHost:      getEnv("OLLAMA_HOST", "http://localhost:11434"),
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),

		TavilyAPIKey:     getEnv("TAVILY_API_KEY", ""),
		SearchMaxResults: getEnvInt("CONTENTD_SEARCH_MAX_RESULTS", 5),
		SearchDepth:      getEnv("CONTENTD_SEARCH_DEPTH", "advanced"),
		SearchTimeout:    getEnvDuration("CONTENTD_SEARCH_TIMEOUT", 15*time.Second),

		GenerateTimeout: getEnvDuration("CONTENTD_GENERATE_TIMEOUT", 60*time.Second),

		ScrapeTimeout:        getEnvDuration("CONTENTD_SCRAPE_TIMEOUT", 30*time.Second),
		UserAgent:            getEnv("CONTENTD_USER_AGENT", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"),
		Headless:             getEnv("CONTENTD_HEADLESS", "true") != "false",
		SelectorProfilesFile: getEnv("CONTENTD_SELECTOR_PROFILES", ""),

		MaxConcurrentItems: getEnvInt("CONTENTD_MAX_CONCURRENT_ITEMS", 4),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil && n > 0 {
			return n
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil && d > 0 {
			return d
		}
	}
	return defaultVal
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
