package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string          `toml:"environment" validate:"omitempty,oneof=development production prod"`
	Server      ServerConfig    `toml:"server"`
	Storage     StorageConfig   `toml:"storage"`
	Logging     LoggingConfig   `toml:"logging"`
	LLM         LLMConfig       `toml:"llm"`
	Claude      ClaudeConfig    `toml:"claude"`
	Gemini      GeminiConfig    `toml:"gemini"`
	Sources     SourcesConfig   `toml:"sources"`
	PDF         PDFConfig       `toml:"pdf"`
	SMTP        SMTPConfig      `toml:"smtp"`
	Scheduler   SchedulerConfig `toml:"scheduler"`
}

type ServerConfig struct {
	Port      int    `toml:"port" validate:"min=1,max=65535"`
	Host      string `toml:"host" validate:"required"`
	StaticDir string `toml:"static_dir"` // Directory served at / (browser client)
}

// StorageConfig selects and configures the cache store backend
type StorageConfig struct {
	Type       string `toml:"type" validate:"oneof=filesystem badger"` // Cache store backend
	CacheDir   string `toml:"cache_dir"`                               // Root directory for filesystem cache
	BadgerPath string `toml:"badger_path"`                             // Database directory for badger backend
}

type LoggingConfig struct {
	Level  string   `toml:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string   `toml:"format"` // "json" or "text"
	Output []string `toml:"output"` // "stdout", "file"
}

// LLMProvider represents the AI provider type
type LLMProvider string

const (
	// LLMProviderClaude uses Anthropic Claude API
	LLMProviderClaude LLMProvider = "claude"
	// LLMProviderGemini uses Google Gemini API
	LLMProviderGemini LLMProvider = "gemini"
)

// LLMConfig contains unified configuration for all AI providers
type LLMConfig struct {
	DefaultProvider LLMProvider `toml:"default_provider" validate:"omitempty,oneof=claude gemini"`
}

// ClaudeConfig contains Anthropic Claude API configuration
type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`     // Anthropic API key (or ANTHROPIC_API_KEY env)
	Model       string  `toml:"model"`       // Model for memo generation
	MaxTokens   int     `toml:"max_tokens"`  // Maximum tokens in response (default: 8192)
	Timeout     string  `toml:"timeout"`     // Operation timeout as duration string (default: "5m")
	Temperature float32 `toml:"temperature"` // Completion temperature (default: 0.7)
}

// GeminiConfig contains Google Gemini API configuration
type GeminiConfig struct {
	APIKey      string  `toml:"api_key"` // Google Gemini API key (or GEMINI_API_KEY env)
	Model       string  `toml:"model"`
	Timeout     string  `toml:"timeout"`
	Temperature float32 `toml:"temperature"`
}

// SourcesConfig groups research source client configuration
type SourcesConfig struct {
	SEC          SECConfig          `toml:"sec"`
	Transcripts  TranscriptsConfig  `toml:"transcripts"`
	WebSearch    WebSearchConfig    `toml:"websearch"`
	AlphaVantage AlphaVantageConfig `toml:"alphavantage"`
}

// SECConfig configures the SEC filing extraction API client
type SECConfig struct {
	BaseURL   string `toml:"base_url"`
	APIKey    string `toml:"api_key"`
	Timeout   string `toml:"timeout"`    // HTTP timeout duration string (default: "30s")
	RateLimit int    `toml:"rate_limit"` // Requests per second (default: 5)
}

// TranscriptsConfig configures the earnings-call transcript API client
type TranscriptsConfig struct {
	BaseURL   string `toml:"base_url"`
	APIKey    string `toml:"api_key"`
	Timeout   string `toml:"timeout"`
	RateLimit int    `toml:"rate_limit"`
	Quarters  int    `toml:"quarters"` // Number of recent quarters to fetch (default: 4)
}

// WebSearchConfig configures the web research client
type WebSearchConfig struct {
	BaseURL    string `toml:"base_url"`
	APIKey     string `toml:"api_key"`
	Timeout    string `toml:"timeout"`
	RateLimit  int    `toml:"rate_limit"`
	MaxResults int    `toml:"max_results"` // Search results to collect per query (default: 5)
	MaxPages   int    `toml:"max_pages"`   // Result pages to fetch and summarize (default: 3)
}

// AlphaVantageConfig configures the financial metrics API client
type AlphaVantageConfig struct {
	BaseURL   string `toml:"base_url"`
	APIKey    string `toml:"api_key"`
	Timeout   string `toml:"timeout"`
	RateLimit int    `toml:"rate_limit"`
}

// PDFConfig configures memo PDF export
type PDFConfig struct {
	ChromeEnabled bool   `toml:"chrome_enabled"` // Use headless Chrome for HTML rendering
	Timeout       string `toml:"timeout"`        // Render timeout duration string (default: "45s")
}

// SMTPConfig configures outbound memo delivery
type SMTPConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	From     string `toml:"from"`
	FromName string `toml:"from_name"`
	UseTLS   bool   `toml:"use_tls"`
}

// SchedulerConfig configures background refresh jobs
type SchedulerConfig struct {
	Enabled        bool   `toml:"enabled"`
	MoversSchedule string `toml:"movers_schedule"` // Cron schedule for market movers refresh
}

// NewDefaultConfig creates a configuration with default values.
// Only user-facing settings should be exposed in coverscribe.toml.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port:      8080,
			Host:      "localhost",
			StaticDir: "./web/static",
		},
		Storage: StorageConfig{
			Type:       "filesystem",
			CacheDir:   "./cache",
			BadgerPath: "./data",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: []string{"stdout", "file"},
		},
		LLM: LLMConfig{
			DefaultProvider: LLMProviderClaude,
		},
		Claude: ClaudeConfig{
			APIKey:      "",
			Model:       "claude-sonnet-4-20250514",
			MaxTokens:   8192,
			Timeout:     "5m",
			Temperature: 0.7,
		},
		Gemini: GeminiConfig{
			APIKey:      "",
			Model:       "gemini-2.0-flash",
			Timeout:     "5m",
			Temperature: 0.7,
		},
		Sources: SourcesConfig{
			SEC: SECConfig{
				BaseURL:   "https://api.sec-api.io",
				Timeout:   "30s",
				RateLimit: 5,
			},
			Transcripts: TranscriptsConfig{
				BaseURL:   "https://api.api-ninjas.com",
				Timeout:   "30s",
				RateLimit: 2,
				Quarters:  4,
			},
			WebSearch: WebSearchConfig{
				BaseURL:    "https://api.search.brave.com",
				Timeout:    "30s",
				RateLimit:  1,
				MaxResults: 5,
				MaxPages:   3,
			},
			AlphaVantage: AlphaVantageConfig{
				BaseURL:   "https://www.alphavantage.co",
				Timeout:   "30s",
				RateLimit: 1,
			},
		},
		PDF: PDFConfig{
			ChromeEnabled: true,
			Timeout:       "45s",
		},
		SMTP: SMTPConfig{
			Port:     587,
			FromName: "Coverscribe",
			UseTLS:   true,
		},
		Scheduler: SchedulerConfig{
			Enabled:        false,
			MoversSchedule: "*/15 * * * *",
		},
	}
}

// LoadFromFile loads configuration with priority: default -> file -> env -> CLI
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return LoadFromFiles()
	}
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration from multiple files.
// Later files override earlier files; env overrides all files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	if err := Validate(config); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks config values against their struct tags
func Validate(config *Config) error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(config); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("COVERSCRIBE_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	// Server configuration
	if port := os.Getenv("COVERSCRIBE_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("COVERSCRIBE_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	// Storage configuration
	if storageType := os.Getenv("COVERSCRIBE_STORAGE_TYPE"); storageType != "" {
		config.Storage.Type = storageType
	}
	if cacheDir := os.Getenv("COVERSCRIBE_CACHE_DIR"); cacheDir != "" {
		config.Storage.CacheDir = cacheDir
	}
	if badgerPath := os.Getenv("COVERSCRIBE_BADGER_PATH"); badgerPath != "" {
		config.Storage.BadgerPath = badgerPath
	}

	// Logging configuration
	if level := os.Getenv("COVERSCRIBE_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("COVERSCRIBE_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}

	// LLM provider configuration
	if provider := os.Getenv("COVERSCRIBE_LLM_DEFAULT_PROVIDER"); provider != "" {
		config.LLM.DefaultProvider = LLMProvider(provider)
	}
	if apiKey := os.Getenv("ANTHROPIC_API_KEY"); apiKey != "" {
		config.Claude.APIKey = apiKey
	}
	if apiKey := os.Getenv("COVERSCRIBE_CLAUDE_API_KEY"); apiKey != "" {
		config.Claude.APIKey = apiKey // COVERSCRIBE_ prefix takes priority
	}
	if model := os.Getenv("COVERSCRIBE_CLAUDE_MODEL"); model != "" {
		config.Claude.Model = model
	}
	if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		config.Gemini.APIKey = apiKey
	}
	if apiKey := os.Getenv("COVERSCRIBE_GEMINI_API_KEY"); apiKey != "" {
		config.Gemini.APIKey = apiKey
	}

	// Source API keys
	if apiKey := os.Getenv("COVERSCRIBE_SEC_API_KEY"); apiKey != "" {
		config.Sources.SEC.APIKey = apiKey
	}
	if apiKey := os.Getenv("COVERSCRIBE_TRANSCRIPTS_API_KEY"); apiKey != "" {
		config.Sources.Transcripts.APIKey = apiKey
	}
	if apiKey := os.Getenv("COVERSCRIBE_WEBSEARCH_API_KEY"); apiKey != "" {
		config.Sources.WebSearch.APIKey = apiKey
	}
	if apiKey := os.Getenv("COVERSCRIBE_ALPHAVANTAGE_API_KEY"); apiKey != "" {
		config.Sources.AlphaVantage.APIKey = apiKey
	}

	// SMTP configuration
	if host := os.Getenv("COVERSCRIBE_SMTP_HOST"); host != "" {
		config.SMTP.Host = host
	}
	if password := os.Getenv("COVERSCRIBE_SMTP_PASSWORD"); password != "" {
		config.SMTP.Password = password
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config
func ApplyFlagOverrides(config *Config, port int, host string) {
	// Command-line flags have highest priority
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// ParseDurationOr parses a duration string, falling back to def on error or empty input
func ParseDurationOr(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
