package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the debate agent system
type Config struct {
	General    GeneralConfig    `mapstructure:"general"`
	LLM        LLMConfig        `mapstructure:"llm"`
	Sources    SourcesConfig    `mapstructure:"sources"`
	Validation ValidationConfig `mapstructure:"validation"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Telemetry  TelemetryConfig  `mapstructure:"telemetry"`
	Server     ServerConfig     `mapstructure:"server"`
}

// GeneralConfig contains general application settings
type GeneralConfig struct {
	Debug          bool          `mapstructure:"debug"`
	LogLevel       string        `mapstructure:"log_level"`
	DefaultTimeout time.Duration `mapstructure:"default_timeout"`
}

// LLMConfig contains LLM provider configurations
type LLMConfig struct {
	Providers map[string]LLMProvider `mapstructure:"providers"`
	Routing   LLMRoutingConfig       `mapstructure:"routing"`
	// MaxRetries bounds structured-output attempts against schema failures.
	MaxRetries int           `mapstructure:"max_retries"`
	Backoff    time.Duration `mapstructure:"backoff"`
}

// LLMProvider represents a single LLM provider configuration
type LLMProvider struct {
	Type    string              `mapstructure:"type"` // openai, anthropic
	APIKey  string              `mapstructure:"api_key"`
	BaseURL string              `mapstructure:"base_url"`
	Models  map[string]LLMModel `mapstructure:"models"`
	Timeout time.Duration       `mapstructure:"timeout"`
}

// LLMModel represents a specific model configuration
type LLMModel struct {
	Name            string  `mapstructure:"name"`
	APIName         string  `mapstructure:"api_name"`
	MaxTokens       int     `mapstructure:"max_tokens"`
	Temperature     float64 `mapstructure:"temperature"`
	CostPer1K       float64 `mapstructure:"cost_per_1k_input"`
	CostPer1KOutput float64 `mapstructure:"cost_per_1k_output"`
}

// LLMRoutingConfig defines which model to use for each pipeline stage
type LLMRoutingConfig struct {
	Understanding string `mapstructure:"understanding"` // student argument analysis
	Summarization string `mapstructure:"summarization"` // source summaries
	Counter       string `mapstructure:"counter"`       // counter-argument assembly
	Fallback      string `mapstructure:"fallback"`
}

// SourcesConfig contains evidence source configurations
type SourcesConfig struct {
	WebSearch WebSearchConfig `mapstructure:"web_search"`
}

// WebSearchConfig contains web search provider settings.
// Search capability is on when the selected provider has a key configured.
type WebSearchConfig struct {
	Provider       string        `mapstructure:"provider"` // tavily, brave, serper
	TavilyAPIKey   string        `mapstructure:"tavily_api_key"`
	BraveAPIKey    string        `mapstructure:"brave_api_key"`
	SerperAPIKey   string        `mapstructure:"serper_api_key"`
	MaxResults     int           `mapstructure:"max_results"`
	Timeout        time.Duration `mapstructure:"timeout"`
	IncludeDomains []string      `mapstructure:"include_domains"`
	EnrichContent  bool          `mapstructure:"enrich_content"`
	EnrichMinChars int           `mapstructure:"enrich_min_chars"`
}

// ValidationConfig contains reference liveness check settings
type ValidationConfig struct {
	Timeout             time.Duration `mapstructure:"timeout"`
	UserAgent           string        `mapstructure:"user_agent"`
	MaxConcurrentChecks int           `mapstructure:"max_concurrent_checks"`
}

// StorageConfig contains run history persistence settings
type StorageConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

// PostgresConfig contains Postgres connection settings
type PostgresConfig struct {
	URL      string        `mapstructure:"url"`
	Host     string        `mapstructure:"host"`
	Port     string        `mapstructure:"port"`
	User     string        `mapstructure:"user"`
	Password string        `mapstructure:"password"`
	DBName   string        `mapstructure:"dbname"`
	SSLMode  string        `mapstructure:"sslmode"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// RedisConfig contains Redis connection settings
type RedisConfig struct {
	Host     string        `mapstructure:"host"`
	Port     int           `mapstructure:"port"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// TelemetryConfig contains monitoring and cost tracking settings
type TelemetryConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	LogFile      string `mapstructure:"log_file"`
	CostTracking bool   `mapstructure:"cost_tracking"`
}

// ServerConfig contains HTTP API settings
type ServerConfig struct {
	Addr     string `mapstructure:"addr"`
	APIToken string `mapstructure:"api_token"`
}

// AuthoritativeDomains is the allow-list applied to every evidence search.
// Bare "gov"/"edu" entries match any domain under those TLDs.
var AuthoritativeDomains = []string{
	"ncbi.nlm.nih.gov",
	"pubmed.ncbi.nlm.nih.gov",
	"nhtsa.gov",
	"who.int",
	"gov",
	"edu",
	"wikipedia.org",
	"sciencedirect.com",
	"nature.com",
	"bmj.com",
	"thelancet.com",
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig() (*Config, error) {
	viper.SetConfigName("debater_config")
	viper.SetConfigType("json")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	viper.SetEnvPrefix("DEBATER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	// Config file is optional - defaults plus env cover the common case
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	overrideFromEnv()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("general.debug", false)
	viper.SetDefault("general.log_level", "info")
	viper.SetDefault("general.default_timeout", "60s")

	viper.SetDefault("llm.max_retries", 2)
	viper.SetDefault("llm.backoff", "500ms")
	viper.SetDefault("llm.routing.understanding", "counter-small")
	viper.SetDefault("llm.routing.summarization", "counter-small")
	viper.SetDefault("llm.routing.counter", "counter-large")
	viper.SetDefault("llm.routing.fallback", "counter-small")

	viper.SetDefault("sources.web_search.provider", "tavily")
	viper.SetDefault("sources.web_search.max_results", 8)
	viper.SetDefault("sources.web_search.timeout", "30s")
	viper.SetDefault("sources.web_search.include_domains", AuthoritativeDomains)
	viper.SetDefault("sources.web_search.enrich_content", false)
	viper.SetDefault("sources.web_search.enrich_min_chars", 280)

	viper.SetDefault("validation.timeout", "10s")
	viper.SetDefault("validation.user_agent",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	viper.SetDefault("validation.max_concurrent_checks", 4)

	viper.SetDefault("storage.redis.host", "")
	viper.SetDefault("storage.redis.port", 6379)
	viper.SetDefault("storage.redis.db", 0)
	viper.SetDefault("storage.redis.timeout", "5s")
	viper.SetDefault("storage.postgres.port", "5432")
	viper.SetDefault("storage.postgres.sslmode", "disable")
	viper.SetDefault("storage.postgres.timeout", "5s")

	viper.SetDefault("telemetry.enabled", true)
	viper.SetDefault("telemetry.cost_tracking", true)

	viper.SetDefault("server.addr", ":8080")
}

// overrideFromEnv overrides configuration with environment variables
// for sensitive values that should never live in a config file.
func overrideFromEnv() {
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		viper.Set("llm.providers.openai.type", "openai")
		viper.Set("llm.providers.openai.api_key", apiKey)
	}
	if apiKey := os.Getenv("ANTHROPIC_API_KEY"); apiKey != "" {
		viper.Set("llm.providers.anthropic.type", "anthropic")
		viper.Set("llm.providers.anthropic.api_key", apiKey)
	}

	if apiKey := os.Getenv("TAVILY_API_KEY"); apiKey != "" {
		viper.Set("sources.web_search.tavily_api_key", apiKey)
	}
	if apiKey := os.Getenv("BRAVE_SEARCH_KEY"); apiKey != "" {
		viper.Set("sources.web_search.brave_api_key", apiKey)
	}
	if apiKey := os.Getenv("SERPER_API_KEY"); apiKey != "" {
		viper.Set("sources.web_search.serper_api_key", apiKey)
	}

	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		viper.Set("storage.postgres.url", dsn)
	}
	if host := os.Getenv("REDIS_HOST"); host != "" {
		viper.Set("storage.redis.host", host)
	}
	if pass := os.Getenv("REDIS_PASSWORD"); pass != "" {
		viper.Set("storage.redis.password", pass)
	}

	if token := os.Getenv("DEBATER_API_TOKEN"); token != "" {
		viper.Set("server.api_token", token)
	}
}

// validateConfig validates the loaded configuration
func validateConfig(config *Config) error {
	if len(config.LLM.Providers) == 0 {
		return fmt.Errorf("at least one LLM provider must be configured (set OPENAI_API_KEY or ANTHROPIC_API_KEY)")
	}
	for name, provider := range config.LLM.Providers {
		if provider.Type == "" {
			return fmt.Errorf("llm provider %s: type is required", name)
		}
		if provider.APIKey == "" {
			return fmt.Errorf("llm provider %s: api_key is required", name)
		}
	}
	if config.LLM.MaxRetries < 1 {
		return fmt.Errorf("llm.max_retries must be at least 1")
	}
	if config.Sources.WebSearch.MaxResults <= 0 {
		return fmt.Errorf("sources.web_search.max_results must be positive")
	}
	switch config.Sources.WebSearch.Provider {
	case "tavily", "brave", "serper":
	default:
		return fmt.Errorf("unsupported web search provider: %s", config.Sources.WebSearch.Provider)
	}
	if config.Validation.Timeout <= 0 {
		return fmt.Errorf("validation.timeout must be positive")
	}
	return nil
}

// SearchAPIKey returns the credential for the selected search provider,
// empty when search capability is not configured.
func (w WebSearchConfig) SearchAPIKey() string {
	switch w.Provider {
	case "tavily":
		return w.TavilyAPIKey
	case "brave":
		return w.BraveAPIKey
	case "serper":
		return w.SerperAPIKey
	}
	return ""
}
