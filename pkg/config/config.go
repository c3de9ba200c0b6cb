// Package config loads docgraph configuration from file, environment, and
// flags via viper.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Log    LogConfig    `mapstructure:"log" yaml:"log"`
	Server ServerConfig `mapstructure:"server" yaml:"server"`
	Store  StoreConfig  `mapstructure:"store" yaml:"store"`
	NLP    NLPConfig    `mapstructure:"nlp" yaml:"nlp"`
	Fetch  FetchConfig  `mapstructure:"fetch" yaml:"fetch"`
	Ingest IngestConfig `mapstructure:"ingest" yaml:"ingest"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port int    `mapstructure:"port" yaml:"port"`
	Mode string `mapstructure:"mode" yaml:"mode"` // gin mode: debug, release, test
}

// StoreConfig holds graph store configuration.
type StoreConfig struct {
	Driver   string `mapstructure:"driver" yaml:"driver"` // memory, neo4j
	URI      string `mapstructure:"uri" yaml:"uri"`
	Username string `mapstructure:"username" yaml:"username"`
	Password string `mapstructure:"password" yaml:"password"`
	Database string `mapstructure:"database" yaml:"database"`
}

// NLPConfig holds enrichment collaborator configuration. Enrichment is
// optional; with no API key and no base URL the deterministic extractor
// runs alone.
type NLPConfig struct {
	Provider    string  `mapstructure:"provider" yaml:"provider"` // openai
	Model       string  `mapstructure:"model" yaml:"model"`
	APIKey      string  `mapstructure:"api_key" yaml:"api_key,omitempty"`
	BaseURL     string  `mapstructure:"base_url" yaml:"base_url,omitempty"`
	Temperature float32 `mapstructure:"temperature" yaml:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens" yaml:"max_tokens"`
}

// Enabled reports whether an enrichment backend is configured.
func (c NLPConfig) Enabled() bool {
	return c.APIKey != "" || c.BaseURL != ""
}

// FetchConfig holds text-extraction configuration.
type FetchConfig struct {
	TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
	MaxBytes       int64  `mapstructure:"max_bytes" yaml:"max_bytes"`
	CachePath      string `mapstructure:"cache_path" yaml:"cache_path,omitempty"`
	DisableCache   bool   `mapstructure:"disable_cache" yaml:"disable_cache"`
}

// IngestConfig holds ingestion limits.
type IngestConfig struct {
	// MaxCorpusBytes is the total corpus size ceiling enforced before
	// accepting new content.
	MaxCorpusBytes int64 `mapstructure:"max_corpus_bytes" yaml:"max_corpus_bytes"`
	// Stem enables suffix stemming during normalization.
	Stem bool `mapstructure:"stem" yaml:"stem"`
	// DisablePhrases turns off two-word phrase extraction.
	DisablePhrases bool `mapstructure:"disable_phrases" yaml:"disable_phrases"`
}

// Load loads configuration from viper (config file plus environment
// variables) with defaults applied.
func Load() (*Config, error) {
	setDefaults()

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	overrideWithEnv(config)
	return config, nil
}

func setDefaults() {
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "text")

	viper.SetDefault("server.host", "localhost")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.mode", "release")

	viper.SetDefault("store.driver", "memory")
	viper.SetDefault("store.uri", "")
	viper.SetDefault("store.username", "")
	viper.SetDefault("store.password", "")
	viper.SetDefault("store.database", "")

	viper.SetDefault("nlp.provider", "openai")
	viper.SetDefault("nlp.model", "")
	viper.SetDefault("nlp.temperature", 0.1)
	viper.SetDefault("nlp.max_tokens", 2048)

	viper.SetDefault("fetch.timeout_seconds", 20)
	viper.SetDefault("fetch.max_bytes", 10<<20)
	viper.SetDefault("fetch.disable_cache", false)

	viper.SetDefault("ingest.max_corpus_bytes", 100<<20)
	viper.SetDefault("ingest.stem", false)
	viper.SetDefault("ingest.disable_phrases", false)
}

func overrideWithEnv(config *Config) {
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" && config.NLP.APIKey == "" {
		config.NLP.APIKey = apiKey
	}

	if uri := os.Getenv("NEO4J_URI"); uri != "" {
		config.Store.Driver = "neo4j"
		config.Store.URI = uri
	}
	if user := os.Getenv("NEO4J_USER"); user != "" {
		config.Store.Username = user
	}
	if pass := os.Getenv("NEO4J_PASSWORD"); pass != "" {
		config.Store.Password = pass
	}

	if host := os.Getenv("SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
}
