// Package config handles loading and parsing application configuration.
// It supports two sources for the config file path (in priority order):
//  1. An environment variable:  CONFIG_PATH=/path/to/config.yaml
//  2. A command-line flag:      --config=/path/to/config.yaml
//
// Every value in the file can be overridden by the environment variable
// named in its env:"..." tag.
package config

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config is the root configuration structure.
type Config struct {
	// Env controls log format and verbosity.
	// Valid values: "dev", "staging", "prod"
	Env string `yaml:"env" env:"ENV" env-default:"dev"`

	// StorageBackend selects the Record Store implementation:
	// "json" (flat file, default), "sqlite", or "memory".
	StorageBackend string `yaml:"storage_backend" env:"STORAGE_BACKEND" env-default:"json"`

	// StoragePath is the backing file: the JSON array file for the json
	// backend, the database file for sqlite. Ignored by memory.
	StoragePath string `yaml:"storage_path" env:"STORAGE_PATH" env-required:"true"`

	HTTPServer `yaml:"http_server"`
	CORS       CORS `yaml:"cors"`
	LLM        LLM  `yaml:"llm"`
}

// HTTPServer holds settings specific to the HTTP server.
type HTTPServer struct {
	Addr            string        `yaml:"address" env:"HTTP_SERVER_ADDR" env-required:"true"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"HTTP_READ_TIMEOUT" env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"HTTP_WRITE_TIMEOUT" env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"5s"`
}

// CORS lists the browser origins allowed to call the API.
type CORS struct {
	AllowedOrigins []string `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS" env-separator:"," env-default:"*"`
}

// LLM configures the hosted completion service behind /ask-llm.
// With an empty APIKey the service runs without delegation and every
// free-form question gets the fallback answer.
type LLM struct {
	APIKey          string        `yaml:"api_key" env:"GEMINI_API_KEY"`
	Model           string        `yaml:"model" env:"LLM_MODEL" env-default:"gemini-2.0-flash"`
	MaxOutputTokens int           `yaml:"max_output_tokens" env:"LLM_MAX_OUTPUT_TOKENS" env-default:"200"`
	Timeout         time.Duration `yaml:"timeout" env:"LLM_TIMEOUT" env-default:"15s"`

	// BreakerFailures consecutive failures open the circuit; it stays
	// open for BreakerCooldown before a trial request is let through.
	BreakerFailures uint32        `yaml:"breaker_failures" env:"LLM_BREAKER_FAILURES" env-default:"5"`
	BreakerCooldown time.Duration `yaml:"breaker_cooldown" env:"LLM_BREAKER_COOLDOWN" env-default:"30s"`
}

var validBackends = map[string]bool{"json": true, "sqlite": true, "memory": true}

// Load reads the YAML file at path, applies environment overrides, and
// checks the values cleanenv cannot check on its own.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config file does not exist: %s", path)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("cannot read config: %w", err)
	}

	if !validBackends[cfg.StorageBackend] {
		return nil, fmt.Errorf("unknown storage_backend %q (supported: json, sqlite, memory)", cfg.StorageBackend)
	}
	if cfg.LLM.MaxOutputTokens <= 0 {
		return nil, fmt.Errorf("llm.max_output_tokens must be positive, got %d", cfg.LLM.MaxOutputTokens)
	}

	return &cfg, nil
}

// MustLoad resolves the config path from CONFIG_PATH or --config and
// returns the parsed config. It exits the process on any failure: if
// this returns, the config is valid.
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")

	if configPath == "" {
		flags := flag.String("config", "", "Path to the configuration YAML file")
		flag.Parse()
		configPath = *flags
	}

	if configPath == "" {
		log.Fatal("config path is not set: use --config flag or CONFIG_PATH env var")
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatal(err.Error())
	}

	return cfg
}
