// Package config provides configuration loading and validation for the CLI and service.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Store backends.
const (
	StoreFile     = "file"
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

// Config represents the configuration that can be loaded from a JSON file.
// All fields are optional; missing values come from the environment or defaults.
type Config struct {
	// Service
	Port int `json:"port,omitempty" validate:"omitempty,min=1,max=65535"` // HTTP listen port

	// Storage
	Store         string `json:"store,omitempty" validate:"omitempty,oneof=file memory postgres redis"` // Store backend
	StorePath     string `json:"store_path,omitempty" validate:"required_if=Store file"`                // JSON file for the file store
	DatabaseURL   string `json:"database_url,omitempty" validate:"required_if=Store postgres"`          // PostgreSQL connection URL
	RedisAddr     string `json:"redis_addr,omitempty" validate:"required_if=Store redis"`               // Redis host:port
	RedisPassword string `json:"redis_password,omitempty"`                                              // Redis password
	RedisDB       int    `json:"redis_db,omitempty" validate:"min=0"`                                   // Redis database number
	Secret        string `json:"secret,omitempty"`                                                      // Seals stored API keys when set

	// AI provider
	Provider string `json:"provider,omitempty" validate:"omitempty,oneof=gemini openai"`      // AI provider
	Tier     string `json:"tier,omitempty" validate:"omitempty,oneof=lite standard advanced"` // Model tier used for generation
	Model    string `json:"model,omitempty"`                                                  // Overrides the model of the tier
	BaseURL  string `json:"base_url,omitempty" validate:"omitempty,url"`                      // OpenAI-compatible endpoint
	APIKey   string `json:"api_key,omitempty"`                                                // API key for CLI generation

	// Behavior
	Verbose bool `json:"verbose,omitempty"` // Print detailed debug information
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Port:      8080,
		Store:     StoreFile,
		StorePath: "resume-builder.json",
		Provider:  "gemini",
		Tier:      "standard",
	}
}

// FromEnv reads configuration from environment variables. Unset variables
// leave the field empty.
func FromEnv() Config {
	return Config{
		Port:          getEnvInt("RESUME_PORT", 0),
		Store:         os.Getenv("RESUME_STORE"),
		StorePath:     os.Getenv("RESUME_STORE_PATH"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		Secret:        os.Getenv("RESUME_SECRET"),
		Provider:      os.Getenv("RESUME_PROVIDER"),
		Tier:          os.Getenv("RESUME_TIER"),
		Model:         os.Getenv("RESUME_MODEL"),
		BaseURL:       os.Getenv("RESUME_BASE_URL"),
		APIKey:        os.Getenv("GEMINI_API_KEY"),
	}
}

// Resolve merges a config file (if path is non-empty) over the environment
// and the built-in defaults, then validates the result.
func Resolve(path string) (*Config, error) {
	env := FromEnv()
	base := env.MergeWithDefaults(Defaults())

	cfg := &base
	if path != "" {
		fileCfg, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		merged := fileCfg.MergeWithDefaults(base)
		cfg = &merged
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("config error: %w", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required_if":
			msgs = append(msgs, fmt.Sprintf("'%s' is required when store is %q", fe.Field(), c.Store))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("'%s' must be one of [%s]", fe.Field(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("'%s' failed %s validation", fe.Field(), fe.Tag()))
		}
	}
	return fmt.Errorf("config error: %s", strings.Join(msgs, "; "))
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.Store == "" {
		result.Store = defaults.Store
	}
	if result.StorePath == "" {
		result.StorePath = defaults.StorePath
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.RedisAddr == "" {
		result.RedisAddr = defaults.RedisAddr
	}
	if result.RedisPassword == "" {
		result.RedisPassword = defaults.RedisPassword
	}
	if result.Secret == "" {
		result.Secret = defaults.Secret
	}
	if result.Provider == "" {
		result.Provider = defaults.Provider
	}
	if result.Tier == "" {
		result.Tier = defaults.Tier
	}
	if result.Model == "" {
		result.Model = defaults.Model
	}
	if result.BaseURL == "" {
		result.BaseURL = defaults.BaseURL
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}

	// Int fields: use default if zero
	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.RedisDB == 0 {
		result.RedisDB = defaults.RedisDB
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// getEnvInt gets an environment variable as an int with a default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}
