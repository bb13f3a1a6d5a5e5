package common

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	LLM        LLMConfig        `mapstructure:"llm"`
	OCR        OCRConfig        `mapstructure:"ocr"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Classifier ClassifierConfig `mapstructure:"classifier"`
	Queue      QueueConfig      `mapstructure:"queue"`
}

// LLMConfig selects and configures the reasoning collaborator.
type LLMConfig struct {
	Provider      string        `mapstructure:"provider"` // auto | openai | vertex | none
	Model         string        `mapstructure:"model"`
	APIKey        string        `mapstructure:"api_key"`
	BaseURL       string        `mapstructure:"base_url"`
	Temperature   float32       `mapstructure:"temperature"`
	MaxTokens     int           `mapstructure:"max_tokens"`
	Timeout       time.Duration `mapstructure:"timeout"`
	VertexProject string        `mapstructure:"vertex_project"`
	VertexRegion  string        `mapstructure:"vertex_region"`
	VertexModel   string        `mapstructure:"vertex_model"`
}

// OCRConfig holds text source configuration
type OCRConfig struct {
	Pdftotext    string        `mapstructure:"pdftotext"`
	CacheDir     string        `mapstructure:"cache_dir"` // empty disables the text cache
	CacheTTL     time.Duration `mapstructure:"cache_ttl"`
	MinTextChars int           `mapstructure:"min_text_chars"`
}

// DatabaseConfig holds run history storage configuration
type DatabaseConfig struct {
	Driver           string        `mapstructure:"driver"` // sqlite | postgres | none
	DSN              string        `mapstructure:"dsn"`
	MaxConns         int32         `mapstructure:"max_conns"`
	MinConns         int32         `mapstructure:"min_conns"`
	MaxConnLifetime  time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime  time.Duration `mapstructure:"max_conn_idle_time"`
	DialTimeout      time.Duration `mapstructure:"dial_timeout"`
	StatementTimeout time.Duration `mapstructure:"statement_timeout"`
}

// ClassifierConfig toggles optional classification rules.
type ClassifierConfig struct {
	DetectMixed bool `mapstructure:"detect_mixed"`
}

// QueueConfig sizes the batch worker pool.
type QueueConfig struct {
	Workers        int           `mapstructure:"workers"`
	Size           int           `mapstructure:"size"`
	ProcessTimeout time.Duration `mapstructure:"process_timeout"`
}

var defaults = map[string]any{
	"llm.provider":       "auto",
	"llm.model":          "gpt-3.5-turbo",
	"llm.api_key":        "",
	"llm.base_url":       "https://api.openai.com/v1",
	"llm.temperature":    0.0,
	"llm.max_tokens":     2000,
	"llm.timeout":        45 * time.Second,
	"llm.vertex_project": "",
	"llm.vertex_region":  "us-central1",
	"llm.vertex_model":   "gemini-1.5-pro",

	"ocr.pdftotext":      "pdftotext",
	"ocr.cache_dir":      "",
	"ocr.cache_ttl":      24 * time.Hour,
	"ocr.min_text_chars": 10,

	"database.driver":             "sqlite",
	"database.dsn":                "file:po-matcher.db",
	"database.max_conns":          10,
	"database.min_conns":          1,
	"database.max_conn_lifetime":  30 * time.Minute,
	"database.max_conn_idle_time": 5 * time.Minute,
	"database.dial_timeout":       3 * time.Second,
	"database.statement_timeout":  0,

	"classifier.detect_mixed": false,

	"queue.workers":         4,
	"queue.size":            256,
	"queue.process_timeout": 3 * time.Minute,
}

// envAliases keeps the historical variable names working alongside the
// derived ones (LLM_API_KEY, DATABASE_DSN, ...).
var envAliases = map[string][]string{
	"llm.api_key":        {"OPENAI_API_KEY"},
	"llm.model":          {"OPENAI_MODEL"},
	"llm.temperature":    {"OPENAI_TEMPERATURE"},
	"llm.timeout":        {"OPENAI_TIMEOUT"},
	"llm.base_url":       {"OPENAI_BASE_URL"},
	"llm.vertex_project": {"GOOGLE_CLOUD_PROJECT"},
	"database.driver":    {"DB_DRIVER"},
	"database.dsn":       {"DB_URL"},
	"database.max_conns": {"DB_MAX_CONNS"},
	"database.min_conns": {"DB_MIN_CONNS"},
	"ocr.cache_dir":      {"ARTIFACT_CACHE_DIR"},
}

// LoadConfig loads configuration from an optional .env file, an optional
// po-matcher.yaml under path, and the environment (highest precedence).
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("config.dotenv.skipped", "error", err)
	}

	v := viper.New()
	v.SetConfigName("po-matcher")
	v.SetConfigType("yaml")
	if path != "" {
		v.AddConfigPath(path)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for k, d := range defaults {
		v.SetDefault(k, d)
	}
	for k, names := range envAliases {
		args := append([]string{k, strings.ToUpper(strings.ReplaceAll(k, ".", "_"))}, names...)
		if err := v.BindEnv(args...); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", k, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, NewAppError(CodeConfig, "read config file", err)
		}
		slog.Debug("config.file.not_found", "path", path)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, NewAppError(CodeConfig, "decode config", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints the defaults cannot express.
func (c *Config) Validate() error {
	v := NewValidator()
	v.Field("llm.provider", c.LLM.Provider, OneOf("auto", "openai", "vertex", "none"))
	v.Field("database.driver", c.Database.Driver, OneOf("sqlite", "postgres", "none"))
	if c.Database.Driver == "postgres" {
		v.Field("database.dsn", c.Database.DSN, Required)
	}
	if c.LLM.Provider == "openai" {
		v.Field("llm.api_key", c.LLM.APIKey, Required)
	}
	if c.LLM.Provider == "vertex" {
		v.Field("llm.vertex_project", c.LLM.VertexProject, Required)
	}
	if c.Queue.Workers <= 0 {
		v.Field("queue.workers", c.Queue.Workers, func(f string, val interface{}) *ValidationError {
			return &ValidationError{Field: f, Value: val, Message: "must be positive"}
		})
	}
	return ValidateAndReturnError(v, CodeConfig)
}
