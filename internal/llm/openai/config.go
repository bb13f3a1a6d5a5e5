package openai

import (
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"
)

const placeholderKey = "your_openai_api_key_here"

// Config for the OpenAI client.
type Config struct {
	APIKey      string        // if empty, falls back to env OPENAI_API_KEY
	BaseURL     string        // default https://api.openai.com/v1
	Model       string        // e.g., "gpt-3.5-turbo"
	Temperature float32       // 0..2
	MaxTokens   int           // completion budget, default 2000
	Timeout     time.Duration // http client timeout
}

type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-3.5-turbo"
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 2000
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 45 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

// KeyLooksValid reports whether key has the shape of a real secret key rather
// than being empty or the sample placeholder.
func KeyLooksValid(key string) bool {
	key = strings.TrimSpace(key)
	return strings.HasPrefix(key, "sk-") && key != placeholderKey
}
