// Package vertex implements llm.Reasoner on Vertex AI Gemini models.
package vertex

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"cloud.google.com/go/vertexai/genai"

	"github.com/joseph-ayodele/po-invoice-matcher/internal/common"
)

type Config struct {
	ProjectID   string
	Region      string // default us-central1
	Model       string // default gemini-1.5-pro
	Temperature float32
	MaxTokens   int32
}

type Client struct {
	cfg    Config
	base   *genai.Client
	model  *genai.GenerativeModel
	logger *slog.Logger
}

// NewClient dials Vertex AI using application default credentials.
func NewClient(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ProjectID == "" {
		return nil, errors.New("vertex: project id is required")
	}
	if cfg.Region == "" {
		cfg.Region = "us-central1"
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-1.5-pro"
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 2000
	}

	base, err := genai.NewClient(ctx, cfg.ProjectID, cfg.Region)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}
	model := base.GenerativeModel(cfg.Model)
	model.GenerationConfig = genai.GenerationConfig{
		ResponseMIMEType: "application/json",
		Temperature:      genai.Ptr[float32](cfg.Temperature),
		MaxOutputTokens:  genai.Ptr[int32](cfg.MaxTokens),
	}

	logger.Info("llm.vertex.client_ready", "project", cfg.ProjectID, "region", cfg.Region, "model", cfg.Model)
	return &Client{cfg: cfg, base: base, model: model, logger: logger}, nil
}

// Complete implements llm.Reasoner.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	rid := common.RequestIDFromContext(ctx)
	start := time.Now()
	c.logger.Info("llm.vertex.complete.start", "req_id", rid, "model", c.cfg.Model, "prompt_len", len(prompt))

	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		c.logger.Error("llm.vertex.generate_error", "req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return "", fmt.Errorf("vertex generate: %w", err)
	}

	content := responseText(resp)
	if content == "" {
		c.logger.Error("llm.vertex.empty_response", "req_id", rid,
			"elapsed_ms", time.Since(start).Milliseconds())
		return "", errors.New("vertex: empty response")
	}

	c.logger.Info("llm.vertex.complete.ok", "req_id", rid, "content_len", len(content),
		"elapsed_ms", time.Since(start).Milliseconds())
	return content, nil
}

// Name implements llm.Named.
func (c *Client) Name() string {
	return "vertex:" + c.cfg.Model
}

func (c *Client) Close() error {
	if c.base != nil {
		return c.base.Close()
	}
	return nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	return strings.TrimSpace(b.String())
}
