package main

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/joseph-ayodele/po-invoice-matcher/internal/common"
	"github.com/joseph-ayodele/po-invoice-matcher/internal/llm"
)

func TestSelectReasoner(t *testing.T) {
	tests := []struct {
		name     string
		cfg      common.LLMConfig
		wantName string
		wantErr  bool
	}{
		{"none", common.LLMConfig{Provider: "none", APIKey: "sk-real"}, "none", false},
		{"auto without key", common.LLMConfig{Provider: "auto"}, "none", false},
		{"auto with placeholder", common.LLMConfig{Provider: "auto", APIKey: "your_openai_api_key_here"}, "none", false},
		{"auto with key", common.LLMConfig{Provider: "auto", APIKey: "sk-test", Model: "gpt-4o-mini"}, "openai:gpt-4o-mini", false},
		{"explicit openai", common.LLMConfig{Provider: "openai", APIKey: "anything"}, "openai:gpt-3.5-turbo", false},
		{"unknown", common.LLMConfig{Provider: "carrier-pigeon"}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, closeFn, err := selectReasoner(context.Background(), tt.cfg, slog.Default())
			if tt.wantErr {
				if common.ErrorCode(err) != common.CodeConfig {
					t.Fatalf("err = %v, want CONFIG_ERROR", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("selectReasoner: %v", err)
			}
			if closeFn != nil {
				defer closeFn()
			}
			if got := llm.ReasonerName(r); got != tt.wantName {
				t.Errorf("reasoner = %q, want %q", got, tt.wantName)
			}
		})
	}
}

func TestOpenHistory(t *testing.T) {
	repo, closeFn, err := openHistory(context.Background(), common.DatabaseConfig{Driver: "none"}, slog.Default())
	if err != nil || repo != nil || closeFn != nil {
		t.Fatalf("driver none = %v, %v", repo, err)
	}

	dsn := filepath.Join(t.TempDir(), "runs.db")
	repo, closeFn, err = openHistory(context.Background(), common.DatabaseConfig{Driver: "sqlite", DSN: dsn}, slog.Default())
	if err != nil {
		t.Fatalf("sqlite: %v", err)
	}
	defer closeFn()
	if repo == nil {
		t.Fatal("sqlite repository is nil")
	}

	if _, _, err := openHistory(context.Background(), common.DatabaseConfig{Driver: "mongo"}, slog.Default()); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}
