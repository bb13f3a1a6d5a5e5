package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCompleteSendsJSONModeRequest(t *testing.T) {
	var got map[string]any
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		auth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"  {\"differences\":[],\"recommendations\":[]}  "},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "sk-test", BaseURL: srv.URL + "/", Model: "gpt-test"}, nil)
	out, err := c.Complete(context.Background(), "compare these")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if out != `{"differences":[],"recommendations":[]}` {
		t.Errorf("content = %q", out)
	}
	if auth != "Bearer sk-test" {
		t.Errorf("authorization = %q", auth)
	}
	if got["model"] != "gpt-test" {
		t.Errorf("model = %v", got["model"])
	}
	if got["max_tokens"] != float64(2000) {
		t.Errorf("max_tokens = %v", got["max_tokens"])
	}
	rf, _ := got["response_format"].(map[string]any)
	if rf["type"] != "json_object" {
		t.Errorf("response_format = %v", got["response_format"])
	}
	if c.Name() != "openai:gpt-test" {
		t.Errorf("name = %q", c.Name())
	}
}

func TestCompleteErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "server error", status: http.StatusInternalServerError, body: `{"error":"boom"}`},
		{name: "no choices", status: http.StatusOK, body: `{"choices":[]}`},
		{name: "garbage", status: http.StatusOK, body: `not json`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewClient(Config{APIKey: "sk-test", BaseURL: srv.URL}, nil)
			if _, err := c.Complete(context.Background(), "p"); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestKeyLooksValid(t *testing.T) {
	tests := map[string]bool{
		"":                         false,
		"sk-abc123":                true,
		"  sk-abc123 ":             true,
		"your_openai_api_key_here": false,
		"pk-live":                  false,
	}
	for key, want := range tests {
		if got := KeyLooksValid(key); got != want {
			t.Errorf("KeyLooksValid(%q) = %v, want %v", key, got, want)
		}
	}
}
