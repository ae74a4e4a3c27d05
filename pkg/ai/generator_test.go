package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.AIConfig
		want    string
		wantErr error
	}{
		{"nothing configured", config.AIConfig{}, "", ErrNotConfigured},
		{"picks anthropic by key", config.AIConfig{AnthropicAPIKey: "k"}, "anthropic", nil},
		{"picks openai by key", config.AIConfig{OpenAIAPIKey: "k", MoonshotAPIKey: "m"}, "openai", nil},
		{"explicit moonshot", config.AIConfig{Provider: "Moonshot", OpenAIAPIKey: "k", MoonshotAPIKey: "m"}, "moonshot", nil},
		{"provider without key", config.AIConfig{Provider: "openai"}, "", ErrNotConfigured},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen, err := New(context.Background(), tt.cfg)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			defer gen.Close()
			var got string
			switch c := gen.(type) {
			case *AnthropicClient:
				got = "anthropic"
			case *OpenAIClient:
				got = c.provider
			}
			if got != tt.want {
				t.Errorf("provider = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewUnknownProvider(t *testing.T) {
	_, err := New(context.Background(), config.AIConfig{Provider: "llama"})
	if err == nil || errors.Is(err, ErrNotConfigured) {
		t.Fatalf("err = %v", err)
	}
}

func TestErrorMessage(t *testing.T) {
	if got := errorMessage([]byte(`{"error": {"message": "bad key"}}`)); got != "bad key" {
		t.Errorf("got %q", got)
	}
	if got := errorMessage([]byte(" plain text \n")); got != "plain text" {
		t.Errorf("got %q", got)
	}
}
