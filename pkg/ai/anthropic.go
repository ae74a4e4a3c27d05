package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	anthropicDefaultBaseURL = "https://api.anthropic.com/v1"
	anthropicDefaultModel   = "claude-3-5-haiku-latest"
	anthropicVersion        = "2023-06-01"
)

// AnthropicClient generates digests through the Anthropic Messages API.
type AnthropicClient struct {
	httpClient *http.Client
	apiKey     string
	model      string
	baseURL    string
}

var _ Generator = (*AnthropicClient)(nil)

// NewAnthropicClient returns a Messages API client. An empty model picks
// claude-3-5-haiku-latest.
func NewAnthropicClient(apiKey, model string) *AnthropicClient {
	if model == "" {
		model = anthropicDefaultModel
	}
	return &AnthropicClient{
		httpClient: &http.Client{Timeout: requestTimeout},
		apiKey:     apiKey,
		model:      model,
		baseURL:    anthropicDefaultBaseURL,
	}
}

type messagesRequest struct {
	Model     string         `json:"model"`
	MaxTokens int            `json:"max_tokens"`
	Messages  []messagesTurn `json:"messages"`
}

type messagesTurn struct {
	Role    string         `json:"role"`
	Content []contentBlock `json:"content"`
}

// contentBlock covers text blocks plus the block kinds we skip
// (thinking, tool_use).
type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type messagesResponse struct {
	Content    []contentBlock `json:"content"`
	StopReason string         `json:"stop_reason,omitempty"`
	Error      *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// text joins the text blocks in order.
func (r messagesResponse) text() string {
	var sb strings.Builder
	for _, b := range r.Content {
		if b.Type == "text" {
			sb.WriteString(b.Text)
		}
	}
	return sb.String()
}

// GenerateText sends prompt as a single user turn.
func (c *AnthropicClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	req, err := c.newRequest(ctx, prompt)
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("anthropic API error (status %d): %s", resp.StatusCode, errorMessage(raw))
	}

	var out messagesResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if out.Error != nil {
		return "", fmt.Errorf("anthropic API error: %s", out.Error.Message)
	}

	text := out.text()
	if text == "" {
		return "", fmt.Errorf("no text in response (stop_reason %q)", out.StopReason)
	}
	return text, nil
}

func (c *AnthropicClient) newRequest(ctx context.Context, prompt string) (*http.Request, error) {
	body, err := json.Marshal(messagesRequest{
		Model:     c.model,
		MaxTokens: maxTokens,
		Messages: []messagesTurn{{
			Role:    "user",
			Content: []contentBlock{{Type: "text", Text: prompt}},
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/messages", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)
	return req, nil
}

// Close is a no-op.
func (c *AnthropicClient) Close() error {
	return nil
}
