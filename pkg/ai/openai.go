package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	openAIDefaultBaseURL   = "https://api.openai.com/v1"
	openAIDefaultModel     = "gpt-4o-mini"
	moonshotDefaultBaseURL = "https://api.moonshot.ai/v1"
	moonshotDefaultModel   = "kimi-k2.5"

	maxTokens      = 1024
	requestTimeout = 2 * time.Minute
)

// OpenAIClient implements the Generator interface against any
// OpenAI-compatible chat completions endpoint.
type OpenAIClient struct {
	httpClient *http.Client
	provider   string
	apiKey     string
	model      string
	baseURL    string
}

// Ensure OpenAIClient implements Generator.
var _ Generator = (*OpenAIClient)(nil)

// NewOpenAIClient creates a new OpenAI API client.
func NewOpenAIClient(apiKey, model string) *OpenAIClient {
	return newChatClient("openai", openAIDefaultBaseURL, apiKey, model, openAIDefaultModel)
}

// NewMoonshotClient creates a client for the Moonshot (Kimi) API, which
// speaks the OpenAI protocol.
func NewMoonshotClient(apiKey, model string) *OpenAIClient {
	return newChatClient("moonshot", moonshotDefaultBaseURL, apiKey, model, moonshotDefaultModel)
}

func newChatClient(provider, baseURL, apiKey, model, defaultModel string) *OpenAIClient {
	if model == "" {
		model = defaultModel
	}
	return &OpenAIClient{
		httpClient: &http.Client{Timeout: requestTimeout},
		provider:   provider,
		apiKey:     apiKey,
		model:      model,
		baseURL:    baseURL,
	}
}

type openAIRequest struct {
	Model     string          `json:"model"`
	Messages  []openAIMessage `json:"messages"`
	MaxTokens int             `json:"max_tokens,omitempty"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponse struct {
	Choices []openAIChoice `json:"choices"`
	Error   *openAIError   `json:"error,omitempty"`
}

type openAIChoice struct {
	Message openAIMessage `json:"message"`
}

type openAIError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// GenerateText sends a prompt to the chat completions endpoint and returns
// the generated text.
func (c *OpenAIClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	reqBody := openAIRequest{
		Model: c.model,
		Messages: []openAIMessage{
			{Role: "user", Content: prompt},
		},
		MaxTokens: maxTokens,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%s API error (status %d): %s", c.provider, resp.StatusCode, errorMessage(respBytes))
	}

	var result openAIResponse
	if err := json.Unmarshal(respBytes, &result); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	if result.Error != nil {
		return "", fmt.Errorf("%s API error: %s", c.provider, result.Error.Message)
	}

	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no choices returned")
	}

	return result.Choices[0].Message.Content, nil
}

// Close is a no-op for the HTTP-based client.
func (c *OpenAIClient) Close() error {
	return nil
}

// errorMessage pulls error.message out of a provider error body, falling
// back to the raw body.
func errorMessage(body []byte) string {
	var e struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &e) == nil && e.Error.Message != "" {
		return e.Error.Message
	}
	return string(bytes.TrimSpace(body))
}
