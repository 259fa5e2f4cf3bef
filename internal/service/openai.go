package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"medtriage/internal/config"
)

// OpenAIClient talks to an OpenAI-compatible chat completion endpoint.
// The triage service only asks it for single JSON answers.
type OpenAIClient struct {
	config     *config.OpenAIConfig
	httpClient *http.Client
	extraBody  map[string]any
}

// NewOpenAIClient creates a client; timeoutSeconds bounds each call
func NewOpenAIClient(cfg *config.OpenAIConfig, timeoutSeconds int) *OpenAIClient {
	client := &OpenAIClient{
		config:     cfg,
		httpClient: &http.Client{Timeout: time.Duration(timeoutSeconds) * time.Second},
	}

	if cfg.ChatExtraBody != "" {
		if err := json.Unmarshal([]byte(cfg.ChatExtraBody), &client.extraBody); err != nil {
			log.Printf("⚠️  Ignoring OPENAI_CHAT_EXTRA_BODY, not a JSON object: %v", err)
			client.extraBody = nil
		}
	}

	return client
}

// IsEnabled reports whether an API key is configured
func (c *OpenAIClient) IsEnabled() bool {
	return c.config.Enabled
}

// Model returns the chat model used for classification
func (c *OpenAIClient) Model() string {
	return c.config.ChatModel
}

// ChatCompletionRequest is the request body of /chat/completions
type ChatCompletionRequest struct {
	Model          string          `json:"model"`
	Messages       []ChatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	TopP           float64         `json:"top_p,omitempty"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
	ExtraBody      map[string]any  `json:"extra_body,omitempty"`
}

// ChatMessage is one turn of the conversation
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ResponseFormat asks the model for a JSON object instead of prose
type ResponseFormat struct {
	Type string `json:"type"`
}

// ChatCompletionResponse is the subset of the reply the classifier reads
type ChatCompletionResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message      ChatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
}

// CompleteJSON sends instructions plus the patient text and returns the raw
// content of the first choice. Sampling follows configuration, so with the
// default temperature of 0 repeated calls classify the same text the same way.
func (c *OpenAIClient) CompleteJSON(ctx context.Context, instructions, text string) (string, error) {
	if !c.config.Enabled {
		return "", fmt.Errorf("%w: OPENAI_API_KEY is not set", ErrClassifierUnavailable)
	}

	req := ChatCompletionRequest{
		Model: c.config.ChatModel,
		Messages: []ChatMessage{
			{Role: "system", Content: instructions},
			{Role: "user", Content: text},
		},
		Temperature:    c.config.ChatTemperature,
		TopP:           c.config.ChatTopP,
		MaxTokens:      c.config.ChatMaxTokens,
		ResponseFormat: &ResponseFormat{Type: "json_object"},
		ExtraBody:      c.extraBody,
	}

	resp, err := c.chatCompletion(ctx, &req)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat model %s returned no choices", c.config.ChatModel)
	}

	choice := resp.Choices[0]
	if choice.FinishReason == "length" {
		log.Printf("[DEBUG] ✂️  %s reply truncated at %d tokens", c.config.ChatModel, c.config.ChatMaxTokens)
	}
	return choice.Message.Content, nil
}

// chatCompletion posts one request and decodes the reply
func (c *OpenAIClient) chatCompletion(ctx context.Context, req *ChatCompletionRequest) (*ChatCompletionResponse, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.APIBase+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("chat request to %s failed: %w", c.config.APIBase, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read chat reply: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("chat model answered %d: %s", resp.StatusCode, truncate(string(body), 300))
	}

	var decoded ChatCompletionResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("failed to decode chat reply: %w", err)
	}
	return &decoded, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
