package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrNotConfigured = errors.New("generation service not configured")
	ErrEmptyPrompt   = errors.New("prompt must not be empty")
)

// Config carries the Azure OpenAI connection settings. All fields except
// APIVersion are required for the client to be usable; an unusable client is
// still a valid value, and callers fall back to the local template.
type Config struct {
	Endpoint   string
	APIKey     string
	Deployment string
	APIVersion string
}

// Client calls the Azure OpenAI chat-completions API over plain HTTP.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

func NewClient(cfg Config) *Client {
	if cfg.APIVersion == "" {
		cfg.APIVersion = "2024-10-21"
	}
	return &Client{
		cfg: cfg,
		// No client-level timeout: each call is bounded by its context.
		httpClient: &http.Client{},
	}
}

// Usable reports whether the client has enough configuration to attempt a
// generation call at all.
func (c *Client) Usable() bool {
	return c != nil && c.cfg.Endpoint != "" && c.cfg.APIKey != "" && c.cfg.Deployment != ""
}

// Model returns the deployment name used as the model identifier.
func (c *Client) Model() string {
	if c == nil {
		return ""
	}
	return c.cfg.Deployment
}

type CompletionOptions struct {
	Temperature float64
	TopP        float64
	MaxTokens   int
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	TopP        float64       `json:"top_p,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Complete sends a single-user-message chat completion and returns the
// trimmed assistant text. The call is bounded by ctx; there are no retries.
func (c *Client) Complete(ctx context.Context, prompt string, opts CompletionOptions) (string, error) {
	if !c.Usable() {
		return "", ErrNotConfigured
	}
	if strings.TrimSpace(prompt) == "" {
		return "", ErrEmptyPrompt
	}

	body, err := json.Marshal(chatRequest{
		Messages:    []chatMessage{{Role: "user", Content: strings.TrimSpace(prompt)}},
		Temperature: opts.Temperature,
		TopP:        opts.TopP,
		MaxTokens:   opts.MaxTokens,
	})
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
		strings.TrimRight(c.cfg.Endpoint, "/"), c.cfg.Deployment, c.cfg.APIVersion)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("completion failed: %s", resp.Status)
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if len(out.Choices) == 0 {
		return "", errors.New("completion returned no choices")
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}
