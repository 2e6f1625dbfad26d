// Package openai is a minimal client for the OpenAI chat-completions API.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ashureev/surveychat/internal/domain"
)

// maxResponseSize caps the response body read (1 MB). Completion replies
// are short; anything larger is malformed.
const maxResponseSize = 1 << 20

// Client produces a reply for a window of conversation messages.
type Client interface {
	Complete(ctx context.Context, messages []domain.Message) (string, error)
}

// HTTPClient calls the chat-completions endpoint with a fixed model and
// bearer-token authorization.
type HTTPClient struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// New creates a chat-completions client. baseURL is the API root without
// a trailing slash, e.g. "https://api.openai.com/v1".
func New(apiKey, model, baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		apiKey:     apiKey,
		model:      model,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type chatRequest struct {
	Model    string           `json:"model"`
	Messages []domain.Message `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends a single request/response round trip. No retries and no
// streaming; the caller collapses every failure into one uniform outcome.
func (c *HTTPClient) Complete(ctx context.Context, messages []domain.Message) (string, error) {
	payload, err := json.Marshal(chatRequest{Model: c.model, Messages: messages})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("completion request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("completion API returned status %d", resp.StatusCode)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("completion response has no choices")
	}
	return chatResp.Choices[0].Message.Content, nil
}
