package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// Upstream failure classes the handlers surface with distinct status codes.
var (
	ErrRateLimited    = errors.New("rate limit exceeded")
	ErrQuotaExhausted = errors.New("AI credits depleted")
)

// Message is a single turn in a chat completion request
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client is a thin client for an OpenAI-style chat completions gateway
type Client struct {
	BaseURL    string
	APIKey     string
	Model      string
	HTTPClient *http.Client
}

// NewClientFromEnv builds a client from AI_GATEWAY_URL, AI_GATEWAY_API_KEY
// and AI_MODEL
func NewClientFromEnv() *Client {
	return &Client{
		BaseURL:    os.Getenv("AI_GATEWAY_URL"),
		APIKey:     os.Getenv("AI_GATEWAY_API_KEY"),
		Model:      os.Getenv("AI_MODEL"),
		HTTPClient: &http.Client{Timeout: 120 * time.Second},
	}
}

type chatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *Client) post(ctx context.Context, body chatRequest) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("error encoding request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("error building request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		errText, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		switch resp.StatusCode {
		case http.StatusTooManyRequests:
			return nil, ErrRateLimited
		case http.StatusPaymentRequired:
			return nil, ErrQuotaExhausted
		default:
			return nil, fmt.Errorf("AI gateway error %d: %s", resp.StatusCode, errText)
		}
	}

	return resp, nil
}

// ChatCompletion sends a blocking completion request and returns the
// assistant's reply content
func (c *Client) ChatCompletion(ctx context.Context, messages []Message) (string, error) {
	resp, err := c.post(ctx, chatRequest{Model: c.Model, Messages: messages})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("error decoding response: %v", err)
	}
	if len(parsed.Choices) == 0 {
		return "", nil
	}
	return parsed.Choices[0].Message.Content, nil
}

// StreamChatCompletion sends a streaming completion request and returns the
// raw SSE body. The caller owns the body and must close it; cancel the
// context to abort the stream mid-flight.
func (c *Client) StreamChatCompletion(ctx context.Context, messages []Message) (io.ReadCloser, error) {
	resp, err := c.post(ctx, chatRequest{Model: c.Model, Messages: messages, Stream: true})
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}
