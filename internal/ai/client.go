// Package ai talks to an OpenAI-compatible chat-completion API and owns
// prompt construction and post-processing of the returned text.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gnosislabs/gnosis-api/internal/metrics"
)

const (
	defaultTemperature = 0.7
	defaultMaxTokens   = 2000
)

// ErrEmptyCompletion is returned when the API answers 200 with no content.
var ErrEmptyCompletion = errors.New("empty completion content")

// Message is one chat message in a prompt.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client calls the chat-completion endpoint. The HTTP client and logger are
// injected; baseURL is overridable so tests can point at a local server.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	baseURL    string
	apiKey     string
	model      string
}

// NewClient returns a completion client for the given API key and model.
func NewClient(httpClient *http.Client, logger *slog.Logger, baseURL, apiKey, model string) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     logger,
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      model,
	}
}

type completionRequest struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// ChatCompletion sends messages and returns the first choice's content.
// When jsonMode is true the request asks the model for a JSON object response
// and a JSON-enforcing system message is prepended.
func (c *Client) ChatCompletion(ctx context.Context, messages []Message, jsonMode bool) (string, error) {
	reqBody := completionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: defaultTemperature,
		MaxTokens:   defaultMaxTokens,
	}
	if jsonMode {
		reqBody.ResponseFormat = &responseFormat{Type: "json_object"}
		reqBody.Messages = append([]Message{
			{Role: "system", Content: "You are a helpful assistant that always responds in valid JSON format."},
		}, messages...)
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.RecordExternalCall("openai", time.Since(start).Seconds(), err == nil)
	if err != nil {
		c.logger.Error("completion request failed", "error", err.Error())
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read completion response: %w", err)
	}

	var out completionResponse
	if err := json.Unmarshal(body, &out); err != nil {
		c.logger.Error("completion response is not JSON",
			"status", resp.StatusCode, "error", err.Error())
		return "", fmt.Errorf("parse completion response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := "unknown error"
		if out.Error != nil {
			msg = out.Error.Message
		}
		c.logger.Error("completion API error",
			"status", resp.StatusCode, "message", msg)
		return "", fmt.Errorf("completion API status %d: %s", resp.StatusCode, msg)
	}

	if len(out.Choices) == 0 || out.Choices[0].Message.Content == "" {
		return "", ErrEmptyCompletion
	}

	return out.Choices[0].Message.Content, nil
}
