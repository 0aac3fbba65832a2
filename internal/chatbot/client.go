package chatbot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/frahmantamala/request-routing/internal"
)

const defaultSystemPrompt = "أنت مساعد ذكي تتحدث العربية وتساعد موظفي نظام SEVENS."

// ErrNoReply means the upstream answered without any choices.
var ErrNoReply = errors.New("chat completion returned no choices")

// StatusError is a non-200 answer from the upstream.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("chat completion returned status %d", e.StatusCode)
}

type Config struct {
	BaseURL      string
	APIKey       string
	Model        string
	SystemPrompt string
	Temperature  float64
	MaxTokens    int
	Timeout      time.Duration
}

// Client calls an OpenAI-compatible chat completion endpoint.
type Client struct {
	baseURL      string
	apiKey       string
	model        string
	systemPrompt string
	temperature  float64
	maxTokens    int
	timeout      time.Duration
	httpClient   *http.Client
	logger       *slog.Logger
}

func NewClient(config Config, logger *slog.Logger) *Client {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	prompt := config.SystemPrompt
	if prompt == "" {
		prompt = defaultSystemPrompt
	}

	return &Client{
		baseURL:      strings.TrimRight(config.BaseURL, "/"),
		apiKey:       config.APIKey,
		model:        config.Model,
		systemPrompt: prompt,
		temperature:  config.Temperature,
		maxTokens:    config.MaxTokens,
		timeout:      timeout,
		httpClient:   &http.Client{Timeout: timeout},
		logger:       logger,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type completionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Complete sends one user message and returns the first choice. Failures are
// ErrUpstreamTimeout, ErrUpstreamError (wrapping a *StatusError for non-200
// answers) or ErrNoReply.
func (c *Client) Complete(ctx context.Context, message string) (string, error) {
	payload := completionRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: c.systemPrompt},
			{Role: "user", Content: message},
		},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal completion request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", internal.ErrUpstreamError.Wrap(err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if isTimeout(err) {
			return "", internal.ErrUpstreamTimeout.Wrap(err)
		}
		return "", internal.ErrUpstreamError.Wrap(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", internal.ErrUpstreamError.Wrap(&StatusError{StatusCode: resp.StatusCode, Body: string(body)})
	}

	var completion completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		if isTimeout(err) {
			return "", internal.ErrUpstreamTimeout.Wrap(err)
		}
		return "", internal.ErrUpstreamError.Wrap(fmt.Errorf("failed to decode completion: %w", err))
	}

	if len(completion.Choices) == 0 {
		return "", ErrNoReply
	}
	reply := strings.TrimSpace(completion.Choices[0].Message.Content)
	if reply == "" {
		return "", ErrNoReply
	}
	return reply, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
