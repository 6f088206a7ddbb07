// Package openrouter implements the signal analyzer on top of the
// OpenRouter chat-completions API.
package openrouter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/quantfx/fx-risk-api/internal/modules/signal"
)

const systemPrompt = "You are a genius in technical analysis for forex trading, a risk management expert, " +
	"and a master of probability and statistics. Always provide insightful, data-driven, " +
	"and probabilistic answers. Respond with a single JSON object containing the fields " +
	"signal, entry_price, stop_loss, take_profit, confidence and reasoning."

// Config holds client configuration
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Client calls the chat-completions endpoint and parses trade signals out
// of the model's reply. It implements signal.Analyzer.
type Client struct {
	http  *resty.Client
	model string
	log   zerolog.Logger
}

// New creates a new OpenRouter client
func New(cfg Config, log zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	http := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetAuthToken(cfg.APIKey).
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout).
		SetRetryCount(3).
		SetRetryWaitTime(2 * time.Second).
		SetRetryMaxWaitTime(10 * time.Second)

	return &Client{
		http:  http,
		model: cfg.Model,
		log:   log.With().Str("component", "openrouter").Logger(),
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Analyze implements signal.Analyzer
func (c *Client) Analyze(ctx context.Context, req signal.AnalyzeRequest) (signal.Result, error) {
	prompt, err := buildPrompt(req)
	if err != nil {
		return signal.Result{}, fmt.Errorf("failed to build prompt: %w", err)
	}

	body := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: 0,
	}

	var parsed chatResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&parsed).
		Post("/chat/completions")
	if err != nil {
		return signal.Result{}, fmt.Errorf("chat completion request failed: %w", err)
	}
	if resp.IsError() {
		c.log.Error().Int("status", resp.StatusCode()).Str("body", resp.String()).Msg("Chat completion rejected")
		return signal.Result{}, fmt.Errorf("chat completion returned status %d", resp.StatusCode())
	}
	if parsed.Error != nil {
		return signal.Result{}, fmt.Errorf("chat completion error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return signal.Result{}, fmt.Errorf("chat completion returned no choices")
	}

	result, err := parseContent(parsed.Choices[0].Message.Content)
	if err != nil {
		c.log.Error().Err(err).Msg("Unparseable model reply")
		return signal.Result{}, err
	}

	c.log.Info().
		Str("model", c.model).
		Str("symbol", req.Symbol).
		Str("signal", result.Signal).
		Msg("Signal analyzed")
	return result, nil
}

// buildPrompt serializes the market snapshot into the user message
func buildPrompt(req signal.AnalyzeRequest) (string, error) {
	snapshot, err := json.Marshal(req)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(
		"Analyze the following %s %s market snapshot and propose a trade signal:\n%s",
		req.Symbol, req.Timeframe, snapshot,
	), nil
}

// parseContent extracts the JSON signal object from the model reply.
// Models occasionally wrap the object in a markdown code fence.
func parseContent(content string) (signal.Result, error) {
	trimmed := strings.TrimSpace(content)
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)

	var result signal.Result
	if err := json.Unmarshal([]byte(trimmed), &result); err != nil {
		return signal.Result{}, fmt.Errorf("model reply is not a signal object: %w", err)
	}
	if result.Signal == "" {
		return signal.Result{}, fmt.Errorf("model reply is missing the signal field")
	}
	return result, nil
}
