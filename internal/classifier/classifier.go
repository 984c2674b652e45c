// Package classifier calls the external AI text-classification backend for
// a second toxicity opinion. The client performs no retries; retry policy
// belongs to the moderation coordinator. A circuit breaker fails calls
// fast while the backend is persistently down.
package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sony/gobreaker"

	"github.com/filmpulse/arbiter/pkg/formatting"
)

const generatePath = "/api/generate"

const defaultRationale = "no rationale provided"

// Result is a successful classification: a toxicity score in [0, 1], the
// backend's binary call, and its free-text rationale.
type Result struct {
	Score     float64
	Toxic     bool
	Rationale string
}

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
	MaxTokens   int     `json:"max_tokens"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// verdictPayload is the classification fragment embedded in the model's
// response text. Missing fields keep their zero values; Reason gets a
// placeholder downstream.
type verdictPayload struct {
	ToxicityScore float64 `json:"toxicity_score"`
	IsToxic       bool    `json:"is_toxic"`
	Reason        string  `json:"reason"`
}

// Client calls the classification backend over HTTP.
type Client struct {
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
	url     string
	model   string
	options generateOptions
	logger  *slog.Logger
}

// New creates a Client from the given configuration. The configured
// timeout bounds every classification attempt.
func New(cfg *Config, logger *slog.Logger) *Client {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name: "classifier",
	})

	return &Client{
		http:    &http.Client{Timeout: cfg.TimeoutDuration()},
		breaker: breaker,
		url:     strings.TrimSuffix(cfg.BaseURL, "/") + generatePath,
		model:   cfg.Model,
		options: generateOptions{
			Temperature: cfg.Temperature,
			TopP:        cfg.TopP,
			MaxTokens:   cfg.MaxTokens,
		},
		logger: logger.With("system", "classifier"),
	}
}

// Classify submits text to the backend and returns its verdict. Failures
// are always observable: ErrBackendUnavailable or ErrMalformedResponse
// with the cause attached, never a fabricated score.
func (c *Client) Classify(ctx context.Context, text string) (*Result, error) {
	out, err := c.breaker.Execute(func() (any, error) {
		return c.classify(ctx, text)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
		}
		return nil, err
	}

	return out.(*Result), nil
}

func (c *Client) classify(ctx context.Context, text string) (*Result, error) {
	body, err := json.Marshal(generateRequest{
		Model:   c.model,
		Prompt:  buildPrompt(text),
		Stream:  false,
		Options: c.options,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: status %d", ErrBackendUnavailable, resp.StatusCode)
	}

	var envelope generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("%w: decode envelope: %w", ErrMalformedResponse, err)
	}

	payload, err := formatting.Parse[verdictPayload](envelope.Response)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}

	result := &Result{
		Score:     clamp(payload.ToxicityScore),
		Toxic:     payload.IsToxic,
		Rationale: payload.Reason,
	}
	if result.Rationale == "" {
		result.Rationale = defaultRationale
	}

	c.logger.Debug("text classified", "score", result.Score, "toxic", result.Toxic)
	return result, nil
}

func buildPrompt(text string) string {
	return fmt.Sprintf(
		"You are a content moderator for a movie review platform. "+
			"Rate the toxicity of the review below on a 0.0 to 1.0 scale. "+
			"Respond with a single JSON object of the form "+
			`{"toxicity_score": <float>, "is_toxic": <bool>, "reason": "<short explanation>"} `+
			"and nothing else.\n\nReview:\n%s",
		text,
	)
}

func clamp(score float64) float64 {
	return min(1.0, max(0.0, score))
}
