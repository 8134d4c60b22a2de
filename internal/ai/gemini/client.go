// Package gemini implements ai.Analyzer on the Google Generative Language REST API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/go-openapi/strfmt"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/light11014/Moodmate-Backend/internal/ai"
	"github.com/light11014/Moodmate-Backend/internal/model"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultModel   = "gemini-1.5-flash"
)

// Options configures a Client.
type Options struct {
	APIKey      string
	Model       string
	BaseURL     string
	Timeout     time.Duration
	MaxRetries  int
	BaseBackoff time.Duration
}

// Client calls generateContent for every Analyzer operation.
type Client struct {
	client      *resty.Client
	model       string
	maxRetries  int
	baseBackoff time.Duration
	log         zerolog.Logger
}

type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text,omitempty"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature,omitempty"`
	CandidateCount  int     `json:"candidateCount,omitempty"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
}

type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("gemini status %d: %s", e.StatusCode, e.Message)
}

// New creates a Client. APIKey is required.
func New(opts Options, log zerolog.Logger) (*Client, error) {
	if opts.APIKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = defaultBaseURL
	}
	m := strings.TrimSpace(opts.Model)
	if m == "" {
		m = defaultModel
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.BaseBackoff <= 0 {
		opts.BaseBackoff = 500 * time.Millisecond
	}

	c := resty.New().
		SetBaseURL(base).
		SetHeader("Content-Type", "application/json").
		SetHeader("x-goog-api-key", opts.APIKey).
		SetTimeout(opts.Timeout)

	return &Client{client: c, model: m, maxRetries: opts.MaxRetries, baseBackoff: opts.BaseBackoff, log: log}, nil
}

// retryable reports whether err is worth another attempt.
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode == http.StatusTooManyRequests || se.StatusCode >= 500
	}
	return true
}

// generate sends prompt and returns the concatenated text of the first candidate,
// retrying transient failures with exponential backoff.
func (c *Client) generate(ctx context.Context, call, prompt string) (string, error) {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = c.baseBackoff
	exp.Multiplier = 2
	exp.MaxInterval = 5 * time.Second
	exp.Reset()

	attempts := 0
	for {
		text, err := c.generateOnce(ctx, prompt)
		if err == nil {
			return text, nil
		}
		if !retryable(err) || attempts >= c.maxRetries {
			return "", fmt.Errorf("gemini %s: %w", call, err)
		}
		attempts++
		wait := exp.NextBackOff()
		c.log.Warn().Err(err).Str("call", call).Int("attempt", attempts).Dur("wait", wait).Msg("retrying gemini request")
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return "", fmt.Errorf("gemini %s: %w", call, ctx.Err())
		}
	}
}

func (c *Client) generateOnce(ctx context.Context, prompt string) (string, error) {
	reqBody := generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: prompt}}}},
		GenerationConfig: &generationConfig{
			Temperature:    0.7,
			CandidateCount: 1,
		},
	}
	var out generateResponse
	var apiErr apiError
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(&reqBody).
		SetResult(&out).
		SetError(&apiErr).
		ForceContentType("application/json").
		SetPathParam("model", c.model).
		Post("/models/{model}:generateContent")
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", fmt.Errorf("gemini request: %w", err)
	}
	if resp.IsError() {
		msg := apiErr.Error.Message
		if msg == "" {
			msg = resp.String()
		}
		return "", &StatusError{StatusCode: resp.StatusCode(), Message: msg}
	}

	if len(out.Candidates) == 0 {
		return "", errors.New("gemini returned no candidates")
	}
	var sb strings.Builder
	for _, p := range out.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", errors.New("gemini returned empty text")
	}
	return text, nil
}

func (c *Client) GenerateSummary(ctx context.Context, diary string) (string, error) {
	return c.generate(ctx, "summary", ai.SummaryPrompt(diary))
}

func (c *Client) GenerateFeedback(ctx context.Context, diary string, style model.FeedbackStyle) (string, error) {
	return c.generate(ctx, "feedback", ai.FeedbackPrompt(diary, style))
}

func (c *Client) GeneratePeriodSummary(ctx context.Context, combined string, start, end strfmt.Date) (string, error) {
	return c.generate(ctx, "period_summary", ai.PeriodSummaryPrompt(combined, start, end))
}

func (c *Client) AnalyzeEmotionalPattern(ctx context.Context, combined string) (string, error) {
	return c.generate(ctx, "emotional_pattern", ai.EmotionalPatternPrompt(combined))
}

func (c *Client) AnalyzeGrowthPattern(ctx context.Context, combined string) (string, error) {
	return c.generate(ctx, "growth_pattern", ai.GrowthPatternPrompt(combined))
}

func (c *Client) GenerateRecommendations(ctx context.Context, combined string) (string, error) {
	return c.generate(ctx, "recommendations", ai.RecommendationsPrompt(combined))
}

// HealthPing fetches the model metadata; any 2xx means the key and model are usable.
func (c *Client) HealthPing(ctx context.Context) error {
	resp, err := c.client.R().
		SetContext(ctx).
		SetPathParam("model", c.model).
		Get("/models/{model}")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return &StatusError{StatusCode: resp.StatusCode(), Message: resp.String()}
	}
	return nil
}
