package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	// DefaultBaseURL is the OpenRouter chat-completions endpoint.
	DefaultBaseURL = "https://openrouter.ai/api/v1"

	// DefaultTimeout bounds a single completion request.
	DefaultTimeout = 15 * time.Second

	// maxRetries caps retry attempts for transient failures (5xx, network).
	maxRetries = 2
)

// fallbackModels are tried, in order, after the configured model fails.
var fallbackModels = []string{
	"openai/gpt-4o-mini",
	"openai/gpt-3.5-turbo",
	"anthropic/claude-3-haiku",
}

// Client talks to the OpenRouter chat-completions API.
type Client struct {
	baseURL    string
	apiKey     string
	siteURL    string
	siteName   string
	timeout    time.Duration
	httpClient *http.Client
	logger     *logrus.Entry
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint, mainly for tests.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(url, "/") }
}

// WithTimeout overrides the per-request deadline.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
		c.httpClient.Timeout = d
	}
}

// WithAttribution sets the optional HTTP-Referer / X-Title headers OpenRouter
// uses for app attribution.
func WithAttribution(siteURL, siteName string) Option {
	return func(c *Client) {
		c.siteURL = siteURL
		c.siteName = siteName
	}
}

func NewClient(apiKey string, logger *logrus.Entry, opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		timeout: DefaultTimeout,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
			Transport: &http.Transport{
				MaxIdleConns:      4,
				IdleConnTimeout:   90 * time.Second,
				ForceAttemptHTTP2: true,
			},
		},
		logger: logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Request describes one description-generation call.
type Request struct {
	Model      string // primary model; fallbacks are tried after it
	Language   string // natural language for the description
	CommitType string
	Emoji      string
	Files      []string
	DiffSample string // truncated diff text for context
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
	TopP        float64       `json:"top_p"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Describe asks the API for a one-line commit description, walking the model
// fallback chain until one answers. Auth failures abort immediately: a bad
// key fails identically for every model.
func (c *Client) Describe(ctx context.Context, req Request) (string, error) {
	models := append([]string{req.Model}, fallbackModels...)

	var lastErr error
	for _, model := range models {
		if model == "" {
			continue
		}
		text, err := c.complete(ctx, model, req)
		if err == nil {
			return text, nil
		}
		lastErr = err

		if _, ok := err.(*AuthError); ok {
			return "", err
		}
		if ctx.Err() != nil {
			return "", lastErr
		}
		c.logger.WithError(err).WithField("model", model).Warn("Model failed, trying next")
	}
	return "", lastErr
}

// complete performs one chat-completions call with retry on transient errors.
func (c *Client) complete(ctx context.Context, model string, req Request) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt(req)},
			{Role: "user", Content: userPrompt(req)},
		},
		MaxTokens:   100,
		Temperature: 0.1,
		TopP:        0.9,
	})
	if err != nil {
		return "", &ParseError{Cause: err}
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<(attempt-1)) * time.Second
			select {
			case <-ctx.Done():
				return "", &TimeoutError{Timeout: c.timeout}
			case <-time.After(backoff):
			}
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
			c.baseURL+"/chat/completions", bytes.NewReader(payload))
		if err != nil {
			return "", err
		}
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
		httpReq.Header.Set("Content-Type", "application/json")
		if c.siteURL != "" {
			httpReq.Header.Set("HTTP-Referer", c.siteURL)
		}
		if c.siteName != "" {
			httpReq.Header.Set("X-Title", c.siteName)
		}

		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			if ctx.Err() != nil {
				return "", &TimeoutError{Timeout: c.timeout}
			}
			lastErr = err
			c.logger.WithError(err).WithField("attempt", attempt+1).Debug("Request failed, will retry")
			continue
		}

		body, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		resp.Body.Close()

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			if readErr != nil {
				return "", &ParseError{Cause: readErr}
			}
			return extractContent(body)

		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			return "", &AuthError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}

		case resp.StatusCode == http.StatusBadRequest:
			return "", &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}

		default:
			lastErr = &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
			c.logger.WithField("status", resp.StatusCode).WithField("attempt", attempt+1).
				Debug("Server error, will retry")
		}
	}
	return "", lastErr
}

func extractContent(body []byte) (string, error) {
	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", &ParseError{Cause: err}
	}
	if len(parsed.Choices) == 0 || strings.TrimSpace(parsed.Choices[0].Message.Content) == "" {
		return "", &ParseError{Cause: fmt.Errorf("no choices in response")}
	}
	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}

func systemPrompt(req Request) string {
	return fmt.Sprintf(
		"You are a git expert writing commit messages. Always use the type %q. "+
			"Reply with a single lowercase description under 60 characters, in %s, "+
			"with no emoji, no type prefix and no quotes.",
		req.CommitType, req.Language)
}

func userPrompt(req Request) string {
	var b strings.Builder
	b.WriteString("Changed files:\n")
	for _, f := range req.Files {
		b.WriteString("- ")
		b.WriteString(f)
		b.WriteByte('\n')
	}
	if req.DiffSample != "" {
		b.WriteString("\nDiff excerpt:\n")
		b.WriteString(req.DiffSample)
		b.WriteByte('\n')
	}
	b.WriteString("\nDescribe this change in one line.")
	return b.String()
}
