// Package extraction is the client for the structured-extraction collaborator.
package extraction

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "tradievoice/internal/common/errors"
	"tradievoice/internal/common/httpx"
	"tradievoice/internal/common/logger"
	"tradievoice/internal/quote"
)

type Client struct {
	apiKey  string
	baseURL string
	model   string
	timeout time.Duration
	http    *httpx.Client
	logger  logger.Logger
}

type Option func(*Client)

// WithBaseURL overrides the collaborator endpoint, used by tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = baseURL }
}

func NewClient(apiKey, model string, timeout time.Duration, log logger.Logger, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: "https://api.openai.com/v1",
		model:   model,
		timeout: timeout,
		http:    httpx.NewClient(timeout),
		logger:  log.WithFields(map[string]interface{}{"component": "extraction"}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	ResponseFormat struct {
		Type string `json:"type"`
	} `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// ExtractQuote sends the transcript to the completion collaborator and
// coerces its JSON reply into a QuoteData. One call per transcript, never
// replayed. The reply is untrusted input: it is schema-checked, defaults
// are filled, and the upsell flag is recomputed locally.
func (c *Client) ExtractQuote(ctx context.Context, transcript string) (*quote.QuoteData, error) {
	if c.apiKey == "" {
		return nil, apperrors.NewMissingCredentialError("OPENAI_API_KEY")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: fmt.Sprintf("Transcription: %s", transcript)},
		},
	}
	reqBody.ResponseFormat.Type = "json_object"

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, apperrors.NewExtractionFailedError(fmt.Errorf("marshaling request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, apperrors.NewExtractionFailedError(fmt.Errorf("creating request: %w", err))
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, apperrors.NewExtractionTimeoutError()
		}
		return nil, apperrors.NewExtractionFailedError(fmt.Errorf("sending request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, apperrors.NewExtractionFailedError(
			fmt.Errorf("completion API error %d: %s", resp.StatusCode, string(respBody)))
	}

	var result chatResponse
	if err = json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, apperrors.NewExtractionFailedError(fmt.Errorf("decoding response: %w", err))
	}

	if len(result.Choices) == 0 {
		return nil, apperrors.NewResponseParseError(fmt.Errorf("completion response has no choices"))
	}

	return c.coerce(result.Choices[0].Message.Content)
}

// coerce parses the model's reply into QuoteData with documented defaults.
func (c *Client) coerce(content string) (*quote.QuoteData, error) {
	content = stripMarkdownFences(content)

	if err := validateQuoteJSON(content); err != nil {
		c.logger.Warn("rejected collaborator response", map[string]interface{}{
			"reason": err.Error(),
		})
		return nil, apperrors.NewResponseParseError(err)
	}

	var q quote.QuoteData
	if err := json.Unmarshal([]byte(content), &q); err != nil {
		return nil, apperrors.NewResponseParseError(err)
	}

	q.Normalize()

	return &q, nil
}

// stripMarkdownFences removes ```json fences some models wrap JSON in.
func stripMarkdownFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
