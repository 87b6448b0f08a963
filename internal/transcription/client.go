// Package transcription is the client for the speech-to-text collaborator.
package transcription

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	apperrors "tradievoice/internal/common/errors"
	"tradievoice/internal/common/httpx"
	"tradievoice/internal/common/logger"
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
		logger:  log.WithFields(map[string]interface{}{"component": "transcription"}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type transcriptionResponse struct {
	Text string `json:"text"`
}

// Transcribe uploads the audio and returns the transcript. One call, one
// upload: a failed call is surfaced immediately, never replayed. The audio
// is spooled to a temp file for the duration of the call and removed on
// every exit path.
func (c *Client) Transcribe(ctx context.Context, audio []byte, filename string) (string, error) {
	if c.apiKey == "" {
		return "", apperrors.NewMissingCredentialError("OPENAI_API_KEY")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	tempPath, cleanup, err := spoolAudio(audio, filename)
	if err != nil {
		return "", apperrors.NewTranscriptionFailedError(err)
	}
	defer cleanup()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", filepath.Base(tempPath))
	if err != nil {
		return "", apperrors.NewTranscriptionFailedError(fmt.Errorf("creating form file: %w", err))
	}

	f, err := os.Open(tempPath)
	if err != nil {
		return "", apperrors.NewTranscriptionFailedError(fmt.Errorf("opening spooled audio: %w", err))
	}
	if _, err = io.Copy(part, f); err != nil {
		f.Close()
		return "", apperrors.NewTranscriptionFailedError(fmt.Errorf("copying audio: %w", err))
	}
	f.Close()

	if err = writer.WriteField("model", c.model); err != nil {
		return "", apperrors.NewTranscriptionFailedError(fmt.Errorf("writing model field: %w", err))
	}

	if err = writer.Close(); err != nil {
		return "", apperrors.NewTranscriptionFailedError(fmt.Errorf("closing writer: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/audio/transcriptions", body)
	if err != nil {
		return "", apperrors.NewTranscriptionFailedError(fmt.Errorf("creating request: %w", err))
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", apperrors.NewTranscriptionTimeoutError()
		}
		return "", apperrors.NewTranscriptionFailedError(fmt.Errorf("sending request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", apperrors.NewTranscriptionFailedError(
			fmt.Errorf("transcription API error %d: %s", resp.StatusCode, string(respBody)))
	}

	var result transcriptionResponse
	if err = json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", apperrors.NewTranscriptionFailedError(fmt.Errorf("decoding response: %w", err))
	}

	c.logger.Debug("transcript received", map[string]interface{}{
		"chars": len(result.Text),
	})

	return result.Text, nil
}

// spoolAudio writes the upload to a uuid-named temp file and returns a
// cleanup func that removes it. Cleanup must run on all exit paths.
func spoolAudio(audio []byte, filename string) (string, func(), error) {
	ext := filepath.Ext(filename)
	if ext == "" {
		ext = ".webm"
	}

	path := filepath.Join(os.TempDir(), fmt.Sprintf("audio-%s%s", uuid.New().String(), ext))
	if err := os.WriteFile(path, audio, 0o600); err != nil {
		return "", nil, fmt.Errorf("spooling audio: %w", err)
	}

	cleanup := func() {
		_ = os.Remove(path)
	}
	return path, cleanup, nil
}
