package extraction

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "tradievoice/internal/common/errors"
	"tradievoice/internal/common/logger"
)

// completionServer returns a test server that replies with the given content
// as the single chat completion choice.
func completionServer(t *testing.T, content string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)

		var req map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o", req["model"])
		assert.Equal(t, map[string]interface{}{"type": "json_object"}, req["response_format"])

		resp := map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]interface{}{"content": content}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
}

func newTestClient(t *testing.T, serverURL string) *Client {
	return NewClient("test-key", "gpt-4o", 5*time.Second, logger.NewTestLogger(t),
		WithBaseURL(serverURL))
}

func TestExtractQuote_Success(t *testing.T) {
	content := `{
		"customer_name": "John Doe",
		"items": [
			{"description": "Install new lighting fixtures", "quantity": 5, "unit_price": 120.00, "total": 600.00},
			{"description": "Rewire living room", "quantity": 1, "unit_price": 500.00, "total": 500.00}
		],
		"total_amount": 1100.00,
		"notes": "Work completed on time.",
		"upsell_opportunity": false
	}`
	server := completionServer(t, content)
	defer server.Close()

	c := newTestClient(t, server.URL)
	q, err := c.ExtractQuote(context.Background(), "install five lights and rewire the living room for john doe")

	require.NoError(t, err)
	assert.Equal(t, "John Doe", q.CustomerName)
	require.Len(t, q.Items, 2)
	assert.Equal(t, 5.0, q.Items[0].Quantity)
	assert.InDelta(t, 1100.00, q.TotalAmount, 0.0001)
	assert.False(t, q.UpsellOpportunity)
}

func TestExtractQuote_MarkdownFencedResponse(t *testing.T) {
	content := "```json\n{\"customer_name\": \"Jane\", \"items\": [], \"total_amount\": 0, \"notes\": \"\", \"upsell_opportunity\": false}\n```"
	server := completionServer(t, content)
	defer server.Close()

	c := newTestClient(t, server.URL)
	q, err := c.ExtractQuote(context.Background(), "anything")

	require.NoError(t, err)
	assert.Equal(t, "Jane", q.CustomerName)
}

func TestExtractQuote_DefaultsFillAbsentFields(t *testing.T) {
	server := completionServer(t, `{"notes": "small job"}`)
	defer server.Close()

	c := newTestClient(t, server.URL)
	q, err := c.ExtractQuote(context.Background(), "tiny job")

	require.NoError(t, err)
	assert.Equal(t, "Valued Customer", q.CustomerName)
	assert.NotNil(t, q.Items)
	assert.Empty(t, q.Items)
	assert.Zero(t, q.TotalAmount)
	assert.Equal(t, "small job", q.Notes)
	assert.False(t, q.UpsellOpportunity)
}

func TestExtractQuote_UpsellRecomputedFromItems(t *testing.T) {
	tests := []struct {
		name      string
		itemTotal float64
		modelFlag bool
		want      bool
	}{
		{"over threshold forced true", 10000.01, false, true},
		{"at threshold forced false", 10000.00, true, false},
		{"under threshold forced false", 500.00, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := fmt.Sprintf(`{
				"customer_name": "Big Job Pty Ltd",
				"items": [{"description": "Works", "quantity": 1, "unit_price": %[1]f, "total": %[1]f}],
				"total_amount": %[1]f,
				"upsell_opportunity": %t
			}`, tt.itemTotal, tt.modelFlag)
			server := completionServer(t, content)
			defer server.Close()

			c := newTestClient(t, server.URL)
			q, err := c.ExtractQuote(context.Background(), "big job")

			require.NoError(t, err)
			assert.Equal(t, tt.want, q.UpsellOpportunity)
		})
	}
}

func TestExtractQuote_ProseResponseIsParseError(t *testing.T) {
	server := completionServer(t, "G'day! Happy to help with that quote, here's what I reckon...")
	defer server.Close()

	c := newTestClient(t, server.URL)
	_, err := c.ExtractQuote(context.Background(), "anything")

	require.Error(t, err)
	stdErr := apperrors.AsStandardError(err)
	assert.Equal(t, apperrors.ErrCodeResponseParseFailed, stdErr.Code)
}

func TestExtractQuote_WrongTypesAreParseErrors(t *testing.T) {
	server := completionServer(t, `{"customer_name": "Jo", "items": [{"description": "x", "quantity": "five"}]}`)
	defer server.Close()

	c := newTestClient(t, server.URL)
	_, err := c.ExtractQuote(context.Background(), "anything")

	require.Error(t, err)
	stdErr := apperrors.AsStandardError(err)
	assert.Equal(t, apperrors.ErrCodeResponseParseFailed, stdErr.Code)
	assert.Contains(t, stdErr.Details, "quantity")
}

func TestExtractQuote_MissingCredential(t *testing.T) {
	c := NewClient("", "gpt-4o", time.Second, logger.NewNoOpLogger())
	_, err := c.ExtractQuote(context.Background(), "anything")

	stdErr := apperrors.AsStandardError(err)
	assert.Equal(t, apperrors.ErrCodeMissingCredential, stdErr.Code)
}

func TestExtractQuote_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"message": "quota exceeded"}}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	_, err := c.ExtractQuote(context.Background(), "anything")

	require.Error(t, err)
	stdErr := apperrors.AsStandardError(err)
	assert.Equal(t, apperrors.ErrCodeExtractionFailed, stdErr.Code)
}

// One call per transcript: a failing completion endpoint must see exactly
// one request, never a replay.
func TestExtractQuote_FailedCallIsNotReplayed(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{"permanent failure", http.StatusBadRequest},
		{"transient failure", http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attempts := 0
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				attempts++
				http.Error(w, "upstream failure", tt.status)
			}))
			defer server.Close()

			c := newTestClient(t, server.URL)
			_, err := c.ExtractQuote(context.Background(), "anything")

			require.Error(t, err)
			assert.Equal(t, 1, attempts)
		})
	}
}

func TestExtractQuote_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	c := NewClient("test-key", "gpt-4o", 20*time.Millisecond, logger.NewNoOpLogger(),
		WithBaseURL(server.URL))
	_, err := c.ExtractQuote(context.Background(), "anything")

	require.Error(t, err)
	stdErr := apperrors.AsStandardError(err)
	assert.Equal(t, apperrors.ErrCodeExtractionTimeout, stdErr.Code)
}

func TestStripMarkdownFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripMarkdownFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripMarkdownFences("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripMarkdownFences(`{"a":1}`))
}
