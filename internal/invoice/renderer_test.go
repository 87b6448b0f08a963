package invoice

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "tradievoice/internal/common/errors"
	"tradievoice/internal/common/logger"
	"tradievoice/internal/profile"
	"tradievoice/internal/quote"
)

func testQuote() *quote.QuoteData {
	return &quote.QuoteData{
		CustomerName: "John Smith",
		Items: []quote.LineItem{
			{Description: "Labour - 8 hours", Quantity: 8, UnitPrice: 75, Total: 600},
			{Description: "Materials", Quantity: 1, UnitPrice: 500, Total: 500},
		},
		TotalAmount: 1100,
		Notes:       "Payment due within 14 days.",
	}
}

func tinyPNGBase64(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 227, G: 87, B: 171, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestRenderer_ProducesPDF(t *testing.T) {
	r := NewRenderer(logger.NewTestLogger(t))
	p := &profile.BusinessProfile{
		BusinessName:  "Sparky's Electrical",
		ABN:           "51 824 753 556",
		GSTRegistered: true,
		Email:         "jobs@sparkys.com.au",
	}

	out, err := r.Render(testQuote(), p)

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")), "output should start with a PDF header")
	assert.Greater(t, len(out), 1000)
}

func TestRenderer_NonGSTProfile(t *testing.T) {
	r := NewRenderer(logger.NewTestLogger(t))
	p := &profile.BusinessProfile{BusinessName: "Cash Job Constructions"}

	out, err := r.Render(testQuote(), p)

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestRenderer_NilProfileUsesDefaults(t *testing.T) {
	r := NewRenderer(logger.NewTestLogger(t))

	out, err := r.Render(testQuote(), nil)

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestRenderer_NilQuoteRejected(t *testing.T) {
	r := NewRenderer(logger.NewTestLogger(t))

	_, err := r.Render(nil, profile.DefaultProfile())

	require.Error(t, err)
	stdErr := apperrors.AsStandardError(err)
	require.NotNil(t, stdErr)
	assert.Equal(t, apperrors.ErrCodeInvalidRequest, stdErr.Code)
}

func TestRenderer_EmptyItemsStillRenders(t *testing.T) {
	r := NewRenderer(logger.NewTestLogger(t))
	q := &quote.QuoteData{CustomerName: "Jane"}

	out, err := r.Render(q, profile.DefaultProfile())

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestRenderer_ValidLogoEmbedded(t *testing.T) {
	r := NewRenderer(logger.NewTestLogger(t))
	p := &profile.BusinessProfile{
		BusinessName: "Sparky's Electrical",
		LogoBase64:   tinyPNGBase64(t),
	}

	out, err := r.Render(testQuote(), p)

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestRenderer_DataURILogoAccepted(t *testing.T) {
	r := NewRenderer(logger.NewTestLogger(t))
	p := &profile.BusinessProfile{
		BusinessName: "Sparky's Electrical",
		LogoBase64:   "data:image/png;base64," + tinyPNGBase64(t),
	}

	out, err := r.Render(testQuote(), p)

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestRenderer_CorruptLogoFallsBack(t *testing.T) {
	tests := []struct {
		name string
		logo string
	}{
		{"not base64", "!!!not-base64!!!"},
		{"base64 of garbage", base64.StdEncoding.EncodeToString([]byte("definitely not an image"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRenderer(logger.NewTestLogger(t))
			p := &profile.BusinessProfile{BusinessName: "Sparky's Electrical", LogoBase64: tt.logo}

			out, err := r.Render(testQuote(), p)

			require.NoError(t, err)
			assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
		})
	}
}
