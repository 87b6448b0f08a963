package quote

import (
	"context"

	"tradievoice/internal/common/logger"
)

// Transcriber turns raw audio into plain text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, filename string) (string, error)
}

// Extractor turns a transcript into a structured quote.
type Extractor interface {
	ExtractQuote(ctx context.Context, transcript string) (*QuoteData, error)
}

// Service orchestrates the two collaborator calls for one dictation. The
// calls are sequential: extraction needs the transcript. There is no retry
// loop here and no caching; every dictation is a fresh round trip.
type Service struct {
	transcriber Transcriber
	extractor   Extractor
	logger      logger.Logger
}

func NewService(transcriber Transcriber, extractor Extractor, log logger.Logger) *Service {
	return &Service{
		transcriber: transcriber,
		extractor:   extractor,
		logger:      log.WithFields(map[string]interface{}{"component": "quote-service"}),
	}
}

// Extract runs transcription then structured extraction. Errors from either
// collaborator propagate with their category attached.
func (s *Service) Extract(ctx context.Context, audio []byte, filename string) (*QuoteData, error) {
	transcript, err := s.transcriber.Transcribe(ctx, audio, filename)
	if err != nil {
		s.logger.WithError(err).Error("transcription failed", map[string]interface{}{
			"audioBytes": len(audio),
		})
		return nil, err
	}

	s.logger.Debug("transcription complete", map[string]interface{}{
		"transcriptChars": len(transcript),
	})

	quoteData, err := s.extractor.ExtractQuote(ctx, transcript)
	if err != nil {
		s.logger.WithError(err).Error("quote extraction failed", nil)
		return nil, err
	}

	s.logger.Info("quote extracted", map[string]interface{}{
		"items":       len(quoteData.Items),
		"totalAmount": quoteData.TotalAmount,
		"upsell":      quoteData.UpsellOpportunity,
	})

	return quoteData, nil
}
