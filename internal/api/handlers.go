package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	apperrors "tradievoice/internal/common/errors"
	"tradievoice/internal/profile"
	"tradievoice/internal/quote"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleTranscribe accepts a multipart audio upload, runs the voice
// pipeline, and returns the extracted quote as JSON.
func (s *Server) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()

	maxBytes := s.cfg.MaxAudioBytes
	if maxBytes <= 0 {
		maxBytes = 25 << 20
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		wrapped := apperrors.NewInvalidRequestError("multipart field 'file' is required")
		s.record(ctx, "transcribe", start, wrapped)
		s.writeError(w, "transcribe", wrapped)
		return
	}
	defer file.Close()

	audio, err := io.ReadAll(file)
	if err != nil {
		wrapped := apperrors.NewInvalidRequestError("failed to read uploaded audio")
		s.record(ctx, "transcribe", start, wrapped)
		s.writeError(w, "transcribe", wrapped)
		return
	}
	if len(audio) == 0 {
		wrapped := apperrors.NewInvalidRequestError("uploaded audio is empty")
		s.record(ctx, "transcribe", start, wrapped)
		s.writeError(w, "transcribe", wrapped)
		return
	}

	q, err := s.extractor.Extract(ctx, audio, header.Filename)
	if err != nil {
		s.record(ctx, "transcribe", start, err)
		s.writeError(w, "transcribe", err)
		return
	}

	s.maybeNotifyUpsell(q)

	s.record(ctx, "transcribe", start, nil)
	s.writeJSON(w, http.StatusOK, q)
}

func (s *Server) maybeNotifyUpsell(q *quote.QuoteData) {
	if s.notifier == nil || !q.UpsellOpportunity {
		return
	}

	// Delivery must not delay or fail the response. The notifier derives
	// its own timeout context, so the request context is not passed in.
	go func() {
		p, err := s.store.Load(context.Background())
		if err != nil {
			p = profile.DefaultProfile()
		}
		s.notifier.NotifyUpsell(q, p)
	}()
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()

	p, err := s.store.Load(ctx)
	if err != nil {
		s.record(ctx, "get-profile", start, err)
		s.writeError(w, "get-profile", err)
		return
	}

	s.record(ctx, "get-profile", start, nil)
	s.writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleSaveProfile(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()

	var p profile.BusinessProfile
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		wrapped := apperrors.NewInvalidRequestError("request body is not a valid profile")
		s.record(ctx, "save-profile", start, wrapped)
		s.writeError(w, "save-profile", wrapped)
		return
	}

	if err := s.store.Save(ctx, &p); err != nil {
		s.record(ctx, "save-profile", start, err)
		s.writeError(w, "save-profile", err)
		return
	}

	s.record(ctx, "save-profile", start, nil)
	s.writeJSON(w, http.StatusOK, map[string]string{"message": "Profile saved successfully"})
}

type generateInvoiceRequest struct {
	QuoteData *quote.QuoteData `json:"quote_data"`
}

// handleGenerateInvoice renders a PDF from edited quote data and the stored
// profile, and streams it back as a download.
func (s *Server) handleGenerateInvoice(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()

	var req generateInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		wrapped := apperrors.NewInvalidRequestError("request body is not valid JSON")
		s.record(ctx, "generate-invoice", start, wrapped)
		s.writeError(w, "generate-invoice", wrapped)
		return
	}
	if req.QuoteData == nil {
		wrapped := apperrors.NewInvalidRequestError("quote_data is required")
		s.record(ctx, "generate-invoice", start, wrapped)
		s.writeError(w, "generate-invoice", wrapped)
		return
	}
	req.QuoteData.Normalize()

	p, err := s.store.Load(ctx)
	if err != nil {
		s.record(ctx, "generate-invoice", start, err)
		s.writeError(w, "generate-invoice", err)
		return
	}

	pdf, err := s.renderer.Render(req.QuoteData, p)
	if err != nil {
		s.record(ctx, "generate-invoice", start, err)
		s.writeError(w, "generate-invoice", err)
		return
	}

	filename := fmt.Sprintf("invoice_%s.pdf", uuid.NewString())
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(pdf); err != nil {
		s.logger.Error("failed to stream invoice", map[string]interface{}{"error": err.Error()})
	}

	s.record(ctx, "generate-invoice", start, nil)
}
