package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tradievoice/internal/common/config"
	apperrors "tradievoice/internal/common/errors"
	"tradievoice/internal/common/logger"
	"tradievoice/internal/common/observability"
	"tradievoice/internal/profile"
	"tradievoice/internal/quote"
)

// QuoteExtractor turns raw audio into structured quote data.
type QuoteExtractor interface {
	Extract(ctx context.Context, audio []byte, filename string) (*quote.QuoteData, error)
}

// InvoiceRenderer turns a quote and profile into PDF bytes.
type InvoiceRenderer interface {
	Render(q *quote.QuoteData, p *profile.BusinessProfile) ([]byte, error)
}

// UpsellNotifier alerts the owner about large quotes. May be nil.
type UpsellNotifier interface {
	NotifyUpsell(q *quote.QuoteData, p *profile.BusinessProfile)
}

// Server wires the HTTP surface to the domain services.
type Server struct {
	router    *mux.Router
	cfg       config.ServerConfig
	extractor QuoteExtractor
	renderer  InvoiceRenderer
	store     profile.Store
	notifier  UpsellNotifier
	obs       *observability.Observability
	logger    logger.Logger
}

func NewServer(
	cfg config.ServerConfig,
	extractor QuoteExtractor,
	renderer InvoiceRenderer,
	store profile.Store,
	notifier UpsellNotifier,
	obs *observability.Observability,
	log logger.Logger,
) *Server {
	s := &Server{
		router:    mux.NewRouter(),
		cfg:       cfg,
		extractor: extractor,
		renderer:  renderer,
		store:     store,
		notifier:  notifier,
		obs:       obs,
		logger:    log.WithFields(map[string]interface{}{"component": "api-server"}),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/transcribe", s.handleTranscribe).Methods(http.MethodPost)
	api.HandleFunc("/profile", s.handleGetProfile).Methods(http.MethodGet)
	api.HandleFunc("/profile", s.handleSaveProfile).Methods(http.MethodPost)
	api.HandleFunc("/generate-invoice", s.handleGenerateInvoice).Methods(http.MethodPost)

	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	s.router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// HTTPServer builds the net/http server with the configured timeouts.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         s.cfg.Address,
		Handler:      s.router,
		ReadTimeout:  time.Duration(s.cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.cfg.WriteTimeout) * time.Second,
	}
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func (s *Server) writeError(w http.ResponseWriter, operation string, err error) {
	status := apperrors.HTTPStatus(err)
	resp := errorResponse{Error: err.Error()}
	if stdErr := apperrors.AsStandardError(err); stdErr != nil {
		resp.Error = stdErr.Message
		resp.Code = string(stdErr.Code)
	}

	s.logger.Error("request failed", map[string]interface{}{
		"operation": operation,
		"status":    status,
		"error":     err.Error(),
	})
	s.writeJSON(w, status, resp)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", map[string]interface{}{"error": err.Error()})
	}
}

func (s *Server) record(ctx context.Context, operation string, start time.Time, err error) {
	if s.obs == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	s.obs.RecordRequest(ctx, operation, status)
	s.obs.RecordDuration(ctx, operation, time.Since(start), status)
}
