// Package api provides the HTTP REST API server for newspulse.
//
// It exposes endpoints for managing holdings, replacing and refreshing the
// news feed, reading the portfolio-relevant analysis, toggling news alerts,
// and a WebSocket stream of dashboard events.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/seenimoa/newspulse/internal/config"
	"github.com/seenimoa/newspulse/internal/dashboard"
	"github.com/seenimoa/newspulse/internal/logger"
	"github.com/seenimoa/newspulse/internal/portfolio"
	"github.com/seenimoa/newspulse/pkg/models"
	"github.com/seenimoa/newspulse/pkg/utils"
)

// Version is reported by the health endpoint. It is set by the binary.
var Version = "dev"

// Server is the HTTP API server.
type Server struct {
	router      chi.Router
	cfg         *config.Config
	svc         *dashboard.Service
	wsHub       *WSHub
	log         logrus.FieldLogger
	unsubscribe func()
}

// NewServer creates a configured API server with all routes and middleware.
// Dashboard events are relayed to WebSocket clients.
func NewServer(cfg *config.Config, svc *dashboard.Service, log logrus.FieldLogger) *Server {
	if log == nil {
		log = logger.Log
	}
	srv := &Server{
		cfg:   cfg,
		svc:   svc,
		wsHub: NewWSHub(),
		log:   log.WithField("component", "api"),
	}
	srv.unsubscribe = svc.Subscribe(func(ev dashboard.Event) {
		srv.wsHub.Broadcast(WSMessage{Type: ev.Type, Data: ev.Data})
	})
	srv.router = srv.buildRouter()
	return srv
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// Close detaches the server from the dashboard and stops the hub.
func (s *Server) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
	s.wsHub.Stop()
}

// ListenAndServe starts the HTTP server and blocks until SIGINT/SIGTERM,
// then shuts down gracefully.
func (s *Server) ListenAndServe(addr string) error {
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start WebSocket hub
	go s.wsHub.Run()
	defer s.Close()

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(done)

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", addr).Info("HTTP server listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case <-done:
	}
	s.log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	return httpSrv.Shutdown(ctx)
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS
	origins := []string{"*"}
	if len(s.cfg.API.CORSOrigins) > 0 {
		origins = s.cfg.API.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", s.handleHealth)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Health (also available at /health)
		r.Get("/health", s.handleHealth)

		// Holdings
		r.Get("/holdings", s.handleListHoldings)
		r.Post("/holdings", s.handleAddHolding)
		r.Delete("/holdings/{id}", s.handleRemoveHolding)

		// News
		r.Get("/news", s.handleGetNews)
		r.Put("/news", s.handleSetNews)
		r.Post("/news/refresh", s.handleRefresh)
		r.Get("/news/relevant", s.handleRelevantNews)

		// Analysis
		r.Get("/analysis", s.handleAnalysis)
		r.Get("/state", s.handleState)

		// Alerts
		r.Get("/alerts", s.handleGetAlerts)
		r.Put("/alerts", s.handleSetAlerts)

		// Configuration
		r.Get("/config", s.handleGetConfig)
		r.Get("/config/keys", s.handleGetConfigKeys)

		// WebSocket
		r.Get("/ws", s.handleWebSocket)
	})

	return r
}

// ============================================================
// Request / Response types
// ============================================================

// APIResponse is the standard JSON envelope.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// FormValue is a form field that may arrive as a JSON string or number.
// Either way it is kept as text so the tracker applies its own parsing.
type FormValue string

// UnmarshalJSON implements json.Unmarshaler.
func (v *FormValue) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*v = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = FormValue(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", b)
	}
	*v = FormValue(n.String())
	return nil
}

// AddHoldingRequest is the body of POST /api/v1/holdings.
type AddHoldingRequest struct {
	Symbol   string    `json:"symbol"`
	Quantity FormValue `json:"quantity"`
	Price    FormValue `json:"price"`
}

// HoldingView is a holding with its invested value.
type HoldingView struct {
	models.Holding
	Value        decimal.Decimal `json:"value"`
	ValueDisplay string          `json:"value_display"`
}

// AnalysisResponse is returned by GET /api/v1/analysis.
type AnalysisResponse struct {
	Analyses           []models.Analysis          `json:"analyses"`
	PortfolioSentiment *models.PortfolioSentiment `json:"portfolio_sentiment"`
}

// AlertsRequest is the body of PUT /api/v1/alerts.
type AlertsRequest struct {
	Enabled *bool `json:"enabled"`
}

// ============================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"status":        "ok",
			"version":       Version,
			"market_status": utils.MarketStatus(),
			"time_ist":      utils.FormatDateTimeIST(utils.NowIST()),
			"ws_clients":    s.wsHub.ClientCount(),
		},
	})
}

func (s *Server) handleListHoldings(w http.ResponseWriter, r *http.Request) {
	holdings := s.svc.Tracker().Holdings()
	views := make([]HoldingView, len(holdings))
	for i, h := range holdings {
		views[i] = newHoldingView(h)
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: views})
}

func (s *Server) handleAddHolding(w http.ResponseWriter, r *http.Request) {
	var req AddHoldingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	h, err := s.svc.AddHolding(req.Symbol, string(req.Quantity), string(req.Price))
	if err != nil {
		if errors.Is(err, portfolio.ErrValidationFailed) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, APIResponse{Success: true, Data: newHoldingView(h)})
}

func (s *Server) handleRemoveHolding(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid holding id")
		return
	}
	if !s.svc.RemoveHolding(id) {
		writeError(w, http.StatusNotFound, "holding not found")
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: map[string]string{"removed": id.String()}})
}

func (s *Server) handleGetNews(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: s.svc.Tracker().News()})
}

func (s *Server) handleSetNews(w http.ResponseWriter, r *http.Request) {
	var items []models.NewsItem
	if err := json.NewDecoder(r.Body).Decode(&items); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	s.svc.SetNewsFeed(items)
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: s.svc.State()})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	err := s.svc.Refresh(r.Context())
	switch {
	case errors.Is(err, dashboard.ErrRefreshInProgress):
		writeError(w, http.StatusConflict, err.Error())
	case err != nil:
		writeError(w, http.StatusBadGateway, "refresh failed: "+err.Error())
	default:
		writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: s.svc.State()})
	}
}

func (s *Server) handleRelevantNews(w http.ResponseWriter, r *http.Request) {
	derived := s.svc.Tracker().DerivedState()
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: derived.FilteredNews})
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	derived := s.svc.Tracker().DerivedState()
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: AnalysisResponse{
			Analyses:           derived.Analyses,
			PortfolioSentiment: derived.PortfolioSentiment,
		},
	})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: s.svc.State()})
}

func (s *Server) handleGetAlerts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    map[string]bool{"enabled": s.svc.AlertsEnabled()},
	})
}

func (s *Server) handleSetAlerts(w http.ResponseWriter, r *http.Request) {
	var req AlertsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Enabled == nil {
		writeError(w, http.StatusBadRequest, "enabled is required")
		return
	}
	s.svc.SetAlerts(*req.Enabled)
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    map[string]bool{"enabled": s.svc.AlertsEnabled()},
	})
}

// handleGetConfig returns the running configuration. API keys are excluded
// via json:"-" tags.
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: s.cfg})
}

// handleGetConfigKeys returns masked API key status.
func (s *Server) handleGetConfigKeys(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: config.CheckAPIKeys(s.cfg)})
}

func newHoldingView(h models.Holding) HoldingView {
	v := h.Value()
	return HoldingView{Holding: h, Value: v, ValueDisplay: utils.FormatINR(v)}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.WithError(err).Error("failed to write JSON response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   msg,
	})
}
