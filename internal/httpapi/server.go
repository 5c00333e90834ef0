// Package httpapi exposes the BoxBee services over a JSON REST API.
// Success bodies are wrapped in {success:true, data:{...}}, errors in
// {success:false, error:{message, errors?}}.
package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/noamseg/boxbee/internal/ai"
	"github.com/noamseg/boxbee/internal/auth"
	"github.com/noamseg/boxbee/internal/boxes"
	"github.com/noamseg/boxbee/internal/config"
	"github.com/noamseg/boxbee/internal/insights"
	"github.com/noamseg/boxbee/internal/logging"
	"github.com/noamseg/boxbee/internal/settings"
	"github.com/noamseg/boxbee/internal/store"
)

// Server wires the services into HTTP routes.
type Server struct {
	cfg      *config.Config
	store    *store.Store
	auth     *auth.Service
	boxes    *boxes.Service
	settings *settings.Service
	insights *insights.Aggregator
	coach    *ai.Coach

	httpServer *http.Server
}

// NewServer assembles the API server.
func NewServer(cfg *config.Config, st *store.Store, authSvc *auth.Service, boxSvc *boxes.Service, settingsSvc *settings.Service, agg *insights.Aggregator, coach *ai.Coach) *Server {
	s := &Server{
		cfg:      cfg,
		store:    st,
		auth:     authSvc,
		boxes:    boxSvc,
		settings: settingsSvc,
		insights: agg,
		coach:    coach,
	}
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           logRequests(s.routes()),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("POST /api/auth/signup", s.handleSignup)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	mux.HandleFunc("POST /api/auth/refresh", s.handleRefresh)
	mux.HandleFunc("GET /api/auth/me", s.requireAuth(s.handleMe))
	mux.HandleFunc("POST /api/auth/logout", s.requireAuth(s.handleLogout))

	mux.HandleFunc("POST /api/email/send-verification", s.requireAuth(s.handleSendVerification))
	mux.HandleFunc("POST /api/email/verify", s.handleVerifyEmail)

	mux.HandleFunc("POST /api/boxes", s.requireAuth(s.handleCreateBox))
	mux.HandleFunc("GET /api/boxes", s.requireAuth(s.handleListBoxes))
	mux.HandleFunc("GET /api/boxes/{id}", s.requireAuth(s.handleGetBox))
	mux.HandleFunc("PATCH /api/boxes/{id}", s.requireAuth(s.handleUpdateBox))
	mux.HandleFunc("DELETE /api/boxes/{id}", s.requireAuth(s.handleDeleteBox))
	mux.HandleFunc("POST /api/boxes/{id}/start", s.requireAuth(s.handleStartBox))
	mux.HandleFunc("POST /api/boxes/{id}/complete", s.requireAuth(s.handleCompleteBox))

	mux.HandleFunc("GET /api/insights/weekly", s.requireAuth(s.handleWeeklyStats))
	mux.HandleFunc("GET /api/insights/daily-breakdown", s.requireAuth(s.handleDailyBreakdown))
	mux.HandleFunc("GET /api/insights/ai-insights", s.requireAuth(s.handleAIInsights))

	mux.HandleFunc("POST /api/ai/estimate-duration", s.requireAuth(s.handleEstimateDuration))
	mux.HandleFunc("POST /api/ai/breakdown-task", s.requireAuth(s.handleBreakdownTask))
	mux.HandleFunc("POST /api/ai/parse-task", s.requireAuth(s.handleParseTask))
	mux.HandleFunc("GET /api/ai/coaching-message", s.requireAuth(s.handleCoachingMessage))

	mux.HandleFunc("GET /api/settings", s.requireAuth(s.handleGetSettings))
	mux.HandleFunc("PATCH /api/settings", s.requireAuth(s.handleUpdateSettings))

	return mux
}

// Handler exposes the routed handler for tests.
func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	logging.HTTP("Listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

type healthResponse struct {
	Status string `json:"status"`
	Env    string `json:"env"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, healthResponse{Status: "ok", Env: s.cfg.Env})
}
