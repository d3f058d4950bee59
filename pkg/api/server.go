// Package api assembles the dashboard HTTP server.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"balance_insight/pkg/api/assistant"
	"balance_insight/pkg/api/common"
	apiconfig "balance_insight/pkg/api/config"
	"balance_insight/pkg/api/dashboard"
	"balance_insight/pkg/core/agent"
	"balance_insight/pkg/core/session"
	"balance_insight/pkg/core/store"
	"balance_insight/pkg/web"
)

// Title is shown in the dashboard header.
const Title = "Balance Sheet Insight"

// Deps are the services the handlers share.
type Deps struct {
	Agents    *agent.Manager
	Sessions  *session.Store
	Processor *store.Processor
	Logger    *slog.Logger
}

// Server is the dashboard HTTP server.
type Server struct {
	router *chi.Mux
	http   *http.Server
	logger *slog.Logger
}

// NewServer wires every route.
func NewServer(addr string, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router: router,
		logger: logger,
		http: &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}

	router.Get("/health", s.health)
	router.Group(func(r chi.Router) {
		r.Use(common.CORS)
		r.Use(common.Sessions(deps.Sessions))

		r.Get("/", web.Handler(Title, deps.Agents.GetActiveProvider))
		dashboard.NewHandler(deps.Processor, deps.Agents.Markers(), logger).Routes(r)
		assistant.NewHandler(deps.Agents, logger).Routes(r)
		apiconfig.NewHandler(deps.Agents).Routes(r)
	})
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Start blocks serving until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("API server starting", "addr", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	common.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
