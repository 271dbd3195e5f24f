// Package api provides the HTTP API for ranked tasks, the assistant, and settings.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/maccam912/vikunja-ai/pkg/observability"
)

// Server is the HTTP API server.
type Server struct {
	mux      *http.ServeMux
	server   *http.Server
	logger   *slog.Logger
	tasks    *TaskHandler
	chat     *ChatHandler
	settings *SettingsHandler
	health   *observability.HealthRegistry
}

// ServerConfig holds configuration for the API server.
type ServerConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DefaultServerConfig returns the default server configuration.
// The write timeout covers a full assistant turn with tool calls.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:         "0.0.0.0:8080",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// Handlers groups the route handlers. Nil handlers leave their routes unregistered.
type Handlers struct {
	Tasks    *TaskHandler
	Chat     *ChatHandler
	Settings *SettingsHandler
	Health   *observability.HealthRegistry
}

// NewServer creates a new API server.
func NewServer(cfg ServerConfig, handlers Handlers, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		mux:      http.NewServeMux(),
		logger:   logger,
		tasks:    handlers.Tasks,
		chat:     handlers.Chat,
		settings: handlers.Settings,
		health:   handlers.Health,
	}

	s.registerRoutes()

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

// registerRoutes sets up the API routes.
func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)

	if s.tasks != nil {
		s.mux.HandleFunc("GET /api/v1/tasks", s.tasks.List)
		s.mux.HandleFunc("GET /api/v1/tasks/top", s.tasks.Top)
		s.mux.HandleFunc("GET /api/v1/tasks/{id}/breakdown", s.tasks.Breakdown)
		s.mux.HandleFunc("POST /api/v1/tasks", s.tasks.Create)
		s.mux.HandleFunc("PATCH /api/v1/tasks/{id}", s.tasks.Update)
		s.mux.HandleFunc("POST /api/v1/tasks/{id}/complete", s.tasks.Complete)
		s.mux.HandleFunc("DELETE /api/v1/tasks/{id}", s.tasks.Delete)
		s.mux.HandleFunc("POST /api/v1/tasks/{id}/relations", s.tasks.Relate)
		s.mux.HandleFunc("DELETE /api/v1/tasks/{id}/relations/{kind}/{other}", s.tasks.Unrelate)
		s.mux.HandleFunc("POST /api/v1/priorities/recalculate", s.tasks.Recalculate)
	}

	if s.chat != nil {
		s.mux.HandleFunc("POST /api/v1/chat", s.chat.Chat)
	}

	if s.settings != nil {
		s.mux.HandleFunc("GET /api/v1/settings", s.settings.Get)
		s.mux.HandleFunc("PUT /api/v1/settings", s.settings.Update)
	}
}

// Handler returns the routed handler wrapped in the request middleware.
func (s *Server) Handler() http.Handler {
	return requestContext(s.logger)(s.mux)
}

// handleHealth reports component health. Degraded components still answer 200.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health == nil {
		writeJSON(w, http.StatusOK, map[string]string{
			"status": string(observability.HealthStatusHealthy),
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
		return
	}

	overall := s.health.Check(r.Context())
	status := http.StatusOK
	if overall.Status == observability.HealthStatusUnhealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, overall)
}

// Start starts the API server.
func (s *Server) Start() error {
	s.logger.Info("starting API server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.server.BaseContext = func(net.Listener) context.Context { return ctx }

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.Start()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return ctx.Err()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down API server")
	return s.server.Shutdown(ctx)
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode JSON response", "error", err)
		}
	}
}

// decodeJSON decodes the request body into v, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return &APIError{Status: http.StatusBadRequest, Code: CodeInvalidRequest, Message: "invalid JSON body: " + err.Error()}
	}
	return nil
}

func parseIntParam(r *http.Request, key string, defaultVal int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return i
}

func parseInt64Param(r *http.Request, key string) int64 {
	val := r.URL.Query().Get(key)
	if val == "" {
		return 0
	}
	i, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0
	}
	return i
}

func parseBoolParam(r *http.Request, key string, defaultVal bool) bool {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}
	return val == "true" || val == "1"
}

// pathID parses a positive integer path value.
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, &APIError{Status: http.StatusBadRequest, Code: CodeInvalidRequest, Message: name + " must be a positive integer"}
	}
	return id, nil
}
