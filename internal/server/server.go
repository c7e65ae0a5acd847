// Package server provides the HTTP and WebSocket API with lifecycle management.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/raphaelgruber/contentd/internal/engine"
	"github.com/raphaelgruber/contentd/internal/metrics"
	"github.com/raphaelgruber/contentd/internal/models"
	"github.com/raphaelgruber/contentd/internal/session"
)

// shutdownTimeout bounds graceful shutdown of in-flight requests.
const shutdownTimeout = 10 * time.Second

// TaskRequest is the POST /api/task payload.
type TaskRequest struct {
	URL          string `json:"url"`
	Instructions string `json:"instructions"`
	Username     string `json:"username,omitempty"`
	Password     string `json:"password,omitempty"`
}

// TaskAccepted is the POST /api/task response.
type TaskAccepted struct {
	TaskID string `json:"task_id"`
	Status string `json:"status"`
}

// TaskStatusResponse is the GET /api/task/{id} response.
type TaskStatusResponse struct {
	TaskID      string             `json:"task_id"`
	URL         string             `json:"url"`
	Status      models.TaskStatus  `json:"status"`
	Progress    int                `json:"progress"`
	Total       int                `json:"total"`
	Result      *models.TaskResult `json:"result,omitempty"`
	Error       string             `json:"error,omitempty"`
	StartedAt   time.Time          `json:"started_at"`
	CompletedAt *time.Time         `json:"completed_at,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Server wraps the HTTP server with dependencies and lifecycle management.
type Server struct {
	http      *http.Server
	tasks     *engine.TaskManager
	sessions  *session.Manager
	collector *metrics.Collector
	logger    *slog.Logger
}

// New creates a server listening on the given port.
func New(port string, tasks *engine.TaskManager, sessions *session.Manager, collector *metrics.Collector, logger *slog.Logger) *Server {
	s := &Server{
		tasks:     tasks,
		sessions:  sessions,
		collector: collector,
		logger:    logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/task", s.handleCreateTask)
	mux.HandleFunc("GET /api/task/{id}", s.handleGetTask)
	mux.HandleFunc("GET /api/ws/{client_id}", s.handleWebSocket)
	mux.HandleFunc("GET /api/stats", s.handleStats)
	mux.HandleFunc("GET /health", s.handleHealth)

	s.http = &http.Server{
		Addr:    ":" + port,
		Handler: LoggingMiddleware(logger)(mux),
	}
	return s
}

// Run starts the server and blocks until the context is cancelled or the
// listener fails. Shutdown drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down HTTP server")
	return s.http.Shutdown(shutdownCtx)
}

// Handler returns the server's HTTP handler for tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req TaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	req.URL = strings.TrimSpace(req.URL)
	req.Instructions = strings.TrimSpace(req.Instructions)
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}
	if req.Instructions == "" {
		writeError(w, http.StatusBadRequest, "instructions are required")
		return
	}

	var creds *models.AuthCredentials
	if req.Username != "" {
		creds = &models.AuthCredentials{Username: req.Username, Password: req.Password}
	}

	record := s.tasks.Launch(req.URL, req.Instructions, creds)
	snapshot := record.Snapshot()

	writeJSON(w, http.StatusAccepted, TaskAccepted{
		TaskID: snapshot.ID,
		Status: string(snapshot.Status),
	})
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	record := s.tasks.Get(id)
	if record == nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("task %s not found", id))
		return
	}

	snapshot := record.Snapshot()
	writeJSON(w, http.StatusOK, TaskStatusResponse{
		TaskID:      snapshot.ID,
		URL:         snapshot.URL,
		Status:      snapshot.Status,
		Progress:    snapshot.Progress,
		Total:       snapshot.Total,
		Result:      snapshot.Result,
		Error:       snapshot.Error,
		StartedAt:   snapshot.StartedAt,
		CompletedAt: snapshot.CompletedAt,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.collector.GetSnapshot())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":          "ok",
		"active_sessions": s.sessions.Active(),
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
