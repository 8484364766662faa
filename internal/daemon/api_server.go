package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"postmark/internal/api"
	"postmark/internal/config"
	"postmark/internal/logging"
	"postmark/internal/review"
)

// APIServer exposes the daemon over HTTP for browsers and scripts. It is
// optional; an empty api_bind disables it.
type APIServer struct {
	bind   string
	logger *slog.Logger
	daemon *Daemon

	listener net.Listener
	server   *http.Server
}

// NewAPIServer builds the HTTP surface. Returns nil when the bind
// address is empty.
func NewAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) *APIServer {
	if cfg == nil || d == nil {
		return nil
	}
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil
	}

	srv := &APIServer{
		bind:   bind,
		logger: logging.NewComponentLogger(logger, "api-server"),
		daemon: d,
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	router.Route("/api", func(r chi.Router) {
		r.Get("/status", srv.handleStatus)

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", srv.handleLoad)
			r.Route("/{id}", func(r chi.Router) {
				r.Delete("/", srv.handleClose)
				r.Get("/current", srv.handleCurrent)
				r.Post("/next", srv.handleNext)
				r.Post("/prev", srv.handlePrev)
				r.Post("/goto", srv.handleGoto)
				r.Post("/annotations", srv.handleAnnotate)
				r.Get("/keys", srv.handleKeys)
				r.Get("/collisions", srv.handleCollisions)
				r.Get("/export", srv.handleExport)
				r.Get("/records/{key}/artifacts/{kind}", srv.handleArtifact)
			})
		})
	})

	srv.server = &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv
}

// Start begins serving and arranges shutdown when ctx is canceled.
func (s *APIServer) Start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

// Stop shuts the server down.
func (s *APIServer) Stop() {
	if s == nil {
		return
	}
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

// Handler exposes the router for tests.
func (s *APIServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *APIServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.daemon.Status(r.Context())
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, status)
}

func (s *APIServer) handleLoad(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Archive string `json:"archive"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Archive) == "" {
		s.writeError(w, http.StatusBadRequest, "archive path is required")
		return
	}
	summary, err := s.daemon.LoadArchive(r.Context(), req.Archive)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, summary)
}

func (s *APIServer) handleClose(w http.ResponseWriter, r *http.Request) {
	if err := s.daemon.CloseSession(chi.URLParam(r, "id")); err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "closed"})
}

func (s *APIServer) handleCurrent(w http.ResponseWriter, r *http.Request) {
	view, err := s.daemon.Current(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, view)
}

func (s *APIServer) handleNext(w http.ResponseWriter, r *http.Request) {
	view, err := s.daemon.Next(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, view)
}

func (s *APIServer) handlePrev(w http.ResponseWriter, r *http.Request) {
	view, err := s.daemon.Prev(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, view)
}

func (s *APIServer) handleGoto(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Key string `json:"key"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	view, matched, err := s.daemon.JumpTo(r.Context(), chi.URLParam(r, "id"), req.Key)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, struct {
		View    api.RecordView `json:"view"`
		Matched bool           `json:"matched"`
	}{View: view, Matched: matched})
}

func (s *APIServer) handleAnnotate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Label       string `json:"label"`
		Explanation string `json:"explanation"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	view, err := s.daemon.Annotate(r.Context(), chi.URLParam(r, "id"), req.Label, req.Explanation)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, view)
}

func (s *APIServer) handleKeys(w http.ResponseWriter, r *http.Request) {
	keys, err := s.daemon.Keys(chi.URLParam(r, "id"))
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{"keys": keys})
}

func (s *APIServer) handleCollisions(w http.ResponseWriter, r *http.Request) {
	collisions, err := s.daemon.Collisions(chi.URLParam(r, "id"))
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"collisions": collisions})
}

func (s *APIServer) handleExport(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="annotations.csv"`)
	if err := s.daemon.ExportTo(r.Context(), chi.URLParam(r, "id"), w); err != nil {
		s.logger.Error("export stream failed", logging.Error(err))
	}
}

func (s *APIServer) handleArtifact(w http.ResponseWriter, r *http.Request) {
	path, err := s.daemon.Artifact(chi.URLParam(r, "id"), chi.URLParam(r, "key"), chi.URLParam(r, "kind"))
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	http.ServeFile(w, r, path)
}

// writeFailure maps classified errors onto HTTP statuses.
func (s *APIServer) writeFailure(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch review.Kind(err) {
	case review.KindNotFound:
		status = http.StatusNotFound
	case review.KindRejected:
		status = http.StatusUnprocessableEntity
	case review.KindEmpty:
		status = http.StatusConflict
	case review.KindConfiguration:
		status = http.StatusBadRequest
	}
	s.writeError(w, status, err.Error())
}

func (s *APIServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *APIServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
