// Package api implements the HTTP API server.
//
// The server exposes the pipeline over REST:
//
//	POST /api/resolve          resolve a document to a layout
//	POST /api/render           resolve and render in a given format
//	GET  /api/snapshots        list snapshots
//	POST /api/snapshots        create a snapshot
//	GET  /api/snapshots/{id}   fetch a snapshot
//	POST /api/snapshots/{id}/resolve  resolve a stored snapshot
//	DELETE /api/snapshots/{id} delete a snapshot
//	GET  /healthz              liveness probe
//
// Documents are accepted as raw JSON or TOML in the request body; the
// Content-Type header selects the decoder.
package api

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	apperrors "github.com/malarbase/mermaid-floorplan-sub010/pkg/errors"
	"github.com/malarbase/mermaid-floorplan-sub010/pkg/observability"
	"github.com/malarbase/mermaid-floorplan-sub010/pkg/pipeline"
	"github.com/malarbase/mermaid-floorplan-sub010/pkg/snapshot"
)

// Server holds the dependencies shared by all handlers.
type Server struct {
	runner    *pipeline.Runner
	snapshots snapshot.Store
	logger    *log.Logger
}

// NewServer creates a server. The snapshot store may be nil, in which case
// the snapshot endpoints respond with 503.
func NewServer(runner *pipeline.Runner, snapshots snapshot.Store, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		runner:    runner,
		snapshots: snapshots,
		logger:    logger,
	}
}

// Router builds the chi router with all routes and middleware attached.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/resolve", s.handleResolve)
		r.Post("/render", s.handleRender)

		r.Route("/snapshots", func(r chi.Router) {
			r.Use(s.requireSnapshots)
			r.Get("/", s.handleSnapshotList)
			r.Post("/", s.handleSnapshotCreate)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleSnapshotGet)
				r.Delete("/", s.handleSnapshotDelete)
				r.Post("/resolve", s.handleSnapshotResolve)
			})
		})
	})

	return r
}

// logRequests logs each request and feeds the API hooks.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		observability.API().OnRequest(r.Context(), r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		duration := time.Since(start)
		observability.API().OnResponse(r.Context(), r.Method, r.URL.Path, ww.Status(), duration)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", duration)
	})
}

// requireSnapshots rejects snapshot requests when no store is configured.
func (s *Server) requireSnapshots(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.snapshots == nil {
			writeError(w, apperrors.New(apperrors.ErrCodeUnsupported, "snapshot store not configured"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
