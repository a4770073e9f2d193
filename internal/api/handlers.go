package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/malarbase/mermaid-floorplan-sub010/pkg/errors"
	"github.com/malarbase/mermaid-floorplan-sub010/pkg/pipeline"
	"github.com/malarbase/mermaid-floorplan-sub010/pkg/plan"
	"github.com/malarbase/mermaid-floorplan-sub010/pkg/resolve"
	"github.com/malarbase/mermaid-floorplan-sub010/pkg/snapshot"
)

// maxBodySize caps request bodies at 4 MB. Floorplan documents are small;
// anything larger is a client error.
const maxBodySize = 4 << 20

// resolveResponse is the body of POST /api/resolve.
type resolveResponse struct {
	DocHash     string               `json:"doc_hash"`
	Layout      *resolve.Layout      `json:"layout"`
	Diagnostics []resolve.Diagnostic `json:"diagnostics,omitempty"`
	Stats       statsResponse        `json:"stats"`
	CacheHit    bool                 `json:"cache_hit"`
}

type statsResponse struct {
	Floors      int `json:"floors"`
	Rooms       int `json:"rooms"`
	Resolved    int `json:"resolved"`
	Diagnostics int `json:"diagnostics"`
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	opts, ok := s.pipelineOptions(w, r)
	if !ok {
		return
	}
	opts.Formats = []string{pipeline.FormatJSON}

	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		writeError(w, apperrors.Wrap(apperrors.ErrCodeInvalidDocument, err, "resolve document"))
		return
	}

	writeJSON(w, http.StatusOK, buildResolveResponse(result))
}

func buildResolveResponse(result *pipeline.Result) resolveResponse {
	return resolveResponse{
		DocHash:     result.DocHash,
		Layout:      result.Layout,
		Diagnostics: result.Layout.Diagnostics,
		Stats: statsResponse{
			Floors:      result.Stats.FloorCount,
			Rooms:       result.Stats.RoomCount,
			Resolved:    result.Stats.ResolvedCount,
			Diagnostics: result.Stats.DiagnosticCount,
		},
		CacheHit: result.CacheInfo.LayoutHit,
	}
}

var artifactContentTypes = map[string]string{
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatPDF:  "application/pdf",
	pipeline.FormatJSON: "application/json",
	pipeline.FormatDOT:  "text/vnd.graphviz",
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	opts, ok := s.pipelineOptions(w, r)
	if !ok {
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = pipeline.FormatSVG
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		writeError(w, apperrors.Wrap(apperrors.ErrCodeInvalidFormat, err, "render format"))
		return
	}
	opts.Formats = []string{format}

	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		writeError(w, apperrors.Wrap(apperrors.ErrCodeInvalidDocument, err, "render document"))
		return
	}

	w.Header().Set("Content-Type", artifactContentTypes[format])
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Artifacts[format])
}

// pipelineOptions builds pipeline options from the request body and query.
// On failure it writes the error response and returns ok=false.
func (s *Server) pipelineOptions(w http.ResponseWriter, r *http.Request) (pipeline.Options, bool) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		writeError(w, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "read body"))
		return pipeline.Options{}, false
	}
	if len(body) == 0 {
		writeError(w, apperrors.New(apperrors.ErrCodeInvalidInput, "request body is required"))
		return pipeline.Options{}, false
	}

	q := r.URL.Query()
	opts := pipeline.Options{
		Data:        body,
		Format:      bodyFormat(r),
		SystemUnit:  q.Get("system_unit"),
		Grid:        q.Get("grid") == "true",
		Detailed:    q.Get("detailed") == "true",
		Diagnostics: true,
		Refresh:     q.Get("refresh") == "true",
		Logger:      s.logger,
	}
	if scale := q.Get("scale"); scale != "" {
		v, err := strconv.ParseFloat(scale, 64)
		if err != nil || v <= 0 {
			writeError(w, apperrors.New(apperrors.ErrCodeInvalidInput, "invalid scale: %s", scale))
			return pipeline.Options{}, false
		}
		opts.Scale = v
	}
	return opts, true
}

// bodyFormat picks the document decoder from the Content-Type header.
func bodyFormat(r *http.Request) string {
	ct := r.Header.Get("Content-Type")
	if strings.Contains(ct, "toml") {
		return "toml"
	}
	return "json"
}

// =============================================================================
// Snapshot Handlers
// =============================================================================

// snapshotCreateRequest is the body of POST /api/snapshots.
type snapshotCreateRequest struct {
	Name       string         `json:"name"`
	SystemUnit string         `json:"system_unit,omitempty"`
	Document   *plan.Document `json:"document"`
}

func (s *Server) handleSnapshotList(w http.ResponseWriter, r *http.Request) {
	infos, err := s.snapshots.List(r.Context())
	if err != nil {
		writeError(w, apperrors.Wrap(apperrors.ErrCodeStore, err, "list snapshots"))
		return
	}
	writeJSON(w, http.StatusOK, infos)
}

func (s *Server) handleSnapshotCreate(w http.ResponseWriter, r *http.Request) {
	var req snapshotCreateRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(&req); err != nil {
		writeError(w, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "decode request"))
		return
	}
	if req.Name == "" {
		writeError(w, apperrors.New(apperrors.ErrCodeInvalidInput, "name is required"))
		return
	}
	if req.Document == nil {
		writeError(w, apperrors.New(apperrors.ErrCodeInvalidInput, "document is required"))
		return
	}
	if err := plan.Validate(req.Document); err != nil {
		writeError(w, apperrors.Wrap(apperrors.ErrCodeInvalidDocument, err, "invalid document"))
		return
	}

	snap := snapshot.New(req.Name, req.Document, req.SystemUnit)
	if err := s.snapshots.Save(r.Context(), snap); err != nil {
		writeError(w, apperrors.Wrap(apperrors.ErrCodeStore, err, "save snapshot"))
		return
	}
	writeJSON(w, http.StatusCreated, snap.Info())
}

func (s *Server) handleSnapshotGet(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.loadSnapshot(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleSnapshotDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := s.snapshots.Delete(r.Context(), id)
	if errors.Is(err, snapshot.ErrNotFound) {
		writeError(w, apperrors.New(apperrors.ErrCodeSnapshotNotFound, "snapshot not found: %s", id))
		return
	}
	if err != nil {
		writeError(w, apperrors.Wrap(apperrors.ErrCodeStore, err, "delete snapshot"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSnapshotResolve(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.loadSnapshot(w, r)
	if !ok {
		return
	}

	result, err := s.runner.Execute(r.Context(), pipeline.Options{
		Document:    snap.Document,
		SystemUnit:  snap.SystemUnit,
		Formats:     []string{pipeline.FormatJSON},
		Diagnostics: true,
		Logger:      s.logger,
	})
	if err != nil {
		writeError(w, apperrors.Wrap(apperrors.ErrCodeInvalidDocument, err, "resolve snapshot"))
		return
	}

	writeJSON(w, http.StatusOK, buildResolveResponse(result))
}

func (s *Server) loadSnapshot(w http.ResponseWriter, r *http.Request) (*snapshot.Snapshot, bool) {
	id := chi.URLParam(r, "id")
	snap, err := s.snapshots.Get(r.Context(), id)
	if err != nil {
		writeError(w, apperrors.Wrap(apperrors.ErrCodeStore, err, "load snapshot"))
		return nil, false
	}
	if snap == nil {
		writeError(w, apperrors.New(apperrors.ErrCodeSnapshotNotFound, "snapshot not found: %s", id))
		return nil, false
	}
	return snap, true
}

// =============================================================================
// Response Helpers
// =============================================================================

// errorResponse is the JSON error envelope. Code carries the
// machine-readable error code when the error has one.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps the error's code to an HTTP status and writes the
// JSON error envelope. The underlying cause, if any, is appended to the
// message so clients see the full failure chain without the code prefix.
func writeError(w http.ResponseWriter, err error) {
	code := apperrors.GetCode(err)
	msg := apperrors.UserMessage(err)
	if cause := errors.Unwrap(err); cause != nil {
		msg += ": " + cause.Error()
	}
	writeJSON(w, statusForCode(code), errorResponse{
		Error: msg,
		Code:  string(code),
	})
}

// statusForCode maps machine-readable error codes to HTTP statuses.
func statusForCode(code apperrors.Code) int {
	switch code {
	case apperrors.ErrCodeInvalidInput, apperrors.ErrCodeInvalidDocument,
		apperrors.ErrCodeInvalidFormat, apperrors.ErrCodeInvalidUnit:
		return http.StatusBadRequest
	case apperrors.ErrCodeNotFound, apperrors.ErrCodeFileNotFound,
		apperrors.ErrCodeSnapshotNotFound:
		return http.StatusNotFound
	case apperrors.ErrCodeUnsupported:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
