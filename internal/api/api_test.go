package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/malarbase/mermaid-floorplan-sub010/pkg/pipeline"
	"github.com/malarbase/mermaid-floorplan-sub010/pkg/snapshot"
)

const sampleJSON = `{
  "title": "test house",
  "floors": [
    {
      "id": "ground",
      "rooms": [
        {
          "id": "living",
          "at": {"x": {"magnitude": 0}, "z": {"magnitude": 0}},
          "size": {"width": {"magnitude": 8}, "depth": {"magnitude": 6}}
        },
        {
          "id": "kitchen",
          "position": {"direction": "right-of", "reference": "living"},
          "size": {"width": {"magnitude": 4}, "depth": {"magnitude": 3}}
        }
      ]
    }
  ]
}`

func testServer(t *testing.T) *Server {
	t.Helper()
	store, err := snapshot.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	logger := log.NewWithOptions(io.Discard, log.Options{})
	runner := pipeline.NewRunner(nil, nil, logger)
	return NewServer(runner, store, logger)
}

func doRequest(t *testing.T, s *Server, method, path, contentType string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	rec := doRequest(t, testServer(t), http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestResolve(t *testing.T) {
	rec := doRequest(t, testServer(t), http.MethodPost, "/api/resolve", "application/json", []byte(sampleJSON))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		DocHash string `json:"doc_hash"`
		Layout  struct {
			Floors []struct {
				ID    string `json:"id"`
				Rooms []struct {
					ID string  `json:"id"`
					X  float64 `json:"x"`
				} `json:"rooms"`
			} `json:"floors"`
		} `json:"layout"`
		Stats struct {
			Rooms    int `json:"rooms"`
			Resolved int `json:"resolved"`
		} `json:"stats"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if resp.DocHash == "" {
		t.Error("doc_hash should be set")
	}
	if resp.Stats.Rooms != 2 || resp.Stats.Resolved != 2 {
		t.Errorf("stats = %+v", resp.Stats)
	}
	rooms := resp.Layout.Floors[0].Rooms
	if rooms[1].ID != "kitchen" || rooms[1].X != 8 {
		t.Errorf("kitchen = %+v", rooms[1])
	}
}

func TestResolveEmptyBody(t *testing.T) {
	rec := doRequest(t, testServer(t), http.MethodPost, "/api/resolve", "application/json", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestResolveMalformedDocument(t *testing.T) {
	rec := doRequest(t, testServer(t), http.MethodPost, "/api/resolve", "application/json", []byte("{not json"))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "error") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestResolveTOML(t *testing.T) {
	doc := `
title = "toml house"

[[floors]]
id = "ground"

[[floors.rooms]]
id = "living"

[floors.rooms.at]
x = { magnitude = 0.0 }
z = { magnitude = 0.0 }

[floors.rooms.size]
width = { magnitude = 5.0 }
depth = { magnitude = 4.0 }
`
	rec := doRequest(t, testServer(t), http.MethodPost, "/api/resolve", "application/toml", []byte(doc))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "living") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestRenderSVG(t *testing.T) {
	rec := doRequest(t, testServer(t), http.MethodPost, "/api/render?format=svg", "application/json", []byte(sampleJSON))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("content type = %q", ct)
	}
	if !strings.HasPrefix(rec.Body.String(), "<svg") {
		t.Error("body should be SVG")
	}
}

func TestRenderInvalidFormat(t *testing.T) {
	rec := doRequest(t, testServer(t), http.MethodPost, "/api/render?format=bmp", "application/json", []byte(sampleJSON))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestRenderInvalidScale(t *testing.T) {
	rec := doRequest(t, testServer(t), http.MethodPost, "/api/render?scale=-3", "application/json", []byte(sampleJSON))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestSnapshotLifecycle(t *testing.T) {
	s := testServer(t)

	// Create
	createBody := []byte(`{
		"name": "v1",
		"system_unit": "m",
		"document": ` + sampleJSON + `
	}`)
	rec := doRequest(t, s, http.MethodPost, "/api/snapshots", "application/json", createBody)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d body = %s", rec.Code, rec.Body.String())
	}
	var info struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &info); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	if info.ID == "" || info.Name != "v1" {
		t.Fatalf("info = %+v", info)
	}

	// List
	rec = doRequest(t, s, http.MethodGet, "/api/snapshots", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), info.ID) {
		t.Errorf("list should contain the snapshot: %s", rec.Body.String())
	}

	// Get
	rec = doRequest(t, s, http.MethodGet, "/api/snapshots/"+info.ID, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "test house") {
		t.Errorf("get should return the document: %s", rec.Body.String())
	}

	// Resolve stored snapshot
	rec = doRequest(t, s, http.MethodPost, "/api/snapshots/"+info.ID+"/resolve", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("resolve status = %d body = %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "kitchen") {
		t.Errorf("resolve should return the layout: %s", rec.Body.String())
	}

	// Delete
	rec = doRequest(t, s, http.MethodDelete, "/api/snapshots/"+info.ID, "", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}
	rec = doRequest(t, s, http.MethodDelete, "/api/snapshots/"+info.ID, "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("second delete status = %d", rec.Code)
	}
}

func TestSnapshotCreateValidation(t *testing.T) {
	s := testServer(t)

	// Missing name
	rec := doRequest(t, s, http.MethodPost, "/api/snapshots", "application/json",
		[]byte(`{"document": `+sampleJSON+`}`))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing name status = %d", rec.Code)
	}

	// Missing document
	rec = doRequest(t, s, http.MethodPost, "/api/snapshots", "application/json",
		[]byte(`{"name": "v1"}`))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing document status = %d", rec.Code)
	}
}

func TestSnapshotGetMissing(t *testing.T) {
	rec := doRequest(t, testServer(t), http.MethodGet, "/api/snapshots/nope", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestSnapshotsUnconfigured(t *testing.T) {
	logger := log.NewWithOptions(io.Discard, log.Options{})
	s := NewServer(pipeline.NewRunner(nil, nil, logger), nil, logger)

	rec := doRequest(t, s, http.MethodGet, "/api/snapshots", "", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rec.Code)
	}
}
