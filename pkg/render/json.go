package render

import (
	"encoding/json"

	"github.com/malarbase/mermaid-floorplan-sub010/pkg/resolve"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	systemUnit  string
	diagnostics bool
}

// WithJSONSystemUnit records the system default unit used during resolution,
// enabling reproducible re-rendering from the exported layout.
func WithJSONSystemUnit(u string) JSONOption {
	return func(r *jsonRenderer) { r.systemUnit = u }
}

// WithJSONDiagnostics includes resolver diagnostics in the JSON output.
func WithJSONDiagnostics() JSONOption {
	return func(r *jsonRenderer) { r.diagnostics = true }
}

type jsonOutput struct {
	SystemUnit  string           `json:"system_unit,omitempty"`
	Floors      []jsonFloor      `json:"floors"`
	Diagnostics []jsonDiagnostic `json:"diagnostics,omitempty"`
}

type jsonFloor struct {
	ID    string     `json:"id"`
	Rooms []jsonRoom `json:"rooms"`
}

type jsonRoom struct {
	ID    string  `json:"id"`
	X     float64 `json:"x"`
	Z     float64 `json:"z"`
	Width float64 `json:"width"`
	Depth float64 `json:"depth"`
}

type jsonDiagnostic struct {
	Severity string   `json:"severity"`
	Code     string   `json:"code"`
	Floor    string   `json:"floor,omitempty"`
	Rooms    []string `json:"rooms,omitempty"`
	Message  string   `json:"message"`
}

// RenderJSON exports the resolved layout as a pretty-printed JSON document.
// All positions and dimensions are in meters. This is the primary data
// interchange format, enabling:
//
//   - Integration with external visualization tools
//   - Caching resolved layouts for fast re-rendering
//   - Machine-readable diagnostics for editor integrations
//
// RenderJSON returns an error only if JSON marshaling fails (should not
// happen with well-formed layouts). It does not modify l and is safe to
// call concurrently.
func RenderJSON(l *resolve.Layout, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	out := jsonOutput{
		SystemUnit: r.systemUnit,
		Floors:     buildJSONFloors(l),
	}
	if r.diagnostics {
		out.Diagnostics = buildJSONDiagnostics(l)
	}

	return json.MarshalIndent(out, "", "  ")
}

func buildJSONFloors(l *resolve.Layout) []jsonFloor {
	floors := make([]jsonFloor, len(l.Floors))
	for i, f := range l.Floors {
		rooms := make([]jsonRoom, len(f.Rooms))
		for j, room := range f.Rooms {
			rooms[j] = jsonRoom{
				ID:    string(room.ID),
				X:     room.X,
				Z:     room.Z,
				Width: room.Width,
				Depth: room.Depth,
			}
		}
		floors[i] = jsonFloor{ID: string(f.ID), Rooms: rooms}
	}
	return floors
}

func buildJSONDiagnostics(l *resolve.Layout) []jsonDiagnostic {
	if len(l.Diagnostics) == 0 {
		return nil
	}
	diags := make([]jsonDiagnostic, len(l.Diagnostics))
	for i, d := range l.Diagnostics {
		rooms := make([]string, len(d.Rooms))
		for j, id := range d.Rooms {
			rooms[j] = string(id)
		}
		diags[i] = jsonDiagnostic{
			Severity: d.Severity.String(),
			Code:     string(d.Code),
			Floor:    d.Floor,
			Rooms:    rooms,
			Message:  d.Message,
		}
	}
	return diags
}
