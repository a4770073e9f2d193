package render

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/malarbase/mermaid-floorplan-sub010/pkg/plan"
	"github.com/malarbase/mermaid-floorplan-sub010/pkg/resolve"
	"github.com/malarbase/mermaid-floorplan-sub010/pkg/units"
)

func sampleLayout() *resolve.Layout {
	return &resolve.Layout{
		Floors: []resolve.FloorLayout{
			{
				ID: "ground",
				Rooms: []resolve.ResolvedRoom{
					{ID: "living", Rect: resolve.Rect{X: 0, Z: 0, Width: 8, Depth: 6}},
					{ID: "kitchen", Rect: resolve.Rect{X: 8, Z: 0, Width: 4, Depth: 3}},
				},
			},
			{
				ID: "upper",
				Rooms: []resolve.ResolvedRoom{
					{ID: "bedroom", Rect: resolve.Rect{X: 0, Z: 0, Width: 5, Depth: 4}},
				},
			},
		},
	}
}

func TestRenderSVG(t *testing.T) {
	svg := string(RenderSVG(sampleLayout()))

	if !strings.HasPrefix(svg, "<svg xmlns=") {
		t.Fatalf("missing SVG header: %s", svg[:60])
	}
	if !strings.HasSuffix(svg, "</svg>\n") {
		t.Error("missing closing tag")
	}

	// One group per floor
	for _, id := range []string{"floor-ground", "floor-upper"} {
		if !strings.Contains(svg, `id="`+id+`"`) {
			t.Errorf("missing floor group %s", id)
		}
	}

	// One rect and label per room
	for _, id := range []string{"room-ground-living", "room-ground-kitchen", "room-upper-bedroom"} {
		if !strings.Contains(svg, `id="`+id+`"`) {
			t.Errorf("missing room rect %s", id)
		}
	}
	if !strings.Contains(svg, ">living</text>") {
		t.Error("missing room label")
	}
	if !strings.Contains(svg, ">8x6</text>") {
		t.Error("missing dimension label")
	}
}

func TestRenderSVGOverlapHighlight(t *testing.T) {
	l := sampleLayout()
	l.Diagnostics = []resolve.Diagnostic{
		{
			Severity: resolve.SeverityWarning,
			Code:     resolve.CodeOverlap,
			Floor:    "ground",
			Rooms:    []plan.RoomID{"living", "kitchen"},
			Message:  "rooms living and kitchen overlap",
		},
	}

	svg := string(RenderSVG(l))
	if !strings.Contains(svg, `stroke="#d97706"`) {
		t.Error("overlapping rooms should use the warning stroke")
	}
}

func TestRenderSVGGrid(t *testing.T) {
	plain := string(RenderSVG(sampleLayout()))
	grid := string(RenderSVG(sampleLayout(), WithGrid()))

	if strings.Contains(plain, "<line") {
		t.Error("grid lines rendered without WithGrid")
	}
	if !strings.Contains(grid, "<line") {
		t.Error("WithGrid should render grid lines")
	}
}

func TestRenderSVGEmptyLayout(t *testing.T) {
	svg := string(RenderSVG(&resolve.Layout{}))
	if !strings.HasPrefix(svg, "<svg xmlns=") {
		t.Error("empty layout should still produce a valid SVG document")
	}
}

func TestRenderSVGEscapesLabels(t *testing.T) {
	l := &resolve.Layout{
		Floors: []resolve.FloorLayout{
			{ID: "f", Rooms: []resolve.ResolvedRoom{
				{ID: "a<b&c", Rect: resolve.Rect{Width: 2, Depth: 2}},
			}},
		},
	}
	svg := string(RenderSVG(l))
	if strings.Contains(svg, ">a<b&c<") {
		t.Error("labels should be escaped")
	}
	if !strings.Contains(svg, "a&lt;b&amp;c") {
		t.Error("escaped label missing")
	}
}

func TestRenderJSON(t *testing.T) {
	l := sampleLayout()
	l.Diagnostics = []resolve.Diagnostic{
		{
			Severity: resolve.SeverityError,
			Code:     resolve.CodeMissingReference,
			Floor:    "ground",
			Rooms:    []plan.RoomID{"pantry"},
			Message:  "room pantry references unknown room closet",
		},
	}

	data, err := RenderJSON(l, WithJSONSystemUnit("m"), WithJSONDiagnostics())
	if err != nil {
		t.Fatalf("RenderJSON error: %v", err)
	}

	var out struct {
		SystemUnit string `json:"system_unit"`
		Floors     []struct {
			ID    string `json:"id"`
			Rooms []struct {
				ID    string  `json:"id"`
				X     float64 `json:"x"`
				Width float64 `json:"width"`
			} `json:"rooms"`
		} `json:"floors"`
		Diagnostics []struct {
			Severity string   `json:"severity"`
			Code     string   `json:"code"`
			Rooms    []string `json:"rooms"`
		} `json:"diagnostics"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if out.SystemUnit != "m" {
		t.Errorf("system_unit = %q", out.SystemUnit)
	}
	if len(out.Floors) != 2 || out.Floors[0].ID != "ground" {
		t.Fatalf("unexpected floors: %+v", out.Floors)
	}
	if out.Floors[0].Rooms[1].X != 8 {
		t.Errorf("kitchen x = %v", out.Floors[0].Rooms[1].X)
	}
	if len(out.Diagnostics) != 1 || out.Diagnostics[0].Code != "MISSING_REFERENCE" {
		t.Fatalf("unexpected diagnostics: %+v", out.Diagnostics)
	}
	if out.Diagnostics[0].Severity != "error" {
		t.Errorf("severity = %q", out.Diagnostics[0].Severity)
	}
}

func TestRenderJSONOmitsDiagnosticsByDefault(t *testing.T) {
	l := sampleLayout()
	l.Diagnostics = []resolve.Diagnostic{
		{Severity: resolve.SeverityWarning, Code: resolve.CodeOverlap, Floor: "ground", Message: "overlap"},
	}

	data, err := RenderJSON(l)
	if err != nil {
		t.Fatalf("RenderJSON error: %v", err)
	}
	if strings.Contains(string(data), "diagnostics") {
		t.Error("diagnostics should be omitted without WithJSONDiagnostics")
	}
}

func TestToDOT(t *testing.T) {
	floor := &plan.Floor{
		ID: "ground",
		Rooms: []plan.Room{
			{ID: "living", At: &plan.Coordinate{}, Size: plan.Size{
				Width: units.Value{Magnitude: 8}, Depth: units.Value{Magnitude: 6},
			}},
			{ID: "kitchen", Position: &plan.Relative{
				Direction: plan.RightOf, Reference: "living",
			}, Size: plan.Size{
				Width: units.Value{Magnitude: 4}, Depth: units.Value{Magnitude: 3},
			}},
		},
	}
	g, diags := resolve.BuildGraph(floor)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}

	dot := ToDOT(g, DOTOptions{})
	if !strings.HasPrefix(dot, "digraph rooms {") {
		t.Fatalf("missing digraph header: %s", dot)
	}
	for _, want := range []string{`"living"`, `"kitchen"`, `"kitchen" -> "living";`} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %s:\n%s", want, dot)
		}
	}

	// Detailed labels include dimensions
	detailed := ToDOT(g, DOTOptions{Detailed: true})
	if !strings.Contains(detailed, "8 x 6") {
		t.Errorf("detailed DOT missing dimensions:\n%s", detailed)
	}
}

func TestToDOTDocument(t *testing.T) {
	doc := &plan.Document{
		Floors: []plan.Floor{
			{
				ID: "ground",
				Rooms: []plan.Room{
					{ID: "living", At: &plan.Coordinate{}, Size: plan.Size{
						Width: units.Value{Magnitude: 8}, Depth: units.Value{Magnitude: 6},
					}},
					{ID: "kitchen", Position: &plan.Relative{
						Direction: plan.RightOf, Reference: "living",
					}, Size: plan.Size{
						Width: units.Value{Magnitude: 4}, Depth: units.Value{Magnitude: 3},
					}},
				},
			},
			{
				ID: "upper",
				Rooms: []plan.Room{
					{ID: "living", At: &plan.Coordinate{}, Size: plan.Size{
						Width: units.Value{Magnitude: 5}, Depth: units.Value{Magnitude: 4},
					}},
				},
			},
		},
	}

	dot := ToDOTDocument(doc, DOTOptions{})
	if !strings.HasPrefix(dot, "digraph plan {") {
		t.Fatalf("missing digraph header: %s", dot)
	}
	for _, want := range []string{
		"subgraph cluster_0",
		"subgraph cluster_1",
		`"ground/kitchen" -> "ground/living";`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %s:\n%s", want, dot)
		}
	}

	// Same room ID on different floors stays two distinct nodes
	if !strings.Contains(dot, `"ground/living"`) || !strings.Contains(dot, `"upper/living"`) {
		t.Errorf("floor-scoped node IDs missing:\n%s", dot)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	out := string(normalizeViewBox(in))

	if !strings.Contains(out, `viewBox="0 0 100.00 50.00"`) {
		t.Errorf("viewBox not normalized: %s", out)
	}
	if !strings.Contains(out, `width="100" height="50"`) {
		t.Errorf("pixel size not normalized: %s", out)
	}

	// SVG without a viewBox passes through unchanged
	plain := []byte(`<svg><g/></svg>`)
	if string(normalizeViewBox(plain)) != string(plain) {
		t.Error("SVG without viewBox should pass through")
	}
}
