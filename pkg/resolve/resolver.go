package resolve

import (
	"github.com/malarbase/mermaid-floorplan-sub010/pkg/plan"
	"github.com/malarbase/mermaid-floorplan-sub010/pkg/units"
)

// SystemDefaultUnit is the fallback unit applied when neither a value
// nor the document configures one.
const SystemDefaultUnit = units.Meters

// ResolvedRoom is one room's absolute footprint in meters. Each room in
// the input produces exactly one ResolvedRoom, or none if it (or
// anything it depends on) failed.
type ResolvedRoom struct {
	ID plan.RoomID `json:"id"`
	Rect
}

// FloorLayout is one floor's resolved rooms, in floor declaration order.
type FloorLayout struct {
	ID    string         `json:"id"`
	Rooms []ResolvedRoom `json:"rooms"`
}

// Layout is the full resolver output: per-floor resolved rectangles plus
// every diagnostic produced across all stages, ordered by floor and then
// by stage (graph and cycle errors before overlap warnings).
type Layout struct {
	Floors      []FloorLayout `json:"floors"`
	Diagnostics []Diagnostic  `json:"diagnostics,omitempty"`
}

// Room looks up a resolved room by floor and id.
func (l *Layout) Room(floor string, id plan.RoomID) (ResolvedRoom, bool) {
	for _, f := range l.Floors {
		if f.ID != floor {
			continue
		}
		for _, r := range f.Rooms {
			if r.ID == id {
				return r, true
			}
		}
	}
	return ResolvedRoom{}, false
}

// Options configures a resolution pass.
type Options struct {
	// SystemDefault is the unit applied when neither the value nor the
	// document specifies one. Zero value means SystemDefaultUnit.
	SystemDefault units.Symbol
}

// Resolve computes the absolute layout for every floor of doc.
//
// The pass never fails as a whole: broken rooms are excluded with
// diagnostics while everything independent of them still resolves, and
// the embedding application decides whether any error is fatal for its
// own operation.
func Resolve(doc *plan.Document, opts Options) *Layout {
	systemDefault := opts.SystemDefault
	if systemDefault == units.None {
		systemDefault = SystemDefaultUnit
	}

	out := &Layout{}

	// Document-level unit configuration. An unrecognized symbol is
	// reported and the system default takes over.
	docDefault, err := units.Parse(doc.DefaultUnit)
	if err != nil {
		out.Diagnostics = append(out.Diagnostics, Diagnostic{
			Severity: SeverityError,
			Code:     CodeInvalidUnitConfiguration,
			Message:  "unrecognized default unit " + doc.DefaultUnit,
		})
		docDefault = units.None
	}

	if units.MixedSystems(doc.Values()) {
		out.Diagnostics = append(out.Diagnostics, Diagnostic{
			Severity: SeverityWarning,
			Code:     CodeMixedUnits,
			Message:  "document mixes explicit metric and imperial units",
		})
	}

	conv := converter{docDefault: docDefault, systemDefault: systemDefault}
	for i := range doc.Floors {
		floor, diags := resolveFloor(&doc.Floors[i], conv)
		out.Floors = append(out.Floors, floor)
		out.Diagnostics = append(out.Diagnostics, diags...)
	}
	return out
}

// resolveFloor runs the per-floor stage sequence: graph construction,
// ordering, placement, overlap detection.
func resolveFloor(f *plan.Floor, conv converter) (FloorLayout, []Diagnostic) {
	g, diags := BuildGraph(f)

	order, orderDiags := Order(g)
	diags = append(diags, orderDiags...)

	// Placement in topological order: every reference is resolved before
	// its dependents, so arbitrarily deep chains work. A room whose
	// reference is absent from the map depends on a failed room and is
	// skipped; the root cause already carries the diagnostic.
	resolved := make(map[plan.RoomID]Rect, len(order))
	for _, id := range order {
		room, ok := g.Room(id)
		if !ok {
			continue
		}
		rect, ok := place(room, resolved, conv)
		if !ok {
			continue
		}
		resolved[id] = rect
	}

	// Output in floor declaration order, independent of resolution order.
	layout := FloorLayout{ID: f.ID}
	for _, r := range f.Rooms {
		rect, ok := resolved[r.ID]
		if !ok {
			continue
		}
		layout.Rooms = append(layout.Rooms, ResolvedRoom{ID: r.ID, Rect: rect})
	}

	diags = append(diags, DetectOverlaps(f.ID, layout.Rooms)...)
	return layout, diags
}
