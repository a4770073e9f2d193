package resolve

import (
	"github.com/malarbase/mermaid-floorplan-sub010/pkg/plan"
	"github.com/malarbase/mermaid-floorplan-sub010/pkg/units"
)

// Rect is a resolved room footprint in canonical meters. X/Z locate the
// top-left corner (x grows rightward, z grows downward toward the
// viewer, matching the document's plan view).
type Rect struct {
	X     float64 `json:"x"`
	Z     float64 `json:"z"`
	Width float64 `json:"width"`
	Depth float64 `json:"depth"`
}

// converter canonicalizes document values to meters under the resolved
// unit hierarchy.
type converter struct {
	docDefault    units.Symbol
	systemDefault units.Symbol
}

func (c converter) meters(v units.Value) float64 {
	return v.Meters(c.docDefault, c.systemDefault)
}

// place computes the absolute rectangle for one room. For relative rooms
// the reference must already be present in resolved; ok is false when it
// is not, which means the reference itself failed and the room is
// excluded without a further diagnostic (the root cause already has one).
func place(room plan.Room, resolved map[plan.RoomID]Rect, conv converter) (Rect, bool) {
	r := Rect{
		Width: conv.meters(room.Size.Width),
		Depth: conv.meters(room.Size.Depth),
	}

	if at := room.At; at != nil {
		r.X = conv.meters(at.X)
		r.Z = conv.meters(at.Z)
		return r, true
	}

	p := room.Position
	ref, ok := resolved[p.Reference]
	if !ok {
		return Rect{}, false
	}
	g := conv.meters(p.Gap)

	align := p.Alignment
	if !alignmentApplies(p.Direction, align) {
		align = p.Direction.DefaultAlignment()
	}

	switch p.Direction {
	case plan.RightOf:
		r.X = ref.X + ref.Width + g
		r.Z = alignZ(ref, r.Depth, align)
	case plan.LeftOf:
		r.X = ref.X - g - r.Width
		r.Z = alignZ(ref, r.Depth, align)
	case plan.Below:
		r.Z = ref.Z + ref.Depth + g
		r.X = alignX(ref, r.Width, align)
	case plan.Above:
		r.Z = ref.Z - g - r.Depth
		r.X = alignX(ref, r.Width, align)
	case plan.BelowRightOf:
		r.X = ref.X + ref.Width + g
		r.Z = ref.Z + ref.Depth + g
	case plan.BelowLeftOf:
		r.X = ref.X - g - r.Width
		r.Z = ref.Z + ref.Depth + g
	case plan.AboveRightOf:
		r.X = ref.X + ref.Width + g
		r.Z = ref.Z - g - r.Depth
	case plan.AboveLeftOf:
		r.X = ref.X - g - r.Width
		r.Z = ref.Z - g - r.Depth
	}

	return r, true
}

// alignmentApplies reports whether align is meaningful for the free axis
// of direction. Diagonals have no free axis; a horizontal direction's
// free axis is z (top/bottom/center); a vertical direction's is x
// (left/right/center). Anything else falls back to the direction default.
func alignmentApplies(direction plan.Direction, align plan.Alignment) bool {
	if align == plan.AlignNone || direction.Diagonal() {
		return false
	}
	switch align {
	case plan.AlignCenter:
		return true
	case plan.AlignTop, plan.AlignBottom:
		return direction.Horizontal()
	case plan.AlignLeft, plan.AlignRight:
		return direction.Vertical()
	default:
		return false
	}
}

// alignZ positions the free z-axis of a horizontally placed room.
func alignZ(ref Rect, depth float64, align plan.Alignment) float64 {
	switch align {
	case plan.AlignBottom:
		return ref.Z + ref.Depth - depth
	case plan.AlignCenter:
		return ref.Z + (ref.Depth-depth)/2
	default: // top
		return ref.Z
	}
}

// alignX positions the free x-axis of a vertically placed room.
func alignX(ref Rect, width float64, align plan.Alignment) float64 {
	switch align {
	case plan.AlignRight:
		return ref.X + ref.Width - width
	case plan.AlignCenter:
		return ref.X + (ref.Width-width)/2
	default: // left
		return ref.X
	}
}
