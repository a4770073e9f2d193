package resolve

import (
	"github.com/malarbase/mermaid-floorplan-sub010/pkg/plan"
)

// Intersects reports whether two rectangles overlap on open intervals:
// rectangles that merely touch at an edge or corner do not intersect.
func Intersects(a, b Rect) bool {
	return a.X < b.X+b.Width && b.X < a.X+a.Width &&
		a.Z < b.Z+b.Depth && b.Z < a.Z+a.Depth
}

// DetectOverlaps checks every unordered pair of resolved rooms on a floor
// and emits one CodeOverlap warning per intersecting pair. Overlaps never
// block resolution; the rectangles are returned unmodified.
//
// The check is O(n²) pairwise, which is fine for the tens of rooms a
// floor typically has.
func DetectOverlaps(floor string, rooms []ResolvedRoom) []Diagnostic {
	col := collector{floor: floor}
	for i := 0; i < len(rooms); i++ {
		for j := i + 1; j < len(rooms); j++ {
			a, b := rooms[i], rooms[j]
			if Intersects(a.Rect, b.Rect) {
				col.warnf(CodeOverlap, []plan.RoomID{a.ID, b.ID},
					"rooms %s and %s overlap", a.ID, b.ID)
			}
		}
	}
	return col.diags
}
