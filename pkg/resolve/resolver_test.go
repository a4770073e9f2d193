package resolve

import (
	"math"
	"reflect"
	"testing"

	"github.com/malarbase/mermaid-floorplan-sub010/pkg/plan"
	"github.com/malarbase/mermaid-floorplan-sub010/pkg/units"
)

// =============================================================================
// Test Helpers
// =============================================================================

func val(m float64) units.Value { return units.Value{Magnitude: m} }

func valIn(m float64, u units.Symbol) units.Value {
	return units.Value{Magnitude: m, Unit: u}
}

// roomAt declares a room with an explicit coordinate, all values unit-less.
func roomAt(id string, x, z, w, d float64) plan.Room {
	return plan.Room{
		ID:   plan.RoomID(id),
		At:   &plan.Coordinate{X: val(x), Z: val(z)},
		Size: plan.Size{Width: val(w), Depth: val(d)},
	}
}

// roomRel declares a relatively positioned room, all values unit-less.
func roomRel(id, ref string, dir plan.Direction, gap float64, align plan.Alignment, w, d float64) plan.Room {
	return plan.Room{
		ID: plan.RoomID(id),
		Position: &plan.Relative{
			Direction: dir,
			Reference: plan.RoomID(ref),
			Gap:       val(gap),
			Alignment: align,
		},
		Size: plan.Size{Width: val(w), Depth: val(d)},
	}
}

func doc(rooms ...plan.Room) *plan.Document {
	return &plan.Document{Floors: []plan.Floor{{ID: "ground", Rooms: rooms}}}
}

func rectEqual(a, b Rect) bool {
	const eps = 1e-9
	return math.Abs(a.X-b.X) < eps && math.Abs(a.Z-b.Z) < eps &&
		math.Abs(a.Width-b.Width) < eps && math.Abs(a.Depth-b.Depth) < eps
}

func mustRoom(t *testing.T, l *Layout, floor, id string) ResolvedRoom {
	t.Helper()
	r, ok := l.Room(floor, plan.RoomID(id))
	if !ok {
		t.Fatalf("room %s not resolved on floor %s", id, floor)
	}
	return r
}

func codes(diags []Diagnostic) []Code {
	out := make([]Code, len(diags))
	for i, d := range diags {
		out[i] = d.Code
	}
	return out
}

func countCode(diags []Diagnostic, code Code) int {
	n := 0
	for _, d := range diags {
		if d.Code == code {
			n++
		}
	}
	return n
}

// =============================================================================
// Resolution
// =============================================================================

func TestResolveExplicitCoordinates(t *testing.T) {
	l := Resolve(doc(roomAt("hall", 1, 2, 6, 4)), Options{})

	if len(l.Diagnostics) != 0 {
		t.Fatalf("unexpected diagnostics: %v", l.Diagnostics)
	}
	got := mustRoom(t, l, "ground", "hall")
	want := Rect{X: 1, Z: 2, Width: 6, Depth: 4}
	if !rectEqual(got.Rect, want) {
		t.Errorf("hall = %+v, want %+v", got.Rect, want)
	}
}

func TestResolveChainDepth(t *testing.T) {
	// a <- b <- c <- d, each 2m right of the previous with gap 1.
	l := Resolve(doc(
		roomAt("a", 0, 0, 2, 2),
		roomRel("b", "a", plan.RightOf, 1, plan.AlignNone, 2, 2),
		roomRel("c", "b", plan.RightOf, 1, plan.AlignNone, 2, 2),
		roomRel("d", "c", plan.RightOf, 1, plan.AlignNone, 2, 2),
	), Options{})

	if len(l.Diagnostics) != 0 {
		t.Fatalf("unexpected diagnostics: %v", l.Diagnostics)
	}
	d := mustRoom(t, l, "ground", "d")
	if d.X != 9 || d.Z != 0 {
		t.Errorf("d = (%v, %v), want (9, 0)", d.X, d.Z)
	}
}

func TestResolveDeclarationOrderIndependence(t *testing.T) {
	// The dependent is declared before its reference; topological
	// ordering must still resolve the reference first.
	l := Resolve(doc(
		roomRel("annex", "main", plan.RightOf, 0, plan.AlignNone, 3, 3),
		roomAt("main", 0, 0, 5, 5),
	), Options{})

	annex := mustRoom(t, l, "ground", "annex")
	if annex.X != 5 || annex.Z != 0 {
		t.Errorf("annex = (%v, %v), want (5, 0)", annex.X, annex.Z)
	}
}

func TestResolveDeterminism(t *testing.T) {
	d := doc(
		roomAt("a", 0, 0, 6, 6),
		roomRel("b", "a", plan.RightOf, 2, plan.AlignBottom, 14, 16),
		roomRel("c", "a", plan.Below, 1, plan.AlignCenter, 4, 4),
		roomRel("bad", "ghost", plan.Above, 0, plan.AlignNone, 2, 2),
	)

	first := Resolve(d, Options{})
	for i := 0; i < 10; i++ {
		again := Resolve(d, Options{})
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("resolution is not deterministic:\nfirst: %+v\nagain: %+v", first, again)
		}
	}
}

func TestResolveUnitHierarchy(t *testing.T) {
	d := doc(roomAt("a", 0, 0, 10, 8))
	d.DefaultUnit = "ft"

	l := Resolve(d, Options{})
	a := mustRoom(t, l, "ground", "a")
	if math.Abs(a.Width-3.048) > 1e-9 {
		t.Errorf("width = %v, want 3.048", a.Width)
	}

	// Explicit feet gives the identical result.
	explicit := doc(plan.Room{
		ID:   "a",
		At:   &plan.Coordinate{X: val(0), Z: val(0)},
		Size: plan.Size{Width: valIn(10, units.Feet), Depth: valIn(8, units.Feet)},
	})
	explicit.DefaultUnit = "ft"
	le := Resolve(explicit, Options{})
	ae := mustRoom(t, le, "ground", "a")
	if !rectEqual(a.Rect, ae.Rect) {
		t.Errorf("unit-less under ft default %+v != explicit ft %+v", a.Rect, ae.Rect)
	}

	// Explicit meters ignores the document default entirely.
	metric := doc(plan.Room{
		ID:   "a",
		At:   &plan.Coordinate{X: val(0), Z: val(0)},
		Size: plan.Size{Width: valIn(3, units.Meters), Depth: valIn(2, units.Meters)},
	})
	metric.DefaultUnit = "ft"
	lm := Resolve(metric, Options{})
	am := mustRoom(t, lm, "ground", "a")
	if am.Width != 3 || am.Depth != 2 {
		t.Errorf("explicit meters = %vx%v, want 3x2", am.Width, am.Depth)
	}
}

func TestResolveInvalidUnitConfiguration(t *testing.T) {
	d := doc(roomAt("a", 0, 0, 10, 8))
	d.DefaultUnit = "furlong"

	l := Resolve(d, Options{})
	if countCode(l.Diagnostics, CodeInvalidUnitConfiguration) != 1 {
		t.Fatalf("diagnostics = %v, want one INVALID_UNIT_CONFIGURATION", codes(l.Diagnostics))
	}

	// Falls back to the system default (meters).
	a := mustRoom(t, l, "ground", "a")
	if a.Width != 10 {
		t.Errorf("width = %v, want 10 (system default meters)", a.Width)
	}
}

func TestResolveMixedUnitsWarning(t *testing.T) {
	d := doc(
		plan.Room{
			ID:   "metric",
			At:   &plan.Coordinate{X: val(0), Z: val(0)},
			Size: plan.Size{Width: valIn(3, units.Meters), Depth: valIn(2, units.Meters)},
		},
		plan.Room{
			ID:   "imperial",
			At:   &plan.Coordinate{X: val(10), Z: val(10)},
			Size: plan.Size{Width: valIn(10, units.Feet), Depth: valIn(8, units.Feet)},
		},
	)

	l := Resolve(d, Options{})
	if countCode(l.Diagnostics, CodeMixedUnits) != 1 {
		t.Fatalf("diagnostics = %v, want exactly one MIXED_UNITS", codes(l.Diagnostics))
	}
	if len(l.Floors[0].Rooms) != 2 {
		t.Errorf("mixed units must not block resolution, got %d rooms", len(l.Floors[0].Rooms))
	}
}

// Cycle isolation: both cycle members are excluded with one diagnostic
// naming both; a dependent of the cycle stays unresolved; a fully
// independent room still resolves.
func TestResolveCycleIsolation(t *testing.T) {
	l := Resolve(doc(
		roomRel("a", "b", plan.RightOf, 0, plan.AlignNone, 2, 2),
		roomRel("b", "a", plan.RightOf, 0, plan.AlignNone, 2, 2),
		roomRel("c", "a", plan.RightOf, 0, plan.AlignNone, 2, 2),
		roomAt("d", 0, 0, 2, 2),
	), Options{})

	if countCode(l.Diagnostics, CodeCircularDependency) != 1 {
		t.Fatalf("diagnostics = %v, want exactly one CIRCULAR_DEPENDENCY", codes(l.Diagnostics))
	}
	var cycle Diagnostic
	for _, diag := range l.Diagnostics {
		if diag.Code == CodeCircularDependency {
			cycle = diag
		}
	}
	if len(cycle.Rooms) != 2 {
		t.Errorf("cycle diagnostic names %v, want both a and b", cycle.Rooms)
	}

	for _, id := range []string{"a", "b", "c"} {
		if _, ok := l.Room("ground", plan.RoomID(id)); ok {
			t.Errorf("room %s resolved, want excluded", id)
		}
	}
	if _, ok := l.Room("ground", "d"); !ok {
		t.Error("independent room d not resolved")
	}
}

func TestResolveSelfReference(t *testing.T) {
	l := Resolve(doc(
		roomRel("narcissus", "narcissus", plan.Below, 0, plan.AlignNone, 2, 2),
		roomAt("other", 0, 0, 2, 2),
	), Options{})

	if countCode(l.Diagnostics, CodeCircularDependency) != 1 {
		t.Fatalf("diagnostics = %v, want one CIRCULAR_DEPENDENCY", codes(l.Diagnostics))
	}
	if _, ok := l.Room("ground", "narcissus"); ok {
		t.Error("self-referencing room resolved, want excluded")
	}
	if _, ok := l.Room("ground", "other"); !ok {
		t.Error("independent room not resolved")
	}
}

func TestResolveMissingReference(t *testing.T) {
	l := Resolve(doc(
		roomAt("a", 0, 0, 2, 2),
		roomRel("b", "ghost", plan.RightOf, 0, plan.AlignNone, 2, 2),
		roomRel("c", "b", plan.RightOf, 0, plan.AlignNone, 2, 2),
	), Options{})

	if countCode(l.Diagnostics, CodeMissingReference) != 1 {
		t.Fatalf("diagnostics = %v, want one MISSING_REFERENCE", codes(l.Diagnostics))
	}
	if _, ok := l.Room("ground", "b"); ok {
		t.Error("room with missing reference resolved, want excluded")
	}
	// c depends on the failed room and stays unresolved without its own
	// diagnostic.
	if _, ok := l.Room("ground", "c"); ok {
		t.Error("dependent of failed room resolved, want excluded")
	}
	if _, ok := l.Room("ground", "a"); !ok {
		t.Error("independent room not resolved")
	}
}

func TestResolveInvalidPosition(t *testing.T) {
	both := plan.Room{
		ID:       "both",
		At:       &plan.Coordinate{X: val(0), Z: val(0)},
		Position: &plan.Relative{Direction: plan.RightOf, Reference: "neither"},
		Size:     plan.Size{Width: val(2), Depth: val(2)},
	}
	neither := plan.Room{
		ID:   "neither",
		Size: plan.Size{Width: val(2), Depth: val(2)},
	}

	l := Resolve(doc(both, neither, roomAt("fine", 10, 10, 2, 2)), Options{})

	if countCode(l.Diagnostics, CodeInvalidPosition) != 2 {
		t.Fatalf("diagnostics = %v, want two INVALID_POSITION", codes(l.Diagnostics))
	}
	if len(l.Floors[0].Rooms) != 1 || l.Floors[0].Rooms[0].ID != "fine" {
		t.Errorf("rooms = %+v, want only fine", l.Floors[0].Rooms)
	}
}

func TestResolveFloorsIndependent(t *testing.T) {
	d := &plan.Document{Floors: []plan.Floor{
		{ID: "ground", Rooms: []plan.Room{
			roomRel("a", "b", plan.RightOf, 0, plan.AlignNone, 2, 2),
			roomRel("b", "a", plan.RightOf, 0, plan.AlignNone, 2, 2),
		}},
		{ID: "first", Rooms: []plan.Room{
			roomAt("a", 0, 0, 4, 4),
		}},
	}}

	l := Resolve(d, Options{})
	if _, ok := l.Room("first", "a"); !ok {
		t.Error("cycle on ground floor must not affect first floor")
	}
	if len(l.Floors) != 2 {
		t.Errorf("floors = %d, want 2 (failed floors still present)", len(l.Floors))
	}
	for _, diag := range l.Diagnostics {
		if diag.Floor != "ground" {
			t.Errorf("diagnostic attributed to %q, want ground: %v", diag.Floor, diag)
		}
	}
}

func TestResolveOverlapWarning(t *testing.T) {
	l := Resolve(doc(
		roomAt("a", 0, 0, 4, 4),
		roomAt("b", 2, 2, 4, 4),
	), Options{})

	if countCode(l.Diagnostics, CodeOverlap) != 1 {
		t.Fatalf("diagnostics = %v, want exactly one OVERLAP", codes(l.Diagnostics))
	}
	// Warnings never block: both rectangles come back unmodified.
	a := mustRoom(t, l, "ground", "a")
	b := mustRoom(t, l, "ground", "b")
	if !rectEqual(a.Rect, Rect{0, 0, 4, 4}) || !rectEqual(b.Rect, Rect{2, 2, 4, 4}) {
		t.Errorf("rectangles modified: a=%+v b=%+v", a.Rect, b.Rect)
	}
}

func TestResolveGapInDocumentUnits(t *testing.T) {
	d := doc(
		roomAt("a", 0, 0, 10, 10),
		roomRel("b", "a", plan.RightOf, 10, plan.AlignNone, 10, 10),
	)
	d.DefaultUnit = "ft"

	l := Resolve(d, Options{})
	b := mustRoom(t, l, "ground", "b")
	want := 20 * 0.3048 // reference width + gap, both in feet
	if math.Abs(b.X-want) > 1e-9 {
		t.Errorf("b.X = %v, want %v", b.X, want)
	}
}
