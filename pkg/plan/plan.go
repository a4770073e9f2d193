// Package plan defines the immutable document model consumed by the
// layout resolver.
//
// A Document is a set of floors, each owning a list of rooms. A room is
// placed either at an explicit coordinate or relative to another room on
// the same floor (direction + reference + gap + alignment). All
// dimensional values may carry an explicit unit; the document may also
// configure a default unit applied to unit-less values.
//
// The model is produced by an external frontend (a DSL parser, an editor,
// or the JSON/TOML codecs in this package) and is treated as read-only by
// everything downstream.
package plan

import (
	"github.com/malarbase/mermaid-floorplan-sub010/pkg/units"
)

// RoomID identifies a room within its floor.
type RoomID string

// Direction describes where a room sits relative to its reference room.
// The set is closed: four cardinal directions and four diagonals.
type Direction string

// Cardinal directions place the room on one side of the reference and
// leave one axis free for alignment. Diagonal directions pin both axes
// against the reference's corner, so no alignment applies.
const (
	RightOf Direction = "right-of"
	LeftOf  Direction = "left-of"
	Above   Direction = "above"
	Below   Direction = "below"

	AboveRightOf Direction = "above-right-of"
	AboveLeftOf  Direction = "above-left-of"
	BelowRightOf Direction = "below-right-of"
	BelowLeftOf  Direction = "below-left-of"
)

// Valid reports whether d is one of the eight supported directions.
func (d Direction) Valid() bool {
	switch d {
	case RightOf, LeftOf, Above, Below,
		AboveRightOf, AboveLeftOf, BelowRightOf, BelowLeftOf:
		return true
	default:
		return false
	}
}

// Diagonal reports whether d pins both axes against the reference.
func (d Direction) Diagonal() bool {
	switch d {
	case AboveRightOf, AboveLeftOf, BelowRightOf, BelowLeftOf:
		return true
	default:
		return false
	}
}

// Horizontal reports whether d is a cardinal horizontal direction.
func (d Direction) Horizontal() bool {
	return d == RightOf || d == LeftOf
}

// Vertical reports whether d is a cardinal vertical direction.
func (d Direction) Vertical() bool {
	return d == Above || d == Below
}

// Alignment controls how the free axis of a cardinally placed room lines
// up with its reference. Diagonal directions have no free axis and take
// no alignment.
type Alignment string

// Supported alignments. Horizontal directions accept top, bottom and
// center; vertical directions accept left, right and center.
const (
	AlignNone   Alignment = ""
	AlignTop    Alignment = "top"
	AlignBottom Alignment = "bottom"
	AlignLeft   Alignment = "left"
	AlignRight  Alignment = "right"
	AlignCenter Alignment = "center"
)

// Valid reports whether a is a known alignment (including AlignNone).
func (a Alignment) Valid() bool {
	switch a {
	case AlignNone, AlignTop, AlignBottom, AlignLeft, AlignRight, AlignCenter:
		return true
	default:
		return false
	}
}

// DefaultAlignment returns the alignment applied when a relative position
// does not specify one: horizontal directions default to top, vertical
// directions to left. Diagonals return AlignNone.
func (d Direction) DefaultAlignment() Alignment {
	switch d {
	case RightOf, LeftOf:
		return AlignTop
	case Above, Below:
		return AlignLeft
	default:
		return AlignNone
	}
}

// Coordinate is an explicit room origin in document units.
type Coordinate struct {
	X units.Value `json:"x" toml:"x"`
	Z units.Value `json:"z" toml:"z"`
}

// Relative positions a room against another room on the same floor.
type Relative struct {
	Direction Direction   `json:"direction" toml:"direction"`
	Reference RoomID      `json:"reference" toml:"reference"`
	Gap       units.Value `json:"gap,omitempty" toml:"gap,omitempty"`
	Alignment Alignment   `json:"alignment,omitempty" toml:"alignment,omitempty"`
}

// Size is a room footprint: width along x, depth along z.
type Size struct {
	Width units.Value `json:"width" toml:"width"`
	Depth units.Value `json:"depth" toml:"depth"`
}

// Room is an unresolved room as declared in the source document.
// Exactly one of At or Position must be set; a room with neither or both
// is reported by the resolver as a per-room error.
type Room struct {
	ID       RoomID      `json:"id" toml:"id"`
	At       *Coordinate `json:"at,omitempty" toml:"at,omitempty"`
	Position *Relative   `json:"position,omitempty" toml:"position,omitempty"`
	Size     Size        `json:"size" toml:"size"`
}

// Floor owns a set of rooms. Floors are resolved independently; relative
// references never cross floors.
type Floor struct {
	ID    string `json:"id" toml:"id"`
	Rooms []Room `json:"rooms" toml:"rooms"`
}

// Room returns the room with the given id and true, or a zero Room and
// false if the floor has no such room.
func (f *Floor) Room(id RoomID) (Room, bool) {
	for _, r := range f.Rooms {
		if r.ID == id {
			return r, true
		}
	}
	return Room{}, false
}

// Document is a complete parsed floorplan.
//
// DefaultUnit is kept as the raw configured symbol so the resolver can
// report an unrecognized value as a diagnostic instead of failing the
// decode; use [units.Parse] to interpret it.
type Document struct {
	Title       string  `json:"title,omitempty" toml:"title,omitempty"`
	DefaultUnit string  `json:"default_unit,omitempty" toml:"default_unit,omitempty"`
	Floors      []Floor `json:"floors" toml:"floors"`
}

// Values returns every dimensional value that appears in the document:
// sizes, explicit coordinates and gaps. The resolver feeds this to the
// mixed-unit check.
func (d *Document) Values() []units.Value {
	var vals []units.Value
	for _, f := range d.Floors {
		for _, r := range f.Rooms {
			vals = append(vals, r.Size.Width, r.Size.Depth)
			if r.At != nil {
				vals = append(vals, r.At.X, r.At.Z)
			}
			if r.Position != nil {
				vals = append(vals, r.Position.Gap)
			}
		}
	}
	return vals
}
