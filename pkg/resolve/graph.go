package resolve

import (
	"github.com/malarbase/mermaid-floorplan-sub010/pkg/plan"
)

// Graph is the dependency graph of one floor's relative positions.
// An edge points from a referenced room to the room placed relative to
// it, so a topological walk resolves references before their dependents.
//
// Nodes are keyed by room id, not by object identity: a cycle here is a
// logical dependency loop in the document, not a pointer loop. Rooms with
// an explicit coordinate are nodes without incoming edges.
type Graph struct {
	floor    string
	order    []plan.RoomID // node ids in floor declaration order
	nodes    map[plan.RoomID]plan.Room
	outgoing map[plan.RoomID][]plan.RoomID // referenced room -> dependents
	incoming map[plan.RoomID][]plan.RoomID // dependent -> referenced rooms
}

// NodeCount returns the number of rooms in the graph.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of reference edges.
func (g *Graph) EdgeCount() int {
	n := 0
	for _, deps := range g.outgoing {
		n += len(deps)
	}
	return n
}

// Nodes returns the room ids in floor declaration order.
func (g *Graph) Nodes() []plan.RoomID { return g.order }

// Room returns the declared room for id and whether it is in the graph.
func (g *Graph) Room(id plan.RoomID) (plan.Room, bool) {
	r, ok := g.nodes[id]
	return r, ok
}

// Dependents returns the rooms positioned relative to id.
func (g *Graph) Dependents(id plan.RoomID) []plan.RoomID { return g.outgoing[id] }

// References returns the rooms id is positioned relative to (at most one
// in a valid document, kept as a list for uniform traversal).
func (g *Graph) References(id plan.RoomID) []plan.RoomID { return g.incoming[id] }

// BuildGraph scans a floor's rooms and constructs the dependency graph.
//
// Rooms that declare both an explicit coordinate and a relative position,
// or neither, are reported with CodeInvalidPosition and excluded. A
// relative position whose reference is not a known room id on the floor
// is reported with CodeMissingReference and the room is likewise
// excluded; it stays out of the output rather than being silently
// dropped, and anything depending on it fails to resolve downstream.
//
// Self-references produce a normal edge; the cycle detector reports them
// as a one-room cycle.
func BuildGraph(floor *plan.Floor) (*Graph, []Diagnostic) {
	col := collector{floor: floor.ID}

	known := make(map[plan.RoomID]struct{}, len(floor.Rooms))
	for _, r := range floor.Rooms {
		known[r.ID] = struct{}{}
	}

	g := &Graph{
		floor:    floor.ID,
		nodes:    make(map[plan.RoomID]plan.Room, len(floor.Rooms)),
		outgoing: make(map[plan.RoomID][]plan.RoomID),
		incoming: make(map[plan.RoomID][]plan.RoomID),
	}

	for _, r := range floor.Rooms {
		switch {
		case r.At != nil && r.Position != nil:
			col.errorf(CodeInvalidPosition, []plan.RoomID{r.ID},
				"room %s declares both an explicit coordinate and a relative position", r.ID)
			continue
		case r.At == nil && r.Position == nil:
			col.errorf(CodeInvalidPosition, []plan.RoomID{r.ID},
				"room %s declares no position", r.ID)
			continue
		}

		if p := r.Position; p != nil {
			if _, ok := known[p.Reference]; !ok {
				col.errorf(CodeMissingReference, []plan.RoomID{r.ID},
					"room %s references unknown room %s", r.ID, p.Reference)
				continue
			}
		}

		g.nodes[r.ID] = r
		g.order = append(g.order, r.ID)
	}

	// Edges only between surviving nodes: a dependent of an excluded
	// room keeps its node but the missing edge means its reference never
	// resolves, which excludes it during placement.
	for _, id := range g.order {
		r := g.nodes[id]
		if r.Position == nil {
			continue
		}
		ref := r.Position.Reference
		if _, ok := g.nodes[ref]; !ok {
			continue
		}
		g.outgoing[ref] = append(g.outgoing[ref], id)
		g.incoming[id] = append(g.incoming[id], ref)
	}

	return g, col.diags
}
