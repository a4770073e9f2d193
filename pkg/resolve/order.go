package resolve

import (
	"slices"
	"strings"

	"github.com/malarbase/mermaid-floorplan-sub010/pkg/plan"
)

// Order produces a topological ordering of the graph: every referenced
// room appears before the rooms placed relative to it.
//
// Cycles are detected with a depth-first traversal using white/gray/black
// coloring; an edge into a gray node closes a cycle. Each cycle produces
// one CodeCircularDependency diagnostic naming every room on the cycle
// path, and all of its members are excluded from the returned order.
// Rooms that do not depend on a cycle are ordered normally; rooms that
// transitively depend on one stay in the order but fail placement later
// because their reference never resolves.
//
// The traversal visits roots in floor declaration order and children in
// edge insertion order, so the result is deterministic for a given
// document.
func Order(g *Graph) ([]plan.RoomID, []Diagnostic) {
	const (
		white = iota
		gray
		black
	)

	col := collector{}
	color := make(map[plan.RoomID]int, g.NodeCount())
	inCycle := make(map[plan.RoomID]bool)

	var path []plan.RoomID
	var postorder []plan.RoomID

	var dfs func(id plan.RoomID)
	dfs = func(id plan.RoomID) {
		color[id] = gray
		path = append(path, id)

		for _, dep := range g.Dependents(id) {
			switch color[dep] {
			case white:
				dfs(dep)
			case gray:
				cycle := cyclePath(path, dep)
				for _, member := range cycle {
					inCycle[member] = true
				}
				col.errorf(CodeCircularDependency, cycle,
					"circular dependency: %s", joinCycle(cycle))
			}
		}

		path = path[:len(path)-1]
		color[id] = black
		postorder = append(postorder, id)
	}

	for _, id := range g.Nodes() {
		if color[id] == white {
			dfs(id)
		}
	}

	// Reverse postorder is a topological order for the acyclic part.
	slices.Reverse(postorder)
	order := make([]plan.RoomID, 0, len(postorder))
	for _, id := range postorder {
		if !inCycle[id] {
			order = append(order, id)
		}
	}

	for i := range col.diags {
		col.diags[i].Floor = g.floor
	}
	return order, col.diags
}

// cyclePath extracts the cycle members from the DFS path: everything from
// the first occurrence of entry to the top of the stack.
func cyclePath(path []plan.RoomID, entry plan.RoomID) []plan.RoomID {
	start := slices.Index(path, entry)
	if start < 0 {
		return []plan.RoomID{entry}
	}
	return slices.Clone(path[start:])
}

// joinCycle renders a cycle as "a -> b -> a" for diagnostics.
func joinCycle(cycle []plan.RoomID) string {
	ids := make([]string, 0, len(cycle)+1)
	for _, id := range cycle {
		ids = append(ids, string(id))
	}
	ids = append(ids, string(cycle[0]))
	return strings.Join(ids, " -> ")
}
