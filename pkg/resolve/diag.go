// Package resolve turns a parsed floorplan document into absolute,
// meter-canonical room rectangles.
//
// Resolution runs once per floor through a fixed sequence of stages:
// dependency graph construction, cycle detection and topological
// ordering, placement arithmetic, and overlap detection. Floors are
// independent of each other. The whole pass is a pure function of the
// input document and the configured default unit: no I/O, no hidden
// state, and the same input always produces the same output.
//
// Failures are scoped as narrowly as possible. A room with a broken
// position, a missing reference, or a circular dependency is excluded
// (together with everything that transitively depends on it) while every
// unrelated room still resolves. The resolver therefore never returns a
// Go error: it always returns a possibly partial [Layout] plus the full
// diagnostic list.
package resolve

import (
	"fmt"
	"slices"
	"strings"

	"github.com/malarbase/mermaid-floorplan-sub010/pkg/plan"
)

// Severity classifies a diagnostic.
type Severity int

const (
	// SeverityError marks a condition that blocks resolution of the
	// affected rooms. Errors never block the rest of the floor.
	SeverityError Severity = iota

	// SeverityWarning marks a condition that never blocks resolution.
	SeverityWarning
)

// String returns "error" or "warning".
func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// Code is a machine-readable diagnostic code.
type Code string

// Diagnostic codes emitted by the resolver.
const (
	// CodeInvalidPosition: a room declares both an explicit coordinate
	// and a relative position, or neither.
	CodeInvalidPosition Code = "INVALID_POSITION"

	// CodeMissingReference: a relative position names a room id that
	// does not exist on the floor.
	CodeMissingReference Code = "MISSING_REFERENCE"

	// CodeCircularDependency: a chain of relative positions loops back
	// on itself. Self-references are a one-room instance of this.
	CodeCircularDependency Code = "CIRCULAR_DEPENDENCY"

	// CodeInvalidUnitConfiguration: the document configures a default
	// unit symbol outside the supported set.
	CodeInvalidUnitConfiguration Code = "INVALID_UNIT_CONFIGURATION"

	// CodeMixedUnits: explicitly tagged metric and imperial values
	// coexist in one document. Emitted at most once per document.
	CodeMixedUnits Code = "MIXED_UNITS"

	// CodeOverlap: two resolved rooms on the same floor intersect.
	CodeOverlap Code = "OVERLAP"
)

// Diagnostic describes a problem found during resolution. Rooms carries
// every room involved (both members of an overlap, the full cycle path)
// so callers can map the diagnostic back to source locations.
type Diagnostic struct {
	Severity Severity     `json:"severity"`
	Code     Code         `json:"code"`
	Floor    string       `json:"floor,omitempty"`
	Rooms    []plan.RoomID `json:"rooms,omitempty"`
	Message  string       `json:"message"`
}

// String formats the diagnostic for human display, e.g.
// "error CIRCULAR_DEPENDENCY [kitchen, pantry]: ...".
func (d Diagnostic) String() string {
	var b strings.Builder
	b.WriteString(d.Severity.String())
	b.WriteByte(' ')
	b.WriteString(string(d.Code))
	if len(d.Rooms) > 0 {
		ids := make([]string, len(d.Rooms))
		for i, id := range d.Rooms {
			ids[i] = string(id)
		}
		fmt.Fprintf(&b, " [%s]", strings.Join(ids, ", "))
	}
	b.WriteString(": ")
	b.WriteString(d.Message)
	return b.String()
}

// collector accumulates diagnostics in emission order. Stages run in a
// fixed sequence per floor, so append order already matches the
// floor-then-stage ordering the output promises.
type collector struct {
	diags []Diagnostic
	floor string
}

func (c *collector) errorf(code Code, rooms []plan.RoomID, format string, args ...any) {
	c.diags = append(c.diags, Diagnostic{
		Severity: SeverityError,
		Code:     code,
		Floor:    c.floor,
		Rooms:    rooms,
		Message:  fmt.Sprintf(format, args...),
	})
}

func (c *collector) warnf(code Code, rooms []plan.RoomID, format string, args ...any) {
	c.diags = append(c.diags, Diagnostic{
		Severity: SeverityWarning,
		Code:     code,
		Floor:    c.floor,
		Rooms:    rooms,
		Message:  fmt.Sprintf(format, args...),
	})
}

// Errors reports whether any diagnostic in diags is an error.
func Errors(diags []Diagnostic) bool {
	return slices.ContainsFunc(diags, func(d Diagnostic) bool {
		return d.Severity == SeverityError
	})
}

// Warnings reports whether any diagnostic in diags is a warning.
func Warnings(diags []Diagnostic) bool {
	return slices.ContainsFunc(diags, func(d Diagnostic) bool {
		return d.Severity == SeverityWarning
	})
}
