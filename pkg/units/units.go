// Package units implements length units and the conversion rules used by
// the layout resolver.
//
// All resolved geometry is expressed in meters. Input values may carry an
// explicit unit symbol; values without one fall back through a three-level
// hierarchy: the value's own unit, the document-level default, and finally
// the system default supplied by the embedding application.
//
// # Usage
//
//	v := units.Value{Magnitude: 10, Unit: units.Feet}
//	meters := v.ToMeters(units.Resolve(v, doc.DefaultUnit, units.Meters))
package units

import (
	"errors"
	"fmt"
)

// ErrUnknownSymbol is returned by [Parse] when the symbol is not one of
// the supported unit symbols.
var ErrUnknownSymbol = errors.New("unknown unit symbol")

// Symbol identifies a supported length unit.
type Symbol string

// Supported unit symbols.
const (
	// None marks a value that carries no explicit unit. Such values are
	// converted using the resolved default unit.
	None Symbol = ""

	Meters      Symbol = "m"
	Centimeters Symbol = "cm"
	Millimeters Symbol = "mm"
	Feet        Symbol = "ft"
	Inches      Symbol = "in"
)

// factors maps each symbol to its fixed conversion factor to meters.
var factors = map[Symbol]float64{
	Meters:      1,
	Centimeters: 0.01,
	Millimeters: 0.001,
	Feet:        0.3048,
	Inches:      0.0254,
}

// Parse converts a textual unit symbol into a Symbol.
// The empty string parses to None. Returns ErrUnknownSymbol for anything
// outside the closed set.
func Parse(s string) (Symbol, error) {
	switch sym := Symbol(s); sym {
	case None, Meters, Centimeters, Millimeters, Feet, Inches:
		return sym, nil
	default:
		return None, fmt.Errorf("%w: %q", ErrUnknownSymbol, s)
	}
}

// Valid reports whether s is a concrete supported unit (not None).
func (s Symbol) Valid() bool {
	_, ok := factors[s]
	return ok
}

// Metric reports whether s belongs to the metric system.
// None is neither metric nor imperial.
func (s Symbol) Metric() bool {
	switch s {
	case Meters, Centimeters, Millimeters:
		return true
	default:
		return false
	}
}

// Imperial reports whether s belongs to the imperial system.
func (s Symbol) Imperial() bool {
	switch s {
	case Feet, Inches:
		return true
	default:
		return false
	}
}

// Factor returns the conversion factor from s to meters.
// It panics if s is None or otherwise unsupported; callers are expected
// to resolve defaults with [Resolve] first.
func (s Symbol) Factor() float64 {
	f, ok := factors[s]
	if !ok {
		panic(fmt.Sprintf("units: no conversion factor for symbol %q", string(s)))
	}
	return f
}

// Value is a magnitude with an optional unit symbol.
// Unit == None means the value inherits the effective default unit.
// Values are immutable once parsed.
type Value struct {
	Magnitude float64 `json:"magnitude" toml:"magnitude"`
	Unit      Symbol  `json:"unit,omitempty" toml:"unit,omitempty"`
}

// Resolve computes the effective unit for v: the value's own unit if
// present, otherwise docDefault if present, otherwise systemDefault.
// Pure and total; it never fails.
func Resolve(v Value, docDefault, systemDefault Symbol) Symbol {
	if v.Unit != None {
		return v.Unit
	}
	if docDefault != None {
		return docDefault
	}
	return systemDefault
}

// ToMeters converts v to meters using the given effective unit.
// The effective unit is usually obtained from [Resolve].
func (v Value) ToMeters(effective Symbol) float64 {
	return v.Magnitude * effective.Factor()
}

// Meters is a convenience that resolves the effective unit and converts
// in one step.
func (v Value) Meters(docDefault, systemDefault Symbol) float64 {
	return v.ToMeters(Resolve(v, docDefault, systemDefault))
}

// MixedSystems reports whether both metric and imperial units appear
// among the explicitly tagged values. Unit-less values never count.
// The resolver uses this to emit a single document-level warning.
func MixedSystems(values []Value) bool {
	var metric, imperial bool
	for _, v := range values {
		switch {
		case v.Unit.Metric():
			metric = true
		case v.Unit.Imperial():
			imperial = true
		}
	}
	return metric && imperial
}
