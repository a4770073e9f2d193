// Package pkg provides the core libraries for floorplan layout resolution.
//
// # Overview
//
// Floorplan turns declarative floorplan documents (rooms placed at
// explicit coordinates or relative to other rooms) into absolute 2D
// layouts in meters. The pkg directory is organized as:
//
//  1. [plan] - Document model and JSON/TOML codecs
//  2. [units] - Unit symbols, conversion, and the default hierarchy
//  3. [resolve] - Dependency graph, ordering, placement, diagnostics
//  4. [render] - SVG, JSON, and Graphviz DOT output
//  5. [pipeline] - Orchestration (decode → resolve → render) with caching
//  6. [cache] / [snapshot] - Storage backends (file, Redis, MongoDB)
//
// # Architecture
//
// The typical data flow:
//
//	JSON/TOML document
//	         ↓
//	    [plan] package (decode + validate)
//	         ↓
//	    [resolve] package (graph, topological order, placement)
//	         ↓
//	    [render] package (SVG / JSON / DOT / PNG / PDF)
//
// # Quick Start
//
// Resolve a document and render an SVG:
//
//	import (
//	    "github.com/malarbase/mermaid-floorplan-sub010/pkg/plan"
//	    "github.com/malarbase/mermaid-floorplan-sub010/pkg/render"
//	    "github.com/malarbase/mermaid-floorplan-sub010/pkg/resolve"
//	)
//
//	// 1. Decode the document
//	doc, _ := plan.ReadDocumentFile("house.json")
//
//	// 2. Resolve room positions
//	layout := resolve.Resolve(doc, resolve.Options{})
//
//	// 3. Render to SVG
//	svg := render.RenderSVG(layout, render.WithGrid())
//
// Problems inside a document (cycles, missing references, overlaps) are
// returned as diagnostics on the layout rather than errors; rooms that
// can be placed are placed regardless.
//
// # Main Packages
//
// [plan] - The source document model: floors, rooms, coordinates,
// relative positions. Reads JSON and TOML, writes canonical JSON.
//
// [units] - Dimensional values with optional unit symbols and the
// three-level default hierarchy (value unit, document default, system
// default).
//
// [resolve] - The resolver core. Builds a per-floor dependency graph
// from relative positions, orders it topologically (isolating cycles),
// places rooms, and detects overlaps.
//
// [render] - Output generation: floor plan SVG (optionally with a meter
// grid), layout JSON, dependency graph DOT (rendered via Graphviz), and
// PNG/PDF conversion.
//
// [pipeline] - Ties the stages together with content-addressed caching
// so repeated resolves and renders of the same document are cheap.
//
// [cache] - Byte-level cache backends: file (CLI), Redis (server), and
// a null cache for tests.
//
// [snapshot] - Named, persistent copies of documents: file-based for
// the CLI, MongoDB for the server.
package pkg
