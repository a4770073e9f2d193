package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/malarbase/mermaid-floorplan-sub010/pkg/plan"
	"github.com/malarbase/mermaid-floorplan-sub010/pkg/resolve"
)

// DOTOptions configures node-link diagram rendering.
type DOTOptions struct {
	// Detailed includes room dimensions in node labels.
	// When false, only the room ID is shown.
	Detailed bool
}

// ToDOT converts a room dependency graph to Graphviz DOT format.
// Edges point from a room to the room it is positioned relative to.
// The resulting DOT string can be rendered using [RenderGraphSVG] or
// [RenderGraphPNG].
func ToDOT(g *resolve.Graph, opts DOTOptions) string {
	var buf bytes.Buffer
	buf.WriteString("digraph rooms {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, id := range g.Nodes() {
		label := string(id)
		if opts.Detailed {
			if room, ok := g.Room(id); ok {
				label = fmt.Sprintf("%s\n%s x %s", id,
					formatValue(room.Size.Width.Magnitude, string(room.Size.Width.Unit)),
					formatValue(room.Size.Depth.Magnitude, string(room.Size.Depth.Unit)))
			}
		}
		fmt.Fprintf(&buf, "  %q [label=%q];\n", id, label)
	}

	buf.WriteString("\n")
	for _, id := range g.Nodes() {
		for _, ref := range g.References(id) {
			fmt.Fprintf(&buf, "  %q -> %q;\n", id, ref)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// ToDOTDocument converts every floor of a document to a single DOT graph,
// one cluster per floor. Rooms excluded by BuildGraph still appear as nodes
// so broken references stay visible in the diagram.
func ToDOTDocument(doc *plan.Document, opts DOTOptions) string {
	var buf bytes.Buffer
	buf.WriteString("digraph plan {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("\n")

	for i := range doc.Floors {
		floor := &doc.Floors[i]
		g, _ := resolve.BuildGraph(floor)

		fmt.Fprintf(&buf, "  subgraph cluster_%d {\n", i)
		fmt.Fprintf(&buf, "    label=%q;\n", floor.ID)
		for _, room := range floor.Rooms {
			label := string(room.ID)
			if opts.Detailed {
				label = fmt.Sprintf("%s\n%s x %s", room.ID,
					formatValue(room.Size.Width.Magnitude, string(room.Size.Width.Unit)),
					formatValue(room.Size.Depth.Magnitude, string(room.Size.Depth.Unit)))
			}
			fmt.Fprintf(&buf, "    %q [label=%q];\n", nodeID(floor.ID, room.ID), label)
		}
		for _, id := range g.Nodes() {
			for _, ref := range g.References(id) {
				fmt.Fprintf(&buf, "    %q -> %q;\n", nodeID(floor.ID, id), nodeID(floor.ID, ref))
			}
		}
		buf.WriteString("  }\n")
	}

	buf.WriteString("}\n")
	return buf.String()
}

// nodeID scopes room IDs per floor so identical IDs on different floors
// stay distinct nodes.
func nodeID(floor string, room plan.RoomID) string {
	return floor + "/" + string(room)
}

func formatValue(magnitude float64, unit string) string {
	s := strconv.FormatFloat(magnitude, 'f', -1, 64)
	if unit == "" {
		return s
	}
	return s + unit
}

// RenderGraphSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with
// [ToPDF] or [ToPNG].
func RenderGraphSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites Graphviz's SVG header so the viewBox starts at
// the origin and the pixel size matches it.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}

// RenderGraphPNG renders a DOT graph as PNG via SVG conversion.
// A scale of 2.0 produces a 2x resolution image suitable for high-DPI displays.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderGraphPNG(dot string, scale float64) ([]byte, error) {
	svg, err := RenderGraphSVG(dot)
	if err != nil {
		return nil, err
	}
	return ToPNG(svg, scale)
}
