// Package render turns resolved floor layouts into visual and data outputs.
//
// # Overview
//
// This package contains the rendering stage of the pipeline. It provides:
//
//   - Scaled SVG floor plans ([RenderSVG])
//   - JSON layout export ([RenderJSON])
//   - Graphviz node-link diagrams of room dependencies ([ToDOT], [RenderGraphSVG])
//   - Generic format conversion (SVG to PDF/PNG)
//
// # Coordinate Mapping
//
// Resolved layouts are in meters with x growing right and z growing down,
// which matches SVG's y axis directly. Each floor is rendered into its own
// viewport: the floor's bounding box (plus margin) is translated to the
// origin and multiplied by the pixels-per-meter scale. Floors are stacked
// vertically in document order.
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg). They are shared by the
// floor plan and node-link renderers.
//
//	svg := render.RenderSVG(layout, render.WithScale(30))
//	pdf, err := render.ToPDF(svg)
//	png, err := render.ToPNG(svg, 2.0)  // 2x scale
package render
