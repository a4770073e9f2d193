package pipeline

import (
	"fmt"

	"github.com/malarbase/mermaid-floorplan-sub010/pkg/plan"
	"github.com/malarbase/mermaid-floorplan-sub010/pkg/render"
	"github.com/malarbase/mermaid-floorplan-sub010/pkg/resolve"
)

// RenderFromLayout renders the resolved layout in every requested format.
// The document is needed for the DOT format, which draws the unresolved
// dependency graph rather than the resolved geometry.
func RenderFromLayout(l *resolve.Layout, doc *plan.Document, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		data, err := renderFormat(l, doc, format, opts)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

func renderFormat(l *resolve.Layout, doc *plan.Document, format string, opts Options) ([]byte, error) {
	switch format {
	case FormatSVG:
		return renderSVG(l, opts), nil

	case FormatPNG:
		return render.ToPNG(renderSVG(l, opts), DefaultPNGScale)

	case FormatPDF:
		return render.ToPDF(renderSVG(l, opts))

	case FormatJSON:
		jsonOpts := []render.JSONOption{
			render.WithJSONSystemUnit(string(opts.SystemUnitSymbol())),
		}
		if opts.Diagnostics {
			jsonOpts = append(jsonOpts, render.WithJSONDiagnostics())
		}
		return render.RenderJSON(l, jsonOpts...)

	case FormatDOT:
		if doc == nil {
			return nil, fmt.Errorf("dot output requires the source document")
		}
		dot := render.ToDOTDocument(doc, render.DOTOptions{Detailed: opts.Detailed})
		return []byte(dot), nil

	default:
		return nil, fmt.Errorf("invalid format: %q", format)
	}
}

func renderSVG(l *resolve.Layout, opts Options) []byte {
	svgOpts := []render.SVGOption{render.WithScale(opts.Scale)}
	if opts.Grid {
		svgOpts = append(svgOpts, render.WithGrid())
	}
	return render.RenderSVG(l, svgOpts...)
}
