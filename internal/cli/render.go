package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/malarbase/mermaid-floorplan-sub010/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output      string   // output file path (or base path for multiple formats)
	formats     []string // output formats: svg, png, pdf, json, dot
	unit        string   // fallback unit symbol
	scale       float64  // pixels per meter
	grid        bool     // draw 1-meter grid lines
	detailed    bool     // include dimensions in DOT labels
	diagnostics bool     // include diagnostics in JSON output
	noCache     bool     // disable the cache entirely
	refresh     bool     // bypass cached layouts and artifacts
}

// renderCommand creates the render command for generating layout outputs.
// It supports SVG, PNG, PDF, JSON, and DOT formats, possibly several at once.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render <file>",
		Short: "Render a floorplan document to SVG(s)",
		Long: `Render a floorplan document into one or more output formats.

Formats:
  svg   floor plan drawing, floors stacked vertically
  png   raster version of the SVG (requires rsvg-convert)
  pdf   print version of the SVG (requires rsvg-convert)
  json  resolved layout data
  dot   room dependency graph in Graphviz syntax

Examples:
  floorplan render house.json
  floorplan render house.json -f svg,json -o out/house
  floorplan render house.toml --scale 40 --grid`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}
			return c.runRender(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, pdf, json, dot (comma-separated)")
	cmd.Flags().StringVarP(&opts.unit, "unit", "u", "", "fallback unit when the document sets none (m, ft)")
	cmd.Flags().Float64Var(&opts.scale, "scale", 0, "pixels per meter (default 20)")
	cmd.Flags().BoolVar(&opts.grid, "grid", false, "draw 1-meter grid lines")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "include room dimensions in DOT labels")
	cmd.Flags().BoolVar(&opts.diagnostics, "diagnostics", false, "include diagnostics in JSON output")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute even if cached outputs exist")

	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, source string, opts renderOpts) error {
	ctx := withLogger(cmd.Context(), c.Logger)

	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	popts := c.pipelineOptions(source)
	if opts.unit != "" {
		popts.SystemUnit = opts.unit
	}
	if opts.scale != 0 {
		popts.Scale = opts.scale
	}
	if opts.grid {
		popts.Grid = true
	}
	popts.Refresh = opts.refresh
	popts.Formats = opts.formats
	popts.Detailed = opts.detailed
	popts.Diagnostics = opts.diagnostics

	sp := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s", source))
	sp.Start()
	result, err := runner.Execute(ctx, popts)
	sp.Stop()
	if sp.Cancelled() {
		return ctx.Err()
	}
	if err != nil {
		printError("Render failed: %v", err)
		return err
	}

	paths, err := writeArtifacts(result.Artifacts, opts.formats, opts.output, source)
	if err != nil {
		return err
	}

	printSuccess("Rendered %s", source)
	for _, path := range paths {
		printFile(path)
	}
	printDiagnostics(result.Layout.Diagnostics)
	printStats(result.Stats.FloorCount, result.Stats.ResolvedCount,
		result.Stats.DiagnosticCount, result.CacheInfo.LayoutHit && result.CacheInfo.RenderHit)
	return nil
}

// writeArtifacts writes one file per requested format and returns the
// paths written. With a single format the output path is used verbatim
// when given; with several, it is treated as a base path.
func writeArtifacts(artifacts map[string][]byte, formats []string, output, input string) ([]string, error) {
	if len(formats) == 1 && output != "" {
		if err := os.WriteFile(output, artifacts[formats[0]], 0o644); err != nil {
			return nil, err
		}
		return []string{output}, nil
	}

	base := basePath(output, input)
	paths := make([]string, 0, len(formats))
	for _, format := range formats {
		path := base + "." + format
		if err := os.WriteFile(path, artifacts[format], 0o644); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}
