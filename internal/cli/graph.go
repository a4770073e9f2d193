package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/malarbase/mermaid-floorplan-sub010/pkg/pipeline"
	"github.com/malarbase/mermaid-floorplan-sub010/pkg/render"
)

// graphOpts holds the command-line flags for the graph command.
type graphOpts struct {
	output   string // output file path (stdout if empty for dot)
	format   string // dot, svg, or png
	detailed bool   // include room dimensions in labels
}

// graphCommand creates the graph command. It emits the room dependency
// graph (who is positioned relative to whom) without resolving it.
func (c *CLI) graphCommand() *cobra.Command {
	var opts graphOpts

	cmd := &cobra.Command{
		Use:   "graph <file>",
		Short: "Emit the room dependency graph",
		Long: `Emit the room dependency graph of a floorplan document.

Each edge points from a room to the room it is positioned relative to.
Floors become subgraph clusters. The dot format prints Graphviz
syntax; svg and png render it via the embedded Graphviz engine.

Examples:
  floorplan graph house.json
  floorplan graph house.json -f svg -o deps.svg
  floorplan graph house.json --detailed`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGraph(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty for dot)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "dot", "output format: dot, svg, png")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "include room dimensions in labels")

	return cmd
}

func (c *CLI) runGraph(cmd *cobra.Command, source string, opts graphOpts) error {
	ctx := withLogger(cmd.Context(), c.Logger)
	prog := newProgress(loggerFromContext(ctx))

	popts := c.pipelineOptions(source)
	doc, _, err := pipeline.Decode(ctx, popts)
	if err != nil {
		return err
	}

	dot := render.ToDOTDocument(doc, render.DOTOptions{Detailed: opts.detailed})

	var data []byte
	switch opts.format {
	case "dot":
		data = []byte(dot)
	case "svg":
		data, err = render.RenderGraphSVG(dot)
	case "png":
		data, err = render.RenderGraphPNG(dot, pipeline.DefaultPNGScale)
	default:
		return fmt.Errorf("invalid format: %s (must be 'dot', 'svg', or 'png')", opts.format)
	}
	if err != nil {
		return err
	}

	if opts.output == "" && opts.format == "dot" {
		fmt.Print(string(data))
		return nil
	}
	path := opts.output
	if path == "" {
		path = basePath("", source) + "_deps." + opts.format
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	prog.done("Generated dependency graph")
	printFile(path)
	return nil
}
