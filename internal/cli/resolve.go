package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/malarbase/mermaid-floorplan-sub010/pkg/pipeline"
	"github.com/malarbase/mermaid-floorplan-sub010/pkg/resolve"
)

// resolveOpts holds the command-line flags for the resolve command.
type resolveOpts struct {
	unit    string // fallback unit symbol ("m" or "ft")
	output  string // write layout JSON here instead of printing a table
	noCache bool   // disable the layout cache entirely
	refresh bool   // bypass cached layouts but store the fresh result
	quiet   bool   // only print diagnostics
}

// resolveCommand creates the resolve command. It runs the pipeline up to
// the resolve stage and prints the absolute room positions per floor,
// followed by any diagnostics.
func (c *CLI) resolveCommand() *cobra.Command {
	var opts resolveOpts

	cmd := &cobra.Command{
		Use:   "resolve <file>",
		Short: "Compute absolute room positions and print diagnostics",
		Long: `Resolve a floorplan document into absolute room positions.

Each room is placed either at its explicit coordinate or relative to
another room. Unresolvable rooms (cycles, missing references) are
reported as diagnostics; the rest of the plan still resolves.

Examples:
  floorplan resolve house.json
  floorplan resolve house.toml --unit ft
  floorplan resolve house.json -o layout.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runResolve(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.unit, "unit", "u", "", "fallback unit when the document sets none (m, ft)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the resolved layout as JSON to this file")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the layout cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute even if a cached layout exists")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "only print diagnostics")

	return cmd
}

func (c *CLI) runResolve(cmd *cobra.Command, source string, opts resolveOpts) error {
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
	popts.Refresh = opts.refresh
	popts.Formats = []string{pipeline.FormatJSON}
	popts.Diagnostics = true

	sp := newSpinnerWithContext(ctx, fmt.Sprintf("Resolving %s", source))
	sp.Start()
	result, err := runner.Execute(ctx, popts)
	sp.Stop()
	if sp.Cancelled() {
		return ctx.Err()
	}
	if err != nil {
		printError("Resolve failed: %v", err)
		return err
	}

	if opts.output != "" {
		if err := os.WriteFile(opts.output, result.Artifacts[pipeline.FormatJSON], 0o644); err != nil {
			return err
		}
		printSuccess("Resolved %s", source)
		printFile(opts.output)
	} else if !opts.quiet {
		printLayout(result.Layout)
	}

	printDiagnostics(result.Layout.Diagnostics)
	printStats(result.Stats.FloorCount, result.Stats.ResolvedCount,
		result.Stats.DiagnosticCount, result.CacheInfo.LayoutHit)

	if resolve.Errors(result.Layout.Diagnostics) {
		printNewline()
		printNextStep("Inspect interactively", "floorplan inspect "+source)
	} else if resolve.Warnings(result.Layout.Diagnostics) {
		printNewline()
		printNextStep("Render with overlap highlighting", "floorplan render "+source)
	}
	return nil
}

// printLayout prints each floor's resolved rooms as an aligned table.
func printLayout(l *resolve.Layout) {
	for _, floor := range l.Floors {
		printNewline()
		fmt.Println(StyleTitle.Render(floor.ID))
		if len(floor.Rooms) == 0 {
			printDetail("no resolved rooms")
			continue
		}
		for _, room := range floor.Rooms {
			pos := fmt.Sprintf("(%.2f, %.2f)", room.X, room.Z)
			size := fmt.Sprintf("%.2f × %.2f m", room.Width, room.Depth)
			fmt.Printf("  %s %s %s\n",
				StyleValue.Render(fmt.Sprintf("%-16s", string(room.ID))),
				StyleNumber.Render(fmt.Sprintf("%-18s", pos)),
				StyleDim.Render(size))
		}
	}
	printNewline()
}

// printDiagnostics prints resolver diagnostics with severity styling.
func printDiagnostics(diags []resolve.Diagnostic) {
	for _, d := range diags {
		switch d.Severity {
		case resolve.SeverityError:
			printError("%s", d.String())
		default:
			printWarning("%s", d.String())
		}
	}
}
