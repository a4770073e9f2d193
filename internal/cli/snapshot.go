package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/malarbase/mermaid-floorplan-sub010/pkg/pipeline"
	"github.com/malarbase/mermaid-floorplan-sub010/pkg/plan"
	"github.com/malarbase/mermaid-floorplan-sub010/pkg/snapshot"
)

// snapshotCommand creates the snapshot command group for managing stored
// document snapshots. The CLI always uses the file backend; the server
// can use MongoDB instead (see serve --mongo).
func (c *CLI) snapshotCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Manage stored document snapshots",
		Long: `Manage stored document snapshots.

A snapshot freezes a floorplan document under a name so its layout can
be reproduced later, even after the source file changes.

Examples:
  floorplan snapshot save house.json --name before-remodel
  floorplan snapshot list
  floorplan snapshot show 4f9a…
  floorplan snapshot resolve 4f9a…
  floorplan snapshot delete 4f9a…`,
	}

	cmd.AddCommand(c.snapshotSaveCommand())
	cmd.AddCommand(c.snapshotListCommand())
	cmd.AddCommand(c.snapshotShowCommand())
	cmd.AddCommand(c.snapshotResolveCommand())
	cmd.AddCommand(c.snapshotDeleteCommand())

	return cmd
}

// snapshotStore opens the file-based snapshot store under the config dir.
func (c *CLI) snapshotStore() (snapshot.Store, error) {
	return snapshot.NewFileStore("")
}

func (c *CLI) snapshotSaveCommand() *cobra.Command {
	var name, unit string

	cmd := &cobra.Command{
		Use:   "save <file>",
		Short: "Store a snapshot of a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := withLogger(cmd.Context(), c.Logger)

			popts := c.pipelineOptions(args[0])
			doc, _, err := pipeline.Decode(ctx, popts)
			if err != nil {
				return err
			}

			store, err := c.snapshotStore()
			if err != nil {
				return err
			}
			defer store.Close(ctx)

			if unit == "" {
				unit = c.Config.SystemUnit
			}
			if name == "" {
				base := filepath.Base(args[0])
				name = strings.TrimSuffix(base, filepath.Ext(base))
			}
			snap := snapshot.New(name, doc, unit)
			if err := store.Save(ctx, snap); err != nil {
				return err
			}

			printSuccess("Saved snapshot %s", StyleHighlight.Render(name))
			printKeyValue("id", snap.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "snapshot name (defaults to the file name)")
	cmd.Flags().StringVarP(&unit, "unit", "u", "", "fallback unit to freeze with the snapshot")

	return cmd
}

func (c *CLI) snapshotListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored snapshots, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.snapshotStore()
			if err != nil {
				return err
			}
			defer store.Close(cmd.Context())

			infos, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(infos) == 0 {
				printInfo("No snapshots stored")
				return nil
			}
			for _, info := range infos {
				fmt.Printf("%s  %s  %s\n",
					StyleDim.Render(info.ID),
					StyleValue.Render(fmt.Sprintf("%-24s", info.Name)),
					StyleDim.Render(info.CreatedAt.Local().Format("2006-01-02 15:04")))
			}
			return nil
		},
	}
}

func (c *CLI) snapshotShowCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print a snapshot's document as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, store, err := c.getSnapshot(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer store.Close(cmd.Context())

			data, err := plan.MarshalDocument(snap.Document)
			if err != nil {
				return err
			}
			if output == "" {
				fmt.Println(string(data))
				return nil
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return err
			}
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the document to this file")

	return cmd
}

func (c *CLI) snapshotResolveCommand() *cobra.Command {
	var noCache bool

	cmd := &cobra.Command{
		Use:   "resolve <id>",
		Short: "Resolve a snapshot's document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := withLogger(cmd.Context(), c.Logger)

			snap, store, err := c.getSnapshot(ctx, args[0])
			if err != nil {
				return err
			}
			defer store.Close(ctx)

			runner, err := c.newRunner(noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			popts := c.pipelineOptions("")
			popts.Document = snap.Document
			if snap.SystemUnit != "" {
				popts.SystemUnit = snap.SystemUnit
			}
			popts.Formats = []string{pipeline.FormatJSON}
			popts.Diagnostics = true

			result, err := runner.Execute(ctx, popts)
			if err != nil {
				return err
			}

			printInfo("Snapshot %s", StyleHighlight.Render(snap.Name))
			printLayout(result.Layout)
			printDiagnostics(result.Layout.Diagnostics)
			printStats(result.Stats.FloorCount, result.Stats.ResolvedCount,
				result.Stats.DiagnosticCount, result.CacheInfo.LayoutHit)
			return nil
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the layout cache")

	return cmd
}

func (c *CLI) snapshotDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.snapshotStore()
			if err != nil {
				return err
			}
			defer store.Close(cmd.Context())

			if err := store.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			printSuccess("Deleted snapshot %s", args[0])
			return nil
		},
	}
}

// getSnapshot opens the store and fetches one snapshot, turning the
// nil-on-miss contract into an error for CLI display.
func (c *CLI) getSnapshot(ctx context.Context, id string) (*snapshot.Snapshot, snapshot.Store, error) {
	store, err := c.snapshotStore()
	if err != nil {
		return nil, nil, err
	}
	snap, err := store.Get(ctx, id)
	if err != nil {
		store.Close(ctx)
		return nil, nil, err
	}
	if snap == nil {
		store.Close(ctx)
		return nil, nil, fmt.Errorf("%w: %s", snapshot.ErrNotFound, id)
	}
	return snap, store, nil
}
