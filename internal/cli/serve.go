package cli

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/malarbase/mermaid-floorplan-sub010/internal/api"
	"github.com/malarbase/mermaid-floorplan-sub010/pkg/cache"
	"github.com/malarbase/mermaid-floorplan-sub010/pkg/pipeline"
	"github.com/malarbase/mermaid-floorplan-sub010/pkg/snapshot"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr        string // listen address
	redis       string // Redis address for the cache backend
	mongo       string // MongoDB URI for the snapshot backend
	snapshotDir string // directory for file-based snapshots
	noCache     bool   // disable caching entirely
}

// serveCommand creates the serve command, which runs the HTTP API.
// Backends are chosen by flags: Redis replaces the file cache when
// --redis is set, and MongoDB replaces file snapshots when --mongo is.
func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{addr: ":8080"}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Long: `Run the HTTP API server.

Endpoints:
  POST /api/resolve          resolve a document posted as JSON or TOML
  POST /api/render           render a document to svg/png/pdf/json/dot
  GET  /api/snapshots        list stored snapshots
  POST /api/snapshots        store a document snapshot
  GET  /api/snapshots/{id}   fetch a snapshot
  POST /api/snapshots/{id}/resolve

Examples:
  floorplan serve
  floorplan serve --addr :9000 --redis localhost:6379
  floorplan serve --mongo mongodb://localhost:27017`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", opts.addr, "listen address")
	cmd.Flags().StringVar(&opts.redis, "redis", "", "Redis address for the cache backend (e.g. localhost:6379)")
	cmd.Flags().StringVar(&opts.mongo, "mongo", "", "MongoDB URI for the snapshot backend")
	cmd.Flags().StringVar(&opts.snapshotDir, "snapshot-dir", "", "directory for file-based snapshots")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts serveOpts) error {
	if opts.redis == "" {
		opts.redis = c.Config.Redis
	}
	if opts.mongo == "" {
		opts.mongo = c.Config.Mongo
	}
	if opts.addr == ":8080" && c.Config.Addr != "" {
		opts.addr = c.Config.Addr
	}

	store, err := c.serveCache(ctx, opts)
	if err != nil {
		return err
	}
	runner := pipeline.NewRunner(store, nil, c.Logger)
	defer runner.Close()

	snapshots, err := c.serveSnapshots(ctx, opts)
	if err != nil {
		return err
	}
	if snapshots != nil {
		defer snapshots.Close(context.Background())
	}

	server := &http.Server{
		Addr:              opts.addr,
		Handler:           api.NewServer(runner, snapshots, c.Logger).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()
	c.Logger.Infof("Listening on %s", opts.addr)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		c.Logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}

// serveCache picks the cache backend: Redis when configured, otherwise
// the local file cache. A Redis connection failure is an error here (the
// operator asked for it), unlike the silent file-cache fallback.
func (c *CLI) serveCache(ctx context.Context, opts serveOpts) (cache.Cache, error) {
	if opts.noCache {
		return cache.NewNullCache(), nil
	}
	if opts.redis != "" {
		c.Logger.Infof("Using Redis cache at %s", opts.redis)
		return cache.NewRedisCache(ctx, opts.redis)
	}
	return newCache(false)
}

// serveSnapshots picks the snapshot backend: MongoDB when configured,
// otherwise file-based snapshots under the config directory.
func (c *CLI) serveSnapshots(ctx context.Context, opts serveOpts) (snapshot.Store, error) {
	if opts.mongo != "" {
		c.Logger.Infof("Using MongoDB snapshots at %s", opts.mongo)
		return snapshot.NewMongoStore(ctx, snapshot.MongoConfig{URI: opts.mongo})
	}
	dir := opts.snapshotDir
	if dir == "" {
		base, err := configDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(base, "snapshots")
	}
	return snapshot.NewFileStore(dir)
}
