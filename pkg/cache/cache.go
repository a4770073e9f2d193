// Package cache provides content-addressed caching for resolved layouts
// and rendered artifacts. Backends exist for local files (CLI), Redis
// (server), and a null implementation for tests and --no-cache runs.
package cache

import (
	"context"
	"time"
)

// Default TTLs per cached stage. Layouts are pure functions of the
// document and the resolve options, so they could live forever; the TTLs
// mainly bound disk and Redis growth.
const (
	// TTLLayout is how long resolved layouts are cached.
	TTLLayout = 7 * 24 * time.Hour

	// TTLArtifact is how long rendered artifacts (SVG, PNG, DOT) are cached.
	TTLArtifact = 24 * time.Hour
)

// Cache is the interface all cache backends implement.
// Get returns (data, hit, error): a miss is (nil, false, nil), not an error.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// LayoutKeyOpts captures everything besides the document itself that
// influences a resolved layout.
type LayoutKeyOpts struct {
	SystemUnit string `json:"system_unit"`
}

// ArtifactKeyOpts captures the render parameters that influence an artifact.
type ArtifactKeyOpts struct {
	Format string  `json:"format"`
	Scale  float64 `json:"scale"`
	Grid   bool    `json:"grid"`
}

// Keyer generates cache keys for the pipeline stages.
type Keyer interface {
	// DocumentKey returns the content hash of a floorplan document.
	DocumentKey(data []byte) string

	// LayoutKey generates a key for a resolved layout.
	LayoutKey(docHash string, opts LayoutKeyOpts) string

	// ArtifactKey generates a key for a rendered artifact.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer is the standard key generator.
// Keys embed a stage prefix so backends can be inspected and pruned per stage.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// DocumentKey returns the content hash of the raw document bytes.
func (k *DefaultKeyer) DocumentKey(data []byte) string {
	return Hash(data)
}

// LayoutKey generates a key for a resolved layout.
func (k *DefaultKeyer) LayoutKey(docHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", docHash, opts)
}

// ArtifactKey generates a key for a rendered artifact.
func (k *DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = (*DefaultKeyer)(nil)
