// Package pipeline provides the core floor plan pipeline.
//
// This package implements the complete decode → resolve → render pipeline
// that can be used by CLI and API components. By centralizing this logic,
// we ensure consistent behavior across all entry points and avoid code
// duplication.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Decode: Read and validate a floorplan document (JSON or TOML)
//  2. Resolve: Compute absolute room positions in meters
//  3. Render: Generate output in various formats (SVG, PNG, PDF, JSON, DOT)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Source:  "house.json",
//	    Formats: []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/malarbase/mermaid-floorplan-sub010/pkg/cache"
	"github.com/malarbase/mermaid-floorplan-sub010/pkg/plan"
	"github.com/malarbase/mermaid-floorplan-sub010/pkg/resolve"
	"github.com/malarbase/mermaid-floorplan-sub010/pkg/units"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultScale is the default pixels-per-meter scale for SVG output.
	DefaultScale = 20.0

	// DefaultPNGScale is the default resolution multiplier for PNG output.
	DefaultPNGScale = 2.0
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
	FormatDOT  = "dot"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
	FormatDOT:  true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the floor plan pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Decode options. Exactly one of Source, Data, or Document must be set.
	Source   string         `json:"source,omitempty"`   // Path to a .json or .toml file
	Data     []byte         `json:"data,omitempty"`     // Raw document bytes
	Format   string         `json:"format,omitempty"`   // Input format for Data ("json" or "toml")
	Document *plan.Document `json:"-"`                  // Pre-parsed document

	// Resolve options
	SystemUnit string `json:"system_unit,omitempty"` // Fallback unit symbol (default "m")
	Refresh    bool   `json:"refresh,omitempty"`     // Bypass the layout cache

	// Render options
	Formats     []string `json:"formats,omitempty"`
	Scale       float64  `json:"scale,omitempty"`    // Pixels per meter for SVG/PNG/PDF
	Grid        bool     `json:"grid,omitempty"`     // Draw 1-meter grid lines
	Detailed    bool     `json:"detailed,omitempty"` // Include dimensions in DOT labels
	Diagnostics bool     `json:"diagnostics,omitempty"` // Include diagnostics in JSON output

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Document is the decoded floorplan.
	Document *plan.Document

	// DocHash is the content hash of the canonical document encoding.
	DocHash string

	// Layout contains the resolved room positions and diagnostics.
	Layout *resolve.Layout

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	FloorCount      int
	RoomCount       int
	ResolvedCount   int
	DiagnosticCount int
	DecodeTime      time.Duration
	ResolveTime     time.Duration
	RenderTime      time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the resolved layout came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: svg, png, pdf, json, dot)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the
// full pipeline. This method is idempotent - calling it multiple times has
// the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForDecode(); err != nil {
		return err
	}
	if err := o.ValidateForResolve(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForDecode checks required fields for decoding.
func (o *Options) ValidateForDecode() error {
	if o.Source == "" && len(o.Data) == 0 && o.Document == nil {
		return fmt.Errorf("source, data, or document is required")
	}
	if len(o.Data) > 0 && o.Format == "" {
		o.Format = "json"
	}
	o.applyLoggerDefault()
	return nil
}

// ValidateForResolve validates and sets defaults for resolution.
func (o *Options) ValidateForResolve() error {
	if o.SystemUnit != "" {
		sym, err := units.Parse(o.SystemUnit)
		if err != nil || !sym.Valid() {
			return fmt.Errorf("invalid system_unit: %q", o.SystemUnit)
		}
	}
	o.applyLoggerDefault()
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	o.applyLoggerDefault()
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	return ValidateFormats(o.Formats)
}

// SystemUnitSymbol returns the configured system unit, or the resolver
// default when unset.
func (o *Options) SystemUnitSymbol() units.Symbol {
	if o.SystemUnit == "" {
		return resolve.SystemDefaultUnit
	}
	sym, err := units.Parse(o.SystemUnit)
	if err != nil {
		return resolve.SystemDefaultUnit
	}
	return sym
}

// LayoutKeyOpts returns cache key options for layout resolution.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		SystemUnit: string(o.SystemUnitSymbol()),
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format: format,
		Scale:  o.Scale,
		Grid:   o.Grid,
	}
}

func (o *Options) applyLoggerDefault() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}
