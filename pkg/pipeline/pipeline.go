// Package pipeline provides the load → layout → render pipeline shared by
// the CLI and the HTTP API.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: Read flow data (JSON, YAML or TOML) from a file or a request body
//  2. Layout: Build the linear mesh and export its geometry
//  3. Render: Generate output in various formats (SVG, PNG, JSON, DOT)
//
// Layouts and artifacts are cached through a [Runner]. Layouts are keyed by
// the canonical input hash and the effective mesh options; artifacts by the
// layout hash and the render options.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Source:  "flows.yaml",
//	    Formats: []string{"svg", "png"},
//	})
//	if err != nil {
//	    return err
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/linearmesh/pkg/cache"
	errs "github.com/matzehuels/linearmesh/pkg/errors"
	"github.com/matzehuels/linearmesh/pkg/graph"
	"github.com/matzehuels/linearmesh/pkg/mesh"
	"github.com/matzehuels/linearmesh/pkg/render/styles"
)

// DefaultStyle is the default visual style.
const DefaultStyle = styles.NameRibbon

// DefaultScale is the default PNG scale factor.
const DefaultScale = 2.0

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatJSON = "json"
	FormatDOT  = "dot"
)

// Formats lists the supported output formats in their canonical order.
var Formats = []string{FormatSVG, FormatPNG, FormatJSON, FormatDOT}

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatJSON: true,
	FormatDOT:  true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Load options. Data takes precedence over Source when both are set.
	Source      string `json:"source,omitempty"`
	Data        []byte `json:"-"`
	InputFormat string `json:"input_format,omitempty"`

	// Layout options. They are merged over the options embedded in the
	// input document.
	Overrides mesh.Overrides `json:"options"`

	// Render options
	Formats     []string `json:"formats,omitempty"`
	Style       string   `json:"style,omitempty"`
	Scale       float64  `json:"scale,omitempty"`
	Interactive bool     `json:"interactive,omitempty"`
	Detailed    bool     `json:"detailed,omitempty"`
	Background  string   `json:"background,omitempty"`
	Title       string   `json:"title,omitempty"`

	// Refresh bypasses cache reads; results are still written back.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Input is the loaded flow data.
	Input graph.Input

	// InputHash is the content hash of the canonical input.
	InputHash string

	// Layout is the exported mesh geometry.
	Layout graph.Layout

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	PointCount int
	LinkCount  int
	LayerCount int
	NodeCount  int
	LoadTime   time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the layout came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errs.New(errs.ErrCodeInvalidFormat, "invalid format: %q (must be one of: svg, png, json, dot)", format)
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

// ValidateStyle checks that a style is valid.
func ValidateStyle(style string) error {
	if _, ok := styles.ByName(style); !ok {
		return errs.New(errs.ErrCodeInvalidStyle, "invalid style: %q (must be one of: ribbon, curve)", style)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateForLoad checks that there is something to load.
func (o *Options) ValidateForLoad() error {
	if len(o.Data) == 0 && o.Source == "" {
		return errs.New(errs.ErrCodeInvalidInput, "source or data is required")
	}
	if o.InputFormat != "" {
		if _, err := graph.FormatFromPath("x." + o.InputFormat); err != nil {
			return err
		}
	}
	o.setLogger()
	return nil
}

// ValidateForLayout checks the caller's mesh overrides on their own.
// The options embedded in the input are checked once merged, when the
// mesh is built.
func (o *Options) ValidateForLayout() error {
	o.setLogger()
	return mesh.DefaultOptions().Merge(o.Overrides).Validate()
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Style == "" {
		o.Style = DefaultStyle
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	o.setLogger()
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Scale < 0 {
		return errs.New(errs.ErrCodeInvalidOptions, "scale must be positive, got %v", o.Scale)
	}
	return ValidateStyle(o.Style)
}

// EffectiveOverrides returns the input's embedded options with the caller's
// overrides merged on top.
func (o *Options) EffectiveOverrides(in graph.Input) mesh.Overrides {
	return in.Overrides().Merge(o.Overrides)
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts(in graph.Input) cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Options: mesh.DefaultOptions().Merge(o.EffectiveOverrides(in)),
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
// Options that do not affect a format are left out of its key.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{Format: format}
	switch format {
	case FormatSVG:
		k.Style = o.Style
		k.Interactive = o.Interactive
		k.Background = o.Background
		k.Title = o.Title
	case FormatPNG:
		k.Style = o.Style
		k.Scale = o.Scale
	case FormatJSON:
		k.Style = o.Style
	case FormatDOT:
		k.Detailed = o.Detailed
	}
	return k
}

func (o *Options) setLogger() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

func (o Options) sourceName() string {
	if len(o.Data) > 0 || o.Source == "" {
		return "<data>"
	}
	return o.Source
}

func (s Stats) String() string {
	return fmt.Sprintf("%d points, %d links, %d layers, %d nodes", s.PointCount, s.LinkCount, s.LayerCount, s.NodeCount)
}
