package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/linearmesh/pkg/cache"
	"github.com/matzehuels/linearmesh/pkg/graph"
	"github.com/matzehuels/linearmesh/pkg/observability"
)

// Cache key types reported to observability hooks.
const (
	keyTypeLayout   = "layout"
	keyTypeArtifact = "artifact"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it so caching behaves the same everywhere.
//
// The Runner is stateless except for the cache and logger; multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete load → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{}

	// Stage 1: Load
	loadStart := time.Now()
	in, err := r.Load(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result.Input = in
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.PointCount = len(in.Points)
	result.Stats.LinkCount = in.LinkCount()

	opts.Logger.Debug("loaded flow data",
		"source", opts.sourceName(),
		"points", result.Stats.PointCount,
		"links", result.Stats.LinkCount)

	// Stage 2: Layout
	layoutStart := time.Now()
	layout, inputHash, layoutHit, err := r.layout(ctx, in, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Layout = layout
	result.InputHash = inputHash
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.LayerCount = len(layout.Layers)
	result.Stats.NodeCount = layout.NodeCount()
	result.CacheInfo.LayoutHit = layoutHit

	opts.Logger.Info("computed layout",
		"layers", result.Stats.LayerCount,
		"nodes", result.Stats.NodeCount,
		"cached", layoutHit,
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, layout, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	opts.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Load reads and validates flow data, reporting the stage to the hooks.
func (r *Runner) Load(ctx context.Context, opts Options) (graph.Input, error) {
	hooks := observability.Pipeline()
	source := opts.sourceName()
	hooks.OnLoadStart(ctx, source)

	start := time.Now()
	in, err := Load(ctx, opts)
	hooks.OnLoadComplete(ctx, source, len(in.Points), in.LinkCount(), time.Since(start), err)
	return in, err
}

// ComputeLayoutWithCacheInfo computes the layout of in with caching and
// returns cache hit info.
func (r *Runner) ComputeLayoutWithCacheInfo(ctx context.Context, in graph.Input, opts Options) (graph.Layout, bool, error) {
	l, _, hit, err := r.layout(ctx, in, opts)
	return l, hit, err
}

// ComputeLayout is a convenience wrapper that calls ComputeLayoutWithCacheInfo
// and discards the cache hit info.
func (r *Runner) ComputeLayout(ctx context.Context, in graph.Input, opts Options) (graph.Layout, error) {
	l, _, err := r.ComputeLayoutWithCacheInfo(ctx, in, opts)
	return l, err
}

func (r *Runner) layout(ctx context.Context, in graph.Input, opts Options) (graph.Layout, string, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return graph.Layout{}, "", false, err
	}

	inputHash, err := InputHash(in)
	if err != nil {
		return graph.Layout{}, "", false, fmt.Errorf("hash input: %w", err)
	}
	cacheKey := r.Keyer.LayoutKey(inputHash, opts.LayoutKeyOpts(in))

	if !opts.Refresh {
		if data, ok := r.get(ctx, cacheKey, keyTypeLayout, opts.Logger); ok {
			cached, err := graph.UnmarshalLayout(data)
			if err == nil {
				return cached, inputHash, true, nil
			}
			opts.Logger.Warn("discarding unreadable cached layout", "error", err)
		}
	}

	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, len(in.Points))
	start := time.Now()
	layout, err := GenerateLayout(in, opts.EffectiveOverrides(in))
	hooks.OnLayoutComplete(ctx, len(layout.Layers), layout.NodeCount(), time.Since(start), err)
	if err != nil {
		return graph.Layout{}, "", false, err
	}

	if data, err := graph.MarshalLayout(layout); err == nil {
		r.set(ctx, cacheKey, keyTypeLayout, data, cache.TTLLayout, opts.Logger)
	}

	return layout, inputHash, false, nil
}

// RenderWithCacheInfo generates artifacts with caching and returns whether
// every requested format came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, layout graph.Layout, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	layoutData, err := graph.MarshalLayout(layout)
	if err != nil {
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	layoutHash := cache.Hash(layoutData)

	artifacts := make(map[string][]byte, len(opts.Formats))
	var missing []string
	for _, format := range opts.Formats {
		if !opts.Refresh {
			key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
			if data, ok := r.get(ctx, key, keyTypeArtifact, opts.Logger); ok {
				artifacts[format] = data
				continue
			}
		}
		missing = append(missing, format)
	}

	if len(missing) == 0 {
		return artifacts, true, nil
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, missing)
	start := time.Now()

	sub := opts
	sub.Formats = missing
	rendered, err := Render(ctx, layout, sub)
	hooks.OnRenderComplete(ctx, missing, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		r.set(ctx, key, keyTypeArtifact, data, cache.TTLArtifact, opts.Logger)
		artifacts[format] = data
	}

	return artifacts, false, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and
// discards the cache hit info.
func (r *Runner) Render(ctx context.Context, layout graph.Layout, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, layout, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// get reads key from the cache. Backend errors are logged and treated as
// misses so a broken cache never fails a request.
func (r *Runner) get(ctx context.Context, key, keyType string, logger *log.Logger) ([]byte, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		logger.Warn("cache read failed", "type", keyType, "error", err)
		hit = false
	}
	if hit {
		observability.Cache().OnCacheHit(ctx, keyType)
		return data, true
	}
	observability.Cache().OnCacheMiss(ctx, keyType)
	return nil, false
}

func (r *Runner) set(ctx context.Context, key, keyType string, data []byte, ttl time.Duration, logger *log.Logger) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		logger.Warn("cache write failed", "type", keyType, "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
