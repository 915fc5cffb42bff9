package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/flowgen/pkg/ai"
	"github.com/matzehuels/flowgen/pkg/cache"
	"github.com/matzehuels/flowgen/pkg/errors"
	"github.com/matzehuels/flowgen/pkg/export/raster"
	"github.com/matzehuels/flowgen/pkg/flow"
	"github.com/matzehuels/flowgen/pkg/layout"
	"github.com/matzehuels/flowgen/pkg/observability"
)

// maxParallelRenders bounds concurrent format renders per run.
const maxParallelRenders = 4

// Runner executes the pipeline with caching. Both the CLI and the server
// use it.
//
// The Runner keeps no per-run state, so one Runner may serve concurrent
// runs with different options.
type Runner struct {
	Cache     cache.Cache
	Keyer     cache.Keyer
	Generator ai.Generator
	Engine    *layout.Engine
	Logger    *log.Logger
}

// NewRunner creates a runner. A nil cache disables caching, a nil keyer
// uses [cache.DefaultKeyer] and a nil engine uses the default spacing.
// The generator may be nil when no run asks for generation.
func NewRunner(c cache.Cache, keyer cache.Keyer, gen ai.Generator, eng *layout.Engine, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if eng == nil {
		eng = layout.New(layout.DefaultOptions())
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:     c,
		Keyer:     keyer,
		Generator: gen,
		Engine:    eng,
		Logger:    logger,
	}
}

// Execute runs generate → layout → render with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{Artifacts: make(map[string][]byte)}

	// Stage 1: Generate
	d := flow.Diagram{}
	if opts.Input != nil {
		d = *opts.Input
	}
	if opts.NeedsGenerate() {
		start := time.Now()
		generated, hit, err := r.GenerateWithCacheInfo(ctx, opts)
		if err != nil {
			return nil, err
		}
		d = generated
		result.Stats.GenerateTime = time.Since(start)
		result.CacheInfo.GenerateHit = hit
		r.Logger.Info("generated diagram",
			"nodes", len(d.Nodes),
			"edges", len(d.Edges),
			"cached", hit,
			"duration", result.Stats.GenerateTime)
	}

	// Stage 2: Layout
	start := time.Now()
	laid, hit, err := r.LayoutWithCacheInfo(ctx, d, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Diagram = laid
	result.Stats.LayoutTime = time.Since(start)
	result.Stats.NodeCount = len(laid.Nodes)
	result.Stats.EdgeCount = len(laid.Edges)
	result.CacheInfo.LayoutHit = hit
	if data, err := flow.Marshal(laid); err == nil {
		result.DiagramHash = cache.Hash(data)
	}

	r.Logger.Info("computed layout",
		"direction", laid.LayoutDirection,
		"nodes", result.Stats.NodeCount,
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	start = time.Now()
	artifacts, hit, err := r.RenderWithCacheInfo(ctx, laid, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(start)
	result.CacheInfo.RenderHit = hit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// =============================================================================
// Generate
// =============================================================================

// GenerateWithCacheInfo produces a diagram from opts.Prompt, revising
// opts.Input when set, and reports whether it came from the cache.
func (r *Runner) GenerateWithCacheInfo(ctx context.Context, opts Options) (flow.Diagram, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForGenerate(); err != nil {
		return flow.Diagram{}, false, err
	}
	if opts.Prompt == "" {
		return flow.Diagram{}, false, errors.New(errors.ErrCodeInvalidInput, "prompt is required")
	}
	if r.Generator == nil {
		return flow.Diagram{}, false, errors.New(errors.ErrCodeUnsupported, "no diagram generator configured")
	}

	keyOpts := cache.GenerateKeyOpts{Model: modelName(r.Generator)}
	if opts.Input != nil {
		data, err := flow.Marshal(*opts.Input)
		if err != nil {
			return flow.Diagram{}, false, errors.Wrap(errors.ErrCodeInvalidGraph, err, "encode current diagram")
		}
		keyOpts.CurrentHash = cache.Hash(data)
	}
	key := r.Keyer.GenerateKey(opts.Prompt, keyOpts)

	if !opts.Refresh {
		var cached flow.Diagram
		if err := cache.GetJSON(ctx, r.Cache, key, &cached); err == nil {
			observability.Cache().OnCacheHit(ctx, observability.KindGenerate)
			return cached, true, nil
		}
	}
	observability.Cache().OnCacheMiss(ctx, observability.KindGenerate)

	var (
		d   flow.Diagram
		err error
	)
	if opts.Input != nil {
		d, err = r.Generator.Update(ctx, *opts.Input, opts.Prompt)
	} else {
		d, err = r.Generator.Generate(ctx, opts.Prompt)
	}
	if err != nil {
		return flow.Diagram{}, false, err
	}

	r.store(ctx, observability.KindGenerate, key, d, cache.TTLGenerate)
	return d, false, nil
}

// Generate is GenerateWithCacheInfo without the cache hit info.
func (r *Runner) Generate(ctx context.Context, opts Options) (flow.Diagram, error) {
	d, _, err := r.GenerateWithCacheInfo(ctx, opts)
	return d, err
}

// modelName identifies the generator in cache keys.
func modelName(g ai.Generator) string {
	if m, ok := g.(interface{ Model() string }); ok {
		return m.Model()
	}
	return fmt.Sprintf("%T", g)
}

// =============================================================================
// Layout
// =============================================================================

// LayoutWithCacheInfo lays out d, applying opts.Direction, and reports
// whether the result came from the cache.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, d flow.Diagram, opts Options) (laid flow.Diagram, hit bool, err error) {
	if err := ValidateDirection(opts.Direction); err != nil {
		return flow.Diagram{}, false, err
	}
	d = prepare(d, opts.Direction)

	data, err := flow.Marshal(d)
	if err != nil {
		return flow.Diagram{}, false, errors.Wrap(errors.ErrCodeInvalidGraph, err, "encode diagram")
	}
	key := r.Keyer.LayoutKey(cache.Hash(data), layoutKeyOpts(r.Engine, d.LayoutDirection))

	if !opts.Refresh {
		if err := cache.GetJSON(ctx, r.Cache, key, &laid); err == nil {
			observability.Cache().OnCacheHit(ctx, observability.KindLayout)
			return laid, true, nil
		}
	}
	observability.Cache().OnCacheMiss(ctx, observability.KindLayout)

	hooks := observability.Pipeline()
	dir := d.LayoutDirection.String()
	hooks.OnLayoutStart(ctx, dir, len(d.Nodes))
	start := time.Now()
	laid = flow.Arrange(d, r.Engine)
	hooks.OnLayoutComplete(ctx, dir, time.Since(start), nil)

	r.store(ctx, observability.KindLayout, key, laid, cache.TTLLayout)
	return laid, false, nil
}

// Layout is LayoutWithCacheInfo without the cache hit info.
func (r *Runner) Layout(ctx context.Context, d flow.Diagram, opts Options) (flow.Diagram, error) {
	laid, _, err := r.LayoutWithCacheInfo(ctx, d, opts)
	return laid, err
}

// =============================================================================
// Render
// =============================================================================

// RenderWithCacheInfo encodes a laid-out diagram in every format of opts.
// Formats missing from the cache render concurrently. The bool reports
// whether every artifact came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, d flow.Diagram, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	data, err := flow.Marshal(d)
	if err != nil {
		return nil, false, fmt.Errorf("serialize diagram for cache key: %w", err)
	}
	layoutHash := cache.Hash(data)
	ro := opts.RasterOptions()

	artifacts := make(map[string][]byte, len(opts.Formats))
	keys := make(map[string]string, len(opts.Formats))
	var missing []string
	for _, format := range opts.Formats {
		if _, dup := keys[format]; dup {
			continue
		}
		key := r.Keyer.ArtifactKey(layoutHash, artifactKeyOpts(format, ro))
		keys[format] = key
		if !opts.Refresh {
			if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
				observability.Cache().OnCacheHit(ctx, observability.KindArtifact)
				artifacts[format] = data
				continue
			}
		}
		observability.Cache().OnCacheMiss(ctx, observability.KindArtifact)
		missing = append(missing, format)
	}
	if len(missing) == 0 {
		return artifacts, true, nil
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, missing)
	start := time.Now()

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelRenders)
	for _, format := range missing {
		g.Go(func() error {
			out, err := RenderFormat(gctx, d, format, ro)
			if err != nil {
				return err
			}
			mu.Lock()
			artifacts[format] = out
			mu.Unlock()
			opts.Logger.Debug("rendered", "format", format, "bytes", len(out))
			return nil
		})
	}
	err = g.Wait()
	hooks.OnRenderComplete(ctx, missing, time.Since(start), err)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeInternal, err, "render")
	}

	for _, format := range missing {
		if err := r.Cache.Set(ctx, keys[format], artifacts[format], cache.TTLArtifact); err == nil {
			observability.Cache().OnCacheSet(ctx, observability.KindArtifact, len(artifacts[format]))
		}
	}
	return artifacts, false, nil
}

// Render is RenderWithCacheInfo without the cache hit info.
func (r *Runner) Render(ctx context.Context, d flow.Diagram, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, d, opts)
	return artifacts, err
}

func artifactKeyOpts(format string, ro raster.Options) cache.ArtifactKeyOpts {
	opts := cache.ArtifactKeyOpts{Format: format}
	if isRaster(format) {
		opts.Scale = ro.Scale
	}
	if format == "gif" {
		opts.Frames = raster.Frames
	}
	return opts
}

// =============================================================================
// Helpers
// =============================================================================

// store writes v under key and reports the write to the cache hooks.
// Cache failures never fail a run.
func (r *Runner) store(ctx context.Context, keyType, key string, v any, ttl time.Duration) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Debug("cache write failed", "type", keyType, "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
