// Package pipeline runs the generate → layout → render flow shared by the
// CLI and the HTTP server.
//
// # Stages
//
//  1. Generate: ask an [ai.Generator] for a diagram, or revise an input
//     diagram with a prompt. Skipped when only a diagram is given.
//  2. Layout: place every node with the layered layout engine.
//  3. Render: encode the laid-out diagram in each requested format.
//
// Every stage is cached through a [cache.Cache] keyed by a hash of its
// inputs, so repeating a request with the same prompt, spacing and formats
// does no work.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, gen, nil, logger)
//	res, err := runner.Execute(ctx, pipeline.Options{
//	    Prompt:  "user signup with email verification",
//	    Formats: []string{"drawio", "png"},
//	})
//	if err != nil {
//	    return err
//	}
//	os.WriteFile("signup.drawio", res.Artifacts["drawio"], 0o644)
//
// Stages run on their own as well: [Runner.Layout] on a hand-written
// diagram, [Runner.Render] on a diagram that already carries positions.
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowgen/pkg/errors"
	"github.com/matzehuels/flowgen/pkg/export"
	"github.com/matzehuels/flowgen/pkg/export/raster"
	"github.com/matzehuels/flowgen/pkg/flow"
	"github.com/matzehuels/flowgen/pkg/layout"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultFormat is rendered when no format is requested.
	DefaultFormat = string(export.FormatJSON)

	// DefaultScale is the raster scale for PNG and GIF output.
	DefaultScale = 2.0

	// MaxScale bounds the raster scale accepted from callers.
	MaxScale = 8.0
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options configures one pipeline run. It decodes from API request bodies.
type Options struct {
	// Prompt asks the generator for a new diagram, or for changes to Input
	// when both are set.
	Prompt string `json:"prompt,omitempty"`
	// Input is an existing diagram. Without a prompt it is laid out as is.
	Input *flow.Diagram `json:"diagram,omitempty"`

	// Direction overrides the flow direction of the diagram (TB, LR, RL, BT).
	Direction string `json:"direction,omitempty"`

	// Formats lists the artifacts to render.
	Formats []string `json:"formats,omitempty"`
	// Scale is the raster scale for png and gif.
	Scale float64 `json:"scale,omitempty"`

	// Refresh skips cache reads; results are still written.
	Refresh bool `json:"refresh,omitempty"`

	// Logger receives stage logs (not serialized).
	Logger *log.Logger `json:"-"`

	validated bool
}

// Result holds the outputs of a pipeline run.
type Result struct {
	// Diagram is the laid-out diagram.
	Diagram flow.Diagram

	// DiagramHash is the content hash of Diagram.
	DiagramHash string

	// Artifacts holds the rendered outputs keyed by format.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains timing and size information.
type Stats struct {
	NodeCount    int
	EdgeCount    int
	GenerateTime time.Duration
	LayoutTime   time.Duration
	RenderTime   time.Duration
}

// CacheInfo tracks which stages were served from the cache.
type CacheInfo struct {
	GenerateHit bool
	LayoutHit   bool
	RenderHit   bool // every artifact came from the cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that format names a supported export. Names are
// case-insensitive.
func ValidateFormat(format string) error {
	if _, err := export.ParseFormat(format); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "invalid format")
	}
	return nil
}

// ValidateFormats checks every format.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateDirection checks a direction override. Empty means keep the
// diagram's own direction.
func ValidateDirection(dir string) error {
	if dir != "" && !layout.ValidDirection(dir) {
		return errors.New(errors.ErrCodeInvalidDirection,
			"invalid direction: %q (must be one of: TB, LR, RL, BT)", dir)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks the options of a full run and fills in
// defaults. Calling it again has no further effect.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForGenerate(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForGenerate checks that the run has something to work on.
func (o *Options) ValidateForGenerate() error {
	if o.Prompt == "" && o.Input == nil {
		return errors.New(errors.ErrCodeInvalidInput, "prompt or diagram is required")
	}
	if o.Prompt != "" {
		if err := errors.ValidatePrompt(o.Prompt); err != nil {
			return err
		}
	}
	if o.Input != nil {
		if err := o.Input.Validate(); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidGraph, err, "invalid diagram")
		}
	}
	o.setLogger()
	return ValidateDirection(o.Direction)
}

// ValidateForRender normalizes format names and applies render defaults.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	for i, f := range o.Formats {
		p, _ := export.ParseFormat(f)
		o.Formats[i] = string(p)
	}
	if o.Scale > MaxScale {
		return errors.New(errors.ErrCodeInvalidInput, "scale %.1f exceeds maximum %.1f", o.Scale, MaxScale)
	}
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{DefaultFormat}
	}
	if o.Scale <= 0 {
		o.Scale = DefaultScale
	}
	o.setLogger()
}

func (o *Options) setLogger() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// NeedsGenerate reports whether the run calls the generator.
func (o *Options) NeedsGenerate() bool { return o.Prompt != "" }

// RasterOptions returns the raster settings for png and gif output.
func (o *Options) RasterOptions() raster.Options {
	r := raster.DefaultOptions()
	if o.Scale > 0 {
		r.Scale = o.Scale
	}
	return r
}
