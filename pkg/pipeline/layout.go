package pipeline

import (
	"github.com/matzehuels/flowgen/pkg/cache"
	"github.com/matzehuels/flowgen/pkg/flow"
	"github.com/matzehuels/flowgen/pkg/layout"
)

// =============================================================================
// Layout Generation
// =============================================================================

// Arrange applies the direction override and lays out d. A nil engine uses
// the default spacing.
func Arrange(d flow.Diagram, eng *layout.Engine, direction string) flow.Diagram {
	d = prepare(d, direction)
	return flow.Arrange(d, eng)
}

// prepare returns a normalized copy of d with the direction override
// applied.
func prepare(d flow.Diagram, direction string) flow.Diagram {
	d = d.Clone()
	if direction != "" {
		d.LayoutDirection = layout.ParseDirection(direction)
	}
	d.Normalize()
	return d
}

// layoutKeyOpts returns the cache key inputs of laying out a diagram in
// direction dir.
func layoutKeyOpts(eng *layout.Engine, dir layout.Direction) cache.LayoutKeyOpts {
	opts := layout.DefaultOptions()
	if eng != nil {
		opts = eng.Options()
	}
	sp := opts.Spacing(dir)
	return cache.LayoutKeyOpts{
		Direction: dir.String(),
		NodeSep:   sp.NodeSep,
		RankSep:   sp.RankSep,
		EdgeSep:   opts.EdgeSep,
	}
}
