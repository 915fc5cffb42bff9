package layout

// Spacing holds the two gaps of a layered drawing.
type Spacing struct {
	// NodeSep is the minimum gap between the boxes of two nodes that share a
	// rank (sibling separation).
	NodeSep float64 `toml:"node_sep" json:"nodeSep"`
	// RankSep is the gap between consecutive ranks (layer separation).
	RankSep float64 `toml:"rank_sep" json:"rankSep"`
}

// Options configures an [Engine].
type Options struct {
	// Vertical applies to TB and BT flow.
	Vertical Spacing
	// Horizontal applies to LR and RL flow. Its rank gap is usually larger
	// to leave room for edge labels.
	Horizontal Spacing
	// EdgeSep is the lane width reserved for a long edge as it passes
	// through an intermediate rank.
	EdgeSep float64
	// Sweeps bounds the number of ordering sweeps (alternating down and up).
	Sweeps int
}

// Default spacing values.
const (
	DefaultVerticalNodeSep   = 100
	DefaultVerticalRankSep   = 120
	DefaultHorizontalNodeSep = 80
	DefaultHorizontalRankSep = 150
	DefaultEdgeSep           = 20
	DefaultSweeps            = 24
)

// DefaultOptions returns the stock spacing used by the editor.
func DefaultOptions() Options {
	return Options{
		Vertical:   Spacing{NodeSep: DefaultVerticalNodeSep, RankSep: DefaultVerticalRankSep},
		Horizontal: Spacing{NodeSep: DefaultHorizontalNodeSep, RankSep: DefaultHorizontalRankSep},
		EdgeSep:    DefaultEdgeSep,
		Sweeps:     DefaultSweeps,
	}
}

// Spacing returns the gaps that apply to flow direction d.
func (o Options) Spacing(d Direction) Spacing {
	if d.Horizontal() {
		return o.Horizontal
	}
	return o.Vertical
}

// withDefaults fills zero or negative fields from [DefaultOptions].
func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.Vertical.NodeSep <= 0 {
		o.Vertical.NodeSep = def.Vertical.NodeSep
	}
	if o.Vertical.RankSep <= 0 {
		o.Vertical.RankSep = def.Vertical.RankSep
	}
	if o.Horizontal.NodeSep <= 0 {
		o.Horizontal.NodeSep = def.Horizontal.NodeSep
	}
	if o.Horizontal.RankSep <= 0 {
		o.Horizontal.RankSep = def.Horizontal.RankSep
	}
	if o.EdgeSep <= 0 {
		o.EdgeSep = def.EdgeSep
	}
	if o.Sweeps <= 0 {
		o.Sweeps = def.Sweeps
	}
	return o
}
