package export

import "github.com/matzehuels/flowgen/pkg/flow"

// Swatch is the fill, stroke and font color of a palette entry, as hex
// strings.
type Swatch struct {
	Fill, Stroke, Font string
}

// Palette maps each color name to its swatch.
var Palette = map[flow.Color]Swatch{
	flow.ColorBlue:   {Fill: "#eff6ff", Stroke: "#60a5fa", Font: "#1e3a8a"},
	flow.ColorGreen:  {Fill: "#f0fdf4", Stroke: "#4ade80", Font: "#14532d"},
	flow.ColorOrange: {Fill: "#fff7ed", Stroke: "#fb923c", Font: "#7c2d12"},
	flow.ColorRed:    {Fill: "#fef2f2", Stroke: "#f87171", Font: "#7f1d1d"},
	flow.ColorPurple: {Fill: "#faf5ff", Stroke: "#c084fc", Font: "#581c87"},
	flow.ColorYellow: {Fill: "#fefce8", Stroke: "#facc15", Font: "#713f12"},
	flow.ColorSlate:  {Fill: "#f8fafc", Stroke: "#94a3b8", Font: "#0f172a"},
}

// SwatchFor returns the swatch of c, falling back to slate.
func SwatchFor(c flow.Color) Swatch {
	if s, ok := Palette[c]; ok {
		return s
	}
	return Palette[flow.ColorSlate]
}

// Shared colors of edges and the canvas.
const (
	EdgeColor       = "#64748b"
	EdgeLabelColor  = "#475569"
	BackgroundColor = "#f8fafc"
)
