// Package export converts laid-out diagrams into files other tools open.
//
// Each format lives in its own subpackage:
//
//   - [drawio]: mxGraph XML for diagrams.net
//   - [dot]: Graphviz DOT with pinned positions, and SVG rendered from it
//   - [raster]: PNG snapshots and animated GIFs
//
// Exporters read positions from the diagram and never run the layout
// engine themselves; pass the result of [flow.Arrange] or an editor
// document. Edges whose endpoints are missing are skipped.
//
// [drawio]: github.com/matzehuels/flowgen/pkg/export/drawio
// [dot]: github.com/matzehuels/flowgen/pkg/export/dot
// [raster]: github.com/matzehuels/flowgen/pkg/export/raster
// [flow.Arrange]: github.com/matzehuels/flowgen/pkg/flow.Arrange
package export

import (
	"fmt"
	"slices"
	"strings"
)

// Format names an export format.
type Format string

const (
	FormatJSON   Format = "json"
	FormatDrawio Format = "drawio"
	FormatDOT    Format = "dot"
	FormatSVG    Format = "svg"
	FormatPNG    Format = "png"
	FormatGIF    Format = "gif"
)

// Formats lists every supported format.
var Formats = []Format{FormatJSON, FormatDrawio, FormatDOT, FormatSVG, FormatPNG, FormatGIF}

// ParseFormat validates a format name. Matching ignores case.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if !slices.Contains(Formats, f) {
		return "", fmt.Errorf("unsupported format %q (must be one of: json, drawio, dot, svg, png, gif)", s)
	}
	return f, nil
}

// Extension returns the file extension, without dot, for f.
func (f Format) Extension() string { return string(f) }

// ContentType returns the MIME type of f.
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatDrawio:
		return "application/xml"
	case FormatDOT:
		return "text/vnd.graphviz"
	case FormatSVG:
		return "image/svg+xml"
	case FormatPNG:
		return "image/png"
	case FormatGIF:
		return "image/gif"
	default:
		return "application/octet-stream"
	}
}
