package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/flowgen/pkg/export"
	"github.com/matzehuels/flowgen/pkg/export/dot"
	"github.com/matzehuels/flowgen/pkg/export/drawio"
	"github.com/matzehuels/flowgen/pkg/export/raster"
	"github.com/matzehuels/flowgen/pkg/flow"
)

// RenderFormat encodes a laid-out diagram in one format.
func RenderFormat(ctx context.Context, d flow.Diagram, format string, ro raster.Options) ([]byte, error) {
	f, err := export.ParseFormat(format)
	if err != nil {
		return nil, err
	}

	var data []byte
	switch f {
	case export.FormatJSON:
		data, err = flow.Marshal(d)
	case export.FormatDrawio:
		data, err = drawio.Marshal(d, drawio.Options{})
	case export.FormatDOT:
		data = []byte(dot.ToDOT(d, dot.Options{Pinned: true}))
	case export.FormatSVG:
		data, err = dot.Render(ctx, d)
	case export.FormatPNG:
		data, err = raster.RenderPNG(d, ro)
	case export.FormatGIF:
		data, err = raster.RenderGIF(d, ro)
	default:
		return nil, fmt.Errorf("unsupported format: %s", f)
	}
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", f, err)
	}
	return data, nil
}

// isRaster reports whether format depends on the raster scale.
func isRaster(format string) bool {
	return format == string(export.FormatPNG) || format == string(export.FormatGIF)
}
