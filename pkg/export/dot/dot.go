package dot

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/flowgen/pkg/export"
	"github.com/matzehuels/flowgen/pkg/flow"
)

// pointsPerInch converts pixels to Graphviz inches.
const pointsPerInch = 72

// Options configures DOT generation.
type Options struct {
	// Pinned writes node positions and renders with neato.
	Pinned bool
}

var shapes = map[flow.Shape]string{
	flow.ShapeRectangle:     "box",
	flow.ShapePill:          "box",
	flow.ShapeDiamond:       "diamond",
	flow.ShapeCylinder:      "cylinder",
	flow.ShapeCloud:         "ellipse",
	flow.ShapeCircle:        "circle",
	flow.ShapeParallelogram: "parallelogram",
}

// ToDOT converts d to Graphviz DOT source. Edges with a missing endpoint
// are skipped.
func ToDOT(d flow.Diagram, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(&buf, "  rankdir=%s;\n", d.LayoutDirection)
	fmt.Fprintf(&buf, "  bgcolor=%q;\n", export.BackgroundColor)
	if opts.Pinned {
		fmt.Fprintf(&buf, "  inputscale=%d;\n", pointsPerInch)
		buf.WriteString("  notranslate=true;\n")
		buf.WriteString("  splines=true;\n")
	}
	buf.WriteString("  node [fontname=\"Helvetica\", penwidth=2, fixedsize=true];\n")
	fmt.Fprintf(&buf, "  edge [color=%q, fontcolor=%q, fontsize=11, penwidth=2, arrowhead=normal];\n",
		export.EdgeColor, export.EdgeLabelColor)
	buf.WriteString("\n")

	seen := make(map[string]bool, len(d.Nodes))
	for _, n := range d.Nodes {
		if seen[n.ID] {
			continue
		}
		seen[n.ID] = true
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(nodeAttrs(n, opts), ", "))
	}

	buf.WriteString("\n")
	for _, e := range d.ValidEdges() {
		attrs := edgeAttrs(e)
		if len(attrs) == 0 {
			fmt.Fprintf(&buf, "  %q -> %q;\n", e.Source, e.Target)
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", e.Source, e.Target, strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(n flow.Node, opts Options) []string {
	w, h := n.Width, n.Height
	if w <= 0 || h <= 0 {
		w, h = flow.DefaultSize(n.Shape)
	}
	sw := export.SwatchFor(n.Color)

	style := []string{"filled"}
	if n.Shape == flow.ShapeRectangle || n.Shape == flow.ShapePill || n.Shape == "" {
		style = append(style, "rounded")
	}
	switch n.BorderStyle {
	case flow.BorderDashed:
		style = append(style, "dashed")
	case flow.BorderDotted:
		style = append(style, "dotted")
	}

	shape, ok := shapes[n.Shape]
	if !ok {
		shape = "box"
	}
	attrs := []string{
		fmt.Sprintf("label=%q", n.Label),
		"shape=" + shape,
		fmt.Sprintf("style=%q", strings.Join(style, ",")),
		fmt.Sprintf("fillcolor=%q", sw.Fill),
		fmt.Sprintf("color=%q", sw.Stroke),
		fmt.Sprintf("fontcolor=%q", sw.Font),
		"fontsize=" + strconv.Itoa(n.FontSize.Points()),
		"width=" + inches(w),
		"height=" + inches(h),
	}
	if j := labelJust(n.TextAlign); j != "" {
		attrs = append(attrs, "labeljust="+j)
	}
	if opts.Pinned {
		// Graphviz y grows upward; pos is the box centre.
		cx := n.Position.X + w/2
		cy := -(n.Position.Y + h/2)
		attrs = append(attrs, fmt.Sprintf("pos=\"%s,%s!\"", num(cx), num(cy)))
	}
	return attrs
}

func edgeAttrs(e flow.Edge) []string {
	var attrs []string
	if e.Label != "" {
		attrs = append(attrs, fmt.Sprintf("label=%q", e.Label))
	}
	if e.Dashed() {
		attrs = append(attrs, "style=dashed")
	}
	return attrs
}

func labelJust(a flow.TextAlign) string {
	switch a {
	case flow.AlignLeft:
		return "l"
	case flow.AlignRight:
		return "r"
	}
	return ""
}

func inches(px float64) string { return num(px / pointsPerInch) }

func num(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

// RenderSVG renders DOT source to SVG. Pinned sources are laid out with
// neato so node positions are kept.
func RenderSVG(ctx context.Context, dot string, opts Options) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	if opts.Pinned {
		gv.SetLayout(graphviz.NEATO)
	}

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

// Render converts d to DOT and renders it to SVG with pinned positions.
func Render(ctx context.Context, d flow.Diagram) ([]byte, error) {
	opts := Options{Pinned: true}
	return RenderSVG(ctx, ToDOT(d, opts), opts)
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces the root element so the SVG scales with its
// container and carries no Graphviz transform offsets in its size.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
