package dot

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/flowgen/pkg/flow"
	"github.com/matzehuels/flowgen/pkg/layout"
)

func sample() flow.Diagram {
	return flow.Arrange(flow.Diagram{
		Nodes: []flow.Node{
			{ID: "start", Label: "Start", Shape: flow.ShapePill, Color: flow.ColorGreen},
			{ID: "db", Label: `Orders "main"`, Shape: flow.ShapeCylinder, BorderStyle: flow.BorderDashed},
		},
		Edges: []flow.Edge{
			{Source: "start", Target: "db", Label: "write", Style: flow.EdgeStyle{StrokeDasharray: flow.DashPattern}},
			{Source: "db", Target: "ghost"},
		},
	}, nil)
}

func TestToDOT(t *testing.T) {
	out := ToDOT(sample(), Options{})

	for _, want := range []string{
		"digraph G {",
		"rankdir=TB;",
		`"start" [label="Start", shape=box, style="filled,rounded"`,
		`"db" [label="Orders \"main\"", shape=cylinder, style="filled,dashed"`,
		"width=2.2222222222222223",
		`"start" -> "db" [label="write", style=dashed];`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("DOT missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "ghost") {
		t.Error("dangling edge should be skipped")
	}
	if strings.Contains(out, "pos=") || strings.Contains(out, "inputscale") {
		t.Error("unpinned output should not carry positions")
	}
}

func TestToDOTPinned(t *testing.T) {
	out := ToDOT(sample(), Options{Pinned: true})

	for _, want := range []string{
		"inputscale=72;",
		"notranslate=true;",
		`pos="80,-35!"`,
		`pos="80,-225!"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("pinned DOT missing %q:\n%s", want, out)
		}
	}
}

func TestToDOTDirection(t *testing.T) {
	d := sample()
	d.LayoutDirection = layout.LeftRight
	if out := ToDOT(d, Options{}); !strings.Contains(out, "rankdir=LR;") {
		t.Errorf("rankdir not set:\n%s", out)
	}
}

func TestRenderSVG(t *testing.T) {
	svg, err := Render(context.Background(), sample())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	s := string(svg)
	if !strings.Contains(s, "<svg") || !strings.Contains(s, "Start") {
		t.Errorf("unexpected SVG:\n%s", s)
	}
	if !strings.Contains(s, `viewBox="0 0 `) {
		t.Error("viewBox was not normalised")
	}
}

func TestRenderSVGInvalid(t *testing.T) {
	if _, err := RenderSVG(context.Background(), "digraph {", Options{}); err == nil {
		t.Error("expected error for malformed DOT")
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	got := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.00 50.00" width="100" height="50"><g/></svg>`
	if got != want {
		t.Errorf("normalizeViewBox() =\n%s\nwant\n%s", got, want)
	}

	untouched := []byte("<svg><g/></svg>")
	if got := normalizeViewBox(untouched); string(got) != string(untouched) {
		t.Errorf("input without viewBox changed: %s", got)
	}
}
