package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/matzehuels/flowgen/pkg/ai"
	"github.com/matzehuels/flowgen/pkg/cache"
	"github.com/matzehuels/flowgen/pkg/errors"
	"github.com/matzehuels/flowgen/pkg/flow"
)

func checkout() flow.Diagram {
	return flow.Diagram{
		Nodes: []flow.Node{
			{ID: "cart", Label: "Cart", Shape: flow.ShapePill},
			{ID: "pay", Label: "Pay", Shape: flow.ShapeDiamond},
			{ID: "done", Label: "Done", Shape: flow.ShapePill, Color: flow.ColorGreen},
		},
		Edges: []flow.Edge{
			{Source: "cart", Target: "pay"},
			{Source: "pay", Target: "done", Label: "ok"},
		},
	}
}

func newTestRunner(t *testing.T, gen ai.Generator) *Runner {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(c, nil, gen, nil, nil)
	t.Cleanup(func() { r.Close() })
	return r
}

func TestExecuteCachesEveryStage(t *testing.T) {
	gen := ai.NewStatic(checkout())
	r := newTestRunner(t, gen)
	ctx := context.Background()
	opts := Options{Prompt: "checkout flow", Formats: []string{"json", "dot"}}

	first, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheInfo.GenerateHit || first.CacheInfo.LayoutHit || first.CacheInfo.RenderHit {
		t.Errorf("first run should miss: %+v", first.CacheInfo)
	}
	if first.Stats.NodeCount != 3 || first.Stats.EdgeCount != 2 {
		t.Errorf("stats = %+v", first.Stats)
	}
	if first.DiagramHash == "" {
		t.Error("DiagramHash not set")
	}
	if !strings.Contains(string(first.Artifacts["dot"]), `"cart" -> "pay"`) {
		t.Errorf("dot artifact:\n%s", first.Artifacts["dot"])
	}

	second, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheInfo.GenerateHit || !second.CacheInfo.LayoutHit || !second.CacheInfo.RenderHit {
		t.Errorf("second run should hit: %+v", second.CacheInfo)
	}
	if got := len(gen.Prompts()); got != 1 {
		t.Errorf("generator called %d times, want 1", got)
	}
	if !bytes.Equal(first.Artifacts["json"], second.Artifacts["json"]) {
		t.Error("cached json artifact differs")
	}

	opts.Refresh = true
	third, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if third.CacheInfo.GenerateHit || third.CacheInfo.LayoutHit {
		t.Errorf("refresh should skip reads: %+v", third.CacheInfo)
	}
	if got := len(gen.Prompts()); got != 2 {
		t.Errorf("generator called %d times, want 2", got)
	}
}

func TestExecuteInputOnly(t *testing.T) {
	r := newTestRunner(t, nil)
	in := checkout()

	res, err := r.Execute(context.Background(), Options{Input: &in, Direction: "LR"})
	if err != nil {
		t.Fatal(err)
	}
	if res.Diagram.LayoutDirection != "LR" {
		t.Errorf("direction = %s, want LR", res.Diagram.LayoutDirection)
	}
	pay, _ := res.Diagram.Node("pay")
	if pay.Position.X != 310 || pay.Position.Y != 0 {
		t.Errorf("pay at %+v, want (310,0)", pay.Position)
	}

	var decoded flow.Diagram
	if err := json.Unmarshal(res.Artifacts["json"], &decoded); err != nil {
		t.Fatalf("json artifact: %v", err)
	}
	if len(decoded.Nodes) != 3 {
		t.Errorf("decoded %d nodes", len(decoded.Nodes))
	}
	if in.LayoutDirection != "" {
		t.Error("input diagram was modified")
	}
}

func TestExecuteUpdatesInput(t *testing.T) {
	gen := ai.NewStatic(flow.Diagram{Nodes: []flow.Node{{ID: "x"}}})
	r := newTestRunner(t, gen)
	in := checkout()
	in.LayoutDirection = "BT"

	res, err := r.Execute(context.Background(), Options{Input: &in, Prompt: "collapse it"})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Diagram.Nodes) != 1 || res.Diagram.LayoutDirection != "BT" {
		t.Errorf("diagram = %+v", res.Diagram)
	}
}

func TestGenerateWithoutGenerator(t *testing.T) {
	r := newTestRunner(t, nil)
	_, err := r.Generate(context.Background(), Options{Prompt: "anything"})
	if !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("error = %v, want UNSUPPORTED", err)
	}
}

func TestGenerateError(t *testing.T) {
	gen := ai.NewStatic(flow.Diagram{})
	gen.Err = errors.New(errors.ErrCodeRateLimited, "slow down")
	r := newTestRunner(t, gen)

	_, err := r.Execute(context.Background(), Options{Prompt: "anything"})
	if !errors.Is(err, errors.ErrCodeRateLimited) {
		t.Errorf("error = %v, want RATE_LIMITED", err)
	}
}

func TestLayoutKeyedByDirection(t *testing.T) {
	r := newTestRunner(t, nil)
	ctx := context.Background()

	tb, hit, err := r.LayoutWithCacheInfo(ctx, checkout(), Options{})
	if err != nil || hit {
		t.Fatalf("hit=%v err=%v", hit, err)
	}
	lr, hit, err := r.LayoutWithCacheInfo(ctx, checkout(), Options{Direction: "LR"})
	if err != nil || hit {
		t.Fatalf("LR should not reuse the TB entry: hit=%v err=%v", hit, err)
	}
	a, _ := tb.Node("pay")
	b, _ := lr.Node("pay")
	if a.Position == b.Position {
		t.Errorf("TB and LR placed pay at the same spot %+v", a.Position)
	}

	if _, err := r.Layout(ctx, checkout(), Options{Direction: "sideways"}); !errors.Is(err, errors.ErrCodeInvalidDirection) {
		t.Errorf("error = %v, want INVALID_DIRECTION", err)
	}
}

func TestRenderAllFormats(t *testing.T) {
	r := newTestRunner(t, nil)
	ctx := context.Background()
	laid, err := r.Layout(ctx, checkout(), Options{})
	if err != nil {
		t.Fatal(err)
	}

	artifacts, hit, err := r.RenderWithCacheInfo(ctx, laid, Options{
		Formats: []string{"json", "drawio", "dot", "png", "json"},
		Scale:   0.5,
	})
	if err != nil {
		t.Fatal(err)
	}
	if hit {
		t.Error("first render should miss")
	}
	prefixes := map[string]string{
		"json":   "{",
		"drawio": "<?xml",
		"dot":    "digraph",
		"png":    "\x89PNG",
	}
	for format, prefix := range prefixes {
		if !bytes.HasPrefix(artifacts[format], []byte(prefix)) {
			t.Errorf("%s artifact starts with %q", format, artifacts[format][:min(8, len(artifacts[format]))])
		}
	}
	if len(artifacts) != 4 {
		t.Errorf("got %d artifacts, want 4", len(artifacts))
	}

	if _, err := r.Render(ctx, laid, Options{Formats: []string{"pdf"}}); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("error = %v, want INVALID_FORMAT", err)
	}
}

func TestArrange(t *testing.T) {
	d := Arrange(checkout(), nil, "RL")
	if d.LayoutDirection != "RL" {
		t.Fatalf("direction = %s", d.LayoutDirection)
	}
	cart, _ := d.Node("cart")
	done, _ := d.Node("done")
	if cart.Position.X <= done.Position.X {
		t.Errorf("RL should place cart right of done: %v vs %v", cart.Position, done.Position)
	}
}
