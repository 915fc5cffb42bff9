package ai

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/flowgen/pkg/flow"
	"github.com/matzehuels/flowgen/pkg/layout"
)

func TestSummarize(t *testing.T) {
	d := flow.Diagram{
		Nodes: []flow.Node{{ID: "a", Label: "A", Shape: flow.ShapePill, Width: 300, Position: flow.Position{X: 9}}},
		Edges: []flow.Edge{{ID: "ea-a", Source: "a", Target: "a", Label: "loop", Animated: flow.Bool(false)}},
	}
	got := Summarize(d)
	want := `{"nodes":[{"id":"a","label":"A","shape":"pill"}],"edges":[{"source":"a","target":"a","label":"loop"}]}`
	if got != want {
		t.Errorf("Summarize() =\n%s\nwant\n%s", got, want)
	}

	if got := Summarize(flow.Diagram{}); got != `{"nodes":[],"edges":[]}` {
		t.Errorf("Summarize(empty) = %s", got)
	}
}

func TestUpdateInstruction(t *testing.T) {
	got := UpdateInstruction(flow.Diagram{Nodes: []flow.Node{{ID: "api", Label: "API"}}})
	if !strings.HasPrefix(got, SystemInstruction) {
		t.Error("update instruction should extend the system instruction")
	}
	for _, want := range []string{"EDITING MODE", `"id":"api"`} {
		if !strings.Contains(got, want) {
			t.Errorf("instruction missing %q", want)
		}
	}
}

func TestPrompts(t *testing.T) {
	if got := GeneratePrompt(`a "login" flow`); got != `Create a diagram for: "a \"login\" flow"` {
		t.Errorf("GeneratePrompt = %s", got)
	}
	if got := UpdatePrompt("add cache"); got != `Update the diagram: "add cache"` {
		t.Errorf("UpdatePrompt = %s", got)
	}
}

func TestResponseSchema(t *testing.T) {
	data, err := json.Marshal(ResponseSchema())
	if err != nil {
		t.Fatal(err)
	}
	var s struct {
		Type       string `json:"type"`
		Properties map[string]struct {
			Enum  []string `json:"enum"`
			Items struct {
				Required []string `json:"required"`
			} `json:"items"`
		} `json:"properties"`
	}
	if err := json.Unmarshal(data, &s); err != nil {
		t.Fatal(err)
	}
	if s.Type != "OBJECT" {
		t.Errorf("type = %s", s.Type)
	}
	if got := s.Properties["layoutDirection"].Enum; !slices.Equal(got, []string{"TB", "LR", "RL", "BT"}) {
		t.Errorf("directions = %v", got)
	}
	if got := s.Properties["nodes"].Items.Required; !slices.Equal(got, []string{"id", "label", "shape"}) {
		t.Errorf("node required = %v", got)
	}
	if got := s.Properties["edges"].Items.Required; !slices.Equal(got, []string{"source", "target"}) {
		t.Errorf("edge required = %v", got)
	}
}

func TestStatic(t *testing.T) {
	s := NewStatic(flow.Diagram{Nodes: []flow.Node{{ID: "a", Label: "A"}}})
	ctx := context.Background()

	d, err := s.Generate(ctx, "first")
	if err != nil {
		t.Fatal(err)
	}
	if d.LayoutDirection != layout.TopBottom || d.Nodes[0].Width != flow.DefaultWidth {
		t.Errorf("Generate did not normalize: %+v", d)
	}

	d, err = s.Update(ctx, flow.Diagram{LayoutDirection: layout.LeftRight}, "second")
	if err != nil {
		t.Fatal(err)
	}
	if d.LayoutDirection != layout.LeftRight {
		t.Errorf("Update direction = %q, want LR from current", d.LayoutDirection)
	}
	if got := s.Prompts(); !slices.Equal(got, []string{"first", "second"}) {
		t.Errorf("prompts = %v", got)
	}

	s.Err = errors.New("offline")
	if _, err := s.Generate(ctx, "third"); err == nil {
		t.Error("expected error")
	}
	if s.Diagram.Nodes[0].Width != 0 {
		t.Error("Static modified its diagram")
	}
}
