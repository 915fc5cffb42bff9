package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/matzehuels/flowgen/pkg/flow"
)

// Generator produces diagrams from natural-language requests.
// Implementations must be safe for concurrent use.
type Generator interface {
	// Generate creates a new diagram for prompt.
	Generate(ctx context.Context, prompt string) (flow.Diagram, error)
	// Update revises current according to prompt.
	Update(ctx context.Context, current flow.Diagram, prompt string) (flow.Diagram, error)
}

// SystemInstruction tells the model how to pick a diagram type, layout
// direction and styling.
const SystemInstruction = `You are an elite Visualization Architect. Your goal is to generate or modify node-based diagrams based on user intent.

CRITICAL: DETECT THE DIAGRAM TYPE. DO NOT DEFAULT TO FLOWCHART.

1. **Analyze Intent**:
   - **Mind Map**: Central idea branches out. Use 'LR' (Left-to-Right) layout. Central node = 'circle' or 'cloud'. Branches = 'pill' or 'rectangle'.
   - **Org Chart / Hierarchy**: Strict Top-Down ('TB'). Use 'rectangle' or 'pill'.
   - **Architecture / System**: Component based. Use 'LR'. Database = 'cylinder', Internet = 'cloud', Service = 'rectangle'.
   - **Flowchart**: Process steps. Use 'TB'. Decisions = 'diamond', Start/End = 'pill'.
   - **Database Schema**: Tables and relations. Use 'LR'. Shape = 'rectangle' (representing tables).

2. **Styling Rules**:
   - Apply semantic colors (e.g., Red for errors/stops, Green for success/start, Blue for core components, Cylinder/Grey for storage).
   - Keep labels concise (2-6 words max).
   - For Mind Maps, make the central node distinct (larger font, specific color).
`

const editingInstruction = `
**TASK: EDITING MODE**
The user wants to modify an existing diagram.
1. Respect existing IDs where possible to maintain continuity.
2. If the user asks to "Change all X to Y", modify the properties.
3. If the user asks to "Add a step", insert new nodes and adjust edges.
4. If the user asks to "Connect A to B", add an edge.
5. If the user wants a style change (e.g. "Make it a mind map"), change the layoutDirection and node shapes/colors accordingly.

Current Diagram Data:
`

// UpdateInstruction returns the system instruction for revising current.
func UpdateInstruction(current flow.Diagram) string {
	return SystemInstruction + editingInstruction + Summarize(current) + "\n"
}

// GeneratePrompt wraps a user request for a new diagram.
func GeneratePrompt(prompt string) string {
	return fmt.Sprintf("Create a diagram for: %q", prompt)
}

// UpdatePrompt wraps a user request to change the current diagram.
func UpdatePrompt(prompt string) string {
	return fmt.Sprintf("Update the diagram: %q", prompt)
}

type summaryNode struct {
	ID    string     `json:"id"`
	Label string     `json:"label"`
	Shape flow.Shape `json:"shape,omitempty"`
	Color flow.Color `json:"color,omitempty"`
}

type summaryEdge struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Label  string `json:"label,omitempty"`
}

// Summarize renders the parts of d the model needs to edit it as compact
// JSON: node IDs, labels, shapes and colors, and edge endpoints and labels.
func Summarize(d flow.Diagram) string {
	s := struct {
		Nodes []summaryNode `json:"nodes"`
		Edges []summaryEdge `json:"edges"`
	}{
		Nodes: make([]summaryNode, len(d.Nodes)),
		Edges: make([]summaryEdge, len(d.Edges)),
	}
	for i, n := range d.Nodes {
		s.Nodes[i] = summaryNode{ID: n.ID, Label: n.Label, Shape: n.Shape, Color: n.Color}
	}
	for i, e := range d.Edges {
		s.Edges[i] = summaryEdge{Source: e.Source, Target: e.Target, Label: e.Label}
	}
	data, _ := json.Marshal(s)
	return string(data)
}

// =============================================================================
// Static
// =============================================================================

// Static is a Generator that always returns the same diagram, or Err if
// set. It records the prompts it receives.
type Static struct {
	Diagram flow.Diagram
	Err     error

	mu      sync.Mutex
	prompts []string
}

// NewStatic returns a Static generator for d.
func NewStatic(d flow.Diagram) *Static {
	return &Static{Diagram: d}
}

// Generate returns a normalized copy of s.Diagram.
func (s *Static) Generate(_ context.Context, prompt string) (flow.Diagram, error) {
	s.record(prompt)
	if s.Err != nil {
		return flow.Diagram{}, s.Err
	}
	d := s.Diagram.Clone()
	d.Normalize()
	return d, nil
}

// Update ignores current and behaves like Generate, except that a missing
// direction is taken from current.
func (s *Static) Update(ctx context.Context, current flow.Diagram, prompt string) (flow.Diagram, error) {
	d, err := s.Generate(ctx, prompt)
	if err == nil && s.Diagram.LayoutDirection == "" && current.LayoutDirection != "" {
		d.LayoutDirection = current.LayoutDirection
	}
	return d, err
}

// Prompts returns the prompts received so far.
func (s *Static) Prompts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.prompts...)
}

func (s *Static) record(prompt string) {
	s.mu.Lock()
	s.prompts = append(s.prompts, prompt)
	s.mu.Unlock()
}

var (
	_ Generator = (*Static)(nil)
	_ Generator = (*GeminiClient)(nil)
)
