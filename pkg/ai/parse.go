package ai

import (
	"encoding/json"
	"strings"

	"github.com/matzehuels/flowgen/pkg/errors"
	"github.com/matzehuels/flowgen/pkg/flow"
)

// ParseResponse decodes model output into a normalized diagram.
//
// Surrounding Markdown code fences are removed. A direction or diagram type
// the model left out is taken from current when given, then from the
// defaults. Missing node or edge lists become empty ones. Node IDs must be
// unique; edges to unknown nodes are kept.
//
// Errors carry [errors.ErrCodeAIResponse].
func ParseResponse(text string, current *flow.Diagram) (flow.Diagram, error) {
	body := stripFences(text)
	if body == "" {
		return flow.Diagram{}, errors.New(errors.ErrCodeAIResponse, "empty response from model")
	}

	var d flow.Diagram
	if err := json.Unmarshal([]byte(body), &d); err != nil {
		return flow.Diagram{}, errors.Wrap(errors.ErrCodeAIResponse, err, "failed to parse structure from model response")
	}

	if current != nil {
		if d.LayoutDirection == "" {
			d.LayoutDirection = current.LayoutDirection
		}
		if d.DiagramType == "" {
			d.DiagramType = current.DiagramType
		}
	}
	d.Normalize()

	for _, n := range d.Nodes {
		if err := errors.ValidateNodeID(n.ID); err != nil {
			return flow.Diagram{}, errors.Wrap(errors.ErrCodeAIResponse, err, "model returned an invalid node")
		}
		if err := errors.ValidateLabel(n.Label); err != nil {
			return flow.Diagram{}, errors.Wrap(errors.ErrCodeAIResponse, err, "model returned an invalid label for %q", n.ID)
		}
	}
	if err := d.Validate(); err != nil {
		return flow.Diagram{}, errors.Wrap(errors.ErrCodeAIResponse, err, "model returned an invalid diagram")
	}
	return d, nil
}

// stripFences removes a leading ```json (or ```) line and a trailing ```.
func stripFences(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		s = strings.TrimLeft(s, "`")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
