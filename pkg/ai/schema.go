package ai

import (
	"github.com/matzehuels/flowgen/pkg/flow"
	"github.com/matzehuels/flowgen/pkg/layout"
)

// schema is the subset of the OpenAPI schema object the generateContent
// endpoint accepts as responseSchema.
type schema struct {
	Type        string            `json:"type"`
	Description string            `json:"description,omitempty"`
	Enum        []string          `json:"enum,omitempty"`
	Properties  map[string]schema `json:"properties,omitempty"`
	Items       *schema           `json:"items,omitempty"`
	Required    []string          `json:"required,omitempty"`
}

func str() schema { return schema{Type: "STRING"} }

func enum[T ~string](values ...T) schema {
	s := schema{Type: "STRING", Enum: make([]string, len(values))}
	for i, v := range values {
		s.Enum[i] = string(v)
	}
	return s
}

// ResponseSchema describes the JSON the model must answer with. It mirrors
// the fields of [flow.Diagram] that a model may set.
func ResponseSchema() schema {
	direction := enum(layout.Directions...)
	direction.Description = "The direction the diagram should flow."
	diagramType := enum(flow.DiagramTypes...)
	diagramType.Description = "The category of the diagram."

	node := schema{
		Type: "OBJECT",
		Properties: map[string]schema{
			"id":          str(),
			"label":       str(),
			"shape":       enum(flow.Shapes...),
			"color":       enum(flow.Colors...),
			"shadow":      enum(flow.ShadowNone, flow.ShadowSm, flow.ShadowMd, flow.ShadowLg, flow.ShadowXl),
			"borderStyle": enum(flow.BorderSolid, flow.BorderDashed, flow.BorderDotted),
		},
		Required: []string{"id", "label", "shape"},
	}
	edge := schema{
		Type: "OBJECT",
		Properties: map[string]schema{
			"source":   str(),
			"target":   str(),
			"label":    str(),
			"animated": {Type: "BOOLEAN"},
			"style": {
				Type:       "OBJECT",
				Properties: map[string]schema{"strokeDasharray": str()},
			},
		},
		Required: []string{"source", "target"},
	}

	return schema{
		Type: "OBJECT",
		Properties: map[string]schema{
			"layoutDirection": direction,
			"diagramType":     diagramType,
			"nodes":           {Type: "ARRAY", Items: &node},
			"edges":           {Type: "ARRAY", Items: &edge},
		},
	}
}
