// Package flow defines the diagram model shared by the generator, the
// editor, the exporters and the HTTP API.
//
// A [Diagram] is a list of styled [Node] boxes and [Edge] connections plus
// a flow direction and a diagram type. Its JSON form is what the language
// model returns:
//
//	{
//	  "layoutDirection": "LR",
//	  "diagramType": "architecture",
//	  "nodes": [{"id": "api", "label": "API", "shape": "rectangle", "color": "blue"}],
//	  "edges": [{"source": "api", "target": "db", "label": "reads"}]
//	}
//
// Model output is loose: fields may be missing and enum values may be
// anything. [Diagram.Normalize] maps every field onto a known value, and
// [Arrange] runs the layout engine to add positions and connector sides.
//
//	d, _ := flow.ReadFile("diagram.json") // decode + normalize
//	d = flow.Arrange(d, nil)              // place nodes
//	_ = flow.WriteFile("placed.json", d)
package flow
