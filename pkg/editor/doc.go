// Package editor holds the interactive state of one diagram: the styled
// graph, the positions the user dragged nodes to, and the engine that lays
// it out.
//
// A [Document] re-runs the layout engine after every structural change
// (adding, deleting or connecting nodes, resizing, changing direction).
// Dragged positions live in a [layout.Overrides] layer and are applied on
// top of the fresh layout when the diagram is read back with
// [Document.Diagram], so the engine itself never sees interactive state.
//
//	doc := editor.New(diagram, nil)
//	id := doc.AddNode("Retry")
//	_, _ = doc.Connect("check", id, "fails")
//	_ = doc.Move(id, 420, 300)
//	doc.ToggleDirection()
//	out := doc.Diagram()
//
// A Document is not safe for concurrent use.
package editor
