// Package ai turns natural-language requests into diagrams.
//
// A [Generator] produces a [flow.Diagram] for a fresh request or revises an
// existing one. [GeminiClient] calls the Gemini generateContent endpoint
// with a fixed system instruction and a JSON response schema, so the model
// answers with exactly the structure [flow.Diagram] decodes. [Static]
// returns a canned diagram for tests and offline use.
//
// # Responses
//
// [ParseResponse] is the single entry point for model output. It strips
// Markdown code fences, decodes the JSON, fills in defaults (direction and
// diagram type fall back to the current diagram, then to TB and
// flowchart) and rejects nodes with unusable or duplicate IDs. Edges to
// unknown nodes are left in place; layout skips them.
//
// # Updates
//
// For an update the current diagram is reduced to IDs, labels, shapes,
// colors and connections by [Summarize] and appended to the system
// instruction, which keeps prompts small and asks the model to keep
// existing IDs stable.
package ai
