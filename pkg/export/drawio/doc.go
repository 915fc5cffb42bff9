// Package drawio writes diagrams as diagrams.net (draw.io) documents.
//
// The output is an uncompressed mxfile with one page. Node styles map the
// diagram's shapes, palette colors, shadows, border styles, alignment and
// font sizes onto mxGraph style strings; edges are orthogonal connectors
// with block arrows, dashed when the edge is dashed.
package drawio
