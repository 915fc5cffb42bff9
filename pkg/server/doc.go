// Package server exposes the diagram pipeline over HTTP.
//
// # Routes
//
//	GET  /healthz               liveness and build information
//	POST /api/layout            lay out a diagram
//	POST /api/generate          generate (or revise) and lay out a diagram
//	POST /api/export/{format}   encode a diagram as json, drawio, dot, svg, png or gif
//
// Requests and responses are JSON except for export downloads. Every
// response carries an X-Request-ID header; failures return
//
//	{"error": {"code": "INVALID_DIRECTION", "message": "...", "request_id": "..."}}
//
// with the HTTP status derived from the error code.
package server
