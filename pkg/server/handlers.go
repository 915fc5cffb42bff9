package server

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/flowgen/pkg/buildinfo"
	"github.com/matzehuels/flowgen/pkg/errors"
	"github.com/matzehuels/flowgen/pkg/export"
	"github.com/matzehuels/flowgen/pkg/flow"
	"github.com/matzehuels/flowgen/pkg/pipeline"
)

// LayoutRequest is the body of POST /api/layout.
type LayoutRequest struct {
	Diagram   *flow.Diagram `json:"diagram"`
	Direction string        `json:"direction,omitempty"`
}

// GenerateRequest is the body of POST /api/generate. With a diagram the
// prompt revises it.
type GenerateRequest struct {
	Prompt    string        `json:"prompt"`
	Diagram   *flow.Diagram `json:"diagram,omitempty"`
	Direction string        `json:"direction,omitempty"`
	Refresh   bool          `json:"refresh,omitempty"`
}

// ExportRequest is the body of POST /api/export/{format}.
type ExportRequest struct {
	Diagram   *flow.Diagram `json:"diagram"`
	Direction string        `json:"direction,omitempty"`
	// Layout runs the layout engine before export. Without it the stored
	// positions are used.
	Layout bool    `json:"layout,omitempty"`
	Scale  float64 `json:"scale,omitempty"`
}

type healthResponse struct {
	Status string         `json:"status"`
	Build  buildinfo.Info `json:"build"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Build: buildinfo.Get()})
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	var req LayoutRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	opts := pipeline.Options{Input: req.Diagram, Direction: req.Direction}
	if err := requireDiagram(&opts); err != nil {
		writeError(w, r, err)
		return
	}

	laid, err := s.runner.Layout(r.Context(), *req.Diagram, opts)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, laid)
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Prompt == "" {
		writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "prompt is required"))
		return
	}
	opts := pipeline.Options{
		Prompt:    req.Prompt,
		Input:     req.Diagram,
		Direction: req.Direction,
		Refresh:   req.Refresh,
	}
	if err := opts.ValidateForGenerate(); err != nil {
		writeError(w, r, err)
		return
	}

	d, err := s.runner.Generate(r.Context(), opts)
	if err != nil {
		writeError(w, r, err)
		return
	}
	laid, err := s.runner.Layout(r.Context(), d, opts)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, laid)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		writeError(w, r, errors.Wrap(errors.ErrCodeInvalidFormat, err, "invalid format"))
		return
	}
	var req ExportRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	opts := pipeline.Options{
		Input:     req.Diagram,
		Direction: req.Direction,
		Formats:   []string{string(format)},
		Scale:     req.Scale,
	}
	if err := requireDiagram(&opts); err != nil {
		writeError(w, r, err)
		return
	}

	d := *req.Diagram
	if req.Layout {
		if d, err = s.runner.Layout(r.Context(), d, opts); err != nil {
			writeError(w, r, err)
			return
		}
	}
	artifacts, err := s.runner.Render(r.Context(), d, opts)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="diagram.%s"`, format.Extension()))
	w.WriteHeader(http.StatusOK)
	w.Write(artifacts[string(format)])
}

// requireDiagram checks that a request carries a valid diagram.
func requireDiagram(opts *pipeline.Options) error {
	if opts.Input == nil {
		return errors.New(errors.ErrCodeInvalidInput, "diagram is required")
	}
	return opts.ValidateForGenerate()
}

// decode reads a JSON body into v. Unknown fields are rejected.
func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case stderrors.As(err, &tooLarge):
			return errors.New(errors.ErrCodeInvalidInput, "request body exceeds %d bytes", tooLarge.Limit)
		case stderrors.Is(err, io.EOF):
			return errors.New(errors.ErrCodeInvalidInput, "request body is empty")
		default:
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid JSON body")
		}
	}
	return nil
}
