package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowgen/pkg/ai"
	"github.com/matzehuels/flowgen/pkg/cache"
	"github.com/matzehuels/flowgen/pkg/errors"
	"github.com/matzehuels/flowgen/pkg/flow"
	"github.com/matzehuels/flowgen/pkg/pipeline"
)

const chain = `{"nodes":[{"id":"a","label":"A"},{"id":"b","label":"B"}],"edges":[{"source":"a","target":"b"}]}`

func newTestServer(t *testing.T, gen ai.Generator) (*httptest.Server, *bytes.Buffer) {
	t.Helper()
	var logs bytes.Buffer
	logger := log.New(&logs)
	runner := pipeline.NewRunner(cache.NewNullCache(), nil, gen, nil, logger)
	srv := httptest.NewServer(New(runner, logger, Options{MaxBodyBytes: 64 << 10}))
	t.Cleanup(srv.Close)
	return srv, &logs
}

func post(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeError(t *testing.T, resp *http.Response) ErrorDetail {
	t.Helper()
	var body ErrorBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("error body: %v", err)
	}
	return body.Error
}

func TestHealth(t *testing.T) {
	srv, logs := newTestServer(t, nil)
	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body healthResponse
	json.NewDecoder(resp.Body).Decode(&body)
	if body.Status != "ok" || body.Build.Version == "" {
		t.Errorf("body = %+v", body)
	}
	if resp.Header.Get(RequestIDHeader) == "" {
		t.Error("missing request ID header")
	}
	if !strings.Contains(logs.String(), "path=/healthz") {
		t.Errorf("request not logged:\n%s", logs.String())
	}
}

func TestRequestIDPropagates(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	const id = "0b7c6a56-2f7e-4a53-9d59-8f0a4c3e1d11"

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/healthz", nil)
	req.Header.Set(RequestIDHeader, id)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got := resp.Header.Get(RequestIDHeader); got != id {
		t.Errorf("request ID = %q, want %q", got, id)
	}

	req.Header.Set(RequestIDHeader, "not-a-uuid")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got := resp.Header.Get(RequestIDHeader); got == "not-a-uuid" || got == "" {
		t.Errorf("malformed request ID kept: %q", got)
	}
}

func TestLayout(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	resp := post(t, srv.URL+"/api/layout", `{"diagram":`+chain+`,"direction":"LR"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var d flow.Diagram
	if err := json.NewDecoder(resp.Body).Decode(&d); err != nil {
		t.Fatal(err)
	}
	b, _ := d.Node("b")
	if d.LayoutDirection != "LR" || b.Position.X != 310 {
		t.Errorf("direction=%s b=%+v", d.LayoutDirection, b.Position)
	}
	if b.TargetPosition != "left" {
		t.Errorf("targetPosition = %q, want left", b.TargetPosition)
	}
}

func TestLayoutErrors(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	tests := []struct {
		name   string
		body   string
		status int
		code   errors.Code
	}{
		{"Empty", ``, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"Malformed", `{"diagram":`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"UnknownField", `{"graph":{}}`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"NoDiagram", `{"direction":"LR"}`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"BadDirection", `{"diagram":` + chain + `,"direction":"up"}`, http.StatusBadRequest, errors.ErrCodeInvalidDirection},
		{"DuplicateIDs", `{"diagram":{"nodes":[{"id":"a"},{"id":"a"}],"edges":[]}}`, http.StatusBadRequest, errors.ErrCodeInvalidGraph},
		{"TooLarge", `{"diagram":{"nodes":[{"id":"` + strings.Repeat("x", 70<<10) + `"}]}}`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, srv.URL+"/api/layout", tt.body)
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			detail := decodeError(t, resp)
			if detail.Code != tt.code {
				t.Errorf("code = %s, want %s (%s)", detail.Code, tt.code, detail.Message)
			}
			if detail.RequestID == "" {
				t.Error("error body lacks request_id")
			}
		})
	}
}

func TestGenerate(t *testing.T) {
	gen := ai.NewStatic(flow.Diagram{
		LayoutDirection: "LR",
		Nodes:           []flow.Node{{ID: "idea", Shape: flow.ShapeCloud}, {ID: "branch"}},
		Edges:           []flow.Edge{{Source: "idea", Target: "branch"}},
	})
	srv, _ := newTestServer(t, gen)

	resp := post(t, srv.URL+"/api/generate", `{"prompt":"mind map of hobbies"}`)
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}
	var d flow.Diagram
	json.NewDecoder(resp.Body).Decode(&d)
	if len(d.Nodes) != 2 || d.LayoutDirection != "LR" {
		t.Errorf("diagram = %+v", d)
	}
	if got := gen.Prompts(); len(got) != 1 || got[0] != "mind map of hobbies" {
		t.Errorf("prompts = %v", got)
	}
}

func TestGenerateErrors(t *testing.T) {
	t.Run("NoGenerator", func(t *testing.T) {
		srv, _ := newTestServer(t, nil)
		resp := post(t, srv.URL+"/api/generate", `{"prompt":"x"}`)
		if resp.StatusCode != http.StatusNotImplemented {
			t.Errorf("status = %d, want 501", resp.StatusCode)
		}
	})
	t.Run("MissingPrompt", func(t *testing.T) {
		srv, _ := newTestServer(t, ai.NewStatic(flow.Diagram{}))
		resp := post(t, srv.URL+"/api/generate", `{}`)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", resp.StatusCode)
		}
	})
	t.Run("RateLimited", func(t *testing.T) {
		gen := ai.NewStatic(flow.Diagram{})
		gen.Err = errors.Wrap(errors.ErrCodeRateLimited, &errors.RateLimitedError{RetryAfter: 7 * time.Second}, "quota")
		srv, _ := newTestServer(t, gen)
		resp := post(t, srv.URL+"/api/generate", `{"prompt":"x"}`)
		if resp.StatusCode != http.StatusTooManyRequests {
			t.Errorf("status = %d, want 429", resp.StatusCode)
		}
		if got := resp.Header.Get("Retry-After"); got != "7" {
			t.Errorf("Retry-After = %q, want 7", got)
		}
	})
	t.Run("BadModelOutput", func(t *testing.T) {
		gen := ai.NewStatic(flow.Diagram{})
		gen.Err = errors.New(errors.ErrCodeAIResponse, "model returned no JSON")
		srv, _ := newTestServer(t, gen)
		resp := post(t, srv.URL+"/api/generate", `{"prompt":"x"}`)
		if resp.StatusCode != http.StatusBadGateway {
			t.Errorf("status = %d, want 502", resp.StatusCode)
		}
		if d := decodeError(t, resp); d.Message != "model returned no JSON" {
			t.Errorf("message = %q", d.Message)
		}
	})
}

func TestExport(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	tests := []struct {
		format      string
		contentType string
		prefix      string
	}{
		{"drawio", "application/xml", "<?xml"},
		{"dot", "text/vnd.graphviz", "digraph"},
		{"json", "application/json", "{"},
		{"png", "image/png", "\x89PNG"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			resp := post(t, srv.URL+"/api/export/"+tt.format, `{"diagram":`+chain+`,"layout":true,"scale":0.5}`)
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d", resp.StatusCode)
			}
			if got := resp.Header.Get("Content-Type"); got != tt.contentType {
				t.Errorf("Content-Type = %q, want %q", got, tt.contentType)
			}
			if got := resp.Header.Get("Content-Disposition"); !strings.Contains(got, "diagram."+tt.format) {
				t.Errorf("Content-Disposition = %q", got)
			}
			body, _ := io.ReadAll(resp.Body)
			if !bytes.HasPrefix(body, []byte(tt.prefix)) {
				t.Errorf("body starts with %q", body[:min(8, len(body))])
			}
		})
	}
}

func TestExportErrors(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	resp := post(t, srv.URL+"/api/export/pdf", `{"diagram":`+chain+`}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("pdf status = %d, want 400", resp.StatusCode)
	}
	if d := decodeError(t, resp); d.Code != errors.ErrCodeInvalidFormat {
		t.Errorf("code = %s", d.Code)
	}

	resp = post(t, srv.URL+"/api/export/png", `{"diagram":`+chain+`,"scale":100}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("scale status = %d, want 400", resp.StatusCode)
	}
}

func TestNotFound(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	resp := post(t, srv.URL+"/api/nothing", `{}`)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
	if d := decodeError(t, resp); d.Code != errors.ErrCodeNotFound {
		t.Errorf("code = %s", d.Code)
	}
}
