package ai

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/matzehuels/flowgen/pkg/errors"
	"github.com/matzehuels/flowgen/pkg/flow"
	"github.com/matzehuels/flowgen/pkg/httputil"
	"github.com/matzehuels/flowgen/pkg/observability"
)

// Defaults for [Config].
const (
	DefaultModel    = "gemini-2.5-flash"
	DefaultEndpoint = "https://generativelanguage.googleapis.com/v1beta"
	DefaultTimeout  = 60 * time.Second
	DefaultAttempts = 3
)

// APIKeyEnvVars are consulted in order by [APIKeyFromEnv].
var APIKeyEnvVars = []string{"GEMINI_API_KEY", "GOOGLE_API_KEY", "API_KEY"}

// APIKeyFromEnv returns the first non-empty API key from [APIKeyEnvVars].
func APIKeyFromEnv() string {
	for _, name := range APIKeyEnvVars {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			return v
		}
	}
	return ""
}

// Config configures a [GeminiClient]. Zero fields take their defaults.
type Config struct {
	APIKey   string
	Model    string
	Endpoint string
	Timeout  time.Duration
	Attempts int
	// RetryDelay is the initial backoff; it doubles after every attempt.
	RetryDelay time.Duration
}

// GeminiClient generates diagrams with the Gemini generateContent API.
// It is safe for concurrent use.
type GeminiClient struct {
	http     *httputil.Client
	endpoint string
	model    string
}

// NewGemini creates a client. It fails with [errors.ErrCodeUnauthorized] if
// no API key is configured.
func NewGemini(cfg Config, opts ...httputil.ClientOption) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New(errors.ErrCodeUnauthorized,
			"API key not found; set one of %s", strings.Join(APIKeyEnvVars, ", "))
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Attempts <= 0 {
		cfg.Attempts = DefaultAttempts
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}

	base := []httputil.ClientOption{httputil.WithRetry(cfg.Attempts, cfg.RetryDelay)}
	if cfg.Timeout > 0 {
		base = append(base, httputil.WithTimeout(cfg.Timeout))
	}
	headers := map[string]string{"x-goog-api-key": cfg.APIKey}
	return &GeminiClient{
		http:     httputil.NewClient(headers, append(base, opts...)...),
		endpoint: strings.TrimSuffix(cfg.Endpoint, "/"),
		model:    cfg.Model,
	}, nil
}

// Model returns the model name requests are sent to.
func (c *GeminiClient) Model() string { return c.model }

// Generate creates a diagram for prompt.
func (c *GeminiClient) Generate(ctx context.Context, prompt string) (flow.Diagram, error) {
	if err := errors.ValidatePrompt(prompt); err != nil {
		return flow.Diagram{}, err
	}
	return c.run(ctx, SystemInstruction, GeneratePrompt(prompt), nil)
}

// Update revises current according to prompt.
func (c *GeminiClient) Update(ctx context.Context, current flow.Diagram, prompt string) (flow.Diagram, error) {
	if err := errors.ValidatePrompt(prompt); err != nil {
		return flow.Diagram{}, err
	}
	return c.run(ctx, UpdateInstruction(current), UpdatePrompt(prompt), &current)
}

func (c *GeminiClient) run(ctx context.Context, instruction, text string, current *flow.Diagram) (d flow.Diagram, err error) {
	hooks := observability.Pipeline()
	hooks.OnGenerateStart(ctx, c.model, current != nil)
	start := time.Now()
	defer func() {
		hooks.OnGenerateComplete(ctx, c.model, len(d.Nodes), time.Since(start), err)
	}()

	req := generateRequest{
		SystemInstruction: content{Parts: []part{{Text: instruction}}},
		Contents:          []content{{Role: "user", Parts: []part{{Text: text}}}},
		GenerationConfig: generationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   ResponseSchema(),
		},
	}
	var resp generateResponse
	url := fmt.Sprintf("%s/models/%s:generateContent", c.endpoint, c.model)
	if err := c.http.PostJSON(ctx, url, req, &resp); err != nil {
		return flow.Diagram{}, err
	}
	return ParseResponse(resp.text(), current)
}

// =============================================================================
// Wire types
// =============================================================================

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	ResponseMimeType string `json:"responseMimeType"`
	ResponseSchema   schema `json:"responseSchema"`
}

type generateRequest struct {
	SystemInstruction content          `json:"systemInstruction"`
	Contents          []content        `json:"contents"`
	GenerationConfig  generationConfig `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
}

// text joins the parts of the first candidate.
func (r generateResponse) text() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var b strings.Builder
	for _, p := range r.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	return b.String()
}
