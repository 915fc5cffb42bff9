package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	ferrors "github.com/matzehuels/flowgen/pkg/errors"
	"github.com/matzehuels/flowgen/pkg/observability"
)

type echo struct {
	Message string `json:"message"`
}

func newTestClient(srv *httptest.Server, headers map[string]string) *Client {
	return NewClient(headers, WithHTTPClient(srv.Client()), WithRetry(3, time.Millisecond))
}

func TestClientPostJSON(t *testing.T) {
	var gotHeader, gotType, gotAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		gotHeader = r.Header.Get("X-Goog-Api-Key")
		gotType = r.Header.Get("Content-Type")
		gotAgent = r.Header.Get("User-Agent")
		var in echo
		json.NewDecoder(r.Body).Decode(&in)
		json.NewEncoder(w).Encode(echo{Message: "re: " + in.Message})
	}))
	defer srv.Close()

	c := newTestClient(srv, map[string]string{"X-Goog-Api-Key": "secret"})
	var out echo
	if err := c.PostJSON(context.Background(), srv.URL, echo{Message: "hi"}, &out); err != nil {
		t.Fatalf("PostJSON() error: %v", err)
	}
	if out.Message != "re: hi" {
		t.Errorf("message = %q", out.Message)
	}
	if gotHeader != "secret" || gotType != "application/json" {
		t.Errorf("headers = %q, %q", gotHeader, gotType)
	}
	if !strings.HasPrefix(gotAgent, "flowgen/") {
		t.Errorf("User-Agent = %q", gotAgent)
	}
}

func TestClientRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(echo{Message: "ok"})
	}))
	defer srv.Close()

	var out echo
	if err := newTestClient(srv, nil).PostJSON(context.Background(), srv.URL, echo{}, &out); err != nil {
		t.Fatalf("PostJSON() error: %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
}

func TestClientGivesUpAfterAttempts(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := newTestClient(srv, nil).PostJSON(context.Background(), srv.URL, echo{}, &echo{})
	if !ferrors.Is(err, ferrors.ErrCodeNetwork) {
		t.Errorf("err = %v, want NETWORK_ERROR", err)
	}
	var re *RetryableError
	if errors.As(err, &re) {
		t.Error("RetryableError leaked to caller")
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
}

func TestClientStatusCodes(t *testing.T) {
	tests := []struct {
		status int
		want   ferrors.Code
	}{
		{http.StatusTooManyRequests, ferrors.ErrCodeRateLimited},
		{http.StatusUnauthorized, ferrors.ErrCodeUnauthorized},
		{http.StatusForbidden, ferrors.ErrCodeUnauthorized},
		{http.StatusNotFound, ferrors.ErrCodeNotFound},
		{http.StatusBadRequest, ferrors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			var calls atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.Header().Set("Retry-After", "30")
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			err := newTestClient(srv, nil).PostJSON(context.Background(), srv.URL, echo{}, &echo{})
			if !ferrors.Is(err, tt.want) {
				t.Errorf("err = %v, want %s", err, tt.want)
			}
			if calls.Load() != 1 {
				t.Errorf("calls = %d, want no retry", calls.Load())
			}
		})
	}
}

func TestClientRateLimitRetryAfter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "12")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	err := newTestClient(srv, nil).PostJSON(context.Background(), srv.URL, echo{}, &echo{})
	var rl *ferrors.RateLimitedError
	if !errors.As(err, &rl) || rl.RetryAfter != 12*time.Second {
		t.Errorf("err = %v, want RateLimitedError with RetryAfter 12", err)
	}
}

func TestRetryContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Retry(ctx, 3, time.Hour, func() error {
		return &RetryableError{Err: errors.New("flaky")}
	})
	if err != context.Canceled {
		t.Errorf("Retry() = %v, want context.Canceled", err)
	}
}

type recordingHooks struct {
	observability.NoopHTTPHooks
	requests, responses atomic.Int32
	status              atomic.Int32
}

func (h *recordingHooks) OnRequest(context.Context, string, string, string) { h.requests.Add(1) }

func (h *recordingHooks) OnResponse(_ context.Context, _, _, _ string, status int, _ time.Duration) {
	h.responses.Add(1)
	h.status.Store(int32(status))
}

func TestClientEmitsHTTPHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetHTTPHooks(hooks)
	defer observability.Reset()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(echo{Message: "ok"})
	}))
	defer srv.Close()

	var out echo
	if err := newTestClient(srv, nil).PostJSON(context.Background(), srv.URL, echo{}, &out); err != nil {
		t.Fatal(err)
	}
	if hooks.requests.Load() != 1 || hooks.responses.Load() != 1 || hooks.status.Load() != http.StatusOK {
		t.Errorf("hooks: %d requests, %d responses, status %d",
			hooks.requests.Load(), hooks.responses.Load(), hooks.status.Load())
	}
}

func TestWithTimeoutCopiesClient(t *testing.T) {
	hc := &http.Client{}
	c := NewClient(nil, WithHTTPClient(hc), WithTimeout(5*time.Second))
	if c.http == hc || c.http.Timeout != 5*time.Second || hc.Timeout != 0 {
		t.Error("WithTimeout should apply to a copy of the client")
	}
}

func TestRetryHonoursRetryAfter(t *testing.T) {
	var calls int
	start := time.Now()
	err := Retry(context.Background(), 2, time.Millisecond, func() error {
		calls++
		if calls == 1 {
			return &RetryableError{Err: errors.New("busy"), After: 50 * time.Millisecond}
		}
		return nil
	})
	if err != nil || calls != 2 {
		t.Fatalf("Retry() = %v after %d calls", err, calls)
	}
	if waited := time.Since(start); waited < 50*time.Millisecond {
		t.Errorf("waited %v, want at least the Retry-After delay", waited)
	}
}

func TestClientServiceUnavailableRetryAfter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	err := checkStatus(mustGet(t, srv.URL))
	var re *RetryableError
	if !errors.As(err, &re) || re.After != 7*time.Second {
		t.Errorf("checkStatus() = %#v, want RetryableError with After 7s", err)
	}
}

func TestRetryAfterHeader(t *testing.T) {
	tests := []struct {
		value string
		want  time.Duration
	}{
		{"", 0},
		{"3", 3 * time.Second},
		{"-1", 0},
		{"Wed, 21 Oct 2015 07:28:00 GMT", 0},
	}
	for _, tt := range tests {
		h := http.Header{}
		if tt.value != "" {
			h.Set("Retry-After", tt.value)
		}
		if got := retryAfter(h); got != tt.want {
			t.Errorf("retryAfter(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func mustGet(t *testing.T, url string) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}
