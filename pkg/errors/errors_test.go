package errors

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestErrorText(t *testing.T) {
	err := New(ErrCodeInvalidDirection, "unknown direction %q", "UP")
	if got, want := err.Error(), `INVALID_DIRECTION: unknown direction "UP"`; got != want {
		t.Errorf("Error() = %s, want %s", got, want)
	}

	cause := errors.New("connection refused")
	wrapped := Wrap(ErrCodeNetwork, cause, "call %s", "gemini")
	if got, want := wrapped.Error(), "NETWORK_ERROR: call gemini: connection refused"; got != want {
		t.Errorf("Error() = %s, want %s", got, want)
	}
	if !errors.Is(wrapped, cause) || errors.Unwrap(wrapped) != cause {
		t.Error("cause not reachable through Unwrap")
	}
}

func TestCodeLookup(t *testing.T) {
	inner := New(ErrCodeInvalidInput, "edge references missing node")
	tests := []struct {
		name string
		err  error
		code Code
		msg  string
	}{
		{"Direct", inner, ErrCodeInvalidInput, "edge references missing node"},
		{"FmtWrapped", fmt.Errorf("layout: %w", inner), ErrCodeInvalidInput, "edge references missing node"},
		{"OutermostWins", Wrap(ErrCodeAIResponse, inner, "bad reply"), ErrCodeAIResponse, "bad reply"},
		{"Plain", errors.New("disk full"), "", "disk full"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.code {
				t.Errorf("GetCode() = %q, want %q", got, tt.code)
			}
			if got := UserMessage(tt.err); got != tt.msg {
				t.Errorf("UserMessage() = %q, want %q", got, tt.msg)
			}
			if tt.code != "" && !Is(tt.err, tt.code) {
				t.Errorf("Is(%q) = false", tt.code)
			}
		})
	}

	if Is(nil, ErrCodeInternal) || Is(errors.New("x"), "") {
		t.Error("Is matched an error without a code")
	}
}

func TestRateLimited(t *testing.T) {
	err := Wrap(ErrCodeRateLimited, &RateLimitedError{RetryAfter: 30 * time.Second}, "quota")
	if got := RetryAfter(err); got != 30*time.Second {
		t.Errorf("RetryAfter() = %v, want 30s", got)
	}
	if got := RetryAfter(fmt.Errorf("generate: %w", err)); got != 30*time.Second {
		t.Errorf("RetryAfter(wrapped) = %v", got)
	}
	if got := RetryAfter(New(ErrCodeRateLimited, "quota")); got != 0 {
		t.Errorf("RetryAfter(no hint) = %v", got)
	}

	if got := (&RateLimitedError{RetryAfter: time.Minute}).Error(); got != "model quota exhausted; retry in 1m0s" {
		t.Errorf("Error() = %s", got)
	}
	if got := (&RateLimitedError{}).Error(); got != "model quota exhausted" {
		t.Errorf("Error() = %s", got)
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{ErrCodeInvalidInput, 400},
		{ErrCodeInvalidDirection, 400},
		{ErrCodeInvalidFormat, 400},
		{ErrCodeInvalidGraph, 400},
		{ErrCodeNotFound, 404},
		{ErrCodeUnauthorized, 401},
		{ErrCodeRateLimited, 429},
		{ErrCodeAIResponse, 502},
		{ErrCodeNetwork, 502},
		{ErrCodeTimeout, 504},
		{ErrCodeUnsupported, 501},
		{ErrCodeInternal, 500},
		{"", 500},
	}
	for _, tt := range tests {
		if got := HTTPStatus(tt.code); got != tt.want {
			t.Errorf("HTTPStatus(%q) = %d, want %d", tt.code, got, tt.want)
		}
	}
}
