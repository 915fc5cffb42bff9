package errors

import (
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Limits on text that reaches the layout engine or the model.
const (
	MaxNodeIDLength = 128
	MaxLabelLength  = 256
	MaxPromptLength = 8000
)

// ValidateNodeID rejects empty or overlong IDs, IDs with surrounding
// whitespace and IDs containing control characters.
func ValidateNodeID(id string) error {
	switch {
	case id == "":
		return New(ErrCodeInvalidInput, "node ID cannot be empty")
	case utf8.RuneCountInString(id) > MaxNodeIDLength:
		return New(ErrCodeInvalidInput, "node ID too long (max %d characters)", MaxNodeIDLength)
	case strings.TrimSpace(id) != id:
		return New(ErrCodeInvalidInput, "node ID %q has surrounding whitespace", id)
	case strings.IndexFunc(id, unicode.IsControl) >= 0:
		return New(ErrCodeInvalidInput, "node ID %q contains control characters", id)
	}
	return nil
}

// ValidateLabel accepts empty labels, line breaks and tabs, but no other
// control characters.
func ValidateLabel(label string) error {
	if utf8.RuneCountInString(label) > MaxLabelLength {
		return New(ErrCodeInvalidInput, "label too long (max %d characters)", MaxLabelLength)
	}
	bad := strings.IndexFunc(label, func(r rune) bool {
		return unicode.IsControl(r) && r != '\n' && r != '\r' && r != '\t'
	})
	if bad >= 0 {
		return New(ErrCodeInvalidInput, "label %q contains control characters", label)
	}
	return nil
}

// ValidatePrompt rejects blank, overlong or NUL-containing prompts.
func ValidatePrompt(prompt string) error {
	switch {
	case strings.TrimSpace(prompt) == "":
		return New(ErrCodeInvalidInput, "prompt cannot be empty")
	case utf8.RuneCountInString(prompt) > MaxPromptLength:
		return New(ErrCodeInvalidInput, "prompt too long (max %d characters)", MaxPromptLength)
	case strings.ContainsRune(prompt, 0):
		return New(ErrCodeInvalidInput, "prompt contains null bytes")
	}
	return nil
}

// ValidateEndpoint checks a model API base URL: absolute, http or https,
// with a host and without query or fragment.
func ValidateEndpoint(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return Wrap(ErrCodeInvalidInput, err, "invalid endpoint")
	}
	switch {
	case u.Scheme != "http" && u.Scheme != "https":
		return New(ErrCodeInvalidInput, "endpoint %q must use http or https", raw)
	case u.Host == "":
		return New(ErrCodeInvalidInput, "endpoint %q has no host", raw)
	case u.RawQuery != "" || u.Fragment != "":
		return New(ErrCodeInvalidInput, "endpoint %q must not carry a query or fragment", raw)
	}
	return nil
}
