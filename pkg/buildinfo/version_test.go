package buildinfo

import (
	"strings"
	"testing"
)

func TestString(t *testing.T) {
	old := Version
	Version = "v1.2.3"
	defer func() { Version = old }()

	if s := String(); !strings.Contains(s, "version: v1.2.3") {
		t.Errorf("String() = %q", s)
	}
	if s := Template(); !strings.HasPrefix(s, "{{.Name}} version v1.2.3") {
		t.Errorf("Template() = %q", s)
	}
	if got := UserAgent(); got != "flowgen/v1.2.3" {
		t.Errorf("UserAgent() = %q", got)
	}
	if got := Get(); got.Version != "v1.2.3" || got.Commit != Commit {
		t.Errorf("Get() = %+v", got)
	}
}
