package cli

import (
	"testing"

	"github.com/matzehuels/flowgen/pkg/buildinfo"
)

func TestSetVersion(t *testing.T) {
	v, c, d := buildinfo.Version, buildinfo.Commit, buildinfo.Date
	t.Cleanup(func() { buildinfo.Version, buildinfo.Commit, buildinfo.Date = v, c, d })

	SetVersion("1.0.0", "abc123", "2026-01-01")
	if got := buildinfo.Get(); got != (buildinfo.Info{Version: "1.0.0", Commit: "abc123", Date: "2026-01-01"}) {
		t.Errorf("buildinfo = %+v", got)
	}

	SetVersion("", "", "")
	if buildinfo.Version != "1.0.0" {
		t.Errorf("empty SetVersion overwrote version: %q", buildinfo.Version)
	}
}
