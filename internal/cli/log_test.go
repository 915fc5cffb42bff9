package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestNewLoggerLevels(t *testing.T) {
	var info, debug bytes.Buffer
	newLogger(&info, log.InfoLevel).Debug("cache miss")
	newLogger(&debug, log.DebugLevel).Debug("cache miss")

	if info.Len() != 0 {
		t.Errorf("debug record at info level: %q", info.String())
	}
	if !strings.Contains(debug.String(), "cache miss") {
		t.Errorf("debug record missing: %q", debug.String())
	}
}

func TestTimed(t *testing.T) {
	var buf bytes.Buffer
	done := timed(newLogger(&buf, log.InfoLevel), "layout complete")
	time.Sleep(10 * time.Millisecond)
	done("nodes", 4, "cached", false)

	for _, want := range []string{"layout complete", "nodes=4", "cached=false", "duration="} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("output %q lacks %q", buf.String(), want)
		}
	}
}
