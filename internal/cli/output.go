package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/matzehuels/flowgen/pkg/export"
	"github.com/matzehuels/flowgen/pkg/flow"
)

// stdio is the file name that selects stdin or stdout.
const stdio = "-"

// readDiagram loads a diagram from path, or from stdin for "-".
func readDiagram(path string) (flow.Diagram, error) {
	if path == stdio {
		return flow.Read(os.Stdin)
	}
	return flow.ReadFile(path)
}

// outputBase derives the base path outputs are written next to. An
// explicit output with a known extension has it stripped.
func outputBase(output, input, fallback string) string {
	if output != "" {
		ext := strings.TrimPrefix(filepath.Ext(output), ".")
		if _, err := export.ParseFormat(ext); err == nil {
			return strings.TrimSuffix(output, filepath.Ext(output))
		}
		return output
	}
	if input != "" && input != stdio {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	return fallback
}

// artifactPath returns where the artifact for format goes. A single
// requested format is written to output verbatim when one is given.
func artifactPath(output, base, format string, single bool) string {
	if single && output != "" {
		return output
	}
	f, _ := export.ParseFormat(format)
	return base + "." + f.Extension()
}

// normalizeFormats validates format names and returns their canonical
// spelling, without duplicates.
func normalizeFormats(formats []string) ([]string, error) {
	out := make([]string, 0, len(formats))
	for _, name := range formats {
		f, err := export.ParseFormat(name)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(out, string(f)) {
			out = append(out, string(f))
		}
	}
	return out, nil
}

// writeArtifacts writes every rendered format and returns the paths in
// format order. Output "-" with a single format goes to stdout. A path
// equal to input is refused.
func writeArtifacts(artifacts map[string][]byte, formats []string, output, base, input string) ([]string, error) {
	single := len(formats) == 1
	if output == stdio {
		if !single {
			return nil, fmt.Errorf("stdout output takes exactly one format, got %d", len(formats))
		}
		_, err := stdout().Write(artifacts[formats[0]])
		return nil, err
	}

	paths := make([]string, 0, len(formats))
	for _, format := range formats {
		path := artifactPath(output, base, format, single)
		if input != "" && filepath.Clean(path) == filepath.Clean(input) {
			return paths, fmt.Errorf("refusing to overwrite input %s; pass --output", input)
		}
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return paths, fmt.Errorf("create %s: %w", dir, err)
			}
		}
		if err := os.WriteFile(path, artifacts[format], 0o644); err != nil {
			return paths, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// stdout is where "-" output goes. Tests replace it.
var stdout = func() io.Writer { return os.Stdout }
