package cli

import (
	"context"
	"os"

	"github.com/matzehuels/flowgen/pkg/buildinfo"
)

// SetVersion overrides the build information shown by --version and sent
// in the User-Agent. Release builds pass values injected with -ldflags;
// empty arguments keep the defaults.
func SetVersion(version, commit, date string) {
	for dst, v := range map[*string]string{
		&buildinfo.Version: version,
		&buildinfo.Commit:  commit,
		&buildinfo.Date:    date,
	} {
		if v != "" {
			*dst = v
		}
	}
}

// Execute runs the command line args under ctx. Cancelling ctx (on
// SIGINT in cmd/flowgen) aborts a running model call or export.
func Execute(ctx context.Context, args []string) error {
	root := New(os.Stderr, LogInfo).RootCommand()
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}
