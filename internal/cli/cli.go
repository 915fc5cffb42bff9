// Package cli implements the flowgen command-line interface.
//
// # Commands
//
//   - generate: turn a prompt into a laid-out diagram, optionally revising
//     an existing one
//   - layout: lay out a diagram file
//   - export: write a diagram as json, drawio, dot, svg, png or gif
//   - edit: preview a diagram in the terminal and change its direction
//   - serve: run the HTTP API
//   - cache: locate, prune and clear the result cache
//
// # Configuration
//
// Commands read the TOML file named by --config, or the default file under
// $XDG_CONFIG_HOME/flowgen. See package config for the keys.
//
// # Logging
//
// Logs go to stderr at info level. --verbose (-v) switches to debug and
// installs hooks that log every cache lookup, stage and model API call.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/flowgen/pkg/ai"
	"github.com/matzehuels/flowgen/pkg/buildinfo"
	"github.com/matzehuels/flowgen/pkg/cache"
	"github.com/matzehuels/flowgen/pkg/config"
	"github.com/matzehuels/flowgen/pkg/layout"
	"github.com/matzehuels/flowgen/pkg/observability"
	"github.com/matzehuels/flowgen/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = config.AppName

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Config is loaded once before any command runs.
	Config     config.Config
	configPath string
	verbose    bool
}

// New creates a new CLI instance with a default logger and configuration.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           appName,
		Short:         "Flowgen turns prompts into laid-out diagrams",
		Long:          `Flowgen generates flowcharts, mind maps and architecture diagrams from a text prompt, arranges them with a layered layout engine and exports them to draw.io, Graphviz, SVG, PNG and animated GIF.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.verbose {
				c.SetLogLevel(LogDebug)
				observability.NewLogHooks(c.Logger).Install()
			}
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/flowgen/config.toml)")

	root.AddCommand(c.generateCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.editCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the configuration file. A missing default file is fine;
// a missing explicit file is not.
func (c *CLI) loadConfig() error {
	path, err := config.Resolve(c.configPath)
	if err != nil {
		c.Logger.Debug("no config directory", "error", err)
		return nil
	}
	if c.configPath != "" {
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("config %s: %w", path, err)
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	c.Config = cfg
	c.Logger.Debug("loaded config", "path", path)
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newEngine creates a layout engine with the configured spacing.
func (c *CLI) newEngine() *layout.Engine {
	return layout.New(c.Config.LayoutOptions())
}

// newRunner creates a pipeline runner for CLI use. The generator is only
// built when withAI is set, so commands that never call the model work
// without an API key.
func (c *CLI) newRunner(ctx context.Context, noCache, withAI bool) (*pipeline.Runner, error) {
	store, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}

	var gen ai.Generator
	if withAI {
		g, err := ai.NewGemini(c.Config.AIOptions())
		if err != nil {
			store.Close()
			return nil, err
		}
		gen = g
	}

	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), "cli")
	return pipeline.NewRunner(store, keyer, gen, c.newEngine(), c.Logger), nil
}

// newCache opens the configured backend. A file cache that cannot be
// located degrades to no caching.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir(c.Config)
	if err != nil && c.Config.Cache.Backend != cache.BackendRedis {
		c.Logger.Warn("no cache directory, caching disabled", "error", err)
		return cache.NewNullCache(), nil
	}
	store, err := cache.Open(ctx, c.Config.CacheOptions(dir))
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	return store, nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.DefaultFormat}
	}
	var formats []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			formats = append(formats, f)
		}
	}
	return formats
}
