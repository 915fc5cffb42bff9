package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowgen/pkg/ai"
	"github.com/matzehuels/flowgen/pkg/cache"
	"github.com/matzehuels/flowgen/pkg/pipeline"
	"github.com/matzehuels/flowgen/pkg/server"
)

// serveCommand creates the serve command that runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
		noAI    bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API.

Endpoints:
  GET  /healthz               liveness and build information
  POST /api/layout            lay out a diagram
  POST /api/generate          generate or revise a diagram from a prompt
  POST /api/export/{format}   export a diagram as json, drawio, dot, svg, png or gif

Without an API key the server still lays out and exports; /api/generate
answers 501.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = c.Config.Server.Addr
			}
			return c.runServe(cmd.Context(), addr, noCache, noAI)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: server.addr from config, :8080)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&noAI, "no-ai", false, "serve layout and export only")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string, noCache, noAI bool) error {
	store, err := c.newCache(ctx, noCache)
	if err != nil {
		return err
	}

	var gen ai.Generator
	if !noAI {
		if g, err := ai.NewGemini(c.Config.AIOptions()); err != nil {
			c.Logger.Warn("generation disabled", "error", err)
		} else {
			gen = g
			c.Logger.Info("generation enabled", "model", g.Model())
		}
	}

	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), "api")
	runner := pipeline.NewRunner(store, keyer, gen, c.newEngine(), c.Logger)
	defer runner.Close()

	srv := server.New(runner, c.Logger, server.Options{
		ReadTimeout:  c.Config.Server.ReadTimeout,
		WriteTimeout: c.Config.Server.WriteTimeout,
	})
	if err := srv.ListenAndServe(ctx, addr); err != nil {
		return fmt.Errorf("serve %s: %w", addr, err)
	}
	return nil
}
