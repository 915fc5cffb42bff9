package cli

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowgen/pkg/cache"
	"github.com/matzehuels/flowgen/pkg/config"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the cache of model replies, layouts and exports",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePruneCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCacheClear(cmd.Context())
		},
	}
}

func (c *CLI) runCacheClear(ctx context.Context) error {
	store, err := c.newCache(ctx, false)
	if err != nil {
		return err
	}
	defer store.Close()

	switch s := store.(type) {
	case *cache.FileCache:
		count := countFiles(s.Dir())
		if count == 0 {
			printInfo("Cache is empty")
			return nil
		}
		if err := s.Clear(); err != nil {
			return fmt.Errorf("clear cache: %w", err)
		}
		printSuccess("Cleared %d cached entries", count)
		printDetail("Directory: %s", s.Dir())
	case *cache.RedisCache:
		if err := s.Clear(ctx); err != nil {
			return fmt.Errorf("clear cache: %w", err)
		}
		printSuccess("Cleared cached entries")
		printDetail("Redis: %s (prefix %q)", c.Config.Cache.RedisAddr, c.Config.Cache.Prefix)
	default:
		printInfo("Caching is disabled")
	}
	return nil
}

// cachePruneCommand creates the "cache prune" subcommand.
func (c *CLI) cachePruneCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Remove expired entries from the file cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCachePrune(cmd.Context())
		},
	}
}

func (c *CLI) runCachePrune(ctx context.Context) error {
	store, err := c.newCache(ctx, false)
	if err != nil {
		return err
	}
	defer store.Close()

	fc, ok := store.(*cache.FileCache)
	if !ok {
		// Redis expires entries on its own.
		printInfo("Nothing to prune for the %s backend", c.Config.Cache.Backend)
		return nil
	}
	n, err := fc.Prune()
	if err != nil {
		return fmt.Errorf("prune cache: %w", err)
	}
	printSuccess("Removed %d expired entries", n)
	return nil
}

// countFiles counts regular files below dir. Unreadable entries are skipped.
func countFiles(dir string) int {
	count := 0
	filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err == nil && !d.IsDir() {
			count++
		}
		return nil
	})
	return count
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where the cache lives",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch c.Config.Cache.Backend {
			case cache.BackendRedis:
				fmt.Println("redis://" + c.Config.Cache.RedisAddr)
			case cache.BackendNone:
				printInfo("Caching is disabled")
			default:
				dir, err := cacheDir(c.Config)
				if err != nil {
					return fmt.Errorf("get cache dir: %w", err)
				}
				fmt.Println(dir)
			}
			return nil
		},
	}
}

// cacheDir returns the configured cache directory, or the XDG default
// (~/.cache/flowgen/).
func cacheDir(cfg config.Config) (string, error) {
	if cfg.Cache.Dir != "" {
		return cfg.Cache.Dir, nil
	}
	return config.CacheDir()
}
