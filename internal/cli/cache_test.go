package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/flowgen/pkg/cache"
	"github.com/matzehuels/flowgen/pkg/config"
)

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	dir, err := cacheDir(config.Default())
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if want := filepath.Join(home, ".cache", appName); dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}
}

func TestCacheDirXDG(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/custom-cache")

	dir, err := cacheDir(config.Default())
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if want := filepath.Join("/tmp/custom-cache", appName); dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}
}

func TestCacheDirConfigured(t *testing.T) {
	cfg := config.Default()
	cfg.Cache.Dir = "/srv/flowgen-cache"

	dir, err := cacheDir(cfg)
	if err != nil || dir != "/srv/flowgen-cache" {
		t.Errorf("cacheDir() = %q, %v", dir, err)
	}
}

func TestNewCache(t *testing.T) {
	c := testCLI(t)
	ctx := context.Background()

	store, err := c.newCache(ctx, false)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := store.(*cache.FileCache); !ok {
		t.Errorf("default backend = %T, want *cache.FileCache", store)
	}

	store, _ = c.newCache(ctx, true)
	if _, ok := store.(*cache.NullCache); !ok {
		t.Errorf("--no-cache backend = %T, want *cache.NullCache", store)
	}

	c.Config.Cache.Backend = cache.BackendNone
	store, _ = c.newCache(ctx, false)
	if _, ok := store.(*cache.NullCache); !ok {
		t.Errorf("none backend = %T, want *cache.NullCache", store)
	}
}

func TestCacheClear(t *testing.T) {
	c := testCLI(t)
	ctx := context.Background()

	store, err := c.newCache(ctx, false)
	if err != nil {
		t.Fatal(err)
	}
	fc := store.(*cache.FileCache)
	for _, key := range []string{"layout:a", "artifact:b"} {
		if err := fc.Set(ctx, key, []byte("{}"), cache.TTLLayout); err != nil {
			t.Fatal(err)
		}
	}
	if n := countFiles(fc.Dir()); n != 2 {
		t.Fatalf("countFiles = %d, want 2", n)
	}

	if err := c.runCacheClear(ctx); err != nil {
		t.Fatal(err)
	}
	if n := countFiles(fc.Dir()); n != 0 {
		t.Errorf("%d entries left after clear", n)
	}
}

func TestCachePrune(t *testing.T) {
	c := testCLI(t)
	ctx := context.Background()

	store, _ := c.newCache(ctx, false)
	fc := store.(*cache.FileCache)
	fc.Set(ctx, "layout:old", []byte("{}"), time.Nanosecond)
	fc.Set(ctx, "layout:new", []byte("{}"), cache.TTLLayout)
	time.Sleep(5 * time.Millisecond)

	if err := c.runCachePrune(ctx); err != nil {
		t.Fatal(err)
	}
	if n := countFiles(fc.Dir()); n != 1 {
		t.Errorf("%d entries after prune, want 1", n)
	}
}
