package cache

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	if err := c.Set(ctx, "layout:k", []byte("{}"), time.Hour); err != nil {
		t.Errorf("Set: %v", err)
	}
	if data, hit, err := c.Get(ctx, "layout:k"); hit || data != nil || err != nil {
		t.Errorf("Get = %q, %v, %v; want a miss", data, hit, err)
	}
	if err := c.Delete(ctx, "layout:k"); err != nil {
		t.Errorf("Delete: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	if _, hit, err := c.Get(ctx, "missing"); hit || err != nil {
		t.Fatalf("Get(missing) = hit %v, err %v", hit, err)
	}

	if err := c.Set(ctx, "layout:abc", []byte(`{"nodes":[]}`), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "layout:abc")
	if err != nil || !hit || string(data) != `{"nodes":[]}` {
		t.Fatalf("Get = %q, %v, %v", data, hit, err)
	}

	if err := c.Delete(ctx, "layout:abc"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "layout:abc"); hit {
		t.Error("entry survived Delete")
	}
	if err := c.Delete(ctx, "layout:abc"); err != nil {
		t.Errorf("second Delete: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())

	if err := c.Set(ctx, "k", []byte("v"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expired entry returned")
	}

	if err := c.Set(ctx, "forever", []byte("v"), 0); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "forever"); !hit {
		t.Error("zero ttl entry missing")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	c.Set(ctx, "k", []byte("v"), time.Hour)

	if err := os.WriteFile(c.path("k"), []byte("not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Errorf("corrupt entry: hit %v, err %v", hit, err)
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	for _, k := range []string{"a", "b", "c"} {
		c.Set(ctx, k, []byte(k), 0)
	}

	if err := c.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	entries, _ := os.ReadDir(c.Dir())
	if len(entries) != 0 {
		t.Errorf("%d entries left after Clear", len(entries))
	}
	if err := c.Set(ctx, "a", []byte("a"), 0); err != nil {
		t.Errorf("Set after Clear: %v", err)
	}
}

func TestFileCacheStoresBinary(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	png := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0}

	if err := c.Set(ctx, "artifact:png", png, time.Hour); err != nil {
		t.Fatal(err)
	}
	data, hit, err := c.Get(ctx, "artifact:png")
	if err != nil || !hit || string(data) != string(png) {
		t.Errorf("Get = %v, %v, %v", data, hit, err)
	}
	raw, _ := os.ReadFile(c.path("artifact:png"))
	if !strings.HasPrefix(string(raw), entryMagic+" ") {
		t.Errorf("entry header = %q", raw)
	}
}

func TestFileCachePrune(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	c.Set(ctx, "stale", []byte("v"), time.Nanosecond)
	c.Set(ctx, "fresh", []byte("v"), time.Hour)
	c.Set(ctx, "broken", []byte("v"), 0)
	os.WriteFile(c.path("broken"), []byte("garbage"), 0o644)
	time.Sleep(5 * time.Millisecond)

	n, err := c.Prune()
	if err != nil || n != 2 {
		t.Fatalf("Prune() = %d, %v; want 2", n, err)
	}
	if _, hit, _ := c.Get(ctx, "fresh"); !hit {
		t.Error("Prune removed a live entry")
	}
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())

	type entry struct {
		Nodes int `json:"nodes"`
	}
	var got entry
	if err := GetJSON(ctx, c, "k", &got); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("GetJSON(missing) = %v, want ErrCacheMiss", err)
	}
	if err := SetJSON(ctx, c, "k", entry{Nodes: 4}, time.Hour); err != nil {
		t.Fatal(err)
	}
	if err := GetJSON(ctx, c, "k", &got); err != nil || got.Nodes != 4 {
		t.Errorf("GetJSON = %+v, %v", got, err)
	}
}

func TestHash(t *testing.T) {
	h := Hash([]byte("hello"))
	if h != Hash([]byte("hello")) || h == Hash([]byte("world")) || len(h) != 64 {
		t.Errorf("Hash(hello) = %s", h)
	}

	dir, name := shard("layout:abc")
	if len(dir) != 2 || dir+name != Hash([]byte("layout:abc")) {
		t.Errorf("shard = %s/%s", dir, name)
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	gk1 := k.GenerateKey("login flow", GenerateKeyOpts{Model: "gemini-2.5-flash"})
	gk2 := k.GenerateKey("login flow", GenerateKeyOpts{Model: "gemini-2.5-flash", CurrentHash: "abc"})
	if gk1 == gk2 || !strings.HasPrefix(gk1, "generate:") {
		t.Errorf("GenerateKey: %s vs %s", gk1, gk2)
	}

	lk1 := k.LayoutKey("hash123", LayoutKeyOpts{Direction: "TB", NodeSep: 100})
	lk2 := k.LayoutKey("hash123", LayoutKeyOpts{Direction: "LR", NodeSep: 100})
	if lk1 == lk2 {
		t.Error("Different LayoutKeyOpts should produce different keys")
	}
	if lk1 != k.LayoutKey("hash123", LayoutKeyOpts{Direction: "TB", NodeSep: 100}) {
		t.Error("LayoutKey should be stable")
	}

	ak1 := k.ArtifactKey("hash123", ArtifactKeyOpts{Format: "svg"})
	ak2 := k.ArtifactKey("hash123", ArtifactKeyOpts{Format: "png"})
	if ak1 == ak2 {
		t.Error("Different ArtifactKeyOpts should produce different keys")
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(NewDefaultKeyer(), "user:123:")

	key := scoped.LayoutKey("h", LayoutKeyOpts{})
	if !strings.HasPrefix(key, "user:123:layout:") {
		t.Errorf("ScopedKeyer LayoutKey should be prefixed: %s", key)
	}
	if key := scoped.ArtifactKey("h", ArtifactKeyOpts{}); !strings.HasPrefix(key, "user:123:artifact:") {
		t.Errorf("ScopedKeyer ArtifactKey should be prefixed: %s", key)
	}
}

func TestScopedKeyerSeparator(t *testing.T) {
	want := "api:" + NewDefaultKeyer().GenerateKey("p", GenerateKeyOpts{})
	if key := NewScopedKeyer(nil, "api").GenerateKey("p", GenerateKeyOpts{}); key != want {
		t.Errorf("GenerateKey = %s, want %s", key, want)
	}
	if key := NewScopedKeyer(nil, "").LayoutKey("h", LayoutKeyOpts{}); !strings.HasPrefix(key, "layout:") {
		t.Errorf("unscoped LayoutKey = %s", key)
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	c, err := Open(ctx, Options{Dir: t.TempDir()})
	if err != nil {
		t.Fatalf("Open(file): %v", err)
	}
	if _, ok := c.(*FileCache); !ok {
		t.Errorf("Open(\"\") = %T, want *FileCache", c)
	}

	if c, _ := Open(ctx, Options{Backend: BackendNone}); c == nil {
		t.Error("Open(none) returned nil")
	}

	if _, err := Open(ctx, Options{Backend: "memcached"}); !errors.Is(err, ErrUnknownBackend) {
		t.Errorf("Open(memcached) = %v, want ErrUnknownBackend", err)
	}
}

func TestRedisCacheUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if _, err := NewRedisCache(ctx, RedisConfig{Addr: "127.0.0.1:1"}); err == nil {
		t.Error("NewRedisCache succeeded against a closed port")
	}
}
