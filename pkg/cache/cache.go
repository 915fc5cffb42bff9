// Package cache stores generated diagrams, layouts and rendered artifacts
// so that repeated requests skip the expensive stages.
//
// # Backends
//
//   - [FileCache]: one JSON file per entry under a directory (CLI default)
//   - [RedisCache]: a shared Redis instance (server deployments)
//   - [NullCache]: stores nothing (--no-cache)
//
// # Keys
//
// A [Keyer] derives keys from stage inputs. Keys embed a SHA-256 hash of
// every input that affects the output, so a change in spacing or format
// never serves a stale entry:
//
//	k := cache.NewDefaultKeyer()
//	key := k.LayoutKey(cache.Hash(diagramJSON), cache.LayoutKeyOpts{Direction: "LR"})
package cache

import (
	"context"
	"encoding/json"
	"time"
)

// Default time-to-live per entry kind.
const (
	TTLGenerate = 7 * 24 * time.Hour
	TTLLayout   = 30 * 24 * time.Hour
	TTLArtifact = 30 * 24 * time.Hour
)

// Cache is a byte-oriented key/value store with per-entry expiry.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the stored data and true, or false on a miss. Expired
	// entries are misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases the backend's resources.
	Close() error
}

// GetJSON decodes the entry stored under key into v. It returns
// [ErrCacheMiss] when there is no usable entry; an entry that fails to
// decode counts as a miss.
func GetJSON(ctx context.Context, c Cache, key string, v any) error {
	data, ok, err := c.Get(ctx, key)
	if err != nil {
		return err
	}
	if !ok {
		return ErrCacheMiss
	}
	if err := json.Unmarshal(data, v); err != nil {
		return ErrCacheMiss
	}
	return nil
}

// SetJSON encodes v and stores it under key.
func SetJSON(ctx context.Context, c Cache, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Set(ctx, key, data, ttl)
}

// =============================================================================
// Keys
// =============================================================================

// Keyer derives cache keys for each pipeline stage.
type Keyer interface {
	// GenerateKey identifies a generator response for a prompt.
	GenerateKey(prompt string, opts GenerateKeyOpts) string
	// LayoutKey identifies a laid-out diagram.
	LayoutKey(diagramHash string, opts LayoutKeyOpts) string
	// ArtifactKey identifies a rendered export of a laid-out diagram.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// GenerateKeyOpts are the generator inputs besides the prompt.
type GenerateKeyOpts struct {
	Model string `json:"model"`
	// CurrentHash is the hash of the diagram being updated, empty for a
	// fresh generation.
	CurrentHash string `json:"current,omitempty"`
}

// LayoutKeyOpts are the layout inputs besides the diagram itself.
type LayoutKeyOpts struct {
	Direction string  `json:"direction"`
	NodeSep   float64 `json:"node_sep"`
	RankSep   float64 `json:"rank_sep"`
	EdgeSep   float64 `json:"edge_sep"`
}

// ArtifactKeyOpts are the render inputs besides the layout.
type ArtifactKeyOpts struct {
	Format string  `json:"format"`
	Scale  float64 `json:"scale,omitempty"`
	Frames int     `json:"frames,omitempty"`
}

// DefaultKeyer produces keys of the form "kind:sha256".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// GenerateKey hashes the prompt with the model and the current diagram.
func (DefaultKeyer) GenerateKey(prompt string, opts GenerateKeyOpts) string {
	return hashKey("generate", prompt, opts)
}

// LayoutKey hashes the diagram hash with the spacing options.
func (DefaultKeyer) LayoutKey(diagramHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", diagramHash, opts)
}

// ArtifactKey hashes the layout hash with the render options.
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}

var _ Keyer = DefaultKeyer{}
