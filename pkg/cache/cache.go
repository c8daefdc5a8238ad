// Package cache stores computed layouts and rendered artifacts.
//
// Two kinds of entries exist:
//
//   - Layouts, keyed by the hash of the input document plus the effective
//     mesh options.
//   - Artifacts (SVG, PNG, JSON, DOT), keyed by the hash of the layout they
//     were rendered from plus the render options.
//
// Backends implement [Cache]. [NullCache] disables caching, [FileCache] is
// used by the CLI, and [RedisCache] and [MongoCache] back the HTTP server
// when several replicas share results.
//
// Keys are produced by a [Keyer]. [DefaultKeyer] hashes the key components
// with SHA-256; [ScopedKeyer] adds a namespace prefix on top of another
// keyer.
package cache

import (
	"context"
	"time"

	"github.com/matzehuels/linearmesh/pkg/mesh"
)

// Default time-to-live values for cached entries.
const (
	TTLLayout   = 7 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is a byte-oriented key/value store with per-entry expiration.
//
// Get reports a miss with ok == false and a nil error. Implementations
// must be safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Keyer derives cache keys.
type Keyer interface {
	// LayoutKey returns the key for a layout computed from the input with
	// the given content hash.
	LayoutKey(inputHash string, opts LayoutKeyOpts) string

	// ArtifactKey returns the key for an artifact rendered from the layout
	// with the given content hash.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts holds everything besides the input that influences a layout.
type LayoutKeyOpts struct {
	Options mesh.Options `json:"options"`
}

// ArtifactKeyOpts holds everything besides the layout that influences an
// artifact.
type ArtifactKeyOpts struct {
	Format      string  `json:"format"`
	Style       string  `json:"style,omitempty"`
	Scale       float64 `json:"scale,omitempty"`
	Interactive bool    `json:"interactive,omitempty"`
	Detailed    bool    `json:"detailed,omitempty"`
	Background  string  `json:"background,omitempty"`
	Title       string  `json:"title,omitempty"`
}

// DefaultKeyer hashes key components into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// LayoutKey implements Keyer.
func (k *DefaultKeyer) LayoutKey(inputHash string, opts LayoutKeyOpts) string {
	return stageKey("layout", inputHash, opts)
}

// ArtifactKey implements Keyer.
func (k *DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return stageKey("artifact", layoutHash, opts)
}
