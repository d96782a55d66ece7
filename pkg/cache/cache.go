// Package cache stores laid-out documents and rendered artifacts.
//
// Entries are opaque byte slices addressed by string keys. Keys are derived
// from content hashes by a [Keyer], so identical input documents laid out
// with identical options share one entry regardless of where they came from.
//
// # Backends
//
//   - [NullCache]: never stores anything (--no-cache)
//   - [FileCache]: one JSON file per entry under a directory (CLI default)
//   - [RedisCache]: shared cache for several server instances
//   - [MongoCache]: shared cache with a TTL index on the expiry field
//
// Remote backends retry transient failures according to a [Retry] policy.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with optional expiry.
type Cache interface {
	// Get returns the entry for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	Close() error
}

// Keyer derives cache keys.
type Keyer interface {
	// LayoutKey addresses the positioned document for an input document hash.
	LayoutKey(docHash string, opts LayoutKeyOpts) string
	// ArtifactKey addresses one rendered format of a positioned document.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts holds every option that changes a layout result.
type LayoutKeyOpts struct {
	Ordering string `json:"ordering"`
	Sweeps   int    `json:"sweeps"`
	Routing  string `json:"routing"`
	MaxNodes int    `json:"max_nodes"`
	// Tuning carries the remaining numeric stage settings. It must be
	// JSON-encodable.
	Tuning any `json:"tuning,omitempty"`
}

// ArtifactKeyOpts holds every option that changes a rendered artifact.
type ArtifactKeyOpts struct {
	Format string `json:"format"`
}

// DefaultKeyer produces keys of the form "kind:sha256".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// LayoutKey implements Keyer.
func (DefaultKeyer) LayoutKey(docHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", docHash, opts)
}

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}
