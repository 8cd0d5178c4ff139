// Package cache stores rendered plot artifacts keyed by the inputs
// that produced them.
//
// Keys are content hashes over the scenario bytes plus every plot
// option that changes the rendered bytes, so a cached figure is
// invalidated the moment its scenario or its options change. Three
// backends share one interface: FileCache for the CLI, RedisCache for
// the server, and NullCache to disable caching entirely.
package cache

import (
	"context"
	"strings"
	"time"
)

// Cache is the common interface of all cache backends.
type Cache interface {
	// Get retrieves a value. The second return reports whether the
	// key was found; an expired or missing entry is a miss, not an
	// error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with a time-to-live. A non-positive ttl
	// stores the value without expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// PlotKeyOpts enumerates every plot option that affects the rendered
// artifact. Zero values are part of the key like any other value.
type PlotKeyOpts struct {
	Bus        string
	Mode       string // "step" or "smooth"
	Format     string // "svg" or "png"
	From       string // window start, RFC 3339 or empty
	To         string // window end, RFC 3339 or empty
	Ticks      int
	TickFormat string
	Reverse    bool
	PlotShare  float64
	Width      int
	Height     int
}

// PlotKey builds the cache key for one rendered balance figure.
// scenarioHash is Hash over the raw scenario bytes.
func PlotKey(scenarioHash string, opts PlotKeyOpts) string {
	return hashKey("plot", scenarioHash, opts)
}

// TopoKey builds the cache key for one rendered topology graph.
func TopoKey(scenarioHash, format string) string {
	return hashKey("topo", scenarioHash, format)
}

// keyType extracts the prefix of a key ("plot", "topo") for hook
// reporting.
func keyType(key string) string {
	if i := strings.IndexByte(key, ':'); i > 0 {
		return key[:i]
	}
	return "unknown"
}
