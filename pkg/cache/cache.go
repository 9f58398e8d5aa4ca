// Package cache provides the caching layer used by the generation pipeline.
//
// A [Cache] stores opaque byte blobs under string keys with per-entry TTLs.
// Two backends ship with the CLI: [FileCache] for local runs and
// [RedisCache] for shared deployments. [NullCache] disables caching.
//
// A [Keyer] builds the keys for each pipeline stage. Keys are content
// derived: a dataset key hashes the source and scrape options, a layout key
// hashes the dataset content plus layout options, an artifact key hashes
// the layout content plus render options. Identical inputs therefore reuse
// cached stage outputs, and any upstream change invalidates everything
// downstream automatically.
package cache

import (
	"context"
	"time"
)

// TTLs per stage. Scraped datasets go stale as markets move; layouts and
// artifacts are pure functions of their inputs and can live much longer.
const (
	TTLDataset  = 24 * time.Hour
	TTLLayout   = 30 * 24 * time.Hour
	TTLArtifact = 30 * 24 * time.Hour
	TTLHTTP     = 24 * time.Hour
)

// Cache stores opaque byte blobs with expiration.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get retrieves a value. The bool reports whether the key was found
	// and fresh; an expired or missing entry is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with the given TTL. A TTL of 0 means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// DatasetKeyOpts are the scrape options that shape a dataset.
type DatasetKeyOpts struct {
	Limit   int  `json:"limit"`
	Empires bool `json:"empires"`
}

// LayoutKeyOpts are the layout options that shape a treemap.
type LayoutKeyOpts struct {
	Algorithm string `json:"algorithm"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	TopOffset int    `json:"top_offset"`
}

// ArtifactKeyOpts are the render options that shape an output artifact.
type ArtifactKeyOpts struct {
	Format string `json:"format"`
	Title  string `json:"title"`
}

// Keyer generates cache keys for each pipeline stage.
type Keyer interface {
	// HTTPKey generates a key for a raw HTTP response.
	HTTPKey(namespace, key string) string

	// DatasetKey generates a key for a scraped dataset.
	DatasetKey(source string, opts DatasetKeyOpts) string

	// LayoutKey generates a key for a computed layout, derived from the
	// content hash of the dataset it was computed from.
	LayoutKey(datasetHash string, opts LayoutKeyOpts) string

	// ArtifactKey generates a key for a rendered artifact, derived from
	// the content hash of the layout it was rendered from.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer is the standard key scheme.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// HTTPKey generates a key for HTTP response caching.
func (k *DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}

// DatasetKey generates a key for dataset caching.
func (k *DefaultKeyer) DatasetKey(source string, opts DatasetKeyOpts) string {
	return hashKey("dataset", source, opts)
}

// LayoutKey generates a key for layout caching.
func (k *DefaultKeyer) LayoutKey(datasetHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", datasetHash, opts)
}

// ArtifactKey generates a key for artifact caching.
func (k *DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}
