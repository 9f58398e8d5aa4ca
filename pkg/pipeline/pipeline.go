// Package pipeline provides the core map generation pipeline.
//
// This package implements the complete scrape → layout → render pipeline
// used by the CLI and the preview server. Centralizing it keeps behavior
// consistent across entry points.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Scrape: fetch the country market-cap table from the source site
//  2. Layout: compute treemap rectangles from the dataset's shares
//  3. Render: generate output artifacts (PNG, HTML image map, SVG, JSON, CSV)
//
// Each stage can be run independently or as part of the complete pipeline,
// and each stage's output is cached under a content-derived key, so
// unchanged inputs reuse cached results.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger, scraper, images)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Limit:   20,
//	    Formats: []string{pipeline.FormatPNG, pipeline.FormatHTML},
//	})
//	png := result.Artifacts[pipeline.FormatPNG]
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ayeeff/marketmap/pkg/cache"
	"github.com/ayeeff/marketmap/pkg/dataset"
	"github.com/ayeeff/marketmap/pkg/errors"
	"github.com/ayeeff/marketmap/pkg/render"
	"github.com/ayeeff/marketmap/pkg/treemap"
)

// Defaults shared by the CLI and the preview server.
const (
	// DefaultLimit caps the countries drawn on the global map. Tiny
	// slivers below the top 20 are unreadable at default canvas size.
	DefaultLimit = 20

	// DefaultAlgorithm is the layout policy.
	DefaultAlgorithm = AlgorithmSlice
)

// Layout algorithms.
const (
	AlgorithmSlice  = "slice"
	AlgorithmGreedy = "greedy"
)

// Output formats.
const (
	FormatPNG  = "png"
	FormatHTML = "html"
	FormatSVG  = "svg"
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatPNG:  true,
	FormatHTML: true,
	FormatSVG:  true,
	FormatJSON: true,
	FormatCSV:  true,
}

// ValidAlgorithms is the set of supported layout algorithms.
var ValidAlgorithms = map[string]bool{
	AlgorithmSlice:  true,
	AlgorithmGreedy: true,
}

// Options contains all configuration for the map pipeline.
// The struct serializes to JSON for the preview server's API.
type Options struct {
	// Scrape options
	Limit   int  `json:"limit,omitempty"`   // top N countries; 0 means DefaultLimit
	Empires bool `json:"empires,omitempty"` // aggregate countries into empires
	Refresh bool `json:"refresh,omitempty"` // bypass caches and refetch

	// Layout options
	Algorithm string `json:"algorithm,omitempty"`
	Width     int    `json:"width,omitempty"`
	Height    int    `json:"height,omitempty"`
	TopOffset int    `json:"top_offset,omitempty"`

	// Render options
	Formats  []string `json:"formats,omitempty"`
	Title    string   `json:"title,omitempty"`
	ImageURL string   `json:"image_url,omitempty"` // published PNG the HTML map points at
	MapName  string   `json:"map_name,omitempty"`  // image-map name attribute
	Overlays bool     `json:"overlays,omitempty"`  // fetch flag/empire images into the PNG

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// EmpireDefinitions overrides the built-in empire lists. Nil selects
	// dataset.DefaultEmpires.
	EmpireDefinitions []dataset.Empire `json:"-"`

	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID identifies this execution in logs.
	RunID string

	// Dataset is the scraped (and trimmed) country table.
	Dataset *dataset.Dataset

	// DatasetHash is the content hash of the dataset.
	DatasetHash string

	// Empires holds the aggregated empire rows when Options.Empires is set.
	Empires []dataset.EmpireTotal

	// Rects are the computed layout rectangles in the unit square.
	Rects []treemap.Rect

	// Map is the pixel-space composition the artifacts were rendered from.
	Map *render.Map

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Rows       int
	ScrapeTime time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	ScrapeHit bool
	LayoutHit bool
	RenderHit bool
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: png, html, svg, json, csv)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAlgorithm checks that a layout algorithm is valid.
func ValidateAlgorithm(algorithm string) error {
	if !ValidAlgorithms[algorithm] {
		return errors.New(errors.ErrCodeInvalidConfig,
			"invalid algorithm: %q (must be one of: slice, greedy)", algorithm)
	}
	return nil
}

// ValidateAndSetDefaults checks fields and applies defaults for the full
// pipeline. Idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Limit < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "limit cannot be negative")
	}
	if o.Limit == 0 {
		o.Limit = DefaultLimit
	}

	o.SetLayoutDefaults()
	if err := ValidateAlgorithm(o.Algorithm); err != nil {
		return err
	}

	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}

	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if o.EmpireDefinitions == nil {
		o.EmpireDefinitions = dataset.DefaultEmpires()
	}
	o.validated = true
	return nil
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.Algorithm == "" {
		o.Algorithm = DefaultAlgorithm
	}
	if o.Width == 0 {
		o.Width = render.DefaultWidth
	}
	if o.Height == 0 {
		o.Height = render.DefaultHeight
	}
	if o.TopOffset == 0 {
		o.TopOffset = render.DefaultTopOffset
	}
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatPNG}
	}
	if o.Title == "" {
		if o.Empires {
			o.Title = "Empire Market Cap Treemap (% of Empire Total)"
		} else {
			o.Title = "Global Market Cap Treemap (% of Global)"
		}
	}
	if o.MapName == "" {
		if o.Empires {
			o.MapName = "empiremap"
		} else {
			o.MapName = "globalmap"
		}
	}
	if o.ImageURL == "" {
		if o.Empires {
			o.ImageURL = "https://raw.githubusercontent.com/ayeeff/marketcap/main/img/map2.png"
		} else {
			o.ImageURL = "https://raw.githubusercontent.com/ayeeff/marketcap/main/img/map1.png"
		}
	}
}

// datasetKeyOpts derives the cache key options for the scrape stage.
func (o *Options) datasetKeyOpts() cache.DatasetKeyOpts {
	return cache.DatasetKeyOpts{Limit: o.Limit, Empires: o.Empires}
}

// layoutKeyOpts derives the cache key options for the layout stage.
func (o *Options) layoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Algorithm: o.Algorithm,
		Width:     o.Width,
		Height:    o.Height,
		TopOffset: o.TopOffset,
	}
}

// artifactKeyOpts derives the cache key options for one rendered format.
func (o *Options) artifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{Format: format, Title: o.Title}
}

// String summarizes the options for log lines.
func (o Options) String() string {
	kind := "global"
	if o.Empires {
		kind = "empires"
	}
	return fmt.Sprintf("%s limit=%d algorithm=%s formats=%v", kind, o.Limit, o.Algorithm, o.Formats)
}
