package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/ayeeff/marketmap/pkg/cache"
	"github.com/ayeeff/marketmap/pkg/dataset"
	"github.com/ayeeff/marketmap/pkg/errors"
	"github.com/ayeeff/marketmap/pkg/observability"
	"github.com/ayeeff/marketmap/pkg/render"
	"github.com/ayeeff/marketmap/pkg/render/sink"
	"github.com/ayeeff/marketmap/pkg/scrape"
	"github.com/ayeeff/marketmap/pkg/treemap"
)

// Runner executes the pipeline with caching. It is stateless apart from
// its collaborators, so one Runner can serve concurrent runs with
// different options.
type Runner struct {
	Cache   cache.Cache
	Keyer   cache.Keyer
	Logger  *log.Logger
	Scraper *scrape.Client
	Images  *render.ImageFetcher
}

// NewRunner creates a runner. A nil cache disables caching, a nil keyer
// selects the default key scheme, and a nil images fetcher disables
// overlays even when requested.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger, scraper *scrape.Client, images *render.ImageFetcher) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:   c,
		Keyer:   keyer,
		Logger:  logger,
		Scraper: scraper,
		Images:  images,
	}
}

// Execute runs the complete scrape → layout → render pipeline.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid options")
	}
	r.applyLogger(&opts)

	result := &Result{
		RunID:     uuid.NewString(),
		Artifacts: make(map[string][]byte),
	}
	logger := r.Logger.With("run", result.RunID)
	logger.Info("starting pipeline", "options", opts.String())

	// Stage 1: Scrape
	scrapeStart := time.Now()
	ds, scrapeHit, err := r.ScrapeWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, errors.Wrap(errors.GetCode(err), err, "scrape")
	}
	result.Dataset = ds
	result.Stats.Rows = len(ds.Records)
	result.Stats.ScrapeTime = time.Since(scrapeStart)
	result.CacheInfo.ScrapeHit = scrapeHit

	if data, err := json.Marshal(ds); err == nil {
		result.DatasetHash = cache.Hash(data)
	}
	if opts.Empires {
		result.Empires = dataset.AggregateEmpires(ds, opts.EmpireDefinitions)
	}

	logger.Info("scraped dataset",
		"rows", result.Stats.Rows,
		"cached", scrapeHit,
		"duration", result.Stats.ScrapeTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	rects, layoutHit, err := r.LayoutWithCacheInfo(ctx, result, opts)
	if err != nil {
		return nil, errors.Wrap(errors.GetCode(err), err, "layout")
	}
	result.Rects = rects
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.CacheInfo.LayoutHit = layoutHit

	logger.Info("computed layout",
		"rects", len(rects),
		"algorithm", opts.Algorithm,
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, result, opts)
	if err != nil {
		return nil, errors.Wrap(errors.GetCode(err), err, "render")
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// ScrapeWithCacheInfo fetches the country dataset with caching, returning
// whether the dataset came from the cache. The dataset is sorted, trimmed
// to the limit, and has its shares recomputed over the kept rows.
func (r *Runner) ScrapeWithCacheInfo(ctx context.Context, opts Options) (*dataset.Dataset, bool, error) {
	if opts.Limit == 0 {
		opts.Limit = DefaultLimit
	}

	source := scrape.DefaultBaseURL
	if r.Scraper != nil {
		source = r.Scraper.BaseURL()
	}
	cacheKey := r.Keyer.DatasetKey(source, opts.datasetKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var ds dataset.Dataset
			if err := json.Unmarshal(data, &ds); err == nil {
				observability.Cache().OnCacheHit(ctx, "dataset")
				return &ds, true, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "dataset")
	}

	if r.Scraper == nil {
		return nil, false, errors.New(errors.ErrCodeInternal, "runner has no scraper configured")
	}

	ds, err := r.Scraper.Countries(ctx)
	if err != nil {
		return nil, false, err
	}

	ds.SortByMarketCap()
	ds = ds.Top(opts.Limit)
	ds.ComputeShares()
	ds = ds.Positive()
	if err := ds.Validate(); err != nil {
		return nil, false, err
	}

	if data, err := json.Marshal(ds); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLDataset)
		observability.Cache().OnCacheSet(ctx, "dataset", len(data))
	}
	return ds, false, nil
}

// Scrape is a convenience wrapper that discards the cache hit info.
func (r *Runner) Scrape(ctx context.Context, opts Options) (*dataset.Dataset, error) {
	ds, _, err := r.ScrapeWithCacheInfo(ctx, opts)
	return ds, err
}

// LayoutWithCacheInfo computes treemap rectangles for the run's weights
// with caching keyed on the dataset content hash.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, result *Result, opts Options) ([]treemap.Rect, bool, error) {
	opts.SetLayoutDefaults()
	if err := ValidateAlgorithm(opts.Algorithm); err != nil {
		return nil, false, err
	}

	weights, _, _ := r.weightsAndLabels(result, opts)
	cacheKey := r.Keyer.LayoutKey(result.DatasetHash, opts.layoutKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var rects []treemap.Rect
			if err := json.Unmarshal(data, &rects); err == nil && len(rects) == len(weights) {
				observability.Cache().OnCacheHit(ctx, "layout")
				return rects, true, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "layout")
	}

	observability.Pipeline().OnLayoutStart(ctx, opts.Algorithm, len(weights))
	start := time.Now()

	var layoutOpts []treemap.Option
	if opts.Algorithm == AlgorithmGreedy {
		layoutOpts = append(layoutOpts, treemap.WithGreedyRows())
	}
	rects, err := treemap.Layout(weights, 1, 1, layoutOpts...)
	observability.Pipeline().OnLayoutComplete(ctx, opts.Algorithm, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	if data, err := json.Marshal(rects); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLLayout)
		observability.Cache().OnCacheSet(ctx, "layout", len(data))
	}
	return rects, false, nil
}

// RenderWithCacheInfo renders all requested formats with per-format
// caching. The bool reports whether every artifact came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, result *Result, opts Options) (map[string][]byte, bool, error) {
	opts.SetRenderDefaults()
	if err := ValidateFormats(opts.Formats); err != nil {
		return nil, false, err
	}

	rectData, err := json.Marshal(result.Rects)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeInternal, err, "serialize layout for cache key")
	}
	layoutHash := cache.Hash(rectData)

	// All formats must be cached for the render stage to count as a hit:
	// a partial set still costs a full compose.
	artifacts := make(map[string][]byte)
	allCached := !opts.Refresh
	if allCached {
		for _, format := range opts.Formats {
			key := r.Keyer.ArtifactKey(layoutHash, opts.artifactKeyOpts(format))
			if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
				artifacts[format] = data
			} else {
				allCached = false
				break
			}
		}
	}
	if allCached && len(artifacts) == len(opts.Formats) {
		observability.Cache().OnCacheHit(ctx, "artifact")
		// Rebuild the map so the result carries geometry even on full hits.
		m, err := r.compose(ctx, result, opts, false)
		if err == nil {
			result.Map = m
		}
		return artifacts, true, nil
	}

	observability.Pipeline().OnRenderStart(ctx, opts.Formats)
	start := time.Now()

	rendered, err := r.renderAll(ctx, result, opts)
	observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(layoutHash, opts.artifactKeyOpts(format))
		_ = r.Cache.Set(ctx, key, data, cache.TTLArtifact)
		observability.Cache().OnCacheSet(ctx, "artifact", len(data))
	}
	return rendered, false, nil
}

func (r *Runner) renderAll(ctx context.Context, result *Result, opts Options) (map[string][]byte, error) {
	needOverlays := opts.Overlays && r.Images != nil
	m, err := r.compose(ctx, result, opts, needOverlays)
	if err != nil {
		return nil, err
	}
	result.Map = m

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		data, err := r.renderFormat(m, result, opts, format)
		if err != nil {
			return nil, err
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

func (r *Runner) renderFormat(m *render.Map, result *Result, opts Options, format string) ([]byte, error) {
	switch format {
	case FormatPNG:
		return m.PNG()
	case FormatHTML:
		return sink.RenderHTML(m, opts.ImageURL, opts.MapName)
	case FormatSVG:
		return sink.RenderSVG(m), nil
	case FormatJSON:
		return sink.RenderJSON(m)
	case FormatCSV:
		return renderCSV(result, opts)
	default:
		return nil, ValidateFormat(format)
	}
}

// compose builds the pixel-space map, optionally fetching overlays.
func (r *Runner) compose(ctx context.Context, result *Result, opts Options, overlays bool) (*render.Map, error) {
	_, labels, tooltips := r.weightsAndLabels(result, opts)

	m, err := render.Compose(opts.Title, result.Rects, labels, tooltips, opts.Width, opts.Height, opts.TopOffset)
	if err != nil {
		return nil, err
	}

	if overlays {
		for i := range m.Boxes {
			if opts.Empires {
				img := r.empireOverlay(ctx, result, opts, i)
				m.SetOverlay(i, img)
			} else {
				m.SetOverlay(i, r.Images.Flag(ctx, labels[i]))
			}
		}
	}
	return m, nil
}

// empireOverlay fetches the artwork for the i-th kept empire, falling
// back to a placeholder when the empire has no image or the fetch fails.
func (r *Runner) empireOverlay(ctx context.Context, result *Result, opts Options, i int) image.Image {
	_, kept := dataset.EmpireWeights(result.Empires)
	if i >= len(kept) {
		return render.Placeholder()
	}

	defs := opts.EmpireDefinitions
	if defs == nil {
		defs = dataset.DefaultEmpires()
	}

	var imageURL string
	for _, e := range defs {
		if e.Rank == kept[i].Rank {
			imageURL = e.ImageURL
			break
		}
	}
	if imageURL == "" {
		return render.Placeholder()
	}
	img, err := r.Images.Fetch(ctx, imageURL)
	if err != nil {
		return render.Placeholder()
	}
	return img
}

// weightsAndLabels extracts the layout inputs for the run: per-country
// shares or per-empire shares of the combined empire total.
func (r *Runner) weightsAndLabels(result *Result, opts Options) (weights []float64, labels, tooltips []string) {
	if opts.Empires {
		w, kept := dataset.EmpireWeights(result.Empires)
		labels = make([]string, len(kept))
		tooltips = make([]string, len(kept))
		for i, e := range kept {
			labels[i] = e.Name
			tooltips[i] = e.Tooltip()
		}
		return w, labels, tooltips
	}

	ds := result.Dataset
	weights = ds.Weights()
	labels = ds.Labels()
	tooltips = make([]string, len(ds.Records))
	for i, rec := range ds.Records {
		tooltips[i] = fmt.Sprintf("%s\n%s\n%.2f%%",
			rec.Country, dataset.FormatMarketCap(rec.MarketCap), rec.Share)
	}
	return weights, labels, tooltips
}

func renderCSV(result *Result, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	if opts.Empires {
		if err := dataset.WriteEmpireCSV(result.Empires, &buf); err != nil {
			return nil, err
		}
	} else {
		if err := dataset.WriteCSV(result.Dataset, &buf); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
