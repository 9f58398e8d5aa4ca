// Package pkg provides the core libraries for marketmap treemap generation.
//
// # Overview
//
// Marketmap turns total-market-capitalization tables into proportional
// treemaps. The pkg directory is organized into:
//
//  1. [dataset]       - Country/empire market-cap model, CSV schema, currency parsing
//  2. [scrape]        - HTML table extraction from the source site
//  3. [treemap]       - Unit-square layout engine and pixel mapping
//  4. [render]        - PNG raster, SVG, HTML image-map, and JSON sinks
//  5. [pipeline]      - Orchestration (scrape → layout → render) with caching
//  6. [github]        - Contents-API client for publishing artifacts
//  7. [cache]         - File/Redis/null cache backends and stage key derivation
//  8. [httputil]      - HTTP response caching and retry with backoff
//  9. [observability] - Hook interfaces for pipeline, cache, and HTTP events
//
// # Architecture
//
// The typical data flow:
//
//	Source site (HTML tables)
//	         ↓ scrape
//	dataset.Dataset (shares of global market cap)
//	         ↓ treemap.Layout
//	[]treemap.Rect (unit square)
//	         ↓ treemap.ToPixelBoxes + render.Compose
//	render.Map (pixel boxes, labels, tooltips)
//	         ↓ sinks
//	PNG / HTML image map / SVG / JSON / CSV
//	         ↓ github
//	Data repository (data/*.csv, img/*.png)
package pkg
