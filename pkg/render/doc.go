// Package render turns computed treemap layouts into visual artifacts.
//
// # Overview
//
// A [Map] is a laid-out treemap bound to pixel space: a title band plus one
// [Box] per rectangle carrying its label, hover tooltip, and optional image
// overlay. Build one with [Compose], then hand it to a renderer:
//
//   - [Map.PNG]: raster image (borders, overlays, labels, title)
//   - sink.RenderHTML: image-map snippet with hover tooltips
//   - sink.RenderSVG: standalone vector version
//   - sink.RenderJSON: layout data export
//
// # Overlays
//
// [ImageFetcher] downloads country flags (flagcdn.com) and empire artwork,
// caching them on disk. A failed fetch falls back to a solid placeholder so
// one missing flag never fails a whole map.
package render
