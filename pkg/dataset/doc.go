// Package dataset models country market-capitalization tables and their
// aggregation into "empire" groupings.
//
// # Overview
//
// A [Record] is one row of the scraped country table; a [Dataset] is the
// ordered collection plus derived shares. The package provides:
//
//   - Currency-string parsing and formatting ("$68.89 T" ↔ 6.889e13)
//   - CSV encoding/decoding with the published column schema
//   - Share-of-total computation and descending sort
//   - Aggregation of countries into configured empires with per-empire
//     totals and percentages
//
// The package holds data only; geometry lives in [treemap] and rendering in
// [render]. Layout weights are extracted with [Dataset.Weights] and zipped
// back positionally with labels and tooltips by the caller.
//
// [treemap]: github.com/ayeeff/marketmap/pkg/treemap
// [render]: github.com/ayeeff/marketmap/pkg/render
package dataset
