// Package sink provides output format renderers for composed maps.
//
// # Overview
//
// A "sink" transforms a [render.Map] into a final output format:
//
//   - [RenderHTML]: image-map snippet for embedding (hover tooltips)
//   - [RenderSVG]: standalone vector rendering
//   - [RenderJSON]: layout data export for external tools
//
// # HTML Output
//
// [RenderHTML] wires an already-published PNG to hover tooltips via a
// client-side image map:
//
//	<figure><img src="..." usemap="#globalmap" ...><map name="globalmap">
//	  <area shape="rect" coords="0,30,785,800" href="#" alt="..." title="...">
//	  ...
//	</map></figure>
//
// The coords come straight from the map's pixel boxes, so the areas line
// up with the PNG as long as both were produced from the same [render.Map].
// All attribute text is HTML-escaped.
//
// # Adding New Formats
//
// A renderer is a function from *render.Map to bytes. Access m.Boxes for
// pixel geometry, labels, and tooltips; register the format in the CLI's
// render command for command-line support.
//
// [render.Map]: github.com/ayeeff/marketmap/pkg/render.Map
package sink
