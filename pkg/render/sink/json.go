package sink

import (
	"encoding/json"

	"github.com/ayeeff/marketmap/pkg/render"
)

// RenderJSON exports the map as indented JSON: canvas geometry plus every
// box's label, tooltip, and pixel coordinates. Overlay images are omitted.
// The export is enough to rebuild the HTML and SVG sinks without relayout.
func RenderJSON(m *render.Map) ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}
