package sink

import (
	"fmt"
	"html"
	"strings"

	"github.com/ayeeff/marketmap/pkg/errors"
	"github.com/ayeeff/marketmap/pkg/render"
)

// maxAltRunes caps alt text the way the published snippets do.
const maxAltRunes = 50

// RenderHTML produces an image-map snippet binding imageURL to the map's
// boxes. mapName must be unique per page since image maps are addressed by
// name. Tooltips land in the title attribute; empty tooltips fall back to
// the label.
func RenderHTML(m *render.Map, imageURL, mapName string) ([]byte, error) {
	if err := errors.ValidateURL(imageURL); err != nil {
		return nil, err
	}
	if mapName == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "map name cannot be empty")
	}

	var b strings.Builder
	fmt.Fprintf(&b,
		`<figure><img src="%s" usemap="#%s" alt="%s" style="max-width:100%%;height:auto;"><map name="%s">`,
		html.EscapeString(imageURL), html.EscapeString(mapName),
		html.EscapeString(m.Title), html.EscapeString(mapName))
	b.WriteString("\n")

	for _, box := range m.Boxes {
		tooltip := box.Tooltip
		if tooltip == "" {
			tooltip = box.Label
		}
		alt := box.Label
		if runes := []rune(alt); len(runes) > maxAltRunes {
			alt = string(runes[:maxAltRunes])
		}

		fmt.Fprintf(&b, `  <area shape="rect" coords="%d,%d,%d,%d" href="#" alt="%s" title="%s">`,
			box.Pixel.Left, box.Pixel.Top, box.Pixel.Right, box.Pixel.Bottom,
			html.EscapeString(alt), html.EscapeString(tooltip))
		b.WriteString("\n")
	}

	b.WriteString("</map></figure>\n<p><em>Hover over rectangles for details.</em></p>\n")
	return []byte(b.String()), nil
}
