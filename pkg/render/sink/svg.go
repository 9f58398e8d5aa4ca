package sink

import (
	"fmt"
	"html"
	"strings"

	"github.com/ayeeff/marketmap/pkg/render"
)

// RenderSVG produces a standalone vector rendering of the map: bordered
// rectangles with centered labels, each carrying its tooltip in a <title>
// child so browsers show it on hover.
func RenderSVG(m *render.Map) []byte {
	var b strings.Builder
	fmt.Fprintf(&b,
		`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`,
		m.Width, m.Height, m.Width, m.Height)
	b.WriteString("\n")
	fmt.Fprintf(&b, `  <rect width="%d" height="%d" fill="white"/>`+"\n", m.Width, m.Height)

	if m.Title != "" && m.TopOffset > 0 {
		fmt.Fprintf(&b,
			`  <text x="%d" y="%d" text-anchor="middle" dominant-baseline="middle" font-family="sans-serif" font-size="16" font-weight="bold">%s</text>`+"\n",
			m.Width/2, m.TopOffset/2, html.EscapeString(m.Title))
	}

	for i, box := range m.Boxes {
		tooltip := box.Tooltip
		if tooltip == "" {
			tooltip = box.Label
		}
		w, h := box.Pixel.Width(), box.Pixel.Height()

		fmt.Fprintf(&b, `  <g id="box-%d">`+"\n", i)
		fmt.Fprintf(&b, `    <rect x="%d" y="%d" width="%d" height="%d" fill="#e8e8e8" stroke="black" stroke-width="1">`+"\n",
			box.Pixel.Left, box.Pixel.Top, w, h)
		fmt.Fprintf(&b, `      <title>%s</title>`+"\n", html.EscapeString(tooltip))
		b.WriteString("    </rect>\n")

		// Labels follow the raster rule: skip boxes too small to read.
		if w*20 > m.Width || h*20 > m.Height {
			fmt.Fprintf(&b,
				`    <text x="%d" y="%d" text-anchor="middle" dominant-baseline="middle" font-family="sans-serif" font-size="12">%s</text>`+"\n",
				box.Pixel.Left+w/2, box.Pixel.Top+h/2, html.EscapeString(box.Label))
		}
		b.WriteString("  </g>\n")
	}

	b.WriteString("</svg>\n")
	return []byte(b.String())
}
