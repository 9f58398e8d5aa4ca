package render

import (
	"bytes"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"golang.org/x/image/font/inconsolata"

	"github.com/ayeeff/marketmap/pkg/errors"
)

// labelRunes is how much of a label fits a small box.
const labelRunes = 6

// PNG rasterizes the map: white background, centered title in the top band,
// each box filled with its overlay (stretched), outlined in black, and
// labeled in its top-left corner when the box is big enough to read.
func (m *Map) PNG() ([]byte, error) {
	if len(m.Boxes) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "map has no boxes")
	}

	dc := gg.NewContext(m.Width, m.Height)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	if m.Title != "" && m.TopOffset > 0 {
		dc.SetFontFace(inconsolata.Bold8x16)
		dc.SetRGB(0, 0, 0)
		dc.DrawStringAnchored(m.Title, float64(m.Width)/2, float64(m.TopOffset)/2, 0.5, 0.5)
	}
	dc.SetFontFace(inconsolata.Regular8x16)

	for _, box := range m.Boxes {
		w, h := box.Pixel.Width(), box.Pixel.Height()
		if w <= 0 || h <= 0 {
			continue
		}

		if box.Overlay != nil {
			resized := imaging.Resize(box.Overlay, w, h, imaging.Lanczos)
			dc.DrawImage(resized, box.Pixel.Left, box.Pixel.Top)
		}

		dc.SetRGB(0, 0, 0)
		dc.SetLineWidth(1)
		dc.DrawRectangle(float64(box.Pixel.Left), float64(box.Pixel.Top), float64(w), float64(h))
		dc.Stroke()

		if m.labelFits(box) {
			label := truncate(box.Label, labelRunes)
			x := float64(box.Pixel.Left) + 4
			y := float64(box.Pixel.Top) + 12
			// Dark offset behind white text keeps labels readable on any flag.
			dc.SetRGB(0, 0, 0)
			dc.DrawString(label, x+1, y+1)
			dc.SetRGB(1, 1, 1)
			dc.DrawString(label, x, y)
		}
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode png")
	}
	return buf.Bytes(), nil
}

// labelFits reports whether a box spans at least 5% of the canvas in either
// direction, the threshold below which a label becomes unreadable noise.
func (m *Map) labelFits(box Box) bool {
	return box.Pixel.Width()*20 > m.Width || box.Pixel.Height()*20 > m.Height
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
