package render

import (
	"image"

	"github.com/ayeeff/marketmap/pkg/errors"
	"github.com/ayeeff/marketmap/pkg/treemap"
)

// Box is one treemap rectangle bound to pixel space.
type Box struct {
	Label   string           `json:"label"`
	Tooltip string           `json:"tooltip"`
	Pixel   treemap.PixelBox `json:"pixel"`

	// Overlay is drawn stretched across the box by the PNG renderer.
	// Nil means the box stays blank behind its border.
	Overlay image.Image `json:"-"`
}

// Map is a treemap ready to render: pixel-space boxes below a title band.
type Map struct {
	Title     string `json:"title"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	TopOffset int    `json:"top_offset"`
	Boxes     []Box  `json:"boxes"`
}

// Default canvas geometry.
const (
	DefaultWidth     = 1200
	DefaultHeight    = 800
	DefaultTopOffset = 30
)

// Compose binds normalized layout rectangles to a pixel canvas. Labels and
// tooltips are index-aligned with rects; tooltips may be nil when no hover
// text is wanted. Zero canvas dimensions select the defaults.
func Compose(title string, rects []treemap.Rect, labels, tooltips []string, width, height, topOffset int) (*Map, error) {
	if width == 0 && height == 0 && topOffset == 0 {
		width, height, topOffset = DefaultWidth, DefaultHeight, DefaultTopOffset
	}
	if len(labels) != len(rects) {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"%d labels for %d rectangles", len(labels), len(rects))
	}
	if tooltips != nil && len(tooltips) != len(rects) {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"%d tooltips for %d rectangles", len(tooltips), len(rects))
	}

	pixels, err := treemap.ToPixelBoxes(rects, width, height, topOffset)
	if err != nil {
		return nil, err
	}

	m := &Map{
		Title:     title,
		Width:     width,
		Height:    height,
		TopOffset: topOffset,
		Boxes:     make([]Box, len(rects)),
	}
	for i := range rects {
		m.Boxes[i] = Box{Label: labels[i], Pixel: pixels[i]}
		if tooltips != nil {
			m.Boxes[i].Tooltip = tooltips[i]
		}
	}
	return m, nil
}

// SetOverlay attaches an overlay image to the box at index i.
func (m *Map) SetOverlay(i int, img image.Image) {
	if i >= 0 && i < len(m.Boxes) {
		m.Boxes[i].Overlay = img
	}
}
