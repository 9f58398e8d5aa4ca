package treemap

import (
	"math"

	"github.com/ayeeff/marketmap/pkg/errors"
)

// PixelBox is an integer bounding box in device space: top-left origin with y
// increasing downward, the convention used by HTML image maps and raster
// images. Coordinates are ready to be emitted as
// <area shape="rect" coords="left,top,right,bottom">.
type PixelBox struct {
	Left   int `json:"left"`
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
}

// Width returns the horizontal span of the box in pixels.
func (b PixelBox) Width() int { return b.Right - b.Left }

// Height returns the vertical span of the box in pixels.
func (b PixelBox) Height() int { return b.Bottom - b.Top }

// ToPixelBoxes converts a layout normalized to the unit square into pixel
// bounding boxes on a canvas of the given dimensions. topOffset reserves
// pixels above the layout area (a title band, for example) so the mapped
// region aligns with the rendered treemap rather than the full figure.
//
// The conversion flips the vertical axis: normalized space is bottom-up while
// pixel space is top-down. Boxes preserve the input order and are clamped to
// [0, canvasWidth] × [topOffset, canvasHeight]. A degenerate rectangle maps to
// a zero-width or zero-height box without error; rejecting degenerate input is
// [Layout]'s responsibility at construction time.
//
// canvasWidth and canvasHeight must be positive and topOffset must satisfy
// 0 <= topOffset < canvasHeight; otherwise the error carries code
// [errors.ErrCodeInvalidCanvas].
func ToPixelBoxes(rects []Rect, canvasWidth, canvasHeight, topOffset int) ([]PixelBox, error) {
	if canvasWidth <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidCanvas, "canvas width must be positive: %d", canvasWidth)
	}
	if canvasHeight <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidCanvas, "canvas height must be positive: %d", canvasHeight)
	}
	if topOffset < 0 {
		return nil, errors.New(errors.ErrCodeInvalidCanvas, "top offset must not be negative: %d", topOffset)
	}
	if topOffset >= canvasHeight {
		return nil, errors.New(errors.ErrCodeInvalidCanvas, "top offset %d leaves no room on a canvas of height %d", topOffset, canvasHeight)
	}

	mapped := float64(canvasHeight - topOffset)
	fw := float64(canvasWidth)

	boxes := make([]PixelBox, len(rects))
	for i, r := range rects {
		box := PixelBox{
			Left:   int(math.Round(r.X * fw)),
			Right:  int(math.Round(r.Right() * fw)),
			Top:    topOffset + int(math.Round((1-r.Top())*mapped)),
			Bottom: topOffset + int(math.Round((1-r.Y)*mapped)),
		}
		boxes[i] = clamp(box, canvasWidth, canvasHeight, topOffset)
	}
	return boxes, nil
}

func clamp(b PixelBox, canvasWidth, canvasHeight, topOffset int) PixelBox {
	b.Left = clampInt(b.Left, 0, canvasWidth)
	b.Right = clampInt(b.Right, 0, canvasWidth)
	b.Top = clampInt(b.Top, topOffset, canvasHeight)
	b.Bottom = clampInt(b.Bottom, topOffset, canvasHeight)
	return b
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
