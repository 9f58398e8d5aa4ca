package treemap

import (
	"math"

	"github.com/ayeeff/marketmap/pkg/errors"
)

// Option configures the layout algorithm.
type Option func(*layouter)

type layouter struct {
	greedy bool
}

// WithGreedyRows switches the engine from plain slice-and-dice to the
// squarified variant: weights are accumulated into rows greedily and a row is
// flushed as soon as adding the next weight would worsen the row's worst
// aspect ratio. Areas and ordering are identical to the default policy; only
// the shapes of the rectangles differ.
func WithGreedyRows() Option {
	return func(l *layouter) { l.greedy = true }
}

// Layout partitions the rectangle anchored at (0, 0) with the given width and
// height into len(weights) sub-rectangles whose areas are proportional to the
// weights. The result is index-aligned with weights: rects[i] belongs to
// weights[i], and the engine never reorders inputs. Callers wanting the
// conventional big-to-small visual ordering should sort weights descending
// before calling.
//
// The default policy is slice-and-dice: one weight per cut, slicing the
// remaining rectangle horizontally when it is wider than tall and vertically
// otherwise. See [WithGreedyRows] for the squarified variant.
//
// Weights must be strictly positive and finite; otherwise Layout returns an
// error with code [errors.ErrCodeInvalidWeight]. Width and height must be
// non-negative and finite; a zero-area target is legal and produces zero-area
// rectangles at well-defined positions. Summation is fixed left-to-right, so
// identical inputs produce bit-identical outputs.
func Layout(weights []float64, width, height float64, opts ...Option) ([]Rect, error) {
	var l layouter
	for _, opt := range opts {
		opt(&l)
	}

	if len(weights) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidWeight, "weight sequence is empty")
	}
	for i, w := range weights {
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return nil, errors.New(errors.ErrCodeInvalidWeight, "weight %d is not finite", i)
		}
		if w <= 0 {
			return nil, errors.New(errors.ErrCodeInvalidWeight, "weight %d is not positive: %v", i, w)
		}
	}
	if err := checkTarget(width, "width"); err != nil {
		return nil, err
	}
	if err := checkTarget(height, "height"); err != nil {
		return nil, err
	}

	areas := normalize(weights, width, height)
	if l.greedy && width > 0 && height > 0 {
		return greedyRows(areas, width, height), nil
	}
	return sliceAndDice(areas, width, height), nil
}

func checkTarget(v float64, name string) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return errors.New(errors.ErrCodeInvalidCanvas, "target %s is not finite", name)
	}
	if v < 0 {
		return errors.New(errors.ErrCodeInvalidCanvas, "target %s is negative: %v", name, v)
	}
	return nil
}

// normalize scales weights so their sum equals the target area.
// Summation order is fixed left-to-right for reproducibility.
func normalize(weights []float64, width, height float64) []float64 {
	var total float64
	for _, w := range weights {
		total += w
	}
	areas := make([]float64, len(weights))
	for i, w := range weights {
		areas[i] = w / total * width * height
	}
	return areas
}

// sliceAndDice peels one rectangle per weight off the remaining target,
// slicing across the longer dimension so strips stay as stout as possible.
func sliceAndDice(areas []float64, width, height float64) []Rect {
	rects := make([]Rect, 0, len(areas))
	var x, y float64
	w, h := width, height

	for _, area := range areas {
		if w > h {
			// Horizontal slice spanning the full remaining width.
			var t float64
			if w > 0 {
				t = area / w
			}
			rects = append(rects, Rect{X: x, Y: y, DX: w, DY: t})
			y += t
			h -= t
		} else {
			// Vertical slice spanning the full remaining height.
			var t float64
			if h > 0 {
				t = area / h
			}
			rects = append(rects, Rect{X: x, Y: y, DX: t, DY: h})
			x += t
			w -= t
		}
	}
	return rects
}

// greedyRows implements the squarified policy: accumulate weights into the
// current row while doing so does not worsen the row's worst aspect ratio,
// then flush the row along the shorter side of the remaining rectangle.
// Requires a non-degenerate target (width > 0 and height > 0).
func greedyRows(areas []float64, width, height float64) []Rect {
	rects := make([]Rect, 0, len(areas))
	var x, y float64
	w, h := width, height

	i := 0
	for i < len(areas) {
		side := math.Min(w, h)

		// Grow the row while the worst aspect ratio does not increase.
		rowSum := areas[i]
		rowMin, rowMax := areas[i], areas[i]
		j := i + 1
		for j < len(areas) {
			next := areas[j]
			nextSum := rowSum + next
			nextMin := math.Min(rowMin, next)
			nextMax := math.Max(rowMax, next)
			if worstAspect(nextMax, nextMin, nextSum, side) > worstAspect(rowMax, rowMin, rowSum, side) {
				break
			}
			rowSum, rowMin, rowMax = nextSum, nextMin, nextMax
			j++
		}

		if w >= h {
			// Vertical strip consumed from the left edge, items bottom-up.
			t := rowSum / h
			cy := y
			for _, a := range areas[i:j] {
				ih := a / t
				rects = append(rects, Rect{X: x, Y: cy, DX: t, DY: ih})
				cy += ih
			}
			x += t
			w -= t
		} else {
			// Horizontal strip consumed from the bottom edge, items left-to-right.
			t := rowSum / w
			cx := x
			for _, a := range areas[i:j] {
				iw := a / t
				rects = append(rects, Rect{X: cx, Y: y, DX: iw, DY: t})
				cx += iw
			}
			y += t
			h -= t
		}
		i = j
	}
	return rects
}

// worstAspect returns the worst (largest) aspect ratio any member of a row
// would have if the row were flushed against a side of the given length.
func worstAspect(rowMax, rowMin, rowSum, side float64) float64 {
	if rowSum <= 0 || side <= 0 {
		return math.MaxFloat64
	}
	s2 := side * side
	sum2 := rowSum * rowSum
	return math.Max(s2*rowMax/sum2, sum2/(s2*rowMin))
}
