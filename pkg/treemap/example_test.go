package treemap_test

import (
	"fmt"

	"github.com/ayeeff/marketmap/pkg/treemap"
)

// Three shares split the unit square; pixel boxes feed an HTML image map.
func Example() {
	rects, err := treemap.Layout([]float64{46.50, 16.30, 8.28}, 1, 1)
	if err != nil {
		panic(err)
	}
	boxes, err := treemap.ToPixelBoxes(rects, 1200, 800, 0)
	if err != nil {
		panic(err)
	}
	for _, b := range boxes {
		fmt.Printf("%d,%d,%d,%d\n", b.Left, b.Top, b.Right, b.Bottom)
	}
	// Output:
	// 0,0,785,800
	// 785,0,1060,800
	// 1060,0,1200,800
}

func ExampleLayout() {
	rects, _ := treemap.Layout([]float64{1, 1}, 1, 1)
	for _, r := range rects {
		fmt.Printf("x=%.2f y=%.2f dx=%.2f dy=%.2f\n", r.X, r.Y, r.DX, r.DY)
	}
	// Output:
	// x=0.00 y=0.00 dx=0.50 dy=1.00
	// x=0.50 y=0.00 dx=0.50 dy=1.00
}
