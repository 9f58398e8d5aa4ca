package treemap

// Rect is an axis-aligned rectangle in normalized layout space.
// The origin is the bottom-left corner with y increasing upward.
// X and Y locate the bottom-left corner; DX and DY are the extents.
type Rect struct {
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

// Area returns the rectangle's area.
func (r Rect) Area() float64 { return r.DX * r.DY }

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.DX }

// Top returns the y coordinate of the top edge.
func (r Rect) Top() float64 { return r.Y + r.DY }

// CenterX returns the horizontal center point of the rectangle.
func (r Rect) CenterX() float64 { return r.X + r.DX/2 }

// CenterY returns the vertical center point of the rectangle.
func (r Rect) CenterY() float64 { return r.Y + r.DY/2 }
