// Package geo provides the geometric primitives shared by the window
// management core: boxes in logical pixels and resize edge masks.
package geo

// Box is a rectangle in logical pixels.
type Box struct {
	X      int32 `json:"x"`
	Y      int32 `json:"y"`
	Width  int32 `json:"width"`
	Height int32 `json:"height"`
}

// Empty reports whether the box has no area.
func (b Box) Empty() bool {
	return b.Width <= 0 || b.Height <= 0
}

// Contains reports whether the point (x, y) lies inside the box.
func (b Box) Contains(x, y float64) bool {
	return x >= float64(b.X) && x < float64(b.X+b.Width) &&
		y >= float64(b.Y) && y < float64(b.Y+b.Height)
}

// SameSize reports whether two boxes have equal dimensions,
// ignoring position.
func (b Box) SameSize(o Box) bool {
	return b.Width == o.Width && b.Height == o.Height
}

// ClampPoint returns the closest point to (x, y) inside the box.
func (b Box) ClampPoint(x, y float64) (float64, float64) {
	maxX := float64(b.X+b.Width) - 1
	maxY := float64(b.Y+b.Height) - 1
	if x < float64(b.X) {
		x = float64(b.X)
	} else if x > maxX {
		x = maxX
	}
	if y < float64(b.Y) {
		y = float64(b.Y)
	} else if y > maxY {
		y = maxY
	}
	return x, y
}

// Edges is a bitmask of box edges used for interactive resize.
type Edges uint32

const (
	EdgeTop Edges = 1 << iota
	EdgeBottom
	EdgeLeft
	EdgeRight
)

// Has reports whether e contains all edges in mask.
func (e Edges) Has(mask Edges) bool {
	return e&mask == mask
}

// Resize grows or shrinks the box by (dx, dy) along the given edges.
// Width and height never drop below min. Moving the top or left edge
// shifts the origin so the opposite edge stays fixed.
func (b Box) Resize(edges Edges, dx, dy int32, min int32) Box {
	out := b
	if edges.Has(EdgeLeft) {
		w := b.Width - dx
		if w < min {
			w = min
		}
		out.X = b.X + b.Width - w
		out.Width = w
	} else if edges.Has(EdgeRight) {
		out.Width = b.Width + dx
		if out.Width < min {
			out.Width = min
		}
	}
	if edges.Has(EdgeTop) {
		h := b.Height - dy
		if h < min {
			h = min
		}
		out.Y = b.Y + b.Height - h
		out.Height = h
	} else if edges.Has(EdgeBottom) {
		out.Height = b.Height + dy
		if out.Height < min {
			out.Height = min
		}
	}
	return out
}
