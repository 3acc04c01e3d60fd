// Package scene implements the minimal retained scene tree the renderer
// consumes. The window management core owns the structure: each window
// holds a sub-tree with its surface node, a saved-surface node used to
// keep the previous frame on screen during transactions, and four border
// rectangles. The renderer only ever reads positions and enabled state.
package scene

// Node is a positionable element of the scene tree. Position is relative
// to the parent node.
type Node struct {
	X, Y    int32
	Enabled bool

	parent   *Node
	children []*Node
}

// NewTree returns the root of a new scene tree. The root is always
// enabled and positioned at the origin.
func NewTree() *Node {
	return &Node{Enabled: true}
}

// NewChild creates an enabled child node.
func (n *Node) NewChild() *Node {
	c := &Node{Enabled: true, parent: n}
	n.children = append(n.children, c)
	return c
}

// SetPosition moves the node relative to its parent.
func (n *Node) SetPosition(x, y int32) {
	n.X, n.Y = x, y
}

// SetEnabled toggles whether the node and its descendants are rendered.
func (n *Node) SetEnabled(enabled bool) {
	n.Enabled = enabled
}

// Destroy detaches the node from its parent. Children go with it.
func (n *Node) Destroy() {
	if n.parent == nil {
		return
	}
	siblings := n.parent.children
	for i, c := range siblings {
		if c == n {
			n.parent.children = append(siblings[:i], siblings[i+1:]...)
			break
		}
	}
	n.parent = nil
}

// Children returns the node's direct children. Read-only.
func (n *Node) Children() []*Node {
	return n.children
}

// AbsolutePosition returns the node's position in layout coordinates.
func (n *Node) AbsolutePosition() (int32, int32) {
	x, y := n.X, n.Y
	for p := n.parent; p != nil; p = p.parent {
		x += p.X
		y += p.Y
	}
	return x, y
}

// Visible reports whether the node and all its ancestors are enabled.
func (n *Node) Visible() bool {
	for p := n; p != nil; p = p.parent {
		if !p.Enabled {
			return false
		}
	}
	return true
}

// Rect is a solid-color rectangle node, used for window borders.
type Rect struct {
	Node   *Node
	Width  int32
	Height int32
}

// NewRect creates a rect attached to parent.
func (n *Node) NewRect(w, h int32) *Rect {
	return &Rect{Node: n.NewChild(), Width: w, Height: h}
}

// SetSize resizes the rect.
func (r *Rect) SetSize(w, h int32) {
	r.Width, r.Height = w, h
}

// DragIcon is a scene node following a seat's cursor during a drag.
type DragIcon struct {
	Node *Node
	// Seat identifies the seat that owns the drag.
	Seat uint32
}

// NewDragIcon creates a drag icon node owned by the given seat.
func (n *Node) NewDragIcon(seat uint32) *DragIcon {
	return &DragIcon{Node: n.NewChild(), Seat: seat}
}
