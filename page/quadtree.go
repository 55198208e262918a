package page

import "github.com/wudi/pagelink/coords"

// QuadTree implements a spatial index for rectangles.
type QuadTree struct {
	Bounds   coords.Rect
	Capacity int
	Items    []Item
	Nodes    []*QuadTree
}

// Item is a rectangle stored in the tree together with the caller's index.
type Item struct {
	Rect  coords.Rect
	Index int
}

func NewQuadTree(bounds coords.Rect, capacity int) *QuadTree {
	if capacity < 1 {
		capacity = 1
	}
	return &QuadTree{
		Bounds:   bounds,
		Capacity: capacity,
		Items:    make([]Item, 0, capacity),
	}
}

// Insert adds rect to the tree. It returns false when rect lies outside the
// tree bounds.
func (qt *QuadTree) Insert(rect coords.Rect, index int) bool {
	return qt.insert(rect, index, 0)
}

// Subdivision stops at maxDepth so that many identical rectangles cannot
// recurse forever.
const maxDepth = 12

func (qt *QuadTree) insert(rect coords.Rect, index, depth int) bool {
	if !qt.Bounds.Intersects(rect) {
		return false
	}

	if qt.Nodes != nil {
		for _, node := range qt.Nodes {
			if node.Bounds.ContainsRect(rect) {
				if node.insert(rect, index, depth+1) {
					return true
				}
			}
		}
		// Straddles children; keep it here.
		qt.Items = append(qt.Items, Item{Rect: rect, Index: index})
		return true
	}

	if len(qt.Items) < qt.Capacity || depth >= maxDepth {
		qt.Items = append(qt.Items, Item{Rect: rect, Index: index})
		return true
	}

	qt.subdivide()
	old := qt.Items
	qt.Items = make([]Item, 0, qt.Capacity)
	for _, it := range old {
		qt.insert(it.Rect, it.Index, depth)
	}
	return qt.insert(rect, index, depth)
}

func (qt *QuadTree) subdivide() {
	b := qt.Bounds
	xMid := (b.Left + b.Right) / 2
	yMid := (b.Top + b.Bottom) / 2

	qt.Nodes = []*QuadTree{
		NewQuadTree(coords.Rect{Left: b.Left, Top: b.Top, Right: xMid, Bottom: yMid}, qt.Capacity),
		NewQuadTree(coords.Rect{Left: xMid, Top: b.Top, Right: b.Right, Bottom: yMid}, qt.Capacity),
		NewQuadTree(coords.Rect{Left: b.Left, Top: yMid, Right: xMid, Bottom: b.Bottom}, qt.Capacity),
		NewQuadTree(coords.Rect{Left: xMid, Top: yMid, Right: b.Right, Bottom: b.Bottom}, qt.Capacity),
	}
}

// Query returns the indexes of every stored rectangle intersecting r.
// Order is unspecified.
func (qt *QuadTree) Query(r coords.Rect) []int {
	var found []int
	qt.query(r, &found)
	return found
}

func (qt *QuadTree) query(r coords.Rect, found *[]int) {
	if !qt.Bounds.Intersects(r) {
		return
	}
	for _, it := range qt.Items {
		if it.Rect.Intersects(r) {
			*found = append(*found, it.Index)
		}
	}
	for _, node := range qt.Nodes {
		node.query(r, found)
	}
}

// QueryPoint returns the indexes of every stored rectangle containing p.
func (qt *QuadTree) QueryPoint(p coords.Point) []int {
	return qt.Query(coords.Rect{Left: p.X, Top: p.Y, Right: p.X, Bottom: p.Y})
}
