package page

import (
	"sync"
	"sync/atomic"

	"github.com/wudi/pagelink/coords"
	"github.com/wudi/pagelink/link"
)

// indexThreshold is the link count above which a snapshot builds a quadtree
// instead of scanning linearly.
const indexThreshold = 16

// LinkSet owns the links of one page.
//
// Every mutation builds a new immutable snapshot and publishes it with a
// single atomic store, so readers (hit-testing) never block and never see a
// partially recomputed layout. Writers are serialized by a mutex.
type LinkSet struct {
	mu   sync.Mutex
	snap atomic.Pointer[snapshot]
}

type snapshot struct {
	links []*link.Link
	index *QuadTree
}

func newSnapshot(links []*link.Link) *snapshot {
	s := &snapshot{links: links}
	if len(links) <= indexThreshold {
		return s
	}
	bounds := links[0].Bounds()
	for _, l := range links[1:] {
		bounds = bounds.Union(l.Bounds())
	}
	s.index = NewQuadTree(bounds, 8)
	for i, l := range links {
		s.index.Insert(l.Bounds(), i)
	}
	return s
}

// NewLinkSet returns a set holding copies of links. Nil entries are dropped.
func NewLinkSet(links ...*link.Link) *LinkSet {
	ls := &LinkSet{}
	ls.snap.Store(newSnapshot(cloneLinks(links)))
	return ls
}

func cloneLinks(links []*link.Link) []*link.Link {
	out := make([]*link.Link, 0, len(links))
	for _, l := range links {
		if l != nil {
			out = append(out, l.Clone())
		}
	}
	return out
}

func (ls *LinkSet) load() *snapshot {
	if s := ls.snap.Load(); s != nil {
		return s
	}
	return &snapshot{}
}

func (ls *LinkSet) Len() int { return len(ls.load().links) }

// Links returns copies of the current links in insertion order. Mutating the
// copies does not affect the set.
func (ls *LinkSet) Links() []*link.Link { return cloneLinks(ls.load().links) }

// Add appends links to the set.
func (ls *LinkSet) Add(links ...*link.Link) {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	cur := ls.load().links
	next := make([]*link.Link, 0, len(cur)+len(links))
	next = append(next, cur...)
	next = append(next, cloneLinks(links)...)
	ls.snap.Store(newSnapshot(next))
}

// Replace swaps the whole content of the set.
func (ls *LinkSet) Replace(links ...*link.Link) {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	ls.snap.Store(newSnapshot(cloneLinks(links)))
}

// Relayout recomputes every bounding rectangle with fn and publishes the
// result atomically. Action and target are left untouched.
func (ls *LinkSet) Relayout(fn func(coords.Rect) coords.Rect) {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	cur := ls.load().links
	next := make([]*link.Link, len(cur))
	for i, l := range cur {
		next[i] = l.WithBounds(fn(l.Bounds()))
	}
	ls.snap.Store(newSnapshot(next))
}

// HitTest returns a copy of the topmost link containing p. Links added
// later are drawn above earlier ones.
func (ls *LinkSet) HitTest(p coords.Point) (*link.Link, bool) {
	s := ls.load()
	best := -1
	for _, i := range s.candidates(p) {
		if i > best && s.links[i].HitTest(p) {
			best = i
		}
	}
	if best < 0 {
		return nil, false
	}
	return s.links[best].Clone(), true
}

// HitTestAll returns copies of every link containing p, topmost first.
func (ls *LinkSet) HitTestAll(p coords.Point) []*link.Link {
	s := ls.load()
	hits := make([]bool, len(s.links))
	for _, i := range s.candidates(p) {
		if s.links[i].HitTest(p) {
			hits[i] = true
		}
	}
	var out []*link.Link
	for i := len(hits) - 1; i >= 0; i-- {
		if hits[i] {
			out = append(out, s.links[i].Clone())
		}
	}
	return out
}

func (s *snapshot) candidates(p coords.Point) []int {
	if s.index != nil {
		return s.index.QueryPoint(p)
	}
	idx := make([]int, len(s.links))
	for i := range idx {
		idx[i] = i
	}
	return idx
}
