package page

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/wudi/pagelink/coords"
	"github.com/wudi/pagelink/link"
)

func mustLink(t *testing.T, action link.Action, target string, r coords.Rect) *link.Link {
	t.Helper()
	l, err := link.New(action, target, r)
	if err != nil {
		t.Fatalf("link.New(%q): %v", target, err)
	}
	return l
}

func TestLinkSetHitTestTopmost(t *testing.T) {
	under := mustLink(t, link.Navigate, "page://1", coords.NewRect(0, 0, 100, 100))
	over := mustLink(t, link.OpenExternal, "https://example.com", coords.NewRect(40, 40, 60, 60))
	ls := NewLinkSet(under, over)

	got, ok := ls.HitTest(coords.Point{X: 50, Y: 50})
	if !ok || !got.Equal(over) {
		t.Fatalf("HitTest = %v, %v; want %v", got, ok, over)
	}
	got, ok = ls.HitTest(coords.Point{X: 10, Y: 10})
	if !ok || !got.Equal(under) {
		t.Fatalf("HitTest = %v, %v; want %v", got, ok, under)
	}
	if _, ok := ls.HitTest(coords.Point{X: 200, Y: 200}); ok {
		t.Fatalf("expected miss outside every link")
	}

	all := ls.HitTestAll(coords.Point{X: 50, Y: 50})
	if len(all) != 2 || !all[0].Equal(over) || !all[1].Equal(under) {
		t.Fatalf("HitTestAll = %v", all)
	}
}

func TestLinkSetCopiesLinks(t *testing.T) {
	l := mustLink(t, link.Navigate, "page://2", coords.NewRect(0, 0, 10, 10))
	ls := NewLinkSet(l)
	l.SetBounds(coords.NewRect(100, 100, 110, 110))
	if _, ok := ls.HitTest(coords.Point{X: 5, Y: 5}); !ok {
		t.Fatalf("mutating the caller's link must not affect the set")
	}
	ls.Links()[0].SetBounds(coords.NewRect(500, 500, 501, 501))
	if _, ok := ls.HitTest(coords.Point{X: 5, Y: 5}); !ok {
		t.Fatalf("mutating a returned copy must not affect the set")
	}
}

func TestLinkSetRelayout(t *testing.T) {
	l := mustLink(t, link.Navigate, "page://3", coords.NewRect(10, 10, 50, 30))
	ls := NewLinkSet(l)
	ls.Relayout(func(r coords.Rect) coords.Rect { return r.Translate(2, 2) })

	got := ls.Links()[0]
	if got.Bounds() != coords.NewRect(12, 12, 52, 32) {
		t.Fatalf("bounds = %+v", got.Bounds())
	}
	if got.Action() != link.Navigate || got.Target() != "page://3" {
		t.Fatalf("relayout changed identity: %v", got)
	}
	if _, ok := ls.HitTest(coords.Point{X: 12, Y: 12}); !ok {
		t.Fatalf("expected hit at new corner")
	}
	if _, ok := ls.HitTest(coords.Point{X: 60, Y: 60}); ok {
		t.Fatalf("unexpected hit")
	}
}

func TestLinkSetZeroValue(t *testing.T) {
	var ls LinkSet
	if ls.Len() != 0 {
		t.Fatalf("zero set should be empty")
	}
	if _, ok := ls.HitTest(coords.Point{}); ok {
		t.Fatalf("zero set should never hit")
	}
	ls.Add(mustLink(t, link.Jump, "dest:a", coords.NewRect(0, 0, 1, 1)))
	if ls.Len() != 1 {
		t.Fatalf("Len = %d", ls.Len())
	}
}

func gridLinks(t *testing.T, n int) []*link.Link {
	var links []*link.Link
	for i := 0; i < n; i++ {
		x := float64(i%10) * 20
		y := float64(i/10) * 20
		links = append(links, mustLink(t, link.Navigate, fmt.Sprintf("page://%d", i), coords.NewRect(x, y, x+10, y+10)))
	}
	return links
}

func TestLinkSetIndexedMatchesLinear(t *testing.T) {
	links := gridLinks(t, 100)
	ls := NewLinkSet(links...)
	if ls.load().index == nil {
		t.Fatalf("expected quadtree index for %d links", len(links))
	}
	for _, p := range []coords.Point{{X: 5, Y: 5}, {X: 190, Y: 190}, {X: 15, Y: 15}, {X: 100, Y: 40}, {X: 110, Y: 50}} {
		var want *link.Link
		for _, l := range links {
			if l.HitTest(p) {
				want = l
			}
		}
		got, ok := ls.HitTest(p)
		if (want != nil) != ok {
			t.Fatalf("HitTest(%v) ok = %v, want %v", p, ok, want != nil)
		}
		if ok && !got.Equal(want) {
			t.Fatalf("HitTest(%v) = %v, want %v", p, got, want)
		}
	}
}

func TestLinkSetConcurrentRelayout(t *testing.T) {
	ls := NewLinkSet(gridLinks(t, 40)...)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			ls.Relayout(func(r coords.Rect) coords.Rect { return r.Translate(1, 0) })
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			for _, l := range ls.Links() {
				b := l.Bounds()
				if b.Width() != 10 || b.Height() != 10 {
					t.Errorf("torn rect %+v", b)
					return
				}
			}
			ls.HitTest(coords.Point{X: 50, Y: 5})
		}
	}()
	wg.Wait()
	if got := ls.Links()[0].Bounds().Left; got != 200 {
		t.Fatalf("Left = %v, want 200", got)
	}
}

func TestQuadTreeQuery(t *testing.T) {
	qt := NewQuadTree(coords.NewRect(0, 0, 100, 100), 2)
	rects := []coords.Rect{
		coords.NewRect(0, 0, 10, 10),
		coords.NewRect(80, 80, 90, 90),
		coords.NewRect(45, 45, 55, 55),
		coords.NewRect(5, 5, 15, 15),
		coords.NewRect(85, 5, 95, 15),
	}
	for i, r := range rects {
		if !qt.Insert(r, i) {
			t.Fatalf("Insert(%d) failed", i)
		}
	}
	if qt.Insert(coords.NewRect(200, 200, 210, 210), 99) {
		t.Fatalf("insert outside bounds should fail")
	}
	got := qt.QueryPoint(coords.Point{X: 7, Y: 7})
	sort.Ints(got)
	if len(got) != 2 || got[0] != 0 || got[1] != 3 {
		t.Fatalf("QueryPoint = %v", got)
	}
	if got := qt.QueryPoint(coords.Point{X: 50, Y: 50}); len(got) != 1 || got[0] != 2 {
		t.Fatalf("QueryPoint center = %v", got)
	}
}

func TestQuadTreeDuplicateRects(t *testing.T) {
	qt := NewQuadTree(coords.NewRect(0, 0, 10, 10), 1)
	for i := 0; i < 50; i++ {
		qt.Insert(coords.NewRect(1, 1, 2, 2), i)
	}
	if got := qt.QueryPoint(coords.Point{X: 1.5, Y: 1.5}); len(got) != 50 {
		t.Fatalf("found %d, want 50", len(got))
	}
}

func TestSliceProvider(t *testing.T) {
	p := SliceProvider{New(0, Size{Width: 100, Height: 200})}
	if s, ok := p.Size(0); !ok || s.Width != 100 {
		t.Fatalf("Size = %v, %v", s, ok)
	}
	if _, err := p.Page(context.Background(), 3); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("err = %v, want ErrOutOfRange", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.Page(ctx, 0); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
