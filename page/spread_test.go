package page

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/wudi/pagelink/coords"
	"github.com/wudi/pagelink/link"
)

func bookPages(t *testing.T, n int) SliceProvider {
	var pages SliceProvider
	for i := 0; i < n; i++ {
		l := mustLink(t, link.Navigate, fmt.Sprintf("page://%d", i), coords.NewRect(10, 10, 20, 20))
		pages = append(pages, New(i, Size{Width: 100, Height: 150}, l))
	}
	return pages
}

func TestSpreadCount(t *testing.T) {
	tests := []struct {
		pages       int
		singleFirst bool
		want        int
	}{
		{0, false, 0},
		{1, false, 1},
		{4, false, 2},
		{5, false, 3},
		{4, true, 3},
		{5, true, 3},
	}
	for _, tt := range tests {
		sp := &SpreadProvider{Source: bookPages(t, tt.pages), SingleFirst: tt.singleFirst}
		if got := sp.Count(); got != tt.want {
			t.Errorf("Count(pages=%d, singleFirst=%v) = %d, want %d", tt.pages, tt.singleFirst, got, tt.want)
		}
	}
}

func TestSpreadIndexes(t *testing.T) {
	tests := []struct {
		name                string
		singleFirst, rev    bool
		spread              int
		wantLeft, wantRight int
	}{
		{"forward", false, false, 1, 2, 3},
		{"forward cover", true, false, 0, -1, 0},
		{"forward cover second", true, false, 1, 1, 2},
		{"reverse", false, true, 1, 3, 2},
		{"reverse cover", true, true, 0, 0, -1},
		{"reverse cover second", true, true, 1, 2, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sp := &SpreadProvider{Source: bookPages(t, 6), SingleFirst: tt.singleFirst, Reverse: tt.rev}
			if got := sp.LeftIndex(tt.spread); got != tt.wantLeft {
				t.Errorf("LeftIndex = %d, want %d", got, tt.wantLeft)
			}
			if got := sp.RightIndex(tt.spread); got != tt.wantRight {
				t.Errorf("RightIndex = %d, want %d", got, tt.wantRight)
			}
		})
	}
}

func TestSpreadOf(t *testing.T) {
	sp := &SpreadProvider{Source: bookPages(t, 6), SingleFirst: true}
	for p := 0; p < 6; p++ {
		s := sp.SpreadOf(p)
		if sp.LeftIndex(s) != p && sp.RightIndex(s) != p {
			t.Errorf("page %d not shown on spread %d", p, s)
		}
	}
}

func TestSpreadSizePolicies(t *testing.T) {
	l := Size{Width: 100, Height: 200}
	r := Size{Width: 120, Height: 150}
	if got := SmallerFit.SpreadSize(l, r); got != (Size{Width: 200, Height: 150}) {
		t.Errorf("SmallerFit = %+v", got)
	}
	if got := LargerFit.SpreadSize(l, r); got != (Size{Width: 240, Height: 200}) {
		t.Errorf("LargerFit = %+v", got)
	}
}

func TestSpreadSizeLonePage(t *testing.T) {
	src := bookPages(t, 3)
	sp := &SpreadProvider{Source: src}
	if got, ok := sp.Size(1); !ok || got != (Size{Width: 100, Height: 150}) {
		t.Fatalf("lone page size = %+v, %v", got, ok)
	}
	sp.UsePlaceholder = true
	if got, ok := sp.Size(1); !ok || got != (Size{Width: 200, Height: 150}) {
		t.Fatalf("placeholder spread size = %+v, %v", got, ok)
	}
	if _, ok := sp.Size(2); ok {
		t.Fatalf("size beyond count should fail")
	}
}

func TestSpreadPageMergesLinks(t *testing.T) {
	src := bookPages(t, 4)
	sp := &SpreadProvider{Source: src}
	p, err := sp.Page(context.Background(), 1)
	if err != nil {
		t.Fatalf("Page: %v", err)
	}
	if p.Size != (Size{Width: 200, Height: 150}) {
		t.Fatalf("spread size = %+v", p.Size)
	}
	l, ok := p.HitTest(coords.Point{X: 15, Y: 15})
	if !ok || l.Target() != "page://2" {
		t.Fatalf("left hit = %v, %v", l, ok)
	}
	r, ok := p.HitTest(coords.Point{X: 115, Y: 15})
	if !ok || r.Target() != "page://3" {
		t.Fatalf("right hit = %v, %v", r, ok)
	}
	if r.Bounds() != coords.NewRect(110, 10, 120, 20) {
		t.Fatalf("right bounds = %+v", r.Bounds())
	}

	orig := src[3].Links.Links()[0]
	if orig.Bounds() != coords.NewRect(10, 10, 20, 20) {
		t.Fatalf("source page links were mutated: %+v", orig.Bounds())
	}
}

func TestSpreadPageReverse(t *testing.T) {
	sp := &SpreadProvider{Source: bookPages(t, 4), Reverse: true}
	p, err := sp.Page(context.Background(), 0)
	if err != nil {
		t.Fatalf("Page: %v", err)
	}
	if l, ok := p.HitTest(coords.Point{X: 15, Y: 15}); !ok || l.Target() != "page://1" {
		t.Fatalf("reverse left = %v", l)
	}
	if l, ok := p.HitTest(coords.Point{X: 115, Y: 15}); !ok || l.Target() != "page://0" {
		t.Fatalf("reverse right = %v", l)
	}
}

func TestSpreadPageCoverAndPlaceholder(t *testing.T) {
	src := bookPages(t, 2)
	sp := &SpreadProvider{Source: src, SingleFirst: true}
	p, err := sp.Page(context.Background(), 0)
	if err != nil {
		t.Fatalf("Page: %v", err)
	}
	if p != src[0] {
		t.Fatalf("cover without placeholder should be the source page")
	}

	sp.UsePlaceholder = true
	p, err = sp.Page(context.Background(), 0)
	if err != nil {
		t.Fatalf("Page: %v", err)
	}
	if p.Links.Len() != 1 {
		t.Fatalf("links = %d, want 1", p.Links.Len())
	}
	l, ok := p.HitTest(coords.Point{X: 115, Y: 15})
	if !ok || l.Target() != "page://0" {
		t.Fatalf("cover should sit on the right half: %v, %v", l, ok)
	}
	if _, ok := p.HitTest(coords.Point{X: 15, Y: 15}); ok {
		t.Fatalf("placeholder half must have no links")
	}

	if _, err := sp.Page(context.Background(), 5); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("err = %v, want ErrOutOfRange", err)
	}
}

type failingProvider struct{ SliceProvider }

func (failingProvider) Page(context.Context, int) (*Page, error) { return nil, errors.New("decode failed") }

func TestSpreadPagePropagatesErrors(t *testing.T) {
	sp := &SpreadProvider{Source: failingProvider{bookPages(t, 2)}}
	if _, err := sp.Page(context.Background(), 0); err == nil {
		t.Fatalf("expected load error")
	}
}

func TestParseSpreadSizePolicy(t *testing.T) {
	l := Size{Width: 100, Height: 200}
	r := Size{Width: 120, Height: 150}
	tests := []struct {
		in   string
		want Size
	}{
		{"larger", Size{Width: 240, Height: 200}},
		{"", Size{Width: 240, Height: 200}},
		{" Smaller ", Size{Width: 200, Height: 150}},
	}
	for _, tt := range tests {
		p, err := ParseSpreadSizePolicy(tt.in)
		if err != nil {
			t.Fatalf("ParseSpreadSizePolicy(%q): %v", tt.in, err)
		}
		if got := p.SpreadSize(l, r); got != tt.want {
			t.Errorf("ParseSpreadSizePolicy(%q) sized %+v, want %+v", tt.in, got, tt.want)
		}
	}
	if _, err := ParseSpreadSizePolicy("widest"); err == nil {
		t.Fatalf("expected error for unknown policy")
	}
}
