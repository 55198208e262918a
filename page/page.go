// Package page holds laid-out pages, the links they own, and providers that
// hand pages to a reader one at a time or paired into two-page spreads.
package page

import (
	"context"
	"errors"
	"fmt"

	"github.com/wudi/pagelink/coords"
	"github.com/wudi/pagelink/link"
)

// ErrOutOfRange is returned for a page index outside [0, Count()).
var ErrOutOfRange = errors.New("page index out of range")

// Size is a page size in page-space units.
type Size struct {
	Width, Height float64
}

// Rect returns the page area anchored at the origin.
func (s Size) Rect() coords.Rect { return coords.Rect{Right: s.Width, Bottom: s.Height} }

// Page is one page of a document together with its link regions.
type Page struct {
	Index int
	Size  Size
	Links *LinkSet
	// Placeholder marks a blank stand-in used to complete a spread.
	Placeholder bool
}

// New returns a page owning copies of links.
func New(index int, size Size, links ...*link.Link) *Page {
	return &Page{Index: index, Size: size, Links: NewLinkSet(links...)}
}

// NewPlaceholder returns an empty page sized like ref. It has no links.
func NewPlaceholder(ref *Page) *Page {
	return &Page{Index: -1, Size: ref.Size, Links: NewLinkSet(), Placeholder: true}
}

// HitTest resolves a page-space point to the topmost link under it.
func (p *Page) HitTest(pt coords.Point) (*link.Link, bool) {
	if p.Links == nil {
		return nil, false
	}
	return p.Links.HitTest(pt)
}

// Provider hands out pages by index.
type Provider interface {
	Count() int
	// Size reports the size of page i without loading it.
	Size(i int) (Size, bool)
	// Page loads page i. Loading may be slow; implementations honour ctx.
	Page(ctx context.Context, i int) (*Page, error)
}

// SliceProvider serves pages from memory.
type SliceProvider []*Page

func (s SliceProvider) Count() int { return len(s) }

func (s SliceProvider) Size(i int) (Size, bool) {
	if i < 0 || i >= len(s) || s[i] == nil {
		return Size{}, false
	}
	return s[i].Size, true
}

func (s SliceProvider) Page(ctx context.Context, i int) (*Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if i < 0 || i >= len(s) || s[i] == nil {
		return nil, fmt.Errorf("%w: %d of %d", ErrOutOfRange, i, len(s))
	}
	return s[i], nil
}
