package page

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/wudi/pagelink/link"
)

// SpreadSizePolicy computes the size of a two-page spread from its halves.
type SpreadSizePolicy interface {
	SpreadSize(left, right Size) Size
}

// SpreadSizeFunc adapts a function to SpreadSizePolicy.
type SpreadSizeFunc func(left, right Size) Size

func (f SpreadSizeFunc) SpreadSize(left, right Size) Size { return f(left, right) }

var (
	// SmallerFit sizes the spread to twice the narrower page and the shorter height.
	SmallerFit SpreadSizePolicy = SpreadSizeFunc(func(l, r Size) Size {
		return Size{Width: math.Min(l.Width, r.Width) * 2, Height: math.Min(l.Height, r.Height)}
	})
	// LargerFit sizes the spread to twice the wider page and the taller height.
	LargerFit SpreadSizePolicy = SpreadSizeFunc(func(l, r Size) Size {
		return Size{Width: math.Max(l.Width, r.Width) * 2, Height: math.Max(l.Height, r.Height)}
	})
)

// ParseSpreadSizePolicy accepts "larger" or "smaller".
func ParseSpreadSizePolicy(s string) (SpreadSizePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "larger", "":
		return LargerFit, nil
	case "smaller":
		return SmallerFit, nil
	}
	return nil, fmt.Errorf("unknown spread size policy %q", s)
}

// SpreadProvider pairs the pages of Source into two-page spreads.
//
// With SingleFirst the first page stands alone (a cover). Reverse swaps the
// sides for right-to-left reading. When one side of a spread has no page,
// UsePlaceholder fills it with a blank page of the same size; otherwise the
// lone page is served unpaired.
type SpreadProvider struct {
	Source         Provider
	SingleFirst    bool
	Reverse        bool
	UsePlaceholder bool
	// SizePolicy defaults to LargerFit.
	SizePolicy SpreadSizePolicy
}

func (sp *SpreadProvider) policy() SpreadSizePolicy {
	if sp.SizePolicy == nil {
		return LargerFit
	}
	return sp.SizePolicy
}

func (sp *SpreadProvider) Count() int {
	n := sp.Source.Count()
	count := n/2 + n%2
	if sp.SingleFirst && n%2 == 0 {
		count++
	}
	return count
}

// LeftIndex returns the source index shown on the left of spread i. The
// result may fall outside the source range, meaning the side is empty.
func (sp *SpreadProvider) LeftIndex(i int) int {
	idx := i * 2
	if sp.Reverse {
		if !sp.SingleFirst {
			idx++
		}
	} else if sp.SingleFirst {
		idx--
	}
	return idx
}

// RightIndex returns the source index shown on the right of spread i.
func (sp *SpreadProvider) RightIndex(i int) int {
	idx := i * 2
	if sp.Reverse {
		if sp.SingleFirst {
			idx--
		}
	} else if !sp.SingleFirst {
		idx++
	}
	return idx
}

// SpreadOf returns the spread index showing source page p.
func (sp *SpreadProvider) SpreadOf(p int) int {
	if sp.SingleFirst {
		p++
	}
	return p / 2
}

func (sp *SpreadProvider) inSource(idx int) bool {
	return idx >= 0 && idx < sp.Source.Count()
}

func (sp *SpreadProvider) Size(i int) (Size, bool) {
	if i < 0 || i >= sp.Count() {
		return Size{}, false
	}
	var left, right *Size
	if idx := sp.LeftIndex(i); sp.inSource(idx) {
		s, ok := sp.Source.Size(idx)
		if !ok {
			return Size{}, false
		}
		left = &s
	}
	if idx := sp.RightIndex(i); sp.inSource(idx) {
		s, ok := sp.Source.Size(idx)
		if !ok {
			return Size{}, false
		}
		right = &s
	}
	switch {
	case left == nil && right == nil:
		return Size{}, false
	case left == nil:
		if !sp.UsePlaceholder {
			return *right, true
		}
		left = right
	case right == nil:
		if !sp.UsePlaceholder {
			return *left, true
		}
		right = left
	}
	return sp.policy().SpreadSize(*left, *right), true
}

// Page loads both halves of spread i and merges them. Links of the right
// half are shifted by the width of the left half. The links of the source
// pages are copied, never modified.
func (sp *SpreadProvider) Page(ctx context.Context, i int) (*Page, error) {
	if i < 0 || i >= sp.Count() {
		return nil, fmt.Errorf("%w: spread %d of %d", ErrOutOfRange, i, sp.Count())
	}
	var left, right *Page
	var err error
	if idx := sp.LeftIndex(i); sp.inSource(idx) {
		if left, err = sp.Source.Page(ctx, idx); err != nil {
			return nil, fmt.Errorf("load left page %d: %w", idx, err)
		}
	}
	if idx := sp.RightIndex(i); sp.inSource(idx) {
		if right, err = sp.Source.Page(ctx, idx); err != nil {
			return nil, fmt.Errorf("load right page %d: %w", idx, err)
		}
	}
	switch {
	case left == nil && right == nil:
		return nil, fmt.Errorf("%w: spread %d is empty", ErrOutOfRange, i)
	case left == nil:
		if !sp.UsePlaceholder {
			return right, nil
		}
		left = NewPlaceholder(right)
	case right == nil:
		if !sp.UsePlaceholder {
			return left, nil
		}
		right = NewPlaceholder(left)
	}
	return sp.merge(i, left, right), nil
}

func (sp *SpreadProvider) merge(i int, left, right *Page) *Page {
	var links []*link.Link
	if left.Links != nil {
		links = append(links, left.Links.Links()...)
	}
	if right.Links != nil {
		dx := left.Size.Width
		for _, l := range right.Links.Links() {
			links = append(links, l.WithBounds(l.Bounds().Translate(dx, 0)))
		}
	}
	return &Page{
		Index: i,
		Size:  sp.policy().SpreadSize(left.Size, right.Size),
		Links: NewLinkSet(links...),
	}
}
