// Package link defines the clickable region of a rendered page: an action,
// the resource it points to, and the rectangle in which it can be hit.
//
// The same Link type is used for document-level links, whose rectangle may
// still be empty, and for links placed on a laid-out page.
package link

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/wudi/pagelink/coords"
)

var (
	// ErrInvalidTarget is returned when a target cannot be parsed as an
	// absolute resource locator.
	ErrInvalidTarget = errors.New("invalid link target")
	// ErrInvalidAction is returned for an action outside the known set.
	ErrInvalidAction = errors.New("invalid link action")
)

// Link is a clickable region bound to an action and a target.
//
// Action and target never change after New. The bounds are replaced by
// SetBounds when page geometry changes; Link does no locking of its own, so
// concurrent writers must be serialized by the owner (see page.LinkSet).
type Link struct {
	action Action
	target string
	url    *url.URL
	bounds coords.Rect
}

// New validates target and returns a link. No link is returned on error.
func New(action Action, target string, bounds coords.Rect) (*Link, error) {
	if !action.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidAction, uint8(action))
	}
	u, err := parseTarget(target)
	if err != nil {
		return nil, err
	}
	return &Link{
		action: action,
		target: target,
		url:    u,
		bounds: bounds.Normalize(),
	}, nil
}

// MustNew is like New but panics on error. Intended for tests and fixed tables.
func MustNew(action Action, target string, bounds coords.Rect) *Link {
	l, err := New(action, target, bounds)
	if err != nil {
		panic(err)
	}
	return l
}

func parseTarget(target string) (*url.URL, error) {
	if strings.TrimSpace(target) == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidTarget)
	}
	u, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTarget, err)
	}
	if u.Scheme == "" {
		return nil, fmt.Errorf("%w: %q has no scheme", ErrInvalidTarget, target)
	}
	return u, nil
}

func (l *Link) Action() Action { return l.action }

// Target returns the target exactly as it was supplied to New.
func (l *Link) Target() string { return l.target }

// URL returns a copy of the parsed target.
func (l *Link) URL() *url.URL {
	u := *l.url
	if l.url.User != nil {
		user := *l.url.User
		u.User = &user
	}
	return &u
}

func (l *Link) Bounds() coords.Rect { return l.bounds }

// SetBounds replaces the bounding rectangle in place. Inverted edges are
// swapped so the rectangle never has negative area.
func (l *Link) SetBounds(r coords.Rect) { l.bounds = r.Normalize() }

// WithBounds returns a copy of l with r as its bounding rectangle.
func (l *Link) WithBounds(r coords.Rect) *Link {
	c := *l
	c.bounds = r.Normalize()
	return &c
}

// Clone returns an independent copy of l.
func (l *Link) Clone() *Link { return l.WithBounds(l.bounds) }

// Equal reports whether both links have the same action, target and bounds.
func (l *Link) Equal(o *Link) bool {
	if l == nil || o == nil {
		return l == o
	}
	return l.action == o.action && l.target == o.target && l.bounds == o.bounds
}

// HitTest reports whether p lies inside the bounds, edges included.
func (l *Link) HitTest(p coords.Point) bool { return l.bounds.Contains(p) }

func (l *Link) String() string {
	b := l.bounds
	return fmt.Sprintf("%s %s [%g %g %g %g]", l.action, l.target, b.Left, b.Top, b.Right, b.Bottom)
}

type jsonLink struct {
	Action Action     `json:"action"`
	Target string     `json:"target"`
	Rect   [4]float64 `json:"rect"`
}

func (l *Link) MarshalJSON() ([]byte, error) {
	b := l.bounds
	return json.Marshal(jsonLink{
		Action: l.action,
		Target: l.target,
		Rect:   [4]float64{b.Left, b.Top, b.Right, b.Bottom},
	})
}

func (l *Link) UnmarshalJSON(data []byte) error {
	var in jsonLink
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	parsed, err := New(in.Action, in.Target, coords.NewRect(in.Rect[0], in.Rect[1], in.Rect[2], in.Rect[3]))
	if err != nil {
		return err
	}
	*l = *parsed
	return nil
}

// PageNumber returns N for a page://N target. Page numbers start at 1.
func (l *Link) PageNumber() (int, bool) {
	if l.url.Scheme != "page" {
		return 0, false
	}
	n, err := strconv.Atoi(l.url.Host)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}
