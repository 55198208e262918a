package extractor

import (
	"context"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/wudi/pagelink/coords"
	"github.com/wudi/pagelink/link"
	"github.com/wudi/pagelink/observability"
)

// ExtractImageMap reads an HTML document and returns a link for every
// rectangular image-map area and every anchor carrying a data-rect
// attribute. Coordinates are "left,top,right,bottom" in page space.
//
// Areas with another shape, missing coordinates or an unusable href are
// skipped.
func (e *Extractor) ExtractImageMap(ctx context.Context, r io.Reader) ([]*link.Link, error) {
	_, span := e.tracer.StartSpan(ctx, observability.SpanExtractHTML)
	defer span.Finish()

	doc, err := html.Parse(r)
	if err != nil {
		span.SetError(err)
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var links []*link.Link
	var walk func(*html.Node) error
	walk = func(n *html.Node) error {
		if n.Type == html.ElementNode {
			if err := ctx.Err(); err != nil {
				return err
			}
			switch n.DataAtom {
			case atom.Area:
				if l := e.areaLink(n); l != nil {
					links = append(links, l)
				}
			case atom.A:
				if l := e.anchorLink(n); l != nil {
					links = append(links, l)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if err := walk(c); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(doc); err != nil {
		span.SetError(err)
		return nil, err
	}

	span.SetTag("links", len(links))
	return links, nil
}

func (e *Extractor) areaLink(n *html.Node) *link.Link {
	shape := strings.ToLower(attr(n, "shape"))
	if shape != "" && shape != "rect" && shape != "rectangle" {
		e.logger.Debug("skipping non-rectangular area", observability.String("shape", shape))
		return nil
	}
	return e.elementLink(n, "coords")
}

func (e *Extractor) anchorLink(n *html.Node) *link.Link {
	if attr(n, "data-rect") == "" {
		return nil
	}
	return e.elementLink(n, "data-rect")
}

func (e *Extractor) elementLink(n *html.Node, rectAttr string) *link.Link {
	href := attr(n, "href")
	rect, err := parseRect(attr(n, rectAttr))
	if err != nil {
		e.logger.Warn("skipping link with bad rectangle",
			observability.String("element", n.Data),
			observability.String("href", href),
			observability.Error("error", err))
		return nil
	}
	target, action, err := e.resolve(href)
	if err == nil {
		var l *link.Link
		if l, err = link.New(action, target, rect); err == nil {
			return l
		}
	}
	e.logger.Warn("skipping link with bad target",
		observability.String("element", n.Data),
		observability.String("href", href),
		observability.Error("error", err))
	return nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return strings.TrimSpace(a.Val)
		}
	}
	return ""
}

// parseRect reads "l,t,r,b". Whitespace around numbers is ignored.
func parseRect(s string) (coords.Rect, error) {
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' || r == '\t' })
	if len(parts) != 4 {
		return coords.Rect{}, fmt.Errorf("want 4 coordinates, got %d in %q", len(parts), s)
	}
	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return coords.Rect{}, fmt.Errorf("coordinate %d: %w", i, err)
		}
		if !finite(f) {
			return coords.Rect{}, fmt.Errorf("coordinate %d: %q is not finite", i, p)
		}
		v[i] = f
	}
	return coords.NewRect(v[0], v[1], v[2], v[3]), nil
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }
