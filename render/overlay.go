// Package render draws link regions over a page image for debugging.
package render

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"

	"github.com/wudi/pagelink/coords"
	"github.com/wudi/pagelink/link"
)

// Options controls how links are drawn.
type Options struct {
	// Stroke is the outline colour. Defaults to opaque red.
	Stroke color.Color
	// Width is the outline thickness in pixels. Defaults to 2.
	Width int
	// Transform maps page space to dst pixels. Defaults to a scale that
	// stretches src over dst.
	Transform *coords.Matrix
}

func (o Options) withDefaults() Options {
	if o.Stroke == nil {
		o.Stroke = color.NRGBA{R: 0xff, A: 0xff}
	}
	if o.Width <= 0 {
		o.Width = 2
	}
	return o
}

// Overlay scales src into dst and outlines every link rectangle. Link
// rectangles are in the page space of src, one unit per source pixel,
// unless opts.Transform says otherwise.
func Overlay(dst draw.Image, src image.Image, links []*link.Link, opts Options) {
	opts = opts.withDefaults()
	db := dst.Bounds()
	m := coords.Identity()
	if src != nil {
		sb := src.Bounds()
		draw.CatmullRom.Scale(dst, db, src, sb, draw.Over, nil)
		if sb.Dx() > 0 && sb.Dy() > 0 {
			m = coords.Scale(float64(db.Dx())/float64(sb.Dx()), float64(db.Dy())/float64(sb.Dy()))
		}
	}
	if opts.Transform != nil {
		m = *opts.Transform
	}
	m = m.Multiply(coords.Translate(float64(db.Min.X), float64(db.Min.Y)))

	fill := image.NewUniform(opts.Stroke)
	for _, l := range links {
		r := toPixels(m.TransformRect(l.Bounds())).Intersect(db)
		if r.Empty() {
			continue
		}
		strokeRect(dst, r, fill, opts.Width)
	}
}

func toPixels(r coords.Rect) image.Rectangle {
	return image.Rect(
		int(math.Floor(r.Left)), int(math.Floor(r.Top)),
		int(math.Ceil(r.Right)), int(math.Ceil(r.Bottom)),
	)
}

func strokeRect(dst draw.Image, r image.Rectangle, src image.Image, w int) {
	if w*2 >= r.Dx() || w*2 >= r.Dy() {
		draw.Draw(dst, r, src, image.Point{}, draw.Over)
		return
	}
	edges := []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+w),
		image.Rect(r.Min.X, r.Max.Y-w, r.Max.X, r.Max.Y),
		image.Rect(r.Min.X, r.Min.Y+w, r.Min.X+w, r.Max.Y-w),
		image.Rect(r.Max.X-w, r.Min.Y+w, r.Max.X, r.Max.Y-w),
	}
	for _, e := range edges {
		draw.Draw(dst, e, src, image.Point{}, draw.Over)
	}
}
