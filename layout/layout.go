// Package layout maps page space onto a canvas and keeps the link regions
// of laid-out pages in step with zoom, fit and rotation changes.
package layout

import (
	"github.com/wudi/pagelink/coords"
	"github.com/wudi/pagelink/link"
	"github.com/wudi/pagelink/observability"
	"github.com/wudi/pagelink/page"
)

// Engine holds the current view parameters.
type Engine struct {
	Fit          FitMode
	CanvasWidth  float64
	CanvasHeight float64
	// Rotation in clockwise quarter turns, normalised to 0..3.
	Rotation int
	zoom     float64
	logger   observability.Logger
}

// Option defines a configuration option for the Engine.
type Option func(*Engine)

func WithFitMode(m FitMode) Option {
	return func(e *Engine) {
		e.Fit = m
	}
}

// WithCanvas sets the canvas size in device pixels.
func WithCanvas(width, height float64) Option {
	return func(e *Engine) {
		e.CanvasWidth = width
		e.CanvasHeight = height
	}
}

func WithZoom(z float64) Option {
	return func(e *Engine) {
		e.zoom = ClampZoom(z)
	}
}

func WithRotation(quarterTurns int) Option {
	return func(e *Engine) {
		e.Rotation = normaliseTurns(quarterTurns)
	}
}

func WithLogger(l observability.Logger) Option {
	return func(e *Engine) {
		e.logger = observability.OrNop(l)
	}
}

// NewEngine creates an engine for an 800x1200 canvas at FitPage and zoom 1
// unless options say otherwise.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		Fit:          FitPage,
		CanvasWidth:  800,
		CanvasHeight: 1200,
		zoom:         DefaultZoom,
		logger:       observability.NopLogger{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func normaliseTurns(q int) int { return ((q % 4) + 4) % 4 }

func (e *Engine) Zoom() float64 { return e.zoom }

// SetZoom clamps and stores z, returning the value actually used.
func (e *Engine) SetZoom(z float64) float64 {
	e.zoom = ClampZoom(z)
	return e.zoom
}

func (e *Engine) Rotate(quarterTurns int) {
	e.Rotation = normaliseTurns(e.Rotation + quarterTurns)
}

// rotated returns the page size as seen after rotation.
func (e *Engine) rotated(s page.Size) page.Size {
	if e.Rotation%2 == 1 {
		return page.Size{Width: s.Height, Height: s.Width}
	}
	return s
}

// Scale returns the combined fit and zoom factor for a page of size s.
func (e *Engine) Scale(s page.Size) float64 {
	return e.Fit.Scale(e.rotated(s), e.CanvasWidth, e.CanvasHeight) * e.zoom
}

// Transform maps page space of a page with size s onto the canvas. The page
// is centred on the canvas.
func (e *Engine) Transform(s page.Size) coords.Matrix {
	r := e.rotated(s)
	scale := e.Scale(s)
	dx := (e.CanvasWidth - r.Width*scale) / 2
	dy := (e.CanvasHeight - r.Height*scale) / 2
	return coords.QuarterTurn(e.Rotation, s.Width, s.Height).
		Multiply(coords.Scale(scale, scale)).
		Multiply(coords.Translate(dx, dy))
}

// CanvasToPage maps a canvas point back into page space.
func (e *Engine) CanvasToPage(s page.Size, p coords.Point) (coords.Point, error) {
	inv, err := e.Transform(s).Inverse()
	if err != nil {
		return coords.Point{}, err
	}
	return inv.Transform(p), nil
}

// View is a page laid out on the canvas. Links holds canvas-space copies of
// the source links; the source page is never modified.
type View struct {
	Source    *page.Page
	Transform coords.Matrix
	Links     *page.LinkSet
}

// Layout lays out p with the current parameters.
func (e *Engine) Layout(p *page.Page) *View {
	v := &View{Source: p, Links: page.NewLinkSet()}
	e.Refresh(v)
	return v
}

// Refresh recomputes the canvas rectangles of v after the engine parameters
// changed. Readers of v.Links see either the old or the new layout.
func (e *Engine) Refresh(v *View) {
	m := e.Transform(v.Source.Size)
	v.Transform = m
	var links []*link.Link
	if v.Source.Links != nil {
		links = v.Source.Links.Links()
	}
	for i, l := range links {
		links[i] = l.WithBounds(m.TransformRect(l.Bounds()))
	}
	v.Links.Replace(links...)
	e.logger.Debug("page laid out",
		observability.Int("page", v.Source.Index),
		observability.Int("links", len(links)),
		observability.Float64("zoom", e.zoom),
		observability.Int("rotation", e.Rotation),
		observability.Stringer("fit", e.Fit),
	)
}

// HitTest resolves a canvas point to the topmost link of the view.
func (v *View) HitTest(p coords.Point) (*link.Link, bool) { return v.Links.HitTest(p) }
