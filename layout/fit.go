package layout

import (
	"fmt"
	"math"
	"strings"

	"github.com/wudi/pagelink/page"
)

// FitMode chooses how a page is scaled into the canvas before zooming.
type FitMode int

const (
	// FitPage shows the whole page.
	FitPage FitMode = iota
	// FitWidth fills the canvas width.
	FitWidth
	// FitHeight fills the canvas height.
	FitHeight
)

func (m FitMode) String() string {
	switch m {
	case FitWidth:
		return "width"
	case FitHeight:
		return "height"
	default:
		return "page"
	}
}

// ParseFitMode accepts "page", "width" or "height".
func ParseFitMode(s string) (FitMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "page", "auto", "":
		return FitPage, nil
	case "width":
		return FitWidth, nil
	case "height":
		return FitHeight, nil
	}
	return FitPage, fmt.Errorf("unknown fit mode %q", s)
}

// Scale returns the factor that fits content into a canvas of w by h.
// A zero content dimension yields 0.
func (m FitMode) Scale(content page.Size, w, h float64) float64 {
	sx := ratio(w, content.Width)
	sy := ratio(h, content.Height)
	switch m {
	case FitWidth:
		return sx
	case FitHeight:
		return sy
	default:
		return math.Min(sx, sy)
	}
}

func ratio(canvas, content float64) float64 {
	if content <= 0 {
		return 0
	}
	return canvas / content
}

// Zoom limits applied on top of the fit scale.
const (
	MinZoom     = 1.0
	MaxZoom     = 5.0
	DefaultZoom = MinZoom
)

// ClampZoom restricts z to [MinZoom, MaxZoom].
func ClampZoom(z float64) float64 {
	if math.IsNaN(z) {
		return DefaultZoom
	}
	return math.Min(math.Max(z, MinZoom), MaxZoom)
}
