package extractor

import (
	"context"
	"fmt"
	"net/url"

	"github.com/wudi/pagelink/coords"
	"github.com/wudi/pagelink/link"
	"github.com/wudi/pagelink/observability"
)

// Annotation is a page annotation as read from a PDF page's /Annots array.
// Rect uses PDF user space: [llx lly urx ury] with the origin bottom-left.
type Annotation struct {
	Page    int
	Subtype string
	Rect    [4]float64
	Flags   int
	// Action dictionary /S entry: URI, GoTo, GoToR, Launch or Named.
	ActionType string
	URI        string
	// Dest is a named destination. DestPage is a 1-based page number, 0
	// when the destination is not a page.
	Dest     string
	DestPage int
	// File is the /F entry of GoToR and Launch actions.
	File  string
	Named string
}

// Annotation flag bits used to drop links a viewer would not show.
const (
	FlagInvisible = 1 << 0
	FlagHidden    = 1 << 1
)

// ExtractAnnotations turns the Link annotations of one page into link
// regions in top-left page space. Other subtypes, hidden annotations and
// annotations without a usable target are skipped.
func (e *Extractor) ExtractAnnotations(ctx context.Context, pageHeight float64, annots []Annotation) ([]*link.Link, error) {
	_, span := e.tracer.StartSpan(ctx, observability.SpanExtractAnnotations)
	defer span.Finish()

	var links []*link.Link
	for i, a := range annots {
		if err := ctx.Err(); err != nil {
			span.SetError(err)
			return nil, err
		}
		if a.Subtype != "Link" || a.Flags&(FlagHidden|FlagInvisible) != 0 {
			continue
		}
		action, target, err := annotationTarget(a)
		if err == nil && !(finite(a.Rect[0]) && finite(a.Rect[1]) && finite(a.Rect[2]) && finite(a.Rect[3])) {
			err = fmt.Errorf("rect %v is not finite", a.Rect)
		}
		if err == nil {
			r := coords.FromPDF(a.Rect[0], a.Rect[1], a.Rect[2], a.Rect[3], pageHeight)
			var l *link.Link
			if l, err = link.New(action, target, r); err == nil {
				links = append(links, l)
				continue
			}
		}
		e.logger.Warn("skipping link annotation",
			observability.Int("page", a.Page),
			observability.Int("annotation", i),
			observability.String("action", a.ActionType),
			observability.Error("error", err))
	}
	span.SetTag("links", len(links))
	return links, nil
}

func annotationTarget(a Annotation) (link.Action, string, error) {
	switch a.ActionType {
	case "URI", "":
		if a.URI != "" {
			return link.OpenExternal, a.URI, nil
		}
		if a.ActionType == "" {
			return destTarget(a)
		}
	case "GoTo":
		return destTarget(a)
	case "GoToR":
		if a.File != "" {
			u := &url.URL{Scheme: "file", Path: a.File}
			if a.Dest != "" {
				u.Fragment = a.Dest
			}
			return link.OpenExternal, u.String(), nil
		}
	case "Launch":
		if a.File != "" {
			return link.Launch, (&url.URL{Scheme: "file", Path: a.File}).String(), nil
		}
	case "Named":
		if a.Named != "" {
			return link.Named, (&url.URL{Scheme: "named", Opaque: url.PathEscape(a.Named)}).String(), nil
		}
	default:
		return 0, "", fmt.Errorf("%w: unsupported action %q", link.ErrInvalidTarget, a.ActionType)
	}
	return 0, "", fmt.Errorf("%w: %s action without target", link.ErrInvalidTarget, a.ActionType)
}

// destTarget handles /Dest entries and GoTo actions.
func destTarget(a Annotation) (link.Action, string, error) {
	switch {
	case a.Dest != "":
		return link.Jump, (&url.URL{Scheme: "dest", Opaque: url.PathEscape(a.Dest)}).String(), nil
	case a.DestPage > 0:
		return link.Navigate, fmt.Sprintf("page://%d", a.DestPage), nil
	}
	return 0, "", fmt.Errorf("%w: destination missing", link.ErrInvalidTarget)
}
