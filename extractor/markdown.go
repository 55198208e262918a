package extractor

import (
	"context"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/wudi/pagelink/coords"
	"github.com/wudi/pagelink/link"
	"github.com/wudi/pagelink/observability"
)

// ExtractMarkdown returns the links of a Markdown document in reading order.
// Markdown carries no geometry, so every link starts with an empty rectangle
// that the layout engine fills in once the text has been placed.
func (e *Extractor) ExtractMarkdown(ctx context.Context, source []byte) ([]*link.Link, error) {
	_, span := e.tracer.StartSpan(ctx, observability.SpanExtractMarkdown)
	defer span.Finish()

	doc := goldmark.New().Parser().Parse(text.NewReader(source))

	var links []*link.Link
	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if err := ctx.Err(); err != nil {
			return ast.WalkStop, err
		}
		var href string
		switch node := n.(type) {
		case *ast.Link:
			href = string(node.Destination)
		case *ast.AutoLink:
			href = string(node.URL(source))
			if node.AutoLinkType == ast.AutoLinkEmail {
				href = "mailto:" + href
			}
		default:
			return ast.WalkContinue, nil
		}
		if l := e.logicalLink(href); l != nil {
			links = append(links, l)
		}
		return ast.WalkSkipChildren, nil
	})
	if err != nil {
		span.SetError(err)
		return nil, fmt.Errorf("walk markdown: %w", err)
	}
	span.SetTag("links", len(links))
	return links, nil
}

func (e *Extractor) logicalLink(href string) *link.Link {
	target, action, err := e.resolve(href)
	if err == nil {
		var l *link.Link
		if l, err = link.New(action, target, coords.Rect{}); err == nil {
			return l
		}
	}
	e.logger.Warn("skipping markdown link", observability.String("href", href), observability.Error("error", err))
	return nil
}
