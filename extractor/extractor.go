// Package extractor discovers link regions in source documents: HTML image
// maps, Markdown, PDF link annotations and JSON manifests.
//
// Malformed links are skipped and reported to the logger; only unreadable
// input fails an extraction.
package extractor

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/wudi/pagelink/link"
	"github.com/wudi/pagelink/observability"
)

// Extractor carries the settings shared by every extraction routine.
type Extractor struct {
	base   *url.URL
	logger observability.Logger
	tracer observability.Tracer
}

// Option defines a configuration option for the Extractor.
type Option func(*Extractor)

// WithBase resolves relative link targets against base.
func WithBase(base *url.URL) Option {
	return func(e *Extractor) {
		e.base = base
	}
}

func WithLogger(l observability.Logger) Option {
	return func(e *Extractor) {
		e.logger = observability.OrNop(l)
	}
}

func WithTracer(t observability.Tracer) Option {
	return func(e *Extractor) {
		if t != nil {
			e.tracer = t
		}
	}
}

func New(opts ...Option) *Extractor {
	e := &Extractor{
		logger: observability.NopLogger{},
		tracer: observability.NopTracer(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// resolve parses href, resolves it against the base URL when relative, and
// reports the action implied by the result.
func (e *Extractor) resolve(href string) (string, link.Action, error) {
	href = strings.TrimSpace(href)
	if href == "" {
		return "", 0, fmt.Errorf("%w: empty", link.ErrInvalidTarget)
	}
	u, err := url.Parse(href)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %v", link.ErrInvalidTarget, err)
	}
	if u.Scheme == "" {
		switch {
		case u.Fragment != "" && u.Path == "" && u.Host == "" && u.RawQuery == "":
			u = &url.URL{Scheme: "dest", Opaque: url.PathEscape(u.Fragment)}
		case e.base != nil:
			u = e.base.ResolveReference(u)
		}
	}
	return u.String(), Classify(u), nil
}

// Classify infers the link action from a target's scheme.
//
//	page://N            Navigate
//	dest:name, #name    Jump
//	file:///path        Launch
//	named:Command       Named
//	anything else       OpenExternal
func Classify(u *url.URL) link.Action {
	if u == nil {
		return link.OpenExternal
	}
	switch strings.ToLower(u.Scheme) {
	case "page":
		return link.Navigate
	case "dest":
		return link.Jump
	case "file":
		return link.Launch
	case "named":
		return link.Named
	case "":
		if u.Fragment != "" && u.Path == "" && u.Host == "" {
			return link.Jump
		}
	}
	return link.OpenExternal
}
