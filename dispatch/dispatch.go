// Package dispatch resolves a tap on a page to a link and hands the link to
// the handler registered for its action.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/wudi/pagelink/coords"
	"github.com/wudi/pagelink/link"
	"github.com/wudi/pagelink/observability"
)

var (
	// ErrNoLink is returned when no link lies under the tapped point.
	ErrNoLink = errors.New("no link at point")
	// ErrNoHandler is returned when the hit link's action has no handler.
	ErrNoHandler = errors.New("no handler for link action")
	// ErrBlocked is returned when the policy refuses a link.
	ErrBlocked = errors.New("link blocked by policy")
)

// HitTester is anything that can resolve a point to its topmost link, such
// as *page.Page or *layout.View.
type HitTester interface {
	HitTest(p coords.Point) (*link.Link, bool)
}

// Handler performs the action of a link.
type Handler interface {
	Handle(ctx context.Context, l *link.Link) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, l *link.Link) error

func (f HandlerFunc) Handle(ctx context.Context, l *link.Link) error { return f(ctx, l) }

// Policy decides whether a link may be activated.
type Policy interface {
	Allow(ctx context.Context, l *link.Link) (bool, error)
}

// Dispatcher routes activated links to handlers by action.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[link.Action]Handler
	policy   Policy
	logger   observability.Logger
	tracer   observability.Tracer
}

// Option defines a configuration option for the Dispatcher.
type Option func(*Dispatcher)

func WithPolicy(p Policy) Option {
	return func(d *Dispatcher) {
		d.policy = p
	}
}

func WithLogger(l observability.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = observability.OrNop(l)
	}
}

func WithTracer(t observability.Tracer) Option {
	return func(d *Dispatcher) {
		if t != nil {
			d.tracer = t
		}
	}
}

func New(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		handlers: make(map[link.Action]Handler),
		logger:   observability.NopLogger{},
		tracer:   observability.NopTracer(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Handle registers h for action, replacing any previous handler.
func (d *Dispatcher) Handle(action link.Action, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[action] = h
}

// Tap hit-tests p against t and dispatches the topmost link. The link that
// was hit is returned even when dispatch fails.
func (d *Dispatcher) Tap(ctx context.Context, t HitTester, p coords.Point) (*link.Link, error) {
	l, ok := t.HitTest(p)
	if !ok {
		return nil, fmt.Errorf("%w: (%g, %g)", ErrNoLink, p.X, p.Y)
	}
	return l, d.Dispatch(ctx, l)
}

// Dispatch runs the policy, then the handler registered for l's action.
func (d *Dispatcher) Dispatch(ctx context.Context, l *link.Link) (err error) {
	ctx, span := d.tracer.StartSpan(ctx, observability.SpanDispatch)
	span.SetTag("action", l.Action().String())
	defer func() {
		if err != nil {
			span.SetError(err)
		}
		span.Finish()
	}()

	log := d.logger.With(observability.Stringer("action", l.Action()), observability.String("target", l.Target()))

	if d.policy != nil {
		allowed, err := d.policy.Allow(ctx, l)
		if err != nil {
			log.Error("link policy failed", observability.Error("error", err))
			return fmt.Errorf("link policy: %w", err)
		}
		if !allowed {
			log.Info("link blocked")
			return fmt.Errorf("%w: %s", ErrBlocked, l.Target())
		}
	}

	d.mu.RLock()
	h := d.handlers[l.Action()]
	d.mu.RUnlock()
	if h == nil {
		log.Warn("no handler registered")
		return fmt.Errorf("%w: %s", ErrNoHandler, l.Action())
	}

	if err := h.Handle(ctx, l); err != nil {
		log.Error("link handler failed", observability.Error("error", err))
		return fmt.Errorf("handle %s: %w", l.Action(), err)
	}
	log.Debug("link dispatched")
	return nil
}
