package observability

import (
	"context"
	"sync"
	"time"
)

type logTracer struct {
	logger Logger
}

// NewLogTracer returns a Tracer that writes one debug line per finished span
// with its duration, tags and error.
func NewLogTracer(l Logger) Tracer {
	return logTracer{logger: OrNop(l)}
}

func (t logTracer) StartSpan(ctx context.Context, name string) (context.Context, Span) {
	return ctx, &logSpan{logger: t.logger, name: name, start: time.Now()}
}

type logSpan struct {
	mu     sync.Mutex
	logger Logger
	name   string
	start  time.Time
	tags   []Field
	err    error
	done   bool
}

func (s *logSpan) SetTag(key string, value interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tags = append(s.tags, field{key, value})
}

func (s *logSpan) SetError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Finish logs the span. Later calls do nothing.
func (s *logSpan) Finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return
	}
	s.done = true
	fields := []Field{
		String("span", s.name),
		Int64("duration_us", time.Since(s.start).Microseconds()),
		Bool("failed", s.err != nil),
	}
	if s.err != nil {
		fields = append(fields, Error("error", s.err))
	}
	s.logger.Debug("span finished", append(fields, s.tags...)...)
}
