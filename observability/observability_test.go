package observability

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestNopTracer(t *testing.T) {
	tracer := NopTracer()
	ctx := context.Background()
	ctx2, span := tracer.StartSpan(ctx, SpanDispatch)
	if ctx2 != ctx {
		t.Fatalf("nop tracer should return same context")
	}
	span.SetTag("key", "value")
	span.SetError(nil)
	span.Finish()
}

func TestOrNop(t *testing.T) {
	if _, ok := OrNop(nil).(NopLogger); !ok {
		t.Fatalf("nil logger should become NopLogger")
	}
	l := NewSlogLogger(nil)
	if OrNop(l) != l {
		t.Fatalf("non-nil logger should be returned as is")
	}
}

func TestSlogLogger(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	log := NewSlogLogger(base).With(String("component", "extractor"))

	log.Debug("hidden")
	log.Warn("skipped link", String("href", "::"), Int("index", 3), Float64("x", 1.5), Error("err", errors.New("boom")))

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug line should be filtered: %s", out)
	}
	for _, want := range []string{"level=WARN", "component=extractor", "index=3", "x=1.5", "err=boom", "skipped link"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %s", want, out)
		}
	}
}

func TestLogTracer(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	tracer := NewLogTracer(NewSlogLogger(base))

	_, span := tracer.StartSpan(context.Background(), SpanExtractHTML)
	span.SetTag("links", 4)
	span.SetError(errors.New("bad area"))
	span.Finish()
	span.Finish()

	out := buf.String()
	if n := strings.Count(out, "span finished"); n != 1 {
		t.Fatalf("span logged %d times, want 1: %s", n, out)
	}
	for _, want := range []string{"span=" + SpanExtractHTML, "duration_us=", "failed=true", `error="bad area"`, "links=4"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %s", want, out)
		}
	}
}
