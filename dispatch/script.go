package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dop251/goja"

	"github.com/wudi/pagelink/link"
)

// ErrNoAllowFunc is returned when a policy script does not define allow.
var ErrNoAllowFunc = errors.New("policy script must define function allow(link)")

// ScriptPolicy evaluates a JavaScript function
//
//	function allow(link) { return link.action !== "launch" }
//
// for every link. The argument has action, target and rect
// ({left, top, right, bottom}) properties. A goja runtime is not safe for
// concurrent use, so calls are serialized.
type ScriptPolicy struct {
	mu    sync.Mutex
	vm    *goja.Runtime
	allow goja.Callable
}

// NewScriptPolicy compiles script and looks up its allow function.
func NewScriptPolicy(script string) (*ScriptPolicy, error) {
	vm := goja.New()
	vm.SetFieldNameMapper(goja.TagFieldNameMapper("json", true))
	if _, err := vm.RunString(script); err != nil {
		return nil, fmt.Errorf("compile policy: %w", err)
	}
	allow, ok := goja.AssertFunction(vm.Get("allow"))
	if !ok {
		return nil, ErrNoAllowFunc
	}
	return &ScriptPolicy{vm: vm, allow: allow}, nil
}

type scriptRect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
}

type scriptLink struct {
	Action string     `json:"action"`
	Target string     `json:"target"`
	Rect   scriptRect `json:"rect"`
}

// Allow runs the script's allow function. Execution is interrupted when ctx
// is done.
func (p *ScriptPolicy) Allow(ctx context.Context, l *link.Link) (bool, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		select {
		case <-ctx.Done():
			p.vm.Interrupt(ctx.Err())
		case <-done:
		}
	}()
	defer func() {
		close(done)
		wg.Wait()
		p.vm.ClearInterrupt()
	}()

	b := l.Bounds()
	arg := scriptLink{
		Action: l.Action().String(),
		Target: l.Target(),
		Rect:   scriptRect{Left: b.Left, Top: b.Top, Right: b.Right, Bottom: b.Bottom},
	}
	val, err := p.allow(goja.Undefined(), p.vm.ToValue(arg))
	if err != nil {
		var interrupted *goja.InterruptedError
		if errors.As(err, &interrupted) {
			if cause := interrupted.Unwrap(); cause != nil {
				err = cause
			} else {
				err = context.Canceled
			}
		}
		return false, err
	}
	return val.ToBoolean(), nil
}
