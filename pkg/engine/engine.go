// Package engine evaluates building scripts. Every evaluation runs in a
// fresh zygomys sandbox, so scripts cannot touch the filesystem and the
// same source always yields the same designs.
package engine

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/chazu/facade/pkg/building"
	zygo "github.com/glycerine/zygomys/zygo"
)

// EvalError is a mistake in the script itself: a parse error or a
// runtime error raised by user code or a builtin.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Option configures an Engine.
type Option func(*Engine)

// WithTimeout bounds each evaluation. Non-positive values keep
// DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// Engine evaluates building scripts. It is safe for concurrent use.
// Only the most recent call to Evaluate delivers designs; an older call
// that finishes later reports ErrSuperseded.
type Engine struct {
	timeout time.Duration

	mu         sync.Mutex
	generation uint64
}

// NewEngine creates an Engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate runs source and returns the buildings it declares, in
// declaration order.
//
// Return semantics:
//   - On success: designs (non-nil, possibly empty), nil eval errors, nil error
//   - On a mistake in the script: nil designs, eval errors, nil error
//   - When the evaluation is abandoned (timeout, cancellation, panic,
//     superseded): nil, nil, error
func (e *Engine) Evaluate(ctx context.Context, source string) ([]building.Design, []EvalError, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	logger := log.FromContext(ctx)
	gen := e.next()
	start := time.Now()

	ch := make(chan evalResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("engine: panic during evaluation: %v", r)}
			}
		}()
		ch <- evaluate(source)
	}()

	res, err := e.wait(ctx, ch, gen)
	if err == nil {
		err = res.err
	}
	if err != nil {
		logger.Warn("evaluation abandoned", "err", err)
		return nil, nil, err
	}
	logger.Debug("evaluated script", "buildings", len(res.designs), "errors", len(res.errors),
		"took", time.Since(start).Round(time.Millisecond))
	return res.designs, res.errors, nil
}

// evaluate runs source in a new sandbox.
func evaluate(source string) evalResult {
	if strings.TrimSpace(source) == "" {
		return evalResult{designs: []building.Design{}}
	}

	env := zygo.NewZlispSandbox()
	defer env.Stop()

	designs := []building.Design{}
	registerBuiltins(env, &designs)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return evalResult{errors: evalErrors(err)}
	}
	if _, err := env.Run(); err != nil {
		return evalResult{errors: evalErrors(err)}
	}
	return evalResult{designs: designs}
}

// locPattern finds the line zygomys reports, either as
// "Error on line 3: ..." or as a leading "line 3: ...".
var locPattern = regexp.MustCompile(`(?i)(?:^|\bon )line (\d+):\s*(.*)`)

// evalErrors turns a zygomys error into EvalErrors, keeping the line
// number when the message carries one.
func evalErrors(err error) []EvalError {
	msg := strings.TrimSpace(err.Error())
	m := locPattern.FindStringSubmatch(msg)
	if m == nil {
		return []EvalError{{Message: msg}}
	}
	line, _ := strconv.Atoi(m[1])
	return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
}
