package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chazu/facade/pkg/building"
)

// DefaultTimeout bounds a single evaluation.
const DefaultTimeout = 5 * time.Second

var (
	// ErrTimeout reports an evaluation that ran past its timeout. The
	// sandbox goroutine may still be running; its result is dropped.
	ErrTimeout = errors.New("engine: evaluation timed out")
	// ErrSuperseded reports an evaluation that finished after a newer
	// one had started.
	ErrSuperseded = errors.New("engine: evaluation superseded by a newer request")
)

type evalResult struct {
	designs []building.Design
	errors  []EvalError
	err     error
}

func (e *Engine) next() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.generation++
	return e.generation
}

func (e *Engine) current() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.generation
}

// wait blocks until ch delivers the result of generation gen, the
// timeout passes or ctx ends.
func (e *Engine) wait(ctx context.Context, ch <-chan evalResult, gen uint64) (evalResult, error) {
	timer := time.NewTimer(e.timeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		if gen != e.current() {
			return evalResult{}, ErrSuperseded
		}
		return res, nil
	case <-timer.C:
		return evalResult{}, fmt.Errorf("%w after %s", ErrTimeout, e.timeout)
	case <-ctx.Done():
		return evalResult{}, ctx.Err()
	}
}
