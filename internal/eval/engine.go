// Package eval defines the expression evaluation contract and the scheduling
// primitives the adapter uses to run evaluations off the caller's goroutine.
package eval

import (
	"context"
	"errors"

	"github.com/dshills/dapcore/internal/adapter/variables"
)

// Engine evaluates expressions against a suspended thread of the debuggee.
type Engine interface {
	// Evaluate runs the expression at the given frame depth of a suspended
	// thread and returns the typed result. It blocks the calling goroutine;
	// callers that must not block schedule it on a Pool.
	Evaluate(ctx context.Context, expression string, threadID int64, depth int) (variables.Value, error)
}

// Sentinel errors for evaluation and logical-size probe failures.
var (
	// ErrInvalidArgument indicates the operation was invoked with an
	// argument the engine rejects.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInterrupted indicates the evaluating goroutine was interrupted
	// before the result was produced.
	ErrInterrupted = errors.New("evaluation interrupted")

	// ErrExecution indicates the expression ran but failed inside the
	// debuggee.
	ErrExecution = errors.New("execution failed")

	// ErrUnsupported indicates the engine does not support the operation.
	ErrUnsupported = errors.New("operation not supported")
)

// RecoverableProbe reports whether a logical-size probe failure belongs to
// the closed set of recoverable causes. Only these suppress the logical-size
// enhancement without failing the request; anything else is fatal.
func RecoverableProbe(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, ErrInvalidArgument),
		errors.Is(err, ErrInterrupted),
		errors.Is(err, ErrExecution),
		errors.Is(err, ErrUnsupported),
		errors.Is(err, variables.ErrUnsupportedStructure):
		return true
	default:
		return false
	}
}
