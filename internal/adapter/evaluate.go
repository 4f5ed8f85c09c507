package adapter

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dshills/dapcore/internal/adapter/variables"
	"github.com/dshills/dapcore/internal/dap"
	"github.com/dshills/dapcore/internal/eval"
)

// VoidType is the type name reported for the distinguished void result.
const VoidType = "<void>"

// evalScope names handles allocated for evaluate results in the pool.
const evalScope = "eval"

// Evaluate validates an evaluate request, schedules the evaluation on the
// worker pool, and returns a future that resolves to the assembled response
// body. The caller never blocks: validation failures resolve the future
// immediately, and the engine is awaited on a worker goroutine.
func (s *Session) Evaluate(args dap.EvaluateArguments) *eval.Future[*dap.EvaluateResponseBody] {
	// Snapshot settings once so the whole request sees one configuration.
	set := s.settings.Snapshot()
	opts := optionsFor(args.Format != nil && args.Format.Hex, set)

	if strings.TrimSpace(args.Expression) == "" {
		return eval.FailedFuture[*dap.EvaluateResponseBody](NewUserError(EvaluationCompileError,
			"Failed to evaluate. Reason: Empty expression cannot be evaluated."))
	}

	frame := s.resolveFrame(args.FrameID)
	if frame == nil {
		// An unresolvable frame id means the owning thread is running.
		return eval.FailedFuture[*dap.EvaluateResponseBody](NewUserError(EvaluateNotSuspendedThread,
			"Evaluation failed because the thread is not suspended."))
	}

	future := eval.NewFuture[*dap.EvaluateResponseBody]()
	err := s.pool.Submit(func() {
		ctx := context.Background()
		value, err := s.engine.Evaluate(ctx, args.Expression, frame.ThreadID, frame.Depth)
		if err != nil {
			future.Fail(wrapEvalError(err))
			return
		}

		body, err := s.assembleEvaluate(ctx, value, frame, set, opts)
		if err != nil {
			future.Fail(err)
			return
		}
		future.Complete(body)
	})
	if err != nil {
		future.Fail(NewError(EvaluateFailure, "Evaluation rejected because the session is shutting down.", err))
	}
	return future
}

// assembleEvaluate classifies an evaluated value and builds the response
// body. It runs synchronously on the worker goroutine; only the logical-size
// probe can suspend it again.
func (s *Session) assembleEvaluate(ctx context.Context, value variables.Value, frame *variables.StackFrameReference, set Settings, opts variables.Options) (*dap.EvaluateResponseBody, error) {
	// Probe the value exactly once; everything below switches on the tag.
	cls := variables.Classify(value, set.ShowStaticVariables)

	switch cls.Kind {
	case variables.KindVoid:
		text := VoidType
		if value != nil {
			text = value.String()
		}
		return &dap.EvaluateResponseBody{Result: text, VariablesReference: 0, Type: VoidType, IndexedVariables: 0}, nil

	case variables.KindArray, variables.KindObject:
		// indexed stays -1 while the count is unknown. The signed value
		// drives reference allocation; only the reported count clamps to 0.
		indexed := -1
		var sizeValue variables.Value
		if cls.Kind == variables.KindArray {
			indexed = cls.Length
		} else if set.ShowLogicalStructure && s.logical.IsIndexedVariable(value) {
			sv, err := s.logical.LogicalSize(ctx, value, frame.ThreadID)
			switch {
			case err == nil && sv != nil:
				sizeValue = sv
				if n, ok := variables.IntValue(sv); ok {
					indexed = n
				}
			case err != nil && !eval.RecoverableProbe(err):
				return nil, err
			case err != nil:
				s.logger.Info("failed to get the logical size",
					"type", value.TypeName(), "error", err)
			}
		}

		referenceID := 0
		if indexed > 0 || (indexed < 0 && cls.HasChildren) {
			proxy := &variables.VariableProxy{ThreadID: frame.ThreadID, Scope: evalScope, Value: value}
			referenceID = s.objects.AddObject(frame.ThreadID, proxy)
		}

		valueString := s.fmt.ValueToString(value, opts)
		details := ""
		if sizeValue != nil {
			details = "size=" + s.fmt.ValueToString(sizeValue, opts)
		} else if set.ShowToString {
			details = variables.FormatDetails(ctx, value, frame.ThreadID, s.fmt, opts, s.details)
		}

		result := valueString
		if details != "" {
			result = valueString + " " + details
		}
		return &dap.EvaluateResponseBody{
			Result:             result,
			VariablesReference: referenceID,
			Type:               s.fmt.TypeToString(value.TypeName(), opts),
			IndexedVariables:   max(indexed, 0),
		}, nil

	default: // primitive
		return &dap.EvaluateResponseBody{
			Result:             s.fmt.ValueToString(value, opts),
			VariablesReference: 0,
			Type:               s.fmt.TypeToString(value.TypeName(), opts),
			IndexedVariables:   0,
		}, nil
	}
}

// wrapEvalError unwraps an engine failure to its cause. A domain error
// anywhere in the chain propagates unchanged; anything else wraps as a
// generic evaluation failure embedding the cause's description.
func wrapEvalError(err error) error {
	var dbgErr *DebugError
	if errors.As(err, &dbgErr) {
		return dbgErr
	}
	return NewError(EvaluateFailure, fmt.Sprintf("Cannot evaluate because of %v.", err), err)
}
