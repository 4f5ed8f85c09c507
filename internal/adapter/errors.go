package adapter

import (
	"fmt"
)

// ErrorCode classifies a failed request with a stable identifier.
type ErrorCode int

const (
	// UnknownFailure is an unclassified internal failure.
	UnknownFailure ErrorCode = 1000
	// UnrecognizedRequestFailure indicates a request command this adapter
	// does not implement.
	UnrecognizedRequestFailure ErrorCode = 1014
	// EvaluationCompileError indicates the expression could not be compiled,
	// including the blank-expression case.
	EvaluationCompileError ErrorCode = 2024
	// EvaluateFailure indicates evaluation failed inside the engine or the
	// debuggee.
	EvaluateFailure ErrorCode = 2025
	// EvaluateNotSuspendedThread indicates the frame's thread is not
	// currently suspended.
	EvaluateNotSuspendedThread ErrorCode = 2026
	// InvalidDebugSetting indicates a malformed settings update.
	InvalidDebugSetting ErrorCode = 2027
	// GetVariableFailure indicates a variables request referenced an unknown
	// or recycled handle.
	GetVariableFailure ErrorCode = 2028
	// GetStackTraceFailure indicates a stack trace could not be produced.
	GetStackTraceFailure ErrorCode = 2029
)

// String returns the stable symbolic name of the code.
func (c ErrorCode) String() string {
	switch c {
	case UnknownFailure:
		return "UNKNOWN_FAILURE"
	case UnrecognizedRequestFailure:
		return "UNRECOGNIZED_REQUEST_FAILURE"
	case EvaluationCompileError:
		return "EVALUATION_COMPILE_ERROR"
	case EvaluateFailure:
		return "EVALUATE_FAILURE"
	case EvaluateNotSuspendedThread:
		return "EVALUATE_NOT_SUSPENDED_THREAD"
	case InvalidDebugSetting:
		return "INVALID_DEBUG_SETTING"
	case GetVariableFailure:
		return "GET_VARIABLE_FAILURE"
	case GetStackTraceFailure:
		return "GET_STACKTRACE_FAILURE"
	default:
		return "UNKNOWN_FAILURE"
	}
}

// DebugError is a domain error carrying a classified code. Errors of this
// type propagate to the client verbatim; everything else is reported as an
// unknown failure.
type DebugError struct {
	// Code is the stable classification.
	Code ErrorCode

	// Message is the user-visible description.
	Message string

	// UserError marks failures caused by user input rather than the adapter
	// or the debuggee.
	UserError bool

	cause error
}

// Error returns the user-visible message.
func (e *DebugError) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause, if any.
func (e *DebugError) Unwrap() error {
	return e.cause
}

// NewUserError creates a DebugError for a user-input failure.
func NewUserError(code ErrorCode, message string) *DebugError {
	return &DebugError{Code: code, Message: message, UserError: true}
}

// NewError creates a DebugError wrapping an underlying cause.
func NewError(code ErrorCode, message string, cause error) *DebugError {
	return &DebugError{Code: code, Message: message, cause: cause}
}

// Errorf creates a DebugError with a formatted message.
func Errorf(code ErrorCode, format string, args ...interface{}) *DebugError {
	return &DebugError{Code: code, Message: fmt.Sprintf(format, args...)}
}
