package dap

import (
	"encoding/json"
)

// ProtocolMessage is the base for all DAP messages.
type ProtocolMessage struct {
	Seq  int    `json:"seq"`
	Type string `json:"type"` // "request", "response", "event"
}

// Request represents a DAP request.
type Request struct {
	ProtocolMessage
	Command   string          `json:"command"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// Response represents a DAP response.
type Response struct {
	ProtocolMessage
	RequestSeq int             `json:"request_seq"`
	Success    bool            `json:"success"`
	Command    string          `json:"command"`
	Message    string          `json:"message,omitempty"`
	Body       json.RawMessage `json:"body,omitempty"`
}

// Event represents a DAP event.
type Event struct {
	ProtocolMessage
	Event string          `json:"event"`
	Body  json.RawMessage `json:"body,omitempty"`
}

// ErrorMessage contains structured error details.
type ErrorMessage struct {
	ID        int               `json:"id"`
	Format    string            `json:"format"`
	Variables map[string]string `json:"variables,omitempty"`
}

// ErrorResponseBody is the body of a failed response.
type ErrorResponseBody struct {
	Error *ErrorMessage `json:"error,omitempty"`
}

// Capabilities describes what features this debug adapter supports.
type Capabilities struct {
	SupportsConfigurationDoneRequest bool `json:"supportsConfigurationDoneRequest,omitempty"`
	SupportsEvaluateForHovers        bool `json:"supportsEvaluateForHovers,omitempty"`
	SupportsValueFormattingOptions   bool `json:"supportsValueFormattingOptions,omitempty"`
	SupportsDelayedStackTraceLoading bool `json:"supportsDelayedStackTraceLoading,omitempty"`
	SupportsTerminateRequest         bool `json:"supportsTerminateRequest,omitempty"`
	SupportTerminateDebuggee         bool `json:"supportTerminateDebuggee,omitempty"`
}

// InitializeRequestArguments are the arguments for the initialize request.
type InitializeRequestArguments struct {
	ClientID             string `json:"clientID,omitempty"`
	ClientName           string `json:"clientName,omitempty"`
	AdapterID            string `json:"adapterID"`
	Locale               string `json:"locale,omitempty"`
	LinesStartAt1        bool   `json:"linesStartAt1,omitempty"`
	ColumnsStartAt1      bool   `json:"columnsStartAt1,omitempty"`
	PathFormat           string `json:"pathFormat,omitempty"`
	SupportsVariableType bool   `json:"supportsVariableType,omitempty"`
}

// ValueFormat specifies how values should be rendered.
type ValueFormat struct {
	Hex bool `json:"hex,omitempty"`
}

// EvaluateArguments are the arguments for evaluate.
type EvaluateArguments struct {
	Expression string       `json:"expression"`
	FrameID    int          `json:"frameId,omitempty"`
	Context    string       `json:"context,omitempty"` // "watch", "repl", "hover", "clipboard"
	Format     *ValueFormat `json:"format,omitempty"`
}

// EvaluateResponseBody is the response body for evaluate.
type EvaluateResponseBody struct {
	Result             string `json:"result"`
	Type               string `json:"type,omitempty"`
	VariablesReference int    `json:"variablesReference"`
	NamedVariables     int    `json:"namedVariables,omitempty"`
	IndexedVariables   int    `json:"indexedVariables,omitempty"`
}

// VariablesArguments are the arguments for variables.
type VariablesArguments struct {
	VariablesReference int          `json:"variablesReference"`
	Filter             string       `json:"filter,omitempty"` // "indexed", "named"
	Start              int          `json:"start,omitempty"`
	Count              int          `json:"count,omitempty"`
	Format             *ValueFormat `json:"format,omitempty"`
}

// VariablesResponseBody is the response body for variables.
type VariablesResponseBody struct {
	Variables []Variable `json:"variables"`
}

// Variable represents a variable or field.
type Variable struct {
	Name               string `json:"name"`
	Value              string `json:"value"`
	Type               string `json:"type,omitempty"`
	EvaluateName       string `json:"evaluateName,omitempty"`
	VariablesReference int    `json:"variablesReference"`
	NamedVariables     int    `json:"namedVariables,omitempty"`
	IndexedVariables   int    `json:"indexedVariables,omitempty"`
}

// ScopesArguments are the arguments for scopes.
type ScopesArguments struct {
	FrameID int `json:"frameId"`
}

// ScopesResponseBody is the response body for scopes.
type ScopesResponseBody struct {
	Scopes []Scope `json:"scopes"`
}

// Scope represents a variable scope.
type Scope struct {
	Name               string `json:"name"`
	PresentationHint   string `json:"presentationHint,omitempty"`
	VariablesReference int    `json:"variablesReference"`
	NamedVariables     int    `json:"namedVariables,omitempty"`
	IndexedVariables   int    `json:"indexedVariables,omitempty"`
	Expensive          bool   `json:"expensive"`
}

// StackTraceArguments are the arguments for stackTrace.
type StackTraceArguments struct {
	ThreadID   int `json:"threadId"`
	StartFrame int `json:"startFrame,omitempty"`
	Levels     int `json:"levels,omitempty"`
}

// StackTraceResponseBody is the response body for stackTrace.
type StackTraceResponseBody struct {
	StackFrames []StackFrame `json:"stackFrames"`
	TotalFrames int          `json:"totalFrames,omitempty"`
}

// StackFrame represents a stack frame.
type StackFrame struct {
	ID     int     `json:"id"`
	Name   string  `json:"name"`
	Source *Source `json:"source,omitempty"`
	Line   int     `json:"line"`
	Column int     `json:"column"`
}

// Source represents a source file.
type Source struct {
	Name string `json:"name,omitempty"`
	Path string `json:"path,omitempty"`
}

// Thread represents a thread.
type Thread struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// ThreadsResponseBody is the response body for threads.
type ThreadsResponseBody struct {
	Threads []Thread `json:"threads"`
}

// ContinueArguments are the arguments for continue.
type ContinueArguments struct {
	ThreadID     int  `json:"threadId"`
	SingleThread bool `json:"singleThread,omitempty"`
}

// ContinueResponseBody is the response body for continue.
type ContinueResponseBody struct {
	AllThreadsContinued bool `json:"allThreadsContinued,omitempty"`
}

// PauseArguments are the arguments for pause.
type PauseArguments struct {
	ThreadID int `json:"threadId"`
}

// DisconnectArguments are the arguments for disconnect.
type DisconnectArguments struct {
	Restart           bool `json:"restart,omitempty"`
	TerminateDebuggee bool `json:"terminateDebuggee,omitempty"`
}

// StoppedEventBody is the body of the stopped event.
type StoppedEventBody struct {
	Reason            string `json:"reason"` // "step", "breakpoint", "exception", "pause", "entry"
	Description       string `json:"description,omitempty"`
	ThreadID          int    `json:"threadId,omitempty"`
	AllThreadsStopped bool   `json:"allThreadsStopped,omitempty"`
}

// ContinuedEventBody is the body of the continued event.
type ContinuedEventBody struct {
	ThreadID            int  `json:"threadId"`
	AllThreadsContinued bool `json:"allThreadsContinued,omitempty"`
}

// ExitedEventBody is the body of the exited event.
type ExitedEventBody struct {
	ExitCode int `json:"exitCode"`
}

// TerminatedEventBody is the body of the terminated event.
type TerminatedEventBody struct {
	Restart interface{} `json:"restart,omitempty"`
}

// OutputEventBody is the body of the output event.
type OutputEventBody struct {
	Category string `json:"category,omitempty"` // "console", "stdout", "stderr"
	Output   string `json:"output"`
}
