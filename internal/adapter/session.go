// Package adapter implements the server side of the Debug Adapter Protocol:
// request dispatch, the evaluate result assembler, and the handle pool shared
// by evaluate and variables operations.
package adapter

import (
	"io"
	"log/slog"

	"github.com/dshills/dapcore/internal/adapter/variables"
	"github.com/dshills/dapcore/internal/eval"
)

// ThreadInfo describes a debuggee thread.
type ThreadInfo struct {
	// ID is the debuggee thread id.
	ID int64

	// Name is the thread display name.
	Name string

	// Suspended reports whether the thread is currently suspended.
	Suspended bool
}

// FrameInfo describes one frame of a suspended thread's stack.
type FrameInfo struct {
	// Name is the frame display name.
	Name string

	// Source is the source path, if known.
	Source string

	// Line is the current line in Source.
	Line int
}

// Debuggee is the execution surface of the program being debugged. The
// adapter reads thread and stack state through it and asks it to resume.
type Debuggee interface {
	// Threads lists the debuggee threads.
	Threads() []ThreadInfo

	// Frames returns the stack of a suspended thread, top frame first.
	Frames(threadID int64) ([]FrameInfo, error)

	// FrameLocals returns the local variables of a frame as an enumerable
	// object value.
	FrameLocals(threadID int64, depth int) (variables.ObjectValue, error)

	// Resume resumes a suspended thread.
	Resume(threadID int64) error
}

// Session holds the collaborators shared by every request of a debug
// session.
type Session struct {
	engine   eval.Engine
	debuggee Debuggee
	pool     *eval.Pool
	objects  *variables.ObjectPool
	fmt      variables.Formatter
	logical  *variables.LogicalStructureManager
	details  variables.DetailProvider
	settings *SettingsStore
	logger   *slog.Logger
}

// SessionConfig configures a Session. Engine and Debuggee are required; nil
// optional collaborators get working defaults.
type SessionConfig struct {
	// Engine evaluates expressions against the debuggee.
	Engine eval.Engine

	// Debuggee is the execution surface of the program being debugged.
	Debuggee Debuggee

	// Workers bounds concurrent evaluations. <= 0 selects a default.
	Workers int

	// Formatter renders values and types. Nil selects SimpleFormatter.
	Formatter variables.Formatter

	// Logical provides logical-size probes. Nil disables them.
	Logical *variables.LogicalStructureManager

	// Details computes descriptive strings for reference values. Nil
	// disables the computed-description detail.
	Details variables.DetailProvider

	// Settings is the settings store. Nil creates one with defaults.
	Settings *SettingsStore

	// Logger receives adapter diagnostics. Nil discards them.
	Logger *slog.Logger
}

// NewSession creates a session with the given collaborators.
func NewSession(cfg SessionConfig) *Session {
	if cfg.Formatter == nil {
		cfg.Formatter = variables.NewSimpleFormatter()
	}
	if cfg.Settings == nil {
		cfg.Settings = NewSettingsStore()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Session{
		engine:   cfg.Engine,
		debuggee: cfg.Debuggee,
		pool:     eval.NewPool(cfg.Workers),
		objects:  variables.NewObjectPool(),
		fmt:      cfg.Formatter,
		logical:  cfg.Logical,
		details:  cfg.Details,
		settings: cfg.Settings,
		logger:   cfg.Logger,
	}
}

// Close shuts down the session's worker pool and recycles all handles.
func (s *Session) Close() {
	s.pool.Close()
	s.objects.Clear()
}

// Settings returns the session's settings store.
func (s *Session) Settings() *SettingsStore {
	return s.settings
}

// Objects returns the session's handle pool.
func (s *Session) Objects() *variables.ObjectPool {
	return s.objects
}

// resolveFrame resolves a frame id handle to its stack frame reference.
// A nil result means the owning thread has resumed and recycled the handle,
// or the id was never valid.
func (s *Session) resolveFrame(frameID int) *variables.StackFrameReference {
	ref, _ := s.objects.ObjectByID(frameID).(*variables.StackFrameReference)
	return ref
}

// optionsFor derives the rendering options for a request from the settings
// snapshot and the request's value format.
func optionsFor(hex bool, set Settings) variables.Options {
	opts := variables.DefaultOptions()
	opts.Hex = hex
	opts.MaxStringLength = set.MaxStringLength
	return opts
}
