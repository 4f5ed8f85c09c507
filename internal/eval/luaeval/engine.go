// Package luaeval backs the evaluation engine with embedded Lua states, one
// per debuggee thread. It exists so the adapter can run end-to-end against a
// live, scriptable debuggee.
package luaeval

import (
	"context"
	"fmt"
	"sync"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/dapcore/internal/adapter"
	"github.com/dshills/dapcore/internal/adapter/variables"
	"github.com/dshills/dapcore/internal/eval"
)

// Engine evaluates expressions in per-thread Lua states. It implements both
// eval.Engine and adapter.Debuggee.
type Engine struct {
	mu      sync.Mutex
	nextID  int64
	threads map[int64]*thread
	order   []int64
}

// thread is one simulated debuggee thread.
type thread struct {
	mu        sync.Mutex
	id        int64
	name      string
	suspended bool
	state     *lua.LState
	frames    []*frame
}

// frame is one stack frame; locals layer over the thread's globals.
type frame struct {
	name   string
	source string
	line   int
	locals *lua.LTable
}

// NewEngine creates an engine with no threads.
func NewEngine() *Engine {
	return &Engine{nextID: 1, threads: make(map[int64]*thread)}
}

// Close releases every thread's Lua state.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, t := range e.threads {
		t.mu.Lock()
		t.state.Close()
		t.mu.Unlock()
	}
	e.threads = make(map[int64]*thread)
	e.order = nil
}

// AddThread creates a suspended thread and returns its id.
func (e *Engine) AddThread(name string) int64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	id := e.nextID
	e.nextID++

	t := &thread{
		id:        id,
		name:      name,
		suspended: true,
		state:     lua.NewState(),
	}
	e.threads[id] = t
	e.order = append(e.order, id)
	return id
}

// lookup finds a thread by id.
func (e *Engine) lookup(threadID int64) *thread {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.threads[threadID]
}

// PushFrame adds a stack frame to a thread. The chunk runs with a fresh
// locals table as its environment; every variable it assigns becomes a local
// of the frame. Reads fall through to the thread's globals.
func (e *Engine) PushFrame(threadID int64, name, source string, line int, chunk string) error {
	t := e.lookup(threadID)
	if t == nil {
		return fmt.Errorf("unknown thread %d", threadID)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	locals := t.state.NewTable()
	mt := t.state.NewTable()
	mt.RawSetString("__index", t.state.G.Global)
	t.state.SetMetatable(locals, mt)

	if chunk != "" {
		fn, err := t.state.LoadString(chunk)
		if err != nil {
			return fmt.Errorf("load frame chunk: %w", err)
		}
		t.state.SetFEnv(fn, locals)
		t.state.Push(fn)
		if err := t.state.PCall(0, 0, nil); err != nil {
			return fmt.Errorf("run frame chunk: %w", err)
		}
	}

	// Newest frame is depth 0.
	t.frames = append([]*frame{{name: name, source: source, line: line, locals: locals}}, t.frames...)
	return nil
}

// Evaluate runs the expression at the given frame of a suspended thread.
// It blocks the calling goroutine until the Lua chunk finishes or the
// context is done.
func (e *Engine) Evaluate(ctx context.Context, expression string, threadID int64, depth int) (variables.Value, error) {
	t := e.lookup(threadID)
	if t == nil {
		return nil, fmt.Errorf("%w: unknown thread %d", eval.ErrInvalidArgument, threadID)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.suspended {
		return nil, fmt.Errorf("%w: thread %d is running", eval.ErrExecution, threadID)
	}
	if depth < 0 || depth >= len(t.frames) {
		return nil, fmt.Errorf("%w: frame depth %d out of range", eval.ErrInvalidArgument, depth)
	}

	// Prefer expression form; fall back to a statement chunk.
	fn, err := t.state.LoadString("return " + expression)
	if err != nil {
		fn, err = t.state.LoadString(expression)
		if err != nil {
			return nil, adapter.NewError(adapter.EvaluationCompileError,
				fmt.Sprintf("Failed to compile expression: %v.", err), err)
		}
	}

	t.state.SetFEnv(fn, t.frames[depth].locals)
	t.state.SetContext(ctx)
	defer t.state.RemoveContext()

	t.state.Push(fn)
	if err := t.state.PCall(0, 1, nil); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("evaluation cancelled: %w", ctx.Err())
		}
		return nil, fmt.Errorf("%w: %v", eval.ErrExecution, err)
	}

	ret := t.state.Get(-1)
	t.state.Pop(1)
	return toValue(ret, make(map[*lua.LTable]bool)), nil
}

// Threads lists the debuggee threads in creation order.
func (e *Engine) Threads() []adapter.ThreadInfo {
	e.mu.Lock()
	defer e.mu.Unlock()

	infos := make([]adapter.ThreadInfo, 0, len(e.order))
	for _, id := range e.order {
		t := e.threads[id]
		t.mu.Lock()
		infos = append(infos, adapter.ThreadInfo{ID: t.id, Name: t.name, Suspended: t.suspended})
		t.mu.Unlock()
	}
	return infos
}

// Frames returns the stack of a suspended thread, top frame first.
func (e *Engine) Frames(threadID int64) ([]adapter.FrameInfo, error) {
	t := e.lookup(threadID)
	if t == nil {
		return nil, fmt.Errorf("unknown thread %d", threadID)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.suspended {
		return nil, fmt.Errorf("thread %d is running", threadID)
	}

	infos := make([]adapter.FrameInfo, len(t.frames))
	for i, f := range t.frames {
		infos[i] = adapter.FrameInfo{Name: f.name, Source: f.source, Line: f.line}
	}
	return infos, nil
}

// FrameLocals returns a frame's locals as an enumerable object value.
func (e *Engine) FrameLocals(threadID int64, depth int) (variables.ObjectValue, error) {
	t := e.lookup(threadID)
	if t == nil {
		return nil, fmt.Errorf("unknown thread %d", threadID)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.suspended {
		return nil, fmt.Errorf("thread %d is running", threadID)
	}
	if depth < 0 || depth >= len(t.frames) {
		return nil, fmt.Errorf("frame depth %d out of range", depth)
	}

	obj, ok := toValue(t.frames[depth].locals, make(map[*lua.LTable]bool)).(variables.ObjectValue)
	if !ok {
		// A locals table with only array-shaped entries converts to an
		// array; wrap it so callers always get named children.
		obj = &variables.Object{Type: "table", Text: "locals"}
	}
	return obj, nil
}

// Resume resumes a suspended thread. Evaluations attempted afterwards fail
// until the thread is suspended again.
func (e *Engine) Resume(threadID int64) error {
	t := e.lookup(threadID)
	if t == nil {
		return fmt.Errorf("unknown thread %d", threadID)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.suspended = false
	return nil
}

// Suspend marks a thread suspended again.
func (e *Engine) Suspend(threadID int64) error {
	t := e.lookup(threadID)
	if t == nil {
		return fmt.Errorf("unknown thread %d", threadID)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.suspended = true
	return nil
}

// suspendedThread returns the thread if it exists and is suspended.
func (e *Engine) suspendedThread(threadID int64) (*thread, error) {
	t := e.lookup(threadID)
	if t == nil {
		return nil, fmt.Errorf("%w: unknown thread %d", eval.ErrInvalidArgument, threadID)
	}

	t.mu.Lock()
	suspended := t.suspended
	t.mu.Unlock()

	if !suspended {
		return nil, fmt.Errorf("%w: thread %d is running", eval.ErrExecution, threadID)
	}
	return t, nil
}
