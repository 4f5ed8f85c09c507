package adapter

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/dshills/dapcore/internal/adapter/variables"
	"github.com/dshills/dapcore/internal/dap"
)

// fakeDebuggee is an in-memory debuggee with fixed threads and stacks.
type fakeDebuggee struct {
	mu        sync.Mutex
	threads   []ThreadInfo
	frames    map[int64][]FrameInfo
	locals    map[string]variables.ObjectValue
	framesErr error
	resumeErr error
	resumed   []int64
}

func (d *fakeDebuggee) Threads() []ThreadInfo {
	return d.threads
}

func (d *fakeDebuggee) Frames(threadID int64) ([]FrameInfo, error) {
	if d.framesErr != nil {
		return nil, d.framesErr
	}
	return d.frames[threadID], nil
}

func (d *fakeDebuggee) FrameLocals(threadID int64, depth int) (variables.ObjectValue, error) {
	obj, ok := d.locals[fmt.Sprintf("%d:%d", threadID, depth)]
	if !ok {
		return nil, errors.New("no such frame")
	}
	return obj, nil
}

func (d *fakeDebuggee) Resume(threadID int64) error {
	if d.resumeErr != nil {
		return d.resumeErr
	}
	d.mu.Lock()
	d.resumed = append(d.resumed, threadID)
	d.mu.Unlock()
	return nil
}

func newHandlerSession(t *testing.T, debuggee Debuggee) *Session {
	t.Helper()

	s := NewSession(SessionConfig{
		Engine:   &fakeEngine{result: variables.NewInt(1)},
		Debuggee: debuggee,
		Workers:  2,
	})
	t.Cleanup(s.Close)
	return s
}

func TestThreads(t *testing.T) {
	debuggee := &fakeDebuggee{threads: []ThreadInfo{
		{ID: 1, Name: "main", Suspended: true},
		{ID: 2, Name: "worker"},
	}}
	s := newHandlerSession(t, debuggee)

	body := s.Threads()
	if len(body.Threads) != 2 {
		t.Fatalf("got %d threads, expected 2", len(body.Threads))
	}
	if body.Threads[0].ID != 1 || body.Threads[0].Name != "main" {
		t.Errorf("thread[0] = %+v", body.Threads[0])
	}
}

func TestStackTrace_RegistersFrames(t *testing.T) {
	debuggee := &fakeDebuggee{frames: map[int64][]FrameInfo{
		1: {
			{Name: "inner", Source: "/src/inner.lua", Line: 12},
			{Name: "outer", Source: "/src/outer.lua", Line: 40},
		},
	}}
	s := newHandlerSession(t, debuggee)

	body, err := s.StackTrace(dap.StackTraceArguments{ThreadID: 1})
	if err != nil {
		t.Fatalf("StackTrace failed: %v", err)
	}

	if body.TotalFrames != 2 || len(body.StackFrames) != 2 {
		t.Fatalf("got %d/%d frames, expected 2/2", len(body.StackFrames), body.TotalFrames)
	}
	if body.StackFrames[0].Name != "inner" || body.StackFrames[0].Line != 12 {
		t.Errorf("frame[0] = %+v", body.StackFrames[0])
	}

	// Each returned frame id must resolve to its depth until the thread
	// resumes.
	for depth, frame := range body.StackFrames {
		ref := s.resolveFrame(frame.ID)
		if ref == nil {
			t.Fatalf("frame id %d does not resolve", frame.ID)
		}
		if ref.ThreadID != 1 || ref.Depth != depth {
			t.Errorf("frame id %d resolves to %+v, expected depth %d on thread 1", frame.ID, ref, depth)
		}
	}
}

func TestStackTrace_Paging(t *testing.T) {
	debuggee := &fakeDebuggee{frames: map[int64][]FrameInfo{
		1: {{Name: "a"}, {Name: "b"}, {Name: "c"}, {Name: "d"}},
	}}
	s := newHandlerSession(t, debuggee)

	body, err := s.StackTrace(dap.StackTraceArguments{ThreadID: 1, StartFrame: 1, Levels: 2})
	if err != nil {
		t.Fatalf("StackTrace failed: %v", err)
	}

	if body.TotalFrames != 4 {
		t.Errorf("TotalFrames = %d, expected 4", body.TotalFrames)
	}
	if len(body.StackFrames) != 2 || body.StackFrames[0].Name != "b" || body.StackFrames[1].Name != "c" {
		t.Errorf("paged frames = %+v", body.StackFrames)
	}
}

func TestStackTrace_DebuggeeError(t *testing.T) {
	s := newHandlerSession(t, &fakeDebuggee{framesErr: errors.New("vm detached")})

	_, err := s.StackTrace(dap.StackTraceArguments{ThreadID: 1})
	if code := debugCode(t, err); code != GetStackTraceFailure {
		t.Errorf("code = %v, expected GET_STACKTRACE_FAILURE", code)
	}
}

func TestScopes(t *testing.T) {
	locals := &variables.Object{
		Type: "locals",
		Text: "locals",
		Fields: []variables.NamedValue{
			{Name: "x", Value: variables.NewInt(1)},
			{Name: "y", Value: variables.NewInt(2)},
		},
	}
	debuggee := &fakeDebuggee{locals: map[string]variables.ObjectValue{"1:0": locals}}
	s := newHandlerSession(t, debuggee)
	frameID := s.objects.AddObject(1, &variables.StackFrameReference{ThreadID: 1, Depth: 0})

	body, err := s.Scopes(dap.ScopesArguments{FrameID: frameID})
	if err != nil {
		t.Fatalf("Scopes failed: %v", err)
	}

	if len(body.Scopes) != 1 {
		t.Fatalf("got %d scopes, expected 1", len(body.Scopes))
	}
	scope := body.Scopes[0]
	if scope.Name != "Locals" || scope.NamedVariables != 2 {
		t.Errorf("scope = %+v", scope)
	}
	if scope.VariablesReference <= 0 {
		t.Errorf("VariablesReference = %d, expected > 0", scope.VariablesReference)
	}
}

func TestScopes_EmptyLocals(t *testing.T) {
	debuggee := &fakeDebuggee{locals: map[string]variables.ObjectValue{
		"1:0": &variables.Object{Type: "locals", Text: "locals"},
	}}
	s := newHandlerSession(t, debuggee)
	frameID := s.objects.AddObject(1, &variables.StackFrameReference{ThreadID: 1, Depth: 0})

	body, err := s.Scopes(dap.ScopesArguments{FrameID: frameID})
	if err != nil {
		t.Fatalf("Scopes failed: %v", err)
	}
	if ref := body.Scopes[0].VariablesReference; ref != 0 {
		t.Errorf("VariablesReference = %d, expected 0 for an empty scope", ref)
	}
}

func TestScopes_StaleFrame(t *testing.T) {
	s := newHandlerSession(t, &fakeDebuggee{})

	_, err := s.Scopes(dap.ScopesArguments{FrameID: 77})
	if code := debugCode(t, err); code != EvaluateNotSuspendedThread {
		t.Errorf("code = %v, expected EVALUATE_NOT_SUSPENDED_THREAD", code)
	}
}

func TestVariables_ExpandObject(t *testing.T) {
	inner := &variables.Object{
		Type:   "pair",
		Text:   "pair@2",
		Fields: []variables.NamedValue{{Name: "a", Value: variables.NewInt(1)}},
	}
	outer := &variables.Object{
		Type: "node",
		Text: "node@1",
		Fields: []variables.NamedValue{
			{Name: "count", Value: variables.NewInt(3)},
			{Name: "next", Value: inner},
			{Name: "items", Value: &variables.Array{
				Type:  "int[]",
				Text:  "int[2]",
				Elems: []variables.Value{variables.NewInt(7), variables.NewInt(8)},
			}},
		},
	}
	s := newHandlerSession(t, &fakeDebuggee{})
	ref := s.objects.AddObject(1, &variables.VariableProxy{ThreadID: 1, Scope: evalScope, Value: outer})

	body, err := s.Variables(dap.VariablesArguments{VariablesReference: ref})
	if err != nil {
		t.Fatalf("Variables failed: %v", err)
	}
	if len(body.Variables) != 3 {
		t.Fatalf("got %d children, expected 3", len(body.Variables))
	}

	count := body.Variables[0]
	if count.Name != "count" || count.Value != "3" || count.VariablesReference != 0 {
		t.Errorf("primitive child = %+v", count)
	}

	next := body.Variables[1]
	if next.VariablesReference <= 0 {
		t.Errorf("object child reference = %d, expected > 0", next.VariablesReference)
	}
	if next.IndexedVariables != 0 {
		t.Errorf("object child IndexedVariables = %d, expected 0", next.IndexedVariables)
	}

	items := body.Variables[2]
	if items.VariablesReference <= 0 {
		t.Errorf("array child reference = %d, expected > 0", items.VariablesReference)
	}
	if items.IndexedVariables != 2 {
		t.Errorf("array child IndexedVariables = %d, expected 2", items.IndexedVariables)
	}
}

func TestVariables_ExpandArrayElements(t *testing.T) {
	arr := &variables.Array{
		Type:  "int[]",
		Text:  "int[3]",
		Elems: []variables.Value{variables.NewInt(10), variables.NewInt(11), variables.NewInt(12)},
	}
	s := newHandlerSession(t, &fakeDebuggee{})
	ref := s.objects.AddObject(1, &variables.VariableProxy{ThreadID: 1, Scope: evalScope, Value: arr})

	body, err := s.Variables(dap.VariablesArguments{VariablesReference: ref})
	if err != nil {
		t.Fatalf("Variables failed: %v", err)
	}
	if len(body.Variables) != 3 {
		t.Fatalf("got %d elements, expected 3", len(body.Variables))
	}
	if body.Variables[0].Name != "[0]" || body.Variables[0].Value != "10" {
		t.Errorf("element[0] = %+v", body.Variables[0])
	}
}

func TestVariables_Paging(t *testing.T) {
	arr := &variables.Array{Type: "int[]", Text: "int[5]"}
	for i := 0; i < 5; i++ {
		arr.Elems = append(arr.Elems, variables.NewInt(i))
	}
	s := newHandlerSession(t, &fakeDebuggee{})
	ref := s.objects.AddObject(1, &variables.VariableProxy{ThreadID: 1, Scope: evalScope, Value: arr})

	body, err := s.Variables(dap.VariablesArguments{VariablesReference: ref, Start: 2, Count: 2})
	if err != nil {
		t.Fatalf("Variables failed: %v", err)
	}
	if len(body.Variables) != 2 || body.Variables[0].Name != "[2]" || body.Variables[1].Name != "[3]" {
		t.Errorf("page = %+v", body.Variables)
	}
}

func TestVariables_StaleReference(t *testing.T) {
	s := newHandlerSession(t, &fakeDebuggee{})

	_, err := s.Variables(dap.VariablesArguments{VariablesReference: 123})
	if code := debugCode(t, err); code != GetVariableFailure {
		t.Errorf("code = %v, expected GET_VARIABLE_FAILURE", code)
	}
}

func TestContinue_RecyclesThreadHandles(t *testing.T) {
	debuggee := &fakeDebuggee{}
	s := newHandlerSession(t, debuggee)

	frameID := s.objects.AddObject(1, &variables.StackFrameReference{ThreadID: 1, Depth: 0})
	varRef := s.objects.AddObject(1, &variables.VariableProxy{
		ThreadID: 1, Scope: evalScope,
		Value: &variables.Object{Type: "o", Text: "o@1", Fields: []variables.NamedValue{{Name: "x", Value: variables.NewInt(1)}}},
	})
	otherFrame := s.objects.AddObject(2, &variables.StackFrameReference{ThreadID: 2, Depth: 0})

	if _, err := s.Continue(dap.ContinueArguments{ThreadID: 1}); err != nil {
		t.Fatalf("Continue failed: %v", err)
	}
	if len(debuggee.resumed) != 1 || debuggee.resumed[0] != 1 {
		t.Errorf("resumed = %v, expected [1]", debuggee.resumed)
	}

	// Everything thread 1 owned is gone as a group.
	if s.resolveFrame(frameID) != nil {
		t.Error("frame handle survived the resume")
	}
	if _, err := s.Variables(dap.VariablesArguments{VariablesReference: varRef}); err == nil {
		t.Error("variable reference survived the resume")
	}
	if s.resolveFrame(otherFrame) == nil {
		t.Error("another thread's handle was recycled")
	}

	// A pending client evaluate against the recycled frame now reports the
	// thread as running.
	_, err := evaluate(t, s, dap.EvaluateArguments{Expression: "x", FrameID: frameID})
	if code := debugCode(t, err); code != EvaluateNotSuspendedThread {
		t.Errorf("code = %v, expected EVALUATE_NOT_SUSPENDED_THREAD", code)
	}
}

func TestContinue_ResumeError(t *testing.T) {
	s := newHandlerSession(t, &fakeDebuggee{resumeErr: errors.New("thread gone")})
	ref := s.objects.AddObject(1, &variables.StackFrameReference{ThreadID: 1, Depth: 0})

	if _, err := s.Continue(dap.ContinueArguments{ThreadID: 1}); err == nil {
		t.Fatal("expected an error from a failed resume")
	}
	// Handles survive a failed resume.
	if s.resolveFrame(ref) == nil {
		t.Error("handle recycled although the thread did not resume")
	}
}
