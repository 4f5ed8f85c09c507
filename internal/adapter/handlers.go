package adapter

import (
	"fmt"

	"github.com/dshills/dapcore/internal/adapter/variables"
	"github.com/dshills/dapcore/internal/dap"
)

// localsScope names handles allocated for frame locals in the pool.
const localsScope = "locals"

// Threads lists the debuggee threads.
func (s *Session) Threads() *dap.ThreadsResponseBody {
	infos := s.debuggee.Threads()
	threads := make([]dap.Thread, len(infos))
	for i, info := range infos {
		threads[i] = dap.Thread{ID: int(info.ID), Name: info.Name}
	}
	return &dap.ThreadsResponseBody{Threads: threads}
}

// StackTrace returns the stack of a suspended thread and registers a frame
// handle for each returned frame. The handles stay valid until the thread
// resumes.
func (s *Session) StackTrace(args dap.StackTraceArguments) (*dap.StackTraceResponseBody, error) {
	threadID := int64(args.ThreadID)
	frames, err := s.debuggee.Frames(threadID)
	if err != nil {
		return nil, NewError(GetStackTraceFailure,
			fmt.Sprintf("Cannot get stack trace for thread %d: %v.", args.ThreadID, err), err)
	}

	start := args.StartFrame
	if start < 0 || start > len(frames) {
		start = len(frames)
	}
	end := len(frames)
	if args.Levels > 0 && start+args.Levels < end {
		end = start + args.Levels
	}

	body := &dap.StackTraceResponseBody{TotalFrames: len(frames)}
	for depth := start; depth < end; depth++ {
		id := s.objects.AddObject(threadID, &variables.StackFrameReference{ThreadID: threadID, Depth: depth})
		frame := dap.StackFrame{ID: id, Name: frames[depth].Name, Line: frames[depth].Line}
		if frames[depth].Source != "" {
			frame.Source = &dap.Source{Path: frames[depth].Source}
		}
		body.StackFrames = append(body.StackFrames, frame)
	}
	return body, nil
}

// Scopes exposes a frame's locals as a single expandable scope.
func (s *Session) Scopes(args dap.ScopesArguments) (*dap.ScopesResponseBody, error) {
	frame := s.resolveFrame(args.FrameID)
	if frame == nil {
		return nil, NewUserError(EvaluateNotSuspendedThread,
			"Cannot get scopes because the thread is not suspended.")
	}

	locals, err := s.debuggee.FrameLocals(frame.ThreadID, frame.Depth)
	if err != nil {
		return nil, NewError(GetVariableFailure,
			fmt.Sprintf("Cannot get locals for frame %d: %v.", args.FrameID, err), err)
	}

	set := s.settings.Snapshot()
	children := locals.Children(set.ShowStaticVariables)
	scope := dap.Scope{Name: "Locals", PresentationHint: localsScope, NamedVariables: len(children)}
	if len(children) > 0 {
		proxy := &variables.VariableProxy{ThreadID: frame.ThreadID, Scope: localsScope, Value: locals}
		scope.VariablesReference = s.objects.AddObject(frame.ThreadID, proxy)
	}
	return &dap.ScopesResponseBody{Scopes: []dap.Scope{scope}}, nil
}

// Variables expands a reference handle into its children. Child references
// are allocated under the same decision rule evaluate uses, so a value keeps
// behaving the same whichever operation exposed it.
func (s *Session) Variables(args dap.VariablesArguments) (*dap.VariablesResponseBody, error) {
	proxy, ok := s.objects.ObjectByID(args.VariablesReference).(*variables.VariableProxy)
	if !ok {
		return nil, Errorf(GetVariableFailure,
			"Cannot get variables: reference %d is stale or invalid.", args.VariablesReference)
	}

	set := s.settings.Snapshot()
	opts := optionsFor(args.Format != nil && args.Format.Hex, set)

	children := enumerateChildren(proxy.Value, set.ShowStaticVariables)
	children = filterChildren(children, args.Filter)
	children = pageChildren(children, args.Start, args.Count)

	body := &dap.VariablesResponseBody{Variables: make([]dap.Variable, 0, len(children))}
	for _, child := range children {
		body.Variables = append(body.Variables, s.childVariable(child, proxy.ThreadID, set, opts))
	}
	return body, nil
}

// childVariable renders one child and decides its reference allocation.
func (s *Session) childVariable(child variables.NamedValue, threadID int64, set Settings, opts variables.Options) dap.Variable {
	cls := variables.Classify(child.Value, set.ShowStaticVariables)

	v := dap.Variable{
		Name:  child.Name,
		Value: s.fmt.ValueToString(child.Value, opts),
		Type:  s.fmt.TypeToString(typeNameOf(child.Value), opts),
	}

	indexed := -1
	if cls.Kind == variables.KindArray {
		indexed = cls.Length
	}
	if indexed > 0 || (indexed < 0 && cls.HasChildren) {
		proxy := &variables.VariableProxy{ThreadID: threadID, Scope: evalScope, Value: child.Value}
		v.VariablesReference = s.objects.AddObject(threadID, proxy)
	}
	v.IndexedVariables = max(indexed, 0)
	return v
}

// typeNameOf returns a value's type name, tolerating nil.
func typeNameOf(v variables.Value) string {
	if v == nil {
		return ""
	}
	return v.TypeName()
}

// enumerateChildren lists a value's children: array elements by index, or
// named object members.
func enumerateChildren(v variables.Value, includeStatic bool) []variables.NamedValue {
	switch val := v.(type) {
	case variables.ArrayValue:
		children := make([]variables.NamedValue, val.Length())
		for i := range children {
			children[i] = variables.NamedValue{Name: fmt.Sprintf("[%d]", i), Value: val.Element(i)}
		}
		return children
	case variables.ObjectValue:
		return val.Children(includeStatic)
	default:
		return nil
	}
}

// filterChildren applies the DAP "indexed"/"named" child filter.
func filterChildren(children []variables.NamedValue, filter string) []variables.NamedValue {
	if filter == "" {
		return children
	}
	out := children[:0:0]
	for _, c := range children {
		indexed := len(c.Name) > 0 && c.Name[0] == '['
		if (filter == "indexed") == indexed {
			out = append(out, c)
		}
	}
	return out
}

// pageChildren applies DAP paging to a child list.
func pageChildren(children []variables.NamedValue, start, count int) []variables.NamedValue {
	if start < 0 || start >= len(children) {
		if start == 0 {
			return children
		}
		return nil
	}
	children = children[start:]
	if count > 0 && count < len(children) {
		children = children[:count]
	}
	return children
}

// Continue resumes a thread and recycles every handle that thread owns.
// Frame ids and variable references for the thread become invalid as a
// group; nothing frees them individually.
func (s *Session) Continue(args dap.ContinueArguments) (*dap.ContinueResponseBody, error) {
	threadID := int64(args.ThreadID)
	if err := s.debuggee.Resume(threadID); err != nil {
		return nil, NewError(UnknownFailure,
			fmt.Sprintf("Cannot resume thread %d: %v.", args.ThreadID, err), err)
	}
	s.objects.RemoveObjectsByOwner(threadID)
	return &dap.ContinueResponseBody{}, nil
}
