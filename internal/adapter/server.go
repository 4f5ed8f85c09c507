package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/tidwall/gjson"

	"github.com/dshills/dapcore/internal/dap"
)

// HandlerFunc processes one request and returns the response body. A
// returned *DebugError maps to a classified error response; any other error
// reports as an unknown failure.
type HandlerFunc func(req *dap.Request) (interface{}, error)

// errHandled marks a request whose response was already written by the
// handler itself.
var errHandled = errors.New("response already sent")

// Server runs the request dispatch loop for one client connection.
type Server struct {
	transport dap.Transport
	session   *Session
	logger    *slog.Logger
	handlers  map[string]HandlerFunc
	seq       int64
	wg        sync.WaitGroup
	done      chan struct{}
	closeOnce sync.Once
}

// NewServer creates a server dispatching requests to the session.
func NewServer(transport dap.Transport, session *Session, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	s := &Server{
		transport: transport,
		session:   session,
		logger:    logger,
		handlers:  make(map[string]HandlerFunc),
		done:      make(chan struct{}),
	}
	s.registerDefaults()
	return s
}

// Register installs a handler for a request command, replacing any existing
// one. Register before calling Serve.
func (s *Server) Register(command string, h HandlerFunc) {
	s.handlers[command] = h
}

// registerDefaults installs the built-in request handlers.
func (s *Server) registerDefaults() {
	s.Register("initialize", s.handleInitialize)
	s.Register("launch", s.handleNop)
	s.Register("attach", s.handleNop)
	s.Register("configurationDone", s.handleConfigurationDone)
	s.Register("threads", s.handleThreads)
	s.Register("stackTrace", s.handleStackTrace)
	s.Register("scopes", s.handleScopes)
	s.Register("variables", s.handleVariables)
	s.Register("evaluate", s.handleEvaluate)
	s.Register("continue", s.handleContinue)
	s.Register("setDebugSetting", s.handleSetDebugSetting)
	s.Register("disconnect", s.handleDisconnect)
}

// Serve reads and dispatches requests until the client disconnects or the
// transport fails. Each request runs on its own goroutine; the read loop
// never blocks on a handler.
func (s *Server) Serve() error {
	defer s.wg.Wait()

	for {
		msg, err := s.transport.Receive()
		if err != nil {
			select {
			case <-s.done:
				return nil
			default:
			}
			return fmt.Errorf("receive: %w", err)
		}

		// Peek the envelope before committing to a full unmarshal.
		if gjson.GetBytes(msg.Content, "type").Str != "request" {
			continue
		}

		var req dap.Request
		if err := json.Unmarshal(msg.Content, &req); err != nil {
			s.logger.Error("malformed request", "error", err)
			continue
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.dispatch(&req)
		}()

		select {
		case <-s.done:
			return nil
		default:
		}
	}
}

// Stop makes Serve return after in-flight requests finish.
func (s *Server) Stop() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.transport.Close()
	})
}

// dispatch runs the handler for one request and writes the response.
func (s *Server) dispatch(req *dap.Request) {
	handler, ok := s.handlers[req.Command]
	if !ok {
		s.sendError(req, Errorf(UnrecognizedRequestFailure, "Request %q is not supported.", req.Command))
		return
	}

	body, err := handler(req)
	if errors.Is(err, errHandled) {
		return
	}
	if err != nil {
		s.sendError(req, err)
		return
	}
	s.sendResponse(req, body)
}

// nextSeq allocates the next outgoing sequence number.
func (s *Server) nextSeq() int {
	return int(atomic.AddInt64(&s.seq, 1))
}

// sendResponse writes a success response.
func (s *Server) sendResponse(req *dap.Request, body interface{}) {
	resp := dap.Response{
		ProtocolMessage: dap.ProtocolMessage{Seq: s.nextSeq(), Type: "response"},
		RequestSeq:      req.Seq,
		Success:         true,
		Command:         req.Command,
	}
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			s.logger.Error("marshal response body", "command", req.Command, "error", err)
			return
		}
		resp.Body = raw
	}
	s.send(resp)
}

// sendError writes a failure response with a classified code.
func (s *Server) sendError(req *dap.Request, err error) {
	code := UnknownFailure
	message := err.Error()
	var dbgErr *DebugError
	if errors.As(err, &dbgErr) {
		code = dbgErr.Code
		message = dbgErr.Message
	}

	body, merr := json.Marshal(dap.ErrorResponseBody{
		Error: &dap.ErrorMessage{ID: int(code), Format: message},
	})
	if merr != nil {
		s.logger.Error("marshal error body", "error", merr)
		return
	}

	s.send(dap.Response{
		ProtocolMessage: dap.ProtocolMessage{Seq: s.nextSeq(), Type: "response"},
		RequestSeq:      req.Seq,
		Success:         false,
		Command:         req.Command,
		Message:         code.String(),
		Body:            body,
	})
}

// SendEvent writes an event to the client.
func (s *Server) SendEvent(event string, body interface{}) {
	raw, err := json.Marshal(body)
	if err != nil {
		s.logger.Error("marshal event body", "event", event, "error", err)
		return
	}
	msg := dap.Event{
		ProtocolMessage: dap.ProtocolMessage{Seq: s.nextSeq(), Type: "event"},
		Event:           event,
		Body:            raw,
	}
	s.sendRaw(msg)
}

// send marshals and writes one response.
func (s *Server) send(resp dap.Response) {
	s.sendRaw(resp)
}

// sendRaw marshals and writes one protocol message.
func (s *Server) sendRaw(v interface{}) {
	content, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("marshal message", "error", err)
		return
	}
	if err := s.transport.Send(&dap.Message{Content: content}); err != nil {
		s.logger.Error("send message", "error", err)
	}
}

// Built-in handlers.

func (s *Server) handleInitialize(req *dap.Request) (interface{}, error) {
	caps := dap.Capabilities{
		SupportsConfigurationDoneRequest: true,
		SupportsEvaluateForHovers:        true,
		SupportsValueFormattingOptions:   true,
		SupportsDelayedStackTraceLoading: true,
	}
	s.sendResponse(req, caps)
	s.SendEvent("initialized", struct{}{})
	return nil, errHandled
}

func (s *Server) handleNop(req *dap.Request) (interface{}, error) {
	return nil, nil
}

// handleConfigurationDone reports every already-suspended thread so the
// client requests its stack.
func (s *Server) handleConfigurationDone(req *dap.Request) (interface{}, error) {
	s.sendResponse(req, nil)
	for _, t := range s.session.debuggee.Threads() {
		if t.Suspended {
			s.SendEvent("stopped", dap.StoppedEventBody{Reason: "entry", ThreadID: int(t.ID)})
		}
	}
	return nil, errHandled
}

func (s *Server) handleThreads(req *dap.Request) (interface{}, error) {
	return s.session.Threads(), nil
}

func (s *Server) handleStackTrace(req *dap.Request) (interface{}, error) {
	var args dap.StackTraceArguments
	if err := json.Unmarshal(req.Arguments, &args); err != nil {
		return nil, Errorf(GetStackTraceFailure, "Invalid stackTrace arguments: %v.", err)
	}
	return s.session.StackTrace(args)
}

func (s *Server) handleScopes(req *dap.Request) (interface{}, error) {
	var args dap.ScopesArguments
	if err := json.Unmarshal(req.Arguments, &args); err != nil {
		return nil, Errorf(GetVariableFailure, "Invalid scopes arguments: %v.", err)
	}
	return s.session.Scopes(args)
}

func (s *Server) handleVariables(req *dap.Request) (interface{}, error) {
	var args dap.VariablesArguments
	if err := json.Unmarshal(req.Arguments, &args); err != nil {
		return nil, Errorf(GetVariableFailure, "Invalid variables arguments: %v.", err)
	}
	return s.session.Variables(args)
}

func (s *Server) handleEvaluate(req *dap.Request) (interface{}, error) {
	var args dap.EvaluateArguments
	if err := json.Unmarshal(req.Arguments, &args); err != nil {
		return nil, Errorf(EvaluateFailure, "Invalid evaluate arguments: %v.", err)
	}
	// The future resolves on a worker; this request goroutine is the only
	// one that waits on it.
	return s.session.Evaluate(args).Wait(context.Background())
}

func (s *Server) handleContinue(req *dap.Request) (interface{}, error) {
	var args dap.ContinueArguments
	if err := json.Unmarshal(req.Arguments, &args); err != nil {
		return nil, Errorf(UnknownFailure, "Invalid continue arguments: %v.", err)
	}
	body, err := s.session.Continue(args)
	if err != nil {
		return nil, err
	}
	s.sendResponse(req, body)
	s.SendEvent("continued", dap.ContinuedEventBody{ThreadID: args.ThreadID})
	return nil, errHandled
}

func (s *Server) handleSetDebugSetting(req *dap.Request) (interface{}, error) {
	set, err := s.session.Settings().Update(req.Arguments)
	if err != nil {
		return nil, NewError(InvalidDebugSetting, fmt.Sprintf("Invalid debug settings: %v.", err), err)
	}
	s.logger.Info("debug settings updated",
		"showStaticVariables", set.ShowStaticVariables,
		"showLogicalStructure", set.ShowLogicalStructure,
		"showToString", set.ShowToString)
	return nil, nil
}

func (s *Server) handleDisconnect(req *dap.Request) (interface{}, error) {
	s.sendResponse(req, nil)
	s.Stop()
	return nil, errHandled
}
