package rpc

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eclipse-uprotocol/up-client-go/internal/ulog"
	"github.com/eclipse-uprotocol/up-client-go/pkg/transport"
	"github.com/eclipse-uprotocol/up-client-go/pkg/umessage"
	"github.com/eclipse-uprotocol/up-client-go/pkg/upayload"
	"github.com/eclipse-uprotocol/up-client-go/pkg/uri"
	"github.com/eclipse-uprotocol/up-client-go/pkg/ustatus"
)

// Handler answers one REQUEST message with a payload, or fails. A failure
// that is a *ustatus.Error carries its own commstatus code (spec §4.6 step
// 4); any other error maps to INTERNAL.
type Handler func(ctx context.Context, req umessage.Message) (upayload.Payload, error)

// Hooks lets callers observe server events that spec §4.6 names but does
// not require action on: an unexpected (non-REQUEST, or unmapped) message,
// and a failed response send. Both are optional; a nil hook is a no-op.
type Hooks struct {
	UnexpectedMessage func(msg umessage.Message)
	SendError         func(msg umessage.Message, err error)
}

// Server is the in-memory RPC server (C6): it registers one transport
// listener per method URI, all of them dispatching through the same
// onMessage function, with mutually exclusive registration per method URI. Grounded on the teacher's
// Server.services map and RegisterService in pkg/rpc/server.go, generalized
// from a (service, method) string key to a uProtocol method URI and from a
// static service table to dynamic register/unregister.
type Server struct {
	t           transport.Transport
	uriProvider uri.LocalUriProvider
	validator   uri.Validator
	hooks       Hooks

	mu       sync.Mutex
	handlers map[uri.URI]registeredHandler
}

// registeredHandler pairs a handler with the exact listener pointer that was
// registered with the transport for it, so UnregisterRequestHandler can hand
// UnregisterListener the same identity it matches on (spec §8: "at any
// instant there is ... at most one active listener registration").
type registeredHandler struct {
	handler  Handler
	listener *transport.ListenerFunc
}

// NewServer constructs a Server over t. Nothing is attached to the transport
// here: each successful RegisterRequestHandler call registers its own
// listener for its method URI, and every such listener dispatches through
// the shared onMessage function (spec §4.6: "Only one transport listener is
// active per method URI").
func NewServer(t transport.Transport, uriProvider uri.LocalUriProvider, validator uri.Validator, hooks Hooks) *Server {
	return &Server{
		t:           t,
		uriProvider: uriProvider,
		validator:   validator,
		hooks:       hooks,
		handlers:    make(map[uri.URI]registeredHandler),
	}
}

// RegisterRequestHandler registers handler for the method identified by
// resourceID under uriProvider.Source(). It rejects a duplicate registration
// with ALREADY_EXISTS and a non-method resource id with INVALID_ARGUMENT
// (spec §4.6 "Registration protocol").
func (s *Server) RegisterRequestHandler(ctx context.Context, resourceID uint16, handler Handler) error {
	methodURI := s.uriProvider.GetResource(resourceID)
	if err := s.validator.ValidateMethod(methodURI); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.handlers[methodURI]; exists {
		return ustatus.Wrapf(ustatus.CodeAlreadyExists, "rpc: handler already registered for %s", methodURI)
	}

	listener := transport.NewListener(s.onMessage)
	if err := s.t.RegisterListener(ctx, uri.Any(), methodURI, listener); err != nil {
		// Post-condition "handler mapped iff listener registered" holds: the
		// map was never touched on this path (spec §9 open question — this
		// server picks "never insert until registration succeeds").
		return err
	}

	s.handlers[methodURI] = registeredHandler{handler: handler, listener: listener}
	ulog.Info("rpc server: registered handler", zap.String("method", methodURI.String()))
	return nil
}

// UnregisterRequestHandler removes the handler for resourceID, returning
// NOT_FOUND if none was registered.
func (s *Server) UnregisterRequestHandler(ctx context.Context, resourceID uint16) error {
	methodURI := s.uriProvider.GetResource(resourceID)
	if err := s.validator.ValidateMethod(methodURI); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	registered, exists := s.handlers[methodURI]
	if !exists {
		return ustatus.Wrapf(ustatus.CodeNotFound, "rpc: no handler registered for %s", methodURI)
	}
	delete(s.handlers, methodURI)

	if err := s.t.UnregisterListener(ctx, uri.Any(), methodURI, registered.listener); err != nil {
		return err
	}
	ulog.Info("rpc server: unregistered handler", zap.String("method", methodURI.String()))
	return nil
}

// onMessage is the shared dispatcher listener (spec §4.6 "Dispatch
// protocol"). It discards anything that is not a REQUEST or has no mapped
// handler, invokes the handler synchronously, and sends a RESPONSE carrying
// either the handler's payload or a mapped commstatus error. A send failure
// never blocks or panics the dispatcher — it is reported through the
// SendError hook only.
func (s *Server) onMessage(ctx context.Context, msg umessage.Message) {
	if msg.Attributes.Type != umessage.TypeRequest {
		s.unexpected(msg)
		return
	}

	s.mu.Lock()
	registered, ok := s.handlers[msg.Attributes.Sink]
	s.mu.Unlock()
	if !ok {
		s.unexpected(msg)
		return
	}

	resp, err := registered.handler(ctx, msg)

	var commStatus *ustatus.Code
	var respPayload upayload.Payload
	if err != nil {
		code, status := classifyHandlerError(err)
		commStatus = &code
		respPayload = packStatus(status)
	} else {
		respPayload = resp
	}

	response := umessage.NewResponse(uuid.NewString(), msg.Attributes, respPayload, commStatus)
	if sendErr := s.t.Send(ctx, response); sendErr != nil {
		if s.hooks.SendError != nil {
			s.hooks.SendError(response, sendErr)
		}
		ulog.Warn("rpc server: failed to send response", zap.Error(sendErr))
	}
}

func (s *Server) unexpected(msg umessage.Message) {
	if s.hooks.UnexpectedMessage != nil {
		s.hooks.UnexpectedMessage(msg)
	}
	ulog.Debug("rpc server: discarding unexpected message", zap.String("type", msg.Attributes.Type.String()))
}

// classifyHandlerError maps a handler failure to a commstatus code and
// Status, per spec §4.6 step 4: a *ustatus.Error surfaces its own code,
// anything else becomes INTERNAL with a generic message.
func classifyHandlerError(err error) (ustatus.Code, *ustatus.Status) {
	var se *ustatus.Error
	if errors.As(err, &se) {
		return se.Status.Code, se.Status
	}
	return ustatus.CodeInternal, ustatus.New(ustatus.CodeInternal, "internal error")
}
