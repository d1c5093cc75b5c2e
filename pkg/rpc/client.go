package rpc

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/eclipse-uprotocol/up-client-go/internal/ulog"
	"github.com/eclipse-uprotocol/up-client-go/pkg/calloptions"
	"github.com/eclipse-uprotocol/up-client-go/pkg/transport"
	"github.com/eclipse-uprotocol/up-client-go/pkg/umessage"
	"github.com/eclipse-uprotocol/up-client-go/pkg/upayload"
	"github.com/eclipse-uprotocol/up-client-go/pkg/uri"
	"github.com/eclipse-uprotocol/up-client-go/pkg/ustatus"
)

// pendingRequest is owned exclusively by Client.pending while in flight.
// Exactly one of response/timeout/cancellation completes it; whichever wins
// closes done first and the others become no-ops (spec §4.5, §5).
type pendingRequest struct {
	done     chan struct{}
	once     sync.Once
	response umessage.Message
	err      error
	timer    *time.Timer
}

func (p *pendingRequest) complete(msg umessage.Message, err error) {
	p.once.Do(func() {
		p.response = msg
		p.err = err
		close(p.done)
	})
}

// Client is the in-memory RPC client (C5): it correlates requests to
// responses, enforces per-request timeouts, and dedupes request ids.
// Grounded on the teacher's Client.pendingCalls/pendingMu in
// pkg/rpc/client.go, adapted from a uint64 counter keyspace to
// externally-generated uProtocol request ids.
type Client struct {
	t           transport.Transport
	uriProvider uri.LocalUriProvider
	listener    *transport.ListenerFunc

	mu      sync.Mutex
	pending map[string]*pendingRequest
}

// NewClient constructs a Client over t, registering the single response
// listener required by spec §4.5 ("Setup"). Construction fails with the
// transport's error if listener registration fails.
func NewClient(ctx context.Context, t transport.Transport, uriProvider uri.LocalUriProvider) (*Client, error) {
	c := &Client{
		t:           t,
		uriProvider: uriProvider,
		pending:     make(map[string]*pendingRequest),
	}
	c.listener = transport.NewListener(c.onMessage)
	if err := t.RegisterListener(ctx, uri.Any(), t.Source(), c.listener); err != nil {
		return nil, err
	}
	return c, nil
}

// InvokeMethod sends a REQUEST to methodURI and blocks until a matching
// RESPONSE arrives, the request's ttl elapses, or ctx is cancelled — the Go
// mapping of spec §4.5's "async<Payload>" (a context-cancellable blocking
// call is this codebase's future).
func (c *Client) InvokeMethod(ctx context.Context, methodURI uri.URI, payload upayload.Payload, opts calloptions.CallOptions) (*upayload.Payload, error) {
	return c.invokeWithID(ctx, uuid.NewString(), methodURI, payload, opts)
}

// invokeWithID is InvokeMethod with an externally-supplied request id. It
// exists as its own entry point because request-id generation is an
// external collaborator per spec §1 ("unique-message-ID generation"); tests
// exercising the duplicate-request-id path (spec §8 scenario 2) need to pin
// the id the way a caller with its own id generator would.
func (c *Client) invokeWithID(ctx context.Context, id string, methodURI uri.URI, payload upayload.Payload, opts calloptions.CallOptions) (*upayload.Payload, error) {
	attrs := opts.ApplyToMessage(umessage.Attributes{
		ID:     id,
		Type:   umessage.TypeRequest,
		Source: c.t.Source(),
		Sink:   methodURI,
		Format: payload.Format,
	})
	req := umessage.Message{Attributes: attrs, Payload: payload}

	pr := &pendingRequest{done: make(chan struct{})}

	c.mu.Lock()
	if _, exists := c.pending[id]; exists {
		c.mu.Unlock()
		return nil, ustatus.Wrap(ustatus.CodeAborted, "Duplicated request found")
	}
	c.pending[id] = pr
	c.mu.Unlock()

	removeEntry := func() {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
	}

	if err := c.t.Send(ctx, req); err != nil {
		removeEntry()
		return nil, err
	}

	ttl := time.Duration(attrs.TTLMillis) * time.Millisecond
	pr.timer = time.AfterFunc(ttl, func() {
		pr.complete(umessage.Message{}, ustatus.Wrap(ustatus.CodeDeadlineExceeded, "rpc: request timed out"))
		removeEntry()
	})

	// If pr.done and ctx.Done() are both ready in the same instant, select
	// picks pseudo-randomly among them, so an already-delivered response can
	// still be discarded in favor of CANCELLED. Spec §5 only documents the
	// response-vs-timeout race; this caller-cancellation race is an
	// accepted consequence of using ctx for cancellation, not a separate
	// invariant.
	select {
	case <-pr.done:
		pr.timer.Stop()
		removeEntry()
		if pr.err != nil {
			return nil, pr.err
		}
		respPayload := pr.response.Payload
		return &respPayload, nil
	case <-ctx.Done():
		cancelErr := ustatus.Wrap(ustatus.CodeCancelled, "rpc: caller cancelled request")
		pr.complete(umessage.Message{}, cancelErr)
		pr.timer.Stop()
		removeEntry()
		if ctx.Err() == context.DeadlineExceeded {
			return nil, ctx.Err()
		}
		return nil, cancelErr
	}
}

// onMessage is the transport listener registered at construction. It
// discards anything that is not a RESPONSE, discards responses with no
// matching pending entry (stale or foreign), and otherwise completes the
// matching pending request — by commstatus error if the response carries
// one, or with the message itself (spec §4.5 "Response demux").
func (c *Client) onMessage(_ context.Context, msg umessage.Message) {
	if msg.Attributes.Type != umessage.TypeResponse {
		return
	}

	c.mu.Lock()
	pr, ok := c.pending[msg.Attributes.ReqID]
	c.mu.Unlock()
	if !ok {
		ulog.Debug("rpc client: dropping response with no pending request", zap.String("reqID", msg.Attributes.ReqID))
		return
	}

	if msg.Attributes.CommStatus != nil && *msg.Attributes.CommStatus != ustatus.CodeOK {
		if status, perr := unpackStatus(msg.Payload); perr == nil {
			pr.complete(msg, &ustatus.Error{Status: status})
			return
		}
		pr.complete(msg, ustatus.Wrap(*msg.Attributes.CommStatus, "rpc: remote returned non-OK commstatus"))
		return
	}
	pr.complete(msg, nil)
}

// Close clears the pending-request table and unregisters the response
// listener. Outstanding futures are left to their armed timeout rather than
// failed with CANCELLED — spec §9 leaves this open and this client picks
// "let them time out" so that a caller blocked in InvokeMethod always gets a
// deterministic DEADLINE_EXCEEDED instead of racing Close.
func (c *Client) Close(ctx context.Context) error {
	c.mu.Lock()
	c.pending = make(map[string]*pendingRequest)
	c.mu.Unlock()
	return c.t.UnregisterListener(ctx, uri.Any(), c.t.Source(), c.listener)
}
