// Package transport declares the uP-L1 transport port consumed by the
// communication layer (spec §6). The concrete implementation — network,
// IPC, in-process — is an external collaborator; this package only defines
// the contract, plus the Listener type every in-memory component registers
// against it.
package transport

import (
	"context"

	"github.com/eclipse-uprotocol/up-client-go/pkg/umessage"
	"github.com/eclipse-uprotocol/up-client-go/pkg/uri"
)

// Listener receives every message whose attributes match both filters it was
// registered under. It is an interface rather than a bare func type so that
// a *registered* listener has a stable identity: Go func values are not
// comparable, but two Listener interface values wrapping the same
// *ListenerFunc pointer are equal, which is what UnregisterListener needs to
// find the matching registration.
type Listener interface {
	OnMessage(ctx context.Context, msg umessage.Message)
}

// ListenerFunc adapts a plain function to a Listener. Callers keep the
// returned pointer around to unregister later.
type ListenerFunc func(ctx context.Context, msg umessage.Message)

// OnMessage implements Listener.
func (f *ListenerFunc) OnMessage(ctx context.Context, msg umessage.Message) {
	(*f)(ctx, msg)
}

// NewListener wraps fn as a *ListenerFunc Listener.
func NewListener(fn func(ctx context.Context, msg umessage.Message)) *ListenerFunc {
	lf := ListenerFunc(fn)
	return &lf
}

// Transport is the uP-L1 point-to-point transport port.
type Transport interface {
	// Send succeeds iff the transport accepted msg for delivery.
	Send(ctx context.Context, msg umessage.Message) error

	// RegisterListener registers listener to receive every message whose
	// Source matches sourceFilter and whose Sink matches sinkFilter.
	// uri.Any() matches any value for that field.
	RegisterListener(ctx context.Context, sourceFilter, sinkFilter uri.URI, listener Listener) error

	// UnregisterListener removes a listener previously registered with the
	// same filters and the same Listener identity.
	UnregisterListener(ctx context.Context, sourceFilter, sinkFilter uri.URI, listener Listener) error

	// Source identifies the local entity.
	Source() uri.URI
}
