// Package localtransport is an in-process reference implementation of
// transport.Transport (spec §6, SPEC_FULL.md §4.9), used by this module's
// own tests and by cmd/echo. It is grounded on the teacher's
// pkg/transport/transport.go Send/listener-registry shape, with the UDP
// socket, fragmentation, and packet-framing machinery removed: delivery is
// in-process, so "send" is "invoke every matching listener directly".
package localtransport

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/eclipse-uprotocol/up-client-go/pkg/transport"
	"github.com/eclipse-uprotocol/up-client-go/pkg/umessage"
	"github.com/eclipse-uprotocol/up-client-go/pkg/uri"
)

type registration struct {
	sourceFilter uri.URI
	sinkFilter   uri.URI
	listener     transport.Listener
}

// Transport is an in-memory, single-process transport.Transport. Send fans
// out to every matching listener concurrently via errgroup.Group and waits
// for all of them before returning, so "Send returned nil" means "delivered
// to every matching listener" — the same contract a real uP-L1 transport
// makes to its callers (spec §6).
type Transport struct {
	source uri.URI

	mu            sync.Mutex
	registrations []registration
}

// New constructs a Transport identifying itself as source.
func New(source uri.URI) *Transport {
	return &Transport{source: source}
}

// Source implements transport.Transport.
func (t *Transport) Source() uri.URI {
	return t.source
}

// Send implements transport.Transport: every currently-registered listener
// whose filters match msg's Source/Sink is invoked concurrently; Send
// returns the first listener error, if any, once all have completed.
func (t *Transport) Send(ctx context.Context, msg umessage.Message) error {
	t.mu.Lock()
	matches := make([]registration, 0, len(t.registrations))
	for _, r := range t.registrations {
		if matchesFilter(r.sourceFilter, msg.Attributes.Source) && matchesFilter(r.sinkFilter, msg.Attributes.Sink) {
			matches = append(matches, r)
		}
	}
	t.mu.Unlock()

	g, gctx := errgroup.WithContext(ctx)
	for _, r := range matches {
		r := r
		g.Go(func() error {
			r.listener.OnMessage(gctx, msg)
			return nil
		})
	}
	return g.Wait()
}

// RegisterListener implements transport.Transport.
func (t *Transport) RegisterListener(_ context.Context, sourceFilter, sinkFilter uri.URI, listener transport.Listener) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.registrations = append(t.registrations, registration{sourceFilter: sourceFilter, sinkFilter: sinkFilter, listener: listener})
	return nil
}

// UnregisterListener implements transport.Transport. It is a no-op if no
// registration matches exactly (same filters, same listener identity).
func (t *Transport) UnregisterListener(_ context.Context, sourceFilter, sinkFilter uri.URI, listener transport.Listener) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, r := range t.registrations {
		if r.sourceFilter == sourceFilter && r.sinkFilter == sinkFilter && r.listener == listener {
			t.registrations = append(t.registrations[:i], t.registrations[i+1:]...)
			return nil
		}
	}
	return nil
}

func matchesFilter(filter, value uri.URI) bool {
	if filter.IsAny() {
		return true
	}
	return filter == value
}

// View shares a Transport's bus but reports a different Source — modeling
// multiple local entities multiplexed over one in-process transport, which
// is how cmd/echo runs a caller and a server in a single process without a
// real network transport (SPEC_FULL.md §4.9).
type View struct {
	*Transport
	source uri.URI
}

// As returns a View of t that identifies itself as source.
func (t *Transport) As(source uri.URI) *View {
	return &View{Transport: t, source: source}
}

// Source overrides the embedded Transport's Source for this view.
func (v *View) Source() uri.URI {
	return v.source
}
