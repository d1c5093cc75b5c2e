package rpc

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/eclipse-uprotocol/up-client-go/pkg/calloptions"
	"github.com/eclipse-uprotocol/up-client-go/pkg/transport"
	"github.com/eclipse-uprotocol/up-client-go/pkg/umessage"
	"github.com/eclipse-uprotocol/up-client-go/pkg/upayload"
	"github.com/eclipse-uprotocol/up-client-go/pkg/uri"
	"github.com/eclipse-uprotocol/up-client-go/pkg/ustatus"
)

// fakeTransport is a minimal transport.Transport stub: Send invokes onSend
// (if set) instead of actually delivering anything, and the single
// registered listener is captured so a test can feed it a synthetic
// RESPONSE, mirroring spec §8's "transport stub" scenarios.
type fakeTransport struct {
	source uri.URI
	onSend func(msg umessage.Message)

	mu       sync.Mutex
	listener transport.Listener
}

func (f *fakeTransport) Source() uri.URI { return f.source }

func (f *fakeTransport) Send(_ context.Context, msg umessage.Message) error {
	if f.onSend != nil {
		f.onSend(msg)
	}
	return nil
}

func (f *fakeTransport) RegisterListener(_ context.Context, _, _ uri.URI, listener transport.Listener) error {
	f.mu.Lock()
	f.listener = listener
	f.mu.Unlock()
	return nil
}

func (f *fakeTransport) UnregisterListener(_ context.Context, _, _ uri.URI, _ transport.Listener) error {
	f.mu.Lock()
	f.listener = nil
	f.mu.Unlock()
	return nil
}

func (f *fakeTransport) deliver(ctx context.Context, msg umessage.Message) {
	f.mu.Lock()
	l := f.listener
	f.mu.Unlock()
	l.OnMessage(ctx, msg)
}

func newTestClient(t *testing.T, ft *fakeTransport) *Client {
	t.Helper()
	c, err := NewClient(context.Background(), ft, uri.NewFixedProvider(ft.source))
	require.NoError(t, err)
	return c
}

// Scenario 1 (spec §8): happy-path RPC.
func TestInvokeMethodHappyPath(t *testing.T) {
	ft := &fakeTransport{source: uri.URI{Authority: "vcu", Entity: "caller", VersionMajor: 1}}
	ft.onSend = func(msg umessage.Message) {
		go func() {
			payload, err := upayload.PackToAny[wrapperspb.Int32Value](wrapperspb.Int32(3))
			require.NoError(t, err)
			resp := umessage.NewResponse(uuid.NewString(), msg.Attributes, payload, nil)
			ft.deliver(context.Background(), resp)
		}()
	}
	client := newTestClient(t, ft)

	methodURI := uri.URI{Authority: "vcu", Entity: "svc", VersionMajor: 1, ResourceID: 1}
	respPayload, err := client.InvokeMethod(context.Background(), methodURI, upayload.Empty, calloptions.Default)
	require.NoError(t, err)

	value, err := upayload.Unpack[wrapperspb.Int32Value, *wrapperspb.Int32Value](*respPayload)
	require.NoError(t, err)
	require.Equal(t, int32(3), value.Value)

	client.mu.Lock()
	defer client.mu.Unlock()
	require.Empty(t, client.pending)
}

// Scenario 2 (spec §8): duplicate request id.
func TestInvokeMethodDuplicateRequestID(t *testing.T) {
	ft := &fakeTransport{source: uri.URI{Authority: "vcu", Entity: "caller", VersionMajor: 1}}
	sent := make(chan struct{}, 1)
	ft.onSend = func(_ umessage.Message) { sent <- struct{}{} }
	client := newTestClient(t, ft)

	methodURI := uri.URI{Authority: "vcu", Entity: "svc", VersionMajor: 1, ResourceID: 1}
	ctx1, cancel1 := context.WithCancel(context.Background())
	defer cancel1()

	go func() {
		_, _ = client.invokeWithID(ctx1, "dup-id", methodURI, upayload.Empty, calloptions.Default)
	}()
	<-sent

	_, err := client.invokeWithID(context.Background(), "dup-id", methodURI, upayload.Empty, calloptions.Default)
	require.Error(t, err)
	require.Equal(t, ustatus.CodeAborted, ustatus.CodeOf(err))

	client.mu.Lock()
	require.Len(t, client.pending, 1)
	client.mu.Unlock()
}

// Scenario 3 (spec §8): timeout.
func TestInvokeMethodTimeout(t *testing.T) {
	ft := &fakeTransport{source: uri.URI{Authority: "vcu", Entity: "caller", VersionMajor: 1}}
	client := newTestClient(t, ft)

	methodURI := uri.URI{Authority: "vcu", Entity: "svc", VersionMajor: 1, ResourceID: 1}
	opts := calloptions.CallOptions{TimeoutMillis: 50, Priority: calloptions.Default.Priority}

	start := time.Now()
	_, err := client.invokeWithID(context.Background(), "timeout-id", methodURI, upayload.Empty, opts)
	elapsed := time.Since(start)

	require.Error(t, err)
	require.Equal(t, ustatus.CodeDeadlineExceeded, ustatus.CodeOf(err))
	require.GreaterOrEqual(t, elapsed, 50*time.Millisecond)
	require.Less(t, elapsed, 200*time.Millisecond)

	client.mu.Lock()
	require.Empty(t, client.pending)
	client.mu.Unlock()

	// A late synthetic response for the same (now-removed) id must be
	// dropped silently rather than crash the listener.
	require.NotPanics(t, func() {
		late := umessage.NewResponse(uuid.NewString(), umessage.Attributes{ID: "timeout-id", Sink: ft.source}, upayload.Empty, nil)
		ft.deliver(context.Background(), late)
	})
}

// Universal invariant (spec §8): cancelling the context removes the pending
// entry and completes the call with CANCELLED.
func TestInvokeMethodCancellation(t *testing.T) {
	ft := &fakeTransport{source: uri.URI{Authority: "vcu", Entity: "caller", VersionMajor: 1}}
	client := newTestClient(t, ft)

	methodURI := uri.URI{Authority: "vcu", Entity: "svc", VersionMajor: 1, ResourceID: 1}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		_, err := client.invokeWithID(ctx, "cancel-id", methodURI, upayload.Empty, calloptions.Default)
		done <- err
	}()
	time.Sleep(10 * time.Millisecond)
	cancel()

	err := <-done
	require.Error(t, err)

	client.mu.Lock()
	require.Empty(t, client.pending)
	client.mu.Unlock()
}
