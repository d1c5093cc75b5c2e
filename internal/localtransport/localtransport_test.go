package localtransport

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/eclipse-uprotocol/up-client-go/pkg/transport"
	"github.com/eclipse-uprotocol/up-client-go/pkg/umessage"
	"github.com/eclipse-uprotocol/up-client-go/pkg/upayload"
	"github.com/eclipse-uprotocol/up-client-go/pkg/uri"
)

func TestSendDeliversToMatchingListenerOnly(t *testing.T) {
	bus := New(uri.URI{})
	source := uri.URI{Authority: "vcu", Entity: "door", VersionMajor: 1, ResourceID: 0x8000}
	other := uri.URI{Authority: "vcu", Entity: "window", VersionMajor: 1, ResourceID: 0x8000}

	var mu sync.Mutex
	var received []umessage.Message
	listener := transport.NewListener(func(_ context.Context, msg umessage.Message) {
		mu.Lock()
		received = append(received, msg)
		mu.Unlock()
	})

	require.NoError(t, bus.RegisterListener(context.Background(), source, uri.Any(), listener))

	matching := umessage.NewPublish("1", source, upayload.Empty)
	nonMatching := umessage.NewPublish("2", other, upayload.Empty)

	require.NoError(t, bus.Send(context.Background(), matching))
	require.NoError(t, bus.Send(context.Background(), nonMatching))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, received, 1)
	require.Equal(t, "1", received[0].Attributes.ID)
}

func TestUnregisterListenerStopsDelivery(t *testing.T) {
	bus := New(uri.URI{})
	topic := uri.URI{Authority: "vcu", Entity: "door", VersionMajor: 1, ResourceID: 0x8000}

	var count int
	var mu sync.Mutex
	listener := transport.NewListener(func(_ context.Context, _ umessage.Message) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	ctx := context.Background()
	require.NoError(t, bus.RegisterListener(ctx, topic, uri.Any(), listener))
	require.NoError(t, bus.Send(ctx, umessage.NewPublish("1", topic, upayload.Empty)))
	require.NoError(t, bus.UnregisterListener(ctx, topic, uri.Any(), listener))
	require.NoError(t, bus.Send(ctx, umessage.NewPublish("2", topic, upayload.Empty)))

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, 1, count)
}

func TestViewOverridesSource(t *testing.T) {
	bus := New(uri.URI{})
	view := bus.As(uri.URI{Authority: "vcu", Entity: "caller"})
	require.Equal(t, uri.URI{Authority: "vcu", Entity: "caller"}, view.Source())
}
