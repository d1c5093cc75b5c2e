package communication

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/eclipse-uprotocol/up-client-go/internal/localtransport"
	"github.com/eclipse-uprotocol/up-client-go/pkg/calloptions"
	"github.com/eclipse-uprotocol/up-client-go/pkg/rpc"
	"github.com/eclipse-uprotocol/up-client-go/pkg/subscription"
	"github.com/eclipse-uprotocol/up-client-go/pkg/umessage"
	"github.com/eclipse-uprotocol/up-client-go/pkg/upayload"
	"github.com/eclipse-uprotocol/up-client-go/pkg/uri"
)

func TestClientAggregatesCapabilities(t *testing.T) {
	ctx := context.Background()
	bus := localtransport.New(uri.URI{})
	serviceURI := uri.URI{Authority: "vcu", Entity: "subscriptions", VersionMajor: 1}
	fakeSubscriptionService(t, bus, serviceURI, subscription.StateSubscribed)

	serverURI := uri.URI{Authority: "vcu", Entity: "echo", VersionMajor: 1}
	callerURI := uri.URI{Authority: "vcu", Entity: "caller", VersionMajor: 1}

	server, err := NewClient(ctx, bus.As(serverURI), uri.NewFixedProvider(serverURI), serviceURI, uri.DefaultValidator{}, rpc.Hooks{})
	require.NoError(t, err)
	caller, err := NewClient(ctx, bus.As(callerURI), uri.NewFixedProvider(callerURI), serviceURI, uri.DefaultValidator{}, rpc.Hooks{})
	require.NoError(t, err)

	const methodID uint16 = 1
	require.NoError(t, server.RPCServer.RegisterRequestHandler(ctx, methodID, func(_ context.Context, req umessage.Message) (upayload.Payload, error) {
		in, err := upayload.Unpack[wrapperspb.StringValue, *wrapperspb.StringValue](req.Payload)
		if err != nil {
			return upayload.Empty, err
		}
		return upayload.PackToAny[wrapperspb.StringValue](wrapperspb.String("echo:" + in.Value))
	}))

	requestPayload, err := upayload.PackToAny[wrapperspb.StringValue](wrapperspb.String("hi"))
	require.NoError(t, err)

	methodURI := serverURI.WithResource(methodID)
	respPayload, err := caller.RPCClient.InvokeMethod(ctx, methodURI, requestPayload, calloptions.Default)
	require.NoError(t, err)

	out, err := upayload.Unpack[wrapperspb.StringValue, *wrapperspb.StringValue](*respPayload)
	require.NoError(t, err)
	require.Equal(t, "echo:hi", out.Value)

	require.NoError(t, caller.Close(ctx))
}
