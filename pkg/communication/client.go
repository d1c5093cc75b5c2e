package communication

import (
	"context"

	"github.com/eclipse-uprotocol/up-client-go/pkg/rpc"
	"github.com/eclipse-uprotocol/up-client-go/pkg/transport"
	"github.com/eclipse-uprotocol/up-client-go/pkg/uri"
)

// Client is the public façade aggregating Publisher, Notifier, Subscriber,
// and the RPC client/server over one shared transport (spec §6: "a single
// Client type aggregates Publisher, Notifier, Subscriber, RpcClient,
// RpcServer"). Each capability is a small, independently usable type; Client
// exists purely to wire all five to the same transport and uriProvider from
// one constructor call, per spec §9's "interface composition, not a deep
// hierarchy" guidance.
type Client struct {
	*Publisher
	*Notifier
	*Subscriber

	RPCClient *rpc.Client
	RPCServer *rpc.Server
}

// NewClient wires every capability to t and uriProvider. subscriptionService
// identifies the remote subscription service the Subscriber talks to;
// validator and hooks configure the embedded RPC server (spec §4.6).
func NewClient(ctx context.Context, t transport.Transport, uriProvider uri.LocalUriProvider, subscriptionService uri.URI, validator uri.Validator, hooks rpc.Hooks) (*Client, error) {
	rpcClient, err := rpc.NewClient(ctx, t, uriProvider)
	if err != nil {
		return nil, err
	}
	subscriber, err := NewSubscriber(ctx, t, uriProvider, rpcClient, subscriptionService)
	if err != nil {
		return nil, err
	}

	return &Client{
		Publisher:  NewPublisher(t, uriProvider),
		Notifier:   NewNotifier(t, uriProvider),
		Subscriber: subscriber,
		RPCClient:  rpcClient,
		RPCServer:  rpc.NewServer(t, uriProvider, validator, hooks),
	}, nil
}

// Close tears down the Subscriber's notification listener and the RPC
// client's response listener. The RPC server's handler registrations are
// left to the caller to unregister individually (spec §4.6 has no
// bulk-unregister operation).
func (c *Client) Close(ctx context.Context) error {
	if err := c.Subscriber.Close(ctx); err != nil {
		return err
	}
	return c.RPCClient.Close(ctx)
}
