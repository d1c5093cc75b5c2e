// Command echo is a minimal demonstration of the client façade: one
// communication.Client registers an echo RPC method, another invokes it,
// both sharing one in-process internal/localtransport bus — the collapsed,
// single-process stand-in for the teacher's examples/echo_proto client and
// server pair (SPEC_FULL.md §4.9).
package main

import (
	"context"
	"fmt"
	"log"

	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/eclipse-uprotocol/up-client-go/internal/localtransport"
	"github.com/eclipse-uprotocol/up-client-go/pkg/calloptions"
	"github.com/eclipse-uprotocol/up-client-go/pkg/communication"
	"github.com/eclipse-uprotocol/up-client-go/pkg/rpc"
	"github.com/eclipse-uprotocol/up-client-go/pkg/umessage"
	"github.com/eclipse-uprotocol/up-client-go/pkg/upayload"
	"github.com/eclipse-uprotocol/up-client-go/pkg/uri"
)

// echoMethodID is the resource id the server registers its echo handler
// under.
const echoMethodID uint16 = 1

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	ctx := context.Background()

	serverURI := uri.URI{Authority: "vcu", Entity: "echo.server", VersionMajor: 1}
	callerURI := uri.URI{Authority: "vcu", Entity: "echo.caller", VersionMajor: 1}
	subscriptionServiceURI := uri.URI{Authority: "vcu", Entity: "subscriptions", VersionMajor: 1}

	bus := localtransport.New(uri.URI{})
	serverTransport := bus.As(serverURI)
	callerTransport := bus.As(callerURI)

	validator := uri.DefaultValidator{}

	server, err := communication.NewClient(ctx, serverTransport, uri.NewFixedProvider(serverURI), subscriptionServiceURI, validator, rpc.Hooks{})
	if err != nil {
		return fmt.Errorf("construct server client: %w", err)
	}
	caller, err := communication.NewClient(ctx, callerTransport, uri.NewFixedProvider(callerURI), subscriptionServiceURI, validator, rpc.Hooks{})
	if err != nil {
		return fmt.Errorf("construct caller client: %w", err)
	}

	if err := server.RPCServer.RegisterRequestHandler(ctx, echoMethodID, echoHandler); err != nil {
		return fmt.Errorf("register echo handler: %w", err)
	}
	if err := server.RPCServer.RegisterRequestHandler(ctx, capnpGreetingMethodID, capnpGreetingHandler); err != nil {
		return fmt.Errorf("register capnp greeting handler: %w", err)
	}

	methodURI := serverURI.WithResource(echoMethodID)
	requestPayload, err := upayload.PackToAny[wrapperspb.StringValue](wrapperspb.String("hello, uProtocol"))
	if err != nil {
		return fmt.Errorf("pack request: %w", err)
	}

	responsePayload, err := caller.RPCClient.InvokeMethod(ctx, methodURI, requestPayload, calloptions.Default)
	result, err := rpc.MapResponse[wrapperspb.StringValue, *wrapperspb.StringValue](responsePayload, err)
	if err != nil {
		return fmt.Errorf("invoke echo: %w", err)
	}
	fmt.Println(result.Value)

	capnpMethodURI := serverURI.WithResource(capnpGreetingMethodID)
	capnpRequestPayload, err := packGreeting("uProtocol")
	if err != nil {
		return fmt.Errorf("pack capnp request: %w", err)
	}
	capnpResponsePayload, err := caller.RPCClient.InvokeMethod(ctx, capnpMethodURI, capnpRequestPayload, calloptions.Default)
	if err != nil {
		return fmt.Errorf("invoke capnp greeting: %w", err)
	}
	greeting, err := unpackGreeting(*capnpResponsePayload)
	if err != nil {
		return fmt.Errorf("unpack capnp response: %w", err)
	}
	fmt.Println(greeting)

	return nil
}

func echoHandler(_ context.Context, req umessage.Message) (upayload.Payload, error) {
	in, err := upayload.Unpack[wrapperspb.StringValue, *wrapperspb.StringValue](req.Payload)
	if err != nil {
		return upayload.Empty, err
	}
	return upayload.PackToAny[wrapperspb.StringValue](wrapperspb.String(in.Value))
}
