// Package communication implements the uP-L2 capabilities built directly on
// top of a transport and an RPC client: Publisher, Notifier, and Subscriber
// (spec §4.7), composed into a single Client façade (spec §6 "Public API
// surface").
package communication

import (
	"context"

	"github.com/google/uuid"

	"github.com/eclipse-uprotocol/up-client-go/pkg/calloptions"
	"github.com/eclipse-uprotocol/up-client-go/pkg/transport"
	"github.com/eclipse-uprotocol/up-client-go/pkg/umessage"
	"github.com/eclipse-uprotocol/up-client-go/pkg/upayload"
	"github.com/eclipse-uprotocol/up-client-go/pkg/uri"
	"github.com/eclipse-uprotocol/up-client-go/pkg/ustatus"
)

// Publisher sends PUBLISH messages on locally-addressed topics.
type Publisher struct {
	t           transport.Transport
	uriProvider uri.LocalUriProvider
}

// NewPublisher constructs a Publisher over t.
func NewPublisher(t transport.Transport, uriProvider uri.LocalUriProvider) *Publisher {
	return &Publisher{t: t, uriProvider: uriProvider}
}

// Publish sends payload on the topic identified by resourceID, under
// uriProvider.Source(). It fails with INVALID_ARGUMENT if resourceID does
// not address a topic (spec §4.7).
func (p *Publisher) Publish(ctx context.Context, resourceID uint16, opts calloptions.CallOptions, payload upayload.Payload) error {
	topic := p.uriProvider.GetResource(resourceID)
	if !topic.IsTopic() {
		return ustatus.Wrapf(ustatus.CodeInvalidArgument, "communication: resource id %#04x is not a topic", resourceID)
	}

	msg := umessage.NewPublish(uuid.NewString(), topic, payload)
	msg.Attributes = opts.ApplyToMessage(msg.Attributes)
	return p.t.Send(ctx, msg)
}
