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

// Notifier sends NOTIFICATION messages to a specific destination and
// manages listener registration for notification topics. Unlike Subscriber,
// it performs no remote subscription-service handshake: registration is a
// direct transport call (spec §4.7).
type Notifier struct {
	t           transport.Transport
	uriProvider uri.LocalUriProvider
}

// NewNotifier constructs a Notifier over t.
func NewNotifier(t transport.Transport, uriProvider uri.LocalUriProvider) *Notifier {
	return &Notifier{t: t, uriProvider: uriProvider}
}

// Notify sends payload from the local resourceID to destination.
func (n *Notifier) Notify(ctx context.Context, resourceID uint16, destination uri.URI, opts calloptions.CallOptions, payload upayload.Payload) error {
	source := n.uriProvider.GetResource(resourceID)
	msg := umessage.NewNotification(uuid.NewString(), source, destination, payload)
	msg.Attributes = opts.ApplyToMessage(msg.Attributes)
	return n.t.Send(ctx, msg)
}

// RegisterNotificationListener registers listener to receive NOTIFICATION
// messages sent to topic. Wildcards are rejected with INVALID_ARGUMENT
// (spec §4.7: "wildcards are rejected").
func (n *Notifier) RegisterNotificationListener(ctx context.Context, topic uri.URI, listener transport.Listener) error {
	if topic.IsAny() {
		return ustatus.Wrap(ustatus.CodeInvalidArgument, "communication: wildcard topic rejected")
	}
	return n.t.RegisterListener(ctx, uri.Any(), topic, listener)
}

// UnregisterNotificationListener pairs with RegisterNotificationListener.
func (n *Notifier) UnregisterNotificationListener(ctx context.Context, topic uri.URI, listener transport.Listener) error {
	if topic.IsAny() {
		return ustatus.Wrap(ustatus.CodeInvalidArgument, "communication: wildcard topic rejected")
	}
	return n.t.UnregisterListener(ctx, uri.Any(), topic, listener)
}
