package communication

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/eclipse-uprotocol/up-client-go/internal/ulog"
	"github.com/eclipse-uprotocol/up-client-go/pkg/calloptions"
	"github.com/eclipse-uprotocol/up-client-go/pkg/rpc"
	"github.com/eclipse-uprotocol/up-client-go/pkg/subscription"
	"github.com/eclipse-uprotocol/up-client-go/pkg/transport"
	"github.com/eclipse-uprotocol/up-client-go/pkg/umessage"
	"github.com/eclipse-uprotocol/up-client-go/pkg/uri"
	"github.com/eclipse-uprotocol/up-client-go/pkg/ustatus"
)

// ChangeHandler observes subscription-state changes reported by the remote
// subscription service's Update notifications (spec §4.7).
type ChangeHandler func(topic uri.URI, status subscription.Status)

// Subscriber composes the three-step subscribe/unsubscribe protocol against
// a remote subscription service (spec §4.7, §6): invoke the remote RPC,
// register a transport listener, and track an optional per-topic
// ChangeHandler. It also owns the single notification listener on the
// service's own Update topic.
type Subscriber struct {
	t                   transport.Transport
	uriProvider         uri.LocalUriProvider
	rpcClient           *rpc.Client
	subscriptionService uri.URI

	mu             sync.Mutex
	changeHandlers map[uri.URI]ChangeHandler

	notifyListener *transport.ListenerFunc
	subscribeOnce  singleflight.Group
}

// NewSubscriber constructs a Subscriber that calls the subscription service
// addressed by subscriptionService (its Authority/Entity/VersionMajor;
// ResourceID is overwritten per call) over rpcClient, and registers its
// Update notification listener immediately (spec §4.7 "owns a notification
// listener on the remote subscription service's notification topic").
func NewSubscriber(ctx context.Context, t transport.Transport, uriProvider uri.LocalUriProvider, rpcClient *rpc.Client, subscriptionService uri.URI) (*Subscriber, error) {
	s := &Subscriber{
		t:                   t,
		uriProvider:         uriProvider,
		rpcClient:           rpcClient,
		subscriptionService: subscriptionService,
		changeHandlers:      make(map[uri.URI]ChangeHandler),
	}
	s.notifyListener = transport.NewListener(s.onNotification)

	notificationTopic := subscriptionService.WithResource(subscription.NotificationTopic)
	if err := t.RegisterListener(ctx, uri.Any(), notificationTopic, s.notifyListener); err != nil {
		return nil, err
	}
	return s, nil
}

// Subscribe runs the three-step subscribe protocol (spec §4.7):
//  1. invoke the remote Subscribe method and wait for SubscriptionResponse;
//  2. if the resulting state is SUBSCRIBED or SUBSCRIBE_PENDING, register
//     listener on the transport for topic;
//  3. if changeHandler is non-nil, record it, failing ALREADY_EXISTS if a
//     handler is already mapped for topic.
//
// Concurrent Subscribe calls for the same topic are collapsed into one
// outstanding remote call via singleflight — an allowed strengthening (spec
// §4.8 domain stack note) since at most one change handler per topic is
// permitted regardless of how many callers raced to install it.
func (s *Subscriber) Subscribe(ctx context.Context, topic uri.URI, listener transport.Listener, opts calloptions.CallOptions, changeHandler ChangeHandler) (subscription.Response, error) {
	v, err, _ := s.subscribeOnce.Do(topic.String(), func() (interface{}, error) {
		return s.doSubscribeRPC(ctx, topic, opts)
	})
	if err != nil {
		return subscription.Response{}, err
	}
	resp := v.(subscription.Response)

	if resp.Status.State == subscription.StateSubscribed || resp.Status.State == subscription.StateSubscribePending {
		if err := s.t.RegisterListener(ctx, topic, uri.Any(), listener); err != nil {
			return resp, err
		}
	}

	if changeHandler != nil {
		s.mu.Lock()
		_, exists := s.changeHandlers[topic]
		if !exists {
			s.changeHandlers[topic] = changeHandler
		}
		s.mu.Unlock()
		if exists {
			return resp, ustatus.Wrapf(ustatus.CodeAlreadyExists, "communication: change handler already registered for %s", topic)
		}
	}

	return resp, nil
}

func (s *Subscriber) doSubscribeRPC(ctx context.Context, topic uri.URI, opts calloptions.CallOptions) (subscription.Response, error) {
	req := subscription.Request{Topic: topic, Subscriber: s.t.Source()}
	methodURI := s.subscriptionService.WithResource(subscription.MethodSubscribe)
	payload, err := s.rpcClient.InvokeMethod(ctx, methodURI, subscription.PackRequest(req), opts)
	if err != nil {
		return subscription.Response{}, err
	}
	return subscription.UnpackResponse(*payload)
}

// Unsubscribe invokes the remote Unsubscribe method; on success it
// unregisters listener on the transport. A transport unregister failure
// surfaces to the caller but leaves the change-handler map entry for topic
// in place (spec §8 scenario 6, §9: documented partial-failure behavior).
func (s *Subscriber) Unsubscribe(ctx context.Context, topic uri.URI, listener transport.Listener, opts calloptions.CallOptions) error {
	req := subscription.UnsubscribeRequest{Topic: topic, Subscriber: s.t.Source()}
	methodURI := s.subscriptionService.WithResource(subscription.MethodUnsubscribe)
	payload, err := s.rpcClient.InvokeMethod(ctx, methodURI, subscription.PackUnsubscribeRequest(req), opts)
	if err != nil {
		return err
	}
	if _, err := subscription.UnpackUnsubscribeResponse(*payload); err != nil {
		return err
	}
	return s.t.UnregisterListener(ctx, topic, uri.Any(), listener)
}

// UnregisterListener removes listener from the transport without touching
// remote subscription state (spec §4.7 "transport-only").
func (s *Subscriber) UnregisterListener(ctx context.Context, topic uri.URI, listener transport.Listener) error {
	return s.t.UnregisterListener(ctx, topic, uri.Any(), listener)
}

// Close clears the change-handler map and unregisters the notification
// listener (spec §4.7).
func (s *Subscriber) Close(ctx context.Context) error {
	s.mu.Lock()
	s.changeHandlers = make(map[uri.URI]ChangeHandler)
	s.mu.Unlock()

	notificationTopic := s.subscriptionService.WithResource(subscription.NotificationTopic)
	return s.t.UnregisterListener(ctx, uri.Any(), notificationTopic, s.notifyListener)
}

// onNotification handles an Update delivered on the subscription service's
// notification topic: it looks up the change handler for the reported topic
// and invokes it. A non-Update message, or a topic with no mapped handler,
// is discarded. A panicking change handler is recovered and discarded — it
// must never crash the notification dispatch path (spec §4.7).
func (s *Subscriber) onNotification(_ context.Context, msg umessage.Message) {
	if msg.Attributes.Type != umessage.TypeNotification {
		return
	}
	update, err := subscription.UnpackUpdate(msg.Payload)
	if err != nil {
		ulog.Debug("communication: discarding malformed update", zap.Error(err))
		return
	}

	s.mu.Lock()
	handler, ok := s.changeHandlers[update.Topic]
	s.mu.Unlock()
	if !ok {
		return
	}

	s.invokeChangeHandler(handler, update)
}

func (s *Subscriber) invokeChangeHandler(handler ChangeHandler, update subscription.Update) {
	defer func() {
		if r := recover(); r != nil {
			ulog.Warn("communication: change handler panicked, discarding", zap.Any("recovered", r))
		}
	}()
	handler(update.Topic, update.Status)
}
