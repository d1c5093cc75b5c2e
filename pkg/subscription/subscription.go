// Package subscription implements the uProtocol subscription service's
// request/response/notification shapes consumed by the Subscriber (spec
// §4.7, §6): SubscriptionRequest/Response, UnsubscribeRequest/Response, and
// the Update carried on the service's notification topic. The service
// itself is an external collaborator (out of scope, per spec §1); this
// package only describes the messages exchanged with it.
package subscription

import (
	"github.com/eclipse-uprotocol/up-client-go/pkg/uri"
)

// Method ids the subscription service exposes (spec §6).
const (
	MethodSubscribe   uint16 = 1
	MethodUnsubscribe uint16 = 2
)

// NotificationTopic is the resource id 0x8000 on which the subscription
// service publishes Update notifications (spec §6).
const NotificationTopic uint16 = 0x8000

// State is the subscription state machine the remote service reports.
type State int

const (
	StateUnsubscribed State = iota
	StateSubscribePending
	StateSubscribed
	StateUnsubscribePending
)

func (s State) String() string {
	switch s {
	case StateUnsubscribed:
		return "UNSUBSCRIBED"
	case StateSubscribePending:
		return "SUBSCRIBE_PENDING"
	case StateSubscribed:
		return "SUBSCRIBED"
	case StateUnsubscribePending:
		return "UNSUBSCRIBE_PENDING"
	default:
		return "UNKNOWN"
	}
}

// Status wraps the state the remote service reports for a topic.
type Status struct {
	State State
}

// Request asks the remote subscription service to subscribe Subscriber to
// Topic (spec §4.7 step 1).
type Request struct {
	Topic      uri.URI
	Subscriber uri.URI
}

// Response answers a Request with the resulting Status.
type Response struct {
	Status Status
}

// UnsubscribeRequest asks the remote subscription service to unsubscribe
// Subscriber from Topic.
type UnsubscribeRequest struct {
	Topic      uri.URI
	Subscriber uri.URI
}

// UnsubscribeResponse acknowledges an UnsubscribeRequest.
type UnsubscribeResponse struct {
	Status Status
}

// Update is the payload carried on NotificationTopic: a state change for one
// topic, delivered to every subscriber of the subscription service's own
// notification channel (spec §4.7).
type Update struct {
	Topic  uri.URI
	Status Status
}
