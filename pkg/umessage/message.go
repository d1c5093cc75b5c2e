// Package umessage implements the uProtocol message data model: the four
// message types (Publish, Notification, Request, Response) and their
// attributes, per spec §3.
package umessage

import (
	"github.com/eclipse-uprotocol/up-client-go/pkg/upayload"
	"github.com/eclipse-uprotocol/up-client-go/pkg/uri"
	"github.com/eclipse-uprotocol/up-client-go/pkg/ustatus"
)

// Type is one of the four uProtocol message types.
type Type int

const (
	TypePublish Type = iota
	TypeNotification
	TypeRequest
	TypeResponse
)

func (t Type) String() string {
	switch t {
	case TypePublish:
		return "PUBLISH"
	case TypeNotification:
		return "NOTIFICATION"
	case TypeRequest:
		return "REQUEST"
	case TypeResponse:
		return "RESPONSE"
	default:
		return "UNKNOWN"
	}
}

// Priority is the uProtocol message priority class. CS4 is the default
// priority applied by calloptions.Default.
type Priority int

const (
	PriorityCS0 Priority = iota
	PriorityCS1
	PriorityCS2
	PriorityCS3
	PriorityCS4
	PriorityCS5
	PriorityCS6
)

// Attributes carries everything about a Message except its payload bytes.
type Attributes struct {
	ID            string
	Type          Type
	Source        uri.URI
	Sink          uri.URI
	Priority      Priority
	TTLMillis     uint32
	Token         string
	Format        upayload.Format
	CommStatus    *ustatus.Code
	ReqID         string
}

// Message is the uProtocol UMessage shape this client composes and inspects;
// it never parses a wire format (that is an external collaborator's job).
type Message struct {
	Attributes Attributes
	Payload    upayload.Payload
}

// NewRequest builds a REQUEST message addressed at methodURI.
func NewRequest(id string, source, methodURI uri.URI, payload upayload.Payload) Message {
	return Message{
		Attributes: Attributes{
			ID:     id,
			Type:   TypeRequest,
			Source: source,
			Sink:   methodURI,
			Format: payload.Format,
		},
		Payload: payload,
	}
}

// NewResponse builds a RESPONSE message answering req. commStatus is nil for
// a successful response.
func NewResponse(id string, req Attributes, payload upayload.Payload, commStatus *ustatus.Code) Message {
	return Message{
		Attributes: Attributes{
			ID:         id,
			Type:       TypeResponse,
			Source:     req.Sink,
			Sink:       req.Source,
			Format:     payload.Format,
			ReqID:      req.ID,
			CommStatus: commStatus,
		},
		Payload: payload,
	}
}

// NewPublish builds a PUBLISH message on topic.
func NewPublish(id string, topic uri.URI, payload upayload.Payload) Message {
	return Message{
		Attributes: Attributes{
			ID:     id,
			Type:   TypePublish,
			Source: topic,
			Format: payload.Format,
		},
		Payload: payload,
	}
}

// NewNotification builds a NOTIFICATION message from source to destination.
func NewNotification(id string, source, destination uri.URI, payload upayload.Payload) Message {
	return Message{
		Attributes: Attributes{
			ID:     id,
			Type:   TypeNotification,
			Source: source,
			Sink:   destination,
			Format: payload.Format,
		},
		Payload: payload,
	}
}
