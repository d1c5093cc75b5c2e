// Package calloptions implements CallOptions (C2): the immutable bundle of
// timeout, priority, and bearer token applied to any outbound message.
package calloptions

import "github.com/eclipse-uprotocol/up-client-go/pkg/umessage"

// CallOptions is immutable once constructed; every field is copied by value.
type CallOptions struct {
	TimeoutMillis uint32
	Priority      umessage.Priority
	Token         string
}

// Default is {10_000 ms, CS4, ""}, per spec §3/§8.
var Default = CallOptions{
	TimeoutMillis: 10_000,
	Priority:      umessage.PriorityCS4,
}

// ApplyToMessage sets priority, ttl (from TimeoutMillis), and token (if
// non-blank) on attrs, returning the updated copy.
func (o CallOptions) ApplyToMessage(attrs umessage.Attributes) umessage.Attributes {
	attrs.Priority = o.Priority
	attrs.TTLMillis = o.TimeoutMillis
	if o.Token != "" {
		attrs.Token = o.Token
	}
	return attrs
}
