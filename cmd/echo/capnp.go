package main

import (
	"context"

	"capnproto.org/go/capnp/v3"

	"github.com/eclipse-uprotocol/up-client-go/pkg/umessage"
	"github.com/eclipse-uprotocol/up-client-go/pkg/upayload"
	"github.com/eclipse-uprotocol/up-client-go/pkg/ustatus"
)

// capnpGreetingMethodID is a second echo-style method whose payload is a raw
// Cap'n Proto message carried as an opaque upayload.Format passthrough —
// the core never decodes it (spec §3, §4.1). Grounded on the teacher's
// examples/echo_capnp wiring of capnproto.org/go/capnp/v3 for a
// request/response body; this demo builds the single-text-field message by
// hand against the capnp.Struct API instead of carrying over generated
// schema code, since no .capnp schema is part of this repo.
const capnpGreetingMethodID uint16 = 2

var capnpPayloadFormat = upayload.Passthrough("capnp")

// packGreeting encodes name as a one-field Cap'n Proto struct message.
func packGreeting(name string) (upayload.Payload, error) {
	_, seg, err := capnp.NewMessage(capnp.SingleSegment(nil))
	if err != nil {
		return upayload.Empty, ustatus.Wrapf(ustatus.CodeInternal, "capnp: new message: %v", err)
	}
	root, err := capnp.NewRootStruct(seg, capnp.ObjectSize{PointerCount: 1})
	if err != nil {
		return upayload.Empty, ustatus.Wrapf(ustatus.CodeInternal, "capnp: new root struct: %v", err)
	}
	if err := root.SetText(0, name); err != nil {
		return upayload.Empty, ustatus.Wrapf(ustatus.CodeInternal, "capnp: set text: %v", err)
	}
	data, err := root.Message().Marshal()
	if err != nil {
		return upayload.Empty, ustatus.Wrapf(ustatus.CodeInternal, "capnp: marshal: %v", err)
	}
	return upayload.PackBytes(data, capnpPayloadFormat), nil
}

// unpackGreeting reverses packGreeting.
func unpackGreeting(p upayload.Payload) (string, error) {
	msg, err := capnp.Unmarshal(p.Data)
	if err != nil {
		return "", ustatus.Wrapf(ustatus.CodeInvalidArgument, "capnp: unmarshal: %v", err)
	}
	ptr, err := msg.Root()
	if err != nil {
		return "", ustatus.Wrapf(ustatus.CodeInvalidArgument, "capnp: root: %v", err)
	}
	field, err := ptr.Struct().Ptr(0)
	if err != nil {
		return "", ustatus.Wrapf(ustatus.CodeInvalidArgument, "capnp: field 0: %v", err)
	}
	return field.Text(), nil
}

// capnpGreetingHandler answers with "hello, <name>" still carried as a
// passthrough Cap'n Proto payload.
func capnpGreetingHandler(_ context.Context, req umessage.Message) (upayload.Payload, error) {
	name, err := unpackGreeting(req.Payload)
	if err != nil {
		return upayload.Empty, err
	}
	return packGreeting("hello, " + name)
}
