package subscription

import (
	"bytes"
	"encoding/binary"

	"github.com/eclipse-uprotocol/up-client-go/pkg/upayload"
	"github.com/eclipse-uprotocol/up-client-go/pkg/uri"
	"github.com/eclipse-uprotocol/up-client-go/pkg/ustatus"
)

// payloadFormat is the upayload.Format every subscription-service message
// travels under. None of Request/Response/UnsubscribeRequest/
// UnsubscribeResponse/Update is one of the payload codec's three
// protobuf-flavored formats (they are this package's own small shapes, not
// generated protobuf messages), so they travel as a passthrough format with
// a hand-rolled length-prefixed wire shape — the same style as
// rpc.packStatus/unpackStatus, itself grounded on the teacher's
// internal/metadata codec.
var payloadFormat = upayload.Passthrough("uprotocol.subscription")

func writeURI(buf *bytes.Buffer, u uri.URI) {
	writeString(buf, u.Authority)
	writeString(buf, u.Entity)
	_ = binary.Write(buf, binary.LittleEndian, u.VersionMajor)
	_ = binary.Write(buf, binary.LittleEndian, u.ResourceID)
}

func readURI(r *bytes.Reader) (uri.URI, error) {
	authority, err := readString(r)
	if err != nil {
		return uri.URI{}, err
	}
	entity, err := readString(r)
	if err != nil {
		return uri.URI{}, err
	}
	var versionMajor uint32
	if err := binary.Read(r, binary.LittleEndian, &versionMajor); err != nil {
		return uri.URI{}, err
	}
	var resourceID uint16
	if err := binary.Read(r, binary.LittleEndian, &resourceID); err != nil {
		return uri.URI{}, err
	}
	return uri.URI{Authority: authority, Entity: entity, VersionMajor: versionMajor, ResourceID: resourceID}, nil
}

func writeString(buf *bytes.Buffer, s string) {
	_ = binary.Write(buf, binary.LittleEndian, uint16(len(s)))
	buf.WriteString(s)
}

func readString(r *bytes.Reader) (string, error) {
	var n uint16
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return "", err
	}
	if n == 0 {
		return "", nil
	}
	b := make([]byte, n)
	if _, err := r.Read(b); err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeErr(err error) error {
	return ustatus.Wrapf(ustatus.CodeInvalidArgument, "subscription: malformed payload: %v", err)
}

// PackRequest packs req as a Payload for MethodSubscribe.
func PackRequest(req Request) upayload.Payload {
	buf := new(bytes.Buffer)
	writeURI(buf, req.Topic)
	writeURI(buf, req.Subscriber)
	return upayload.Payload{Data: buf.Bytes(), Format: payloadFormat}
}

// UnpackRequest reverses PackRequest.
func UnpackRequest(p upayload.Payload) (Request, error) {
	r := bytes.NewReader(p.Data)
	topic, err := readURI(r)
	if err != nil {
		return Request{}, decodeErr(err)
	}
	subscriber, err := readURI(r)
	if err != nil {
		return Request{}, decodeErr(err)
	}
	return Request{Topic: topic, Subscriber: subscriber}, nil
}

// PackResponse packs resp as a Payload answering MethodSubscribe.
func PackResponse(resp Response) upayload.Payload {
	buf := new(bytes.Buffer)
	_ = binary.Write(buf, binary.LittleEndian, int32(resp.Status.State))
	return upayload.Payload{Data: buf.Bytes(), Format: payloadFormat}
}

// UnpackResponse reverses PackResponse.
func UnpackResponse(p upayload.Payload) (Response, error) {
	r := bytes.NewReader(p.Data)
	var state int32
	if err := binary.Read(r, binary.LittleEndian, &state); err != nil {
		return Response{}, decodeErr(err)
	}
	return Response{Status: Status{State: State(state)}}, nil
}

// PackUnsubscribeRequest packs req as a Payload for MethodUnsubscribe.
func PackUnsubscribeRequest(req UnsubscribeRequest) upayload.Payload {
	buf := new(bytes.Buffer)
	writeURI(buf, req.Topic)
	writeURI(buf, req.Subscriber)
	return upayload.Payload{Data: buf.Bytes(), Format: payloadFormat}
}

// UnpackUnsubscribeRequest reverses PackUnsubscribeRequest.
func UnpackUnsubscribeRequest(p upayload.Payload) (UnsubscribeRequest, error) {
	r := bytes.NewReader(p.Data)
	topic, err := readURI(r)
	if err != nil {
		return UnsubscribeRequest{}, decodeErr(err)
	}
	subscriber, err := readURI(r)
	if err != nil {
		return UnsubscribeRequest{}, decodeErr(err)
	}
	return UnsubscribeRequest{Topic: topic, Subscriber: subscriber}, nil
}

// PackUnsubscribeResponse packs resp as a Payload answering MethodUnsubscribe.
func PackUnsubscribeResponse(resp UnsubscribeResponse) upayload.Payload {
	buf := new(bytes.Buffer)
	_ = binary.Write(buf, binary.LittleEndian, int32(resp.Status.State))
	return upayload.Payload{Data: buf.Bytes(), Format: payloadFormat}
}

// UnpackUnsubscribeResponse reverses PackUnsubscribeResponse.
func UnpackUnsubscribeResponse(p upayload.Payload) (UnsubscribeResponse, error) {
	r := bytes.NewReader(p.Data)
	var state int32
	if err := binary.Read(r, binary.LittleEndian, &state); err != nil {
		return UnsubscribeResponse{}, decodeErr(err)
	}
	return UnsubscribeResponse{Status: Status{State: State(state)}}, nil
}

// PackUpdate packs u as the Payload delivered on NotificationTopic.
func PackUpdate(u Update) upayload.Payload {
	buf := new(bytes.Buffer)
	writeURI(buf, u.Topic)
	_ = binary.Write(buf, binary.LittleEndian, int32(u.Status.State))
	return upayload.Payload{Data: buf.Bytes(), Format: payloadFormat}
}

// UnpackUpdate reverses PackUpdate.
func UnpackUpdate(p upayload.Payload) (Update, error) {
	r := bytes.NewReader(p.Data)
	topic, err := readURI(r)
	if err != nil {
		return Update{}, decodeErr(err)
	}
	var state int32
	if err := binary.Read(r, binary.LittleEndian, &state); err != nil {
		return Update{}, decodeErr(err)
	}
	return Update{Topic: topic, Status: Status{State: State(state)}}, nil
}
