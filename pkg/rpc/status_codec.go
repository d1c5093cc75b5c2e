package rpc

import (
	"bytes"
	"encoding/binary"

	"github.com/eclipse-uprotocol/up-client-go/pkg/upayload"
	"github.com/eclipse-uprotocol/up-client-go/pkg/ustatus"
)

// statusPayloadFormat is the upayload.Format a packed Status travels under
// on a RESPONSE with a non-OK commstatus (spec §4.6 step 4). A Status is not
// one of the three protobuf-flavored formats the payload codec (C1)
// interprets, so it travels as a passthrough format with this package's own
// small wire shape — the same length-prefixed-field style as the teacher's
// internal/metadata codec, adapted to a single code+message pair.
var statusPayloadFormat = upayload.Passthrough("ustatus")

// packStatus serializes s to a Payload: [code(4B LE)][msgLen(2B LE)][message].
func packStatus(s *ustatus.Status) upayload.Payload {
	buf := new(bytes.Buffer)
	_ = binary.Write(buf, binary.LittleEndian, int32(s.Code))
	_ = binary.Write(buf, binary.LittleEndian, uint16(len(s.Message)))
	buf.WriteString(s.Message)
	return upayload.Payload{Data: buf.Bytes(), Format: statusPayloadFormat}
}

// unpackStatus parses a Payload produced by packStatus back into a Status.
func unpackStatus(p upayload.Payload) (*ustatus.Status, error) {
	if len(p.Data) < 6 {
		return nil, ustatus.Wrap(ustatus.CodeInvalidArgument, "rpc: status payload too short")
	}
	r := bytes.NewReader(p.Data)
	var code int32
	if err := binary.Read(r, binary.LittleEndian, &code); err != nil {
		return nil, ustatus.Wrapf(ustatus.CodeInvalidArgument, "rpc: %v", err)
	}
	var msgLen uint16
	if err := binary.Read(r, binary.LittleEndian, &msgLen); err != nil {
		return nil, ustatus.Wrapf(ustatus.CodeInvalidArgument, "rpc: %v", err)
	}
	msg := make([]byte, msgLen)
	if msgLen > 0 {
		if _, err := r.Read(msg); err != nil {
			return nil, ustatus.Wrapf(ustatus.CodeInvalidArgument, "rpc: %v", err)
		}
	}
	return &ustatus.Status{Code: ustatus.Code(code), Message: string(msg)}, nil
}
