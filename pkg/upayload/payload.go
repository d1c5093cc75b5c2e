// Package upayload implements the payload codec (C1): packing and unpacking
// self-describing binary messages, per spec §4.1.
package upayload

import (
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/anypb"

	"github.com/eclipse-uprotocol/up-client-go/pkg/ustatus"
)

// Payload is the raw bytes plus their declared Format.
type Payload struct {
	Data   []byte
	Format Format
}

// Empty is the canonical empty payload: zero bytes, Unspecified format.
var Empty = Payload{Format: Unspecified}

// IsEmpty reports whether p is the empty payload: data length zero under
// Unspecified format. A zero-length PROTOBUF payload is not empty — it is
// the default instance of its expected type (spec §3, §4.1, §9).
func IsEmpty(p Payload) bool {
	return len(p.Data) == 0 && p.Format.kind == kindUnspecified
}

// ProtoPtr is the standard "message pointer" generic constraint: T is the
// protobuf message struct, PT is its pointer type which actually implements
// proto.Message.
type ProtoPtr[T any] interface {
	proto.Message
	*T
}

// Pack marshals msg as a raw protobuf message, producing format PROTOBUF.
func Pack[T any, PT ProtoPtr[T]](msg PT) (Payload, error) {
	data, err := proto.Marshal(msg)
	if err != nil {
		return Payload{}, ustatus.Wrapf(ustatus.CodeInvalidArgument, "pack: %v", err)
	}
	return Payload{Data: data, Format: Protobuf}, nil
}

// PackToAny wraps msg in a google.protobuf.Any and marshals that, producing
// format PROTOBUF_WRAPPED_IN_ANY.
func PackToAny[T any, PT ProtoPtr[T]](msg PT) (Payload, error) {
	any, err := anypb.New(msg)
	if err != nil {
		return Payload{}, ustatus.Wrapf(ustatus.CodeInvalidArgument, "pack_to_any: %v", err)
	}
	data, err := proto.Marshal(any)
	if err != nil {
		return Payload{}, ustatus.Wrapf(ustatus.CodeInvalidArgument, "pack_to_any: %v", err)
	}
	return Payload{Data: data, Format: ProtobufWrappedInAny}, nil
}

// PackBytes trusts the caller's declared format and wraps data as-is;
// grounded on spec §4.1's "pack(bytes, format) trusts the caller's declared
// format".
func PackBytes(data []byte, format Format) Payload {
	return Payload{Data: data, Format: format}
}

// Unpack decodes p into a new *T. UNSPECIFIED is interpreted as
// wrapped-in-Any. PROTOBUF with empty data returns the type's default
// instance — an empty protobuf is the default-valued message, a protocol
// convention, not "no data" (spec §4.1, §9). Any other declared format fails
// with INVALID_ARGUMENT. A nil/absent payload is handled by the caller
// (rpc.MapResponse) before reaching here; this function only ever sees a
// concrete Payload value.
func Unpack[T any, PT ProtoPtr[T]](p Payload) (PT, error) {
	out := PT(new(T))

	switch p.Format.kind {
	case kindUnspecified:
		if len(p.Data) == 0 {
			return out, nil
		}
		return unpackAny[T, PT](p.Data)
	case kindProtobufWrappedInAny:
		return unpackAny[T, PT](p.Data)
	case kindProtobuf:
		if len(p.Data) == 0 {
			return out, nil
		}
		if err := proto.Unmarshal(p.Data, out); err != nil {
			return nil, ustatus.Wrapf(ustatus.CodeInvalidArgument, "unpack: %v", err)
		}
		return out, nil
	default:
		return nil, ustatus.Wrapf(ustatus.CodeInvalidArgument, "unpack: unsupported format %s", p.Format)
	}
}

func unpackAny[T any, PT ProtoPtr[T]](data []byte) (PT, error) {
	out := PT(new(T))
	if len(data) == 0 {
		// Empty data under UNSPECIFIED/wrapped-in-any carries no Any to
		// decode; the result is a new zero-valued message and no error.
		return out, nil
	}
	var any anypb.Any
	if err := proto.Unmarshal(data, &any); err != nil {
		return nil, ustatus.Wrapf(ustatus.CodeInvalidArgument, "unpack: invalid Any: %v", err)
	}
	if err := any.UnmarshalTo(out); err != nil {
		return nil, ustatus.Wrapf(ustatus.CodeInvalidArgument, "unpack: Any does not hold expected type: %v", err)
	}
	return out, nil
}
