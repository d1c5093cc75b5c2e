package upayload

// Format identifies how a Payload's bytes are encoded. The core only ever
// interprets the three protobuf-flavored kinds itself (§4.1); every other
// format is carried opaquely — this is the hook downstream transports use to
// pass through a codec the core was never taught (e.g. a Cap'n Proto
// message, per SPEC_FULL.md §4.8).
type Format struct {
	kind formatKind
	name string
}

type formatKind int

const (
	kindUnspecified formatKind = iota
	kindProtobufWrappedInAny
	kindProtobuf
	kindPassthrough
)

var (
	// Unspecified payloads are treated as wrapped-in-Any, except that an
	// empty Unspecified payload is the empty payload (spec §3 invariant).
	Unspecified = Format{kind: kindUnspecified}
	// ProtobufWrappedInAny payloads carry a serialized google.protobuf.Any.
	ProtobufWrappedInAny = Format{kind: kindProtobufWrappedInAny}
	// Protobuf payloads carry a raw serialized protobuf message of a type
	// known to both ends out of band.
	Protobuf = Format{kind: kindProtobuf}
)

// Passthrough constructs a format the core never interprets; name is carried
// for diagnostics only (e.g. "capnp", "json").
func Passthrough(name string) Format {
	return Format{kind: kindPassthrough, name: name}
}

// IsPassthrough reports whether f is a passthrough format, and if so its
// name.
func (f Format) IsPassthrough() (string, bool) {
	if f.kind == kindPassthrough {
		return f.name, true
	}
	return "", false
}

func (f Format) String() string {
	switch f.kind {
	case kindUnspecified:
		return "UNSPECIFIED"
	case kindProtobufWrappedInAny:
		return "PROTOBUF_WRAPPED_IN_ANY"
	case kindProtobuf:
		return "PROTOBUF"
	case kindPassthrough:
		return "PASSTHROUGH(" + f.name + ")"
	default:
		return "UNKNOWN"
	}
}
