// Package rpc implements the RPC mapper (C4), in-memory RPC client (C5), and
// in-memory RPC server (C6) described in spec §4.4–§4.6.
package rpc

import (
	"context"
	"errors"
	"fmt"

	"github.com/eclipse-uprotocol/up-client-go/pkg/result"
	"github.com/eclipse-uprotocol/up-client-go/pkg/upayload"
	"github.com/eclipse-uprotocol/up-client-go/pkg/ustatus"
)

// protoPtr is a package-local alias for upayload.ProtoPtr, the generic
// message-pointer constraint the mapper's type parameters share.
type protoPtr[T any] = upayload.ProtoPtr[T]

// MapResponse unpacks payload into PT. A nil payload (no response observed
// at all) is INVALID_ARGUMENT, distinguishable from an empty payload of the
// expected type. transportErr, if non-nil, propagates unchanged — this is
// the "errors propagate" half of the RPC mapper (spec §4.4).
func MapResponse[T any, PT protoPtr[T]](payload *upayload.Payload, transportErr error) (PT, error) {
	if transportErr != nil {
		return nil, transportErr
	}
	if payload == nil {
		var zero T
		return nil, ustatus.Wrapf(ustatus.CodeInvalidArgument, "rpc: missing response payload, expected %T", zero)
	}
	out, err := upayload.Unpack[T, PT](*payload)
	if err != nil {
		var zero T
		return nil, ustatus.Wrapf(ustatus.CodeInvalidArgument, "rpc: failed to unpack response as %T: %v", zero, err)
	}
	return out, nil
}

// MapResponseToResult is MapResponse, except transport errors, timeouts, and
// unpack failures are converted to Failure(Status) instead of propagating as
// an error return (spec §4.4's "errors become Result values" path).
func MapResponseToResult[T any, PT protoPtr[T]](payload *upayload.Payload, transportErr error) result.Result[PT] {
	out, err := MapResponse[T, PT](payload, transportErr)
	if err != nil {
		return result.Failure[PT](statusFromError(err))
	}
	return result.Success(out)
}

// statusFromError maps an error to a Status: timeout becomes
// DEADLINE_EXCEEDED, a typed *ustatus.Error surfaces its own code, anything
// else becomes INVALID_ARGUMENT (spec §4.4).
func statusFromError(err error) *ustatus.Status {
	if errors.Is(err, context.DeadlineExceeded) {
		return ustatus.New(ustatus.CodeDeadlineExceeded, err.Error())
	}
	var se *ustatus.Error
	if errors.As(err, &se) {
		return se.Status
	}
	return ustatus.New(ustatus.CodeInvalidArgument, fmt.Sprint(err))
}
