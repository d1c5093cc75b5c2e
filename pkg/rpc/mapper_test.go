package rpc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/eclipse-uprotocol/up-client-go/pkg/upayload"
	"github.com/eclipse-uprotocol/up-client-go/pkg/ustatus"
)

func TestMapResponseUnpacksSuccessPayload(t *testing.T) {
	payload, err := upayload.PackToAny[wrapperspb.Int32Value](wrapperspb.Int32(7))
	require.NoError(t, err)

	out, err := MapResponse[wrapperspb.Int32Value, *wrapperspb.Int32Value](&payload, nil)
	require.NoError(t, err)
	require.Equal(t, int32(7), out.Value)
}

func TestMapResponsePropagatesTransportError(t *testing.T) {
	transportErr := ustatus.Wrap(ustatus.CodeUnavailable, "down")
	_, err := MapResponse[wrapperspb.Int32Value, *wrapperspb.Int32Value](nil, transportErr)
	require.ErrorIs(t, err, error(transportErr))
}

func TestMapResponseFailsOnNilPayload(t *testing.T) {
	_, err := MapResponse[wrapperspb.Int32Value, *wrapperspb.Int32Value](nil, nil)
	require.Error(t, err)
	require.Equal(t, ustatus.CodeInvalidArgument, ustatus.CodeOf(err))
}

func TestMapResponseToResultMapsDeadlineExceeded(t *testing.T) {
	result := MapResponseToResult[wrapperspb.Int32Value, *wrapperspb.Int32Value](nil, context.DeadlineExceeded)
	require.True(t, result.IsFailure())
	require.Equal(t, ustatus.CodeDeadlineExceeded, result.FailureValue().Code)
}

func TestMapResponseToResultSurfacesTypedStatus(t *testing.T) {
	result := MapResponseToResult[wrapperspb.Int32Value, *wrapperspb.Int32Value](nil, ustatus.Wrap(ustatus.CodeUnimplemented, "nope"))
	require.True(t, result.IsFailure())
	require.Equal(t, ustatus.CodeUnimplemented, result.FailureValue().Code)
}
