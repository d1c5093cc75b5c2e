package uri

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassifyResource(t *testing.T) {
	require.Equal(t, KindResponse, ClassifyResource(0x0000))
	require.Equal(t, KindMethod, ClassifyResource(0x0001))
	require.Equal(t, KindMethod, ClassifyResource(0x7FFF))
	require.Equal(t, KindTopic, ClassifyResource(0x8000))
	require.Equal(t, KindTopic, ClassifyResource(0xFFFE))
	require.Equal(t, KindReserved, ClassifyResource(0xFFFF))
}

func TestAnyIsWildcard(t *testing.T) {
	require.True(t, Any().IsAny())
	require.False(t, URI{Authority: "vcu"}.IsAny())
}

func TestWithResourcePreservesOtherFields(t *testing.T) {
	base := URI{Authority: "vcu", Entity: "door", VersionMajor: 1}
	derived := base.WithResource(0x8001)
	require.Equal(t, uint16(0x8001), derived.ResourceID)
	require.Equal(t, base.Authority, derived.Authority)
	require.Equal(t, base.Entity, derived.Entity)
	require.True(t, derived.IsTopic())
}

func TestIsMethodAndIsTopic(t *testing.T) {
	method := URI{ResourceID: 1}
	topic := URI{ResourceID: 0x8000}
	require.True(t, method.IsMethod())
	require.False(t, method.IsTopic())
	require.True(t, topic.IsTopic())
	require.False(t, topic.IsMethod())
}

func TestDefaultValidator(t *testing.T) {
	v := DefaultValidator{}
	require.NoError(t, v.ValidateTopic(URI{ResourceID: 0x8000}))
	require.Error(t, v.ValidateTopic(URI{ResourceID: 1}))
	require.NoError(t, v.ValidateMethod(URI{ResourceID: 1}))
	require.Error(t, v.ValidateMethod(URI{ResourceID: 0x8000}))
}

func TestFixedProvider(t *testing.T) {
	source := URI{Authority: "vcu", Entity: "door", VersionMajor: 1}
	p := NewFixedProvider(source)
	require.Equal(t, source, p.Source())
	require.Equal(t, source.WithResource(5), p.GetResource(5))
}
