package uri

import "github.com/eclipse-uprotocol/up-client-go/pkg/ustatus"

// DefaultValidator implements Validator using only the resource-id
// classification rules in spec §3. Full uProtocol URI validation (authority
// shape, entity registry lookups) is an external collaborator; this is the
// minimal slice the core itself depends on.
type DefaultValidator struct{}

var _ Validator = DefaultValidator{}

// ValidateTopic fails with INVALID_ARGUMENT unless u's resource id is a
// topic id in [0x8000, 0xFFFE].
func (DefaultValidator) ValidateTopic(u URI) error {
	if !u.IsTopic() {
		return ustatus.Wrapf(ustatus.CodeInvalidArgument, "uri %s does not identify a topic", u)
	}
	return nil
}

// ValidateMethod fails with INVALID_ARGUMENT unless u's resource id is a
// method id in [0x0001, 0x7FFF].
func (DefaultValidator) ValidateMethod(u URI) error {
	if !u.IsMethod() {
		return ustatus.Wrapf(ustatus.CodeInvalidArgument, "uri %s does not identify an rpc method", u)
	}
	return nil
}
