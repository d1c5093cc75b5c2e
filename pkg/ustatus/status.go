// Package ustatus implements the uProtocol gRPC-style status/code taxonomy
// used throughout the client to surface transport and service errors to
// callers, per spec §7.
package ustatus

import (
	"errors"
	"fmt"
)

// Code is the uProtocol status code set.
type Code int32

const (
	CodeOK Code = iota
	CodeCancelled
	CodeUnknown
	CodeInvalidArgument
	CodeDeadlineExceeded
	CodeNotFound
	CodeAlreadyExists
	CodePermissionDenied
	CodeResourceExhausted
	CodeFailedPrecondition
	CodeAborted
	CodeOutOfRange
	CodeUnimplemented
	CodeInternal
	CodeUnavailable
	CodeDataLoss
	CodeUnauthenticated
)

var codeNames = map[Code]string{
	CodeOK:                 "OK",
	CodeCancelled:          "CANCELLED",
	CodeUnknown:            "UNKNOWN",
	CodeInvalidArgument:    "INVALID_ARGUMENT",
	CodeDeadlineExceeded:   "DEADLINE_EXCEEDED",
	CodeNotFound:           "NOT_FOUND",
	CodeAlreadyExists:      "ALREADY_EXISTS",
	CodePermissionDenied:   "PERMISSION_DENIED",
	CodeResourceExhausted:  "RESOURCE_EXHAUSTED",
	CodeFailedPrecondition: "FAILED_PRECONDITION",
	CodeAborted:            "ABORTED",
	CodeOutOfRange:         "OUT_OF_RANGE",
	CodeUnimplemented:      "UNIMPLEMENTED",
	CodeInternal:           "INTERNAL",
	CodeUnavailable:        "UNAVAILABLE",
	CodeDataLoss:           "DATA_LOSS",
	CodeUnauthenticated:    "UNAUTHENTICATED",
}

// String renders the code's symbolic name.
func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("CODE(%d)", int32(c))
}

// Status carries a code and a human-readable message, as surfaced to callers
// at the edge of any boundary operation.
type Status struct {
	Code    Code
	Message string
}

// New builds a Status with a literal message.
func New(code Code, message string) *Status {
	return &Status{Code: code, Message: message}
}

// Newf builds a Status with a formatted message.
func Newf(code Code, format string, args ...any) *Status {
	return &Status{Code: code, Message: fmt.Sprintf(format, args...)}
}

// OK reports whether s is a nil status or carries CodeOK.
func (s *Status) OK() bool {
	return s == nil || s.Code == CodeOK
}

func (s *Status) String() string {
	if s == nil {
		return "OK"
	}
	return fmt.Sprintf("%s: %s", s.Code, s.Message)
}

// Error is the typed status-exception carried across the core's internal
// error paths (handler failures, RPC mapper failures, transport failures).
// Any Go error can still be returned from a Handler; only *Error carries an
// explicit code (spec §7, "Handler raised an unexpected error" vs "Remote
// status").
type Error struct {
	Status *Status
}

// Wrap builds an *Error from a code and message.
func Wrap(code Code, message string) *Error {
	return &Error{Status: New(code, message)}
}

// Wrapf builds an *Error from a code and formatted message.
func Wrapf(code Code, format string, args ...any) *Error {
	return &Error{Status: Newf(code, format, args...)}
}

func (e *Error) Error() string {
	if e == nil || e.Status == nil {
		return "ustatus: nil error"
	}
	return e.Status.String()
}

// CodeOf extracts the Code carried by err. Typed *Error values surface their
// own code; any other non-nil error maps to CodeUnknown, per spec §4.4's
// "any other → INVALID_ARGUMENT" and §7's "Unknown: default when mapping
// opaque failures" — callers that need the INVALID_ARGUMENT default for
// unpack failures apply it explicitly rather than through this helper.
func CodeOf(err error) Code {
	if err == nil {
		return CodeOK
	}
	var se *Error
	if errors.As(err, &se) {
		return se.Status.Code
	}
	return CodeUnknown
}
