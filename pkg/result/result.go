// Package result implements the Result[T] sum type (C3): a closed union of
// Success(T) and Failure(Status), used at the edge where an RPC's
// business-error payload must be distinguished from a transport-level
// failure.
package result

import "github.com/eclipse-uprotocol/up-client-go/pkg/ustatus"

// Result is a tagged union of a successful value of type T or a failure
// Status. The zero value is not a valid Result; construct one with Success
// or Failure.
type Result[T any] struct {
	value   T
	failure *ustatus.Status
}

// Success wraps a successful value.
func Success[T any](value T) Result[T] {
	return Result[T]{value: value}
}

// Failure wraps a failure status.
func Failure[T any](status *ustatus.Status) Result[T] {
	return Result[T]{failure: status}
}

// IsSuccess reports whether r holds a value.
func (r Result[T]) IsSuccess() bool {
	return r.failure == nil
}

// IsFailure reports whether r holds a status.
func (r Result[T]) IsFailure() bool {
	return r.failure != nil
}

// SuccessValue returns the held value, panicking if r is a Failure. Fails
// fast per spec §4.3: callers that are not certain of success should check
// IsSuccess first, or use GetOrElse.
func (r Result[T]) SuccessValue() T {
	if r.IsFailure() {
		panic("result: SuccessValue called on a Failure")
	}
	return r.value
}

// FailureValue returns the held status, panicking if r is a Success.
func (r Result[T]) FailureValue() *ustatus.Status {
	if r.IsSuccess() {
		panic("result: FailureValue called on a Success")
	}
	return r.failure
}

// GetOrElse returns the held value, or def if r is a Failure.
func (r Result[T]) GetOrElse(def T) T {
	if r.IsFailure() {
		return def
	}
	return r.value
}

// Map applies f to a Success value, propagating Failure unchanged. A panic
// raised by f is recovered and converted into a Failure(INTERNAL), per spec
// §4.3 ("exceptions from f become a Failure").
func Map[T, U any](r Result[T], f func(T) U) (out Result[U]) {
	if r.IsFailure() {
		return Failure[U](r.failure)
	}
	defer func() {
		if rec := recover(); rec != nil {
			out = Failure[U](ustatus.Newf(ustatus.CodeInternal, "result.Map: %v", rec))
		}
	}()
	return Success(f(r.value))
}

// FlatMap applies f to a Success value, flattening the result. Failure
// propagates unchanged.
func FlatMap[T, U any](r Result[T], f func(T) Result[U]) (out Result[U]) {
	if r.IsFailure() {
		return Failure[U](r.failure)
	}
	defer func() {
		if rec := recover(); rec != nil {
			out = Failure[U](ustatus.Newf(ustatus.CodeInternal, "result.FlatMap: %v", rec))
		}
	}()
	return f(r.value)
}

// Filter turns a Success into a Failure(FAILED_PRECONDITION) when pred
// returns false; Failure propagates unchanged.
func (r Result[T]) Filter(pred func(T) bool) Result[T] {
	if r.IsFailure() {
		return r
	}
	if !pred(r.value) {
		return Failure[T](ustatus.New(ustatus.CodeFailedPrecondition, "filtered out"))
	}
	return r
}

// Flatten collapses a Result[Result[T]] into a Result[T].
func Flatten[T any](r Result[Result[T]]) Result[T] {
	if r.IsFailure() {
		return Failure[T](r.failure)
	}
	return r.value
}
