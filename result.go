package portalAuth

import "errors"

// ResultType tags a [Result] as success or error.
type ResultType uint8

const (
	// Success marks a completed operation whose Data is valid.
	Success ResultType = iota
	// Error marks a failed operation; Err is non-nil.
	Error
)

func (t ResultType) String() string {
	if t == Success {
		return "success"
	}
	return "error"
}

// Result is the tagged value every session operation returns instead of an error.
type Result[T any] struct {
	Type ResultType
	Data T
	Err  error
}

// Ok builds a success result.
func Ok[T any](data T) Result[T] {
	return Result[T]{Type: Success, Data: data}
}

// Fail builds an error result. A nil err is replaced with [ErrStoreNotReady] so
// error results always carry a cause.
func Fail[T any](err error) Result[T] {
	if err == nil {
		err = ErrStoreNotReady
	}
	return Result[T]{Type: Error, Err: err}
}

// OK reports whether the result is a success.
func (r Result[T]) OK() bool {
	return r.Type == Success
}

// UserMessager is implemented by errors that carry text meant to be shown to the
// user verbatim, such as a backend's error message.
type UserMessager interface {
	UserMessage() string
}

// Message returns the human-readable text for an error result, or "" on success.
// Errors implementing [UserMessager] report their user text.
func (r Result[T]) Message() string {
	if r.Type == Success || r.Err == nil {
		return ""
	}
	var um UserMessager
	if errors.As(r.Err, &um) {
		if msg := um.UserMessage(); msg != "" {
			return msg
		}
	}
	return r.Err.Error()
}

// Unwrap converts the result back to the (value, error) convention.
func (r Result[T]) Unwrap() (T, error) {
	if r.Type == Success {
		return r.Data, nil
	}
	var zero T
	return zero, r.Err
}

// resultErr extracts the failure cause, tolerating error results without Err.
func resultErr[T any](r Result[T]) error {
	if r.Type == Success {
		return nil
	}
	if r.Err == nil {
		return ErrStoreNotReady
	}
	return r.Err
}
