// Package apperrors defines the error categories this service reports.
// Errors are divided by whose fault they are: bad input the caller can
// correct, a missing entity, a flaky remote, or a failing local store.
package apperrors

import (
	"errors"
	"fmt"
)

type Kind int

const (
	// KindInvalidInput covers malformed rating values, unknown entity
	// types, and other user-correctable requests.
	KindInvalidInput Kind = iota

	// KindNotFound means the entity exists neither locally nor remotely.
	KindNotFound

	// KindRemoteUnavailable covers timeouts, network failures, non-2xx
	// responses, and unparseable payloads from the metadata or cover-art
	// services. Callers must not assume automatic retry.
	KindRemoteUnavailable

	// KindStoreFailure covers local store errors other than the benign
	// duplicate-insert race. Fatal to the current operation.
	KindStoreFailure
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid input"
	case KindNotFound:
		return "not found"
	case KindRemoteUnavailable:
		return "remote unavailable"
	case KindStoreFailure:
		return "store failure"
	default:
		return "unknown"
	}
}

type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func InvalidInput(msg string) error {
	return &Error{Kind: KindInvalidInput, Msg: msg}
}

func NotFound(msg string) error {
	return &Error{Kind: KindNotFound, Msg: msg}
}

func RemoteUnavailable(msg string, err error) error {
	return &Error{Kind: KindRemoteUnavailable, Msg: msg, Err: err}
}

func StoreFailure(msg string, err error) error {
	return &Error{Kind: KindStoreFailure, Msg: msg, Err: err}
}

// KindOf reports the category of err, or ok=false for uncategorized errors.
func KindOf(err error) (Kind, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind, true
	}
	return 0, false
}

func IsKind(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
