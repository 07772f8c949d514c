package domain

import (
	"errors"
	"fmt"
)

// ErrSubmitInFlight is returned when a panel already has a request in
// flight; the caller must wait or clear before submitting again.
var ErrSubmitInFlight = errors.New("a request is already in flight for this panel")

// AuthError is a credential or network failure from the auth
// collaborator, already mapped to a message fit for the user.
type AuthError struct {
	Code    string
	Message string
}

func (e *AuthError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Code
}

// ProfileOp names the document-store operation that failed.
type ProfileOp string

const (
	ProfileLoad ProfileOp = "load"
	ProfileSave ProfileOp = "save"
)

// ProfileError wraps a document-store failure. The user sees a generic
// message; Err keeps the underlying cause for diagnostics.
type ProfileError struct {
	Op  ProfileOp
	UID string
	Err error
}

func (e *ProfileError) Error() string {
	switch e.Op {
	case ProfileLoad:
		return "could not load profile"
	default:
		return "could not update profile"
	}
}

func (e *ProfileError) Unwrap() error { return e.Err }

// RequestErrorKind classifies a generation-panel failure by transport
// outcome.
type RequestErrorKind int

const (
	// ServerError means the backend answered with an error body.
	ServerError RequestErrorKind = iota
	// NoResponse means nothing came back at all (network, DNS, timeout).
	NoResponse
	// Unexpected covers everything else, such as an unreadable body.
	Unexpected
)

// RequestError is an HTTP failure from the BUDDY backend.
type RequestError struct {
	Kind   RequestErrorKind
	Status int
	Detail string
	URL    string
	Err    error
}

func (e *RequestError) Error() string {
	switch e.Kind {
	case ServerError:
		return e.Detail
	case NoResponse:
		return fmt.Sprintf("cannot reach the BUDDY backend at %s", e.URL)
	default:
		if e.Err != nil {
			return fmt.Sprintf("unexpected error talking to the backend: %v", e.Err)
		}
		return "unexpected error talking to the backend"
	}
}

func (e *RequestError) Unwrap() error { return e.Err }
