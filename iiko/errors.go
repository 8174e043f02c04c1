package iiko

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies a failure returned by the client
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindTransport
	KindAuthentication
	KindBadRequest
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindInternal
	KindAPI
	KindSerialization
	KindConfiguration
)

// String returns the kind name
func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindAuthentication:
		return "authentication"
	case KindBadRequest:
		return "bad request"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not found"
	case KindConflict:
		return "business conflict"
	case KindInternal:
		return "internal server error"
	case KindAPI:
		return "api error"
	case KindSerialization:
		return "serialization"
	case KindConfiguration:
		return "configuration"
	default:
		return "unknown"
	}
}

// Sentinel errors, one per kind, for use with errors.Is
var (
	ErrTransport      = errors.New("iiko: transport failure")
	ErrAuthentication = errors.New("iiko: authentication failed")
	ErrBadRequest     = errors.New("iiko: bad request")
	ErrUnauthorized   = errors.New("iiko: unauthorized")
	ErrForbidden      = errors.New("iiko: forbidden")
	ErrNotFound       = errors.New("iiko: not found")
	ErrConflict       = errors.New("iiko: business conflict")
	ErrInternal       = errors.New("iiko: internal server error")
	ErrAPI            = errors.New("iiko: api error")
	ErrSerialization  = errors.New("iiko: serialization failure")
	ErrConfiguration  = errors.New("iiko: invalid configuration")
)

var kindSentinels = map[ErrorKind]error{
	KindTransport:      ErrTransport,
	KindAuthentication: ErrAuthentication,
	KindBadRequest:     ErrBadRequest,
	KindUnauthorized:   ErrUnauthorized,
	KindForbidden:      ErrForbidden,
	KindNotFound:       ErrNotFound,
	KindConflict:       ErrConflict,
	KindInternal:       ErrInternal,
	KindAPI:            ErrAPI,
	KindSerialization:  ErrSerialization,
	KindConfiguration:  ErrConfiguration,
}

// Error is the error type returned by every Client operation.
// Message holds the server's raw error text when one was returned.
//
// A context that ends while the call is still queued behind another request is
// reported as KindTransport with StatusCode 0 and the context error as Err, even
// though nothing was sent. Check errors.Is(err, context.Canceled) or
// context.DeadlineExceeded before treating KindTransport as a network outage.
type Error struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
	Err        error
}

// Error implements the error interface
func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("iiko %s (status %d): %s", e.Kind, e.StatusCode, msg)
	}
	return fmt.Sprintf("iiko %s: %s", e.Kind, msg)
}

// Unwrap returns the underlying cause, if any
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for this error's kind
func (e *Error) Is(target error) bool {
	sentinel, ok := kindSentinels[e.Kind]
	return ok && sentinel == target
}

// IsNotFound checks if the error indicates a not found response
func (e *Error) IsNotFound() bool {
	return e.Kind == KindNotFound
}

// IsUnauthorized checks if the server rejected the session or credentials
func (e *Error) IsUnauthorized() bool {
	return e.Kind == KindUnauthorized || e.Kind == KindForbidden || e.Kind == KindAuthentication
}

// KindOf returns the kind of err, or KindUnknown if err is not an *Error
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// statusError maps a non-success HTTP status to the matching error kind
func statusError(status int, body string) *Error {
	kind := KindAPI
	switch status {
	case http.StatusBadRequest:
		kind = KindBadRequest
	case http.StatusUnauthorized:
		kind = KindUnauthorized
	case http.StatusForbidden:
		kind = KindForbidden
	case http.StatusNotFound:
		kind = KindNotFound
	case http.StatusConflict:
		kind = KindConflict
	case http.StatusInternalServerError:
		kind = KindInternal
	}
	return &Error{Kind: kind, StatusCode: status, Message: body}
}

func transportError(err error) *Error {
	return &Error{Kind: KindTransport, Err: err}
}

func serializationError(format string, err error) *Error {
	return &Error{Kind: KindSerialization, Message: fmt.Sprintf("%s: %v", format, err), Err: err}
}
