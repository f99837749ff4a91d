package client

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind is decided once, where the response is read, so callers never
// re-derive it from message text.
type ErrorKind int

const (
	// KindConnectivity: the request never produced a readable response.
	KindConnectivity ErrorKind = iota + 1
	// KindWrongContentType: the server answered with a markup page, which
	// points at a routing or deployment defect.
	KindWrongContentType
	// KindMalformedPayload: a body arrived but is not valid JSON.
	KindMalformedPayload
	// KindServer: a non-2xx status, with the server's message when the body
	// was a JSON envelope.
	KindServer
	// KindApplication: a well-formed envelope with success=false.
	KindApplication
)

func (k ErrorKind) String() string {
	switch k {
	case KindConnectivity:
		return "connectivity"
	case KindWrongContentType:
		return "wrong_content_type"
	case KindMalformedPayload:
		return "malformed_payload"
	case KindServer:
		return "server_error"
	case KindApplication:
		return "application_error"
	default:
		return "unknown"
	}
}

// Error is returned by every Client call that reached the classification step.
type Error struct {
	Kind       ErrorKind
	StatusCode int
	// Message is the server-provided text, if any.
	Message string
	// Preview holds the first bytes of the raw body for operator triage.
	Preview string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s (HTTP %d): %s", e.Kind, e.StatusCode, msg)
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// UserMessage is the text shown to a visitor. Each kind reads differently
// so the site operator can tell the failures apart from a screenshot.
func (e *Error) UserMessage() string {
	switch e.Kind {
	case KindConnectivity:
		return "Could not reach the booking server. Check your internet connection or try again later."
	case KindWrongContentType:
		return "The server returned a web page instead of booking data. The booking API appears to be misconfigured; please contact the administrator."
	case KindMalformedPayload:
		return "The server sent corrupted data in an invalid format. Please try again later."
	case KindServer:
		msg := fmt.Sprintf("The booking server encountered an error (HTTP %d %s). Please contact the administrator.",
			e.StatusCode, http.StatusText(e.StatusCode))
		if e.Message != "" {
			msg += " Details: " + e.Message
		}
		return msg
	case KindApplication:
		if e.Message != "" {
			return e.Message
		}
		return "The booking server reported an unknown error."
	default:
		return "Could not load the available slots."
	}
}

// AsError extracts a classified *Error from err.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns the classification of err, or 0 when err is not an *Error.
func KindOf(err error) ErrorKind {
	if e, ok := AsError(err); ok {
		return e.Kind
	}
	return 0
}
