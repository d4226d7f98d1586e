package generator

import (
	"fmt"
	"net/http"
)

// Kind classifies a generation failure.
type Kind string

const (
	KindInvalidRequest    Kind = "invalid_request"
	KindMisconfigured     Kind = "misconfigured"
	KindUpstream          Kind = "upstream_error"
	KindEmptyResponse     Kind = "empty_response"
	KindMalformedResponse Kind = "malformed_response"
)

// Upstream failure reasons.
const (
	ReasonStatus    = "status"
	ReasonTimeout   = "timeout"
	ReasonTransport = "transport"
)

// Error is the failure returned by Gateway.Generate. Message is a short
// summary safe to show a user; Details elaborates when available.
type Error struct {
	Kind    Kind
	Message string
	Details string
	// Status is the upstream HTTP status for KindUpstream.
	Status int
	// Reason refines KindUpstream: status, timeout or transport.
	Reason string
	Err    error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Kind, e.Message)
	if e.Details != "" {
		msg += ": " + e.Details
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// HTTPStatus is the status the caller-facing envelope is sent with.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindInvalidRequest:
		return http.StatusBadRequest
	case KindUpstream:
		if e.Status > 0 {
			return e.Status
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func invalidRequest(err error) *Error {
	return &Error{Kind: KindInvalidRequest, Message: "Invalid request data", Details: err.Error(), Err: err}
}

func misconfigured() *Error {
	return &Error{Kind: KindMisconfigured, Message: "Completion provider API key not configured"}
}

func emptyResponse(err error) *Error {
	return &Error{Kind: KindEmptyResponse, Message: "No content generated", Err: err}
}
