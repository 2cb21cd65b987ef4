package relay

import (
	"errors"
	"fmt"
)

// Kind classifies a relay failure.
type Kind string

const (
	KindValidation      Kind = "validation"
	KindConfiguration   Kind = "configuration"
	KindTransport       Kind = "transport"
	KindTimeout         Kind = "timeout"
	KindUpstreamHTTP    Kind = "upstream_http"
	KindUpstreamLogical Kind = "upstream_logical"
	KindSignature       Kind = "signature"
)

// Error is the uniform failure type translated into every route's error reply.
// Detail carries upstream-provided context and is only surfaced to callers
// outside production mode.
type Error struct {
	Kind    Kind
	Message string
	Detail  string
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Message, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// NewError builds an Error with a formatted message.
func NewError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WithDetail returns a copy of the error carrying upstream detail.
func (e *Error) WithDetail(detail string) *Error {
	return &Error{Kind: e.Kind, Message: e.Message, Detail: detail}
}

// KindOf extracts the Kind from err, or KindTransport when err is not a
// relay error (anything unclassified reached us through the network path).
func KindOf(err error) Kind {
	var re *Error
	if errors.As(err, &re) {
		return re.Kind
	}
	return KindTransport
}

// MessageOf extracts the human-readable message from err.
func MessageOf(err error) string {
	var re *Error
	if errors.As(err, &re) {
		return re.Message
	}
	return err.Error()
}
