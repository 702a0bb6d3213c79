package status

import "fmt"

// HTTPError is a protocol-level failure carrying the status code it should be
// reported with on the wire.
type HTTPError struct {
	Message string
	Code    Code
}

func NewError(code Code, message string) error {
	return HTTPError{
		Code:    code,
		Message: message,
	}
}

// NewProtocolError reports a generic protocol violation, rendered as 400.
func NewProtocolError(message string) error {
	return HTTPError{
		Code:    BadRequest,
		Message: message,
	}
}

func (h HTTPError) Error() string {
	return h.Message
}

// MethodNotSupportedError is raised when the request method cannot be served.
// It is rendered as 501.
type MethodNotSupportedError struct {
	Method string
}

func (m MethodNotSupportedError) Error() string {
	return fmt.Sprintf("%s method not supported", m.Method)
}

// UnsupportedProtocolError is raised when the request protocol version cannot
// be served. It is rendered as 505.
type UnsupportedProtocolError struct {
	Proto string
}

func (u UnsupportedProtocolError) Error() string {
	return fmt.Sprintf("unsupported protocol version: %s", u.Proto)
}

var (
	ErrBadRequest          = NewError(BadRequest, "bad request")
	ErrBadChunk            = NewError(BadRequest, "malformed chunk-encoded data")
	ErrNotFound            = NewError(NotFound, "not found")
	ErrInternalServerError = NewError(InternalServerError, "internal server error")
	ErrNotImplemented      = NewError(NotImplemented, "not implemented")
	ErrMethodNotAllowed    = NewError(MethodNotAllowed, "method not allowed")
	ErrBodyTooLarge        = NewError(RequestEntityTooLarge, "request body is too large")
	ErrExpectationFailed   = NewError(ExpectationFailed, "expectation failed")
)
