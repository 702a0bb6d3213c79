// Package reactor defines the contracts between the event-driven I/O loop and
// the service handler. The reactor itself lives outside this module: anything
// able to deliver the callbacks serially per connection and honor the interest
// signals below can drive the handler.
package reactor

import (
	"github.com/sluice-web/sluice/http"
)

// IOControl registers or clears the connection's interest in I/O events. The
// content buffers hold a non-owning reference to it for flow control; after a
// shutdown the signals become no-ops.
type IOControl interface {
	// RequestInput asks the reactor to resume polling the socket for reads.
	RequestInput()
	// SuspendInput asks the reactor to stop polling the socket for reads until
	// input is requested again.
	SuspendInput()
	// RequestOutput asks the reactor to poll the socket for writes.
	RequestOutput()
	// SuspendOutput clears write interest.
	SuspendOutput()
	// Shutdown forcibly terminates the connection, discarding any buffered data.
	Shutdown()
}

// Decoder is the inbound half of the content codec: it yields entity bytes
// decoded from whatever framing the message uses. Supplied by the reactor on
// every input event.
type Decoder interface {
	// Read transfers up to len(p) decoded bytes into p. It never blocks: when
	// nothing is available right now it returns 0, nil.
	Read(p []byte) (n int, err error)
	// Completed reports whether the entity has been fully decoded and every
	// decoded byte has been handed out via Read.
	Completed() bool
}

// Encoder is the outbound half of the content codec: it frames entity bytes
// onto the transport. Supplied by the reactor on every output event.
type Encoder interface {
	// Write transfers up to len(p) bytes into the encoder. It never blocks and
	// may accept fewer bytes than offered when the transport is saturated.
	Write(p []byte) (n int, err error)
	// Complete marks the end of the entity, emitting whatever terminator the
	// framing requires.
	Complete() error
	// Completed reports whether Complete has been called.
	Completed() bool
}

// ServerConnection is the per-connection handle the reactor passes into every
// callback.
type ServerConnection interface {
	IOControl

	// Context returns the connection-scoped attribute table.
	Context() *Context
	// Request returns the message head of the request being received.
	Request() *http.Request
	// SubmitResponse hands a complete response head over to the transport.
	SubmitResponse(resp *http.Response) error
	// ResponseSubmitted reports whether a final response has already been
	// submitted for the current exchange.
	ResponseSubmitted() bool
	// ResetInput discards the remainder of the inbound entity, e.g. when an
	// expectation was rejected.
	ResetInput()
	// Close closes the connection gracefully once pending output is flushed.
	Close() error
}

// EventListener observes the connection lifecycle. All callbacks are invoked
// on the reactor goroutine and must not block.
type EventListener interface {
	ConnectionOpen(conn ServerConnection)
	ConnectionClosed(conn ServerConnection)
	ConnectionTimeout(conn ServerConnection)
	FatalIOError(err error, conn ServerConnection)
	FatalProtocolError(err error, conn ServerConnection)
}
