// Package sluice implements an HTTP/1.x service core for event-driven
// transports. A reactor delivers I/O events through the callbacks of Handler;
// request processing itself runs on worker goroutines with ordinary blocking
// stream I/O. Two bounded content buffers per connection couple the two
// worlds and push backpressure onto the network in both directions, so the
// memory footprint of a connection stays constant no matter how large the
// messages are.
package sluice

import (
	"errors"

	"github.com/rs/zerolog"

	"github.com/sluice-web/sluice/config"
	"github.com/sluice-web/sluice/executor"
	"github.com/sluice-web/sluice/http"
	"github.com/sluice-web/sluice/http/proto"
	"github.com/sluice-web/sluice/http/status"
	"github.com/sluice-web/sluice/internal/sharedbuf"
	"github.com/sluice-web/sluice/proc"
	"github.com/sluice-web/sluice/reactor"
	"github.com/sluice-web/sluice/router"
)

// ExpectationVerifier decides whether a request announcing Expect:
// 100-continue may transmit its entity. Returning a protocol error (one of
// the http/status error kinds) rejects the expectation; the error is rendered
// instead of the preliminary response. Any other error tears the connection
// down.
type ExpectationVerifier interface {
	Verify(req *http.Request, resp *http.Response, ctx *reactor.Context) error
}

// Handler bridges a non-blocking reactor and blocking request processors. It
// implements the reactor-facing callback set; everything else is wiring
// around the per-connection state record.
type Handler struct {
	cfg      *config.Config
	pipeline *proc.Pipeline
	resolver router.Resolver
	exec     executor.Executor

	reuse    ReuseStrategy
	verifier ExpectationVerifier
	alloc    sharedbuf.Allocator
	events   reactor.EventListener
	log      zerolog.Logger
}

func NewHandler(
	cfg *config.Config,
	pipeline *proc.Pipeline,
	resolver router.Resolver,
	exec executor.Executor,
) *Handler {
	log := zerolog.Nop()

	return &Handler{
		cfg:      cfg,
		pipeline: pipeline,
		resolver: resolver,
		exec:     exec,
		reuse:    DefaultReuseStrategy{},
		alloc:    sharedbuf.PoolAllocator{},
		events:   reactor.NewLogListener(log),
		log:      log,
	}
}

// WithReuseStrategy replaces the connection reuse policy.
func (h *Handler) WithReuseStrategy(s ReuseStrategy) *Handler {
	h.reuse = s
	return h
}

// WithExpectationVerifier installs a policy for Expect: 100-continue. Without
// one, every expectation is met.
func (h *Handler) WithExpectationVerifier(v ExpectationVerifier) *Handler {
	h.verifier = v
	return h
}

// WithEventListener replaces the lifecycle listener.
func (h *Handler) WithEventListener(l reactor.EventListener) *Handler {
	h.events = l
	return h
}

// WithAllocator replaces the buffer storage allocator.
func (h *Handler) WithAllocator(a sharedbuf.Allocator) *Handler {
	h.alloc = a
	return h
}

// WithLogger replaces the handler's logger and that of the default listener.
func (h *Handler) WithLogger(log zerolog.Logger) *Handler {
	h.log = log
	if _, isDefault := h.events.(*reactor.LogListener); isDefault {
		h.events = reactor.NewLogListener(log)
	}

	return h
}

// Connected allocates the per-connection record and announces the connection.
func (h *Handler) Connected(conn reactor.ServerConnection) {
	state := newConnState(h.cfg.Buffers.ContentSize, conn, h.alloc)
	conn.Context().Set(reactor.ConnStateKey, state)

	h.events.ConnectionOpen(conn)
}

// Closed releases every waiter of the connection. Idempotent.
func (h *Handler) Closed(conn reactor.ServerConnection) {
	if state := h.state(conn); state != nil {
		state.shutdown()
	}

	h.events.ConnectionClosed(conn)
}

// Timeout reacts to an idle connection expiring.
func (h *Handler) Timeout(conn reactor.ServerConnection) {
	h.events.ConnectionTimeout(conn)
	_ = conn.Close()
}

// RequestReceived stores the freshly parsed request head and dispatches its
// processing to the executor. With no entity expected, read interest is
// dropped right away.
func (h *Handler) RequestReceived(conn reactor.ServerConnection) {
	state := h.state(conn)
	req := conn.Request()

	state.mu.Lock()
	state.request = req
	state.input = inputRequestReceived

	if !req.EntityEnclosing() {
		conn.SuspendInput()
	}

	err := h.exec.Execute(func() {
		if err := h.handleRequest(state, conn); err != nil {
			h.fatal(conn, err)
		}
	})

	state.cond.Broadcast()
	state.mu.Unlock()

	if err != nil {
		h.fatal(conn, err)
	}
}

// InputReady moves decoded entity bytes into the input buffer.
func (h *Handler) InputReady(conn reactor.ServerConnection, dec reactor.Decoder) {
	state := h.state(conn)

	state.mu.Lock()
	_, err := state.inbuffer.Consume(dec)
	if err != nil {
		state.mu.Unlock()
		h.fatal(conn, err)
		return
	}

	if dec.Completed() {
		state.input = inputBodyDone
	} else {
		state.input = inputBodyStream
	}

	state.cond.Broadcast()
	state.mu.Unlock()
}

// ResponseReady submits a staged response once the transport can take one. A
// final response without an entity completes the exchange on the spot: both
// halves reset and the connection either closes or starts waiting for the
// next request, per the reuse policy.
func (h *Handler) ResponseReady(conn reactor.ServerConnection) {
	state := h.state(conn)

	state.mu.Lock()
	resp := state.response
	if state.output == outputReady && resp != nil && !conn.ResponseSubmitted() {
		if err := conn.SubmitResponse(resp); err != nil {
			state.mu.Unlock()
			h.fatal(conn, err)
			return
		}

		if resp.Code >= 200 && resp.Entity == nil {
			state.resetOutput()
			state.resetInput()

			if !h.reuse.KeepAlive(resp, conn.Context()) {
				_ = conn.Close()
			} else {
				conn.RequestInput()
			}
		} else {
			state.output = outputResponseSent
		}
	}

	state.cond.Broadcast()
	state.mu.Unlock()
}

// OutputReady drains the output buffer into the transport encoder. A
// completed encoder completes the exchange the same way an entityless
// response does.
func (h *Handler) OutputReady(conn reactor.ServerConnection, enc reactor.Encoder) {
	state := h.state(conn)

	state.mu.Lock()
	resp := state.response
	_, err := state.outbuffer.Produce(enc)
	if err != nil {
		state.mu.Unlock()
		h.fatal(conn, err)
		return
	}

	if enc.Completed() {
		state.resetOutput()
		state.resetInput()

		if !h.reuse.KeepAlive(resp, conn.Context()) {
			_ = conn.Close()
		} else {
			conn.RequestInput()
		}
	} else {
		state.output = outputBodyStream
	}

	state.cond.Broadcast()
	state.mu.Unlock()
}

// Exception renders a protocol failure the codec or transport ran into. The
// synthesized response deliberately cannot fail to build; whatever still goes
// wrong around it tears the connection down.
func (h *Handler) Exception(conn reactor.ServerConnection, cause error) {
	state := h.state(conn)

	resp := h.errorResponse(cause)
	resp.Entity = nil

	if err := h.pipeline.ProcessResponse(resp, conn.Context()); err != nil {
		h.fatal(conn, err)
		return
	}

	state.mu.Lock()
	state.response = resp
	conn.RequestOutput()
	state.cond.Broadcast()
	state.mu.Unlock()
}

// errorResponse maps a failure onto the wire: 501 for unsupported methods,
// 505 for unsupported protocol versions, the carried code for protocol
// errors, 500 for everything else. Emitted at HTTP/1.0 to force the
// connection closed afterwards. Total by construction.
func (h *Handler) errorResponse(cause error) *http.Response {
	resp := http.NewResponse(proto.HTTP10, mapErrorCode(cause))
	resp.Entity = http.BytesEntity([]byte(cause.Error()))
	resp.Entity.ContentType = "text/plain; charset=US-ASCII"

	return resp
}

func mapErrorCode(cause error) status.Code {
	var (
		notSupported status.MethodNotSupportedError
		badVersion   status.UnsupportedProtocolError
		httpErr      status.HTTPError
	)

	switch {
	case errors.As(cause, &notSupported):
		return status.NotImplemented
	case errors.As(cause, &badVersion):
		return status.HTTPVersionNotSupported
	case errors.As(cause, &httpErr):
		if httpErr.Code >= 400 {
			return httpErr.Code
		}

		return status.InternalServerError
	default:
		return status.InternalServerError
	}
}

func isProtocolFailure(err error) bool {
	var (
		notSupported status.MethodNotSupportedError
		badVersion   status.UnsupportedProtocolError
		httpErr      status.HTTPError
	)

	return errors.As(err, &notSupported) ||
		errors.As(err, &badVersion) ||
		errors.As(err, &httpErr)
}

// fatal tears the connection down on an unrecoverable failure. A wakeup
// caused by a concurrent shutdown is not a failure: the worker just exits.
func (h *Handler) fatal(conn reactor.ServerConnection, err error) {
	if errors.Is(err, sharedbuf.ErrInterrupted) {
		return
	}

	h.shutdownConnection(conn)

	if isProtocolFailure(err) {
		h.events.FatalProtocolError(err, conn)
	} else {
		h.events.FatalIOError(err, conn)
	}
}

func (h *Handler) shutdownConnection(conn reactor.ServerConnection) {
	conn.Shutdown()

	if state := h.state(conn); state != nil {
		state.shutdown()
	}
}

func (h *Handler) state(conn reactor.ServerConnection) *connState {
	state, _ := conn.Context().Get(reactor.ConnStateKey).(*connState)
	return state
}
