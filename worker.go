package sluice

import (
	"io"

	"github.com/sluice-web/sluice/http"
	"github.com/sluice-web/sluice/http/proto"
	"github.com/sluice-web/sluice/http/status"
	"github.com/sluice-web/sluice/reactor"
	"github.com/sluice-web/sluice/router"
)

// handleRequest is the worker-side body of an exchange. It coordinates the
// 100-continue handshake, runs the pipelines and the resolved handler, then
// streams the response entity through the output buffer. Blocking happens
// only on the two buffers and on the output-state waits; every such wait is
// released by a shutdown.
func (h *Handler) handleRequest(state *connState, conn reactor.ServerConnection) error {
	if err := state.waitOutput(outputReady); err != nil {
		return err
	}

	ctx := conn.Context()

	state.mu.Lock()
	req := state.request
	state.mu.Unlock()

	ctx.Set(reactor.ConnectionKey, conn)
	ctx.Set(reactor.RequestKey, req)

	// anything above HTTP/1.1 is answered as HTTP/1.1
	ver := req.Proto
	if ver == proto.Unknown || proto.Above11(req.Major, req.Minor) {
		ver = proto.HTTP11
	}

	var resp *http.Response

	if req.EntityEnclosing() {
		if req.ExpectsContinue() {
			resp = http.NewResponse(ver, status.Continue)

			if h.verifier != nil {
				if err := h.verifier.Verify(req, resp, ctx); err != nil {
					if !isProtocolFailure(err) {
						return err
					}

					resp = h.errorResponse(err)
				}
			}

			if resp.Code < 200 {
				// the expectation is met: emit the preliminary response and
				// wait for it to leave before touching the entity
				state.mu.Lock()
				state.response = resp
				conn.RequestOutput()
				state.mu.Unlock()

				if err := state.waitOutput(outputResponseSent); err != nil {
					return err
				}

				state.mu.Lock()
				state.resetOutput()
				state.mu.Unlock()

				resp = nil
			} else {
				// the expectation was rejected: the entity is never read
				conn.ResetInput()
				req.Entity = nil
			}
		}

		// hand the handler a blocking stream over the input buffer instead of
		// whatever source the transport attached
		if req.Entity != nil {
			req.Entity = &http.Entity{
				ContentType: req.Entity.ContentType,
				Length:      req.Entity.Length,
				Content:     state.inbuffer,
			}
		}
	}

	if resp == nil {
		resp = http.NewResponse(ver, status.OK)
		ctx.Set(reactor.ResponseKey, resp)

		if err := h.serve(req, resp, ctx); err != nil {
			if !isProtocolFailure(err) {
				return err
			}

			resp = h.errorResponse(err)
		}
	}

	if err := h.pipeline.ProcessResponse(resp, ctx); err != nil {
		return err
	}

	if !http.BodyAllowed(req.Method, resp.Code) {
		resp.Entity = nil
	}

	// stage and commit
	state.mu.Lock()
	state.response = resp
	conn.RequestOutput()
	state.mu.Unlock()

	if resp.Entity != nil {
		out := state.outbuffer
		if _, err := io.Copy(out, resp.Entity.Content); err != nil {
			return err
		}
		if err := out.Flush(); err != nil {
			return err
		}
		if err := out.Close(); err != nil {
			return err
		}
	}

	return nil
}

// serve runs the inbound pipeline and the resolved handler against the
// exchange. A missing handler is answered with 501.
func (h *Handler) serve(req *http.Request, resp *http.Response, ctx *reactor.Context) error {
	if err := h.pipeline.ProcessRequest(req, ctx); err != nil {
		return err
	}

	var handler router.Handler
	if h.resolver != nil {
		handler, _ = h.resolver.Lookup(req.RequestURI)
	}
	if handler == nil {
		resp.WithCode(status.NotImplemented)
		return nil
	}

	return handler.Handle(req, resp, ctx)
}
