package sluice

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/sluice-web/sluice/http"
	"github.com/sluice-web/sluice/reactor"
)

// testConn is a scripted reactor connection. Interest flags are plain
// booleans the driver polls; submitted responses are recorded in order.
type testConn struct {
	mu  sync.Mutex
	ctx *reactor.Context

	request *http.Request

	inputOn   bool
	outputOn  bool
	submitted []*http.Response
	inFlight  bool
	closed    bool
	shutdown  bool
	resets    int
}

func newTestConn() *testConn {
	return &testConn{
		ctx:     reactor.NewContext(),
		inputOn: true,
	}
}

func (c *testConn) RequestInput() {
	c.mu.Lock()
	c.inputOn = true
	c.mu.Unlock()
}

func (c *testConn) SuspendInput() {
	c.mu.Lock()
	c.inputOn = false
	c.mu.Unlock()
}

func (c *testConn) RequestOutput() {
	c.mu.Lock()
	c.outputOn = true
	c.mu.Unlock()
}

func (c *testConn) SuspendOutput() {
	c.mu.Lock()
	c.outputOn = false
	c.mu.Unlock()
}

func (c *testConn) Shutdown() {
	c.mu.Lock()
	c.shutdown = true
	c.mu.Unlock()
}

func (c *testConn) Context() *reactor.Context { return c.ctx }

func (c *testConn) Request() *http.Request {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.request
}

func (c *testConn) SubmitResponse(resp *http.Response) error {
	c.mu.Lock()
	c.submitted = append(c.submitted, resp)
	c.inFlight = true
	c.mu.Unlock()

	return nil
}

func (c *testConn) ResponseSubmitted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.inFlight
}

func (c *testConn) ResetInput() {
	c.mu.Lock()
	c.resets++
	c.mu.Unlock()
}

func (c *testConn) Close() error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	return nil
}

func (c *testConn) clearInFlight() {
	c.mu.Lock()
	c.inFlight = false
	c.mu.Unlock()
}

func (c *testConn) InputOn() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.inputOn
}

func (c *testConn) OutputOn() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.outputOn
}

func (c *testConn) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.closed
}

func (c *testConn) Resets() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.resets
}

func (c *testConn) Submitted() []*http.Response {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]*http.Response(nil), c.submitted...)
}

// sliceDecoder yields a fixed payload in at most chunk-sized pieces.
type sliceDecoder struct {
	mu    sync.Mutex
	data  []byte
	chunk int
}

func newSliceDecoder(data []byte, chunk int) *sliceDecoder {
	if chunk <= 0 {
		chunk = len(data)
	}

	return &sliceDecoder{data: data, chunk: chunk}
}

func (d *sliceDecoder) Read(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	limit := len(p)
	if limit > d.chunk {
		limit = d.chunk
	}

	n := copy(p[:limit], d.data)
	d.data = d.data[n:]

	return n, nil
}

func (d *sliceDecoder) Completed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	return len(d.data) == 0
}

// sinkEncoder collects produced bytes, accepting at most chunk bytes per call
// to emulate transport saturation.
type sinkEncoder struct {
	mu        sync.Mutex
	sink      bytes.Buffer
	chunk     int
	completed bool
}

func newSinkEncoder(chunk int) *sinkEncoder {
	return &sinkEncoder{chunk: chunk}
}

func (e *sinkEncoder) Write(p []byte) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.chunk > 0 && len(p) > e.chunk {
		p = p[:e.chunk]
	}

	return e.sink.Write(p)
}

func (e *sinkEncoder) Complete() error {
	e.mu.Lock()
	e.completed = true
	e.mu.Unlock()

	return nil
}

func (e *sinkEncoder) Completed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.completed
}

func (e *sinkEncoder) Bytes() []byte {
	e.mu.Lock()
	defer e.mu.Unlock()

	return append([]byte(nil), e.sink.Bytes()...)
}

// recordingListener counts lifecycle events.
type recordingListener struct {
	mu             sync.Mutex
	opened, closed int
	fatalIO        []error
	fatalProtocol  []error
}

func (l *recordingListener) ConnectionOpen(reactor.ServerConnection) {
	l.mu.Lock()
	l.opened++
	l.mu.Unlock()
}

func (l *recordingListener) ConnectionClosed(reactor.ServerConnection) {
	l.mu.Lock()
	l.closed++
	l.mu.Unlock()
}

func (l *recordingListener) ConnectionTimeout(reactor.ServerConnection) {}

func (l *recordingListener) FatalIOError(err error, _ reactor.ServerConnection) {
	l.mu.Lock()
	l.fatalIO = append(l.fatalIO, err)
	l.mu.Unlock()
}

func (l *recordingListener) FatalProtocolError(err error, _ reactor.ServerConnection) {
	l.mu.Lock()
	l.fatalProtocol = append(l.fatalProtocol, err)
	l.mu.Unlock()
}

func (l *recordingListener) closedCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.closed
}

func (l *recordingListener) fatals() (io, protocol []error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return append([]error(nil), l.fatalIO...), append([]error(nil), l.fatalProtocol...)
}

// driver emulates the reactor's event loop over a testConn: it fires the
// handler callbacks serially, exactly as a selector would, until a condition
// is met or the deadline passes.
type driver struct {
	t    *testing.T
	h    *Handler
	conn *testConn

	dec       *sliceDecoder
	enc       *sinkEncoder
	encChunk  int
	delivered []*sinkEncoder
}

func newDriver(t *testing.T, h *Handler, conn *testConn) *driver {
	return &driver{t: t, h: h, conn: conn, encChunk: 16}
}

// receive announces a request head, the way a reactor does after parsing one.
func (d *driver) receive(req *http.Request, body *sliceDecoder) {
	d.conn.mu.Lock()
	d.conn.request = req
	d.conn.mu.Unlock()
	d.dec = body

	d.h.RequestReceived(d.conn)
}

// spin runs reactor iterations until the condition holds.
func (d *driver) spin(until func() bool, msg string) {
	d.t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for !until() {
		if time.Now().After(deadline) {
			d.t.Fatalf("reactor stalled: %s", msg)
		}

		if !d.step() {
			time.Sleep(200 * time.Microsecond)
		}
	}
}

// step performs at most one output-side callback, followed by an input-side
// one when the output side had nothing to submit, reporting whether anything
// advanced.
func (d *driver) step() bool {
	if d.conn.Closed() {
		return false
	}

	if d.conn.OutputOn() {
		if d.enc != nil {
			before := len(d.enc.Bytes())
			d.h.OutputReady(d.conn, d.enc)

			if d.enc.Completed() {
				d.delivered = append(d.delivered, d.enc)
				d.enc = nil
				d.conn.clearInFlight()
				return true
			}

			return len(d.enc.Bytes()) > before
		}

		if !d.conn.ResponseSubmitted() {
			before := len(d.conn.Submitted())
			d.h.ResponseReady(d.conn)

			if submitted := d.conn.Submitted(); len(submitted) > before {
				resp := submitted[len(submitted)-1]
				switch {
				case resp.Code < 200:
					// preliminary, leaves the wire instantly
					d.conn.clearInFlight()
				case resp.Entity == nil:
					d.conn.clearInFlight()
				default:
					d.enc = newSinkEncoder(d.encChunk)
				}

				return true
			}
		}
	}

	if d.dec != nil && d.conn.InputOn() {
		d.h.InputReady(d.conn, d.dec)
		if d.dec.Completed() {
			d.dec = nil
		}

		return true
	}

	return false
}

// exchangeDone reports a completed keep-alive exchange: n responses are out
// and the connection is waiting for the next request.
func (d *driver) exchangeDone(n int) func() bool {
	return func() bool {
		return len(d.conn.Submitted()) >= n && d.enc == nil &&
			!d.conn.ResponseSubmitted() && d.conn.InputOn()
	}
}
