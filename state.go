package sluice

import (
	"sync"

	"github.com/sluice-web/sluice/http"
	"github.com/sluice-web/sluice/internal/sharedbuf"
	"github.com/sluice-web/sluice/reactor"
)

type inputState uint8

const (
	inputReady inputState = iota
	inputRequestReceived
	inputBodyStream
	inputBodyDone
	inputShutdown
)

type outputState uint8

const (
	outputReady outputState = iota
	outputResponseSent
	outputBodyStream
	outputBodyDone
	outputShutdown
)

// connState is the per-connection record shared between the reactor callbacks
// and the worker processing the current request. The mutex guards the state
// tags and the staged messages. The worker never holds it across a blocking
// buffer read or write, as the buffers carry their own synchronization; the
// reactor callbacks do run the non-blocking Consume and Produce under it.
type connState struct {
	mu   sync.Mutex
	cond *sync.Cond

	inbuffer  *sharedbuf.Input
	outbuffer *sharedbuf.Output

	input  inputState
	output outputState

	request  *http.Request
	response *http.Response
}

func newConnState(bufsize int, ctl reactor.IOControl, alloc sharedbuf.Allocator) *connState {
	s := &connState{
		inbuffer:  sharedbuf.NewInput(bufsize, ctl, alloc),
		outbuffer: sharedbuf.NewOutput(bufsize, ctl, alloc),
	}
	s.cond = sync.NewCond(&s.mu)

	return s
}

// resetInput returns the inbound half to the state in which the next request
// can be received. Must be called under the mutex.
func (s *connState) resetInput() {
	s.inbuffer.Reset()
	s.request = nil
	s.input = inputReady
}

// resetOutput returns the outbound half to the state in which the next
// response can be staged. Must be called under the mutex.
func (s *connState) resetOutput() {
	s.outbuffer.Reset()
	s.response = nil
	s.output = outputReady
}

// shutdown terminally wakes every waiter: both buffers start failing their
// operations and both state tags move to their terminal value. Idempotent.
func (s *connState) shutdown() {
	s.inbuffer.Shutdown()
	s.outbuffer.Shutdown()

	s.mu.Lock()
	s.input = inputShutdown
	s.output = outputShutdown
	s.cond.Broadcast()
	s.mu.Unlock()
}

// waitOutput blocks the worker until the output tag reaches want, failing
// with sharedbuf.ErrInterrupted if the connection shuts down first.
func (s *connState) waitOutput(want outputState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for {
		if s.output == want {
			return nil
		}
		if s.output == outputShutdown {
			return sharedbuf.ErrInterrupted
		}

		s.cond.Wait()
	}
}
