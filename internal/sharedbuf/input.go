// Package sharedbuf implements the two bounded byte buffers shared between the
// reactor goroutine and a worker: the inbound one is fed by the reactor and
// drained by blocking reads, the outbound one is fed by blocking writes and
// drained by the reactor. Both signal I/O interest through the connection's
// IOControl so that neither side can ever overflow them.
package sharedbuf

import (
	"io"
	"sync"

	"github.com/pkg/errors"
	"github.com/valyala/bytebufferpool"

	"github.com/sluice-web/sluice/reactor"
)

// ErrInterrupted is returned from blocked operations woken by a shutdown.
var ErrInterrupted = errors.New("service interrupted")

// Input is the request-entity buffer. The reactor appends decoded bytes via
// Consume, a single worker drains them via Read. When the buffer fills up the
// reactor is told to stop polling for reads; the next worker read opening
// space turns polling back on.
type Input struct {
	mu   sync.Mutex
	cond *sync.Cond

	storage *bytebufferpool.ByteBuffer
	data    []byte
	head    int
	size    int

	eof       bool
	down      bool
	suspended bool

	ctl   reactor.IOControl
	alloc Allocator
}

func NewInput(capacity int, ctl reactor.IOControl, alloc Allocator) *Input {
	storage := alloc.Acquire(capacity)
	in := &Input{
		storage: storage,
		data:    storage.B[:capacity],
		ctl:     ctl,
		alloc:   alloc,
	}
	in.cond = sync.NewCond(&in.mu)

	return in
}

// Consume transfers as many bytes as the decoder has available into the
// buffer. Invoked on the reactor goroutine, never blocks. When the buffer
// becomes full, read interest is suspended until the worker drains it below
// capacity. A completed decoder marks end-of-entity.
func (b *Input) Consume(dec reactor.Decoder) (n int, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.down {
		return 0, ErrInterrupted
	}

	for b.size < len(b.data) {
		free := b.free()
		read, err := dec.Read(free)
		b.size += read
		n += read

		if err != nil {
			b.cond.Broadcast()
			return n, errors.Wrap(err, "consume content")
		}
		if read < len(free) {
			break
		}
	}

	if dec.Completed() {
		b.eof = true
	}

	if b.size == len(b.data) && !b.eof {
		b.suspended = true
		b.ctl.SuspendInput()
	}

	b.cond.Broadcast()

	return n, nil
}

// Read blocks until at least one byte is available, end-of-entity is reached
// (io.EOF), or the buffer is shut down (ErrInterrupted). Invoked by the
// worker. Draining a previously full buffer resumes the reactor's read
// interest.
func (b *Input) Read(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for b.size == 0 && !b.eof && !b.down {
		b.cond.Wait()
	}

	if b.down {
		return 0, ErrInterrupted
	}
	if b.size == 0 {
		return 0, io.EOF
	}

	n := b.drainInto(p)

	if b.suspended {
		b.suspended = false
		b.ctl.RequestInput()
	}

	return n, nil
}

// Reset clears contents and end-of-entity, returning the buffer to its empty
// accepting state for the next request on the connection.
func (b *Input) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.down {
		return
	}

	b.head, b.size = 0, 0
	b.eof = false
	b.suspended = false
	b.cond.Broadcast()
}

// Shutdown wakes all waiters and releases the backing storage. Any subsequent
// operation fails with ErrInterrupted.
func (b *Input) Shutdown() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.down {
		return
	}

	b.down = true
	b.data = nil
	b.alloc.Release(b.storage)
	b.storage = nil
	b.cond.Broadcast()
}

// free returns the contiguous spare region at the tail. Must be called under
// the lock with size < len(data).
func (b *Input) free() []byte {
	if b.size == 0 {
		b.head = 0
		return b.data
	}

	tail := (b.head + b.size) % len(b.data)
	if tail >= b.head {
		return b.data[tail:]
	}

	return b.data[tail:b.head]
}

func (b *Input) drainInto(p []byte) (n int) {
	for len(p) > 0 && b.size > 0 {
		end := b.head + b.size
		if end > len(b.data) {
			end = len(b.data)
		}

		copied := copy(p, b.data[b.head:end])
		p = p[copied:]
		b.head = (b.head + copied) % len(b.data)
		b.size -= copied
		n += copied
	}

	return n
}
