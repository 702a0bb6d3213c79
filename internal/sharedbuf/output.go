package sharedbuf

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/valyala/bytebufferpool"

	"github.com/sluice-web/sluice/reactor"
)

// ErrClosed is returned on writes past Close.
var ErrClosed = errors.New("entity already completed")

// Output is the response-entity buffer, the mirror image of Input: a single
// worker appends bytes via blocking writes, the reactor drains them into the
// transport encoder. A full buffer blocks the worker until the reactor makes
// progress, which is what bounds the memory of arbitrarily large responses.
type Output struct {
	mu   sync.Mutex
	cond *sync.Cond

	storage *bytebufferpool.ByteBuffer
	data    []byte
	head    int
	size    int

	completed bool
	down      bool

	ctl   reactor.IOControl
	alloc Allocator
}

func NewOutput(capacity int, ctl reactor.IOControl, alloc Allocator) *Output {
	storage := alloc.Acquire(capacity)
	out := &Output{
		storage: storage,
		data:    storage.B[:capacity],
		ctl:     ctl,
		alloc:   alloc,
	}
	out.cond = sync.NewCond(&out.mu)

	return out
}

// Write appends the whole of p, blocking whenever the buffer is full until
// the reactor drains it or a shutdown occurs. Making an empty buffer
// non-empty signals write interest to the reactor. Implements io.Writer for
// the benefit of entity streaming.
func (b *Output) Write(p []byte) (n int, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for len(p) > 0 {
		if b.completed {
			return n, ErrClosed
		}

		for b.size == len(b.data) && !b.down {
			b.cond.Wait()
		}

		if b.down {
			return n, ErrInterrupted
		}

		wasEmpty := b.size == 0
		copied := b.fillFrom(p)
		p = p[copied:]
		n += copied

		if wasEmpty && copied > 0 {
			b.ctl.RequestOutput()
		}
	}

	return n, nil
}

// Flush makes sure the reactor has been signalled. It does not wait for the
// buffered bytes to drain.
func (b *Output) Flush() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.down {
		return ErrInterrupted
	}

	b.ctl.RequestOutput()

	return nil
}

// Close marks end-of-entity: once the remaining bytes drain, the encoder will
// be completed. Closing the stream handed to an entity is how the worker
// performs writeCompleted.
func (b *Output) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.down {
		return ErrInterrupted
	}
	if b.completed {
		return nil
	}

	b.completed = true
	b.ctl.RequestOutput()
	b.cond.Broadcast()

	return nil
}

// Produce transfers as many buffered bytes as the encoder will take. Invoked
// on the reactor goroutine, never blocks. Draining the buffer completely
// either completes the encoder (end-of-entity was signalled) or suspends
// write interest until the worker writes more.
func (b *Output) Produce(enc reactor.Encoder) (n int, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.down {
		return 0, ErrInterrupted
	}

	for b.size > 0 {
		chunk := b.pending()
		written, err := enc.Write(chunk)
		b.head = (b.head + written) % len(b.data)
		b.size -= written
		n += written

		if err != nil {
			b.cond.Broadcast()
			return n, errors.Wrap(err, "produce content")
		}
		if written < len(chunk) {
			break
		}
	}

	if b.size == 0 {
		if b.completed {
			if !enc.Completed() {
				if err := enc.Complete(); err != nil {
					b.cond.Broadcast()
					return n, errors.Wrap(err, "complete encoder")
				}
			}
		} else {
			b.ctl.SuspendOutput()
		}
	}

	b.cond.Broadcast()

	return n, nil
}

// Reset clears contents and the end-of-entity mark, making the buffer ready
// for the next response on the connection.
func (b *Output) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.down {
		return
	}

	b.head, b.size = 0, 0
	b.completed = false
	b.cond.Broadcast()
}

// Shutdown wakes all waiters and releases the backing storage. Any subsequent
// operation fails with ErrInterrupted.
func (b *Output) Shutdown() {
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

func (b *Output) fillFrom(p []byte) (n int) {
	for len(p) > 0 && b.size < len(b.data) {
		var region []byte
		if b.size == 0 {
			b.head = 0
			region = b.data
		} else {
			tail := (b.head + b.size) % len(b.data)
			if tail >= b.head {
				region = b.data[tail:]
			} else {
				region = b.data[tail:b.head]
			}
		}

		copied := copy(region, p)
		p = p[copied:]
		b.size += copied
		n += copied
	}

	return n
}

// pending returns the contiguous occupied region at the head. Must be called
// under the lock with size > 0.
func (b *Output) pending() []byte {
	end := b.head + b.size
	if end > len(b.data) {
		end = len(b.data)
	}

	return b.data[b.head:end]
}
