package codec

import (
	"io"
	"strconv"

	"github.com/pkg/errors"
)

// Identity frames an entity as-is onto the transport; the receiver delimits
// it by Content-Length (or by connection close).
type Identity struct {
	dst  io.Writer
	done bool
}

func NewIdentity(dst io.Writer) *Identity {
	return &Identity{dst: dst}
}

func (e *Identity) Write(p []byte) (int, error) {
	if e.done {
		return 0, errors.New("write past the end of the entity")
	}

	return e.dst.Write(p)
}

func (e *Identity) Complete() error {
	e.done = true
	return nil
}

func (e *Identity) Completed() bool {
	return e.done
}

// ChunkedEncoder frames an entity with the chunked transfer coding: every
// write becomes a chunk, completion emits the terminal chunk.
type ChunkedEncoder struct {
	dst  io.Writer
	done bool
}

func NewChunkedEncoder(dst io.Writer) *ChunkedEncoder {
	return &ChunkedEncoder{dst: dst}
}

func (e *ChunkedEncoder) Write(p []byte) (int, error) {
	if e.done {
		return 0, errors.New("write past the end of the entity")
	}
	if len(p) == 0 {
		return 0, nil
	}

	head := strconv.AppendUint(nil, uint64(len(p)), 16)
	head = append(head, '\r', '\n')
	if _, err := e.dst.Write(head); err != nil {
		return 0, err
	}
	if _, err := e.dst.Write(p); err != nil {
		return 0, err
	}
	if _, err := e.dst.Write([]byte{'\r', '\n'}); err != nil {
		return 0, err
	}

	return len(p), nil
}

func (e *ChunkedEncoder) Complete() error {
	if e.done {
		return nil
	}

	e.done = true
	_, err := io.WriteString(e.dst, "0\r\n\r\n")

	return err
}

func (e *ChunkedEncoder) Completed() bool {
	return e.done
}
