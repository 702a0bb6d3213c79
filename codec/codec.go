// Package codec ships content codecs satisfying the reactor contracts:
// decoders turning framed transport bytes into entity bytes, and encoders
// framing entity bytes back onto a transport. A reactor with its own codec
// layer does not need this package; the defaults here serve embedders and the
// test harness.
package codec

import (
	"io"

	"github.com/indigo-web/chunkedbody"
	"github.com/pkg/errors"
)

// LengthDelimited decodes an identity-framed entity announced via
// Content-Length. Raw transport bytes are pushed in via Feed, decoded bytes
// are pulled out via Read, as the reactor delivers input events.
type LengthDelimited struct {
	pending   []byte
	remaining int64
}

func NewLengthDelimited(contentLength int64) *LengthDelimited {
	return &LengthDelimited{remaining: contentLength}
}

// Feed accepts raw bytes from the transport, returning whatever does not
// belong to this entity (the beginning of the next pipelined request).
func (d *LengthDelimited) Feed(raw []byte) (leftover []byte) {
	take := int64(len(raw))
	if take > d.remaining {
		take = d.remaining
	}

	d.pending = append(d.pending, raw[:take]...)
	d.remaining -= take

	return raw[take:]
}

func (d *LengthDelimited) Read(p []byte) (int, error) {
	n := copy(p, d.pending)
	d.pending = d.pending[n:]

	return n, nil
}

func (d *LengthDelimited) Completed() bool {
	return d.remaining == 0 && len(d.pending) == 0
}

// Chunked decodes a chunked transfer coding.
type Chunked struct {
	parser   *chunkedbody.Parser
	pending  []byte
	trailers bool
	done     bool
}

func NewChunked(trailers bool) *Chunked {
	return &Chunked{
		parser:   chunkedbody.NewParser(chunkedbody.DefaultSettings()),
		trailers: trailers,
	}
}

// Feed accepts raw bytes from the transport, returning the bytes past the
// terminal chunk, if the terminator was seen.
func (d *Chunked) Feed(raw []byte) (leftover []byte, err error) {
	for len(raw) > 0 && !d.done {
		chunk, extra, err := d.parser.Parse(raw, d.trailers)
		switch err {
		case nil:
		case io.EOF:
			d.done = true
		default:
			return nil, errors.Wrap(err, "chunked entity")
		}

		d.pending = append(d.pending, chunk...)
		raw = extra
	}

	return raw, nil
}

func (d *Chunked) Read(p []byte) (int, error) {
	n := copy(p, d.pending)
	d.pending = d.pending[n:]

	return n, nil
}

func (d *Chunked) Completed() bool {
	return d.done && len(d.pending) == 0
}
