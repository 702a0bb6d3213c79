package http

import (
	"bytes"
	"io"
	"strings"

	"github.com/sluice-web/sluice/http/method"
	"github.com/sluice-web/sluice/http/status"
)

// LengthUnknown marks an entity whose size cannot be told in advance, e.g. a
// generated stream. Such entities are framed by the transfer codec.
const LengthUnknown int64 = -1

// Entity is a message body: its source, its size when known, and the media
// type it should be announced with.
type Entity struct {
	ContentType string
	Length      int64
	Content     io.Reader
}

// BytesEntity wraps a byte slice WITHOUT COPYING. Changing the passed slice
// later will affect the entity by itself.
func BytesEntity(b []byte) *Entity {
	return &Entity{
		Length:  int64(len(b)),
		Content: bytes.NewReader(b),
	}
}

func StringEntity(s string) *Entity {
	return &Entity{
		Length:  int64(len(s)),
		Content: strings.NewReader(s),
	}
}

// StreamEntity wraps an arbitrary reader. Pass LengthUnknown if the size
// cannot be told in advance.
func StreamEntity(r io.Reader, length int64) *Entity {
	return &Entity{
		Length:  length,
		Content: r,
	}
}

// BodyAllowed reports whether a response to the method may carry an entity.
// HEAD responses and 1xx, 204 and 304 statuses never do.
func BodyAllowed(m method.Method, code status.Code) bool {
	if m == method.HEAD {
		return false
	}

	return code >= 200 && code != status.NoContent && code != status.NotModified
}
