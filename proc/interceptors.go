package proc

import (
	"strconv"
	"time"

	"github.com/sluice-web/sluice/http"
	"github.com/sluice-web/sluice/http/status"
	"github.com/sluice-web/sluice/reactor"
)

const dateFormat = "Mon, 02 Jan 2006 15:04:05 GMT"

// Date stamps final responses with the Date header, unless one is already
// present. Preliminary 1xx responses are left alone.
type Date struct{}

func (Date) Process(resp *http.Response, _ *reactor.Context) error {
	if resp.Code >= 200 && !resp.Headers.Has("date") {
		resp.Headers.Add("Date", time.Now().UTC().Format(dateFormat))
	}

	return nil
}

// Server announces the configured server token. An empty token disables the
// header.
type Server struct {
	Token string
}

func (s Server) Process(resp *http.Response, _ *reactor.Context) error {
	if s.Token != "" && !resp.Headers.Has("server") {
		resp.Headers.Add("Server", s.Token)
	}

	return nil
}

// ContentHeaders derives the entity framing headers. Sized entities are
// announced via Content-Length, unsized ones via Transfer-Encoding: chunked.
// Final responses without an entity still get Content-Length: 0, so that the
// client does not wait for a close. Codes which forbid a body get neither.
type ContentHeaders struct {
	DefaultContentType string
}

func (c ContentHeaders) Process(resp *http.Response, _ *reactor.Context) error {
	if resp.Code < 200 || resp.Code == status.NoContent || resp.Code == status.NotModified {
		return nil
	}

	entity := resp.Entity
	if entity == nil {
		if !resp.Headers.Has("content-length") {
			resp.Headers.Add("Content-Length", "0")
		}

		return nil
	}

	switch {
	case resp.Headers.Has("content-length") || resp.Headers.Has("transfer-encoding"):
	case entity.Length >= 0:
		resp.Headers.Add("Content-Length", strconv.FormatInt(entity.Length, 10))
	default:
		resp.Headers.Add("Transfer-Encoding", "chunked")
	}

	if entity.ContentType == "" {
		entity.ContentType = c.DefaultContentType
	}
	if !resp.Headers.Has("content-type") {
		resp.Headers.Add("Content-Type", entity.ContentType)
	}

	return nil
}
