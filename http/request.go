package http

import (
	"net"
	"strings"

	"github.com/indigo-web/utils/strcomp"
	"github.com/sluice-web/sluice/http/method"
	"github.com/sluice-web/sluice/http/proto"
	"github.com/sluice-web/sluice/kv"
)

// Request represents an inbound HTTP message head plus, optionally, its
// entity. The entity content is whatever source the transport supplies; the
// service handler swaps it for a reader over the connection's input buffer
// before the user handler sees it.
type Request struct {
	Method method.Method
	// RequestURI is the exact request-target as it appeared in the request line.
	RequestURI string
	Proto      proto.Proto
	// Major and Minor hold the version pair from the request line, which may
	// name a version above what Proto can represent.
	Major, Minor uint8
	Headers      *kv.Storage
	// Entity is nil when the message encloses no body.
	Entity *Entity
	// Remote holds the remote address. Please note that this is generally not
	// a good parameter to identify a user, because there might be proxies in
	// the middle.
	Remote net.Addr
}

func NewRequest(m method.Method, uri string, p proto.Proto) *Request {
	return &Request{
		Method:     m,
		RequestURI: uri,
		Proto:      p,
		Major:      1,
		Minor:      minorOf(p),
		Headers:    kv.New(),
	}
}

func minorOf(p proto.Proto) uint8 {
	if p == proto.HTTP10 {
		return 0
	}

	return 1
}

// EntityEnclosing reports whether the request carries a body.
func (r *Request) EntityEnclosing() bool {
	return r.Entity != nil
}

// ExpectsContinue reports whether the client asked for a preliminary 100
// Continue response before transmitting the entity.
func (r *Request) ExpectsContinue() bool {
	for _, value := range r.Headers.Values("expect") {
		for _, token := range strings.Split(value, ",") {
			if strcomp.EqualFold(strings.TrimSpace(token), "100-continue") {
				return true
			}
		}
	}

	return false
}
