package sluice

import (
	"strings"

	"github.com/indigo-web/utils/strcomp"

	"github.com/sluice-web/sluice/http"
	"github.com/sluice-web/sluice/http/proto"
	"github.com/sluice-web/sluice/reactor"
)

// ReuseStrategy decides whether the connection may serve another request
// after the given response completes.
type ReuseStrategy interface {
	KeepAlive(resp *http.Response, ctx *reactor.Context) bool
}

// ReuseStrategyFunc adapts a plain function to the ReuseStrategy interface.
type ReuseStrategyFunc func(resp *http.Response, ctx *reactor.Context) bool

func (f ReuseStrategyFunc) KeepAlive(resp *http.Response, ctx *reactor.Context) bool {
	return f(resp, ctx)
}

// DefaultReuseStrategy implements the standard keep-alive rules: an explicit
// Connection token wins, otherwise HTTP/1.1 connections persist and older
// ones do not. A response whose entity cannot be delimited on the wire always
// closes the connection.
type DefaultReuseStrategy struct{}

func (DefaultReuseStrategy) KeepAlive(resp *http.Response, _ *reactor.Context) bool {
	if resp == nil {
		return false
	}

	if resp.Entity != nil &&
		!resp.Headers.Has("content-length") &&
		!hasToken(resp, "transfer-encoding", "chunked") {
		return false
	}

	if hasToken(resp, "connection", "close") {
		return false
	}
	if hasToken(resp, "connection", "keep-alive") {
		return true
	}

	return resp.Proto == proto.HTTP11
}

func hasToken(resp *http.Response, header, token string) bool {
	for _, value := range resp.Headers.Values(header) {
		for _, candidate := range strings.Split(value, ",") {
			if strcomp.EqualFold(strings.TrimSpace(candidate), token) {
				return true
			}
		}
	}

	return false
}
