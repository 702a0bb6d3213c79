// Package proc runs messages through an ordered pipeline of interceptors
// before they reach the handler (inbound) or the transport (outbound).
// Interceptors mutate the message in place, typically by adding headers.
package proc

import (
	"github.com/sluice-web/sluice/config"
	"github.com/sluice-web/sluice/http"
	"github.com/sluice-web/sluice/reactor"
)

type RequestInterceptor interface {
	Process(req *http.Request, ctx *reactor.Context) error
}

type RequestInterceptorFunc func(req *http.Request, ctx *reactor.Context) error

func (f RequestInterceptorFunc) Process(req *http.Request, ctx *reactor.Context) error {
	return f(req, ctx)
}

type ResponseInterceptor interface {
	Process(resp *http.Response, ctx *reactor.Context) error
}

type ResponseInterceptorFunc func(resp *http.Response, ctx *reactor.Context) error

func (f ResponseInterceptorFunc) Process(resp *http.Response, ctx *reactor.Context) error {
	return f(resp, ctx)
}

type Pipeline struct {
	requests  []RequestInterceptor
	responses []ResponseInterceptor
}

func New() *Pipeline {
	return new(Pipeline)
}

// Default returns the pipeline a plain server wants: Date, Server and content
// framing headers on outgoing responses. Date is skipped for 1xx responses,
// framing headers for 1xx, 204 and 304 ones.
func Default(cfg *config.Config) *Pipeline {
	return New().
		AddResponse(Date{}).
		AddResponse(Server{Token: cfg.HTTP.Server}).
		AddResponse(ContentHeaders{DefaultContentType: cfg.HTTP.DefaultContentType})
}

func (p *Pipeline) AddRequest(i RequestInterceptor) *Pipeline {
	p.requests = append(p.requests, i)
	return p
}

func (p *Pipeline) AddResponse(i ResponseInterceptor) *Pipeline {
	p.responses = append(p.responses, i)
	return p
}

func (p *Pipeline) ProcessRequest(req *http.Request, ctx *reactor.Context) error {
	for _, i := range p.requests {
		if err := i.Process(req, ctx); err != nil {
			return err
		}
	}

	return nil
}

func (p *Pipeline) ProcessResponse(resp *http.Response, ctx *reactor.Context) error {
	for _, i := range p.responses {
		if err := i.Process(resp, ctx); err != nil {
			return err
		}
	}

	return nil
}
