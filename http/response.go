package http

import (
	"io"

	json "github.com/json-iterator/go"
	"github.com/sluice-web/sluice/http/proto"
	"github.com/sluice-web/sluice/http/status"
	"github.com/sluice-web/sluice/kv"
)

// Response is a response message under construction. Methods are chainable in
// order to stay pleasant in handlers.
type Response struct {
	Proto   proto.Proto
	Code    status.Code
	Status  status.Status
	Headers *kv.Storage
	Entity  *Entity
}

// NewResponse returns a response at the given protocol version with the
// status text resolved from the code.
func NewResponse(p proto.Proto, code status.Code) *Response {
	return &Response{
		Proto:   p,
		Code:    code,
		Status:  status.Text(code),
		Headers: kv.New(),
	}
}

// WithCode sets a response code and a corresponding status text. In case of
// unknown code, the status text stays empty and should be set explicitly via
// WithStatus.
func (r *Response) WithCode(code status.Code) *Response {
	r.Code = code
	r.Status = status.Text(code)
	return r
}

// WithStatus sets a custom status text. Clients usually ignore it completely,
// so there are few reasons to use this except cosmetics.
func (r *Response) WithStatus(s status.Status) *Response {
	r.Status = s
	return r
}

// Header adds header values to a key. In case it already exists the values
// will be appended.
func (r *Response) Header(key string, values ...string) *Response {
	for i := range values {
		r.Headers.Add(key, values[i])
	}

	return r
}

// String sets the response's entity to the passed string.
func (r *Response) String(body string) *Response {
	r.Entity = StringEntity(body)
	return r
}

// Bytes sets the response's entity to the passed slice WITHOUT COPYING.
func (r *Response) Bytes(body []byte) *Response {
	r.Entity = BytesEntity(body)
	return r
}

// Stream sets the response's entity to an arbitrary reader. Pass
// LengthUnknown if the size cannot be told in advance; the transfer codec
// will frame it.
func (r *Response) Stream(reader io.Reader, length int64) *Response {
	r.Entity = StreamEntity(reader, length)
	return r
}

// ContentType sets the media type the entity will be announced with. Calls
// before an entity is attached are lost.
func (r *Response) ContentType(value string) *Response {
	if r.Entity != nil {
		r.Entity.ContentType = value
	}

	return r
}

// TryJSON marshals the model into the response entity, announcing
// application/json.
func (r *Response) TryJSON(model any) (*Response, error) {
	data, err := json.Marshal(model)
	if err != nil {
		return r, err
	}

	r.Entity = BytesEntity(data)
	r.Entity.ContentType = "application/json"

	return r, nil
}

// JSON does the same as TryJSON does, except the error is rendered as a 500
// with the error message as the body.
func (r *Response) JSON(model any) *Response {
	resp, err := r.TryJSON(model)
	if err != nil {
		return r.WithCode(status.InternalServerError).String(err.Error())
	}

	return resp
}
