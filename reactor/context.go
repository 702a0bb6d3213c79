package reactor

import (
	"github.com/puzpuzpuz/xsync/v3"
)

// Well-known attribute keys. ConnStateKey is reserved for the service handler's
// own per-connection record; the remaining ones are how interceptors and user
// handlers reach the current exchange.
const (
	ConnStateKey  = "sluice.conn-state"
	ConnectionKey = "sluice.connection"
	RequestKey    = "sluice.request"
	ResponseKey   = "sluice.response"
	ConnIDKey     = "sluice.conn-id"
)

// Context is a connection-scoped attribute table. It is shared between the
// reactor goroutine and worker goroutines, hence the concurrent map
// underneath.
type Context struct {
	attrs *xsync.MapOf[string, any]
}

func NewContext() *Context {
	return &Context{
		attrs: xsync.NewMapOf[string, any](),
	}
}

// Get returns the attribute stored under the key, or nil.
func (c *Context) Get(key string) any {
	value, _ := c.attrs.Load(key)
	return value
}

func (c *Context) Set(key string, value any) {
	c.attrs.Store(key, value)
}

func (c *Context) Delete(key string) {
	c.attrs.Delete(key)
}
