package router

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/sluice-web/sluice/http"
	"github.com/sluice-web/sluice/reactor"
)

func named(name string) Handler {
	return HandlerFunc(func(req *http.Request, resp *http.Response, ctx *reactor.Context) error {
		resp.String(name)
		return nil
	})
}

func lookupName(t *testing.T, r *Registry, uri string) string {
	t.Helper()

	handler, ok := r.Lookup(uri)
	require.True(t, ok, "no handler for %s", uri)

	resp := http.NewResponse(0, 200)
	require.NoError(t, handler.Handle(nil, resp, nil))

	buf := make([]byte, 32)
	n, _ := resp.Entity.Content.Read(buf)

	return string(buf[:n])
}

func TestRegistry(t *testing.T) {
	t.Run("exact match wins", func(t *testing.T) {
		r := NewRegistry().
			Register("/ping", named("exact")).
			Register("/p*", named("prefix")).
			Register("*", named("fallback"))

		require.Equal(t, "exact", lookupName(t, r, "/ping"))
		require.Equal(t, "prefix", lookupName(t, r, "/pong"))
		require.Equal(t, "fallback", lookupName(t, r, "/other"))
	})

	t.Run("longest pattern wins", func(t *testing.T) {
		r := NewRegistry().
			Register("/static/*", named("short")).
			Register("/static/images/*", named("long"))

		require.Equal(t, "long", lookupName(t, r, "/static/images/cat.png"))
		require.Equal(t, "short", lookupName(t, r, "/static/app.js"))
	})

	t.Run("suffix patterns", func(t *testing.T) {
		r := NewRegistry().Register("*.gif", named("gif"))

		require.Equal(t, "gif", lookupName(t, r, "/images/loader.gif"))

		_, ok := r.Lookup("/images/loader.png")
		require.False(t, ok)
	})

	t.Run("query string is ignored", func(t *testing.T) {
		r := NewRegistry().Register("/search", named("search"))
		require.Equal(t, "search", lookupName(t, r, "/search?q=anything"))
	})

	t.Run("unregister", func(t *testing.T) {
		r := NewRegistry().Register("/gone", named("gone"))
		r.Unregister("/gone")

		_, ok := r.Lookup("/gone")
		require.False(t, ok)
	})
}
