package http

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/sluice-web/sluice/http/method"
	"github.com/sluice-web/sluice/http/proto"
)

func TestExpectsContinue(t *testing.T) {
	t.Run("no expect header", func(t *testing.T) {
		request := NewRequest(method.POST, "/", proto.HTTP11)
		require.False(t, request.ExpectsContinue())
	})

	t.Run("plain token", func(t *testing.T) {
		request := NewRequest(method.POST, "/", proto.HTTP11)
		request.Headers.Add("Expect", "100-continue")
		require.True(t, request.ExpectsContinue())
	})

	t.Run("case-insensitive with spacing", func(t *testing.T) {
		request := NewRequest(method.POST, "/", proto.HTTP11)
		request.Headers.Add("expect", "foo, 100-Continue ")
		require.True(t, request.ExpectsContinue())
	})

	t.Run("unrelated expectation", func(t *testing.T) {
		request := NewRequest(method.POST, "/", proto.HTTP11)
		request.Headers.Add("Expect", "202-accepted")
		require.False(t, request.ExpectsContinue())
	})
}

func TestEntityEnclosing(t *testing.T) {
	request := NewRequest(method.GET, "/", proto.HTTP11)
	require.False(t, request.EntityEnclosing())

	request.Entity = StringEntity("hello")
	require.True(t, request.EntityEnclosing())
}
