package kv

import (
	"github.com/stretchr/testify/require"
	"testing"
)

func TestStorage(t *testing.T) {
	getHeaders := func() *Storage {
		return New().
			Add("Foo", "bar").
			Add("Hello", "World").
			Add("Lorem", "ipsum").
			Add("hello", "Pavlo")
	}

	t.Run("case-insensitive lookup", func(t *testing.T) {
		kv := getHeaders()
		require.Equal(t, "bar", kv.Value("FOO"))
		require.Equal(t, []string{"World", "Pavlo"}, kv.Values("HELLO"))
		require.True(t, kv.Has("lorem"))
		require.False(t, kv.Has("dolor"))
	})

	t.Run("missing key", func(t *testing.T) {
		kv := getHeaders()
		value, found := kv.Get("dolor")
		require.False(t, found)
		require.Empty(t, value)
		require.Nil(t, kv.Values("dolor"))
	})

	t.Run("delete", func(t *testing.T) {
		kv := getHeaders().Delete("HELLO")

		want := []Pair{
			{"Foo", "bar"},
			{"Lorem", "ipsum"},
		}
		require.Equal(t, want, kv.Pairs())
	})

	t.Run("set", func(t *testing.T) {
		kv := getHeaders().Set("HELLO", "no more Pavlo")

		want := []Pair{
			{"Foo", "bar"},
			{"Lorem", "ipsum"},
			{"HELLO", "no more Pavlo"},
		}
		require.Equal(t, want, kv.Pairs())
	})

	t.Run("clear keeps storage reusable", func(t *testing.T) {
		kv := getHeaders().Clear()
		require.Zero(t, kv.Len())

		kv.Add("Connection", "close")
		require.Equal(t, "close", kv.Value("connection"))
	})
}
