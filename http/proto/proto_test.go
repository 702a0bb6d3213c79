package proto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	require.Equal(t, HTTP10, Parse(1, 0))
	require.Equal(t, HTTP11, Parse(1, 1))
	require.Equal(t, Unknown, Parse(1, 2))
	require.Equal(t, Unknown, Parse(2, 0))
	require.Equal(t, Unknown, Parse(0, 9))
}

func TestAbove11(t *testing.T) {
	require.False(t, Above11(1, 0))
	require.False(t, Above11(1, 1))
	require.True(t, Above11(1, 2))
	require.True(t, Above11(2, 0))
	require.True(t, Above11(3, 0))
}

func TestString(t *testing.T) {
	require.Equal(t, "HTTP/1.0", HTTP10.String())
	require.Equal(t, "HTTP/1.1", HTTP11.String())
}
