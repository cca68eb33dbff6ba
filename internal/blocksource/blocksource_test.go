package blocksource

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryReadWithinBounds(t *testing.T) {
	src := NewMemory([]byte("hello world"), nil)
	defer src.Close()

	b, err := src.Read(6, 5)
	require.NoError(t, err)
	require.Equal(t, "world", string(b))
	require.Equal(t, 11, src.Size())
}

func TestMemoryReadPastEndIsShortRead(t *testing.T) {
	src := NewMemory([]byte("hello"), nil)
	defer src.Close()

	_, err := src.Read(3, 10)
	var shortRead *ErrShortRead
	require.True(t, errors.As(err, &shortRead))
}

func TestMemoryReadNegativeOffset(t *testing.T) {
	src := NewMemory([]byte("hello"), nil)
	defer src.Close()

	_, err := src.Read(-1, 2)
	require.Error(t, err)
}

func TestMemoryCloseInvokesRelease(t *testing.T) {
	called := false
	src := NewMemory([]byte("hello"), func() error {
		called = true
		return nil
	})

	require.NoError(t, src.Close())
	require.True(t, called)

	// Close is idempotent: calling it again must not invoke release twice
	// or panic on a nil receiver.
	require.NoError(t, src.Close())
}

func TestMemoryCloseWithoutReleaseIsNoop(t *testing.T) {
	src := NewMemory([]byte("hello"), nil)
	require.NoError(t, src.Close())
}
