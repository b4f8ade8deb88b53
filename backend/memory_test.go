package backend

import (
	"testing"

	"github.com/nutsvault/nuts/errs"
	"github.com/stretchr/testify/require"
)

func TestMemoryBackendAcquireReadWrite(t *testing.T) {
	b := NewMemoryBackend(64)

	buf := make([]byte, 64)
	for i := range buf {
		buf[i] = byte(i)
	}

	id, err := b.Acquire(buf)
	require.NoError(t, err)
	require.NotEqual(t, b.HeaderID(), id)

	got := make([]byte, 64)
	require.NoError(t, b.Read(id, got))
	require.Equal(t, buf, got)

	for i := range buf {
		buf[i] = 0xFF
	}
	require.NoError(t, b.Write(id, buf))
	require.NoError(t, b.Read(id, got))
	require.Equal(t, buf, got)
}

func TestMemoryBackendReleaseThenReadFails(t *testing.T) {
	b := NewMemoryBackend(32)
	buf := make([]byte, 32)

	id, err := b.Acquire(buf)
	require.NoError(t, err)
	require.NoError(t, b.Release(id))

	err = b.Read(id, buf)
	require.ErrorIs(t, err, errs.ErrNoSuchBlock)
}

func TestMemoryBackendHeaderBlockPresentFromStart(t *testing.T) {
	b := NewMemoryBackend(16)
	buf := make([]byte, 16)
	require.NoError(t, b.Read(b.HeaderID(), buf))
}

func TestMemoryBackendWrongSizeRejected(t *testing.T) {
	b := NewMemoryBackend(16)
	_, err := b.Acquire(make([]byte, 8))
	require.ErrorIs(t, err, errs.ErrInvalidBlockSize)
}

func TestMemoryBackendSequentialIDs(t *testing.T) {
	b := NewMemoryBackend(8)
	buf := make([]byte, 8)

	id1, err := b.Acquire(buf)
	require.NoError(t, err)
	id2, err := b.Acquire(buf)
	require.NoError(t, err)
	require.NotEqual(t, id1, id2)
}
