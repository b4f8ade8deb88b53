package archive

import (
	"testing"

	"github.com/nutsvault/nuts/backend"
	"github.com/nutsvault/nuts/container"
	"github.com/nutsvault/nuts/errs"
	"github.com/nutsvault/nuts/format"
	"github.com/stretchr/testify/require"
)

func newGcmContainer(t *testing.T, back backend.Backend) *container.Container {
	t.Helper()
	c, err := container.Create(back, container.WithPassword([]byte("pw")), container.WithCipher(format.CipherAes128Gcm))
	require.NoError(t, err)
	return c
}

// TestArchiveAppendAndReopen follows the two-entry append/reopen/forward
// traversal scenario: GCM cipher, 512-byte gross blocks, "f1" holding
// "hello world\n" and "f2" empty, closed and reopened before reading.
func TestArchiveAppendAndReopen(t *testing.T) {
	back := backend.NewMemoryBackend(512)
	c := newGcmContainer(t, back)

	a, err := Create(c)
	require.NoError(t, err)

	b1, err := a.Append("f1")
	require.NoError(t, err)
	n, err := b1.Write([]byte("hello world\n"))
	require.NoError(t, err)
	require.Equal(t, 12, n)
	require.NoError(t, b1.Finish())

	b2, err := a.Append("f2")
	require.NoError(t, err)
	require.NoError(t, b2.Finish())

	require.NoError(t, a.Close())

	c2, err := container.Open(back, container.WithPassword([]byte("pw")))
	require.NoError(t, err)

	a2, err := Open(c2)
	require.NoError(t, err)

	stats := a2.Stats()
	require.Equal(t, uint64(2), stats.Files)
	require.Equal(t, uint64(0), stats.Dirs)

	f1, err := a2.First()
	require.NoError(t, err)
	require.Equal(t, "f1", f1.Name())
	require.Equal(t, uint64(12), f1.Size())

	content, err := f1.ReadContent()
	require.NoError(t, err)
	require.Equal(t, []byte("hello world\n"), content)

	f2, err := f1.Next()
	require.NoError(t, err)
	require.Equal(t, "f2", f2.Name())
	require.Equal(t, uint64(0), f2.Size())

	_, err = f2.Next()
	require.ErrorIs(t, err, errs.ErrEntryEof)

	require.NoError(t, a2.Close())
}

func TestArchiveLookup(t *testing.T) {
	back := backend.NewMemoryBackend(512)
	c := newGcmContainer(t, back)

	a, err := Create(c)
	require.NoError(t, err)

	for _, name := range []string{"a", "b", "c"} {
		b, err := a.Append(name)
		require.NoError(t, err)
		require.NoError(t, b.Finish())
	}

	e, err := a.Lookup("b")
	require.NoError(t, err)
	require.Equal(t, "b", e.Name())

	_, err = a.Lookup("missing")
	require.ErrorIs(t, err, errs.ErrEntryNotFound)

	require.NoError(t, a.Close())
}

func TestArchiveCreateRequiresNoTopID(t *testing.T) {
	back := backend.NewMemoryBackend(512)
	c := newGcmContainer(t, back)

	_, err := Create(c)
	require.NoError(t, err)

	_, err = Create(c)
	require.ErrorIs(t, err, errs.ErrTopIDAlreadySet)

	a, err := Create(c, WithForce())
	require.NoError(t, err)
	require.NoError(t, a.Close())
}

func TestArchiveOpenRequiresTopID(t *testing.T) {
	back := backend.NewMemoryBackend(512)
	c := newGcmContainer(t, back)

	_, err := Open(c)
	require.ErrorIs(t, err, errs.ErrNoTopID)
}

func TestArchiveOpenRejectsBadMagic(t *testing.T) {
	back := backend.NewMemoryBackend(512)
	c := newGcmContainer(t, back)

	a, err := Create(c)
	require.NoError(t, err)

	corrupt := make([]byte, c.BlockSizeNet())
	_, err = c.Write(a.headerID, corrupt)
	require.NoError(t, err)

	_, err = Open(c)
	require.ErrorIs(t, err, errs.ErrInvalidHeader)
}

func TestArchiveEntryWithCompression(t *testing.T) {
	back := backend.NewMemoryBackend(512)
	c := newGcmContainer(t, back)

	a, err := Create(c)
	require.NoError(t, err)

	payload := make([]byte, 2000)
	for i := range payload {
		payload[i] = byte(i % 7)
	}

	b, err := a.Append("big", WithCompression(format.CompressionS2))
	require.NoError(t, err)
	_, err = b.Write(payload)
	require.NoError(t, err)
	require.NoError(t, b.Finish())

	e, err := a.First()
	require.NoError(t, err)
	require.Equal(t, format.CompressionS2, e.Compression())
	require.Equal(t, uint64(len(payload)), e.Size())

	got, err := e.ReadContent()
	require.NoError(t, err)
	require.Equal(t, payload, got)

	require.NoError(t, a.Close())
}

func TestArchiveEntryTypesAndMode(t *testing.T) {
	back := backend.NewMemoryBackend(512)
	c := newGcmContainer(t, back)

	a, err := Create(c)
	require.NoError(t, err)

	b, err := a.Append("dir1", WithEntryType(format.EntryDir), WithMode(0o700))
	require.NoError(t, err)
	require.NoError(t, b.Finish())

	e, err := a.First()
	require.NoError(t, err)
	require.Equal(t, format.EntryDir, e.Type())
	require.Equal(t, uint32(0o700), e.Mode())

	stats := a.Stats()
	require.Equal(t, uint64(1), stats.Dirs)

	require.NoError(t, a.Close())
}

func TestArchiveAppendSpansMultipleBlocks(t *testing.T) {
	back := backend.NewMemoryBackend(256)
	c := newGcmContainer(t, back)

	a, err := Create(c)
	require.NoError(t, err)

	payload := make([]byte, 1000)
	for i := range payload {
		payload[i] = byte(i)
	}

	b, err := a.Append("spans")
	require.NoError(t, err)
	_, err = b.Write(payload)
	require.NoError(t, err)
	require.NoError(t, b.Finish())

	e, err := a.First()
	require.NoError(t, err)

	got, err := e.ReadContent()
	require.NoError(t, err)
	require.Equal(t, payload, got)

	require.NoError(t, a.Close())
}

func TestEntryBuilderAbandon(t *testing.T) {
	back := backend.NewMemoryBackend(512)
	c := newGcmContainer(t, back)

	a, err := Create(c)
	require.NoError(t, err)

	b, err := a.Append("ghost")
	require.NoError(t, err)
	require.NoError(t, b.Abandon())

	_, err = b.Write([]byte("x"))
	require.ErrorIs(t, err, errs.ErrBuilderAbandoned)

	_, err = a.First()
	require.ErrorIs(t, err, errs.ErrEntryEof)

	require.NoError(t, a.Close())
}
