package pager

import (
	"testing"

	"github.com/nutsvault/nuts/backend"
	"github.com/nutsvault/nuts/container"
	"github.com/nutsvault/nuts/format"
	"github.com/stretchr/testify/require"
)

func newTestContainer(t *testing.T) *container.Container {
	t.Helper()
	back := backend.NewMemoryBackend(1024)
	c, err := container.Create(back, container.WithPassword([]byte("pw")), container.WithCipher(format.CipherAes128Ctr))
	require.NoError(t, err)
	return c
}

func TestPagerGetMarkDirtyFlush(t *testing.T) {
	c := newTestContainer(t)
	id, err := c.Acquire()
	require.NoError(t, err)

	p := New(c)
	defer p.Close()

	buf, err := p.Get(id)
	require.NoError(t, err)
	copy(buf, []byte("hello pager"))
	p.MarkDirty()

	require.NoError(t, p.Flush())

	out := make([]byte, c.BlockSizeNet())
	_, err = c.Read(id, out)
	require.NoError(t, err)
	require.True(t, len(out) >= len("hello pager"))
	require.Equal(t, []byte("hello pager"), out[:len("hello pager")])
}

func TestPagerSwitchingBlocksFlushesDirty(t *testing.T) {
	c := newTestContainer(t)
	id1, err := c.Acquire()
	require.NoError(t, err)
	id2, err := c.Acquire()
	require.NoError(t, err)

	p := New(c)
	defer p.Close()

	buf, err := p.Get(id1)
	require.NoError(t, err)
	copy(buf, []byte("first"))
	p.MarkDirty()

	_, err = p.Get(id2) // should flush id1 before switching
	require.NoError(t, err)

	out := make([]byte, c.BlockSizeNet())
	_, err = c.Read(id1, out)
	require.NoError(t, err)
	require.Equal(t, []byte("first"), out[:len("first")])
}

func TestPagerCloseFlushesDirty(t *testing.T) {
	c := newTestContainer(t)
	id, err := c.Acquire()
	require.NoError(t, err)

	p := New(c)
	buf, err := p.Get(id)
	require.NoError(t, err)
	copy(buf, []byte("closed-flush"))
	p.MarkDirty()

	require.NoError(t, p.Close())

	out := make([]byte, c.BlockSizeNet())
	_, err = c.Read(id, out)
	require.NoError(t, err)
	require.Equal(t, []byte("closed-flush"), out[:len("closed-flush")])
}
