package container

import (
	"bytes"
	"testing"

	"github.com/nutsvault/nuts/backend"
	"github.com/nutsvault/nuts/errs"
	"github.com/nutsvault/nuts/format"
	"github.com/nutsvault/nuts/xcrypto"
	"github.com/stretchr/testify/require"
)

func TestCreateOpenRoundTrip_S3(t *testing.T) {
	back := backend.NewMemoryBackend(512)

	salt, err := xcrypto.ExtendSaltTo([]byte("123"), 16)
	require.NoError(t, err)

	c, err := Create(back,
		WithPassword([]byte("abc")),
		WithCipher(format.CipherAes128Ctr),
		WithKdf(format.DigestSha1, 65536, salt),
	)
	require.NoError(t, err)
	require.NoError(t, c.Close())

	c2, err := Open(back, WithPassword([]byte("abc")))
	require.NoError(t, err)

	info := c2.Info()
	require.Equal(t, format.CipherAes128Ctr, info.Cipher)
	require.Equal(t, format.DigestSha1, info.Kdf.Digest)
	require.Equal(t, uint32(65536), info.Kdf.Iterations)
	require.Equal(t, salt, info.Kdf.Salt)
	require.Equal(t, uint32(512), info.BlockSizeNet) // CTR has no overhead
}

func TestOpenWrongPassword_S4(t *testing.T) {
	back := backend.NewMemoryBackend(512)

	salt, err := xcrypto.ExtendSaltTo([]byte("123"), 16)
	require.NoError(t, err)

	_, err = Create(back,
		WithPassword([]byte("abc")),
		WithCipher(format.CipherAes128Ctr),
		WithKdf(format.DigestSha1, 65536, salt),
	)
	require.NoError(t, err)

	_, err = Open(back, WithPassword([]byte("abd")))
	require.ErrorIs(t, err, errs.ErrWrongPassword)
}

func TestBlockReadWriteRoundTrip(t *testing.T) {
	back := backend.NewMemoryBackend(4096)
	c, err := Create(back, WithPassword([]byte("hunter2")), WithCipher(format.CipherAes128Gcm))
	require.NoError(t, err)

	id, err := c.Acquire()
	require.NoError(t, err)

	payload := bytes.Repeat([]byte("x"), 100)
	n, err := c.Write(id, payload)
	require.NoError(t, err)
	require.Equal(t, int(c.BlockSizeNet()), n)

	out := make([]byte, c.BlockSizeNet())
	n, err = c.Read(id, out)
	require.NoError(t, err)
	require.Equal(t, payload, out[:100])
	require.True(t, bytes.Equal(out[100:], make([]byte, n-100)))
}

func TestAcquireZeroInitialized(t *testing.T) {
	back := backend.NewMemoryBackend(1024)
	c, err := Create(back, WithPassword([]byte("pw")), WithCipher(format.CipherAes128Ctr))
	require.NoError(t, err)

	id, err := c.Acquire()
	require.NoError(t, err)

	out := make([]byte, c.BlockSizeNet())
	_, err = c.Read(id, out)
	require.NoError(t, err)
	require.Equal(t, make([]byte, len(out)), out)
}

func TestTopIDPersistsAcrossReopen(t *testing.T) {
	back := backend.NewMemoryBackend(1024)
	c, err := Create(back, WithPassword([]byte("pw")), WithCipher(format.CipherAes128Ctr))
	require.NoError(t, err)

	id, err := c.Acquire()
	require.NoError(t, err)
	require.NoError(t, c.SetTopID(id))
	require.NoError(t, c.Close())

	c2, err := Open(back, WithPassword([]byte("pw")))
	require.NoError(t, err)

	got, ok := c2.TopID()
	require.True(t, ok)
	require.Equal(t, id, got)
}

func TestChangePasswordPreservesMasterKey(t *testing.T) {
	back := backend.NewMemoryBackend(1024)
	c, err := Create(back, WithPassword([]byte("old")), WithCipher(format.CipherAes128Gcm))
	require.NoError(t, err)

	id, err := c.Acquire()
	require.NoError(t, err)
	_, err = c.Write(id, []byte("before change"))
	require.NoError(t, err)

	require.NoError(t, c.ChangePassword([]byte("new")))
	require.NoError(t, c.Close())

	_, err = Open(back, WithPassword([]byte("old")))
	require.ErrorIs(t, err, errs.ErrWrongPassword)

	c2, err := Open(back, WithPassword([]byte("new")))
	require.NoError(t, err)

	out := make([]byte, c2.BlockSizeNet())
	_, err = c2.Read(id, out)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(out, []byte("before change")))
}

func TestChangePasswordRegeneratesSalt(t *testing.T) {
	back := backend.NewMemoryBackend(1024)
	c, err := Create(back, WithPassword([]byte("old")), WithCipher(format.CipherAes128Gcm))
	require.NoError(t, err)

	oldSalt := append([]byte(nil), c.Info().Kdf.Salt...)

	require.NoError(t, c.ChangePassword([]byte("new")))
	require.NotEqual(t, oldSalt, c.Info().Kdf.Salt)

	require.NoError(t, c.Close())

	c2, err := Open(back, WithPassword([]byte("new")))
	require.NoError(t, err)
	require.Equal(t, c.Info().Kdf.Salt, c2.Info().Kdf.Salt)
}

func TestChangePasswordWithKdfHonorsExplicitSalt(t *testing.T) {
	back := backend.NewMemoryBackend(1024)
	c, err := Create(back, WithPassword([]byte("old")), WithCipher(format.CipherAes128Gcm))
	require.NoError(t, err)

	explicitSalt := []byte("0123456789abcdef")
	require.NoError(t, c.ChangePassword([]byte("new"), WithKdf(format.DigestSha512, 10000, explicitSalt)))
	require.Equal(t, explicitSalt, c.Info().Kdf.Salt)
	require.Equal(t, format.DigestSha512, c.Info().Kdf.Digest)
}

func TestCreateBlockSizeTooSmall(t *testing.T) {
	back := backend.NewMemoryBackend(8)
	_, err := Create(back, WithPassword([]byte("pw")), WithCipher(format.CipherAes128Gcm))
	require.ErrorIs(t, err, errs.ErrInvalidBlockSize)
}

func TestOperationsFailBeforeOpenOrAfterClose(t *testing.T) {
	back := backend.NewMemoryBackend(1024)
	c, err := Create(back, WithPassword([]byte("pw")), WithCipher(format.CipherAes128Ctr))
	require.NoError(t, err)
	require.NoError(t, c.Close())

	_, err = c.Acquire()
	require.ErrorIs(t, err, errs.ErrClosed)
}

func TestCreateRequiresPassword(t *testing.T) {
	back := backend.NewMemoryBackend(1024)
	_, err := Create(back)
	require.ErrorIs(t, err, errs.ErrWrongPassword)
}

func TestWithPasswordCallback(t *testing.T) {
	back := backend.NewMemoryBackend(1024)
	calls := 0
	cb := func() ([]byte, error) {
		calls++
		return []byte("callback-pw"), nil
	}

	_, err := Create(back, WithPasswordCallback(cb))
	require.NoError(t, err)
	require.Equal(t, 1, calls)

	_, err = Open(back, WithPasswordCallback(cb))
	require.NoError(t, err)
	require.Equal(t, 2, calls)
}
