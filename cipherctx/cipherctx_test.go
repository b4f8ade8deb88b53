package cipherctx

import (
	"bytes"
	"testing"

	"github.com/nutsvault/nuts/errs"
	"github.com/nutsvault/nuts/format"
	"github.com/nutsvault/nuts/xcrypto"
	"github.com/stretchr/testify/require"
)

func mustCipher(t *testing.T, tag format.CipherTag) xcrypto.Cipher {
	t.Helper()
	c, err := xcrypto.New(tag)
	require.NoError(t, err)
	return c
}

func TestContextRoundTripCtr(t *testing.T) {
	c := mustCipher(t, format.CipherAes128Ctr)
	key, _ := xcrypto.RandomBytes(c.KeySize())
	baseIV, _ := xcrypto.RandomBytes(c.IVSize())

	ctx, err := New(c, key, baseIV)
	require.NoError(t, err)

	plaintext := bytes.Repeat([]byte{0x7A}, 48)
	ciphertext := make([]byte, len(plaintext)+ctx.Overhead())
	n, err := ctx.Encrypt([]byte("block-a"), plaintext, ciphertext)
	require.NoError(t, err)

	decoded := make([]byte, len(plaintext))
	n, err = ctx.Decrypt([]byte("block-a"), ciphertext[:n], decoded)
	require.NoError(t, err)
	require.Equal(t, plaintext, decoded[:n])
}

func TestContextDistinctBlocksDistinctCiphertext(t *testing.T) {
	c := mustCipher(t, format.CipherAes128Ctr)
	key, _ := xcrypto.RandomBytes(c.KeySize())
	baseIV, _ := xcrypto.RandomBytes(c.IVSize())
	ctx, err := New(c, key, baseIV)
	require.NoError(t, err)

	plaintext := bytes.Repeat([]byte{0x01}, 32)

	outA := make([]byte, len(plaintext))
	_, err = ctx.Encrypt([]byte("block-a"), plaintext, outA)
	require.NoError(t, err)

	outB := make([]byte, len(plaintext))
	_, err = ctx.Encrypt([]byte("block-b"), plaintext, outB)
	require.NoError(t, err)

	require.NotEqual(t, outA, outB)
}

func TestContextGcmTamperDetected(t *testing.T) {
	c := mustCipher(t, format.CipherAes128Gcm)
	key, _ := xcrypto.RandomBytes(c.KeySize())
	baseIV, _ := xcrypto.RandomBytes(c.IVSize())
	ctx, err := New(c, key, baseIV)
	require.NoError(t, err)

	plaintext := []byte("sensitive archive entry bytes")
	ciphertext := make([]byte, len(plaintext)+ctx.Overhead())
	n, err := ctx.Encrypt([]byte("block-1"), plaintext, ciphertext)
	require.NoError(t, err)

	ciphertext[0] ^= 0xFF

	decoded := make([]byte, len(plaintext))
	_, err = ctx.Decrypt([]byte("block-1"), ciphertext[:n], decoded)
	require.ErrorIs(t, err, errs.ErrDecryptionFailed)
}

func TestContextCtrBitFlipUndetected(t *testing.T) {
	c := mustCipher(t, format.CipherAes128Ctr)
	key, _ := xcrypto.RandomBytes(c.KeySize())
	baseIV, _ := xcrypto.RandomBytes(c.IVSize())
	ctx, err := New(c, key, baseIV)
	require.NoError(t, err)

	plaintext := bytes.Repeat([]byte{0x5C}, 16)
	ciphertext := make([]byte, len(plaintext))
	_, err = ctx.Encrypt([]byte("block-x"), plaintext, ciphertext)
	require.NoError(t, err)

	ciphertext[0] ^= 0xFF

	decoded := make([]byte, len(plaintext))
	_, err = ctx.Decrypt([]byte("block-x"), ciphertext, decoded)
	require.NoError(t, err)
	require.NotEqual(t, plaintext, decoded)
}

func TestNewRejectsWrongKeyOrIVSize(t *testing.T) {
	c := mustCipher(t, format.CipherAes128Ctr)
	_, err := New(c, []byte("short"), make([]byte, c.IVSize()))
	require.ErrorIs(t, err, errs.ErrInvalidCipherArg)

	_, err = New(c, make([]byte, c.KeySize()), []byte("short"))
	require.ErrorIs(t, err, errs.ErrInvalidCipherArg)
}
