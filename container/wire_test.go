package container

import (
	"testing"

	"github.com/nutsvault/nuts/backend"
	"github.com/nutsvault/nuts/bytesio"
	"github.com/nutsvault/nuts/errs"
	"github.com/nutsvault/nuts/format"
	"github.com/nutsvault/nuts/xcrypto"
	"github.com/stretchr/testify/require"
)

func TestHeaderBytesParseRoundTrip(t *testing.T) {
	h := header{
		cipher:    format.CipherAes128Gcm,
		kdf:       xcrypto.Pbkdf2Spec{Digest: format.DigestSha256, Iterations: 4096, Salt: []byte("0123456789abcdef")},
		headerIV:  []byte("abcdefghijkl"),
		encSecret: []byte("encrypted-secret-bytes"),
	}

	buf, err := h.bytes(512)
	require.NoError(t, err)
	require.Len(t, buf, 512)

	got, err := parseHeader(buf)
	require.NoError(t, err)
	require.Equal(t, h.cipher, got.cipher)
	require.Equal(t, h.kdf, got.kdf)
	require.Equal(t, h.headerIV, got.headerIV)
	require.Equal(t, h.encSecret, got.encSecret)
}

func TestHeaderBytesTooSmallBlockSize(t *testing.T) {
	h := header{
		cipher:    format.CipherAes128Gcm,
		kdf:       xcrypto.Pbkdf2Spec{Digest: format.DigestSha256, Iterations: 4096, Salt: []byte("0123456789abcdef")},
		headerIV:  []byte("abcdefghijkl"),
		encSecret: []byte("encrypted-secret-bytes"),
	}

	_, err := h.bytes(8)
	require.ErrorIs(t, err, errs.ErrInvalidBlockSize)
}

func TestParseHeaderRejectsBadMagic(t *testing.T) {
	buf := make([]byte, 512)
	copy(buf, []byte("BADMAGIC"))
	_, err := parseHeader(buf)
	require.ErrorIs(t, err, errs.ErrInvalidHeader)
}

func TestSecretBytesParseRoundTrip(t *testing.T) {
	s := secret{
		masterKey:    []byte("0123456789abcdef"),
		masterIV:     []byte("fedcba9876543210"),
		topID:        backend.BlockID("some-id-bytes"),
		hasTopID:     true,
		userSettings: []byte("settings-blob"),
	}

	buf, err := s.bytes()
	require.NoError(t, err)

	got, err := parseSecret(buf)
	require.NoError(t, err)
	require.Equal(t, s.masterKey, got.masterKey)
	require.Equal(t, s.masterIV, got.masterIV)
	require.Equal(t, s.topID, got.topID)
	require.True(t, got.hasTopID)
	require.Equal(t, s.userSettings, got.userSettings)
}

func TestSecretWithoutTopID(t *testing.T) {
	s := secret{masterKey: []byte("k"), masterIV: []byte("i"), userSettings: []byte("u")}

	buf, err := s.bytes()
	require.NoError(t, err)

	got, err := parseSecret(buf)
	require.NoError(t, err)
	require.False(t, got.hasTopID)
}

func TestParseSecretGarbageFailsWrongPassword(t *testing.T) {
	_, err := parseSecret([]byte("not even close to a valid secret record"))
	require.ErrorIs(t, err, errs.ErrWrongPassword)
}

func TestKdfSpecRoundTrip(t *testing.T) {
	spec := xcrypto.Pbkdf2Spec{Digest: format.DigestSha512, Iterations: 200000, Salt: []byte("saltsaltsaltsalt")}

	w := bytesio.NewWriter()
	defer w.Release()
	require.NoError(t, writeKdfSpec(w, spec))

	r := bytesio.NewReader(w.Bytes())
	got, err := readKdfSpec(r)
	require.NoError(t, err)
	require.Equal(t, spec, got)
}
