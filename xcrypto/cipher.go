// Package xcrypto is the thin contract over Go's native crypto library
// for the cipher primitives nuts needs: symmetric ciphers (None, AES-128-CTR,
// AES-128-GCM), a KDF (PBKDF2 over SHA1/SHA256/SHA512), and a
// cryptographic random byte source. Every function here is stateless —
// callers pass key and IV on every call — so the stateful per-block IV
// bookkeeping in cipherctx stays entirely separate from the cipher math.
package xcrypto

import (
	"github.com/nutsvault/nuts/errs"
	"github.com/nutsvault/nuts/format"
)

// Cipher is the operation set every supported symmetric cipher exposes.
// Encrypt and Decrypt write into dst and return the number of bytes
// written; dst must have enough room for the input plus Overhead().
type Cipher interface {
	Encrypt(key, iv, plaintext, dst []byte) (int, error)
	Decrypt(key, iv, ciphertext, dst []byte) (int, error)

	// Overhead returns how many bytes Encrypt adds beyond len(plaintext)
	// (0 for None/CTR, 16 for GCM's authentication tag).
	Overhead() int
	// KeySize returns the required key length in bytes.
	KeySize() int
	// IVSize returns the required IV length in bytes.
	IVSize() int
}

// New returns the Cipher implementation for tag.
func New(tag format.CipherTag) (Cipher, error) {
	switch tag {
	case format.CipherNone:
		return noneCipher{}, nil
	case format.CipherAes128Ctr:
		return ctrCipher{}, nil
	case format.CipherAes128Gcm:
		return gcmCipher{}, nil
	default:
		return nil, errs.ErrUnsupportedCipher
	}
}
