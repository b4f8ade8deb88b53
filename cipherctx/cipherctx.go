// Package cipherctx is the stateful per-block encrypt/decrypt pipeline spec
// section 4.3 describes: a cipher, a master key, and a base IV shared by
// every block in a container, combined with a per-block digest so that no
// two blocks are ever sealed under the same effective IV.
package cipherctx

import (
	"github.com/nutsvault/nuts/errs"
	"github.com/nutsvault/nuts/internal/hash"
	"github.com/nutsvault/nuts/xcrypto"
)

// Context encrypts and decrypts individual blocks under one (cipher, key,
// base IV) triple. It is safe for concurrent use: every operation is
// stateless beyond the fields fixed at construction.
type Context struct {
	cipher xcrypto.Cipher
	key    []byte
	baseIV []byte
}

// New builds a Context. key and baseIV must match cipher's KeySize/IVSize.
func New(cipher xcrypto.Cipher, key, baseIV []byte) (*Context, error) {
	if len(key) != cipher.KeySize() {
		return nil, errs.ErrInvalidCipherArg
	}
	if len(baseIV) != cipher.IVSize() {
		return nil, errs.ErrInvalidCipherArg
	}

	return &Context{cipher: cipher, key: key, baseIV: baseIV}, nil
}

// Overhead returns the number of bytes Encrypt adds beyond the plaintext
// length for the wrapped cipher (0 for None/CTR, 16 for GCM).
func (c *Context) Overhead() int { return c.cipher.Overhead() }

// Encrypt seals plaintext for blockID into dst, using an IV derived from
// the context's base IV and blockID's digest.
func (c *Context) Encrypt(blockID, plaintext, dst []byte) (int, error) {
	iv := c.effectiveIV(blockID)
	return c.cipher.Encrypt(c.key, iv, plaintext, dst)
}

// Decrypt opens ciphertext sealed for blockID into dst.
func (c *Context) Decrypt(blockID, ciphertext, dst []byte) (int, error) {
	iv := c.effectiveIV(blockID)
	return c.cipher.Decrypt(c.key, iv, ciphertext, dst)
}

// effectiveIV computes base_iv XOR encode_be(block_id_as_integer_digest).
// The digest is folded into the low bytes of the
// base IV via big-endian XOR so a short digest still perturbs every block
// differently without changing the IV's length.
func (c *Context) effectiveIV(blockID []byte) []byte {
	digest := hash.BlockDigest(blockID)

	iv := make([]byte, len(c.baseIV))
	copy(iv, c.baseIV)

	var digestBytes [8]byte
	for i := 0; i < 8; i++ {
		digestBytes[7-i] = byte(digest >> (8 * i))
	}

	n := len(iv)
	for i := 0; i < 8 && i < n; i++ {
		iv[n-1-i] ^= digestBytes[7-i]
	}

	return iv
}
