package xcrypto

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"

	"github.com/nutsvault/nuts/errs"
)

// ctrCipher is AES-128 in CTR mode: an unauthenticated stream cipher, no
// per-block overhead. A bit-flip in the ciphertext silently corrupts the
// corresponding plaintext bit rather than failing to decrypt — callers
// who need tamper detection should pick AES-128-GCM instead.
type ctrCipher struct{}

func (ctrCipher) Overhead() int { return 0 }
func (ctrCipher) KeySize() int  { return 16 }
func (ctrCipher) IVSize() int   { return aes.BlockSize }

func (ctrCipher) Encrypt(key, iv, plaintext, dst []byte) (int, error) {
	return ctrXOR(key, iv, plaintext, dst)
}

func (ctrCipher) Decrypt(key, iv, ciphertext, dst []byte) (int, error) {
	// CTR is its own inverse: XOR-ing the keystream twice is the identity.
	return ctrXOR(key, iv, ciphertext, dst)
}

func ctrXOR(key, iv, in, dst []byte) (int, error) {
	if len(key) != 16 || len(iv) != aes.BlockSize {
		return 0, errs.ErrInvalidCipherArg
	}
	if len(dst) < len(in) {
		return 0, errs.ErrInvalidCipherArg
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return 0, fmt.Errorf("nuts: aes key setup: %w", err)
	}

	stream := cipher.NewCTR(block, iv)
	stream.XORKeyStream(dst[:len(in)], in)

	return len(in), nil
}
