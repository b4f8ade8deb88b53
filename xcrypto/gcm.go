package xcrypto

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"

	"github.com/nutsvault/nuts/errs"
)

// gcmCipher is AES-128-GCM: encrypt appends a 16-byte authentication tag
// to the end of dst, shrinking the usable net payload by 16 bytes per
// block. Any corruption of ciphertext or tag makes Decrypt fail with
// errs.ErrDecryptionFailed.
type gcmCipher struct{}

func (gcmCipher) Overhead() int { return 16 }
func (gcmCipher) KeySize() int  { return 16 }
func (gcmCipher) IVSize() int   { return 12 }

func (gcmCipher) Encrypt(key, iv, plaintext, dst []byte) (int, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return 0, err
	}
	if len(iv) != gcm.NonceSize() {
		return 0, errs.ErrInvalidCipherArg
	}
	if len(dst) < len(plaintext)+gcm.Overhead() {
		return 0, errs.ErrInvalidCipherArg
	}

	sealed := gcm.Seal(dst[:0], iv, plaintext, nil)

	return len(sealed), nil
}

func (gcmCipher) Decrypt(key, iv, ciphertext, dst []byte) (int, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return 0, err
	}
	if len(iv) != gcm.NonceSize() {
		return 0, errs.ErrInvalidCipherArg
	}
	if len(ciphertext) < gcm.Overhead() {
		return 0, errs.ErrDecryptionFailed
	}
	if len(dst) < len(ciphertext)-gcm.Overhead() {
		return 0, errs.ErrInvalidCipherArg
	}

	opened, err := gcm.Open(dst[:0], iv, ciphertext, nil)
	if err != nil {
		return 0, errs.ErrDecryptionFailed
	}

	return len(opened), nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != 16 {
		return nil, errs.ErrInvalidCipherArg
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("nuts: aes key setup: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("nuts: gcm setup: %w", err)
	}

	return gcm, nil
}
