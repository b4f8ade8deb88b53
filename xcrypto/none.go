package xcrypto

import "github.com/nutsvault/nuts/errs"

// noneCipher implements Cipher as a plain memcpy, for volumes created
// with CipherNone. It ignores key and iv entirely.
type noneCipher struct{}

func (noneCipher) Overhead() int { return 0 }
func (noneCipher) KeySize() int  { return 0 }
func (noneCipher) IVSize() int   { return 0 }

func (noneCipher) Encrypt(_, _, plaintext, dst []byte) (int, error) {
	if len(dst) < len(plaintext) {
		return 0, errs.ErrInvalidCipherArg
	}

	return copy(dst, plaintext), nil
}

func (noneCipher) Decrypt(_, _, ciphertext, dst []byte) (int, error) {
	if len(dst) < len(ciphertext) {
		return 0, errs.ErrInvalidCipherArg
	}

	return copy(dst, ciphertext), nil
}
