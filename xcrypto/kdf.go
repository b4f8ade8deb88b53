package xcrypto

import (
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"hash"

	"github.com/nutsvault/nuts/errs"
	"github.com/nutsvault/nuts/format"
	"golang.org/x/crypto/pbkdf2"
)

// Kdf derives a fixed-length key from a password. nuts has exactly one
// concrete implementation today (Pbkdf2Spec) but the interface keeps the
// header/secret layer from depending on a specific derivation scheme,
// mirroring the on-disk "KDF specification: tagged sum" layout.
type Kdf interface {
	// Derive returns a keyLen-byte key derived from password.
	Derive(password []byte, keyLen int) ([]byte, error)
}

// Pbkdf2Spec is the PBKDF2-HMAC-{SHA1,SHA256,SHA512} variant spec
// section 3 names: a digest choice, an iteration count, and a salt.
type Pbkdf2Spec struct {
	Digest     format.KdfDigest
	Iterations uint32
	Salt       []byte
}

var _ Kdf = Pbkdf2Spec{}

// MinSaltLen is the minimum accepted salt length (>= 8 bytes, typically 16).
const MinSaltLen = 8

// Derive runs PBKDF2 with the spec's digest and iteration count.
func (p Pbkdf2Spec) Derive(password []byte, keyLen int) ([]byte, error) {
	if len(p.Salt) < MinSaltLen {
		return nil, errs.ErrUnsupportedKdf
	}
	if p.Iterations < 1 {
		return nil, errs.ErrUnsupportedKdf
	}

	h, err := digestFunc(p.Digest)
	if err != nil {
		return nil, err
	}

	return pbkdf2.Key(password, p.Salt, int(p.Iterations), keyLen, h), nil
}

func digestFunc(d format.KdfDigest) (func() hash.Hash, error) {
	switch d {
	case format.DigestSha1:
		return sha1.New, nil
	case format.DigestSha256:
		return sha256.New, nil
	case format.DigestSha512:
		return sha512.New, nil
	default:
		return nil, errs.ErrUnsupportedKdf
	}
}
