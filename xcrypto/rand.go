package xcrypto

import (
	"crypto/rand"
	"fmt"
)

// RandomBytes returns n cryptographically random bytes, used for salts,
// master keys/IVs, and anything else that must come from a cryptographic
// RNG.
func RandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("nuts: generating random bytes: %w", err)
	}

	return b, nil
}

// ExtendSaltTo returns a salt of exactly n bytes: partial verbatim,
// followed by random bytes filling the remainder. It is a no-op copy
// when partial is already n bytes or longer (partial is truncated to n
// in that case). Used to turn a short, memorable test salt into one long
// enough to satisfy MinSaltLen without giving up determinism on the
// prefix.
func ExtendSaltTo(partial []byte, n int) ([]byte, error) {
	if len(partial) >= n {
		out := make([]byte, n)
		copy(out, partial)
		return out, nil
	}

	out := make([]byte, n)
	copy(out, partial)

	tail, err := RandomBytes(n - len(partial))
	if err != nil {
		return nil, err
	}
	copy(out[len(partial):], tail)

	return out, nil
}
