// Package hash provides the digest used to turn an opaque backend BlockID
// into the 64-bit integer a cipher context folds into a block's base IV
// via XOR.
package hash

import "github.com/cespare/xxhash/v2"

// BlockDigest computes a 64-bit digest of a backend-opaque block id.
//
// Backends hand out ids of varying width and structure (16 random bytes,
// 8-byte sequential counters); xxHash64 gives every block a
// well-distributed, fixed-width digest regardless of the backend's id
// shape, so the cipher context never needs backend-specific code.
func BlockDigest(id []byte) uint64 {
	return xxhash.Sum64(id)
}
