package hash

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBlockDigestDeterministic(t *testing.T) {
	id := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	require.Equal(t, BlockDigest(id), BlockDigest(append([]byte{}, id...)))
}

func TestBlockDigestDistinguishesIDs(t *testing.T) {
	a := BlockDigest([]byte{0, 0, 0, 0, 0, 0, 0, 1})
	b := BlockDigest([]byte{0, 0, 0, 0, 0, 0, 0, 2})
	require.NotEqual(t, a, b)
}

func TestBlockDigestEmpty(t *testing.T) {
	require.Equal(t, BlockDigest(nil), BlockDigest([]byte{}))
}
