// Package format holds the small tagged-enum types shared by the header,
// secret, KDF, and archive entry records: the cipher algorithm, the KDF
// digest, and the archive entry type. Each is a fixed-width integer tag
// on disk, with a String method for diagnostics.
package format

type (
	// CipherTag identifies the symmetric cipher a header or block was sealed with.
	CipherTag uint32
	// KdfDigest identifies the HMAC digest a PBKDF2 derivation uses.
	KdfDigest uint32
	// EntryType identifies what kind of filesystem object an archive entry represents.
	EntryType uint32
	// CompressionType identifies how an archive entry's content is encoded on disk.
	CompressionType uint8
)

const (
	CipherNone      CipherTag = 0 // CipherNone performs no encryption (memcpy).
	CipherAes128Ctr CipherTag = 1 // CipherAes128Ctr is AES-128 in CTR mode, unauthenticated.
	CipherAes128Gcm CipherTag = 2 // CipherAes128Gcm is AES-128-GCM, 16-byte tag appended per block.
)

const (
	DigestSha1   KdfDigest = 0
	DigestSha256 KdfDigest = 1
	DigestSha512 KdfDigest = 2
)

const (
	EntryFile    EntryType = 0
	EntryDir     EntryType = 1
	EntrySymlink EntryType = 2
)

const (
	CompressionNone CompressionType = 0 // CompressionNone is the default; content is stored raw.
	CompressionZstd CompressionType = 1
	CompressionS2   CompressionType = 2
	CompressionLZ4  CompressionType = 3
)

func (c CipherTag) String() string {
	switch c {
	case CipherNone:
		return "None"
	case CipherAes128Ctr:
		return "Aes128Ctr"
	case CipherAes128Gcm:
		return "Aes128Gcm"
	default:
		return "Unknown"
	}
}

// BlockOverhead returns the number of bytes a cipher adds to the gross
// block size beyond the plaintext it protects (0 for None/CTR, 16 for
// GCM's authentication tag).
func (c CipherTag) BlockOverhead() int {
	if c == CipherAes128Gcm {
		return 16
	}

	return 0
}

// KeySize returns the symmetric key length in bytes the cipher requires.
func (c CipherTag) KeySize() int {
	switch c {
	case CipherAes128Ctr, CipherAes128Gcm:
		return 16
	default:
		return 0
	}
}

// IVSize returns the length in bytes of the base IV the cipher requires.
func (c CipherTag) IVSize() int {
	switch c {
	case CipherAes128Ctr:
		return 16 // AES block size, used as the CTR initial counter block.
	case CipherAes128Gcm:
		return 12 // standard GCM nonce size.
	default:
		return 0
	}
}

func (d KdfDigest) String() string {
	switch d {
	case DigestSha1:
		return "Sha1"
	case DigestSha256:
		return "Sha256"
	case DigestSha512:
		return "Sha512"
	default:
		return "Unknown"
	}
}

func (t EntryType) String() string {
	switch t {
	case EntryFile:
		return "File"
	case EntryDir:
		return "Dir"
	case EntrySymlink:
		return "Symlink"
	default:
		return "Unknown"
	}
}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}
