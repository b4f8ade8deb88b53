// Package errs collects the sentinel errors returned throughout nuts.
//
// Every fallible operation in nuts returns one of these values (or wraps
// one with fmt.Errorf's %w verb), so callers can branch on failure kind
// with errors.Is instead of string matching.
package errs

import "errors"

// Codec errors (bytesio).
var (
	// ErrEof is returned when a Reader runs out of bytes before satisfying a read.
	ErrEof = errors.New("nuts: unexpected end of input")
	// ErrNoSpace is returned when a Writer's sink has no room for more bytes.
	ErrNoSpace = errors.New("nuts: no space left in sink")
	// ErrInvalidChar is returned when a decoded u32 is not a valid Unicode scalar value.
	ErrInvalidChar = errors.New("nuts: invalid char value")
	// ErrInvalidUtf8 is returned when a decoded byte string is not valid UTF-8.
	ErrInvalidUtf8 = errors.New("nuts: invalid utf-8 string")
	// ErrInvalidBool is reserved for a bool tag that a strict decoder refuses.
	ErrInvalidBool = errors.New("nuts: invalid bool tag")
	// ErrTrailingBytes is returned by strict readers when bytes remain after decoding.
	ErrTrailingBytes = errors.New("nuts: trailing bytes after decode")
)

// Backend/IO errors.
var (
	// ErrNoSuchBlock is returned by a backend when the id does not refer to a live block.
	ErrNoSuchBlock = errors.New("nuts: no such block")
	// ErrBlockExists is returned by Acquire if the backend is asked to reuse a live id.
	ErrBlockExists = errors.New("nuts: block already exists")
	// ErrIO wraps an underlying backend I/O failure (disk, network, permissions).
	ErrIO = errors.New("nuts: backend io error")
)

// Format/layout errors.
var (
	// ErrInvalidHeader is returned when a header block's magic does not match.
	ErrInvalidHeader = errors.New("nuts: invalid header magic")
	// ErrUnsupportedRevision is returned when a header's revision field is unrecognized.
	ErrUnsupportedRevision = errors.New("nuts: unsupported revision")
	// ErrInvalidBlockSize is returned when block_size cannot hold the header or cipher overhead.
	ErrInvalidBlockSize = errors.New("nuts: invalid block size")
	// ErrInvalidType is returned when an archive entry's type tag is unrecognized.
	ErrInvalidType = errors.New("nuts: invalid entry type")
	// ErrIndexOutOfRange is returned when a node-tree index exceeds what the tree height can address.
	ErrIndexOutOfRange = errors.New("nuts: node-tree index out of range")
)

// Crypto errors.
var (
	// ErrWrongPassword is returned when the header's secret fails to decrypt or validate.
	ErrWrongPassword = errors.New("nuts: wrong password")
	// ErrDecryptionFailed is returned on GCM tag mismatch or any other authenticated decrypt failure.
	ErrDecryptionFailed = errors.New("nuts: decryption failed")
	// ErrUnsupportedCipher is returned for an unrecognized cipher tag.
	ErrUnsupportedCipher = errors.New("nuts: unsupported cipher")
	// ErrUnsupportedKdf is returned for an unrecognized KDF tag or digest.
	ErrUnsupportedKdf = errors.New("nuts: unsupported kdf")
	// ErrInvalidCipherArg is returned when a key or IV has the wrong length for the cipher.
	ErrInvalidCipherArg = errors.New("nuts: invalid cipher key/iv length")
)

// Container/archive state errors.
var (
	// ErrNotOpen is returned when a block operation is attempted before Open/Create completes.
	ErrNotOpen = errors.New("nuts: container not open")
	// ErrClosed is returned when an operation is attempted after the container was closed.
	ErrClosed = errors.New("nuts: container closed")
	// ErrTopIDAlreadySet is returned by archive creation when top_id is already occupied without force.
	ErrTopIDAlreadySet = errors.New("nuts: top-id already set")
	// ErrNoTopID is returned when archive.Open is called on a container with no top-id.
	ErrNoTopID = errors.New("nuts: top-id not set")
	// ErrEntryEof is returned by archive traversal once the end of the entry chain is reached.
	ErrEntryEof = errors.New("nuts: no more entries")
	// ErrEntryNotFound is returned by archive.Lookup when no entry matches the given name.
	ErrEntryNotFound = errors.New("nuts: entry not found")
	// ErrBuilderAbandoned is returned by operations on an EntryBuilder after Abandon was called.
	ErrBuilderAbandoned = errors.New("nuts: entry builder abandoned")
)
