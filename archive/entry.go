package archive

import (
	"time"

	"github.com/nutsvault/nuts/backend"
	"github.com/nutsvault/nuts/bytesio"
	"github.com/nutsvault/nuts/compress"
	"github.com/nutsvault/nuts/errs"
	"github.com/nutsvault/nuts/format"
)

// entryHeader prefixes the first content block of every archive entry.
// mode's top byte is reserved for a format.CompressionType tag (see
// packMode/unpackMode); the POSIX-style permission bits live in the
// low 24 bits. next is a fixed-width slot (tag byte + id_size bytes,
// zero-filled when absent) so Finish can patch a prior entry's link in
// place without touching anything written after it.
type entryHeader struct {
	typ  format.EntryType
	mode uint32

	mtime, ctime, atime int64

	size       uint64
	storedSize uint64
	startIndex uint64

	name string

	hasNext bool
	next    backend.BlockID
}

func packMode(perm uint32, c format.CompressionType) uint32 {
	return (perm & 0x00FFFFFF) | (uint32(c) << 24)
}

func unpackMode(mode uint32) (uint32, format.CompressionType) {
	return mode & 0x00FFFFFF, format.CompressionType(mode >> 24)
}

func (h entryHeader) bytes(idSize int) ([]byte, error) {
	w := bytesio.NewWriter()
	defer w.Release()

	if err := w.WriteUint32(uint32(h.typ)); err != nil {
		return nil, err
	}
	if err := w.WriteUint32(h.mode); err != nil {
		return nil, err
	}
	if err := w.WriteInt64(h.mtime); err != nil {
		return nil, err
	}
	if err := w.WriteInt64(h.ctime); err != nil {
		return nil, err
	}
	if err := w.WriteInt64(h.atime); err != nil {
		return nil, err
	}
	if err := w.WriteUint64(h.size); err != nil {
		return nil, err
	}
	if err := w.WriteUint64(h.storedSize); err != nil {
		return nil, err
	}
	if err := w.WriteUint64(h.startIndex); err != nil {
		return nil, err
	}
	if err := w.WriteString(h.name); err != nil {
		return nil, err
	}
	if err := w.WriteOptionTag(h.hasNext); err != nil {
		return nil, err
	}

	next := h.next.Bytes()
	if len(next) != idSize {
		next = make([]byte, idSize)
	}
	if err := w.WriteFixed(next); err != nil {
		return nil, err
	}

	out := make([]byte, w.Len())
	copy(out, w.Bytes())

	return out, nil
}

// parseEntryHeader decodes an entry header from the front of buf and
// returns it alongside the number of bytes consumed, so the caller knows
// where this entry's content begins within the same block.
func parseEntryHeader(buf []byte, idSize int) (entryHeader, int, error) {
	r := bytesio.NewReader(buf)

	typRaw, err := r.ReadUint32()
	if err != nil {
		return entryHeader{}, 0, err
	}
	typ := format.EntryType(typRaw)
	if typ > format.EntrySymlink {
		return entryHeader{}, 0, errs.ErrInvalidType
	}

	mode, err := r.ReadUint32()
	if err != nil {
		return entryHeader{}, 0, err
	}
	mtime, err := r.ReadInt64()
	if err != nil {
		return entryHeader{}, 0, err
	}
	ctime, err := r.ReadInt64()
	if err != nil {
		return entryHeader{}, 0, err
	}
	atime, err := r.ReadInt64()
	if err != nil {
		return entryHeader{}, 0, err
	}
	size, err := r.ReadUint64()
	if err != nil {
		return entryHeader{}, 0, err
	}
	storedSize, err := r.ReadUint64()
	if err != nil {
		return entryHeader{}, 0, err
	}
	startIndex, err := r.ReadUint64()
	if err != nil {
		return entryHeader{}, 0, err
	}
	name, err := r.ReadString()
	if err != nil {
		return entryHeader{}, 0, err
	}
	hasNext, err := r.ReadOptionTag()
	if err != nil {
		return entryHeader{}, 0, err
	}
	nextRaw, err := r.ReadFixed(idSize)
	if err != nil {
		return entryHeader{}, 0, err
	}

	var next backend.BlockID
	if hasNext {
		next = backend.BlockID(append([]byte(nil), nextRaw...))
	}

	return entryHeader{
		typ:        typ,
		mode:       mode,
		mtime:      mtime,
		ctime:      ctime,
		atime:      atime,
		size:       size,
		storedSize: storedSize,
		startIndex: startIndex,
		name:       name,
		hasNext:    hasNext,
		next:       next,
	}, r.Offset(), nil
}

// Entry is a single archive member: its metadata plus the id of the
// content block carrying its header. Obtained from Archive.First,
// Archive.Lookup, or Entry.Next.
type Entry struct {
	a *Archive

	id        backend.BlockID
	h         entryHeader
	headerLen int
}

// Name returns the entry's stored name.
func (e *Entry) Name() string { return e.h.name }

// Type reports whether this entry is a file, directory, or symlink.
func (e *Entry) Type() format.EntryType { return e.h.typ }

// Mode returns the entry's permission bits (the low 24 bits of the
// on-disk mode field; the high byte carries the compression tag).
func (e *Entry) Mode() uint32 {
	perm, _ := unpackMode(e.h.mode)
	return perm
}

// Compression reports the codec this entry's content was stored under.
func (e *Entry) Compression() format.CompressionType {
	_, c := unpackMode(e.h.mode)
	return c
}

// Size returns the entry's decompressed logical content length.
func (e *Entry) Size() uint64 { return e.h.size }

// ModTime, ChangeTime, and AccessTime return the entry's stored
// timestamps, recorded as epoch seconds.
func (e *Entry) ModTime() time.Time    { return time.Unix(e.h.mtime, 0) }
func (e *Entry) ChangeTime() time.Time { return time.Unix(e.h.ctime, 0) }
func (e *Entry) AccessTime() time.Time { return time.Unix(e.h.atime, 0) }

// Next follows the forward link embedded in this entry's header,
// returning errs.ErrEntryEof once the chain ends.
func (e *Entry) Next() (*Entry, error) {
	if !e.h.hasNext {
		return nil, errs.ErrEntryEof
	}

	return e.a.readEntryAt(e.h.next)
}

// ReadContent walks the node-tree from this entry's start index, reads
// every content block the entry spans, and decompresses the result if
// the entry was stored under a non-None codec.
func (e *Entry) ReadContent() ([]byte, error) {
	netSize := int(e.a.c.BlockSizeNet())
	blockBuf := make([]byte, netSize)

	n, err := e.a.c.Read(e.id, blockBuf)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, e.h.storedSize)
	avail := blockBuf[e.headerLen:n]
	take := int(e.h.storedSize)
	if take > len(avail) {
		take = len(avail)
	}
	out = append(out, avail[:take]...)

	remaining := int(e.h.storedSize) - take
	idx := e.h.startIndex + 1
	for remaining > 0 {
		id, err := e.a.tree.get(e.a.treePager, e.a.h.root, e.a.h.height, idx)
		if err != nil {
			return nil, err
		}

		n, err := e.a.c.Read(id, blockBuf)
		if err != nil {
			return nil, err
		}

		chunk := remaining
		if chunk > n {
			chunk = n
		}
		out = append(out, blockBuf[:chunk]...)
		remaining -= chunk
		idx++
	}

	if e.Compression() == format.CompressionNone {
		return out, nil
	}

	codec, err := compress.GetCodec(e.Compression())
	if err != nil {
		return nil, err
	}

	return codec.Decompress(out)
}
