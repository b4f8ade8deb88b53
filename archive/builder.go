package archive

import (
	"github.com/nutsvault/nuts/backend"
	"github.com/nutsvault/nuts/compress"
	"github.com/nutsvault/nuts/errs"
	"github.com/nutsvault/nuts/format"
	"github.com/nutsvault/nuts/internal/pool"
)

// EntryBuilder writes one archive entry. Append returns a builder whose
// first content block is already reserved and threaded into the
// node-tree, so a previous entry's Finish can link forward to it the
// moment this one finishes too. Content for format.CompressionNone
// (the default) streams straight into blocks as Write is called; any
// other codec buffers the full content and chunks it at Finish.
//
// A failure partway through Write or Finish leaves whatever blocks were
// already allocated in place: the archive header is not updated until
// Finish returns successfully, so those blocks are simply leaked, never
// corrupting the node-tree.
type EntryBuilder struct {
	a *Archive

	eh          entryHeader
	compression format.CompressionType

	firstID   backend.BlockID
	curID     backend.BlockID
	curOffset int

	buf *pool.ByteBuffer // only used when compression != CompressionNone

	closed bool
}

// Write appends p to the entry's content. For CompressionNone it is
// chunked directly into container blocks; otherwise it accumulates in
// memory until Finish.
func (b *EntryBuilder) Write(p []byte) (int, error) {
	if b.closed {
		return 0, errs.ErrBuilderAbandoned
	}
	if len(p) == 0 {
		return 0, nil
	}

	if b.compression == format.CompressionNone {
		if err := b.appendContentBytes(p); err != nil {
			return 0, err
		}
	} else {
		b.buf.MustWrite(p)
	}

	b.eh.size += uint64(len(p))

	return len(p), nil
}

// appendContentBytes chunks data across content blocks starting at the
// builder's current write cursor, allocating and linking new blocks
// into the node-tree as each one fills.
func (b *EntryBuilder) appendContentBytes(data []byte) error {
	netSize := int(b.a.c.BlockSizeNet())
	written := 0

	for written < len(data) {
		if b.curOffset == netSize {
			newID, err := b.a.c.Acquire()
			if err != nil {
				return err
			}

			idx := b.a.h.nextIndex
			newRoot, newHeight, err := b.a.tree.put(b.a.treePager, b.a.c.Acquire, b.a.h.root, b.a.h.height, idx, newID)
			if err != nil {
				return err
			}

			b.a.h.root = newRoot
			b.a.h.height = newHeight
			b.a.h.hasRoot = true
			b.a.h.nextIndex++
			b.a.h.blocks++

			b.curID = newID
			b.curOffset = 0
			continue
		}

		buf, err := b.a.entryPager.Get(b.curID)
		if err != nil {
			return err
		}

		room := netSize - b.curOffset
		n := len(data) - written
		if n > room {
			n = room
		}

		copy(buf[b.curOffset:b.curOffset+n], data[written:written+n])
		b.a.entryPager.MarkDirty()

		b.curOffset += n
		written += n
	}

	return nil
}

// Finish writes the entry's header into its first content block,
// patches the previous tail entry's forward link to point at it,
// updates the archive header's counts and chain pointers, and persists
// everything.
func (b *EntryBuilder) Finish() error {
	if b.closed {
		return errs.ErrBuilderAbandoned
	}

	if b.compression != format.CompressionNone {
		codec, err := compress.GetCodec(b.compression)
		if err != nil {
			return err
		}

		compressed, err := codec.Compress(b.buf.Bytes())
		if err != nil {
			return err
		}

		if err := b.appendContentBytes(compressed); err != nil {
			return err
		}
		b.eh.storedSize = uint64(len(compressed))

		pool.PutArchiveBuffer(b.buf)
		b.buf = nil
	} else {
		b.eh.storedSize = b.eh.size
	}

	idSize := b.a.c.BlockIDSize()
	b.eh.hasNext = false
	b.eh.next = ""

	headerBytes, err := b.eh.bytes(idSize)
	if err != nil {
		return err
	}

	firstBuf, err := b.a.entryPager.Get(b.firstID)
	if err != nil {
		return err
	}
	copy(firstBuf, headerBytes)
	b.a.entryPager.MarkDirty()

	if b.a.h.hasLast {
		prevBuf, err := b.a.entryPager.Get(b.a.h.last)
		if err != nil {
			return err
		}

		_, consumed, err := parseEntryHeader(prevBuf, idSize)
		if err != nil {
			return err
		}

		nextOffset := consumed - 1 - idSize
		prevBuf[nextOffset] = 1
		copy(prevBuf[nextOffset+1:nextOffset+1+idSize], b.firstID.Bytes())
		b.a.entryPager.MarkDirty()
	}

	if !b.a.h.hasFirst {
		b.a.h.first = b.firstID
		b.a.h.hasFirst = true
	}
	b.a.h.last = b.firstID
	b.a.h.hasLast = true

	switch b.eh.typ {
	case format.EntryDir:
		b.a.h.ndirs++
	case format.EntrySymlink:
		b.a.h.nsyms++
	default:
		b.a.h.nfiles++
	}

	if err := b.a.treePager.Flush(); err != nil {
		return err
	}
	if err := b.a.entryPager.Flush(); err != nil {
		return err
	}
	if err := b.a.persistHeader(); err != nil {
		return err
	}

	b.closed = true

	return nil
}

// Abandon cancels the builder without touching the archive header or
// the previous entry's link. Every block already allocated for this
// entry stays allocated, unreferenced by any finished entry.
func (b *EntryBuilder) Abandon() error {
	if b.closed {
		return errs.ErrBuilderAbandoned
	}

	if b.buf != nil {
		pool.PutArchiveBuffer(b.buf)
		b.buf = nil
	}
	b.closed = true

	return nil
}
