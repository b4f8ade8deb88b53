package archive

import (
	"bytes"

	"github.com/nutsvault/nuts/backend"
	"github.com/nutsvault/nuts/bytesio"
	"github.com/nutsvault/nuts/errs"
)

// archiveHeaderMagic is the 8-byte literal every archive header block
// begins with, distinct from the container header's magic.
var archiveHeaderMagic = [8]byte{'n', 'u', 't', 's', '-', 'a', 'r', 'c'}

// archiveRevision is the only archive header layout version currently
// written or understood.
const archiveRevision uint32 = 2

// archiveHeader is the archive's root record: entry counts, the
// node-tree's root/height/next-free-index, and the entry chain's head
// and tail pointers. It lives in the block the container's top-id
// points at.
type archiveHeader struct {
	nfiles, ndirs, nsyms, blocks uint64

	hasFirst bool
	first    backend.BlockID
	hasLast  bool
	last     backend.BlockID

	hasRoot bool
	root    backend.BlockID
	height  uint32

	nextIndex uint64
}

func (h archiveHeader) bytes() ([]byte, error) {
	w := bytesio.NewWriter()
	defer w.Release()

	if err := w.WriteFixed(archiveHeaderMagic[:]); err != nil {
		return nil, err
	}
	if err := w.WriteUint32(archiveRevision); err != nil {
		return nil, err
	}
	if err := w.WriteUint64(h.nfiles); err != nil {
		return nil, err
	}
	if err := w.WriteUint64(h.ndirs); err != nil {
		return nil, err
	}
	if err := w.WriteUint64(h.nsyms); err != nil {
		return nil, err
	}
	if err := w.WriteUint64(h.blocks); err != nil {
		return nil, err
	}

	if err := w.WriteOptionTag(h.hasFirst); err != nil {
		return nil, err
	}
	if h.hasFirst {
		if err := w.WriteBytes(h.first.Bytes()); err != nil {
			return nil, err
		}
	}

	if err := w.WriteOptionTag(h.hasLast); err != nil {
		return nil, err
	}
	if h.hasLast {
		if err := w.WriteBytes(h.last.Bytes()); err != nil {
			return nil, err
		}
	}

	if err := w.WriteOptionTag(h.hasRoot); err != nil {
		return nil, err
	}
	if h.hasRoot {
		if err := w.WriteBytes(h.root.Bytes()); err != nil {
			return nil, err
		}
	}

	if err := w.WriteUint32(h.height); err != nil {
		return nil, err
	}
	if err := w.WriteUint64(h.nextIndex); err != nil {
		return nil, err
	}

	out := make([]byte, w.Len())
	copy(out, w.Bytes())

	return out, nil
}

func parseArchiveHeader(buf []byte) (archiveHeader, error) {
	r := bytesio.NewReader(buf)

	magic, err := r.ReadFixed(len(archiveHeaderMagic))
	if err != nil {
		return archiveHeader{}, err
	}
	if !bytes.Equal(magic, archiveHeaderMagic[:]) {
		return archiveHeader{}, errs.ErrInvalidHeader
	}

	revision, err := r.ReadUint32()
	if err != nil {
		return archiveHeader{}, err
	}
	if revision != archiveRevision {
		return archiveHeader{}, errs.ErrUnsupportedRevision
	}

	var h archiveHeader

	if h.nfiles, err = r.ReadUint64(); err != nil {
		return archiveHeader{}, err
	}
	if h.ndirs, err = r.ReadUint64(); err != nil {
		return archiveHeader{}, err
	}
	if h.nsyms, err = r.ReadUint64(); err != nil {
		return archiveHeader{}, err
	}
	if h.blocks, err = r.ReadUint64(); err != nil {
		return archiveHeader{}, err
	}

	if h.hasFirst, err = r.ReadOptionTag(); err != nil {
		return archiveHeader{}, err
	}
	if h.hasFirst {
		b, err := r.ReadBytes()
		if err != nil {
			return archiveHeader{}, err
		}
		h.first = backend.BlockID(append([]byte(nil), b...))
	}

	if h.hasLast, err = r.ReadOptionTag(); err != nil {
		return archiveHeader{}, err
	}
	if h.hasLast {
		b, err := r.ReadBytes()
		if err != nil {
			return archiveHeader{}, err
		}
		h.last = backend.BlockID(append([]byte(nil), b...))
	}

	if h.hasRoot, err = r.ReadOptionTag(); err != nil {
		return archiveHeader{}, err
	}
	if h.hasRoot {
		b, err := r.ReadBytes()
		if err != nil {
			return archiveHeader{}, err
		}
		h.root = backend.BlockID(append([]byte(nil), b...))
	}

	if h.height, err = r.ReadUint32(); err != nil {
		return archiveHeader{}, err
	}
	if h.nextIndex, err = r.ReadUint64(); err != nil {
		return archiveHeader{}, err
	}

	return h, nil
}
