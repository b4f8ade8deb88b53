package container

import (
	"bytes"

	"github.com/nutsvault/nuts/bytesio"
	"github.com/nutsvault/nuts/errs"
	"github.com/nutsvault/nuts/format"
	"github.com/nutsvault/nuts/xcrypto"
)

// headerMagic is the 8-byte literal every container header block begins
// with. The value is implementer-fixed and must stay stable across
// revisions.
var headerMagic = [8]byte{'n', 'u', 't', 's', '-', 'c', 't', 'r'}

// headerRevision is the only header layout version nuts currently writes
// or understands.
const headerRevision uint32 = 1

// header is the container header block's parsed form: everything needed
// to locate and decrypt the secret, before the master key is known.
type header struct {
	cipher    format.CipherTag
	kdf       xcrypto.Pbkdf2Spec
	headerIV  []byte
	encSecret []byte
}

// bytes serializes h and pads the result with zeros to blockSize. It fails
// with errs.ErrInvalidBlockSize if the record itself does not fit.
func (h header) bytes(blockSize uint32) ([]byte, error) {
	w := bytesio.NewWriter()
	defer w.Release()

	if err := w.WriteFixed(headerMagic[:]); err != nil {
		return nil, err
	}
	if err := w.WriteUint32(headerRevision); err != nil {
		return nil, err
	}
	if err := w.WriteUint32(uint32(h.cipher)); err != nil {
		return nil, err
	}
	if err := writeKdfSpec(w, h.kdf); err != nil {
		return nil, err
	}
	if err := w.WriteBytes(h.headerIV); err != nil {
		return nil, err
	}
	if err := w.WriteBytes(h.encSecret); err != nil {
		return nil, err
	}

	if w.Len() > int(blockSize) {
		return nil, errs.ErrInvalidBlockSize
	}

	out := make([]byte, blockSize)
	copy(out, w.Bytes())

	return out, nil
}

// parseHeader decodes a header block. Trailing zero padding is not
// validated against block size; only the leading record is parsed.
func parseHeader(buf []byte) (header, error) {
	r := bytesio.NewReader(buf)

	magic, err := r.ReadFixed(len(headerMagic))
	if err != nil {
		return header{}, err
	}
	if !bytes.Equal(magic, headerMagic[:]) {
		return header{}, errs.ErrInvalidHeader
	}

	revision, err := r.ReadUint32()
	if err != nil {
		return header{}, err
	}
	if revision != headerRevision {
		return header{}, errs.ErrUnsupportedRevision
	}

	cipherTag, err := r.ReadUint32()
	if err != nil {
		return header{}, err
	}

	kdf, err := readKdfSpec(r)
	if err != nil {
		return header{}, err
	}

	headerIV, err := r.ReadBytes()
	if err != nil {
		return header{}, err
	}

	encSecret, err := r.ReadBytes()
	if err != nil {
		return header{}, err
	}

	return header{
		cipher:    format.CipherTag(cipherTag),
		kdf:       kdf,
		headerIV:  append([]byte(nil), headerIV...),
		encSecret: append([]byte(nil), encSecret...),
	}, nil
}
