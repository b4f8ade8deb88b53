package bytesio

import (
	"math"
	"unicode/utf8"

	"github.com/nutsvault/nuts/endian"
	"github.com/nutsvault/nuts/errs"
)

// Reader decodes values from a fixed byte slice in the order bytesio's
// encoding rules define. It never mutates src; the slices ReadBytes and
// ReadFixed return alias src.
type Reader struct {
	src    []byte
	off    int
	engine endian.EndianEngine
}

// NewReader creates a Reader over src, starting at offset 0.
func NewReader(src []byte) *Reader {
	return &Reader{src: src, engine: endian.GetBigEndianEngine()}
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.src) - r.off
}

// Offset returns the reader's current read position.
func (r *Reader) Offset() int {
	return r.off
}

// Finish returns ErrTrailingBytes if any bytes remain unread. Call this
// after decoding a self-contained record read strictly.
func (r *Reader) Finish() error {
	if r.Remaining() != 0 {
		return errs.ErrTrailingBytes
	}

	return nil
}

func (r *Reader) take(n int) ([]byte, error) {
	if n < 0 || r.Remaining() < n {
		return nil, errs.ErrEof
	}
	b := r.src[r.off : r.off+n]
	r.off += n

	return b, nil
}

// ReadUint8 decodes a single byte.
func (r *Reader) ReadUint8() (uint8, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}

	return b[0], nil
}

// ReadInt8 decodes a single signed byte.
func (r *Reader) ReadInt8() (int8, error) {
	v, err := r.ReadUint8()
	return int8(v), err
}

// ReadBool decodes the bool tag: 0 is false, any other value is true.
func (r *Reader) ReadBool() (bool, error) {
	v, err := r.ReadUint8()
	if err != nil {
		return false, err
	}

	return v != 0, nil
}

// ReadUint16 decodes a big-endian uint16.
func (r *Reader) ReadUint16() (uint16, error) {
	b, err := r.take(2)
	if err != nil {
		return 0, err
	}

	return r.engine.Uint16(b), nil
}

// ReadInt16 decodes a big-endian int16.
func (r *Reader) ReadInt16() (int16, error) {
	v, err := r.ReadUint16()
	return int16(v), err
}

// ReadUint32 decodes a big-endian uint32.
func (r *Reader) ReadUint32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}

	return r.engine.Uint32(b), nil
}

// ReadInt32 decodes a big-endian int32.
func (r *Reader) ReadInt32() (int32, error) {
	v, err := r.ReadUint32()
	return int32(v), err
}

// ReadUint64 decodes a big-endian uint64.
func (r *Reader) ReadUint64() (uint64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}

	return r.engine.Uint64(b), nil
}

// ReadInt64 decodes a big-endian int64.
func (r *Reader) ReadInt64() (int64, error) {
	v, err := r.ReadUint64()
	return int64(v), err
}

// ReadUint128 decodes a 128-bit unsigned integer as two uint64 halves,
// high half first, mirroring Writer.WriteUint128.
func (r *Reader) ReadUint128() (hi uint64, lo uint64, err error) {
	hi, err = r.ReadUint64()
	if err != nil {
		return 0, 0, err
	}
	lo, err = r.ReadUint64()
	if err != nil {
		return 0, 0, err
	}

	return hi, lo, nil
}

// ReadFloat32 decodes an IEEE-754 big-endian float32.
func (r *Reader) ReadFloat32() (float32, error) {
	v, err := r.ReadUint32()
	if err != nil {
		return 0, err
	}

	return math.Float32frombits(v), nil
}

// ReadFloat64 decodes an IEEE-754 big-endian float64.
func (r *Reader) ReadFloat64() (float64, error) {
	v, err := r.ReadUint64()
	if err != nil {
		return 0, err
	}

	return math.Float64frombits(v), nil
}

// ReadChar decodes a u32 and validates it is a legal Unicode scalar value.
func (r *Reader) ReadChar() (rune, error) {
	v, err := r.ReadUint32()
	if err != nil {
		return 0, err
	}

	run := rune(v)
	if v > utf8.MaxRune || !utf8.ValidRune(run) {
		return 0, errs.ErrInvalidChar
	}

	return run, nil
}

// ReadBytes decodes a u64 length prefix followed by that many raw bytes.
// The returned slice aliases the Reader's source; copy it if it must
// outlive the buffer the Reader was built over.
func (r *Reader) ReadBytes() ([]byte, error) {
	n, err := r.ReadUint64()
	if err != nil {
		return nil, err
	}

	return r.take(int(n))
}

// ReadString decodes a length-prefixed byte string and validates it is UTF-8.
func (r *Reader) ReadString() (string, error) {
	b, err := r.ReadBytes()
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", errs.ErrInvalidUtf8
	}

	return string(b), nil
}

// ReadFixed decodes exactly n raw bytes with no length prefix, for
// fixed-length array fields.
func (r *Reader) ReadFixed(n int) ([]byte, error) {
	return r.take(n)
}

// ReadOptionTag decodes the option tag byte: false for none, true for some.
func (r *Reader) ReadOptionTag() (bool, error) {
	return r.ReadBool()
}

// ReadVariantTag decodes a tagged-sum's variant index.
func (r *Reader) ReadVariantTag() (uint64, error) {
	return r.ReadUint64()
}

// ReadSeqLen decodes a variable sequence's element count.
func (r *Reader) ReadSeqLen() (int, error) {
	n, err := r.ReadUint64()
	return int(n), err
}
