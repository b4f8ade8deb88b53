// Package bytesio is the single binary serialization discipline nuts uses
// for every on-disk structure: the container header, the encrypted
// secret, the KDF spec, the archive header, node-tree nodes, and entry
// records. No other package in nuts hand-rolls byte order.
//
// Encoding rules (normative):
//
//   - Integers are big-endian, fixed width.
//   - bool is one byte, 0 = false, any non-zero = true; Writer always emits 1 for true.
//   - f32/f64 are IEEE-754 big-endian.
//   - Byte strings and UTF-8 strings are u64 length followed by that many bytes.
//   - Option is a one-byte tag (0 = none, 1 = some) followed by the inner value when some.
//   - Fixed arrays are elements concatenated with no length prefix.
//   - Variable sequences are a u64 count followed by elements.
//   - Tagged sums (enums) are a u64 variant index followed by the variant's payload.
//
// The codec never self-frames: callers must know the expected type of
// whatever they decode, exactly like the Rust source it mirrors.
package bytesio

import (
	"math"
	"unicode/utf8"

	"github.com/nutsvault/nuts/endian"
	"github.com/nutsvault/nuts/errs"
	"github.com/nutsvault/nuts/internal/pool"
)

// Writer appends encoded values to a growable byte sink. It never
// returns ErrNoSpace itself (the backing buffer always grows), but the
// error return is kept on every method so call sites read the same way
// regardless of which Sink implementation backs them, and so a
// fixed-capacity Sink (see NewFixedWriter) can report it.
type Writer struct {
	buf    *pool.ByteBuffer
	engine endian.EndianEngine
	fixed  bool // true if the sink must not grow past buf's initial capacity
}

// NewWriter creates a Writer backed by a pooled, growable buffer.
func NewWriter() *Writer {
	return &Writer{
		buf:    pool.GetBlockBuffer(),
		engine: endian.GetBigEndianEngine(),
	}
}

// NewFixedWriter creates a Writer that writes into dst and fails with
// ErrNoSpace instead of growing once dst's capacity is exhausted. Used to
// serialize a record directly into a block-sized buffer.
func NewFixedWriter(dst []byte) *Writer {
	bb := &pool.ByteBuffer{B: dst[:0]}

	return &Writer{
		buf:    bb,
		engine: endian.GetBigEndianEngine(),
		fixed:  true,
	}
}

// Release returns the Writer's buffer to the pool. Only call this for
// writers obtained via NewWriter; it is a no-op for fixed writers.
func (w *Writer) Release() {
	if !w.fixed {
		pool.PutBlockBuffer(w.buf)
	}
}

// Bytes returns the bytes written so far. The slice is owned by the
// Writer; copy it before calling Release or writing further if it must
// outlive either.
func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int {
	return w.buf.Len()
}

func (w *Writer) appendRaw(b []byte) error {
	if w.fixed {
		if cap(w.buf.B)-len(w.buf.B) < len(b) {
			return errs.ErrNoSpace
		}
		w.buf.MustWrite(b)

		return nil
	}

	w.buf.Grow(len(b))
	w.buf.MustWrite(b)

	return nil
}

// WriteUint8 appends a single byte.
func (w *Writer) WriteUint8(v uint8) error {
	return w.appendRaw([]byte{v})
}

// WriteInt8 appends a single signed byte.
func (w *Writer) WriteInt8(v int8) error {
	return w.WriteUint8(uint8(v))
}

// WriteBool appends the canonical bool encoding: 0 for false, 1 for true.
func (w *Writer) WriteBool(v bool) error {
	if v {
		return w.WriteUint8(1)
	}

	return w.WriteUint8(0)
}

// WriteUint16 appends a big-endian uint16.
func (w *Writer) WriteUint16(v uint16) error {
	var b [2]byte
	w.engine.PutUint16(b[:], v)

	return w.appendRaw(b[:])
}

// WriteInt16 appends a big-endian int16.
func (w *Writer) WriteInt16(v int16) error { return w.WriteUint16(uint16(v)) }

// WriteUint32 appends a big-endian uint32.
func (w *Writer) WriteUint32(v uint32) error {
	var b [4]byte
	w.engine.PutUint32(b[:], v)

	return w.appendRaw(b[:])
}

// WriteInt32 appends a big-endian int32.
func (w *Writer) WriteInt32(v int32) error { return w.WriteUint32(uint32(v)) }

// WriteUint64 appends a big-endian uint64.
func (w *Writer) WriteUint64(v uint64) error {
	var b [8]byte
	w.engine.PutUint64(b[:], v)

	return w.appendRaw(b[:])
}

// WriteInt64 appends a big-endian int64.
func (w *Writer) WriteInt64(v int64) error { return w.WriteUint64(uint64(v)) }

// WriteUint128 appends a 128-bit unsigned integer as 16 big-endian bytes,
// high half first. Go has no native 128-bit integer type, so callers pass
// the two 64-bit halves directly.
func (w *Writer) WriteUint128(hi, lo uint64) error {
	if err := w.WriteUint64(hi); err != nil {
		return err
	}

	return w.WriteUint64(lo)
}

// WriteFloat32 appends an IEEE-754 big-endian float32.
func (w *Writer) WriteFloat32(v float32) error {
	return w.WriteUint32(math.Float32bits(v))
}

// WriteFloat64 appends an IEEE-754 big-endian float64.
func (w *Writer) WriteFloat64(v float64) error {
	return w.WriteUint64(math.Float64bits(v))
}

// WriteChar appends a Unicode scalar value encoded as u32.
func (w *Writer) WriteChar(r rune) error {
	return w.WriteUint32(uint32(r))
}

// WriteBytes appends a u64 length prefix followed by the raw bytes.
func (w *Writer) WriteBytes(b []byte) error {
	if err := w.WriteUint64(uint64(len(b))); err != nil {
		return err
	}

	return w.appendRaw(b)
}

// WriteString appends a u64 length prefix followed by the UTF-8 bytes of s.
func (w *Writer) WriteString(s string) error {
	return w.WriteBytes([]byte(s))
}

// WriteFixed appends b verbatim with no length prefix, for fixed-length
// array fields (e.g. a BlockId array in a node-tree node).
func (w *Writer) WriteFixed(b []byte) error {
	return w.appendRaw(b)
}

// WriteOptionTag appends the option tag byte: 0 for none, 1 for some. The
// caller writes the inner value immediately after WriteOptionTag(true).
func (w *Writer) WriteOptionTag(some bool) error {
	return w.WriteBool(some)
}

// WriteVariantTag appends a tagged-sum's variant index as u64.
func (w *Writer) WriteVariantTag(variant uint64) error {
	return w.WriteUint64(variant)
}

// WriteSeqLen appends a variable sequence's u64 element count.
func (w *Writer) WriteSeqLen(n int) error {
	return w.WriteUint64(uint64(n))
}

// ValidUTF8 reports whether b is valid UTF-8, used by callers that must
// reject invalid strings before encoding rather than after decoding them
// back (the round-trip law only promises decode(encode(v)) == v for
// values that were valid to begin with).
func ValidUTF8(b []byte) bool {
	return utf8.Valid(b)
}
