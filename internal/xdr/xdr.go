// Package xdr provides little-endian binary decoding and encoding utilities
// for OpenEXR file data.
//
// OpenEXR stores every multi-byte value in little-endian byte order. Reader
// is a bounds-checked cursor over an immutable byte slice: a read that would
// run past the end of the slice fails with ErrShortBuffer and leaves the
// cursor where it was.
package xdr

import (
	"encoding/binary"
	"errors"
	"math"
)

var (
	// ErrShortBuffer is returned when a read cannot complete because
	// there aren't enough bytes left in the buffer.
	ErrShortBuffer = errors.New("xdr: buffer too short")

	// ErrNegativeSize is returned when a size parameter is negative.
	ErrNegativeSize = errors.New("xdr: negative size")

	// ErrOffsetRange is returned when a 64-bit offset uses more than
	// MaxOffsetBits significant bits.
	ErrOffsetRange = errors.New("xdr: offset out of range")
)

// MaxOffsetBits is the number of significant bits accepted by ReadOffset.
const MaxOffsetBits = 48

// ByteOrder is the byte order used by OpenEXR files.
var ByteOrder = binary.LittleEndian

// Reader provides little-endian binary reading from a byte slice.
// The underlying slice is never modified.
type Reader struct {
	data []byte
	pos  int
}

// NewReader creates a Reader positioned at the start of data.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Len returns the number of unread bytes.
func (r *Reader) Len() int {
	if r.pos >= len(r.data) {
		return 0
	}
	return len(r.data) - r.pos
}

// Size returns the total length of the underlying buffer.
func (r *Reader) Size() int {
	return len(r.data)
}

// Pos returns the current read position.
func (r *Reader) Pos() int {
	return r.pos
}

// SetPos moves the cursor to an absolute position.
// Seeking to len(data) is allowed; any read from there fails.
func (r *Reader) SetPos(pos int) error {
	if pos < 0 || pos > len(r.data) {
		return ErrShortBuffer
	}
	r.pos = pos
	return nil
}

// Skip advances the read position by n bytes.
func (r *Reader) Skip(n int) error {
	if n < 0 {
		return ErrNegativeSize
	}
	if n > r.Len() {
		return ErrShortBuffer
	}
	r.pos += n
	return nil
}

// Sub returns a Reader over the next n bytes and advances past them.
// Reads on the returned Reader can never see bytes beyond that window.
func (r *Reader) Sub(n int) (*Reader, error) {
	if n < 0 {
		return nil, ErrNegativeSize
	}
	if n > r.Len() {
		return nil, ErrShortBuffer
	}
	sub := &Reader{data: r.data[r.pos : r.pos+n : r.pos+n]}
	r.pos += n
	return sub, nil
}

// ReadByte reads a single byte.
func (r *Reader) ReadByte() (byte, error) {
	if r.pos >= len(r.data) {
		return 0, ErrShortBuffer
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

// ReadUint8 reads an unsigned 8-bit integer.
func (r *Reader) ReadUint8() (uint8, error) {
	return r.ReadByte()
}

// ReadBytes reads n bytes into a new slice.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, ErrNegativeSize
	}
	if n > r.Len() {
		return nil, ErrShortBuffer
	}
	result := make([]byte, n)
	copy(result, r.data[r.pos:r.pos+n])
	r.pos += n
	return result, nil
}

// PeekBytes returns the next n bytes without copying or advancing.
// The returned slice aliases the underlying buffer and must not be modified.
func (r *Reader) PeekBytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, ErrNegativeSize
	}
	if n > r.Len() {
		return nil, ErrShortBuffer
	}
	return r.data[r.pos : r.pos+n : r.pos+n], nil
}

// ReadUint16 reads an unsigned 16-bit integer in little-endian order.
func (r *Reader) ReadUint16() (uint16, error) {
	if r.Len() < 2 {
		return 0, ErrShortBuffer
	}
	v := ByteOrder.Uint16(r.data[r.pos:])
	r.pos += 2
	return v, nil
}

// ReadUint32 reads an unsigned 32-bit integer in little-endian order.
func (r *Reader) ReadUint32() (uint32, error) {
	if r.Len() < 4 {
		return 0, ErrShortBuffer
	}
	v := ByteOrder.Uint32(r.data[r.pos:])
	r.pos += 4
	return v, nil
}

// ReadInt32 reads a signed 32-bit integer in little-endian order.
func (r *Reader) ReadInt32() (int32, error) {
	v, err := r.ReadUint32()
	return int32(v), err
}

// ReadUint64 reads an unsigned 64-bit integer in little-endian order.
func (r *Reader) ReadUint64() (uint64, error) {
	if r.Len() < 8 {
		return 0, ErrShortBuffer
	}
	v := ByteOrder.Uint64(r.data[r.pos:])
	r.pos += 8
	return v, nil
}

// ReadOffset reads an 8-byte file offset. Offsets with bits set above
// MaxOffsetBits are rejected with ErrOffsetRange; the 8 bytes are still
// consumed so the caller can report which entry was bad.
func (r *Reader) ReadOffset() (uint64, error) {
	v, err := r.ReadUint64()
	if err != nil {
		return 0, err
	}
	if v>>MaxOffsetBits != 0 {
		return 0, ErrOffsetRange
	}
	return v, nil
}

// ReadFloat32 reads a 32-bit IEEE 754 floating-point number.
func (r *Reader) ReadFloat32() (float32, error) {
	v, err := r.ReadUint32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

// ReadString reads a null-terminated string.
// The terminator is consumed but not included in the result.
func (r *Reader) ReadString() (string, error) {
	for i := r.pos; i < len(r.data); i++ {
		if r.data[i] == 0 {
			s := string(r.data[r.pos:i])
			r.pos = i + 1
			return s, nil
		}
	}
	return "", ErrShortBuffer
}

// ReadStringN reads exactly n bytes as a string. Unlike ReadString no
// terminator is expected and embedded zero bytes are kept.
func (r *Reader) ReadStringN(n int) (string, error) {
	if n < 0 {
		return "", ErrNegativeSize
	}
	if n > r.Len() {
		return "", ErrShortBuffer
	}
	s := string(r.data[r.pos : r.pos+n])
	r.pos += n
	return s, nil
}

// BufferWriter provides a growing buffer for writing binary data.
type BufferWriter struct {
	buf []byte
}

// NewBufferWriter creates a BufferWriter with an initial capacity.
func NewBufferWriter(capacity int) *BufferWriter {
	return &BufferWriter{buf: make([]byte, 0, capacity)}
}

// Len returns the number of bytes written.
func (w *BufferWriter) Len() int {
	return len(w.buf)
}

// Bytes returns the written data.
// The returned slice is valid until the next write operation.
func (w *BufferWriter) Bytes() []byte {
	return w.buf
}

// WriteByte writes a single byte.
func (w *BufferWriter) WriteByte(b byte) {
	w.buf = append(w.buf, b)
}

// WriteBytes writes a byte slice.
func (w *BufferWriter) WriteBytes(b []byte) {
	w.buf = append(w.buf, b...)
}

// WriteUint16 writes an unsigned 16-bit integer in little-endian order.
func (w *BufferWriter) WriteUint16(v uint16) {
	w.buf = ByteOrder.AppendUint16(w.buf, v)
}

// WriteUint32 writes an unsigned 32-bit integer in little-endian order.
func (w *BufferWriter) WriteUint32(v uint32) {
	w.buf = ByteOrder.AppendUint32(w.buf, v)
}

// WriteInt32 writes a signed 32-bit integer in little-endian order.
func (w *BufferWriter) WriteInt32(v int32) {
	w.WriteUint32(uint32(v))
}

// WriteUint64 writes an unsigned 64-bit integer in little-endian order.
func (w *BufferWriter) WriteUint64(v uint64) {
	w.buf = ByteOrder.AppendUint64(w.buf, v)
}

// WriteFloat32 writes a 32-bit IEEE 754 floating-point number.
func (w *BufferWriter) WriteFloat32(v float32) {
	w.WriteUint32(math.Float32bits(v))
}

// WriteString writes a null-terminated string.
func (w *BufferWriter) WriteString(s string) {
	w.buf = append(w.buf, s...)
	w.buf = append(w.buf, 0)
}

// PatchUint64 overwrites 8 bytes at pos with v. It is used to fill in
// offset tables once block positions are known.
func (w *BufferWriter) PatchUint64(pos int, v uint64) {
	ByteOrder.PutUint64(w.buf[pos:pos+8], v)
}
