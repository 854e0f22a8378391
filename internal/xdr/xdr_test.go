package xdr

import (
	"bytes"
	"errors"
	"math"
	"testing"
)

func TestReaderBasic(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}
	r := NewReader(data)

	if r.Len() != 8 {
		t.Errorf("Len() = %d, want 8", r.Len())
	}
	if r.Size() != 8 {
		t.Errorf("Size() = %d, want 8", r.Size())
	}

	b, err := r.ReadByte()
	if err != nil {
		t.Fatalf("ReadByte() error = %v", err)
	}
	if b != 0x01 {
		t.Errorf("ReadByte() = %d, want 1", b)
	}
	if r.Pos() != 1 {
		t.Errorf("Pos() after ReadByte = %d, want 1", r.Pos())
	}
}

func TestReaderIntegers(t *testing.T) {
	data := []byte{
		0x34, 0x12, // uint16: 0x1234
		0x78, 0x56, 0x34, 0x12, // uint32: 0x12345678
		0xfe, 0xff, 0xff, 0xff, // int32: -2
		0xEF, 0xCD, 0xAB, 0x89, 0x67, 0x45, 0x23, 0x01, // uint64
	}
	r := NewReader(data)

	u16, err := r.ReadUint16()
	if err != nil || u16 != 0x1234 {
		t.Errorf("ReadUint16() = 0x%04X, %v; want 0x1234", u16, err)
	}
	u32, err := r.ReadUint32()
	if err != nil || u32 != 0x12345678 {
		t.Errorf("ReadUint32() = 0x%08X, %v; want 0x12345678", u32, err)
	}
	i32, err := r.ReadInt32()
	if err != nil || i32 != -2 {
		t.Errorf("ReadInt32() = %d, %v; want -2", i32, err)
	}
	u64, err := r.ReadUint64()
	if err != nil || u64 != 0x0123456789ABCDEF {
		t.Errorf("ReadUint64() = 0x%016X, %v", u64, err)
	}
	if r.Len() != 0 {
		t.Errorf("Len() = %d, want 0", r.Len())
	}
}

func TestReaderFloat32(t *testing.T) {
	w := NewBufferWriter(8)
	w.WriteFloat32(1.5)
	w.WriteFloat32(float32(math.Inf(-1)))

	r := NewReader(w.Bytes())
	f, err := r.ReadFloat32()
	if err != nil || f != 1.5 {
		t.Errorf("ReadFloat32() = %v, %v; want 1.5", f, err)
	}
	f, err = r.ReadFloat32()
	if err != nil || !math.IsInf(float64(f), -1) {
		t.Errorf("ReadFloat32() = %v, %v; want -Inf", f, err)
	}
}

func TestReaderShortReads(t *testing.T) {
	tests := []struct {
		name string
		size int
		read func(r *Reader) error
	}{
		{"uint8", 0, func(r *Reader) error { _, err := r.ReadUint8(); return err }},
		{"uint16", 1, func(r *Reader) error { _, err := r.ReadUint16(); return err }},
		{"uint32", 3, func(r *Reader) error { _, err := r.ReadUint32(); return err }},
		{"int32", 3, func(r *Reader) error { _, err := r.ReadInt32(); return err }},
		{"uint64", 7, func(r *Reader) error { _, err := r.ReadUint64(); return err }},
		{"offset", 5, func(r *Reader) error { _, err := r.ReadOffset(); return err }},
		{"float32", 2, func(r *Reader) error { _, err := r.ReadFloat32(); return err }},
		{"bytes", 3, func(r *Reader) error { _, err := r.ReadBytes(4); return err }},
		{"stringN", 3, func(r *Reader) error { _, err := r.ReadStringN(4); return err }},
		{"string", 3, func(r *Reader) error { _, err := r.ReadString(); return err }},
		{"skip", 3, func(r *Reader) error { return r.Skip(4) }},
		{"sub", 3, func(r *Reader) error { _, err := r.Sub(4); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReader(bytes.Repeat([]byte{'a'}, tt.size))
			if err := tt.read(r); !errors.Is(err, ErrShortBuffer) {
				t.Errorf("error = %v, want ErrShortBuffer", err)
			}
			if r.Pos() != 0 {
				t.Errorf("Pos() = %d after failed read, want 0", r.Pos())
			}
		})
	}
}

func TestReaderNegativeSizes(t *testing.T) {
	r := NewReader([]byte{1, 2, 3})
	if _, err := r.ReadBytes(-1); !errors.Is(err, ErrNegativeSize) {
		t.Errorf("ReadBytes(-1) error = %v", err)
	}
	if _, err := r.ReadStringN(-1); !errors.Is(err, ErrNegativeSize) {
		t.Errorf("ReadStringN(-1) error = %v", err)
	}
	if err := r.Skip(-1); !errors.Is(err, ErrNegativeSize) {
		t.Errorf("Skip(-1) error = %v", err)
	}
	if _, err := r.Sub(-1); !errors.Is(err, ErrNegativeSize) {
		t.Errorf("Sub(-1) error = %v", err)
	}
}

func TestReaderOffset(t *testing.T) {
	w := NewBufferWriter(16)
	w.WriteUint64(1<<MaxOffsetBits - 1)
	w.WriteUint64(1 << MaxOffsetBits)

	r := NewReader(w.Bytes())
	v, err := r.ReadOffset()
	if err != nil || v != 1<<MaxOffsetBits-1 {
		t.Errorf("ReadOffset() = %d, %v", v, err)
	}
	if _, err := r.ReadOffset(); !errors.Is(err, ErrOffsetRange) {
		t.Errorf("ReadOffset() error = %v, want ErrOffsetRange", err)
	}
	if r.Pos() != 16 {
		t.Errorf("Pos() = %d, want 16", r.Pos())
	}
}

func TestReaderStrings(t *testing.T) {
	r := NewReader([]byte("name\x00\x00ab\x00c"))

	s, err := r.ReadString()
	if err != nil || s != "name" {
		t.Errorf("ReadString() = %q, %v; want \"name\"", s, err)
	}
	s, err = r.ReadString()
	if err != nil || s != "" {
		t.Errorf("ReadString() = %q, %v; want empty", s, err)
	}
	s, err = r.ReadStringN(4)
	if err != nil || s != "ab\x00c" {
		t.Errorf("ReadStringN(4) = %q, %v", s, err)
	}
}

func TestReaderSeek(t *testing.T) {
	r := NewReader([]byte{10, 20, 30, 40})

	if err := r.SetPos(3); err != nil {
		t.Fatalf("SetPos(3) error = %v", err)
	}
	if b, _ := r.ReadByte(); b != 40 {
		t.Errorf("ReadByte() = %d, want 40", b)
	}
	if err := r.SetPos(4); err != nil {
		t.Errorf("SetPos(len) error = %v", err)
	}
	if err := r.SetPos(5); !errors.Is(err, ErrShortBuffer) {
		t.Errorf("SetPos(5) error = %v", err)
	}
	if err := r.SetPos(-1); !errors.Is(err, ErrShortBuffer) {
		t.Errorf("SetPos(-1) error = %v", err)
	}
	if err := r.SetPos(0); err != nil {
		t.Fatal(err)
	}
	if err := r.Skip(2); err != nil {
		t.Fatal(err)
	}
	if b, _ := r.ReadByte(); b != 30 {
		t.Errorf("ReadByte() after Skip = %d, want 30", b)
	}
}

func TestReaderSub(t *testing.T) {
	r := NewReader([]byte{1, 2, 3, 4, 5})
	sub, err := r.Sub(2)
	if err != nil {
		t.Fatalf("Sub(2) error = %v", err)
	}
	if r.Pos() != 2 {
		t.Errorf("parent Pos() = %d, want 2", r.Pos())
	}
	if sub.Len() != 2 {
		t.Errorf("sub Len() = %d, want 2", sub.Len())
	}
	if _, err := sub.ReadUint32(); !errors.Is(err, ErrShortBuffer) {
		t.Errorf("sub ReadUint32() error = %v, want ErrShortBuffer", err)
	}
	v, err := sub.ReadUint16()
	if err != nil || v != 0x0201 {
		t.Errorf("sub ReadUint16() = 0x%04X, %v", v, err)
	}
}

func TestReaderPeekBytes(t *testing.T) {
	r := NewReader([]byte{1, 2, 3})
	p, err := r.PeekBytes(2)
	if err != nil || !bytes.Equal(p, []byte{1, 2}) {
		t.Errorf("PeekBytes(2) = %v, %v", p, err)
	}
	if r.Pos() != 0 {
		t.Errorf("Pos() = %d after peek, want 0", r.Pos())
	}
}

func TestBufferWriter(t *testing.T) {
	w := NewBufferWriter(0)
	w.WriteByte(0xAA)
	w.WriteUint16(0x1234)
	w.WriteInt32(-1)
	w.WriteString("hi")
	w.WriteBytes([]byte{9})
	w.WriteUint64(0)
	w.PatchUint64(w.Len()-8, 0x0102030405060708)

	want := []byte{
		0xAA,
		0x34, 0x12,
		0xff, 0xff, 0xff, 0xff,
		'h', 'i', 0,
		9,
		0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01,
	}
	if !bytes.Equal(w.Bytes(), want) {
		t.Errorf("Bytes() = %v\nwant %v", w.Bytes(), want)
	}
}
