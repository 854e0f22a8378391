package exr

import (
	"errors"
	"testing"

	"github.com/daspviewer/go-exrscan/internal/xdr"
)

func TestBox2i(t *testing.T) {
	b := Box2i{
		Min: V2i{0, 0},
		Max: V2i{99, 49},
	}

	if w := b.Width(); w != 100 {
		t.Errorf("Width() = %d, want 100", w)
	}
	if h := b.Height(); h != 50 {
		t.Errorf("Height() = %d, want 50", h)
	}
	if b.IsEmpty() {
		t.Error("IsEmpty() should be false")
	}
}

func TestBox2iEmpty(t *testing.T) {
	empty := Box2i{
		Min: V2i{10, 10},
		Max: V2i{5, 5},
	}

	if !empty.IsEmpty() {
		t.Error("IsEmpty() should be true for inverted box")
	}

	single := Box2i{Min: V2i{-3, 7}, Max: V2i{-3, 7}}
	if single.IsEmpty() || single.Width() != 1 || single.Height() != 1 {
		t.Errorf("single pixel box: empty=%v %dx%d", single.IsEmpty(), single.Width(), single.Height())
	}
}

func TestBox2iFullRange(t *testing.T) {
	b := Box2i{Min: V2i{-1 << 31, 0}, Max: V2i{1<<31 - 1, 0}}
	if w := int64(b.Width()); w != 1<<32 {
		t.Errorf("Width() = %d, want %d", w, 1<<32)
	}
}

func TestReadVectors(t *testing.T) {
	w := xdr.NewBufferWriter(64)
	w.WriteInt32(1)
	w.WriteInt32(-2)
	w.WriteFloat32(0.5)
	w.WriteFloat32(-0.25)
	w.WriteInt32(3)
	w.WriteInt32(4)
	w.WriteInt32(5)
	w.WriteFloat32(1)
	w.WriteFloat32(2)
	w.WriteFloat32(3)
	r := xdr.NewReader(w.Bytes())

	if v, err := readV2i(r); err != nil || v != (V2i{1, -2}) {
		t.Errorf("readV2i() = %v, %v", v, err)
	}
	if v, err := readV2f(r); err != nil || v != (V2f{0.5, -0.25}) {
		t.Errorf("readV2f() = %v, %v", v, err)
	}
	if v, err := readV3i(r); err != nil || v != (V3i{3, 4, 5}) {
		t.Errorf("readV3i() = %v, %v", v, err)
	}
	if v, err := readV3f(r); err != nil || v != (V3f{1, 2, 3}) {
		t.Errorf("readV3f() = %v, %v", v, err)
	}
	if _, err := readBox2i(r); !errors.Is(err, xdr.ErrShortBuffer) {
		t.Errorf("readBox2i() at end: error = %v, want ErrShortBuffer", err)
	}
}
