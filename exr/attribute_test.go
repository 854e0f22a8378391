package exr

import (
	"bytes"
	"errors"
	"testing"

	"github.com/daspviewer/go-exrscan/internal/xdr"
)

func TestCompression(t *testing.T) {
	tests := []struct {
		c         Compression
		str       string
		lines     int
		supported bool
	}{
		{CompressionNone, "none", 1, true},
		{CompressionRLE, "rle", 1, false},
		{CompressionZIPS, "zips", 1, true},
		{CompressionZIP, "zip", 16, true},
		{CompressionPIZ, "piz", 32, false},
		{CompressionPXR24, "pxr24", 16, false},
		{CompressionB44, "b44", 32, false},
		{CompressionB44A, "b44a", 32, false},
		{Compression(99), "unknown", 1, false},
	}

	for _, tt := range tests {
		if s := tt.c.String(); s != tt.str {
			t.Errorf("%d.String() = %q, want %q", tt.c, s, tt.str)
		}
		if lines := tt.c.ScanlinesPerBlock(); lines != tt.lines {
			t.Errorf("%d.ScanlinesPerBlock() = %d, want %d", tt.c, lines, tt.lines)
		}
		if ok := tt.c.Supported(); ok != tt.supported {
			t.Errorf("%d.Supported() = %v, want %v", tt.c, ok, tt.supported)
		}
	}
}

func TestLineOrder(t *testing.T) {
	tests := []struct {
		lo  LineOrder
		str string
	}{
		{LineOrderIncreasing, "increasing_y"},
		{LineOrderDecreasing, "decreasing_y"},
		{LineOrderRandom, "random_y"},
		{LineOrder(99), "unknown"},
	}

	for _, tt := range tests {
		if s := tt.lo.String(); s != tt.str {
			t.Errorf("%d.String() = %q, want %q", tt.lo, s, tt.str)
		}
	}
}

func TestReadAttributeValue(t *testing.T) {
	ints := func(vals ...int32) []byte {
		w := xdr.NewBufferWriter(16)
		for _, v := range vals {
			w.WriteInt32(v)
		}
		return w.Bytes()
	}
	floats := func(vals ...float32) []byte {
		w := xdr.NewBufferWriter(16)
		for _, v := range vals {
			w.WriteFloat32(v)
		}
		return w.Bytes()
	}

	tests := []struct {
		typ  AttributeType
		data []byte
		want Value
	}{
		{AttrTypeInt, ints(-72), Int(-72)},
		{AttrTypeFloat, floats(1.5), Float(1.5)},
		{AttrTypeString, []byte("ACES"), String("ACES")},
		{AttrTypeString, []byte{}, String("")},
		{AttrTypeString, []byte("a\x00b"), String("a\x00b")},
		{AttrTypeCompression, []byte{3}, CompressionZIP},
		{AttrTypeCompression, []byte{42}, Compression(42)},
		{AttrTypeLineOrder, []byte{1}, LineOrderDecreasing},
		{AttrTypeV2i, ints(3, -4), V2i{3, -4}},
		{AttrTypeV2f, floats(0.5, 2), V2f{0.5, 2}},
		{AttrTypeV3i, ints(1, 2, 3), V3i{1, 2, 3}},
		{AttrTypeV3f, floats(1, 0, -1), V3f{1, 0, -1}},
		{AttrTypeBox2i, ints(0, 0, 1919, 1079), Box2i{Min: V2i{0, 0}, Max: V2i{1919, 1079}}},
		{AttrTypeBox2f, floats(0, 0, 1, 1), Box2f{Min: V2f{0, 0}, Max: V2f{1, 1}}},
	}

	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			v, err := ReadAttributeValue(xdr.NewReader(tt.data), tt.typ)
			if err != nil {
				t.Fatalf("ReadAttributeValue() error = %v", err)
			}
			if v != tt.want {
				t.Errorf("value = %#v, want %#v", v, tt.want)
			}
			if v.AttributeType() != tt.typ {
				t.Errorf("AttributeType() = %q, want %q", v.AttributeType(), tt.typ)
			}
		})
	}
}

func TestReadAttributeValueSizeMismatch(t *testing.T) {
	for typ, size := range fixedSizes {
		for _, n := range []int{size - 1, size + 1} {
			_, err := ReadAttributeValue(xdr.NewReader(make([]byte, n)), typ)
			if !errors.Is(err, ErrCorruptHeader) {
				t.Errorf("%s with %d bytes: error = %v, want ErrCorruptHeader", typ, n, err)
			}
		}
	}
}

func TestAttributeChannelList(t *testing.T) {
	channels := []Channel{
		{Name: "R", Type: PixelTypeHalf, XSampling: 1, YSampling: 1},
		{Name: "Z", Type: PixelTypeFloat, Linear: true, XSampling: 1, YSampling: 1},
		{Name: "BY", Type: PixelTypeHalf, XSampling: 2, YSampling: 2},
	}

	w := xdr.NewBufferWriter(64)
	writeAttr(w, "channels", "chlist", encodeChlist(channels))
	r := xdr.NewReader(w.Bytes())

	attr, err := ReadAttribute(r)
	if err != nil {
		t.Fatalf("ReadAttribute() error = %v", err)
	}
	cl, ok := attr.Value.(ChannelList)
	if !ok {
		t.Fatalf("Value type = %T, want ChannelList", attr.Value)
	}
	if cl.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", cl.Len())
	}
	for i, want := range channels {
		if got := cl.At(i); got != want {
			t.Errorf("At(%d) = %+v, want %+v", i, got, want)
		}
	}
	if r.Len() != 0 {
		t.Errorf("%d bytes left after attribute", r.Len())
	}
}

func TestAttributeChannelListErrors(t *testing.T) {
	good := Channel{Name: "R", Type: PixelTypeHalf, XSampling: 1, YSampling: 1}
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"duplicate", encodeChlist([]Channel{good, good})},
		{"bad pixel type", encodeChlist([]Channel{{Name: "R", Type: 3, XSampling: 1, YSampling: 1}})},
		{"zero sampling", encodeChlist([]Channel{{Name: "R", Type: PixelTypeHalf, XSampling: 0, YSampling: 1}})},
		{"truncated record", encodeChlist([]Channel{good})[:10]},
		{"missing terminator", bytes.TrimSuffix(encodeChlist([]Channel{good}), []byte{0})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadAttributeValue(xdr.NewReader(tt.data), AttrTypeChlist)
			if !errors.Is(err, ErrCorruptHeader) {
				t.Errorf("error = %v, want ErrCorruptHeader", err)
			}
		})
	}
}

func TestAttributeUnknownType(t *testing.T) {
	// Write an attribute with an unknown type
	w := xdr.NewBufferWriter(64)
	w.WriteString("customAttr")      // name
	w.WriteString("customtype")      // type
	w.WriteInt32(4)                  // size
	w.WriteBytes([]byte{1, 2, 3, 4}) // raw data
	w.WriteByte(0)                   // header terminator

	r := xdr.NewReader(w.Bytes())
	attr, err := ReadAttribute(r)
	if err != nil {
		t.Fatalf("ReadAttribute() error = %v", err)
	}

	if attr.Name != "customAttr" {
		t.Errorf("Name = %q, want %q", attr.Name, "customAttr")
	}
	if attr.Type != "customtype" || attr.Size != 4 {
		t.Errorf("Type, Size = %q, %d", attr.Type, attr.Size)
	}

	raw, ok := attr.Value.(Raw)
	if !ok {
		t.Fatalf("Value type = %T, want Raw", attr.Value)
	}
	if !bytes.Equal(raw.Bytes(), []byte{1, 2, 3, 4}) {
		t.Errorf("Bytes() = %v", raw.Bytes())
	}
	raw.Bytes()[0] = 9
	if raw.Bytes()[0] != 1 {
		t.Error("Bytes() must return a copy")
	}

	// The terminator is next.
	if attr, err := ReadAttribute(r); attr != nil || err != nil {
		t.Errorf("ReadAttribute() = %v, %v, want nil, nil", attr, err)
	}
}

func TestReadAttributeHeaderEnd(t *testing.T) {
	// Empty name signals end of header
	w := xdr.NewBufferWriter(4)
	w.WriteByte(0) // empty name

	r := xdr.NewReader(w.Bytes())
	attr, err := ReadAttribute(r)
	if err != nil {
		t.Fatalf("ReadAttribute() error = %v", err)
	}
	if attr != nil {
		t.Error("ReadAttribute should return nil for header terminator")
	}
}

func TestReadAttributeTruncated(t *testing.T) {
	w := xdr.NewBufferWriter(64)
	writeAttr(w, "owner", "string", []byte("someone"))
	full := w.Bytes()

	for n := 0; n < len(full); n++ {
		_, err := ReadAttribute(xdr.NewReader(full[:n]))
		if !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("ReadAttribute(full[:%d]) error = %v, want ErrOutOfBounds", n, err)
		}
	}
}

func TestReadAttributeValueIsolated(t *testing.T) {
	// A string attribute must not see the bytes of the next attribute.
	w := xdr.NewBufferWriter(64)
	writeAttr(w, "a", "string", []byte("xy"))
	writeAttr(w, "b", "int", []byte{1, 0, 0, 0})
	r := xdr.NewReader(w.Bytes())

	attr, err := ReadAttribute(r)
	if err != nil {
		t.Fatal(err)
	}
	if attr.Value != String("xy") {
		t.Errorf("a = %#v", attr.Value)
	}
	attr, err = ReadAttribute(r)
	if err != nil {
		t.Fatal(err)
	}
	if attr.Value != Int(1) {
		t.Errorf("b = %#v", attr.Value)
	}
}
