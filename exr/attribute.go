package exr

import (
	"bytes"
	"fmt"

	"github.com/daspviewer/go-exrscan/internal/xdr"
)

// Compression defines the compression method for pixel data.
type Compression uint8

const (
	// CompressionNone stores uncompressed data.
	CompressionNone Compression = 0
	// CompressionRLE uses run-length encoding.
	CompressionRLE Compression = 1
	// CompressionZIPS uses zlib compression on single scanlines.
	CompressionZIPS Compression = 2
	// CompressionZIP uses zlib compression on 16 scanlines.
	CompressionZIP Compression = 3
	// CompressionPIZ uses wavelet compression.
	CompressionPIZ Compression = 4
	// CompressionPXR24 uses 24-bit float conversion with zlib.
	CompressionPXR24 Compression = 5
	// CompressionB44 uses 4x4 block lossy compression.
	CompressionB44 Compression = 6
	// CompressionB44A uses B44 with flat area detection.
	CompressionB44A Compression = 7
)

// String returns a string representation of the compression type.
func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionRLE:
		return "rle"
	case CompressionZIPS:
		return "zips"
	case CompressionZIP:
		return "zip"
	case CompressionPIZ:
		return "piz"
	case CompressionPXR24:
		return "pxr24"
	case CompressionB44:
		return "b44"
	case CompressionB44A:
		return "b44a"
	default:
		return "unknown"
	}
}

// ScanlinesPerBlock returns the number of scan lines stored together in
// one block for this compression type.
func (c Compression) ScanlinesPerBlock() int {
	switch c {
	case CompressionZIP, CompressionPXR24:
		return 16
	case CompressionPIZ, CompressionB44, CompressionB44A:
		return 32
	default:
		return 1
	}
}

// Supported reports whether Decode can decompress blocks of this type.
func (c Compression) Supported() bool {
	return c == CompressionNone || c == CompressionZIPS || c == CompressionZIP
}

// LineOrder defines the order in which blocks were written to the file.
// It does not affect how the offset table is indexed.
type LineOrder uint8

const (
	// LineOrderIncreasing stores blocks from top to bottom.
	LineOrderIncreasing LineOrder = 0
	// LineOrderDecreasing stores blocks from bottom to top.
	LineOrderDecreasing LineOrder = 1
	// LineOrderRandom stores blocks in any order.
	LineOrderRandom LineOrder = 2
)

// String returns a string representation of the line order.
func (lo LineOrder) String() string {
	switch lo {
	case LineOrderIncreasing:
		return "increasing_y"
	case LineOrderDecreasing:
		return "decreasing_y"
	case LineOrderRandom:
		return "random_y"
	default:
		return "unknown"
	}
}

// AttributeType is the type name stored with every attribute.
type AttributeType string

// Attribute types with a typed decoding. Any other type decodes to Raw.
const (
	AttrTypeBox2i        AttributeType = "box2i"
	AttrTypeBox2f        AttributeType = "box2f"
	AttrTypeChlist       AttributeType = "chlist"
	AttrTypeCompression  AttributeType = "compression"
	AttrTypeFloat        AttributeType = "float"
	AttrTypeInt          AttributeType = "int"
	AttrTypeLineOrder    AttributeType = "lineOrder"
	AttrTypeString       AttributeType = "string"
	AttrTypeStringVector AttributeType = "stringvector"
	AttrTypeV2f          AttributeType = "v2f"
	AttrTypeV2i          AttributeType = "v2i"
	AttrTypeV3f          AttributeType = "v3f"
	AttrTypeV3i          AttributeType = "v3i"
)

// fixedSizes lists the exact encoded size of each fixed-width type.
var fixedSizes = map[AttributeType]int{
	AttrTypeBox2i:       16,
	AttrTypeBox2f:       16,
	AttrTypeCompression: 1,
	AttrTypeFloat:       4,
	AttrTypeInt:         4,
	AttrTypeLineOrder:   1,
	AttrTypeV2f:         8,
	AttrTypeV2i:         8,
	AttrTypeV3f:         12,
	AttrTypeV3i:         12,
}

// Value is a decoded attribute value. The implementations are Int, Float,
// String, StringVector, Compression, LineOrder, V2i, V2f, V3i, V3f, Box2i,
// Box2f, ChannelList and Raw; no others exist.
type Value interface {
	// AttributeType returns the type name the value is stored under.
	AttributeType() AttributeType
}

// Int is the value of an int attribute.
type Int int32

// Float is the value of a float attribute.
type Float float32

// String is the value of a string attribute.
type String string

// StringVector is the value of a stringvector attribute, such as the
// multiView list of a stereo image.
type StringVector []string

// Raw holds the undecoded bytes of an attribute whose type is not
// recognized.
type Raw struct {
	typ  AttributeType
	data []byte
}

// Bytes returns a copy of the attribute's bytes.
func (r Raw) Bytes() []byte { return bytes.Clone(r.data) }

func (Int) AttributeType() AttributeType          { return AttrTypeInt }
func (Float) AttributeType() AttributeType        { return AttrTypeFloat }
func (String) AttributeType() AttributeType       { return AttrTypeString }
func (StringVector) AttributeType() AttributeType { return AttrTypeStringVector }
func (Compression) AttributeType() AttributeType  { return AttrTypeCompression }
func (LineOrder) AttributeType() AttributeType    { return AttrTypeLineOrder }
func (V2i) AttributeType() AttributeType          { return AttrTypeV2i }
func (V2f) AttributeType() AttributeType          { return AttrTypeV2f }
func (V3i) AttributeType() AttributeType          { return AttrTypeV3i }
func (V3f) AttributeType() AttributeType          { return AttrTypeV3f }
func (Box2i) AttributeType() AttributeType        { return AttrTypeBox2i }
func (Box2f) AttributeType() AttributeType        { return AttrTypeBox2f }
func (ChannelList) AttributeType() AttributeType  { return AttrTypeChlist }
func (r Raw) AttributeType() AttributeType        { return r.typ }

// Attribute is a single header attribute.
type Attribute struct {
	Name  string
	Type  AttributeType
	Size  int
	Value Value
}

// ReadAttribute reads one attribute record: name, type, size and value.
// It returns nil when it reads the empty name that terminates the header.
func ReadAttribute(r *xdr.Reader) (*Attribute, error) {
	name, err := r.ReadString()
	if err != nil {
		return nil, readError("attribute name", err)
	}
	if name == "" {
		return nil, nil
	}

	typeName, err := r.ReadString()
	if err != nil {
		return nil, readError(fmt.Sprintf("attribute %q type", name), err)
	}
	size, err := r.ReadInt32()
	if err != nil {
		return nil, readError(fmt.Sprintf("attribute %q size", name), err)
	}

	// The value may only see its own bytes.
	body, err := r.Sub(int(size))
	if err != nil {
		return nil, readError(fmt.Sprintf("attribute %q value (%d bytes)", name, size), err)
	}

	attr := &Attribute{
		Name: name,
		Type: AttributeType(typeName),
		Size: int(size),
	}
	attr.Value, err = ReadAttributeValue(body, attr.Type)
	if err != nil {
		return nil, fmt.Errorf("attribute %q: %w", name, err)
	}
	return attr, nil
}

// ReadAttributeValue decodes a value of type typ that occupies all of r.
func ReadAttributeValue(r *xdr.Reader, typ AttributeType) (Value, error) {
	size := r.Len()
	if want, ok := fixedSizes[typ]; ok && size != want {
		return nil, fmt.Errorf("%w: %s value is %d bytes, want %d", ErrCorruptHeader, typ, size, want)
	}

	// Fixed sizes were checked above, so reads below cannot fail.
	var v Value
	switch typ {
	case AttrTypeInt:
		i, _ := r.ReadInt32()
		v = Int(i)
	case AttrTypeFloat:
		f, _ := r.ReadFloat32()
		v = Float(f)
	case AttrTypeString:
		s, _ := r.ReadStringN(size)
		v = String(s)
	case AttrTypeStringVector:
		sv, err := readStringVector(r)
		if err != nil {
			return nil, err
		}
		v = sv
	case AttrTypeCompression:
		b, _ := r.ReadUint8()
		v = Compression(b)
	case AttrTypeLineOrder:
		b, _ := r.ReadUint8()
		if b > uint8(LineOrderRandom) {
			return nil, fmt.Errorf("%w: unknown line order %d", ErrCorruptHeader, b)
		}
		v = LineOrder(b)
	case AttrTypeV2i:
		v, _ = readV2i(r)
	case AttrTypeV2f:
		v, _ = readV2f(r)
	case AttrTypeV3i:
		v, _ = readV3i(r)
	case AttrTypeV3f:
		v, _ = readV3f(r)
	case AttrTypeBox2i:
		v, _ = readBox2i(r)
	case AttrTypeBox2f:
		v, _ = readBox2f(r)
	case AttrTypeChlist:
		cl, err := readChannelList(r)
		if err != nil {
			return nil, err
		}
		v = cl
	default:
		data, _ := r.ReadBytes(size)
		v = Raw{typ: typ, data: data}
	}
	return v, nil
}

// readStringVector reads length-prefixed strings until r is exhausted.
func readStringVector(r *xdr.Reader) (StringVector, error) {
	var sv StringVector
	for r.Len() > 0 {
		n, err := r.ReadInt32()
		if err != nil {
			return nil, fmt.Errorf("%w: stringvector length truncated", ErrCorruptHeader)
		}
		s, err := r.ReadStringN(int(n))
		if err != nil {
			return nil, fmt.Errorf("%w: stringvector entry of %d bytes", ErrCorruptHeader, n)
		}
		sv = append(sv, s)
	}
	return sv, nil
}
