package exr

import (
	"fmt"
	"slices"
	"sort"

	"github.com/daspviewer/go-exrscan/internal/xdr"
)

// MagicNumber identifies an OpenEXR file. It is stored little-endian in
// the first four bytes.
const MagicNumber = 20000630 // 0x01312f76

// Version field flags. Any of these marks a layout this package does not
// decode.
const (
	FlagTiled     uint32 = 0x200
	FlagLongNames uint32 = 0x400
	FlagDeep      uint32 = 0x800
	FlagMultipart uint32 = 0x1000

	unsupportedFlags = FlagTiled | FlagLongNames | FlagDeep | FlagMultipart
)

// Names of the attributes every scan-line header must carry.
const (
	AttrChannels      = "channels"
	AttrCompression   = "compression"
	AttrDataWindow    = "dataWindow"
	AttrDisplayWindow = "displayWindow"
	AttrLineOrder     = "lineOrder"
)

// requiredAttributes maps each required attribute to its type.
var requiredAttributes = []struct {
	name string
	typ  AttributeType
}{
	{AttrChannels, AttrTypeChlist},
	{AttrCompression, AttrTypeCompression},
	{AttrDataWindow, AttrTypeBox2i},
	{AttrLineOrder, AttrTypeLineOrder},
}

// Header is a decoded, validated OpenEXR header.
type Header struct {
	version uint8
	flags   uint32
	attrs   map[string]*Attribute

	// Cached required values, set by validate.
	channels    ChannelList
	compression Compression
	dataWindow  Box2i
	lineOrder   LineOrder
}

// ReadHeader reads the magic number, version field and attribute list,
// leaving r positioned at the offset table.
func ReadHeader(r *xdr.Reader) (*Header, error) {
	magic, err := r.ReadUint32()
	if err != nil {
		return nil, readError("magic number", err)
	}
	if magic != MagicNumber {
		return nil, fmt.Errorf("%w: bad magic number %#08x", ErrUnsupportedFormat, magic)
	}

	field, err := r.ReadUint32()
	if err != nil {
		return nil, readError("version field", err)
	}
	if field&unsupportedFlags != 0 {
		return nil, fmt.Errorf("%w: version flags %#x (only single-part scan-line files are supported)",
			ErrUnsupportedFormat, field&unsupportedFlags)
	}

	h := &Header{
		version: uint8(field),
		flags:   field &^ 0xFF,
		attrs:   make(map[string]*Attribute),
	}

	for {
		attr, err := ReadAttribute(r)
		if err != nil {
			return nil, err
		}
		if attr == nil {
			break
		}
		// A repeated name replaces the earlier value.
		h.attrs[attr.Name] = attr
	}

	if err := h.validate(); err != nil {
		return nil, err
	}
	return h, nil
}

// validate checks the required attributes and caches their values.
func (h *Header) validate() error {
	for _, req := range requiredAttributes {
		attr, ok := h.attrs[req.name]
		if !ok {
			return fmt.Errorf("%w: %s", ErrMissingRequiredAttribute, req.name)
		}
		if attr.Type != req.typ {
			return fmt.Errorf("%w: %s has type %s, want %s", ErrCorruptHeader, req.name, attr.Type, req.typ)
		}
	}

	h.channels = h.attrs[AttrChannels].Value.(ChannelList)
	h.compression = h.attrs[AttrCompression].Value.(Compression)
	h.dataWindow = h.attrs[AttrDataWindow].Value.(Box2i)
	h.lineOrder = h.attrs[AttrLineOrder].Value.(LineOrder)

	if h.dataWindow.IsEmpty() {
		return fmt.Errorf("%w: empty data window %v", ErrCorruptHeader, h.dataWindow)
	}

	dw := h.dataWindow
	for _, ch := range h.channels.channels {
		sx, sy := ch.XSampling, ch.YSampling
		if dw.Min.X%sx != 0 || dw.Width()%int(sx) != 0 ||
			dw.Min.Y%sy != 0 || dw.Height()%int(sy) != 0 {
			return fmt.Errorf("%w: channel %q sampling %dx%d does not divide the data window",
				ErrCorruptHeader, ch.Name, sx, sy)
		}
	}
	return nil
}

// Version returns the file format version number (the low byte of the
// version field).
func (h *Header) Version() int {
	return int(h.version)
}

// Flags returns the flag bits of the version field.
func (h *Header) Flags() uint32 {
	return h.flags
}

// Get returns the attribute with the given name. Slice-backed values are
// copied, so the header cannot be modified through the result.
func (h *Header) Get(name string) (Attribute, bool) {
	attr, ok := h.attrs[name]
	if !ok {
		return Attribute{}, false
	}
	out := *attr
	if sv, ok := out.Value.(StringVector); ok {
		out.Value = slices.Clone(sv)
	}
	return out, true
}

// Names returns all attribute names in sorted order.
func (h *Header) Names() []string {
	names := make([]string, 0, len(h.attrs))
	for name := range h.attrs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Channels returns the channel list.
func (h *Header) Channels() ChannelList {
	return NewChannelList(h.channels.channels...)
}

// Compression returns the block compression type.
func (h *Header) Compression() Compression {
	return h.compression
}

// DataWindow returns the rectangle of pixels stored in the file.
func (h *Header) DataWindow() Box2i {
	return h.dataWindow
}

// DisplayWindow returns the displayWindow attribute, or the data window
// when the header does not have one.
func (h *Header) DisplayWindow() Box2i {
	if attr, ok := h.attrs[AttrDisplayWindow]; ok {
		if b, ok := attr.Value.(Box2i); ok {
			return b
		}
	}
	return h.dataWindow
}

// LineOrder returns the order in which blocks were written.
func (h *Header) LineOrder() LineOrder {
	return h.lineOrder
}

// ScanlinesPerBlock returns the number of scan lines in each block.
func (h *Header) ScanlinesPerBlock() int {
	return h.compression.ScanlinesPerBlock()
}

// BlockCount returns the number of entries in the offset table.
func (h *Header) BlockCount() int {
	spb := h.ScanlinesPerBlock()
	return (h.dataWindow.Height() + spb - 1) / spb
}
