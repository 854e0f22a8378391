package exr

import (
	"fmt"
	"sort"

	"github.com/daspviewer/go-exrscan/internal/xdr"
)

// PixelType is the sample encoding of a channel.
type PixelType int32

const (
	// PixelTypeUint is an unsigned 32-bit integer.
	PixelTypeUint PixelType = 0
	// PixelTypeHalf is a 16-bit IEEE half-precision float.
	PixelTypeHalf PixelType = 1
	// PixelTypeFloat is a 32-bit IEEE float.
	PixelTypeFloat PixelType = 2
)

// Size returns the encoded size of one sample in bytes.
func (p PixelType) Size() int {
	switch p {
	case PixelTypeHalf:
		return 2
	case PixelTypeUint, PixelTypeFloat:
		return 4
	default:
		return 0
	}
}

// String returns the lower-case name of the pixel type.
func (p PixelType) String() string {
	switch p {
	case PixelTypeUint:
		return "uint"
	case PixelTypeHalf:
		return "half"
	case PixelTypeFloat:
		return "float"
	default:
		return "unknown"
	}
}

// Channel describes one image channel.
type Channel struct {
	Name      string
	Type      PixelType
	Linear    bool
	XSampling int32
	YSampling int32
}

// ChannelList is the decoded value of a chlist attribute. It keeps the
// channels in the order they were declared; the order in which samples are
// stored inside a block is given by Sorted.
type ChannelList struct {
	channels []Channel
}

// NewChannelList builds a list from channels in declaration order.
func NewChannelList(channels ...Channel) ChannelList {
	return ChannelList{channels: append([]Channel(nil), channels...)}
}

// Len returns the number of channels.
func (cl ChannelList) Len() int {
	return len(cl.channels)
}

// At returns the i-th channel in declaration order.
func (cl ChannelList) At(i int) Channel {
	return cl.channels[i]
}

// Get returns the channel with the given name.
func (cl ChannelList) Get(name string) (Channel, bool) {
	for _, ch := range cl.channels {
		if ch.Name == name {
			return ch, true
		}
	}
	return Channel{}, false
}

// Names returns the channel names in declaration order.
func (cl ChannelList) Names() []string {
	names := make([]string, len(cl.channels))
	for i, ch := range cl.channels {
		names[i] = ch.Name
	}
	return names
}

// Sorted returns a copy of the channels ordered by name, which is the
// order their samples appear in each scan line of a block.
func (cl ChannelList) Sorted() []Channel {
	sorted := append([]Channel(nil), cl.channels...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Name < sorted[j].Name
	})
	return sorted
}

// readChannelList decodes chlist records from r until the empty-name
// terminator. r is limited to the attribute's declared size, so running
// out of bytes, or having bytes left over, means the size was wrong.
func readChannelList(r *xdr.Reader) (ChannelList, error) {
	var cl ChannelList
	seen := make(map[string]bool)

	for {
		name, err := r.ReadString()
		if err != nil {
			return cl, fmt.Errorf("%w: chlist is not terminated", ErrCorruptHeader)
		}
		if name == "" {
			break
		}
		if seen[name] {
			return cl, fmt.Errorf("%w: duplicate channel %q", ErrCorruptHeader, name)
		}
		seen[name] = true

		ch, err := readChannel(r, name)
		if err != nil {
			return cl, err
		}
		cl.channels = append(cl.channels, ch)
	}

	if r.Len() != 0 {
		return cl, fmt.Errorf("%w: %d bytes after chlist terminator", ErrCorruptHeader, r.Len())
	}
	return cl, nil
}

// readChannel reads the fixed 16-byte body of a channel record.
func readChannel(r *xdr.Reader, name string) (Channel, error) {
	ch := Channel{Name: name}

	body, err := r.Sub(16)
	if err != nil {
		return ch, fmt.Errorf("%w: channel %q record truncated", ErrCorruptHeader, name)
	}
	pt, _ := body.ReadInt32()
	linear, _ := body.ReadUint8()
	_ = body.Skip(3) // reserved
	ch.XSampling, _ = body.ReadInt32()
	ch.YSampling, _ = body.ReadInt32()

	ch.Type = PixelType(pt)
	ch.Linear = linear != 0

	if ch.Type.Size() == 0 {
		return ch, fmt.Errorf("%w: channel %q has unknown pixel type %d", ErrCorruptHeader, name, pt)
	}
	if ch.XSampling < 1 || ch.YSampling < 1 {
		return ch, fmt.Errorf("%w: channel %q has sampling %dx%d", ErrCorruptHeader, name, ch.XSampling, ch.YSampling)
	}
	return ch, nil
}
