package exr

import (
	"encoding/binary"
	"math"
	"slices"

	"github.com/daspviewer/go-exrscan/half"
)

// Image is the result of a successful decode. It is never modified after
// Decode returns.
type Image struct {
	header   *Header
	width    int
	height   int
	channels map[string]*ChannelData
	names    []string
}

// ChannelData holds the samples of one channel at the channel's own
// resolution (the data window divided by its sampling factors). Exactly one
// of the typed buffers is in use, chosen by the channel's pixel type.
type ChannelData struct {
	name      string
	pixelType PixelType
	xSampling int
	ySampling int
	width     int
	height    int

	u32 []uint32
	f16 []half.Half
	f32 []float32
}

func newImage(h *Header) *Image {
	dw := h.DataWindow()
	img := &Image{
		header:   h,
		width:    dw.Width(),
		height:   dw.Height(),
		channels: make(map[string]*ChannelData, h.channels.Len()),
	}
	for _, ch := range h.channels.Sorted() {
		cd := &ChannelData{
			name:      ch.Name,
			pixelType: ch.Type,
			xSampling: int(ch.XSampling),
			ySampling: int(ch.YSampling),
			width:     img.width / int(ch.XSampling),
			height:    img.height / int(ch.YSampling),
		}
		n := cd.width * cd.height
		switch ch.Type {
		case PixelTypeUint:
			cd.u32 = make([]uint32, n)
		case PixelTypeHalf:
			cd.f16 = make([]half.Half, n)
		case PixelTypeFloat:
			cd.f32 = make([]float32, n)
		}
		img.channels[ch.Name] = cd
		img.names = append(img.names, ch.Name)
	}
	return img
}

// Width returns the data window width in pixels.
func (img *Image) Width() int { return img.width }

// Height returns the data window height in pixels.
func (img *Image) Height() int { return img.height }

// Header returns the header the image was decoded from.
func (img *Image) Header() *Header { return img.header }

// ChannelNames returns the channel names in sorted order.
func (img *Image) ChannelNames() []string {
	return slices.Clone(img.names)
}

// Channel looks up a channel by its exact name.
func (img *Image) Channel(name string) (*ChannelData, bool) {
	cd, ok := img.channels[name]
	return cd, ok
}

// Name returns the channel name.
func (cd *ChannelData) Name() string { return cd.name }

// Type returns the channel's pixel type.
func (cd *ChannelData) Type() PixelType { return cd.pixelType }

// Width returns the number of samples per stored row.
func (cd *ChannelData) Width() int { return cd.width }

// Height returns the number of stored rows.
func (cd *ChannelData) Height() int { return cd.height }

// Sampling returns the horizontal and vertical subsampling factors.
func (cd *ChannelData) Sampling() (x, y int) { return cd.xSampling, cd.ySampling }

// Len returns the number of samples.
func (cd *ChannelData) Len() int { return cd.width * cd.height }

// Float32At returns the sample covering pixel (x, y), where (0, 0) is the
// top-left corner of the data window. UINT samples are converted to
// float32 and may lose precision.
func (cd *ChannelData) Float32At(x, y int) float32 {
	i := (y/cd.ySampling)*cd.width + x/cd.xSampling
	switch cd.pixelType {
	case PixelTypeUint:
		return float32(cd.u32[i])
	case PixelTypeHalf:
		return cd.f16[i].Float32()
	default:
		return cd.f32[i]
	}
}

// Uint32At returns the sample covering pixel (x, y) of a UINT channel,
// or 0 for other pixel types.
func (cd *ChannelData) Uint32At(x, y int) uint32 {
	if cd.pixelType != PixelTypeUint {
		return 0
	}
	return cd.u32[(y/cd.ySampling)*cd.width+x/cd.xSampling]
}

// Float32s returns a copy of all samples converted to float32, in row-major
// order.
func (cd *ChannelData) Float32s() []float32 {
	switch cd.pixelType {
	case PixelTypeFloat:
		return slices.Clone(cd.f32)
	case PixelTypeHalf:
		out := make([]float32, len(cd.f16))
		for i, h := range cd.f16 {
			out[i] = h.Float32()
		}
		return out
	default:
		out := make([]float32, len(cd.u32))
		for i, u := range cd.u32 {
			out[i] = float32(u)
		}
		return out
	}
}

// Uint32s returns a copy of the samples of a UINT channel, or nil for
// other pixel types.
func (cd *ChannelData) Uint32s() []uint32 {
	return slices.Clone(cd.u32)
}

// Halfs returns a copy of the samples of a HALF channel, or nil for other
// pixel types.
func (cd *ChannelData) Halfs() []half.Half {
	return slices.Clone(cd.f16)
}

// Bytes returns the samples re-encoded little-endian in their native
// width, ready for upload as a single-channel texture.
func (cd *ChannelData) Bytes() []byte {
	out := make([]byte, 0, cd.Len()*cd.pixelType.Size())
	switch cd.pixelType {
	case PixelTypeHalf:
		return half.AppendLE(out, cd.f16)
	case PixelTypeFloat:
		for _, f := range cd.f32 {
			out = binary.LittleEndian.AppendUint32(out, math.Float32bits(f))
		}
	default:
		for _, u := range cd.u32 {
			out = binary.LittleEndian.AppendUint32(out, u)
		}
	}
	return out
}
