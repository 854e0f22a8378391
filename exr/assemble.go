package exr

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/daspviewer/go-exrscan/half"
)

// blockLayout describes how the samples of one block are laid out: for
// each scan line, the channels in name order, each contributing one row of
// samples on lines that are a multiple of its y sampling.
type blockLayout struct {
	yMin     int
	height   int
	spb      int
	channels []*ChannelData // sorted by name
}

func newBlockLayout(h *Header, img *Image) *blockLayout {
	l := &blockLayout{
		yMin:   int(h.DataWindow().Min.Y),
		height: img.height,
		spb:    h.ScanlinesPerBlock(),
	}
	for _, name := range img.names {
		l.channels = append(l.channels, img.channels[name])
	}
	return l
}

// lines returns the first absolute scan line of block i and the number
// of lines it holds. The last block may be shorter.
func (l *blockLayout) lines(i int) (y0, n int) {
	first := i * l.spb
	return l.yMin + first, min(l.spb, l.height-first)
}

// rowBytes returns the size of one stored row of cd.
func rowBytes(cd *ChannelData) int {
	return cd.width * cd.pixelType.Size()
}

// blockSize returns the uncompressed size of the lines [y0, y0+n).
func (l *blockLayout) blockSize(y0, n int) int {
	size := 0
	for y := y0; y < y0+n; y++ {
		for _, cd := range l.channels {
			if y%cd.ySampling == 0 {
				size += rowBytes(cd)
			}
		}
	}
	return size
}

// assemble copies the samples of the lines [y0, y0+n) from raw into the
// channel buffers. Blocks write disjoint rows, so different blocks may be
// assembled concurrently.
func (l *blockLayout) assemble(raw []byte, y0, n int) error {
	if want := l.blockSize(y0, n); len(raw) != want {
		return fmt.Errorf("%w: block at line %d has %d bytes, want %d", ErrCorruptBlock, y0, len(raw), want)
	}

	off := 0
	for y := y0; y < y0+n; y++ {
		for _, cd := range l.channels {
			if y%cd.ySampling != 0 {
				continue
			}
			size := rowBytes(cd)
			cd.putRow((y-l.yMin)/cd.ySampling, raw[off:off+size])
			off += size
		}
	}
	return nil
}

// putRow decodes one row of little-endian samples into row of the buffer.
func (cd *ChannelData) putRow(row int, src []byte) {
	start := row * cd.width
	switch cd.pixelType {
	case PixelTypeUint:
		dst := cd.u32[start : start+cd.width]
		for i := range dst {
			dst[i] = binary.LittleEndian.Uint32(src[4*i:])
		}
	case PixelTypeHalf:
		half.DecodeLE(cd.f16[start:start+cd.width], src)
	case PixelTypeFloat:
		dst := cd.f32[start : start+cd.width]
		for i := range dst {
			dst[i] = math.Float32frombits(binary.LittleEndian.Uint32(src[4*i:]))
		}
	}
}
