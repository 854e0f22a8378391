package exr

import (
	"encoding/binary"
	"math"
	"math/rand"
	"testing"

	"github.com/daspviewer/go-exrscan/compression"
	"github.com/daspviewer/go-exrscan/half"
	"github.com/daspviewer/go-exrscan/internal/xdr"
)

// testAttr is an attribute written verbatim by testFile.
type testAttr struct {
	name string
	typ  string
	data []byte
}

// testFile describes a scan-line file to be written by build. Samples are
// stored per channel at the channel's own resolution, already encoded
// little-endian.
type testFile struct {
	flags       uint32
	compression Compression
	lineOrder   LineOrder
	dataWindow  Box2i
	channels    []Channel
	samples     map[string][]byte

	// extra attributes follow the standard ones.
	extra []testAttr
	// omit lists standard attributes to leave out.
	omit map[string]bool
	// storeRaw writes ZIP blocks uncompressed.
	storeRaw bool

	// Set by build: the position of the offset table and of each block
	// by row-group index.
	tablePos int
	offsets  []int
}

// newTestFile returns a width x height file with its data window at the
// origin and no channels.
func newTestFile(width, height int, c Compression) *testFile {
	return &testFile{
		compression: c,
		dataWindow:  Box2i{Max: V2i{int32(width - 1), int32(height - 1)}},
		samples:     make(map[string][]byte),
	}
}

// addChannel declares a full-resolution channel holding samples.
func (f *testFile) addChannel(name string, typ PixelType, samples []byte) *testFile {
	return f.addSampledChannel(name, typ, 1, 1, samples)
}

func (f *testFile) addSampledChannel(name string, typ PixelType, xs, ys int32, samples []byte) *testFile {
	f.channels = append(f.channels, Channel{Name: name, Type: typ, XSampling: xs, YSampling: ys})
	f.samples[name] = samples
	return f
}

func encodeChlist(channels []Channel) []byte {
	w := xdr.NewBufferWriter(64)
	for _, ch := range channels {
		w.WriteString(ch.Name)
		w.WriteInt32(int32(ch.Type))
		if ch.Linear {
			w.WriteByte(1)
		} else {
			w.WriteByte(0)
		}
		w.WriteBytes([]byte{0, 0, 0})
		w.WriteInt32(ch.XSampling)
		w.WriteInt32(ch.YSampling)
	}
	w.WriteByte(0)
	return w.Bytes()
}

func encodeBox2i(b Box2i) []byte {
	w := xdr.NewBufferWriter(16)
	w.WriteInt32(b.Min.X)
	w.WriteInt32(b.Min.Y)
	w.WriteInt32(b.Max.X)
	w.WriteInt32(b.Max.Y)
	return w.Bytes()
}

func writeAttr(w *xdr.BufferWriter, name, typ string, data []byte) {
	w.WriteString(name)
	w.WriteString(typ)
	w.WriteInt32(int32(len(data)))
	w.WriteBytes(data)
}

// headerAttrs returns the standard attributes in the order writers
// usually emit them.
func (f *testFile) headerAttrs() []testAttr {
	attrs := []testAttr{
		{AttrChannels, "chlist", encodeChlist(f.channels)},
		{AttrCompression, "compression", []byte{byte(f.compression)}},
		{AttrDataWindow, "box2i", encodeBox2i(f.dataWindow)},
		{AttrDisplayWindow, "box2i", encodeBox2i(f.dataWindow)},
		{AttrLineOrder, "lineOrder", []byte{byte(f.lineOrder)}},
		{"pixelAspectRatio", "float", binary.LittleEndian.AppendUint32(nil, math.Float32bits(1))},
	}
	var out []testAttr
	for _, a := range attrs {
		if !f.omit[a.name] {
			out = append(out, a)
		}
	}
	return append(out, f.extra...)
}

// blockBytes returns the uncompressed bytes of the lines [y0, y0+n).
func (f *testFile) blockBytes(y0, n int) []byte {
	sorted := NewChannelList(f.channels...).Sorted()
	yMin := int(f.dataWindow.Min.Y)
	width := f.dataWindow.Width()

	var raw []byte
	for y := y0; y < y0+n; y++ {
		for _, ch := range sorted {
			if y%int(ch.YSampling) != 0 {
				continue
			}
			rb := width / int(ch.XSampling) * ch.Type.Size()
			row := (y - yMin) / int(ch.YSampling)
			raw = append(raw, f.samples[ch.Name][row*rb:(row+1)*rb]...)
		}
	}
	return raw
}

func (f *testFile) writeHeader(w *xdr.BufferWriter) {
	w.WriteUint32(MagicNumber)
	w.WriteUint32(2 | f.flags)
	for _, a := range f.headerAttrs() {
		writeAttr(w, a.name, a.typ, a.data)
	}
	w.WriteByte(0)
}

// header encodes the header alone, without offset table or blocks.
func (f *testFile) header() []byte {
	w := xdr.NewBufferWriter(256)
	f.writeHeader(w)
	return w.Bytes()
}

// build encodes the file.
func (f *testFile) build(t testing.TB) []byte {
	t.Helper()

	w := xdr.NewBufferWriter(1024)
	f.writeHeader(w)

	spb := f.compression.ScanlinesPerBlock()
	height := f.dataWindow.Height()
	n := (height + spb - 1) / spb

	tablePos := w.Len()
	f.tablePos = tablePos
	f.offsets = make([]int, n)
	for i := 0; i < n; i++ {
		w.WriteUint64(0)
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
		if f.lineOrder == LineOrderDecreasing {
			order[i] = n - 1 - i
		}
	}
	if f.lineOrder == LineOrderRandom && n > 1 {
		rand.New(rand.NewSource(int64(n))).Shuffle(n, func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})
		// Never fall back to increasing order.
		if order[0] < order[1] {
			order[0], order[1] = order[1], order[0]
		}
	}

	for _, i := range order {
		y0 := int(f.dataWindow.Min.Y) + i*spb
		lines := min(spb, height-i*spb)
		payload := f.blockBytes(y0, lines)

		if (f.compression == CompressionZIP || f.compression == CompressionZIPS) && !f.storeRaw && len(payload) > 0 {
			packed, err := compression.ZIPEncode(payload, compression.CompressionLevelDefault)
			if err != nil {
				t.Fatalf("ZIPEncode: %v", err)
			}
			if len(packed) < len(payload) {
				payload = packed
			}
		}

		f.offsets[i] = w.Len()
		w.PatchUint64(tablePos+8*i, uint64(w.Len()))
		w.WriteInt32(int32(y0))
		w.WriteInt32(int32(len(payload)))
		w.WriteBytes(payload)
	}
	return w.Bytes()
}

func floatSamples(vals ...float32) []byte {
	out := make([]byte, 0, 4*len(vals))
	for _, v := range vals {
		out = binary.LittleEndian.AppendUint32(out, math.Float32bits(v))
	}
	return out
}

func halfSamples(vals ...float32) []byte {
	hs := make([]half.Half, len(vals))
	for i, v := range vals {
		hs[i] = half.FromFloat32(v)
	}
	return half.AppendLE(nil, hs)
}

func uintSamples(vals ...uint32) []byte {
	out := make([]byte, 0, 4*len(vals))
	for _, v := range vals {
		out = binary.LittleEndian.AppendUint32(out, v)
	}
	return out
}

// ramp returns n float samples start, start+step, ...
func ramp(n int, start, step float32) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = start + float32(i)*step
	}
	return out
}

func mustDecode(t testing.TB, data []byte) *Image {
	t.Helper()
	img, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	return img
}
