// Package compression implements the lossless OpenEXR block codecs that this
// module can decode: ZIP (16 scan lines per block) and ZIPS (1 scan line).
//
// A ZIP block is produced by splitting each sample into byte planes, running
// the byte predictor over the result and deflating it with zlib. ZIPDecode
// undoes all three steps.
package compression

import (
	"bytes"
	"errors"
	"io"
	"sync"

	"github.com/klauspost/compress/zlib"

	"github.com/daspviewer/go-exrscan/internal/predictor"
)

// ZIP compression errors
var (
	ErrZIPCorrupted = errors.New("compression: corrupted ZIP data")
	ErrZIPOverflow  = errors.New("compression: ZIP decompressed size overflow")
)

// CompressionLevel represents a zlib compression level, -2 to 9.
type CompressionLevel int

// Standard compression levels
const (
	CompressionLevelHuffmanOnly CompressionLevel = -2 // Huffman-only (klauspost extension)
	CompressionLevelDefault     CompressionLevel = -1 // Default (level 6)
	CompressionLevelNone        CompressionLevel = 0  // Stored blocks
	CompressionLevelBestSpeed   CompressionLevel = 1
	CompressionLevelBestSize    CompressionLevel = 9
)

// ZIPDecode reconstructs the raw block bytes from a ZIP or ZIPS payload.
// expectedSize is the uncompressed size of the block; a stream that inflates
// to any other length is rejected.
func ZIPDecode(src []byte, expectedSize int) ([]byte, error) {
	tmp, err := ZIPDecompress(src, expectedSize)
	if err != nil {
		return nil, err
	}
	predictor.Decode(tmp)
	return Deinterleave(tmp), nil
}

// ZIPDecodeTo is ZIPDecode writing into dst. scratch receives the inflated
// stream and must be the same length as dst; both may come from a pool.
func ZIPDecodeTo(dst, scratch, src []byte) error {
	if len(scratch) != len(dst) {
		return ErrZIPCorrupted
	}
	if err := ZIPDecompressTo(scratch, src); err != nil {
		return err
	}
	predictor.Decode(scratch)
	DeinterleaveTo(dst, scratch)
	return nil
}

// ZIPEncode is the inverse of ZIPDecode: it splits src into byte planes,
// applies the predictor and deflates the result.
func ZIPEncode(src []byte, level CompressionLevel) ([]byte, error) {
	tmp := Interleave(src)
	predictor.Encode(tmp)
	return ZIPCompressLevel(tmp, level)
}

// zlibWriterPoolItem holds a pooled writer and its destination buffer.
type zlibWriterPoolItem struct {
	writer *zlib.Writer
	buf    *bytes.Buffer
}

var zlibWriterPool = sync.Pool{
	New: func() any {
		buf := new(bytes.Buffer)
		w, _ := zlib.NewWriterLevel(buf, zlib.DefaultCompression)
		return &zlibWriterPoolItem{writer: w, buf: buf}
	},
}

// ZIPCompress deflates src with zlib at the default level.
// The predictor and byte-plane split are not applied; see ZIPEncode.
func ZIPCompress(src []byte) ([]byte, error) {
	return ZIPCompressLevel(src, CompressionLevelDefault)
}

// ZIPCompressLevel deflates src with zlib at the given level.
func ZIPCompressLevel(src []byte, level CompressionLevel) ([]byte, error) {
	if len(src) == 0 {
		return nil, nil
	}

	if level == CompressionLevelDefault {
		item := zlibWriterPool.Get().(*zlibWriterPoolItem)
		defer zlibWriterPool.Put(item)
		item.buf.Reset()
		item.writer.Reset(item.buf)

		if _, err := item.writer.Write(src); err != nil {
			item.writer.Close()
			return nil, err
		}
		if err := item.writer.Close(); err != nil {
			return nil, err
		}
		return bytes.Clone(item.buf.Bytes()), nil
	}

	buf := new(bytes.Buffer)
	w, err := zlib.NewWriterLevel(buf, int(level))
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(src); err != nil {
		w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// zlibReaderPoolItem wraps a zlib reader for pooling
type zlibReaderPoolItem struct {
	reader io.ReadCloser
	srcBuf *bytes.Reader
}

var zlibReaderPool = sync.Pool{
	New: func() any {
		return &zlibReaderPoolItem{srcBuf: bytes.NewReader(nil)}
	},
}

// ZIPDecompress inflates a zlib stream that must expand to exactly
// expectedSize bytes.
func ZIPDecompress(src []byte, expectedSize int) ([]byte, error) {
	if len(src) == 0 {
		if expectedSize != 0 {
			return nil, ErrZIPCorrupted
		}
		return nil, nil
	}
	dst := make([]byte, expectedSize)
	if err := ZIPDecompressTo(dst, src); err != nil {
		return nil, err
	}
	return dst, nil
}

// ZIPDecompressTo inflates src into dst. The stream must fill dst exactly:
// a short stream returns ErrZIPCorrupted and a long one ErrZIPOverflow.
func ZIPDecompressTo(dst, src []byte) error {
	if len(src) == 0 {
		if len(dst) != 0 {
			return ErrZIPCorrupted
		}
		return nil
	}

	item := zlibReaderPool.Get().(*zlibReaderPoolItem)
	defer zlibReaderPool.Put(item)
	item.srcBuf.Reset(src)

	if err := item.reset(); err != nil {
		return ErrZIPCorrupted
	}

	n, err := io.ReadFull(item.reader, dst)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return ErrZIPCorrupted
	}
	if n != len(dst) {
		return ErrZIPCorrupted
	}

	// The adler-32 trailer is only verified once the reader reports EOF.
	var extra [1]byte
	m, err := item.reader.Read(extra[:])
	if m > 0 {
		return ErrZIPOverflow
	}
	if err != io.EOF {
		return ErrZIPCorrupted
	}
	return nil
}

// reset points the pooled reader at srcBuf, creating it on first use.
func (item *zlibReaderPoolItem) reset() error {
	if item.reader != nil {
		if resetter, ok := item.reader.(zlib.Resetter); ok {
			if err := resetter.Reset(item.srcBuf, nil); err == nil {
				return nil
			}
		}
		item.reader.Close()
		item.reader = nil
		item.srcBuf.Seek(0, io.SeekStart)
	}
	r, err := zlib.NewReader(item.srcBuf)
	if err != nil {
		return err
	}
	item.reader = r
	return nil
}
