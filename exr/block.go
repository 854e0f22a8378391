package exr

import (
	"errors"
	"fmt"

	"github.com/daspviewer/go-exrscan/compression"
	"github.com/daspviewer/go-exrscan/internal/xdr"
)

// chunk is one block as stored in the file.
type chunk struct {
	y       int32
	payload []byte // aliases the input buffer
}

// readChunk reads the block header and payload at offset. Each call uses
// its own cursor so blocks can be read concurrently.
func readChunk(data []byte, offset uint64) (chunk, error) {
	var c chunk
	if offset == 0 {
		return c, fmt.Errorf("%w: offset table entry is zero (incomplete file)", ErrCorruptBlock)
	}
	if offset > uint64(len(data)) {
		return c, fmt.Errorf("%w: block offset %d beyond end of %d-byte buffer", ErrOutOfBounds, offset, len(data))
	}

	r := xdr.NewReader(data)
	if err := r.SetPos(int(offset)); err != nil {
		return c, readError("block offset", err)
	}

	y, err := r.ReadInt32()
	if err != nil {
		return c, readError("block line number", err)
	}
	size, err := r.ReadInt32()
	if err != nil {
		return c, readError("block size", err)
	}
	if size < 0 {
		return c, fmt.Errorf("%w: negative packed size %d", ErrCorruptBlock, size)
	}
	payload, err := r.PeekBytes(int(size))
	if err != nil {
		return c, readError(fmt.Sprintf("block payload (%d bytes)", size), err)
	}

	c.y = y
	c.payload = payload
	return c, nil
}

// decompressBlock returns the uncompressed bytes of a block whose raw size
// is expected. For CompressionNone, and for ZIP blocks stored raw, the
// payload is returned as is. pooled reports whether raw came from
// blockBuffers and should be put back once assembled.
func decompressBlock(c Compression, payload []byte, expected int) (raw []byte, pooled bool, err error) {
	switch c {
	case CompressionNone:
		if len(payload) != expected {
			return nil, false, fmt.Errorf("%w: uncompressed block has %d bytes, want %d", ErrCorruptBlock, len(payload), expected)
		}
		return payload, false, nil

	case CompressionZIP, CompressionZIPS:
		// Writers store a block raw when compressing would not shrink it.
		if len(payload) == expected {
			return payload, false, nil
		}
		raw = blockBuffers.get(expected)
		scratch := blockBuffers.get(expected)
		err := compression.ZIPDecodeTo(raw, scratch, payload)
		blockBuffers.put(scratch)
		if err != nil {
			blockBuffers.put(raw)
			if errors.Is(err, compression.ErrZIPOverflow) {
				return nil, false, fmt.Errorf("%w: inflates to more than %d bytes", ErrCorruptBlock, expected)
			}
			return nil, false, fmt.Errorf("%w: %v", ErrCorruptBlock, err)
		}
		return raw, true, nil

	default:
		return nil, false, fmt.Errorf("%w: %s", ErrUnsupportedCompression, c)
	}
}

// decodeBlock reads, decompresses and assembles row-group i.
func (d *decoder) decodeBlock(i int) error {
	y0, n := d.layout.lines(i)

	c, err := readChunk(d.data, d.offsets[i])
	if err != nil {
		return err
	}
	if int(c.y) != y0 {
		return fmt.Errorf("%w: block starts at line %d, want %d", ErrCorruptBlock, c.y, y0)
	}

	raw, pooled, err := decompressBlock(d.header.Compression(), c.payload, d.layout.blockSize(y0, n))
	if err != nil {
		return err
	}
	if pooled {
		defer blockBuffers.put(raw)
	}
	return d.layout.assemble(raw, y0, n)
}
