package exr

import (
	"fmt"

	"github.com/daspviewer/go-exrscan/internal/xdr"
)

// DefaultMaxPixels is the default limit on the data window area.
const DefaultMaxPixels = 1 << 28

// Options control a decode.
type Options struct {
	// Parallel overrides the global ParallelConfig when non-nil.
	Parallel *ParallelConfig

	// MaxPixels bounds width*height of the data window. 0 means
	// DefaultMaxPixels; negative means no limit.
	MaxPixels int64
}

// decoder holds the state shared by the row-group workers of one decode.
type decoder struct {
	data    []byte
	header  *Header
	offsets OffsetTable
	layout  *blockLayout
}

// Decode decodes a complete single-part scan-line OpenEXR file held in
// data. It returns either a fully populated image or an error; no partial
// image is ever returned. data is only read, never retained.
func Decode(data []byte) (*Image, error) {
	return DecodeWithOptions(data, Options{})
}

// DecodeWithOptions is like Decode with explicit options.
func DecodeWithOptions(data []byte, opts Options) (*Image, error) {
	r := xdr.NewReader(data)

	h, err := ReadHeader(r)
	if err != nil {
		return nil, &DecodeError{Op: "header", Block: -1, Err: err}
	}
	if !h.Compression().Supported() {
		return nil, &DecodeError{Op: "header", Block: -1,
			Err: fmt.Errorf("%w: %s (code %d)", ErrUnsupportedCompression, h.Compression(), uint8(h.Compression()))}
	}
	if err := checkSize(h, opts.MaxPixels); err != nil {
		return nil, &DecodeError{Op: "header", Block: -1, Err: err}
	}

	offsets, err := ReadOffsetTable(r, h)
	if err != nil {
		return nil, &DecodeError{Op: "offsets", Block: -1, Err: err}
	}

	img := newImage(h)
	d := &decoder{
		data:    data,
		header:  h,
		offsets: offsets,
		layout:  newBlockLayout(h, img),
	}

	config := GetParallelConfig()
	if opts.Parallel != nil {
		config = *opts.Parallel
	}
	err = parallelForWithError(config, len(offsets), func(i int) error {
		if err := d.decodeBlock(i); err != nil {
			return &DecodeError{Op: "block", Block: i, Err: err}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return img, nil
}

// checkSize rejects data windows larger than the pixel limit.
func checkSize(h *Header, limit int64) error {
	if limit == 0 {
		limit = DefaultMaxPixels
	}
	if limit < 0 {
		return nil
	}
	dw := h.DataWindow()
	w, ht := int64(dw.Width()), int64(dw.Height())
	// Dividing avoids overflow for windows spanning the whole int32 range.
	if w > limit || ht > limit/w {
		return fmt.Errorf("%w: %dx%d data window exceeds %d pixels", ErrImageTooLarge, w, ht, limit)
	}
	return nil
}

// DecodeFile maps or reads the file at path and decodes it.
func DecodeFile(path string) (*Image, error) {
	return DecodeFileWithOptions(path, Options{})
}

// DecodeFileWithOptions is like DecodeFile with explicit options.
func DecodeFileWithOptions(path string, opts Options) (*Image, error) {
	m, err := openMapped(path)
	if err != nil {
		return nil, err
	}
	defer m.Close()
	return DecodeWithOptions(m.Bytes(), opts)
}

// ReadHeaderFile reads and validates only the header of the file at path.
// Pixel data is not touched.
func ReadHeaderFile(path string) (*Header, error) {
	m, err := openMapped(path)
	if err != nil {
		return nil, err
	}
	defer m.Close()

	h, err := ReadHeader(xdr.NewReader(m.Bytes()))
	if err != nil {
		return nil, &DecodeError{Op: "header", Block: -1, Err: err}
	}
	return h, nil
}
