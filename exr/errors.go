package exr

import (
	"errors"
	"fmt"

	"github.com/daspviewer/go-exrscan/internal/xdr"
)

// Decode errors. Every failure returned by Decode wraps exactly one of
// these; use errors.Is to classify it.
var (
	// ErrOutOfBounds means a read would run past the end of the buffer.
	ErrOutOfBounds = errors.New("exr: read past end of buffer")

	// ErrUnsupportedFormat means the buffer is not a single-part scan-line
	// file: bad magic number, or the tiled, long-names, deep or multipart
	// flag is set.
	ErrUnsupportedFormat = errors.New("exr: unsupported file format")

	// ErrMissingRequiredAttribute means one of channels, compression,
	// dataWindow or lineOrder is absent from the header.
	ErrMissingRequiredAttribute = errors.New("exr: missing required attribute")

	// ErrCorruptHeader means an attribute's declared size or contents
	// are inconsistent.
	ErrCorruptHeader = errors.New("exr: corrupt header")

	// ErrUnsupportedCompression means the file uses a codec other than
	// none, zip or zips.
	ErrUnsupportedCompression = errors.New("exr: unsupported compression")

	// ErrCorruptBlock means a scan-line block is missing, misplaced or
	// does not decompress to the expected size.
	ErrCorruptBlock = errors.New("exr: corrupt scan-line block")

	// ErrImageTooLarge means the data window exceeds Options.MaxPixels.
	ErrImageTooLarge = errors.New("exr: image too large")

	// ErrChannelNotFound is returned by lookups of channels that the
	// image does not contain.
	ErrChannelNotFound = errors.New("exr: channel not found")
)

// DecodeError records the decode stage and row-group that failed.
type DecodeError struct {
	Op    string // "header", "offsets" or "block"
	Block int    // row-group index, or -1 outside the block stage
	Err   error
}

func (e *DecodeError) Error() string {
	if e.Block >= 0 {
		return fmt.Sprintf("%s %d: %v", e.Op, e.Block, e.Err)
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// readError converts a cursor failure into one of the exr error kinds.
func readError(what string, err error) error {
	switch {
	case errors.Is(err, xdr.ErrShortBuffer), errors.Is(err, xdr.ErrOffsetRange):
		return fmt.Errorf("%w: %s", ErrOutOfBounds, what)
	case errors.Is(err, xdr.ErrNegativeSize):
		return fmt.Errorf("%w: %s: negative size", ErrCorruptHeader, what)
	}
	return err
}
