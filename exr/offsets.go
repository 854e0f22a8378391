package exr

import (
	"fmt"

	"github.com/daspviewer/go-exrscan/internal/xdr"
)

// OffsetTable holds the absolute file position of every block. Entry i
// always belongs to the i-th group of scan lines counted from the top of
// the data window, whatever the header's line order.
type OffsetTable []uint64

// ReadOffsetTable reads the offset table that follows the header.
func ReadOffsetTable(r *xdr.Reader, h *Header) (OffsetTable, error) {
	n := h.BlockCount()
	if n > r.Len()/8 {
		return nil, fmt.Errorf("%w: offset table needs %d entries, %d bytes remain", ErrOutOfBounds, n, r.Len())
	}

	table := make(OffsetTable, n)
	for i := range table {
		off, err := r.ReadOffset()
		if err != nil {
			return nil, readError(fmt.Sprintf("offset table entry %d", i), err)
		}
		table[i] = off
	}
	return table, nil
}
