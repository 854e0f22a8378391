// Package exr decodes single-part scan-line OpenEXR images.
//
// OpenEXR is a high dynamic range (HDR) image file format developed by
// Industrial Light & Magic. A file starts with a typed attribute header,
// followed by a table of offsets to blocks of scan lines. Each block holds
// the samples of one group of consecutive lines, optionally compressed.
//
// Decode reads a complete file held in memory and returns an Image with one
// sample buffer per channel. Tiled, deep and multipart files are rejected,
// as are the rle, piz, pxr24, b44 and b44a codecs.
package exr

import (
	"github.com/daspviewer/go-exrscan/internal/xdr"
)

// V2i represents a 2D integer vector.
type V2i struct {
	X, Y int32
}

// V2f represents a 2D float vector.
type V2f struct {
	X, Y float32
}

// V3i represents a 3D integer vector.
type V3i struct {
	X, Y, Z int32
}

// V3f represents a 3D float vector.
type V3f struct {
	X, Y, Z float32
}

// Box2i is an axis-aligned integer rectangle. Both corners are inclusive.
type Box2i struct {
	Min, Max V2i
}

// Box2f is an axis-aligned float rectangle.
type Box2f struct {
	Min, Max V2f
}

// Width returns the number of columns covered by the box.
func (b Box2i) Width() int {
	return int(int64(b.Max.X) - int64(b.Min.X) + 1)
}

// Height returns the number of rows covered by the box.
func (b Box2i) Height() int {
	return int(int64(b.Max.Y) - int64(b.Min.Y) + 1)
}

// IsEmpty reports whether the box covers no pixels.
func (b Box2i) IsEmpty() bool {
	return b.Max.X < b.Min.X || b.Max.Y < b.Min.Y
}

func readV2i(r *xdr.Reader) (V2i, error) {
	var v V2i
	var err error
	if v.X, err = r.ReadInt32(); err != nil {
		return v, err
	}
	v.Y, err = r.ReadInt32()
	return v, err
}

func readV2f(r *xdr.Reader) (V2f, error) {
	var v V2f
	var err error
	if v.X, err = r.ReadFloat32(); err != nil {
		return v, err
	}
	v.Y, err = r.ReadFloat32()
	return v, err
}

func readV3i(r *xdr.Reader) (V3i, error) {
	var v V3i
	var err error
	if v.X, err = r.ReadInt32(); err != nil {
		return v, err
	}
	if v.Y, err = r.ReadInt32(); err != nil {
		return v, err
	}
	v.Z, err = r.ReadInt32()
	return v, err
}

func readV3f(r *xdr.Reader) (V3f, error) {
	var v V3f
	var err error
	if v.X, err = r.ReadFloat32(); err != nil {
		return v, err
	}
	if v.Y, err = r.ReadFloat32(); err != nil {
		return v, err
	}
	v.Z, err = r.ReadFloat32()
	return v, err
}

func readBox2i(r *xdr.Reader) (Box2i, error) {
	var b Box2i
	var err error
	if b.Min, err = readV2i(r); err != nil {
		return b, err
	}
	b.Max, err = readV2i(r)
	return b, err
}

func readBox2f(r *xdr.Reader) (Box2f, error) {
	var b Box2f
	var err error
	if b.Min, err = readV2f(r); err != nil {
		return b, err
	}
	b.Max, err = readV2f(r)
	return b, err
}
