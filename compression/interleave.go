package compression

// Interleave splits src into two byte planes: bytes at even positions go to
// the first half of the result and bytes at odd positions to the second.
// For little-endian 16-bit values this groups all low-order bytes ahead of
// all high-order bytes:
//
//	[A0, A1, B0, B1, C0, C1] -> [A0, B0, C0, A1, B1, C1]
//
// For odd lengths the extra byte belongs to the first half.
func Interleave(src []byte) []byte {
	n := len(src)
	if n == 0 {
		return nil
	}

	dst := make([]byte, n)
	half := (n + 1) / 2
	for i := 0; i < half; i++ {
		dst[i] = src[2*i]
	}
	for i := 0; i < n-half; i++ {
		dst[half+i] = src[2*i+1]
	}
	return dst
}

// Deinterleave reverses Interleave, zipping src[k] with src[half+k].
func Deinterleave(src []byte) []byte {
	if len(src) == 0 {
		return nil
	}
	dst := make([]byte, len(src))
	DeinterleaveTo(dst, src)
	return dst
}

// DeinterleaveTo is Deinterleave writing into dst, which must be at least
// as long as src.
func DeinterleaveTo(dst, src []byte) {
	n := len(src)
	half := (n + 1) / 2
	for i := 0; i < half; i++ {
		dst[i*2] = src[i]
	}
	for i := 0; i < n-half; i++ {
		dst[i*2+1] = src[half+i]
	}
}
