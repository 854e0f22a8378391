// Package predictor implements the byte predictor used by the OpenEXR ZIP
// and ZIPS compression schemes.
//
// Before deflating, a writer replaces every byte after the first with its
// difference from the preceding byte, biased by 128 so that small positive
// and negative steps both land near the middle of the byte range. Decoding
// undoes the filter with a running sum.
package predictor

// bias is added by Encode and removed by Decode.
const bias = 128

// Encode applies the biased differencing filter to data in place:
//
//	data[i] = data[i] - data[i-1] + 128 (mod 256), for i >= 1
//
// The first byte is left unchanged.
func Encode(data []byte) {
	// Work backwards so each step still sees the original predecessor.
	for i := len(data) - 1; i >= 1; i-- {
		data[i] = data[i] - data[i-1] + bias
	}
}

// Decode reverses Encode in place:
//
//	data[i] = data[i-1] + data[i] - 128 (mod 256), for i >= 1
func Decode(data []byte) {
	n := len(data)
	if n < 2 {
		return
	}

	// Process in chunks of 8 for better pipelining
	i := 1
	for ; i+7 < n; i += 8 {
		data[i] += data[i-1] - bias
		data[i+1] += data[i] - bias
		data[i+2] += data[i+1] - bias
		data[i+3] += data[i+2] - bias
		data[i+4] += data[i+3] - bias
		data[i+5] += data[i+4] - bias
		data[i+6] += data[i+5] - bias
		data[i+7] += data[i+6] - bias
	}

	for ; i < n; i++ {
		data[i] += data[i-1] - bias
	}
}
