// Package half provides the IEEE 754 binary16 sample type used by HALF
// channels in OpenEXR files.
//
// A half has 1 sign bit, 5 exponent bits (bias 15) and 10 mantissa bits.
// Conversions to float32 are exact; conversions from float32 round to
// nearest even.
package half

import (
	"encoding/binary"
	"math"
)

// Half is a binary16 value stored as its raw bit pattern.
type Half uint16

const (
	signBit      = 0x8000
	exponentMask = 0x7C00
	mantissaMask = 0x03FF
	exponentBias = 15
	maxExponent  = 31
)

// Frequently used values.
const (
	Zero   Half = 0x0000
	One    Half = 0x3C00
	Inf    Half = 0x7C00
	NegInf Half = 0xFC00
	NaN    Half = 0x7E00
	Max    Half = 0x7BFF // 65504
)

// Size is the encoded size of a Half in bytes.
const Size = 2

// FromBits returns the Half with the given bit pattern.
func FromBits(bits uint16) Half { return Half(bits) }

// Bits returns the raw bit pattern.
func (h Half) Bits() uint16 { return uint16(h) }

// IsNaN reports whether h is a NaN.
func (h Half) IsNaN() bool {
	return h&exponentMask == exponentMask && h&mantissaMask != 0
}

// IsInf reports whether h is positive or negative infinity.
func (h Half) IsInf() bool {
	return h&^signBit == Inf
}

// Float32 converts h to a float32. The conversion is exact.
func (h Half) Float32() float32 {
	sign := uint32(h&signBit) << 16
	exp := int((h >> 10) & 0x1F)
	mantissa := uint32(h & mantissaMask)

	switch exp {
	case 0:
		if mantissa == 0 {
			return math.Float32frombits(sign)
		}
		// Subnormal: shift until the implicit bit appears.
		for mantissa&0x0400 == 0 {
			mantissa <<= 1
			exp--
		}
		exp++
		mantissa &= mantissaMask
	case maxExponent:
		if mantissa == 0 {
			return math.Float32frombits(sign | 0x7F800000)
		}
		return math.Float32frombits(sign | 0x7FC00000 | mantissa<<13)
	}
	return math.Float32frombits(sign | uint32(exp-exponentBias+127)<<23 | mantissa<<13)
}

// FromFloat32 converts f to the nearest Half, rounding ties to even.
// Values beyond the half range become infinities; values below the
// smallest subnormal become signed zeros.
func FromFloat32(f float32) Half {
	bits := math.Float32bits(f)
	sign := uint16(bits>>16) & signBit
	exp := int(bits>>23) & 0xFF
	mantissa := bits & 0x007FFFFF

	switch {
	case exp == 0xFF:
		if mantissa == 0 {
			return Half(sign | exponentMask)
		}
		return Half(sign | exponentMask | 0x0200 | uint16(mantissa>>13))
	case exp == 0:
		return Half(sign)
	}

	exp = exp - 127 + exponentBias
	if exp >= maxExponent {
		return Half(sign | exponentMask)
	}

	if exp <= 0 {
		if exp < -10 {
			return Half(sign)
		}
		mantissa |= 0x00800000
		shift := uint(14 - exp)
		m := mantissa >> shift
		if roundUp(mantissa, shift, m) {
			m++
		}
		// A carry out of the mantissa yields the smallest normal, which
		// is the correct result.
		return Half(sign | uint16(m))
	}

	m := mantissa >> 13
	if roundUp(mantissa, 13, m) {
		m++
		if m > mantissaMask {
			m = 0
			exp++
			if exp >= maxExponent {
				return Half(sign | exponentMask)
			}
		}
	}
	return Half(sign | uint16(exp)<<10 | uint16(m))
}

// roundUp reports whether truncating v by shift bits to kept should round
// up under round-half-to-even.
func roundUp(v uint32, shift uint, kept uint32) bool {
	round := (v >> (shift - 1)) & 1
	sticky := v & (1<<(shift-1) - 1)
	return round != 0 && (sticky != 0 || kept&1 != 0)
}

// DecodeLE fills dst with little-endian halves read from src.
// src must hold at least 2*len(dst) bytes.
func DecodeLE(dst []Half, src []byte) {
	if len(dst) == 0 {
		return
	}
	_ = src[2*len(dst)-1]
	for i := range dst {
		dst[i] = Half(binary.LittleEndian.Uint16(src[2*i:]))
	}
}

// AppendLE appends the little-endian encoding of src to dst.
func AppendLE(dst []byte, src []Half) []byte {
	for _, h := range src {
		dst = binary.LittleEndian.AppendUint16(dst, uint16(h))
	}
	return dst
}
