package exr

import (
	"fmt"
	"image"
	"math"
	"strings"
)

// Gamma is the exponent whose inverse is applied by ToRGBA8 when gamma
// correction is requested.
const Gamma = 2.2

// RGBANames selects the channels that supply each component of an RGBA
// conversion. An empty A yields opaque pixels.
type RGBANames struct {
	R, G, B, A string
}

// LayerRGBANames returns the names <layer>.R, <layer>.G and <layer>.B, plus
// <layer>.A if the image has it. An empty layer selects the unprefixed
// R, G, B and A channels.
func LayerRGBANames(img *Image, layer string) RGBANames {
	prefix := ""
	if layer != "" {
		prefix = strings.TrimSuffix(layer, ".") + "."
	}
	names := RGBANames{R: prefix + "R", G: prefix + "G", B: prefix + "B"}
	if _, ok := img.Channel(prefix + "A"); ok {
		names.A = prefix + "A"
	}
	return names
}

// ToRGBA8 converts four channels of img to an 8-bit RGBA image. Each
// sample s becomes clamp(round(255 * s'), 0, 255), where s' is s^(1/2.2)
// when gammaCorrect is set and s otherwise. The alpha channel is never
// gamma corrected.
func ToRGBA8(img *Image, names RGBANames, gammaCorrect bool) (*image.RGBA, error) {
	var src [4]*ChannelData
	for i, name := range []string{names.R, names.G, names.B, names.A} {
		if i == 3 && name == "" {
			continue
		}
		cd, ok := img.Channel(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrChannelNotFound, name)
		}
		src[i] = cd
	}

	out := image.NewRGBA(image.Rect(0, 0, img.width, img.height))
	for y := 0; y < img.height; y++ {
		row := out.Pix[y*out.Stride:]
		for x := 0; x < img.width; x++ {
			p := row[4*x : 4*x+4 : 4*x+4]
			for c := 0; c < 3; c++ {
				p[c] = toByte(src[c].Float32At(x, y), gammaCorrect)
			}
			if src[3] != nil {
				p[3] = toByte(src[3].Float32At(x, y), false)
			} else {
				p[3] = 255
			}
		}
	}
	return out, nil
}

// toByte maps a sample in [0, 1] to [0, 255].
func toByte(s float32, gammaCorrect bool) uint8 {
	v := float64(s)
	if gammaCorrect {
		v = math.Pow(v, 1/Gamma)
	}
	v = math.Round(255 * v)
	switch {
	case v >= 255:
		return 255
	case v > 0:
		return uint8(v)
	default:
		// Negative values and NaN.
		return 0
	}
}
