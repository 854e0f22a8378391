package exr

import (
	"fmt"
	"image"
)

// ITU-R BT.709 luminance weights
// Y = 0.2126*R + 0.7152*G + 0.0722*B
const (
	kr709 = 0.2126
	kg709 = 0.7152
	kb709 = 0.0722
)

// RGBtoYC converts linear RGB to OpenEXR luminance/chroma (Y, RY, BY),
// where RY = R - Y and BY = B - Y.
func RGBtoYC(r, g, b float32) (y, ry, by float32) {
	y = float32(kr709)*r + float32(kg709)*g + float32(kb709)*b
	return y, r - y, b - y
}

// YCtoRGB converts OpenEXR luminance/chroma (Y, RY, BY) to linear RGB.
func YCtoRGB(y, ry, by float32) (r, g, b float32) {
	r = ry + y
	b = by + y
	// G = (Y - kr*R - kb*B) / kg
	g = (y - float32(kr709)*r - float32(kb709)*b) / float32(kg709)
	return r, g, b
}

// IsYCImage reports whether h describes a luminance/chroma image: a Y
// channel plus RY or BY.
func IsYCImage(h *Header) bool {
	_, hasY := h.channels.Get("Y")
	_, hasRY := h.channels.Get("RY")
	_, hasBY := h.channels.Get("BY")
	return hasY && (hasRY || hasBY)
}

// IsLuminanceOnlyImage reports whether h describes a grayscale image: a Y
// channel and no chroma.
func IsLuminanceOnlyImage(h *Header) bool {
	_, hasY := h.channels.Get("Y")
	_, hasRY := h.channels.Get("RY")
	_, hasBY := h.channels.Get("BY")
	return hasY && !hasRY && !hasBY
}

// LuminanceToRGBA8 converts a luminance/chroma or luminance-only image to
// 8-bit RGBA. Chroma channels are usually subsampled and are upsampled
// bilinearly; a missing RY or BY counts as zero chroma. Bytes are computed
// as in ToRGBA8, and alpha comes from A when present.
func LuminanceToRGBA8(img *Image, gammaCorrect bool) (*image.RGBA, error) {
	lum, ok := img.Channel("Y")
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrChannelNotFound, "Y")
	}
	ryc, _ := img.Channel("RY")
	byc, _ := img.Channel("BY")
	alpha, _ := img.Channel("A")

	out := image.NewRGBA(image.Rect(0, 0, img.width, img.height))
	for py := 0; py < img.height; py++ {
		row := out.Pix[py*out.Stride:]
		for px := 0; px < img.width; px++ {
			yv := lum.Float32At(px, py)
			r, g, b := yv, yv, yv
			if ryc != nil || byc != nil {
				r, g, b = YCtoRGB(yv, bilinearSample(ryc, px, py), bilinearSample(byc, px, py))
			}

			p := row[4*px : 4*px+4 : 4*px+4]
			p[0] = toByte(r, gammaCorrect)
			p[1] = toByte(g, gammaCorrect)
			p[2] = toByte(b, gammaCorrect)
			p[3] = 255
			if alpha != nil {
				p[3] = toByte(alpha.Float32At(px, py), false)
			}
		}
	}
	return out, nil
}

// bilinearSample samples a subsampled channel at full-resolution pixel
// (px, py). A nil channel reads as zero.
func bilinearSample(cd *ChannelData, px, py int) float32 {
	if cd == nil {
		return 0
	}

	// Convert full-res coordinates to channel coordinates
	fx := float32(px) / float32(cd.xSampling)
	fy := float32(py) / float32(cd.ySampling)

	x0, y0 := int(fx), int(fy)
	x1 := min(x0+1, cd.width-1)
	y1 := min(y0+1, cd.height-1)

	fracX := fx - float32(x0)
	fracY := fy - float32(y0)

	at := func(x, y int) float32 {
		return cd.Float32At(x*cd.xSampling, y*cd.ySampling)
	}
	v0 := at(x0, y0)*(1-fracX) + at(x1, y0)*fracX
	v1 := at(x0, y1)*(1-fracX) + at(x1, y1)*fracX
	return v0*(1-fracY) + v1*fracY
}
