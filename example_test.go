package exrscan_test

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/daspviewer/go-exrscan/exr"
	"github.com/daspviewer/go-exrscan/exrid"
	"github.com/daspviewer/go-exrscan/exrmeta"
	"github.com/daspviewer/go-exrscan/exrutil"
	"github.com/daspviewer/go-exrscan/half"
)

// Example_basicRead demonstrates decoding an EXR file and reading samples.
func Example_basicRead() {
	img, err := exr.DecodeFile("image.exr")
	if err != nil {
		fmt.Println("Error decoding:", err)
		return
	}

	h := img.Header()
	fmt.Printf("Image size: %dx%d\n", img.Width(), img.Height())
	fmt.Printf("Compression: %s\n", h.Compression())

	// Samples are stored at their native precision; Float32At converts.
	for _, name := range img.ChannelNames() {
		cd, _ := img.Channel(name)
		fmt.Printf("%s (%s): first sample %g\n", name, cd.Type(), cd.Float32At(0, 0))
	}
}

// Example_headerOnly demonstrates inspecting a file without decoding pixels.
func Example_headerOnly() {
	h, err := exr.ReadHeaderFile("image.exr")
	if err != nil {
		fmt.Println("Error reading header:", err)
		return
	}

	dw := h.DataWindow()
	fmt.Printf("Data window: (%d, %d) - (%d, %d)\n", dw.Min.X, dw.Min.Y, dw.Max.X, dw.Max.Y)
	fmt.Printf("%d blocks of %d scan lines\n", h.BlockCount(), h.ScanlinesPerBlock())
	for _, name := range h.Names() {
		attr, _ := h.Get(name)
		fmt.Printf("  %s (%s)\n", name, attr.Type)
	}
}

// Example_errors demonstrates classifying decode failures.
func Example_errors() {
	_, err := exr.DecodeFile("broken.exr")

	var de *exr.DecodeError
	switch {
	case err == nil:
		fmt.Println("file is valid")
	case errors.Is(err, exr.ErrUnsupportedCompression):
		fmt.Println("compression not supported:", err)
	case errors.As(err, &de) && de.Block >= 0:
		fmt.Printf("block %d is damaged: %v\n", de.Block, de.Err)
	default:
		fmt.Println("cannot decode:", err)
	}
}

// Example_preview demonstrates writing an 8-bit preview of an EXR file.
func Example_preview() {
	img, err := exr.DecodeFile("image.exr")
	if err != nil {
		fmt.Println("Error decoding:", err)
		return
	}

	h := img.Header()
	convert := func() (*image.RGBA, error) {
		if exr.IsYCImage(h) || exr.IsLuminanceOnlyImage(h) {
			return exr.LuminanceToRGBA8(img, true)
		}
		return exr.ToRGBA8(img, exr.LayerRGBANames(img, ""), true)
	}
	out, err := convert()
	if err != nil {
		fmt.Println("Error converting:", err)
		return
	}

	f, err := os.Create("preview.png")
	if err != nil {
		fmt.Println("Error creating file:", err)
		return
	}
	defer f.Close()
	if err := png.Encode(f, out); err != nil {
		fmt.Println("Error writing PNG:", err)
	}
}

// Example_parallelProcessing demonstrates configuring decode parallelism.
func Example_parallelProcessing() {
	config := exr.DefaultParallelConfig()
	config.NumWorkers = 4
	config.GrainSize = 16

	fmt.Printf("Parallel config: %d workers, grain size %d\n",
		config.NumWorkers, config.GrainSize)

	// Options.Parallel applies to a single decode; SetParallelConfig
	// changes the default for all of them.
	_, _ = exr.DecodeFileWithOptions("image.exr", exr.Options{Parallel: &config})

	// Output:
	// Parallel config: 4 workers, grain size 16
}

// Example_halfPrecision demonstrates working with 16-bit floating point.
func Example_halfPrecision() {
	h := half.FromFloat32(1.5)
	fmt.Printf("1.5 as half: %#04x\n", h.Bits())
	fmt.Println("back to float32:", h.Float32())

	// Values that do not fit round to the nearest half.
	fmt.Println("0.1 as half:", half.FromFloat32(0.1).Float32())

	// Output:
	// 1.5 as half: 0x3e00
	// back to float32: 1.5
	// 0.1 as half: 0.099975586
}

// Example_views demonstrates naming channels of a multi-view image.
func Example_views() {
	views := []string{exr.ViewLeft, exr.ViewRight}

	fmt.Println(exr.BuildViewChannelName("beauty", exr.ViewRight, "R"))
	parsed := exr.ParseViewChannelName("beauty.left.G", views)
	fmt.Printf("layer=%s view=%s channel=%s\n", parsed.Layer, parsed.View, parsed.Channel)

	// Output:
	// beauty.right.R
	// layer=beauty view=left channel=G
}

// Example_metadata demonstrates reading standard attributes.
func Example_metadata() {
	h, err := exr.ReadHeaderFile("image.exr")
	if err != nil {
		fmt.Println("Error reading header:", err)
		return
	}

	if owner := exrmeta.Owner(h); owner != "" {
		fmt.Println("Owner:", owner)
	}
	if fps := exrmeta.FramesPerSecond(h); fps != nil {
		fmt.Printf("Frame rate: %s (%s)\n", fps, exrmeta.FrameRateName(*fps))
	}
	if c := exrmeta.GetChromaticities(h); c != nil {
		fmt.Printf("White point: (%.4f, %.4f)\n", c.WhiteX, c.WhiteY)
	}
}

// Example_frameRates demonstrates the standard frame rate helpers.
func Example_frameRates() {
	fmt.Println(exrmeta.FrameRateName(exrmeta.FPS23976))
	fmt.Println(exrmeta.IsDropFrame(exrmeta.FPS2997))
	fmt.Printf("%.3f\n", exrmeta.RationalToFloat(exrmeta.FPS5994))

	// Output:
	// 23.976 fps (NTSC Film)
	// true
	// 59.940
}

// Example_cryptomatte demonstrates resolving object names from ID mattes.
func Example_cryptomatte() {
	img, err := exr.DecodeFile("matte.exr")
	if err != nil {
		fmt.Println("Error decoding:", err)
		return
	}

	m, err := exrid.GetManifest(img.Header())
	if err != nil {
		fmt.Println("No manifest:", err)
		return
	}
	for i := range m.Groups {
		g := &m.Groups[i]
		for _, c := range exrid.CryptomatteCoverage(img, g, 0, 0) {
			fmt.Printf("%08x %s %.2f\n", c.ID, c.Name, c.Coverage)
		}
	}
}

// Example_cryptomatteHash demonstrates computing Cryptomatte IDs.
func Example_cryptomatteHash() {
	fmt.Printf("%08x\n", exrid.CryptomatteHash("hello"))

	// Output:
	// 248bfa47
}

// Example_compare demonstrates comparing two renders.
func Example_compare() {
	same, diffs, err := exrutil.CompareFiles("a.exr", "b.exr", exrutil.CompareOptions{Tolerance: 1e-3})
	if err != nil {
		fmt.Println("Error comparing:", err)
		return
	}
	fmt.Println("identical within tolerance:", same)
	for _, d := range diffs {
		fmt.Println(" ", d)
	}
}
