// exr2png converts a scan-line OpenEXR file to an 8-bit PNG preview.
//
// RGB images are converted from their R, G, B and optional A channels.
// Luminance/chroma (Y, RY, BY) and luminance-only images are converted to
// RGB first. A layer or view can be selected for multi-layer and stereo
// files.
//
// Usage:
//
//	exr2png [options] infile outfile
//
// Options:
//
//	-layer <name>   layer to convert (default: base layer)
//	-view <name>    view to convert (default: the file's default view)
//	-linear         write linear values without gamma correction
//	-width <n>      resize to n pixels wide, keeping the aspect ratio
//	-workers <n>    number of decode goroutines (0 = GOMAXPROCS)
//	-v              verbose output
//	-version        show version information
package main

import (
	"flag"
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/nfnt/resize"

	"github.com/daspviewer/go-exrscan/exr"
)

const version = "1.0.0"

type config struct {
	layer   string
	view    string
	linear  bool
	width   uint
	workers int
	verbose bool
}

func main() {
	var cfg config
	flag.StringVar(&cfg.layer, "layer", "", "layer to convert")
	flag.StringVar(&cfg.view, "view", "", "view to convert")
	flag.BoolVar(&cfg.linear, "linear", false, "write linear values without gamma correction")
	flag.UintVar(&cfg.width, "width", 0, "resize to this width, keeping the aspect ratio")
	flag.IntVar(&cfg.workers, "workers", 0, "number of decode goroutines (0 = GOMAXPROCS)")
	flag.BoolVar(&cfg.verbose, "v", false, "verbose output")
	showVersion := flag.Bool("version", false, "show version information")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: exr2png [options] infile outfile\n\n")
		fmt.Fprintf(os.Stderr, "Convert a scan-line OpenEXR file to an 8-bit PNG image.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("exr2png version %s\n", version)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) != 2 {
		flag.Usage()
		os.Exit(1)
	}

	if err := convert(args[0], args[1], cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func convert(inFile, outFile string, cfg config) error {
	if cfg.verbose {
		fmt.Printf("Reading file %s\n", inFile)
	}

	parallel := exr.DefaultParallelConfig()
	parallel.NumWorkers = cfg.workers
	img, err := exr.DecodeFileWithOptions(inFile, exr.Options{Parallel: &parallel})
	if err != nil {
		return fmt.Errorf("cannot read input file: %w", err)
	}

	if cfg.verbose {
		h := img.Header()
		dw := h.DataWindow()
		fmt.Printf("  Data window: (%d, %d) - (%d, %d)\n", dw.Min.X, dw.Min.Y, dw.Max.X, dw.Max.Y)
		fmt.Printf("  Compression: %s\n", h.Compression())
		fmt.Printf("  Channels: %v\n", img.ChannelNames())
	}

	out, err := toRGBA(img, cfg)
	if err != nil {
		return err
	}

	var result image.Image = out
	if cfg.width > 0 && int(cfg.width) != out.Bounds().Dx() {
		if cfg.verbose {
			fmt.Printf("  Resizing to width %d\n", cfg.width)
		}
		result = resize.Resize(cfg.width, 0, out, resize.Lanczos3)
	}

	if cfg.verbose {
		fmt.Printf("Writing file %s\n", outFile)
	}
	f, err := os.Create(outFile)
	if err != nil {
		return fmt.Errorf("cannot create output file: %w", err)
	}
	if err := png.Encode(f, result); err != nil {
		f.Close()
		return fmt.Errorf("cannot write output file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("cannot close output file: %w", err)
	}
	return nil
}

// toRGBA picks the conversion that fits the channels of img.
func toRGBA(img *exr.Image, cfg config) (*image.RGBA, error) {
	gamma := !cfg.linear
	h := img.Header()

	if cfg.layer == "" && cfg.view == "" && (exr.IsYCImage(h) || exr.IsLuminanceOnlyImage(h)) {
		if _, ok := img.Channel("R"); !ok {
			return exr.LuminanceToRGBA8(img, gamma)
		}
	}

	names, err := rgbaNames(img, cfg.layer, cfg.view)
	if err != nil {
		return nil, err
	}
	return exr.ToRGBA8(img, names, gamma)
}

// rgbaNames resolves the R, G, B and A channel names for a layer and view.
// Channels of the default view may be stored without a view component.
func rgbaNames(img *exr.Image, layer, view string) (exr.RGBANames, error) {
	if view == "" {
		return exr.LayerRGBANames(img, layer), nil
	}

	views := img.Header().MultiView()
	known := false
	for _, v := range views {
		if v == view {
			known = true
			break
		}
	}
	if !known {
		return exr.RGBANames{}, fmt.Errorf("view %q not found (file has %v)", view, views)
	}

	if _, ok := img.Channel(exr.BuildViewChannelName(layer, view, "R")); !ok {
		if view == views[0] {
			return exr.LayerRGBANames(img, layer), nil
		}
	}
	names := exr.RGBANames{
		R: exr.BuildViewChannelName(layer, view, "R"),
		G: exr.BuildViewChannelName(layer, view, "G"),
		B: exr.BuildViewChannelName(layer, view, "B"),
	}
	if a := exr.BuildViewChannelName(layer, view, "A"); hasChannel(img, a) {
		names.A = a
	}
	return names, nil
}

func hasChannel(img *exr.Image, name string) bool {
	_, ok := img.Channel(name)
	return ok
}
