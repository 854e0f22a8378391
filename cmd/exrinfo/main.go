// exrinfo prints the header of scan-line OpenEXR files and optionally
// validates their pixel data.
//
// Usage:
//
//	exrinfo [-q|--quiet] [-c|--check] [-m|--meta] <filename> [<filename> ...]
//
// Options:
//
//	-q, --quiet   Print nothing but errors. Implies --check.
//	-c, --check   Decode every block and report problems.
//	-m, --meta    Print standard metadata and ID manifests.
//	-a, --attrs   List every header attribute with its type.
//	-h, --help    Show this help message.
//	--version     Show version information.
//
// Exit codes:
//
//	0: All files readable (and valid, with --check)
//	1: One or more files invalid
//	2: Error (file not found, etc.)
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/daspviewer/go-exrscan/exr"
	"github.com/daspviewer/go-exrscan/exrid"
	"github.com/daspviewer/go-exrscan/exrmeta"
	"github.com/daspviewer/go-exrscan/exrutil"
)

const version = "1.0.0"

type options struct {
	quiet bool
	check bool
	meta  bool
	attrs bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command and returns the exit code.
func run(args []string, stdout, stderr io.Writer) int {
	var opts options
	var files []string

	for _, arg := range args {
		switch arg {
		case "-q", "--quiet":
			opts.quiet = true
			opts.check = true
		case "-c", "--check":
			opts.check = true
		case "-m", "--meta":
			opts.meta = true
		case "-a", "--attrs":
			opts.attrs = true
		case "-h", "--help":
			printUsage(stdout)
			return 0
		case "--version":
			fmt.Fprintf(stdout, "exrinfo version %s\n", version)
			return 0
		default:
			if strings.HasPrefix(arg, "-") {
				fmt.Fprintf(stderr, "Unknown option: %s\n", arg)
				printUsage(stderr)
				return 2
			}
			files = append(files, arg)
		}
	}

	if len(files) == 0 {
		fmt.Fprintln(stderr, "Error: No input files specified")
		printUsage(stderr)
		return 2
	}

	validCount := 0
	errorOccurred := false

	for i, filename := range files {
		if i > 0 && !opts.quiet {
			fmt.Fprintln(stdout)
		}

		info, err := exrutil.GetFileInfo(filename)
		if err != nil {
			fmt.Fprintf(stderr, "%s: error: %v\n", filename, err)
			errorOccurred = true
			continue
		}
		if !opts.quiet {
			if err := printInfo(stdout, info, opts); err != nil {
				fmt.Fprintf(stderr, "%s: error: %v\n", filename, err)
				errorOccurred = true
				continue
			}
		}

		if !opts.check {
			validCount++
			continue
		}
		result, err := exrutil.ValidateFile(filename)
		if err != nil {
			fmt.Fprintf(stderr, "%s: error: %v\n", filename, err)
			errorOccurred = true
			continue
		}
		if result.Valid {
			validCount++
		}
		printResult(stdout, stderr, filename, result, opts.quiet)
	}

	if len(files) > 1 && opts.check && !opts.quiet {
		fmt.Fprintf(stdout, "\nSummary: %d of %d files valid\n", validCount, len(files))
	}

	if errorOccurred {
		return 2
	}
	if validCount < len(files) {
		return 1
	}
	return 0
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `Usage: exrinfo [options] <filename> [<filename> ...]

Print the header of scan-line OpenEXR files.

Options:
  -q, --quiet    Print nothing but errors. Implies --check.
  -c, --check    Decode every block and report problems.
  -m, --meta     Print standard metadata and ID manifests.
  -a, --attrs    List every header attribute with its type.
  -h, --help     Show this help message.
  --version      Show version information.

Exit codes:
  0: All files readable (and valid, with --check)
  1: One or more files invalid
  2: Error (file not found, permission denied, etc.)

Examples:
  exrinfo image.exr                  Print the header
  exrinfo -c -m image.exr            Print metadata and validate pixels
  exrinfo -q *.exr                   Validate all EXR files silently`)
}

func printInfo(w io.Writer, info *exrutil.FileInfo, opts options) error {
	// GetFileInfo already validated the header; read it again for detail.
	h, err := exr.ReadHeaderFile(info.Path)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "%s: %d bytes\n", info.Path, info.FileSize)
	fmt.Fprintf(w, "  version:        %d (flags %#x)\n", h.Version(), h.Flags())
	fmt.Fprintf(w, "  data window:    %s (%dx%d)\n", formatBox(info.DataWindow), info.Width, info.Height)
	if dw := h.DisplayWindow(); dw != info.DataWindow {
		fmt.Fprintf(w, "  display window: %s\n", formatBox(dw))
	}
	fmt.Fprintf(w, "  compression:    %s (%d lines per block, %d blocks)\n",
		info.Compression, h.ScanlinesPerBlock(), info.Blocks)
	fmt.Fprintf(w, "  line order:     %s\n", info.LineOrder)

	cl := h.Channels()
	fmt.Fprintf(w, "  channels:       %d\n", cl.Len())
	for i := 0; i < cl.Len(); i++ {
		ch := cl.At(i)
		fmt.Fprintf(w, "    %-20s %-5s", ch.Name, ch.Type)
		if ch.XSampling != 1 || ch.YSampling != 1 {
			fmt.Fprintf(w, " sampling %dx%d", ch.XSampling, ch.YSampling)
		}
		if ch.Linear {
			fmt.Fprint(w, " linear")
		}
		fmt.Fprintln(w)
	}

	if len(info.Layers) > 1 || (len(info.Layers) == 1 && info.Layers[0] != "") {
		fmt.Fprintf(w, "  layers:         %s\n", formatLayers(info.Layers))
	}
	if len(info.Views) > 0 {
		fmt.Fprintf(w, "  views:          %s (default %s)\n", strings.Join(info.Views, ", "), info.Views[0])
	}
	switch {
	case exr.IsYCImage(h):
		fmt.Fprintln(w, "  color:          luminance/chroma (Y, RY, BY)")
	case exr.IsLuminanceOnlyImage(h):
		fmt.Fprintln(w, "  color:          luminance only")
	}

	if opts.attrs {
		fmt.Fprintln(w, "  attributes:")
		for _, name := range h.Names() {
			attr, _ := h.Get(name)
			fmt.Fprintf(w, "    %-28s %-14s %s\n", name, attr.Type, formatValue(attr.Value))
		}
	}
	if opts.meta {
		printMeta(w, h)
	}
	return nil
}

func printMeta(w io.Writer, h *exr.Header) {
	var lines []string
	add := func(label, value string) {
		if value != "" {
			lines = append(lines, fmt.Sprintf("    %-16s %s", label+":", value))
		}
	}
	addFloat := func(label string, v float32, unit string) {
		if v != 0 {
			add(label, strings.TrimSpace(fmt.Sprintf("%g %s", v, unit)))
		}
	}

	add("owner", exrmeta.Owner(h))
	add("comments", exrmeta.Comments(h))
	add("capture date", exrmeta.CapDate(h))
	addFloat("utc offset", exrmeta.UTCOffset(h), "s")
	if fps := exrmeta.FramesPerSecond(h); fps != nil {
		name := exrmeta.FrameRateName(*fps)
		if name == "" {
			name = fmt.Sprintf("%.3f fps", exrmeta.RationalToFloat(*fps))
		}
		if exrmeta.IsDropFrame(*fps) {
			name += ", drop frame"
		}
		add("frame rate", fmt.Sprintf("%s (%s)", fps, name))
	}
	add("reel", exrmeta.ReelName(h))
	add("image counter", exrmeta.ImageCounter(h))

	cam := exrmeta.GetCameraInfo(h)
	add("camera", strings.TrimSpace(cam.Make+" "+cam.Model))
	add("camera serial", cam.SerialNumber)
	lens := exrmeta.GetLensInfo(h)
	add("lens", strings.TrimSpace(lens.Make+" "+lens.Model))
	addFloat("aperture", exrmeta.Aperture(h), "")
	addFloat("t-stop", exrmeta.TStop(h), "")
	addFloat("iso", exrmeta.ISOSpeed(h), "")
	addFloat("exposure", exrmeta.ExpTime(h), "s")
	addFloat("shutter angle", exrmeta.ShutterAngle(h), "deg")
	addFloat("focal length", exrmeta.NominalFocalLength(h), "mm")
	addFloat("focus", exrmeta.Focus(h), "m")
	if geo := exrmeta.GetGeoLocation(h); geo != nil {
		add("location", fmt.Sprintf("%g, %g (%g m)", geo.Latitude, geo.Longitude, geo.Altitude))
	}
	addFloat("white luminance", exrmeta.WhiteLuminance(h), "cd/m2")
	if c := exrmeta.GetChromaticities(h); c != nil {
		add("chromaticities", fmt.Sprintf("R %g,%g G %g,%g B %g,%g W %g,%g",
			c.RedX, c.RedY, c.GreenX, c.GreenY, c.BlueX, c.BlueY, c.WhiteX, c.WhiteY))
	}
	if e, ok := exrmeta.GetEnvMap(h); ok {
		add("environment map", e.String())
	}

	if exrid.HasManifest(h) {
		m, err := exrid.GetManifest(h)
		if err != nil {
			add("id manifest", "unreadable: "+err.Error())
		} else {
			for _, g := range m.Groups {
				add("id manifest", fmt.Sprintf("%s: %d entries (%s)",
					strings.Join(g.Channels, ", "), len(g.Entries), g.HashScheme))
			}
		}
	}

	if len(lines) == 0 {
		return
	}
	fmt.Fprintln(w, "  metadata:")
	for _, l := range lines {
		fmt.Fprintln(w, l)
	}
}

func printResult(stdout, stderr io.Writer, filename string, result *exrutil.ValidationResult, quiet bool) {
	if quiet {
		for _, msg := range result.Errors {
			fmt.Fprintf(stderr, "%s: %s\n", filename, msg)
		}
		return
	}
	if result.Valid {
		fmt.Fprintf(stdout, "%s: OK\n", filename)
	} else {
		fmt.Fprintf(stdout, "%s: INVALID\n", filename)
	}
	for _, msg := range result.Errors {
		fmt.Fprintf(stdout, "  [ERROR] %s\n", msg)
	}
	for _, msg := range result.Warnings {
		fmt.Fprintf(stdout, "  [WARNING] %s\n", msg)
	}
}

func formatBox(b exr.Box2i) string {
	return fmt.Sprintf("(%d, %d) - (%d, %d)", b.Min.X, b.Min.Y, b.Max.X, b.Max.Y)
}

func formatLayers(layers []string) string {
	out := make([]string, len(layers))
	for i, l := range layers {
		if l == "" {
			l = "(base)"
		}
		out[i] = l
	}
	return strings.Join(out, ", ")
}

func formatValue(v exr.Value) string {
	switch v := v.(type) {
	case exr.String:
		return fmt.Sprintf("%q", string(v))
	case exr.StringVector:
		return fmt.Sprintf("%q", []string(v))
	case exr.Box2i:
		return formatBox(v)
	case exr.ChannelList:
		return fmt.Sprintf("%d channels", v.Len())
	case exr.Raw:
		return fmt.Sprintf("%d bytes", len(v.Bytes()))
	default:
		return fmt.Sprint(v)
	}
}
