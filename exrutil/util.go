// Package exrutil provides EXR-specific utility functions.
//
// This package offers higher-level operations on top of the exr decoder,
// including file information, channel extraction, validation and
// comparison.
//
// Example usage:
//
//	info, _ := exrutil.GetFileInfo("render.exr")
//	fmt.Printf("Size: %dx%d, Channels: %v\n", info.Width, info.Height, info.Channels)
//
//	img, _ := exr.DecodeFile("render.exr")
//	depth, _ := exrutil.ExtractChannel(img, "Z")
package exrutil

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/daspviewer/go-exrscan/exr"
)

// ===========================================
// File Information
// ===========================================

// FileInfo provides a summary of an EXR file.
type FileInfo struct {
	Path        string
	Width       int
	Height      int
	DataWindow  exr.Box2i
	Compression exr.Compression
	LineOrder   exr.LineOrder
	Blocks      int
	Channels    []string
	Layers      []string
	Views       []string
	FileSize    int64
}

// GetFileInfo returns summary information about an EXR file. Only the
// header is read.
func GetFileInfo(path string) (*FileInfo, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	h, err := exr.ReadHeaderFile(path)
	if err != nil {
		return nil, err
	}

	dw := h.DataWindow()
	return &FileInfo{
		Path:        path,
		Width:       dw.Width(),
		Height:      dw.Height(),
		DataWindow:  dw,
		Compression: h.Compression(),
		LineOrder:   h.LineOrder(),
		Blocks:      h.BlockCount(),
		Channels:    h.Channels().Names(),
		Layers:      exr.Layers(h),
		Views:       h.MultiView(),
		FileSize:    stat.Size(),
	}, nil
}

// ===========================================
// Channel Utilities
// ===========================================

// ExtractChannel returns a single channel as a float32 slice at full data
// window resolution. Subsampled channels are replicated to cover every
// pixel; samples are converted to float32 regardless of storage type.
func ExtractChannel(img *exr.Image, channelName string) ([]float32, error) {
	cd, ok := img.Channel(channelName)
	if !ok {
		return nil, fmt.Errorf("exrutil: %w: %q", exr.ErrChannelNotFound, channelName)
	}

	sx, sy := cd.Sampling()
	if sx == 1 && sy == 1 {
		return cd.Float32s(), nil
	}

	width, height := img.Width(), img.Height()
	result := make([]float32, width*height)
	for y := 0; y < height; y++ {
		row := result[y*width : (y+1)*width]
		for x := range row {
			row[x] = cd.Float32At(x, y)
		}
	}
	return result, nil
}

// ExtractChannels extracts multiple channels, returning a map of channel name to float32 slice.
func ExtractChannels(img *exr.Image, channelNames ...string) (map[string][]float32, error) {
	result := make(map[string][]float32)

	for _, name := range channelNames {
		data, err := ExtractChannel(img, name)
		if err != nil {
			return nil, err
		}
		result[name] = data
	}

	return result, nil
}

// SplitLayers returns channel names grouped by layer (dot-separated prefix).
// Channels without a layer prefix are grouped under an empty string key.
func SplitLayers(h *exr.Header) map[string][]string {
	layers := make(map[string][]string)

	for _, full := range h.Channels().Names() {
		layer, name := "", full
		if idx := strings.LastIndex(full, "."); idx >= 0 {
			layer = full[:idx]
			name = full[idx+1:]
		}
		layers[layer] = append(layers[layer], name)
	}

	return layers
}

// ===========================================
// Validation
// ===========================================

// ValidationResult contains the results of file validation.
type ValidationResult struct {
	Valid    bool
	Warnings []string
	Errors   []string
}

// Limits above which ValidateFile warns.
const (
	largeDimension = 32768
	manyChannels   = 100
)

// ValidateFile fully decodes an EXR file and reports whether it is valid.
// A file that cannot be decoded yields Valid == false with the reason in
// Errors; the returned error is reserved for failures to access the file.
func ValidateFile(path string) (*ValidationResult, error) {
	result := &ValidationResult{Valid: true}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if stat.Size() < 8 {
		result.Valid = false
		result.Errors = append(result.Errors, "file too small to be valid EXR")
		return result, nil
	}

	img, err := exr.DecodeFile(path)
	if err != nil {
		result.Valid = false
		var de *exr.DecodeError
		if errors.As(err, &de) && de.Block >= 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("block %d is unreadable: %v", de.Block, de.Err))
		} else {
			result.Errors = append(result.Errors, fmt.Sprintf("cannot decode file: %v", err))
		}
		return result, nil
	}

	h := img.Header()
	cl := h.Channels()
	if cl.Len() == 0 {
		result.Warnings = append(result.Warnings, "no channels defined")
	}
	if img.Width() > largeDimension || img.Height() > largeDimension {
		result.Warnings = append(result.Warnings, "very large image dimensions")
	}
	if cl.Len() > manyChannels {
		result.Warnings = append(result.Warnings, fmt.Sprintf("large number of channels: %d", cl.Len()))
	}
	if dw, disp := h.DataWindow(), h.DisplayWindow(); dw != disp {
		result.Warnings = append(result.Warnings, fmt.Sprintf("data window %v differs from display window %v", dw, disp))
	}
	for _, name := range cl.Names() {
		cd, _ := img.Channel(name)
		if nonFinite := countNonFinite(cd.Float32s()); nonFinite > 0 {
			result.Warnings = append(result.Warnings, fmt.Sprintf("channel %q has %d NaN or infinite samples", name, nonFinite))
		}
	}

	return result, nil
}

func countNonFinite(samples []float32) int {
	n := 0
	for _, s := range samples {
		f := float64(s)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			n++
		}
	}
	return n
}

// ===========================================
// Comparison
// ===========================================

// CompareOptions configures file comparison behavior.
type CompareOptions struct {
	Tolerance      float32 // Maximum allowed difference for pixel values
	IgnoreMetadata bool    // If true, only compare pixel data
}

// CompareFiles checks if two EXR files have equivalent content.
// Returns true if files match within tolerance, along with any differences found.
func CompareFiles(path1, path2 string, opts CompareOptions) (bool, []string, error) {
	img1, err := exr.DecodeFile(path1)
	if err != nil {
		return false, nil, fmt.Errorf("cannot decode %s: %w", path1, err)
	}
	img2, err := exr.DecodeFile(path2)
	if err != nil {
		return false, nil, fmt.Errorf("cannot decode %s: %w", path2, err)
	}
	diffs := CompareImages(img1, img2, opts)
	return len(diffs) == 0, diffs, nil
}

// CompareImages returns the differences between two decoded images.
func CompareImages(img1, img2 *exr.Image, opts CompareOptions) []string {
	var diffs []string

	if img1.Width() != img2.Width() || img1.Height() != img2.Height() {
		diffs = append(diffs, fmt.Sprintf("dimensions differ: %dx%d vs %dx%d",
			img1.Width(), img1.Height(), img2.Width(), img2.Height()))
		return diffs
	}

	names1, names2 := img1.ChannelNames(), img2.ChannelNames()
	if len(names1) != len(names2) {
		diffs = append(diffs, fmt.Sprintf("channel count differs: %d vs %d", len(names1), len(names2)))
	}
	for _, name := range names2 {
		if _, ok := img1.Channel(name); !ok {
			diffs = append(diffs, fmt.Sprintf("channel %q in file2 but not file1", name))
		}
	}
	for _, name := range names1 {
		if _, ok := img2.Channel(name); !ok {
			diffs = append(diffs, fmt.Sprintf("channel %q in file1 but not file2", name))
		}
	}

	if !opts.IgnoreMetadata {
		h1, h2 := img1.Header(), img2.Header()
		if h1.Compression() != h2.Compression() {
			diffs = append(diffs, fmt.Sprintf("compression differs: %v vs %v",
				h1.Compression(), h2.Compression()))
		}
		if h1.DataWindow() != h2.DataWindow() {
			diffs = append(diffs, fmt.Sprintf("data window differs: %v vs %v",
				h1.DataWindow(), h2.DataWindow()))
		}
	}

	// Compare pixel data for common channels
	for _, name := range names1 {
		cd2, ok := img2.Channel(name)
		if !ok {
			continue
		}
		cd1, _ := img1.Channel(name)
		if cd1.Type() == exr.PixelTypeUint && cd2.Type() == exr.PixelTypeUint {
			if d := compareUint(img1.Width(), img1.Height(), cd1, cd2, opts.Tolerance); d != "" {
				diffs = append(diffs, fmt.Sprintf("channel %q: %s", name, d))
			}
			continue
		}
		data1, _ := ExtractChannel(img1, name)
		data2, _ := ExtractChannel(img2, name)

		maxDiff := float32(0)
		diffCount := 0
		for i := range data1 {
			a, b := data1[i], data2[i]
			if a == b || bothNaN(a, b) {
				continue
			}
			diff := a - b
			if diff < 0 {
				diff = -diff
			}
			// A NaN difference fails this test and is counted.
			if diff <= opts.Tolerance {
				continue
			}
			diffCount++
			if diff > maxDiff {
				maxDiff = diff
			}
		}

		if diffCount > 0 {
			diffs = append(diffs, fmt.Sprintf("channel %q: %d pixels differ (max diff: %f)",
				name, diffCount, maxDiff))
		}
	}

	return diffs
}

// compareUint compares two UINT channels exactly; float32 cannot hold
// every 32-bit ID.
func compareUint(width, height int, cd1, cd2 *exr.ChannelData, tolerance float32) string {
	var maxDiff uint32
	diffCount := 0
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			a, b := cd1.Uint32At(x, y), cd2.Uint32At(x, y)
			diff := a - b
			if b > a {
				diff = b - a
			}
			if diff == 0 || float64(diff) <= float64(tolerance) {
				continue
			}
			diffCount++
			maxDiff = max(maxDiff, diff)
		}
	}
	if diffCount == 0 {
		return ""
	}
	return fmt.Sprintf("%d pixels differ (max diff: %d)", diffCount, maxDiff)
}

func bothNaN(a, b float32) bool {
	return a != a && b != b
}
