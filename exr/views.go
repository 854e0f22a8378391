package exr

import (
	"slices"
	"strings"
)

// Standard view names for stereo images
const (
	ViewLeft  = "left"
	ViewRight = "right"
)

// AttrMultiView names the stringvector attribute that lists the views of a
// single-part multi-view image. The first view is the default view.
const AttrMultiView = "multiView"

// MultiView returns the views listed in the multiView attribute, or nil if
// the header has none.
func (h *Header) MultiView() []string {
	attr, ok := h.attrs[AttrMultiView]
	if !ok {
		return nil
	}
	sv, ok := attr.Value.(StringVector)
	if !ok {
		return nil
	}
	return append([]string(nil), sv...)
}

// ViewChannelName is a channel name split into its layer, view and base
// channel parts.
type ViewChannelName struct {
	Layer   string // Layer name (empty for no layer)
	View    string // View name (empty for default view)
	Channel string // Base channel name (R, G, B, A, etc.)
}

// ParseViewChannelName splits a channel name in layer.view.channel form.
// A component is taken as a view only when it appears in views.
// Examples with views [left right]:
//   - "R" -> {Layer: "", View: "", Channel: "R"}
//   - "left.R" -> {Layer: "", View: "left", Channel: "R"}
//   - "Image.left.R" -> {Layer: "Image", View: "left", Channel: "R"}
//   - "Image.R" -> {Layer: "Image", View: "", Channel: "R"}
func ParseViewChannelName(name string, views []string) ViewChannelName {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return ViewChannelName{Channel: name}
	}
	prefix, channel := name[:i], name[i+1:]

	layer, last := "", prefix
	if j := strings.LastIndexByte(prefix, '.'); j >= 0 {
		layer, last = prefix[:j], prefix[j+1:]
	}
	for _, v := range views {
		if last == v {
			return ViewChannelName{Layer: layer, View: v, Channel: channel}
		}
	}
	return ViewChannelName{Layer: prefix, Channel: channel}
}

// BuildViewChannelName constructs a channel name from components.
func BuildViewChannelName(layer, view, channel string) string {
	if layer == "" && view == "" {
		return channel
	}
	if layer == "" {
		return view + "." + channel
	}
	if view == "" {
		return layer + "." + channel
	}
	return layer + "." + view + "." + channel
}

// ViewChannels returns the channels that belong to view, in declaration
// order. Channels without a view component belong to the default view,
// which is the first entry of the multiView attribute.
func ViewChannels(h *Header, view string) []Channel {
	views := h.MultiView()
	defaultView := ""
	if len(views) > 0 {
		defaultView = views[0]
	}

	var result []Channel
	for _, ch := range h.channels.channels {
		parsed := ParseViewChannelName(ch.Name, views)
		if parsed.View == view || (view == defaultView && parsed.View == "") {
			result = append(result, ch)
		}
	}
	return result
}

// Layers returns the distinct layer names of the channels in h, in sorted
// order. The unnamed base layer is reported as "".
func Layers(h *Header) []string {
	views := h.MultiView()
	seen := make(map[string]bool)
	var layers []string
	for _, ch := range h.channels.channels {
		parsed := ParseViewChannelName(ch.Name, views)
		if !seen[parsed.Layer] {
			seen[parsed.Layer] = true
			layers = append(layers, parsed.Layer)
		}
	}
	slices.Sort(layers)
	return layers
}
