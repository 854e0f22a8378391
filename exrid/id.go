// Package exrid reads ID manifests from OpenEXR headers and resolves the
// IDs stored in decoded images back to names.
//
// ID Manifests map numeric IDs (stored in image channels) to text strings
// (object names, material names, etc.). Two sources are understood:
//
//   - the binary idmanifest attribute
//   - Cryptomatte metadata (cryptomatte/<key>/name and .../manifest)
//
// Example usage:
//
//	img, _ := exr.DecodeFile("beauty.exr")
//	manifest, _ := exrid.GetManifest(img.Header())
//	group := manifest.LookupChannel("CryptoObject")
//	for _, c := range exrid.CryptomatteCoverage(img, group, 10, 20) {
//		fmt.Println(c.Name, c.Coverage)
//	}
package exrid

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/daspviewer/go-exrscan/exr"
	"github.com/klauspost/compress/zlib"
)

// ===========================================
// Types
// ===========================================

// IDLifetime indicates how long an ID-to-name mapping is valid.
type IDLifetime int

const (
	// LifetimeFrame means mapping may change every frame.
	LifetimeFrame IDLifetime = 0
	// LifetimeShot means mapping is consistent within a shot.
	LifetimeShot IDLifetime = 1
	// LifetimeStable means mapping is consistent forever.
	LifetimeStable IDLifetime = 2
)

// HashScheme identifies how IDs are generated from names.
type HashScheme string

const (
	// HashUnknown means the hash scheme is not known.
	HashUnknown HashScheme = "unknown"
	// HashNone means there is no relationship between text and ID.
	HashNone HashScheme = "none"
	// HashCustom means a custom hashing scheme is used.
	HashCustom HashScheme = "custom"
	// HashMurmur3_32 means MurmurHash3 32-bit is used (Cryptomatte standard).
	HashMurmur3_32 HashScheme = "MurmurHash3_32"
	// HashMurmur3_64 means MurmurHash3 64-bit is used.
	HashMurmur3_64 HashScheme = "MurmurHash3_64"
)

// EncodingScheme identifies how IDs are stored in channels.
type EncodingScheme string

const (
	// EncodeID means 32-bit ID in single UINT channel.
	EncodeID EncodingScheme = "id"
	// EncodeID2 means 64-bit ID in two channels, low word first.
	EncodeID2 EncodingScheme = "id2"
)

// ChannelGroupManifest describes ID mappings for a group of channels.
type ChannelGroupManifest struct {
	// Channels lists the channel names this manifest applies to. For
	// Cryptomatte groups it holds the layer name.
	Channels []string
	// Components lists the component names (e.g., "object", "material").
	Components []string
	// Lifetime indicates how long mappings are valid.
	Lifetime IDLifetime
	// HashScheme identifies how IDs are generated.
	HashScheme HashScheme
	// EncodingScheme identifies how IDs are stored.
	EncodingScheme EncodingScheme
	// Entries maps ID -> component values.
	Entries map[uint64][]string
}

// Manifest contains all ID manifests for a file.
type Manifest struct {
	Groups []ChannelGroupManifest
}

// ===========================================
// Attribute names
// ===========================================

const (
	// AttrIDManifest is the standard attribute name for ID manifests.
	AttrIDManifest = "idmanifest"
	// AttrCryptomatte is the prefix for Cryptomatte metadata attributes.
	AttrCryptomatte = "cryptomatte"
)

// ErrNoManifest is returned by GetManifest when the header carries no
// manifest of either kind.
var ErrNoManifest = errors.New("exrid: no ID manifest found")

// ===========================================
// Manifest Lookup
// ===========================================

// Lookup finds the text values for a given ID.
func (g *ChannelGroupManifest) Lookup(id uint64) ([]string, bool) {
	values, ok := g.Entries[id]
	return values, ok
}

// LookupChannel finds the manifest for a specific channel.
func (m *Manifest) LookupChannel(channel string) *ChannelGroupManifest {
	for i := range m.Groups {
		for _, ch := range m.Groups[i].Channels {
			if ch == channel {
				return &m.Groups[i]
			}
		}
	}
	return nil
}

// ===========================================
// Header I/O
// ===========================================

// HasManifest checks if the header contains an ID manifest.
func HasManifest(h *exr.Header) bool {
	if _, ok := h.Get(AttrIDManifest); ok {
		return true
	}
	for _, name := range h.Names() {
		if strings.HasPrefix(name, AttrCryptomatte+"/") && strings.HasSuffix(name, "/manifest") {
			return true
		}
	}
	return false
}

// GetManifest extracts the ID manifest from a header. The idmanifest
// attribute takes precedence over Cryptomatte metadata.
func GetManifest(h *exr.Header) (*Manifest, error) {
	if attr, ok := h.Get(AttrIDManifest); ok {
		raw, ok := attr.Value.(exr.Raw)
		if !ok {
			return nil, fmt.Errorf("exrid: %s attribute has type %s", AttrIDManifest, attr.Type)
		}
		return decodeManifest(raw.Bytes())
	}

	manifest := &Manifest{}
	cryptomattes := make(map[string]*ChannelGroupManifest)
	var keys []string

	for _, name := range h.Names() {
		// cryptomatte/<key>/<field>
		parts := strings.Split(name, "/")
		if len(parts) != 3 || parts[0] != AttrCryptomatte {
			continue
		}
		key, field := parts[1], parts[2]

		group := cryptomattes[key]
		if group == nil {
			group = &ChannelGroupManifest{
				Components:     []string{"name"},
				Lifetime:       LifetimeStable,
				HashScheme:     HashMurmur3_32,
				EncodingScheme: EncodeID,
				Entries:        make(map[uint64][]string),
			}
			cryptomattes[key] = group
			keys = append(keys, key)
		}

		attr, _ := h.Get(name)
		value, ok := attr.Value.(exr.String)
		if !ok {
			continue
		}
		switch field {
		case "name":
			group.Channels = append(group.Channels, string(value))
		case "manifest":
			if err := parseCryptomatteManifest(string(value), group.Entries); err != nil {
				return nil, fmt.Errorf("exrid: %s: %w", name, err)
			}
		}
	}

	// Names() is sorted, so keys already are.
	for _, key := range keys {
		manifest.Groups = append(manifest.Groups, *cryptomattes[key])
	}
	if len(manifest.Groups) == 0 {
		return nil, ErrNoManifest
	}
	return manifest, nil
}

// parseCryptomatteManifest reads a JSON object mapping names to
// hexadecimal hash strings.
func parseCryptomatteManifest(data string, entries map[uint64][]string) error {
	var m map[string]string
	if err := json.Unmarshal([]byte(data), &m); err != nil {
		return err
	}
	for name, hexID := range m {
		id, err := parseHexID(hexID)
		if err != nil {
			return fmt.Errorf("entry %q: %w", name, err)
		}
		entries[uint64(id)] = []string{name}
	}
	return nil
}

// parseHexID parses the 8-digit hex form of a 32-bit ID.
func parseHexID(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 16, 32)
	return uint32(v), err
}

// ===========================================
// Pixel lookup
// ===========================================

// IDAt returns the ID stored at pixel (x, y) of img in g's channels.
// UINT channels hold the ID directly; FLOAT channels hold the bits of the
// ID, as Cryptomatte writes them.
func IDAt(img *exr.Image, g *ChannelGroupManifest, x, y int) (uint64, error) {
	need := 1
	if g.EncodingScheme == EncodeID2 {
		need = 2
	}
	if len(g.Channels) < need {
		return 0, fmt.Errorf("exrid: %s encoding needs %d channels, group has %d", g.EncodingScheme, need, len(g.Channels))
	}

	var id uint64
	for i := 0; i < need; i++ {
		word, err := idWord(img, g.Channels[i], x, y)
		if err != nil {
			return 0, err
		}
		id |= uint64(word) << (32 * i)
	}
	return id, nil
}

func idWord(img *exr.Image, channel string, x, y int) (uint32, error) {
	cd, ok := img.Channel(channel)
	if !ok {
		return 0, fmt.Errorf("exrid: %w: %q", exr.ErrChannelNotFound, channel)
	}
	switch cd.Type() {
	case exr.PixelTypeUint:
		return cd.Uint32At(x, y), nil
	case exr.PixelTypeFloat:
		return math.Float32bits(cd.Float32At(x, y)), nil
	default:
		return 0, fmt.Errorf("exrid: channel %q is %s, IDs need UINT or FLOAT", channel, cd.Type())
	}
}

// LookupAt resolves the ID at pixel (x, y) through g.
func (g *ChannelGroupManifest) LookupAt(img *exr.Image, x, y int) ([]string, bool, error) {
	id, err := IDAt(img, g, x, y)
	if err != nil {
		return nil, false, err
	}
	values, ok := g.Lookup(id)
	return values, ok, nil
}

// Coverage is one ID contributing to a Cryptomatte pixel.
type Coverage struct {
	ID       uint32
	Name     string // empty when the manifest has no entry for ID
	Coverage float32
}

// CryptomatteCoverage returns the IDs covering pixel (x, y) for the
// Cryptomatte layer named by g.Channels[0], most covering first. Rank
// channels are read as <layer>00.R/G/B/A, <layer>01.R/G/B/A and so on
// until one is missing; each holds two (ID, coverage) pairs.
func CryptomatteCoverage(img *exr.Image, g *ChannelGroupManifest, x, y int) []Coverage {
	if len(g.Channels) == 0 {
		return nil
	}
	layer := g.Channels[0]

	var out []Coverage
	for rank := 0; ; rank++ {
		prefix := fmt.Sprintf("%s%02d.", layer, rank)
		if _, ok := img.Channel(prefix + "R"); !ok {
			break
		}
		for _, pair := range [2][2]string{{"R", "G"}, {"B", "A"}} {
			idc, ok1 := img.Channel(prefix + pair[0])
			covc, ok2 := img.Channel(prefix + pair[1])
			if !ok1 || !ok2 {
				continue
			}
			cov := covc.Float32At(x, y)
			if cov == 0 {
				continue
			}
			id := math.Float32bits(idc.Float32At(x, y))
			c := Coverage{ID: id, Coverage: cov}
			if values, ok := g.Lookup(uint64(id)); ok && len(values) > 0 {
				c.Name = values[0]
			}
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Coverage > out[j].Coverage })
	return out
}

// ===========================================
// Cryptomatte hashing
// ===========================================

// CryptomatteHash computes the MurmurHash3 ID for a name (Cryptomatte convention).
// This returns the hash as a uint32 that can be reinterpreted as a float32.
//
// The hash is modified to avoid IEEE 754 denormalized floats, NaN, and Infinity
// by XORing bit 23 when the exponent field is 0 or 255.
func CryptomatteHash(name string) uint32 {
	hash := MurmurHash3_32([]byte(name), 0)
	exp := (hash >> 23) & 0xFF
	if exp == 0 || exp == 255 {
		hash ^= 1 << 23
	}
	return hash
}

// CryptomatteHashFloat computes the Cryptomatte hash and returns it as a float32.
// The hash is reinterpreted as a float32 (not converted).
func CryptomatteHashFloat(name string) float32 {
	return math.Float32frombits(CryptomatteHash(name))
}

// MurmurHash3_32 computes a 32-bit MurmurHash3 hash.
// This is the standard hash used by Cryptomatte.
func MurmurHash3_32(data []byte, seed uint32) uint32 {
	const c1 = 0xcc9e2d51
	const c2 = 0x1b873593
	const r1 = 15
	const r2 = 13
	const m = 5
	const n = 0xe6546b64

	h := seed
	length := len(data)
	nblocks := length / 4

	// Body
	for i := 0; i < nblocks; i++ {
		k := binary.LittleEndian.Uint32(data[i*4:])

		k *= c1
		k = rotl32(k, r1)
		k *= c2

		h ^= k
		h = rotl32(h, r2)
		h = h*m + n
	}

	// Tail
	tail := data[nblocks*4:]
	var k uint32

	switch len(tail) {
	case 3:
		k ^= uint32(tail[2]) << 16
		fallthrough
	case 2:
		k ^= uint32(tail[1]) << 8
		fallthrough
	case 1:
		k ^= uint32(tail[0])
		k *= c1
		k = rotl32(k, r1)
		k *= c2
		h ^= k
	}

	// Finalization
	h ^= uint32(length)
	h = fmix32(h)

	return h
}

func rotl32(x uint32, r int) uint32 {
	return (x << r) | (x >> (32 - r))
}

func fmix32(h uint32) uint32 {
	h ^= h >> 16
	h *= 0x85ebca6b
	h ^= h >> 13
	h *= 0xc2b2ae35
	h ^= h >> 16
	return h
}

// ===========================================
// idmanifest decoding
// ===========================================

const manifestVersion uint32 = 1

// Limits on decoded manifests.
const (
	maxStringLength = 16 * 1024 * 1024
	maxListSize     = 1024 * 1024
)

func decodeManifest(data []byte) (*Manifest, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("exrid: idmanifest: %w", err)
	}
	defer zr.Close()
	r := &manifestReader{r: zr}

	if version := r.uint32(); r.err == nil && version != manifestVersion {
		return nil, fmt.Errorf("exrid: unsupported manifest version: %d", version)
	}
	numGroups := r.uint32()
	if r.err == nil && numGroups > maxListSize {
		return nil, fmt.Errorf("exrid: group count %d exceeds maximum %d", numGroups, maxListSize)
	}

	manifest := &Manifest{}
	for i := uint32(0); i < numGroups && r.err == nil; i++ {
		group := ChannelGroupManifest{
			Channels:   r.stringList(),
			Components: r.stringList(),
		}
		group.Lifetime = IDLifetime(r.uint8())
		group.HashScheme = HashScheme(r.string())
		group.EncodingScheme = EncodingScheme(r.string())

		numEntries := r.uint64()
		if r.err == nil && numEntries > maxListSize {
			return nil, fmt.Errorf("exrid: entry count %d exceeds maximum %d", numEntries, maxListSize)
		}
		group.Entries = make(map[uint64][]string)
		for j := uint64(0); j < numEntries && r.err == nil; j++ {
			id := r.uint64()
			group.Entries[id] = r.stringList()
		}
		manifest.Groups = append(manifest.Groups, group)
	}

	if r.err != nil {
		return nil, fmt.Errorf("exrid: idmanifest: %w", r.err)
	}
	return manifest, nil
}

// manifestReader reads little-endian fields, keeping the first error.
type manifestReader struct {
	r   io.Reader
	err error
	buf [8]byte
}

func (mr *manifestReader) read(n int) []byte {
	if mr.err != nil {
		return mr.buf[:n]
	}
	if _, err := io.ReadFull(mr.r, mr.buf[:n]); err != nil {
		mr.err = err
	}
	return mr.buf[:n]
}

func (mr *manifestReader) uint8() uint8   { return mr.read(1)[0] }
func (mr *manifestReader) uint32() uint32 { return binary.LittleEndian.Uint32(mr.read(4)) }
func (mr *manifestReader) uint64() uint64 { return binary.LittleEndian.Uint64(mr.read(8)) }

func (mr *manifestReader) string() string {
	length := mr.uint32()
	if mr.err != nil {
		return ""
	}
	if length > maxStringLength {
		mr.err = fmt.Errorf("string length %d exceeds maximum %d", length, maxStringLength)
		return ""
	}
	data := make([]byte, length)
	if _, err := io.ReadFull(mr.r, data); err != nil {
		mr.err = err
		return ""
	}
	return string(data)
}

func (mr *manifestReader) stringList() []string {
	count := mr.uint32()
	if mr.err != nil {
		return nil
	}
	if count > maxListSize {
		mr.err = fmt.Errorf("list count %d exceeds maximum %d", count, maxListSize)
		return nil
	}
	list := make([]string, 0, min(count, 1024))
	for i := uint32(0); i < count && mr.err == nil; i++ {
		list = append(list, mr.string())
	}
	return list
}
