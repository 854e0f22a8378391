// Package exrmeta provides typed accessors for standard OpenEXR metadata
// attributes.
//
// The core exr package decodes only the attribute types it needs to decode
// pixels and keeps the rest as exr.Raw. This package reads the standard
// production, camera and display attributes from a decoded *exr.Header,
// parsing raw values such as rational frame rates and chromaticities on
// demand. Missing or mistyped attributes read as the zero value.
//
// Example usage:
//
//	img, _ := exr.DecodeFile("shot.exr")
//	if fps := exrmeta.FramesPerSecond(img.Header()); fps != nil {
//		fmt.Println(exrmeta.FrameRateName(*fps))
//	}
package exrmeta

import (
	"fmt"
	"strings"

	"github.com/daspviewer/go-exrscan/exr"
	"github.com/daspviewer/go-exrscan/internal/xdr"
)

// Standard attribute names
const (
	// Production metadata
	AttrOwner           = "owner"
	AttrComments        = "comments"
	AttrCapDate         = "capDate"
	AttrUTCOffset       = "utcOffset"
	AttrFramesPerSecond = "framesPerSecond"
	AttrReelName        = "reelName"
	AttrImageCounter    = "imageCounter"

	// Environment/texture
	AttrEnvMap    = "envmap"
	AttrWrapModes = "wrapmodes"

	// Camera properties
	AttrAperture     = "aperture"
	AttrFocus        = "focus"
	AttrISOSpeed     = "isoSpeed"
	AttrExpTime      = "expTime"
	AttrShutterAngle = "shutterAngle"
	AttrTStop        = "tStop"

	// Lens properties
	AttrNominalFocalLength   = "nominalFocalLength"
	AttrEffectiveFocalLength = "effectiveFocalLength"
	AttrPinholeFocalLength   = "pinholeFocalLength"

	// Camera identification
	AttrCameraMake            = "cameraMake"
	AttrCameraModel           = "cameraModel"
	AttrCameraSerialNumber    = "cameraSerialNumber"
	AttrCameraFirmwareVersion = "cameraFirmwareVersion"
	AttrCameraUUID            = "cameraUuid"
	AttrCameraLabel           = "cameraLabel"
	AttrCameraCCTSetting      = "cameraCCTSetting"
	AttrCameraTintSetting     = "cameraTintSetting"
	AttrCameraColorBalance    = "cameraColorBalance"

	// Lens identification
	AttrLensMake            = "lensMake"
	AttrLensModel           = "lensModel"
	AttrLensSerialNumber    = "lensSerialNumber"
	AttrLensFirmwareVersion = "lensFirmwareVersion"

	// Geolocation
	AttrLongitude = "longitude"
	AttrLatitude  = "latitude"
	AttrAltitude  = "altitude"

	// Display/color
	AttrWhiteLuminance = "whiteLuminance"
	AttrXDensity       = "xDensity"
	AttrAdoptedNeutral = "adoptedNeutral"
	AttrChromaticities = "chromaticities"

	// 3D transforms
	AttrWorldToCamera = "worldToCamera"
	AttrWorldToNDC    = "worldToNDC"

	// Sensor metadata
	AttrSensorCenterOffset         = "sensorCenterOffset"
	AttrSensorOverallDimensions    = "sensorOverallDimensions"
	AttrSensorPhotositePitch       = "sensorPhotositePitch"
	AttrSensorAcquisitionRectangle = "sensorAcquisitionRectangle"
)

// Attribute type names of the values this package parses from exr.Raw.
const (
	TypeRational       exr.AttributeType = "rational"
	TypeChromaticities exr.AttributeType = "chromaticities"
	TypeEnvmap         exr.AttributeType = "envmap"
	TypeM44f           exr.AttributeType = "m44f"
)

// ===========================================
// Raw value types
// ===========================================

// Rational is a signed numerator over an unsigned denominator.
type Rational struct {
	Num   int32
	Denom uint32
}

func (r Rational) String() string {
	return fmt.Sprintf("%d/%d", r.Num, r.Denom)
}

// Chromaticities holds the CIE xy coordinates of the RGB primaries and
// the white point.
type Chromaticities struct {
	RedX, RedY     float32
	GreenX, GreenY float32
	BlueX, BlueY   float32
	WhiteX, WhiteY float32
}

// M44f is a 4x4 matrix in row-major order.
type M44f [16]float32

// rawReader returns a reader over the value of the named attribute when
// it was kept raw with type typ.
func rawReader(h *exr.Header, name string, typ exr.AttributeType) (*xdr.Reader, bool) {
	attr, ok := h.Get(name)
	if !ok {
		return nil, false
	}
	raw, ok := attr.Value.(exr.Raw)
	if !ok || raw.AttributeType() != typ {
		return nil, false
	}
	return xdr.NewReader(raw.Bytes()), true
}

// readFloats reads exactly n floats that fill r.
func readFloats(r *xdr.Reader, n int) ([]float32, bool) {
	if r.Len() != 4*n {
		return nil, false
	}
	out := make([]float32, n)
	for i := range out {
		out[i], _ = r.ReadFloat32()
	}
	return out, true
}

// ===========================================
// Environment Maps
// ===========================================

// EnvMap specifies the type of environment map.
type EnvMap uint8

const (
	// EnvMapLatLong is a latitude-longitude environment map.
	EnvMapLatLong EnvMap = 0
	// EnvMapCube is a cube-face environment map.
	EnvMapCube EnvMap = 1
)

func (e EnvMap) String() string {
	switch e {
	case EnvMapLatLong:
		return "latlong"
	case EnvMapCube:
		return "cube"
	default:
		return fmt.Sprintf("EnvMap(%d)", uint8(e))
	}
}

// GetEnvMap returns the environment map type.
// Returns EnvMapLatLong and false if not set.
func GetEnvMap(h *exr.Header) (EnvMap, bool) {
	r, ok := rawReader(h, AttrEnvMap, TypeEnvmap)
	if !ok || r.Len() != 1 {
		return EnvMapLatLong, false
	}
	b, _ := r.ReadUint8()
	return EnvMap(b), true
}

// ===========================================
// Wrap Modes
// ===========================================

// WrapMode specifies texture wrapping behavior.
type WrapMode uint8

const (
	WrapClamp  WrapMode = 0 // Clamp to edge
	WrapRepeat WrapMode = 1 // Tile/repeat
	WrapBlack  WrapMode = 2 // Black outside bounds
	WrapMirror WrapMode = 3 // Mirror at edges
)

// WrapModes specifies horizontal and vertical wrap modes.
type WrapModes struct {
	Horizontal WrapMode
	Vertical   WrapMode
}

var wrapModeNames = map[string]WrapMode{
	"clamp":    WrapClamp,
	"periodic": WrapRepeat,
	"black":    WrapBlack,
	"mirror":   WrapMirror,
}

// GetWrapModes returns the texture wrap modes.
// Returns nil if not set.
func GetWrapModes(h *exr.Header) *WrapModes {
	s, ok := getString(h, AttrWrapModes)
	if !ok {
		return nil
	}
	return parseWrapModes(s)
}

// parseWrapModes parses the "horizontal,vertical" form.
func parseWrapModes(s string) *WrapModes {
	hName, vName, ok := strings.Cut(s, ",")
	if !ok {
		return nil
	}
	hMode, hOK := wrapModeNames[hName]
	vMode, vOK := wrapModeNames[vName]
	if !hOK || !vOK {
		return nil
	}
	return &WrapModes{Horizontal: hMode, Vertical: vMode}
}

// ===========================================
// Production Metadata
// ===========================================

// Owner returns the file owner/creator, or empty string if not set.
func Owner(h *exr.Header) string {
	s, _ := getString(h, AttrOwner)
	return s
}

// Comments returns the file comments, or empty string if not set.
func Comments(h *exr.Header) string {
	s, _ := getString(h, AttrComments)
	return s
}

// CapDate returns the capture date, or empty string if not set.
func CapDate(h *exr.Header) string {
	s, _ := getString(h, AttrCapDate)
	return s
}

// UTCOffset returns the UTC offset in seconds, or 0 if not set.
func UTCOffset(h *exr.Header) float32 {
	return getFloat(h, AttrUTCOffset)
}

// FramesPerSecond returns the frame rate, or nil if not set.
func FramesPerSecond(h *exr.Header) *Rational {
	r, ok := rawReader(h, AttrFramesPerSecond, TypeRational)
	if !ok || r.Len() != 8 {
		return nil
	}
	num, _ := r.ReadInt32()
	denom, _ := r.ReadUint32()
	return &Rational{Num: num, Denom: denom}
}

// ReelName returns the film reel name, or empty string if not set.
func ReelName(h *exr.Header) string {
	s, _ := getString(h, AttrReelName)
	return s
}

// ImageCounter returns the frame/image counter, or empty string if not set.
func ImageCounter(h *exr.Header) string {
	s, _ := getString(h, AttrImageCounter)
	return s
}

// ===========================================
// Standard Frame Rates
// ===========================================

// Standard frame rates as Rational values.
var (
	// Film frame rates
	FPS24    = Rational{Num: 24, Denom: 1}       // 24 fps - Standard cinema
	FPS23976 = Rational{Num: 24000, Denom: 1001} // 23.976 fps - NTSC film pulldown
	FPS48    = Rational{Num: 48, Denom: 1}       // 48 fps - High frame rate cinema

	// PAL frame rates
	FPS25 = Rational{Num: 25, Denom: 1} // 25 fps - PAL standard
	FPS50 = Rational{Num: 50, Denom: 1} // 50 fps - PAL high frame rate

	// NTSC frame rates
	FPS2997 = Rational{Num: 30000, Denom: 1001} // 29.97 fps - NTSC standard
	FPS30   = Rational{Num: 30, Denom: 1}       // 30 fps - Non-drop NTSC
	FPS5994 = Rational{Num: 60000, Denom: 1001} // 59.94 fps - NTSC high frame rate

	// High frame rates
	FPS60  = Rational{Num: 60, Denom: 1}  // 60 fps - Gaming/HFR video
	FPS120 = Rational{Num: 120, Denom: 1} // 120 fps - High frame rate gaming
)

// RationalToFloat converts a Rational to a float64.
func RationalToFloat(r Rational) float64 {
	if r.Denom == 0 {
		return 0
	}
	return float64(r.Num) / float64(r.Denom)
}

// IsDropFrame returns true if the frame rate is a drop-frame rate.
// Drop-frame rates are NTSC-derived rates like 23.976, 29.97, and 59.94.
func IsDropFrame(r Rational) bool {
	if r.Denom == 1001 {
		return r.Num == 24000 || r.Num == 30000 || r.Num == 60000
	}
	return false
}

// FrameRateName returns a human-readable name for common frame rates.
// Returns empty string for non-standard rates.
func FrameRateName(r Rational) string {
	switch r {
	case FPS24:
		return "24 fps (Cinema)"
	case FPS23976:
		return "23.976 fps (NTSC Film)"
	case FPS25:
		return "25 fps (PAL)"
	case FPS2997:
		return "29.97 fps (NTSC)"
	case FPS30:
		return "30 fps"
	case FPS48:
		return "48 fps (HFR Cinema)"
	case FPS50:
		return "50 fps (PAL HFR)"
	case FPS5994:
		return "59.94 fps (NTSC HFR)"
	case FPS60:
		return "60 fps"
	case FPS120:
		return "120 fps"
	default:
		return ""
	}
}

// ===========================================
// Camera Properties
// ===========================================

// Aperture returns the lens aperture (f-number), or 0 if not set.
func Aperture(h *exr.Header) float32 {
	return getFloat(h, AttrAperture)
}

// Focus returns the focus distance in meters, or 0 if not set.
func Focus(h *exr.Header) float32 {
	return getFloat(h, AttrFocus)
}

// ISOSpeed returns the ISO sensitivity, or 0 if not set.
func ISOSpeed(h *exr.Header) float32 {
	return getFloat(h, AttrISOSpeed)
}

// ExpTime returns the exposure time in seconds, or 0 if not set.
func ExpTime(h *exr.Header) float32 {
	return getFloat(h, AttrExpTime)
}

// ShutterAngle returns the shutter angle in degrees, or 0 if not set.
func ShutterAngle(h *exr.Header) float32 {
	return getFloat(h, AttrShutterAngle)
}

// TStop returns the T-stop value, or 0 if not set.
func TStop(h *exr.Header) float32 {
	return getFloat(h, AttrTStop)
}

// ===========================================
// Lens Properties
// ===========================================

// NominalFocalLength returns the nominal focal length in mm, or 0 if not set.
func NominalFocalLength(h *exr.Header) float32 {
	return getFloat(h, AttrNominalFocalLength)
}

// EffectiveFocalLength returns the effective focal length in mm, or 0 if not set.
func EffectiveFocalLength(h *exr.Header) float32 {
	return getFloat(h, AttrEffectiveFocalLength)
}

// PinholeFocalLength returns the pinhole focal length in mm, or 0 if not set.
func PinholeFocalLength(h *exr.Header) float32 {
	return getFloat(h, AttrPinholeFocalLength)
}

// ===========================================
// Camera Identification
// ===========================================

// CameraInfo contains camera identification metadata.
type CameraInfo struct {
	Make            string
	Model           string
	SerialNumber    string
	FirmwareVersion string
	UUID            string
	Label           string
	CCTSetting      float32
	TintSetting     float32
	ColorBalance    exr.V2f
}

// GetCameraInfo retrieves all camera identification attributes.
func GetCameraInfo(h *exr.Header) CameraInfo {
	info := CameraInfo{
		CCTSetting:  getFloat(h, AttrCameraCCTSetting),
		TintSetting: getFloat(h, AttrCameraTintSetting),
	}
	info.Make, _ = getString(h, AttrCameraMake)
	info.Model, _ = getString(h, AttrCameraModel)
	info.SerialNumber, _ = getString(h, AttrCameraSerialNumber)
	info.FirmwareVersion, _ = getString(h, AttrCameraFirmwareVersion)
	info.UUID, _ = getString(h, AttrCameraUUID)
	info.Label, _ = getString(h, AttrCameraLabel)
	if v := getV2f(h, AttrCameraColorBalance); v != nil {
		info.ColorBalance = *v
	}
	return info
}

// ===========================================
// Lens Identification
// ===========================================

// LensInfo contains lens identification metadata.
type LensInfo struct {
	Make            string
	Model           string
	SerialNumber    string
	FirmwareVersion string
}

// GetLensInfo retrieves all lens identification attributes.
func GetLensInfo(h *exr.Header) LensInfo {
	var info LensInfo
	info.Make, _ = getString(h, AttrLensMake)
	info.Model, _ = getString(h, AttrLensModel)
	info.SerialNumber, _ = getString(h, AttrLensSerialNumber)
	info.FirmwareVersion, _ = getString(h, AttrLensFirmwareVersion)
	return info
}

// ===========================================
// Geolocation
// ===========================================

// GeoLocation contains geographic coordinates.
type GeoLocation struct {
	Longitude float32 // degrees
	Latitude  float32 // degrees
	Altitude  float32 // meters
}

// GetGeoLocation returns the geographic location, or nil if neither
// latitude nor longitude is set.
func GetGeoLocation(h *exr.Header) *GeoLocation {
	_, hasLat := h.Get(AttrLatitude)
	_, hasLon := h.Get(AttrLongitude)
	if !hasLat && !hasLon {
		return nil
	}
	return &GeoLocation{
		Longitude: getFloat(h, AttrLongitude),
		Latitude:  getFloat(h, AttrLatitude),
		Altitude:  getFloat(h, AttrAltitude),
	}
}

// ===========================================
// Display/Color
// ===========================================

// WhiteLuminance returns the white luminance in cd/m², or 0 if not set.
func WhiteLuminance(h *exr.Header) float32 {
	return getFloat(h, AttrWhiteLuminance)
}

// XDensity returns the horizontal pixel density in pixels per inch, or 0 if not set.
func XDensity(h *exr.Header) float32 {
	return getFloat(h, AttrXDensity)
}

// AdoptedNeutral returns the adopted neutral white point, or nil if not set.
func AdoptedNeutral(h *exr.Header) *exr.V2f {
	return getV2f(h, AttrAdoptedNeutral)
}

// GetChromaticities returns the color primaries and white point, or nil if not set.
func GetChromaticities(h *exr.Header) *Chromaticities {
	r, ok := rawReader(h, AttrChromaticities, TypeChromaticities)
	if !ok {
		return nil
	}
	f, ok := readFloats(r, 8)
	if !ok {
		return nil
	}
	return &Chromaticities{
		RedX:   f[0],
		RedY:   f[1],
		GreenX: f[2],
		GreenY: f[3],
		BlueX:  f[4],
		BlueY:  f[5],
		WhiteX: f[6],
		WhiteY: f[7],
	}
}

// ===========================================
// 3D Transforms
// ===========================================

// WorldToCamera returns the world-to-camera transformation matrix, or nil if not set.
func WorldToCamera(h *exr.Header) *M44f {
	return getM44f(h, AttrWorldToCamera)
}

// WorldToNDC returns the world-to-NDC transformation matrix, or nil if not set.
func WorldToNDC(h *exr.Header) *M44f {
	return getM44f(h, AttrWorldToNDC)
}

// ===========================================
// Sensor Metadata
// ===========================================

// SensorCenterOffset returns the sensor center offset, or nil if not set.
func SensorCenterOffset(h *exr.Header) *exr.V2f {
	return getV2f(h, AttrSensorCenterOffset)
}

// SensorOverallDimensions returns the sensor overall dimensions, or nil if not set.
func SensorOverallDimensions(h *exr.Header) *exr.V2f {
	return getV2f(h, AttrSensorOverallDimensions)
}

// SensorPhotositePitch returns the sensor photosite pitch, or 0 if not set.
func SensorPhotositePitch(h *exr.Header) float32 {
	return getFloat(h, AttrSensorPhotositePitch)
}

// SensorAcquisitionRectangle returns the sensor acquisition rectangle, or nil if not set.
func SensorAcquisitionRectangle(h *exr.Header) *exr.Box2i {
	attr, ok := h.Get(AttrSensorAcquisitionRectangle)
	if !ok {
		return nil
	}
	if b, ok := attr.Value.(exr.Box2i); ok {
		return &b
	}
	return nil
}

// ===========================================
// Helper functions
// ===========================================

func getString(h *exr.Header, name string) (string, bool) {
	attr, ok := h.Get(name)
	if !ok {
		return "", false
	}
	s, ok := attr.Value.(exr.String)
	return string(s), ok
}

func getFloat(h *exr.Header, name string) float32 {
	attr, ok := h.Get(name)
	if !ok {
		return 0
	}
	if f, ok := attr.Value.(exr.Float); ok {
		return float32(f)
	}
	return 0
}

func getV2f(h *exr.Header, name string) *exr.V2f {
	attr, ok := h.Get(name)
	if !ok {
		return nil
	}
	if v, ok := attr.Value.(exr.V2f); ok {
		return &v
	}
	return nil
}

func getM44f(h *exr.Header, name string) *M44f {
	r, ok := rawReader(h, name, TypeM44f)
	if !ok {
		return nil
	}
	f, ok := readFloats(r, 16)
	if !ok {
		return nil
	}
	var m M44f
	copy(m[:], f)
	return &m
}
