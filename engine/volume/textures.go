package volume

import (
	"fmt"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

// TextureType identifies one of the GPU resources owned by a volume.
type TextureType int

const (
	// TextureTypeRayData holds the per-ray radiance and hit distance written by the trace pass.
	TextureTypeRayData TextureType = iota
	// TextureTypeIrradiance holds the octahedral irradiance tile of every probe.
	TextureTypeIrradiance
	// TextureTypeDistance holds the octahedral mean distance tile of every probe.
	TextureTypeDistance
	// TextureTypeData holds one texel per probe (relocation offset and classification state).
	TextureTypeData
	// TextureTypeVariability holds per-texel irradiance variability.
	TextureTypeVariability
	// TextureTypeVariabilityAverage is the reduction target of the variability texture.
	TextureTypeVariabilityAverage
)

// TextureTypes lists every texture type in resource order.
var TextureTypes = []TextureType{
	TextureTypeRayData,
	TextureTypeIrradiance,
	TextureTypeDistance,
	TextureTypeData,
	TextureTypeVariability,
	TextureTypeVariabilityAverage,
}

// String returns the resource name used in GPU labels.
func (t TextureType) String() string {
	switch t {
	case TextureTypeRayData:
		return "RayData"
	case TextureTypeIrradiance:
		return "Irradiance"
	case TextureTypeDistance:
		return "Distance"
	case TextureTypeData:
		return "Data"
	case TextureTypeVariability:
		return "Variability"
	case TextureTypeVariabilityAverage:
		return "VariabilityAverage"
	}
	return fmt.Sprintf("TextureType(%d)", int(t))
}

// Reduction group size of the variability average pass (x, y, layers).
const (
	variabilityReductionX = 16
	variabilityReductionY = 16
	variabilityReductionZ = 4
)

// TextureFormat is the texel format of a volume resource.
type TextureFormat uint32

const (
	TextureFormatU32 TextureFormat = iota
	TextureFormatF16
	TextureFormatF16x2
	TextureFormatF16x4
	TextureFormatF32
	TextureFormatF32x2
	TextureFormatF32x4
)

var textureFormatNames = map[TextureFormat]string{
	TextureFormatU32:   "u32",
	TextureFormatF16:   "f16",
	TextureFormatF16x2: "f16x2",
	TextureFormatF16x4: "f16x4",
	TextureFormatF32:   "f32",
	TextureFormatF32x2: "f32x2",
	TextureFormatF32x4: "f32x4",
}

// String returns the config name of the format.
func (f TextureFormat) String() string {
	if name, ok := textureFormatNames[f]; ok {
		return name
	}
	return fmt.Sprintf("TextureFormat(%d)", uint32(f))
}

// ParseTextureFormat converts a config name into a TextureFormat.
//
// Parameters:
//   - s: a format name such as "f16x4" (case-insensitive)
//
// Returns:
//   - TextureFormat: the parsed value
//   - error: error if the name is unknown
func ParseTextureFormat(s string) (TextureFormat, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for f, n := range textureFormatNames {
		if n == name {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unknown texture format %q", s)
}

// BytesPerTexel returns the storage size of one texel. Unknown formats report 0.
//
// Returns:
//   - uint64: bytes per texel
func (f TextureFormat) BytesPerTexel() uint64 {
	switch f {
	case TextureFormatF16:
		return 2
	case TextureFormatU32, TextureFormatF16x2, TextureFormatF32:
		return 4
	case TextureFormatF16x4, TextureFormatF32x2:
		return 8
	case TextureFormatF32x4:
		return 16
	}
	return 0
}

// WGPUFormat maps the format onto the WebGPU texture format used to allocate it.
// U32 is the packed 10:10:10:2 irradiance encoding.
//
// Returns:
//   - wgpu.TextureFormat: the WebGPU format, or TextureFormatUndefined for unknown formats
func (f TextureFormat) WGPUFormat() wgpu.TextureFormat {
	switch f {
	case TextureFormatU32:
		return wgpu.TextureFormatRGB10A2Unorm
	case TextureFormatF16:
		return wgpu.TextureFormatR16Float
	case TextureFormatF16x2:
		return wgpu.TextureFormatRG16Float
	case TextureFormatF16x4:
		return wgpu.TextureFormatRGBA16Float
	case TextureFormatF32:
		return wgpu.TextureFormatR32Float
	case TextureFormatF32x2:
		return wgpu.TextureFormatRG32Float
	case TextureFormatF32x4:
		return wgpu.TextureFormatRGBA32Float
	}
	return wgpu.TextureFormatUndefined
}

// TextureFormats is the per-resource format selection of a volume.
// The variability average is always F32x2 and has no entry.
type TextureFormats struct {
	RayData     TextureFormat
	Irradiance  TextureFormat
	Distance    TextureFormat
	Data        TextureFormat
	Variability TextureFormat
}

// DefaultTextureFormats returns the compact format selection.
//
// Returns:
//   - TextureFormats: F32x2 ray data, U32 irradiance, F16x2 distance, F16x4 data, F16 variability
func DefaultTextureFormats() TextureFormats {
	return TextureFormats{
		RayData:     TextureFormatF32x2,
		Irradiance:  TextureFormatU32,
		Distance:    TextureFormatF16x2,
		Data:        TextureFormatF16x4,
		Variability: TextureFormatF16,
	}
}

// allowedFormats lists the formats each resource can be allocated with.
var allowedFormats = map[TextureType][]TextureFormat{
	TextureTypeRayData:            {TextureFormatF32x2, TextureFormatF32x4},
	TextureTypeIrradiance:         {TextureFormatU32, TextureFormatF32x4},
	TextureTypeDistance:           {TextureFormatF16x2, TextureFormatF32x2},
	TextureTypeData:               {TextureFormatF16x4, TextureFormatF32x4},
	TextureTypeVariability:        {TextureFormatF16, TextureFormatF32},
	TextureTypeVariabilityAverage: {TextureFormatF32x2},
}

// Format returns the format selected for a texture type.
//
// Parameters:
//   - t: the texture type
//
// Returns:
//   - TextureFormat: the selected format
func (f TextureFormats) Format(t TextureType) TextureFormat {
	switch t {
	case TextureTypeRayData:
		return f.RayData
	case TextureTypeIrradiance:
		return f.Irradiance
	case TextureTypeDistance:
		return f.Distance
	case TextureTypeData:
		return f.Data
	case TextureTypeVariability:
		return f.Variability
	}
	return TextureFormatF32x2
}

// Validate checks every selection against the formats its resource supports.
//
// Returns:
//   - error: error naming the first unsupported selection, or nil
func (f TextureFormats) Validate() error {
	for _, t := range TextureTypes {
		format := f.Format(t)
		ok := false
		for _, allowed := range allowedFormats[t] {
			if allowed == format {
				ok = true
				break
			}
		}
		if !ok {
			return fmt.Errorf("%s texture does not support format %s", t, format)
		}
	}
	return nil
}

// TextureDimensions describes the size of a 2D texture array.
type TextureDimensions struct {
	Width  uint32
	Height uint32
	Layers uint32
}

// Texels returns the total number of texels across all layers.
func (d TextureDimensions) Texels() uint64 {
	return uint64(d.Width) * uint64(d.Height) * uint64(d.Layers)
}

// textureDimensions derives the size of a resource from the grid layout.
// Probe tiles of the irradiance, distance and variability textures carry a one texel border on each side.
func textureDimensions(t TextureType, cs CoordinateSystem, d *VolumeDesc) TextureDimensions {
	w, h, layers := cs.counts2D(d.ProbeCounts)
	irradianceTexels := uint32(d.ProbeNumIrradianceInteriorTexels) + 2
	switch t {
	case TextureTypeRayData:
		return TextureDimensions{Width: uint32(d.ProbeNumRays), Height: w * h, Layers: layers}
	case TextureTypeIrradiance, TextureTypeVariability:
		return TextureDimensions{Width: w * irradianceTexels, Height: h * irradianceTexels, Layers: layers}
	case TextureTypeDistance:
		distanceTexels := uint32(d.ProbeNumDistanceInteriorTexels) + 2
		return TextureDimensions{Width: w * distanceTexels, Height: h * distanceTexels, Layers: layers}
	case TextureTypeData:
		return TextureDimensions{Width: w, Height: h, Layers: layers}
	case TextureTypeVariabilityAverage:
		v := textureDimensions(TextureTypeVariability, cs, d)
		return TextureDimensions{
			Width:  divRoundUp(v.Width, variabilityReductionX),
			Height: divRoundUp(v.Height, variabilityReductionY),
			Layers: divRoundUp(v.Layers, variabilityReductionZ),
		}
	}
	return TextureDimensions{}
}

// textureEnabled reports whether a resource is allocated for the description.
func textureEnabled(t TextureType, d *VolumeDesc) bool {
	switch t {
	case TextureTypeData:
		return d.ProbeRelocationEnabled || d.ProbeClassificationEnabled
	case TextureTypeVariability, TextureTypeVariabilityAverage:
		return d.ProbeVariabilityEnabled
	}
	return true
}

// textureDescriptor builds the WebGPU allocation descriptor of a resource.
func textureDescriptor(t TextureType, cs CoordinateSystem, d *VolumeDesc) wgpu.TextureDescriptor {
	dims := textureDimensions(t, cs, d)
	return wgpu.TextureDescriptor{
		Label:     d.Name + " " + t.String(),
		Usage:     wgpu.TextureUsageStorageBinding | wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension: wgpu.TextureDimension2D,
		Size: wgpu.Extent3D{
			Width:              dims.Width,
			Height:             dims.Height,
			DepthOrArrayLayers: dims.Layers,
		},
		Format:        d.Formats.Format(t).WGPUFormat(),
		MipLevelCount: 1,
		SampleCount:   1,
	}
}

func divRoundUp(n, d uint32) uint32 {
	return (n + d - 1) / d
}
