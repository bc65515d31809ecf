package volume

import (
	"bytes"
	_ "embed"
	"encoding/binary"
	"fmt"
	"math"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-ddgi/common"
	"github.com/go-gl/mathgl/mgl32"
)

// maxPackedScrollOffset is the largest scroll offset magnitude the packed record can carry (15 bits).
const maxPackedScrollOffset = 0x7FFF

// Bit positions of the feature flags in GPUVolumeDescPacked.Packed4.
const (
	packedBitScrollSignZ        = 15
	packedBitMovementType       = 16
	packedBitRayDataFormat      = 17
	packedBitIrradianceFormat   = 18
	packedBitRelocation         = 19
	packedBitClassification     = 20
	packedBitScrollClear        = 21 // 21..23, one per axis
	packedBitScrollDirection    = 24 // 24..26, one per axis
	packedBitVariabilityEnabled = 27
)

// GPUVolumeDesc is the full precision snapshot of a volume as seen by the shading passes.
// It is the canonical descriptor model; the packed and legacy records are exported from it.
type GPUVolumeDesc struct {
	// Origin is the configured origin without the scroll translation. Scrolling consumers
	// add ProbeScrollOffsets * ProbeSpacing to reach the effective origin.
	Origin           mgl32.Vec3
	Rotation         mgl32.Quat
	ProbeRayRotation mgl32.Quat
	MovementType     MovementType
	ProbeSpacing     mgl32.Vec3
	ProbeCounts      common.Int3

	ProbeNumRays                     int32
	ProbeNumIrradianceInteriorTexels int32
	ProbeNumDistanceInteriorTexels   int32

	ProbeHysteresis                 float32
	ProbeMaxRayDistance             float32
	ProbeNormalBias                 float32
	ProbeViewBias                   float32
	ProbeDistanceExponent           float32
	ProbeIrradianceEncodingGamma    float32
	ProbeIrradianceThreshold        float32
	ProbeBrightnessThreshold        float32
	ProbeRandomRayBackfaceThreshold float32
	ProbeFixedRayBackfaceThreshold  float32
	ProbeMinFrontfaceDistance       float32

	ProbeScrollOffsets    common.Int3
	ProbeScrollClear      [3]bool
	ProbeScrollDirections [3]bool // true when the last scroll on the axis was positive

	// ProbeRayDataFormat is 0 for F32x2 ray data and 1 for F32x4.
	ProbeRayDataFormat uint32
	// ProbeIrradianceFormat is 0 for U32 irradiance and 1 for F32x4.
	ProbeIrradianceFormat uint32

	ProbeRelocationEnabled     bool
	ProbeClassificationEnabled bool
	ProbeVariabilityEnabled    bool
}

// rayDataFormatSelector returns the packed selector bit of a ray data format.
func rayDataFormatSelector(f TextureFormat) uint32 {
	if f == TextureFormatF32x4 {
		return 1
	}
	return 0
}

// irradianceFormatSelector returns the packed selector bit of an irradiance format.
func irradianceFormatSelector(f TextureFormat) uint32 {
	if f == TextureFormatF32x4 {
		return 1
	}
	return 0
}

// GPUVolumeDescPackedSource is the canonical WGSL definition of the VolumeDescGPUPacked struct.
// Matches GPUVolumeDescPacked layout exactly (128 bytes, std430 aligned).
//
//go:embed assets/volume_desc_packed.wgsl
var GPUVolumeDescPackedSource string

// GPUVolumeDescPacked is the bit-packed descriptor uploaded once per volume into the
// descriptor storage buffer. Matches the WGSL VolumeDescGPUPacked struct (see GPUVolumeDescPackedSource).
// Size: 128 bytes.
//
// Packed fields:
//
//	Packed0: counts.x (8), counts.y (8), counts.z (8), unused (8)
//	Packed1: random ray backface threshold unorm16, fixed ray backface threshold unorm16
//	Packed2: rays (16), irradiance interior texels (8), distance interior texels (8)
//	Packed3: |scroll.x| (15), sign x (1), |scroll.y| (15), sign y (1)
//	Packed4: |scroll.z| (15), sign z (1), movement type (1), ray data format (1), irradiance format (1),
//	         relocation (1), classification (1), scroll clear x/y/z (3), scroll direction x/y/z (3),
//	         variability (1), unused (4)
type GPUVolumeDescPacked struct {
	Origin                       [3]float32 // offset   0
	ProbeHysteresis              float32    // offset  12
	Rotation                     [4]float32 // offset  16: quaternion (x, y, z, w)
	ProbeRayRotation             [4]float32 // offset  32: quaternion (x, y, z, w)
	ProbeMaxRayDistance          float32    // offset  48
	ProbeNormalBias              float32    // offset  52
	ProbeViewBias                float32    // offset  56
	ProbeDistanceExponent        float32    // offset  60
	ProbeSpacing                 [3]float32 // offset  64
	Packed0                      uint32     // offset  76
	ProbeIrradianceEncodingGamma float32    // offset  80
	ProbeIrradianceThreshold     float32    // offset  84
	ProbeBrightnessThreshold     float32    // offset  88
	Packed1                      uint32     // offset  92
	ProbeMinFrontfaceDistance    float32    // offset  96
	Packed2                      uint32     // offset 100
	Packed3                      uint32     // offset 104
	Packed4                      uint32     // offset 108
	_reserved                    [4]uint32  // offset 112: padding to 128 bytes
}

// Size returns the size of the GPUVolumeDescPacked struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (128)
func (p *GPUVolumeDescPacked) Size() int {
	return int(unsafe.Sizeof(*p))
}

// QuantizeUnorm16 clamps v to [0, 1] and rounds it to the nearest 16-bit unorm step.
//
// Parameters:
//   - v: the value to encode
//
// Returns:
//   - uint32: the encoded value in [0, 65535]
func QuantizeUnorm16(v float32) uint32 {
	return uint32(float64(common.Clamp01(v))*65535 + 0.5)
}

// packScrollOffset encodes a signed offset as a 15-bit magnitude plus a sign bit, saturating at 32767.
func packScrollOffset(o int32) uint32 {
	mag := int64(o)
	sign := uint32(0)
	if mag < 0 {
		mag = -mag
		sign = 1
	}
	if mag > maxPackedScrollOffset {
		mag = maxPackedScrollOffset
	}
	return uint32(mag) | sign<<15
}

// unpackScrollOffset decodes the low 16 bits written by packScrollOffset.
func unpackScrollOffset(v uint32) int32 {
	o := int32(v & maxPackedScrollOffset)
	if (v>>15)&1 == 1 {
		o = -o
	}
	return o
}

func boolBit(b bool, shift uint) uint32 {
	if b {
		return 1 << shift
	}
	return 0
}

func bitSet(v uint32, shift uint) bool {
	return (v>>shift)&1 == 1
}

func quatToFloat4(q mgl32.Quat) [4]float32 {
	return [4]float32{q.V[0], q.V[1], q.V[2], q.W}
}

func float4ToQuat(v [4]float32) mgl32.Quat {
	return mgl32.Quat{W: v[3], V: mgl32.Vec3{v[0], v[1], v[2]}}
}

// Pack compresses the descriptor into its 128-byte record.
// Scroll offsets saturate at ±32767 and backface thresholds are clamped to [0, 1] and quantized to 16 bits.
// Counts, rays and texel counts are masked to their field widths.
//
// Returns:
//   - GPUVolumeDescPacked: the packed record
func (d GPUVolumeDesc) Pack() GPUVolumeDescPacked {
	p := GPUVolumeDescPacked{
		Origin:                       d.Origin,
		ProbeHysteresis:              d.ProbeHysteresis,
		Rotation:                     quatToFloat4(d.Rotation),
		ProbeRayRotation:             quatToFloat4(d.ProbeRayRotation),
		ProbeMaxRayDistance:          d.ProbeMaxRayDistance,
		ProbeNormalBias:              d.ProbeNormalBias,
		ProbeViewBias:                d.ProbeViewBias,
		ProbeDistanceExponent:        d.ProbeDistanceExponent,
		ProbeSpacing:                 d.ProbeSpacing,
		ProbeIrradianceEncodingGamma: d.ProbeIrradianceEncodingGamma,
		ProbeIrradianceThreshold:     d.ProbeIrradianceThreshold,
		ProbeBrightnessThreshold:     d.ProbeBrightnessThreshold,
		ProbeMinFrontfaceDistance:    d.ProbeMinFrontfaceDistance,
	}

	p.Packed0 = uint32(d.ProbeCounts[0]) & 0xFF
	p.Packed0 |= (uint32(d.ProbeCounts[1]) & 0xFF) << 8
	p.Packed0 |= (uint32(d.ProbeCounts[2]) & 0xFF) << 16

	p.Packed1 = QuantizeUnorm16(d.ProbeRandomRayBackfaceThreshold)
	p.Packed1 |= QuantizeUnorm16(d.ProbeFixedRayBackfaceThreshold) << 16

	p.Packed2 = uint32(d.ProbeNumRays) & 0xFFFF
	p.Packed2 |= (uint32(d.ProbeNumIrradianceInteriorTexels) & 0xFF) << 16
	p.Packed2 |= (uint32(d.ProbeNumDistanceInteriorTexels) & 0xFF) << 24

	p.Packed3 = packScrollOffset(d.ProbeScrollOffsets[0])
	p.Packed3 |= packScrollOffset(d.ProbeScrollOffsets[1]) << 16
	p.Packed4 = packScrollOffset(d.ProbeScrollOffsets[2])

	p.Packed4 |= (uint32(d.MovementType) & 1) << packedBitMovementType
	p.Packed4 |= (d.ProbeRayDataFormat & 1) << packedBitRayDataFormat
	p.Packed4 |= (d.ProbeIrradianceFormat & 1) << packedBitIrradianceFormat
	p.Packed4 |= boolBit(d.ProbeRelocationEnabled, packedBitRelocation)
	p.Packed4 |= boolBit(d.ProbeClassificationEnabled, packedBitClassification)
	for _, a := range common.Axes {
		p.Packed4 |= boolBit(d.ProbeScrollClear[a], packedBitScrollClear+uint(a))
		p.Packed4 |= boolBit(d.ProbeScrollDirections[a], packedBitScrollDirection+uint(a))
	}
	p.Packed4 |= boolBit(d.ProbeVariabilityEnabled, packedBitVariabilityEnabled)
	return p
}

// Unpack expands the packed record into a full precision descriptor, mirroring the shader-side decode.
//
// Returns:
//   - GPUVolumeDesc: the decoded descriptor
func (p GPUVolumeDescPacked) Unpack() GPUVolumeDesc {
	d := GPUVolumeDesc{
		Origin:                       p.Origin,
		Rotation:                     float4ToQuat(p.Rotation),
		ProbeRayRotation:             float4ToQuat(p.ProbeRayRotation),
		ProbeSpacing:                 p.ProbeSpacing,
		ProbeHysteresis:              p.ProbeHysteresis,
		ProbeMaxRayDistance:          p.ProbeMaxRayDistance,
		ProbeNormalBias:              p.ProbeNormalBias,
		ProbeViewBias:                p.ProbeViewBias,
		ProbeDistanceExponent:        p.ProbeDistanceExponent,
		ProbeIrradianceEncodingGamma: p.ProbeIrradianceEncodingGamma,
		ProbeIrradianceThreshold:     p.ProbeIrradianceThreshold,
		ProbeBrightnessThreshold:     p.ProbeBrightnessThreshold,
		ProbeMinFrontfaceDistance:    p.ProbeMinFrontfaceDistance,
	}

	d.ProbeCounts = common.Int3{
		int32(p.Packed0 & 0xFF),
		int32((p.Packed0 >> 8) & 0xFF),
		int32((p.Packed0 >> 16) & 0xFF),
	}

	d.ProbeRandomRayBackfaceThreshold = float32(p.Packed1&0xFFFF) / 65535
	d.ProbeFixedRayBackfaceThreshold = float32((p.Packed1>>16)&0xFFFF) / 65535

	d.ProbeNumRays = int32(p.Packed2 & 0xFFFF)
	d.ProbeNumIrradianceInteriorTexels = int32((p.Packed2 >> 16) & 0xFF)
	d.ProbeNumDistanceInteriorTexels = int32((p.Packed2 >> 24) & 0xFF)

	d.ProbeScrollOffsets = common.Int3{
		unpackScrollOffset(p.Packed3 & 0xFFFF),
		unpackScrollOffset(p.Packed3 >> 16),
		unpackScrollOffset(p.Packed4 & 0xFFFF),
	}

	d.MovementType = MovementType((p.Packed4 >> packedBitMovementType) & 1)
	d.ProbeRayDataFormat = (p.Packed4 >> packedBitRayDataFormat) & 1
	d.ProbeIrradianceFormat = (p.Packed4 >> packedBitIrradianceFormat) & 1
	d.ProbeRelocationEnabled = bitSet(p.Packed4, packedBitRelocation)
	d.ProbeClassificationEnabled = bitSet(p.Packed4, packedBitClassification)
	for _, a := range common.Axes {
		d.ProbeScrollClear[a] = bitSet(p.Packed4, packedBitScrollClear+uint(a))
		d.ProbeScrollDirections[a] = bitSet(p.Packed4, packedBitScrollDirection+uint(a))
	}
	d.ProbeVariabilityEnabled = bitSet(p.Packed4, packedBitVariabilityEnabled)
	return d
}

// Marshal serializes the GPUVolumeDescPacked struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 128-byte buffer ready for GPU upload
func (p *GPUVolumeDescPacked) Marshal() []byte {
	buf := make([]byte, 128)
	putF32 := func(off int, v float32) {
		binary.LittleEndian.PutUint32(buf[off:off+4], math.Float32bits(v))
	}
	putF32(0, p.Origin[0])
	putF32(4, p.Origin[1])
	putF32(8, p.Origin[2])
	putF32(12, p.ProbeHysteresis)
	for i := range 4 {
		putF32(16+i*4, p.Rotation[i])
		putF32(32+i*4, p.ProbeRayRotation[i])
	}
	putF32(48, p.ProbeMaxRayDistance)
	putF32(52, p.ProbeNormalBias)
	putF32(56, p.ProbeViewBias)
	putF32(60, p.ProbeDistanceExponent)
	putF32(64, p.ProbeSpacing[0])
	putF32(68, p.ProbeSpacing[1])
	putF32(72, p.ProbeSpacing[2])
	binary.LittleEndian.PutUint32(buf[76:80], p.Packed0)
	putF32(80, p.ProbeIrradianceEncodingGamma)
	putF32(84, p.ProbeIrradianceThreshold)
	putF32(88, p.ProbeBrightnessThreshold)
	binary.LittleEndian.PutUint32(buf[92:96], p.Packed1)
	putF32(96, p.ProbeMinFrontfaceDistance)
	binary.LittleEndian.PutUint32(buf[100:104], p.Packed2)
	binary.LittleEndian.PutUint32(buf[104:108], p.Packed3)
	binary.LittleEndian.PutUint32(buf[108:112], p.Packed4)
	// 112..128 reserved, left zero
	return buf
}

// UnmarshalGPUVolumeDescPacked decodes a record written by Marshal.
//
// Parameters:
//   - buf: at least 128 bytes
//
// Returns:
//   - GPUVolumeDescPacked: the decoded record
//   - error: error if the buffer is too short
func UnmarshalGPUVolumeDescPacked(buf []byte) (GPUVolumeDescPacked, error) {
	var p GPUVolumeDescPacked
	if len(buf) < p.Size() {
		return p, fmt.Errorf("packed volume descriptor needs %d bytes, got %d", p.Size(), len(buf))
	}
	f32 := func(off int) float32 {
		return math.Float32frombits(binary.LittleEndian.Uint32(buf[off : off+4]))
	}
	p.Origin = [3]float32{f32(0), f32(4), f32(8)}
	p.ProbeHysteresis = f32(12)
	for i := range 4 {
		p.Rotation[i] = f32(16 + i*4)
		p.ProbeRayRotation[i] = f32(32 + i*4)
	}
	p.ProbeMaxRayDistance = f32(48)
	p.ProbeNormalBias = f32(52)
	p.ProbeViewBias = f32(56)
	p.ProbeDistanceExponent = f32(60)
	p.ProbeSpacing = [3]float32{f32(64), f32(68), f32(72)}
	p.Packed0 = binary.LittleEndian.Uint32(buf[76:80])
	p.ProbeIrradianceEncodingGamma = f32(80)
	p.ProbeIrradianceThreshold = f32(84)
	p.ProbeBrightnessThreshold = f32(88)
	p.Packed1 = binary.LittleEndian.Uint32(buf[92:96])
	p.ProbeMinFrontfaceDistance = f32(96)
	p.Packed2 = binary.LittleEndian.Uint32(buf[100:104])
	p.Packed3 = binary.LittleEndian.Uint32(buf[104:108])
	p.Packed4 = binary.LittleEndian.Uint32(buf[108:112])
	return p, nil
}

// ValidatePackedData checks that packing the descriptor, unpacking it and packing it again
// reproduces the same bytes.
//
// Parameters:
//   - d: the descriptor to check
//
// Returns:
//   - error: error describing the first differing byte, or nil
func ValidatePackedData(d GPUVolumeDesc) error {
	first := d.Pack()
	second := first.Unpack().Pack()
	a, b := first.Marshal(), second.Marshal()
	if bytes.Equal(a, b) {
		return nil
	}
	for i := range a {
		if a[i] != b[i] {
			return fmt.Errorf("packed volume descriptor is not stable: byte %d is %#02x after repack, want %#02x", i, b[i], a[i])
		}
	}
	return nil
}

// legacyDescSize is the size of the first generation descriptor record.
const legacyDescSize = 256

// MarshalLegacy writes the descriptor in the first generation 256-byte layout with
// scrolling and relocation fields enabled:
//
//	vec3<f32>   origin                    (offset   0)
//	i32         num_rays_per_probe        (offset  12)
//	vec3<f32>   probe_grid_spacing        (offset  16)
//	f32         probe_max_ray_distance    (offset  28)
//	vec3<i32>   probe_grid_counts         (offset  32)
//	f32         probe_distance_exponent   (offset  44)
//	f32         probe_hysteresis          (offset  48)
//	f32         probe_change_threshold    (offset  52)
//	f32         probe_brightness_threshold(offset  56)
//	f32         irradiance_gamma          (offset  60)
//	f32         inverse_irradiance_gamma  (offset  64)
//	i32         irradiance_texels         (offset  68)
//	i32         distance_texels           (offset  72)
//	f32         normal_bias               (offset  76)
//	f32         view_bias                 (offset  80)
//	vec3<f32>   pad                       (offset  84)
//	mat4x4<f32> ray_rotation_transform    (offset  96)
//	i32         movement_type             (offset 160)
//	vec3<i32>   scroll_offsets            (offset 164)
//	f32         backface_threshold        (offset 176)
//	f32         min_frontface_distance    (offset 180)
//	padding to 256
//
// Scroll offsets are written at full width; the legacy consumer has no saturation.
//
// Returns:
//   - []byte: 256-byte buffer ready for GPU upload
func (d GPUVolumeDesc) MarshalLegacy() []byte {
	buf := make([]byte, legacyDescSize)
	putF32 := func(off int, v float32) {
		binary.LittleEndian.PutUint32(buf[off:off+4], math.Float32bits(v))
	}
	putI32 := func(off int, v int32) {
		binary.LittleEndian.PutUint32(buf[off:off+4], uint32(v))
	}

	putF32(0, d.Origin[0])
	putF32(4, d.Origin[1])
	putF32(8, d.Origin[2])
	putI32(12, d.ProbeNumRays)
	putF32(16, d.ProbeSpacing[0])
	putF32(20, d.ProbeSpacing[1])
	putF32(24, d.ProbeSpacing[2])
	putF32(28, d.ProbeMaxRayDistance)
	putI32(32, d.ProbeCounts[0])
	putI32(36, d.ProbeCounts[1])
	putI32(40, d.ProbeCounts[2])
	putF32(44, d.ProbeDistanceExponent)
	putF32(48, d.ProbeHysteresis)
	putF32(52, d.ProbeIrradianceThreshold)
	putF32(56, d.ProbeBrightnessThreshold)
	putF32(60, d.ProbeIrradianceEncodingGamma)
	inverseGamma := float32(0)
	if d.ProbeIrradianceEncodingGamma != 0 {
		inverseGamma = 1 / d.ProbeIrradianceEncodingGamma
	}
	putF32(64, inverseGamma)
	putI32(68, d.ProbeNumIrradianceInteriorTexels)
	putI32(72, d.ProbeNumDistanceInteriorTexels)
	putF32(76, d.ProbeNormalBias)
	putF32(80, d.ProbeViewBias)

	transform := d.ProbeRayRotation.Mat4()
	for i := range 16 {
		putF32(96+i*4, transform[i])
	}

	putI32(160, int32(d.MovementType))
	putI32(164, d.ProbeScrollOffsets[0])
	putI32(168, d.ProbeScrollOffsets[1])
	putI32(172, d.ProbeScrollOffsets[2])
	putF32(176, common.Clamp01(d.ProbeFixedRayBackfaceThreshold))
	putF32(180, d.ProbeMinFrontfaceDistance)
	return buf
}

// GPUVolumeConstantsSource is the canonical WGSL definition of the VolumeConstants struct.
// Matches GPUVolumeConstants layout exactly (16 bytes).
//
//go:embed assets/volume_constants.wgsl
var GPUVolumeConstantsSource string

// GPUVolumeConstants is the per-dispatch constant record that selects a volume's descriptor
// and its slots in the resource arrays.
// Size: 16 bytes.
type GPUVolumeConstants struct {
	VolumeIndex uint32 // offset 0: index into the descriptor buffer
	UAVOffset   uint32 // offset 4: first storage texture slot of the volume
	SRVOffset   uint32 // offset 8: first sampled texture slot of the volume
	_pad        uint32 // offset 12
}

// Size returns the size of the GPUVolumeConstants struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (16)
func (c *GPUVolumeConstants) Size() int {
	return int(unsafe.Sizeof(*c))
}

// Marshal serializes the GPUVolumeConstants struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 16-byte buffer ready for GPU upload
func (c *GPUVolumeConstants) Marshal() []byte {
	buf := make([]byte, 16)
	binary.LittleEndian.PutUint32(buf[0:4], c.VolumeIndex)
	binary.LittleEndian.PutUint32(buf[4:8], c.UAVOffset)
	binary.LittleEndian.PutUint32(buf[8:12], c.SRVOffset)
	return buf
}

// MarshalDescBuffer marshals the packed descriptors of a set of volumes into one storage buffer.
// Each volume is written at its own Index slot; slots without a volume stay zero.
//
// Parameters:
//   - volumes: the volumes to write
//
// Returns:
//   - []byte: (max index + 1) * 128 bytes ready for GPU upload
func MarshalDescBuffer(volumes []Volume) []byte {
	size := (&GPUVolumeDescPacked{}).Size()
	slots := 0
	for _, v := range volumes {
		if int(v.Index())+1 > slots {
			slots = int(v.Index()) + 1
		}
	}

	buf := make([]byte, slots*size)
	for _, v := range volumes {
		packed := v.DescGPUPacked()
		offset := int(v.Index()) * size
		copy(buf[offset:offset+size], packed.Marshal())
	}
	return buf
}
