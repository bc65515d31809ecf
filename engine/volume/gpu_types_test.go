package volume

import (
	"encoding/binary"
	"math"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-ddgi/common"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleGPUDesc() GPUVolumeDesc {
	return GPUVolumeDesc{
		Origin:                           mgl32.Vec3{1.5, -20, 300.25},
		Rotation:                         mgl32.QuatRotate(0.7, mgl32.Vec3{0, 1, 0}),
		ProbeRayRotation:                 mgl32.QuatRotate(2.1, mgl32.Vec3{0.6, 0, 0.8}),
		MovementType:                     MovementTypeScrolling,
		ProbeSpacing:                     mgl32.Vec3{1, 0.5, 2},
		ProbeCounts:                      common.Int3{255, 1, 32},
		ProbeNumRays:                     65535,
		ProbeNumIrradianceInteriorTexels: 6,
		ProbeNumDistanceInteriorTexels:   14,
		ProbeHysteresis:                  0.97,
		ProbeMaxRayDistance:              10000,
		ProbeNormalBias:                  0.1,
		ProbeViewBias:                    0.3,
		ProbeDistanceExponent:            50,
		ProbeIrradianceEncodingGamma:     5,
		ProbeIrradianceThreshold:         0.2,
		ProbeBrightnessThreshold:         2,
		ProbeRandomRayBackfaceThreshold:  0.1,
		ProbeFixedRayBackfaceThreshold:   0.25,
		ProbeMinFrontfaceDistance:        1,
		ProbeScrollOffsets:               common.Int3{-3, 0, 32767},
		ProbeScrollClear:                 [3]bool{true, false, true},
		ProbeScrollDirections:            [3]bool{false, true, true},
		ProbeRayDataFormat:               1,
		ProbeIrradianceFormat:            0,
		ProbeRelocationEnabled:           true,
		ProbeClassificationEnabled:       false,
		ProbeVariabilityEnabled:          true,
	}
}

// expectedAfterPacking applies the documented lossy steps to a descriptor.
func expectedAfterPacking(d GPUVolumeDesc) GPUVolumeDesc {
	d.ProbeRandomRayBackfaceThreshold = float32(QuantizeUnorm16(d.ProbeRandomRayBackfaceThreshold)) / 65535
	d.ProbeFixedRayBackfaceThreshold = float32(QuantizeUnorm16(d.ProbeFixedRayBackfaceThreshold)) / 65535
	for _, a := range common.Axes {
		if d.ProbeScrollOffsets[a] > 32767 {
			d.ProbeScrollOffsets[a] = 32767
		}
		if d.ProbeScrollOffsets[a] < -32767 {
			d.ProbeScrollOffsets[a] = -32767
		}
	}
	return d
}

func TestPackedSizes(t *testing.T) {
	assert.Equal(t, 128, (&GPUVolumeDescPacked{}).Size())
	assert.Equal(t, 16, (&GPUVolumeConstants{}).Size())
	p := sampleGPUDesc().Pack()
	assert.Len(t, p.Marshal(), 128)
	assert.Len(t, sampleGPUDesc().MarshalLegacy(), 256)
}

func TestPackUnpackRoundTrip(t *testing.T) {
	flipped := sampleGPUDesc()
	flipped.MovementType = MovementTypeDefault
	flipped.ProbeScrollOffsets = common.Int3{}
	flipped.ProbeScrollClear = [3]bool{}
	flipped.ProbeScrollDirections = [3]bool{true, false, false}
	flipped.ProbeRayDataFormat = 0
	flipped.ProbeIrradianceFormat = 1
	flipped.ProbeRelocationEnabled = false
	flipped.ProbeClassificationEnabled = true
	flipped.ProbeVariabilityEnabled = false
	flipped.ProbeCounts = common.Int3{1, 200, 7}

	saturated := sampleGPUDesc()
	saturated.ProbeScrollOffsets = common.Int3{40000, -40000, -32768}

	clamped := sampleGPUDesc()
	clamped.ProbeRandomRayBackfaceThreshold = -0.5
	clamped.ProbeFixedRayBackfaceThreshold = 1.7

	quantized := sampleGPUDesc()
	quantized.ProbeRandomRayBackfaceThreshold = 0.123456
	quantized.ProbeFixedRayBackfaceThreshold = 1

	cases := map[string]GPUVolumeDesc{
		"sample":    sampleGPUDesc(),
		"flipped":   flipped,
		"saturated": saturated,
		"clamped":   clamped,
		"quantized": quantized,
		"zero":      {},
	}
	for name, d := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, expectedAfterPacking(d), d.Pack().Unpack())
			assert.NoError(t, ValidatePackedData(d))
		})
	}
}

func TestPackSaturatesScrollOffsets(t *testing.T) {
	d := sampleGPUDesc()
	d.ProbeScrollOffsets = common.Int3{40000, -40000, 5}
	got := d.Pack().Unpack().ProbeScrollOffsets
	assert.Equal(t, common.Int3{32767, -32767, 5}, got)
}

func TestPackClampsThresholds(t *testing.T) {
	d := sampleGPUDesc()
	d.ProbeRandomRayBackfaceThreshold = -0.5
	d.ProbeFixedRayBackfaceThreshold = 1.7
	got := d.Pack().Unpack()
	assert.Equal(t, float32(0), got.ProbeRandomRayBackfaceThreshold)
	assert.Equal(t, float32(1), got.ProbeFixedRayBackfaceThreshold)
}

func TestPackedBitLayout(t *testing.T) {
	d := GPUVolumeDesc{
		MovementType:          MovementTypeScrolling,
		ProbeCounts:           common.Int3{16, 8, 4},
		ProbeNumRays:          288,
		ProbeScrollOffsets:    common.Int3{-1, 2, -3},
		ProbeScrollClear:      [3]bool{true, false, false},
		ProbeScrollDirections: [3]bool{false, false, true},
		ProbeRayDataFormat:    1,

		ProbeNumIrradianceInteriorTexels: 6,
		ProbeNumDistanceInteriorTexels:   14,
		ProbeFixedRayBackfaceThreshold:   1,
		ProbeVariabilityEnabled:          true,
	}
	p := d.Pack()

	assert.Equal(t, uint32(16|8<<8|4<<16), p.Packed0)
	assert.Equal(t, uint32(0xFFFF<<16), p.Packed1)
	assert.Equal(t, uint32(288|6<<16|14<<24), p.Packed2)
	assert.Equal(t, uint32(1|1<<15|2<<16), p.Packed3)

	wantPacked4 := uint32(3 | 1<<15)
	wantPacked4 |= 1 << 16 // scrolling
	wantPacked4 |= 1 << 17 // ray data F32x4
	wantPacked4 |= 1 << 21 // clear x
	wantPacked4 |= 1 << 26 // direction z
	wantPacked4 |= 1 << 27 // variability
	assert.Equal(t, wantPacked4, p.Packed4)
}

func TestMarshalUnmarshalPacked(t *testing.T) {
	p := sampleGPUDesc().Pack()
	buf := p.Marshal()

	assert.Equal(t, math.Float32bits(1.5), binary.LittleEndian.Uint32(buf[0:4]))
	assert.Equal(t, math.Float32bits(0.97), binary.LittleEndian.Uint32(buf[12:16]))
	assert.Equal(t, p.Packed0, binary.LittleEndian.Uint32(buf[76:80]))
	assert.Equal(t, p.Packed4, binary.LittleEndian.Uint32(buf[108:112]))
	assert.Equal(t, make([]byte, 16), buf[112:128])

	got, err := UnmarshalGPUVolumeDescPacked(buf)
	require.NoError(t, err)
	assert.Equal(t, p, got)

	_, err = UnmarshalGPUVolumeDescPacked(buf[:100])
	assert.Error(t, err)
}

func TestMarshalLegacyLayout(t *testing.T) {
	d := sampleGPUDesc()
	d.ProbeScrollOffsets = common.Int3{-3, 0, 40000}
	buf := d.MarshalLegacy()

	f32 := func(off int) float32 { return math.Float32frombits(binary.LittleEndian.Uint32(buf[off : off+4])) }
	i32 := func(off int) int32 { return int32(binary.LittleEndian.Uint32(buf[off : off+4])) }

	assert.Equal(t, d.Origin[2], f32(8))
	assert.Equal(t, int32(65535), i32(12))
	assert.Equal(t, d.ProbeSpacing[1], f32(20))
	assert.Equal(t, int32(255), i32(32))
	assert.Equal(t, int32(32), i32(40))
	assert.Equal(t, float32(0.2), f32(52))
	assert.InDelta(t, 0.2, f32(64), 1e-7)
	assert.Equal(t, int32(1), i32(160))
	assert.Equal(t, int32(-3), i32(164))
	assert.Equal(t, int32(40000), i32(172))
	assert.Equal(t, float32(0.25), f32(176))
	assert.Equal(t, make([]byte, 256-184), buf[184:])

	// rotation transform is the ray rotation as a column-major 4x4
	m := d.ProbeRayRotation.Mat4()
	for i := range 16 {
		require.Equal(t, m[i], f32(96+i*4))
	}
}

func TestVolumeConstantsMarshal(t *testing.T) {
	v := NewVolume(testDesc(CoordinateSystemRight, common.Int3{2, 2, 2}), WithResourceOffsets(12, 30))
	c := v.Constants()
	buf := c.Marshal()
	assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(buf[0:4]))
	assert.Equal(t, uint32(12), binary.LittleEndian.Uint32(buf[4:8]))
	assert.Equal(t, uint32(30), binary.LittleEndian.Uint32(buf[8:12]))
}

func TestWGSLSourcesMatchLayout(t *testing.T) {
	for _, field := range []string{"origin", "probe_hysteresis", "rotation", "probe_ray_rotation", "packed0", "packed4", "reserved"} {
		assert.Contains(t, GPUVolumeDescPackedSource, field+":")
	}
	assert.True(t, strings.HasPrefix(GPUVolumeDescPackedSource, "struct VolumeDescGPUPacked"))
	assert.Contains(t, GPUVolumeConstantsSource, "struct VolumeConstants")
}

func TestVolumeDescGPU(t *testing.T) {
	d := testDesc(CoordinateSystemRight, common.Int3{4, 4, 4})
	d.ProbeRandomRayBackfaceThreshold = 3
	d.ProbeVariabilityEnabled = true
	d.Formats.RayData = TextureFormatF32x4
	v := NewVolume(d)
	v.SetProbeFixedRayBackfaceThreshold(-2)
	v.SetProbeHysteresis(0.5)

	g := v.DescGPU()
	assert.Equal(t, float32(1), g.ProbeRandomRayBackfaceThreshold)
	assert.Equal(t, float32(0), g.ProbeFixedRayBackfaceThreshold)
	assert.Equal(t, float32(0.5), g.ProbeHysteresis)
	assert.Equal(t, uint32(1), g.ProbeRayDataFormat)
	assert.Equal(t, uint32(0), g.ProbeIrradianceFormat)
	assert.True(t, g.ProbeVariabilityEnabled)
	assert.Equal(t, MovementTypeDefault, g.MovementType)

	packed := v.DescGPUPacked()
	assert.Equal(t, g.Pack(), packed)
}

func TestMarshalDescBuffer(t *testing.T) {
	a := testDesc(CoordinateSystemRight, common.Int3{2, 2, 2})
	b := a
	b.Index = 2
	b.Origin = mgl32.Vec3{9, 9, 9}
	va, vb := NewVolume(a), NewVolume(b)

	buf := MarshalDescBuffer([]Volume{vb, va})
	require.Len(t, buf, 3*128)
	pa, pb := va.DescGPUPacked(), vb.DescGPUPacked()
	assert.Equal(t, pa.Marshal(), buf[0:128])
	assert.Equal(t, make([]byte, 128), buf[128:256])
	assert.Equal(t, pb.Marshal(), buf[256:384])
}
