package volume

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-ddgi/common"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextureDimensions(t *testing.T) {
	v := NewVolume(testDesc(CoordinateSystemRight, common.Int3{8, 4, 6}))

	cases := map[TextureType]TextureDimensions{
		TextureTypeRayData:            {256, 48, 4},
		TextureTypeIrradiance:         {64, 48, 4},
		TextureTypeDistance:           {128, 96, 4},
		TextureTypeData:               {8, 6, 4},
		TextureTypeVariability:        {64, 48, 4},
		TextureTypeVariabilityAverage: {4, 3, 1},
	}
	for tt, want := range cases {
		assert.Equal(t, want, v.TextureDimensions(tt), tt.String())
	}
	assert.Equal(t, v.TextureDimensions(TextureTypeRayData), v.RayDispatchDimensions())
}

func TestTextureDimensionsFollowConvention(t *testing.T) {
	counts := common.Int3{8, 4, 6}
	cases := map[CoordinateSystem]TextureDimensions{
		CoordinateSystemLeft:     {8, 6, 4},
		CoordinateSystemRight:    {8, 6, 4},
		CoordinateSystemLeftZUp:  {4, 8, 6},
		CoordinateSystemRightZUp: {8, 4, 6},
	}
	for cs, want := range cases {
		v := NewVolume(testDesc(cs, counts))
		assert.Equal(t, want, v.ProbeCounts2D(), cs.String())
		assert.Equal(t, want, v.TextureDimensions(TextureTypeData), cs.String())
	}
}

func TestGPUMemoryUsedInBytes(t *testing.T) {
	d := testDesc(CoordinateSystemRight, common.Int3{8, 4, 6})
	v := NewVolume(d)
	// ray data 49152*8 + irradiance 12288*4 + distance 49152*4 + data 192*8 + descriptor
	assert.Equal(t, uint64(640640), v.GPUMemoryUsedInBytes())

	v.SetProbeVariabilityEnabled(true)
	// + variability 12288*2 + average 12*8
	assert.Equal(t, uint64(665312), v.GPUMemoryUsedInBytes())

	v.SetProbeRelocationEnabled(false)
	v.SetProbeClassificationEnabled(false)
	assert.Equal(t, uint64(665312-1536), v.GPUMemoryUsedInBytes())
}

func TestTextureDescriptors(t *testing.T) {
	d := testDesc(CoordinateSystemRight, common.Int3{8, 4, 6})
	d.Formats.Irradiance = TextureFormatF32x4
	v := NewVolume(d)

	descs := v.TextureDescriptors()
	require.Len(t, descs, 4)
	labels := make([]string, len(descs))
	for i, desc := range descs {
		labels[i] = desc.Label
		assert.Equal(t, wgpu.TextureDimension2D, desc.Dimension)
		assert.NotZero(t, desc.Usage&wgpu.TextureUsageStorageBinding)
		assert.Equal(t, uint32(1), desc.MipLevelCount)
	}
	assert.Equal(t, []string{"test RayData", "test Irradiance", "test Distance", "test Data"}, labels)

	irradiance := descs[1]
	assert.Equal(t, wgpu.TextureFormatRGBA32Float, irradiance.Format)
	assert.Equal(t, wgpu.Extent3D{Width: 64, Height: 48, DepthOrArrayLayers: 4}, irradiance.Size)

	v.SetProbeVariabilityEnabled(true)
	assert.Len(t, v.TextureDescriptors(), 6)
}

func TestTextureFormatsValidate(t *testing.T) {
	assert.NoError(t, DefaultTextureFormats().Validate())

	f := DefaultTextureFormats()
	f.Irradiance = TextureFormatF16x4
	err := f.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Irradiance")

	f = DefaultTextureFormats()
	f.Distance = TextureFormatU32
	assert.Error(t, f.Validate())

	f = DefaultTextureFormats()
	f.RayData = TextureFormatF32x4
	f.Variability = TextureFormatF32
	assert.NoError(t, f.Validate())
}

func TestTextureFormatMapping(t *testing.T) {
	for f := range textureFormatNames {
		assert.NotZero(t, f.BytesPerTexel(), f.String())
		assert.NotEqual(t, wgpu.TextureFormatUndefined, f.WGPUFormat(), f.String())

		parsed, err := ParseTextureFormat(f.String())
		require.NoError(t, err)
		assert.Equal(t, f, parsed)
	}
	assert.Equal(t, wgpu.TextureFormatRGB10A2Unorm, TextureFormatU32.WGPUFormat())
	assert.Equal(t, uint64(0), TextureFormat(99).BytesPerTexel())

	_, err := ParseTextureFormat("rgba8")
	assert.Error(t, err)
}
