package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-ddgi/common"
	"github.com/Carmen-Shannon/oxy-ddgi/engine/volume"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Positive(t, cfg.Workers)
	require.Len(t, cfg.Volumes, 1)
	v := cfg.Volumes[0]
	assert.Equal(t, "Scene", v.Name)
	assert.Equal(t, "scrolling", v.MovementType)
	assert.Equal(t, [3]int32{22, 22, 22}, v.ProbeCounts)
	// unlisted keys come from volume_defaults
	assert.Equal(t, int32(256), v.ProbeNumRays)
	assert.Equal(t, "u32", v.Formats.Irradiance)
}

func TestVolumesInheritDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
volume_defaults:
  probe_num_rays: 128
volumes:
  - name: Atrium
    probe_counts: [8, 4, 8]
    euler_angles: [0, 90, 0]
  - probe_relocation_enabled: false
    formats:
      irradiance: f32x4
`))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	require.Len(t, cfg.Volumes, 2)

	atrium, second := cfg.Volumes[0], cfg.Volumes[1]
	assert.Equal(t, int32(128), atrium.ProbeNumRays)
	assert.Equal(t, int32(128), second.ProbeNumRays)
	assert.Equal(t, "Volume1", second.Name)
	assert.False(t, second.ProbeRelocationEnabled)
	assert.True(t, atrium.ProbeRelocationEnabled)
	assert.Equal(t, "f32x4", second.Formats.Irradiance)
	assert.Equal(t, "f16x2", second.Formats.Distance)
	assert.Equal(t, float32(0.97), atrium.ProbeHysteresis)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "volumes.yaml")
	require.NoError(t, os.WriteFile(path, []byte("workers: 3\nsimulation:\n  ticks: 10\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, 10, cfg.Simulation.Ticks)
	assert.Equal(t, 60, cfg.Simulation.ReportEvery)
	assert.Len(t, cfg.Volumes, 1)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Parse([]byte("volumes: {"))
	assert.Error(t, err)
}

func TestValidateReportsEveryProblem(t *testing.T) {
	cfg, err := Parse([]byte(`
volumes:
  - name: a
    probe_counts: [0, 4, 300]
    probe_spacing: [1, -1, 1]
    probe_num_rays: 70000
    probe_num_irradiance_interior_texels: 254
    coordinate_system: sideways
    movement_type: teleport
    formats:
      distance: u32
  - name: a
`))
	require.NoError(t, err)

	err = cfg.Validate()
	require.Error(t, err)
	for _, want := range []error{
		ErrInvalidProbeCounts,
		ErrInvalidProbeSpacing,
		ErrInvalidRayCount,
		ErrInvalidTexelCount,
		ErrInvalidCoordinateSystem,
		ErrInvalidMovementType,
		ErrInvalidFormat,
		ErrDuplicateVolume,
	} {
		assert.True(t, errors.Is(err, want), "missing %v", want)
	}

	assert.ErrorIs(t, (&Config{}).Validate(), ErrNoVolumes)
}

func TestVolumeDesc(t *testing.T) {
	cfg, err := Parse([]byte(`
volumes:
  - name: Hall
    coordinate_system: left-z-up
    origin: [1, 2, 3]
    euler_angles: [0, 0, 180]
    probe_counts: [4, 5, 6]
    probe_random_ray_backface_threshold: 0.3
    probe_variability_enabled: true
    formats:
      ray_data: f32x4
`))
	require.NoError(t, err)

	desc, err := cfg.Volumes[0].VolumeDesc(3)
	require.NoError(t, err)
	assert.Equal(t, "Hall", desc.Name)
	assert.Equal(t, uint32(3), desc.Index)
	assert.Equal(t, volume.CoordinateSystemLeftZUp, desc.CoordinateSystem)
	assert.Equal(t, volume.MovementTypeDefault, desc.MovementType)
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, desc.Origin)
	assert.InDelta(t, 3.14159265, float64(desc.EulerAngles[2]), 1e-5)
	assert.Equal(t, common.Int3{4, 5, 6}, desc.ProbeCounts)
	assert.Equal(t, float32(0.3), desc.ProbeRandomRayBackfaceThreshold)
	assert.True(t, desc.ProbeVariabilityEnabled)
	assert.Equal(t, volume.TextureFormatF32x4, desc.Formats.RayData)
	assert.Equal(t, volume.TextureFormatU32, desc.Formats.Irradiance)

	bad := cfg.Volumes[0]
	bad.ProbeCounts = [3]int32{4, 0, 4}
	_, err = bad.VolumeDesc(0)
	assert.ErrorIs(t, err, ErrInvalidProbeCounts)
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg, err := Parse([]byte("volumes:\n  - name: One\n    probe_counts: [2, 3, 4]\n  - name: Two\n"))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "out.yaml")
	require.NoError(t, cfg.WriteYAML(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
