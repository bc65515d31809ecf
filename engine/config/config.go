// Package config loads probe volume configuration from YAML.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/Carmen-Shannon/oxy-ddgi/common"
	"github.com/Carmen-Shannon/oxy-ddgi/engine/volume"
	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Limits imposed by the packed GPU descriptor.
const (
	MaxProbeCount     = 255
	MaxProbeRays      = 65535
	MaxInteriorTexels = 253
)

var (
	ErrNoVolumes               = errors.New("no volumes configured")
	ErrDuplicateVolume         = errors.New("duplicate volume name")
	ErrInvalidProbeCounts      = errors.New("probe counts must be in [1, 255]")
	ErrInvalidProbeSpacing     = errors.New("probe spacing must be positive")
	ErrInvalidRayCount         = errors.New("probe ray count must be in [1, 65535]")
	ErrInvalidTexelCount       = errors.New("interior texel count must be in [1, 253]")
	ErrInvalidFormat           = errors.New("invalid texture format")
	ErrInvalidCoordinateSystem = errors.New("invalid coordinate system")
	ErrInvalidMovementType     = errors.New("invalid movement type")
)

// Config holds the probe volumes and the simulation driving them.
type Config struct {
	Workers        int              `yaml:"workers"`
	Simulation     SimulationConfig `yaml:"simulation"`
	VolumeDefaults VolumeConfig     `yaml:"volume_defaults"`
	Volumes        []VolumeConfig   `yaml:"volumes"`
}

// SimulationConfig describes the anchor path replayed by the ddgiprobe command.
type SimulationConfig struct {
	Ticks          int        `yaml:"ticks"`
	TickRate       float64    `yaml:"tick_rate"` // ticks per second, 0 runs unpaced
	AnchorVelocity [3]float32 `yaml:"anchor_velocity"` // world units per tick
	AnchorRadius   float32    `yaml:"anchor_radius"`   // non-zero circles the anchor in the XZ plane
	ReportEvery    int        `yaml:"report_every"`
	DumpPath       string     `yaml:"dump_path"`
}

// VolumeConfig is the YAML form of a volume.VolumeDesc.
type VolumeConfig struct {
	Name             string     `yaml:"name"`
	CoordinateSystem string     `yaml:"coordinate_system"`
	MovementType     string     `yaml:"movement_type"`
	Origin           [3]float32 `yaml:"origin"`
	EulerAngles      [3]float32 `yaml:"euler_angles"` // degrees
	ProbeSpacing     [3]float32 `yaml:"probe_spacing"`
	ProbeCounts      [3]int32   `yaml:"probe_counts"`

	ProbeNumRays                     int32 `yaml:"probe_num_rays"`
	ProbeNumIrradianceInteriorTexels int32 `yaml:"probe_num_irradiance_interior_texels"`
	ProbeNumDistanceInteriorTexels   int32 `yaml:"probe_num_distance_interior_texels"`

	ProbeHysteresis                 float32 `yaml:"probe_hysteresis"`
	ProbeMaxRayDistance             float32 `yaml:"probe_max_ray_distance"`
	ProbeNormalBias                 float32 `yaml:"probe_normal_bias"`
	ProbeViewBias                   float32 `yaml:"probe_view_bias"`
	ProbeDistanceExponent           float32 `yaml:"probe_distance_exponent"`
	ProbeIrradianceEncodingGamma    float32 `yaml:"probe_irradiance_encoding_gamma"`
	ProbeIrradianceThreshold        float32 `yaml:"probe_irradiance_threshold"`
	ProbeBrightnessThreshold        float32 `yaml:"probe_brightness_threshold"`
	ProbeRandomRayBackfaceThreshold float32 `yaml:"probe_random_ray_backface_threshold"`
	ProbeFixedRayBackfaceThreshold  float32 `yaml:"probe_fixed_ray_backface_threshold"`
	ProbeMinFrontfaceDistance       float32 `yaml:"probe_min_frontface_distance"`

	ProbeRelocationEnabled     bool `yaml:"probe_relocation_enabled"`
	ProbeClassificationEnabled bool `yaml:"probe_classification_enabled"`
	ProbeVariabilityEnabled    bool `yaml:"probe_variability_enabled"`

	Seed    uint64        `yaml:"seed"`
	Formats FormatsConfig `yaml:"formats"`
}

// FormatsConfig names the texel format of each volume texture.
type FormatsConfig struct {
	RayData     string `yaml:"ray_data"`
	Irradiance  string `yaml:"irradiance"`
	Distance    string `yaml:"distance"`
	Data        string `yaml:"data"`
	Variability string `yaml:"variability"`
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used. Every entry under volumes starts from
// volume_defaults, so a volume only lists what it changes.
//
// Parameters:
//   - path: the YAML file to read, or ""
//
// Returns:
//   - *Config: the merged configuration
//   - error: error if a file cannot be read or parsed
func Load(path string) (*Config, error) {
	if path == "" {
		return Parse(nil)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(data)
}

// Parse is Load for an in-memory document.
//
// Parameters:
//   - data: YAML merged over the embedded defaults, may be empty
//
// Returns:
//   - *Config: the merged configuration
//   - error: error if the document cannot be parsed
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := cfg.merge(defaultsYAML); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}
	if len(data) > 0 {
		if err := cfg.merge(data); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.Workers = common.Coalesce(cfg.Workers, runtime.NumCPU())
	for i := range cfg.Volumes {
		cfg.Volumes[i].Name = common.Coalesce(cfg.Volumes[i].Name, fmt.Sprintf("Volume%d", i))
	}
	return cfg, nil
}

// merge unmarshals data over c, then rebuilds the volume list on top of the volume defaults.
// A document without a volumes key keeps the current list.
func (c *Config) merge(data []byte) error {
	if err := yaml.Unmarshal(data, c); err != nil {
		return err
	}

	var raw struct {
		Volumes []yaml.Node `yaml:"volumes"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Volumes == nil {
		return nil
	}

	volumes := make([]VolumeConfig, len(raw.Volumes))
	for i := range raw.Volumes {
		volumes[i] = c.VolumeDefaults
		if err := raw.Volumes[i].Decode(&volumes[i]); err != nil {
			return fmt.Errorf("volume %d: %w", i, err)
		}
	}
	c.Volumes = volumes
	return nil
}

// Validate checks every volume against the ranges the GPU descriptor can carry.
//
// Returns:
//   - error: every problem found joined into one error, or nil
func (c *Config) Validate() error {
	if len(c.Volumes) == 0 {
		return ErrNoVolumes
	}

	var errs []error
	seen := make(map[string]bool, len(c.Volumes))
	for _, v := range c.Volumes {
		if seen[v.Name] {
			errs = append(errs, fmt.Errorf("volume %q: %w", v.Name, ErrDuplicateVolume))
		}
		seen[v.Name] = true
		if err := v.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("volume %q: %w", v.Name, err))
		}
	}
	return errors.Join(errs...)
}

// Validate checks a single volume.
//
// Returns:
//   - error: every problem found joined into one error, or nil
func (v VolumeConfig) Validate() error {
	var errs []error
	for _, n := range v.ProbeCounts {
		if n < 1 || n > MaxProbeCount {
			errs = append(errs, fmt.Errorf("%w: got %v", ErrInvalidProbeCounts, v.ProbeCounts))
			break
		}
	}
	for _, s := range v.ProbeSpacing {
		if !(s > 0) {
			errs = append(errs, fmt.Errorf("%w: got %v", ErrInvalidProbeSpacing, v.ProbeSpacing))
			break
		}
	}
	if v.ProbeNumRays < 1 || v.ProbeNumRays > MaxProbeRays {
		errs = append(errs, fmt.Errorf("%w: got %d", ErrInvalidRayCount, v.ProbeNumRays))
	}
	for _, n := range []int32{v.ProbeNumIrradianceInteriorTexels, v.ProbeNumDistanceInteriorTexels} {
		if n < 1 || n > MaxInteriorTexels {
			errs = append(errs, fmt.Errorf("%w: got %d", ErrInvalidTexelCount, n))
		}
	}
	if _, err := volume.ParseCoordinateSystem(v.CoordinateSystem); err != nil {
		errs = append(errs, fmt.Errorf("%w: %w", ErrInvalidCoordinateSystem, err))
	}
	if _, err := volume.ParseMovementType(v.MovementType); err != nil {
		errs = append(errs, fmt.Errorf("%w: %w", ErrInvalidMovementType, err))
	}
	if _, err := v.Formats.TextureFormats(); err != nil {
		errs = append(errs, fmt.Errorf("%w: %w", ErrInvalidFormat, err))
	}
	return errors.Join(errs...)
}

// TextureFormats parses the format names.
//
// Returns:
//   - volume.TextureFormats: the parsed selection
//   - error: error if a name is unknown or unsupported by its texture
func (f FormatsConfig) TextureFormats() (volume.TextureFormats, error) {
	var formats volume.TextureFormats
	var err error
	fields := []struct {
		name string
		dst  *volume.TextureFormat
	}{
		{f.RayData, &formats.RayData},
		{f.Irradiance, &formats.Irradiance},
		{f.Distance, &formats.Distance},
		{f.Data, &formats.Data},
		{f.Variability, &formats.Variability},
	}
	for _, field := range fields {
		if *field.dst, err = volume.ParseTextureFormat(field.name); err != nil {
			return formats, err
		}
	}
	return formats, formats.Validate()
}

// VolumeDesc converts the entry into a volume description.
//
// Parameters:
//   - index: the descriptor slot assigned to the volume
//
// Returns:
//   - volume.VolumeDesc: the description
//   - error: error if the entry does not validate
func (v VolumeConfig) VolumeDesc(index uint32) (volume.VolumeDesc, error) {
	if err := v.Validate(); err != nil {
		return volume.VolumeDesc{}, err
	}
	cs, _ := volume.ParseCoordinateSystem(v.CoordinateSystem)
	mt, _ := volume.ParseMovementType(v.MovementType)
	formats, _ := v.Formats.TextureFormats()

	return volume.VolumeDesc{
		Name:             v.Name,
		Index:            index,
		CoordinateSystem: cs,
		MovementType:     mt,
		Origin:           mgl32.Vec3(v.Origin),
		EulerAngles: mgl32.Vec3{
			mgl32.DegToRad(v.EulerAngles[0]),
			mgl32.DegToRad(v.EulerAngles[1]),
			mgl32.DegToRad(v.EulerAngles[2]),
		},
		ProbeSpacing: mgl32.Vec3(v.ProbeSpacing),
		ProbeCounts:  common.Int3(v.ProbeCounts),

		ProbeNumRays:                     v.ProbeNumRays,
		ProbeNumIrradianceInteriorTexels: v.ProbeNumIrradianceInteriorTexels,
		ProbeNumDistanceInteriorTexels:   v.ProbeNumDistanceInteriorTexels,

		ProbeHysteresis:                 v.ProbeHysteresis,
		ProbeMaxRayDistance:             v.ProbeMaxRayDistance,
		ProbeNormalBias:                 v.ProbeNormalBias,
		ProbeViewBias:                   v.ProbeViewBias,
		ProbeDistanceExponent:           v.ProbeDistanceExponent,
		ProbeIrradianceEncodingGamma:    v.ProbeIrradianceEncodingGamma,
		ProbeIrradianceThreshold:        v.ProbeIrradianceThreshold,
		ProbeBrightnessThreshold:        v.ProbeBrightnessThreshold,
		ProbeRandomRayBackfaceThreshold: v.ProbeRandomRayBackfaceThreshold,
		ProbeFixedRayBackfaceThreshold:  v.ProbeFixedRayBackfaceThreshold,
		ProbeMinFrontfaceDistance:       v.ProbeMinFrontfaceDistance,

		ProbeRelocationEnabled:     v.ProbeRelocationEnabled,
		ProbeClassificationEnabled: v.ProbeClassificationEnabled,
		ProbeVariabilityEnabled:    v.ProbeVariabilityEnabled,

		Formats: formats,
	}, nil
}

// WriteYAML writes the configuration to path.
//
// Parameters:
//   - path: the destination file
//
// Returns:
//   - error: error if marshaling or writing fails
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
