package volume

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-ddgi/common"
	"github.com/go-gl/mathgl/mgl32"
)

// MovementType selects how a volume moves through the world.
type MovementType uint32

const (
	// MovementTypeDefault is a rigid volume that may be translated and rotated freely.
	MovementTypeDefault MovementType = iota

	// MovementTypeScrolling is an infinite volume: probes stay fixed in probe space while the
	// effective origin chases a scroll anchor in whole-cell steps.
	MovementTypeScrolling
)

// String returns the config name of the movement type.
func (m MovementType) String() string {
	switch m {
	case MovementTypeDefault:
		return "default"
	case MovementTypeScrolling:
		return "scrolling"
	}
	return fmt.Sprintf("MovementType(%d)", uint32(m))
}

// ParseMovementType converts a config name into a MovementType.
//
// Parameters:
//   - s: "default" or "scrolling" (case-insensitive)
//
// Returns:
//   - MovementType: the parsed value
//   - error: error if the name is unknown
func ParseMovementType(s string) (MovementType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "default":
		return MovementTypeDefault, nil
	case "scrolling", "infinite-scrolling":
		return MovementTypeScrolling, nil
	}
	return 0, fmt.Errorf("unknown movement type %q", s)
}

// VolumeDesc is the owner-supplied configuration of a probe volume.
// Probe counts must be positive and spacing non-negative; the config package rejects
// anything else before a volume is built.
type VolumeDesc struct {
	// Name labels the volume in logs and GPU resource labels.
	Name string
	// Index is the slot of the volume in the descriptor buffer.
	Index uint32

	// CoordinateSystem selects handedness and up axis. It is fixed for the life of the volume.
	CoordinateSystem CoordinateSystem
	// MovementType decides whether the Euler angles (default) or the scroll anchor (scrolling) is authoritative.
	MovementType MovementType

	// Origin is the world-space center of the probe grid.
	Origin mgl32.Vec3
	// EulerAngles is the orientation in radians. Ignored in scrolling mode.
	EulerAngles mgl32.Vec3
	// ProbeSpacing is the world-space distance between adjacent probes on each axis.
	ProbeSpacing mgl32.Vec3
	// ProbeCounts is the number of probes on each axis.
	ProbeCounts common.Int3

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

	ProbeRelocationEnabled     bool
	ProbeClassificationEnabled bool
	ProbeVariabilityEnabled    bool

	// Formats holds the texel format of every texture resource.
	Formats TextureFormats
}

// DefaultVolumeDesc returns a 16x16x16 default-mode volume with the tuning values
// used by the reference sample scenes.
//
// Returns:
//   - VolumeDesc: a complete, valid description
func DefaultVolumeDesc() VolumeDesc {
	return VolumeDesc{
		Name:                             "ProbeVolume",
		CoordinateSystem:                 CoordinateSystemRight,
		MovementType:                     MovementTypeDefault,
		ProbeSpacing:                     mgl32.Vec3{1, 1, 1},
		ProbeCounts:                      common.Int3{16, 16, 16},
		ProbeNumRays:                     256,
		ProbeNumIrradianceInteriorTexels: 6,
		ProbeNumDistanceInteriorTexels:   14,
		ProbeHysteresis:                  0.97,
		ProbeMaxRayDistance:              10000,
		ProbeNormalBias:                  0.1,
		ProbeViewBias:                    0.1,
		ProbeDistanceExponent:            50,
		ProbeIrradianceEncodingGamma:     5,
		ProbeIrradianceThreshold:         0.2,
		ProbeBrightnessThreshold:         2,
		ProbeRandomRayBackfaceThreshold:  0.1,
		ProbeFixedRayBackfaceThreshold:   0.25,
		ProbeMinFrontfaceDistance:        1,
		ProbeRelocationEnabled:           true,
		ProbeClassificationEnabled:       true,
		Formats:                          DefaultTextureFormats(),
	}
}
