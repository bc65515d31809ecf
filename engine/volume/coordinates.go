package volume

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-ddgi/common"
)

// CoordinateSystem is the handedness and up-axis convention of the host world.
// It decides how linear probe indices map onto the grid and how the grid unrolls into 2D textures.
type CoordinateSystem uint32

const (
	// CoordinateSystemLeft is left handed, Y up.
	CoordinateSystemLeft CoordinateSystem = iota
	// CoordinateSystemLeftZUp is left handed, Z up.
	CoordinateSystemLeftZUp
	// CoordinateSystemRight is right handed, Y up.
	CoordinateSystemRight
	// CoordinateSystemRightZUp is right handed, Z up.
	CoordinateSystemRightZUp
)

// CoordinateSystems lists every supported convention.
var CoordinateSystems = []CoordinateSystem{
	CoordinateSystemLeft,
	CoordinateSystemLeftZUp,
	CoordinateSystemRight,
	CoordinateSystemRightZUp,
}

// String returns the config name of the coordinate system.
func (c CoordinateSystem) String() string {
	switch c {
	case CoordinateSystemLeft:
		return "left"
	case CoordinateSystemLeftZUp:
		return "left-z-up"
	case CoordinateSystemRight:
		return "right"
	case CoordinateSystemRightZUp:
		return "right-z-up"
	}
	return fmt.Sprintf("CoordinateSystem(%d)", uint32(c))
}

// ZUp reports whether Z is the up axis.
func (c CoordinateSystem) ZUp() bool {
	return c == CoordinateSystemLeftZUp || c == CoordinateSystemRightZUp
}

// ParseCoordinateSystem converts a config name into a CoordinateSystem.
//
// Parameters:
//   - s: one of "left", "left-z-up", "right", "right-z-up" (case-insensitive)
//
// Returns:
//   - CoordinateSystem: the parsed value
//   - error: error if the name is unknown
func ParseCoordinateSystem(s string) (CoordinateSystem, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "" {
		return CoordinateSystemRight, nil
	}
	for _, c := range CoordinateSystems {
		if c.String() == name {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown coordinate system %q", s)
}

// gridCoords maps a linear probe index to grid coordinates.
// Y-up worlds vary X fastest, then Z, then Y. Left Z-up varies Y fastest, then X, then Z.
// Right Z-up varies X fastest, then Y, then Z.
func (c CoordinateSystem) gridCoords(i int32, counts common.Int3) common.Int3 {
	cx, cy, cz := counts[0], counts[1], counts[2]
	switch c {
	case CoordinateSystemLeftZUp:
		return common.Int3{(i / cy) % cx, i % cy, i / (cx * cy)}
	case CoordinateSystemRightZUp:
		return common.Int3{i % cx, (i / cx) % cy, i / (cx * cy)}
	default:
		return common.Int3{i % cx, i / (cx * cz), (i / cx) % cz}
	}
}

// linearIndex is the inverse of gridCoords.
func (c CoordinateSystem) linearIndex(g, counts common.Int3) int32 {
	cx, cy, cz := counts[0], counts[1], counts[2]
	switch c {
	case CoordinateSystemLeftZUp:
		return g[2]*cx*cy + g[0]*cy + g[1]
	case CoordinateSystemRightZUp:
		return g[2]*cx*cy + g[1]*cx + g[0]
	default:
		return g[1]*cx*cz + g[2]*cx + g[0]
	}
}

// counts2D returns how the probe grid unrolls into a 2D texture array:
// probes per row, rows per layer and layers.
func (c CoordinateSystem) counts2D(counts common.Int3) (width, height, layers uint32) {
	cx, cy, cz := uint32(counts[0]), uint32(counts[1]), uint32(counts[2])
	switch c {
	case CoordinateSystemLeftZUp:
		return cy, cx, cz
	case CoordinateSystemRightZUp:
		return cx, cy, cz
	default:
		return cx, cz, cy
	}
}
