package volume

import "github.com/go-gl/mathgl/mgl32"

// VolumeBuilderOption is a function that configures a Volume instance during construction.
type VolumeBuilderOption func(*volumeImpl)

// WithSeed is an option builder that seeds the volume's ray rotation generator.
// Volumes built without it start from seed 0.
//
// Parameters:
//   - seed: the generator seed
//
// Returns:
//   - VolumeBuilderOption: a function that applies the seed option to a volumeImpl
func WithSeed(seed uint64) VolumeBuilderOption {
	return func(v *volumeImpl) {
		v.seed = seed
		v.rng = NewRandom(seed)
	}
}

// WithScrollAnchor is an option builder that sets the initial anchor of a scrolling volume.
// The first Update scrolls the grid toward it.
//
// Parameters:
//   - anchor: the world-space anchor
//
// Returns:
//   - VolumeBuilderOption: a function that applies the anchor option to a volumeImpl
func WithScrollAnchor(anchor mgl32.Vec3) VolumeBuilderOption {
	return func(v *volumeImpl) {
		v.scrollAnchor = anchor
	}
}

// WithResourceOffsets is an option builder that sets where the volume's textures start in the
// shared storage (UAV) and sampled (SRV) texture arrays.
//
// Parameters:
//   - uavOffset: first storage texture slot
//   - srvOffset: first sampled texture slot
//
// Returns:
//   - VolumeBuilderOption: a function that applies the offsets to a volumeImpl
func WithResourceOffsets(uavOffset, srvOffset uint32) VolumeBuilderOption {
	return func(v *volumeImpl) {
		v.uavOffset = uavOffset
		v.srvOffset = srvOffset
	}
}
