package volume

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-ddgi/common"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

// volumeImpl is the implementation of the Volume interface.
type volumeImpl struct {
	desc VolumeDesc

	rotationMatrix     mgl32.Mat3
	rotationQuaternion mgl32.Quat

	probeRayRotationMatrix     mgl32.Mat3
	probeRayRotationQuaternion mgl32.Quat

	scrollAnchor     mgl32.Vec3
	scrollOffsets    common.Int3
	scrollClear      [3]bool
	scrollDirections [3]int32

	uavOffset uint32
	srvOffset uint32

	seed uint64
	rng  *Random
}

// Volume is the CPU-side state of one probe grid: its geometry, its movement, the random
// rotation applied to probe rays, and the descriptors handed to the GPU passes that consume it.
//
// A Volume is not safe for concurrent use. Update must be called once per tick before the
// descriptors for that tick are read; descriptor getters are pure reads.
type Volume interface {
	// Name returns the label of the volume.
	//
	// Returns:
	//   - string: the volume name
	Name() string

	// Index returns the slot of the volume in the descriptor buffer.
	//
	// Returns:
	//   - uint32: the descriptor index
	Index() uint32

	// Desc returns a copy of the current configuration, including setter changes.
	//
	// Returns:
	//   - VolumeDesc: the configuration snapshot
	Desc() VolumeDesc

	// CoordinateSystem returns the convention the volume was built with.
	//
	// Returns:
	//   - CoordinateSystem: the coordinate system
	CoordinateSystem() CoordinateSystem

	// Update advances the volume one tick: a new random ray rotation is drawn and, for
	// scrolling volumes, the grid scrolls toward the anchor.
	Update()

	// SeedRNG reseeds the random ray rotation generator.
	//
	// Parameters:
	//   - seed: the new seed
	SeedRNG(seed uint64)

	// NumProbes returns the total number of probes in the grid.
	//
	// Returns:
	//   - int: counts.x * counts.y * counts.z
	NumProbes() int

	// ProbeCounts returns the number of probes on each axis.
	//
	// Returns:
	//   - common.Int3: the per-axis counts
	ProbeCounts() common.Int3

	// NumRaysPerProbe returns the number of rays traced per probe per update.
	//
	// Returns:
	//   - int32: the ray count
	NumRaysPerProbe() int32

	// ProbeGridCoords maps a linear probe index to grid coordinates. Panics if the index is out of range.
	//
	// Parameters:
	//   - probeIndex: an index in [0, NumProbes())
	//
	// Returns:
	//   - common.Int3: the grid coordinates
	ProbeGridCoords(probeIndex int) common.Int3

	// ProbeIndex maps grid coordinates back to a linear probe index. Panics if a coordinate is out of range.
	//
	// Parameters:
	//   - coords: grid coordinates inside the probe counts
	//
	// Returns:
	//   - int: the linear index
	ProbeIndex(coords common.Int3) int

	// ProbeWorldPosition returns the world-space position of a probe. The grid is centered on
	// the effective origin. The volume rotation is not applied; shaders rotate the grid offset
	// with the descriptor's rotation. Panics if the index is out of range.
	//
	// Parameters:
	//   - probeIndex: an index in [0, NumProbes())
	//
	// Returns:
	//   - mgl32.Vec3: the world-space position
	ProbeWorldPosition(probeIndex int) mgl32.Vec3

	// ScrollingProbeIndex returns the storage slot holding a probe's data once scroll offsets
	// are applied. Equals probeIndex while the offsets are zero. Panics if the index is out of range.
	//
	// Parameters:
	//   - probeIndex: an index in [0, NumProbes())
	//
	// Returns:
	//   - int: the storage index
	ScrollingProbeIndex(probeIndex int) int

	// ProbeCounts2D returns how the grid unrolls into a texture array.
	//
	// Returns:
	//   - TextureDimensions: probes per row, rows per layer, and layers
	ProbeCounts2D() TextureDimensions

	// AxisAlignedBoundingBox returns the world-space box enclosing every probe.
	//
	// Returns:
	//   - common.AABB: the enclosing box
	AxisAlignedBoundingBox() common.AABB

	// OrientedBoundingBox returns the probe extent as an oriented box.
	//
	// Returns:
	//   - common.OBB: effective origin, rotation and half extents
	OrientedBoundingBox() common.OBB

	// Origin returns the literal origin field.
	//
	// Returns:
	//   - mgl32.Vec3: the stored origin
	Origin() mgl32.Vec3

	// EffectiveOrigin returns the world-space center of the grid: the origin plus the scroll
	// offsets in whole cells. In default mode it equals Origin.
	//
	// Returns:
	//   - mgl32.Vec3: the effective origin
	EffectiveOrigin() mgl32.Vec3

	// EulerAngles returns the configured orientation in radians.
	//
	// Returns:
	//   - mgl32.Vec3: rotation about X, Y and Z
	EulerAngles() mgl32.Vec3

	// RotationMatrix returns the volume orientation.
	//
	// Returns:
	//   - mgl32.Mat3: the rotation matrix
	RotationMatrix() mgl32.Mat3

	// RotationQuaternion returns the volume orientation as a quaternion.
	//
	// Returns:
	//   - mgl32.Quat: the unit quaternion
	RotationQuaternion() mgl32.Quat

	// ProbeRayRotationMatrix returns the ray rotation drawn by the last Update.
	//
	// Returns:
	//   - mgl32.Mat3: the rotation matrix
	ProbeRayRotationMatrix() mgl32.Mat3

	// ProbeRayRotationQuaternion returns the ray rotation drawn by the last Update as a quaternion.
	//
	// Returns:
	//   - mgl32.Quat: the unit quaternion
	ProbeRayRotationQuaternion() mgl32.Quat

	// MovementType returns the current movement type.
	//
	// Returns:
	//   - MovementType: default or scrolling
	MovementType() MovementType

	// ScrollAnchor returns the point the effective origin scrolls toward.
	//
	// Returns:
	//   - mgl32.Vec3: the scroll anchor
	ScrollAnchor() mgl32.Vec3

	// ScrollOffsets returns the accumulated whole-cell offsets per axis.
	//
	// Returns:
	//   - common.Int3: the scroll offsets
	ScrollOffsets() common.Int3

	// ScrollClear returns, per axis, whether the last Update scrolled the grid on that axis.
	//
	// Returns:
	//   - [3]bool: the clear flags
	ScrollClear() [3]bool

	// ScrollDirections returns the sign of the last scroll translation per axis.
	//
	// Returns:
	//   - [3]int32: -1, 0 or +1 per axis
	ScrollDirections() [3]int32

	// SetOrigin sets the literal origin.
	//
	// Parameters:
	//   - origin: the new origin
	SetOrigin(origin mgl32.Vec3)

	// SetEulerAngles sets the orientation in radians and re-derives the rotation matrix and
	// quaternion. Ignored by scrolling volumes, which stay axis aligned.
	//
	// Parameters:
	//   - angles: rotation about X, Y and Z
	SetEulerAngles(angles mgl32.Vec3)

	// SetMovementType switches between default and scrolling movement. Entering scrolling mode
	// anchors the grid at its origin; leaving it bakes the effective origin into the origin.
	// Scroll offsets are reset in both directions.
	//
	// Parameters:
	//   - movementType: the new movement type
	SetMovementType(movementType MovementType)

	// SetScrollAnchor sets the point a scrolling volume follows.
	//
	// Parameters:
	//   - anchor: the world-space anchor
	SetScrollAnchor(anchor mgl32.Vec3)

	// SetProbeSpacing sets the distance between adjacent probes.
	//
	// Parameters:
	//   - spacing: the per-axis spacing
	SetProbeSpacing(spacing mgl32.Vec3)

	// SetProbeHysteresis sets how much of the previous irradiance and distance survives each blend.
	//
	// Parameters:
	//   - v: the blend weight in [0, 1]
	SetProbeHysteresis(v float32)

	// SetProbeMaxRayDistance sets the distance at which probe rays stop tracing.
	//
	// Parameters:
	//   - v: the distance in world units
	SetProbeMaxRayDistance(v float32)

	// SetProbeNormalBias sets the offset along the surface normal used when sampling probes.
	//
	// Parameters:
	//   - v: the bias in world units
	SetProbeNormalBias(v float32)

	// SetProbeViewBias sets the offset toward the viewer used when sampling probes.
	//
	// Parameters:
	//   - v: the bias in world units
	SetProbeViewBias(v float32)

	// SetProbeDistanceExponent sets the exponent applied to depth in the Chebyshev visibility test.
	//
	// Parameters:
	//   - v: the exponent
	SetProbeDistanceExponent(v float32)

	// SetProbeIrradianceEncodingGamma sets the gamma applied to irradiance before it is stored.
	//
	// Parameters:
	//   - v: the gamma
	SetProbeIrradianceEncodingGamma(v float32)

	// SetProbeIrradianceThreshold sets the irradiance change above which hysteresis is reduced.
	//
	// Parameters:
	//   - v: the threshold
	SetProbeIrradianceThreshold(v float32)

	// SetProbeBrightnessThreshold sets the largest irradiance change accepted in one update.
	//
	// Parameters:
	//   - v: the threshold
	SetProbeBrightnessThreshold(v float32)

	// SetProbeMinFrontfaceDistance sets the closest a probe may sit to a front face before relocation.
	//
	// Parameters:
	//   - v: the distance in world units
	SetProbeMinFrontfaceDistance(v float32)

	// SetProbeRandomRayBackfaceThreshold sets the ratio of random rays that may hit back faces
	// before a probe is considered inside geometry. Clamped to [0, 1].
	//
	// Parameters:
	//   - v: the threshold
	SetProbeRandomRayBackfaceThreshold(v float32)

	// SetProbeFixedRayBackfaceThreshold sets the ratio of fixed rays that may hit back faces
	// before a probe is relocated or classified inactive. Clamped to [0, 1].
	//
	// Parameters:
	//   - v: the threshold
	SetProbeFixedRayBackfaceThreshold(v float32)

	// SetProbeRelocationEnabled toggles moving probes out of geometry.
	//
	// Parameters:
	//   - enabled: whether relocation runs
	SetProbeRelocationEnabled(enabled bool)

	// SetProbeClassificationEnabled toggles disabling probes that cannot contribute.
	//
	// Parameters:
	//   - enabled: whether classification runs
	SetProbeClassificationEnabled(enabled bool)

	// SetProbeVariabilityEnabled toggles the variability textures. Changes GPU memory use.
	//
	// Parameters:
	//   - enabled: whether variability is tracked
	SetProbeVariabilityEnabled(enabled bool)

	// DescGPU returns the full precision descriptor of the current state.
	//
	// Returns:
	//   - GPUVolumeDesc: the descriptor snapshot
	DescGPU() GPUVolumeDesc

	// DescGPUPacked returns the 128-byte packed descriptor of the current state.
	//
	// Returns:
	//   - GPUVolumeDescPacked: the packed snapshot
	DescGPUPacked() GPUVolumeDescPacked

	// Constants returns the per-dispatch constants selecting this volume.
	//
	// Returns:
	//   - GPUVolumeConstants: the volume index and resource offsets
	Constants() GPUVolumeConstants

	// TextureDimensions returns the size of one of the volume's textures.
	//
	// Parameters:
	//   - t: the texture type
	//
	// Returns:
	//   - TextureDimensions: width, height and array layers
	TextureDimensions(t TextureType) TextureDimensions

	// RayDispatchDimensions returns the thread grid of the ray trace pass: one thread per ray
	// per probe, laid out like the ray data texture.
	//
	// Returns:
	//   - TextureDimensions: rays per probe, probes per layer and layers
	RayDispatchDimensions() TextureDimensions

	// TextureDescriptors returns the WebGPU allocation specs of every enabled texture.
	//
	// Returns:
	//   - []wgpu.TextureDescriptor: one descriptor per enabled resource, in TextureTypes order
	TextureDescriptors() []wgpu.TextureDescriptor

	// GPUMemoryUsedInBytes estimates the GPU memory of the enabled textures plus the packed descriptor.
	//
	// Returns:
	//   - uint64: the estimate in bytes
	GPUMemoryUsedInBytes() uint64
}

var _ Volume = &volumeImpl{}

// NewVolume creates a Volume from a description.
// Default volumes derive their rotation from the Euler angles; scrolling volumes are axis
// aligned and anchored at the origin unless WithScrollAnchor says otherwise.
//
// Parameters:
//   - desc: the volume description
//   - options: functional options applied after the description
//
// Returns:
//   - Volume: the new volume
func NewVolume(desc VolumeDesc, options ...VolumeBuilderOption) Volume {
	v := &volumeImpl{
		desc:                       desc,
		rotationMatrix:             mgl32.Ident3(),
		rotationQuaternion:         mgl32.QuatIdent(),
		probeRayRotationMatrix:     mgl32.Ident3(),
		probeRayRotationQuaternion: mgl32.QuatIdent(),
		scrollAnchor:               desc.Origin,
	}
	v.desc.ProbeRandomRayBackfaceThreshold = common.Clamp01(desc.ProbeRandomRayBackfaceThreshold)
	v.desc.ProbeFixedRayBackfaceThreshold = common.Clamp01(desc.ProbeFixedRayBackfaceThreshold)

	for _, opt := range options {
		opt(v)
	}

	if v.rng == nil {
		v.rng = NewRandom(v.seed)
	}
	if v.desc.MovementType == MovementTypeDefault {
		v.computeRotation()
	}
	return v
}

func (v *volumeImpl) Name() string {
	return v.desc.Name
}

func (v *volumeImpl) Index() uint32 {
	return v.desc.Index
}

func (v *volumeImpl) Desc() VolumeDesc {
	return v.desc
}

func (v *volumeImpl) CoordinateSystem() CoordinateSystem {
	return v.desc.CoordinateSystem
}

func (v *volumeImpl) Update() {
	v.probeRayRotationMatrix = RandomRotation(v.rng)
	v.probeRayRotationQuaternion = common.Mat3ToQuat(v.probeRayRotationMatrix)

	if v.desc.MovementType == MovementTypeScrolling {
		v.updateScroll()
	}
}

func (v *volumeImpl) SeedRNG(seed uint64) {
	v.seed = seed
	v.rng.Seed(seed)
}

func (v *volumeImpl) NumProbes() int {
	return v.desc.ProbeCounts.Product()
}

func (v *volumeImpl) ProbeCounts() common.Int3 {
	return v.desc.ProbeCounts
}

func (v *volumeImpl) NumRaysPerProbe() int32 {
	return v.desc.ProbeNumRays
}

// checkProbeIndex panics when probeIndex is outside the grid.
func (v *volumeImpl) checkProbeIndex(probeIndex int) {
	if n := v.NumProbes(); probeIndex < 0 || probeIndex >= n {
		panic(fmt.Sprintf("volume: probe index %d out of range [0, %d)", probeIndex, n))
	}
}

func (v *volumeImpl) ProbeGridCoords(probeIndex int) common.Int3 {
	v.checkProbeIndex(probeIndex)
	return v.desc.CoordinateSystem.gridCoords(int32(probeIndex), v.desc.ProbeCounts)
}

func (v *volumeImpl) ProbeIndex(coords common.Int3) int {
	for _, a := range common.Axes {
		if coords[a] < 0 || coords[a] >= v.desc.ProbeCounts[a] {
			panic(fmt.Sprintf("volume: probe coordinate %s=%d out of range [0, %d)", a, coords[a], v.desc.ProbeCounts[a]))
		}
	}
	return int(v.desc.CoordinateSystem.linearIndex(coords, v.desc.ProbeCounts))
}

// halfExtent returns spacing * (counts - 1) / 2.
func (v *volumeImpl) halfExtent() mgl32.Vec3 {
	var e mgl32.Vec3
	for _, a := range common.Axes {
		e[a] = v.desc.ProbeSpacing[a] * float32(v.desc.ProbeCounts[a]-1) * 0.5
	}
	return e
}

func (v *volumeImpl) ProbeWorldPosition(probeIndex int) mgl32.Vec3 {
	coords := v.ProbeGridCoords(probeIndex)
	origin := v.EffectiveOrigin()
	half := v.halfExtent()

	var pos mgl32.Vec3
	for _, a := range common.Axes {
		pos[a] = origin[a] + v.desc.ProbeSpacing[a]*float32(coords[a]) - half[a]
	}
	return pos
}

func (v *volumeImpl) ScrollingProbeIndex(probeIndex int) int {
	coords := v.ProbeGridCoords(probeIndex)
	var storage common.Int3
	for _, a := range common.Axes {
		count := v.desc.ProbeCounts[a]
		storage[a] = ((coords[a]+v.scrollOffsets[a])%count + count) % count
	}
	return int(v.desc.CoordinateSystem.linearIndex(storage, v.desc.ProbeCounts))
}

func (v *volumeImpl) ProbeCounts2D() TextureDimensions {
	w, h, layers := v.desc.CoordinateSystem.counts2D(v.desc.ProbeCounts)
	return TextureDimensions{Width: w, Height: h, Layers: layers}
}

func (v *volumeImpl) AxisAlignedBoundingBox() common.AABB {
	half := v.halfExtent()
	origin := v.EffectiveOrigin()
	if v.desc.MovementType == MovementTypeScrolling || v.desc.EulerAngles == (mgl32.Vec3{}) {
		return common.AABB{Min: origin.Sub(half), Max: origin.Add(half)}
	}
	local := common.AABB{Min: half.Mul(-1), Max: half}
	return common.RotateAABB(local, v.rotationMatrix, origin)
}

func (v *volumeImpl) OrientedBoundingBox() common.OBB {
	return common.OBB{
		Origin:   v.EffectiveOrigin(),
		Rotation: v.rotationQuaternion,
		Extents:  v.halfExtent(),
	}
}

func (v *volumeImpl) Origin() mgl32.Vec3 {
	return v.desc.Origin
}

func (v *volumeImpl) EulerAngles() mgl32.Vec3 {
	return v.desc.EulerAngles
}

func (v *volumeImpl) RotationMatrix() mgl32.Mat3 {
	return v.rotationMatrix
}

func (v *volumeImpl) RotationQuaternion() mgl32.Quat {
	return v.rotationQuaternion
}

func (v *volumeImpl) ProbeRayRotationMatrix() mgl32.Mat3 {
	return v.probeRayRotationMatrix
}

func (v *volumeImpl) ProbeRayRotationQuaternion() mgl32.Quat {
	return v.probeRayRotationQuaternion
}

func (v *volumeImpl) MovementType() MovementType {
	return v.desc.MovementType
}

func (v *volumeImpl) SetOrigin(origin mgl32.Vec3) {
	v.desc.Origin = origin
}

func (v *volumeImpl) SetEulerAngles(angles mgl32.Vec3) {
	if v.desc.MovementType != MovementTypeDefault {
		return
	}
	v.desc.EulerAngles = angles
	v.computeRotation()
}

// computeRotation re-derives the rotation matrix and quaternion from the Euler angles.
func (v *volumeImpl) computeRotation() {
	if v.desc.CoordinateSystem.ZUp() {
		v.rotationMatrix = common.EulerToMat3ZUp(v.desc.EulerAngles)
	} else {
		v.rotationMatrix = common.EulerToMat3YUp(v.desc.EulerAngles)
	}
	v.rotationQuaternion = common.Mat3ToQuat(v.rotationMatrix)
}

func (v *volumeImpl) SetProbeSpacing(spacing mgl32.Vec3) {
	v.desc.ProbeSpacing = spacing
}

func (v *volumeImpl) SetProbeHysteresis(f float32)              { v.desc.ProbeHysteresis = f }
func (v *volumeImpl) SetProbeMaxRayDistance(f float32)          { v.desc.ProbeMaxRayDistance = f }
func (v *volumeImpl) SetProbeNormalBias(f float32)              { v.desc.ProbeNormalBias = f }
func (v *volumeImpl) SetProbeViewBias(f float32)                { v.desc.ProbeViewBias = f }
func (v *volumeImpl) SetProbeDistanceExponent(f float32)        { v.desc.ProbeDistanceExponent = f }
func (v *volumeImpl) SetProbeIrradianceEncodingGamma(f float32) { v.desc.ProbeIrradianceEncodingGamma = f }
func (v *volumeImpl) SetProbeIrradianceThreshold(f float32)     { v.desc.ProbeIrradianceThreshold = f }
func (v *volumeImpl) SetProbeBrightnessThreshold(f float32)     { v.desc.ProbeBrightnessThreshold = f }
func (v *volumeImpl) SetProbeMinFrontfaceDistance(f float32)    { v.desc.ProbeMinFrontfaceDistance = f }

func (v *volumeImpl) SetProbeRandomRayBackfaceThreshold(f float32) {
	v.desc.ProbeRandomRayBackfaceThreshold = common.Clamp01(f)
}

func (v *volumeImpl) SetProbeFixedRayBackfaceThreshold(f float32) {
	v.desc.ProbeFixedRayBackfaceThreshold = common.Clamp01(f)
}

func (v *volumeImpl) SetProbeRelocationEnabled(enabled bool)     { v.desc.ProbeRelocationEnabled = enabled }
func (v *volumeImpl) SetProbeClassificationEnabled(enabled bool) { v.desc.ProbeClassificationEnabled = enabled }
func (v *volumeImpl) SetProbeVariabilityEnabled(enabled bool)    { v.desc.ProbeVariabilityEnabled = enabled }

func (v *volumeImpl) DescGPU() GPUVolumeDesc {
	d := GPUVolumeDesc{
		Origin:                           v.desc.Origin,
		Rotation:                         v.rotationQuaternion,
		ProbeRayRotation:                 v.probeRayRotationQuaternion,
		MovementType:                     v.desc.MovementType,
		ProbeSpacing:                     v.desc.ProbeSpacing,
		ProbeCounts:                      v.desc.ProbeCounts,
		ProbeNumRays:                     v.desc.ProbeNumRays,
		ProbeNumIrradianceInteriorTexels: v.desc.ProbeNumIrradianceInteriorTexels,
		ProbeNumDistanceInteriorTexels:   v.desc.ProbeNumDistanceInteriorTexels,
		ProbeHysteresis:                  v.desc.ProbeHysteresis,
		ProbeMaxRayDistance:              v.desc.ProbeMaxRayDistance,
		ProbeNormalBias:                  v.desc.ProbeNormalBias,
		ProbeViewBias:                    v.desc.ProbeViewBias,
		ProbeDistanceExponent:            v.desc.ProbeDistanceExponent,
		ProbeIrradianceEncodingGamma:     v.desc.ProbeIrradianceEncodingGamma,
		ProbeIrradianceThreshold:         v.desc.ProbeIrradianceThreshold,
		ProbeBrightnessThreshold:         v.desc.ProbeBrightnessThreshold,
		ProbeRandomRayBackfaceThreshold:  common.Clamp01(v.desc.ProbeRandomRayBackfaceThreshold),
		ProbeFixedRayBackfaceThreshold:   common.Clamp01(v.desc.ProbeFixedRayBackfaceThreshold),
		ProbeMinFrontfaceDistance:        v.desc.ProbeMinFrontfaceDistance,
		ProbeScrollOffsets:               v.scrollOffsets,
		ProbeScrollClear:                 v.scrollClear,
		ProbeRayDataFormat:               rayDataFormatSelector(v.desc.Formats.RayData),
		ProbeIrradianceFormat:            irradianceFormatSelector(v.desc.Formats.Irradiance),
		ProbeRelocationEnabled:           v.desc.ProbeRelocationEnabled,
		ProbeClassificationEnabled:       v.desc.ProbeClassificationEnabled,
		ProbeVariabilityEnabled:          v.desc.ProbeVariabilityEnabled,
	}
	for _, a := range common.Axes {
		d.ProbeScrollDirections[a] = v.scrollDirections[a] > 0
	}
	return d
}

func (v *volumeImpl) DescGPUPacked() GPUVolumeDescPacked {
	d := v.DescGPU()
	if packCheckEnabled {
		if err := ValidatePackedData(d); err != nil {
			panic("volume: " + err.Error())
		}
	}
	return d.Pack()
}

func (v *volumeImpl) Constants() GPUVolumeConstants {
	return GPUVolumeConstants{
		VolumeIndex: v.desc.Index,
		UAVOffset:   v.uavOffset,
		SRVOffset:   v.srvOffset,
	}
}

func (v *volumeImpl) TextureDimensions(t TextureType) TextureDimensions {
	return textureDimensions(t, v.desc.CoordinateSystem, &v.desc)
}

func (v *volumeImpl) RayDispatchDimensions() TextureDimensions {
	return v.TextureDimensions(TextureTypeRayData)
}

func (v *volumeImpl) TextureDescriptors() []wgpu.TextureDescriptor {
	descs := make([]wgpu.TextureDescriptor, 0, len(TextureTypes))
	for _, t := range TextureTypes {
		if !textureEnabled(t, &v.desc) {
			continue
		}
		descs = append(descs, textureDescriptor(t, v.desc.CoordinateSystem, &v.desc))
	}
	return descs
}

func (v *volumeImpl) GPUMemoryUsedInBytes() uint64 {
	var total uint64
	for _, t := range TextureTypes {
		if !textureEnabled(t, &v.desc) {
			continue
		}
		total += v.TextureDimensions(t).Texels() * v.desc.Formats.Format(t).BytesPerTexel()
	}
	return total + uint64((&GPUVolumeDescPacked{}).Size())
}
