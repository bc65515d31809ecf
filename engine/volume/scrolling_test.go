package volume

import (
	"math/rand/v2"
	"testing"

	"github.com/Carmen-Shannon/oxy-ddgi/common"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrollingVolume(counts common.Int3, spacing mgl32.Vec3) Volume {
	d := testDesc(CoordinateSystemRight, counts)
	d.MovementType = MovementTypeScrolling
	d.ProbeSpacing = spacing
	return NewVolume(d, WithSeed(7))
}

func TestScrollingConservation(t *testing.T) {
	spacing := mgl32.Vec3{1, 0.5, 2}
	v := scrollingVolume(common.Int3{4, 5, 3}, spacing)
	walk := rand.New(rand.NewPCG(1, 2))

	anchor := mgl32.Vec3{}
	for step := 0; step < 2000; step++ {
		for _, a := range common.Axes {
			anchor[a] += (walk.Float32()*2 - 1) * 3 * spacing[a]
		}
		v.SetScrollAnchor(anchor)
		v.Update()

		eff := v.EffectiveOrigin()
		for _, a := range common.Axes {
			diff := anchor[a] - eff[a]
			if diff < 0 {
				diff = -diff
			}
			require.Less(t, diff, spacing[a]*(1+1e-4), "step %d axis %s", step, a)
		}
	}
}

func TestScrollOffsetsBoundedWhenOscillating(t *testing.T) {
	counts := common.Int3{4, 4, 4}
	v := scrollingVolume(counts, mgl32.Vec3{1, 1, 1})

	positions := []mgl32.Vec3{{0, 0, 0}, {1.5, -1.5, 2.5}}
	for step := 0; step < 10000; step++ {
		v.SetScrollAnchor(positions[step%2])
		v.Update()
		for _, a := range common.Axes {
			o := v.ScrollOffsets()[a]
			require.LessOrEqual(t, o, counts[a])
			require.GreaterOrEqual(t, o, -counts[a])
		}
	}
}

func TestScrollOffsetsBoundedWhenMovingSteadily(t *testing.T) {
	counts := common.Int3{4, 3, 5}
	v := scrollingVolume(counts, mgl32.Vec3{1, 1, 1})

	for step := 1; step <= 20000; step++ {
		v.SetScrollAnchor(mgl32.Vec3{float32(step), -float32(step), float32(2 * step)})
		v.Update()
		for _, a := range common.Axes {
			o := v.ScrollOffsets()[a]
			require.LessOrEqual(t, o, 2*counts[a], "step %d axis %s", step, a)
			require.GreaterOrEqual(t, o, -2*counts[a], "step %d axis %s", step, a)
		}
	}
	assert.Equal(t, mgl32.Vec3{20000, -20000, 40000}, v.EffectiveOrigin())
}

func TestScrollClearFlags(t *testing.T) {
	v := scrollingVolume(common.Int3{4, 4, 4}, mgl32.Vec3{1, 2, 0.5})
	walk := rand.New(rand.NewPCG(3, 4))

	anchor := mgl32.Vec3{}
	for step := 0; step < 1000; step++ {
		before := v.EffectiveOrigin()
		if walk.IntN(3) > 0 {
			for _, a := range common.Axes {
				anchor[a] += (walk.Float32()*2 - 1) * 4
			}
		}
		v.SetScrollAnchor(anchor)
		v.Update()

		after := v.EffectiveOrigin()
		clear := v.ScrollClear()
		for _, a := range common.Axes {
			require.Equal(t, before[a] != after[a], clear[a], "step %d axis %s", step, a)
		}
	}

	// a stationary anchor scrolls no further, so every flag drops on the next update
	v.Update()
	v.Update()
	assert.Equal(t, [3]bool{}, v.ScrollClear())
}

func TestScrollFoldKeepsEffectiveOrigin(t *testing.T) {
	v := scrollingVolume(common.Int3{4, 4, 4}, mgl32.Vec3{0.5, 1, 1})

	v.SetScrollAnchor(mgl32.Vec3{2.1, 0, 0})
	v.Update()
	require.Equal(t, common.Int3{4, 0, 0}, v.ScrollOffsets())
	assert.Equal(t, [3]bool{true, false, false}, v.ScrollClear())
	assert.Equal(t, [3]int32{1, 0, 0}, v.ScrollDirections())
	eff := v.EffectiveOrigin()

	v.Update()
	assert.Equal(t, common.Int3{}, v.ScrollOffsets())
	assert.Equal(t, eff, v.EffectiveOrigin())
	assert.Equal(t, mgl32.Vec3{2, 0, 0}, v.Origin())
	assert.Equal(t, [3]bool{}, v.ScrollClear())
}

func TestScrollNegativeDirection(t *testing.T) {
	v := scrollingVolume(common.Int3{8, 8, 8}, mgl32.Vec3{1, 1, 1})
	v.SetScrollAnchor(mgl32.Vec3{0, -2.7, 0.4})
	v.Update()

	assert.Equal(t, common.Int3{0, -2, 0}, v.ScrollOffsets())
	assert.Equal(t, [3]int32{0, -1, 1}, v.ScrollDirections())
	assert.Equal(t, [3]bool{false, true, false}, v.ScrollClear())

	desc := v.DescGPU()
	assert.Equal(t, [3]bool{false, false, true}, desc.ProbeScrollDirections)
	assert.Equal(t, mgl32.Vec3{}, desc.Origin)
	assert.Equal(t, common.Int3{0, -2, 0}, desc.ProbeScrollOffsets)
}

func TestDescriptorOriginExcludesScroll(t *testing.T) {
	v := scrollingVolume(common.Int3{8, 8, 8}, mgl32.Vec3{1, 1, 1})
	v.SetScrollAnchor(mgl32.Vec3{3.5, 0, 0})
	v.Update()
	require.Equal(t, mgl32.Vec3{3, 0, 0}, v.EffectiveOrigin())

	desc := v.DescGPU()
	assert.Equal(t, v.Origin(), desc.Origin)

	// a consumer adding the offsets back lands on the effective origin, not twice as far
	var rebuilt mgl32.Vec3
	for _, a := range common.Axes {
		rebuilt[a] = desc.Origin[a] + float32(desc.ProbeScrollOffsets[a])*desc.ProbeSpacing[a]
	}
	assert.Equal(t, v.EffectiveOrigin(), rebuilt)

	unpacked := v.DescGPUPacked().Unpack()
	assert.Equal(t, desc.Origin, unpacked.Origin)
}

func TestMovementTypeRoundTrip(t *testing.T) {
	d := testDesc(CoordinateSystemRight, common.Int3{4, 4, 4})
	d.Origin = mgl32.Vec3{1.25, -7, 3}
	d.ProbeSpacing = mgl32.Vec3{0.5, 1, 2}
	v := NewVolume(d)
	before := v.EffectiveOrigin()

	v.SetMovementType(MovementTypeScrolling)
	assert.Equal(t, before, v.ScrollAnchor())
	v.Update()
	v.SetMovementType(MovementTypeDefault)

	after := v.EffectiveOrigin()
	assert.InDeltaSlice(t, before[:], after[:], 1e-6)
	assert.Equal(t, common.Int3{}, v.ScrollOffsets())
}

func TestLeavingScrollingBakesEffectiveOrigin(t *testing.T) {
	v := scrollingVolume(common.Int3{4, 4, 4}, mgl32.Vec3{1, 1, 1})
	v.SetScrollAnchor(mgl32.Vec3{3.5, 0, -1.5})
	v.Update()
	eff := v.EffectiveOrigin()
	require.NotEqual(t, common.Int3{}, v.ScrollOffsets())

	v.SetMovementType(MovementTypeDefault)
	assert.Equal(t, eff, v.Origin())
	assert.Equal(t, eff, v.EffectiveOrigin())
	assert.Equal(t, common.Int3{}, v.ScrollOffsets())
}

func TestEulerAnglesIgnoredWhileScrolling(t *testing.T) {
	v := scrollingVolume(common.Int3{4, 4, 4}, mgl32.Vec3{1, 1, 1})
	v.SetEulerAngles(mgl32.Vec3{0.5, 0.5, 0.5})
	assert.Equal(t, mgl32.Ident3(), v.RotationMatrix())
	assert.Equal(t, mgl32.Vec3{}, v.EulerAngles())

	v.SetMovementType(MovementTypeDefault)
	v.SetEulerAngles(mgl32.Vec3{0, 1, 0})
	assert.NotEqual(t, mgl32.Ident3(), v.RotationMatrix())

	v.SetMovementType(MovementTypeScrolling)
	assert.Equal(t, mgl32.Ident3(), v.RotationMatrix())
}

func TestScrollingProbeIndex(t *testing.T) {
	counts := common.Int3{4, 3, 5}
	v := scrollingVolume(counts, mgl32.Vec3{1, 1, 1})
	for i := 0; i < v.NumProbes(); i++ {
		require.Equal(t, i, v.ScrollingProbeIndex(i))
	}

	v.SetScrollAnchor(mgl32.Vec3{1.2, -1.1, 0})
	v.Update()
	require.Equal(t, common.Int3{1, -1, 0}, v.ScrollOffsets())

	seen := make(map[int]bool)
	for i := 0; i < v.NumProbes(); i++ {
		s := v.ScrollingProbeIndex(i)
		require.False(t, seen[s])
		seen[s] = true

		g, sg := v.ProbeGridCoords(i), v.ProbeGridCoords(s)
		assert.Equal(t, (g[0]+1)%counts[0], sg[0])
		assert.Equal(t, (g[1]-1+counts[1])%counts[1], sg[1])
		assert.Equal(t, g[2], sg[2])
	}
}
