package volume

import (
	"github.com/Carmen-Shannon/oxy-ddgi/common"
	"github.com/go-gl/mathgl/mgl32"
)

func (v *volumeImpl) EffectiveOrigin() mgl32.Vec3 {
	if v.desc.MovementType != MovementTypeScrolling {
		return v.desc.Origin
	}
	var o mgl32.Vec3
	for _, a := range common.Axes {
		o[a] = v.desc.Origin[a] + v.scrollDistance(a, v.scrollOffsets[a])
	}
	return o
}

// scrollDistance is the world distance covered by offset cells on an axis. The conversion
// rounds the product so it is never fused into the following add.
func (v *volumeImpl) scrollDistance(a common.Axis, offset int32) float32 {
	return float32(float32(offset) * v.desc.ProbeSpacing[a])
}

func (v *volumeImpl) ScrollAnchor() mgl32.Vec3 {
	return v.scrollAnchor
}

func (v *volumeImpl) SetScrollAnchor(anchor mgl32.Vec3) {
	v.scrollAnchor = anchor
}

func (v *volumeImpl) ScrollOffsets() common.Int3 {
	return v.scrollOffsets
}

func (v *volumeImpl) ScrollClear() [3]bool {
	return v.scrollClear
}

func (v *volumeImpl) ScrollDirections() [3]int32 {
	return v.scrollDirections
}

func (v *volumeImpl) SetMovementType(movementType MovementType) {
	if movementType == v.desc.MovementType {
		return
	}

	switch movementType {
	case MovementTypeScrolling:
		v.scrollAnchor = v.desc.Origin
		v.rotationMatrix = mgl32.Ident3()
		v.rotationQuaternion = mgl32.QuatIdent()
	case MovementTypeDefault:
		v.desc.Origin = v.EffectiveOrigin()
	}

	v.desc.MovementType = movementType
	if movementType == MovementTypeDefault {
		v.computeRotation()
	}
	v.resetScroll()
}

func (v *volumeImpl) resetScroll() {
	v.scrollOffsets = common.Int3{}
	v.scrollClear = [3]bool{}
	v.scrollDirections = [3]int32{}
}

// updateScroll moves the grid toward the scroll anchor in whole cells.
//
// Offsets that have wrapped a full grid width are folded into the origin first. The fold
// adds exactly the term EffectiveOrigin adds for the offset, so the effective origin keeps
// its value bit for bit and offsets stay bounded while the anchor keeps moving.
func (v *volumeImpl) updateScroll() {
	v.scrollClear = [3]bool{}

	for _, a := range common.Axes {
		offset := v.scrollOffsets[a]
		if offset != 0 && offset%v.desc.ProbeCounts[a] == 0 {
			v.desc.Origin[a] += v.scrollDistance(a, offset)
			v.scrollOffsets[a] = 0
		}
	}

	translation := v.scrollAnchor.Sub(v.EffectiveOrigin())
	for _, a := range common.Axes {
		v.scrollDirections[a] = common.Sign(translation[a])
		if v.desc.ProbeSpacing[a] == 0 {
			continue
		}
		delta := common.AbsFloor(translation[a] / v.desc.ProbeSpacing[a])
		if delta != 0 {
			v.scrollOffsets[a] += v.scrollDirections[a] * delta
			v.scrollClear[a] = true
		}
	}
}
