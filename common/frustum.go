package common

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Plane is the plane dot(Normal, p) + Distance = 0. Points with a positive value are on the inner side.
type Plane struct {
	Normal   mgl32.Vec3
	Distance float32
}

// SignedDistance returns the signed distance from p to the plane.
func (p Plane) SignedDistance(point mgl32.Vec3) float32 {
	return p.Normal.Dot(point) + p.Distance
}

// Frustum holds the six inward-facing planes of a view volume.
type Frustum struct {
	Planes [6]Plane // Left, Right, Bottom, Top, Near, Far
}

// Frustum plane indices.
const (
	FrustumLeft = iota
	FrustumRight
	FrustumBottom
	FrustumTop
	FrustumNear
	FrustumFar
)

// ExtractFrustumFromMatrix extracts the frustum planes of a column-major view-projection matrix
// (Gribb/Hartmann). The near plane assumes the [0, 1] clip depth produced by Perspective.
//
// Parameters:
//   - viewProj: 16 float32 values, Projection * View in column-major order
//
// Returns:
//   - Frustum: the frustum with unit-length plane normals
func ExtractFrustumFromMatrix(viewProj []float32) Frustum {
	row := func(i int) mgl32.Vec4 {
		return mgl32.Vec4{viewProj[i], viewProj[4+i], viewProj[8+i], viewProj[12+i]}
	}
	x, y, z, w := row(0), row(1), row(2), row(3)

	var f Frustum
	for i, eq := range [6]mgl32.Vec4{
		FrustumLeft:   w.Add(x),
		FrustumRight:  w.Sub(x),
		FrustumBottom: w.Add(y),
		FrustumTop:    w.Sub(y),
		FrustumNear:   z,
		FrustumFar:    w.Sub(z),
	} {
		f.Planes[i] = planeFromEquation(eq)
	}
	return f
}

func planeFromEquation(eq mgl32.Vec4) Plane {
	p := Plane{Normal: eq.Vec3(), Distance: eq[3]}
	if l := p.Normal.Len(); l > 0 {
		p.Normal = p.Normal.Mul(1 / l)
		p.Distance /= l
	}
	return p
}

// IntersectsAABB reports whether the box is at least partially inside the frustum.
// Each plane is tested against the box corner furthest along its normal.
//
// Parameters:
//   - box: the world-space box to test
//
// Returns:
//   - bool: false only when the box lies fully behind one of the planes
func (f Frustum) IntersectsAABB(box AABB) bool {
	for _, p := range f.Planes {
		corner := box.Min
		for a := 0; a < 3; a++ {
			if p.Normal[a] >= 0 {
				corner[a] = box.Max[a]
			}
		}
		if p.SignedDistance(corner) < 0 {
			return false
		}
	}
	return true
}
