package common

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// PerspectiveZO creates a right-handed perspective projection with the WebGPU clip depth
// range [0, 1]. mgl32.Perspective maps depth to [-1, 1].
//
// Parameters:
//   - fovY: vertical field of view in radians
//   - aspect: viewport aspect ratio (width/height)
//   - near: near clipping plane distance (must be > 0)
//   - far: far clipping plane distance (must be > near)
//
// Returns:
//   - mgl32.Mat4: the projection matrix
func PerspectiveZO(fovY, aspect, near, far float32) mgl32.Mat4 {
	f := 1 / math32.Tan(fovY/2)
	var m mgl32.Mat4
	m[0] = f / aspect
	m[5] = f
	m[10] = far / (near - far)
	m[11] = -1
	m[14] = near * far / (near - far)
	return m
}

// EulerToMat3YUp builds a rotation matrix from Euler angles for a Y-up world.
// The rotation order is Y * X * Z (yaw-pitch-roll).
//
// Parameters:
//   - e: rotation angles in radians around X, Y and Z
//
// Returns:
//   - mgl32.Mat3: the composed rotation
func EulerToMat3YUp(e mgl32.Vec3) mgl32.Mat3 {
	return mgl32.Rotate3DY(e[1]).Mul3(mgl32.Rotate3DX(e[0])).Mul3(mgl32.Rotate3DZ(e[2]))
}

// EulerToMat3ZUp builds a rotation matrix from Euler angles for a Z-up world.
// Yaw is about Z, so the order is Z * X * Y.
//
// Parameters:
//   - e: rotation angles in radians around X, Y and Z
//
// Returns:
//   - mgl32.Mat3: the composed rotation
func EulerToMat3ZUp(e mgl32.Vec3) mgl32.Mat3 {
	return mgl32.Rotate3DZ(e[2]).Mul3(mgl32.Rotate3DX(e[0])).Mul3(mgl32.Rotate3DY(e[1]))
}

// Mat3ToQuat converts a rotation matrix to a unit quaternion.
//
// Parameters:
//   - m: an orthonormal rotation matrix
//
// Returns:
//   - mgl32.Quat: the normalized equivalent quaternion
func Mat3ToQuat(m mgl32.Mat3) mgl32.Quat {
	return mgl32.Mat4ToQuat(m.Mat4()).Normalize()
}

// Sign returns -1, 0 or +1 according to the sign of v.
func Sign(v float32) int32 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

// Clamp01 clamps v to [0, 1]. NaN maps to 0.
func Clamp01(v float32) float32 {
	if !(v > 0) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// AbsFloor returns the number of whole steps contained in |v|.
//
// Parameters:
//   - v: the value to measure
//
// Returns:
//   - int32: floor(|v|)
func AbsFloor(v float32) int32 {
	return int32(math32.Floor(math32.Abs(v)))
}

// RotateAABB computes the axis-aligned box enclosing a rotated box (Ericson, RTCD 4.2.6).
// The input box is rotated about the world origin and then translated.
//
// Parameters:
//   - box: the unrotated box
//   - r: the rotation matrix
//   - t: the translation applied after rotation
//
// Returns:
//   - AABB: the enclosing box
func RotateAABB(box AABB, r mgl32.Mat3, t mgl32.Vec3) AABB {
	out := AABB{Min: t, Max: t}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			e := r.At(i, j) * box.Min[j]
			f := r.At(i, j) * box.Max[j]
			if e < f {
				out.Min[i] += e
				out.Max[i] += f
			} else {
				out.Min[i] += f
				out.Max[i] += e
			}
		}
	}
	return out
}
