// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Axis names one of the three world axes and indexes the fixed-size per-axis arrays (mgl32.Vec3, Int3).
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

// Axes lists every Axis in index order, for per-axis loops.
var Axes = [3]Axis{AxisX, AxisY, AxisZ}

// String returns the lowercase axis letter.
func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	}
	return "?"
}

// Int3 is a per-axis triple of signed integers (grid coordinates, probe counts, scroll offsets).
type Int3 [3]int32

// Product returns x*y*z.
//
// Returns:
//   - int: the product of the three components
func (v Int3) Product() int {
	return int(v[0]) * int(v[1]) * int(v[2])
}

// Vec3 converts the triple to a float vector.
//
// Returns:
//   - mgl32.Vec3: the components as float32
func (v Int3) Vec3() mgl32.Vec3 {
	return mgl32.Vec3{float32(v[0]), float32(v[1]), float32(v[2])}
}

// AABB is a world-space axis-aligned bounding box.
type AABB struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// Center returns the midpoint of the box.
//
// Returns:
//   - mgl32.Vec3: (Min + Max) / 2
func (b AABB) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Extents returns the half-size of the box along each axis.
//
// Returns:
//   - mgl32.Vec3: (Max - Min) / 2
func (b AABB) Extents() mgl32.Vec3 {
	return b.Max.Sub(b.Min).Mul(0.5)
}

// OBB is a world-space oriented bounding box: a center, a rotation and half extents along the rotated axes.
type OBB struct {
	Origin   mgl32.Vec3
	Rotation mgl32.Quat
	Extents  mgl32.Vec3
}
