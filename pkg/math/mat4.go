// Package math provides the transform helpers used to turn engine-space
// integer poses into mgl32 matrices.
package math

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/tr1-engine/pkg/core"
)

// Vec3 converts an engine-space vector to float.
func Vec3(v core.TRVec) mgl32.Vec3 {
	return mgl32.Vec3{float32(v.X), float32(v.Y), float32(v.Z)}
}

// Translate returns a translation matrix for an engine-space offset.
func Translate(v core.TRVec) mgl32.Mat4 {
	return mgl32.Translate3D(float32(v.X), float32(v.Y), float32(v.Z))
}

// RotateYXZ returns the rotation matrix of r, applying yaw, then pitch,
// then roll.
func RotateYXZ(r core.YPRotation) mgl32.Mat4 {
	m := mgl32.HomogRotate3DY(r.Y.Radians())
	m = m.Mul4(mgl32.HomogRotate3DX(r.X.Radians()))
	return m.Mul4(mgl32.HomogRotate3DZ(r.Z.Radians()))
}

// Mix blends two matrices element-wise: bias 0 yields a, bias 1 yields b.
func Mix(a, b mgl32.Mat4, bias float32) mgl32.Mat4 {
	var out mgl32.Mat4
	for i := range out {
		out[i] = a[i] + (b[i]-a[i])*bias
	}
	return out
}
