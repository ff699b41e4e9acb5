package core

import "math"

// Angle is a rotation in engine units: 65536 units make a full turn.
type Angle int32

// FullTurn is one complete revolution.
const FullTurn Angle = 65536

// FromDegrees converts degrees to an Angle, truncating.
func FromDegrees(deg float64) Angle {
	return Angle(deg * float64(FullTurn) / 360)
}

// Degrees returns the angle in degrees.
func (a Angle) Degrees() float64 {
	return float64(a) * 360 / float64(FullTurn)
}

// Radians returns the angle in radians.
func (a Angle) Radians() float32 {
	return float32(float64(a) * 2 * math.Pi / float64(FullTurn))
}

// Normalized folds the angle into [-32768, 32767], the signed 16-bit range
// level data uses.
func (a Angle) Normalized() Angle {
	return Angle(int16(uint16(uint32(a))))
}

// Sin returns sin(a) scaled by 1<<14 and truncated.
func (a Angle) Sin() int32 {
	return int32(math.Sin(float64(a.Radians())) * (1 << 14))
}

// Cos returns cos(a) scaled by 1<<14 and truncated.
func (a Angle) Cos() int32 {
	return int32(math.Cos(float64(a.Radians())) * (1 << 14))
}

// YPRotation is a yaw/pitch/roll triple, applied in Y, X, Z order.
type YPRotation struct {
	Y, X, Z Angle
}
