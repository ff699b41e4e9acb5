// Package core provides the fixed-point quantity types shared by the engine.
//
// All simulation arithmetic is integer. Floats only appear when a value is
// handed to the transform layer.
package core

import "fmt"

// Length is a distance in world units (1024 units = 1 sector).
type Length int32

// World grid constants.
const (
	SectorSize        Length = 1024
	QuarterSectorSize Length = SectorSize / 4
	ClickSize         Length = SectorSize / 4
)

// SectorShift is log2(SectorSize).
const SectorShift = 10

// SectorIndex returns the sector column holding l, rounding toward negative
// infinity.
func (l Length) SectorIndex() int {
	return int(l >> SectorShift)
}

// Sectors returns n sectors as a Length.
func Sectors(n int) Length {
	return Length(n) * SectorSize
}

// Abs returns the absolute value.
func (l Length) Abs() Length {
	if l < 0 {
		return -l
	}
	return l
}

// String returns the length with its unit.
func (l Length) String() string {
	return fmt.Sprintf("%du", int32(l))
}

// TRVec is a position or offset in engine space (Y points down).
type TRVec struct {
	X, Y, Z Length
}

// Add returns v + o.
func (v TRVec) Add(o TRVec) TRVec {
	return TRVec{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

// Sub returns v - o.
func (v TRVec) Sub(o TRVec) TRVec {
	return TRVec{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

// Speed is a 16.16 fixed-point speed in units per tick.
type Speed int32

// SpeedFromFixed wraps a raw 16.16 value.
func SpeedFromFixed(raw int32) Speed {
	return Speed(raw)
}

// Units truncates the fixed-point speed to whole units per tick.
func (s Speed) Units() Length {
	return Length(int32(s) >> 16)
}
