// Package heightinfo evaluates floor and ceiling heights at a point of a
// sector, including slants and runtime patches by movable objects.
package heightinfo

import (
	"github.com/Faultbox/tr1-engine/internal/engine/level"
	"github.com/Faultbox/tr1-engine/pkg/core"
	"github.com/Faultbox/tr1-engine/pkg/floordata"
)

// SlantClass classifies the slope under a point.
type SlantClass int

const (
	SlantNone   SlantClass = iota
	SlantMax512            // both components at most two quarter sectors
	SlantSteep
)

func (c SlantClass) String() string {
	switch c {
	case SlantMax512:
		return "Max512"
	case SlantSteep:
		return "Steep"
	default:
		return "None"
	}
}

// Patcher is an object that can override the static floor or ceiling
// height, such as a raised block or a trapdoor.
type Patcher interface {
	PatchFloor(pos core.TRVec, y core.Length) core.Length
	PatchCeiling(pos core.TRVec, y core.Length) core.Length
}

// Objects resolves the object ids referenced by Activate commands.
type Objects interface {
	Patcher(id uint16) (Patcher, bool)
}

// HeightInfo is the result of a height query.
type HeightInfo struct {
	Y     core.Length
	Slant SlantClass
	// LastCommandSequenceOrDeath is the first Death or CommandSequence chunk
	// of the evaluated sector; nil if there is none.
	LastCommandSequenceOrDeath floordata.Ref
}

// FromFloor returns the floor height below pos. The sector is first
// followed down through rooms below. With skipSteepSlants a steep slant
// leaves the height untouched.
func FromFloor(sector *level.Sector, pos core.TRVec, objects Objects, skipSteepSlants bool) HeightInfo {
	for sector.RoomBelow != nil {
		sector = mustSector(sector.RoomBelow, pos)
	}

	hi := HeightInfo{Y: sector.FloorHeight}

	for c := range sector.FloorData.Chunks() {
		switch c.Type {
		case floordata.ChunkFloorSlant:
			s := c.Slant()
			class := classify(s)
			if skipSteepSlants && class == SlantSteep {
				continue
			}
			hi.Slant = class
			hi.Y += floorSlantDelta(s, pos)

		case floordata.ChunkDeath:
			hi.rememberTrigger(c)

		case floordata.ChunkCommandSequence:
			hi.rememberTrigger(c)
			for cmd := range c.Commands() {
				if cmd.Opcode != floordata.OpActivate || objects == nil {
					continue
				}
				if obj, ok := objects.Patcher(cmd.Parameter); ok {
					hi.Y = obj.PatchFloor(pos, hi.Y)
				}
			}
		}
	}

	return hi
}

// FromCeiling returns the ceiling height above pos. Ceiling patches come
// from Activate commands in the floor data of the lowest room below. With
// skipSteepSlants a steep ceiling slant leaves the height untouched.
func FromCeiling(sector *level.Sector, pos core.TRVec, objects Objects, skipSteepSlants bool) HeightInfo {
	top := sector
	for top.RoomAbove != nil {
		top = mustSector(top.RoomAbove, pos)
	}

	hi := HeightInfo{Y: top.CeilingHeight}

	for c := range top.FloorData.Chunks() {
		if c.Type == floordata.ChunkFloorSlant {
			continue
		}
		if c.Type == floordata.ChunkCeilingSlant {
			s := c.Slant()
			if class := classify(s); !skipSteepSlants || class != SlantSteep {
				hi.Slant = class
				hi.Y += ceilingSlantDelta(s, pos)
			}
		}
		break
	}

	bottom := sector
	for bottom.RoomBelow != nil {
		bottom = mustSector(bottom.RoomBelow, pos)
	}

	if objects == nil {
		return hi
	}
	for c := range bottom.FloorData.Chunks() {
		if c.Type != floordata.ChunkCommandSequence {
			continue
		}
		for cmd := range c.Commands() {
			if cmd.Opcode != floordata.OpActivate {
				continue
			}
			if obj, ok := objects.Patcher(cmd.Parameter); ok {
				hi.Y = obj.PatchCeiling(pos, hi.Y)
			}
		}
	}

	return hi
}

func (hi *HeightInfo) rememberTrigger(c floordata.Chunk) {
	if hi.LastCommandSequenceOrDeath.IsNil() {
		hi.LastCommandSequenceOrDeath = c.Ref()
	}
}

func classify(s floordata.Slant) SlantClass {
	if abs8(s.X) <= 2 && abs8(s.Z) <= 2 {
		return SlantMax512
	}
	return SlantSteep
}

// localCoords returns the position inside its sector, in [0, SectorSize).
func localCoords(pos core.TRVec) (core.Length, core.Length) {
	return pos.X & (core.SectorSize - 1), pos.Z & (core.SectorSize - 1)
}

// floorSlantDelta evaluates the slope at pos. The expression order matters:
// each axis multiplies before it divides, truncating toward zero.
func floorSlantDelta(s floordata.Slant, pos core.TRVec) core.Length {
	localX, localZ := localCoords(pos)
	var dy core.Length

	z := core.Length(s.Z)
	if z > 0 {
		dy += z * (core.SectorSize - 1 - localZ) * core.QuarterSectorSize / core.SectorSize
	} else {
		dy -= z * localZ * core.QuarterSectorSize / core.SectorSize
	}

	x := core.Length(s.X)
	if x > 0 {
		dy += x * (core.SectorSize - 1 - localX) * core.QuarterSectorSize / core.SectorSize
	} else {
		dy -= x * localX * core.QuarterSectorSize / core.SectorSize
	}

	return dy
}

func ceilingSlantDelta(s floordata.Slant, pos core.TRVec) core.Length {
	localX, localZ := localCoords(pos)
	var dy core.Length

	z := core.Length(s.Z)
	if z < 0 {
		dy += z * localZ * core.QuarterSectorSize / core.SectorSize
	} else {
		dy -= z * (core.SectorSize - 1 - localZ) * core.QuarterSectorSize / core.SectorSize
	}

	// The X axis does not mirror the floor: a positive slant rises
	// towards +X.
	x := core.Length(s.X)
	if x < 0 {
		dy += x * (core.SectorSize - 1 - localX) * core.QuarterSectorSize / core.SectorSize
	} else {
		dy -= x * localX * core.QuarterSectorSize / core.SectorSize
	}

	return dy
}

func mustSector(room *level.Room, pos core.TRVec) *level.Sector {
	s := room.SectorByAbsolutePosition(pos)
	if s == nil {
		panic("heightinfo: linked room does not cover position")
	}
	return s
}

func abs8(v int8) int {
	if v < 0 {
		return -int(v)
	}
	return int(v)
}
