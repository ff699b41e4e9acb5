package level

import (
	"github.com/Faultbox/tr1-engine/pkg/core"
	"github.com/Faultbox/tr1-engine/pkg/floordata"
)

// NoBox marks a sector that belongs to no pathfinding box.
const NoBox = 0xFFFF

// Sector is one grid cell of a room.
type Sector struct {
	FloorHeight   core.Length
	CeilingHeight core.Length
	FloorData     floordata.Ref
	BoxIndex      uint16
	RoomAbove     *Room
	RoomBelow     *Room
}

// Room is a box of sectors placed in the world. Sectors are stored column
// major: index x*SectorCountZ + z.
type Room struct {
	Index         int
	Position      core.TRVec // world X/Z of the room's corner
	SectorCountX  int
	SectorCountZ  int
	Sectors       []Sector
	AlternateRoom int // -1 if the room has no flip-map counterpart
	Water         bool
}

// SectorAt returns the sector at grid cell (x, z), or nil outside the room.
func (r *Room) SectorAt(x, z int) *Sector {
	if x < 0 || x >= r.SectorCountX || z < 0 || z >= r.SectorCountZ {
		return nil
	}
	return &r.Sectors[x*r.SectorCountZ+z]
}

// sectorCoords returns the grid cell containing pos, unclamped.
func (r *Room) sectorCoords(pos core.TRVec) (int, int) {
	return (pos.X - r.Position.X).SectorIndex(), (pos.Z - r.Position.Z).SectorIndex()
}

// SectorByAbsolutePosition returns the sector containing pos, or nil if pos
// lies outside the room.
func (r *Room) SectorByAbsolutePosition(pos core.TRVec) *Sector {
	if pos.X < r.Position.X || pos.Z < r.Position.Z {
		return nil
	}
	x, z := r.sectorCoords(pos)
	return r.SectorAt(x, z)
}

// InnerSectorByAbsolutePosition returns the sector containing pos, clamped
// to the inner ring of sectors. Wall sectors along the border are never
// returned.
func (r *Room) InnerSectorByAbsolutePosition(pos core.TRVec) *Sector {
	x, z := r.sectorCoords(pos)
	return r.SectorAt(clamp(x, 1, r.SectorCountX-2), clamp(z, 1, r.SectorCountZ-2))
}

// BoundaryClampedSector resolves pos the way portal lookup does: positions
// beyond the Z edges land in the edge row with X clamped inward, otherwise
// X is clamped to the room.
func (r *Room) BoundaryClampedSector(pos core.TRVec) *Sector {
	x, z := r.sectorCoords(pos)
	switch {
	case z <= 0:
		z = 0
		x = clamp(x, 1, r.SectorCountX-2)
	case z >= r.SectorCountZ-1:
		z = r.SectorCountZ - 1
		x = clamp(x, 1, r.SectorCountX-2)
	default:
		x = clamp(x, 0, r.SectorCountX-1)
	}
	return r.SectorAt(x, z)
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
