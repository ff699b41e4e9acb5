// Package level holds the runtime room and sector graph of a loaded level.
package level

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/tr1-engine/internal/logger"
	"github.com/Faultbox/tr1-engine/pkg/core"
	"github.com/Faultbox/tr1-engine/pkg/floordata"
	"github.com/Faultbox/tr1-engine/pkg/loader"
)

// RoomData is the load-time description of one room.
type RoomData struct {
	Position      core.TRVec
	SectorCountX  int
	SectorCountZ  int
	Sectors       []loader.SectorRecord
	AlternateRoom int
	Water         bool
}

// Level is the room graph plus the shared floor data it points into.
type Level struct {
	Rooms     []*Room
	FloorData floordata.FloorData
	Flip      FlipState
}

// New builds the room graph. Room links in the sector records are resolved
// to pointers, and floor data index 0 means "no floor data".
func New(fd floordata.FloorData, rooms []RoomData) (*Level, error) {
	lvl := &Level{
		Rooms:     make([]*Room, len(rooms)),
		FloorData: fd,
	}
	for i := range rooms {
		lvl.Rooms[i] = &Room{Index: i}
	}

	for i, rd := range rooms {
		if rd.SectorCountX <= 0 || rd.SectorCountZ <= 0 {
			return nil, fmt.Errorf("room %d: invalid size %dx%d", i, rd.SectorCountX, rd.SectorCountZ)
		}
		if len(rd.Sectors) != rd.SectorCountX*rd.SectorCountZ {
			return nil, fmt.Errorf("room %d: expected %d sectors, got %d",
				i, rd.SectorCountX*rd.SectorCountZ, len(rd.Sectors))
		}
		if rd.AlternateRoom >= len(rooms) {
			return nil, fmt.Errorf("room %d: alternate room %d out of range", i, rd.AlternateRoom)
		}

		room := lvl.Rooms[i]
		room.Position = rd.Position
		room.SectorCountX = rd.SectorCountX
		room.SectorCountZ = rd.SectorCountZ
		room.AlternateRoom = rd.AlternateRoom
		room.Water = rd.Water
		room.Sectors = make([]Sector, len(rd.Sectors))

		for j, rec := range rd.Sectors {
			s := &room.Sectors[j]
			s.FloorHeight = rec.FloorHeight()
			s.CeilingHeight = rec.CeilingHeight()
			s.BoxIndex = rec.BoxIndex
			if rec.FloorDataIndex != 0 {
				if int(rec.FloorDataIndex) >= len(fd) {
					return nil, fmt.Errorf("room %d sector %d: floor data index %d out of range",
						i, j, rec.FloorDataIndex)
				}
				s.FloorData = floordata.NewRef(fd, int(rec.FloorDataIndex))
			}
			var err error
			if s.RoomAbove, err = lvl.link(rec.RoomAbove); err != nil {
				return nil, fmt.Errorf("room %d sector %d: %w", i, j, err)
			}
			if s.RoomBelow, err = lvl.link(rec.RoomBelow); err != nil {
				return nil, fmt.Errorf("room %d sector %d: %w", i, j, err)
			}
		}
	}

	logger.Named("level").Info("level built",
		zap.Int("rooms", len(lvl.Rooms)),
		zap.Int("floorDataWords", len(fd)))

	return lvl, nil
}

func (l *Level) link(idx uint8) (*Room, error) {
	if idx == loader.NoRoom {
		return nil, nil
	}
	if int(idx) >= len(l.Rooms) {
		return nil, fmt.Errorf("room link %d out of range", idx)
	}
	return l.Rooms[idx], nil
}

// Room returns the room with the given index, or nil.
func (l *Level) Room(idx int) *Room {
	if idx < 0 || idx >= len(l.Rooms) {
		return nil
	}
	return l.Rooms[idx]
}

// FindSectorForPosition resolves the sector that actually holds pos.
// Starting from the hint room it follows boundary portals, then moves down
// through pits or up through openings until the sector whose floor is below
// pos is found. The room that owns the returned sector is returned too.
func (l *Level) FindSectorForPosition(pos core.TRVec, room *Room) (*Sector, *Room) {
	var sector *Sector
	for {
		sector = room.BoundaryClampedSector(pos)
		target, ok := floordata.GetPortalTarget(sector.FloorData)
		if !ok {
			break
		}
		next := l.Room(int(target))
		if next == nil {
			panic(fmt.Sprintf("level: portal to missing room %d", target))
		}
		room = next
	}

	if pos.Y >= sector.FloorHeight {
		for sector.RoomBelow != nil {
			room = sector.RoomBelow
			sector = room.SectorByAbsolutePosition(pos)
			if sector == nil {
				panic(fmt.Sprintf("level: room %d below has no sector at %v", room.Index, pos))
			}
			if pos.Y < sector.FloorHeight {
				break
			}
		}
	} else {
		for sector.RoomAbove != nil {
			above := sector.RoomAbove.SectorByAbsolutePosition(pos)
			if above == nil || pos.Y >= above.FloorHeight {
				break
			}
			room = sector.RoomAbove
			sector = above
		}
	}

	return sector, room
}

// FindRoomForPosition returns the first room whose footprint holds pos and
// whose vertical span includes it, or nil.
func (l *Level) FindRoomForPosition(pos core.TRVec) *Room {
	for _, room := range l.Rooms {
		s := room.SectorByAbsolutePosition(pos)
		if s != nil && pos.Y <= s.FloorHeight && pos.Y >= s.CeilingHeight {
			return room
		}
	}
	return nil
}

// SecretsMask returns every secret index referenced by any sector.
func (l *Level) SecretsMask() uint16 {
	var mask uint16
	for _, room := range l.Rooms {
		for i := range room.Sectors {
			mask |= floordata.GetSecretsMask(room.Sectors[i].FloorData)
		}
	}
	return mask
}
