package level

import (
	"testing"

	"github.com/Faultbox/tr1-engine/pkg/core"
	"github.com/Faultbox/tr1-engine/pkg/floordata"
	"github.com/Faultbox/tr1-engine/pkg/loader"
)

// flatRoom returns sector records of a room with the given floor and
// ceiling in quarter sectors and no links.
func flatRoom(countX, countZ int, floor, ceiling int8) []loader.SectorRecord {
	recs := make([]loader.SectorRecord, countX*countZ)
	for i := range recs {
		recs[i] = loader.SectorRecord{
			BoxIndex:  NoBox,
			RoomAbove: loader.NoRoom,
			RoomBelow: loader.NoRoom,
			Floor:     floor,
			Ceiling:   ceiling,
		}
	}
	return recs
}

func TestNewResolvesSectors(t *testing.T) {
	fd := floordata.FloorData{0, 0x8005} // index 0 is the null slot
	recs := flatRoom(3, 4, 4, -8)
	recs[1*4+2].FloorDataIndex = 1

	lvl, err := New(fd, []RoomData{{
		Position:      core.TRVec{X: core.Sectors(10), Z: core.Sectors(20)},
		SectorCountX:  3,
		SectorCountZ:  4,
		Sectors:       recs,
		AlternateRoom: -1,
	}})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	room := lvl.Rooms[0]
	s := room.SectorAt(1, 2)
	if s.FloorHeight != 1024 {
		t.Errorf("expected floor 1024, got %d", s.FloorHeight)
	}
	if s.CeilingHeight != -2048 {
		t.Errorf("expected ceiling -2048, got %d", s.CeilingHeight)
	}
	if s.FloorData.IsNil() || s.FloorData.Offset() != 1 {
		t.Errorf("expected floor data at offset 1, got %+v", s.FloorData)
	}
	if !room.SectorAt(0, 0).FloorData.IsNil() {
		t.Error("expected floor data index 0 to mean no floor data")
	}

	pos := core.TRVec{X: core.Sectors(11) + 10, Z: core.Sectors(22) + 1000}
	if got := room.SectorByAbsolutePosition(pos); got != s {
		t.Errorf("expected sector (1,2) for %v", pos)
	}
	if got := room.SectorByAbsolutePosition(core.TRVec{X: core.Sectors(9)}); got != nil {
		t.Error("expected nil sector outside the room")
	}
	if got := room.InnerSectorByAbsolutePosition(core.TRVec{X: core.Sectors(50), Z: 0}); got != room.SectorAt(1, 1) {
		t.Error("expected inner lookup to clamp to the inner ring")
	}
}

func TestNewErrors(t *testing.T) {
	tests := []struct {
		name  string
		fd    floordata.FloorData
		rooms []RoomData
	}{
		{
			name:  "sector count mismatch",
			rooms: []RoomData{{SectorCountX: 2, SectorCountZ: 2, Sectors: flatRoom(1, 1, 0, 0), AlternateRoom: -1}},
		},
		{
			name:  "empty room",
			rooms: []RoomData{{AlternateRoom: -1}},
		},
		{
			name: "room link out of range",
			rooms: []RoomData{{SectorCountX: 1, SectorCountZ: 1, AlternateRoom: -1,
				Sectors: []loader.SectorRecord{{RoomAbove: 7, RoomBelow: loader.NoRoom}}}},
		},
		{
			name: "floor data index out of range",
			fd:   floordata.FloorData{0},
			rooms: []RoomData{{SectorCountX: 1, SectorCountZ: 1, AlternateRoom: -1,
				Sectors: []loader.SectorRecord{{FloorDataIndex: 3, RoomAbove: loader.NoRoom, RoomBelow: loader.NoRoom}}}},
		},
		{
			name:  "alternate out of range",
			rooms: []RoomData{{SectorCountX: 1, SectorCountZ: 1, Sectors: flatRoom(1, 1, 0, 0), AlternateRoom: 4}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.fd, tt.rooms); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestFindSectorFollowsPortal(t *testing.T) {
	// Room 0 spans X sectors 0-3; its last column is a portal to room 1.
	fd := floordata.FloorData{
		0,
		0x8001, 1, // last BoundaryRoom chunk -> room 1
	}
	r0 := flatRoom(4, 3, 0, -8)
	for z := range 3 {
		r0[3*3+z].FloorDataIndex = 1
	}
	r1 := flatRoom(4, 3, 2, -8)

	lvl, err := New(fd, []RoomData{
		{SectorCountX: 4, SectorCountZ: 3, Sectors: r0, AlternateRoom: -1},
		{Position: core.TRVec{X: core.Sectors(3)}, SectorCountX: 4, SectorCountZ: 3, Sectors: r1, AlternateRoom: -1},
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	pos := core.TRVec{X: core.Sectors(4) + 512, Y: 0, Z: core.Sectors(1) + 512}
	sector, room := lvl.FindSectorForPosition(pos, lvl.Rooms[0])
	if room != lvl.Rooms[1] {
		t.Fatalf("expected room 1, got room %d", room.Index)
	}
	if sector != lvl.Rooms[1].SectorAt(1, 1) {
		t.Error("expected sector (1,1) of room 1")
	}
	if sector.FloorHeight != 512 {
		t.Errorf("expected floor 512, got %d", sector.FloorHeight)
	}
}

func TestFindSectorThroughPit(t *testing.T) {
	upper := flatRoom(3, 3, 0, -8)
	lower := flatRoom(3, 3, 8, 0)
	upper[1*3+1].RoomBelow = 1
	lower[1*3+1].RoomAbove = 0

	lvl, err := New(nil, []RoomData{
		{SectorCountX: 3, SectorCountZ: 3, Sectors: upper, AlternateRoom: -1},
		{SectorCountX: 3, SectorCountZ: 3, Sectors: lower, AlternateRoom: -1},
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	// Falling through the pit lands in the lower room.
	pos := core.TRVec{X: 1536, Y: 100, Z: 1536}
	sector, room := lvl.FindSectorForPosition(pos, lvl.Rooms[0])
	if room.Index != 1 || sector.FloorHeight != 2048 {
		t.Errorf("expected lower room floor 2048, got room %d floor %d", room.Index, sector.FloorHeight)
	}

	// Climbing up from the lower room finds the upper room again.
	pos.Y = -100
	_, room = lvl.FindSectorForPosition(pos, lvl.Rooms[1])
	if room.Index != 0 {
		t.Errorf("expected upper room, got room %d", room.Index)
	}
}

func TestSwapAllRooms(t *testing.T) {
	base := flatRoom(2, 2, 4, -4)
	alt := flatRoom(2, 2, 8, -4)
	lower := flatRoom(1, 1, 0, -4)
	lower[0].RoomBelow = 0

	lvl, err := New(nil, []RoomData{
		{SectorCountX: 2, SectorCountZ: 2, Sectors: base, AlternateRoom: 1},
		{SectorCountX: 2, SectorCountZ: 2, Sectors: alt, AlternateRoom: -1},
		{SectorCountX: 1, SectorCountZ: 1, Sectors: lower, AlternateRoom: -1},
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	below := lvl.Rooms[2].SectorAt(0, 0).RoomBelow
	if below.SectorAt(0, 0).FloorHeight != 1024 {
		t.Fatalf("expected unflipped floor 1024, got %d", below.SectorAt(0, 0).FloorHeight)
	}

	lvl.SwapAllRooms()
	if !lvl.Flip.Flipped {
		t.Error("expected flipped after swap")
	}
	if below.SectorAt(0, 0).FloorHeight != 2048 {
		t.Errorf("expected link to resolve to alternate floor 2048, got %d", below.SectorAt(0, 0).FloorHeight)
	}
	if lvl.Rooms[0].Index != 0 || lvl.Rooms[1].Index != 1 {
		t.Error("expected room slots to keep their index")
	}
	if lvl.Rooms[0].AlternateRoom != 1 || lvl.Rooms[1].AlternateRoom != -1 {
		t.Errorf("expected alternates 1/-1, got %d/%d", lvl.Rooms[0].AlternateRoom, lvl.Rooms[1].AlternateRoom)
	}

	lvl.SwapAllRooms()
	if lvl.Flip.Flipped {
		t.Error("expected unflipped after second swap")
	}
	if below.SectorAt(0, 0).FloorHeight != 1024 {
		t.Errorf("expected original floor 1024 after swapping back, got %d", below.SectorAt(0, 0).FloorHeight)
	}
}

func TestFlipMapRange(t *testing.T) {
	var f FlipState
	f.Map(9).FullyActivate()
	if !f.Maps[9].IsFullyActivated() {
		t.Error("expected flip map 9 to be activated through the pointer")
	}

	defer func() {
		if recover() == nil {
			t.Error("expected panic for flip map 10")
		}
	}()
	f.Map(FlipMapCount)
}

func TestSecretsMask(t *testing.T) {
	fd := floordata.FloorData{
		0,
		0x8004, 0x3E00, 0x2800 | 2, 0x8000 | 0x2800 | 7, // last sequence: Secret 2, Secret 7
	}
	recs := flatRoom(1, 2, 0, 0)
	recs[1].FloorDataIndex = 1

	lvl, err := New(fd, []RoomData{{SectorCountX: 1, SectorCountZ: 2, Sectors: recs, AlternateRoom: -1}})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if got := lvl.SecretsMask(); got != 1<<2|1<<7 {
		t.Errorf("expected mask %#x, got %#x", 1<<2|1<<7, got)
	}
}
