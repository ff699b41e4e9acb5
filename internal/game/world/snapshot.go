package world

import (
	"math/bits"

	"github.com/Faultbox/tr1-engine/internal/engine/heightinfo"
	"github.com/Faultbox/tr1-engine/internal/game/entity"
	"github.com/Faultbox/tr1-engine/pkg/core"
	"github.com/Faultbox/tr1-engine/pkg/floordata"
)

// Snapshot is a serializable view of the world.
type Snapshot struct {
	Tick         uint64           `json:"tick"`
	Rooms        int              `json:"rooms"`
	Flipped      bool             `json:"flipped"`
	FlipMaps     []uint16         `json:"flip_maps"`
	SecretsFound int              `json:"secrets_found"`
	SecretsTotal int              `json:"secrets_total"`
	LevelEnded   bool             `json:"level_ended"`
	Camera       CameraSnapshot   `json:"camera"`
	Objects      []ObjectSnapshot `json:"objects,omitempty"`
}

// CameraSnapshot is the trigger-visible camera state.
type CameraSnapshot struct {
	Mode   string     `json:"mode"`
	Number int        `json:"number"`
	Timer  core.Frame `json:"timer"`
	Speed  int        `json:"speed"`
	Target *uint16    `json:"target,omitempty"`
}

// ObjectSnapshot describes one object.
type ObjectSnapshot struct {
	ID         uint16       `json:"id"`
	Type       uint32       `json:"type"`
	Player     bool         `json:"player,omitempty"`
	Room       int          `json:"room"`
	Position   core.TRVec   `json:"position"`
	Yaw        core.Angle   `json:"yaw"`
	Status     string       `json:"status"`
	Health     int          `json:"health"`
	Falling    bool         `json:"falling,omitempty"`
	Floor      *core.Length `json:"floor,omitempty"`
	Ceiling    *core.Length `json:"ceiling,omitempty"`
	Animation  int          `json:"animation"`
	Frame      core.Frame   `json:"frame"`
	State      uint16       `json:"state"`
	Activation uint16       `json:"activation"`
	Slots      []int        `json:"slots"`
	Killed     bool         `json:"killed,omitempty"`
	Timer      core.Frame   `json:"timer"`
}

// Snapshot captures the current world state.
func (w *World) Snapshot() Snapshot {
	s := Snapshot{
		Tick:         w.tick,
		Rooms:        len(w.level.Rooms),
		Flipped:      w.level.Flip.Flipped,
		SecretsFound: bits.OnesCount16(w.secretsFound),
		SecretsTotal: bits.OnesCount16(w.secretsTotal),
		LevelEnded:   w.levelEnded,
		Camera: CameraSnapshot{
			Mode:   w.camera.Mode.String(),
			Number: w.camera.Number,
			Timer:  w.camera.Timer,
			Speed:  w.camera.Speed,
		},
	}
	if w.camera.HasTarget {
		id := w.camera.TargetID
		s.Camera.Target = &id
	}
	for _, m := range w.level.Flip.Maps {
		s.FlipMaps = append(s.FlipMaps, uint16(m))
	}
	for _, o := range w.objects.All() {
		s.Objects = append(s.Objects, w.snapshotObject(o))
	}
	return s
}

// ActiveObjectSnapshots describes the active objects in insertion order.
func (w *World) ActiveObjectSnapshots() []ObjectSnapshot {
	out := []ObjectSnapshot{}
	for _, o := range w.ActiveObjects() {
		out = append(out, w.snapshotObject(o))
	}
	return out
}

// ObjectSnapshot describes the object with the given id.
func (w *World) ObjectSnapshot(id uint16) (ObjectSnapshot, bool) {
	o := w.objects.Get(id)
	if o == nil {
		return ObjectSnapshot{}, false
	}
	return w.snapshotObject(o), true
}

func (w *World) snapshotObject(o *entity.ModelObject) ObjectSnapshot {
	s := ObjectSnapshot{
		ID:         o.ID,
		Type:       o.Type,
		Room:       -1,
		Position:   o.Position,
		Yaw:        o.Rotation.Y,
		Status:     o.Status.String(),
		Health:     o.Health,
		Falling:    o.Falling,
		Animation:  o.Anim.Animation().ID,
		Frame:      o.Anim.CurrentFrame(),
		State:      o.Anim.CurrentState(),
		Activation: o.ObjectState.Activation.ActivationSet(),
		Slots:      []int{},
		Killed:     o.ObjectState.Activation.IsLocked(),
		Timer:      o.Timer,
	}
	for i := range floordata.ActivationSlots {
		if o.ObjectState.Activation.IsInActivationSet(i) {
			s.Slots = append(s.Slots, i)
		}
	}
	if p := w.objects.Player(); p != nil && p.ID == o.ID {
		s.Player = true
	}
	if o.Room != nil {
		s.Room = o.Room.Index
		sector, _ := w.level.FindSectorForPosition(o.Position, o.Room)
		skip := s.Player && w.skipSteep
		floor := heightinfo.FromFloor(sector, o.Position, w, skip).Y
		ceiling := heightinfo.FromCeiling(sector, o.Position, w, skip).Y
		s.Floor, s.Ceiling = &floor, &ceiling
	}
	return s
}

// SectorInfo describes one sector of a room.
type SectorInfo struct {
	Room          int                   `json:"room"`
	X             int                   `json:"x"`
	Z             int                   `json:"z"`
	FloorHeight   core.Length           `json:"floor"`
	CeilingHeight core.Length           `json:"ceiling"`
	RoomBelow     *int                  `json:"room_below,omitempty"`
	RoomAbove     *int                  `json:"room_above,omitempty"`
	FloorData     []floordata.ChunkInfo `json:"floor_data,omitempty"`
}

// DescribeSector decodes the sector at cell (x, z) of a room.
func (w *World) DescribeSector(roomIdx, x, z int) (SectorInfo, bool) {
	room := w.level.Room(roomIdx)
	if room == nil {
		return SectorInfo{}, false
	}
	sector := room.SectorAt(x, z)
	if sector == nil {
		return SectorInfo{}, false
	}
	info := SectorInfo{
		Room:          roomIdx,
		X:             x,
		Z:             z,
		FloorHeight:   sector.FloorHeight,
		CeilingHeight: sector.CeilingHeight,
		FloorData:     floordata.Describe(sector.FloorData),
	}
	if sector.RoomBelow != nil {
		info.RoomBelow = &sector.RoomBelow.Index
	}
	if sector.RoomAbove != nil {
		info.RoomAbove = &sector.RoomAbove.Index
	}
	return info, true
}

// Route is a walkable sector path inside one room.
type Route struct {
	Room  int      `json:"room"`
	Cells [][2]int `json:"cells"`
}

// FindRoute searches a walkable path between two sectors of a room. A nil
// Cells means no path exists.
func (w *World) FindRoute(roomIdx, startX, startZ, goalX, goalZ int) (Route, bool) {
	room := w.level.Room(roomIdx)
	if room == nil {
		return Route{}, false
	}
	return Route{
		Room:  roomIdx,
		Cells: NewPathFinder(room).FindPath(startX, startZ, goalX, goalZ),
	}, true
}
