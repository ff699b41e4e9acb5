package loader

import "github.com/Faultbox/tr1-engine/pkg/core"

// NoRoom marks an absent room link in a sector record.
const NoRoom = 0xFF

// AnimationRecord is a raw animation header (32 bytes).
type AnimationRecord struct {
	PoseDataOffset   uint32 // byte offset into pose data
	StretchFactor    uint8
	PoseDataSize     uint8 // words per keyframe
	StateID          uint16
	Speed            int32 // 16.16 fixed point
	Accel            int32 // 16.16 fixed point
	FirstFrame       uint16
	LastFrame        uint16
	NextAnimation    uint16
	NextFrame        uint16
	TransitionsCount uint16
	TransitionsIndex uint16
	AnimCommandCount uint16
	AnimCommandIndex uint16
}

// TransitionRecord groups the transition cases leading to one state (6 bytes).
type TransitionRecord struct {
	StateID   uint16
	CaseCount uint16
	FirstCase uint16
}

// TransitionCaseRecord is a frame-range qualified jump (8 bytes).
// Frame numbers are level-global.
type TransitionCaseRecord struct {
	FirstFrame  uint16
	LastFrame   uint16
	TargetAnim  uint16
	TargetFrame uint16
}

// BoneTreeRecord describes how a bone attaches to the previous one (16 bytes).
type BoneTreeRecord struct {
	Flags   uint32 // bit 0 pop, bit 1 push
	X, Y, Z int32
}

// SectorRecord is a raw room sector (8 bytes).
type SectorRecord struct {
	FloorDataIndex uint16
	BoxIndex       uint16
	RoomBelow      uint8
	Floor          int8 // quarter sectors
	RoomAbove      uint8
	Ceiling        int8 // quarter sectors
}

// FloorHeight returns the floor height in world units.
func (s SectorRecord) FloorHeight() core.Length {
	return core.Length(s.Floor) * core.QuarterSectorSize
}

// CeilingHeight returns the ceiling height in world units.
func (s SectorRecord) CeilingHeight() core.Length {
	return core.Length(s.Ceiling) * core.QuarterSectorSize
}

// ModelRecord is a moveable header (18 bytes).
type ModelRecord struct {
	ObjectID       uint32
	MeshCount      uint16
	FirstMesh      uint16
	BoneTreeIndex  uint32 // int32 word index, four words per entry
	PoseDataOffset uint32 // byte offset into pose data
	AnimationIndex uint16
}
