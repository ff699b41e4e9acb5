// Package entity implements the objects of a level: animated models,
// their trigger state and the player.
package entity

import (
	"fmt"

	"github.com/Faultbox/tr1-engine/internal/engine/animation"
	"github.com/Faultbox/tr1-engine/internal/engine/level"
	"github.com/Faultbox/tr1-engine/internal/engine/scene"
	"github.com/Faultbox/tr1-engine/pkg/core"
	"github.com/Faultbox/tr1-engine/pkg/floordata"
)

// Status is the simulation status of an object.
type Status uint8

const (
	StatusInactive Status = iota
	StatusActive
	StatusDeactivated
	StatusInvisible
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusDeactivated:
		return "deactivated"
	case StatusInvisible:
		return "invisible"
	default:
		return "inactive"
	}
}

// Gravity constants, in units per tick.
const (
	Gravity       core.Length = 6
	FastFallSpeed core.Length = 128
)

// expiredTimer marks a trigger timer that has run out.
const expiredTimer core.Frame = -1

// ObjectState is the simulation state shared by every object.
type ObjectState struct {
	ID       uint16
	Type     uint32 // model object id
	Position core.TRVec
	Rotation core.YPRotation
	Room     *level.Room

	Speed     core.Length
	FallSpeed core.Length
	Falling   bool

	Activation floordata.ActivationState
	Timer      core.Frame
	Status     Status
	Health     int

	// Heavy objects run Heavy triggers of the sectors they stand on.
	Heavy bool
}

// TriggerActive reports whether the object's triggers keep it running and
// counts down a running timer. A timer of zero never expires; once it runs
// out it is parked at -1. The inverted flag flips the result.
func (s *ObjectState) TriggerActive() bool {
	ok := !s.Activation.IsInverted()
	if !s.Activation.IsFullyActivated() {
		return !ok
	}
	switch s.Timer {
	case 0:
		return ok
	case expiredTimer:
		return !ok
	}
	s.Timer--
	if s.Timer == 0 {
		s.Timer = expiredTimer
	}
	return ok
}

// EffectSink receives the sounds and effects objects cause.
type EffectSink interface {
	PlaySound(id int, obj *ObjectState)
	RunAnimEffect(id int, obj *ObjectState)
}

// ModelObject is an object animated by a skeletal model.
type ModelObject struct {
	ObjectState

	Anim *animation.Controller
	Node *scene.Node

	// BlockHeight makes the object a solid block of this height standing
	// on its position; zero means the object does not patch heights.
	BlockHeight core.Length

	HandsEmpty bool
	effects    EffectSink
}

// NewModelObject creates an object posed by model.
func NewModelObject(id uint16, model *animation.SkeletalModel, room *level.Room, pos core.TRVec) *ModelObject {
	node := scene.NewSkeleton(fmt.Sprintf("object%d", id), model.BoneCount())
	o := &ModelObject{
		ObjectState: ObjectState{
			ID:       id,
			Type:     model.ObjectID,
			Position: pos,
			Room:     room,
			Health:   1000,
		},
		Node: node,
	}
	o.Anim = animation.NewController(model, node)
	o.Anim.SetCommandHandler(o)
	return o
}

// SetEffectSink installs the receiver of sounds and effects.
func (o *ModelObject) SetEffectSink(s EffectSink) {
	o.effects = s
}

// Activation implements trigger.Object.
func (o *ModelObject) Activation() *floordata.ActivationState {
	return &o.ObjectState.Activation
}

// SetTriggerTimer implements trigger.Object.
func (o *ModelObject) SetTriggerTimer(t core.Frame) {
	o.Timer = t
}

// IsActive implements trigger.Object.
func (o *ModelObject) IsActive() bool {
	return o.Status == StatusActive
}

// Activate implements trigger.Object.
func (o *ModelObject) Activate() {
	o.Status = StatusActive
}

// Advance runs one tick of animation and movement.
func (o *ModelObject) Advance() {
	o.Anim.AdvanceFrame()

	if o.Falling {
		if o.FallSpeed < FastFallSpeed {
			o.FallSpeed += Gravity
		} else {
			o.FallSpeed++
		}
		o.Position.Y += o.FallSpeed
	} else {
		o.Speed = o.Anim.FloorSpeed()
	}

	o.Position.X += core.Length(o.Rotation.Y.Sin() * int32(o.Speed) >> 14)
	o.Position.Z += core.Length(o.Rotation.Y.Cos() * int32(o.Speed) >> 14)
}

// HandleAnimCommand implements animation.AnimCommandHandler.
func (o *ModelObject) HandleAnimCommand(cmd animation.AnimCommand) {
	switch cmd.Type {
	case animation.CmdSetPosition:
		o.Move(cmd.Offset())
	case animation.CmdStartFalling:
		o.Falling = true
		o.FallSpeed = core.Length(cmd.Args[0])
		o.Speed = core.Length(cmd.Args[1])
	case animation.CmdEmptyHands:
		o.HandsEmpty = true
	case animation.CmdKill:
		o.Status = StatusDeactivated
		o.ObjectState.Activation.SetLocked(true)
	case animation.CmdPlaySound:
		if o.effects != nil {
			o.effects.PlaySound(cmd.ID(), &o.ObjectState)
		}
	case animation.CmdPlayEffect:
		if o.effects != nil {
			o.effects.RunAnimEffect(cmd.ID(), &o.ObjectState)
		}
	}
}

// Move shifts the object by an offset in its own space (Z forward, X right).
func (o *ModelObject) Move(d core.TRVec) {
	sin, cos := o.Rotation.Y.Sin(), o.Rotation.Y.Cos()
	o.Position.X += core.Length((int32(d.Z)*sin + int32(d.X)*cos) >> 14)
	o.Position.Z += core.Length((int32(d.Z)*cos - int32(d.X)*sin) >> 14)
	o.Position.Y += d.Y
}

// sameSector reports whether pos lies in the sector the object stands in.
func (o *ModelObject) sameSector(pos core.TRVec) bool {
	return pos.X.SectorIndex() == o.Position.X.SectorIndex() &&
		pos.Z.SectorIndex() == o.Position.Z.SectorIndex()
}

// PatchFloor implements heightinfo.Patcher: a block's top replaces the
// floor for positions above it.
func (o *ModelObject) PatchFloor(pos core.TRVec, y core.Length) core.Length {
	if o.BlockHeight == 0 || o.Status == StatusInvisible || !o.sameSector(pos) {
		return y
	}
	top := o.Position.Y - o.BlockHeight
	if pos.Y <= top && y > top {
		return top
	}
	return y
}

// PatchCeiling implements heightinfo.Patcher: a block's bottom replaces the
// ceiling for positions below it.
func (o *ModelObject) PatchCeiling(pos core.TRVec, y core.Length) core.Length {
	if o.BlockHeight == 0 || o.Status == StatusInvisible || !o.sameSector(pos) {
		return y
	}
	if pos.Y > o.Position.Y && y < o.Position.Y {
		return o.Position.Y
	}
	return y
}
