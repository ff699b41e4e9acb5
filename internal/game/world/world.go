// Package world owns a running level: its rooms, objects and the
// level-wide trigger state, advanced one tick at a time.
package world

import (
	"fmt"
	"math/bits"

	"go.uber.org/zap"

	"github.com/Faultbox/tr1-engine/internal/engine/heightinfo"
	"github.com/Faultbox/tr1-engine/internal/engine/level"
	"github.com/Faultbox/tr1-engine/internal/engine/trigger"
	"github.com/Faultbox/tr1-engine/internal/game/entity"
	"github.com/Faultbox/tr1-engine/internal/logger"
	"github.com/Faultbox/tr1-engine/pkg/core"
	"github.com/Faultbox/tr1-engine/pkg/floordata"
	trmath "github.com/Faultbox/tr1-engine/pkg/math"
)

// Switch animation states.
const (
	SwitchStateOff uint16 = 0
	SwitchStateOn  uint16 = 1
)

// Options configures a world.
type Options struct {
	// SkipSteepSlants makes the player's floor and ceiling ignore steep slants.
	SkipSteepSlants bool
	// Effects receives sounds, effects and music; nil logs them.
	Effects Effects
}

// World is a running level.
type World struct {
	level      *level.Level
	objects    *entity.Manager
	camera     *trigger.CameraState
	dispatcher *trigger.Dispatcher
	effects    Effects
	skipSteep  bool

	secretsFound uint16
	secretsTotal uint16
	tracks       map[uint16]floordata.ActivationState
	currentTrack uint16

	levelEnded        bool
	underwaterCurrent uint16
	hasCurrent        bool

	// activator is the object whose trigger is being dispatched.
	activator *entity.ModelObject
	tick      uint64
	log       *zap.Logger
}

// New creates a world running lvl.
func New(lvl *level.Level, opts Options) *World {
	w := &World{
		level:        lvl,
		objects:      entity.NewManager(),
		camera:       trigger.NewCameraState(),
		effects:      opts.Effects,
		skipSteep:    opts.SkipSteepSlants,
		secretsTotal: lvl.SecretsMask(),
		tracks:       make(map[uint16]floordata.ActivationState),
		log:          logger.Named("world"),
	}
	if w.effects == nil {
		w.effects = logEffects{log: w.log}
	}
	w.dispatcher = trigger.New(w)
	w.log.Info("world created",
		zap.Int("rooms", len(lvl.Rooms)),
		zap.Int("secrets", bits.OnesCount16(w.secretsTotal)))
	return w
}

// Level returns the level the world runs.
func (w *World) Level() *level.Level {
	return w.level
}

// AddObject adds an object to the world.
func (w *World) AddObject(o *entity.ModelObject) {
	o.SetEffectSink(w.effects)
	w.objects.Add(o)
}

// SetPlayer sets the player.
func (w *World) SetPlayer(p *entity.Player) {
	p.SetEffectSink(w.effects)
	w.objects.SetPlayer(p)
}

// Player returns the player, or nil.
func (w *World) Player() *entity.Player {
	return w.objects.Player()
}

// ObjectByID returns an object by id, or nil.
func (w *World) ObjectByID(id uint16) *entity.ModelObject {
	return w.objects.Get(id)
}

// Objects returns all objects in insertion order.
func (w *World) Objects() []*entity.ModelObject {
	return w.objects.All()
}

// ActiveObjects returns the active objects in insertion order.
func (w *World) ActiveObjects() []*entity.ModelObject {
	var out []*entity.ModelObject
	for _, o := range w.objects.All() {
		if o.IsActive() {
			out = append(out, o)
		}
	}
	return out
}

// FindSectorForPosition resolves the sector holding pos, starting at room.
func (w *World) FindSectorForPosition(pos core.TRVec, room *level.Room) (*level.Sector, *level.Room) {
	return w.level.FindSectorForPosition(pos, room)
}

// Ticks returns the number of ticks run so far.
func (w *World) Ticks() uint64 {
	return w.tick
}

// LevelEnded reports whether an EndLevel command ran.
func (w *World) LevelEnded() bool {
	return w.levelEnded
}

// UnderwaterCurrent returns the sink set by the last UnderwaterCurrent
// command.
func (w *World) UnderwaterCurrent() (uint16, bool) {
	return w.underwaterCurrent, w.hasCurrent
}

// Tick advances the world by one tick. Objects other than the player run
// first, in insertion order, so they see the player's previous position.
func (w *World) Tick() {
	for _, o := range w.objects.Others() {
		if !o.IsActive() {
			continue
		}
		if !o.TriggerActive() {
			o.Status = entity.StatusDeactivated
			w.log.Debug("object deactivated", zap.Uint16("id", o.ID))
			continue
		}
		w.update(o, false)
	}

	if p := w.objects.Player(); p != nil && !p.Dead() {
		w.update(p.ModelObject, true)
		p.Underwater = p.Room != nil && p.Room.Water
	}

	w.camera.Tick()
	w.tick++
}

func (w *World) update(o *entity.ModelObject, isPlayer bool) {
	o.Advance()
	if o.Room == nil {
		o.Room = w.level.FindRoomForPosition(o.Position)
	}
	if o.Room == nil {
		w.place(o)
		return
	}

	sector, room := w.level.FindSectorForPosition(o.Position, o.Room)
	o.Room = room
	floor := heightinfo.FromFloor(sector, o.Position, w, isPlayer && w.skipSteep)

	switch {
	case !o.Falling:
		o.Position.Y = floor.Y
	case o.Position.Y >= floor.Y:
		o.Position.Y = floor.Y
		o.Falling = false
		o.FallSpeed = 0
	}

	if isPlayer || o.Heavy {
		w.activator = o
		w.dispatcher.Run(trigger.Activation{
			Trigger:    floor.LastCommandSequenceOrDeath,
			Heavy:      !isPlayer,
			ActorY:     o.Position.Y,
			FloorY:     floor.Y,
			Underwater: room.Water,
		})
		w.activator = nil
	}

	w.place(o)
}

// place pushes the object's pose into its scene node.
func (w *World) place(o *entity.ModelObject) {
	o.Anim.UpdatePose()
	o.Node.SetLocalTransform(trmath.Translate(o.Position).Mul4(trmath.RotateYXZ(o.Rotation)))
}

// SecretsFound returns the mask of secrets found so far.
func (w *World) SecretsFound() uint16 {
	return w.secretsFound
}

// SecretsMask returns every secret the level's floor data references.
func (w *World) SecretsMask() uint16 {
	return w.secretsTotal
}

// RestoreProgress applies saved secrets and flip state.
func (w *World) RestoreProgress(secrets uint16, flipped bool, maps [level.FlipMapCount]floordata.ActivationState) {
	w.secretsFound = secrets
	w.level.Flip.Maps = maps
	if flipped != w.level.Flip.Flipped {
		w.level.SwapAllRooms()
	}
}

// Patcher implements heightinfo.Objects.
func (w *World) Patcher(id uint16) (heightinfo.Patcher, bool) {
	o := w.objects.Get(id)
	if o == nil {
		return nil, false
	}
	return o, true
}

// Object implements trigger.World.
func (w *World) Object(id uint16) (trigger.Object, bool) {
	o := w.objects.Get(id)
	if o == nil {
		return nil, false
	}
	return o, true
}

// KillActivator implements trigger.World.
func (w *World) KillActivator() {
	if w.activator == nil {
		return
	}
	p := w.objects.Player()
	if p == nil || p.ModelObject != w.activator {
		return
	}
	w.log.Info("player killed by death sector", zap.Uint16("id", p.ID))
	p.Kill()
}

// SwitchTrigger implements trigger.World. A switch that has been used is
// deactivated; triggering it rearms it.
func (w *World) SwitchTrigger(id uint16, timeout core.Frame) (fired, switchOff bool) {
	o := w.objects.Get(id)
	if o == nil || o.Status != entity.StatusDeactivated {
		return false, false
	}
	state := o.Anim.CurrentState()
	if state == SwitchStateOff && timeout > 0 {
		o.Timer = timeout
		o.Status = entity.StatusActive
	} else {
		o.Status = entity.StatusInactive
	}
	return true, state == SwitchStateOn
}

// KeyTrigger implements trigger.World. A keyhole fires while the player's
// hands are free.
func (w *World) KeyTrigger(id uint16) bool {
	o := w.objects.Get(id)
	if o == nil || o.Status != entity.StatusActive || w.handsBusy() {
		return false
	}
	o.Status = entity.StatusDeactivated
	return true
}

// PickupTrigger implements trigger.World.
func (w *World) PickupTrigger(id uint16) bool {
	o := w.objects.Get(id)
	if o == nil || o.Status != entity.StatusInvisible {
		return false
	}
	o.Status = entity.StatusDeactivated
	return true
}

func (w *World) handsBusy() bool {
	p := w.objects.Player()
	return p != nil && p.HandsBusy
}

// CombatReady implements trigger.World.
func (w *World) CombatReady() bool {
	p := w.objects.Player()
	return p != nil && p.WeaponsReady
}

// Camera implements trigger.World.
func (w *World) Camera() *trigger.CameraState {
	return w.camera
}

// FlipState implements trigger.World.
func (w *World) FlipState() *level.FlipState {
	return &w.level.Flip
}

// SwapAllRooms implements trigger.World.
func (w *World) SwapAllRooms() {
	w.level.SwapAllRooms()
	w.log.Info("flip map toggled", zap.Bool("flipped", w.level.Flip.Flipped))
}

// SecretFound implements trigger.World.
func (w *World) SecretFound(index int) bool {
	return w.secretsFound&(1<<index) != 0
}

// SetSecretFound implements trigger.World.
func (w *World) SetSecretFound(index int) {
	w.secretsFound |= 1 << index
	w.effects.PlayTrack(SecretTrack)
}

// RunEffect implements trigger.World.
func (w *World) RunEffect(effect int) {
	w.effects.RunFlipEffect(effect)
}

// EndLevel implements trigger.World.
func (w *World) EndLevel() {
	w.levelEnded = true
}

// PlayTrack implements trigger.World. Each track keeps its own activation
// mask; the track starts once its mask is complete.
func (w *World) PlayTrack(track uint16, req floordata.ActivationState, cond floordata.SequenceCondition) {
	mask := w.tracks[track]
	if mask.IsOneshot() {
		return
	}
	mask.Apply(req, cond)
	if mask.IsFullyActivated() {
		if req.IsOneshot() {
			mask.SetOneshot(true)
		}
		if track != w.currentTrack {
			w.currentTrack = track
			w.effects.PlayTrack(track)
		}
	}
	w.tracks[track] = mask
}

// SetUnderwaterCurrent implements trigger.World.
func (w *World) SetUnderwaterCurrent(sink uint16) {
	w.underwaterCurrent, w.hasCurrent = sink, true
}

func (w *World) String() string {
	return fmt.Sprintf("world(rooms=%d objects=%d tick=%d)", len(w.level.Rooms), w.objects.Count(), w.tick)
}
