// Package trigger runs the command sequences found in sector floor data
// against the world: object activation, camera overrides, flip maps,
// secrets and the effects forwarded to the world.
package trigger

import (
	"fmt"
	"iter"

	"go.uber.org/zap"

	"github.com/Faultbox/tr1-engine/internal/engine/level"
	"github.com/Faultbox/tr1-engine/internal/logger"
	"github.com/Faultbox/tr1-engine/pkg/core"
	"github.com/Faultbox/tr1-engine/pkg/floordata"
)

// SecretCount is the number of secret slots of a level.
const SecretCount = 16

// Object is an object that commands can activate.
type Object interface {
	Activation() *floordata.ActivationState
	SetTriggerTimer(t core.Frame)
	IsActive() bool
	Activate()
}

// World is what a trigger acts on.
type World interface {
	// Object returns the object with the given id.
	Object(id uint16) (Object, bool)
	// KillActivator kills whoever stands on a death sector.
	KillActivator()

	// SwitchTrigger flips switch id if it is ready. switchOff reports that
	// the switch now rests in its off position.
	SwitchTrigger(id uint16, timeout core.Frame) (fired, switchOff bool)
	KeyTrigger(id uint16) bool
	PickupTrigger(id uint16) bool
	// CombatReady reports whether the activator has weapons drawn.
	CombatReady() bool

	Camera() *CameraState
	FlipState() *level.FlipState
	SwapAllRooms()

	SecretFound(index int) bool
	SetSecretFound(index int)

	RunEffect(effect int)
	EndLevel()
	PlayTrack(track uint16, req floordata.ActivationState, cond floordata.SequenceCondition)
	SetUnderwaterCurrent(sink uint16)
}

// Activation describes who stepped on a trigger.
type Activation struct {
	// Trigger is the first Death or CommandSequence chunk of the sector.
	Trigger floordata.Ref
	// Heavy is set when a heavy object, not the player, runs the trigger.
	Heavy      bool
	ActorY     core.Length
	FloorY     core.Length
	Underwater bool
}

// Dispatcher executes trigger sequences.
type Dispatcher struct {
	world World
	log   *zap.Logger
}

// New returns a dispatcher acting on w.
func New(w World) *Dispatcher {
	return &Dispatcher{world: w, log: logger.Named("trigger")}
}

// Run executes the trigger at a.Trigger, if its condition holds.
func (d *Dispatcher) Run(a Activation) {
	if a.Trigger.IsNil() {
		return
	}

	for c := range a.Trigger.Chunks() {
		switch c.Type {
		case floordata.ChunkDeath:
			if !a.Heavy && (a.ActorY == a.FloorY || a.Underwater) {
				d.log.Debug("death sector", zap.Int("offset", c.Offset()))
				d.world.KillActivator()
			}
			continue
		case floordata.ChunkCommandSequence:
			d.runSequence(c, a)
		default:
			panic(fmt.Sprintf("trigger: %s chunk at %d is not a trigger", c.Type, c.Offset()))
		}
		return
	}
}

func (d *Dispatcher) runSequence(c floordata.Chunk, a Activation) {
	cond := c.SequenceCondition
	req := c.Activation()
	timeout := req.TimeoutFrames()

	next, stop := iter.Pull(c.Commands())
	defer stop()

	switchOff := false
	if a.Heavy {
		if cond != floordata.ConditionHeavy {
			return
		}
	} else {
		switch cond {
		case floordata.ConditionSwitch:
			cmd, _ := next()
			fired, off := d.world.SwitchTrigger(cmd.Parameter, timeout)
			if !fired {
				return
			}
			switchOff = off
		case floordata.ConditionPad, floordata.ConditionAntiPad:
			if a.ActorY != a.FloorY {
				return
			}
		case floordata.ConditionKey:
			cmd, _ := next()
			if !d.world.KeyTrigger(cmd.Parameter) {
				return
			}
		case floordata.ConditionPickup:
			cmd, _ := next()
			if !d.world.PickupTrigger(cmd.Parameter) {
				return
			}
		case floordata.ConditionHeavy, floordata.ConditionDummy:
			return
		case floordata.ConditionCombat:
			if !d.world.CombatReady() {
				return
			}
		}
	}

	var (
		flip          bool
		flipAvailable bool
		effect        = -1
		target        uint16
		hasTarget     bool
	)
	cam := d.world.Camera()
	flips := d.world.FlipState()

	for {
		cmd, ok := next()
		if !ok {
			break
		}

		switch cmd.Opcode {
		case floordata.OpActivate:
			d.activate(cmd.Parameter, req, cond, timeout)

		case floordata.OpSwitchCamera:
			d.switchCamera(cam, cmd, cond, req, a.Heavy, switchOff)

		case floordata.OpLookAt:
			target, hasTarget = cmd.Parameter, true

		case floordata.OpUnderwaterCurrent:
			d.world.SetUnderwaterCurrent(cmd.Parameter)

		case floordata.OpFlipMap:
			flipAvailable = true
			fm := flips.Map(int(cmd.Parameter))
			if fm.IsOneshot() {
				break
			}
			if cond == floordata.ConditionSwitch {
				fm.ToggleSet(req)
			} else {
				fm.MergeSet(req)
			}
			if fm.IsFullyActivated() {
				if req.IsOneshot() {
					fm.SetOneshot(true)
				}
				if !flips.Flipped {
					flip = true
				}
			} else if flips.Flipped {
				flip = true
			}

		case floordata.OpFlipOn:
			if flips.Map(int(cmd.Parameter)).IsFullyActivated() && !flips.Flipped {
				flip = true
			}

		case floordata.OpFlipOff:
			if flips.Map(int(cmd.Parameter)).IsFullyActivated() && flips.Flipped {
				flip = true
			}

		case floordata.OpFlipEffect:
			effect = int(cmd.Parameter)

		case floordata.OpEndLevel:
			d.log.Info("level end triggered")
			d.world.EndLevel()

		case floordata.OpPlayTrack:
			d.world.PlayTrack(cmd.Parameter, req, cond)

		case floordata.OpSecret:
			idx := int(cmd.Parameter)
			if idx >= SecretCount {
				panic(fmt.Sprintf("trigger: secret index %d out of range at word %d", idx, cmd.Offset))
			}
			if d.world.SecretFound(idx) {
				break
			}
			d.log.Debug("secret found", zap.Int("index", idx))
			d.world.SetSecretFound(idx)

		default:
			panic(fmt.Sprintf("trigger: unexpected %s command at word %d", cmd.Opcode, cmd.Offset))
		}
	}

	if hasTarget && (cam.Mode == CameraFixed || cam.Mode == CameraHeavy) {
		cam.TargetID, cam.HasTarget = target, true
	}
	if flip {
		d.log.Debug("flip map", zap.Bool("flipped", !flips.Flipped))
		d.world.SwapAllRooms()
	}
	if effect >= 0 && (flip || !flipAvailable) {
		d.world.RunEffect(effect)
	}
}

func (d *Dispatcher) activate(id uint16, req floordata.ActivationState, cond floordata.SequenceCondition, timeout core.Frame) {
	obj, ok := d.world.Object(id)
	if !ok {
		return
	}
	state := obj.Activation()
	if state.IsOneshot() {
		return
	}

	obj.SetTriggerTimer(timeout)
	state.Apply(req, cond)
	if !state.IsFullyActivated() {
		return
	}
	if req.IsOneshot() {
		state.SetOneshot(true)
	}
	if !obj.IsActive() {
		d.log.Debug("object activated", zap.Uint16("id", id))
		obj.Activate()
	}
}

func (d *Dispatcher) switchCamera(cam *CameraState, cmd floordata.CommandEntry, cond floordata.SequenceCondition, req floordata.ActivationState, heavy, switchOff bool) {
	num := int(cmd.Parameter)
	if cam.Oneshot[num] {
		return
	}
	cam.Number = num

	switch {
	case cam.Mode == CameraLook || cam.Mode == CameraCombat:
		return
	case cond == floordata.ConditionCombat:
		return
	case cond == floordata.ConditionSwitch && req.Timeout() != 0 && switchOff:
		return
	case cam.Number == cam.Last && cond != floordata.ConditionSwitch:
		return
	}

	cam.Timer = core.Frame(cmd.Camera.Timeout)
	if cam.Timer != 1 {
		cam.Timer *= core.FrameRate
	}
	if cmd.Camera.Oneshot {
		cam.Oneshot[num] = true
	}
	// Smoothness holds bits 9-13 shifted down by 8; speed is those bits
	// shifted down by 6, plus one.
	cam.Speed = int(cmd.Camera.Smoothness)*4 + 1
	cam.Mode = CameraFixed
	if heavy {
		cam.Mode = CameraHeavy
	}
	d.log.Debug("camera override", zap.Int("camera", num), zap.Stringer("mode", cam.Mode))
}
