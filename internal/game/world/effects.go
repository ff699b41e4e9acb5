package world

import (
	"go.uber.org/zap"

	"github.com/Faultbox/tr1-engine/internal/game/entity"
)

// SecretTrack is the jingle played when a secret is found.
const SecretTrack uint16 = 13

// Effects receives the fire-and-forget outputs of the simulation.
type Effects interface {
	entity.EffectSink
	RunFlipEffect(id int)
	PlayTrack(track uint16)
}

// logEffects records every effect in the log.
type logEffects struct {
	log *zap.Logger
}

// LogEffects returns an Effects that only logs.
func LogEffects(log *zap.Logger) Effects {
	return logEffects{log: log}
}

func (e logEffects) PlaySound(id int, obj *entity.ObjectState) {
	e.log.Debug("sound", zap.Int("id", id), zap.Uint16("object", obj.ID))
}

func (e logEffects) RunAnimEffect(id int, obj *entity.ObjectState) {
	e.log.Debug("anim effect", zap.Int("id", id), zap.Uint16("object", obj.ID))
}

func (e logEffects) RunFlipEffect(id int) {
	e.log.Info("flip effect", zap.Int("id", id))
}

func (e logEffects) PlayTrack(track uint16) {
	e.log.Info("music track", zap.Uint16("track", track))
}
