package entity

import (
	"github.com/Faultbox/tr1-engine/internal/engine/animation"
	"github.com/Faultbox/tr1-engine/internal/engine/level"
	"github.com/Faultbox/tr1-engine/pkg/core"
)

// Player is the object controlled by the user.
type Player struct {
	*ModelObject

	Underwater   bool
	WeaponsReady bool
	// HandsBusy is set while the player's hands are taken by an action,
	// such as using a key or pulling a switch.
	HandsBusy bool
}

// NewPlayer creates the player object.
func NewPlayer(id uint16, model *animation.SkeletalModel, room *level.Room, pos core.TRVec) *Player {
	p := &Player{ModelObject: NewModelObject(id, model, room, pos)}
	p.Status = StatusActive
	return p
}

// Dead reports whether the player has run out of health.
func (p *Player) Dead() bool {
	return p.Health <= 0
}

// Kill drops the player's health to zero.
func (p *Player) Kill() {
	p.Health = 0
}
