package trigger

import "github.com/Faultbox/tr1-engine/pkg/core"

// CameraMode is what the camera currently follows.
type CameraMode int

const (
	CameraChase CameraMode = iota
	CameraFixed
	CameraLook
	CameraCombat
	CameraHeavy
)

func (m CameraMode) String() string {
	switch m {
	case CameraFixed:
		return "fixed"
	case CameraLook:
		return "look"
	case CameraCombat:
		return "combat"
	case CameraHeavy:
		return "heavy"
	default:
		return "chase"
	}
}

// CameraState is the trigger-visible part of the camera.
type CameraState struct {
	Mode   CameraMode
	Number int        // requested fixed camera
	Last   int        // fixed camera used before the current one
	Timer  core.Frame // ticks until the override ends; 0 means none
	Speed  int

	TargetID  uint16
	HasTarget bool

	// Oneshot marks fixed cameras that may only be switched to once.
	Oneshot map[int]bool
}

// NewCameraState returns a chase camera with no fixed camera used yet.
func NewCameraState() *CameraState {
	return &CameraState{Number: -1, Last: -1, Oneshot: make(map[int]bool)}
}

// Tick counts down a fixed camera override and falls back to chasing once
// it runs out.
func (c *CameraState) Tick() {
	if c.Mode != CameraFixed && c.Mode != CameraHeavy {
		return
	}
	if c.Timer > 0 {
		c.Timer--
		if c.Timer > 0 {
			return
		}
	}
	c.Last = c.Number
	c.Mode = CameraChase
	c.HasTarget = false
}
