package floordata

import "github.com/Faultbox/tr1-engine/pkg/core"

// ActivationSlots is the number of independent activation bits.
const ActivationSlots = 5

// ActivationState is the 16-bit activation mask of an object, a flip map
// or the trigger request that changes them.
//
//	bit 15     locked
//	bit 14     inverted
//	bits 9-13  activation set
//	bit 8      oneshot
//	bits 0-7   timeout in seconds
type ActivationState uint16

const (
	activationTimeoutMask ActivationState = 0x00FF
	activationOneshot     ActivationState = 0x0100
	activationSetMask     ActivationState = 0x3E00
	activationInverted    ActivationState = 0x4000
	activationLocked      ActivationState = 0x8000

	activationSetShift = 9
)

// NewActivationState reinterprets a trigger metadata word.
func NewActivationState(v Value) ActivationState {
	return ActivationState(v)
}

// Timeout returns the timeout field in seconds.
func (a ActivationState) Timeout() uint8 {
	return uint8(a & activationTimeoutMask)
}

// TimeoutFrames converts the timeout to ticks. A timeout of exactly one is
// kept as one tick.
func (a ActivationState) TimeoutFrames() core.Frame {
	t := core.Frame(a.Timeout())
	if t != 1 {
		t *= core.FrameRate
	}
	return t
}

// IsOneshot reports the oneshot flag.
func (a ActivationState) IsOneshot() bool {
	return a&activationOneshot != 0
}

// SetOneshot sets or clears the oneshot flag.
func (a *ActivationState) SetOneshot(on bool) {
	a.set(activationOneshot, on)
}

// IsInverted reports the inverted flag.
func (a ActivationState) IsInverted() bool {
	return a&activationInverted != 0
}

// SetInverted sets or clears the inverted flag.
func (a *ActivationState) SetInverted(on bool) {
	a.set(activationInverted, on)
}

// IsLocked reports the locked flag.
func (a ActivationState) IsLocked() bool {
	return a&activationLocked != 0
}

// SetLocked sets or clears the locked flag.
func (a *ActivationState) SetLocked(on bool) {
	a.set(activationLocked, on)
}

// ActivationSet returns the five activation slots as the low bits.
func (a ActivationState) ActivationSet() uint16 {
	return uint16(a&activationSetMask) >> activationSetShift
}

// IsInActivationSet reports whether slot i is set.
func (a ActivationState) IsInActivationSet(i int) bool {
	if i < 0 || i >= ActivationSlots {
		panic("floordata: activation slot out of range")
	}
	return a.ActivationSet()&(1<<i) != 0
}

// IsFullyActivated reports whether all five slots are set.
func (a ActivationState) IsFullyActivated() bool {
	return a&activationSetMask == activationSetMask
}

// FullyActivate sets all five slots.
func (a *ActivationState) FullyActivate() {
	*a |= activationSetMask
}

// ToggleSet XORs the request's slots into a (switch semantics).
func (a *ActivationState) ToggleSet(req ActivationState) {
	*a ^= req & activationSetMask
}

// ClearSet removes the request's slots from a (anti-pad semantics).
func (a *ActivationState) ClearSet(req ActivationState) {
	*a &^= req & activationSetMask
}

// MergeSet ORs the request's slots into a.
func (a *ActivationState) MergeSet(req ActivationState) {
	*a |= req & activationSetMask
}

// Apply changes the activation set as a trigger of the given condition does.
func (a *ActivationState) Apply(req ActivationState, cond SequenceCondition) {
	switch cond {
	case ConditionSwitch:
		a.ToggleSet(req)
	case ConditionAntiPad:
		a.ClearSet(req)
	default:
		a.MergeSet(req)
	}
}

func (a *ActivationState) set(bit ActivationState, on bool) {
	if on {
		*a |= bit
	} else {
		*a &^= bit
	}
}
