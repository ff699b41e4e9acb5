// Package floordata decodes the per-sector floor data stream.
//
// A sector's floor data is a run of 16-bit words inside one level-wide array.
// The same word means different things depending on where it sits in the
// stream, so raw words are only ever read through the typed views below:
// ChunkHeader, Command, ActivationState and CameraParameters.
package floordata

import (
	"fmt"

	"github.com/Faultbox/tr1-engine/pkg/core"
)

// Value is one raw floor data word.
type Value uint16

// FloorData is the level-wide floor data array.
type FloorData []Value

// ChunkType identifies what a chunk header introduces.
type ChunkType uint8

// Chunk types used by TR1 data. Any other byte decodes to itself.
const (
	ChunkBoundaryRoom    ChunkType = 0x01
	ChunkFloorSlant      ChunkType = 0x02
	ChunkCeilingSlant    ChunkType = 0x03
	ChunkCommandSequence ChunkType = 0x04
	ChunkDeath           ChunkType = 0x05
	ChunkClimb           ChunkType = 0x06
	ChunkMonkey          ChunkType = 0x13
)

// String returns a readable chunk type name.
func (t ChunkType) String() string {
	switch t {
	case ChunkBoundaryRoom:
		return "BoundaryRoom"
	case ChunkFloorSlant:
		return "FloorSlant"
	case ChunkCeilingSlant:
		return "CeilingSlant"
	case ChunkCommandSequence:
		return "CommandSequence"
	case ChunkDeath:
		return "Death"
	case ChunkClimb:
		return "Climb"
	case ChunkMonkey:
		return "Monkey"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(t))
	}
}

// SequenceCondition says how a command sequence is triggered.
type SequenceCondition uint8

// Sequence conditions.
const (
	ConditionAlways     SequenceCondition = 0
	ConditionPad        SequenceCondition = 1
	ConditionSwitch     SequenceCondition = 2
	ConditionKey        SequenceCondition = 3
	ConditionPickup     SequenceCondition = 4
	ConditionHeavy      SequenceCondition = 5
	ConditionAntiPad    SequenceCondition = 6
	ConditionCombat     SequenceCondition = 7
	ConditionDummy      SequenceCondition = 8
	ConditionAntiSwitch SequenceCondition = 9
)

// String returns a readable condition name.
func (c SequenceCondition) String() string {
	switch c {
	case ConditionAlways:
		return "Always"
	case ConditionPad:
		return "Pad"
	case ConditionSwitch:
		return "Switch"
	case ConditionKey:
		return "Key"
	case ConditionPickup:
		return "Pickup"
	case ConditionHeavy:
		return "Heavy"
	case ConditionAntiPad:
		return "AntiPad"
	case ConditionCombat:
		return "Combat"
	case ConditionDummy:
		return "Dummy"
	case ConditionAntiSwitch:
		return "AntiSwitch"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(c))
	}
}

// CommandOpcode is the action a command performs.
type CommandOpcode uint8

// Command opcodes.
const (
	OpActivate          CommandOpcode = 0
	OpSwitchCamera      CommandOpcode = 1
	OpUnderwaterCurrent CommandOpcode = 2
	OpFlipMap           CommandOpcode = 3
	OpFlipOn            CommandOpcode = 4
	OpFlipOff           CommandOpcode = 5
	OpLookAt            CommandOpcode = 6
	OpEndLevel          CommandOpcode = 7
	OpPlayTrack         CommandOpcode = 8
	OpFlipEffect        CommandOpcode = 9
	OpSecret            CommandOpcode = 10
	OpClearBodies       CommandOpcode = 11
	OpFlyBy             CommandOpcode = 12
	OpCutscene          CommandOpcode = 13
)

var opcodeNames = [...]string{
	"Activate", "SwitchCamera", "UnderwaterCurrent", "FlipMap", "FlipOn", "FlipOff",
	"LookAt", "EndLevel", "PlayTrack", "FlipEffect", "Secret", "ClearBodies", "FlyBy", "Cutscene",
}

// String returns a readable opcode name.
func (o CommandOpcode) String() string {
	if int(o) < len(opcodeNames) {
		return opcodeNames[o]
	}
	return fmt.Sprintf("Unknown(%d)", uint8(o))
}

// ChunkHeader is the chunk view of a word.
//
//	bit 15     isLast
//	bits 8-13  sequence condition
//	bits 0-7   chunk type
type ChunkHeader struct {
	IsLast            bool
	SequenceCondition SequenceCondition
	Type              ChunkType
}

// NewChunkHeader decodes a chunk header. Every word decodes to something.
func NewChunkHeader(v Value) ChunkHeader {
	return ChunkHeader{
		IsLast:            core.TestBit(v, 15),
		SequenceCondition: SequenceCondition(core.ExtractBits(v, 8, 6)),
		Type:              ChunkType(core.ExtractBits(v, 0, 8)),
	}
}

// Command is the command view of a word inside a command sequence.
//
//	bit 15     isLast
//	bits 10-13 opcode
//	bits 0-9   parameter
type Command struct {
	IsLast    bool
	Opcode    CommandOpcode
	Parameter uint16
}

// ExtractOpcode returns bits 10-13 of v.
func ExtractOpcode(v Value) CommandOpcode {
	return CommandOpcode(core.ExtractBits(v, 10, 4))
}

// ExtractParameter returns bits 0-9 of v.
func ExtractParameter(v Value) uint16 {
	return uint16(core.ExtractBits(v, 0, 10))
}

// NewCommand decodes a command word.
func NewCommand(v Value) Command {
	return Command{
		IsLast:    core.TestBit(v, 15),
		Opcode:    ExtractOpcode(v),
		Parameter: ExtractParameter(v),
	}
}

// CameraParameters is the view of the word following a SwitchCamera command.
//
//	bit 15     isLast
//	bits 9-13  smoothness (kept pre-multiplied by 2)
//	bit 8      oneshot
//	bits 0-7   timeout in seconds
type CameraParameters struct {
	Timeout    uint8
	Oneshot    bool
	Smoothness uint8
	IsLast     bool
}

// NewCameraParameters decodes a camera parameter word.
func NewCameraParameters(v Value) CameraParameters {
	return CameraParameters{
		Timeout:    uint8(core.ExtractBits(v, 0, 8)),
		Oneshot:    core.TestBit(v, 8),
		Smoothness: uint8(core.ExtractBits(v, 8, 6) & 0x3E),
		IsLast:     core.TestBit(v, 15),
	}
}

// Slant is the pair of signed slope components of a slant chunk payload.
type Slant struct {
	X, Z int8
}

// NewSlant splits a slant payload: low byte X, high byte Z.
func NewSlant(v Value) Slant {
	return Slant{
		X: int8(uint8(v & 0xFF)),
		Z: int8(uint8(v >> 8)),
	}
}
