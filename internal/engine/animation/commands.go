package animation

import (
	"fmt"

	"github.com/Faultbox/tr1-engine/pkg/core"
)

// AnimCommandType identifies an animation command.
type AnimCommandType uint16

const (
	CmdSetPosition  AnimCommandType = 1 // x, y, z
	CmdStartFalling AnimCommandType = 2 // vertical, horizontal speed
	CmdEmptyHands   AnimCommandType = 3
	CmdKill         AnimCommandType = 4
	CmdPlaySound    AnimCommandType = 5 // frame, sound id
	CmdPlayEffect   AnimCommandType = 6 // frame, effect id
)

var animCommandArgs = map[AnimCommandType]int{
	CmdSetPosition:  3,
	CmdStartFalling: 2,
	CmdEmptyHands:   0,
	CmdKill:         0,
	CmdPlaySound:    2,
	CmdPlayEffect:   2,
}

func (t AnimCommandType) String() string {
	switch t {
	case CmdSetPosition:
		return "SetPosition"
	case CmdStartFalling:
		return "StartFalling"
	case CmdEmptyHands:
		return "EmptyHands"
	case CmdKill:
		return "Kill"
	case CmdPlaySound:
		return "PlaySound"
	case CmdPlayEffect:
		return "PlayEffect"
	default:
		return fmt.Sprintf("AnimCommand(%d)", uint16(t))
	}
}

// AnimCommand is one decoded animation command.
type AnimCommand struct {
	Type AnimCommandType
	Args []int16
}

// AtFrame reports whether the command fires on a specific frame, and which.
// The frame is level global.
func (c AnimCommand) AtFrame() (core.Frame, bool) {
	if c.Type != CmdPlaySound && c.Type != CmdPlayEffect {
		return 0, false
	}
	return core.Frame(c.Args[0]), true
}

// ID returns the sound or effect id of a frame command.
func (c AnimCommand) ID() int {
	if _, ok := c.AtFrame(); !ok {
		panic(fmt.Sprintf("animation: %s has no id", c.Type))
	}
	return int(c.Args[1])
}

// Offset returns the position argument of a SetPosition command.
func (c AnimCommand) Offset() core.TRVec {
	if c.Type != CmdSetPosition {
		panic(fmt.Sprintf("animation: %s has no offset", c.Type))
	}
	return core.TRVec{X: core.Length(c.Args[0]), Y: core.Length(c.Args[1]), Z: core.Length(c.Args[2])}
}

// AnimCommandHandler receives the commands of the animation an object plays.
type AnimCommandHandler interface {
	HandleAnimCommand(cmd AnimCommand)
}

// parseAnimCommands decodes count commands starting at word start.
func parseAnimCommands(words []int16, start, count int) ([]AnimCommand, error) {
	var out []AnimCommand
	pos := start
	for range count {
		if pos >= len(words) {
			return nil, fmt.Errorf("anim command at word %d past end of %d words", pos, len(words))
		}
		t := AnimCommandType(words[pos])
		n, ok := animCommandArgs[t]
		if !ok {
			return nil, fmt.Errorf("unknown anim command %d at word %d", words[pos], pos)
		}
		pos++
		if pos+n > len(words) {
			return nil, fmt.Errorf("%s at word %d truncated", t, pos-1)
		}
		out = append(out, AnimCommand{Type: t, Args: words[pos : pos+n]})
		pos += n
	}
	return out, nil
}
