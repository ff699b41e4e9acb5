// Package animation plays keyframed skeletal animations: it locates the
// keyframes around the current time, blends them through the bone tree and
// resolves the state transitions between animations.
package animation

import (
	"fmt"

	"github.com/Faultbox/tr1-engine/pkg/core"
)

// frameHeaderWords is the bounding box (6), root position (3) and value
// count (1) preceding the bone rotations of a keyframe.
const frameHeaderWords = 10

// Animation is one animation of a skeletal model. Frame numbers are level
// global; FirstFrame of one animation usually continues the previous one.
type Animation struct {
	ID            int
	StateID       uint16
	FirstFrame    core.Frame
	LastFrame     core.Frame
	StretchFactor core.Frame // ticks per keyframe
	Speed         core.Speed
	Accel         core.Speed

	PoseDataOffset int // word offset of the first keyframe

	NextAnimation *Animation
	NextFrame     core.Frame // local to NextAnimation

	Transitions []Transition
	Commands    []AnimCommand
}

// FrameCount returns the number of ticks the animation spans.
func (a *Animation) FrameCount() core.Frame {
	return a.LastFrame - a.FirstFrame + 1
}

// Transition groups the cases that lead towards one target state.
type Transition struct {
	StateID uint16
	Cases   []TransitionCase
}

// TransitionCase jumps to Target while the current frame lies in
// [FirstFrame, LastFrame]. The range is level global, TargetFrame is local
// to Target.
type TransitionCase struct {
	FirstFrame  core.Frame
	LastFrame   core.Frame
	Target      *Animation
	TargetFrame core.Frame
}

// Contains reports whether frame lies in the case's range.
func (c TransitionCase) Contains(frame core.Frame) bool {
	return frame >= c.FirstFrame && frame <= c.LastFrame
}

// Bone describes how a bone attaches to the bone before it.
type Bone struct {
	Pop    bool // return to the transform saved on the stack
	Push   bool // save the current transform on the stack
	Offset core.TRVec
}

// SkeletalModel is a moveable with its bones and animations. Bones[0] is the
// root; its offset is unused.
type SkeletalModel struct {
	ObjectID   uint32
	Bones      []Bone
	Animations []*Animation // all animations of the level, indexed by ID
	Animation  *Animation   // the model's first animation
	PoseData   []int16
	stackDepth int
}

// BoneCount returns the number of bones.
func (m *SkeletalModel) BoneCount() int {
	return len(m.Bones)
}

// FrameStride returns the keyframe size in words.
func (m *SkeletalModel) FrameStride() int {
	return m.BoneCount()*2 + frameHeaderWords
}

// StackDepth returns the deepest transform stack the bone tree needs.
func (m *SkeletalModel) StackDepth() int {
	return m.stackDepth
}

// computeStackDepth walks the bone flags and rejects a pop without a
// matching push.
func (m *SkeletalModel) computeStackDepth() error {
	depth, deepest := 0, 0
	for i, b := range m.Bones {
		if i == 0 {
			continue
		}
		if b.Pop {
			if depth == 0 {
				return fmt.Errorf("bone %d pops an empty stack", i)
			}
			depth--
		}
		if b.Push {
			depth++
			deepest = max(deepest, depth)
		}
	}
	m.stackDepth = deepest
	return nil
}

// Frame returns the keyframe at word offset off.
func (m *SkeletalModel) Frame(off int) AnimFrame {
	stride := m.FrameStride()
	if off < 0 || off+stride > len(m.PoseData) {
		panic(fmt.Sprintf("animation: keyframe at word %d outside pose data of %d words", off, len(m.PoseData)))
	}
	return AnimFrame{words: m.PoseData[off : off+stride]}
}

// AnimFrame is a view of one packed keyframe.
type AnimFrame struct {
	words []int16
}

// BoundingBox returns the keyframe's bounding box corners.
func (f AnimFrame) BoundingBox() (minV, maxV core.TRVec) {
	w := f.words
	minV = core.TRVec{X: core.Length(w[0]), Y: core.Length(w[2]), Z: core.Length(w[4])}
	maxV = core.TRVec{X: core.Length(w[1]), Y: core.Length(w[3]), Z: core.Length(w[5])}
	return minV, maxV
}

// Pos returns the root translation.
func (f AnimFrame) Pos() core.TRVec {
	w := f.words
	return core.TRVec{X: core.Length(w[6]), Y: core.Length(w[7]), Z: core.Length(w[8])}
}

// Rotation decodes the packed rotation of a bone. The two words form a
// 32-bit value holding three 10-bit angles: X in bits 20-29, Y in bits 10-19
// and Z in bits 0-9, each in units of 1/1024 turn.
func (f AnimFrame) Rotation(bone int) core.YPRotation {
	hi := uint32(uint16(f.words[frameHeaderWords+bone*2]))
	lo := uint32(uint16(f.words[frameHeaderWords+bone*2+1]))
	r := hi<<16 | lo
	return core.YPRotation{
		X: core.Angle(core.ExtractBits(r, 20, 10)) << 6,
		Y: core.Angle(core.ExtractBits(r, 10, 10)) << 6,
		Z: core.Angle(core.ExtractBits(r, 0, 10)) << 6,
	}
}

// PackRotation is the inverse of AnimFrame.Rotation. Angles are truncated
// to 1/1024 turn.
func PackRotation(r core.YPRotation) (hi, lo int16) {
	x := uint32(r.X>>6) & 0x3FF
	y := uint32(r.Y>>6) & 0x3FF
	z := uint32(r.Z>>6) & 0x3FF
	v := x<<20 | y<<10 | z
	return int16(uint16(v >> 16)), int16(uint16(v))
}
