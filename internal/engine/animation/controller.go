package animation

import (
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/tr1-engine/pkg/core"
	trmath "github.com/Faultbox/tr1-engine/pkg/math"
)

// PoseTarget receives one model-space transform per bone.
type PoseTarget interface {
	ChildCount() int
	SetChildTransform(i int, m mgl32.Mat4)
}

// InterpolationInfo describes the two keyframes around the current time.
// Bias is Numerator/Denominator; 0 selects First, 1 selects Second.
type InterpolationInfo struct {
	First       AnimFrame
	Second      AnimFrame
	Numerator   int
	Denominator int
}

// Bias returns the blend factor in [0, 1].
func (ii InterpolationInfo) Bias() float32 {
	return float32(ii.Numerator) / float32(ii.Denominator)
}

// Controller plays the animations of one object.
type Controller struct {
	model       *SkeletalModel
	target      PoseTarget
	anim        *Animation
	time        time.Duration
	targetState uint16

	patches []mgl32.Mat4
	stack1  []mgl32.Mat4
	stack2  []mgl32.Mat4
	handler AnimCommandHandler
}

// NewController starts the model's first animation at its first frame.
// target may be nil for objects that are simulated but never posed.
func NewController(model *SkeletalModel, target PoseTarget) *Controller {
	if model.Animation == nil {
		panic(fmt.Sprintf("animation: model %d has no animation", model.ObjectID))
	}
	c := &Controller{
		model:  model,
		target: target,
		stack1: make([]mgl32.Mat4, 0, model.StackDepth()+1),
		stack2: make([]mgl32.Mat4, 0, model.StackDepth()+1),
	}
	c.PlayLocal(model.Animation, 0)
	c.targetState = model.Animation.StateID
	return c
}

// SetCommandHandler installs the receiver of animation commands.
func (c *Controller) SetCommandHandler(h AnimCommandHandler) {
	c.handler = h
}

// Model returns the animated model.
func (c *Controller) Model() *SkeletalModel {
	return c.model
}

// Animation returns the current animation.
func (c *Controller) Animation() *Animation {
	return c.anim
}

// CurrentFrame returns the level-global frame number.
func (c *Controller) CurrentFrame() core.Frame {
	return core.FrameFromDuration(c.time)
}

// LocalFrame returns the frame relative to the animation's first frame.
func (c *Controller) LocalFrame() core.Frame {
	return c.CurrentFrame() - c.anim.FirstFrame
}

// CurrentState returns the state id of the current animation.
func (c *Controller) CurrentState() uint16 {
	return c.anim.StateID
}

// TargetState returns the state the controller is heading for.
func (c *Controller) TargetState() uint16 {
	return c.targetState
}

// SetTargetState requests a state; the next transition check acts on it.
func (c *Controller) SetTargetState(state uint16) {
	c.targetState = state
}

// PlayGlobal switches to anim at a level-global frame.
func (c *Controller) PlayGlobal(anim *Animation, frame core.Frame) {
	if frame < anim.FirstFrame || frame > anim.LastFrame {
		panic(fmt.Sprintf("animation: frame %d outside animation %d [%d, %d]", frame, anim.ID, anim.FirstFrame, anim.LastFrame))
	}
	c.anim = anim
	c.time = frame.Duration()
}

// PlayLocal switches to anim at a frame relative to its first frame.
func (c *Controller) PlayLocal(anim *Animation, frame core.Frame) {
	c.PlayGlobal(anim, anim.FirstFrame+frame)
}

// AdvanceFrame moves one tick forward. Past the last frame the animation
// ends and its successor starts; transitions are checked afterwards in
// either case. Frame commands fire last, for the frame the controller
// lands on. It reports whether the animation ended.
func (c *Controller) AdvanceFrame() bool {
	c.time += core.TickDuration

	ended := false
	if c.CurrentFrame() > c.anim.LastFrame {
		c.HandleAnimationEnd()
		ended = true
	}
	c.HandleTRTransitions()
	c.fireFrameCommands()
	return ended
}

// HandleTRTransitions jumps along the first transition case that leads to
// the target state and covers the current frame. Cases are tried in
// declaration order.
func (c *Controller) HandleTRTransitions() bool {
	if c.anim.StateID == c.targetState {
		return false
	}

	frame := c.CurrentFrame()
	for _, tr := range c.anim.Transitions {
		if tr.StateID != c.targetState {
			continue
		}
		for _, tc := range tr.Cases {
			if tc.Contains(frame) {
				c.PlayLocal(tc.Target, tc.TargetFrame)
				return true
			}
		}
	}
	return false
}

// HandleAnimationEnd runs the end commands of the current animation, then
// plays its successor and adopts the successor's state as target.
func (c *Controller) HandleAnimationEnd() {
	ended := c.anim
	if c.handler != nil {
		for _, cmd := range ended.Commands {
			if _, ok := cmd.AtFrame(); !ok {
				c.handler.HandleAnimCommand(cmd)
			}
		}
	}
	c.PlayLocal(ended.NextAnimation, ended.NextFrame)
	c.targetState = c.anim.StateID
}

func (c *Controller) fireFrameCommands() {
	if c.handler == nil {
		return
	}
	frame := c.CurrentFrame()
	for _, cmd := range c.anim.Commands {
		if f, ok := cmd.AtFrame(); ok && f == frame {
			c.handler.HandleAnimCommand(cmd)
		}
	}
}

// GetInterpolationInfo locates the keyframes around the current time.
// Near the end of an animation the last keyframe pair can be shorter than
// the stretch factor; the denominator shrinks so the bias never exceeds 1.
func (c *Controller) GetInterpolationInfo() InterpolationInfo {
	local := c.LocalFrame()
	if local < 0 {
		panic(fmt.Sprintf("animation: negative local frame %d in animation %d", local, c.anim.ID))
	}

	stretch := c.anim.StretchFactor
	realFrame := local / stretch
	offset := local % stretch
	stride := c.model.FrameStride()

	first := c.model.Frame(c.anim.PoseDataOffset + stride*int(realFrame))
	if offset == 0 {
		return InterpolationInfo{First: first, Second: first, Numerator: 0, Denominator: int(stretch)}
	}

	lastLocal := c.anim.LastFrame - c.anim.FirstFrame
	if (realFrame+1)*stretch > lastLocal {
		stretch = lastLocal - realFrame*stretch
	}

	return InterpolationInfo{
		First:       first,
		Second:      c.model.Frame(c.anim.PoseDataOffset + stride*int(realFrame+1)),
		Numerator:   int(offset),
		Denominator: int(stretch),
	}
}

// ResetPose clears every rotation patch.
func (c *Controller) ResetPose() {
	c.patches = c.patches[:0]
	for range c.model.BoneCount() {
		c.patches = append(c.patches, mgl32.Ident4())
	}
}

// RotateBone sets a procedural rotation applied on top of a bone's
// animated rotation; children of the bone inherit it.
func (c *Controller) RotateBone(bone int, r core.YPRotation) {
	if len(c.patches) == 0 {
		c.ResetPose()
	}
	c.patches[bone] = trmath.RotateYXZ(r)
}

// UpdatePose blends the current keyframes through the bone tree and hands
// each bone's model-space transform to the pose target.
func (c *Controller) UpdatePose() {
	if c.target == nil {
		return
	}
	if len(c.patches) == 0 {
		c.ResetPose()
	}
	boneCount := c.model.BoneCount()
	if len(c.patches) != boneCount {
		panic(fmt.Sprintf("animation: %d rotation patches for %d bones", len(c.patches), boneCount))
	}
	if c.target.ChildCount() != boneCount {
		panic(fmt.Sprintf("animation: pose target has %d nodes for %d bones", c.target.ChildCount(), boneCount))
	}

	ii := c.GetInterpolationInfo()
	bias := ii.Bias()

	c.stack1 = c.stack1[:0]
	c.stack2 = c.stack2[:0]
	top1 := trmath.Translate(ii.First.Pos()).Mul4(trmath.RotateYXZ(ii.First.Rotation(0))).Mul4(c.patches[0])
	top2 := trmath.Translate(ii.Second.Pos()).Mul4(trmath.RotateYXZ(ii.Second.Rotation(0))).Mul4(c.patches[0])
	c.target.SetChildTransform(0, trmath.Mix(top1, top2, bias))

	for i := 1; i < boneCount; i++ {
		bone := c.model.Bones[i]
		if bone.Pop {
			n := len(c.stack1) - 1
			top1, top2 = c.stack1[n], c.stack2[n]
			c.stack1, c.stack2 = c.stack1[:n], c.stack2[:n]
		}
		if bone.Push {
			c.stack1 = append(c.stack1, top1)
			c.stack2 = append(c.stack2, top2)
		}

		offset := trmath.Translate(bone.Offset)
		top1 = top1.Mul4(offset).Mul4(trmath.RotateYXZ(ii.First.Rotation(i))).Mul4(c.patches[i])
		top2 = top2.Mul4(offset).Mul4(trmath.RotateYXZ(ii.Second.Rotation(i))).Mul4(c.patches[i])
		c.target.SetChildTransform(i, trmath.Mix(top1, top2, bias))
	}
}

// BoundingBox interpolates the keyframe bounding boxes.
func (c *Controller) BoundingBox() (minV, maxV core.TRVec) {
	ii := c.GetInterpolationInfo()
	min1, max1 := ii.First.BoundingBox()
	min2, max2 := ii.Second.BoundingBox()
	return lerpVec(min1, min2, ii), lerpVec(max1, max2, ii)
}

func lerpVec(a, b core.TRVec, ii InterpolationInfo) core.TRVec {
	lerp := func(x, y core.Length) core.Length {
		return x + (y-x)*core.Length(ii.Numerator)/core.Length(ii.Denominator)
	}
	return core.TRVec{X: lerp(a.X, b.X), Y: lerp(a.Y, b.Y), Z: lerp(a.Z, b.Z)}
}

// FloorSpeed returns the horizontal speed of the current frame, truncated
// to whole units per tick.
func (c *Controller) FloorSpeed() core.Length {
	s := c.anim.Speed + c.anim.Accel*core.Speed(c.LocalFrame())
	return s.Units()
}
