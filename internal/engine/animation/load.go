package animation

import (
	"fmt"

	"github.com/Faultbox/tr1-engine/pkg/core"
	"github.com/Faultbox/tr1-engine/pkg/loader"
)

// noAnimation marks a model without animations.
const noAnimation = 0xFFFF

// Library holds the animations and skeletal models of a level.
type Library struct {
	Animations []*Animation
	Models     map[uint32]*SkeletalModel
	PoseData   []int16
}

// Load resolves the raw animation records into linked animations and
// models. Transition and next-animation targets are converted to frames
// local to their target animation.
func Load(ad *loader.AnimationData) (*Library, error) {
	lib := &Library{
		Animations: make([]*Animation, len(ad.Animations)),
		Models:     make(map[uint32]*SkeletalModel, len(ad.Models)),
		PoseData:   ad.PoseData,
	}

	for i, rec := range ad.Animations {
		if rec.StretchFactor == 0 {
			return nil, fmt.Errorf("animation %d: zero stretch factor", i)
		}
		if rec.LastFrame < rec.FirstFrame {
			return nil, fmt.Errorf("animation %d: last frame %d before first frame %d", i, rec.LastFrame, rec.FirstFrame)
		}
		if rec.PoseDataOffset%2 != 0 {
			return nil, fmt.Errorf("animation %d: pose data offset %d not word aligned", i, rec.PoseDataOffset)
		}
		lib.Animations[i] = &Animation{
			ID:             i,
			StateID:        rec.StateID,
			FirstFrame:     core.Frame(rec.FirstFrame),
			LastFrame:      core.Frame(rec.LastFrame),
			StretchFactor:  core.Frame(rec.StretchFactor),
			Speed:          core.SpeedFromFixed(rec.Speed),
			Accel:          core.SpeedFromFixed(rec.Accel),
			PoseDataOffset: int(rec.PoseDataOffset / 2),
		}
	}

	for i, rec := range ad.Animations {
		anim := lib.Animations[i]

		next, err := lib.animation(int(rec.NextAnimation))
		if err != nil {
			return nil, fmt.Errorf("animation %d: next: %w", i, err)
		}
		anim.NextAnimation = next
		if anim.NextFrame, err = localFrame(next, rec.NextFrame); err != nil {
			return nil, fmt.Errorf("animation %d: next: %w", i, err)
		}

		for t := range int(rec.TransitionsCount) {
			idx := int(rec.TransitionsIndex) + t
			if idx >= len(ad.Transitions) {
				return nil, fmt.Errorf("animation %d: transition %d out of range", i, idx)
			}
			tr, err := lib.transition(ad, ad.Transitions[idx])
			if err != nil {
				return nil, fmt.Errorf("animation %d: %w", i, err)
			}
			anim.Transitions = append(anim.Transitions, tr)
		}

		if anim.Commands, err = parseAnimCommands(ad.AnimCommands, int(rec.AnimCommandIndex), int(rec.AnimCommandCount)); err != nil {
			return nil, fmt.Errorf("animation %d: %w", i, err)
		}
	}

	for _, rec := range ad.Models {
		m, err := lib.model(ad, rec)
		if err != nil {
			return nil, fmt.Errorf("model %d: %w", rec.ObjectID, err)
		}
		lib.Models[rec.ObjectID] = m
	}

	return lib, nil
}

func (lib *Library) animation(idx int) (*Animation, error) {
	if idx < 0 || idx >= len(lib.Animations) {
		return nil, fmt.Errorf("animation %d out of range", idx)
	}
	return lib.Animations[idx], nil
}

func localFrame(anim *Animation, global uint16) (core.Frame, error) {
	f := core.Frame(global) - anim.FirstFrame
	if f < 0 || f >= anim.FrameCount() {
		return 0, fmt.Errorf("frame %d outside animation %d [%d, %d]", global, anim.ID, anim.FirstFrame, anim.LastFrame)
	}
	return f, nil
}

func (lib *Library) transition(ad *loader.AnimationData, rec loader.TransitionRecord) (Transition, error) {
	tr := Transition{StateID: rec.StateID}
	for c := range int(rec.CaseCount) {
		idx := int(rec.FirstCase) + c
		if idx >= len(ad.TransitionCases) {
			return tr, fmt.Errorf("transition case %d out of range", idx)
		}
		cr := ad.TransitionCases[idx]
		target, err := lib.animation(int(cr.TargetAnim))
		if err != nil {
			return tr, fmt.Errorf("transition case %d: %w", idx, err)
		}
		tf, err := localFrame(target, cr.TargetFrame)
		if err != nil {
			return tr, fmt.Errorf("transition case %d: %w", idx, err)
		}
		tr.Cases = append(tr.Cases, TransitionCase{
			FirstFrame:  core.Frame(cr.FirstFrame),
			LastFrame:   core.Frame(cr.LastFrame),
			Target:      target,
			TargetFrame: tf,
		})
	}
	return tr, nil
}

func (lib *Library) model(ad *loader.AnimationData, rec loader.ModelRecord) (*SkeletalModel, error) {
	if rec.MeshCount == 0 {
		return nil, fmt.Errorf("no meshes")
	}
	m := &SkeletalModel{
		ObjectID:   rec.ObjectID,
		Bones:      make([]Bone, rec.MeshCount),
		Animations: lib.Animations,
		PoseData:   lib.PoseData,
	}

	first := int(rec.BoneTreeIndex / 4)
	for i := 1; i < len(m.Bones); i++ {
		idx := first + i - 1
		if idx >= len(ad.BoneTree) {
			return nil, fmt.Errorf("bone tree entry %d out of range", idx)
		}
		bt := ad.BoneTree[idx]
		m.Bones[i] = Bone{
			Pop:    bt.Flags&0x01 != 0,
			Push:   bt.Flags&0x02 != 0,
			Offset: core.TRVec{X: core.Length(bt.X), Y: core.Length(bt.Y), Z: core.Length(bt.Z)},
		}
	}
	if err := m.computeStackDepth(); err != nil {
		return nil, err
	}

	if rec.AnimationIndex != noAnimation {
		anim, err := lib.animation(int(rec.AnimationIndex))
		if err != nil {
			return nil, err
		}
		m.Animation = anim
	}
	return m, nil
}

// NewModel builds a model from already linked data; used for synthetic
// levels.
func NewModel(objectID uint32, bones []Bone, anims []*Animation, first *Animation, poseData []int16) (*SkeletalModel, error) {
	m := &SkeletalModel{
		ObjectID:   objectID,
		Bones:      bones,
		Animations: anims,
		Animation:  first,
		PoseData:   poseData,
	}
	if len(bones) == 0 {
		return nil, fmt.Errorf("model %d: no bones", objectID)
	}
	if err := m.computeStackDepth(); err != nil {
		return nil, fmt.Errorf("model %d: %w", objectID, err)
	}
	return m, nil
}
