package scenario

import (
	"fmt"

	"github.com/Faultbox/tr1-engine/internal/engine/animation"
	"github.com/Faultbox/tr1-engine/internal/engine/level"
	"github.com/Faultbox/tr1-engine/internal/game/entity"
	"github.com/Faultbox/tr1-engine/internal/game/world"
	"github.com/Faultbox/tr1-engine/pkg/core"
	"github.com/Faultbox/tr1-engine/pkg/floordata"
	"github.com/Faultbox/tr1-engine/pkg/loader"
)

const noAnimation = 0xFFFF

var commandTypes = map[string]animation.AnimCommandType{
	"set_position":  animation.CmdSetPosition,
	"start_falling": animation.CmdStartFalling,
	"empty_hands":   animation.CmdEmptyHands,
	"kill":          animation.CmdKill,
	"play_sound":    animation.CmdPlaySound,
	"play_effect":   animation.CmdPlayEffect,
}

// Level builds the runtime level.
func (s *Scenario) Level() (*level.Level, error) {
	fd := floordata.FloorData{0}
	if len(s.FloorData) > 0 {
		fd = make(floordata.FloorData, len(s.FloorData))
		for i, w := range s.FloorData {
			fd[i] = floordata.Value(w)
		}
	}

	rooms := make([]level.RoomData, len(s.Rooms))
	for i, r := range s.Rooms {
		if r.SectorsX <= 0 || r.SectorsZ <= 0 {
			return nil, fmt.Errorf("room %d: invalid size %dx%d", i, r.SectorsX, r.SectorsZ)
		}
		recs := make([]loader.SectorRecord, r.SectorsX*r.SectorsZ)
		for j := range recs {
			recs[j] = loader.SectorRecord{
				BoxIndex:  level.NoBox,
				RoomBelow: loader.NoRoom,
				RoomAbove: loader.NoRoom,
				Floor:     r.Floor,
				Ceiling:   r.Ceiling,
			}
		}
		for _, sec := range r.Sectors {
			if sec.X < 0 || sec.X >= r.SectorsX || sec.Z < 0 || sec.Z >= r.SectorsZ {
				return nil, fmt.Errorf("room %d: sector (%d,%d) outside the room", i, sec.X, sec.Z)
			}
			rec := &recs[sec.X*r.SectorsZ+sec.Z]
			rec.FloorDataIndex = sec.FloorData
			if sec.Floor != nil {
				rec.Floor = *sec.Floor
			}
			if sec.Ceiling != nil {
				rec.Ceiling = *sec.Ceiling
			}
			if sec.RoomBelow != nil {
				rec.RoomBelow = *sec.RoomBelow
			}
			if sec.RoomAbove != nil {
				rec.RoomAbove = *sec.RoomAbove
			}
		}

		alt := -1
		if r.AlternateRoom != nil {
			alt = *r.AlternateRoom
		}
		rooms[i] = level.RoomData{
			Position:      r.Position.TRVec(),
			SectorCountX:  r.SectorsX,
			SectorCountZ:  r.SectorsZ,
			Sectors:       recs,
			AlternateRoom: alt,
			Water:         r.Water,
		}
	}
	return level.New(fd, rooms)
}

// AnimationData flattens the models into raw level records. Animation
// frames are numbered level-wide in model order.
func (s *Scenario) AnimationData() (*loader.AnimationData, error) {
	ad := &loader.AnimationData{}
	var nextFrame int

	for _, m := range s.Models {
		if len(m.Bones) == 0 {
			return nil, fmt.Errorf("model %d: no bones", m.ObjectID)
		}
		base := len(ad.Animations)
		stride := len(m.Bones)*2 + 10

		firstFrames := make([]int, len(m.Animations))
		for ai, a := range m.Animations {
			if a.Frames <= 0 {
				return nil, fmt.Errorf("model %d animation %d: no frames", m.ObjectID, ai)
			}
			firstFrames[ai] = nextFrame
			nextFrame += a.Frames
		}
		global := func(anim, frame int) (uint16, error) {
			if anim < 0 || anim >= len(m.Animations) {
				return 0, fmt.Errorf("animation %d out of range", anim)
			}
			return uint16(firstFrames[anim] + frame), nil
		}

		for ai, a := range m.Animations {
			stretch := a.Stretch
			if stretch == 0 {
				stretch = 1
			}
			first := firstFrames[ai]
			rec := loader.AnimationRecord{
				PoseDataOffset: uint32(len(ad.PoseData) * 2),
				StretchFactor:  stretch,
				PoseDataSize:   uint8(stride),
				StateID:        a.State,
				Speed:          a.Speed << 16,
				Accel:          a.Accel,
				FirstFrame:     uint16(first),
				LastFrame:      uint16(first + a.Frames - 1),
				NextAnimation:  uint16(base + a.NextAnimation),
			}
			var err error
			if rec.NextFrame, err = global(a.NextAnimation, a.NextFrame); err != nil {
				return nil, fmt.Errorf("model %d animation %d: next: %w", m.ObjectID, ai, err)
			}

			rec.TransitionsIndex = uint16(len(ad.Transitions))
			for _, tr := range a.Transitions {
				ad.Transitions = append(ad.Transitions, loader.TransitionRecord{
					StateID:   tr.State,
					CaseCount: uint16(len(tr.Cases)),
					FirstCase: uint16(len(ad.TransitionCases)),
				})
				for _, tc := range tr.Cases {
					target, err := global(tc.Target, tc.TargetFrame)
					if err != nil {
						return nil, fmt.Errorf("model %d animation %d: transition: %w", m.ObjectID, ai, err)
					}
					ad.TransitionCases = append(ad.TransitionCases, loader.TransitionCaseRecord{
						FirstFrame:  uint16(first + tc.FirstFrame),
						LastFrame:   uint16(first + tc.LastFrame),
						TargetAnim:  uint16(base + tc.Target),
						TargetFrame: target,
					})
				}
			}
			rec.TransitionsCount = uint16(len(a.Transitions))

			rec.AnimCommandIndex = uint16(len(ad.AnimCommands))
			for _, c := range a.Commands {
				words, err := encodeCommand(c, first)
				if err != nil {
					return nil, fmt.Errorf("model %d animation %d: %w", m.ObjectID, ai, err)
				}
				ad.AnimCommands = append(ad.AnimCommands, words...)
			}
			rec.AnimCommandCount = uint16(len(a.Commands))

			keyframes := (a.Frames-1)/int(stretch) + 2
			for k := range keyframes {
				var kf Keyframe
				if k < len(a.Keyframes) {
					kf = a.Keyframes[k]
				}
				ad.PoseData = append(ad.PoseData, encodeKeyframe(kf, len(m.Bones))...)
			}

			ad.Animations = append(ad.Animations, rec)
		}

		mrec := loader.ModelRecord{
			ObjectID:       m.ObjectID,
			MeshCount:      uint16(len(m.Bones)),
			BoneTreeIndex:  uint32(len(ad.BoneTree) * 4),
			AnimationIndex: noAnimation,
		}
		if len(m.Animations) > 0 {
			if m.InitialAnimation < 0 || m.InitialAnimation >= len(m.Animations) {
				return nil, fmt.Errorf("model %d: initial animation %d out of range", m.ObjectID, m.InitialAnimation)
			}
			mrec.AnimationIndex = uint16(base + m.InitialAnimation)
		}
		for _, b := range m.Bones[1:] {
			var flags uint32
			if b.Pop {
				flags |= 0x01
			}
			if b.Push {
				flags |= 0x02
			}
			ad.BoneTree = append(ad.BoneTree, loader.BoneTreeRecord{Flags: flags, X: b.Offset.X, Y: b.Offset.Y, Z: b.Offset.Z})
		}
		ad.Models = append(ad.Models, mrec)
	}
	return ad, nil
}

func encodeCommand(c Command, firstFrame int) ([]int16, error) {
	t, ok := commandTypes[c.Type]
	if !ok {
		return nil, fmt.Errorf("unknown animation command %q", c.Type)
	}
	words := []int16{int16(t)}
	switch t {
	case animation.CmdSetPosition:
		words = append(words, int16(c.Offset.X), int16(c.Offset.Y), int16(c.Offset.Z))
	case animation.CmdStartFalling:
		words = append(words, c.FallSpeed, c.Speed)
	case animation.CmdPlaySound, animation.CmdPlayEffect:
		words = append(words, int16(firstFrame+c.Frame), c.ID)
	}
	return words, nil
}

func encodeKeyframe(kf Keyframe, bones int) []int16 {
	words := []int16{
		int16(kf.BBoxMin.X), int16(kf.BBoxMax.X),
		int16(kf.BBoxMin.Y), int16(kf.BBoxMax.Y),
		int16(kf.BBoxMin.Z), int16(kf.BBoxMax.Z),
		int16(kf.Position.X), int16(kf.Position.Y), int16(kf.Position.Z),
		int16(bones),
	}
	for b := range bones {
		var r core.YPRotation
		if b < len(kf.Rotations) {
			r = kf.Rotations[b].YPRotation()
		}
		hi, lo := animation.PackRotation(r)
		words = append(words, hi, lo)
	}
	return words
}

// Build creates the world with every object placed.
func (s *Scenario) Build(opts world.Options) (*world.World, error) {
	lvl, err := s.Level()
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
	}
	ad, err := s.AnimationData()
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
	}
	lib, err := animation.Load(ad)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
	}

	w := world.New(lvl, opts)
	for _, o := range s.Objects {
		obj, err := placeObject(lvl, lib, o)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: object %d: %w", s.Name, o.ID, err)
		}
		w.AddObject(obj)
	}
	if s.Player != nil {
		obj, err := placeObject(lvl, lib, *s.Player)
		if err != nil {
			return nil, fmt.Errorf("scenario %s: player: %w", s.Name, err)
		}
		p := &entity.Player{
			ModelObject:  obj,
			WeaponsReady: s.Player.WeaponsReady,
			HandsBusy:    s.Player.HandsBusy,
		}
		p.Status = entity.StatusActive
		w.SetPlayer(p)
	}
	return w, nil
}

func placeObject(lvl *level.Level, lib *animation.Library, o Object) (*entity.ModelObject, error) {
	model, ok := lib.Models[o.Model]
	if !ok {
		return nil, fmt.Errorf("unknown model %d", o.Model)
	}
	if model.Animation == nil {
		return nil, fmt.Errorf("model %d has no animation", o.Model)
	}
	room := lvl.Room(o.Room)
	if room == nil {
		return nil, fmt.Errorf("unknown room %d", o.Room)
	}

	obj := entity.NewModelObject(o.ID, model, room, o.Position.TRVec())
	obj.Rotation.Y = core.FromDegrees(o.Yaw)
	obj.Heavy = o.Heavy
	obj.BlockHeight = core.Length(o.BlockHeight)
	if o.TargetState != nil {
		obj.Anim.SetTargetState(*o.TargetState)
	}
	switch {
	case o.Invisible:
		obj.Status = entity.StatusInvisible
	case o.Active:
		obj.Activation().FullyActivate()
		obj.Activate()
	}
	return obj, nil
}
