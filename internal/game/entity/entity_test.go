package entity

import (
	"testing"

	"github.com/Faultbox/tr1-engine/internal/engine/animation"
	"github.com/Faultbox/tr1-engine/pkg/core"
)

const testFrameWords = 12 // header plus one bone

func testModel(t *testing.T, speed core.Length) *animation.SkeletalModel {
	t.Helper()
	anim := &animation.Animation{
		FirstFrame:    0,
		LastFrame:     9,
		StretchFactor: 1,
		Speed:         core.Speed(int32(speed) << 16),
	}
	anim.NextAnimation = anim
	m, err := animation.NewModel(3, []animation.Bone{{}}, []*animation.Animation{anim}, anim, make([]int16, 10*testFrameWords))
	if err != nil {
		t.Fatalf("NewModel failed: %v", err)
	}
	return m
}

func TestTriggerActive(t *testing.T) {
	tests := []struct {
		name      string
		full      bool
		inverted  bool
		timer     core.Frame
		want      bool
		wantTimer core.Frame
	}{
		{"not activated", false, false, 0, false, 0},
		{"not activated inverted", false, true, 0, true, 0},
		{"no timer", true, false, 0, true, 0},
		{"no timer inverted", true, true, 0, false, 0},
		{"expired", true, false, -1, false, -1},
		{"running", true, false, 5, true, 4},
		{"last tick", true, false, 1, true, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s ObjectState
			if tt.full {
				s.Activation.FullyActivate()
			}
			s.Activation.SetInverted(tt.inverted)
			s.Timer = tt.timer
			if got := s.TriggerActive(); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
			if s.Timer != tt.wantTimer {
				t.Errorf("expected timer %d, got %d", tt.wantTimer, s.Timer)
			}
		})
	}
}

func TestAdvanceMovesForward(t *testing.T) {
	o := NewModelObject(1, testModel(t, 10), nil, core.TRVec{})
	o.Advance()
	if o.Position.Z != 10 || o.Position.X != 0 {
		t.Errorf("expected (0,_,10), got %+v", o.Position)
	}

	o.Rotation.Y = core.FromDegrees(90)
	o.Advance()
	if o.Position.X < 9 || o.Position.X > 10 {
		t.Errorf("expected X near 10 after turning, got %d", o.Position.X)
	}
}

func TestAdvanceFalling(t *testing.T) {
	o := NewModelObject(1, testModel(t, 0), nil, core.TRVec{})
	o.Falling = true
	o.Advance()
	if o.FallSpeed != Gravity || o.Position.Y != Gravity {
		t.Errorf("expected fall speed %d, got %d at y=%d", Gravity, o.FallSpeed, o.Position.Y)
	}

	o.FallSpeed = FastFallSpeed
	o.Advance()
	if o.FallSpeed != FastFallSpeed+1 {
		t.Errorf("expected fall speed %d, got %d", FastFallSpeed+1, o.FallSpeed)
	}
}

func TestHandleAnimCommand(t *testing.T) {
	o := NewModelObject(1, testModel(t, 0), nil, core.TRVec{X: 100})

	o.HandleAnimCommand(animation.AnimCommand{Type: animation.CmdSetPosition, Args: []int16{0, -5, 20}})
	if o.Position != (core.TRVec{X: 100, Y: -5, Z: 20}) {
		t.Errorf("unexpected position %+v", o.Position)
	}

	o.HandleAnimCommand(animation.AnimCommand{Type: animation.CmdStartFalling, Args: []int16{-20, 15}})
	if !o.Falling || o.FallSpeed != -20 || o.Speed != 15 {
		t.Errorf("expected falling at -20/15, got %v %d/%d", o.Falling, o.FallSpeed, o.Speed)
	}

	o.HandleAnimCommand(animation.AnimCommand{Type: animation.CmdEmptyHands})
	if !o.HandsEmpty {
		t.Error("expected empty hands")
	}

	o.HandleAnimCommand(animation.AnimCommand{Type: animation.CmdKill})
	if o.Status != StatusDeactivated {
		t.Errorf("expected deactivated, got %s", o.Status)
	}
	if !o.ObjectState.Activation.IsLocked() {
		t.Error("expected killed object marked locked")
	}
}

type recordingSink struct {
	sounds, effects []int
}

func (r *recordingSink) PlaySound(id int, _ *ObjectState)     { r.sounds = append(r.sounds, id) }
func (r *recordingSink) RunAnimEffect(id int, _ *ObjectState) { r.effects = append(r.effects, id) }

func TestEffectSink(t *testing.T) {
	o := NewModelObject(1, testModel(t, 0), nil, core.TRVec{})
	o.HandleAnimCommand(animation.AnimCommand{Type: animation.CmdPlaySound, Args: []int16{0, 12}})

	sink := &recordingSink{}
	o.SetEffectSink(sink)
	o.HandleAnimCommand(animation.AnimCommand{Type: animation.CmdPlaySound, Args: []int16{0, 7}})
	o.HandleAnimCommand(animation.AnimCommand{Type: animation.CmdPlayEffect, Args: []int16{0, 3}})
	if len(sink.sounds) != 1 || sink.sounds[0] != 7 {
		t.Errorf("expected sound 7, got %v", sink.sounds)
	}
	if len(sink.effects) != 1 || sink.effects[0] != 3 {
		t.Errorf("expected effect 3, got %v", sink.effects)
	}
}

func TestBlockPatches(t *testing.T) {
	o := NewModelObject(1, testModel(t, 0), nil, core.TRVec{X: 1536, Y: 0, Z: 1536})
	o.BlockHeight = 512

	if y := o.PatchFloor(core.TRVec{X: 1100, Y: -600, Z: 2000}, 0); y != -512 {
		t.Errorf("expected floor -512, got %d", y)
	}
	if y := o.PatchFloor(core.TRVec{X: 1100, Y: -100, Z: 2000}, 0); y != 0 {
		t.Errorf("expected floor unchanged inside the block, got %d", y)
	}
	if y := o.PatchFloor(core.TRVec{X: 3000, Y: -600, Z: 2000}, 0); y != 0 {
		t.Errorf("expected floor unchanged in another sector, got %d", y)
	}
	if y := o.PatchCeiling(core.TRVec{X: 1100, Y: 200, Z: 2000}, -1024); y != 0 {
		t.Errorf("expected ceiling 0 under the block, got %d", y)
	}

	edge := NewModelObject(2, testModel(t, 0), nil, core.TRVec{X: 1, Z: 512})
	edge.BlockHeight = 512
	if y := edge.PatchFloor(core.TRVec{X: -1, Y: -600, Z: 512}, 0); y != 0 {
		t.Errorf("expected floor unchanged across the zero line, got %d", y)
	}
	if y := edge.PatchFloor(core.TRVec{X: 1023, Y: -600, Z: 512}, 0); y != -512 {
		t.Errorf("expected floor -512 in the same sector, got %d", y)
	}

	o.BlockHeight = 0
	if y := o.PatchFloor(core.TRVec{X: 1100, Y: -600, Z: 2000}, 0); y != 0 {
		t.Errorf("expected no patch without height, got %d", y)
	}
}

func TestObjectInterface(t *testing.T) {
	o := NewModelObject(1, testModel(t, 0), nil, core.TRVec{})
	if o.IsActive() {
		t.Error("expected new object to be inactive")
	}
	o.Activate()
	if !o.IsActive() {
		t.Error("expected object to be active")
	}
	o.SetTriggerTimer(30)
	if o.Timer != 30 {
		t.Errorf("expected timer 30, got %d", o.Timer)
	}
	o.Activation().FullyActivate()
	if !o.ObjectState.Activation.IsFullyActivated() {
		t.Error("expected activation through the accessor")
	}
}

func TestManager(t *testing.T) {
	m := NewManager()
	model := testModel(t, 0)

	a := NewModelObject(5, model, nil, core.TRVec{})
	b := NewModelObject(2, model, nil, core.TRVec{})
	p := NewPlayer(9, model, nil, core.TRVec{})
	m.Add(a)
	m.SetPlayer(p)
	m.Add(b)

	if m.Count() != 3 {
		t.Fatalf("expected 3 objects, got %d", m.Count())
	}
	all := m.All()
	if all[0].ID != 5 || all[1].ID != 9 || all[2].ID != 2 {
		t.Errorf("expected insertion order 5,9,2, got %d,%d,%d", all[0].ID, all[1].ID, all[2].ID)
	}
	others := m.Others()
	if len(others) != 2 || others[0].ID != 5 || others[1].ID != 2 {
		t.Errorf("expected others 5,2, got %v", others)
	}
	if m.Get(9) != p.ModelObject {
		t.Error("expected player registered as an object")
	}

	replacement := NewModelObject(5, model, nil, core.TRVec{X: 1})
	m.Add(replacement)
	if m.Count() != 3 || m.All()[0] != replacement {
		t.Errorf("expected object 5 replaced in place, got %d objects", m.Count())
	}
}

func TestPlayer(t *testing.T) {
	p := NewPlayer(1, testModel(t, 0), nil, core.TRVec{})
	if !p.IsActive() {
		t.Error("expected player active")
	}
	if p.Dead() {
		t.Error("expected player alive")
	}
	p.Kill()
	if !p.Dead() {
		t.Error("expected player dead")
	}
}
