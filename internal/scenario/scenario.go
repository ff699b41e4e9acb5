// Package scenario loads synthetic levels described in yaml: rooms with
// their sectors and floor data, skeletal models with their animations, and
// the objects placed in the level.
package scenario

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/tr1-engine/pkg/core"
)

// Scenario is a complete synthetic level.
type Scenario struct {
	Name      string   `yaml:"name"`
	FloorData []uint16 `yaml:"floor_data"`
	Rooms     []Room   `yaml:"rooms"`
	Models    []Model  `yaml:"models"`
	Objects   []Object `yaml:"objects"`
	Player    *Object  `yaml:"player"`
}

// Vec is a position in world units.
type Vec struct {
	X int32 `yaml:"x"`
	Y int32 `yaml:"y"`
	Z int32 `yaml:"z"`
}

// TRVec converts v to engine space.
func (v Vec) TRVec() core.TRVec {
	return core.TRVec{X: core.Length(v.X), Y: core.Length(v.Y), Z: core.Length(v.Z)}
}

// Room is a room whose sectors default to a flat floor and ceiling.
type Room struct {
	Position      Vec      `yaml:"position"`
	SectorsX      int      `yaml:"sectors_x"`
	SectorsZ      int      `yaml:"sectors_z"`
	Floor         int8     `yaml:"floor"`   // quarter sectors
	Ceiling       int8     `yaml:"ceiling"` // quarter sectors
	Water         bool     `yaml:"water"`
	AlternateRoom *int     `yaml:"alternate_room"`
	Sectors       []Sector `yaml:"sectors"`
}

// Sector overrides one cell of a room.
type Sector struct {
	X         int    `yaml:"x"`
	Z         int    `yaml:"z"`
	Floor     *int8  `yaml:"floor"`
	Ceiling   *int8  `yaml:"ceiling"`
	FloorData uint16 `yaml:"floor_data"` // index into the floor data words
	RoomBelow *uint8 `yaml:"room_below"`
	RoomAbove *uint8 `yaml:"room_above"`
}

// Model is a skeletal model. Frame numbers inside it are local to their
// animation.
type Model struct {
	ObjectID         uint32      `yaml:"object_id"`
	Bones            []Bone      `yaml:"bones"`
	Animations       []Animation `yaml:"animations"`
	InitialAnimation int         `yaml:"initial_animation"`
}

// Bone links a bone to its parent; the first bone is the root and its
// link is ignored.
type Bone struct {
	Pop    bool `yaml:"pop"`
	Push   bool `yaml:"push"`
	Offset Vec  `yaml:"offset"`
}

// Animation is one animation of a model.
type Animation struct {
	State         uint16       `yaml:"state"`
	Frames        int          `yaml:"frames"`
	Stretch       uint8        `yaml:"stretch"`
	Speed         int32        `yaml:"speed"` // units per tick
	Accel         int32        `yaml:"accel"` // 16.16 per tick
	NextAnimation int          `yaml:"next_animation"`
	NextFrame     int          `yaml:"next_frame"`
	Transitions   []Transition `yaml:"transitions"`
	Commands      []Command    `yaml:"commands"`
	Keyframes     []Keyframe   `yaml:"keyframes"`
}

// Transition lists the cases leading to State.
type Transition struct {
	State uint16           `yaml:"state"`
	Cases []TransitionCase `yaml:"cases"`
}

// TransitionCase jumps to Target at TargetFrame while the frame lies in
// [FirstFrame, LastFrame].
type TransitionCase struct {
	FirstFrame  int `yaml:"first_frame"`
	LastFrame   int `yaml:"last_frame"`
	Target      int `yaml:"target"`
	TargetFrame int `yaml:"target_frame"`
}

// Command is an animation command.
type Command struct {
	Type      string `yaml:"type"`
	Frame     int    `yaml:"frame"`
	ID        int16  `yaml:"id"`
	Offset    Vec    `yaml:"offset"`
	FallSpeed int16  `yaml:"fall_speed"`
	Speed     int16  `yaml:"speed"`
}

// Keyframe is one pose. Missing keyframes are zero poses.
type Keyframe struct {
	BBoxMin   Vec        `yaml:"bbox_min"`
	BBoxMax   Vec        `yaml:"bbox_max"`
	Position  Vec        `yaml:"position"`
	Rotations []Rotation `yaml:"rotations"`
}

// Rotation is a bone rotation in degrees.
type Rotation struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

// YPRotation converts r to engine angles.
func (r Rotation) YPRotation() core.YPRotation {
	return core.YPRotation{X: core.FromDegrees(r.X), Y: core.FromDegrees(r.Y), Z: core.FromDegrees(r.Z)}
}

// Object places an object.
type Object struct {
	ID           uint16  `yaml:"id"`
	Model        uint32  `yaml:"model"` // object id of the model
	Room         int     `yaml:"room"`
	Position     Vec     `yaml:"position"`
	Yaw          float64 `yaml:"yaw"` // degrees
	Active       bool    `yaml:"active"`
	Heavy        bool    `yaml:"heavy"`
	BlockHeight  int32   `yaml:"block_height"`
	TargetState  *uint16 `yaml:"target_state"`
	Invisible    bool    `yaml:"invisible"`
	WeaponsReady bool    `yaml:"weapons_ready"`
	HandsBusy    bool    `yaml:"hands_busy"`
}

// Parse decodes a scenario.
func Parse(data []byte) (*Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing scenario: %w", err)
	}
	if len(s.Rooms) == 0 {
		return nil, fmt.Errorf("scenario %q has no rooms", s.Name)
	}
	return &s, nil
}

// LoadFile reads and decodes a scenario file.
func LoadFile(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}
