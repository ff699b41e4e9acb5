// Package loader parses the raw record arrays of a TR1 level that the
// animation and floor data core consumes.
package loader

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"

	"github.com/Faultbox/tr1-engine/pkg/floordata"
)

// Loader errors.
var (
	ErrTruncatedData  = errors.New("truncated level data")
	ErrMisalignedData = errors.New("record array size is not a multiple of the record size")
	ErrTooManyRecords = errors.New("record count exceeds sanity limit")
)

// maxRecords guards against reading garbage counts.
const maxRecords = 1 << 22

// parseRecords decodes a packed little-endian array of fixed-size records.
func parseRecords[T any](data []byte, name string) ([]T, error) {
	var zero T
	size := binary.Size(zero)
	if len(data)%size != 0 {
		return nil, errors.Wrapf(ErrMisalignedData, "%s: %d bytes, record size %d", name, len(data), size)
	}

	out := make([]T, len(data)/size)
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, out); err != nil {
		return nil, errors.Wrapf(err, "reading %s", name)
	}
	return out, nil
}

// readCounted reads a uint32 count followed by that many records.
func readCounted[T any](r io.Reader, name string) ([]T, error) {
	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, errors.Wrapf(ErrTruncatedData, "reading %s count", name)
	}
	if count > maxRecords {
		return nil, errors.Wrapf(ErrTooManyRecords, "%s: %d", name, count)
	}

	out := make([]T, count)
	if err := binary.Read(r, binary.LittleEndian, out); err != nil {
		return nil, errors.Wrapf(ErrTruncatedData, "reading %d %s", count, name)
	}
	return out, nil
}

// ParseFloorData decodes the level floor data array.
func ParseFloorData(data []byte) (floordata.FloorData, error) {
	words, err := parseRecords[uint16](data, "floor data")
	if err != nil {
		return nil, err
	}
	fd := make(floordata.FloorData, len(words))
	for i, w := range words {
		fd[i] = floordata.Value(w)
	}
	return fd, nil
}

// ParsePoseData decodes the packed keyframe array.
func ParsePoseData(data []byte) ([]int16, error) {
	return parseRecords[int16](data, "pose data")
}

// ParseAnimCommands decodes the animation command stream.
func ParseAnimCommands(data []byte) ([]int16, error) {
	return parseRecords[int16](data, "anim commands")
}

// ParseAnimations decodes animation records.
func ParseAnimations(data []byte) ([]AnimationRecord, error) {
	return parseRecords[AnimationRecord](data, "animations")
}

// ParseTransitions decodes state change records.
func ParseTransitions(data []byte) ([]TransitionRecord, error) {
	return parseRecords[TransitionRecord](data, "transitions")
}

// ParseTransitionCases decodes anim dispatch records.
func ParseTransitionCases(data []byte) ([]TransitionCaseRecord, error) {
	return parseRecords[TransitionCaseRecord](data, "transition cases")
}

// ParseBoneTree decodes bone tree entries.
func ParseBoneTree(data []byte) ([]BoneTreeRecord, error) {
	return parseRecords[BoneTreeRecord](data, "bone tree")
}

// ParseSectors decodes room sector records.
func ParseSectors(data []byte) ([]SectorRecord, error) {
	return parseRecords[SectorRecord](data, "sectors")
}

// ParseModels decodes moveable (skeletal model) headers.
func ParseModels(data []byte) ([]ModelRecord, error) {
	return parseRecords[ModelRecord](data, "models")
}

// AnimationData holds every animation related array of a level.
type AnimationData struct {
	Animations      []AnimationRecord
	Transitions     []TransitionRecord
	TransitionCases []TransitionCaseRecord
	AnimCommands    []int16
	BoneTree        []BoneTreeRecord
	PoseData        []int16
	Models          []ModelRecord
}

// ReadAnimationData reads the animation block in level file order: each
// array is prefixed by a uint32 element count.
func ReadAnimationData(r io.Reader) (*AnimationData, error) {
	var (
		ad  AnimationData
		err error
	)

	if ad.Animations, err = readCounted[AnimationRecord](r, "animations"); err != nil {
		return nil, err
	}
	if ad.Transitions, err = readCounted[TransitionRecord](r, "transitions"); err != nil {
		return nil, err
	}
	if ad.TransitionCases, err = readCounted[TransitionCaseRecord](r, "transition cases"); err != nil {
		return nil, err
	}
	if ad.AnimCommands, err = readCounted[int16](r, "anim commands"); err != nil {
		return nil, err
	}
	// The bone tree is counted in int32 words, four per entry.
	words, err := readCounted[int32](r, "bone tree")
	if err != nil {
		return nil, err
	}
	if ad.BoneTree, err = boneTreeFromWords(words); err != nil {
		return nil, err
	}
	// Pose data is counted in int16 words.
	if ad.PoseData, err = readCounted[int16](r, "pose data"); err != nil {
		return nil, err
	}
	if ad.Models, err = readCounted[ModelRecord](r, "models"); err != nil {
		return nil, err
	}

	return &ad, nil
}

// ReadFloorData reads a counted floor data array.
func ReadFloorData(r io.Reader) (floordata.FloorData, error) {
	words, err := readCounted[uint16](r, "floor data")
	if err != nil {
		return nil, err
	}
	fd := make(floordata.FloorData, len(words))
	for i, w := range words {
		fd[i] = floordata.Value(w)
	}
	return fd, nil
}

func boneTreeFromWords(words []int32) ([]BoneTreeRecord, error) {
	if len(words)%4 != 0 {
		return nil, errors.Wrapf(ErrMisalignedData, "bone tree: %d words", len(words))
	}
	out := make([]BoneTreeRecord, len(words)/4)
	for i := range out {
		w := words[i*4 : i*4+4]
		out[i] = BoneTreeRecord{Flags: uint32(w[0]), X: w[1], Y: w[2], Z: w[3]}
	}
	return out, nil
}
