package floordata

import (
	"fmt"
	"iter"
)

// Ref points at one word of a FloorData array. The zero Ref points nowhere
// and means "this sector has no floor data".
type Ref struct {
	data   FloorData
	offset int
}

// NewRef returns a reference to data[offset].
func NewRef(data FloorData, offset int) Ref {
	if offset < 0 || offset >= len(data) {
		panic(fmt.Sprintf("floordata: offset %d outside floor data of %d words", offset, len(data)))
	}
	return Ref{data: data, offset: offset}
}

// IsNil reports whether r points nowhere.
func (r Ref) IsNil() bool {
	return r.data == nil
}

// Offset returns the word index r points at.
func (r Ref) Offset() int {
	return r.offset
}

// Word returns the i-th word after r.
func (r Ref) Word(i int) Value {
	idx := r.offset + i
	if r.data == nil || idx >= len(r.data) {
		panic(fmt.Sprintf("floordata: read past end of floor data at word %d", idx))
	}
	return r.data[idx]
}

// Advance returns a reference n words further.
func (r Ref) Advance(n int) Ref {
	return Ref{data: r.data, offset: r.offset + n}
}

// Chunk is one decoded chunk, positioned at its header word.
type Chunk struct {
	ChunkHeader
	ref Ref
}

// Ref returns the position of the chunk header.
func (c Chunk) Ref() Ref {
	return c.ref
}

// Offset returns the word index of the chunk header.
func (c Chunk) Offset() int {
	return c.ref.offset
}

// HasPayload reports whether the chunk carries exactly one data word.
func (c Chunk) HasPayload() bool {
	switch c.Type {
	case ChunkFloorSlant, ChunkCeilingSlant, ChunkBoundaryRoom:
		return true
	}
	return false
}

// Payload returns the data word of a slant or boundary room chunk.
func (c Chunk) Payload() Value {
	if !c.HasPayload() {
		panic(fmt.Sprintf("floordata: %s chunk at %d has no payload", c.Type, c.Offset()))
	}
	return c.ref.Word(1)
}

// Slant decodes the payload of a slant chunk.
func (c Chunk) Slant() Slant {
	if c.Type != ChunkFloorSlant && c.Type != ChunkCeilingSlant {
		panic(fmt.Sprintf("floordata: %s chunk at %d is not a slant", c.Type, c.Offset()))
	}
	return NewSlant(c.ref.Word(1))
}

// Activation returns the trigger metadata word of a command sequence.
func (c Chunk) Activation() ActivationState {
	c.mustBeSequence()
	return NewActivationState(c.ref.Word(1))
}

// CommandEntry is one command of a sequence. Camera is only meaningful for
// SwitchCamera commands.
type CommandEntry struct {
	Command
	Camera CameraParameters
	Offset int
}

// Commands walks the commands of a command sequence chunk.
//
// A SwitchCamera command is followed by a CameraParameters word, and the
// isLast bit of that word replaces the command's own.
func (c Chunk) Commands() iter.Seq[CommandEntry] {
	c.mustBeSequence()
	return func(yield func(CommandEntry) bool) {
		cur := c.ref.Advance(2)
		for {
			e, n := decodeCommand(cur)
			if !yield(e) || e.IsLast {
				return
			}
			cur = cur.Advance(n)
		}
	}
}

func decodeCommand(cur Ref) (CommandEntry, int) {
	e := CommandEntry{Command: NewCommand(cur.Word(0)), Offset: cur.offset}
	if e.Opcode != OpSwitchCamera {
		return e, 1
	}
	e.Camera = NewCameraParameters(cur.Word(1))
	e.IsLast = e.Camera.IsLast
	return e, 2
}

// size returns how many words the chunk occupies, header included.
func (c Chunk) size() int {
	switch c.Type {
	case ChunkFloorSlant, ChunkCeilingSlant, ChunkBoundaryRoom:
		return 2
	case ChunkCommandSequence:
		n := 2
		cur := c.ref.Advance(2)
		for {
			e, words := decodeCommand(cur)
			n += words
			if e.IsLast {
				return n
			}
			cur = cur.Advance(words)
		}
	default:
		return 1
	}
}

func (c Chunk) mustBeSequence() {
	if c.Type != ChunkCommandSequence {
		panic(fmt.Sprintf("floordata: %s chunk at %d is not a command sequence", c.Type, c.Offset()))
	}
}

// Chunk decodes the chunk header r points at.
func (r Ref) Chunk() Chunk {
	return Chunk{ChunkHeader: NewChunkHeader(r.Word(0)), ref: r}
}

// Chunks walks the chunks starting at r until one is marked last.
func (r Ref) Chunks() iter.Seq[Chunk] {
	return func(yield func(Chunk) bool) {
		if r.IsNil() {
			return
		}
		cur := r
		for {
			c := cur.Chunk()
			if !yield(c) || c.IsLast {
				return
			}
			cur = cur.Advance(c.size())
		}
	}
}
