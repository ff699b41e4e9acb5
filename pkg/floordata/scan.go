package floordata

import "fmt"

// GetBoundaryRoom returns the payload of a BoundaryRoom chunk that directly
// follows any leading slant chunks.
func GetBoundaryRoom(r Ref) (Value, bool) {
	if r.IsNil() {
		return 0, false
	}
	for c := range r.Chunks() {
		switch c.Type {
		case ChunkFloorSlant, ChunkCeilingSlant:
			continue
		case ChunkBoundaryRoom:
			return c.Payload(), true
		}
		break
	}
	return 0, false
}

// GetPortalTarget returns the room a boundary chunk leads to.
func GetPortalTarget(r Ref) (uint8, bool) {
	v, ok := GetBoundaryRoom(r)
	if !ok {
		return 0, false
	}
	return uint8(v & 0xFF), true
}

// GetSecretsMask collects the parameter of every Secret command into a bit
// set. Secret indices index a 16-bit save game mask, so a larger index is
// corrupt data.
func GetSecretsMask(r Ref) uint16 {
	var mask uint16
	for c := range r.Chunks() {
		if c.Type != ChunkCommandSequence {
			continue
		}
		for cmd := range c.Commands() {
			if cmd.Opcode != OpSecret {
				continue
			}
			if cmd.Parameter >= 16 {
				panic(fmt.Sprintf("floordata: secret index %d out of range at word %d", cmd.Parameter, cmd.Offset))
			}
			mask |= 1 << cmd.Parameter
		}
	}
	return mask
}
