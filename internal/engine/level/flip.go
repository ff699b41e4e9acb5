package level

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/tr1-engine/internal/logger"
	"github.com/Faultbox/tr1-engine/pkg/floordata"
)

// FlipMapCount is the number of independent flip maps a level has.
const FlipMapCount = 10

// FlipState is the level-wide flip-map state.
type FlipState struct {
	Maps    [FlipMapCount]floordata.ActivationState
	Flipped bool // rooms currently show their alternates
}

// Map returns the activation state of flip map i.
func (f *FlipState) Map(i int) *floordata.ActivationState {
	if i < 0 || i >= FlipMapCount {
		panic(fmt.Sprintf("level: flip map %d out of range", i))
	}
	return &f.Maps[i]
}

// SwapAllRooms exchanges every room with its alternate and toggles the
// global flip status. Room slots keep their index, so sector links to a
// slot now resolve to the swapped-in geometry.
func (l *Level) SwapAllRooms() {
	for _, room := range l.Rooms {
		if room.AlternateRoom < 0 {
			continue
		}
		alt := l.Room(room.AlternateRoom)
		if alt == nil {
			panic(fmt.Sprintf("level: room %d has missing alternate %d", room.Index, room.AlternateRoom))
		}
		swapWithAlternate(room, alt)
	}
	l.Flip.Flipped = !l.Flip.Flipped

	logger.Named("level").Debug("rooms swapped", zap.Bool("flipped", l.Flip.Flipped))
}

// swapWithAlternate exchanges room contents. Afterwards the original slot
// points at the alternate slot, and the alternate slot points nowhere, so
// a single pass over all rooms swaps each pair exactly once.
func swapWithAlternate(orig, alt *Room) {
	origIdx, altIdx := orig.Index, alt.Index
	*orig, *alt = *alt, *orig
	orig.Index, alt.Index = origIdx, altIdx
	orig.AlternateRoom = altIdx
	alt.AlternateRoom = -1
}
