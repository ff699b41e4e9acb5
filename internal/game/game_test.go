package game

import (
	"context"
	"testing"
	"time"

	"github.com/Faultbox/tr1-engine/internal/engine/animation"
	"github.com/Faultbox/tr1-engine/internal/engine/level"
	"github.com/Faultbox/tr1-engine/internal/game/entity"
	"github.com/Faultbox/tr1-engine/internal/game/save"
	"github.com/Faultbox/tr1-engine/internal/game/world"
	"github.com/Faultbox/tr1-engine/pkg/core"
	"github.com/Faultbox/tr1-engine/pkg/floordata"
	"github.com/Faultbox/tr1-engine/pkg/loader"
)

// testWorld builds a 3x3 room whose centre sector holds fd at index 1.
func testWorld(t *testing.T, fd floordata.FloorData) *world.World {
	t.Helper()
	recs := make([]loader.SectorRecord, 9)
	for i := range recs {
		recs[i] = loader.SectorRecord{BoxIndex: level.NoBox, RoomAbove: loader.NoRoom, RoomBelow: loader.NoRoom, Ceiling: -4}
	}
	if len(fd) > 1 {
		recs[4].FloorDataIndex = 1
	}
	lvl, err := level.New(fd, []level.RoomData{{SectorCountX: 3, SectorCountZ: 3, Sectors: recs, AlternateRoom: -1}})
	if err != nil {
		t.Fatalf("level.New failed: %v", err)
	}

	anim := &animation.Animation{FirstFrame: 0, LastFrame: 0, StretchFactor: 1}
	anim.NextAnimation = anim
	model, err := animation.NewModel(0, []animation.Bone{{}}, []*animation.Animation{anim}, anim, make([]int16, 12))
	if err != nil {
		t.Fatalf("NewModel failed: %v", err)
	}

	w := world.New(lvl, world.Options{})
	w.SetPlayer(entity.NewPlayer(1, model, lvl.Rooms[0], core.TRVec{X: 1536, Z: 1536}))
	return w
}

func TestNewRejectsTickRate(t *testing.T) {
	if _, err := New(Config{}, testWorld(t, floordata.FloorData{0}), nil); err == nil {
		t.Error("expected error for zero tick rate")
	}
}

func TestRunStopsAtMaxTicks(t *testing.T) {
	w := testWorld(t, floordata.FloorData{0})
	g, err := New(Config{TickRate: 30, MaxTicks: 45}, w, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := g.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if w.Ticks() != 45 {
		t.Errorf("expected 45 ticks, got %d", w.Ticks())
	}
	if g.StopReason() != StopMaxTicks {
		t.Errorf("expected %s, got %s", StopMaxTicks, g.StopReason())
	}
	if g.Step() {
		t.Error("expected a stopped game not to step")
	}
}

func TestRunStopsAtLevelEnd(t *testing.T) {
	end := floordata.FloorData{0,
		0x8000 | floordata.Value(floordata.ChunkCommandSequence), 0x3E00,
		0x8000 | floordata.Value(floordata.OpEndLevel)<<10}
	w := testWorld(t, end)
	g, err := New(Config{TickRate: 30}, w, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := g.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if g.StopReason() != StopLevelEnded || w.Ticks() != 1 {
		t.Errorf("expected level end after 1 tick, got %s after %d", g.StopReason(), w.Ticks())
	}
}

func TestRunStopsWhenPlayerDies(t *testing.T) {
	w := testWorld(t, floordata.FloorData{0, 0x8000 | floordata.Value(floordata.ChunkDeath)})
	g, err := New(Config{TickRate: 30}, w, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := g.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if g.StopReason() != StopPlayerDead {
		t.Errorf("expected %s, got %s", StopPlayerDead, g.StopReason())
	}
}

func TestRunRealtimeCanceled(t *testing.T) {
	w := testWorld(t, floordata.FloorData{0})
	g, err := New(Config{TickRate: 200, Realtime: true}, w, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	if err := g.Run(ctx); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if g.StopReason() != StopCanceled {
		t.Errorf("expected %s, got %s", StopCanceled, g.StopReason())
	}
	if w.Ticks() == 0 {
		t.Error("expected some ticks in realtime mode")
	}
}

func TestCloseWithoutStore(t *testing.T) {
	g, err := New(Config{TickRate: 30, LevelName: "gym"}, testWorld(t, floordata.FloorData{0}), save.NewStore(nil))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := g.Close(); err != nil {
		t.Errorf("expected close to succeed, got %v", err)
	}
}
