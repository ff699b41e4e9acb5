package save

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/quasilyte/gdata/v2"

	"github.com/Faultbox/tr1-engine/internal/engine/level"
	"github.com/Faultbox/tr1-engine/internal/game/world"
	"github.com/Faultbox/tr1-engine/pkg/floordata"
	"github.com/Faultbox/tr1-engine/pkg/loader"
)

func testManager(t *testing.T) *gdata.Manager {
	t.Helper()
	appName := fmt.Sprintf("tr1engine_save_test_%d", time.Now().UnixNano())
	m, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		t.Skipf("no user data directory: %v", err)
	}
	t.Cleanup(func() {
		if home, err := os.UserHomeDir(); err == nil {
			os.RemoveAll(filepath.Join(home, ".local", "share", appName))
		}
	})
	return m
}

func testWorld(t *testing.T) *world.World {
	t.Helper()
	recs := make([]loader.SectorRecord, 9)
	for i := range recs {
		recs[i] = loader.SectorRecord{BoxIndex: level.NoBox, RoomAbove: loader.NoRoom, RoomBelow: loader.NoRoom, Ceiling: -4}
	}
	lvl, err := level.New(floordata.FloorData{0}, []level.RoomData{{
		SectorCountX: 3, SectorCountZ: 3, Sectors: recs, AlternateRoom: -1,
	}})
	if err != nil {
		t.Fatalf("level.New failed: %v", err)
	}
	return world.New(lvl, world.Options{})
}

func TestCaptureAndApply(t *testing.T) {
	src := testWorld(t)
	src.SetSecretFound(2)
	src.FlipState().Map(4).FullyActivate()
	src.SwapAllRooms()

	p := Capture("caves", src)
	if p.Level != "caves" || p.SecretsFound != 1<<2 || !p.Flipped {
		t.Errorf("unexpected progress %+v", p)
	}
	if len(p.FlipMaps) != level.FlipMapCount {
		t.Errorf("expected %d flip maps, got %d", level.FlipMapCount, len(p.FlipMaps))
	}

	dst := testWorld(t)
	if err := p.Apply(dst); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if dst.SecretsFound() != 1<<2 || !dst.FlipState().Flipped || !dst.FlipState().Map(4).IsFullyActivated() {
		t.Error("expected progress restored")
	}
}

func TestApplyRejectsTooManyFlipMaps(t *testing.T) {
	p := Progress{Level: "x", FlipMaps: make([]uint16, level.FlipMapCount+1)}
	if err := p.Apply(testWorld(t)); err == nil {
		t.Error("expected error for too many flip maps")
	}
}

func TestStoreWithoutManager(t *testing.T) {
	s := NewStore(nil)
	if s.Persistent() {
		t.Error("expected non-persistent store")
	}
	if err := s.Save(Progress{Level: "caves"}); err != nil {
		t.Errorf("expected save without manager to succeed, got %v", err)
	}
	if _, ok, err := s.Load("caves"); ok || err != nil {
		t.Errorf("expected nothing loaded, got %v %v", ok, err)
	}
	if err := s.Save(Progress{}); err == nil {
		t.Error("expected error for empty level name")
	}
}

func TestStoreRoundTrip(t *testing.T) {
	s := NewStore(testManager(t))

	if _, ok, err := s.Load("vilcabamba"); ok || err != nil {
		t.Fatalf("expected no saved progress, got %v %v", ok, err)
	}

	want := Progress{Level: "vilcabamba", SecretsFound: 0x0007, Flipped: true, FlipMaps: []uint16{0, 0x3E00}, Ticks: 900}
	if err := s.Save(want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	got, ok, err := s.Load("vilcabamba")
	if err != nil || !ok {
		t.Fatalf("Load failed: %v %v", ok, err)
	}
	if got.SecretsFound != want.SecretsFound || got.Flipped != want.Flipped || got.Ticks != want.Ticks {
		t.Errorf("expected %+v, got %+v", want, got)
	}
	if len(got.FlipMaps) != 2 || got.FlipMaps[1] != 0x3E00 {
		t.Errorf("expected flip maps restored, got %v", got.FlipMaps)
	}
}
