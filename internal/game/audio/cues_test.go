package audio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gopxl/beep/v2/wav"

	"github.com/Faultbox/tr1-engine/internal/game/entity"
)

type countingEffects struct {
	sounds, anims, flips, tracks int
}

func (c *countingEffects) PlaySound(int, *entity.ObjectState)     { c.sounds++ }
func (c *countingEffects) RunAnimEffect(int, *entity.ObjectState) { c.anims++ }
func (c *countingEffects) RunFlipEffect(int)                      { c.flips++ }
func (c *countingEffects) PlayTrack(uint16)                       { c.tracks++ }

func TestVolumeConversion(t *testing.T) {
	tests := []struct {
		vol float64
		min float64
		max float64
	}{
		{1.0, -1, 1},
		{0.5, -8, -4},
		{0.25, -14, -10},
		{0.0, -200, -90},
	}

	for _, tt := range tests {
		db := volumeToDb(tt.vol)
		if db < tt.min || db > tt.max {
			t.Errorf("volumeToDb(%f) = %f, want between %f and %f", tt.vol, db, tt.min, tt.max)
		}
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		v, min, max, want float64
	}{
		{0.5, 0, 1, 0.5},
		{-1, 0, 1, 0},
		{2, 0, 1, 1},
	}

	for _, tt := range tests {
		if got := clamp(tt.v, tt.min, tt.max); got != tt.want {
			t.Errorf("clamp(%f, %f, %f) = %f, want %f", tt.v, tt.min, tt.max, got, tt.want)
		}
	}
}

func TestRecorderForwardsEffects(t *testing.T) {
	next := &countingEffects{}
	r := NewRecorder(30, next)
	tick := uint64(0)
	r.SetClock(func() uint64 { return tick })

	obj := &entity.ObjectState{ID: 3}
	r.PlaySound(7, obj)
	tick = 15
	r.PlayTrack(13)
	r.RunAnimEffect(1, obj)
	r.RunFlipEffect(2)

	if next.sounds != 1 || next.tracks != 1 || next.anims != 1 || next.flips != 1 {
		t.Errorf("expected every effect forwarded once, got %+v", *next)
	}

	cues := r.Cues()
	if len(cues) != 2 {
		t.Fatalf("expected 2 cues, got %d", len(cues))
	}
	if cues[0] != (Cue{Kind: KindSound, ID: 7, Tick: 0}) {
		t.Errorf("unexpected first cue %+v", cues[0])
	}
	if cues[1] != (Cue{Kind: KindTrack, ID: 13, Tick: 15}) {
		t.Errorf("unexpected second cue %+v", cues[1])
	}
}

func TestRecorderWithoutNext(t *testing.T) {
	r := NewRecorder(0, nil)
	r.PlaySound(1, &entity.ObjectState{})
	r.RunFlipEffect(1)
	if len(r.Cues()) != 1 {
		t.Errorf("expected 1 cue, got %d", len(r.Cues()))
	}
	if r.tickRate != 30 {
		t.Errorf("expected default tick rate 30, got %d", r.tickRate)
	}
}

func TestEmptyStreamer(t *testing.T) {
	r := NewRecorder(30, nil)
	if _, n := r.Streamer(); n != 0 {
		t.Errorf("expected empty stream, got %d samples", n)
	}
}

func TestWriteWAV(t *testing.T) {
	r := NewRecorder(30, nil)
	tick := uint64(0)
	r.SetClock(func() uint64 { return tick })
	r.PlaySound(1, &entity.ObjectState{})
	tick = 30
	r.PlayTrack(5)

	path := filepath.Join(t.TempDir(), "cues.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := r.WriteWAV(f); err != nil {
		t.Fatalf("WriteWAV: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	in, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer in.Close()
	s, format, err := wav.Decode(in)
	if err != nil {
		t.Fatalf("decoding written wav: %v", err)
	}
	defer s.Close()

	if format.SampleRate != DefaultSampleRate {
		t.Errorf("expected sample rate %d, got %d", DefaultSampleRate, format.SampleRate)
	}
	if format.NumChannels != 1 {
		t.Errorf("expected mono, got %d channels", format.NumChannels)
	}
	// The track starts one second in and outlasts the sound.
	want := int(DefaultSampleRate) + DefaultSampleRate.N(TrackLength)
	if s.Len() != want {
		t.Errorf("expected %d samples, got %d", want, s.Len())
	}
}

func TestCueFrequency(t *testing.T) {
	if f := cueFrequency(Cue{Kind: KindSound, ID: 0}); f != 220 {
		t.Errorf("expected 220 Hz, got %f", f)
	}
	if f := cueFrequency(Cue{Kind: KindTrack, ID: 12}); f != 220 {
		t.Errorf("expected 220 Hz for track 12, got %f", f)
	}
}
