// Package audio renders the sounds and music cues raised by a simulation
// into a wav file, one short synthesized tone per cue.
package audio

import (
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/wav"
	"go.uber.org/zap"

	"github.com/Faultbox/tr1-engine/internal/game/entity"
	"github.com/Faultbox/tr1-engine/internal/game/world"
	"github.com/Faultbox/tr1-engine/internal/logger"
)

var _ world.Effects = (*Recorder)(nil)

// DefaultSampleRate is the sample rate of rendered cue tracks.
const DefaultSampleRate = beep.SampleRate(22050)

// Cue lengths.
const (
	SoundLength = 120 * time.Millisecond
	TrackLength = 600 * time.Millisecond
)

// Kind tells sound cues from music cues.
type Kind int

const (
	KindSound Kind = iota
	KindTrack
)

func (k Kind) String() string {
	if k == KindTrack {
		return "track"
	}
	return "sound"
}

// Cue is one recorded sound or track start.
type Cue struct {
	Kind Kind
	ID   int
	Tick uint64
}

// Recorder collects audio cues from a world and forwards every effect to
// the next sink.
type Recorder struct {
	mu sync.Mutex

	next     world.Effects
	clock    func() uint64
	tickRate int
	cues     []Cue

	// Volume settings (0.0 to 1.0)
	sfxVolume   float64
	musicVolume float64

	log *zap.Logger
}

// NewRecorder creates a recorder that timestamps cues against tickRate
// ticks per second. next may be nil.
func NewRecorder(tickRate int, next world.Effects) *Recorder {
	if tickRate <= 0 {
		tickRate = 30
	}
	return &Recorder{
		next:        next,
		tickRate:    tickRate,
		sfxVolume:   1.0,
		musicVolume: 0.7,
		log:         logger.Named("audio"),
	}
}

// SetClock sets the source of the current tick, usually World.Ticks.
func (r *Recorder) SetClock(clock func() uint64) {
	r.mu.Lock()
	r.clock = clock
	r.mu.Unlock()
}

// SetSFXVolume sets the sound effect volume.
func (r *Recorder) SetSFXVolume(vol float64) {
	r.mu.Lock()
	r.sfxVolume = clamp(vol, 0, 1)
	r.mu.Unlock()
}

// SetMusicVolume sets the music cue volume.
func (r *Recorder) SetMusicVolume(vol float64) {
	r.mu.Lock()
	r.musicVolume = clamp(vol, 0, 1)
	r.mu.Unlock()
}

// Cues returns a copy of the recorded cues in arrival order.
func (r *Recorder) Cues() []Cue {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Cue(nil), r.cues...)
}

func (r *Recorder) record(kind Kind, id int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var tick uint64
	if r.clock != nil {
		tick = r.clock()
	}
	r.cues = append(r.cues, Cue{Kind: kind, ID: id, Tick: tick})
}

func (r *Recorder) PlaySound(id int, obj *entity.ObjectState) {
	r.record(KindSound, id)
	if r.next != nil {
		r.next.PlaySound(id, obj)
	}
}

func (r *Recorder) RunAnimEffect(id int, obj *entity.ObjectState) {
	if r.next != nil {
		r.next.RunAnimEffect(id, obj)
	}
}

func (r *Recorder) RunFlipEffect(id int) {
	if r.next != nil {
		r.next.RunFlipEffect(id)
	}
}

func (r *Recorder) PlayTrack(track uint16) {
	r.record(KindTrack, int(track))
	if r.next != nil {
		r.next.PlayTrack(track)
	}
}

// offset returns the sample position of a tick.
func (r *Recorder) offset(tick uint64) int {
	return int(tick) * int(DefaultSampleRate) / r.tickRate
}

// Streamer mixes every recorded cue into one finite stream.
func (r *Recorder) Streamer() (beep.Streamer, int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var (
		streams []beep.Streamer
		total   int
	)
	for _, c := range r.cues {
		length := SoundLength
		vol := r.sfxVolume
		wave := WaveSquare
		if c.Kind == KindTrack {
			length = TrackLength
			vol = r.musicVolume
			wave = WaveSine
		}
		start := r.offset(c.Tick)
		tone := NewEnvelope(
			NewOscillator(cueFrequency(c), length, wave, DefaultSampleRate),
			length, 5*time.Millisecond, length/3, DefaultSampleRate)
		streams = append(streams, beep.Seq(beep.Silence(start), newVolume(tone, vol)))
		if end := start + DefaultSampleRate.N(length); end > total {
			total = end
		}
	}
	if len(streams) == 0 {
		return beep.Silence(0), 0
	}
	return beep.Take(total, beep.Mix(streams...)), total
}

// WriteWAV renders the recorded cues as 16-bit mono wav.
func (r *Recorder) WriteWAV(w io.WriteSeeker) error {
	s, n := r.Streamer()
	format := beep.Format{SampleRate: DefaultSampleRate, NumChannels: 1, Precision: 2}
	if err := wav.Encode(w, s, format); err != nil {
		return fmt.Errorf("encoding cues: %w", err)
	}
	r.log.Info("cue track written",
		zap.Int("cues", len(r.Cues())),
		zap.Duration("length", DefaultSampleRate.D(n)))
	return nil
}

// cueFrequency maps a cue id onto a semitone above 220 Hz for sounds and
// 110 Hz for tracks.
func cueFrequency(c Cue) float64 {
	base := 220.0
	if c.Kind == KindTrack {
		base = 110.0
	}
	return base * math.Pow(2, float64(c.ID%48)/12)
}

// volumeToDb converts linear volume (0-1) to decibels.
func volumeToDb(vol float64) float64 {
	if vol <= 0 {
		return -100
	}
	return 20 * math.Log10(vol)
}

// newVolume scales s by a linear volume. Zero volume is silent.
func newVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 10, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 10, Volume: volumeToDb(vol) / 20}
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
