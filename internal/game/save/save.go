// Package save persists level progress: the secrets found and the flip map
// state of each level.
package save

import (
	"fmt"

	"github.com/quasilyte/gdata/v2"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/tr1-engine/internal/engine/level"
	"github.com/Faultbox/tr1-engine/internal/game/world"
	"github.com/Faultbox/tr1-engine/internal/logger"
	"github.com/Faultbox/tr1-engine/pkg/floordata"
)

const progressObject = "progress"

// Progress is the saved state of one level.
type Progress struct {
	Level        string   `yaml:"level"`
	SecretsFound uint16   `yaml:"secrets_found"`
	Flipped      bool     `yaml:"flipped"`
	FlipMaps     []uint16 `yaml:"flip_maps"`
	Ticks        uint64   `yaml:"ticks"`
}

// Capture records the progress of w under the given level name.
func Capture(levelName string, w *world.World) Progress {
	flips := w.FlipState()
	p := Progress{
		Level:        levelName,
		SecretsFound: w.SecretsFound(),
		Flipped:      flips.Flipped,
		Ticks:        w.Ticks(),
	}
	for _, m := range flips.Maps {
		p.FlipMaps = append(p.FlipMaps, uint16(m))
	}
	return p
}

// Apply restores the progress into w.
func (p Progress) Apply(w *world.World) error {
	if len(p.FlipMaps) > level.FlipMapCount {
		return fmt.Errorf("progress for %s: %d flip maps, expected at most %d", p.Level, len(p.FlipMaps), level.FlipMapCount)
	}
	var maps [level.FlipMapCount]floordata.ActivationState
	for i, m := range p.FlipMaps {
		maps[i] = floordata.ActivationState(m)
	}
	w.RestoreProgress(p.SecretsFound, p.Flipped, maps)
	return nil
}

// Store saves progress in the user's data directory. A Store without a
// manager accepts saves and finds nothing.
type Store struct {
	manager *gdata.Manager
	log     *zap.Logger
}

// Open opens the store for appName. If no data directory is available
// the store runs without persistence.
func Open(appName string) *Store {
	log := logger.Named("save")
	m, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		log.Warn("progress will not be saved", zap.Error(err))
		m = nil
	}
	return &Store{manager: m, log: log}
}

// NewStore wraps an existing manager, which may be nil.
func NewStore(m *gdata.Manager) *Store {
	return &Store{manager: m, log: logger.Named("save")}
}

// Persistent reports whether saves reach the disk.
func (s *Store) Persistent() bool {
	return s.manager != nil
}

// Save writes p under its level name.
func (s *Store) Save(p Progress) error {
	if p.Level == "" {
		return fmt.Errorf("saving progress: empty level name")
	}
	if s.manager == nil {
		return nil
	}
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshaling progress for %s: %w", p.Level, err)
	}
	if err := s.manager.SaveObjectProp(progressObject, p.Level, data); err != nil {
		return fmt.Errorf("saving progress for %s: %w", p.Level, err)
	}
	s.log.Info("progress saved", zap.String("level", p.Level), zap.Uint16("secrets", p.SecretsFound))
	return nil
}

// Load reads the progress of a level. ok is false if nothing was saved.
func (s *Store) Load(levelName string) (p Progress, ok bool, err error) {
	if s.manager == nil || !s.manager.ObjectPropExists(progressObject, levelName) {
		return Progress{}, false, nil
	}
	data, err := s.manager.LoadObjectProp(progressObject, levelName)
	if err != nil {
		return Progress{}, false, fmt.Errorf("loading progress for %s: %w", levelName, err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Progress{}, false, fmt.Errorf("parsing progress for %s: %w", levelName, err)
	}
	return p, true, nil
}
