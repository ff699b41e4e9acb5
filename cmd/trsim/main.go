// Package main runs a yaml scenario level headlessly.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/tr1-engine/internal/config"
	"github.com/Faultbox/tr1-engine/internal/debugserver"
	"github.com/Faultbox/tr1-engine/internal/engine/level"
	"github.com/Faultbox/tr1-engine/internal/game"
	"github.com/Faultbox/tr1-engine/internal/game/audio"
	"github.com/Faultbox/tr1-engine/internal/game/save"
	"github.com/Faultbox/tr1-engine/internal/game/world"
	"github.com/Faultbox/tr1-engine/internal/logger"
	"github.com/Faultbox/tr1-engine/internal/scenario"
	"github.com/Faultbox/tr1-engine/pkg/floordata"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile, cfg.Logging.Format); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== TR1 engine simulator ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	if err := run(cfg); err != nil {
		logger.Error("simulation failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	sc, err := scenario.LoadFile(cfg.Data.Scenario)
	if err != nil {
		return err
	}
	name := sc.Name
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(cfg.Data.Scenario), filepath.Ext(cfg.Data.Scenario))
	}

	opts := world.Options{SkipSteepSlants: cfg.Engine.SkipSteepSlants}
	var cues *audio.Recorder
	if cfg.Debug.AudioCues != "" {
		cues = audio.NewRecorder(cfg.Engine.TickRate, world.LogEffects(logger.Named("world")))
		opts.Effects = cues
	}

	w, err := sc.Build(opts)
	if err != nil {
		return err
	}
	if cues != nil {
		cues.SetClock(w.Ticks)
		defer writeCues(cues, cfg.Debug.AudioCues)
	}
	if cfg.Debug.DumpFloorData {
		dumpFloorData(w.Level())
	}

	var store *save.Store
	if cfg.Save.Enabled {
		store = save.Open(cfg.Save.AppName)
	}

	g, err := game.New(game.Config{
		LevelName: name,
		TickRate:  cfg.Engine.TickRate,
		MaxTicks:  uint64(cfg.Engine.MaxTicks),
		Realtime:  cfg.Engine.Realtime,
	}, w, store)
	if err != nil {
		return err
	}
	defer func() {
		if err := g.Close(); err != nil {
			logger.Warn("saving progress failed", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if cfg.Debug.InspectAddr != "" {
		inspector := debugserver.New(w, g.Locker())
		inspector.Start(cfg.Debug.InspectAddr)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			inspector.Shutdown(shutdownCtx)
		}()
	}

	if err := g.Run(ctx); err != nil {
		return err
	}

	snap := w.Snapshot()
	logger.Info("simulation finished",
		zap.String("level", name),
		zap.Stringer("reason", g.StopReason()),
		zap.Uint64("ticks", snap.Tick),
		zap.Int("secrets_found", snap.SecretsFound),
		zap.Int("secrets_total", snap.SecretsTotal),
		zap.Bool("flipped", snap.Flipped))
	return nil
}

func writeCues(r *audio.Recorder, path string) {
	f, err := os.Create(path)
	if err != nil {
		logger.Warn("creating cue file failed", zap.Error(err))
		return
	}
	defer f.Close()
	if err := r.WriteWAV(f); err != nil {
		logger.Warn("writing cue file failed", zap.String("path", path), zap.Error(err))
	}
}

func dumpFloorData(lvl *level.Level) {
	log := logger.Named("floordata")
	for _, room := range lvl.Rooms {
		for x := range room.SectorCountX {
			for z := range room.SectorCountZ {
				s := room.SectorAt(x, z)
				if s.FloorData.IsNil() {
					continue
				}
				log.Debug("sector",
					zap.Int("room", room.Index),
					zap.Int("x", x),
					zap.Int("z", z),
					zap.Any("chunks", floordata.Describe(s.FloorData)))
			}
		}
	}
}
